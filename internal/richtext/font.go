package richtext

import (
	"strings"

	"golang.org/x/net/html"
)

// legacyFontSizes maps <font size="1".."7"> to pixel sizes.
var legacyFontSizes = [...]string{"10px", "13px", "16px", "18px", "24px", "32px", "48px"}

// legacyFontStyles translates the presentational attributes of a <font>
// tag into CSS declarations, in color, face, size order.
func (s *sanitizer) legacyFontStyles(tok html.Token) []string {
	var out []string
	if v, ok := attr(tok, "color"); ok {
		out = s.appendLegacy(out, "color", strings.TrimSpace(v))
	}
	if v, ok := attr(tok, "face"); ok {
		out = s.appendLegacy(out, "font-family", strings.TrimSpace(v))
	}
	if v, ok := attr(tok, "size"); ok {
		if n, ok := leadingInt(v); ok {
			out = append(out, "font-size: "+legacyFontSizes[clamp(n, 1, len(legacyFontSizes))-1])
		} else if strings.TrimSpace(v) != "" {
			s.noteStyle("font-size")
		}
	}
	return out
}

func (s *sanitizer) appendLegacy(out []string, prop, value string) []string {
	if value == "" {
		return out
	}
	if !safeStyleValue(value) {
		s.noteStyle(prop)
		return out
	}
	return append(out, prop+": "+value)
}

// leadingInt parses an optionally signed run of digits at the start of v,
// ignoring leading whitespace and anything after the digits.
func leadingInt(v string) (int, bool) {
	v = strings.TrimLeft(v, " \t\n\r\f")
	neg := false
	if v != "" && (v[0] == '+' || v[0] == '-') {
		neg = v[0] == '-'
		v = v[1:]
	}
	n, digits := 0, 0
	for ; digits < len(v) && v[digits] >= '0' && v[digits] <= '9'; digits++ {
		if n < 1000 {
			n = n*10 + int(v[digits]-'0')
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
