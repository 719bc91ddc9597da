package ingest

import (
	"regexp"
	"strings"
)

var wsRegexp = regexp.MustCompile(`\s+`)

// CompactText collapses whitespace and truncates to max bytes.
func CompactText(v string, max int) string {
	v = strings.TrimSpace(wsRegexp.ReplaceAllString(v, " "))
	if max <= 0 || len(v) <= max {
		return v
	}
	if max < 4 {
		return v[:max]
	}
	cut := max - 3
	// Back up to a rune boundary so multibyte text is never split.
	for cut > 0 && !utf8RuneStart(v[cut]) {
		cut--
	}
	return v[:cut] + "..."
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
