package richtext

import (
	"strings"

	"github.com/gorilla/css/scanner"
)

var allowedStyles = map[string]struct{}{
	"color":                     {},
	"font-size":                 {},
	"font-weight":               {},
	"font-style":                {},
	"font-family":               {},
	"text-decoration":           {},
	"text-decoration-line":      {},
	"text-decoration-color":     {},
	"text-decoration-style":     {},
	"text-decoration-thickness": {},
}

var allowedCSSFunctions = map[string]struct{}{
	"rgb":  {},
	"rgba": {},
	"hsl":  {},
	"hsla": {},
}

// filterStyle keeps the allowed declarations of a style attribute, each
// normalized to "prop: value".
func (s *sanitizer) filterStyle(raw string) []string {
	var out []string
	for _, decl := range strings.Split(raw, ";") {
		if strings.TrimSpace(decl) == "" {
			continue
		}
		name, value, ok := strings.Cut(decl, ":")
		prop := strings.ToLower(strings.TrimSpace(name))
		if !ok {
			s.noteStyle(prop)
			continue
		}
		if _, allowed := allowedStyles[prop]; !allowed {
			s.noteStyle(prop)
			continue
		}
		value = strings.TrimSpace(value)
		if !safeStyleValue(value) {
			s.noteStyle(prop)
			continue
		}
		out = append(out, prop+": "+value)
	}
	return out
}

// safeStyleValue rejects values that could load resources or escape the
// declaration: url(), expressions, escapes, at-rules and stray delimiters.
func safeStyleValue(v string) bool {
	if v == "" || strings.ContainsAny(v, `\;`) {
		return false
	}
	sc := scanner.New(v)
	for {
		tok := sc.Next()
		switch tok.Type {
		case scanner.TokenEOF:
			return true
		case scanner.TokenIdent, scanner.TokenString, scanner.TokenHash,
			scanner.TokenNumber, scanner.TokenPercentage, scanner.TokenDimension,
			scanner.TokenS:
		case scanner.TokenFunction:
			name := strings.ToLower(strings.TrimSuffix(tok.Value, "("))
			if _, ok := allowedCSSFunctions[name]; !ok {
				return false
			}
		case scanner.TokenChar:
			if !strings.Contains(",/!).%+-", tok.Value) {
				return false
			}
		default:
			return false
		}
	}
}
