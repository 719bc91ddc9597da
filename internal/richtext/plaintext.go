package richtext

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// bluemonday policies are safe for concurrent use once built.
var stripPolicy = bluemonday.StrictPolicy()

// PlainText returns the visible text of raw with line breaks preserved.
func PlainText(raw string) string {
	clean := Sanitize(raw)
	if clean == "" {
		return ""
	}
	clean = strings.ReplaceAll(clean, lineBreak, "\n")
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(clean)))
}
