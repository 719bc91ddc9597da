package richtext

import "strings"

var hrefPrefixes = []string{"http:", "https:", "mailto:", "tel:", "/", "#"}

// filterHref returns the href to emit for raw, or "" when the link must be
// dropped. Bare "www." hosts are promoted to https.
func filterHref(raw string) string {
	v := strings.TrimSpace(raw)
	lower := strings.ToLower(v)
	switch {
	case v == "":
		return ""
	case strings.HasPrefix(lower, "www."):
		return "https://" + v
	case strings.HasPrefix(lower, "//"), strings.HasPrefix(lower, `/\`):
		// protocol-relative, points off-site
		return ""
	}
	for _, p := range hrefPrefixes {
		if strings.HasPrefix(lower, p) {
			return v
		}
	}
	return ""
}
