package richtext

import (
	"slices"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Findings lists what a sanitizing pass removed from its input.
type Findings struct {
	Tags       []string `json:"tags,omitempty"`
	Attrs      []string `json:"attrs,omitempty"`
	Styles     []string `json:"styles,omitempty"`
	Hrefs      []string `json:"hrefs,omitempty"`
	Markup     int      `json:"markup,omitempty"`
	Unbalanced int      `json:"unbalanced,omitempty"`
}

// Empty reports whether nothing was removed.
func (f Findings) Empty() bool {
	return len(f.Tags) == 0 &&
		len(f.Attrs) == 0 &&
		len(f.Styles) == 0 &&
		len(f.Hrefs) == 0 &&
		f.Markup == 0 &&
		f.Unbalanced == 0
}

// Count is the number of distinct removals.
func (f Findings) Count() int {
	return len(f.Tags) + len(f.Attrs) + len(f.Styles) + len(f.Hrefs) + f.Markup + f.Unbalanced
}

// knownAttrs are consumed by the rewrite and never reported as dropped.
var knownAttrs = map[atom.Atom][]string{
	atom.A:    {"href", "target", "rel"},
	atom.Font: {"color", "face", "size"},
}

func (s *sanitizer) noteTag(name string) {
	if s.findings != nil {
		s.findings.Tags = appendUnique(s.findings.Tags, name)
	}
}

func (s *sanitizer) noteStyle(prop string) {
	if s.findings != nil {
		s.findings.Styles = appendUnique(s.findings.Styles, prop)
	}
}

func (s *sanitizer) noteHref(href string) {
	if s.findings != nil {
		s.findings.Hrefs = appendUnique(s.findings.Hrefs, href)
	}
}

func (s *sanitizer) noteMarkup() {
	if s.findings != nil {
		s.findings.Markup++
	}
}

func (s *sanitizer) noteAttrs(tok html.Token) {
	if s.findings == nil {
		return
	}
	for _, a := range tok.Attr {
		if tok.DataAtom != atom.Br && a.Key == "style" {
			continue
		}
		if slices.Contains(knownAttrs[tok.DataAtom], a.Key) {
			continue
		}
		s.findings.Attrs = appendUnique(s.findings.Attrs, tok.Data+"@"+a.Key)
	}
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
