// Package richtext sanitizes the inline rich text stored for content blocks.
//
// Only a flat vocabulary of inline formatting survives: span, a, strong, b,
// em, i, u and br. Legacy font tags become spans, div and p collapse into
// line breaks, and style attributes keep a short list of typographic
// properties. Everything else is dropped while its text content is kept.
package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const lineBreak = "<br />"

var inlineTags = map[atom.Atom]struct{}{
	atom.Span:   {},
	atom.A:      {},
	atom.Strong: {},
	atom.B:      {},
	atom.Em:     {},
	atom.I:      {},
	atom.U:      {},
	atom.Br:     {},
	atom.Font:   {},
}

var blockTags = map[atom.Atom]struct{}{
	atom.Div: {},
	atom.P:   {},
}

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;")
	textEscaper = strings.NewReplacer("<", "&lt;")
)

// Sanitize rewrites raw into the allowed inline vocabulary. It never fails;
// constructs it does not understand are dropped.
func Sanitize(raw string) string {
	return run(raw, nil)
}

// Analyze is Sanitize that also reports what was removed.
func Analyze(raw string) (string, Findings) {
	var f Findings
	out := run(raw, &f)
	return out, f
}

// IsClean reports whether raw is already a fixed point of Sanitize.
func IsClean(raw string) bool {
	return Sanitize(raw) == raw
}

type openTag struct {
	name string
	emit string
}

type sanitizer struct {
	out      strings.Builder
	open     []openTag
	findings *Findings
}

func run(raw string, f *Findings) string {
	if raw == "" {
		return ""
	}
	s := &sanitizer{findings: f}
	s.out.Grow(len(raw))

	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		tt := z.Next()
		// script, style, textarea and friends would otherwise swallow the
		// following markup as raw text and hide it from the tag filter.
		z.NextIsNotRawText()

		switch tt {
		case html.ErrorToken:
			// io.EOF, or a tag truncated by the end of input; both end the pass.
			s.closeAll()
			return s.out.String()
		case html.TextToken:
			textEscaper.WriteString(&s.out, string(z.Raw()))
		case html.StartTagToken, html.SelfClosingTagToken:
			s.start(z.Token())
		case html.EndTagToken:
			s.end(z.Token())
		case html.CommentToken, html.DoctypeToken:
			s.noteMarkup()
		}
	}
}

func (s *sanitizer) start(tok html.Token) {
	if _, ok := blockTags[tok.DataAtom]; ok {
		return
	}
	if _, ok := inlineTags[tok.DataAtom]; !ok {
		s.noteTag(tok.Data)
		return
	}
	if tok.DataAtom == atom.Br {
		s.noteAttrs(tok)
		s.out.WriteString(lineBreak)
		return
	}

	emit := tok.Data
	if tok.DataAtom == atom.Font {
		emit = atom.Span.String()
	}
	s.out.WriteByte('<')
	s.out.WriteString(emit)
	s.writeAttrs(tok)
	s.out.WriteByte('>')
	s.open = append(s.open, openTag{name: tok.Data, emit: emit})
}

func (s *sanitizer) end(tok html.Token) {
	if _, ok := blockTags[tok.DataAtom]; ok {
		s.out.WriteString(lineBreak)
		return
	}
	if _, ok := inlineTags[tok.DataAtom]; !ok {
		s.noteTag(tok.Data)
		return
	}
	if tok.DataAtom == atom.Br {
		s.out.WriteString(lineBreak)
		return
	}
	s.close(tok.Data)
}

// close pops the innermost open tag named name, closing anything opened
// after it. A close with no matching open tag is dropped.
func (s *sanitizer) close(name string) {
	for i := len(s.open) - 1; i >= 0; i-- {
		if s.open[i].name != name {
			continue
		}
		for j := len(s.open) - 1; j >= i; j-- {
			s.writeClose(s.open[j].emit)
		}
		s.open = s.open[:i]
		return
	}
	if s.findings != nil {
		s.findings.Unbalanced++
	}
}

func (s *sanitizer) closeAll() {
	for i := len(s.open) - 1; i >= 0; i-- {
		s.writeClose(s.open[i].emit)
	}
	s.open = s.open[:0]
}

func (s *sanitizer) writeClose(name string) {
	s.out.WriteString("</")
	s.out.WriteString(name)
	s.out.WriteByte('>')
}

func (s *sanitizer) writeAttrs(tok html.Token) {
	if tok.DataAtom == atom.A {
		if raw, ok := attr(tok, "href"); ok {
			href := filterHref(raw)
			if href != "" {
				s.out.WriteString(` href="`)
				s.out.WriteString(attrEscaper.Replace(href))
				s.out.WriteString(`" target="_blank" rel="noreferrer noopener"`)
			} else {
				s.noteHref(raw)
			}
		}
	}

	var decls []string
	if tok.DataAtom == atom.Font {
		decls = append(decls, s.legacyFontStyles(tok)...)
	}
	if raw, ok := attr(tok, "style"); ok {
		decls = append(decls, s.filterStyle(raw)...)
	}
	if len(decls) > 0 {
		s.out.WriteString(` style="`)
		s.out.WriteString(attrEscaper.Replace(strings.Join(decls, "; ")))
		s.out.WriteByte('"')
	}
	s.noteAttrs(tok)
}

// attr returns the first value of key; later duplicates are ignored.
func attr(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
