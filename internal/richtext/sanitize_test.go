package richtext_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/sipsociety/sipcms/internal/richtext"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "paragraph becomes trailing line break",
			input:    `<p>Hello <b>world</b></p>`,
			expected: `Hello <b>world</b><br />`,
		},
		{
			name:     "legacy font tag becomes styled span",
			input:    `<font color="#ff0000" size="4">Hi</font>`,
			expected: `<span style="color: #ff0000; font-size: 18px">Hi</span>`,
		},
		{
			name:     "javascript href removed with no target or rel",
			input:    `<a href="javascript:alert(1)">click</a>`,
			expected: `<a>click</a>`,
		},
		{
			name:     "www href promoted to https",
			input:    `<a href="www.example.com">go</a>`,
			expected: `<a href="https://www.example.com" target="_blank" rel="noreferrer noopener">go</a>`,
		},
		{
			name:     "div opening dropped before style is read",
			input:    `<div style="color:red;display:none">x</div>`,
			expected: `x<br />`,
		},
		{
			name:     "disallowed style property dropped",
			input:    `<span style="color: blue; position: absolute">x</span>`,
			expected: `<span style="color: blue">x</span>`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "plain text unchanged",
			input:    "Fresh brews & cold tea, daily!",
			expected: "Fresh brews & cold tea, daily!",
		},
		{
			name:     "entities in text unchanged",
			input:    "Tea &amp; cake &lt;3",
			expected: "Tea &amp; cake &lt;3",
		},
		{
			name:     "br variants canonicalized",
			input:    `a<br>b<BR/>c<br   />d<br class="x">e</br>`,
			expected: `a<br />b<br />c<br />d<br />e<br />`,
		},
		{
			name:     "uppercase block tags",
			input:    `<DIV class="row"><P>one</P></DIV>`,
			expected: `one<br /><br />`,
		},
		{
			name:     "unknown tags stripped, text kept",
			input:    `<section><h1>Menu</h1><marquee>Latte</marquee></section>`,
			expected: `MenuLatte`,
		},
		{
			name:     "script wrapper stripped and inner markup filtered",
			input:    `<script><img src=x onerror=alert(1)>hi</script>`,
			expected: `hi`,
		},
		{
			name:     "style element does not hide following tags",
			input:    `<style>b{}</style><b>bold</b>`,
			expected: `b{}<b>bold</b>`,
		},
		{
			name:     "event handler attributes dropped",
			input:    `<b onclick="steal()">x</b>`,
			expected: `<b>x</b>`,
		},
		{
			name:     "comments dropped",
			input:    `a<!-- <b>hidden</b> -->b`,
			expected: `ab`,
		},
		{
			name:     "greater-than inside quoted attribute",
			input:    `<a title="a>b" href="/menu">menu</a>`,
			expected: `<a href="/menu" target="_blank" rel="noreferrer noopener">menu</a>`,
		},
		{
			name:     "single quoted and bare href values",
			input:    `<a href='mailto:hi@sip.example'>m</a><a href=tel:+15550100>t</a>`,
			expected: `<a href="mailto:hi@sip.example" target="_blank" rel="noreferrer noopener">m</a><a href="tel:+15550100" target="_blank" rel="noreferrer noopener">t</a>`,
		},
		{
			name:     "fragment href allowed",
			input:    `<a href="#hours">hours</a>`,
			expected: `<a href="#hours" target="_blank" rel="noreferrer noopener">hours</a>`,
		},
		{
			name:     "entity encoded javascript scheme rejected",
			input:    `<a href="&#106;avascript:alert(1)">x</a>`,
			expected: `<a>x</a>`,
		},
		{
			name:     "protocol relative href rejected",
			input:    `<a href="//evil.example/">x</a>`,
			expected: `<a>x</a>`,
		},
		{
			name:     "href attribute escaped",
			input:    `<a href="/search?q=tea&amp;sort=new">s</a>`,
			expected: `<a href="/search?q=tea&amp;sort=new" target="_blank" rel="noreferrer noopener">s</a>`,
		},
		{
			name:     "style property name normalized",
			input:    `<em style="FONT-WEIGHT:700 ; color:red">x</em>`,
			expected: `<em style="font-weight: 700; color: red">x</em>`,
		},
		{
			name:     "url value rejected even for allowed property",
			input:    `<span style="color: url(javascript:alert(1)); font-style: italic">x</span>`,
			expected: `<span style="font-style: italic">x</span>`,
		},
		{
			name:     "expression value rejected",
			input:    `<span style="color: expression(alert(1))">x</span>`,
			expected: `<span>x</span>`,
		},
		{
			name:     "rgb function allowed",
			input:    `<span style="color: rgb(12, 34, 56)">x</span>`,
			expected: `<span style="color: rgb(12, 34, 56)">x</span>`,
		},
		{
			name:     "quoted font family escaped",
			input:    `<span style='font-family: "Playfair Display", serif'>x</span>`,
			expected: `<span style="font-family: &quot;Playfair Display&quot;, serif">x</span>`,
		},
		{
			name:     "legacy styles precede explicit ones",
			input:    `<font face="Georgia" style="font-weight: bold">x</font>`,
			expected: `<span style="font-family: Georgia; font-weight: bold">x</span>`,
		},
		{
			name:     "legacy size clamped high",
			input:    `<font size="9">x</font>`,
			expected: `<span style="font-size: 48px">x</span>`,
		},
		{
			name:     "legacy size clamped low",
			input:    `<font size="-2">x</font>`,
			expected: `<span style="font-size: 10px">x</span>`,
		},
		{
			name:     "legacy size with trailing garbage",
			input:    `<font size="3pt">x</font>`,
			expected: `<span style="font-size: 16px">x</span>`,
		},
		{
			name:     "legacy size not a number",
			input:    `<font size="big">x</font>`,
			expected: `<span>x</span>`,
		},
		{
			name:     "legacy color cannot smuggle declarations",
			input:    `<font color="red; position: fixed">x</font>`,
			expected: `<span>x</span>`,
		},
		{
			name:     "unclosed inline tags closed at end",
			input:    `<b><i>bold italic`,
			expected: `<b><i>bold italic</i></b>`,
		},
		{
			name:     "stray closing tags dropped",
			input:    `x</b></span>y`,
			expected: `xy`,
		},
		{
			name:     "misnested tags unwound",
			input:    `<b><i>x</b>y</i>`,
			expected: `<b><i>x</i></b>y`,
		},
		{
			name:     "font closed as span",
			input:    `<font color="blue"><u>u</u></font>`,
			expected: `<span style="color: blue"><u>u</u></span>`,
		},
		{
			name:     "dropping a tag cannot splice a new one",
			input:    `<<script>img src=x onerror=alert(1)>`,
			expected: `&lt;img src=x onerror=alert(1)>`,
		},
		{
			name:     "truncated tag at end of input dropped",
			input:    `hello <b`,
			expected: `hello `,
		},
		{
			name:     "uppercase inline tags lowercased",
			input:    `<STRONG>x</STRONG>`,
			expected: `<strong>x</strong>`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, richtext.Sanitize(tt.input))
		})
	}
}

var adversarial = []string{
	``,
	`plain`,
	`<p>Hello <b>world</b></p>`,
	`<font color="#ff0000" size="4">Hi</font>`,
	`<a href="javascript:alert(1)">click</a>`,
	`<a href="www.example.com">go</a>`,
	`<div style="color:red;display:none">x</div>`,
	`<span style="color: blue; position: absolute">x</span>`,
	`<img src=x onerror=alert(1)>`,
	`<svg><script>alert(1)</script></svg>`,
	`<a href="JaVaScRiPt:alert(1)" onmouseover="x()">x</a>`,
	`<a href=" data:text/html;base64,PHNjcmlwdD4=">x</a>`,
	`<a href="vbscript:msgbox(1)">x</a>`,
	`<span style="background-image: url(x); color: red">x</span>`,
	`<span style="color: red; -moz-binding: url(x)">x</span>`,
	`<span style="font-family: a\3b b">x</span>`,
	`<b title="a>b">x</b>`,
	`<!--<script>-->alert(1)<!---->`,
	`<iframe srcdoc="<script>alert(1)</script>"></iframe>`,
	`<textarea><b>x</b></textarea>`,
	`<title><a href="javascript:x">t</a></title>`,
	`<plaintext><i>x`,
	`<b><b><b><b>deep`,
	`</i></i><i>`,
	`<<b>>`,
	`< b>not a tag</ b>`,
	`<a/href="javascript:alert(1)">x</a>`,
	`<font face='"x" onload=y'>z</font>`,
	`<span style='color:red" onclick="x'>y</span>`,
	`<u style="text-decoration: underline wavy rgb(1,2,3)">x</u>`,
	`<br onclick=x><BR><br/>`,
	`<a href="/ok" target="_self" rel="opener">x</a>`,
	`x<?xml version="1.0"?>y<!DOCTYPE html>z`,
}

func TestSanitize_OutputStaysInsideAllowLists(t *testing.T) {
	t.Parallel()

	allowedTags := map[string]bool{"span": true, "a": true, "strong": true, "b": true, "em": true, "i": true, "u": true, "br": true}
	allowedAttrs := map[string]bool{"style": true, "href": true, "target": true, "rel": true}
	allowedProps := map[string]bool{
		"color": true, "font-size": true, "font-weight": true, "font-style": true, "font-family": true,
		"text-decoration": true, "text-decoration-line": true, "text-decoration-color": true,
		"text-decoration-style": true, "text-decoration-thickness": true,
	}
	hrefPrefixes := []string{"http:", "https:", "mailto:", "tel:", "/", "#"}

	for _, in := range adversarial {
		out := richtext.Sanitize(in)
		z := html.NewTokenizer(strings.NewReader(out))
		for {
			tt := z.Next()
			if tt == html.ErrorToken {
				break
			}
			require.NotEqual(t, html.CommentToken, tt, "input %q produced a comment: %q", in, out)
			if tt != html.StartTagToken && tt != html.EndTagToken && tt != html.SelfClosingTagToken {
				continue
			}
			tok := z.Token()
			require.True(t, allowedTags[tok.Data], "input %q produced tag %q: %q", in, tok.Data, out)
			for _, a := range tok.Attr {
				require.True(t, allowedAttrs[a.Key], "input %q produced attr %q: %q", in, a.Key, out)
				switch a.Key {
				case "href":
					lower := strings.ToLower(a.Val)
					ok := false
					for _, p := range hrefPrefixes {
						ok = ok || strings.HasPrefix(lower, p)
					}
					assert.True(t, ok, "input %q produced href %q", in, a.Val)
				case "style":
					for _, decl := range strings.Split(a.Val, "; ") {
						prop, _, found := strings.Cut(decl, ": ")
						require.True(t, found, "malformed declaration %q from %q", decl, in)
						assert.True(t, allowedProps[prop], "input %q produced style property %q", in, prop)
					}
				}
			}
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()

	for _, in := range adversarial {
		once := richtext.Sanitize(in)
		assert.Equal(t, once, richtext.Sanitize(once), "input %q", in)
		assert.True(t, richtext.IsClean(once), "input %q", in)
	}
}

func TestSanitize_ConcurrentUse(t *testing.T) {
	t.Parallel()

	want := make([]string, len(adversarial))
	for i, in := range adversarial {
		want[i] = richtext.Sanitize(in)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range adversarial {
				assert.Equal(t, want[i], richtext.Sanitize(in))
			}
		}()
	}
	wg.Wait()
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("reports removed constructs", func(t *testing.T) {
		t.Parallel()
		out, f := richtext.Analyze(`<script>x</script><span onclick="y" style="color: red; position: fixed">a</span><a href="javascript:z">b</a><!-- c --></i>`)
		assert.Equal(t, `x<span style="color: red">a</span><a>b</a>`, out)
		assert.Equal(t, []string{"script"}, f.Tags)
		assert.Equal(t, []string{"span@onclick"}, f.Attrs)
		assert.Equal(t, []string{"position"}, f.Styles)
		assert.Equal(t, []string{"javascript:z"}, f.Hrefs)
		assert.Equal(t, 1, f.Markup)
		assert.Equal(t, 1, f.Unbalanced)
		assert.False(t, f.Empty())
		assert.Equal(t, 6, f.Count())
	})

	t.Run("clean output has no findings", func(t *testing.T) {
		t.Parallel()
		clean := richtext.Sanitize(`<font color="red">a</font><a href="www.example.com">b</a>`)
		out, f := richtext.Analyze(clean)
		assert.Equal(t, clean, out)
		assert.True(t, f.Empty(), "findings: %+v", f)
	})

	t.Run("block tags are not findings", func(t *testing.T) {
		t.Parallel()
		_, f := richtext.Analyze(`<p>a</p><div>b</div>`)
		assert.True(t, f.Empty())
	})

	t.Run("tags reported once", func(t *testing.T) {
		t.Parallel()
		_, f := richtext.Analyze(`<h1>a</h1><h1>b</h1>`)
		assert.Equal(t, []string{"h1"}, f.Tags)
	})
}

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "paragraphs become lines", input: `<p>Hello <b>world</b></p><p>Again</p>`, expected: "Hello world\nAgain"},
		{name: "entities decoded", input: `Tea &amp; <i>cake</i>`, expected: "Tea & cake"},
		{name: "script wrapper text kept", input: `<script>hi</script>`, expected: "hi"},
		{name: "links reduced to text", input: `<a href="https://sip.example">Visit</a> us`, expected: "Visit us"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, richtext.PlainText(tt.input))
		})
	}
}
