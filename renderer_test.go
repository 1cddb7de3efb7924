package mdhtml

import (
	"strings"
	"testing"
)

func TestRendererOptions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want string
	}{
		{name: "xhtml hr", src: "---", opts: []Option{WithXHTML(true)}, want: "<hr/>\n"},
		{name: "xhtml br", src: "a  \nb", opts: []Option{WithXHTML(true)}, want: "<p>a<br/>b</p>\n"},
		{name: "xhtml image", src: "![a](/i)", opts: []Option{WithXHTML(true)}, want: "<p><img src='/i' alt='a'/></p>\n"},
		{name: "header prefix", src: "## Über Straße!", opts: []Option{WithHeaderPrefix("doc-")}, want: "<h2 id='doc-über-straße-'>Über Straße!</h2>\n"},
		{name: "lang prefix", src: "```go\nx\n```", opts: []Option{WithLangPrefix("language-")}, want: "<pre><code class='language-go'>x\n</code></pre>\n"},
		{name: "external links off", src: "[a](http://x.io)", opts: []Option{WithExternalLinks(false)}, want: "<p><a href='http://x.io'>a</a></p>\n"},
		{name: "protocol relative link", src: "[a](//x.io)", want: "<p><a href='//x.io' target='_blank' rel='nofollow'>a</a></p>\n"},
		{name: "table attributes", src: "| a |\n|---|\n| 1 |\n", opts: []Option{WithTableAttributes(map[string]string{"class": "t", "border": "1"})},
			want: "<table border='1' class='t'>\n<thead>\n<tr>\n<th>a</th>\n</tr>\n</thead>\n<tbody>\n<tr>\n<td>1</td>\n</tr>\n</tbody>\n</table>\n"},
		{name: "pre attributes", src: "    x", opts: []Option{WithPreAttributes(map[string]string{"data-x": "1"})}, want: "<pre data-x='1'><code class='lang-'>x\n</code></pre>\n"},
		{name: "image attributes", src: "![a](/i \"T\")", opts: []Option{WithImageAttributes(map[string]string{"width": "10"})}, want: "<p><img src='/i' alt='a' width='10' title='T'></p>\n"},
		{name: "pre block passes through", src: "<pre>\n*x* https://a.io\n</pre>\n", want: "<pre>\n*x* https://a.io\n</pre>\n"},
		{name: "html block is inline lexed", src: "<div>*x*</div>", want: "<div><em>x</em></div>"},
		{name: "pedantic html block is raw", src: "<div>*x*</div>", opts: []Option{WithPedantic(true)}, want: "<div>*x*</div>"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := convert(t, tc.src, tc.opts...); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestRendererSanitize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts []Option
		want string
	}{
		{name: "javascript link", src: "[x](javascript:void)", want: "<p></p>\n"},
		{name: "entity encoded scheme", src: "[x](&#106;avascript:alert)", want: "<p></p>\n"},
		{name: "percent encoded scheme", src: "[x](java%73cript:alert)", want: "<p></p>\n"},
		{name: "vbscript link", src: "a [x](VBScript:msg) b", want: "<p>a  b</p>\n"},
		{name: "safe link", src: "[x](/ok)", want: "<p><a href='/ok'>x</a></p>\n"},
		{name: "javascript image", src: "![x](javascript:alert)", want: "<p></p>\n"},
		{name: "safe image", src: "![x](/i.png)", want: "<p><img src='/i.png' alt='x'></p>\n"},
		{name: "html block escaped", src: "<div>x</div>", want: "<p>&lt;div&gt;x&lt;/div&gt;</p>\n"},
		{name: "inline tag escaped", src: "a <b>x</b>", want: "<p>a &lt;b&gt;x&lt;/b&gt;</p>\n"},
		{name: "sanitizer hook", src: "a <b>x</b>", opts: []Option{WithSanitizer(strings.ToUpper)}, want: "<p>a <B>x</B></p>\n"},
		{name: "sanitizer block", src: "<div>x</div>", opts: []Option{WithSanitizer(strings.ToUpper)}, want: "<p><DIV>x</DIV></p>\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opts := append([]Option{WithSanitize(true)}, tc.opts...)
			if got := convert(t, tc.src, opts...); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSafeProtocol(t *testing.T) {
	tests := []struct {
		href string
		want bool
	}{
		{href: "/path", want: true},
		{href: "https://example.com", want: true},
		{href: "mailto:a@b.c", want: true},
		{href: "javascript:alert(1)", want: false},
		{href: "JavaScript:alert(1)", want: false},
		{href: "java script:alert(1)", want: false},
		{href: "&#x6A;avascript:x", want: false},
		{href: "&#106;avascript:x", want: false},
		{href: "java&colon;script", want: true},
		{href: "javascript&colon;x", want: false},
		{href: "vbscript:x", want: false},
		{href: "&#xZZ;", want: false},
		{href: "%zz", want: false},
	}
	for _, tc := range tests {
		if got := safeProtocol(tc.href); got != tc.want {
			t.Fatalf("safeProtocol(%q) = %v, want %v", tc.href, got, tc.want)
		}
	}
}

func TestRendererHighlight(t *testing.T) {
	bold := func(code, lang string) string { return "<b>" + code + "</b>" }
	got := convert(t, "```go\nx<y\n```", WithHighlight(bold))
	if want := "<pre><code class='lang-go'><b>x<y</b>\n</code></pre>\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	identity := func(code, lang string) string { return code }
	got = convert(t, "```go\nx<y\n```", WithHighlight(identity))
	if want := "<pre><code class='lang-go'>x&lt;y\n</code></pre>\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRendererCells(t *testing.T) {
	r := NewHTMLRenderer()
	if got := r.TableCell("a", CellFlags{Header: true, Align: AlignRight}); got != "<th style='text-align:right'>a</th>\n" {
		t.Fatalf("unexpected header cell %q", got)
	}
	if got := r.TableCell("b", CellFlags{}); got != "<td>b</td>\n" {
		t.Fatalf("unexpected cell %q", got)
	}
	if got := r.Code("<x>", "", true); got != "<pre><code class='lang-'><x>\n</code></pre>\n" {
		t.Fatalf("expected pre-escaped code to pass through, got %q", got)
	}
	if got := r.Heading("<em>A</em> b", 3, "*A* b"); got != "<h3 id='-a-b'><em>A</em> b</h3>\n" {
		t.Fatalf("unexpected heading %q", got)
	}
}

func TestAttributesAreSorted(t *testing.T) {
	if got := attributes(map[string]string{"z": "1", "a": "2", "m": "3"}); got != " a='2' m='3' z='1'" {
		t.Fatalf("unexpected attributes %q", got)
	}
	if got := attributes(nil); got != "" {
		t.Fatalf("expected no attributes, got %q", got)
	}
}

// shoutingHeadings overrides a single construct of the default renderer.
type shoutingHeadings struct {
	*HTMLRenderer
}

func (s shoutingHeadings) Heading(text string, level int, raw string) string {
	return "<h" + string(rune('0'+level)) + ">" + strings.ToUpper(text) + "</h" + string(rune('0'+level)) + ">\n"
}

func TestCustomRenderer(t *testing.T) {
	r := shoutingHeadings{NewHTMLRenderer()}
	got := convert(t, "# hi\n\npara", WithRenderer(r))
	if want := "<h1>HI</h1>\n<p>para</p>\n"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
