package mdhtml

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"pkt.systems/mdhtml/internal/grammar"
)

// Renderer maps each Markdown construct to HTML. Arguments are already
// rendered HTML except where noted. To change a single construct, embed
// *HTMLRenderer in a struct, override the method and pass the struct to
// WithRenderer.
type Renderer interface {
	// Code renders a code block. code is raw unless escaped is set.
	Code(code, lang string, escaped bool) string
	Blockquote(quote string) string
	// HTML passes a raw HTML block through.
	HTML(html string) string
	// Heading renders a heading. raw is the unrendered heading text.
	Heading(text string, level int, raw string) string
	Hr() string
	List(body string, ordered bool) string
	ListItem(text string) string
	Paragraph(text string) string
	Table(header, body string) string
	TableRow(content string) string
	TableCell(content string, flags CellFlags) string
	Strong(text string) string
	Em(text string) string
	Codespan(text string) string
	Br() string
	Del(text string) string
	// Link renders an anchor. href and title are escaped.
	Link(href, title, text string) string
	// Image renders an image. href, title and text are escaped.
	Image(href, title, text string) string
	Text(text string) string
}

// CellFlags describes a table cell.
type CellFlags struct {
	Header bool
	Align  Align
}

var (
	nonWordRun  = grammar.MustCompile(`[^\w]+`, regexp2.None)
	nonProtocol = grammar.MustCompile(`[^\w:]`, regexp2.None)
)

// HTMLRenderer is the default Renderer.
type HTMLRenderer struct {
	cfg config
}

var _ Renderer = (*HTMLRenderer)(nil)

// NewHTMLRenderer returns the default renderer. It reads WithXHTML,
// WithSanitize, WithExternalLinks, WithHighlight, WithLangPrefix,
// WithHeaderPrefix and the attribute options.
func NewHTMLRenderer(opts ...Option) *HTMLRenderer {
	return &HTMLRenderer{cfg: newConfig(opts)}
}

// Code renders a <pre><code> block with a language class. A highlight hook
// that changes the code marks it as already escaped.
func (r *HTMLRenderer) Code(code, lang string, escaped bool) string {
	if r.cfg.highlight != nil {
		if out := r.cfg.highlight(code, lang); out != code {
			code = out
			escaped = true
		}
	}
	if !escaped {
		code = escape(code, true)
	}
	return "<pre" + attributes(r.cfg.preAttrs) + "><code class='" + r.cfg.langPrefix + escape(lang, true) + "'>" +
		code + "\n</code></pre>\n"
}

// Blockquote wraps rendered blocks in <blockquote>.
func (r *HTMLRenderer) Blockquote(quote string) string {
	return "<blockquote>\n" + quote + "</blockquote>\n"
}

// HTML returns html unchanged.
func (r *HTMLRenderer) HTML(html string) string {
	return html
}

// Heading renders <h1> to <h6>. The id is the header prefix plus raw,
// lower-cased, with every run of non-word characters replaced by a hyphen.
func (r *HTMLRenderer) Heading(text string, level int, raw string) string {
	n := strconv.Itoa(level)
	id := r.cfg.headerPrefix + grammar.Replace(nonWordRun, lower(raw), "-")
	return "<h" + n + " id='" + id + "'>" + text + "</h" + n + ">\n"
}

// Hr renders a horizontal rule.
func (r *HTMLRenderer) Hr() string {
	if r.cfg.xhtml {
		return "<hr/>\n"
	}
	return "<hr>\n"
}

// List wraps rendered items in <ul> or <ol>.
func (r *HTMLRenderer) List(body string, ordered bool) string {
	tag := "ul"
	if ordered {
		tag = "ol"
	}
	return "<" + tag + ">\n" + body + "</" + tag + ">\n"
}

func (r *HTMLRenderer) ListItem(text string) string {
	return "<li>" + text + "</li>\n"
}

func (r *HTMLRenderer) Paragraph(text string) string {
	return "<p>" + text + "</p>\n"
}

// Table renders the header and body rows with the table attributes.
func (r *HTMLRenderer) Table(header, body string) string {
	return "<table" + attributes(r.cfg.tableAttrs) + ">\n<thead>\n" + header + "</thead>\n<tbody>\n" + body + "</tbody>\n</table>\n"
}

func (r *HTMLRenderer) TableRow(content string) string {
	return "<tr>\n" + content + "</tr>\n"
}

// TableCell renders a <th> or <td>. Aligned cells get an inline
// text-align style.
func (r *HTMLRenderer) TableCell(content string, flags CellFlags) string {
	tag := "td"
	if flags.Header {
		tag = "th"
	}
	if align := flags.Align.String(); align != "" {
		return "<" + tag + " style='text-align:" + align + "'>" + content + "</" + tag + ">\n"
	}
	return "<" + tag + ">" + content + "</" + tag + ">\n"
}

func (r *HTMLRenderer) Strong(text string) string {
	return "<strong>" + text + "</strong>"
}

func (r *HTMLRenderer) Em(text string) string {
	return "<em>" + text + "</em>"
}

// Codespan renders inline code. text is already escaped.
func (r *HTMLRenderer) Codespan(text string) string {
	return "<code>" + text + "</code>"
}

// Br renders a hard line break.
func (r *HTMLRenderer) Br() string {
	if r.cfg.xhtml {
		return "<br/>"
	}
	return "<br>"
}

// Del renders strikethrough text.
func (r *HTMLRenderer) Del(text string) string {
	return "<del>" + text + "</del>"
}

// Link renders an anchor. Absolute http(s) and protocol-relative links open
// in a new window when external links are enabled. In sanitize mode a
// script protocol renders nothing.
func (r *HTMLRenderer) Link(href, title, text string) string {
	if r.cfg.sanitize && !safeProtocol(href) {
		return ""
	}
	var b strings.Builder
	b.WriteString("<a href='")
	b.WriteString(href)
	b.WriteByte('\'')
	if title != "" {
		b.WriteString(" title='")
		b.WriteString(title)
		b.WriteByte('\'')
	}
	if r.cfg.externalLinks && (strings.HasPrefix(href, "//") || hasPrefixFold(href, "http")) {
		b.WriteString(" target='_blank' rel='nofollow'")
	}
	b.WriteByte('>')
	b.WriteString(text)
	b.WriteString("</a>")
	return b.String()
}

// Image renders an <img> with the image attributes. In sanitize mode a
// script protocol renders nothing.
func (r *HTMLRenderer) Image(href, title, text string) string {
	if r.cfg.sanitize && !safeProtocol(href) {
		return ""
	}
	var b strings.Builder
	b.WriteString("<img src='")
	b.WriteString(href)
	b.WriteString("' alt='")
	b.WriteString(text)
	b.WriteByte('\'')
	b.WriteString(attributes(r.cfg.imageAttrs))
	if title != "" {
		b.WriteString(" title='")
		b.WriteString(title)
		b.WriteByte('\'')
	}
	if r.cfg.xhtml {
		b.WriteString("/>")
	} else {
		b.WriteByte('>')
	}
	return b.String()
}

// Text returns plain text as is; it is already escaped.
func (r *HTMLRenderer) Text(text string) string {
	return text
}

// safeProtocol reports whether href is free of script protocols once
// entities and percent escapes are decoded. Undecodable hrefs are unsafe.
func safeProtocol(href string) bool {
	decoded, err := unescape(href)
	if err != nil {
		return false
	}
	decoded, err = url.PathUnescape(decoded)
	if err != nil {
		return false
	}
	prot := lower(grammar.Replace(nonProtocol, decoded, ""))
	return !strings.HasPrefix(prot, "javascript:") && !strings.HasPrefix(prot, "vbscript:")
}

// attributes renders attrs as ` key='value'` pairs sorted by key.
func attributes(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, k := range sortedKeys(attrs) {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteString("='")
		b.WriteString(attrs[k])
		b.WriteByte('\'')
	}
	return b.String()
}
