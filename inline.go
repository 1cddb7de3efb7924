package mdhtml

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"pkt.systems/mdhtml/internal/grammar"
)

var (
	whitespaceRun = grammar.MustCompile(`\s+`, regexp2.None)
	openingSingle = grammar.MustCompile(`(^|[-\u2014/(\[{"\s])'`, regexp2.None)
	openingDouble = grammar.MustCompile(`(^|[-\u2014/(\[{\u2018\s])"`, regexp2.None)
)

// inlineLexer renders the spans of one leaf block. It lives for a single
// Parse call and carries the anchor state between nested spans.
type inlineLexer struct {
	cfg      *config
	rules    *grammar.Inline
	links    map[string]LinkRecord
	renderer Renderer
	log      *slog.Logger
	inLink   bool
}

func newInlineLexer(cfg *config, links map[string]LinkRecord, renderer Renderer) *inlineLexer {
	if links == nil {
		links = map[string]LinkRecord{}
	}
	return &inlineLexer{
		cfg:      cfg,
		rules:    grammar.InlineTable(grammar.SelectInline(cfg.gfm, cfg.breaks, cfg.pedantic)),
		links:    links,
		renderer: renderer,
		log:      cfg.logger,
	}
}

func (il *inlineLexer) exec(rule grammar.InlineRule, src *grammar.Cursor) []string {
	caps, err := src.Exec(il.rules.Rule(rule))
	if err != nil {
		il.log.Debug("inline rule timed out", "rule", rule.String(), "err", err)
		return nil
	}
	return caps
}

func (il *inlineLexer) output(text string) (string, error) {
	var out strings.Builder
	src := grammar.NewCursor(text)
	for !src.Done() {
		if m := il.exec(grammar.InlineEscape, src); m != nil {
			src.Consume(m[0])
			out.WriteString(m[1])
			continue
		}

		if m := il.exec(grammar.InlineAutoLink, src); m != nil {
			src.Consume(m[0])
			var text, href string
			if m[2] == "@" {
				addr := m[1]
				if r := []rune(addr); len(r) > 6 && r[6] == ':' {
					addr = string(r[7:])
				}
				text = il.mangle(addr)
				href = il.mangle("mailto:") + text
			} else {
				text = escape(m[1], false)
				href = text
			}
			out.WriteString(il.renderer.Link(href, "", text))
			continue
		}

		if !il.inLink {
			if m := il.exec(grammar.InlineURL, src); m != nil {
				src.Consume(m[0])
				text := escape(m[1], false)
				out.WriteString(il.renderer.Link(text, "", text))
				continue
			}
		}

		if m := il.exec(grammar.InlineTag, src); m != nil {
			switch {
			case !il.inLink && hasPrefixFold(m[0], "<a "):
				il.inLink = true
			case il.inLink && hasPrefixFold(m[0], "</a>"):
				il.inLink = false
			}
			src.Consume(m[0])
			switch {
			case !il.cfg.sanitize:
				out.WriteString(m[0])
			case il.cfg.sanitizer != nil:
				out.WriteString(il.cfg.sanitizer(m[0]))
			default:
				out.WriteString(escape(m[0], false))
			}
			continue
		}

		if m := il.exec(grammar.InlineLink, src); m != nil {
			src.Consume(m[0])
			il.inLink = true
			html, err := il.outputLink(m, LinkRecord{Href: m[2], Title: m[3]})
			il.inLink = false
			if err != nil {
				return "", err
			}
			out.WriteString(html)
			continue
		}

		m := il.exec(grammar.InlineRefLink, src)
		if m == nil {
			m = il.exec(grammar.InlineNoLink, src)
		}
		if m != nil {
			src.Consume(m[0])
			label := m[1]
			if len(m) > 2 && m[2] != "" {
				label = m[2]
			}
			label = grammar.Replace(whitespaceRun, label, " ")
			link, ok := il.links[foldLabel(label)]
			if !ok || link.Href == "" {
				// Undefined reference: keep the first character as text and
				// rescan from the next one.
				out.WriteByte(m[0][0])
				src.Skip(1)
				continue
			}
			il.inLink = true
			html, err := il.outputLink(m, link)
			il.inLink = false
			if err != nil {
				return "", err
			}
			out.WriteString(html)
			continue
		}

		if m := il.exec(grammar.InlineStrong, src); m != nil {
			src.Consume(m[0])
			inner, err := il.output(firstNonEmpty(m[2], m[1]))
			if err != nil {
				return "", err
			}
			out.WriteString(il.renderer.Strong(inner))
			continue
		}

		if m := il.exec(grammar.InlineEm, src); m != nil {
			src.Consume(m[0])
			inner, err := il.output(firstNonEmpty(m[2], m[1]))
			if err != nil {
				return "", err
			}
			out.WriteString(il.renderer.Em(inner))
			continue
		}

		if m := il.exec(grammar.InlineCode, src); m != nil {
			src.Consume(m[0])
			out.WriteString(il.renderer.Codespan(escape(m[2], true)))
			continue
		}

		if m := il.exec(grammar.InlineBr, src); m != nil {
			src.Consume(m[0])
			out.WriteString(il.renderer.Br())
			continue
		}

		if m := il.exec(grammar.InlineDel, src); m != nil {
			src.Consume(m[0])
			inner, err := il.output(m[1])
			if err != nil {
				return "", err
			}
			out.WriteString(il.renderer.Del(inner))
			continue
		}

		if m := il.exec(grammar.InlineText, src); m != nil {
			src.Consume(m[0])
			out.WriteString(il.renderer.Text(escape(il.smartypants(m[0]), false)))
			continue
		}

		return "", &GrammarError{Level: "inline", Char: src.Peek()}
	}
	return out.String(), nil
}

// outputLink renders a link or, for a leading '!', an image.
func (il *inlineLexer) outputLink(m []string, link LinkRecord) (string, error) {
	href := escape(link.Href, false)
	title := ""
	if link.Title != "" {
		title = escape(link.Title, false)
	}
	if m[0][0] == '!' {
		return il.renderer.Image(href, title, escape(m[1], false)), nil
	}
	text, err := il.output(m[1])
	if err != nil {
		return "", err
	}
	return il.renderer.Link(href, title, text), nil
}

// mangle writes every character of text as a decimal or hexadecimal
// character reference, picked at random per character.
func (il *inlineLexer) mangle(text string) string {
	if !il.cfg.mangle {
		return text
	}
	var b strings.Builder
	for _, r := range text {
		b.WriteString("&#")
		if il.cfg.random.Float64() > 0.5 {
			b.WriteByte('x')
			b.WriteString(strconv.FormatInt(int64(r), 16))
		} else {
			b.WriteString(strconv.Itoa(int(r)))
		}
		b.WriteByte(';')
	}
	return b.String()
}

func (il *inlineLexer) smartypants(text string) string {
	if !il.cfg.smartypants {
		return text
	}
	text = strings.ReplaceAll(text, "---", "—")
	text = strings.ReplaceAll(text, "--", "–")
	text = grammar.Replace(openingSingle, text, "$1‘")
	text = strings.ReplaceAll(text, "'", "’")
	text = grammar.Replace(openingDouble, text, "$1“")
	text = strings.ReplaceAll(text, `"`, "”")
	return strings.ReplaceAll(text, "...", "…")
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
