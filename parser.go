package mdhtml

import (
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
)

// Parser renders a TokenStream to HTML. A Parser only holds configuration
// and may be shared between goroutines as long as its Renderer is.
type Parser struct {
	cfg      config
	renderer Renderer
}

// NewParser returns a parser. It reads WithGFM, WithBreaks, WithPedantic,
// WithSanitize, WithSanitizer, WithMangle, WithSmartypants, WithRandom,
// WithRenderer and WithLogger; without WithRenderer it renders with an
// HTMLRenderer built from the same options.
func NewParser(opts ...Option) *Parser {
	cfg := newConfig(opts)
	renderer := cfg.renderer
	if renderer == nil {
		renderer = &HTMLRenderer{cfg: cfg}
	}
	return &Parser{cfg: cfg, renderer: renderer}
}

// Parse renders ts with a parser built from opts.
func Parse(ts *TokenStream, opts ...Option) (string, bool, error) {
	return NewParser(opts...).Parse(ts)
}

// Parse renders ts. A nil stream yields ok == false: there was no input,
// which is distinct from an empty document.
func (p *Parser) Parse(ts *TokenStream) (html string, ok bool, err error) {
	if ts == nil {
		return "", false, nil
	}
	ps := &parseState{
		renderer: p.renderer,
		pedantic: p.cfg.pedantic,
		inline:   newInlineLexer(&p.cfg, ts.Links, p.renderer),
		cursor:   arraystack.New(),
	}
	for i := len(ts.Tokens) - 1; i >= 0; i-- {
		ps.cursor.Push(&ts.Tokens[i])
	}
	var out strings.Builder
	for tok := ps.next(); tok != nil; tok = ps.next() {
		s, err := ps.tok(tok)
		if err != nil {
			return "", false, err
		}
		out.WriteString(s)
	}
	return out.String(), true, nil
}

// parseState is the activation record of one Parse call.
type parseState struct {
	renderer Renderer
	pedantic bool
	inline   *inlineLexer
	cursor   *arraystack.Stack
}

func (ps *parseState) next() *Token {
	v, ok := ps.cursor.Pop()
	if !ok {
		return nil
	}
	return v.(*Token)
}

func (ps *parseState) peek() *Token {
	v, ok := ps.cursor.Peek()
	if !ok {
		return nil
	}
	return v.(*Token)
}

// text joins tok with the text tokens that directly follow it and renders
// the run as inline content.
func (ps *parseState) text(tok *Token) (string, error) {
	body := tok.Text
	for next := ps.peek(); next != nil && next.Kind == TokenText; next = ps.peek() {
		ps.next()
		body += "\n" + next.Text
	}
	return ps.inline.output(body)
}

// until renders tokens until the end marker, passing each to render.
func (ps *parseState) until(open, end TokenKind, render func(*Token) (string, error)) (string, error) {
	var body strings.Builder
	for {
		tok := ps.next()
		if tok == nil {
			return "", &StreamError{Kind: open, Reason: "missing " + end.String()}
		}
		if tok.Kind == end {
			return body.String(), nil
		}
		s, err := render(tok)
		if err != nil {
			return "", err
		}
		body.WriteString(s)
	}
}

func (ps *parseState) tok(tok *Token) (string, error) {
	r := ps.renderer
	switch tok.Kind {
	case TokenSpace:
		return "", nil
	case TokenHr:
		return r.Hr(), nil
	case TokenHeading:
		text, err := ps.inline.output(tok.Text)
		if err != nil {
			return "", err
		}
		return r.Heading(text, tok.Depth, tok.Text), nil
	case TokenCode:
		return r.Code(tok.Text, tok.Lang, false), nil
	case TokenTable:
		return ps.table(tok)
	case TokenBlockquoteStart:
		body, err := ps.until(tok.Kind, TokenBlockquoteEnd, ps.tok)
		if err != nil {
			return "", err
		}
		return r.Blockquote(body), nil
	case TokenListStart:
		body, err := ps.until(tok.Kind, TokenListEnd, ps.tok)
		if err != nil {
			return "", err
		}
		return r.List(body, tok.Ordered), nil
	case TokenListItemStart:
		body, err := ps.until(tok.Kind, TokenListItemEnd, func(t *Token) (string, error) {
			if t.Kind == TokenText {
				return ps.text(t)
			}
			return ps.tok(t)
		})
		if err != nil {
			return "", err
		}
		return r.ListItem(body), nil
	case TokenLooseItemStart:
		body, err := ps.until(tok.Kind, TokenListItemEnd, ps.tok)
		if err != nil {
			return "", err
		}
		return r.ListItem(body), nil
	case TokenHTML:
		html := tok.Text
		if !tok.Pre && !ps.pedantic {
			var err error
			if html, err = ps.inline.output(tok.Text); err != nil {
				return "", err
			}
		}
		return r.HTML(html), nil
	case TokenParagraph:
		text, err := ps.inline.output(tok.Text)
		if err != nil {
			return "", err
		}
		return r.Paragraph(text), nil
	case TokenText:
		text, err := ps.text(tok)
		if err != nil {
			return "", err
		}
		return r.Paragraph(text), nil
	}
	return "", &StreamError{Kind: tok.Kind, Reason: "unexpected token"}
}

func (ps *parseState) table(tok *Token) (string, error) {
	r := ps.renderer
	alignAt := func(i int) Align {
		if i < len(tok.Align) {
			return tok.Align[i]
		}
		return AlignNone
	}

	var cells strings.Builder
	for i, h := range tok.Header {
		text, err := ps.inline.output(h)
		if err != nil {
			return "", err
		}
		cells.WriteString(r.TableCell(text, CellFlags{Header: true, Align: alignAt(i)}))
	}
	header := r.TableRow(cells.String())

	var body strings.Builder
	for _, row := range tok.Cells {
		cells.Reset()
		for j, cell := range row {
			text, err := ps.inline.output(cell)
			if err != nil {
				return "", err
			}
			cells.WriteString(r.TableCell(text, CellFlags{Align: alignAt(j)}))
		}
		body.WriteString(r.TableRow(cells.String()))
	}
	return r.Table(header, body.String()), nil
}
