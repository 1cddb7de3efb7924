package mdhtml

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/reflow/indent"
)

// TokenKind identifies a block-level token.
type TokenKind uint8

const (
	// TokenSpace marks a run of two or more blank lines.
	TokenSpace TokenKind = iota
	// TokenHeading is an ATX or setext heading.
	TokenHeading
	// TokenCode is an indented or fenced code block.
	TokenCode
	// TokenHr is a horizontal rule.
	TokenHr
	// TokenHTML is a raw HTML block.
	TokenHTML
	// TokenParagraph is a top-level paragraph.
	TokenParagraph
	// TokenText is a single line of text inside a container.
	TokenText
	// TokenTable is a pipe table.
	TokenTable
	TokenBlockquoteStart
	TokenBlockquoteEnd
	TokenListStart
	TokenListEnd
	// TokenListItemStart opens a tight list item.
	TokenListItemStart
	// TokenLooseItemStart opens a loose list item.
	TokenLooseItemStart
	// TokenListItemEnd closes either kind of list item.
	TokenListItemEnd
)

var tokenKindNames = [...]string{
	TokenSpace:           "space",
	TokenHeading:         "heading",
	TokenCode:            "code",
	TokenHr:              "hr",
	TokenHTML:            "html",
	TokenParagraph:       "paragraph",
	TokenText:            "text",
	TokenTable:           "table",
	TokenBlockquoteStart: "blockquote_start",
	TokenBlockquoteEnd:   "blockquote_end",
	TokenListStart:       "list_start",
	TokenListEnd:         "list_end",
	TokenListItemStart:   "list_item_start",
	TokenLooseItemStart:  "loose_item_start",
	TokenListItemEnd:     "list_item_end",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Align is the alignment of a table column.
type Align uint8

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// String returns the CSS text-align value, or "" for AlignNone.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return ""
	}
}

// Token is one entry of a token stream. Only the fields relevant to Kind are
// set.
type Token struct {
	Kind TokenKind
	// Text is the raw text of headings, code, html, paragraph and text tokens.
	Text string
	// Depth is the heading level, 1 to 6.
	Depth int
	// Lang is the fenced code language, if any.
	Lang string
	// Pre marks html blocks (and sanitized html paragraphs) that are emitted
	// verbatim.
	Pre bool
	// Ordered reports a numbered list.
	Ordered bool
	Header  []string
	Align   []Align
	Cells   [][]string
}

// LinkRecord is the target of a link reference definition.
type LinkRecord struct {
	Href  string
	Title string
}

// TokenStream is the output of Lex: the ordered tokens of a document and the
// link reference definitions found anywhere in it.
//
// Start tokens are always balanced by their end token later in the stream.
// Link labels are stored lower-cased; a later definition of the same label
// replaces an earlier one.
type TokenStream struct {
	Tokens []Token
	Links  map[string]LinkRecord
}

func newTokenStream() *TokenStream {
	return &TokenStream{Links: make(map[string]LinkRecord)}
}

// Len returns the number of tokens.
func (ts *TokenStream) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.Tokens)
}

// Link looks up a definition by label. The label is case-folded.
func (ts *TokenStream) Link(label string) (LinkRecord, bool) {
	if ts == nil {
		return LinkRecord{}, false
	}
	rec, ok := ts.Links[foldLabel(label)]
	return rec, ok
}

func (ts *TokenStream) add(tok Token) {
	ts.Tokens = append(ts.Tokens, tok)
}

// Dump writes a human-readable listing of the stream, one token per line,
// indented by container depth. Lines are cut to width display columns when
// width is positive.
func (ts *TokenStream) Dump(w io.Writer, width int) error {
	if ts == nil {
		return nil
	}
	depth := 0
	for i := range ts.Tokens {
		tok := &ts.Tokens[i]
		switch tok.Kind {
		case TokenBlockquoteEnd, TokenListEnd, TokenListItemEnd:
			if depth > 0 {
				depth--
			}
		}
		line := indent.String(describeToken(tok), uint(depth*2))
		if width > 0 {
			line = truncateWithEllipsis(line, width)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
		switch tok.Kind {
		case TokenBlockquoteStart, TokenListStart, TokenListItemStart, TokenLooseItemStart:
			depth++
		}
	}
	if len(ts.Links) == 0 {
		return nil
	}
	for _, label := range sortedKeys(ts.Links) {
		rec := ts.Links[label]
		line := fmt.Sprintf("link [%s] %s", label, rec.Href)
		if rec.Title != "" {
			line += " " + strconv.Quote(rec.Title)
		}
		if width > 0 {
			line = truncateWithEllipsis(line, width)
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return fmt.Errorf("dump: %w", err)
		}
	}
	return nil
}

func describeToken(tok *Token) string {
	var b strings.Builder
	b.WriteString(tok.Kind.String())
	switch tok.Kind {
	case TokenHeading:
		fmt.Fprintf(&b, " depth=%d %q", tok.Depth, tok.Text)
	case TokenCode:
		if tok.Lang != "" {
			fmt.Fprintf(&b, " lang=%s", tok.Lang)
		}
		fmt.Fprintf(&b, " %q", tok.Text)
	case TokenHTML, TokenParagraph:
		if tok.Pre {
			b.WriteString(" pre")
		}
		fmt.Fprintf(&b, " %q", tok.Text)
	case TokenText:
		fmt.Fprintf(&b, " %q", tok.Text)
	case TokenListStart:
		if tok.Ordered {
			b.WriteString(" ordered")
		}
	case TokenTable:
		aligns := make([]string, len(tok.Align))
		for i, a := range tok.Align {
			aligns[i] = a.String()
			if aligns[i] == "" {
				aligns[i] = "-"
			}
		}
		fmt.Fprintf(&b, " cols=%d rows=%d align=[%s]", len(tok.Header), len(tok.Cells), strings.Join(aligns, " "))
	}
	return b.String()
}
