package mdhtml

import (
	"log/slog"
	"strings"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/unicode/norm"

	"pkt.systems/mdhtml/internal/grammar"
)

var (
	inputNormalizer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		"\t", "    ",
		"\u00a0", " ",
		"\u2424", "\n",
	)

	blankLine    = grammar.MustCompile(`^ +$`, regexp2.Multiline)
	codeIndent   = grammar.MustCompile(`^ {4}`, regexp2.Multiline)
	quoteMarker  = grammar.MustCompile(`^ *> ?`, regexp2.Multiline)
	itemBullet   = grammar.MustCompile(`^ *([*+-]|\d+\.) +`, regexp2.None)
	looseGap     = grammar.MustCompile(`\n\n(?!\s*$)`, regexp2.None)

	cellSplit       = grammar.MustCompile(` *\| *`, regexp2.None)
	headerTrim      = grammar.MustCompile(`^ *| *\| *$`, regexp2.None)
	alignTrim       = grammar.MustCompile(`^ *|\| *$`, regexp2.None)
	rowsTrim        = grammar.MustCompile(`(?: *\| *)?\n$`, regexp2.None)
	pipelessRowTrim = grammar.MustCompile(`\n$`, regexp2.None)
	rowTrim         = grammar.MustCompile(`^ *\| *| *\| *$`, regexp2.None)

	alignRight  = grammar.MustCompile(`^ *-+: *$`, regexp2.None)
	alignCenter = grammar.MustCompile(`^ *:-+: *$`, regexp2.None)
	alignLeft   = grammar.MustCompile(`^ *:-+ *$`, regexp2.None)
)

// Lexer turns Markdown into a TokenStream. A Lexer only holds configuration
// and may be shared between goroutines.
type Lexer struct {
	cfg   config
	rules *grammar.Block
}

// NewLexer returns a lexer. It reads WithGFM, WithTables, WithPedantic,
// WithSanitize, WithSanitizer, WithSmartLists, WithMaxNesting,
// WithNormalizeUnicode and WithLogger.
func NewLexer(opts ...Option) *Lexer {
	cfg := newConfig(opts)
	variant := grammar.SelectBlock(cfg.gfm, cfg.tables)
	cfg.logger.Debug("lexer grammar selected", "variant", variant.String())
	return &Lexer{cfg: cfg, rules: grammar.BlockTable(variant)}
}

// Lex tokenizes src with a lexer built from opts.
func Lex(src string, opts ...Option) (*TokenStream, error) {
	return NewLexer(opts...).Lex(src)
}

// Lex tokenizes src. Blank input yields a nil stream and a nil error.
// Invalid UTF-8 sequences read as U+FFFD.
func (l *Lexer) Lex(src string) (*TokenStream, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	src = strings.ToValidUTF8(src, "\uFFFD")
	if l.cfg.normalizeUnicode {
		src = norm.NFC.String(src)
	}
	src = inputNormalizer.Replace(src)
	lx := &lexState{
		cfg:    &l.cfg,
		rules:  l.rules,
		log:    l.cfg.logger,
		stream: newTokenStream(),
	}
	if err := lx.token(src, true, 0); err != nil {
		return nil, err
	}
	return lx.stream, nil
}

// lexState is the activation record of one Lex call.
type lexState struct {
	cfg    *config
	rules  *grammar.Block
	log    *slog.Logger
	stream *TokenStream
}

func (lx *lexState) exec(rule grammar.BlockRule, src *grammar.Cursor) []string {
	caps, err := src.Exec(lx.rules.Rule(rule))
	if err != nil {
		lx.log.Debug("block rule timed out", "rule", rule.String(), "err", err)
		return nil
	}
	return caps
}

func (lx *lexState) token(text string, top bool, depth int) error {
	src := grammar.NewCursor(grammar.Replace(blankLine, text, ""))
	nested := depth >= lx.cfg.maxNesting
	if nested {
		lx.log.Debug("nesting limit reached", "depth", depth)
	}
	for !src.Done() {
		if m := lx.exec(grammar.BlockNewline, src); m != nil {
			src.Consume(m[0])
			if len(m[0]) > 1 {
				lx.stream.add(Token{Kind: TokenSpace})
			}
			if src.Done() {
				break
			}
		}

		if m := lx.exec(grammar.BlockCode, src); m != nil {
			src.Consume(m[0])
			code := grammar.Replace(codeIndent, m[0], "")
			if !lx.cfg.pedantic {
				code = strings.TrimRight(code, "\n")
			}
			lx.stream.add(Token{Kind: TokenCode, Text: code})
			continue
		}

		if m := lx.exec(grammar.BlockFences, src); m != nil {
			src.Consume(m[0])
			lx.stream.add(Token{Kind: TokenCode, Lang: m[2], Text: m[3]})
			continue
		}

		if m := lx.exec(grammar.BlockHeading, src); m != nil {
			src.Consume(m[0])
			lx.stream.add(Token{Kind: TokenHeading, Depth: len(m[1]), Text: m[2]})
			continue
		}

		if top {
			if m := lx.exec(grammar.BlockNpTable, src); m != nil {
				src.Consume(m[0])
				lx.stream.add(pipelessTable(m))
				continue
			}
		}

		if m := lx.exec(grammar.BlockLHeading, src); m != nil {
			src.Consume(m[0])
			level := 2
			if m[2] == "=" {
				level = 1
			}
			lx.stream.add(Token{Kind: TokenHeading, Depth: level, Text: m[1]})
			continue
		}

		if m := lx.exec(grammar.BlockHr, src); m != nil {
			src.Consume(m[0])
			lx.stream.add(Token{Kind: TokenHr})
			continue
		}

		if !nested {
			if m := lx.exec(grammar.BlockBlockquote, src); m != nil {
				src.Consume(m[0])
				lx.stream.add(Token{Kind: TokenBlockquoteStart})
				body := grammar.Replace(quoteMarker, m[0], "")
				// Quoted content keeps the caller's top-level state.
				if err := lx.token(body, top, depth+1); err != nil {
					return err
				}
				lx.stream.add(Token{Kind: TokenBlockquoteEnd})
				continue
			}

			if m := lx.exec(grammar.BlockList, src); m != nil {
				src.Consume(m[0])
				if err := lx.list(m, src, depth); err != nil {
					return err
				}
				continue
			}
		}

		if m := lx.exec(grammar.BlockHTML, src); m != nil {
			src.Consume(m[0])
			pre := lx.cfg.sanitizer == nil && (m[1] == "pre" || m[1] == "script" || m[1] == "style")
			kind := TokenHTML
			if lx.cfg.sanitize {
				kind = TokenParagraph
			}
			lx.stream.add(Token{Kind: kind, Pre: pre, Text: m[0]})
			continue
		}

		if top {
			if m := lx.exec(grammar.BlockDef, src); m != nil {
				src.Consume(m[0])
				lx.stream.Links[foldLabel(m[1])] = LinkRecord{Href: m[2], Title: m[3]}
				continue
			}

			if m := lx.exec(grammar.BlockPipeTable, src); m != nil {
				src.Consume(m[0])
				lx.stream.add(pipeTable(m))
				continue
			}

			if m := lx.exec(grammar.BlockParagraph, src); m != nil {
				src.Consume(m[0])
				lx.stream.add(Token{Kind: TokenParagraph, Text: strings.TrimSuffix(m[1], "\n")})
				continue
			}
		}

		if m := lx.exec(grammar.BlockText, src); m != nil {
			src.Consume(m[0])
			lx.stream.add(Token{Kind: TokenText, Text: m[0]})
			continue
		}

		return &GrammarError{Level: "block", Char: src.Peek()}
	}
	return nil
}

// list emits the tokens of a matched list. Smart-list detection may push
// items back onto src.
func (lx *lexState) list(m []string, src *grammar.Cursor, depth int) error {
	bull := m[2]
	lx.stream.add(Token{Kind: TokenListStart, Ordered: len(bull) > 1})

	items := grammar.FindAll(lx.rules.Rule(grammar.BlockItem), m[0])
	next := false
	l := len(items)
	for i := 0; i < l; i++ {
		item := items[i]

		// Drop the bullet, then outdent continuation lines by its width.
		space := len(item)
		item = grammar.Replace(itemBullet, item, "")
		if strings.Contains(item, "\n ") {
			space -= len(item)
			if lx.cfg.pedantic {
				space = 4
			}
			item = outdent(item, space)
		}

		// A change of bullet family ends the list; the remaining items are
		// lexed again after it.
		if lx.cfg.smartLists && i != l-1 {
			b := bull
			if bcap := lx.execText(grammar.BlockBullet, items[i+1]); bcap != nil {
				b = bcap[0]
			}
			if bull != b && !(len(bull) > 1 && len(b) > 1) {
				src.Prepend(strings.Join(items[i+1:], "\n"))
				i = l - 1
			}
		}

		loose := next || grammar.IsMatch(looseGap, item)
		if i != l-1 {
			next = strings.HasSuffix(item, "\n")
			if !loose {
				loose = next
			}
		}

		kind := TokenListItemStart
		if loose {
			kind = TokenLooseItemStart
		}
		lx.stream.add(Token{Kind: kind})
		if err := lx.token(item, false, depth+1); err != nil {
			return err
		}
		lx.stream.add(Token{Kind: TokenListItemEnd})
	}

	lx.stream.add(Token{Kind: TokenListEnd})
	return nil
}

func (lx *lexState) execText(rule grammar.BlockRule, text string) []string {
	return lx.exec(rule, grammar.NewCursor(text))
}

// outdent removes up to n leading spaces from every line of s.
func outdent(s string, n int) string {
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for line := range strings.SplitSeq(s, "\n") {
		if !first {
			b.WriteByte('\n')
		}
		first = false
		i := 0
		for i < n && i < len(line) && line[i] == ' ' {
			i++
		}
		b.WriteString(line[i:])
	}
	return b.String()
}

func pipelessTable(m []string) Token {
	tok := Token{
		Kind:   TokenTable,
		Header: grammar.Split(cellSplit, grammar.Replace(headerTrim, m[1], "")),
		Align:  parseAlign(m[2]),
	}
	rows := strings.Split(grammar.Replace(pipelessRowTrim, m[3], ""), "\n")
	tok.Cells = make([][]string, len(rows))
	for i, row := range rows {
		tok.Cells[i] = grammar.Split(cellSplit, row)
	}
	return tok
}

func pipeTable(m []string) Token {
	tok := Token{
		Kind:   TokenTable,
		Header: grammar.Split(cellSplit, grammar.Replace(headerTrim, m[1], "")),
		Align:  parseAlign(m[2]),
	}
	rows := strings.Split(grammar.Replace(rowsTrim, m[3], ""), "\n")
	tok.Cells = make([][]string, len(rows))
	for i, row := range rows {
		tok.Cells[i] = grammar.Split(cellSplit, grammar.Replace(rowTrim, row, ""))
	}
	return tok
}

func parseAlign(row string) []Align {
	cells := grammar.Split(cellSplit, grammar.Replace(alignTrim, row, ""))
	align := make([]Align, len(cells))
	for i, cell := range cells {
		switch {
		case grammar.IsMatch(alignRight, cell):
			align[i] = AlignRight
		case grammar.IsMatch(alignCenter, cell):
			align[i] = AlignCenter
		case grammar.IsMatch(alignLeft, cell):
			align[i] = AlignLeft
		}
	}
	return align
}
