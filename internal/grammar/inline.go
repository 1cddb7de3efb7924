package grammar

import (
	"github.com/dlclark/regexp2"
)

// InlineRule names an inline pattern.
type InlineRule uint8

const (
	InlineEscape InlineRule = iota
	InlineAutoLink
	InlineURL
	InlineTag
	InlineLink
	InlineRefLink
	InlineNoLink
	InlineStrong
	InlineEm
	InlineCode
	InlineBr
	InlineDel
	InlineText
	inlineRuleCount
)

var inlineRuleNames = [inlineRuleCount]string{
	InlineEscape:   "escape",
	InlineAutoLink: "autolink",
	InlineURL:      "url",
	InlineTag:      "tag",
	InlineLink:     "link",
	InlineRefLink:  "reflink",
	InlineNoLink:   "nolink",
	InlineStrong:   "strong",
	InlineEm:       "em",
	InlineCode:     "code",
	InlineBr:       "br",
	InlineDel:      "del",
	InlineText:     "text",
}

func (r InlineRule) String() string {
	if r < inlineRuleCount {
		return inlineRuleNames[r]
	}
	return "unknown"
}

// InlineVariant selects an inline grammar.
type InlineVariant uint8

const (
	// InlineBasic is classic Markdown.
	InlineBasic InlineVariant = iota
	// InlineGFM adds bare URLs, strikethrough and a wider escape set.
	InlineGFM
	// InlineGFMBreaks turns single newlines into hard breaks on top of GFM.
	InlineGFMBreaks
	// InlinePedantic requires non-space emphasis delimiters. It derives from
	// InlineBasic, not from GFM.
	InlinePedantic
)

func (v InlineVariant) String() string {
	switch v {
	case InlineBasic:
		return "basic"
	case InlineGFM:
		return "gfm"
	case InlineGFMBreaks:
		return "gfm+breaks"
	case InlinePedantic:
		return "pedantic"
	default:
		return "unknown"
	}
}

// SelectInline maps renderer flags to an inline variant. GFM wins over
// pedantic.
func SelectInline(gfm, breaks, pedantic bool) InlineVariant {
	switch {
	case gfm && breaks:
		return InlineGFMBreaks
	case gfm:
		return InlineGFM
	case pedantic:
		return InlinePedantic
	default:
		return InlineBasic
	}
}

// Inline is an immutable inline rule table. A nil rule is disabled.
type Inline struct {
	variant InlineVariant
	rules   [inlineRuleCount]*regexp2.Regexp
}

// Variant reports which variant the table implements.
func (t *Inline) Variant() InlineVariant { return t.variant }

// Rule returns the compiled pattern for r, or nil when the variant does not
// define it.
func (t *Inline) Rule(r InlineRule) *regexp2.Regexp {
	if r >= inlineRuleCount {
		return nil
	}
	return t.rules[r]
}

const (
	inlineInside = `(?:\[[^\]]*\]|[^\[\]]|\](?=[^\[]*\]))*`
	inlineHref   = `\s*<?([\s\S]*?)>?(?:\s+['"]([\s\S]*?)['"])?\s*`
	inlineEscape = `^\\([\\` + bt + `*{}\[\]()#+\-.!_>])`
	inlineBr     = `^ {2,}\n(?!\s*$)`
	inlineText   = `^[\s\S]+?(?=[\\<!\[_*` + bt + `]| {2,}\n|$)`
)

var (
	gfmInlineText = compose(inlineText).
			with(`]|`, `~]|`).
			with(`|`, `|https?:\/\/|`).
			String()
)

var basicInlineSources = map[InlineRule]string{
	InlineEscape:   inlineEscape,
	InlineAutoLink: `^<([^ >]+(@|:\/)[^ >]+)>`,
	InlineTag:      `^(?:<!--[\s\S]*?-->|<\/?\w+(?:"[^"]*"|'[^']*'|[^'">])*?>)`,
	InlineLink: compose(`^!?\[(inside)\]\(href\)`).
		with("inside", inlineInside).
		with("href", inlineHref).
		String(),
	InlineRefLink: compose(`^!?\[(inside)\]\s*\[([^\]]*)\]`).
		with("inside", inlineInside).
		String(),
	InlineNoLink: `^!?\[((?:\[[^\]]*\]|[^\[\]])*)\]`,
	InlineStrong: `^(?:__([\s\S]+?)__(?!_)|\*\*([\s\S]+?)\*\*(?!\*))`,
	InlineEm:     `^(?:\b_((?:__|[\s\S])+?)_\b|\*((?:\*\*|[\s\S])+?)\*(?!\*))`,
	InlineCode:   `^(` + bt + `+)\s*([\s\S]*?[^` + bt + `])\s*\1(?!` + bt + `)`,
	InlineBr:     inlineBr,
	InlineText:   inlineText,
}

var gfmInlineSources = map[InlineRule]string{
	InlineEscape: compose(inlineEscape).with(`])`, `~|])`).String(),
	InlineURL:    `^(https?:\/\/[^\s<]+[^<.,:;"')\]\s])`,
	InlineDel:    `^~~(?=\S)([\s\S]*?\S)~~`,
	InlineText:   gfmInlineText,
}

var breaksInlineSources = map[InlineRule]string{
	InlineBr:   compose(inlineBr).with(`{2,}`, `*`).String(),
	InlineText: compose(gfmInlineText).with(`{2,}`, `*`).String(),
}

var pedanticInlineSources = map[InlineRule]string{
	InlineStrong: `^(?:__(?=\S)([\s\S]*?\S)__(?!_)|\*\*(?=\S)([\s\S]*?\S)\*\*(?!\*))`,
	InlineEm:     `^(?:_(?=\S)([\s\S]*?\S)_(?!_)|\*(?=\S)([\s\S]*?\S)\*(?!\*))`,
}

var inlineTables = buildInlineTables()

func buildInlineTables() [4]*Inline {
	basic := deriveInline(nil, InlineBasic, basicInlineSources)
	gfm := deriveInline(basic, InlineGFM, gfmInlineSources)
	breaks := deriveInline(gfm, InlineGFMBreaks, breaksInlineSources)
	pedantic := deriveInline(basic, InlinePedantic, pedanticInlineSources)
	return [4]*Inline{basic, gfm, breaks, pedantic}
}

func deriveInline(parent *Inline, variant InlineVariant, overrides map[InlineRule]string) *Inline {
	t := &Inline{variant: variant}
	if parent != nil {
		t.rules = parent.rules
	}
	for rule, src := range overrides {
		t.rules[rule] = MustCompile(src, regexp2.None)
	}
	return t
}

// InlineTable returns the shared table for v.
func InlineTable(v InlineVariant) *Inline {
	if int(v) < len(inlineTables) {
		return inlineTables[v]
	}
	return inlineTables[InlineBasic]
}

// InlineSource returns the pattern text of rule r in variant v, or "" when the
// rule is disabled.
func InlineSource(v InlineVariant, r InlineRule) string {
	re := InlineTable(v).Rule(r)
	if re == nil {
		return ""
	}
	return re.String()
}
