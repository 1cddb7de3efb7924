package grammar

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// BlockRule names a block-level pattern.
type BlockRule uint8

const (
	BlockNewline BlockRule = iota
	BlockCode
	BlockFences
	BlockHeading
	BlockNpTable
	BlockLHeading
	BlockHr
	BlockBlockquote
	BlockList
	BlockHTML
	BlockDef
	BlockPipeTable
	BlockParagraph
	BlockText
	BlockBullet
	BlockItem
	blockRuleCount
)

var blockRuleNames = [blockRuleCount]string{
	BlockNewline:    "newline",
	BlockCode:       "code",
	BlockFences:     "fences",
	BlockHeading:    "heading",
	BlockNpTable:    "nptable",
	BlockLHeading:   "lheading",
	BlockHr:         "hr",
	BlockBlockquote: "blockquote",
	BlockList:       "list",
	BlockHTML:       "html",
	BlockDef:        "def",
	BlockPipeTable:  "table",
	BlockParagraph:  "paragraph",
	BlockText:       "text",
	BlockBullet:     "bullet",
	BlockItem:       "item",
}

func (r BlockRule) String() string {
	if r < blockRuleCount {
		return blockRuleNames[r]
	}
	return "unknown"
}

// BlockVariant selects a block grammar.
type BlockVariant uint8

const (
	// BlockBasic is the classic Markdown subset.
	BlockBasic BlockVariant = iota
	// BlockGFM adds fenced code blocks.
	BlockGFM
	// BlockGFMTables adds pipe tables on top of BlockGFM.
	BlockGFMTables
)

func (v BlockVariant) String() string {
	switch v {
	case BlockBasic:
		return "basic"
	case BlockGFM:
		return "gfm"
	case BlockGFMTables:
		return "gfm+tables"
	default:
		return "unknown"
	}
}

// SelectBlock maps lexer flags to a block variant. Tables require GFM.
func SelectBlock(gfm, tables bool) BlockVariant {
	switch {
	case gfm && tables:
		return BlockGFMTables
	case gfm:
		return BlockGFM
	default:
		return BlockBasic
	}
}

// Block is an immutable block rule table. A nil rule is disabled in the
// variant.
type Block struct {
	variant BlockVariant
	rules   [blockRuleCount]*regexp2.Regexp
}

// Variant reports which variant the table implements.
func (b *Block) Variant() BlockVariant { return b.variant }

// Rule returns the compiled pattern for r, or nil when the variant does not
// define it.
func (b *Block) Rule(r BlockRule) *regexp2.Regexp {
	if r >= blockRuleCount {
		return nil
	}
	return b.rules[r]
}

const (
	blockBullet = `(?:[*+-]|\d+\.)`
	blockTag    = `(?!(?:a|em|strong|small|s|cite|q|dfn|abbr|data|time|code|var|samp|kbd|sub|sup|i|b|u|mark|ruby|rt|rp|bdi|bdo|span|br|wbr|ins|del|img)\b)\w+(?!:\/|[^\w\s@]*@)\b`
	blockHr     = `^( *[-*_]){3,} *(?:\n+|$)`
	blockHead   = `^ *(#{1,6}) *([^\n]+?) *#* *(?:\n+|$)`
	blockLHead  = `^([^\n]+)\n *(=|-){2,} *(?:\n+|$)`
	blockDef    = `^ *\[([^\]]+)\]: *<?([^\s>]+)>?(?: +["(]([^\n]+)[")])? *(?:\n+|$)`
	blockFences = `^ *(` + bt + `{3,}|~{3,}) *(\S+)? *\n([\s\S]+?)\s*\1 *(?:\n+|$)`
)

var (
	blockQuote = compose(`^( *>[^\n]+(\n(?!def)[^\n]+)*\n*)+`).
			with("def", blockDef).
			String()

	blockList = compose(`^( *)(bull) [\s\S]+?(?:hr|def|\n{2,}(?! )(?!\1bull )\n*|\s*$)`).
			withAll("bull", blockBullet).
			with("hr", `\n+(?=\1?(?:[-*_] *){3,}(?:\n+|$))`).
			with("def", `\n+(?=`+blockDef+`)`).
			String()

	blockParagraph = compose(`^((?:[^\n]+\n?(?!hr|heading|lheading|blockquote|tag|def))+)\n*`).
			with("hr", blockHr).
			with("heading", blockHead).
			with("lheading", blockLHead).
			with("blockquote", blockQuote).
			with("tag", "<"+blockTag).
			with("def", blockDef).
			String()
)

var basicBlockSources = map[BlockRule]string{
	BlockNewline:    `^\n+`,
	BlockCode:       `^( {4}[^\n]+\n*)+`,
	BlockHr:         blockHr,
	BlockHeading:    blockHead,
	BlockLHeading:   blockLHead,
	BlockBlockquote: blockQuote,
	BlockList:       blockList,
	BlockHTML: compose(`^ *(?:comment|closed|closing) *(?:\n{2,}|\s*$)`).
		with("comment", `<!--[\s\S]*?-->`).
		with("closed", `<(tag)[\s\S]+?<\/\1>`).
		with("closing", `<tag(?:"[^"]*"|'[^']*'|[^'">])*?>`).
		withAll("tag", blockTag).
		String(),
	BlockDef:       blockDef,
	BlockParagraph: blockParagraph,
	BlockText:      `^[^\n]+`,
	BlockBullet:    blockBullet,
	BlockItem: compose(`^( *)(bull) [^\n]*(?:\n(?!\1bull )[^\n]*)*`).
		withAll("bull", blockBullet).
		String(),
}

var gfmBlockSources = map[BlockRule]string{
	BlockFences: blockFences,
	// Fenced blocks and lists also end a paragraph. The inserted patterns are
	// renumbered to the paragraph's capture groups.
	BlockParagraph: compose(blockParagraph).
		with("(?!", "(?!"+
			strings.Replace(blockFences, `\1`, `\2`, 1)+"|"+
			strings.Replace(blockList, `\1`, `\3`, 1)+"|").
		String(),
}

var tablesBlockSources = map[BlockRule]string{
	BlockNpTable:   `^ *(\S.*\|.*)\n *([-:]+ *\|[-| :]*)\n((?:.*\|.*(?:\n|$))*)\n*`,
	BlockPipeTable: `^ *\|(.+)\n *\|( *[-:]+[-| :]*)\n((?: *\|.*(?:\n|$))*)\n*`,
}

var blockRuleOptions = map[BlockRule]regexp2.RegexOptions{
	BlockItem: regexp2.Multiline,
}

var blockTables = buildBlockTables()

func buildBlockTables() [3]*Block {
	basic := deriveBlock(nil, BlockBasic, basicBlockSources)
	gfm := deriveBlock(basic, BlockGFM, gfmBlockSources)
	tables := deriveBlock(gfm, BlockGFMTables, tablesBlockSources)
	return [3]*Block{basic, gfm, tables}
}

func deriveBlock(parent *Block, variant BlockVariant, overrides map[BlockRule]string) *Block {
	b := &Block{variant: variant}
	if parent != nil {
		b.rules = parent.rules
	}
	for rule, src := range overrides {
		b.rules[rule] = MustCompile(src, blockRuleOptions[rule])
	}
	return b
}

// BlockTable returns the shared table for v.
func BlockTable(v BlockVariant) *Block {
	if int(v) < len(blockTables) {
		return blockTables[v]
	}
	return blockTables[BlockBasic]
}

// BlockSource returns the pattern text of rule r in variant v, or "" when the
// rule is disabled.
func BlockSource(v BlockVariant, r BlockRule) string {
	re := BlockTable(v).Rule(r)
	if re == nil {
		return ""
	}
	return re.String()
}
