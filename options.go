package mdhtml

import (
	"log/slog"
	"math/rand/v2"
)

// Option configures a Lexer, Parser, HTMLRenderer or the request helpers.
// Each consumer reads only the settings it needs, so one option list can be
// shared by all of them.
type Option func(*config)

// Sanitizer rewrites raw HTML when sanitizing.
type Sanitizer func(html string) string

// HighlightFunc returns highlighted, already escaped code. Returning code
// unchanged leaves escaping to the renderer.
type HighlightFunc func(code, lang string) string

// Random is the randomness source of mailto mangling. Float64 returns a value
// in [0, 1).
type Random interface {
	Float64() float64
}

type defaultRandom struct{}

func (defaultRandom) Float64() float64 { return rand.Float64() }

type config struct {
	gfm              bool
	tables           bool
	breaks           bool
	pedantic         bool
	sanitize         bool
	sanitizer        Sanitizer
	smartLists       bool
	smartypants      bool
	mangle           bool
	xhtml            bool
	externalLinks    bool
	highlight        HighlightFunc
	langPrefix       string
	headerPrefix     string
	tableAttrs       map[string]string
	imageAttrs       map[string]string
	preAttrs         map[string]string
	renderer         Renderer
	random           Random
	logger           *slog.Logger
	maxNesting       int
	normalizeUnicode bool
	stripFrontMatter bool
}

const defaultMaxNesting = 64

func defaultConfig() config {
	return config{
		gfm:           true,
		tables:        true,
		externalLinks: true,
		langPrefix:    "lang-",
		random:        defaultRandom{},
		logger:        slog.New(slog.DiscardHandler),
		maxNesting:    defaultMaxNesting,
	}
}

func newConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.random == nil {
		cfg.random = defaultRandom{}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.maxNesting <= 0 {
		cfg.maxNesting = defaultMaxNesting
	}
	return cfg
}

// WithGFM enables GitHub flavored Markdown: fenced code, bare URLs,
// strikethrough. On by default.
func WithGFM(enabled bool) Option {
	return func(cfg *config) {
		cfg.gfm = enabled
	}
}

// WithTables enables pipe tables. Requires GFM. On by default.
func WithTables(enabled bool) Option {
	return func(cfg *config) {
		cfg.tables = enabled
	}
}

// WithBreaks turns single newlines inside paragraphs into <br>. Requires GFM.
func WithBreaks(enabled bool) Option {
	return func(cfg *config) {
		cfg.breaks = enabled
	}
}

// WithPedantic follows markdown.pl more closely.
func WithPedantic(enabled bool) Option {
	return func(cfg *config) {
		cfg.pedantic = enabled
	}
}

// WithSanitize escapes raw HTML and drops javascript: and vbscript: links.
func WithSanitize(enabled bool) Option {
	return func(cfg *config) {
		cfg.sanitize = enabled
	}
}

// WithSanitizer sets the function applied to inline raw HTML when
// sanitizing, in place of escaping.
func WithSanitizer(fn Sanitizer) Option {
	return func(cfg *config) {
		cfg.sanitizer = fn
	}
}

// WithSmartLists ends a list when the bullet style changes.
func WithSmartLists(enabled bool) Option {
	return func(cfg *config) {
		cfg.smartLists = enabled
	}
}

// WithSmartypants enables typographic quotes, dashes and ellipses.
func WithSmartypants(enabled bool) Option {
	return func(cfg *config) {
		cfg.smartypants = enabled
	}
}

// WithMangle obfuscates mailto autolinks as character references. The output
// then differs between runs unless WithRandom supplies a fixed source.
func WithMangle(enabled bool) Option {
	return func(cfg *config) {
		cfg.mangle = enabled
	}
}

// WithXHTML self-closes void elements.
func WithXHTML(enabled bool) Option {
	return func(cfg *config) {
		cfg.xhtml = enabled
	}
}

// WithExternalLinks adds target='_blank' rel='nofollow' to absolute links.
// On by default.
func WithExternalLinks(enabled bool) Option {
	return func(cfg *config) {
		cfg.externalLinks = enabled
	}
}

// WithHighlight sets the code block highlighter.
func WithHighlight(fn HighlightFunc) Option {
	return func(cfg *config) {
		cfg.highlight = fn
	}
}

// WithLangPrefix sets the class prefix of code blocks. Default "lang-".
func WithLangPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.langPrefix = prefix
	}
}

// WithHeaderPrefix prefixes generated heading ids.
func WithHeaderPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.headerPrefix = prefix
	}
}

// WithTableAttributes sets extra attributes of <table>.
func WithTableAttributes(attrs map[string]string) Option {
	return func(cfg *config) {
		cfg.tableAttrs = attrs
	}
}

// WithImageAttributes sets extra attributes of <img>.
func WithImageAttributes(attrs map[string]string) Option {
	return func(cfg *config) {
		cfg.imageAttrs = attrs
	}
}

// WithPreAttributes sets extra attributes of the <pre> around code blocks.
func WithPreAttributes(attrs map[string]string) Option {
	return func(cfg *config) {
		cfg.preAttrs = attrs
	}
}

// WithRenderer replaces the HTML renderer used by the parser.
func WithRenderer(r Renderer) Option {
	return func(cfg *config) {
		cfg.renderer = r
	}
}

// WithRandom sets the randomness source of mailto mangling.
func WithRandom(r Random) Option {
	return func(cfg *config) {
		cfg.random = r
	}
}

// WithLogger sets the logger for debug diagnostics. Nothing is logged by
// default.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMaxNesting bounds how deep lists and blockquotes may nest. Deeper
// containers are read as text. Default 64.
func WithMaxNesting(n int) Option {
	return func(cfg *config) {
		cfg.maxNesting = n
	}
}

// WithNormalizeUnicode converts input to NFC before lexing.
func WithNormalizeUnicode(enabled bool) Option {
	return func(cfg *config) {
		cfg.normalizeUnicode = enabled
	}
}

// WithStripFrontMatter makes Render drop a leading front matter block.
func WithStripFrontMatter(enabled bool) Option {
	return func(cfg *config) {
		cfg.stripFrontMatter = enabled
	}
}
