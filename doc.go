// Package mdhtml converts Markdown to HTML.
//
// Conversion runs in two phases. A Lexer matches the input against a block
// grammar and produces a TokenStream: a flat list of tokens where containers
// are marked by paired start and end tokens, plus the link reference
// definitions of the whole document. A Parser then walks the stream, renders
// leaf text through an inline lexer and assembles the HTML through a
// Renderer.
//
// Grammar variants are picked once from options:
//   - blocks: basic, GFM (fenced code), GFM with tables
//   - inline: basic, GFM (bare URLs, strikethrough), GFM with breaks, pedantic
//
// Example:
//
//	html, ok, err := mdhtml.Convert("# Hello\n\nMarkdown in, *HTML* out.\n")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if ok {
//		fmt.Print(html)
//	}
//
// Blank input is not an error: Lex returns a nil stream and Parse reports
// ok == false. Any error from Lex or Parse is a defect in the grammar or a
// hand-built stream, see ErrGrammarGap and ErrMalformedStream.
//
// Lexers and Parsers hold only configuration; every call works on its own
// state, so one instance can serve concurrent callers. Individual constructs
// can be restyled by embedding *HTMLRenderer and passing the result to
// WithRenderer.
package mdhtml
