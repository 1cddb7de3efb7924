package mdhtml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

var inputBufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// RenderRequest configures Render.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Options []Option
}

// Convert lexes and parses src with one option list. ok is false when src
// is blank.
func Convert(src string, opts ...Option) (html string, ok bool, err error) {
	ts, err := NewLexer(opts...).Lex(src)
	if err != nil {
		return "", false, err
	}
	return NewParser(opts...).Parse(ts)
}

// ReadInput reads a whole document and prepares it for Lex. The input must
// be UTF-8 text. A leading front matter block is split off when
// stripFrontMatter is set; an unterminated block is left in place. Control
// characters other than line breaks and tabs are dropped.
func ReadInput(r io.Reader, stripFrontMatter bool) (FrontMatter, string, error) {
	buf := inputBufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer inputBufferPool.Put(buf)
	if _, err := buf.ReadFrom(r); err != nil {
		return FrontMatter{}, "", fmt.Errorf("read: %w", err)
	}
	src := buf.Bytes()
	if err := ValidateInput(src); err != nil {
		return FrontMatter{}, "", err
	}
	var fm FrontMatter
	if stripFrontMatter {
		var (
			body []byte
			err  error
		)
		fm, body, err = SplitFrontMatter(src)
		if err != nil && !errors.Is(err, ErrUnterminatedFrontMatter) {
			return FrontMatter{}, "", err
		}
		src = body
		fm.Raw = bytes.Clone(fm.Raw)
	}
	return fm, string(stripControl(src)), nil
}

// Render reads Markdown from req.Reader and writes HTML to req.Writer. The
// input is prepared by ReadInput. Blank input writes nothing.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	cfg := newConfig(req.Options)
	_, src, err := ReadInput(req.Reader, cfg.stripFrontMatter)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	html, ok, err := Convert(src, req.Options...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if !ok {
		return nil
	}
	if _, err := io.WriteString(req.Writer, html); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}
