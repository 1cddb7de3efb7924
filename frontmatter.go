package mdhtml

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnterminatedFrontMatter reports a front matter block without its
// closing delimiter.
var ErrUnterminatedFrontMatter = errors.New("front matter closing delimiter is missing")

// FrontMatter is metadata found at the start of a document.
type FrontMatter struct {
	// Delimiter is "---" (YAML), "+++" (TOML) or ";;;" (JSON).
	Delimiter string
	// Raw is the block between the delimiters.
	Raw []byte
	// Fields holds the decoded block. TOML is not decoded and leaves it nil.
	Fields map[string]any
}

// Title returns the title field, if it is a string.
func (fm FrontMatter) Title() string {
	title, _ := fm.Fields["title"].(string)
	return title
}

var frontMatterDelimiters = [][]byte{[]byte("---"), []byte("+++"), []byte(";;;")}

// SplitFrontMatter separates a leading front matter block from the Markdown
// body. A block must open on the first line and its first entry must look
// like metadata, so a leading horizontal rule is left alone. When there is
// no block the returned FrontMatter is zero and body is src.
func SplitFrontMatter(src []byte) (FrontMatter, []byte, error) {
	first, rest, ok := cutLine(src)
	if !ok {
		return FrontMatter{}, src, nil
	}
	delim := openingDelimiter(first)
	if delim == nil {
		return FrontMatter{}, src, nil
	}
	if second, _, _ := cutLine(rest); !metadataLikely(second) {
		return FrontMatter{}, src, nil
	}

	raw := rest
	for len(rest) > 0 {
		line, after, _ := cutLine(rest)
		if bytes.Equal(bytes.TrimSpace(line), delim) {
			fm := FrontMatter{
				Delimiter: string(delim),
				Raw:       raw[:len(raw)-len(rest)],
			}
			if err := fm.decode(); err != nil {
				return FrontMatter{}, src, err
			}
			return fm, after, nil
		}
		rest = after
	}
	return FrontMatter{}, src, ErrUnterminatedFrontMatter
}

func (fm *FrontMatter) decode() error {
	if fm.Delimiter == "+++" {
		return nil
	}
	// JSON is a subset of YAML.
	var fields map[string]any
	if err := yaml.Unmarshal(fm.Raw, &fields); err != nil {
		return fmt.Errorf("front matter: %w", err)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fm.Fields = fields
	return nil
}

// cutLine returns the first line of src without its line ending and the
// text after it. ok is false for empty input.
func cutLine(src []byte) (line, rest []byte, ok bool) {
	if len(src) == 0 {
		return nil, nil, false
	}
	line, rest, _ = bytes.Cut(src, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, true
}

func openingDelimiter(line []byte) []byte {
	line = bytes.TrimSpace(bytes.TrimPrefix(line, []byte("\xef\xbb\xbf")))
	for _, d := range frontMatterDelimiters {
		if bytes.Equal(line, d) {
			return d
		}
	}
	return nil
}

func metadataLikely(line []byte) bool {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return false
	}
	return line[0] == '{' || line[0] == '[' || bytes.ContainsAny(line, ":=")
}
