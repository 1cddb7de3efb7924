package grammar

import (
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Exec matches re against src and returns the text of every capture group,
// group 0 first. Groups that did not participate are empty strings. A nil
// slice means no match. The error is non-nil only when the match timed out.
func Exec(re *regexp2.Regexp, src string) ([]string, error) {
	return NewCursor(src).Exec(re)
}

// Cursor consumes a text from the front. The text is decoded to runes once
// and every match runs on a view of the unconsumed runes, so anchored rules
// see the remaining text as if it were the whole input.
type Cursor struct {
	text []rune
	pos  int
}

// NewCursor returns a cursor at the start of src. Invalid UTF-8 bytes read
// as U+FFFD.
func NewCursor(src string) *Cursor {
	return &Cursor{text: []rune(src)}
}

// Done reports whether the whole text has been consumed.
func (c *Cursor) Done() bool {
	return c.pos >= len(c.text)
}

// Peek returns the next unconsumed rune, or utf8.RuneError at the end.
func (c *Cursor) Peek() rune {
	if c.Done() {
		return utf8.RuneError
	}
	return c.text[c.pos]
}

// Rest returns the unconsumed text.
func (c *Cursor) Rest() string {
	return string(c.text[c.pos:])
}

// Exec matches re at the cursor without consuming anything. The result is
// the same as Exec(re, c.Rest()).
func (c *Cursor) Exec(re *regexp2.Regexp) ([]string, error) {
	if re == nil {
		return nil, nil
	}
	m, err := re.FindRunesMatch(c.text[c.pos:])
	if err != nil || m == nil {
		return nil, err
	}
	groups := m.Groups()
	caps := make([]string, len(groups))
	for i := range groups {
		caps[i] = groups[i].String()
	}
	return caps, nil
}

// Consume advances past matched, which must be a prefix of the unconsumed
// text as returned by Exec.
func (c *Cursor) Consume(matched string) {
	c.Skip(utf8.RuneCountInString(matched))
}

// Skip advances by n runes.
func (c *Cursor) Skip(n int) {
	c.pos = min(c.pos+n, len(c.text))
}

// Prepend puts text in front of the unconsumed input.
func (c *Cursor) Prepend(text string) {
	if text == "" {
		return
	}
	rest := c.text[c.pos:]
	joined := make([]rune, 0, utf8.RuneCountInString(text)+len(rest))
	joined = append(joined, []rune(text)...)
	c.text = append(joined, rest...)
	c.pos = 0
}

// IsMatch reports whether re matches anywhere in src. A timeout counts as no
// match.
func IsMatch(re *regexp2.Regexp, src string) bool {
	ok, err := re.MatchString(src)
	return err == nil && ok
}

// Replace substitutes every match of re in src with repl, which may refer to
// groups as $1. On timeout src is returned unchanged.
func Replace(re *regexp2.Regexp, src, repl string) string {
	out, err := re.Replace(src, repl, -1, -1)
	if err != nil {
		return src
	}
	return out
}

// Split slices src around every match of re.
func Split(re *regexp2.Regexp, src string) []string {
	runes := []rune(src)
	var parts []string
	prev := 0
	m, err := re.FindRunesMatch(runes)
	for err == nil && m != nil {
		parts = append(parts, string(runes[prev:m.Index]))
		prev = m.Index + m.Length
		m, err = re.FindNextMatch(m)
	}
	return append(parts, string(runes[prev:]))
}

// FindAll returns the text of every non-overlapping match of re in src.
func FindAll(re *regexp2.Regexp, src string) []string {
	var out []string
	m, err := re.FindStringMatch(src)
	for err == nil && m != nil {
		out = append(out, m.String())
		m, err = re.FindNextMatch(m)
	}
	return out
}
