// Package grammar holds the immutable rule tables used by the block and inline
// lexers.
//
// Every variant is a fixed-size table of compiled patterns indexed by rule.
// Variants are derived from their parent by copying the parent's table and
// compiling only the rules they override, so inherited rules are shared
// pattern objects rather than duplicated text. Tables are built once at
// package init and are safe for concurrent use.
//
// The patterns need lookaround and backreferences, which the standard
// library's RE2 engine does not offer, so they are compiled with regexp2.
// Each pattern carries MatchTimeout to bound pathological backtracking.
package grammar

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single match attempt of any grammar pattern.
const MatchTimeout = time.Second

// bt is a literal backtick, which cannot appear inside raw string literals.
const bt = "`"

// MustCompile compiles pattern with the grammar's match timeout applied.
func MustCompile(pattern string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, opts)
	re.MatchTimeout = MatchTimeout
	return re
}

// composer splices named placeholders in a pattern source with other
// sources, dropping their start anchors first.
type composer struct {
	src string
}

func compose(src string) *composer {
	return &composer{src: src}
}

// with replaces the first occurrence of name.
func (c *composer) with(name, value string) *composer {
	c.src = strings.Replace(c.src, name, unanchor(value), 1)
	return c
}

// withAll replaces every occurrence of name.
func (c *composer) withAll(name, value string) *composer {
	c.src = strings.ReplaceAll(c.src, name, unanchor(value))
	return c
}

func (c *composer) String() string {
	return c.src
}

// unanchor removes every '^' that is not the negation marker of a character
// class.
func unanchor(src string) string {
	if !strings.Contains(src, "^") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		if src[i] == '^' && (i == 0 || src[i-1] != '[') {
			continue
		}
		b.WriteByte(src[i])
	}
	return b.String()
}
