package mdhtml

import (
	"errors"
	"fmt"
)

var (
	// ErrGrammarGap reports text that no grammar rule matched. It indicates a
	// defect in the grammar, never bad input.
	ErrGrammarGap = errors.New("no grammar rule matched")
	// ErrMalformedStream reports a token stream with unbalanced container
	// markers or unknown token kinds.
	ErrMalformedStream = errors.New("malformed token stream")
)

// GrammarError is returned when lexing stalls. It matches ErrGrammarGap.
type GrammarError struct {
	// Level is "block" or "inline".
	Level string
	// Char is the first character of the unmatched text.
	Char rune
}

func (e *GrammarError) Error() string {
	return fmt.Sprintf("mdhtml: %s lexer: %v at %q (U+%04X)", e.Level, ErrGrammarGap, e.Char, e.Char)
}

func (e *GrammarError) Is(target error) bool {
	return target == ErrGrammarGap
}

// StreamError is returned by Parse for a stream the lexer could not have
// produced. It matches ErrMalformedStream.
type StreamError struct {
	Kind   TokenKind
	Reason string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("mdhtml: parse: %v: %s (%s)", ErrMalformedStream, e.Reason, e.Kind)
}

func (e *StreamError) Is(target error) bool {
	return target == ErrMalformedStream
}
