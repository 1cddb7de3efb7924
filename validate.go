package mdhtml

import (
	"bytes"
	"errors"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports invalid UTF-8 input.
	ErrInvalidUTF8 = errors.New("invalid utf-8 input")
	// ErrBinaryInput reports input that appears to be binary.
	ErrBinaryInput = errors.New("binary input detected")
)

const (
	binarySampleMin  = 64
	binaryControlPct = 2
)

// ValidateInput accepts UTF-8 text only. Input holding a NUL byte is binary,
// and so is input of 64 bytes or more when at least 2% of it is control
// characters other than tab, line feed and carriage return.
func ValidateInput(src []byte) error {
	if !utf8.Valid(src) {
		return ErrInvalidUTF8
	}
	if bytes.IndexByte(src, 0) >= 0 {
		return ErrBinaryInput
	}
	if n := len(src); n >= binarySampleMin && countControl(src)*100 >= n*binaryControlPct {
		return ErrBinaryInput
	}
	return nil
}

// isControl reports C0 controls and DEL, except tab, line feed and carriage
// return.
func isControl(b byte) bool {
	switch b {
	case '\t', '\n', '\r':
		return false
	}
	return b < 0x20 || b == 0x7F
}

func countControl(src []byte) int {
	n := 0
	for _, b := range src {
		if isControl(b) {
			n++
		}
	}
	return n
}

// stripControl drops the characters isControl reports. src is returned as
// is when it has none.
func stripControl(src []byte) []byte {
	if countControl(src) == 0 {
		return src
	}
	return bytes.Map(func(r rune) rune {
		if r < utf8.RuneSelf && isControl(byte(r)) {
			return -1
		}
		return r
	}, src)
}
