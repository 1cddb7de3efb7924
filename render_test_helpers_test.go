package mdhtml

import (
	"os"
	"testing"
	"time"
)

func convert(t *testing.T, src string, opts ...Option) string {
	t.Helper()
	html, ok, err := Convert(src, opts...)
	if err != nil {
		t.Fatalf("convert %q: %v", src, err)
	}
	if !ok {
		t.Fatalf("convert %q: expected output, got none", src)
	}
	return html
}

// convertWithin runs Convert and fails the test when it has not returned
// after limit.
func convertWithin(t *testing.T, limit time.Duration, src string, opts ...Option) (string, bool) {
	t.Helper()
	type result struct {
		html string
		ok   bool
		err  error
	}
	done := make(chan result, 1)
	go func() {
		html, ok, err := Convert(src, opts...)
		done <- result{html, ok, err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("convert %s: %v", truncateWithEllipsis(src, 200), r.err)
		}
		return r.html, r.ok
	case <-time.After(limit):
		t.Fatalf("convert did not finish within %v: %q", limit, truncateWithEllipsis(src, 200))
	}
	return "", false
}

func lex(t *testing.T, src string, opts ...Option) *TokenStream {
	t.Helper()
	ts, err := Lex(src, opts...)
	if err != nil {
		t.Fatalf("lex %q: %v", src, err)
	}
	if ts == nil {
		t.Fatalf("lex %q: expected a stream, got nil", src)
	}
	return ts
}

func kinds(ts *TokenStream) []TokenKind {
	out := make([]TokenKind, len(ts.Tokens))
	for i, tok := range ts.Tokens {
		out[i] = tok.Kind
	}
	return out
}

func readTestdata(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return data
}

// sequenceRandom replays a fixed sequence of values.
type sequenceRandom struct {
	values []float64
	i      int
}

func (r *sequenceRandom) Float64() float64 {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v
}
