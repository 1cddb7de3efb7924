package mdhtml

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
)

func BenchmarkConvert(b *testing.B) {
	for name, data := range mustReadSamples(b) {
		src := string(data)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				if _, _, err := Convert(src); err != nil {
					b.Fatalf("convert: %v", err)
				}
			}
		})
	}
}

func BenchmarkConvertReuse(b *testing.B) {
	lexer := NewLexer()
	parser := NewParser()
	for name, data := range mustReadSamples(b) {
		src := string(data)
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(src)))
			for i := 0; i < b.N; i++ {
				ts, err := lexer.Lex(src)
				if err != nil {
					b.Fatalf("lex: %v", err)
				}
				if _, _, err := parser.Parse(ts); err != nil {
					b.Fatalf("parse: %v", err)
				}
			}
		})
	}
}

func BenchmarkGoldmark(b *testing.B) {
	md := goldmark.New()
	for name, data := range mustReadSamples(b) {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			var out bytes.Buffer
			for i := 0; i < b.N; i++ {
				out.Reset()
				if err := md.Convert(data, &out); err != nil {
					b.Fatalf("goldmark: %v", err)
				}
			}
		})
	}
}

func BenchmarkRender(b *testing.B) {
	data := bytes.Repeat(readTestdata(b, "cheatsheet.md"), 20)
	b.ReportAllocs()
	reader := bytes.NewReader(data)
	for i := 0; i < b.N; i++ {
		reader.Reset(data)
		if err := Render(RenderRequest{Reader: reader, Writer: io.Discard}); err != nil {
			b.Fatalf("render: %v", err)
		}
	}
}

func BenchmarkHTTPRender(b *testing.B) {
	data := readTestdata(b, "cheatsheet.md")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}))
	defer server.Close()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := HTTPRender(context.Background(), HTTPRenderRequest{
			URL:    server.URL,
			Client: server.Client(),
			Writer: io.Discard,
		}); err != nil {
			b.Fatalf("http render: %v", err)
		}
	}
}

func mustReadSamples(b *testing.B) map[string][]byte {
	b.Helper()
	paths, err := filepath.Glob(filepath.Join("testdata", "*.md"))
	if err != nil {
		b.Fatalf("glob: %v", err)
	}
	samples := make(map[string][]byte, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			b.Fatalf("read %s: %v", path, err)
		}
		samples[strings.TrimSuffix(filepath.Base(path), ".md")] = data
	}
	return samples
}
