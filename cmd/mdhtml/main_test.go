package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpenInputFileAndURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.md")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	reader, closer, err := openInputs([]string{path}, nil)
	if err != nil {
		t.Fatalf("openInputs file: %v", err)
	}
	buf, _ := io.ReadAll(reader)
	_ = closer.Close()
	if string(buf) != "hello" {
		t.Fatalf("unexpected file content: %q", string(buf))
	}

	reader, closer, err = openInputs([]string{"file://" + path}, nil)
	if err != nil {
		t.Fatalf("openInputs file URL: %v", err)
	}
	buf, _ = io.ReadAll(reader)
	_ = closer.Close()
	if string(buf) != "hello" {
		t.Fatalf("unexpected file URL content: %q", string(buf))
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("stream"))
	}))
	defer srv.Close()
	reader, closer, err = openInputs([]string{srv.URL}, nil)
	if err != nil {
		t.Fatalf("openInputs http: %v", err)
	}
	buf, _ = io.ReadAll(reader)
	_ = closer.Close()
	if string(buf) != "stream" {
		t.Fatalf("unexpected http content: %q", string(buf))
	}
}

func TestOpenInputsConcatenates(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.md")
	second := filepath.Join(dir, "b.md")
	if err := os.WriteFile(first, []byte("one"), 0o644); err != nil {
		t.Fatalf("write first: %v", err)
	}
	if err := os.WriteFile(second, []byte("two"), 0o644); err != nil {
		t.Fatalf("write second: %v", err)
	}
	reader, closer, err := openInputs([]string{first, second}, nil)
	if err != nil {
		t.Fatalf("openInputs concat: %v", err)
	}
	defer func() { _ = closer.Close() }()
	buf, _ := io.ReadAll(reader)
	if string(buf) != "one\n\ntwo" {
		t.Fatalf("unexpected concatenated content: %q", string(buf))
	}
}

func TestOpenInputsUsesStdin(t *testing.T) {
	stdin := strings.NewReader("piped")
	reader, closer, err := openInputs(nil, stdin)
	if err != nil {
		t.Fatalf("openInputs stdin: %v", err)
	}
	if closer != nil {
		t.Fatalf("expected stdin not to be closed")
	}
	buf, _ := io.ReadAll(reader)
	if string(buf) != "piped" {
		t.Fatalf("unexpected stdin content: %q", string(buf))
	}
}

func TestRunRendersStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader("# Hi\n\n<b>x</b>\n"), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if want := "<h1 id='hi'>Hi</h1>\n<p><b>x</b></p>\n"; stdout.String() != want {
		t.Fatalf("expected %q, got %q", want, stdout.String())
	}
}

func TestRunAppliesFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"--sanitize", "--xhtml", "--header-prefix", "s-", "--external-links=false"}
	code := run(args, strings.NewReader("# Hi\n\n<b>x</b> [a](http://x.io)\n\n---\n"), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	want := "<h1 id='s-hi'>Hi</h1>\n<p>&lt;b&gt;x&lt;/b&gt; <a href='http://x.io'>a</a></p>\n<hr/>\n"
	if stdout.String() != want {
		t.Fatalf("expected %q, got %q", want, stdout.String())
	}
}

func TestRunWritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.md")
	out := filepath.Join(dir, "out", "doc.html")
	if err := os.WriteFile(in, []byte("---\ntitle: Doc\n---\ntext\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--front-matter", "-o", out, in}, nil, &stdout, &stderr); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "<p>text</p>\n" {
		t.Fatalf("unexpected output %q", data)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected nothing on stdout, got %q", stdout.String())
	}
}

func TestRunStandalone(t *testing.T) {
	var stdout, stderr bytes.Buffer
	src := "---\ntitle: Fish & <Chips>\n---\n# Menu\n"
	code := run([]string{"--front-matter", "--standalone"}, strings.NewReader(src), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.HasPrefix(out, "<!DOCTYPE html>\n") {
		t.Fatalf("expected a complete page, got %q", out)
	}
	if !strings.Contains(out, "<title>Fish &amp; &lt;Chips&gt;</title>") {
		t.Fatalf("expected escaped title, got %q", out)
	}
	if !strings.Contains(out, "<body>\n<h1 id='menu'>Menu</h1>\n</body>") {
		t.Fatalf("expected rendered body, got %q", out)
	}
}

func TestRunTokens(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"--tokens", "--width", "200"}, strings.NewReader("> quote\n"), &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	want := "blockquote_start\n  paragraph \"quote\"\nblockquote_end\n"
	if stdout.String() != want {
		t.Fatalf("expected %q, got %q", want, stdout.String())
	}
}

func TestRunExitCodes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--no-such-flag"}, strings.NewReader(""), &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected usage exit for unknown flag, got %d", code)
	}
	if code := run([]string{"--watch", "x.md"}, nil, &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected usage exit for --watch without output, got %d", code)
	}
	if code := run([]string{"--watch", "-o", "out.html", "https://example.com/x.md"}, nil, &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected usage exit for watching a URL, got %d", code)
	}
	missing := filepath.Join(t.TempDir(), "missing.md")
	if code := run([]string{missing}, nil, &stdout, &stderr); code != exitFailure {
		t.Fatalf("expected failure exit for a missing file, got %d", code)
	}
	if code := run(nil, bytes.NewReader([]byte{0xff, 0xfe, 0xfd}), &stdout, &stderr); code != exitFailure {
		t.Fatalf("expected failure exit for invalid input, got %d", code)
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, nil, &stdout, &stderr); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if strings.TrimSpace(stdout.String()) == "" {
		t.Fatalf("expected version output")
	}
}

func TestDefaultTitle(t *testing.T) {
	cases := map[string]string{
		"notes/today.md":                  "today",
		"https://example.com/a/readme.md": "readme",
		"file:///tmp/plan.markdown":       "plan",
	}
	for input, want := range cases {
		if got := defaultTitle([]string{input}); got != want {
			t.Fatalf("defaultTitle(%q)=%q want %q", input, got, want)
		}
	}
	if got := defaultTitle(nil); got != "stdin" {
		t.Fatalf("expected stdin title, got %q", got)
	}
}

func TestWatchRerendersOnChange(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "doc.md")
	if err := os.WriteFile(in, []byte("one"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	paths, err := watchPaths([]string{in})
	if err != nil {
		t.Fatalf("watchPaths: %v", err)
	}

	renders := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchInputs(ctx, paths, slog.New(slog.DiscardHandler), func() error {
			renders <- struct{}{}
			return nil
		})
	}()

	waitRender := func(what string) {
		t.Helper()
		select {
		case <-renders:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %s render", what)
		}
	}
	waitRender("initial")
	if err := os.WriteFile(in, []byte("two"), 0o644); err != nil {
		t.Fatalf("rewrite input: %v", err)
	}
	waitRender("changed")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not stop")
	}
}

func TestRunTokensAndHTMLSeeTheSameInput(t *testing.T) {
	src := "a\x01b\x1bc\n"
	var html, tokens, stderr bytes.Buffer
	if code := run(nil, strings.NewReader(src), &html, &stderr); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if html.String() != "<p>abc</p>\n" {
		t.Fatalf("unexpected html %q", html.String())
	}
	if code := run([]string{"--tokens"}, strings.NewReader(src), &tokens, &stderr); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr.String())
	}
	if tokens.String() != "paragraph \"abc\"\n" {
		t.Fatalf("unexpected token dump %q", tokens.String())
	}
}
