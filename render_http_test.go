package mdhtml

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPRender(t *testing.T) {
	var accept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "# Remote\n\n*hi*\n")
	}))
	defer server.Close()

	var out bytes.Buffer
	err := HTTPRender(context.Background(), HTTPRenderRequest{
		URL:    server.URL,
		Client: server.Client(),
		Writer: &out,
	})
	if err != nil {
		t.Fatalf("http render: %v", err)
	}
	if want := "<h1 id='remote'>Remote</h1>\n<p><em>hi</em></p>\n"; out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
	if !strings.HasPrefix(accept, "text/markdown") {
		t.Fatalf("expected markdown accept header, got %q", accept)
	}
}

func TestHTTPRenderStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	err := HTTPRender(context.Background(), HTTPRenderRequest{URL: server.URL, Writer: io.Discard})
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestHTTPRenderRequestErrors(t *testing.T) {
	if err := HTTPRender(context.Background(), HTTPRenderRequest{Writer: io.Discard}); err == nil {
		t.Fatalf("expected error for missing URL")
	}
	if err := HTTPRender(context.Background(), HTTPRenderRequest{URL: "http://example.com"}); err == nil {
		t.Fatalf("expected error for nil writer")
	}
	err := HTTPRender(context.Background(), HTTPRenderRequest{URL: "ftp://example.com/x.md", Writer: io.Discard})
	if err == nil || !strings.Contains(err.Error(), "unsupported scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestFetchMarkdownHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "x")
	}))
	defer server.Close()

	body, err := FetchMarkdown(context.Background(), nil, server.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "x" {
		t.Fatalf("unexpected body %q", data)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FetchMarkdown(ctx, server.Client(), server.URL); err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
