package mdhtml

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPRenderRequest configures HTTPRender.
type HTTPRenderRequest struct {
	URL     string
	Client  *http.Client
	Writer  io.Writer
	Options []Option
}

// HTTPRender fetches Markdown over HTTP(S) and writes it as HTML.
func HTTPRender(ctx context.Context, req HTTPRenderRequest) error {
	if req.URL == "" {
		return fmt.Errorf("render http: URL is required")
	}
	if req.Writer == nil {
		return fmt.Errorf("render http: Writer is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	body, err := fetch(ctx, req.Client, req.URL)
	if err != nil {
		return err
	}
	defer body.Close()
	return Render(RenderRequest{
		Reader:  body,
		Writer:  req.Writer,
		Options: req.Options,
	})
}

// FetchMarkdown opens a Markdown document over HTTP(S). The caller closes
// the returned body.
func FetchMarkdown(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return fetch(ctx, client, url)
}

func fetch(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	if client == nil {
		client = http.DefaultClient
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("render http: build request: %w", err)
	}
	if httpReq.URL.Scheme != "http" && httpReq.URL.Scheme != "https" {
		return nil, fmt.Errorf("render http: unsupported scheme %q", httpReq.URL.Scheme)
	}
	httpReq.Header.Set("Accept", "text/markdown, text/plain;q=0.9, */*;q=0.1")
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("render http: request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("render http: status %s", resp.Status)
	}
	return resp.Body, nil
}
