package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/net/html"
	"golang.org/x/term"
	"pkt.systems/mdhtml"
	"pkt.systems/version"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func init() {
	version.SetDefaultModule("pkt.systems/mdhtml")
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type cliConfig struct {
	options     []mdhtml.Option
	frontMatter bool
	standalone  bool
	tokens      bool
	width       int
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		gfm           bool
		tables        bool
		breaks        bool
		pedantic      bool
		sanitize      bool
		smartLists    bool
		smartypants   bool
		mangle        bool
		xhtml         bool
		externalLinks bool
		langPrefix    string
		headerPrefix  string
		outPath       string
		frontMatter   bool
		standalone    bool
		tokens        bool
		widthFlag     int
		watch         bool
		verbose       bool
		showVersion   bool
	)

	flags := pflag.NewFlagSet("mdhtml", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.BoolVar(&gfm, "gfm", true, "GitHub flavored Markdown (fenced code, bare URLs, strikethrough)")
	flags.BoolVar(&tables, "tables", true, "Pipe tables (requires --gfm)")
	flags.BoolVar(&breaks, "breaks", false, "Render single newlines as <br> (requires --gfm)")
	flags.BoolVar(&pedantic, "pedantic", false, "Follow markdown.pl more closely")
	flags.BoolVar(&sanitize, "sanitize", false, "Escape raw HTML and drop script links")
	flags.BoolVar(&smartLists, "smart-lists", false, "End a list when the bullet style changes")
	flags.BoolVar(&smartypants, "smartypants", false, "Typographic quotes, dashes and ellipses")
	flags.BoolVar(&mangle, "mangle", false, "Obfuscate mailto autolinks")
	flags.BoolVar(&xhtml, "xhtml", false, "Self-close void elements")
	flags.BoolVar(&externalLinks, "external-links", true, "Open absolute links in a new window")
	flags.StringVar(&langPrefix, "lang-prefix", "lang-", "Class prefix of code blocks")
	flags.StringVar(&headerPrefix, "header-prefix", "", "Prefix of generated heading ids")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")
	flags.BoolVarP(&frontMatter, "front-matter", "f", false, "Strip leading front matter")
	flags.BoolVarP(&standalone, "standalone", "s", false, "Wrap output in a complete HTML page")
	flags.BoolVar(&tokens, "tokens", false, "Print the token stream instead of HTML")
	flags.IntVarP(&widthFlag, "width", "w", 0, "Token dump width (0 uses terminal width if available)")
	flags.BoolVar(&watch, "watch", false, "Re-render when input files change (requires --output)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintln(stderr, version.Module(), version.Current())
		fmt.Fprintf(stderr, "Usage: mdhtml [flags] [inputs...]\n")
		fmt.Fprintln(stderr, "\nInputs are files, file:// or http(s):// URLs. If none is given, Markdown is read from stdin.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if showVersion {
		fmt.Fprintln(stdout, version.Module(), version.Current())
		return exitOK
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	inputs := flags.Args()
	if len(inputs) == 0 && isTerminal(stdin) {
		flags.Usage()
		return exitUsage
	}

	cfg := cliConfig{
		options: []mdhtml.Option{
			mdhtml.WithGFM(gfm),
			mdhtml.WithTables(tables),
			mdhtml.WithBreaks(breaks),
			mdhtml.WithPedantic(pedantic),
			mdhtml.WithSanitize(sanitize),
			mdhtml.WithSmartLists(smartLists),
			mdhtml.WithSmartypants(smartypants),
			mdhtml.WithMangle(mangle),
			mdhtml.WithXHTML(xhtml),
			mdhtml.WithExternalLinks(externalLinks),
			mdhtml.WithLangPrefix(langPrefix),
			mdhtml.WithHeaderPrefix(headerPrefix),
			mdhtml.WithStripFrontMatter(frontMatter),
			mdhtml.WithLogger(logger),
		},
		frontMatter: frontMatter,
		standalone:  standalone,
		tokens:      tokens,
		width:       resolveWidth(widthFlag, stdout),
	}

	if watch {
		paths, err := watchPaths(inputs)
		if err != nil || strings.TrimSpace(outPath) == "" {
			if err == nil {
				err = errors.New("--watch writes to a file; set -o/--output")
			}
			fmt.Fprintf(stderr, "watch: %v\n", err)
			return exitUsage
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = watchInputs(ctx, paths, logger, func() error {
			return renderToPath(inputs, stdin, outPath, cfg)
		})
		if err != nil {
			fmt.Fprintf(stderr, "watch: %v\n", err)
			return exitFailure
		}
		return exitOK
	}

	if outPath != "" {
		if err := renderToPath(inputs, stdin, outPath, cfg); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return exitFailure
		}
		return exitOK
	}
	if err := renderInputs(inputs, stdin, stdout, cfg); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitFailure
	}
	return exitOK
}

func renderToPath(inputs []string, stdin io.Reader, outPath string, cfg cliConfig) error {
	writer, closer, err := resolveOutput(outPath)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if err := renderInputs(inputs, stdin, writer, cfg); err != nil {
		_ = closer.Close()
		return err
	}
	if err := closer.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func renderInputs(inputs []string, stdin io.Reader, w io.Writer, cfg cliConfig) error {
	reader, closer, err := openInputs(inputs, stdin)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	if !cfg.standalone && !cfg.tokens {
		return mdhtml.Render(mdhtml.RenderRequest{
			Reader:  reader,
			Writer:  w,
			Options: cfg.options,
		})
	}

	fm, src, err := mdhtml.ReadInput(reader, cfg.frontMatter)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	ts, err := mdhtml.Lex(src, cfg.options...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if cfg.tokens {
		return ts.Dump(w, cfg.width)
	}
	body, _, err := mdhtml.Parse(ts, cfg.options...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	title := fm.Title()
	if title == "" {
		title = defaultTitle(inputs)
	}
	_, err = io.WriteString(w, standalonePage(title, body))
	return err
}

func standalonePage(title, body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func defaultTitle(inputs []string) string {
	if len(inputs) == 0 {
		return "stdin"
	}
	name := inputs[0]
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Path != "" {
		name = u.Path
	}
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func resolveWidth(width int, out io.Writer) int {
	if width > 0 {
		return width
	}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return 0
}

type inputSource struct {
	open func() (io.Reader, io.Closer, error)
}

type multiInputReader struct {
	sources   []inputSource
	idx       int
	cur       io.Reader
	curCloser io.Closer
	closed    bool
}

func (m *multiInputReader) Read(p []byte) (int, error) {
	for {
		if m.closed {
			return 0, io.EOF
		}
		if m.cur == nil {
			if m.idx >= len(m.sources) {
				m.closed = true
				return 0, io.EOF
			}
			reader, closer, err := m.sources[m.idx].open()
			if err != nil {
				return 0, err
			}
			m.cur = reader
			m.curCloser = closer
			m.idx++
		}
		n, err := m.cur.Read(p)
		if n > 0 {
			return n, nil
		}
		if err == io.EOF {
			if m.curCloser != nil {
				_ = m.curCloser.Close()
			}
			m.cur = nil
			m.curCloser = nil
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

func (m *multiInputReader) Close() error {
	m.closed = true
	if m.curCloser != nil {
		return m.curCloser.Close()
	}
	return nil
}

// openInputs concatenates the inputs. Consecutive documents are separated
// by a blank line so a trailing paragraph does not run into the next file.
func openInputs(args []string, stdin io.Reader) (io.Reader, io.Closer, error) {
	if len(args) == 0 {
		return stdin, nil, nil
	}
	sources := make([]inputSource, 0, 2*len(args))
	for i, raw := range args {
		src, err := makeInputSource(raw)
		if err != nil {
			return nil, nil, err
		}
		if i > 0 {
			sources = append(sources, separatorSource())
		}
		sources = append(sources, src)
	}
	m := &multiInputReader{sources: sources}
	return m, m, nil
}

func separatorSource() inputSource {
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return bytes.NewReader([]byte("\n\n")), nil, nil
	}}
}

func makeInputSource(raw string) (inputSource, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	if path, ok := localPath(raw); ok {
		return inputSource{open: func() (io.Reader, io.Closer, error) {
			return openFile(path)
		}}, nil
	}
	return inputSource{open: func() (io.Reader, io.Closer, error) {
		return openURL(raw)
	}}, nil
}

// localPath resolves a file argument or file:// URL. ok is false for
// http(s) URLs.
func localPath(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return raw, true
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return "", false
	case "file":
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if unescaped, err := url.PathUnescape(path); err == nil {
			path = unescaped
		}
		return path, true
	}
	return raw, true
}

func openURL(raw string) (io.Reader, io.Closer, error) {
	body, err := mdhtml.FetchMarkdown(context.Background(), http.DefaultClient, raw)
	if err != nil {
		return nil, nil, err
	}
	return body, body, nil
}

func openFile(path string) (io.Reader, io.Closer, error) {
	clean := normalizePath(path)
	f, err := os.Open(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func resolveOutput(path string) (io.Writer, io.Closer, error) {
	clean := normalizePath(path)
	dir := filepath.Dir(clean)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
	}
	f, err := os.Create(clean)
	if err != nil {
		return nil, nil, err
	}
	return f, f, nil
}

func normalizePath(path string) string {
	if strings.HasPrefix(path, "~/") || path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			if path == "~" {
				path = home
			} else {
				path = filepath.Join(home, path[2:])
			}
		}
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		return abs
	}
	return path
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
