package inputprocessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// MaxInputBytes bounds what is read from a file, URL or stdin.
const MaxInputBytes = 1 << 20

// Input kinds reported in Result.Kind.
const (
	KindFile  = "file"
	KindURL   = "url"
	KindStdin = "stdin"
	KindRaw   = "raw"
)

// Result holds the cleaned text and where it came from.
type Result struct {
	Text        string
	ContentType string
	Kind        string
	FilePath    *string // absolute path for file input
	URL         *string // final URL for url input
}

// Processor turns an --input value into prompt text.
type Processor interface {
	Process(ctx context.Context, input string) (Result, error)
}

// Options configures New.
type Options struct {
	HTTPClient *http.Client
	Stdin      io.Reader
}

// New creates the default processor. Zero options use a 15s HTTP client and
// os.Stdin.
func New(opts Options) Processor {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	return &defaultProcessor{client: opts.HTTPClient, stdin: opts.Stdin}
}

type defaultProcessor struct {
	client *http.Client
	stdin  io.Reader
}

// Process reads "-" from stdin, an existing path as a file, an http(s) URL
// by fetching it, and anything else as raw text.
func (p *defaultProcessor) Process(ctx context.Context, input string) (Result, error) {
	if input == "-" {
		data, err := readLimited(p.stdin)
		if err != nil {
			return Result{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return finish(Result{Kind: KindStdin, ContentType: http.DetectContentType(data)}, data, "stdin")
	}

	// --- Detect File ---
	fi, err := os.Stat(input)
	switch {
	case err == nil && !fi.IsDir():
		return p.processFile(input)
	case err == nil:
		return Result{}, fmt.Errorf("input '%s' is a directory", input)
	case errors.Is(err, os.ErrPermission):
		return Result{}, fmt.Errorf("permission denied reading '%s': %w", input, err)
	}

	// --- Detect URL ---
	if u, urlErr := url.Parse(input); urlErr == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return p.processURL(ctx, u)
	}

	log.Debug("Input is not a file or URL, treating as raw text")
	return finish(Result{Kind: KindRaw, ContentType: "text/plain; charset=utf-8"}, []byte(input), "raw input")
}

func (p *defaultProcessor) processFile(path string) (Result, error) {
	binary, err := IsLikelyBinary(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	if binary {
		return Result{}, fmt.Errorf("file '%s' looks binary", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open file '%s': %w", path, err)
	}
	defer f.Close()

	data, err := readLimited(f)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read file '%s': %w", path, err)
	}

	absPath, pathErr := filepath.Abs(path)
	if pathErr != nil {
		absPath = path
	}
	ct := http.DetectContentType(data)
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".html" || ext == ".htm" {
		ct = "text/html; charset=utf-8"
	}
	log.WithFields(log.Fields{"path": absPath, "content_type": ct}).Debug("Input detected as a file")
	return finish(Result{Kind: KindFile, ContentType: ct, FilePath: &absPath}, data, path)
}

func (p *defaultProcessor) processURL(ctx context.Context, u *url.URL) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request for URL '%s': %w", u, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch URL '%s': %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		hint, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("failed to fetch URL '%s': status code %d %s - Body Hint: %s", u, resp.StatusCode, http.StatusText(resp.StatusCode), string(hint))
	}

	data, err := readLimited(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read response body from URL '%s': %w", u, err)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	final := resp.Request.URL.String()
	log.WithFields(log.Fields{"url": final, "content_type": ct}).Debug("Input detected as a URL")
	return finish(Result{Kind: KindURL, ContentType: ct, URL: &final}, data, final)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxInputBytes {
		return nil, fmt.Errorf("input exceeds %d bytes", MaxInputBytes)
	}
	return data, nil
}

// finish cleans data, strips markup from HTML and fills res.Text.
func finish(res Result, data []byte, src string) (Result, error) {
	text, err := CleanContent(data, src)
	if err != nil {
		return Result{}, err
	}
	if isHTML(res.ContentType) {
		text = HTMLToText(text)
	}
	res.Text = NormalizeText(text)
	if res.Text == "" {
		return Result{}, fmt.Errorf("%s contains no text", src)
	}
	return res, nil
}

func isHTML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "html")
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}

// Ensure defaultProcessor satisfies the Processor interface.
var _ Processor = (*defaultProcessor)(nil)
