package fetch

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// Client downloads published timeline sources (spreadsheet exports, docs)
// over HTTP. It caps response size and infers a filename so the body can be
// routed to the right parser.
type Client struct {
	httpClient *http.Client
	authToken  string
	maxBytes   int64
}

func NewClient(timeout time.Duration, authToken string, maxBytes int64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		authToken:  authToken,
		maxBytes:   maxBytes,
	}
}

// Result is one fetched source: raw bytes plus the filename inferred for
// parser dispatch.
type Result struct {
	Data     []byte
	Filename string
}

// contentTypeExt maps response media types to source file extensions, for
// URLs whose path carries no usable extension (e.g. published-sheet export
// endpoints).
var contentTypeExt = map[string]string{
	"text/csv":                "csv",
	"text/tab-separated-values": "tsv",
	"application/json":        "json",
	"text/markdown":           "md",
	"text/html":               "html",
	"application/pdf":         "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
}

// Fetch downloads the source at rawURL.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme: %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("fetch source: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{Err: fmt.Errorf("fetch source: status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fetch source: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read source body: %w", err)}
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("source exceeds max size (%d bytes)", c.maxBytes)
	}

	filename, err := inferFilename(u, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return &Result{Data: data, Filename: filename}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func inferFilename(u *url.URL, contentType string) (string, error) {
	base := path.Base(u.Path)
	if ext := strings.ToLower(path.Ext(base)); ext != "" && ext != "." {
		return base, nil
	}

	mediaType := contentType
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
	}
	if ext, ok := contentTypeExt[mediaType]; ok {
		name := base
		if name == "" || name == "." || name == "/" {
			name = "source"
		}
		return name + "." + ext, nil
	}
	return "", fmt.Errorf("cannot determine source format for %q (content-type %q)", u.String(), contentType)
}

// RetryableError indicates a transient fetch failure that can be retried.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
