// Package fetch provides polite URL fetching and HTML-to-text processing.
// This package centralizes HTTP fetching for the directory and company websites.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/founder-outreach/internal/metrics"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is a desktop browser user agent. The directory rejects
// requests that do not look like they come from a browser.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultRequestsPerSecond is the per-host request rate.
const DefaultRequestsPerSecond = 2.0

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 5 << 20

// Result holds the raw and processed content from a URL fetch.
type Result struct {
	URL         string
	HTML        string
	Text        string
	ContentType string
	StatusCode  int
	Rendered    bool
}

// Error represents an error during URL fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout           time.Duration
	UserAgent         string
	Headers           map[string]string
	RequestsPerSecond float64
	Burst             int
	// UseBrowser enables headless rendering when a page yields too little text.
	UseBrowser     bool
	BrowserTimeout time.Duration
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:           DefaultTimeout,
		UserAgent:         DefaultUserAgent,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             2,
		BrowserTimeout:    DefaultBrowserTimeout,
	}
}

// RenderFunc renders a URL and returns the resulting HTML.
type RenderFunc func(ctx context.Context, url string, timeout time.Duration) (string, error)

// Client fetches pages with a shared user agent and a rate limit per host.
type Client struct {
	http   *http.Client
	opts   Options
	render RenderFunc
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client. A nil opts uses DefaultOptions.
func NewClient(opts *Options, logger *zap.Logger) *Client {
	o := *DefaultOptions()
	if opts != nil {
		o = *opts
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.RequestsPerSecond <= 0 {
		o.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.BrowserTimeout == 0 {
		o.BrowserTimeout = DefaultBrowserTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &http.Client{
			Timeout: o.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     o,
		render:   WithBrowser,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// SetRenderer replaces the headless renderer.
func (c *Client) SetRenderer(fn RenderFunc) {
	c.render = fn
}

func (c *Client) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.opts.RequestsPerSecond), c.opts.Burst)
		c.limiters[host] = l
	}
	return l
}

// Get retrieves HTML content from a URL. A non-200 response returns the Result
// together with an *Error.
func (c *Client) Get(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &Error{URL: urlStr, Message: "unsupported scheme " + parsedURL.Scheme}
	}

	host := parsedURL.Hostname()
	if err := c.limiter(host).Wait(ctx); err != nil {
		return nil, &Error{URL: urlStr, Message: "rate limiter wait", Cause: err}
	}

	start := time.Now()
	result, err := c.do(ctx, urlStr)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordFetchDuration(host, status, time.Since(start))
	return result, err
}

func (c *Client) do(ctx context.Context, urlStr string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	for key, value := range c.opts.Headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}

	result := &Result{
		URL:         urlStr,
		HTML:        string(bodyBytes),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}

	if resp.StatusCode != http.StatusOK {
		return result, &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	return result, nil
}

// Page fetches a URL and fills Result.Text with its visible text. When
// UseBrowser is set and the plain response carries too little text, the page
// is rendered in a headless browser instead.
func (c *Client) Page(ctx context.Context, urlStr string) (*Result, error) {
	result, err := c.Get(ctx, urlStr)
	if err != nil {
		return result, err
	}

	text, err := VisibleText(result.HTML)
	if err != nil {
		return result, &Error{URL: urlStr, Message: "failed to parse HTML", Cause: err}
	}
	result.Text = text

	if c.opts.UseBrowser && c.render != nil && ShouldUseBrowser(text) {
		html, rerr := c.render(ctx, urlStr, c.opts.BrowserTimeout)
		if rerr != nil {
			c.logger.Warn("browser render failed, keeping plain response",
				zap.String("url", urlStr), zap.Error(rerr))
			return result, nil
		}
		rendered, terr := VisibleText(html)
		if terr == nil && len(rendered) > len(text) {
			result.HTML = html
			result.Text = rendered
			result.Rendered = true
		}
	}
	return result, nil
}

// URL retrieves HTML content from a URL with a one-off client.
func URL(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	return NewClient(opts, nil).Get(ctx, urlStr)
}

// VisibleText returns the text a visitor would see in the document body:
// script, style and template content is removed and whitespace is collapsed.
func VisibleText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript, template, svg").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	return cleanWhitespace(body.Text()), nil
}

// cleanWhitespace trims each line and drops empty ones.
func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
