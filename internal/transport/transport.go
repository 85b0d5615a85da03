// Package transport sends GET requests for the data sources and hands back
// status and body. Non-success responses are logged, never turned into errors:
// deciding whether a body is usable is the caller's job.
package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	userAgent = "mktdata/1.0"

	// bodyPreviewLimit caps how much of a failed response body ends up in logs.
	bodyPreviewLimit = 512
)

// Options configures a Client. Zero values mean no timeout and no throttling.
type Options struct {
	Timeout      time.Duration
	RateLimitRPS float64
	Logger       *slog.Logger
}

// Getter is the capability the data sources depend on.
type Getter interface {
	Get(ctx context.Context, url string, headers, query map[string]string) (*Response, error)
}

// Response is what the sources see of an HTTP exchange.
type Response struct {
	StatusCode int
	Status     string
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client is safe for concurrent use; it holds no per-request state.
type Client struct {
	rc      *resty.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// baseTransportConfig returns the HTTP transport shared by every request.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
}

// New builds a Client from opts.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rc := resty.New().
		SetTransport(baseTransportConfig()).
		SetHeader("User-Agent", userAgent).
		SetLogger(restyLogger{logger: logger})
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	c := &Client{rc: rc, logger: logger}
	if opts.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}
	return c
}

// Get issues one GET request. The error is non-nil only when no response was
// received at all; a 4xx/5xx comes back as a Response after a warning.
func (c *Client) Get(ctx context.Context, url string, headers, query map[string]string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParams(query).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       resp.Body(),
	}
	if !out.OK() {
		c.logger.Warn("non-success response",
			"url", url,
			"status", out.Status,
			"body", preview(out.Body))
	}
	return out, nil
}

func preview(body []byte) string {
	if len(body) > bodyPreviewLimit {
		return string(body[:bodyPreviewLimit]) + "..."
	}
	return string(body)
}

// restyLogger routes resty's own diagnostics into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
