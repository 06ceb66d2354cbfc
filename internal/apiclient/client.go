// Package apiclient is the single outbound path to the backend API. Every
// call runs the same ordered pipeline:
//
//	request-id -> auth-attach -> dispatch -> classify -> unwrap
//
// Failures before dispatch are construction errors and are returned
// unchanged. Failures from dispatch onward are classified into *Error and
// produce exactly one user notification.
package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/Liutianci99/grad-pilipala/internal/notify"
	"github.com/Liutianci99/grad-pilipala/internal/platform/metrics"
)

const (
	// DefaultAPIPrefix is appended to the server origin.
	DefaultAPIPrefix = "/api"
	// DefaultTimeout is long because batch creation waits on route planning.
	DefaultTimeout = 120 * time.Second

	maxBodyBytes = 8 << 20
	tracerName   = "github.com/Liutianci99/grad-pilipala/internal/apiclient"
)

// TokenSource yields the current session token. It is read on every call.
type TokenSource interface {
	Token(ctx context.Context) (string, bool, error)
}

// Config holds the client's addressing and timing.
type Config struct {
	BaseURL   string
	APIPrefix string
	Timeout   time.Duration
}

// Client performs authenticated requests against the backend API.
type Client struct {
	baseURL    string
	apiPrefix  string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenSource
	notifier   notify.Notifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics enables request metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New builds a Client. An empty APIPrefix or zero Timeout takes the default.
func New(cfg Config, tokens TokenSource, notifier notify.Notifier, opts ...Option) *Client {
	c := &Client{
		baseURL:    cfg.BaseURL,
		apiPrefix:  cfg.APIPrefix,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		tokens:     tokens,
		notifier:   notifier,
		logger:     slog.Default(),
		tracer:     otel.Tracer(tracerName),
	}
	if c.apiPrefix == "" {
		c.apiPrefix = DefaultAPIPrefix
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do runs req through the pipeline and decodes the response body into out.
// A nil out discards the body.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return err
	}

	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}

	start := time.Now()
	res := c.dispatch(httpReq, timeout)
	if apiErr := classify(res); apiErr != nil {
		c.fail(httpReq, apiErr, time.Since(start))
		return apiErr
	}
	if err := unwrap(res.body, out); err != nil {
		apiErr := newError(KindNetworkOrServer, MsgNetwork, res.status, err)
		c.fail(httpReq, apiErr, time.Since(start))
		return apiErr
	}

	c.metrics.ObserveRequest("ok", time.Since(start).Seconds())
	return nil
}

// Get issues a GET.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// fail reports a classified failure: one notification, one log line, one metric.
func (c *Client) fail(httpReq *http.Request, apiErr *Error, elapsed time.Duration) {
	ctx := httpReq.Context()
	c.logger.WarnContext(ctx, "api request failed",
		"kind", string(apiErr.Kind),
		"status", apiErr.Code,
		"method", httpReq.Method,
		"path", httpReq.URL.Path,
		"request_id", httpReq.Header.Get(headerRequestID),
		"error", apiErr.Underlying,
	)
	c.metrics.ObserveRequest(string(apiErr.Kind), elapsed.Seconds())
	if c.notifier != nil {
		c.notifier.Error(ctx, apiErr.Message)
	}
}
