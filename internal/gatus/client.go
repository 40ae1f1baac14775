package gatus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// StatusesPath is the Gatus API path returning every endpoint's results.
	StatusesPath = "/api/v1/endpoints/statuses"

	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 10 * time.Second

	defaultUserAgent = "gatusbridge"

	// statuses for large installations with long result histories run into
	// megabytes, so the limit is well above a typical health payload
	maxResponseBodySize = 16 << 20
)

// connection pooling limits; one client talks to exactly one Gatus host
const (
	defaultMaxIdleConns        = 4
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 2
	defaultIdleConnTimeout     = 90 * time.Second
)

// Client fetches endpoint statuses from one Gatus server.
//
// A Client owns its connection pool. Create it once per configured server
// and call [Client.Close] on teardown. Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithTimeout overrides the per-fetch timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the pooled HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with each request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLogger sets the logger used for parse warnings.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a [Client] for the Gatus server at baseURL.
//
// No timeout is set on the underlying http.Client; each fetch is bounded by
// a context deadline instead, so the caller's context can shorten it.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL with one trailing slash removed.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// StatusesURL returns the URL fetched by [Client.Fetch].
func (c *Client) StatusesURL() string {
	return c.baseURL + StatusesPath
}

// BadgeURL returns the SVG uptime badge URL of an endpoint for a window such
// as "24h" or "7d".
func (c *Client) BadgeURL(key, window string) string {
	return fmt.Sprintf("%s/api/v1/endpoints/%s/uptimes/%s/badge.svg",
		c.baseURL, url.PathEscape(key), url.PathEscape(window))
}

// Fetch performs one GET of the statuses endpoint.
//
// Every failure is returned as an [*Error]. Fetch does not retry.
func (c *Client) Fetch(ctx context.Context) ([]EndpointStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StatusesURL(), nil)
	if err != nil {
		return nil, genericError("Something really wrong happened!", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, authError()
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, httpError(resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if len(body) > maxResponseBodySize {
		return nil, genericError("Response too large",
			fmt.Errorf("statuses payload exceeds %d bytes", maxResponseBodySize))
	}

	statuses, stats, err := decodeStatuses(body)
	if err != nil {
		return nil, genericError("Invalid statuses payload", err)
	}
	if n := stats.dropped(); n > 0 {
		c.logger.Warn("dropped malformed endpoint statuses",
			"url", c.StatusesURL(),
			"dropped", n,
			"missing_key", stats.missingKey,
			"duplicate_key", stats.duplicate,
		)
	}
	return statuses, nil
}

// Close releases idle connections. The client stays usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}

// classifyTransportError maps errors from the HTTP round trip or the body
// read onto the closed error taxonomy.
func classifyTransportError(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return communicationError("Timeout error fetching information", err)
	}

	var (
		dnsErr *net.DNSError
		opErr  *net.OpError
		urlErr *url.Error
	)
	switch {
	case errors.As(err, &dnsErr),
		errors.As(err, &opErr),
		errors.As(err, &netErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, io.EOF),
		errors.As(err, &urlErr):
		return communicationError("Error fetching information", err)
	}

	return genericError("Something really wrong happened!", err)
}
