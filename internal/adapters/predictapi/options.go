package predictapi

import (
	"net/http"
	"time"

	"github.com/okian/coverscope/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds every call. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithBreaker configures the circuit breaker: it opens after maxFailures
// consecutive failures and probes again after openTimeout.
func WithBreaker(maxFailures int, openTimeout time.Duration) Option {
	return func(c *Client) {
		if maxFailures > 0 {
			c.maxFailures = uint32(maxFailures)
		}
		if openTimeout > 0 {
			c.openTimeout = openTimeout
		}
	}
}

// WithBreakerName labels the breaker in logs and metrics.
func WithBreakerName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.breakerName = name
		}
	}
}
