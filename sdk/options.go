package revopt

import (
	"log/slog"
	"net/http"
	"time"
)

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithTokenSource sets the supplier of the bearer credential.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithToken is shorthand for a static bearer token.
func WithToken(tok string) ClientOption {
	return func(c *Client) {
		c.tokens = StaticTokenSource(tok)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets the logger for the client.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithNodePacing sets a presentation delay between a node turning active
// and its completion being applied. Zero (the default) disables pacing;
// tests rely on that to stay deterministic.
func WithNodePacing(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pacing = d
	}
}
