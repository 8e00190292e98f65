package oauth

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client for the token exchange.
// This is useful for testing with httptest servers or injecting
// custom transports (e.g., logging, timeouts).
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithStateStore sets where the anti-forgery state is kept between
// the redirect and the callback. Defaults to a CookieStateStore
// signed with a per-process random key.
func WithStateStore(store StateStore) ClientOption {
	return func(c *Client) {
		if store != nil {
			c.states = store
		}
	}
}

// WithStateless disables state generation and verification.
// Only use it when the host verifies the callback some other way
// (e.g. API clients doing their own PKCE).
func WithStateless() ClientOption {
	return func(c *Client) {
		c.stateless = true
	}
}

// WithLogger sets the logger used for flow events.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithScopes overrides the requested scopes for a single redirect.
// Scopes are joined by a single space.
func WithScopes(scopes ...string) oauth2.AuthCodeOption {
	return oauth2.SetAuthURLParam("scope", strings.Join(scopes, " "))
}

// WithParam adds an extra query parameter to the authorization URL.
func WithParam(key, value string) oauth2.AuthCodeOption {
	return oauth2.SetAuthURLParam(key, value)
}
