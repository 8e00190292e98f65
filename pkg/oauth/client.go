package oauth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/socialite/pkg/logger"
)

// maxTokenBody caps the token endpoint response size.
const maxTokenBody = 1 << 20

// Client runs the OAuth2 Authorization Code flow for a single Provider.
// It generates and verifies the anti-forgery state, performs the token
// exchange and the user fetch, and delegates everything provider-specific
// to the Provider. A Client is safe for concurrent use.
type Client struct {
	provider   Provider
	httpClient *http.Client
	states     StateStore
	logger     *slog.Logger
	stateless  bool
}

// NewClient creates a Client for the given provider.
func NewClient(p Provider, opts ...ClientOption) *Client {
	c := &Client{
		provider:   p,
		httpClient: http.DefaultClient,
		logger:     logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.states == nil && !c.stateless {
		// The secret is valid by construction, so the error is impossible.
		c.states, _ = NewCookieStateStore(newRandomSecret())
	}
	c.logger = c.logger.With(slog.String("provider", p.Name()))

	return c
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return c.provider.Name()
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

// AuthCodeURL generates a fresh state, saves it for the current browser
// and returns the provider's authorization URL.
func (c *Client) AuthCodeURL(w http.ResponseWriter, r *http.Request, opts ...oauth2.AuthCodeOption) (string, error) {
	if c.stateless {
		return c.provider.AuthCodeURL("", opts...), nil
	}

	state, err := newState()
	if err != nil {
		return "", fmt.Errorf("oauth: generate state: %w", err)
	}
	if err := c.states.Save(w, r, c.provider.Name(), state); err != nil {
		return "", err
	}

	c.logger.DebugContext(r.Context(), "authorization redirect issued")
	return c.provider.AuthCodeURL(state, opts...), nil
}

// Redirect sends the browser to the provider's authorization page.
func (c *Client) Redirect(w http.ResponseWriter, r *http.Request, opts ...oauth2.AuthCodeOption) error {
	u, err := c.AuthCodeURL(w, r, opts...)
	if err != nil {
		return err
	}
	http.Redirect(w, r, u, http.StatusFound)
	return nil
}

// User completes the flow on the callback request: it verifies the state,
// exchanges the code for a token and returns the mapped user.
func (c *Client) User(w http.ResponseWriter, r *http.Request) (*User, error) {
	ctx := r.Context()
	q := r.URL.Query()

	if !c.stateless {
		if err := c.verifyState(w, r, q.Get("state")); err != nil {
			c.logger.WarnContext(ctx, "callback state rejected", slog.String("error", err.Error()))
			return nil, err
		}
	}

	if e := q.Get("error"); e != "" {
		return nil, errors.Join(ErrAuthorizationDenied,
			fmt.Errorf("error=%s description=%s", e, q.Get("error_description")))
	}

	code := q.Get("code")
	if code == "" {
		return nil, ErrMissingCode
	}

	token, err := c.Exchange(ctx, code)
	if err != nil {
		c.logger.WarnContext(ctx, "token exchange failed", slog.String("error", err.Error()))
		return nil, err
	}

	return c.userWithToken(ctx, token)
}

// UserFromToken fetches and maps the user for an access token obtained
// outside of this Client (e.g. from a mobile app).
func (c *Client) UserFromToken(ctx context.Context, accessToken string) (*User, error) {
	if accessToken == "" {
		return nil, ErrMissingAccessToken
	}
	return c.userWithToken(ctx, &oauth2.Token{AccessToken: accessToken})
}

// Exchange posts the provider's token fields to its token endpoint and
// returns the token. Errors are not retried.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	form := c.provider.TokenFields(code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.TokenURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("build token request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("exchange code: %w", err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, errors.New("unexpected nil response from token endpoint"))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenBody))
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read token response: %w", err))
	}

	return parseToken(body)
}

func (c *Client) verifyState(w http.ResponseWriter, r *http.Request, got string) error {
	expected, err := c.states.Pull(w, r, c.provider.Name())
	if err != nil {
		return err
	}
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
		return errors.Join(ErrInvalidState, errors.New("state mismatch"))
	}
	return nil
}

func (c *Client) userWithToken(ctx context.Context, token *oauth2.Token) (*User, error) {
	ctx = ContextWithHTTPClient(ctx, c.httpClient)

	raw, err := c.provider.FetchUser(ctx, token.AccessToken)
	if err != nil {
		c.logger.WarnContext(ctx, "user fetch failed", slog.String("error", err.Error()))
		return nil, err
	}

	user, err := c.provider.MapUser(raw)
	if err != nil {
		return nil, err
	}

	var scopes []string
	if s, ok := token.Extra("scope").(string); ok {
		scopes = strings.Fields(s)
	}

	return user.withToken(token, token.ExpiresIn, scopes), nil
}

// tokenResponse is the token endpoint's JSON body.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	ExpiresIn    int64  `json:"expires_in"`
}

func parseToken(body []byte) (*oauth2.Token, error) {
	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode token: %w", err))
	}
	if tr.AccessToken == "" {
		return nil, errors.Join(ErrMissingAccessToken, errors.New("token response has no access_token"))
	}

	var extra map[string]any
	if err := json.Unmarshal(body, &extra); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode token: %w", err))
	}

	token := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
	}
	if tr.ExpiresIn > 0 {
		token.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	return token.WithExtra(extra), nil
}
