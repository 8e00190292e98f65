package oauth

import (
	"context"
	"net/url"

	"golang.org/x/oauth2"
)

// User is the provider-agnostic user record returned after a successful
// authorization. Optional fields are nil when the provider did not report them.
type User struct {
	Email          *string
	Avatar         *string
	Raw            map[string]any // upstream JSON, verbatim
	ID             string
	Nickname       string
	Name           string
	Token          string
	RefreshToken   string
	ApprovedScopes []string
	ExpiresIn      int64
}

// Provider is the set of provider-specific pieces a Client needs to run
// the Authorization Code flow. The Client owns state handling and HTTP
// orchestration; a Provider only describes endpoints and payload shapes.
type Provider interface {
	// Name returns the provider identifier (e.g., "discord").
	Name() string

	// AuthCodeURL builds the authorization URL for the given state.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// TokenURL returns the token endpoint.
	TokenURL() string

	// TokenFields returns the form fields posted to TokenURL for the code exchange.
	TokenFields(code string) url.Values

	// FetchUser retrieves the raw user object with the access token.
	FetchUser(ctx context.Context, accessToken string) (map[string]any, error)

	// MapUser converts the raw user object into a User.
	// Token fields are filled in by the Client.
	MapUser(raw map[string]any) (*User, error)
}

// withToken returns a copy of u carrying the token fields.
func (u User) withToken(token *oauth2.Token, expiresIn int64, scopes []string) *User {
	u.Token = token.AccessToken
	u.RefreshToken = token.RefreshToken
	u.ExpiresIn = expiresIn
	u.ApprovedScopes = scopes
	return &u
}
