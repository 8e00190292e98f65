package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/socialite/pkg/oauth"
)

const (
	// ProviderName is the identifier the driver is registered under.
	ProviderName = "discord"

	apiBaseURL = "https://discordapp.com/api/"
	cdnBaseURL = "https://cdn.discordapp.com"
	userURL    = apiBaseURL + "users/@me"
)

// Endpoint is Discord's OAuth 2.0 endpoint, for callers driving an
// oauth2.Config directly (refreshing a stored token, for example). Discord
// expects client credentials in the form body, hence AuthStyleInParams.
// The Client does not use it: it posts TokenFields itself.
var Endpoint = oauth2.Endpoint{
	AuthURL:   apiBaseURL + "oauth2/authorize",
	TokenURL:  apiBaseURL + "oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// DefaultScopes returns the default scopes for Discord OAuth.
func DefaultScopes() []string {
	return []string{"identify", "email"}
}

// Config holds Discord OAuth configuration.
type Config struct {
	ClientID     string   `env:"DISCORD_OAUTH_CLIENT_ID,required" koanf:"client_id"`
	ClientSecret string   `env:"DISCORD_OAUTH_CLIENT_SECRET,required" koanf:"client_secret"`
	RedirectURL  string   `env:"DISCORD_OAUTH_REDIRECT_URL,required" koanf:"redirect"`
	Scopes       []string `env:"DISCORD_OAUTH_SCOPES" envSeparator:"," koanf:"scopes"`
}

// Provider implements oauth.Provider for Discord.
type Provider struct {
	config *oauth2.Config
}

var _ oauth.Provider = (*Provider)(nil)

// New creates a Discord provider.
// Returns an error if ClientID, ClientSecret or RedirectURL is empty.
func New(cfg Config) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, oauth.ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, oauth.ErrMissingClientSecret
	}
	if cfg.RedirectURL == "" {
		return nil, oauth.ErrMissingRedirectURL
	}

	scopes := slices.Clone(cfg.Scopes)
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     Endpoint,
		},
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ProviderName
}

// Scopes returns the scopes requested by default.
func (p *Provider) Scopes() []string {
	return slices.Clone(p.config.Scopes)
}

// AuthCodeURL builds the authorization URL. Scopes are joined by a space.
func (p *Provider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return p.config.AuthCodeURL(state, opts...)
}

// TokenURL returns the token endpoint.
func (p *Provider) TokenURL() string {
	return p.config.Endpoint.TokenURL
}

// TokenFields returns the form posted to the token endpoint.
func (p *Provider) TokenFields(code string) url.Values {
	return url.Values{
		"code":          {code},
		"client_id":     {p.config.ClientID},
		"client_secret": {p.config.ClientSecret},
		"redirect_uri":  {p.config.RedirectURL},
		"grant_type":    {"authorization_code"},
	}
}

// FetchUser retrieves the current user from the users/@me endpoint.
func (p *Provider) FetchUser(ctx context.Context, accessToken string) (map[string]any, error) {
	return oauth.FetchJSON(ctx, userURL, accessToken)
}

// MapUser converts a users/@me object into an oauth.User.
// The nickname keeps the username#discriminator form even for accounts
// migrated to unique usernames, whose discriminator is "0".
func (p *Provider) MapUser(raw map[string]any) (*oauth.User, error) {
	u, err := decodeUser(raw)
	if err != nil {
		return nil, err
	}

	name := u.Username
	if u.GlobalName != nil && *u.GlobalName != "" {
		name = *u.GlobalName
	}

	var avatar *string
	if u.Avatar != nil {
		a := AvatarURL(u.ID, *u.Avatar)
		avatar = &a
	}

	return &oauth.User{
		ID:       u.ID,
		Nickname: u.Username + "#" + u.Discriminator,
		Name:     name,
		Email:    u.Email,
		Avatar:   avatar,
		Raw:      raw,
	}, nil
}

// AvatarURL returns the CDN URL of a user's avatar.
func AvatarURL(userID, hash string) string {
	return fmt.Sprintf("%s/avatars/%s/%s.jpg", cdnBaseURL, userID, hash)
}

// discordUser is the subset of the users/@me object the mapping needs.
type discordUser struct {
	GlobalName    *string `json:"global_name"`
	Email         *string `json:"email"`
	Avatar        *string `json:"avatar"`
	ID            string  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator"`
}

func decodeUser(raw map[string]any) (*discordUser, error) {
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.Join(oauth.ErrDecodeFailed, fmt.Errorf("encode user: %w", err))
	}

	var u discordUser
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, errors.Join(oauth.ErrDecodeFailed, fmt.Errorf("decode user: %w", err))
	}
	if u.ID == "" {
		return nil, errors.Join(oauth.ErrDecodeFailed, errors.New("user object has no id"))
	}

	return &u, nil
}
