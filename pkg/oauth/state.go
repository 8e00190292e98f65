package oauth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/socialite/pkg/cookie"
)

const (
	stateLength       = 40
	defaultStateTTL   = 10 * time.Minute
	stateCookiePrefix = "oauth_state_"
)

// ErrBadStateSecret is returned when a state store secret is shorter than 32 bytes.
var ErrBadStateSecret = errors.New("oauth: state secret must be 32+ bytes")

// StateStore persists the anti-forgery state between the authorization
// redirect and the callback. The key is the provider name, so a single
// store can serve several drivers.
type StateStore interface {
	// Save remembers state for the current browser.
	Save(w http.ResponseWriter, r *http.Request, key, state string) error

	// Pull returns the saved state and forgets it.
	// Returns ErrInvalidState when nothing usable was saved.
	Pull(w http.ResponseWriter, r *http.Request, key string) (string, error)
}

// StateOption configures cookie attributes and lifetime of a state store.
type StateOption func(*stateOptions)

type stateOptions struct {
	domain    string
	path      string
	keyPrefix string
	ttl       time.Duration
	secure    bool
}

func defaultStateOptions() stateOptions {
	return stateOptions{
		path:      "/",
		keyPrefix: "oauth:state:",
		ttl:       defaultStateTTL,
	}
}

// WithStateTTL sets how long a saved state stays valid. Default: 10 minutes.
func WithStateTTL(d time.Duration) StateOption {
	return func(o *stateOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// WithCookieDomain sets the state cookie domain.
func WithCookieDomain(domain string) StateOption {
	return func(o *stateOptions) {
		o.domain = domain
	}
}

// WithCookiePath sets the state cookie path. Default: "/".
func WithCookiePath(path string) StateOption {
	return func(o *stateOptions) {
		o.path = path
	}
}

// WithCookieSecure sets the Secure flag on the state cookie.
func WithCookieSecure(secure bool) StateOption {
	return func(o *stateOptions) {
		o.secure = secure
	}
}

// WithKeyPrefix sets the storage key prefix for server-side stores.
// Default: "oauth:state:".
func WithKeyPrefix(prefix string) StateOption {
	return func(o *stateOptions) {
		o.keyPrefix = prefix
	}
}

// cookies builds the cookie manager for state cookies. SameSite stays at the
// manager's Lax default: the callback is a cross-site top-level navigation
// from the provider.
func (o stateOptions) cookies(secret string) *cookie.Manager {
	return cookie.New(
		cookie.WithSecret(secret),
		cookie.WithDomain(o.domain),
		cookie.WithPath(o.path),
		cookie.WithSecure(o.secure),
	)
}

// CookieStateStore keeps the state in an HMAC-signed cookie.
type CookieStateStore struct {
	cookies *cookie.Manager
	ttl     time.Duration
}

// NewCookieStateStore creates a cookie-backed state store.
// Returns ErrBadStateSecret if secret is shorter than 32 bytes.
func NewCookieStateStore(secret string, opts ...StateOption) (*CookieStateStore, error) {
	if len(secret) < cookie.MinSecretSize {
		return nil, ErrBadStateSecret
	}

	o := defaultStateOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &CookieStateStore{cookies: o.cookies(secret), ttl: o.ttl}, nil
}

// Save implements StateStore. The signed value carries the key, so a state
// issued for one driver cannot be replayed against another.
func (s *CookieStateStore) Save(w http.ResponseWriter, _ *http.Request, key, state string) error {
	return s.cookies.SetSigned(w, stateCookiePrefix+key, key+"\x00"+state, int(s.ttl.Seconds()))
}

// Pull implements StateStore. The cookie is cleared whether or not it verifies.
func (s *CookieStateStore) Pull(w http.ResponseWriter, r *http.Request, key string) (string, error) {
	name := stateCookiePrefix + key

	value, err := s.cookies.GetSigned(r, name)
	switch {
	case errors.Is(err, cookie.ErrNotFound):
		return "", errors.Join(ErrInvalidState, errors.New("state cookie not found"))
	case err != nil:
		s.cookies.Delete(w, name)
		return "", errors.Join(ErrInvalidState, err)
	}
	s.cookies.Delete(w, name)

	boundKey, state, ok := strings.Cut(value, "\x00")
	if !ok || boundKey != key {
		return "", errors.Join(ErrInvalidState, errors.New("state cookie issued for another driver"))
	}
	return state, nil
}

// newState returns a random URL-safe state of stateLength characters.
func newState() (string, error) {
	b := make([]byte, stateLength*3/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// newRandomSecret is used when no StateStore is configured.
func newRandomSecret() string {
	b := make([]byte, cookie.MinSecretSize)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
