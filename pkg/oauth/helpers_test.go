package oauth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/socialite/pkg/oauth"
)

// stubProvider is a minimal provider pointing at a test server.
type stubProvider struct {
	baseURL string
}

var _ oauth.Provider = (*stubProvider)(nil)

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	cfg := &oauth2.Config{
		ClientID:    "stub-id",
		RedirectURL: "https://app.example.com/callback",
		Scopes:      []string{"read", "write"},
		Endpoint:    oauth2.Endpoint{AuthURL: p.baseURL + "/authorize"},
	}
	return cfg.AuthCodeURL(state, opts...)
}

func (p *stubProvider) TokenURL() string { return p.baseURL + "/token" }

func (p *stubProvider) TokenFields(code string) url.Values {
	return url.Values{"code": {code}, "grant_type": {"authorization_code"}}
}

func (p *stubProvider) FetchUser(ctx context.Context, accessToken string) (map[string]any, error) {
	return oauth.FetchJSON(ctx, p.baseURL+"/me", accessToken)
}

func (p *stubProvider) MapUser(raw map[string]any) (*oauth.User, error) {
	id, ok := raw["id"].(string)
	if !ok {
		return nil, errors.New("no id")
	}
	return &oauth.User{ID: id, Nickname: id, Name: id, Raw: raw}, nil
}

func newStubServer(t *testing.T, mux *http.ServeMux) (*httptest.Server, *stubProvider) {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &stubProvider{baseURL: srv.URL}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

const testSecret = "0123456789abcdef0123456789abcdef"
