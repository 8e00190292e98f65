package discord

import "github.com/dmitrymomot/socialite/pkg/oauth"

// Register adds the Discord driver to m under ProviderName. The driver is
// built from "services.discord" on first resolution; missing credentials
// surface then as the constructor's error.
func Register(m *oauth.Manager) {
	m.Extend(ProviderName, func(cfg oauth.ProviderConfig) (oauth.Provider, error) {
		p, err := New(Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
