package oauth_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/socialite/pkg/oauth"
)

// mapConfig is an in-memory ConfigSource.
type mapConfig map[string]oauth.ProviderConfig

func (m mapConfig) Unmarshal(path string, out any) error {
	cfg, ok := m[path]
	if !ok {
		return nil
	}
	*out.(*oauth.ProviderConfig) = cfg
	return nil
}

func TestManager(t *testing.T) {
	t.Parallel()

	t.Run("unknown driver", func(t *testing.T) {
		t.Parallel()
		m := oauth.NewManager(mapConfig{})
		c, err := m.Driver("nope")
		require.ErrorIs(t, err, oauth.ErrUnknownDriver)
		require.Nil(t, c)
	})

	t.Run("lazy build with config", func(t *testing.T) {
		t.Parallel()

		var (
			calls int
			got   oauth.ProviderConfig
		)
		m := oauth.NewManager(mapConfig{
			"services.stub": {ClientID: "id", ClientSecret: "secret", RedirectURL: "r"},
		})
		m.Extend("stub", func(cfg oauth.ProviderConfig) (oauth.Provider, error) {
			calls++
			got = cfg
			return &stubProvider{baseURL: "https://stub.example.com"}, nil
		})
		require.Zero(t, calls)

		c, err := m.Driver("stub")
		require.NoError(t, err)
		require.Equal(t, "stub", c.Name())
		require.Equal(t, "id", got.ClientID)
		require.Equal(t, "secret", got.ClientSecret)
		require.Equal(t, "r", got.RedirectURL)

		_, err = m.Driver("stub")
		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("factory error is not cached", func(t *testing.T) {
		t.Parallel()

		fail := true
		m := oauth.NewManager(nil)
		m.Extend("stub", func(oauth.ProviderConfig) (oauth.Provider, error) {
			if fail {
				return nil, oauth.ErrMissingClientID
			}
			return &stubProvider{}, nil
		})

		_, err := m.Driver("stub")
		require.ErrorIs(t, err, oauth.ErrMissingClientID)

		fail = false
		c, err := m.Driver("stub")
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("extend replaces cached driver", func(t *testing.T) {
		t.Parallel()

		m := oauth.NewManager(nil)
		m.Extend("stub", func(oauth.ProviderConfig) (oauth.Provider, error) {
			return &stubProvider{baseURL: "https://one.example.com"}, nil
		})
		first, err := m.Driver("stub")
		require.NoError(t, err)

		m.Extend("stub", func(oauth.ProviderConfig) (oauth.Provider, error) {
			return &stubProvider{baseURL: "https://two.example.com"}, nil
		})
		second, err := m.Driver("stub")
		require.NoError(t, err)
		require.NotSame(t, first, second)
		require.Equal(t, "https://two.example.com/token", second.Provider().TokenURL())
	})

	t.Run("config error", func(t *testing.T) {
		t.Parallel()

		m := oauth.NewManager(brokenConfig{})
		m.Extend("stub", func(oauth.ProviderConfig) (oauth.Provider, error) {
			return &stubProvider{}, nil
		})
		_, err := m.Driver("stub")
		require.Error(t, err)
	})

	t.Run("drivers sorted", func(t *testing.T) {
		t.Parallel()

		m := oauth.NewManager(nil)
		for _, name := range []string{"zeta", "alpha", "discord"} {
			m.Extend(name, func(oauth.ProviderConfig) (oauth.Provider, error) { return &stubProvider{}, nil })
		}
		require.Equal(t, []string{"alpha", "discord", "zeta"}, m.Drivers())
	})

	t.Run("concurrent resolution builds once", func(t *testing.T) {
		t.Parallel()

		var (
			mu    sync.Mutex
			calls int
		)
		m := oauth.NewManager(nil)
		m.Extend("stub", func(oauth.ProviderConfig) (oauth.Provider, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return &stubProvider{}, nil
		})

		var wg sync.WaitGroup
		for range 16 {
			wg.Go(func() {
				_, _ = m.Driver("stub")
			})
		}
		wg.Wait()
		require.Equal(t, 1, calls)
	})
}

type brokenConfig struct{}

func (brokenConfig) Unmarshal(string, any) error { return errors.New("boom") }
