package oauth

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ConfigSource reads a configuration subtree into a struct.
// *config.Config satisfies it.
type ConfigSource interface {
	Unmarshal(path string, out any) error
}

// ProviderConfig holds the credentials a driver is built from.
// It is read from "services.<driver name>" in the ConfigSource.
type ProviderConfig struct {
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect"`
	Scopes       []string `koanf:"scopes"`
}

// Factory builds a Provider from its configuration.
type Factory func(cfg ProviderConfig) (Provider, error)

// Manager resolves drivers by name. Factories are registered at startup
// with Extend; each driver is built on first use and cached.
type Manager struct {
	config    ConfigSource
	factories map[string]Factory
	clients   map[string]*Client
	opts      []ClientOption
	mu        sync.Mutex
}

// NewManager creates a Manager reading driver credentials from cfg.
// The options are applied to every Client the Manager builds.
func NewManager(cfg ConfigSource, opts ...ClientOption) *Manager {
	return &Manager{
		config:    cfg,
		factories: make(map[string]Factory),
		clients:   make(map[string]*Client),
		opts:      opts,
	}
}

// Extend registers a factory under name, replacing any previous one.
func (m *Manager) Extend(name string, f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.factories[name] = f
	delete(m.clients, name)
}

// Driver returns the Client for name, building it on first use.
// Configuration errors from the factory are returned as-is and the
// driver is not cached, so a later call retries the build.
func (m *Manager) Driver(name string) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.clients[name]; ok {
		return c, nil
	}

	f, ok := m.factories[name]
	if !ok {
		return nil, errors.Join(ErrUnknownDriver, fmt.Errorf("driver %q", name))
	}

	var cfg ProviderConfig
	if m.config != nil {
		if err := m.config.Unmarshal("services."+name, &cfg); err != nil {
			return nil, fmt.Errorf("oauth: read %s config: %w", name, err)
		}
	}

	p, err := f(cfg)
	if err != nil {
		return nil, fmt.Errorf("oauth: build %s driver: %w", name, err)
	}

	c := NewClient(p, m.opts...)
	m.clients[name] = c
	return c, nil
}

// Drivers returns the registered driver names, sorted.
func (m *Manager) Drivers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Sorted(maps.Keys(m.factories))
}
