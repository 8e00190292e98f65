package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the prefix of environment variables read by default.
const DefaultEnvPrefix = "APP__"

// ErrLoadFailed is returned when a configuration source cannot be loaded.
var ErrLoadFailed = errors.New("config: failed to load")

// Config is a read-only view over layered configuration sources.
// Sources are applied in order: defaults, YAML file, environment.
type Config struct {
	k *koanf.Koanf
}

// Option configures how a Config is loaded.
type Option func(*options)

type options struct {
	defaults   map[string]any
	file       string
	searchFor  string
	envPrefix  string
	disableEnv bool
}

// WithDefaults sets default values, keyed by dotted paths
// (e.g. "services.discord.scopes").
func WithDefaults(defaults map[string]any) Option {
	return func(o *options) {
		o.defaults = defaults
	}
}

// WithFile loads the given YAML file. A missing file is an error.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithSearch looks for filename in the working directory and its parents
// and loads the first match. Nothing is loaded if no file is found.
func WithSearch(filename string) Option {
	return func(o *options) {
		o.searchFor = filename
	}
}

// WithEnvPrefix sets the environment variable prefix. Default: "APP__".
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithoutEnv disables environment overrides. Mostly useful in tests.
func WithoutEnv() Option {
	return func(o *options) {
		o.disableEnv = true
	}
}

// New loads configuration from the configured sources.
func New(opts ...Option) (*Config, error) {
	o := options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if len(o.defaults) > 0 {
		if err := k.Load(confmap.Provider(o.defaults, "."), nil); err != nil {
			return nil, errors.Join(ErrLoadFailed, fmt.Errorf("defaults: %w", err))
		}
	}

	path := o.file
	if path == "" && o.searchFor != "" {
		path = searchUp(o.searchFor, ".")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Join(ErrLoadFailed, fmt.Errorf("file %s: %w", path, err))
		}
	}

	if !o.disableEnv {
		prefix := o.envPrefix
		if err := k.Load(env.Provider(prefix, ".", func(s string) string {
			return TransformEnv(prefix, s)
		}), nil); err != nil {
			return nil, errors.Join(ErrLoadFailed, fmt.Errorf("env: %w", err))
		}
	}

	return &Config{k: k}, nil
}

// String returns the string at path, or "" if unset.
func (c *Config) String(path string) string {
	return c.k.String(path)
}

// Strings returns the string slice at path.
func (c *Config) Strings(path string) []string {
	return c.k.Strings(path)
}

// Bool returns the bool at path, or false if unset.
func (c *Config) Bool(path string) bool {
	return c.k.Bool(path)
}

// Duration returns the duration at path, or 0 if unset.
func (c *Config) Duration(path string) time.Duration {
	return c.k.Duration(path)
}

// Exists reports whether path is set.
func (c *Config) Exists(path string) bool {
	return c.k.Exists(path)
}

// Unmarshal decodes the subtree at path into out using `koanf` struct tags.
func (c *Config) Unmarshal(path string, out any) error {
	return c.k.Unmarshal(path, out)
}

// TransformEnv converts APP__SERVICES__DISCORD__CLIENT_ID to
// services.discord.client_id: the prefix is removed, the rest is
// lowercased and double underscores become dots.
func TransformEnv(prefix, s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, prefix))
	return strings.ReplaceAll(s, "__", ".")
}

// searchUp walks from startDir up to the filesystem root looking for filename.
func searchUp(filename, startDir string) string {
	d, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}

	for {
		p := filepath.Join(d, filename)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(d)
		if parent == d {
			return ""
		}
		d = parent
	}
}
