package cache

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/stratcache/strategy"
)

// Config is the file form of the cache settings, e.g.
//
//	max_age_seconds: 300   # fractions such as 0.5 are allowed
//	max_entries: 10000
//	store: memory
//	strategy: StaleWhileRevalidate
//	fetch_timeout: 250ms
type Config struct {
	MaxAgeSeconds float64       `yaml:"max_age_seconds"`
	MaxEntries    int           `yaml:"max_entries"`
	Store         string        `yaml:"store"`
	FallbackStore string        `yaml:"fallback_store"`
	Strategy      string        `yaml:"strategy"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cache: read config: %w", err)
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML into a Config. Unknown fields are rejected.
// Empty input yields the zero Config.
func ParseConfig(b []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("cache: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that cannot be coerced. Negative bounds are
// not errors here; New coerces them to 0.
func (c Config) Validate() error {
	if c.Strategy != "" {
		if _, err := strategy.ParseKind(c.Strategy); err != nil {
			return fmt.Errorf("cache: config: %w", err)
		}
	}
	if c.FetchTimeout < 0 {
		return fmt.Errorf("%w: fetch_timeout must not be negative, got %v", strategy.ErrInvalidArgument, c.FetchTimeout)
	}
	return nil
}

// Kind returns the configured strategy, CacheOnly when unset.
func (c Config) Kind() (strategy.Kind, error) {
	if c.Strategy == "" {
		return strategy.KindCacheOnly, nil
	}
	return strategy.ParseKind(c.Strategy)
}

// WithConfig returns opt with the values set in cfg applied on top.
// Zero-valued fields in cfg leave opt unchanged.
func WithConfig[K comparable, V any](opt Options[K, V], cfg Config) Options[K, V] {
	if cfg.MaxAgeSeconds != 0 {
		opt.MaxAgeSeconds = cfg.MaxAgeSeconds
	}
	if cfg.MaxEntries != 0 {
		opt.MaxEntries = cfg.MaxEntries
	}
	if cfg.Store != "" {
		opt.Store = cfg.Store
	}
	if cfg.FallbackStore != "" {
		opt.FallbackStore = cfg.FallbackStore
	}
	if cfg.FetchTimeout != 0 {
		opt.FetchTimeout = cfg.FetchTimeout
	}
	return opt
}
