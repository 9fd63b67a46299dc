package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/stratcache/strategy"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
max_age_seconds: 300
max_entries: 10000
store: memory
fallback_store: memory
strategy: StaleWhileRevalidate
fetch_timeout: 250ms
`))
	require.NoError(t, err)
	require.Equal(t, Config{
		MaxAgeSeconds: 300,
		MaxEntries:    10000,
		Store:         "memory",
		FallbackStore: "memory",
		Strategy:      "StaleWhileRevalidate",
		FetchTimeout:  250 * time.Millisecond,
	}, cfg)

	kind, err := cfg.Kind()
	require.NoError(t, err)
	require.Equal(t, strategy.KindStaleWhileRevalidate, kind)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)

	kind, err := cfg.Kind()
	require.NoError(t, err)
	require.Equal(t, strategy.KindCacheOnly, kind)
}

func TestParseConfig_Rejects(t *testing.T) {
	_, err := ParseConfig([]byte("max_entrys: 5\n"))
	require.Error(t, err, "unknown fields must be rejected")

	_, err = ParseConfig([]byte("strategy: NetworkOnly\n"))
	require.ErrorIs(t, err, strategy.ErrUnsupportedStrategy)
	require.ErrorIs(t, err, strategy.ErrInvalidArgument)

	_, err = ParseConfig([]byte("fetch_timeout: -1s\n"))
	require.ErrorIs(t, err, strategy.ErrInvalidArgument)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_entries: 3\nstrategy: CacheFirst\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.MaxEntries)
	require.Equal(t, "CacheFirst", cfg.Strategy)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWithConfig(t *testing.T) {
	base := Options[string, int]{MaxAgeSeconds: 10, MaxEntries: 20, Store: "memory"}

	got := WithConfig(base, Config{})
	require.Equal(t, 10.0, got.MaxAgeSeconds)
	require.Equal(t, 20, got.MaxEntries)

	got = WithConfig(base, Config{MaxEntries: 5, FallbackStore: "memory", FetchTimeout: time.Second})
	require.Equal(t, 10.0, got.MaxAgeSeconds)
	require.Equal(t, 5, got.MaxEntries)
	require.Equal(t, "memory", got.FallbackStore)
	require.Equal(t, time.Second, got.FetchTimeout)
}

func TestParseConfig_FractionalMaxAge(t *testing.T) {
	cfg, err := ParseConfig([]byte("max_age_seconds: 0.5\n"))
	require.NoError(t, err)
	require.Equal(t, 0.5, cfg.MaxAgeSeconds)

	opt := WithConfig(Options[string, int]{}, cfg)
	require.Equal(t, 500*time.Millisecond, opt.withDefaults().storeConfig().MaxAge)
}
