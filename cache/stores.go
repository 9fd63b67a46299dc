package cache

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IvanBrykalov/stratcache/store"
	"github.com/IvanBrykalov/stratcache/store/memory"
	"github.com/IvanBrykalov/stratcache/strategy"
)

// ErrUnsupportedStore is returned by New for an unknown store name when
// fallback is disabled.
var ErrUnsupportedStore = fmt.Errorf("%w: unsupported store", strategy.ErrInvalidArgument)

// builtinStore constructs the built-in store called name.
func builtinStore[K comparable, V any](name string, cfg StoreConfig[K, V]) (store.Store[K, V], bool) {
	switch name {
	case StoreMemory:
		return memory.New[K, V](memory.Options[K, V]{
			MaxAge:     cfg.MaxAge,
			MaxEntries: cfg.MaxEntries,
			OnEvict:    cfg.OnEvict,
			Metrics:    cfg.Metrics,
			Clock:      cfg.Clock,
		}), true
	default:
		return nil, false
	}
}

// openStore selects the backing store: a ready-made instance, a factory, or
// a built-in name (falling back to FallbackStore for unknown names).
func openStore[K comparable, V any](opt Options[K, V]) (store.Store[K, V], error) {
	if opt.StoreInstance != nil {
		return opt.StoreInstance, nil
	}
	cfg := opt.storeConfig()
	if opt.StoreFactory != nil {
		st, err := opt.StoreFactory(cfg)
		if err != nil {
			return nil, fmt.Errorf("cache: store factory: %w", err)
		}
		if st == nil {
			return nil, fmt.Errorf("%w: factory returned nil", ErrUnsupportedStore)
		}
		return st, nil
	}

	if st, ok := builtinStore(opt.Store, cfg); ok {
		return st, nil
	}
	if opt.DisableFallback {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStore, opt.Store)
	}
	opt.Logger.Warn("cache: unsupported store, falling back",
		"store", opt.Store,
		"fallback", opt.FallbackStore,
	)
	if st, ok := builtinStore(opt.FallbackStore, cfg); ok {
		return st, nil
	}
	return nil, fmt.Errorf("%w: %q (fallback %q)", ErrUnsupportedStore, opt.Store, opt.FallbackStore)
}

// guardedStore drops non-cacheable values before they reach the backing
// store. Everything else passes through.
type guardedStore[K comparable, V any] struct {
	store.Store[K, V]
	cacheable func(V) bool
	log       *slog.Logger
}

func (g guardedStore[K, V]) Set(ctx context.Context, k K, v V) error {
	if store.IsAbsent(v) {
		return nil
	}
	if g.cacheable != nil && !g.cacheable(v) {
		g.log.Debug("cache: value not cacheable, skipping set", "key", k)
		return nil
	}
	return g.Store.Set(ctx, k, v)
}
