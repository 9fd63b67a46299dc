// Command bench runs a synthetic workload through one caching strategy and
// exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/stratcache/cache"
	pmet "github.com/IvanBrykalov/stratcache/metrics/prom"
	"github.com/IvanBrykalov/stratcache/strategy"
)

var errBackend = errors.New("bench: synthetic backend failure")

func main() {
	// ---- Flags ----
	var (
		configPath = flag.String("config", "", "YAML cache config; flags below override it")
		maxEntries = flag.Int("max_entries", 100_000, "entry bound (0 = unbounded)")
		maxAge     = flag.Float64("max_age", 0, "max entry age in seconds, fractions allowed (0 = unbounded)")
		kindName   = flag.String("strategy", "CacheFirst", "CacheOnly | FetchOnly | CacheFirst | FetchFirst | StaleWhileRevalidate")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = max_entries/2)")

		fetchLatency = flag.Duration("fetch_latency", time.Millisecond, "synthetic fetcher latency")
		fetchFailPct = flag.Int("fetch_fail", 0, "synthetic fetcher failure percentage [0..100]")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
		logFormat   = flag.String("log-format", "text", "log format: text | json")
	)
	flag.Parse()

	logger := newLogger(*logFormat)
	slog.SetDefault(logger)

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// ---- Options: config file first, explicit flags on top ----
	opt := cache.Options[string, string]{
		MaxEntries:    *maxEntries,
		MaxAgeSeconds: *maxAge,
		Logger:        logger,
	}
	if *configPath != "" {
		cfg, err := cache.LoadConfig(*configPath)
		if err != nil {
			fatal(logger, "load config", err)
		}
		opt = cache.WithConfig(opt, cfg)
		if cfg.Strategy != "" && !set["strategy"] {
			*kindName = cfg.Strategy
		}
		if set["max_entries"] {
			opt.MaxEntries = *maxEntries
		}
		if set["max_age"] {
			opt.MaxAgeSeconds = *maxAge
		}
	}
	kind, err := strategy.ParseKind(*kindName)
	if err != nil {
		fatal(logger, "parse strategy", err)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			logger.Info("pprof: serving", "addr", *pprofAddr)
			logger.Error("pprof: server stopped", "err", http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	opt.Metrics = pmet.New(nil, "stratcache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		logger.Info("metrics: serving", "addr", *metricsAddr)
		logger.Error("metrics: server stopped", "err", http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build cache ----
	c, err := cache.New[string, string](opt)
	if err != nil {
		fatal(logger, "build cache", err)
	}
	defer func() { _ = c.Close() }()

	// ---- Preload to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = opt.MaxEntries / 2
	}
	ctx := context.Background()
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		_ = c.Set(ctx, k, "v"+strconv.Itoa(i))
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	failPctVal := *fetchFailPct
	latency := *fetchLatency
	keysMax, err := keyspaceMax(*keys)
	if err != nil {
		fatal(logger, "invalid flags", err)
	}
	seedBase := *seed
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	var failures atomic.Uint64
	onError := func(error) { failures.Add(1) }

	// ---- Load generation ----
	var reads, writes, found, absent, errs, total atomic.Uint64
	runCtx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	start := time.Now()
	var g errgroup.Group
	for w := 0; w < workersN; w++ {
		id := w
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, *zipfS, *zipfV, keysMax)
			if localZipf == nil {
				return fmt.Errorf("-zipf_s must be > 1 and -zipf_v >= 1, got %v and %v", *zipfS, *zipfV)
			}
			failR := rand.New(rand.NewSource(seedBase - int64(id)))
			var failMu sync.Mutex

			fetch := func(ctx context.Context) (string, error) {
				if latency > 0 {
					select {
					case <-ctx.Done():
						return "", ctx.Err()
					case <-time.After(latency):
					}
				}
				// failR is shared with background revalidations.
				failMu.Lock()
				fail := int(failR.Int31n(100)) < failPctVal
				failMu.Unlock()
				if fail {
					return "", errBackend
				}
				return "fresh", nil
			}
			plan, err := strategy.NewPlan[string, string](kind, fetch, onError)
			if err != nil {
				return err
			}

			for runCtx.Err() == nil {
				total.Add(1)
				k := "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
				if int(localR.Int31n(100)) < readPctVal {
					reads.Add(1)
					_, ok, err := c.Get(runCtx, k, plan)
					switch {
					case err != nil:
						errs.Add(1)
					case ok:
						found.Add(1)
					default:
						absent.Add(1)
					}
				} else {
					writes.Add(1)
					_ = c.Set(runCtx, k, "v"+strconv.Itoa(localR.Int()))
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatal(logger, "workload", err)
	}
	elapsed := time.Since(start)
	resident, _ := c.Keys(ctx)
	_ = c.Close()

	// ---- Report ----
	ops := total.Load()
	readsN := reads.Load()
	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(found.Load()) / float64(readsN) * 100
	}

	fmt.Printf("strategy=%s max_entries=%d max_age=%gs workers=%d keys=%d dur=%v seed=%d\n",
		kind, opt.MaxEntries, opt.MaxAgeSeconds, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writes.Load())
	fmt.Printf("found=%d  absent=%d  errors=%d  found-rate=%.2f%%  handled-failures=%d\n",
		found.Load(), absent.Load(), errs.Load(), hitRate, failures.Load())
	fmt.Printf("resident=%d\n", len(resident))
}

// keyspaceMax returns the largest key index for a keyspace of n keys.
func keyspaceMax(n int) (uint64, error) {
	if n < 1 {
		return 0, fmt.Errorf("-keys must be at least 1, got %d", n)
	}
	return uint64(n - 1), nil
}

func newLogger(format string) *slog.Logger {
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
