package cache

import (
	"context"
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/stratcache/strategy"
)

// benchmarkPlan runs gets through plan against a warm cache.
// RunParallel spawns GOMAXPROCS goroutines.
func benchmarkPlan(b *testing.B, plan strategy.Plan[string, string], readsPct int) {
	ctx := context.Background()
	c, err := New[string, string](Options[string, string]{
		MaxEntries: 100_000,
		Logger:     quietLogger(),
	})
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = c.Close() })

	// Preload half the bound to get a realistic hit-rate.
	for i := 0; i < 50_000; i++ {
		_ = c.Set(ctx, "k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				_, _, _ = c.Get(ctx, k, plan)
			} else {
				_ = c.Set(ctx, k, "v")
			}
			i++
		}
	})
}

func benchFetch(context.Context) (string, error) { return "v", nil }

func BenchmarkCache_CacheOnly_90r10w(b *testing.B) {
	benchmarkPlan(b, strategy.UseCacheOnly[string, string](), 90)
}

func BenchmarkCache_CacheFirst_90r10w(b *testing.B) {
	benchmarkPlan(b, strategy.UseCacheFirst[string, string](benchFetch), 90)
}

func BenchmarkCache_CacheFirst_50r50w(b *testing.B) {
	benchmarkPlan(b, strategy.UseCacheFirst[string, string](benchFetch), 50)
}

func BenchmarkCache_StaleWhileRevalidate_90r10w(b *testing.B) {
	benchmarkPlan(b, strategy.UseStaleWhileRevalidate[string, string](benchFetch, nil), 90)
}
