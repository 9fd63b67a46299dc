package memory

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
)

// benchmarkMix exercises a read/write mix against a warm store.
// Every operation takes the single store lock, so this measures the
// contended path under RunParallel.
func benchmarkMix(b *testing.B, readsPct int) {
	s := New[string, string](Options[string, string]{MaxEntries: 100_000})

	// Preload half the bound to get a realistic hit-rate.
	for i := 0; i < 50_000; i++ {
		_ = s.Set(ctx, "k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1 // hot keyspace

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				_, _, _ = s.Get(ctx, k)
			} else {
				_ = s.Set(ctx, k, "v")
			}
			i++
		}
	})
}

func BenchmarkStore_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkStore_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// benchmarkMixInt is the same workload with int keys, which removes
// strconv/alloc noise from the hot path.
func benchmarkMixInt(b *testing.B, readsPct int) {
	s := New[int, int](Options[int, int]{MaxEntries: 100_000})
	for i := 0; i < 50_000; i++ {
		_ = s.Set(ctx, i, 1)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := i & keyMask
			if r.Intn(100) < readsPct {
				_, _, _ = s.Get(ctx, k)
			} else {
				_ = s.Set(ctx, k, 1)
			}
			i++
		}
	})
}

func BenchmarkStore_IntKeys_90r10w(b *testing.B) { benchmarkMixInt(b, 90) }
func BenchmarkStore_IntKeys_50r50w(b *testing.B) { benchmarkMixInt(b, 50) }
