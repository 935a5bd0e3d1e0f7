package perftests

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// Benchmark 1: PlaceBid - Isolated Auctions (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	svc, ids := setupService(b, b.N)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		amount := decimal.NewFromInt(int64(50 + rand.Intn(100)))
		if _, err := svc.PlaceBid(ctx, ids[i], bidderID(i), amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentHotAuction(b *testing.B) {
	svc, ids := setupService(b, 1)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50
	var accepted, rejected int64

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			next := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			if _, err := svc.PlaceBid(ctx, ids[0], bidderID(rnd.Int()), decimal.NewFromInt(next)); err != nil {
				atomic.AddInt64(&rejected, 1)
				continue
			}
			atomic.AddInt64(&accepted, 1)
		}
	})

	b.StopTimer()
	if _, err := svc.Audit(ctx, ids[0]); err != nil {
		b.Fatalf("ledger drifted under contention: %v", err)
	}
	b.ReportMetric(float64(accepted)/float64(accepted+rejected), "accepted/op")
}

// Benchmark 3: PlaceBid - Many Auctions in parallel (gate keys independent)
func Benchmark_PlaceBid_ConcurrentManyAuctions(b *testing.B) {
	const numAuctions = 256
	svc, ids := setupService(b, numAuctions)
	ctx := context.Background()

	var bids [numAuctions]int64
	for i := range bids {
		bids[i] = 50
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			i := rnd.Intn(numAuctions)
			next := atomic.AddInt64(&bids[i], 1)
			_, _ = svc.PlaceBid(ctx, ids[i], bidderID(rnd.Int()), decimal.NewFromInt(next))
		}
	})
}

// Benchmark 4: GetAuction - Concurrent reads of one auction
func Benchmark_GetAuction_ConcurrentHotAuction(b *testing.B) {
	svc, ids := setupService(b, 1)
	ctx := context.Background()

	for j := 0; j < 100; j++ {
		_, _ = svc.PlaceBid(ctx, ids[0], bidderID(j), decimal.NewFromInt(int64(50+j)))
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetAuction(ctx, ids[0]); err != nil {
				b.Errorf("failed to get auction: %v", err)
				return
			}
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_HotAuction(b *testing.B) {
	svc, ids := setupService(b, 1)
	ctx := context.Background()

	for j := 0; j < 50; j++ {
		_, _ = svc.PlaceBid(ctx, ids[0], bidderID(j), decimal.NewFromInt(int64(50+j*2)))
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				next := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, ids[0], bidderID(rnd.Int()), decimal.NewFromInt(next))
				continue
			}
			_, _ = svc.GetBids(ctx, ids[0])
		}
	})
}
