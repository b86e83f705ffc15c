package cache

import (
	"sync"
	"testing"

	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

func TestSetGetLastWriteWins(t *testing.T) {
	pc := NewPriceCache()

	pc.Set("EURUSD", models.NewPriceQuote(1.0850, 1.0851, 1000))
	pc.Set("EURUSD", models.NewPriceQuote(1.0852, 1.0853, 2000))

	quote, ok := pc.Get("EURUSD")
	if !ok {
		t.Fatal("EURUSD missing after Set")
	}
	if quote.Bid != 1.0852 || quote.Time != 2000 {
		t.Errorf("expected the later write to win, got %+v", quote)
	}
	if quote.Mid != (1.0852+1.0853)/2 {
		t.Errorf("Mid = %v, want midpoint of bid/ask", quote.Mid)
	}
}

// -----------------------------------------------------------------------------

func TestGetMissingSymbol(t *testing.T) {
	pc := NewPriceCache()

	if _, ok := pc.Get("ZZZFAKE"); ok {
		t.Error("Get on an unknown symbol must report a miss")
	}
	if pc.Has("ZZZFAKE") {
		t.Error("Has on an unknown symbol must report false")
	}
}

// -----------------------------------------------------------------------------

func TestSnapshotIsACopy(t *testing.T) {
	pc := NewPriceCache()
	pc.Set("EURUSD", models.NewPriceQuote(1.0850, 1.0851, 1000))

	snapshot := pc.Snapshot()
	snapshot["EURUSD"] = models.NewPriceQuote(9, 9, 9)
	snapshot["GBPUSD"] = models.NewPriceQuote(1.27, 1.2701, 1000)

	quote, _ := pc.Get("EURUSD")
	if quote.Bid != 1.0850 {
		t.Error("mutating the snapshot must not affect the cache")
	}
	if pc.Has("GBPUSD") {
		t.Error("adding to the snapshot must not affect the cache")
	}
	if pc.Size() != 1 {
		t.Errorf("Size = %d, want 1", pc.Size())
	}
}

// -----------------------------------------------------------------------------

func TestConcurrentWriters(t *testing.T) {
	pc := NewPriceCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				pc.Set("BTCUSD", models.NewPriceQuote(float64(n), float64(n)+1, int64(j)))
				pc.Get("BTCUSD")
				pc.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	if !pc.Has("BTCUSD") {
		t.Error("BTCUSD missing after concurrent writes")
	}
}
