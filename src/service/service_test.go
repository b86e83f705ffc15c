package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"price-aggregator/src/cache"
	"price-aggregator/src/catalog"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

type stubFeed struct {
	connected    bool
	terminal     map[string]models.MPriceQuote
	terminalHits int64
	cache        *cache.PriceCache
	events       chan models.MFeedEvent
}

func (s *stubFeed) Run(ctx context.Context) {}

func (s *stubFeed) State() models.FeedState {
	if s.connected {
		return models.StateStreaming
	}
	return models.StateDisconnected
}

func (s *stubFeed) IsConnected() bool                { return s.connected }
func (s *stubFeed) Events() <-chan models.MFeedEvent { return s.events }

func (s *stubFeed) TerminalPrice(symbol string) (*models.MPriceQuote, error) {
	atomic.AddInt64(&s.terminalHits, 1)
	quote, ok := s.terminal[symbol]
	if !ok {
		return nil, fmt.Errorf("no price for %s", symbol)
	}
	s.cache.Set(symbol, quote)
	return &quote, nil
}

// -----------------------------------------------------------------------------

type stubSource struct {
	name    string
	quotes  map[string]models.MPriceQuote
	fetches int64
	err     error
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch() error {
	atomic.AddInt64(&s.fetches, 1)
	return s.err
}

func (s *stubSource) Get(symbol string) (models.MPriceQuote, bool) {
	quote, ok := s.quotes[symbol]
	return quote, ok
}

func (s *stubSource) Snapshot() map[string]models.MPriceQuote {
	out := make(map[string]models.MPriceQuote, len(s.quotes))
	for k, v := range s.quotes {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

func newTestService(pc *cache.PriceCache, feed *stubFeed, crypto, rates *stubSource) *PriceService {
	log := logger.NewLogger(nil, "test")
	if feed.cache == nil {
		feed.cache = pc
	}
	if feed.events == nil {
		feed.events = make(chan models.MFeedEvent, 1)
	}
	return NewPriceService(pc, catalog.NewCatalog(nil, log), feed, crypto, rates, log)
}

func quote(bid, ask float64) models.MPriceQuote {
	return models.NewPriceQuote(bid, ask, 1700000000000)
}

// -----------------------------------------------------------------------------

func TestFetchPriceCacheWins(t *testing.T) {
	pc := cache.NewPriceCache()
	pc.Set("EURUSD", quote(1.0850, 1.0851))

	feed := &stubFeed{terminal: map[string]models.MPriceQuote{"EURUSD": quote(9, 9.1)}}
	crypto := &stubSource{name: "crypto"}
	rates := &stubSource{name: "rates"}
	ps := newTestService(pc, feed, crypto, rates)

	got, ok := ps.FetchPrice("EURUSD")
	if !ok || got.Bid != 1.0850 {
		t.Errorf("cache hit must win, got %+v ok=%v", got, ok)
	}
	if atomic.LoadInt64(&crypto.fetches) != 0 {
		t.Error("cache hit must not trigger fallback fetches")
	}
}

// -----------------------------------------------------------------------------

func TestFetchPriceTerminalBeforeFallbacks(t *testing.T) {
	pc := cache.NewPriceCache()
	feed := &stubFeed{connected: true, terminal: map[string]models.MPriceQuote{"GBPUSD": quote(1.27, 1.2701)}}
	crypto := &stubSource{name: "crypto", quotes: map[string]models.MPriceQuote{"GBPUSD": quote(8, 8.1)}}
	rates := &stubSource{name: "rates"}
	ps := newTestService(pc, feed, crypto, rates)

	got, ok := ps.FetchPrice("GBPUSD")
	if !ok || got.Bid != 1.27 {
		t.Errorf("terminal must outrank fallbacks, got %+v ok=%v", got, ok)
	}
}

// -----------------------------------------------------------------------------

func TestFetchPriceSkipsTerminalWhileDisconnected(t *testing.T) {
	pc := cache.NewPriceCache()
	feed := &stubFeed{terminal: map[string]models.MPriceQuote{"BTCUSD": quote(9, 9.1)}}
	crypto := &stubSource{name: "crypto", quotes: map[string]models.MPriceQuote{"BTCUSD": quote(64000, 64001)}}
	rates := &stubSource{name: "rates"}
	ps := newTestService(pc, feed, crypto, rates)

	got, ok := ps.FetchPrice("BTCUSD")
	if !ok || got.Bid != 64000 {
		t.Errorf("fallback must answer while disconnected, got %+v ok=%v", got, ok)
	}
	if hits := atomic.LoadInt64(&feed.terminalHits); hits != 0 {
		t.Errorf("venue terminal consulted %d time(s) although the feed is disconnected", hits)
	}
}

// -----------------------------------------------------------------------------

func TestFetchBatchSkipsTerminalWhileDisconnected(t *testing.T) {
	pc := cache.NewPriceCache()
	feed := &stubFeed{terminal: map[string]models.MPriceQuote{"BTCUSD": quote(9, 9.1)}}
	crypto := &stubSource{name: "crypto", quotes: map[string]models.MPriceQuote{"BTCUSD": quote(64000, 64001)}}
	rates := &stubSource{name: "rates"}
	ps := newTestService(pc, feed, crypto, rates)

	prices := ps.FetchBatchPrices([]string{"BTCUSD"})
	if prices["BTCUSD"].Bid != 64000 {
		t.Errorf("fallback must answer the batch while disconnected, got %v", prices)
	}
	if hits := atomic.LoadInt64(&feed.terminalHits); hits != 0 {
		t.Errorf("venue terminal consulted %d time(s) although the feed is disconnected", hits)
	}
}

// -----------------------------------------------------------------------------

func TestFetchPriceCryptoPrecedesRates(t *testing.T) {
	pc := cache.NewPriceCache()
	feed := &stubFeed{}
	crypto := &stubSource{name: "crypto", quotes: map[string]models.MPriceQuote{"BTCUSD": quote(64000, 64001)}}
	rates := &stubSource{name: "rates", quotes: map[string]models.MPriceQuote{"BTCUSD": quote(5, 5.1)}}
	ps := newTestService(pc, feed, crypto, rates)

	got, ok := ps.FetchPrice("BTCUSD")
	if !ok || got.Bid != 64000 {
		t.Errorf("crypto fallback must outrank rates, got %+v ok=%v", got, ok)
	}

	// Fallback results must not pollute the shared cache
	if pc.Has("BTCUSD") {
		t.Error("fallback quote must not be written into the price cache")
	}
}

// -----------------------------------------------------------------------------

func TestFetchPriceMissIsNotAnError(t *testing.T) {
	pc := cache.NewPriceCache()
	ps := newTestService(pc, &stubFeed{}, &stubSource{name: "crypto"}, &stubSource{name: "rates"})

	if _, ok := ps.FetchPrice("ZZZFAKE"); ok {
		t.Error("unknown symbol must miss")
	}
}

// -----------------------------------------------------------------------------

func TestFetchPriceServesStaleOnFailedRefresh(t *testing.T) {
	pc := cache.NewPriceCache()
	crypto := &stubSource{
		name:   "crypto",
		quotes: map[string]models.MPriceQuote{"ETHUSD": quote(3100, 3101)},
		err:    fmt.Errorf("upstream down"),
	}
	ps := newTestService(pc, &stubFeed{}, crypto, &stubSource{name: "rates"})

	got, ok := ps.FetchPrice("ETHUSD")
	if !ok || got.Bid != 3100 {
		t.Errorf("stale quote must be served when refresh fails, got %+v ok=%v", got, ok)
	}
}

// -----------------------------------------------------------------------------

func TestFetchBatchPricesCompleteness(t *testing.T) {
	pc := cache.NewPriceCache()
	pc.Set("EURUSD", quote(1.0850, 1.0851))

	feed := &stubFeed{}
	crypto := &stubSource{name: "crypto", quotes: map[string]models.MPriceQuote{"BTCUSD": quote(64000, 64001)}}
	rates := &stubSource{name: "rates"}
	ps := newTestService(pc, feed, crypto, rates)

	prices := ps.FetchBatchPrices([]string{"EURUSD", "BTCUSD", "ZZZFAKE"})

	if len(prices) != 2 {
		t.Fatalf("got %d prices, want 2: %v", len(prices), prices)
	}
	if _, ok := prices["EURUSD"]; !ok {
		t.Error("EURUSD missing from batch result")
	}
	if _, ok := prices["BTCUSD"]; !ok {
		t.Error("BTCUSD missing from batch result")
	}
	if _, ok := prices["ZZZFAKE"]; ok {
		t.Error("ZZZFAKE must be omitted, not errored")
	}

	// Both fallbacks refresh exactly once for the unresolved remainder
	if atomic.LoadInt64(&crypto.fetches) != 1 || atomic.LoadInt64(&rates.fetches) != 1 {
		t.Errorf("fetches: crypto=%d rates=%d, want 1 each",
			atomic.LoadInt64(&crypto.fetches), atomic.LoadInt64(&rates.fetches))
	}
}

// -----------------------------------------------------------------------------

func TestFetchBatchAllCachedSkipsFallbacks(t *testing.T) {
	pc := cache.NewPriceCache()
	pc.Set("EURUSD", quote(1.0850, 1.0851))
	pc.Set("GBPUSD", quote(1.27, 1.2701))

	crypto := &stubSource{name: "crypto"}
	rates := &stubSource{name: "rates"}
	ps := newTestService(pc, &stubFeed{}, crypto, rates)

	prices := ps.FetchBatchPrices([]string{"EURUSD", "GBPUSD"})
	if len(prices) != 2 {
		t.Fatalf("got %d prices, want 2", len(prices))
	}
	if atomic.LoadInt64(&crypto.fetches) != 0 || atomic.LoadInt64(&rates.fetches) != 0 {
		t.Error("fully cached batch must not touch the fallbacks")
	}
}

// -----------------------------------------------------------------------------

func TestConnectionStatus(t *testing.T) {
	pc := cache.NewPriceCache()
	pc.Set("EURUSD", quote(1.0850, 1.0851))
	ps := newTestService(pc, &stubFeed{}, &stubSource{name: "crypto"}, &stubSource{name: "rates"})

	status := ps.ConnectionStatus()
	if status.IsConnected {
		t.Error("stub feed reports disconnected")
	}
	if status.PriceCount != 1 {
		t.Errorf("PriceCount = %d, want 1", status.PriceCount)
	}
	if status.State != models.StateDisconnected {
		t.Errorf("State = %s", status.State)
	}
}

// -----------------------------------------------------------------------------

func TestInstrumentsFallBackToUniverseWhenCacheEmpty(t *testing.T) {
	pc := cache.NewPriceCache()
	ps := newTestService(pc, &stubFeed{}, &stubSource{name: "crypto"}, &stubSource{name: "rates"})

	if got := len(ps.Instruments()); got == 0 {
		t.Fatal("empty cache must still list the static universe")
	}

	pc.Set("EURUSD", quote(1.0850, 1.0851))
	instruments := ps.Instruments()
	if len(instruments) != 1 || instruments[0].Symbol != "EURUSD" {
		t.Errorf("live coverage must drive the listing, got %v", instruments)
	}
}
