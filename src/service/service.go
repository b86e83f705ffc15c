package service

import (
	"sync"

	"price-aggregator/src/cache"
	"price-aggregator/src/catalog"
	"price-aggregator/src/interfaces"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

// PriceService is the single query facade over the price cache, the streaming
// feed and the REST fallback sources. Lookup order is fixed: cache, live
// terminal, crypto fallback, rates fallback. A symbol absent everywhere is a
// recoverable miss, never an error.
type PriceService struct {
	Cache   *cache.PriceCache
	Catalog *catalog.Catalog
	Feed    interfaces.IStreamingFeed
	Crypto  interfaces.IFallbackSource
	Rates   interfaces.IFallbackSource
	Logger  *logger.Logger

	// StockSessionOpen supplies the market-session hint for stock
	// instruments; nil disables the hint.
	StockSessionOpen func() *bool
}

// -----------------------------------------------------------------------------

func NewPriceService(pc *cache.PriceCache, cat *catalog.Catalog, feed interfaces.IStreamingFeed, crypto, rates interfaces.IFallbackSource, log *logger.Logger) *PriceService {
	return &PriceService{
		Cache:   pc,
		Catalog: cat,
		Feed:    feed,
		Crypto:  crypto,
		Rates:   rates,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// GetPrice is the cache-only read.
func (ps *PriceService) GetPrice(symbol string) (models.MPriceQuote, bool) {
	return ps.Cache.Get(symbol)
}

// -----------------------------------------------------------------------------

// FetchPrice resolves one symbol through the full fallback chain. Fallback
// quotes are served without being written into the shared cache, so a
// recovering live feed is never shadowed by synthetic prices.
func (ps *PriceService) FetchPrice(symbol string) (models.MPriceQuote, bool) {
	if quote, ok := ps.Cache.Get(symbol); ok {
		return quote, true
	}

	// The terminal is only consulted while the feed is streaming; a
	// disconnected feed must not cost a venue round trip per miss.
	if ps.Feed.IsConnected() {
		if quote, err := ps.Feed.TerminalPrice(symbol); err == nil && quote != nil {
			return *quote, true
		}
	}

	if err := ps.Crypto.Fetch(); err == nil {
		if quote, ok := ps.Crypto.Get(symbol); ok {
			return quote, true
		}
	} else if quote, ok := ps.Crypto.Get(symbol); ok {
		// Stale-but-available
		return quote, true
	}

	if err := ps.Rates.Fetch(); err == nil {
		if quote, ok := ps.Rates.Get(symbol); ok {
			return quote, true
		}
	} else if quote, ok := ps.Rates.Get(symbol); ok {
		return quote, true
	}

	return models.MPriceQuote{}, false
}

// -----------------------------------------------------------------------------

// FetchBatchPrices resolves many symbols, tolerating partial failure.
// Unresolvable symbols are omitted from the result.
func (ps *PriceService) FetchBatchPrices(symbols []string) map[string]models.MPriceQuote {
	prices := make(map[string]models.MPriceQuote, len(symbols))
	var missing []string

	// 1. One pass over the cache
	for _, symbol := range symbols {
		if quote, ok := ps.Cache.Get(symbol); ok {
			prices[symbol] = quote
		} else {
			missing = append(missing, symbol)
		}
	}

	// 2. Live terminal for the remainder, only while streaming
	if len(missing) > 0 && ps.Feed.IsConnected() {
		var still []string
		for _, symbol := range missing {
			if quote, err := ps.Feed.TerminalPrice(symbol); err == nil && quote != nil {
				prices[symbol] = *quote
			} else {
				still = append(still, symbol)
			}
		}
		missing = still
	}

	// 3. Both fallbacks refreshed concurrently, crypto precedence on resolve
	if len(missing) > 0 {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := ps.Crypto.Fetch(); err != nil {
				ps.Logger.Debug("Batch crypto refresh failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := ps.Rates.Fetch(); err != nil {
				ps.Logger.Debug("Batch rates refresh failed: %v", err)
			}
		}()
		wg.Wait()

		for _, symbol := range missing {
			if quote, ok := ps.Crypto.Get(symbol); ok {
				prices[symbol] = quote
				continue
			}
			if quote, ok := ps.Rates.Get(symbol); ok {
				prices[symbol] = quote
			}
		}
	}

	return prices
}

// -----------------------------------------------------------------------------

// Instruments lists metadata for every live symbol, falling back to the full
// static universe while the feed has no coverage yet.
func (ps *PriceService) Instruments() []models.MInstrument {
	var stockOpen *bool
	if ps.StockSessionOpen != nil {
		stockOpen = ps.StockSessionOpen()
	}
	return ps.Catalog.Instruments(ps.Cache.Symbols(), stockOpen)
}

// -----------------------------------------------------------------------------

// CategorizeSymbol exposes catalog classification to the transport layer.
func (ps *PriceService) CategorizeSymbol(symbol string) models.Category {
	return ps.Catalog.Categorize(symbol)
}

// -----------------------------------------------------------------------------

// ConnectionStatus reports the feed state and current cache coverage.
func (ps *PriceService) ConnectionStatus() models.MConnectionStatus {
	return models.MConnectionStatus{
		IsConnected: ps.Feed.IsConnected(),
		State:       ps.Feed.State(),
		PriceCount:  ps.Cache.Size(),
	}
}

// -----------------------------------------------------------------------------

// Events exposes the feed event stream for fan-out consumers.
func (ps *PriceService) Events() <-chan models.MFeedEvent {
	return ps.Feed.Events()
}
