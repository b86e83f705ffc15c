package cache

import (
	"sync"

	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

// PriceCache is the shared symbol -> latest-quote map written by the
// streaming feed and read by the query facade. Last write wins;
// entries live for the process lifetime.
type PriceCache struct {
	mu     sync.RWMutex
	quotes map[string]models.MPriceQuote
}

// -----------------------------------------------------------------------------

func NewPriceCache() *PriceCache {
	return &PriceCache{
		quotes: make(map[string]models.MPriceQuote),
	}
}

// -----------------------------------------------------------------------------

// Set stores the latest quote for a symbol.
func (pc *PriceCache) Set(symbol string, quote models.MPriceQuote) {
	pc.mu.Lock()
	pc.quotes[symbol] = quote
	pc.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Get returns the cached quote for a symbol.
func (pc *PriceCache) Get(symbol string) (models.MPriceQuote, bool) {
	pc.mu.RLock()
	quote, ok := pc.quotes[symbol]
	pc.mu.RUnlock()
	return quote, ok
}

// -----------------------------------------------------------------------------

// Has reports whether a quote exists for the symbol.
func (pc *PriceCache) Has(symbol string) bool {
	pc.mu.RLock()
	_, ok := pc.quotes[symbol]
	pc.mu.RUnlock()
	return ok
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of every cached quote.
func (pc *PriceCache) Snapshot() map[string]models.MPriceQuote {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	snapshot := make(map[string]models.MPriceQuote, len(pc.quotes))
	for symbol, quote := range pc.quotes {
		snapshot[symbol] = quote
	}
	return snapshot
}

// -----------------------------------------------------------------------------

// Symbols returns every symbol with a cached quote.
func (pc *PriceCache) Symbols() []string {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	symbols := make([]string, 0, len(pc.quotes))
	for symbol := range pc.quotes {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// -----------------------------------------------------------------------------

// Size returns the number of cached symbols.
func (pc *PriceCache) Size() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.quotes)
}
