package fallback

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"price-aggregator/src/helpers"
	"price-aggregator/src/interfaces"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

// binanceMap translates platform symbols to Binance trading pairs. Symbols
// absent here are never served by the crypto source.
var binanceMap = map[string]string{
	"BTCUSD": "BTCUSDT", "ETHUSD": "ETHUSDT", "BNBUSD": "BNBUSDT", "SOLUSD": "SOLUSDT",
	"XRPUSD": "XRPUSDT", "ADAUSD": "ADAUSDT", "DOGEUSD": "DOGEUSDT", "DOTUSD": "DOTUSDT",
	"MATICUSD": "MATICUSDT", "LTCUSD": "LTCUSDT", "SHIBUSD": "SHIBUSDT", "AVAXUSD": "AVAXUSDT",
	"LINKUSD": "LINKUSDT", "UNIUSD": "UNIUSDT", "ATOMUSD": "ATOMUSDT", "XLMUSD": "XLMUSDT",
	"NEARUSD": "NEARUSDT", "FTMUSD": "FTMUSDT", "ALGOUSD": "ALGOUSDT", "VETUSD": "VETUSDT",
	"ICPUSD": "ICPUSDT", "FILUSD": "FILUSDT", "TRXUSD": "TRXUSDT", "ETCUSD": "ETCUSDT",
	"AAVEUSD": "AAVEUSDT", "MKRUSD": "MKRUSDT", "SANDUSD": "SANDUSDT", "MANAUSD": "MANAUSDT",
	"AXSUSD": "AXSUSDT", "THETAUSD": "THETAUSDT", "FLOWUSD": "FLOWUSDT", "SNXUSD": "SNXUSDT",
	"EOSUSD": "EOSUSDT", "CHZUSD": "CHZUSDT", "ENJUSD": "ENJUSDT", "PEPEUSD": "PEPEUSDT",
	"ARBUSD": "ARBUSDT", "OPUSD": "OPUSDT", "SUIUSD": "SUIUSDT", "APTUSD": "APTUSDT",
	"INJUSD": "INJUSDT", "TONUSD": "TONUSDT", "HBARUSD": "HBARUSDT", "BCHUSD": "BCHUSDT",
	"XMRUSD": "XMRUSDT", "NEOUSD": "NEOUSDT",
}

// -----------------------------------------------------------------------------

type bookTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// -----------------------------------------------------------------------------

// CryptoSource serves crypto quotes from a public book-ticker endpoint.
// TTL-gated: a fetch inside the TTL window is a no-op, and a failed fetch
// leaves the previous quotes untouched (stale-but-available).
type CryptoSource struct {
	endpoint string
	ttl      time.Duration
	network  interfaces.INetworkManager
	logger   *logger.Logger

	mu        sync.Mutex
	quotes    map[string]models.MPriceQuote
	lastFetch time.Time
}

// -----------------------------------------------------------------------------

func NewCryptoSource(cfg *models.MFallbackConfig, nm interfaces.INetworkManager, log *logger.Logger) *CryptoSource {
	return &CryptoSource{
		endpoint: cfg.CryptoEndpoint,
		ttl:      time.Duration(cfg.CryptoTTLMs) * time.Millisecond,
		network:  nm,
		logger:   log,
		quotes:   make(map[string]models.MPriceQuote),
	}
}

// -----------------------------------------------------------------------------

func (cs *CryptoSource) Name() string {
	return "crypto"
}

// -----------------------------------------------------------------------------

// Fetch refreshes the quote set from the book-ticker endpoint unless the
// previous successful fetch is still within the TTL.
func (cs *CryptoSource) Fetch() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if time.Since(cs.lastFetch) < cs.ttl && len(cs.quotes) > 0 {
		return nil
	}

	body, err := cs.network.Get(cs.endpoint, nil)
	if err != nil {
		cs.logger.Warning("Crypto fallback fetch failed: %v", err)
		return &helpers.NetworkError{AggregatorError: helpers.AggregatorError{Message: "crypto fallback fetch failed", Cause: err}}
	}

	var tickers []bookTicker
	if err := json.Unmarshal(body, &tickers); err != nil {
		cs.logger.Warning("Crypto fallback parse failed: %v", err)
		return &helpers.ValidationError{AggregatorError: helpers.AggregatorError{Message: "invalid book ticker payload", Cause: err}}
	}

	tickerMap := make(map[string]bookTicker, len(tickers))
	for _, t := range tickers {
		tickerMap[t.Symbol] = t
	}

	now := time.Now().UnixMilli()
	updated := 0
	for ourSymbol, binSymbol := range binanceMap {
		ticker, ok := tickerMap[binSymbol]
		if !ok {
			continue
		}
		bid, errB := strconv.ParseFloat(ticker.BidPrice, 64)
		ask, errA := strconv.ParseFloat(ticker.AskPrice, 64)
		if errB != nil || errA != nil || bid <= 0 || ask <= 0 {
			continue
		}
		cs.quotes[ourSymbol] = models.NewPriceQuote(bid, ask, now)
		updated++
	}

	cs.lastFetch = time.Now()
	cs.logger.Debug("Crypto fallback: %d quotes refreshed", updated)
	return nil
}

// -----------------------------------------------------------------------------

func (cs *CryptoSource) Get(symbol string) (models.MPriceQuote, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	quote, ok := cs.quotes[symbol]
	return quote, ok
}

// -----------------------------------------------------------------------------

func (cs *CryptoSource) Snapshot() map[string]models.MPriceQuote {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	snapshot := make(map[string]models.MPriceQuote, len(cs.quotes))
	for symbol, quote := range cs.quotes {
		snapshot[symbol] = quote
	}
	return snapshot
}
