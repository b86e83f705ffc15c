package fallback

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"price-aggregator/src/helpers"
	"price-aggregator/src/interfaces"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

// codeMap translates instrument currency codes to the lowercase codes used by
// the rates API. CNH trades on the offshore yuan but the API only quotes CNY.
var codeMap = map[string]string{
	"EUR": "eur", "GBP": "gbp", "JPY": "jpy", "CHF": "chf",
	"AUD": "aud", "NZD": "nzd", "CAD": "cad", "SGD": "sgd",
	"HKD": "hkd", "ZAR": "zar", "TRY": "try", "MXN": "mxn",
	"PLN": "pln", "SEK": "sek", "NOK": "nok", "DKK": "dkk",
	"CNH": "cny", "XAU": "xau", "XAG": "xag", "XPT": "xpt",
	"XPD": "xpd",
}

// -----------------------------------------------------------------------------

type currencyPair struct {
	Base  string
	Quote string
}

// forexPairs lists every instrument derivable from USD-relative rates.
var forexPairs = map[string]currencyPair{
	"EURUSD": {"EUR", "USD"}, "GBPUSD": {"GBP", "USD"}, "USDJPY": {"USD", "JPY"},
	"USDCHF": {"USD", "CHF"}, "AUDUSD": {"AUD", "USD"}, "NZDUSD": {"NZD", "USD"},
	"USDCAD": {"USD", "CAD"}, "EURGBP": {"EUR", "GBP"}, "EURJPY": {"EUR", "JPY"},
	"GBPJPY": {"GBP", "JPY"}, "EURCHF": {"EUR", "CHF"}, "EURAUD": {"EUR", "AUD"},
	"EURCAD": {"EUR", "CAD"}, "AUDCAD": {"AUD", "CAD"}, "AUDJPY": {"AUD", "JPY"},
	"CADJPY": {"CAD", "JPY"}, "CHFJPY": {"CHF", "JPY"}, "NZDJPY": {"NZD", "JPY"},
	"AUDNZD": {"AUD", "NZD"}, "CADCHF": {"CAD", "CHF"}, "GBPCHF": {"GBP", "CHF"},
	"USDSGD": {"USD", "SGD"}, "USDHKD": {"USD", "HKD"}, "USDZAR": {"USD", "ZAR"},
	"USDTRY": {"USD", "TRY"}, "USDMXN": {"USD", "MXN"}, "USDPLN": {"USD", "PLN"},
	"USDSEK": {"USD", "SEK"}, "USDNOK": {"USD", "NOK"}, "USDDKK": {"USD", "DKK"},
	"USDCNH": {"USD", "CNH"},
}

// usdMetals are quoted as the inverse of their USD-denominated unit rate.
var usdMetals = map[string]string{
	"XAUUSD": "XAU", "XAGUSD": "XAG", "XPTUSD": "XPT", "XPDUSD": "XPD",
}

// metalCrosses are derived from the USD metal mid multiplied by the FX rate
// of the quote currency, reusing the USD half-spread.
var metalCrosses = map[string]currencyPair{
	"XAUEUR": {"XAU", "EUR"}, "XAUAUD": {"XAU", "AUD"}, "XAUGBP": {"XAU", "GBP"},
	"XAUCHF": {"XAU", "CHF"}, "XAUJPY": {"XAU", "JPY"}, "XAGEUR": {"XAG", "EUR"},
	"XAGAUD": {"XAG", "AUD"}, "XAGGBP": {"XAG", "GBP"},
}

// -----------------------------------------------------------------------------

type ratesPayload struct {
	Date string             `json:"date"`
	USD  map[string]float64 `json:"usd"`
}

// -----------------------------------------------------------------------------

// RatesSource derives forex and metals quotes from a public USD-relative
// daily-rates endpoint. Rates carry no bid/ask, so a synthetic spread is
// applied around the derived mid. Same TTL gating and stale-but-available
// policy as the crypto source.
type RatesSource struct {
	cfg      *models.MFallbackConfig
	endpoint string
	ttl      time.Duration
	network  interfaces.INetworkManager
	logger   *logger.Logger

	mu        sync.Mutex
	quotes    map[string]models.MPriceQuote
	lastFetch time.Time
}

// -----------------------------------------------------------------------------

func NewRatesSource(cfg *models.MFallbackConfig, nm interfaces.INetworkManager, log *logger.Logger) *RatesSource {
	return &RatesSource{
		cfg:      cfg,
		endpoint: cfg.RatesEndpoint,
		ttl:      time.Duration(cfg.RatesTTLMs) * time.Millisecond,
		network:  nm,
		logger:   log,
		quotes:   make(map[string]models.MPriceQuote),
	}
}

// -----------------------------------------------------------------------------

func (rs *RatesSource) Name() string {
	return "rates"
}

// -----------------------------------------------------------------------------

// Fetch refreshes the derived quote set unless still within the TTL.
func (rs *RatesSource) Fetch() error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if time.Since(rs.lastFetch) < rs.ttl && len(rs.quotes) > 0 {
		return nil
	}

	body, err := rs.network.Get(rs.endpoint, nil)
	if err != nil {
		rs.logger.Warning("Rates fallback fetch failed: %v", err)
		return &helpers.NetworkError{AggregatorError: helpers.AggregatorError{Message: "rates fallback fetch failed", Cause: err}}
	}

	var payload ratesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		rs.logger.Warning("Rates fallback parse failed: %v", err)
		return &helpers.ValidationError{AggregatorError: helpers.AggregatorError{Message: "invalid rates payload", Cause: err}}
	}
	if len(payload.USD) == 0 {
		return &helpers.ValidationError{AggregatorError: helpers.AggregatorError{Message: "rates payload carries no usd table"}}
	}

	rates := payload.USD
	now := time.Now().UnixMilli()
	updated := 0

	for symbol, pair := range forexPairs {
		mid, ok := deriveMid(pair, rates)
		if !ok {
			continue
		}
		rs.quotes[symbol] = rs.synthesize(mid, rs.spreadFor(symbol, mid), now)
		updated++
	}

	for symbol, code := range usdMetals {
		rate, ok := rates[codeMap[code]]
		if !ok || rate <= 0 {
			continue
		}
		mid := 1 / rate
		rs.quotes[symbol] = rs.synthesize(mid, rs.spreadFor(symbol, mid), now)
		updated++
	}

	for symbol, pair := range metalCrosses {
		metalRate, okM := rates[codeMap[pair.Base]]
		fxRate, okF := rates[codeMap[pair.Quote]]
		if !okM || !okF || metalRate <= 0 || fxRate <= 0 {
			continue
		}
		usdMid := 1 / metalRate
		// Reuse the USD half-spread rather than recomputing at cross scale
		spread := rs.spreadFor(symbol, usdMid)
		rs.quotes[symbol] = rs.synthesize(usdMid*fxRate, spread, now)
		updated++
	}

	rs.lastFetch = time.Now()
	rs.logger.Debug("Rates fallback: %d quotes derived (date %s)", updated, payload.Date)
	return nil
}

// -----------------------------------------------------------------------------

// deriveMid converts USD-relative rates into a pair mid.
func deriveMid(pair currencyPair, rates map[string]float64) (float64, bool) {
	baseCode, quoteCode := codeMap[pair.Base], codeMap[pair.Quote]

	if pair.Base == "USD" {
		rate, ok := rates[quoteCode]
		return rate, ok && rate > 0
	}
	if pair.Quote == "USD" {
		rate, ok := rates[baseCode]
		if !ok || rate <= 0 {
			return 0, false
		}
		return 1 / rate, true
	}

	baseRate, okB := rates[baseCode]
	quoteRate, okQ := rates[quoteCode]
	if !okB || !okQ || baseRate <= 0 || quoteRate <= 0 {
		return 0, false
	}
	return quoteRate / baseRate, true
}

// -----------------------------------------------------------------------------

// spreadFor returns the full synthetic spread for a symbol at the given mid.
func (rs *RatesSource) spreadFor(symbol string, mid float64) float64 {
	switch {
	case strings.HasPrefix(symbol, "XAU"):
		return mid * rs.cfg.GoldSpreadPct
	case strings.HasPrefix(symbol, "XAG"):
		return mid * rs.cfg.SilverSpreadPct
	case strings.HasPrefix(symbol, "XPT"), strings.HasPrefix(symbol, "XPD"):
		return mid * rs.cfg.PGMSpreadPct
	case strings.Contains(symbol, "JPY"):
		return rs.cfg.JPYSpread
	}
	return rs.cfg.MajorSpread
}

// -----------------------------------------------------------------------------

func (rs *RatesSource) synthesize(mid, spread float64, timeMs int64) models.MPriceQuote {
	half := spread / 2
	return models.NewPriceQuote(mid-half, mid+half, timeMs)
}

// -----------------------------------------------------------------------------

func (rs *RatesSource) Get(symbol string) (models.MPriceQuote, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	quote, ok := rs.quotes[symbol]
	return quote, ok
}

// -----------------------------------------------------------------------------

func (rs *RatesSource) Snapshot() map[string]models.MPriceQuote {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	snapshot := make(map[string]models.MPriceQuote, len(rs.quotes))
	for symbol, quote := range rs.quotes {
		snapshot[symbol] = quote
	}
	return snapshot
}
