package models

// MPriceQuote is the latest known bid/ask for a symbol.
// Mid is always (Bid+Ask)/2; Time is a unix timestamp in milliseconds.
type MPriceQuote struct {
	Bid  float64 `json:"bid"`
	Ask  float64 `json:"ask"`
	Mid  float64 `json:"mid"`
	Time int64   `json:"time"`
}

// -----------------------------------------------------------------------------

// NewPriceQuote builds a quote with the derived mid price.
func NewPriceQuote(bid, ask float64, timeMs int64) MPriceQuote {
	return MPriceQuote{
		Bid:  bid,
		Ask:  ask,
		Mid:  (bid + ask) / 2,
		Time: timeMs,
	}
}
