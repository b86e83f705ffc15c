package interfaces

import "price-aggregator/src/models"

// -----------------------------------------------------------------------------
// IFallbackSource defines the contract for REST-based price sources consulted
// when the streaming feed has no quote for a symbol.
// -----------------------------------------------------------------------------

type IFallbackSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Fetch refreshes the internal quote set from the upstream API.
	// A no-op while the previous fetch is still within its TTL.
	Fetch() error

	// -----------------------------------------------------------------------------

	// Get returns the cached quote for a symbol, if the source carries it.
	// Quotes survive past their TTL until the next successful refresh.
	Get(symbol string) (models.MPriceQuote, bool)

	// -----------------------------------------------------------------------------

	// Snapshot returns a copy of every quote the source currently carries.
	Snapshot() map[string]models.MPriceQuote
}
