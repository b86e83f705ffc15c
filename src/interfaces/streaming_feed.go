package interfaces

import (
	"context"

	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------
// IStreamingFeed defines the contract for the primary venue price stream.
// -----------------------------------------------------------------------------

type IStreamingFeed interface {

	// Run starts the connect/subscribe/reconnect loop and blocks until the
	// context is cancelled.
	Run(ctx context.Context)

	// -----------------------------------------------------------------------------

	// State returns the current lifecycle state of the feed.
	State() models.FeedState

	// -----------------------------------------------------------------------------

	// IsConnected reports whether the stream is up and synchronized.
	IsConnected() bool

	// -----------------------------------------------------------------------------

	// TerminalPrice fetches a single quote over the venue REST API,
	// bypassing the stream. Used as the first fallback tier.
	TerminalPrice(symbol string) (*models.MPriceQuote, error)

	// -----------------------------------------------------------------------------

	// Events exposes the feed event stream (price updates and
	// connection transitions) for consumers to range over.
	Events() <-chan models.MFeedEvent
}
