package interfaces

import "price-aggregator/src/models"

// -----------------------------------------------------------------------------
// IPublisher defines the contract for pushing price events to an external bus.
// -----------------------------------------------------------------------------

type IPublisher interface {

	// Connect establishes the connection to the messaging system
	Connect() error

	// -----------------------------------------------------------------------------

	// Disconnect closes the connection
	Disconnect() error

	// -----------------------------------------------------------------------------

	// IsConnected returns the connection status
	IsConnected() bool

	// -----------------------------------------------------------------------------

	// OnPriceEvent publishes a single feed event. Best effort: delivery
	// failures are logged, never propagated to the price path.
	OnPriceEvent(event models.MFeedEvent)
}
