package models

// -----------------------------------------------------------------------------
// Feed event stream
// -----------------------------------------------------------------------------

// FeedEventKind discriminates events published by the streaming feed.
type FeedEventKind string

const (
	EventPrice      FeedEventKind = "price"
	EventConnection FeedEventKind = "connection"
)

// MFeedEvent is one entry on the feed's event stream. Price events carry
// Symbol and Quote; connection events carry Connected.
type MFeedEvent struct {
	Kind      FeedEventKind `json:"type"`
	Symbol    string        `json:"symbol,omitempty"`
	Quote     MPriceQuote   `json:"price,omitempty"`
	Connected bool          `json:"connected"`
	Timestamp int64         `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// FeedState is the lifecycle state of the streaming feed adapter.
type FeedState string

const (
	StateDisconnected  FeedState = "disconnected"
	StateConnecting    FeedState = "connecting"
	StateDeployed      FeedState = "deployed"
	StateSynchronizing FeedState = "synchronizing"
	StateStreaming     FeedState = "streaming"
)

// -----------------------------------------------------------------------------

// MConnectionStatus is the aggregate connection report exposed over the API.
type MConnectionStatus struct {
	IsConnected bool      `json:"isConnected"`
	State       FeedState `json:"state"`
	PriceCount  int       `json:"priceCount"`
}

// -----------------------------------------------------------------------------

// MSubscribeCommand is the websocket client subscription message.
type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}
