package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"price-aggregator/src/cache"
	"price-aggregator/src/catalog"
	"price-aggregator/src/helpers"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
	"price-aggregator/src/network"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------

// venuePrice is one tick on the venue stream or REST current-price endpoint.
type venuePrice struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   int64   `json:"time"`
}

// venueMessage is the envelope for every inbound stream message.
type venueMessage struct {
	Type           string               `json:"type"`
	Specifications []models.MSymbolSpec `json:"specifications,omitempty"`
	Prices         []venuePrice         `json:"prices,omitempty"`
	Symbol         string               `json:"symbol,omitempty"`
	Bid            float64              `json:"bid,omitempty"`
	Ask            float64              `json:"ask,omitempty"`
	Time           int64                `json:"time,omitempty"`
	Message        string               `json:"message,omitempty"`
}

// subscribeMessage is the outbound market-data subscription request.
type subscribeMessage struct {
	Type    string   `json:"type"`
	Symbols []string `json:"symbols"`
}

// authMessage authenticates the stream right after dialing.
type authMessage struct {
	Type      string `json:"type"`
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
}

// accountState is the REST deployment-state response.
type accountState struct {
	State string `json:"state"`
}

// -----------------------------------------------------------------------------

// TerminalFeed maintains the streaming connection to the trading-terminal
// venue: deploy the account over REST, dial the stream, subscribe to the
// symbol universe, and write every valid tick into the shared price cache.
// Connection failures retry on a fixed backoff; missing credentials leave the
// feed disconnected for the process lifetime.
type TerminalFeed struct {
	cfg     *models.MVenueConfig
	network *network.AsyncNetworkManager
	cache   *cache.PriceCache
	catalog *catalog.Catalog
	logger  *logger.Logger

	mu    sync.RWMutex
	state models.FeedState
	conn  *websocket.Conn

	// Serializes stream writes; subscription batches may run concurrently.
	writeMu sync.Mutex

	events chan models.MFeedEvent

	statusLogOnce sync.Once
}

// -----------------------------------------------------------------------------

func NewTerminalFeed(cfg *models.MVenueConfig, nm *network.AsyncNetworkManager, pc *cache.PriceCache, cat *catalog.Catalog, log *logger.Logger) *TerminalFeed {
	return &TerminalFeed{
		cfg:     cfg,
		network: nm,
		cache:   pc,
		catalog: cat,
		logger:  log,
		state:   models.StateDisconnected,
		events:  make(chan models.MFeedEvent, 1000),
	}
}

// -----------------------------------------------------------------------------

// Events exposes the feed event stream. Price and connection events are
// dropped, not queued, when the consumer falls behind.
func (f *TerminalFeed) Events() <-chan models.MFeedEvent {
	return f.events
}

// -----------------------------------------------------------------------------

func (f *TerminalFeed) State() models.FeedState {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.state
}

// -----------------------------------------------------------------------------

func (f *TerminalFeed) IsConnected() bool {
	return f.State() == models.StateStreaming
}

// -----------------------------------------------------------------------------

func (f *TerminalFeed) setState(state models.FeedState) {
	f.mu.Lock()
	f.state = state
	f.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Run drives the connect/stream/retry loop until the context is cancelled.
// Without credentials it logs once and returns; the REST fallbacks then carry
// all quoting.
func (f *TerminalFeed) Run(ctx context.Context) {
	if f.cfg.Token == "" || f.cfg.AccountID == "" {
		f.logger.Error("Missing venue credentials, streaming feed stays disconnected")
		return
	}

	attempt := 0
	backoff := time.Duration(f.cfg.RetryBackoffSeconds) * time.Second

	for {
		err := f.connectAndStream(ctx)
		f.setState(models.StateDisconnected)

		select {
		case <-ctx.Done():
			return
		default:
		}

		f.emit(models.MFeedEvent{
			Kind:      models.EventConnection,
			Connected: false,
			Timestamp: time.Now().UnixMilli(),
		})

		attempt++
		if f.cfg.MaxRetries > 0 && attempt >= f.cfg.MaxRetries {
			f.logger.Error("Streaming feed giving up after %d attempts: %v", attempt, err)
			return
		}

		f.logger.Warning("Streaming feed down (%v), retrying in %v", err, backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// -----------------------------------------------------------------------------

// connectAndStream runs one full connection lifecycle and returns the error
// that ended it.
func (f *TerminalFeed) connectAndStream(ctx context.Context) error {
	f.setState(models.StateConnecting)

	if err := f.waitDeployed(ctx); err != nil {
		return fmt.Errorf("account deployment: %w", err)
	}
	f.setState(models.StateDeployed)
	f.logger.Info("Account deployed")

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(f.cfg.StreamURL, nil)
	if err != nil {
		return fmt.Errorf("stream dial: %w", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		if f.conn != nil {
			f.conn.Close()
			f.conn = nil
		}
		f.mu.Unlock()
	}()

	auth := authMessage{Type: "auth", Token: f.cfg.Token, AccountID: f.cfg.AccountID}
	if err := conn.WriteJSON(auth); err != nil {
		return fmt.Errorf("stream auth: %w", err)
	}

	f.setState(models.StateSynchronizing)
	f.logger.Info("Connecting to streaming API...")

	return f.readLoop(ctx, conn)
}

// -----------------------------------------------------------------------------

// waitDeployed polls the venue REST API until the account reports DEPLOYED.
func (f *TerminalFeed) waitDeployed(ctx context.Context) error {
	url := fmt.Sprintf("%s/users/current/accounts/%s", f.cfg.APIURL, f.cfg.AccountID)
	headers := map[string]string{"auth-token": f.cfg.Token}
	deadline := time.Now().Add(time.Duration(f.cfg.DeployTimeoutSeconds) * time.Second)

	for {
		body, err := f.network.GetWithHeaders(url, nil, headers)
		if err == nil {
			var acc accountState
			if jsonErr := json.Unmarshal(body, &acc); jsonErr == nil {
				if acc.State == "DEPLOYED" {
					return nil
				}
				f.logger.Info("Account state: %s, waiting for deployment...", acc.State)
			}
		} else {
			f.logger.Warning("Account state poll failed: %v", err)
		}

		if time.Now().After(deadline) {
			return &helpers.FeedError{AggregatorError: helpers.AggregatorError{
				Message: fmt.Sprintf("account not deployed within %ds", f.cfg.DeployTimeoutSeconds),
			}}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// -----------------------------------------------------------------------------

// readLoop consumes stream messages until read failure or cancellation.
// Cancellation closes the connection so a blocked read returns instead of
// waiting for the peer to drop.
func (f *TerminalFeed) readLoop(ctx context.Context, conn *websocket.Conn) error {
	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopped:
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream read: %w", err)
		}

		var msg venueMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// A malformed envelope never kills the connection
			continue
		}

		f.handleMessage(ctx, conn, &msg)
	}
}

// -----------------------------------------------------------------------------

func (f *TerminalFeed) handleMessage(ctx context.Context, conn *websocket.Conn, msg *venueMessage) {
	switch msg.Type {
	case "synchronized":
		f.setState(models.StateStreaming)
		f.logger.Info("Synchronized with terminal")
		f.emit(models.MFeedEvent{
			Kind:      models.EventConnection,
			Connected: true,
			Timestamp: time.Now().UnixMilli(),
		})
		go f.subscribeAll(ctx, conn)
		f.scheduleStatusLog(ctx)

	case "specifications":
		if len(msg.Specifications) > 0 {
			f.logger.Info("Received %d symbol specifications", len(msg.Specifications))
			f.catalog.LearnAll(msg.Specifications)
			// Venue-only symbols are part of the discovered universe too
			if extra := venueOnlySymbols(msg.Specifications); len(extra) > 0 {
				f.logger.Info("Subscribing %d venue-only symbols", len(extra))
				go f.subscribeSymbols(ctx, conn, extra)
			}
		}

	case "price":
		f.applyTick(venuePrice{Symbol: msg.Symbol, Bid: msg.Bid, Ask: msg.Ask, Time: msg.Time})

	case "prices":
		for _, tick := range msg.Prices {
			f.applyTick(tick)
		}

	case "error":
		f.logger.Warning("Venue error message: %s", msg.Message)
	}
}

// -----------------------------------------------------------------------------

// applyTick validates and stores one tick. Non-positive bid/ask is discarded
// silently per tick.
func (f *TerminalFeed) applyTick(tick venuePrice) {
	if tick.Symbol == "" || tick.Bid <= 0 || tick.Ask <= 0 {
		return
	}

	timeMs := tick.Time
	if timeMs == 0 {
		timeMs = time.Now().UnixMilli()
	}

	quote := models.NewPriceQuote(tick.Bid, tick.Ask, timeMs)
	f.cache.Set(tick.Symbol, quote)

	f.emit(models.MFeedEvent{
		Kind:      models.EventPrice,
		Symbol:    tick.Symbol,
		Quote:     quote,
		Timestamp: timeMs,
	})
}

// -----------------------------------------------------------------------------

// subscribeAll requests market data for the full static symbol universe.
// Venue-only symbols join via the specifications handler.
func (f *TerminalFeed) subscribeAll(ctx context.Context, conn *websocket.Conn) {
	symbols := catalog.AllSymbols()
	f.logger.Info("Subscribing to %d symbols...", len(symbols))
	sent := f.subscribeSymbols(ctx, conn, symbols)
	f.logger.Info("Subscribed: %d symbols", sent)
}

// -----------------------------------------------------------------------------

// subscribeSymbols sends subscription requests in batches, pausing between
// batches to respect venue rate limits. Returns how many symbols were sent.
func (f *TerminalFeed) subscribeSymbols(ctx context.Context, conn *websocket.Conn, symbols []string) int {
	batchSize := f.cfg.SubscribeBatchSize
	delay := time.Duration(f.cfg.SubscribeBatchDelayMs) * time.Millisecond

	sent := 0
	for i := 0; i < len(symbols); i += batchSize {
		end := i + batchSize
		if end > len(symbols) {
			end = len(symbols)
		}

		msg := subscribeMessage{Type: "subscribe", Symbols: symbols[i:end]}
		f.mu.RLock()
		active := f.conn == conn
		f.mu.RUnlock()
		if !active {
			return sent
		}

		f.writeMu.Lock()
		err := conn.WriteJSON(msg)
		f.writeMu.Unlock()
		if err != nil {
			f.logger.Warning("Subscribe batch failed: %v", err)
			return sent
		}
		sent += end - i

		if end < len(symbols) {
			select {
			case <-ctx.Done():
				return sent
			case <-time.After(delay):
			}
		}
	}

	return sent
}

// -----------------------------------------------------------------------------

// venueOnlySymbols picks the specification symbols absent from the static
// universe; those are discovered instruments the standing subscription
// misses.
func venueOnlySymbols(specs []models.MSymbolSpec) []string {
	static := make(map[string]struct{})
	for _, symbol := range catalog.AllSymbols() {
		static[symbol] = struct{}{}
	}

	var extra []string
	for _, spec := range specs {
		if spec.Symbol == "" {
			continue
		}
		if _, ok := static[spec.Symbol]; !ok {
			extra = append(extra, spec.Symbol)
		}
	}
	return extra
}

// -----------------------------------------------------------------------------

// scheduleStatusLog reports per-category price coverage once, shortly after
// the stream comes up.
func (f *TerminalFeed) scheduleStatusLog(ctx context.Context) {
	f.statusLogOnce.Do(func() {
		go func() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(f.cfg.StatusLogDelaySeconds) * time.Second):
			}

			counts := make(map[models.Category]int)
			for _, symbol := range f.cache.Symbols() {
				counts[f.catalog.Categorize(symbol)]++
			}

			f.logger.Info("Price cache: %d total symbols", f.cache.Size())
			f.logger.Info("Forex: %d, Crypto: %d, Metals: %d, Energy: %d, Stocks: %d",
				counts[models.CategoryForex], counts[models.CategoryCrypto],
				counts[models.CategoryMetals], counts[models.CategoryEnergy],
				counts[models.CategoryStocks])
		}()
	})
}

// -----------------------------------------------------------------------------

// TerminalPrice reads one quote from the venue REST API, bypassing the
// stream. A valid response is written into the cache before returning.
func (f *TerminalFeed) TerminalPrice(symbol string) (*models.MPriceQuote, error) {
	if f.cfg.Token == "" || f.cfg.AccountID == "" {
		return nil, fmt.Errorf("venue credentials not configured")
	}

	url := fmt.Sprintf("%s/users/current/accounts/%s/symbols/%s/current-price", f.cfg.APIURL, f.cfg.AccountID, symbol)
	headers := map[string]string{"auth-token": f.cfg.Token}

	body, err := f.network.GetWithHeaders(url, nil, headers)
	if err != nil {
		return nil, err
	}

	var tick venuePrice
	if err := json.Unmarshal(body, &tick); err != nil {
		return nil, fmt.Errorf("invalid current-price payload: %w", err)
	}
	if tick.Bid <= 0 || tick.Ask <= 0 {
		return nil, fmt.Errorf("no price for %s", symbol)
	}

	timeMs := tick.Time
	if timeMs == 0 {
		timeMs = time.Now().UnixMilli()
	}

	quote := models.NewPriceQuote(tick.Bid, tick.Ask, timeMs)
	f.cache.Set(symbol, quote)
	return &quote, nil
}

// -----------------------------------------------------------------------------

// emit publishes an event without ever blocking the price path.
func (f *TerminalFeed) emit(event models.MFeedEvent) {
	select {
	case f.events <- event:
	default:
	}
}
