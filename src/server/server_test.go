package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"price-aggregator/src/cache"
	"price-aggregator/src/catalog"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
	"price-aggregator/src/service"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Stubs
// -----------------------------------------------------------------------------

type stubFeed struct {
	terminal map[string]models.MPriceQuote
	cache    *cache.PriceCache
	events   chan models.MFeedEvent
}

func (s *stubFeed) Run(ctx context.Context)          {}
func (s *stubFeed) State() models.FeedState          { return models.StateStreaming }
func (s *stubFeed) IsConnected() bool                { return true }
func (s *stubFeed) Events() <-chan models.MFeedEvent { return s.events }

func (s *stubFeed) TerminalPrice(symbol string) (*models.MPriceQuote, error) {
	quote, ok := s.terminal[symbol]
	if !ok {
		return nil, fmt.Errorf("no price for %s", symbol)
	}
	s.cache.Set(symbol, quote)
	return &quote, nil
}

// -----------------------------------------------------------------------------

type stubSource struct {
	name   string
	quotes map[string]models.MPriceQuote
}

func (s *stubSource) Name() string { return s.name }
func (s *stubSource) Fetch() error { return nil }

func (s *stubSource) Get(symbol string) (models.MPriceQuote, bool) {
	quote, ok := s.quotes[symbol]
	return quote, ok
}

func (s *stubSource) Snapshot() map[string]models.MPriceQuote {
	out := make(map[string]models.MPriceQuote, len(s.quotes))
	for k, v := range s.quotes {
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) (*APIServer, *cache.PriceCache) {
	t.Helper()

	log := logger.NewLogger(nil, "test")
	pc := cache.NewPriceCache()
	feed := &stubFeed{
		terminal: map[string]models.MPriceQuote{},
		cache:    pc,
		events:   make(chan models.MFeedEvent, 1),
	}
	crypto := &stubSource{name: "crypto", quotes: map[string]models.MPriceQuote{}}
	rates := &stubSource{name: "rates", quotes: map[string]models.MPriceQuote{}}

	svc := service.NewPriceService(pc, catalog.NewCatalog(nil, log), feed, crypto, rates, log)

	cfg := &models.MConfig{Name: "test", Host: "127.0.0.1", Port: 9999, LogLevel: "ERROR"}
	return NewAPIServer(cfg, svc, log), pc
}

func doRequest(s *APIServer, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// -----------------------------------------------------------------------------
// REST Tests
// -----------------------------------------------------------------------------

func TestGetPriceReturnsCachedQuote(t *testing.T) {
	s, pc := newTestServer(t)
	pc.Set("EURUSD", models.NewPriceQuote(1.0850, 1.0851, 1700000000000))

	w := doRequest(s, "GET", "/api/prices/EURUSD", "")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool `json:"success"`
		Price   struct {
			Bid float64 `json:"bid"`
			Ask float64 `json:"ask"`
		} `json:"price"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success=true")
	}
	if resp.Price.Bid != 1.0850 || resp.Price.Ask != 1.0851 {
		t.Fatalf("unexpected price: %+v", resp.Price)
	}
}

// -----------------------------------------------------------------------------

func TestGetPriceMissIs404(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, "GET", "/api/prices/ZZZFAKE", "")
	if w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
	if resp.Message != "Price not available" {
		t.Fatalf("unexpected message: %q", resp.Message)
	}
}

// -----------------------------------------------------------------------------

func TestBatchRequiresSymbolsArray(t *testing.T) {
	s, _ := newTestServer(t)

	for _, body := range []string{``, `{}`, `{"symbols": "EURUSD"}`, `not json`} {
		w := doRequest(s, "POST", "/api/prices/batch", body)
		if w.Code != 400 {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "symbols array required") {
			t.Fatalf("body %q: unexpected response %s", body, w.Body.String())
		}
	}
}

// -----------------------------------------------------------------------------

func TestBatchReturnsOnlyResolvedSymbols(t *testing.T) {
	s, pc := newTestServer(t)
	pc.Set("EURUSD", models.NewPriceQuote(1.0850, 1.0851, 1700000000000))
	pc.Set("BTCUSD", models.NewPriceQuote(64000, 64010, 1700000000000))

	w := doRequest(s, "POST", "/api/prices/batch", `{"symbols":["EURUSD","BTCUSD","ZZZFAKE"]}`)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success bool                          `json:"success"`
		Prices  map[string]map[string]float64 `json:"prices"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success=true")
	}
	if len(resp.Prices) != 2 {
		t.Fatalf("expected 2 prices, got %d", len(resp.Prices))
	}
	if resp.Prices["EURUSD"]["bid"] != 1.0850 {
		t.Fatalf("unexpected EURUSD: %v", resp.Prices["EURUSD"])
	}
	if _, ok := resp.Prices["ZZZFAKE"]; ok {
		t.Fatal("unresolved symbol must be omitted, not errored")
	}
}

// -----------------------------------------------------------------------------

func TestInstrumentsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(s, "GET", "/api/prices/instruments", "")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Success     bool                 `json:"success"`
		Instruments []models.MInstrument `json:"instruments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Success || len(resp.Instruments) == 0 {
		t.Fatalf("expected instrument list, got success=%v count=%d", resp.Success, len(resp.Instruments))
	}
}

// -----------------------------------------------------------------------------

func TestHealthAndStatus(t *testing.T) {
	s, pc := newTestServer(t)
	pc.Set("EURUSD", models.NewPriceQuote(1.0850, 1.0851, 1700000000000))

	w := doRequest(s, "GET", "/api/health", "")
	if w.Code != 200 {
		t.Fatalf("health: expected 200, got %d", w.Code)
	}
	var health struct {
		Status     string `json:"status"`
		PriceCount int    `json:"price_count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to parse health: %v", err)
	}
	if health.Status != "ok" || health.PriceCount != 1 {
		t.Fatalf("unexpected health: %+v", health)
	}

	w = doRequest(s, "GET", "/api/status", "")
	if w.Code != 200 {
		t.Fatalf("status: expected 200, got %d", w.Code)
	}
	var status struct {
		IsConnected bool             `json:"isConnected"`
		State       models.FeedState `json:"state"`
		PriceCount  int              `json:"priceCount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to parse status: %v", err)
	}
	if !status.IsConnected || status.State != models.StateStreaming || status.PriceCount != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Tests
// -----------------------------------------------------------------------------

func TestWebSocketSnapshotAndBroadcast(t *testing.T) {
	s, pc := newTestServer(t)
	pc.Set("EURUSD", models.NewPriceQuote(1.0850, 1.0851, 1700000000000))

	go s.handleWebsockets()

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// First message is the cache snapshot
	var snap struct {
		Type   string                        `json:"type"`
		Prices map[string]models.MPriceQuote `json:"prices"`
	}
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}
	if snap.Type != "snapshot" {
		t.Fatalf("expected snapshot, got %q", snap.Type)
	}
	if snap.Prices["EURUSD"].Bid != 1.0850 {
		t.Fatalf("snapshot missing cached price: %+v", snap.Prices)
	}

	// Broadcast a tick and expect it on the socket
	s.PublishEvent(models.MFeedEvent{
		Kind:      models.EventPrice,
		Symbol:    "BTCUSD",
		Quote:     models.NewPriceQuote(64000, 64010, 1700000001000),
		Timestamp: 1700000001000,
	})

	var event models.MFeedEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if event.Kind != models.EventPrice || event.Symbol != "BTCUSD" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

// -----------------------------------------------------------------------------

func TestStopIsIdempotentAndGuardsPublish(t *testing.T) {
	s, pc := newTestServer(t)
	pc.Set("EURUSD", models.NewPriceQuote(1.0850, 1.0851, 1700000000000))

	go s.handleWebsockets()

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var skip json.RawMessage
	if err := conn.ReadJSON(&skip); err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}

	// Events published after shutdown are dropped, never panic
	s.PublishEvent(models.MFeedEvent{Kind: models.EventPrice, Symbol: "BTCUSD", Quote: models.NewPriceQuote(64000, 64010, 1)})

	// The hub drained its clients; the socket ends cleanly
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if err := conn.ReadJSON(&skip); err != nil {
			break
		}
	}
}

// -----------------------------------------------------------------------------

func TestWebSocketSubscriptionFilter(t *testing.T) {
	s, _ := newTestServer(t)

	go s.handleWebsockets()

	srv := httptest.NewServer(s.engine)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	// Drain the initial snapshot
	var skip json.RawMessage
	if err := conn.ReadJSON(&skip); err != nil {
		t.Fatalf("failed to read snapshot: %v", err)
	}

	// Subscribe to EURUSD only; the command is answered with a snapshot
	cmd := models.MSubscribeCommand{Command: "subscribe", Symbols: []string{"EURUSD"}}
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}
	if err := conn.ReadJSON(&skip); err != nil {
		t.Fatalf("failed to read subscribe response: %v", err)
	}

	// The filtered-out tick must not arrive, the subscribed one must
	s.PublishEvent(models.MFeedEvent{Kind: models.EventPrice, Symbol: "BTCUSD", Quote: models.NewPriceQuote(64000, 64010, 1)})
	s.PublishEvent(models.MFeedEvent{Kind: models.EventPrice, Symbol: "EURUSD", Quote: models.NewPriceQuote(1.0850, 1.0851, 2)})

	var event models.MFeedEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if event.Symbol != "EURUSD" {
		t.Fatalf("filter leaked %s", event.Symbol)
	}
}
