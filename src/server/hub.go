package server

import (
	"encoding/json"
	"net/http"

	"price-aggregator/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *APIServer) handleWebsockets() {
	for {
		select {
		case <-s.done:
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send current cache contents on connect
			client.send <- s.snapshotMessage()

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case event := <-s.broadcast:
			for client := range s.clients {
				if !client.wants(event) {
					continue
				}
				select {
				case client.send <- event:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Feed Event Intake
// -----------------------------------------------------------------------------

// PublishEvent queues a feed event for broadcast to connected clients.
// Never blocks the caller: if the hub buffer is full the event is dropped,
// the next tick for the same symbol supersedes it anyway.
func (s *APIServer) PublishEvent(event models.MFeedEvent) {
	select {
	case <-s.done:
	case s.broadcast <- event:
	default:
		s.Logger.Debug("Broadcast buffer full, dropping %s event", event.Kind)
	}
}

// -----------------------------------------------------------------------------

type snapshotMessage struct {
	Type      string                        `json:"type"`
	Prices    map[string]models.MPriceQuote `json:"prices"`
	Connected bool                          `json:"connected"`
}

func (s *APIServer) snapshotMessage() snapshotMessage {
	status := s.Service.ConnectionStatus()
	return snapshotMessage{
		Type:      "snapshot",
		Prices:    s.Service.Cache.Snapshot(),
		Connected: status.IsConnected,
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *APIServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *APIServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSubscribeCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	if cmd.Command != "subscribe" {
		return
	}

	client.setSymbols(cmd.Symbols)

	// Answer with a fresh snapshot so the client starts from the current
	// book instead of waiting for the next tick of each symbol.
	select {
	case <-s.done:
	case client.send <- s.snapshotMessage():
	default:
	}
}
