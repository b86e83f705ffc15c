package publishers

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"price-aggregator/src/catalog"
	"price-aggregator/src/interfaces"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"

	"github.com/nats-io/nats.go"
)

// -----------------------------------------------------------------------------
// NATSPublisher pushes feed events onto NATS Core subjects so downstream
// consumers (settlement, analytics) receive every price without touching the
// HTTP surface. Fire-and-forget: a publish failure is logged and dropped.
// -----------------------------------------------------------------------------

type NATSPublisher struct {
	name    string
	config  *models.MNATSConfig
	catalog *catalog.Catalog
	logger  *logger.Logger

	mu        sync.RWMutex
	nc        *nats.Conn
	connected bool
}

// -----------------------------------------------------------------------------

func NewNATSPublisher(config *models.MNATSConfig, cat *catalog.Catalog, log *logger.Logger) interfaces.IPublisher {
	return &NATSPublisher{
		name:    "NATSPublisher",
		config:  config,
		catalog: cat,
		logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Connect establishes the connection to the NATS server.
func (np *NATSPublisher) Connect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc != nil && np.nc.IsConnected() {
		return nil
	}

	opts := []nats.Option{
		nats.Name(np.name),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
		nats.ClosedHandler(func(nc *nats.Conn) {
			np.logger.Error("%s : NATS connection closed unexpectedly", np.name)
			np.setConnected(false)
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			np.logger.Warning("%s : NATS disconnected, attempting reconnect: %v", np.name, err)
			np.setConnected(false)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			np.logger.Info("%s : NATS successfully reconnected to %s", np.name, nc.ConnectedUrl())
			np.setConnected(true)
		}),
	}

	var err error
	np.nc, err = nats.Connect(strings.Join(np.config.Servers, ","), opts...)
	if err != nil {
		return fmt.Errorf("nats connection failed: %w", err)
	}

	np.connected = true
	np.logger.Info("%s : successfully connected to NATS at %s", np.name, np.nc.ConnectedUrl())
	return nil
}

// -----------------------------------------------------------------------------

// Disconnect drains and closes the connection.
func (np *NATSPublisher) Disconnect() error {
	np.mu.Lock()
	defer np.mu.Unlock()

	if np.nc == nil {
		return nil
	}

	if err := np.nc.Drain(); err != nil {
		np.nc.Close()
	}
	np.nc = nil
	np.connected = false
	np.logger.Info("%s : NATS disconnected", np.name)
	return nil
}

// -----------------------------------------------------------------------------

func (np *NATSPublisher) IsConnected() bool {
	np.mu.RLock()
	defer np.mu.RUnlock()
	return np.connected && np.nc != nil && np.nc.IsConnected()
}

// -----------------------------------------------------------------------------

func (np *NATSPublisher) setConnected(state bool) {
	np.mu.Lock()
	np.connected = state
	np.mu.Unlock()
}

// -----------------------------------------------------------------------------

// OnPriceEvent publishes one feed event. Price events land on
// <prefix>.<category>.<symbol>; connection events on <prefix>.connection.
func (np *NATSPublisher) OnPriceEvent(event models.MFeedEvent) {
	if !np.IsConnected() {
		return
	}

	var subject string
	switch event.Kind {
	case models.EventPrice:
		category := strings.ToLower(string(np.catalog.Categorize(event.Symbol)))
		subject = fmt.Sprintf("%s.%s.%s", np.config.SubjectPrefix, category, event.Symbol)
	case models.EventConnection:
		subject = fmt.Sprintf("%s.connection", np.config.SubjectPrefix)
	default:
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		np.logger.Error("%s : failed to serialize event for %s: %v", np.name, subject, err)
		return
	}

	if err := np.nc.Publish(subject, data); err != nil {
		np.logger.Error("%s : failed to publish to %s: %v", np.name, subject, err)
	}
}
