package server

import (
	"fmt"
	"strings"
	"sync"

	"price-aggregator/src/logger"
	"price-aggregator/src/models"
	"price-aggregator/src/service"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Service *service.PriceService
	engine  *gin.Engine

	// WebSocket clients
	clients    map[*Client]struct{}
	broadcast  chan models.MFeedEvent
	register   chan *Client
	unregister chan *Client

	// Closed exactly once on Stop; gates every channel send at shutdown
	done     chan struct{}
	stopOnce sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, svc *service.PriceService, logger *logger.Logger) *APIServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:  cfg,
		Logger:  logger,
		Service: svc,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent lock/blocking
		broadcast:  make(chan models.MFeedEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// setup web routes
	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/prices/instruments", s.getInstruments)
	s.engine.GET("/api/prices/:symbol", s.getPrice)
	s.engine.POST("/api/prices/batch", s.postBatch)
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/status", s.getStatus)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	go s.handleWebsockets()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

// Stop is idempotent and safe against in-flight PublishEvent and websocket
// registrations; the hub loop drains its clients and exits.
func (s *APIServer) Stop() error {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	return nil
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) getInstruments(c *gin.Context) {
	instruments := s.Service.Instruments()
	s.Logger.Debug("Returning %d instruments", len(instruments))
	c.JSON(200, gin.H{"success": true, "instruments": instruments})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, ok := s.Service.FetchPrice(symbol)
	if !ok {
		c.JSON(404, gin.H{"success": false, "message": "Price not available"})
		return
	}

	c.JSON(200, gin.H{"success": true, "price": gin.H{"bid": quote.Bid, "ask": quote.Ask}})
}

// -----------------------------------------------------------------------------

type batchRequest struct {
	Symbols []string `json:"symbols"`
}

func (s *APIServer) postBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Symbols == nil {
		c.JSON(400, gin.H{"success": false, "message": "symbols array required"})
		return
	}

	quotes := s.Service.FetchBatchPrices(req.Symbols)

	prices := make(gin.H, len(quotes))
	for symbol, quote := range quotes {
		prices[symbol] = gin.H{"bid": quote.Bid, "ask": quote.Ask}
	}

	c.JSON(200, gin.H{"success": true, "prices": prices})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	status := s.Service.ConnectionStatus()

	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": len(s.clients),
		"price_count": status.PriceCount,
	})
}

// -----------------------------------------------------------------------------

func (s *APIServer) getStatus(c *gin.Context) {
	status := s.Service.ConnectionStatus()

	resp := gin.H{
		"isConnected": status.IsConnected,
		"state":       status.State,
		"priceCount":  status.PriceCount,
	}
	if s.Service.StockSessionOpen != nil {
		resp["stockMarketOpen"] = s.Service.StockSessionOpen()
	}

	c.JSON(200, resp)
}
