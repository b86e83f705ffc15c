package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"price-aggregator/src/cache"
	"price-aggregator/src/catalog"
	"price-aggregator/src/config"
	"price-aggregator/src/fallback"
	"price-aggregator/src/feed"
	"price-aggregator/src/helpers"
	"price-aggregator/src/interfaces"
	"price-aggregator/src/logger"
	"price-aggregator/src/network"
	"price-aggregator/src/publishers"
	"price-aggregator/src/server"
	"price-aggregator/src/service"
	"price-aggregator/src/storage"
	"price-aggregator/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config, config.Name)

	// 2. Catalog Persistence (optional)
	store, err := storage.NewCatalogStore(config.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init catalog store: %v", err)
		os.Exit(1)
	}
	if store != nil {
		// The database may come up after us; retry before giving up
		if _, err := helpers.RetryWithBackoff("catalog store init", 3, 2*time.Second, func() (interface{}, error) {
			return nil, store.Initialize()
		}); err != nil {
			appLogger.Critical("Failed to migrate catalog store: %v", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	// 3. Core Components
	networkManager := network.NewAsyncNetworkManager(config.MConfig, appLogger)

	symbolCatalog := catalog.NewCatalog(store, appLogger)
	if store != nil {
		if err := symbolCatalog.LoadFromStore(); err != nil {
			appLogger.Warning("Failed to load catalog from store: %v", err)
		}
	}

	priceCache := cache.NewPriceCache()

	var cryptoSource interfaces.IFallbackSource = fallback.NewCryptoSource(&config.Fallback, networkManager, appLogger)
	var ratesSource interfaces.IFallbackSource = fallback.NewRatesSource(&config.Fallback, networkManager, appLogger)

	var terminalFeed interfaces.IStreamingFeed = feed.NewTerminalFeed(&config.Venue, networkManager, priceCache, symbolCatalog, appLogger)

	// 4. Query Facade
	priceService := service.NewPriceService(priceCache, symbolCatalog, terminalFeed, cryptoSource, ratesSource, appLogger)
	priceService.StockSessionOpen = utils.NewStockSessionHint().Open

	// 5. NATS Publisher (optional)
	var publisher interfaces.IPublisher
	if config.NATS.Enabled {
		publisher = publishers.NewNATSPublisher(&config.NATS, symbolCatalog, appLogger)
		if err := publisher.Connect(); err != nil {
			appLogger.Warning("NATS connect failed, publishing disabled until reconnect: %v", err)
		}
		defer publisher.Disconnect()
	}

	// 6. HTTP / WebSocket Server
	srv := server.NewAPIServer(config.MConfig, priceService, appLogger)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	// 7. Streaming Feed
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go terminalFeed.Run(ctx)

	// 8. Event Loop: fan feed events out to websocket clients and NATS
	go func() {
		for event := range terminalFeed.Events() {
			srv.PublishEvent(event)
			if publisher != nil {
				publisher.OnPriceEvent(event)
			}
		}
	}()

	appLogger.Info("Price aggregator running on %s:%d", config.Host, config.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	srv.Stop()
}
