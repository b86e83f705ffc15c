package storage

import (
	"fmt"

	"price-aggregator/src/helpers"
	"price-aggregator/src/interfaces"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"
)

// -----------------------------------------------------------------------------

// NewCatalogStore selects the store implementation from config. Returns nil
// (no store) when storage is disabled.
func NewCatalogStore(cfg *models.MConfig, log *logger.Logger) (interfaces.ICatalogStore, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}

	switch cfg.Storage.DBType {
	case "sqlite":
		return NewSQLiteCatalogStore(cfg, log)
	case "postgres":
		return NewPostgresCatalogStore(cfg, log)
	}
	return nil, &helpers.ConfigurationError{AggregatorError: helpers.AggregatorError{
		Message: fmt.Sprintf("unknown database type: %s", cfg.Storage.DBType),
	}}
}
