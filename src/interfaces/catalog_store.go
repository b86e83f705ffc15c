package interfaces

import "price-aggregator/src/models"

// -----------------------------------------------------------------------------
// ICatalogStore defines the contract for persisting venue-learned instrument
// specifications. Prices are never stored.
// -----------------------------------------------------------------------------

type ICatalogStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// LoadSpecifications returns every specification learned in past runs.
	LoadSpecifications() ([]models.MSymbolSpec, error)

	// -----------------------------------------------------------------------------

	// UpsertSpecifications inserts or updates a batch of specifications.
	UpsertSpecifications(specs []models.MSymbolSpec) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
