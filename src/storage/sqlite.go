package storage

import (
	"database/sql"
	"fmt"

	"price-aggregator/src/helpers"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteCatalogStore persists venue-learned instrument specifications so the
// catalog's learned tier survives restarts. Prices are never stored here.
type SQLiteCatalogStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteCatalogStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteCatalogStore, error) {
	return &SQLiteCatalogStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteCatalogStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	// Specifications accumulate across runs, never dropped
	query := `
		CREATE TABLE IF NOT EXISTS instrument_specs (
			symbol TEXT PRIMARY KEY,
			description TEXT,
			path TEXT,
			category TEXT,
			exchange TEXT
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create instrument_specs: %w", err)
	}

	d.Logger.Info("SQLite catalog store ready at %s", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteCatalogStore) LoadSpecifications() ([]models.MSymbolSpec, error) {
	rows, err := d.DB.Query("SELECT symbol, description, path, category, exchange FROM instrument_specs")
	if err != nil {
		return nil, fmt.Errorf("failed to load specifications: %w", err)
	}
	defer rows.Close()

	var specs []models.MSymbolSpec
	for rows.Next() {
		var spec models.MSymbolSpec
		if err := rows.Scan(&spec.Symbol, &spec.Description, &spec.Path, &spec.VenueCategory, &spec.Exchange); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteCatalogStore) UpsertSpecifications(specs []models.MSymbolSpec) error {
	if len(specs) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO instrument_specs (symbol, description, path, category, exchange)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			description = excluded.description,
			path = excluded.path,
			category = excluded.category,
			exchange = excluded.exchange
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, spec := range specs {
		if spec.Symbol == "" {
			continue
		}
		if _, err := stmt.Exec(spec.Symbol, spec.Description, spec.Path, spec.VenueCategory, spec.Exchange); err != nil {
			tx.Rollback()
			return &helpers.StorageError{AggregatorError: helpers.AggregatorError{
				Message: fmt.Sprintf("failed to upsert %s", spec.Symbol), Cause: err,
			}}
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteCatalogStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
