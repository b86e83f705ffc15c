package storage

import (
	"database/sql"
	"fmt"

	"price-aggregator/src/helpers"
	"price-aggregator/src/logger"
	"price-aggregator/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresCatalogStore is the shared-database variant of the catalog store,
// for deployments where several services read the learned instrument set.
type PostgresCatalogStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresCatalogStore(cfg *models.MConfig, log *logger.Logger) (*PostgresCatalogStore, error) {
	return &PostgresCatalogStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresCatalogStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

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

	d.Logger.Info("Postgres catalog store ready")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresCatalogStore) LoadSpecifications() ([]models.MSymbolSpec, error) {
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

func (d *PostgresCatalogStore) UpsertSpecifications(specs []models.MSymbolSpec) error {
	if len(specs) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO instrument_specs (symbol, description, path, category, exchange)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT(symbol) DO UPDATE SET
			description = EXCLUDED.description,
			path = EXCLUDED.path,
			category = EXCLUDED.category,
			exchange = EXCLUDED.exchange
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

func (d *PostgresCatalogStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
