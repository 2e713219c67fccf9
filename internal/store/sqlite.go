package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperengineering/edgereplica/internal/translator"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers as "sqlite"; sqlx only knows "sqlite3" by default.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteStore is the SQLite-backed edge replica.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the replica at dbPath.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: sqlx.NewDb(db, "sqlite")}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the replica is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SchemaVersion returns the applied migration version.
func (s *SQLiteStore) SchemaVersion(ctx context.Context) (int64, error) {
	return schemaVersion(ctx, s.db.DB)
}

// Apply executes a translated change statement. The statement is a single
// atomic upsert or delete, so concurrent deliveries of the same row are
// resolved by SQLite rather than by application locking.
func (s *SQLiteStore) Apply(ctx context.Context, stmt translator.Statement) (int64, error) {
	if stmt.SQL == "" {
		return 0, ErrEmptyStatement
	}
	result, err := s.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, fmt.Errorf("apply statement: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// QueryRestaurants runs a restaurants query built by the search layer.
func (s *SQLiteStore) QueryRestaurants(ctx context.Context, query string, args ...any) ([]RestaurantRow, error) {
	var rows []RestaurantRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query restaurants: %w", err)
	}
	return rows, nil
}

// GetRestaurant returns one restaurant by id.
func (s *SQLiteStore) GetRestaurant(ctx context.Context, id string) (*RestaurantRow, error) {
	var row RestaurantRow
	err := s.db.GetContext(ctx, &row, `
		SELECT id, name, formatted_address, latitude, longitude, primary_type, place_types,
		       rating, price_level, phone_number, website, photo_references,
		       is_open_now, has_supply_chain_data, created_at, updated_at
		FROM restaurants
		WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return &row, nil
}

// CountRows returns the number of rows in a replica table whose id matches.
// Used by tooling to confirm that a delete or upsert landed.
func (s *SQLiteStore) CountRows(ctx context.Context, table, id string) (int, error) {
	if !isReplicaTable(table) {
		return 0, fmt.Errorf("unknown replica table %q", table)
	}
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("count %s rows: %w", table, err)
	}
	return n, nil
}

// GetStats returns aggregate replica statistics.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := s.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM restaurants)            AS restaurants,
			(SELECT COUNT(*) FROM suppliers)              AS suppliers,
			(SELECT COUNT(*) FROM supplier_relationships) AS supplier_relationships,
			(SELECT COUNT(*) FROM allergen_protocols)     AS allergen_protocols,
			(SELECT COUNT(*) FROM disclaimer_acceptances) AS disclaimer_acceptances,
			(SELECT MAX(updated_at) FROM (
				SELECT updated_at FROM restaurants
				UNION ALL SELECT updated_at FROM suppliers
				UNION ALL SELECT updated_at FROM supplier_relationships
				UNION ALL SELECT updated_at FROM allergen_protocols
			)) AS last_replica_update
	`)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &stats, nil
}

func isReplicaTable(table string) bool {
	switch table {
	case "restaurants", "suppliers", "supplier_relationships", "allergen_protocols", "disclaimer_acceptances":
		return true
	}
	return false
}
