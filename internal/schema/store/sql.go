package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/lib/pq"              // PostgreSQL driver (lib/pq)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// SQL drivers accepted by SQLConfig.Driver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Drivers lists every supported database/sql driver name.
var Drivers = []string{DriverSQLite, DriverPostgres, DriverPgx}

// SQLConfig holds database settings for the sql backend
type SQLConfig struct {
	// Driver is a database/sql driver name, one of Drivers
	Driver string
	// DSN is the driver-specific data source name
	DSN string
	// Table holds one row per schema
	Table string
}

// DefaultSQLConfig returns a SQLite configuration in the working directory
func DefaultSQLConfig() SQLConfig {
	return SQLConfig{
		Driver: DriverSQLite,
		DSN:    "file:declschema.db",
		Table:  "schemas",
	}
}

// dialect captures the statement differences between SQLite and PostgreSQL.
type dialect struct {
	blobType    string
	placeholder func(n int) string
}

var (
	sqliteDialect = dialect{
		blobType:    "BLOB",
		placeholder: func(int) string { return "?" },
	}
	postgresDialect = dialect{
		blobType:    "BYTEA",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return sqliteDialect, nil
	case DriverPostgres, DriverPgx:
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported sql driver %q (expected one of %v)", driver, Drivers)
	}
}

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore keeps documents in a single table keyed by name.
type SQLStore struct {
	db      *sql.DB
	dialect dialect

	createSQL string
	upsertSQL string
	selectSQL string
	deleteSQL string
	listSQL   string
}

// OpenSQLStore opens the database described by config and prepares its table.
func OpenSQLStore(ctx context.Context, config SQLConfig) (*SQLStore, error) {
	if _, err := dialectFor(config.Driver); err != nil {
		return nil, err
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := NewSQLStore(ctx, db, config.Driver, config.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore uses an open database and creates table if it does not exist.
// The store takes ownership of db.
func NewSQLStore(ctx context.Context, db *sql.DB, driver, table string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if !tablePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	p := d.placeholder
	s := &SQLStore{
		db:      db,
		dialect: d,
		createSQL: fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, data %s NOT NULL, updated_at TIMESTAMP NOT NULL)",
			table, d.blobType),
		upsertSQL: fmt.Sprintf(
			"INSERT INTO %s (name, data, updated_at) VALUES (%s, %s, %s) "+
				"ON CONFLICT (name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at",
			table, p(1), p(2), p(3)),
		selectSQL: fmt.Sprintf("SELECT data FROM %s WHERE name = %s", table, p(1)),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE name = %s", table, p(1)),
		listSQL:   fmt.Sprintf("SELECT name FROM %s ORDER BY name", table),
	}

	if _, err := db.ExecContext(ctx, s.createSQL); err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return s, nil
}

// Put inserts or replaces the row for name.
func (s *SQLStore) Put(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.upsertSQL, name, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}
	return nil
}

// Get returns the document stored under name.
func (s *SQLStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, s.selectSQL, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Delete removes the row for name.
func (s *SQLStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, s.deleteSQL, name)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	if affected == 0 {
		return ErrNotFound{Name: name}
	}
	return nil
}

// List returns every stored name in ascending order.
func (s *SQLStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.listSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to list schemas: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return names, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
