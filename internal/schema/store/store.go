// Package store keeps serialized analysis schemas under short names.
//
// A Store holds opaque documents; a Catalog layered on top serializes,
// digests and optionally compresses schemas before handing them to a Store.
// Backends are selected by Config: an in-process map, a directory of files,
// Redis, or a SQL table.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// Store persists schema documents by name.
type Store interface {
	// Put stores data under name, replacing any previous document
	Put(ctx context.Context, name string, data []byte) error

	// Get returns the document stored under name
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes the document stored under name
	Delete(ctx context.Context, name string) error

	// List returns every stored name in ascending order
	List(ctx context.Context) ([]string, error)

	// Close releases the backend's resources
	Close() error
}

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
)

// Backends lists every supported backend.
var Backends = []string{BackendMemory, BackendFile, BackendRedis, BackendSQL}

// ErrNotFound is returned when no document is stored under a name.
type ErrNotFound struct {
	Name string
}

func (e ErrNotFound) Error() string {
	return "schema not found: " + e.Name
}

// IsNotFound checks if an error is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName rejects names that could not be used as a file name or key.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid schema name %q: must match %s", name, namePattern.String())
	}
	return nil
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of the Backend* constants
	Backend string
	// Dir is the directory used by the file backend
	Dir string
	// Prefix is prepended to every Redis key
	Prefix string
	Redis  RedisConfig
	SQL    SQLConfig
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Dir:     ".declschema",
		Prefix:  "declschema:",
		Redis:   DefaultRedisConfig(),
		SQL:     DefaultSQLConfig(),
	}
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		s = NewMemoryStore()
	case BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.Redis, cfg.Prefix)
	case BackendSQL:
		s, err = OpenSQLStore(ctx, cfg.SQL)
	default:
		return nil, fmt.Errorf("unknown store backend %q (expected one of %v)", cfg.Backend, Backends)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}

	logger.Debug("opened schema store", zap.String("backend", cfg.Backend))
	return s, nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
