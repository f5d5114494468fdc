package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/declschema/internal/schema"
	"github.com/conduit-lang/declschema/internal/schema/serialization"
)

// Entry describes a stored schema.
type Entry struct {
	Name string
	// Digest is the hex SHA-256 of the uncompressed JSON document
	Digest string
	// Size is the length of the uncompressed JSON document in bytes
	Size int
	// Compressed reports whether the backend holds a gzip stream
	Compressed bool
}

// Catalog saves and loads analysis schemas through a Store.
type Catalog struct {
	store      Store
	serializer *serialization.Serializer
	compress   bool
	logger     *zap.Logger
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithSerializer replaces serialization.Default().
func WithSerializer(s *serialization.Serializer) CatalogOption {
	return func(c *Catalog) { c.serializer = s }
}

// WithCompression gzips documents before storing them.
func WithCompression(enabled bool) CatalogOption {
	return func(c *Catalog) { c.compress = enabled }
}

// WithLogger sets the logger used for catalog operations.
func WithLogger(logger *zap.Logger) CatalogOption {
	return func(c *Catalog) { c.logger = logger }
}

// NewCatalog creates a catalog over s.
func NewCatalog(s Store, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		store:      s,
		serializer: serialization.Default(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.serializer == nil {
		c.serializer = serialization.Default()
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Store returns the underlying store.
func (c *Catalog) Store() Store { return c.store }

// Save serializes root and stores it under name.
func (c *Catalog) Save(ctx context.Context, name string, root schema.AnalysisSchema) (Entry, error) {
	if err := ValidateName(name); err != nil {
		return Entry{}, err
	}

	data, err := c.serializer.Marshal(root)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to serialize schema %q: %w", name, err)
	}

	entry := Entry{Name: name, Digest: Digest(data), Size: len(data), Compressed: c.compress}
	if c.compress {
		if data, err = Compress(data); err != nil {
			return Entry{}, fmt.Errorf("failed to compress schema %q: %w", name, err)
		}
	}

	if err := c.store.Put(ctx, name, data); err != nil {
		return Entry{}, fmt.Errorf("failed to save schema %q: %w", name, err)
	}

	c.logger.Debug("saved schema",
		zap.String("name", name),
		zap.String("digest", entry.Digest),
		zap.Int("size", entry.Size),
		zap.Bool("compressed", entry.Compressed),
	)
	return entry, nil
}

// Load restores the schema stored under name.
func (c *Catalog) Load(ctx context.Context, name string) (*schema.AnalysisSchemaImpl, error) {
	data, _, err := c.read(ctx, name)
	if err != nil {
		return nil, err
	}

	root, err := c.serializer.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema %q: %w", name, err)
	}

	c.logger.Debug("loaded schema", zap.String("name", name))
	return root, nil
}

// Stat describes the document stored under name without decoding it.
func (c *Catalog) Stat(ctx context.Context, name string) (Entry, error) {
	data, compressed, err := c.read(ctx, name)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Name: name, Digest: Digest(data), Size: len(data), Compressed: compressed}, nil
}

// Remove deletes the schema stored under name.
func (c *Catalog) Remove(ctx context.Context, name string) error {
	if err := c.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to remove schema %q: %w", name, err)
	}
	c.logger.Debug("removed schema", zap.String("name", name))
	return nil
}

// Names lists stored schema names in ascending order.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	names, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return names, nil
}

// Close closes the underlying store.
func (c *Catalog) Close() error {
	return c.store.Close()
}

func (c *Catalog) read(ctx context.Context, name string) ([]byte, bool, error) {
	raw, err := c.store.Get(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load schema %q: %w", name, err)
	}

	compressed := IsCompressed(raw)
	data, err := Expand(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load schema %q: %w", name, err)
	}
	return data, compressed, nil
}
