package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	extJSON = ".json"
	extGzip = ".json.gz"
)

// FileStore keeps one file per schema in a directory. Gzipped documents are
// stored as <name>.json.gz, plain ones as <name>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory the store writes to.
func (f *FileStore) Dir() string { return f.dir }

func (f *FileStore) path(name, ext string) string {
	return filepath.Join(f.dir, name+ext)
}

// Put writes data atomically, replacing the document in either form.
func (f *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	ext, stale := extJSON, extGzip
	if IsCompressed(data) {
		ext, stale = extGzip, extJSON
	}

	tmp, err := os.CreateTemp(f.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), f.path(name, ext)); err != nil {
		return fmt.Errorf("failed to store %s: %w", name, err)
	}

	if err := os.Remove(f.path(name, stale)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove stale copy of %s: %w", name, err)
	}
	return nil
}

// Get reads the document stored under name.
func (f *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	for _, ext := range []string{extJSON, extGzip} {
		data, err := os.ReadFile(f.path(name, ext))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	return nil, ErrNotFound{Name: name}
}

// Delete removes both forms of name.
func (f *FileStore) Delete(ctx context.Context, name string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}

	removed := false
	for _, ext := range []string{extJSON, extGzip} {
		err := os.Remove(f.path(name, ext))
		switch {
		case err == nil:
			removed = true
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
	}
	if !removed {
		return ErrNotFound{Name: name}
	}
	return nil
}

// List returns the names of stored documents, sorted.
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", f.dir, err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		file := entry.Name()
		var name string
		switch {
		case strings.HasSuffix(file, extGzip):
			name = strings.TrimSuffix(file, extGzip)
		case strings.HasSuffix(file, extJSON):
			name = strings.TrimSuffix(file, extJSON)
		default:
			continue
		}
		if ValidateName(name) != nil || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}
