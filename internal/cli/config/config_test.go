package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/declschema/internal/schema/store"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "  ", cfg.Indent)
	assert.Equal(t, store.BackendFile, cfg.Store.Backend)
	assert.Equal(t, ".declschema", cfg.Store.Dir)
	assert.True(t, cfg.Store.Compress)
	assert.Equal(t, "declschema:", cfg.Store.Prefix)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, store.DriverSQLite, cfg.Store.SQL.Driver)
	assert.Equal(t, "file:declschema.db", cfg.Store.SQL.DSN)
	assert.Equal(t, "schemas", cfg.Store.SQL.Table)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	content := `
log_level: debug
indent: "\t"
store:
  backend: sql
  compress: false
  sql:
    driver: pgx
    dsn: postgres://localhost/schemas
    table: analysis_schemas
`
	require.NoError(t, os.WriteFile("declschema.yml", []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "\t", cfg.Indent)
	assert.Equal(t, store.BackendSQL, cfg.Store.Backend)
	assert.False(t, cfg.Store.Compress)
	assert.Equal(t, store.DriverPgx, cfg.Store.SQL.Driver)
	assert.Equal(t, "postgres://localhost/schemas", cfg.Store.SQL.DSN)
	assert.Equal(t, "analysis_schemas", cfg.Store.SQL.Table)
	// Unset keys keep their defaults.
	assert.Equal(t, ".declschema", cfg.Store.Dir)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)
}

func TestLoad_FoundInParentDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "declschema.yaml"), []byte("store:\n  backend: memory\n"), 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	chdir(t, nested)

	path, err := FindConfigFile()
	require.NoError(t, err)
	assert.Equal(t, "declschema.yaml", filepath.Base(path))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, store.BackendMemory, cfg.Store.Backend)
}

func TestLoad_ExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: redis\n  redis:\n    addr: cache:6380\n    db: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, store.BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6380", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
}

func TestLoad_MissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DECLSCHEMA_STORE_BACKEND", "memory")
	t.Setenv("DECLSCHEMA_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, store.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad log level", "log_level: loud\n", "log_level must be one of"},
		{"bad indent", "indent: \"--\"\n", "indent may only contain spaces and tabs"},
		{"empty indent", "indent: \"\"\n", "indent must not be empty"},
		{"bad backend", "store:\n  backend: s3\n", "store.backend must be one of"},
		{"bad driver", "store:\n  backend: sql\n  sql:\n    driver: mysql\n", "store.sql.driver must be one of"},
		{"empty dir", "store:\n  backend: file\n  dir: \"\"\n", "store.dir is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "declschema.yml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreOptions(t *testing.T) {
	cfg := &Config{Store: StoreConfig{
		Backend: store.BackendRedis,
		Dir:     "d",
		Prefix:  "p:",
		Redis:   RedisConfig{Addr: "r:1", Password: "secret", DB: 3},
		SQL:     SQLConfig{Driver: store.DriverPostgres, DSN: "dsn", Table: "t"},
	}}

	assert.Equal(t, store.Config{
		Backend: store.BackendRedis,
		Dir:     "d",
		Prefix:  "p:",
		Redis:   store.RedisConfig{Addr: "r:1", Password: "secret", DB: 3},
		SQL:     store.SQLConfig{Driver: store.DriverPostgres, DSN: "dsn", Table: "t"},
	}, cfg.StoreOptions())
}
