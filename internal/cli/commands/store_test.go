package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/declschema/internal/schema/store"
)

func TestStore_PutGetList(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)
	digest := store.Digest(canonical(t))

	res := env.exec("store", "put", "settings", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "✓ Saved settings ("+digest[:12])

	_, err := os.Stat(filepath.Join(env.dir, "store", "settings.json.gz"))
	require.NoError(t, err, "file backend keeps compressed documents")

	res = env.exec("store", "get", "settings")
	require.NoError(t, res.err)
	assert.Equal(t, string(canonical(t))+"\n", res.stdout)

	out := filepath.Join(env.dir, "export.json")
	res = env.exec("store", "get", "-o", out, "settings")
	require.NoError(t, res.err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(canonical(t))+"\n", string(data))

	res = env.exec("store", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Name")
	assert.Contains(t, res.stdout, "settings")
	assert.Contains(t, res.stdout, "yes")
	assert.Contains(t, res.stdout, digest[:12])
}

func TestStore_ListEmpty(t *testing.T) {
	env := newTestEnv(t)
	res := env.exec("store", "ls")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No schemas stored")
}

func TestStore_PutInvalid(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)

	res := env.exec("store", "put", "../escape", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid schema name")

	broken := env.writeFile(t, "broken.json", []byte(`{`), false)
	res = env.exec("store", "put", "broken", broken)
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "MALFORMED JSON")
}

func TestStore_GetNotFound(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)
	require.NoError(t, env.exec("store", "put", "settings", path).err)

	res := env.exec("store", "get", "setings")
	require.Error(t, res.err)
	assert.Equal(t, "schema setings not found", res.err.Error())
	assert.Contains(t, res.stderr, "No schema is stored as 'setings'.")
	assert.Contains(t, res.stderr, "Did you mean: settings?")
}

func TestStore_Delete(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)
	require.NoError(t, env.exec("store", "put", "settings", path).err)

	t.Run("declined", func(t *testing.T) {
		s := newSession()
		var asked string
		s.confirm = func(message string) (bool, error) {
			asked = message
			return false, nil
		}

		res := env.run(s, "", "store", "delete", "settings")
		require.NoError(t, res.err)
		assert.Equal(t, "Delete schema 'settings'?", asked)
		assert.Contains(t, res.stdout, "Aborted")
		require.NoError(t, env.exec("store", "get", "settings").err)
	})

	t.Run("prompt error", func(t *testing.T) {
		s := newSession()
		s.confirm = func(string) (bool, error) { return false, errors.New("interrupt") }

		res := env.run(s, "", "store", "delete", "settings")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "confirmation failed")
	})

	t.Run("confirmed", func(t *testing.T) {
		s := newSession()
		s.confirm = func(string) (bool, error) { return true, nil }

		res := env.run(s, "", "store", "delete", "settings")
		require.NoError(t, res.err)
		assert.Contains(t, res.stdout, "✓ Deleted settings")
		require.Error(t, env.exec("store", "get", "settings").err)
	})

	t.Run("missing with --yes", func(t *testing.T) {
		s := newSession()
		s.confirm = func(string) (bool, error) {
			t.Fatal("--yes must skip the prompt")
			return false, nil
		}

		res := env.run(s, "", "store", "rm", "--yes", "settings")
		require.Error(t, res.err)
		assert.Contains(t, res.stderr, "SCHEMA NOT FOUND")
	})
}

func TestStore_MemoryBackendFromEnv(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("DECLSCHEMA_STORE_BACKEND", "memory")
	path := env.writeFile(t, "schema.json", canonical(t), false)

	res := env.exec("store", "put", "settings", path)
	require.NoError(t, res.err)

	// each invocation opens a fresh memory store
	res = env.exec("store", "list")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "No schemas stored")

	_, err := os.Stat(filepath.Join(env.dir, "store"))
	assert.True(t, os.IsNotExist(err))
}
