package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "declschema", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, expected := range []string{"version", "completion", "check", "format", "inspect", "pack", "unpack", "store"} {
		assert.Contains(t, names, expected)
	}

	for _, flag := range []string{"config", "log-level", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}
}

func TestNewVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	BuildDate = "2025-01-01"
	GoVersion = "go1.23"

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--no-color", "version"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "declschema version: 1.0.0-test")
	assert.Contains(t, out.String(), "Git commit: abc123")
	assert.Contains(t, out.String(), "Build date: 2025-01-01")
	assert.Contains(t, out.String(), "Go version: go1.23")
}

func TestCompletionCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"completion", "bash"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "declschema")

	cmd = NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, cmd.Execute())
}

func TestInvalidConfig(t *testing.T) {
	env := newTestEnv(t)
	res := env.exec("--log-level", "loud", "check", "missing.json")

	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "CONFIGURATION ERROR")
	assert.Contains(t, res.stderr, "log_level must be one of")
}
