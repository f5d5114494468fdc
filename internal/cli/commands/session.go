package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/declschema/internal/cli/config"
	"github.com/conduit-lang/declschema/internal/cli/ui"
	"github.com/conduit-lang/declschema/internal/schema"
	"github.com/conduit-lang/declschema/internal/schema/serialization"
	"github.com/conduit-lang/declschema/internal/schema/store"
)

// stdinPath names standard input in file arguments.
const stdinPath = "-"

// session carries the global flags and the state derived from them for a
// single invocation.
type session struct {
	configPath string
	logLevel   string
	noColor    bool

	cfg    *config.Config
	logger *zap.Logger

	// confirm asks a yes/no question; tests replace it
	confirm func(message string) (bool, error)
}

func newSession() *session {
	return &session{confirm: surveyConfirm}
}

func surveyConfirm(message string) (bool, error) {
	answer := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, err
	}
	return answer, nil
}

// prepare loads the configuration and builds the logger on first use.
func (s *session) prepare(cmd *cobra.Command) error {
	if s.cfg != nil {
		return nil
	}

	cfg, err := config.Load(s.configPath)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), s.noColor))
		return errors.New("invalid configuration")
	}
	if s.logLevel != "" {
		cfg.LogLevel = s.logLevel
	}

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), s.noColor))
		return errors.New("invalid configuration")
	}

	s.cfg = cfg
	s.logger = newLogger(zap.NewAtomicLevelAt(level))
	s.logger.Debug("configuration loaded",
		zap.String("backend", cfg.Store.Backend),
		zap.Bool("compress", cfg.Store.Compress))
	return nil
}

// serializer returns a serializer using the configured indent unless
// override is non-empty.
func (s *session) serializer(override string) *serialization.Serializer {
	indent := s.cfg.Indent
	if override != "" {
		indent = override
	}
	return serialization.New(serialization.WithIndent(indent))
}

// catalog opens the configured schema store.
func (s *session) catalog(ctx context.Context) (*store.Catalog, error) {
	st, err := store.Open(ctx, s.cfg.StoreOptions(), s.logger)
	if err != nil {
		return nil, err
	}
	return store.NewCatalog(st,
		store.WithSerializer(s.serializer("")),
		store.WithCompression(s.cfg.Store.Compress),
		store.WithLogger(s.logger),
	), nil
}

// readInput returns the uncompressed contents of path, or of stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path != stdinPath {
		return store.ReadSchemaFile(path)
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return store.Expand(data)
}

// decodeFile reads and decodes the schema in path. Decode failures are
// explained on stderr before the error is returned.
func (s *session) decodeFile(cmd *cobra.Command, path string) (*schema.AnalysisSchemaImpl, []byte, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, nil, err
	}

	root, err := s.serializer("").Unmarshal(data)
	if err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), ui.SchemaError(sourceName(path), err, s.noColor))
		return nil, data, fmt.Errorf("%s is not a valid analysis schema", sourceName(path))
	}
	s.logger.Debug("decoded schema",
		zap.String("source", sourceName(path)),
		zap.Int("bytes", len(data)),
		zap.Int("dataClasses", len(root.DataClassesByFqName)))
	return root, data, nil
}

// writeOutput writes data to path, or to stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path string, data []byte, compress bool) error {
	if path == "" || path == stdinPath {
		if compress {
			packed, err := store.Compress(data)
			if err != nil {
				return err
			}
			data = packed
		}
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return store.WriteSchemaFile(path, data, compress)
}

func sourceName(path string) string {
	if path == stdinPath {
		return "stdin"
	}
	return path
}

func newLogger(level zap.AtomicLevel) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = level
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
