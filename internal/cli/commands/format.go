package commands

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/declschema/internal/cli/ui"
)

func newFormatCommand(s *session) *cobra.Command {
	var (
		write  bool
		check  bool
		indent string
	)

	cmd := &cobra.Command{
		Use:   "format <file>",
		Short: "Re-encode a schema document canonically",
		Long: `Decode a schema document and encode it again in canonical form.

The canonical form orders map entries by qualified name, writes every field
in declaration order and indents with the configured indent. By default the
result is printed to stdout. Use --write to replace the file, or --check to
verify it is already canonical.`,
		Example: `  declschema format schema.json              # Print canonical form
  declschema format --write schema.json      # Rewrite in place
  declschema format --check schema.json.gz   # Exit with error if not canonical
  declschema format --indent "    " schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.prepare(cmd); err != nil {
				return err
			}
			if write && check {
				return errors.New("--write and --check are mutually exclusive")
			}
			if cmd.Flags().Changed("indent") && indent == "" {
				return errors.New("--indent must not be empty")
			}
			if strings.Trim(indent, " \t") != "" {
				return fmt.Errorf("--indent may only contain spaces and tabs, got: %q", indent)
			}

			path := args[0]
			if write && path == stdinPath {
				return errors.New("--write needs a file, not stdin")
			}

			root, data, err := s.decodeFile(cmd, path)
			if err != nil {
				return err
			}
			formatted, err := s.serializer(indent).Marshal(root)
			if err != nil {
				return err
			}

			changed := !bytes.Equal(bytes.TrimSpace(data), formatted)
			formatted = append(formatted, '\n')

			switch {
			case check:
				if changed {
					color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "%s is not canonical\n", sourceName(path))
					return errors.New("schema is not formatted")
				}
				ui.WriteSuccess(cmd.OutOrStdout(), sourceName(path)+" is canonical", s.noColor)
				return nil
			case write:
				if !changed {
					ui.WriteSuccess(cmd.OutOrStdout(), path+" already canonical", s.noColor)
					return nil
				}
				if err := writeOutput(cmd, path, formatted, strings.HasSuffix(path, ".gz")); err != nil {
					return err
				}
				ui.WriteSuccess(cmd.OutOrStdout(), "Formatted "+path, s.noColor)
				return nil
			default:
				return writeOutput(cmd, "", formatted, false)
			}
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the canonical form back to the file")
	cmd.Flags().BoolVarP(&check, "check", "c", false, "Check if the file is canonical (exit 1 if not)")
	cmd.Flags().StringVar(&indent, "indent", "", "Indent unit (default: from config)")

	return cmd
}
