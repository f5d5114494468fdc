package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/declschema/internal/cli/ui"
)

const archiveSuffix = ".gz"

func newPackCommand(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pack <file>",
		Short: "Write a schema as a gzip archive",
		Long: `Validate a schema document and write its canonical form as a gzip archive.

The archive is written to <file>.gz unless -o is given; "-o -" writes the
archive to stdout.`,
		Example: `  declschema pack schema.json
  declschema pack -o dist/schema.json.gz schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.prepare(cmd); err != nil {
				return err
			}

			path := args[0]
			if output == "" {
				if path == stdinPath {
					return errors.New("-o is required when packing stdin")
				}
				output = path + archiveSuffix
			}
			if output == path {
				return errors.New("refusing to overwrite the input file")
			}

			root, _, err := s.decodeFile(cmd, path)
			if err != nil {
				return err
			}
			data, err := s.serializer("").Marshal(root)
			if err != nil {
				return err
			}

			if err := writeOutput(cmd, output, data, true); err != nil {
				return err
			}
			if output != stdinPath {
				ui.WriteSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Packed %s → %s", sourceName(path), output), s.noColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <file>.gz)")

	return cmd
}

func newUnpackCommand(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "unpack <file>",
		Short: "Extract a schema from a gzip archive",
		Long: `Validate a packed schema and write it as plain JSON.

The document is written to <file> without its .gz suffix unless -o is given;
"-o -" writes it to stdout.`,
		Example: `  declschema unpack schema.json.gz
  declschema unpack -o - schema.json.gz | less`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.prepare(cmd); err != nil {
				return err
			}

			path := args[0]
			if output == "" {
				if path == stdinPath || !strings.HasSuffix(path, archiveSuffix) {
					return fmt.Errorf("-o is required when the input has no %s suffix", archiveSuffix)
				}
				output = strings.TrimSuffix(path, archiveSuffix)
			}

			root, _, err := s.decodeFile(cmd, path)
			if err != nil {
				return err
			}
			data, err := s.serializer("").Marshal(root)
			if err != nil {
				return err
			}
			data = append(data, '\n')

			if err := writeOutput(cmd, output, data, false); err != nil {
				return err
			}
			if output != stdinPath {
				ui.WriteSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Unpacked %s → %s", sourceName(path), output), s.noColor)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <file> without .gz)")

	return cmd
}
