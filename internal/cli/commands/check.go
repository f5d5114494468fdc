package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/declschema/internal/cli/ui"
	"github.com/conduit-lang/declschema/internal/schema/store"
)

func newCheckCommand(s *session) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate analysis schema documents",
		Long: `Decode each file as an analysis schema and report what it contains.

Files may be plain JSON or gzip archives; "-" reads standard input. A file
fails the check when it is not well-formed JSON or does not match the
schema shape. The command exits non-zero if any file fails.`,
		Example: `  declschema check build.schema.json
  declschema check --quiet schemas/*.json.gz
  cat schema.json | declschema check -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.prepare(cmd); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for i, path := range args {
				root, data, err := s.decodeFile(cmd, path)
				if err != nil {
					failed++
					if data == nil {
						return err
					}
					continue
				}
				if quiet {
					continue
				}

				canonical, err := s.serializer("").Marshal(root)
				if err != nil {
					return err
				}

				if i > 0 {
					fmt.Fprintln(out)
				}
				ui.WriteSuccess(out, sourceName(path), s.noColor)
				summary := ui.NewKeyValueTable(out, s.noColor)
				summary.AddRow("Top-level receiver", root.TopLevelReceiverType.ClassName().QualifiedName())
				summary.AddRowf("Data classes", "%d", len(root.DataClassesByFqName))
				summary.AddRowf("External functions", "%d", len(root.ExternalFunctionsByFqName))
				summary.AddRowf("External objects", "%d", len(root.ExternalObjectsByFqName))
				summary.AddRowf("Default imports", "%d", len(root.DefaultImports))
				summary.AddRow("Digest", store.Digest(canonical))
				summary.AddRow("Canonical", yesNo(bytes.Equal(bytes.TrimSpace(data), canonical)))
				summary.Render()
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d schema files failed the check", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Only report failures")

	return cmd
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
