package commands

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/declschema/internal/cli/ui"
	"github.com/conduit-lang/declschema/internal/schema/store"
)

func newStoreCommand(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage stored schemas",
		Long: `Save, fetch, list and remove schemas in the configured schema store.

The backend is chosen by store.backend in declschema.yml (memory, file, redis
or sql) or the DECLSCHEMA_STORE_BACKEND environment variable.`,
	}

	cmd.AddCommand(newStorePutCommand(s))
	cmd.AddCommand(newStoreGetCommand(s))
	cmd.AddCommand(newStoreListCommand(s))
	cmd.AddCommand(newStoreDeleteCommand(s))

	return cmd
}

// withCatalog prepares the session, opens the catalog and closes it after fn.
func (s *session) withCatalog(cmd *cobra.Command, fn func(*store.Catalog) error) error {
	if err := s.prepare(cmd); err != nil {
		return err
	}
	catalog, err := s.catalog(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to open schema store: %w", err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			s.logger.Warn("failed to close schema store", zap.Error(err))
		}
	}()
	return fn(catalog)
}

// notFound explains a missing schema with suggestions from the stored names.
func (s *session) notFound(cmd *cobra.Command, catalog *store.Catalog, name string, err error) error {
	if !store.IsNotFound(err) {
		return err
	}
	known, listErr := catalog.Names(cmd.Context())
	if listErr != nil {
		s.logger.Debug("failed to list schemas for suggestions", zap.Error(listErr))
	}
	fmt.Fprint(cmd.ErrOrStderr(), ui.StoreNotFoundError(name, known, s.noColor))
	return fmt.Errorf("schema %s not found", name)
}

func newStorePutCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "put <name> <file>",
		Short:   "Save a schema under a name",
		Example: `  declschema store put settings settings.schema.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			if err := store.ValidateName(name); err != nil {
				return err
			}

			return s.withCatalog(cmd, func(catalog *store.Catalog) error {
				root, _, err := s.decodeFile(cmd, path)
				if err != nil {
					return err
				}
				entry, err := catalog.Save(cmd.Context(), name, root)
				if err != nil {
					return err
				}

				ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Saved %s (%s, %d bytes)", entry.Name, shortDigest(entry.Digest), entry.Size), s.noColor)
				return nil
			})
		},
	}
}

func newStoreGetCommand(s *session) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Print or export a stored schema",
		Example: `  declschema store get settings
  declschema store get -o settings.json settings`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			return s.withCatalog(cmd, func(catalog *store.Catalog) error {
				root, err := catalog.Load(cmd.Context(), name)
				if err != nil {
					return s.notFound(cmd, catalog, name, err)
				}
				data, err := s.serializer("").Marshal(root)
				if err != nil {
					return err
				}
				data = append(data, '\n')

				return writeOutput(cmd, output, data, false)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

func newStoreListCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored schemas",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.withCatalog(cmd, func(catalog *store.Catalog) error {
				ctx := cmd.Context()
				names, err := catalog.Names(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(names) == 0 {
					fmt.Fprint(out, ui.Warning("No schemas stored", s.noColor))
					return nil
				}

				table := ui.NewTable(out, []string{"Name", "Size", "Compressed", "Digest"},
					&ui.TableOptions{NoColor: s.noColor, NumericColumns: []int{1}})
				for _, name := range names {
					entry, err := catalog.Stat(ctx, name)
					if err != nil {
						// removed between List and Stat
						if store.IsNotFound(err) {
							continue
						}
						return err
					}
					table.AddRow(entry.Name, strconv.Itoa(entry.Size), yesNo(entry.Compressed), shortDigest(entry.Digest))
				}
				table.Render()
				return nil
			})
		},
	}
}

func newStoreDeleteCommand(s *session) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a stored schema",
		Example: `  declschema store delete settings
  declschema store delete --yes settings    # Skip confirmation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			return s.withCatalog(cmd, func(catalog *store.Catalog) error {
				if !yes {
					ok, err := s.confirm(fmt.Sprintf("Delete schema '%s'?", name))
					if err != nil {
						return fmt.Errorf("confirmation failed: %w", err)
					}
					if !ok {
						color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "Aborted")
						return nil
					}
				}

				if err := catalog.Remove(cmd.Context(), name); err != nil {
					return s.notFound(cmd, catalog, name, err)
				}
				ui.WriteSuccess(cmd.OutOrStdout(), "Deleted "+name, s.noColor)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
