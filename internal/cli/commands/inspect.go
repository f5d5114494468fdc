package commands

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/declschema/internal/cli/ui"
	"github.com/conduit-lang/declschema/internal/schema"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// classSummary is one row of `inspect` output.
type classSummary struct {
	Name         string   `json:"name"`
	TopLevel     bool     `json:"topLevel,omitempty"`
	Properties   int      `json:"properties"`
	Functions    int      `json:"functions"`
	Builders     int      `json:"builders"`
	Constructors int      `json:"constructors"`
	Supertypes   []string `json:"supertypes"`
}

// memberSummary describes a property or member function for `inspect --class`.
type memberSummary struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Type string `json:"type"`
	Info string `json:"info,omitempty"`
}

func newInspectCommand(s *session) *cobra.Command {
	var (
		outputFormat string
		className    string
	)

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "List the data classes of a schema",
		Long: `Show the data classes of a schema with their member counts, or the members
of a single class with --class.`,
		Example: `  declschema inspect schema.json
  declschema inspect --format json schema.json
  declschema inspect --class org.example.Project schema.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.prepare(cmd); err != nil {
				return err
			}
			if outputFormat != formatTable && outputFormat != formatJSON {
				return fmt.Errorf("--format must be %s or %s, got: %s", formatTable, formatJSON, outputFormat)
			}

			root, _, err := s.decodeFile(cmd, args[0])
			if err != nil {
				return err
			}

			if className != "" {
				class, ok := findClass(root, className)
				if !ok {
					known := classNames(root)
					opts := ui.ErrorOptions{
						Context: "CLASS NOT FOUND",
						Problem: fmt.Sprintf("No data class named '%s'.", className),
						HelpCommands: []string{
							"List classes: declschema inspect " + args[0],
						},
						NoColor: s.noColor,
					}
					if near := ui.Suggest(className, known, ui.DefaultMaxSuggestions); len(near) > 0 {
						opts.Suggestions = []string{fmt.Sprintf("Did you mean: %s?", strings.Join(near, ", "))}
					}
					ui.WriteError(cmd.ErrOrStderr(), opts)
					return fmt.Errorf("class %s not found", className)
				}
				return s.printMembers(cmd, class, outputFormat)
			}

			return s.printClasses(cmd, summarize(root), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", formatTable, "Output format: table or json")
	cmd.Flags().StringVar(&className, "class", "", "Show the members of one data class")

	return cmd
}

func (s *session) printClasses(cmd *cobra.Command, rows []classSummary, outputFormat string) error {
	out := cmd.OutOrStdout()
	if outputFormat == formatJSON {
		return printJSON(cmd, rows)
	}

	table := ui.NewTable(out, []string{"Class", "Properties", "Functions", "Builders", "Constructors", "Supertypes"},
		&ui.TableOptions{NoColor: s.noColor, NumericColumns: []int{1, 2, 3, 4}})
	for _, row := range rows {
		name := row.Name
		if row.TopLevel {
			name += " *"
		}
		table.AddRow(name,
			strconv.Itoa(row.Properties),
			strconv.Itoa(row.Functions),
			strconv.Itoa(row.Builders),
			strconv.Itoa(row.Constructors),
			strings.Join(row.Supertypes, ", "))
	}
	table.Render()
	fmt.Fprintf(out, "\n%d data classes (* top-level receiver)\n", len(rows))
	return nil
}

func (s *session) printMembers(cmd *cobra.Command, class schema.DataClass, outputFormat string) error {
	members := describeMembers(class)
	if outputFormat == formatJSON {
		return printJSON(cmd, members)
	}

	out := cmd.OutOrStdout()
	ui.Header(out, class.ClassName().QualifiedName(), s.noColor)
	table := ui.NewTable(out, []string{"Kind", "Name", "Type", "Info"}, &ui.TableOptions{NoColor: s.noColor})
	for _, m := range members {
		table.AddRow(m.Kind, m.Name, m.Type, m.Info)
	}
	table.Render()
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func summarize(root *schema.AnalysisSchemaImpl) []classSummary {
	var top string
	if root.TopLevelReceiverType != nil {
		top = root.TopLevelReceiverType.ClassName().QualifiedName()
	}

	rows := make([]classSummary, 0, len(root.DataClassesByFqName))
	for _, key := range classKeys(root) {
		name := key.QualifiedName()
		class := root.DataClassesByFqName[key]
		row := classSummary{
			Name:       name,
			TopLevel:   name == top,
			Supertypes: []string{},
		}
		if impl, ok := class.(*schema.DataClassImpl); ok {
			row.Properties = len(impl.Properties)
			row.Constructors = len(impl.Constructors)
			for _, fn := range impl.MemberFunctions {
				if _, ok := fn.(*schema.DataBuilderFunction); ok {
					row.Builders++
				} else {
					row.Functions++
				}
			}
			for _, st := range impl.Supertypes {
				row.Supertypes = append(row.Supertypes, st.QualifiedName())
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// classKeys returns the keys of all data classes in encoding order.
func classKeys(root *schema.AnalysisSchemaImpl) []schema.FqName {
	keys := make([]schema.FqName, 0, len(root.DataClassesByFqName))
	for key := range root.DataClassesByFqName {
		keys = append(keys, key)
	}
	schema.SortFqNames(keys)
	return keys
}

// classNames returns the qualified names of all data classes, sorted.
func classNames(root *schema.AnalysisSchemaImpl) []string {
	keys := classKeys(root)
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.QualifiedName()
	}
	return names
}

// findClass looks a class up by qualified name. Package and simple names may
// both contain dots, so the name is matched whole rather than split.
func findClass(root *schema.AnalysisSchemaImpl, qualified string) (schema.DataClass, bool) {
	for _, key := range classKeys(root) {
		if key.QualifiedName() == qualified {
			return root.DataClassesByFqName[key], true
		}
	}
	return nil, false
}

func describeMembers(class schema.DataClass) []memberSummary {
	impl, ok := class.(*schema.DataClassImpl)
	if !ok {
		return nil
	}

	members := make([]memberSummary, 0, len(impl.Properties)+len(impl.MemberFunctions))
	for _, p := range impl.Properties {
		members = append(members, memberSummary{
			Kind: "property",
			Name: p.Name,
			Type: typeName(p.ValueType),
			Info: propertyInfo(p),
		})
	}
	for _, fn := range impl.MemberFunctions {
		members = append(members, memberSummary{
			Kind: semanticsKind(fn.FunctionSemantics()),
			Name: fn.FunctionName(),
			Type: returnType(fn.FunctionSemantics()),
			Info: functionInfo(fn),
		})
	}
	return members
}

func propertyInfo(p schema.DataProperty) string {
	flags := []string{p.Mode.String()}
	if p.HasDefaultValue {
		flags = append(flags, "default")
	}
	if p.IsHiddenInDsl {
		flags = append(flags, "hidden")
	}
	if p.IsDirectAccessOnly {
		flags = append(flags, "direct")
	}
	return strings.Join(flags, ", ")
}

func functionInfo(fn schema.SchemaMemberFunction) string {
	var params []schema.DataParameter
	switch f := fn.(type) {
	case *schema.DataMemberFunction:
		params = f.Parameters
	case *schema.DataBuilderFunction:
		params = []schema.DataParameter{f.DataParameter}
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		name := p.Name
		if name == "" {
			name = "_"
		}
		parts = append(parts, name+": "+typeName(p.Type))
	}
	info := "(" + strings.Join(parts, ", ") + ")"

	if s, ok := fn.FunctionSemantics().(schema.AddAndConfigure); ok {
		info += " block " + s.BlockRequirement.String()
	}
	return info
}

func semanticsKind(s schema.FunctionSemantics) string {
	switch s.(type) {
	case schema.Pure:
		return "pure"
	case schema.Builder:
		return "builder"
	case schema.AccessAndConfigure:
		return "access"
	case schema.AddAndConfigure:
		return "add"
	default:
		return "function"
	}
}

func returnType(s schema.FunctionSemantics) string {
	if s == nil {
		return ""
	}
	return typeName(s.ReturnType())
}

func typeName(ref schema.DataTypeRef) string {
	if ref == nil {
		return ""
	}
	return ref.String()
}
