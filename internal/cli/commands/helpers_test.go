package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/declschema/internal/schema"
	"github.com/conduit-lang/declschema/internal/schema/serialization"
	"github.com/conduit-lang/declschema/internal/schema/store"
)

var (
	projectName    = schema.NewFqName("org.example", "Project")
	dependencyName = schema.NewFqName("org.example", "Dependency")
)

func testSchema() *schema.AnalysisSchemaImpl {
	nameProp := schema.DataProperty{
		Name:            "name",
		ValueType:       schema.RefOf(schema.StringDataType{}),
		Mode:            schema.ReadWrite,
		HasDefaultValue: true,
	}
	project := &schema.DataClassImpl{
		Name:       projectName,
		Properties: []schema.DataProperty{nameProp},
		MemberFunctions: []schema.SchemaMemberFunction{
			&schema.DataBuilderFunction{
				Receiver:   schema.RefTo(projectName),
				SimpleName: "name",
				DataParameter: schema.DataParameter{
					Name:      "value",
					Type:      schema.RefOf(schema.StringDataType{}),
					Semantics: schema.StoreValueInProperty{Property: nameProp},
				},
			},
			&schema.DataMemberFunction{
				Receiver:   schema.RefTo(projectName),
				SimpleName: "dependency",
				Parameters: []schema.DataParameter{{
					Name:      "coordinates",
					Type:      schema.RefOf(schema.StringDataType{}),
					Semantics: schema.UnknownParameterSemantics{},
				}},
				Semantics: schema.AddAndConfigure{
					ObjectType:       schema.RefTo(dependencyName),
					BlockRequirement: schema.BlockOptional,
				},
			},
		},
	}
	dependency := &schema.DataClassImpl{
		Name:       dependencyName,
		Supertypes: []schema.FqName{projectName},
		Properties: []schema.DataProperty{{
			Name:      "coordinates",
			ValueType: schema.RefOf(schema.StringDataType{}),
			Mode:      schema.ReadOnly,
		}},
	}

	return &schema.AnalysisSchemaImpl{
		TopLevelReceiverType: project,
		DataClassesByFqName: map[schema.FqName]schema.DataClass{
			projectName:    project,
			dependencyName: dependency,
		},
	}
}

// canonical is the default encoding of testSchema.
func canonical(t *testing.T) []byte {
	t.Helper()
	data, err := serialization.Default().Marshal(testSchema())
	require.NoError(t, err)
	return data
}

// testEnv is a temp directory with a config file pointing the file store
// into it.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "declschema.yml")
	content := fmt.Sprintf(`log_level: error
store:
  backend: file
  dir: %s
  compress: true
`, filepath.Join(dir, "store"))
	require.NoError(t, os.WriteFile(config, []byte(content), 0o644))
	return &testEnv{dir: dir, config: config}
}

// writeFile writes data to a file in the env and returns its path.
func (e *testEnv) writeFile(t *testing.T, name string, data []byte, compress bool) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, store.WriteSchemaFile(path, data, compress))
	return path
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with s and the env's config.
func (e *testEnv) run(s *session, stdin string, args ...string) result {
	cmd := newRootCommand(s)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color", "--config", e.config}, args...))

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (e *testEnv) exec(args ...string) result {
	return e.run(newSession(), "", args...)
}
