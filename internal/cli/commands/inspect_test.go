package commands

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/declschema/internal/schema"
	"github.com/conduit-lang/declschema/internal/schema/serialization"
)

func TestInspect_Table(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)

	res := env.exec("inspect", path)
	require.NoError(t, res.err)

	assert.Contains(t, res.stdout, "Class")
	assert.Contains(t, res.stdout, "org.example.Project *")
	assert.Contains(t, res.stdout, "org.example.Dependency")
	assert.Contains(t, res.stdout, "2 data classes (* top-level receiver)")
}

func TestInspect_JSON(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)

	res := env.exec("inspect", "--format", "json", path)
	require.NoError(t, res.err)

	var rows []classSummary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &rows))
	assert.Equal(t, []classSummary{
		{
			Name:       "org.example.Dependency",
			Properties: 1,
			Supertypes: []string{"org.example.Project"},
		},
		{
			Name:       "org.example.Project",
			TopLevel:   true,
			Properties: 1,
			Functions:  1,
			Builders:   1,
			Supertypes: []string{},
		},
	}, rows)
}

func TestInspect_Class(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)

	res := env.exec("inspect", "--format", "json", "--class", "org.example.Project", path)
	require.NoError(t, res.err)

	var members []memberSummary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &members))
	assert.Equal(t, []memberSummary{
		{Kind: "property", Name: "name", Type: "String", Info: "readWrite, default"},
		{Kind: "builder", Name: "name", Type: "org.example.Project", Info: "(value: String)"},
		{Kind: "add", Name: "dependency", Type: "org.example.Dependency", Info: "(coordinates: String) block optional"},
	}, members)

	res = env.exec("inspect", "--class", "org.example.Project", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "org.example.Project\n")
	assert.Contains(t, res.stdout, "dependency")
}

func TestInspect_ClassWithDottedSimpleName(t *testing.T) {
	env := newTestEnv(t)
	nested := schema.NewFqName("org.example", "Outer.Inner")
	root := testSchema()
	root.DataClassesByFqName[nested] = &schema.DataClassImpl{
		Name: nested,
		Properties: []schema.DataProperty{{
			Name:      "depth",
			ValueType: schema.RefOf(schema.IntDataType{}),
			Mode:      schema.ReadOnly,
		}},
	}
	data, err := serialization.Default().Marshal(root)
	require.NoError(t, err)
	path := env.writeFile(t, "schema.json", data, false)

	res := env.exec("inspect", "--format", "json", "--class", "org.example.Outer.Inner", path)
	require.NoError(t, res.err)

	var members []memberSummary
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &members))
	assert.Equal(t, []memberSummary{
		{Kind: "property", Name: "depth", Type: "Int", Info: "readOnly"},
	}, members)
}

func TestInspect_UnknownClass(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)

	res := env.exec("inspect", "--class", "org.example.Projet", path)
	require.Error(t, res.err)
	assert.Contains(t, res.stderr, "CLASS NOT FOUND")
	assert.Contains(t, res.stderr, "Did you mean: org.example.Project?")
}

func TestInspect_InvalidFormat(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeFile(t, "schema.json", canonical(t), false)

	res := env.exec("inspect", "--format", "yaml", path)
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--format must be table or json")
}
