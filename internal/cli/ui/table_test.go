package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"Class", "Properties", "Supertypes"}, &TableOptions{
		NoColor:        true,
		NumericColumns: []int{1},
	})
	table.AddRow("org.example.Project", "4", "org.example.Named")
	table.AddRow("Dependency", "12", "")
	assert.Equal(t, 2, table.Len())

	table.Render()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"Class                Properties  Supertypes",
		"───────────────────  ──────────  ─────────────────",
		"org.example.Project           4  org.example.Named",
		"Dependency                   12  ",
	}, lines)
}

func TestTable_ShortRowsAndNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"A", "B"}, &TableOptions{NoColor: true})
	table.AddRow("only")
	table.AddRow("x", "y", "dropped")
	table.Render()
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "only")

	buf.Reset()
	NewTable(&buf, nil, nil).Render()
	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewKeyValueTable(&buf, true)
	table.AddRow("Top-level receiver", "org.example.Project")
	table.AddRowf("Data classes", "%d", 2)
	table.Render()

	assert.Equal(t,
		"Top-level receiver: org.example.Project\n"+
			"Data classes:       2\n",
		buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Schema", true)
	assert.Equal(t, "Schema\n──────\n", buf.String())
}
