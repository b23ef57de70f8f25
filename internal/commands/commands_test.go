package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
fragments:
  - name: Person
    labels: [Person]
    id: id
    fields: [id, name]
views:
  - name: Issue
    field: issue
    root:
      labels: [Issue]
      id: id
      fields: [id, title]
    relationships:
      - field: assignedTo
        target: Person
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		cmd := NewValidateCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--schema", writeSchema(t, testSchema)})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "1 fragments, 1 views, all valid")
	})

	t.Run("unresolvable target", func(t *testing.T) {
		t.Parallel()
		cmd := NewValidateCommand()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"--schema", writeSchema(t, `
views:
  - name: Issue
    field: issue
    root:
      labels: [Issue]
      id: id
      fields: [id]
    relationships:
      - field: assignedTo
        target: Ghost
`)})
		err := cmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "neither a fragment nor a view")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		cmd := NewValidateCommand()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"--schema", filepath.Join(t.TempDir(), "absent.yaml")})
		assert.Error(t, cmd.Execute())
	})
}

func TestExplainCommand(t *testing.T) {
	t.Parallel()

	t.Run("prints the compiled statement", func(t *testing.T) {
		t.Parallel()
		cmd := NewExplainCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"--schema", writeSchema(t, testSchema), "--view", "Issue"})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "MATCH (issue:Issue)")
		assert.Contains(t, out.String(), "AS assignedTo")
	})

	t.Run("applies sorts", func(t *testing.T) {
		t.Parallel()
		cmd := NewExplainCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{
			"--schema", writeSchema(t, testSchema),
			"--view", "Issue",
			"--sort", "assignedTo:name:asc",
		})
		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "reverse(apoc.coll.sortMaps(")
	})

	t.Run("unknown view", func(t *testing.T) {
		t.Parallel()
		cmd := NewExplainCommand()
		cmd.SetOut(new(bytes.Buffer))
		cmd.SetErr(new(bytes.Buffer))
		cmd.SetArgs([]string{"--schema", writeSchema(t, testSchema), "--view", "Ghost"})
		assert.Error(t, cmd.Execute())
	})
}

func TestParseSorts(t *testing.T) {
	t.Parallel()

	specs, err := parseSorts([]string{"assignedTo:name", "teams.members:name:asc"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.False(t, specs[0].Ascending)
	assert.Equal(t, "teams.members", specs[1].Path)
	assert.True(t, specs[1].Ascending)

	_, err = parseSorts([]string{"assignedTo"})
	assert.Error(t, err)
	_, err = parseSorts([]string{"assignedTo:name:sideways"})
	assert.Error(t, err)
}
