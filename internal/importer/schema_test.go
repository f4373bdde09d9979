package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
project: PROJ
statuses:
  - name: backlog
    default: true
  - name: qa
    display_name: Quality Check
    color: "#fe8019"
  - name: released
    final: true
issue_types:
  - name: bug
    workflow: [backlog, development, qa, released]
  - name: legacy
    active: false
    workflow: [backlog, released]
`

const tomlConfig = `
project = "PROJ"

[[statuses]]
name = "backlog"
default = true

[[statuses]]
name = "qa"
display_name = "Quality Check"
color = "#fe8019"

[[statuses]]
name = "released"
final = true

[[issue_types]]
name = "bug"
workflow = ["backlog", "development", "qa", "released"]

[[issue_types]]
name = "legacy"
active = false
workflow = ["backlog", "released"]
`

const jsonConfig = `{
  "project": "PROJ",
  "statuses": [
    {"name": "backlog", "default": true},
    {"name": "qa", "display_name": "Quality Check", "color": "#fe8019"},
    {"name": "released", "final": true}
  ],
  "issue_types": [
    {"name": "bug", "workflow": ["backlog", "development", "qa", "released"]},
    {"name": "legacy", "active": false, "workflow": ["backlog", "released"]}
  ]
}`

func TestParseConfigSchema_AllFormatsAgree(t *testing.T) {
	inputs := map[Format]string{
		FormatYAML: yamlConfig,
		FormatTOML: tomlConfig,
		FormatJSON: jsonConfig,
	}
	for format, data := range inputs {
		t.Run(string(format), func(t *testing.T) {
			schema, err := ParseConfigSchema([]byte(data), format)
			require.NoError(t, err)

			assert.Equal(t, "PROJ", schema.Project)
			require.Len(t, schema.Statuses, 3)
			assert.True(t, schema.Statuses[0].Default)
			assert.Equal(t, "Quality Check", schema.Statuses[1].DisplayName)
			assert.Equal(t, "#fe8019", schema.Statuses[1].Color)
			assert.True(t, schema.Statuses[2].Final)

			require.Len(t, schema.IssueTypes, 2)
			assert.Equal(t, []string{"backlog", "development", "qa", "released"}, schema.IssueTypes[0].Workflow)
			assert.Nil(t, schema.IssueTypes[0].Active)
			require.NotNil(t, schema.IssueTypes[1].Active)
			assert.False(t, *schema.IssueTypes[1].Active)

			assert.Empty(t, ValidateConfigSchema(schema))
		})
	}
}

func TestParseConfigSchema_UnknownKeysRejected(t *testing.T) {
	_, err := ParseConfigSchema([]byte("statuses:\n  - name: qa\n    colour: red\n"), FormatYAML)
	assert.Error(t, err)

	_, err = ParseConfigSchema([]byte("[[statuses]]\nname = \"qa\"\ncolour = \"red\"\n"), FormatTOML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")

	_, err = ParseConfigSchema([]byte(`{"statuses":[{"name":"qa","colour":"red"}]}`), FormatJSON)
	assert.Error(t, err)
}

func TestParseConfigSchema_EmptyYAML(t *testing.T) {
	schema, err := ParseConfigSchema([]byte("\n"), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, schema.Statuses)
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"workflow.yaml": FormatYAML,
		"workflow.YML":  FormatYAML,
		"a/b/cfg.toml":  FormatTOML,
		"cfg.json":      FormatJSON,
	}
	for path, want := range cases {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFromPath("cfg.ini")
	assert.Error(t, err)
}

func TestLoadConfigSchema_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlConfig), 0o644))

	schema, err := LoadConfigSchema(path)
	require.NoError(t, err)
	assert.Len(t, schema.Statuses, 3)

	_, err = LoadConfigSchema(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"statuses": [`), 0o644))
	_, err = LoadConfigSchema(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestEncode_ReparsesInEveryFormat(t *testing.T) {
	original, err := ParseConfigSchema([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatTOML, FormatJSON} {
		data, err := Encode(original, format)
		require.NoError(t, err, format)
		back, err := ParseConfigSchema(data, format)
		require.NoError(t, err, format)
		assert.Equal(t, Convert(original), Convert(back), format)
	}
}
