package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridpath/planner/grid"
)

func sampleGrid(t *testing.T) *grid.Grid {
	t.Helper()
	g, err := ParseLayout([]string{
		"S.X.",
		"..X.",
		"...E",
	})
	require.NoError(t, err)
	return g
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{JSON, YAML} {
		t.Run(string(format), func(t *testing.T) {
			g := sampleGrid(t)
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, g, format))

			back, err := Decode(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, g.Rows(), back.Rows())

			start, ok := back.Start()
			require.True(t, ok)
			assert.Equal(t, grid.Position{Col: 0, Row: 0}, start)
			goal, ok := back.Goal()
			require.True(t, ok)
			assert.Equal(t, grid.Position{Col: 3, Row: 2}, goal)
		})
	}
}

func TestEncodeYAMLUsesKindNames(t *testing.T) {
	g, err := ParseLayout([]string{"SX"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, g, YAML))
	out := buf.String()
	assert.Contains(t, out, "kind: start")
	assert.Contains(t, out, "kind: blocked")
	assert.Contains(t, out, "width: 2")
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, sampleGrid(t), Format("toml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Decode(&buf, Format("toml"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"), JSON)
	assert.ErrorIs(t, err, grid.ErrMalformedSnapshot)

	_, err = Decode(strings.NewReader(`{"width":2,"height":1,"cells":[[{"col":0,"row":0,"kind":"open"}]]}`), JSON)
	assert.ErrorIs(t, err, grid.ErrMalformedSnapshot)

	_, err = Decode(strings.NewReader(`{"width":1,"height":1,"cells":[[{"col":0,"row":0,"kind":"lava"}]]}`), JSON)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"json", JSON, false},
		{"JSON", JSON, false},
		{"", JSON, false},
		{"yaml", YAML, false},
		{"yml", YAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, YAML, FormatForPath("grid.yaml"))
	assert.Equal(t, YAML, FormatForPath("dir/grid.YML"))
	assert.Equal(t, JSON, FormatForPath("grid.json"))
	assert.Equal(t, JSON, FormatForPath("grid"))
}

func TestSaveLoadFile(t *testing.T) {
	dir := t.TempDir()
	g := sampleGrid(t)

	for _, name := range []string{"a.json", "b.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveFile(path, g))

		back, err := LoadFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, g.Rows(), back.Rows(), name)
	}
}

func TestLoadFileAcceptsLayoutDocuments(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "maze.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"maze","rows":["S.","XE"]}`), 0644))
	g, err := LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"S.", "XE"}, g.Rows())

	yamlPath := filepath.Join(dir, "maze.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("rows:\n  - \"S.\"\n  - \".E\"\n"), 0644))
	g, err = LoadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"S.", ".E"}, g.Rows())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
