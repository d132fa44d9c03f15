package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridpath/planner/grid"
)

func validLayout(name string) *Layout {
	return &Layout{
		Name:        name,
		Description: "test layout",
		Rows: []string{
			"S..",
			".X.",
			"..E",
		},
	}
}

func writeLayoutFile(t *testing.T, dir, id string, v any) {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), data, 0644))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		layout  *Layout
		wantErr bool
	}{
		{"valid", validLayout("ok"), false},
		{"nil", nil, true},
		{"missing name", &Layout{Rows: []string{"S.E"}}, true},
		{"no rows", &Layout{Name: "x"}, true},
		{"ragged", &Layout{Name: "x", Rows: []string{"S.E", ".."}}, true},
		{"bad symbol", &Layout{Name: "x", Rows: []string{"S?E"}}, true},
		{"two starts", &Layout{Name: "x", Rows: []string{"SSE"}}, true},
		{"without endpoints", &Layout{Name: "x", Rows: []string{"..."}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.layout)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewManager(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := NewManager(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("empty directory falls back to minimal", func(t *testing.T) {
		m, err := NewManager(t.TempDir())
		require.NoError(t, err)
		def := m.Default()
		require.NotNil(t, def)
		assert.Equal(t, "default", def.Name)
		assert.NoError(t, Validate(def))
	})

	t.Run("classic preferred", func(t *testing.T) {
		dir := t.TempDir()
		writeLayoutFile(t, dir, "aaa", validLayout("First"))
		writeLayoutFile(t, dir, "classic", validLayout("Classic"))

		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Classic", m.Default().Name)
	})

	t.Run("first valid otherwise", func(t *testing.T) {
		dir := t.TempDir()
		writeLayoutFile(t, dir, "aaa", &Layout{Name: "broken", Rows: []string{"S?"}})
		writeLayoutFile(t, dir, "bbb", validLayout("Second"))

		m, err := NewManager(dir)
		require.NoError(t, err)
		assert.Equal(t, "Second", m.Default().Name)
	})
}

func TestManager_Load(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "small", validLayout("Small"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{"), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)

	l, err := m.Load("small")
	require.NoError(t, err)
	assert.Equal(t, "Small", l.Name)
	assert.Equal(t, 3, l.Width())
	assert.Equal(t, 3, l.Height())

	again, err := m.Load("small.json")
	require.NoError(t, err)
	assert.Same(t, l, again, "second load should come from the cache")

	_, err = m.Load("missing")
	assert.ErrorIs(t, err, ErrLayoutNotFound)

	_, err = m.Load("garbage")
	assert.ErrorIs(t, err, ErrInvalidLayout)

	_, err = m.Load("../etc/passwd")
	assert.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestManager_List(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "zeta", validLayout("Zeta"))
	writeLayoutFile(t, dir, "alpha", &Layout{Name: "Alpha", Rows: []string{"S...E"}})
	writeLayoutFile(t, dir, "broken", &Layout{Name: "", Rows: []string{"S"}})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	m, err := NewManager(dir)
	require.NoError(t, err)

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "alpha", infos[0].LayoutID)
	assert.Equal(t, "alpha.json", infos[0].Filename)
	assert.Equal(t, 5, infos[0].Width)
	assert.Equal(t, 1, infos[0].Height)
	assert.Equal(t, "zeta", infos[1].LayoutID)
}

func TestManager_SaveAndSetDefault(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	require.NoError(t, err)

	require.NoError(t, m.Save("mine", validLayout("Mine")))
	_, err = os.Stat(filepath.Join(dir, "mine.json"))
	require.NoError(t, err)

	require.NoError(t, m.SetDefault("mine"))
	assert.Equal(t, "Mine", m.Default().Name)

	err = m.Save("bad", &Layout{Name: "bad"})
	assert.ErrorIs(t, err, ErrInvalidLayout)

	err = m.Save("a/b", validLayout("x"))
	assert.ErrorIs(t, err, ErrInvalidLayout)

	assert.ErrorIs(t, m.SetDefault("missing"), ErrLayoutNotFound)
}

func TestManager_RefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "classic", validLayout("Before"))

	m, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, "Before", m.Default().Name)

	writeLayoutFile(t, dir, "classic", validLayout("After"))
	l, err := m.Load("classic")
	require.NoError(t, err)
	assert.Equal(t, "Before", l.Name, "cached until refreshed")

	m.RefreshCache()
	assert.Equal(t, "After", m.Default().Name)
}

func TestManager_ConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	writeLayoutFile(t, dir, "classic", validLayout("Classic"))
	m, err := NewManager(dir)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := m.Load("classic")
			assert.NoError(t, err)
			assert.Equal(t, "Classic", l.Name)
		}()
	}
	wg.Wait()
}

func TestLayout_GridAndFromGrid(t *testing.T) {
	l := validLayout("g")
	g, err := l.Grid()
	require.NoError(t, err)
	assert.Equal(t, 1, g.Count(grid.Blocked))

	require.NoError(t, g.MarkSolution(1, 0))
	back := FromGrid("copy", "", g)
	assert.Equal(t, l.Rows, back.Rows, "solution marks are not saved")
	assert.Equal(t, 1, g.Count(grid.SolutionPath), "source grid untouched")
}

func TestBundledLayouts(t *testing.T) {
	m, err := NewManager(filepath.Join("..", "..", "layouts"))
	require.NoError(t, err)

	infos, err := m.List()
	require.NoError(t, err)

	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.LayoutID)
	}
	assert.Subset(t, ids, []string{"classic", "open", "maze", "sealed"})
	assert.Equal(t, "Classic", m.Default().Name)
}
