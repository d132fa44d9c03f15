package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/gridpath/planner/grid"
)

func TestParseLayout(t *testing.T) {
	g, err := ParseLayout([]string{
		"S..X",
		".X..",
		"...E",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 3, g.Height())
	assert.Equal(t, 2, g.Count(grid.Blocked))

	kind, err := g.KindAt(3, 0)
	require.NoError(t, err)
	assert.Equal(t, grid.Blocked, kind)
}

func TestParseLayoutErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []string
	}{
		{"no rows", nil},
		{"empty row", []string{""}},
		{"ragged", []string{"S..", ".."}},
		{"bad symbol", []string{"S.?", "..E"}},
		{"two starts", []string{"S.S", "..E"}},
		{"two goals", []string{"E.S", "..E"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLayout(tt.rows)
			assert.ErrorIs(t, err, grid.ErrMalformedSnapshot)
		})
	}
}

func TestFormatLayoutRoundTrip(t *testing.T) {
	rows := []string{"S.X", "FFE"}
	g, err := ParseLayout(rows)
	require.NoError(t, err)
	assert.Equal(t, rows, FormatLayout(g))
}
