package board

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sweepkit/sweepkit/internal/knowledge"
)

func TestNewRejectsBadParams(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))

	tests := []struct {
		name                     string
		height, width, mineCount int
	}{
		{"zero height", 0, 8, 1},
		{"zero width", 8, 0, 1},
		{"negative mines", 8, 8, -1},
		{"too many mines", 3, 3, 10},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.height, test.width, test.mineCount, rnd)
			assert.Error(t, err)
		})
	}
}

func TestNewPlacesExactMineCount(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	for _, mines := range []int{0, 1, 8, 64} {
		b, err := New(8, 8, mines, rnd)
		assert.NoError(t, err)
		assert.Equal(t, mines, b.MineCount())
		for c := range b.Mines {
			assert.True(t, b.ValidateCell(c))
		}
	}
}

func TestNearbyMines(t *testing.T) {
	b := &Board{
		Height: 3, Width: 3,
		Mines: map[knowledge.Cell]bool{
			{Row: 0, Col: 0}: true,
			{Row: 0, Col: 1}: true,
		},
		Flagged: map[knowledge.Cell]bool{},
	}

	assert.Equal(t, 2, b.NearbyMines(knowledge.Cell{Row: 1, Col: 1}))
	assert.Equal(t, 2, b.NearbyMines(knowledge.Cell{Row: 1, Col: 0}))
	assert.Equal(t, 1, b.NearbyMines(knowledge.Cell{Row: 0, Col: 2}))
	assert.Equal(t, 0, b.NearbyMines(knowledge.Cell{Row: 2, Col: 2}))
	// the cell itself never counts
	assert.Equal(t, 1, b.NearbyMines(knowledge.Cell{Row: 0, Col: 0}))
}

func TestWon(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	b, err := New(4, 4, 3, rnd)
	assert.NoError(t, err)
	assert.False(t, b.Won())

	for c := range b.Mines {
		b.Flag(c)
	}
	assert.True(t, b.Won())

	// a wrong flag spoils the win
	for row := range b.Height {
		for col := range b.Width {
			c := knowledge.Cell{Row: row, Col: col}
			if !b.Mines[c] {
				b.Flag(c)
				assert.False(t, b.Won())
				return
			}
		}
	}
}

func TestWonOnMinelessBoard(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	b, err := New(2, 2, 0, rnd)
	assert.NoError(t, err)
	assert.True(t, b.Won())
}

func TestRender(t *testing.T) {
	b := &Board{
		Height: 2, Width: 2,
		Mines: map[knowledge.Cell]bool{
			{Row: 0, Col: 1}: true,
		},
		Flagged: map[knowledge.Cell]bool{},
	}
	assert.Equal(t, "-----\n| |X|\n-----\n| | |\n-----\n", b.Render())
}
