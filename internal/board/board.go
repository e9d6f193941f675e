package board

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sweepkit/sweepkit/internal/knowledge"
)

var Log = logrus.New()

/*
Board is the ground truth of a single game: the real mine positions and
the flags placed so far. It answers probes but holds no deductions; the
knowledge engine never sees the mine map, only the counts a probe
reveals.

Fields are exported so a board gob-encodes for persistence.
*/
type Board struct {
	Height, Width int
	Mines         map[knowledge.Cell]bool
	Flagged       map[knowledge.Cell]bool
}

// New places mineCount mines uniformly at random on a height x width
// board, drawing positions until enough distinct cells are hit.
func New(height, width, mineCount int, rnd *rand.Rand) (*Board, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", height, width)
	}
	if mineCount < 0 || mineCount > height*width {
		return nil, fmt.Errorf("mine count %d does not fit a %dx%d board", mineCount, height, width)
	}
	b := &Board{
		Height:  height,
		Width:   width,
		Mines:   make(map[knowledge.Cell]bool, mineCount),
		Flagged: make(map[knowledge.Cell]bool),
	}
	for len(b.Mines) < mineCount {
		c := knowledge.Cell{Row: rnd.IntN(height), Col: rnd.IntN(width)}
		b.Mines[c] = true
	}
	return b, nil
}

func (b *Board) ValidateCell(c knowledge.Cell) bool {
	return 0 <= c.Row && c.Row < b.Height && 0 <= c.Col && c.Col < b.Width
}

func (b *Board) IsMine(c knowledge.Cell) bool {
	return b.Mines[c]
}

func (b *Board) MineCount() int {
	return len(b.Mines)
}

// NearbyMines counts the mines within one row and column of c, the
// cell itself excluded.
func (b *Board) NearbyMines(c knowledge.Cell) (count int) {
	for row := c.Row - 1; row <= c.Row+1; row++ {
		for col := c.Col - 1; col <= c.Col+1; col++ {
			n := knowledge.Cell{Row: row, Col: col}
			if n != c && b.ValidateCell(n) && b.Mines[n] {
				count++
			}
		}
	}
	return
}

// Flag marks a cell as a found mine. Out-of-bounds cells are ignored.
func (b *Board) Flag(c knowledge.Cell) {
	if b.ValidateCell(c) {
		b.Flagged[c] = true
	}
}

// Won reports whether every mine, and nothing else, has been flagged.
func (b *Board) Won() bool {
	if len(b.Flagged) != len(b.Mines) {
		return false
	}
	for c := range b.Flagged {
		if !b.Mines[c] {
			return false
		}
	}
	return true
}

// Render draws the mine layout as text, one bordered row per line.
func (b *Board) Render() string {
	var sb strings.Builder
	border := strings.Repeat("--", b.Width) + "-\n"
	for row := range b.Height {
		sb.WriteString(border)
		for col := range b.Width {
			if b.Mines[knowledge.Cell{Row: row, Col: col}] {
				sb.WriteString("|X")
			} else {
				sb.WriteString("| ")
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}
