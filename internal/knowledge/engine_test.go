package knowledge

import (
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	m.Run()
}

func TestNewEngineRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 8}, {8, 0}, {-1, 8}} {
		_, err := NewEngine(dims[0], dims[1])
		assert.Error(t, err)
	}
}

func TestIngestValidation(t *testing.T) {
	tests := []struct {
		name  string
		cell  Cell
		count int
	}{
		{"out of bounds row", Cell{8, 0}, 0},
		{"out of bounds col", Cell{0, -1}, 0},
		{"negative count", Cell{4, 4}, -1},
		{"count exceeds corner neighbors", Cell{0, 0}, 4},
		{"count exceeds inner neighbors", Cell{4, 4}, 9},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e, err := NewEngine(8, 8)
			assert.NoError(t, err)
			err = e.Ingest(test.cell, test.count)
			assert.Error(t, err)
			var ce ContractError
			assert.ErrorAs(t, err, &ce)
			assert.Empty(t, e.MovesMade())
		})
	}
}

func TestIngestRecordsMoveAndSafe(t *testing.T) {
	e, _ := NewEngine(8, 8)
	assert.NoError(t, e.Ingest(Cell{3, 3}, 2))

	assert.True(t, e.MovesMade().Has(Cell{3, 3}))
	assert.True(t, e.Safes().Has(Cell{3, 3}))
	assert.Equal(t, 1, e.SentenceCount())
}

func TestNeighborConstraintAdjustsForKnownMines(t *testing.T) {
	e, _ := NewEngine(8, 8)
	e.RecordHazard(Cell{2, 2})
	e.RecordSafe(Cell{2, 3})

	cells, count := e.neighborConstraint(Cell{3, 3}, 3)

	// the known mine is deducted, the known safe contributes nothing
	assert.Equal(t, 2, count)
	assert.False(t, cells.Has(Cell{2, 2}))
	assert.False(t, cells.Has(Cell{2, 3}))
	assert.False(t, cells.Has(Cell{3, 3}))
	assert.Equal(t, 6, len(cells))
}

func TestNeighborConstraintClipsToBounds(t *testing.T) {
	e, _ := NewEngine(8, 8)
	cells, count := e.neighborConstraint(Cell{0, 0}, 1)
	assert.Equal(t, 1, count)
	assert.True(t, cells.Equal(NewCellSet(Cell{0, 1}, Cell{1, 0}, Cell{1, 1})))
}

func TestAllNeighborsMinesRule(t *testing.T) {
	e, _ := NewEngine(8, 8)
	assert.NoError(t, e.Ingest(Cell{0, 0}, 3))

	mines := e.Mines()
	assert.True(t, mines.Equal(NewCellSet(Cell{0, 1}, Cell{1, 0}, Cell{1, 1})))
}

func TestAllNeighborsSafeRule(t *testing.T) {
	e, _ := NewEngine(8, 8)
	assert.NoError(t, e.Ingest(Cell{0, 0}, 0))

	safes := e.Safes()
	for _, c := range []Cell{{0, 0}, {0, 1}, {1, 0}, {1, 1}} {
		assert.True(t, safes.Has(c))
	}
}

func TestSubsetDerivationFindsMine(t *testing.T) {
	e, _ := NewEngine(8, 8)
	a, b, c := Cell{0, 0}, Cell{0, 1}, Cell{0, 2}

	e.knowledge = append(e.knowledge,
		NewSentence(NewCellSet(a, b, c), 2),
		NewSentence(NewCellSet(a, b), 1),
	)
	e.deriveSubsets()
	for e.extractFacts() {
	}

	assert.True(t, e.Mines().Has(c))
	assert.False(t, e.Safes().Has(c))
}

func TestSubsetDerivationFindsSafe(t *testing.T) {
	e, _ := NewEngine(8, 8)
	a, b, c, d := Cell{0, 0}, Cell{0, 1}, Cell{0, 2}, Cell{0, 3}

	e.knowledge = append(e.knowledge,
		NewSentence(NewCellSet(a, b, c, d), 1),
		NewSentence(NewCellSet(a, b, c), 1),
	)
	e.deriveSubsets()
	for e.extractFacts() {
	}

	assert.True(t, e.Safes().Has(d))
	assert.False(t, e.Mines().Has(d))
}

func TestSubsetDerivationAppendsSentence(t *testing.T) {
	e, _ := NewEngine(8, 8)
	a, b, c, d := Cell{0, 0}, Cell{0, 1}, Cell{0, 2}, Cell{0, 3}

	e.knowledge = append(e.knowledge,
		NewSentence(NewCellSet(a, b, c, d), 2),
		NewSentence(NewCellSet(a, b), 1),
	)
	e.deriveSubsets()

	derived := NewSentence(NewCellSet(c, d), 1)
	assert.True(t, e.hasSentence(derived))
}

func TestEqualSizePairsAreSkipped(t *testing.T) {
	e, _ := NewEngine(8, 8)
	a, b, c, d := Cell{0, 0}, Cell{0, 1}, Cell{0, 2}, Cell{0, 3}

	e.knowledge = append(e.knowledge,
		NewSentence(NewCellSet(a, b), 1),
		NewSentence(NewCellSet(c, d), 1),
	)
	e.deriveSubsets()

	assert.Equal(t, 2, e.SentenceCount())
	assert.Empty(t, e.Mines())
}

// A fact recorded while the derivation pass is still running must not
// leak back in through a sentence derived from the stale snapshot.
func TestDerivedSentencesExcludeProvenCells(t *testing.T) {
	e, _ := NewEngine(8, 8)
	a, b := Cell{0, 0}, Cell{0, 1}
	x, y, z := Cell{1, 0}, Cell{1, 1}, Cell{1, 2}

	// pair one proves x is a mine; pair two's difference {x,y,z}=2
	// must shed the freshly proven x and land as {y,z}=1
	e.knowledge = append(e.knowledge,
		NewSentence(NewCellSet(a, b, x), 2),
		NewSentence(NewCellSet(a, b), 1),
		NewSentence(NewCellSet(a, b, x, y, z), 3),
	)
	e.deriveSubsets()
	for e.extractFacts() {
	}

	assert.True(t, e.Mines().Has(x))
	assert.True(t, e.hasSentence(NewSentence(NewCellSet(y, z), 1)))
	for _, s := range e.knowledge {
		for c := range s.cells {
			assert.False(t, e.mines.Has(c), "sentence %s references proven mine %s", s, c)
			assert.False(t, e.safes.Has(c), "sentence %s references proven safe %s", s, c)
		}
	}
}

func TestSentencesNeverReferenceProvenCells(t *testing.T) {
	e, _ := NewEngine(3, 3)
	probes := []struct {
		cell  Cell
		count int
	}{
		{Cell{2, 2}, 0},
		{Cell{1, 1}, 1},
		{Cell{2, 0}, 0},
		{Cell{0, 2}, 0},
		{Cell{1, 0}, 1},
		{Cell{0, 1}, 1},
	}
	for _, p := range probes {
		assert.NoError(t, e.Ingest(p.cell, p.count))
		for _, s := range e.knowledge {
			for c := range s.cells {
				assert.False(t, e.mines.Has(c), "sentence %s references proven mine %s", s, c)
				assert.False(t, e.safes.Has(c), "sentence %s references proven safe %s", s, c)
			}
		}
	}
}

func TestNoDuplicateSentences(t *testing.T) {
	e, _ := NewEngine(8, 8)
	assert.NoError(t, e.Ingest(Cell{4, 4}, 2))
	before := e.SentenceCount()

	assert.NoError(t, e.Ingest(Cell{4, 4}, 2))
	assert.Equal(t, before, e.SentenceCount())
}

func TestMinesAndSafesStayDisjoint(t *testing.T) {
	e, _ := NewEngine(3, 3)
	probes := []struct {
		cell  Cell
		count int
	}{
		{Cell{2, 2}, 0},
		{Cell{2, 1}, 0},
		{Cell{1, 2}, 0},
		{Cell{1, 1}, 1},
		{Cell{2, 0}, 0},
		{Cell{0, 2}, 0},
	}
	prevSafes, prevMines, prevMoves := 0, 0, 0
	for _, p := range probes {
		assert.NoError(t, e.Ingest(p.cell, p.count))

		for c := range e.Mines() {
			assert.False(t, e.Safes().Has(c), "%s is both mine and safe", c)
		}

		// monotonicity: the fact sets never shrink
		assert.GreaterOrEqual(t, len(e.Safes()), prevSafes)
		assert.GreaterOrEqual(t, len(e.Mines()), prevMines)
		assert.GreaterOrEqual(t, len(e.MovesMade()), prevMoves)
		prevSafes, prevMines, prevMoves = len(e.Safes()), len(e.Mines()), len(e.MovesMade())
	}
}

// A 3x3 board with a single mine at 0:0 is fully solvable from probe
// results alone: opening 2:2 with a zero count clears the middle, and
// the remaining counts pin the mine down.
func TestSolvesThreeByThree(t *testing.T) {
	e, _ := NewEngine(3, 3)

	assert.NoError(t, e.Ingest(Cell{2, 2}, 0))
	for _, c := range []Cell{{1, 1}, {1, 2}, {2, 1}} {
		assert.True(t, e.Safes().Has(c), "%s should be safe", c)
	}

	assert.NoError(t, e.Ingest(Cell{1, 1}, 1))
	assert.NoError(t, e.Ingest(Cell{2, 0}, 0))
	assert.NoError(t, e.Ingest(Cell{0, 2}, 0))
	assert.NoError(t, e.Ingest(Cell{1, 0}, 1))
	assert.NoError(t, e.Ingest(Cell{0, 1}, 1))

	assert.True(t, e.Mines().Equal(NewCellSet(Cell{0, 0})))
	assert.Equal(t, 8, len(e.Safes()))
	assert.False(t, e.Safes().Has(Cell{0, 0}))
}

func TestPickSafeMoveReserves(t *testing.T) {
	e, _ := NewEngine(8, 8)
	e.RecordSafe(Cell{1, 1})

	c, ok := e.PickSafeMove()
	assert.True(t, ok)
	assert.Equal(t, Cell{1, 1}, c)
	assert.True(t, e.MovesMade().Has(c))

	_, ok = e.PickSafeMove()
	assert.False(t, ok)
}

func TestPickSafeMoveSkipsPlayedCells(t *testing.T) {
	e, _ := NewEngine(8, 8)
	assert.NoError(t, e.Ingest(Cell{0, 0}, 0))

	seen := NewCellSet()
	for {
		c, ok := e.PickSafeMove()
		if !ok {
			break
		}
		assert.False(t, seen.Has(c))
		seen.Add(c)
	}
	// 0:0 was played by Ingest; its three neighbors remained
	assert.Equal(t, 3, len(seen))
}

func TestPickFallbackMove(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	e, _ := NewEngine(2, 2)
	e.RecordHazard(Cell{0, 0})

	picked := NewCellSet()
	for range 3 {
		c, ok := e.PickFallbackMove(rnd)
		assert.True(t, ok)
		assert.NotEqual(t, Cell{0, 0}, c)
		assert.False(t, picked.Has(c))
		picked.Add(c)
	}

	_, ok := e.PickFallbackMove(rnd)
	assert.False(t, ok, "board should be exhausted")
}

func TestSentenceCellsOnlyShrink(t *testing.T) {
	e, _ := NewEngine(4, 4)
	assert.NoError(t, e.Ingest(Cell{1, 1}, 2))

	sizes := make(map[*Sentence]int)
	for _, s := range e.knowledge {
		sizes[s] = len(s.cells)
	}

	assert.NoError(t, e.Ingest(Cell{0, 0}, 1))
	assert.NoError(t, e.Ingest(Cell{3, 3}, 1))

	for s, size := range sizes {
		assert.LessOrEqual(t, len(s.cells), size)
	}
}
