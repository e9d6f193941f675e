package knowledge

import (
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

/*
Engine accumulates everything that can be proven about a board from the
probe results fed to it: cells confirmed to be mines, cells confirmed
safe, the moves already committed, and the live list of sentences that
is still being whittled down.

An Engine is owned by a single solving session and is not safe for
concurrent use. Every call completes before returning; there are no
suspension points inside the engine.
*/
type Engine struct {
	height, width int
	movesMade     CellSet
	safes         CellSet
	mines         CellSet
	knowledge     []*Sentence
}

func NewEngine(height, width int) (*Engine, error) {
	if height <= 0 || width <= 0 {
		return nil, contractErrorf("board dimensions must be positive, got %dx%d", height, width)
	}
	return &Engine{
		height:    height,
		width:     width,
		movesMade: NewCellSet(),
		safes:     NewCellSet(),
		mines:     NewCellSet(),
	}, nil
}

func (e *Engine) Height() int { return e.height }
func (e *Engine) Width() int  { return e.width }

// Mines returns a copy of the set of confirmed mine cells.
func (e *Engine) Mines() CellSet {
	return e.mines.Clone()
}

// Safes returns a copy of the set of confirmed safe cells.
func (e *Engine) Safes() CellSet {
	return e.safes.Clone()
}

// MovesMade returns a copy of the set of committed moves.
func (e *Engine) MovesMade() CellSet {
	return e.movesMade.Clone()
}

// SentenceCount reports how many sentences are currently held, vacuous
// ones excluded.
func (e *Engine) SentenceCount() (n int) {
	for _, s := range e.knowledge {
		if !s.Empty() {
			n++
		}
	}
	return
}

// RecordHazard registers a confirmed mine and resolves it out of every
// sentence. Idempotent.
func (e *Engine) RecordHazard(c Cell) {
	e.mines.Add(c)
	for _, s := range e.knowledge {
		s.ResolveHazard(c)
	}
}

// RecordSafe registers a confirmed safe cell and resolves it out of
// every sentence. Idempotent.
func (e *Engine) RecordSafe(c Cell) {
	e.safes.Add(c)
	for _, s := range e.knowledge {
		s.ResolveSafe(c)
	}
}

func (e *Engine) inBounds(c Cell) bool {
	return 0 <= c.Row && c.Row < e.height && 0 <= c.Col && c.Col < e.width
}

// neighbors enumerates the in-bounds cells adjacent to c, c excluded.
func (e *Engine) neighbors(c Cell) []Cell {
	cells := make([]Cell, 0, 8)
	for row := c.Row - 1; row <= c.Row+1; row++ {
		for col := c.Col - 1; col <= c.Col+1; col++ {
			n := Cell{row, col}
			if n != c && e.inBounds(n) {
				cells = append(cells, n)
			}
		}
	}
	return cells
}

/*
neighborConstraint turns a raw probe result into a sentence over the
still-unresolved neighbors of the probed cell. Neighbors already known
to be mines are dropped and deducted from the count (the board reported
them, but the sentence must describe only open questions); neighbors
already known safe are dropped outright.
*/
func (e *Engine) neighborConstraint(c Cell, count int) (CellSet, int) {
	cells := NewCellSet()
	for _, n := range e.neighbors(c) {
		switch {
		case e.mines.Has(n):
			count--
		case e.safes.Has(n):
			// contributes nothing
		default:
			cells.Add(n)
		}
	}
	return cells, count
}

/*
Ingest folds one probe result into the knowledge base and runs the
inference loop to its fixed point. The caller guarantees that cell was
safe to probe and that count is the true number of mines among its
in-bounds neighbors; anything else is rejected with a [ContractError].
*/
func (e *Engine) Ingest(c Cell, count int) error {
	if !e.inBounds(c) {
		return contractErrorf("cell %s is outside the %dx%d board", c, e.height, e.width)
	}
	if count < 0 {
		return contractErrorf("negative mine count %d for cell %s", count, c)
	}
	if n := len(e.neighbors(c)); count > n {
		return contractErrorf("mine count %d for cell %s exceeds its %d neighbors", count, c, n)
	}

	e.movesMade.Add(c)
	e.RecordSafe(c)

	cells, adjusted := e.neighborConstraint(c, count)
	sentence := NewSentence(cells, adjusted)
	if !sentence.Empty() && !e.hasSentence(sentence) {
		Log.Debugf("new sentence %s", sentence)
		e.knowledge = append(e.knowledge, sentence)
	}

	for e.extractFacts() {
	}
	e.deriveSubsets()
	for e.extractFacts() {
	}
	return nil
}

func (e *Engine) hasSentence(sentence *Sentence) bool {
	for _, s := range e.knowledge {
		if s.Equal(sentence) {
			return true
		}
	}
	return false
}

/*
extractFacts performs one scan over all sentences, collecting every
cell that some sentence now pins down as a mine or as safe, and records
each fact. Recording mutates every sentence, which can unlock further
facts on the next scan; the caller loops until a scan reports no
progress. Sentences that have resolved away completely are pruned.
*/
func (e *Engine) extractFacts() bool {
	hazards := NewCellSet()
	safes := NewCellSet()
	for _, s := range e.knowledge {
		for c := range s.KnownHazards() {
			if !e.mines.Has(c) {
				hazards.Add(c)
			}
		}
		for c := range s.KnownSafes() {
			if !e.safes.Has(c) {
				safes.Add(c)
			}
		}
	}
	for c := range hazards {
		e.RecordHazard(c)
	}
	for c := range safes {
		e.RecordSafe(c)
	}

	live := e.knowledge[:0]
	for _, s := range e.knowledge {
		if !s.Empty() {
			live = append(live, s)
		}
	}
	e.knowledge = live

	return len(hazards) > 0 || len(safes) > 0
}

/*
deriveSubsets applies constraint subtraction to every unordered pair of
sentences: when one sentence's cells are contained in another's, the
cells unique to the bigger one must account for exactly the difference
of the counts. The pass runs over a snapshot taken up front, so
sentences appended or mutated mid-pass are never compared within the
same pass and the pass terminates.

A direct fact recorded mid-pass resolves every live sentence, but the
snapshot the pass iterates does not see it. The difference of a later
pair may therefore still mention an already-proven cell, so it is
filtered against the live fact sets before use, the same adjustment
[Engine.neighborConstraint] applies to raw probes. Sentences in the
knowledge base never reference a proven cell.

A single-cell difference is a direct fact and is recorded immediately;
anything larger becomes a new sentence, subject to the same duplicate
suppression as freshly ingested ones.

Pairs with equal-size cell sets are skipped: equal-size sets can only
subset each other by being identical, and subtracting a sentence from
itself derives nothing.
*/
func (e *Engine) deriveSubsets() {
	snapshot := make([]*Sentence, 0, len(e.knowledge))
	for _, s := range e.knowledge {
		if !s.Empty() {
			snapshot = append(snapshot, s.Clone())
		}
	}

	for i := 0; i < len(snapshot); i++ {
		for j := i + 1; j < len(snapshot); j++ {
			big, small := snapshot[i], snapshot[j]
			if len(big.cells) == len(small.cells) {
				continue
			}
			if len(big.cells) < len(small.cells) {
				big, small = small, big
			}
			if !small.cells.SubsetOf(big.cells) {
				continue
			}

			extra := big.cells.Difference(small.cells)
			diff := big.count - small.count

			for c := range extra {
				switch {
				case e.mines.Has(c):
					extra.Delete(c)
					diff--
				case e.safes.Has(c):
					extra.Delete(c)
				}
			}
			if len(extra) == 0 {
				continue
			}

			if len(extra) == 1 {
				c := extra.Cells()[0]
				switch diff {
				case 0:
					Log.Debugf("derived safe %s from %s - %s", c, big, small)
					e.RecordSafe(c)
				case 1:
					Log.Debugf("derived mine %s from %s - %s", c, big, small)
					e.RecordHazard(c)
				}
				continue
			}

			derived := NewSentence(extra, diff)
			if !e.hasSentence(derived) {
				Log.Debugf("derived sentence %s from %s - %s", derived, big, small)
				e.knowledge = append(e.knowledge, derived)
			}
		}
	}
}

/*
PickSafeMove reserves and returns a cell proven safe that has not been
played yet. The returned cell is committed into the move set; knowledge
is otherwise untouched. The second return is false when no known-safe
move exists, which is an ordinary condition, not a failure.
*/
func (e *Engine) PickSafeMove() (Cell, bool) {
	for c := range e.safes {
		if !e.movesMade.Has(c) {
			e.movesMade.Add(c)
			return c, true
		}
	}
	return Cell{}, false
}

/*
PickFallbackMove reserves and returns a uniformly random cell that has
not been played and is not a confirmed mine. The second return is false
when no such cell remains, meaning the board is exhausted.
*/
func (e *Engine) PickFallbackMove(rnd *rand.Rand) (Cell, bool) {
	candidates := make([]Cell, 0, e.height*e.width)
	for row := range e.height {
		for col := range e.width {
			c := Cell{row, col}
			if !e.mines.Has(c) && !e.movesMade.Has(c) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return Cell{}, false
	}
	c := candidates[rnd.IntN(len(candidates))]
	e.movesMade.Add(c)
	return c, true
}
