package knowledge

import "fmt"

/*
A Sentence is one logical statement about the board: exactly `count` of
the cells in `cells` conceal a mine. Sentences only ever shrink; once a
cell is proven safe or mined it is resolved out of every sentence that
mentions it, so 0 <= count <= len(cells) holds whenever the facts fed
into the engine are consistent.
*/
type Sentence struct {
	cells CellSet
	count int
}

func NewSentence(cells CellSet, count int) *Sentence {
	return &Sentence{cells: cells.Clone(), count: count}
}

func (s *Sentence) Clone() *Sentence {
	return NewSentence(s.cells, s.count)
}

func (s *Sentence) Count() int {
	return s.count
}

func (s *Sentence) Cells() CellSet {
	return s.cells.Clone()
}

// Empty reports whether the sentence has resolved away completely and
// carries no information.
func (s *Sentence) Empty() bool {
	return len(s.cells) == 0
}

func (s *Sentence) Equal(other *Sentence) bool {
	return s.count == other.count && s.cells.Equal(other.cells)
}

// KnownHazards returns every cell of the sentence when they must all be
// mines (count equals set size), otherwise an empty set.
func (s *Sentence) KnownHazards() CellSet {
	if len(s.cells) > 0 && len(s.cells) == s.count {
		return s.cells.Clone()
	}
	return NewCellSet()
}

// KnownSafes returns every cell of the sentence when none of them can
// be a mine (count is zero), otherwise an empty set.
func (s *Sentence) KnownSafes() CellSet {
	if s.count == 0 {
		return s.cells.Clone()
	}
	return NewCellSet()
}

// ResolveHazard removes a cell proven to be a mine, absorbing it into
// the count. No-op when the cell is not part of the sentence.
func (s *Sentence) ResolveHazard(c Cell) {
	if s.cells.Has(c) {
		s.cells.Delete(c)
		s.count--
	}
}

// ResolveSafe removes a cell proven safe. The count is untouched: a
// safe cell never contributed to it.
func (s *Sentence) ResolveSafe(c Cell) {
	s.cells.Delete(c)
}

func (s *Sentence) String() string {
	return fmt.Sprintf("%s = %d", s.cells, s.count)
}
