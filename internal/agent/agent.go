package agent

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/sweepkit/sweepkit/internal/board"
	"github.com/sweepkit/sweepkit/internal/knowledge"
)

var Log = logrus.New()

// ErrFinished is returned by Step once the game has concluded.
var ErrFinished = errors.New("game already finished")

type Strategy string

const (
	// StrategySafe marks a move the engine proved safe before playing.
	StrategySafe Strategy = "safe"
	// StrategyFallback marks a blind move taken for lack of deductions.
	StrategyFallback Strategy = "fallback"
)

type Status string

const (
	StatusPlaying   Status = "playing"
	StatusWon       Status = "won"
	StatusLost      Status = "lost"
	StatusExhausted Status = "exhausted"
)

// Move is one committed probe and what came of it.
type Move struct {
	Cell     knowledge.Cell `json:"cell"`
	Strategy Strategy       `json:"strategy"`
	Count    int            `json:"count"`
	Mine     bool           `json:"mine"`
}

/*
Agent drives one game to its end: it asks the engine for a proven-safe
move, falls back to a random one when no deduction is available, probes
the board, and feeds the revealed count back into the engine. Flags
follow the engine's confirmed mines, so the game is won the moment
every mine has been deduced.
*/
type Agent struct {
	board  *board.Board
	engine *knowledge.Engine
	rnd    *rand.Rand
	moves  []Move
	status Status
}

func New(b *board.Board, rnd *rand.Rand) (*Agent, error) {
	engine, err := knowledge.NewEngine(b.Height, b.Width)
	if err != nil {
		return nil, err
	}
	return &Agent{
		board:  b,
		engine: engine,
		rnd:    rnd,
		status: StatusPlaying,
	}, nil
}

// Resume rebuilds an agent from a persisted board and move log by
// replaying every probe into a fresh engine. The engine is a pure
// function of the probe results, so the rebuilt agent picks up exactly
// where the saved one stopped.
func Resume(b *board.Board, moves []Move, rnd *rand.Rand) (*Agent, error) {
	a, err := New(b, rnd)
	if err != nil {
		return nil, err
	}
	for _, m := range moves {
		if m.Mine {
			a.status = StatusLost
			break
		}
		if err := a.engine.Ingest(m.Cell, m.Count); err != nil {
			return nil, fmt.Errorf("replaying move %s: %w", m.Cell, err)
		}
	}
	a.moves = append(a.moves, moves...)
	if a.status == StatusPlaying {
		a.flagConfirmedMines()
		if a.board.Won() {
			a.status = StatusWon
		}
	}
	return a, nil
}

func (a *Agent) Status() Status {
	return a.status
}

// Moves returns the move log in play order.
func (a *Agent) Moves() []Move {
	return a.moves
}

func (a *Agent) Board() *board.Board {
	return a.board
}

func (a *Agent) Engine() *knowledge.Engine {
	return a.engine
}

func (a *Agent) flagConfirmedMines() {
	for c := range a.engine.Mines() {
		a.board.Flag(c)
	}
}

/*
Step makes a single move. A nil move with a nil error means the board
is exhausted: nothing is left to probe. Calling Step after the game has
concluded returns [ErrFinished].
*/
func (a *Agent) Step() (*Move, error) {
	if a.status != StatusPlaying {
		return nil, ErrFinished
	}

	cell, ok := a.engine.PickSafeMove()
	strategy := StrategySafe
	if !ok {
		cell, ok = a.engine.PickFallbackMove(a.rnd)
		strategy = StrategyFallback
	}
	if !ok {
		a.status = StatusExhausted
		Log.Debug("no moves left to make")
		return nil, nil
	}

	move := Move{Cell: cell, Strategy: strategy}
	if a.board.IsMine(cell) {
		move.Mine = true
		a.status = StatusLost
		Log.WithFields(logrus.Fields{
			"cell": cell.String(), "strategy": strategy,
		}).Debug("probe hit a mine")
	} else {
		move.Count = a.board.NearbyMines(cell)
		if err := a.engine.Ingest(cell, move.Count); err != nil {
			return nil, err
		}
		a.flagConfirmedMines()
		if a.board.Won() {
			a.status = StatusWon
		}
		Log.WithFields(logrus.Fields{
			"cell":     cell.String(),
			"strategy": strategy,
			"count":    move.Count,
			"mines":    len(a.engine.Mines()),
			"safes":    len(a.engine.Safes()),
		}).Debug("probe ok")
	}

	a.moves = append(a.moves, move)
	return &move, nil
}

// Run steps until the game concludes, invoking onMove (when non-nil)
// after every committed move.
func (a *Agent) Run(onMove func(Move)) (Status, error) {
	for a.status == StatusPlaying {
		move, err := a.Step()
		if err != nil {
			return a.status, err
		}
		if move == nil {
			break
		}
		if onMove != nil {
			onMove(*move)
		}
	}
	return a.status, nil
}
