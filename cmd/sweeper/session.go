package main

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"strconv"
	"time"

	"github.com/sweepkit/sweepkit/internal/agent"
	"github.com/sweepkit/sweepkit/internal/board"
)

// SolveState is everything a session needs to continue: the board is
// the ground truth, the move log rebuilds the engine deterministically
// on resume. Engine internals are never persisted.
type SolveState struct {
	Board  *board.Board
	Moves  []agent.Move
	Status agent.Status
}

func DecodeSolveState(buf []byte) (*SolveState, error) {
	var state SolveState
	err := gob.NewDecoder(bytes.NewBuffer(buf)).Decode(&state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s SolveState) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(s)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Agent rebuilds the playing agent by replaying the move log.
func (s *SolveState) Agent() (*agent.Agent, error) {
	return agent.Resume(s.Board, s.Moves, newRand())
}

// Capture refreshes the state from a played agent.
func (s *SolveState) Capture(a *agent.Agent) {
	s.Board = a.Board()
	s.Moves = a.Moves()
	s.Status = a.Status()
}

func (s SolveState) Finished() bool {
	return s.Status != agent.StatusPlaying
}

type SolveSession struct {
	SessionId int
	PlayerId  *int
	State     SolveState
	StartedAt time.Time
	EndedAt   time.Time
}

type SolveSessionJSON struct {
	SessionId string       `json:"session_id"`
	Height    int          `json:"height"`
	Width     int          `json:"width"`
	MineCount int          `json:"mine_count"`
	Status    agent.Status `json:"status"`
	Moves     []agent.Move `json:"moves"`
	StartedAt int64        `json:"started_at"`
	EndedAt   *int64       `json:"ended_at,omitempty"`
}

func (s SolveSession) MarshalJSON() ([]byte, error) {
	var endedAt *int64
	if !s.EndedAt.IsZero() {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}
	return json.Marshal(SolveSessionJSON{
		SessionId: strconv.Itoa(s.SessionId),
		Height:    s.State.Board.Height,
		Width:     s.State.Board.Width,
		MineCount: s.State.Board.MineCount(),
		Status:    s.State.Status,
		Moves:     s.State.Moves,
		StartedAt: s.StartedAt.UnixMilli(),
		EndedAt:   endedAt,
	})
}
