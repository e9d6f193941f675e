package main

import (
	"errors"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/schema"
	"github.com/jackc/pgx/v5"

	"github.com/sweepkit/sweepkit/internal/agent"
	"github.com/sweepkit/sweepkit/internal/board"
	"github.com/sweepkit/sweepkit/internal/knowledge"
)

var dec = schema.NewDecoder()

func init() {
	dec.IgnoreUnknownKeys(true)
}

type NewSessionParams struct {
	Height    int    `schema:"height,required"`
	Width     int    `schema:"width,required"`
	MineCount int    `schema:"mine_count,required"`
	Seed      uint64 `schema:"seed"`
}

func handleNewSession(w http.ResponseWriter, r *http.Request) {
	var params NewSessionParams
	if err := dec.Decode(&params, r.URL.Query()); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	boardRnd := newRand()
	if params.Seed != 0 {
		boardRnd = rand.New(rand.NewPCG(params.Seed, params.Seed))
	}
	b, err := board.New(params.Height, params.Width, params.MineCount, boardRnd)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(err.Error()))
		return
	}

	state := &SolveState{Board: b, Status: agent.StatusPlaying}

	var playerId *int
	if claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims); ok {
		log.Debug("creating session for player ", claims.Username)
		playerId = &claims.PlayerId
		refreshPlayerCookies(w, *claims)
	} else {
		log.Debug("creating anonymous session")
	}
	session, err := pg.CreateSession(r.Context(), playerId, state)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}

func fetchSession(w http.ResponseWriter, r *http.Request) (*SolveSession, bool) {
	sessionId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil, false
	}
	session, err := pg.GetSession(r.Context(), sessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return nil, false
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return nil, false
	}
	return session, true
}

func handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := fetchSession(w, r)
	if !ok {
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}

func handleStep(w http.ResponseWriter, r *http.Request) {
	session, ok := fetchSession(w, r)
	if !ok {
		return
	}
	if session.State.Finished() {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("session already finished"))
		return
	}
	a, err := session.State.Agent()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error("unable to resume session: ", err)
		return
	}
	var ce knowledge.ContractError
	if _, err := a.Step(); errors.As(err, &ce) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(err.Error()))
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	session.State.Capture(a)
	if session.State.Finished() {
		session.EndedAt = time.Now().UTC()
	}
	if err := pg.UpdateSession(r.Context(), session); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}

func handleSolve(w http.ResponseWriter, r *http.Request) {
	session, ok := fetchSession(w, r)
	if !ok {
		return
	}
	if session.State.Finished() {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("session already finished"))
		return
	}
	a, err := session.State.Agent()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error("unable to resume session: ", err)
		return
	}
	status, err := a.Run(nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	log.WithFields(map[string]any{
		"session": session.SessionId,
		"status":  status,
		"moves":   len(a.Moves()),
	}).Info("session solved")

	session.State.Capture(a)
	session.EndedAt = time.Now().UTC()
	if err := pg.UpdateSession(r.Context(), session); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if _, err := sendJSON(w, session); err != nil {
		log.Error(err)
	}
}
