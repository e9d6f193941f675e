package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"

	"github.com/sweepkit/sweepkit/internal/agent"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		log.Debug("\tws origin: ", r.Host)
		return true
	},
}

type watchFrame struct {
	Move   agent.Move   `json:"move"`
	Status agent.Status `json:"status"`
	Mines  int          `json:"mines"`
	Safes  int          `json:"safes"`
}

// handleWatchWs streams the solve of a session move by move: one JSON
// frame per committed probe, then a final session payload.
func handleWatchWs(w http.ResponseWriter, r *http.Request) {
	sessionId, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	session, err := pg.GetSession(context.Background(), sessionId)
	if errors.Is(err, pgx.ErrNoRows) {
		w.WriteHeader(http.StatusNotFound)
		return
	} else if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error(err)
		return
	}
	if session.State.Finished() {
		w.WriteHeader(http.StatusConflict)
		return
	}
	a, err := session.State.Agent()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		log.Error("unable to resume session: ", err)
		return
	}
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("upgrade: ", err)
		return
	}
	defer c.Close()

	var writeErr error
	status, err := a.Run(func(m agent.Move) {
		if writeErr != nil {
			return
		}
		writeErr = c.WriteJSON(watchFrame{
			Move:   m,
			Status: a.Status(),
			Mines:  len(a.Engine().Mines()),
			Safes:  len(a.Engine().Safes()),
		})
	})
	if err != nil {
		log.Error("solve: ", err)
		return
	}
	if writeErr != nil {
		log.Warn("write: ", writeErr)
	}
	log.WithFields(map[string]any{
		"session": session.SessionId,
		"status":  status,
		"moves":   len(a.Moves()),
	}).Info("session solved over ws")

	session.State.Capture(a)
	session.EndedAt = time.Now().UTC()
	if err := pg.UpdateSession(context.Background(), session); err != nil {
		log.Error(err)
		return
	}
	if err := c.WriteJSON(session); err != nil {
		log.Warn("write: ", err)
	}
}
