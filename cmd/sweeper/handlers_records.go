package main

import (
	"net/http"
	"strconv"
)

func handleGetRecords(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	options := []SolveRecordsOption{}
	if query.Has("username") {
		options = append(options, SolveRecordsForPlayer(query.Get("username")))
	}
	if query.Has("height") && query.Has("width") {
		height, err := strconv.Atoi(query.Get("height"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		width, err := strconv.Atoi(query.Get("width"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		options = append(options, SolveRecordsForBoard(height, width))
	}
	records, err := getSolveRecords(r.Context(), options...)
	if err != nil {
		log.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if _, err := sendJSON(w, records); err != nil {
		log.Error(err)
	}
}

func handleGetOwnRecords(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(ctxPlayerClaims).(*PlayerClaims)
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	records, err := getSolveRecords(
		r.Context(), SolveRecordsForPlayer(claims.Username),
	)
	if err != nil {
		log.Error(err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if _, err := sendJSON(w, records); err != nil {
		log.Error(err)
	}
}
