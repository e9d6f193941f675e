package main

import "net/http"

func buildHandler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/register", handleRegister)
	mux.HandleFunc("POST /v1/login", handleLogin)
	mux.HandleFunc("POST /v1/logout", handleLogout)

	mux.HandleFunc("GET /v1/status", handleStatus)
	mux.HandleFunc("GET /v1/records", handleGetRecords)
	mux.HandleFunc("GET /v1/myrecords", handleGetOwnRecords)

	mux.HandleFunc("POST /v1/session", handleNewSession)
	mux.HandleFunc("GET /v1/session/{id}", handleGetSession)
	mux.HandleFunc("POST /v1/session/{id}/step", handleStep)
	mux.HandleFunc("POST /v1/session/{id}/solve", handleSolve)

	mux.HandleFunc("/v1/session/{id}/watch", handleWatchWs)

	handler := useMiddleware(mux,
		corsMiddleware,
		authMiddleware,
		loggingMiddleware,
	)

	return handler
}
