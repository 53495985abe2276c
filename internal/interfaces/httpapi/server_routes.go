package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/standings", handler.ListLeagueStandings)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/users/{userID}/history", handler.ListUserMatchHistory)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/auction/lots/{lotID}/close", RequireAuth(verifier, http.HandlerFunc(handler.CloseLot)))
	mux.Handle("POST /v1/auction/actions/{actionID}/undo", RequireAuth(verifier, http.HandlerFunc(handler.UndoCloseAction)))
	mux.Handle("POST /v1/auction/actions/{actionID}/finalize", RequireAuth(verifier, http.HandlerFunc(handler.FinalizeCloseAction)))
	mux.Handle("GET /v1/auction/lots/{lotID}/undo-actions", RequireAuth(verifier, http.HandlerFunc(handler.ListUndoableActions)))
}

// The ingestion endpoint sits with the job routes: the score feed
// authenticates with the shared internal token, not a user session.
func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/ingestion/results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestMatchResults)))
	mux.Handle("POST /v1/internal/jobs/settle", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSettleJob)))
	mux.Handle("POST /v1/internal/jobs/sweep-closes", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSweepClosesJob)))
}
