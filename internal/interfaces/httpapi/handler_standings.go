package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/clubroyale/auction-league/internal/usecase"
)

func (h *Handler) ListLeagueStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueStandings")
	defer span.End()

	if h.standingsService == nil {
		writeError(ctx, w, fmt.Errorf("%w: standings service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rows, err := h.standingsService.LeagueStandings(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list league standings failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, standingRowToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListUserMatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUserMatchHistory")
	defer span.End()

	if h.standingsService == nil {
		writeError(ctx, w, fmt.Errorf("%w: standings service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	userID := strings.TrimSpace(r.PathValue("userID"))
	rows, err := h.standingsService.UserMatchHistory(ctx, leagueID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "list user match history failed", "league_id", leagueID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchHistoryRowDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, matchHistoryRowToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
