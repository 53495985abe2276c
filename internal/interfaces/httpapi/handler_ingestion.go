package httpapi

import (
	"fmt"
	"net/http"

	"github.com/clubroyale/auction-league/internal/usecase"
)

func (h *Handler) IngestMatchResults(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestMatchResults")
	defer span.End()

	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req ingestResultsRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	resp := ingestResultsResponseDTO{Results: make([]ingestResultOutcomeDTO, 0, len(req.Results))}
	for _, record := range req.Results {
		created, err := h.settlementService.IngestResult(ctx, usecase.IngestResultInput{
			LeagueID:    record.LeagueID,
			MatchID:     record.MatchID,
			Season:      record.Season,
			HomeExtRef:  record.HomeClubRef,
			AwayExtRef:  record.AwayClubRef,
			HomeGoals:   record.HomeGoals,
			AwayGoals:   record.AwayGoals,
			KickedOffAt: record.KickedOffAt,
			Status:      record.Status,
		})
		if err != nil {
			h.logger.WarnContext(ctx, "ingest match result failed",
				"league_id", record.LeagueID, "match_id", record.MatchID, "error", err)
			writeError(ctx, w, err)
			return
		}

		if created {
			resp.Accepted++
		} else {
			resp.Duplicates++
		}
		resp.Results = append(resp.Results, ingestResultOutcomeDTO{
			LeagueID: record.LeagueID,
			MatchID:  record.MatchID,
			Created:  created,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, resp)
}
