package httpapi

import (
	"fmt"
	"net/http"

	"github.com/clubroyale/auction-league/internal/usecase"
)

func (h *Handler) RunSettleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleJob")
	defer span.End()

	if h.settlementService == nil {
		writeError(ctx, w, fmt.Errorf("%w: settlement service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req settleJobRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.settlementService.ProcessPending(ctx, req.Limit)
	if err != nil {
		h.logger.WarnContext(ctx, "run settle job failed", "limit", req.Limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	resp := settleJobResponseDTO{Processed: result.Processed}
	for _, batchErr := range result.Errors {
		resp.Errors = append(resp.Errors, settleJobErrorDTO{
			LeagueID: batchErr.LeagueID,
			MatchID:  batchErr.MatchID,
			Message:  batchErr.Message,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, resp)
}

func (h *Handler) RunSweepClosesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSweepClosesJob")
	defer span.End()

	if h.closingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: closing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	finalized, err := h.closingService.SweepExpired(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sweep closes job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, sweepJobResponseDTO{Finalized: finalized})
}
