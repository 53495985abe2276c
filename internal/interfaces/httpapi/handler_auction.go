package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/clubroyale/auction-league/internal/usecase"
)

func (h *Handler) CloseLot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CloseLot")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.closingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: closing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	lotID := strings.TrimSpace(r.PathValue("lotID"))

	var req closeLotRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	receipt, err := h.closingService.InitiateClose(ctx, lotID, principal.UserID, req.Forced, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "initiate lot close failed", "lot_id", lotID, "forced", req.Forced, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, closeReceiptDTO{
		ActionID:     receipt.ActionID,
		LotID:        receipt.LotID,
		UndoDeadline: receipt.UndoDeadline,
	})
}

func (h *Handler) UndoCloseAction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UndoCloseAction")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.closingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: closing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	actionID := strings.TrimSpace(r.PathValue("actionID"))
	if err := h.closingService.UndoClose(ctx, actionID, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "undo lot close failed", "action_id", actionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "reopened"})
}

func (h *Handler) FinalizeCloseAction(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeCloseAction")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.closingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: closing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	actionID := strings.TrimSpace(r.PathValue("actionID"))
	outcome, err := h.closingService.FinalizeClose(ctx, actionID)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize lot close failed", "action_id", actionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalizeOutcomeDTO{
		LotID:      outcome.LotID,
		Status:     string(outcome.Status),
		WinnerID:   outcome.WinnerID,
		WinningBid: outcome.WinningBid,
	})
}

func (h *Handler) ListUndoableActions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUndoableActions")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	if h.closingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: closing service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	lotID := strings.TrimSpace(r.PathValue("lotID"))
	actions, err := h.closingService.ActiveActions(ctx, lotID)
	if err != nil {
		h.logger.WarnContext(ctx, "list undoable actions failed", "lot_id", lotID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]closeActionDTO, 0, len(actions))
	for _, action := range actions {
		items = append(items, closeActionToDTO(ctx, action))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
