package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/clubroyale/auction-league/internal/domain/closing"
	"github.com/clubroyale/auction-league/internal/usecase"
)

func decodeJSONBody(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type closeLotRequest struct {
	Forced bool   `json:"forced"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type ingestResultsRequest struct {
	Results []ingestResultRecord `json:"results" validate:"required,min=1,max=200,dive"`
}

type ingestResultRecord struct {
	LeagueID    string    `json:"league_id" validate:"required"`
	MatchID     string    `json:"match_id" validate:"required"`
	Season      string    `json:"season" validate:"omitempty,max=20"`
	HomeClubRef string    `json:"home_club_ref" validate:"required"`
	AwayClubRef string    `json:"away_club_ref" validate:"required"`
	HomeGoals   int       `json:"home_goals" validate:"min=0"`
	AwayGoals   int       `json:"away_goals" validate:"min=0"`
	KickedOffAt time.Time `json:"kicked_off_at" validate:"required"`
	Status      string    `json:"status" validate:"omitempty,max=20"`
}

type settleJobRequest struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=500"`
}

type closeReceiptDTO struct {
	ActionID     string    `json:"action_id"`
	LotID        string    `json:"lot_id"`
	UndoDeadline time.Time `json:"undo_deadline"`
}

type finalizeOutcomeDTO struct {
	LotID      string  `json:"lot_id"`
	Status     string  `json:"status"`
	WinnerID   *string `json:"winner_id,omitempty"`
	WinningBid int64   `json:"winning_bid"`
}

type closeActionDTO struct {
	ActionID       string    `json:"action_id"`
	LotID          string    `json:"lot_id"`
	CommissionerID string    `json:"commissioner_id"`
	Reason         string    `json:"reason,omitempty"`
	InitiatedAt    time.Time `json:"initiated_at"`
	UndoDeadline   time.Time `json:"undo_deadline"`
}

type ingestResultOutcomeDTO struct {
	LeagueID string `json:"league_id"`
	MatchID  string `json:"match_id"`
	Created  bool   `json:"created"`
}

type ingestResultsResponseDTO struct {
	Accepted   int                      `json:"accepted"`
	Duplicates int                      `json:"duplicates"`
	Results    []ingestResultOutcomeDTO `json:"results"`
}

type settleJobResponseDTO struct {
	Processed int                 `json:"processed"`
	Errors    []settleJobErrorDTO `json:"errors,omitempty"`
}

type settleJobErrorDTO struct {
	LeagueID string `json:"league_id"`
	MatchID  string `json:"match_id"`
	Message  string `json:"message"`
}

type sweepJobResponseDTO struct {
	Finalized int `json:"finalized"`
}

type standingRowDTO struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalPoints int    `json:"total_points"`
	Budget      int64  `json:"budget"`
}

type matchHistoryRowDTO struct {
	MatchID     string    `json:"match_id"`
	Matchday    int       `json:"matchday"`
	Stage       string    `json:"stage"`
	Points      int       `json:"points"`
	HomeClubRef string    `json:"home_club_ref"`
	AwayClubRef string    `json:"away_club_ref"`
	HomeGoals   int       `json:"home_goals"`
	AwayGoals   int       `json:"away_goals"`
	KickedOffAt time.Time `json:"kicked_off_at"`
}

func closeActionToDTO(ctx context.Context, action closing.Action) closeActionDTO {
	_, span := startSpan(ctx, "httpapi.closeActionToDTO")
	defer span.End()

	return closeActionDTO{
		ActionID:       action.ID,
		LotID:          action.LotID,
		CommissionerID: action.CommissionerID,
		Reason:         action.Reason,
		InitiatedAt:    action.InitiatedAt,
		UndoDeadline:   action.UndoDeadline,
	}
}

func standingRowToDTO(row usecase.StandingRow) standingRowDTO {
	return standingRowDTO{
		Rank:        row.Rank,
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		TotalPoints: row.TotalPoints,
		Budget:      row.Budget,
	}
}

func matchHistoryRowToDTO(row usecase.MatchHistoryRow) matchHistoryRowDTO {
	return matchHistoryRowDTO{
		MatchID:     row.MatchID,
		Matchday:    row.Matchday,
		Stage:       row.Stage,
		Points:      row.Points,
		HomeClubRef: row.HomeExtRef,
		AwayClubRef: row.AwayExtRef,
		HomeGoals:   row.HomeGoals,
		AwayGoals:   row.AwayGoals,
		KickedOffAt: row.KickedOffAt,
	}
}
