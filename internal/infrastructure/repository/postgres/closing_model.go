package postgres

import (
	"time"

	"github.com/clubroyale/auction-league/internal/domain/closing"
)

type closeActionTableModel struct {
	ID             string  `db:"id"`
	LotID          string  `db:"lot_id"`
	ActionType     string  `db:"action_type"`
	CommissionerID string  `db:"commissioner_id"`
	Reason         string  `db:"reason"`
	SnapStatus     string  `db:"snap_status"`
	SnapCurrentBid int64   `db:"snap_current_bid"`
	SnapBidderID   *string `db:"snap_leading_bidder_id"`

	SnapTimerEndsAt *time.Time `db:"snap_timer_ends_at"`
	IntendedStatus  string     `db:"intended_status"`
	InitiatedAt     time.Time  `db:"initiated_at"`
	UndoDeadline    time.Time  `db:"undo_deadline"`
	Undone          bool       `db:"undone"`
	UndoneBy        *string    `db:"undone_by"`
	UndoneAt        *time.Time `db:"undone_at"`
	FinalizedAt     *time.Time `db:"finalized_at"`
	Outcome         *string    `db:"outcome"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (m closeActionTableModel) toDomain() closing.Action {
	action := closing.Action{
		ID:             m.ID,
		LotID:          m.LotID,
		Type:           m.ActionType,
		CommissionerID: m.CommissionerID,
		Reason:         m.Reason,
		Snapshot: closing.Snapshot{
			Status:          m.SnapStatus,
			CurrentBid:      m.SnapCurrentBid,
			LeadingBidderID: m.SnapBidderID,
			TimerEndsAt:     m.SnapTimerEndsAt,
		},
		IntendedStatus: m.IntendedStatus,
		InitiatedAt:    m.InitiatedAt,
		UndoDeadline:   m.UndoDeadline,
		Undone:         m.Undone,
		UndoneAt:       m.UndoneAt,
		Finalized:      m.FinalizedAt,
	}
	if m.UndoneBy != nil {
		action.UndoneBy = *m.UndoneBy
	}
	if m.Outcome != nil {
		action.Outcome = closing.Outcome(*m.Outcome)
	}
	return action
}
