package postgres

import (
	"time"

	"github.com/clubroyale/auction-league/internal/domain/auction"
)

type lotTableModel struct {
	ID              string     `db:"id"`
	AuctionID       string     `db:"auction_id"`
	LeagueID        string     `db:"league_id"`
	ClubID          string     `db:"club_id"`
	Status          string     `db:"status"`
	CurrentBid      int64      `db:"current_bid"`
	LeadingBidderID *string    `db:"leading_bidder_id"`
	TimerEndsAt     *time.Time `db:"timer_ends_at"`

	PreInitiatedAt    *time.Time `db:"pre_initiated_at"`
	PreCommissionerID *string    `db:"pre_commissioner_id"`
	PreUndoDeadline   *time.Time `db:"pre_undo_deadline"`
	PreReason         *string    `db:"pre_reason"`
	PreActionID       *string    `db:"pre_action_id"`

	WinnerID   *string   `db:"winner_id"`
	WinningBid int64     `db:"winning_bid"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m lotTableModel) toDomain() auction.Lot {
	lot := auction.Lot{
		ID:              m.ID,
		AuctionID:       m.AuctionID,
		LeagueID:        m.LeagueID,
		ClubID:          m.ClubID,
		Status:          auction.Status(m.Status),
		CurrentBid:      m.CurrentBid,
		LeadingBidderID: m.LeadingBidderID,
		TimerEndsAt:     m.TimerEndsAt,
		WinnerID:        m.WinnerID,
		WinningBid:      m.WinningBid,
	}
	if m.PreInitiatedAt != nil && m.PreUndoDeadline != nil {
		lot.PreClose = &auction.PreClose{
			InitiatedAt:  *m.PreInitiatedAt,
			UndoDeadline: *m.PreUndoDeadline,
		}
		if m.PreCommissionerID != nil {
			lot.PreClose.CommissionerID = *m.PreCommissionerID
		}
		if m.PreReason != nil {
			lot.PreClose.Reason = *m.PreReason
		}
		if m.PreActionID != nil {
			lot.PreClose.ActionID = *m.PreActionID
		}
	}
	return lot
}
