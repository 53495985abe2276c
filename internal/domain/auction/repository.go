package auction

import (
	"context"
	"time"
)

// Repository persists lots. Status transitions are conditional single-row
// writes: each mutating method re-checks its precondition at write time and
// reports false when the live row no longer satisfies it.
type Repository interface {
	GetByID(ctx context.Context, lotID string) (Lot, bool, error)
	ListByAuction(ctx context.Context, auctionID string) ([]Lot, error)

	// BeginClose moves a lot into pre_closed iff its live status is still
	// pending or open and, unless forced, no timer is running past now.
	BeginClose(ctx context.Context, lotID string, pc PreClose, forced bool, now time.Time) (bool, error)

	// Reopen reverses a pre-close, restoring the snapshot status and timer.
	// Only valid while the lot is still pre_closed.
	Reopen(ctx context.Context, lotID string, status Status, timerEndsAt *time.Time) (bool, error)

	// FinalizeClose settles a pre_closed lot into sold or unsold and clears
	// the pre-close bookkeeping.
	FinalizeClose(ctx context.Context, lotID string, status Status, winnerID *string, winningBid int64) (bool, error)

	// ListExpiredPreClosed returns lots whose undo deadline already passed,
	// for the recovery sweep.
	ListExpiredPreClosed(ctx context.Context, now time.Time) ([]Lot, error)
}

// BidLog exposes the bid engine's bid timestamps. The closing state machine
// only reads it, for the last-bid-wins undo guard.
type BidLog interface {
	LastBidAt(ctx context.Context, lotID string) (time.Time, bool, error)
}
