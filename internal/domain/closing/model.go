package closing

import "time"

const ActionTypeLotClose = "lot_close"

// Outcome recorded on a finalized action.
type Outcome string

const (
	OutcomeSold   Outcome = "sold"
	OutcomeUnsold Outcome = "unsold"
)

// Snapshot captures the lot fields as they were when the close was
// initiated. Only TimerEndsAt is restored on undo; the rest is audit trail.
type Snapshot struct {
	Status          string
	CurrentBid      int64
	LeadingBidderID *string
	TimerEndsAt     *time.Time
}

// Action is one closing attempt against a lot. Actions are never deleted;
// undone or finalized ones remain as the audit trail of the auction.
type Action struct {
	ID             string
	LotID          string
	Type           string
	CommissionerID string
	Reason         string
	Snapshot       Snapshot
	IntendedStatus string
	InitiatedAt    time.Time
	UndoDeadline   time.Time

	Undone    bool
	UndoneBy  string
	UndoneAt  *time.Time
	Finalized *time.Time
	Outcome   Outcome
}

// Active reports whether the action can still be undone at now.
func (a Action) Active(now time.Time) bool {
	return !a.Undone && a.Finalized == nil && now.Before(a.UndoDeadline)
}
