package auction

import "time"

// Status is the lifecycle state of a lot. PENDING and OPEN transitions are
// driven by the bid engine; everything from PRE_CLOSED onwards belongs to the
// closing state machine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusOpen      Status = "open"
	StatusPreClosed Status = "pre_closed"
	StatusSold      Status = "sold"
	StatusUnsold    Status = "unsold"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusUnsold
}

// Lot is one auctionable club inside an auction. The PreClose fields are
// populated exactly while Status == StatusPreClosed.
type Lot struct {
	ID              string
	AuctionID       string
	LeagueID        string
	ClubID          string
	Status          Status
	CurrentBid      int64
	LeadingBidderID *string
	TimerEndsAt     *time.Time

	PreClose *PreClose

	WinnerID   *string
	WinningBid int64
}

// PreClose is the bookkeeping attached to a lot while a close is in flight.
type PreClose struct {
	InitiatedAt    time.Time
	CommissionerID string
	UndoDeadline   time.Time
	Reason         string
	ActionID       string
}
