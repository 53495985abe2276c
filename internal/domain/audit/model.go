package audit

import "time"

// ActorSystem is the sentinel actor recorded for automatic transitions.
const ActorSystem = "system"

const (
	ActionLotPreCloseInitiated = "lot_pre_close_initiated"
	ActionLotCloseUndone       = "lot_close_undone"
	ActionLotCloseFinalized    = "lot_close_finalized"
)

// Entry is one append-only audit record of a commissioner or system action.
type Entry struct {
	ID         string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	Detail     map[string]string
	CreatedAt  time.Time
}
