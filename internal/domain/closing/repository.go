package closing

import (
	"context"
	"time"
)

// Repository persists close actions. MarkUndone and MarkFinalized are
// conditional writes that fail (false) if the action was already undone or
// finalized by a concurrent caller.
type Repository interface {
	Create(ctx context.Context, action Action) error
	GetByID(ctx context.Context, actionID string) (Action, bool, error)
	MarkUndone(ctx context.Context, actionID, actorID string, at time.Time) (bool, error)
	MarkFinalized(ctx context.Context, actionID string, outcome Outcome, at time.Time) (bool, error)
	ListActiveByLot(ctx context.Context, lotID string, now time.Time) ([]Action, error)
}
