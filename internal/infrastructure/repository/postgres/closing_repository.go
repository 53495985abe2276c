package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/domain/closing"
)

type CloseActionRepository struct {
	db *sqlx.DB
}

func NewCloseActionRepository(db *sqlx.DB) *CloseActionRepository {
	return &CloseActionRepository{db: db}
}

func (r *CloseActionRepository) Create(ctx context.Context, action closing.Action) error {
	const query = `
INSERT INTO close_actions (
    id, lot_id, action_type, commissioner_id, reason,
    snap_status, snap_current_bid, snap_leading_bidder_id, snap_timer_ends_at,
    intended_status, initiated_at, undo_deadline, undone, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, FALSE, NOW())`

	_, err := execer(ctx, r.db).ExecContext(ctx, query,
		action.ID, action.LotID, action.Type, action.CommissionerID, action.Reason,
		action.Snapshot.Status, action.Snapshot.CurrentBid, action.Snapshot.LeadingBidderID, action.Snapshot.TimerEndsAt,
		action.IntendedStatus, action.InitiatedAt, action.UndoDeadline)
	if err != nil {
		return fmt.Errorf("create close action: %w", err)
	}
	return nil
}

func (r *CloseActionRepository) GetByID(ctx context.Context, actionID string) (closing.Action, bool, error) {
	const query = `SELECT * FROM close_actions WHERE id = $1`

	var row closeActionTableModel
	if err := sqlx.GetContext(ctx, execer(ctx, r.db), &row, query, actionID); err != nil {
		if isNotFound(err) {
			return closing.Action{}, false, nil
		}
		return closing.Action{}, false, fmt.Errorf("get close action: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *CloseActionRepository) MarkUndone(ctx context.Context, actionID, actorID string, at time.Time) (bool, error) {
	const query = `
UPDATE close_actions SET undone = TRUE, undone_by = $2, undone_at = $3
WHERE id = $1 AND undone = FALSE AND finalized_at IS NULL`

	res, err := execer(ctx, r.db).ExecContext(ctx, query, actionID, actorID, at)
	if err != nil {
		return false, fmt.Errorf("mark close action undone: %w", err)
	}
	return oneRowAffected(res)
}

func (r *CloseActionRepository) MarkFinalized(ctx context.Context, actionID string, outcome closing.Outcome, at time.Time) (bool, error) {
	const query = `
UPDATE close_actions SET finalized_at = $2, outcome = $3
WHERE id = $1 AND undone = FALSE AND finalized_at IS NULL`

	res, err := execer(ctx, r.db).ExecContext(ctx, query, actionID, at, string(outcome))
	if err != nil {
		return false, fmt.Errorf("mark close action finalized: %w", err)
	}
	return oneRowAffected(res)
}

func (r *CloseActionRepository) ListActiveByLot(ctx context.Context, lotID string, now time.Time) ([]closing.Action, error) {
	const query = `
SELECT * FROM close_actions
WHERE lot_id = $1 AND undone = FALSE AND finalized_at IS NULL AND undo_deadline > $2
ORDER BY initiated_at DESC`

	var rows []closeActionTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, lotID, now); err != nil {
		return nil, fmt.Errorf("list active close actions: %w", err)
	}

	out := make([]closing.Action, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
