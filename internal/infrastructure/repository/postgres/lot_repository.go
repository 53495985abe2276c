package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/domain/auction"
)

type LotRepository struct {
	db *sqlx.DB
}

func NewLotRepository(db *sqlx.DB) *LotRepository {
	return &LotRepository{db: db}
}

func (r *LotRepository) GetByID(ctx context.Context, lotID string) (auction.Lot, bool, error) {
	const query = `SELECT * FROM lots WHERE id = $1`

	var row lotTableModel
	if err := sqlx.GetContext(ctx, execer(ctx, r.db), &row, query, lotID); err != nil {
		if isNotFound(err) {
			return auction.Lot{}, false, nil
		}
		return auction.Lot{}, false, fmt.Errorf("get lot: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *LotRepository) ListByAuction(ctx context.Context, auctionID string) ([]auction.Lot, error) {
	const query = `SELECT * FROM lots WHERE auction_id = $1 ORDER BY id`

	var rows []lotTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, auctionID); err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}

	out := make([]auction.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// BeginClose evaluates the status and timer preconditions inside the UPDATE
// itself, so a racing bid-engine write or second commissioner cannot slip
// between a read and this transition.
func (r *LotRepository) BeginClose(ctx context.Context, lotID string, pc auction.PreClose, forced bool, now time.Time) (bool, error) {
	const query = `
UPDATE lots SET
    status = 'pre_closed',
    pre_initiated_at = $2,
    pre_commissioner_id = $3,
    pre_undo_deadline = $4,
    pre_reason = $5,
    pre_action_id = $6,
    updated_at = NOW()
WHERE id = $1
  AND status IN ('pending', 'open')
  AND ($7 OR status = 'pending' OR timer_ends_at IS NULL OR timer_ends_at <= $8)`

	res, err := execer(ctx, r.db).ExecContext(ctx, query,
		lotID, pc.InitiatedAt, pc.CommissionerID, pc.UndoDeadline, pc.Reason, pc.ActionID, forced, now)
	if err != nil {
		return false, fmt.Errorf("begin close: %w", err)
	}
	return oneRowAffected(res)
}

func (r *LotRepository) Reopen(ctx context.Context, lotID string, status auction.Status, timerEndsAt *time.Time) (bool, error) {
	const query = `
UPDATE lots SET
    status = $2,
    timer_ends_at = $3,
    pre_initiated_at = NULL,
    pre_commissioner_id = NULL,
    pre_undo_deadline = NULL,
    pre_reason = NULL,
    pre_action_id = NULL,
    updated_at = NOW()
WHERE id = $1 AND status = 'pre_closed'`

	res, err := execer(ctx, r.db).ExecContext(ctx, query, lotID, string(status), timerEndsAt)
	if err != nil {
		return false, fmt.Errorf("reopen lot: %w", err)
	}
	return oneRowAffected(res)
}

func (r *LotRepository) FinalizeClose(ctx context.Context, lotID string, status auction.Status, winnerID *string, winningBid int64) (bool, error) {
	const query = `
UPDATE lots SET
    status = $2,
    winner_id = $3,
    winning_bid = $4,
    timer_ends_at = NULL,
    pre_initiated_at = NULL,
    pre_commissioner_id = NULL,
    pre_undo_deadline = NULL,
    pre_reason = NULL,
    pre_action_id = NULL,
    updated_at = NOW()
WHERE id = $1 AND status = 'pre_closed'`

	res, err := execer(ctx, r.db).ExecContext(ctx, query, lotID, string(status), winnerID, winningBid)
	if err != nil {
		return false, fmt.Errorf("finalize lot: %w", err)
	}
	return oneRowAffected(res)
}

func (r *LotRepository) ListExpiredPreClosed(ctx context.Context, now time.Time) ([]auction.Lot, error) {
	const query = `
SELECT * FROM lots
WHERE status = 'pre_closed' AND pre_undo_deadline <= $1
ORDER BY pre_undo_deadline`

	var rows []lotTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, now); err != nil {
		return nil, fmt.Errorf("list expired pre_closed lots: %w", err)
	}

	out := make([]auction.Lot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// BidLogRepository reads the bid engine's append-only bid table. This
// service never writes it.
type BidLogRepository struct {
	db *sqlx.DB
}

func NewBidLogRepository(db *sqlx.DB) *BidLogRepository {
	return &BidLogRepository{db: db}
}

func (r *BidLogRepository) LastBidAt(ctx context.Context, lotID string) (time.Time, bool, error) {
	const query = `SELECT MAX(placed_at) FROM lot_bids WHERE lot_id = $1`

	var placedAt *time.Time
	if err := sqlx.GetContext(ctx, execer(ctx, r.db), &placedAt, query, lotID); err != nil {
		return time.Time{}, false, fmt.Errorf("last bid at: %w", err)
	}
	if placedAt == nil {
		return time.Time{}, false, nil
	}
	return *placedAt, true, nil
}
