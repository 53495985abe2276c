package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/platform/logging"
	"github.com/clubroyale/auction-league/internal/platform/unitofwork"
)

// TxRunner is the transactional unit-of-work implementation. Whether the
// store supports transactions is probed exactly once at construction; when
// it does not, every sequence degrades to independently-atomic single-row
// writes and the conditional-update guards in the repositories are the only
// safety net.
type TxRunner struct {
	db            *sqlx.DB
	transactional bool
}

func NewTxRunner(ctx context.Context, db *sqlx.DB, logger *logging.Logger) *TxRunner {
	if logger == nil {
		logger = logging.Default()
	}

	transactional := probeTransactions(ctx, db)
	if !transactional {
		logger.Warn("store transactions unavailable, running in check-then-write fallback mode")
	}

	return &TxRunner{db: db, transactional: transactional}
}

func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.transactional {
		return fn(ctx)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(withTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *TxRunner) Transactional() bool { return r.transactional }

func probeTransactions(ctx context.Context, db *sqlx.DB) bool {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false
	}
	_ = tx.Rollback()
	return true
}

var _ unitofwork.Runner = (*TxRunner)(nil)
