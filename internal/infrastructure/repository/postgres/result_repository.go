package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/domain/result"
)

type ResultRepository struct {
	db *sqlx.DB
}

func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// InsertIfAbsent only ever writes fields on insert: a duplicate delivery
// hits the conflict target and changes nothing.
func (r *ResultRepository) InsertIfAbsent(ctx context.Context, res result.MatchResult) (bool, error) {
	const query = `
INSERT INTO match_results (
    league_id, match_id, season, home_ext_ref, away_ext_ref,
    home_goals, away_goals, kicked_off_at, status, received_at, processed
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE)
ON CONFLICT (league_id, match_id) DO NOTHING`

	execRes, err := execer(ctx, r.db).ExecContext(ctx, query,
		res.LeagueID, res.MatchID, res.Season, res.HomeExtRef, res.AwayExtRef,
		res.HomeGoals, res.AwayGoals, res.KickedOffAt, res.Status, res.ReceivedAt)
	if err != nil {
		return false, fmt.Errorf("insert match result: %w", err)
	}
	return oneRowAffected(execRes)
}

func (r *ResultRepository) GetByMatch(ctx context.Context, leagueID, matchID string) (result.MatchResult, bool, error) {
	const query = `SELECT * FROM match_results WHERE league_id = $1 AND match_id = $2`

	var row matchResultTableModel
	if err := sqlx.GetContext(ctx, execer(ctx, r.db), &row, query, leagueID, matchID); err != nil {
		if isNotFound(err) {
			return result.MatchResult{}, false, nil
		}
		return result.MatchResult{}, false, fmt.Errorf("get match result: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ResultRepository) ListUnprocessed(ctx context.Context, limit int) ([]result.MatchResult, error) {
	const query = `
SELECT * FROM match_results
WHERE processed = FALSE
ORDER BY received_at
LIMIT $1`

	var rows []matchResultTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list unprocessed results: %w", err)
	}

	out := make([]result.MatchResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ResultRepository) MarkProcessed(ctx context.Context, leagueID, matchID string) error {
	const query = `UPDATE match_results SET processed = TRUE WHERE league_id = $1 AND match_id = $2`

	if _, err := execer(ctx, r.db).ExecContext(ctx, query, leagueID, matchID); err != nil {
		return fmt.Errorf("mark result processed: %w", err)
	}
	return nil
}

func (r *ResultRepository) ListByLeague(ctx context.Context, leagueID string) ([]result.MatchResult, error) {
	const query = `SELECT * FROM match_results WHERE league_id = $1 ORDER BY received_at`

	var rows []matchResultTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("list league results: %w", err)
	}

	out := make([]result.MatchResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type SettlementRepository struct {
	db *sqlx.DB
}

func NewSettlementRepository(db *sqlx.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// Create is the settlement fence. The primary key on (league_id, match_id)
// makes exactly one concurrent caller win; a unique violation means the
// match was already scored.
func (r *SettlementRepository) Create(ctx context.Context, leagueID, matchID string, at time.Time) (bool, error) {
	const query = `INSERT INTO settlements (league_id, match_id, processed_at) VALUES ($1, $2, $3)`

	if _, err := execer(ctx, r.db).ExecContext(ctx, query, leagueID, matchID, at); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("create settlement: %w", err)
	}
	return true, nil
}

func (r *SettlementRepository) Exists(ctx context.Context, leagueID, matchID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM settlements WHERE league_id = $1 AND match_id = $2)`

	var exists bool
	if err := sqlx.GetContext(ctx, execer(ctx, r.db), &exists, query, leagueID, matchID); err != nil {
		return false, fmt.Errorf("check settlement: %w", err)
	}
	return exists, nil
}
