package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/domain/points"
)

type matchPointsTableModel struct {
	LeagueID  string    `db:"league_id"`
	UserID    string    `db:"user_id"`
	MatchID   string    `db:"match_id"`
	Matchday  int       `db:"matchday"`
	Stage     string    `db:"stage"`
	Points    int       `db:"points"`
	CreatedAt time.Time `db:"created_at"`
}

type PointsRepository struct {
	db *sqlx.DB
}

func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

// Upsert overwrites by (league, user, match): a corrected settlement rerun
// fixes the figure instead of duplicating it.
func (r *PointsRepository) Upsert(ctx context.Context, p points.MatchPoints) error {
	const query = `
INSERT INTO match_points (league_id, user_id, match_id, matchday, stage, points, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (league_id, user_id, match_id)
DO UPDATE SET matchday = EXCLUDED.matchday, stage = EXCLUDED.stage, points = EXCLUDED.points`

	_, err := execer(ctx, r.db).ExecContext(ctx, query,
		p.LeagueID, p.UserID, p.MatchID, p.Matchday, p.Stage, p.Points, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert match points: %w", err)
	}
	return nil
}

func (r *PointsRepository) ListByLeague(ctx context.Context, leagueID string) ([]points.MatchPoints, error) {
	const query = `SELECT * FROM match_points WHERE league_id = $1 ORDER BY matchday, match_id`

	var rows []matchPointsTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("list league points: %w", err)
	}
	return pointsToDomain(rows), nil
}

func (r *PointsRepository) ListByUser(ctx context.Context, leagueID, userID string) ([]points.MatchPoints, error) {
	const query = `SELECT * FROM match_points WHERE league_id = $1 AND user_id = $2 ORDER BY matchday, match_id`

	var rows []matchPointsTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, leagueID, userID); err != nil {
		return nil, fmt.Errorf("list user points: %w", err)
	}
	return pointsToDomain(rows), nil
}

func pointsToDomain(rows []matchPointsTableModel) []points.MatchPoints {
	out := make([]points.MatchPoints, 0, len(rows))
	for _, row := range rows {
		out = append(out, points.MatchPoints{
			LeagueID:  row.LeagueID,
			UserID:    row.UserID,
			MatchID:   row.MatchID,
			Matchday:  row.Matchday,
			Stage:     row.Stage,
			Points:    row.Points,
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}
