package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/domain/roster"
)

type managerTableModel struct {
	LeagueID    string `db:"league_id"`
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
	Budget      int64  `db:"budget"`
}

func (m managerTableModel) toDomain() roster.Manager {
	return roster.Manager(m)
}

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetManager(ctx context.Context, leagueID, userID string) (roster.Manager, bool, error) {
	const query = `SELECT * FROM league_managers WHERE league_id = $1 AND user_id = $2`

	var row managerTableModel
	if err := sqlx.GetContext(ctx, execer(ctx, r.db), &row, query, leagueID, userID); err != nil {
		if isNotFound(err) {
			return roster.Manager{}, false, nil
		}
		return roster.Manager{}, false, fmt.Errorf("get manager: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *RosterRepository) ListManagers(ctx context.Context, leagueID string) ([]roster.Manager, error) {
	const query = `SELECT * FROM league_managers WHERE league_id = $1 ORDER BY user_id`

	var rows []managerTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}

	out := make([]roster.Manager, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *RosterRepository) ListOwners(ctx context.Context, leagueID, clubID string) ([]string, error) {
	const query = `SELECT user_id FROM roster_holdings WHERE league_id = $1 AND club_id = $2 ORDER BY user_id`

	var owners []string
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &owners, query, leagueID, clubID); err != nil {
		return nil, fmt.Errorf("list club owners: %w", err)
	}
	return owners, nil
}

// AddHolding inserts the holding and deducts the winning bid from the
// manager's budget in one statement. A rerun of the same finalize hits the
// conflict target and leaves the budget untouched.
func (r *RosterRepository) AddHolding(ctx context.Context, h roster.Holding) error {
	const query = `
WITH ins AS (
    INSERT INTO roster_holdings (league_id, user_id, club_id, price, acquired_at)
    VALUES ($1, $2, $3, $4, NOW())
    ON CONFLICT (league_id, user_id, club_id) DO NOTHING
    RETURNING 1
)
UPDATE league_managers SET budget = budget - $4
WHERE league_id = $1 AND user_id = $2 AND EXISTS (SELECT 1 FROM ins)`

	if _, err := execer(ctx, r.db).ExecContext(ctx, query, h.LeagueID, h.UserID, h.ClubID, h.Price); err != nil {
		return fmt.Errorf("add roster holding: %w", err)
	}
	return nil
}
