package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/clubroyale/auction-league/internal/domain/club"
)

type clubTableModel struct {
	ID     string `db:"id"`
	Name   string `db:"name"`
	Short  string `db:"short"`
	ExtRef string `db:"ext_ref"`
}

type ClubRepository struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) GetByID(ctx context.Context, clubID string) (club.Club, bool, error) {
	const query = `SELECT * FROM clubs WHERE id = $1`
	return r.getOne(ctx, query, clubID)
}

func (r *ClubRepository) GetByExtRef(ctx context.Context, extRef string) (club.Club, bool, error) {
	const query = `SELECT * FROM clubs WHERE ext_ref = $1`
	return r.getOne(ctx, query, extRef)
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	const query = `SELECT * FROM clubs ORDER BY id`

	var rows []clubTableModel
	if err := sqlx.SelectContext(ctx, execer(ctx, r.db), &rows, query); err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		out = append(out, club.Club(row))
	}
	return out, nil
}

func (r *ClubRepository) getOne(ctx context.Context, query string, arg any) (club.Club, bool, error) {
	var row clubTableModel
	if err := sqlx.GetContext(ctx, execer(ctx, r.db), &row, query, arg); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("get club: %w", err)
	}
	return club.Club(row), true, nil
}
