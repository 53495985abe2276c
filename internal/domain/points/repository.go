package points

import "context"

type Repository interface {
	// Upsert writes the points row keyed by (league, user, match),
	// overwriting any previous value for that key.
	Upsert(ctx context.Context, p MatchPoints) error
	ListByLeague(ctx context.Context, leagueID string) ([]MatchPoints, error)
	ListByUser(ctx context.Context, leagueID, userID string) ([]MatchPoints, error)
}
