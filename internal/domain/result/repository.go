package result

import (
	"context"
	"time"
)

// Repository persists raw match results.
type Repository interface {
	// InsertIfAbsent stores the result unless one already exists for the
	// same (league, match); it reports whether a row was created. Existing
	// rows are left untouched.
	InsertIfAbsent(ctx context.Context, res MatchResult) (bool, error)
	GetByMatch(ctx context.Context, leagueID, matchID string) (MatchResult, bool, error)
	ListUnprocessed(ctx context.Context, limit int) ([]MatchResult, error)
	MarkProcessed(ctx context.Context, leagueID, matchID string) error
	ListByLeague(ctx context.Context, leagueID string) ([]MatchResult, error)
}

// SettlementRepository persists settlement fences. Create must be atomic
// with respect to concurrent callers: exactly one wins.
type SettlementRepository interface {
	Create(ctx context.Context, leagueID, matchID string, at time.Time) (bool, error)
	Exists(ctx context.Context, leagueID, matchID string) (bool, error)
}
