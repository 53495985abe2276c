package roster

import "context"

type Repository interface {
	GetManager(ctx context.Context, leagueID, userID string) (Manager, bool, error)
	ListManagers(ctx context.Context, leagueID string) ([]Manager, error)

	// ListOwners returns the user IDs holding a club in a league: zero, one
	// or many depending on the league instance.
	ListOwners(ctx context.Context, leagueID, clubID string) ([]string, error)

	// AddHolding records a won lot and deducts the price from the manager's
	// budget in one step.
	AddHolding(ctx context.Context, h Holding) error
}
