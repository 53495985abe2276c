package memory

import (
	"context"
	"sync"

	"github.com/clubroyale/auction-league/internal/domain/points"
)

type pointsKey struct {
	leagueID string
	userID   string
	matchID  string
}

type PointsRepository struct {
	mu    sync.RWMutex
	items map[pointsKey]points.MatchPoints
	order []pointsKey
}

func NewPointsRepository() *PointsRepository {
	return &PointsRepository{items: make(map[pointsKey]points.MatchPoints)}
}

func (r *PointsRepository) Upsert(_ context.Context, p points.MatchPoints) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pointsKey{leagueID: p.LeagueID, userID: p.UserID, matchID: p.MatchID}
	if _, ok := r.items[key]; !ok {
		r.order = append(r.order, key)
	}
	r.items[key] = p
	return nil
}

func (r *PointsRepository) ListByLeague(_ context.Context, leagueID string) ([]points.MatchPoints, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]points.MatchPoints, 0)
	for _, key := range r.order {
		if key.leagueID == leagueID {
			out = append(out, r.items[key])
		}
	}
	return out, nil
}

func (r *PointsRepository) ListByUser(_ context.Context, leagueID, userID string) ([]points.MatchPoints, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]points.MatchPoints, 0)
	for _, key := range r.order {
		if key.leagueID == leagueID && key.userID == userID {
			out = append(out, r.items[key])
		}
	}
	return out, nil
}
