package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clubroyale/auction-league/internal/domain/result"
)

type matchKey struct {
	leagueID string
	matchID  string
}

type ResultRepository struct {
	mu    sync.RWMutex
	items map[matchKey]result.MatchResult
	order []matchKey
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{items: make(map[matchKey]result.MatchResult)}
}

func (r *ResultRepository) InsertIfAbsent(_ context.Context, res result.MatchResult) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := matchKey{leagueID: res.LeagueID, matchID: res.MatchID}
	if _, ok := r.items[key]; ok {
		return false, nil
	}
	r.items[key] = res
	r.order = append(r.order, key)
	return true, nil
}

func (r *ResultRepository) GetByMatch(_ context.Context, leagueID, matchID string) (result.MatchResult, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.items[matchKey{leagueID: leagueID, matchID: matchID}]
	return res, ok, nil
}

func (r *ResultRepository) ListUnprocessed(_ context.Context, limit int) ([]result.MatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]result.MatchResult, 0, limit)
	for _, key := range r.order {
		res := r.items[key]
		if res.Processed {
			continue
		}
		out = append(out, res)
		if len(out) == limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReceivedAt.Before(out[j].ReceivedAt)
	})
	return out, nil
}

func (r *ResultRepository) MarkProcessed(_ context.Context, leagueID, matchID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := matchKey{leagueID: leagueID, matchID: matchID}
	if res, ok := r.items[key]; ok {
		res.Processed = true
		r.items[key] = res
	}
	return nil
}

func (r *ResultRepository) ListByLeague(_ context.Context, leagueID string) ([]result.MatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]result.MatchResult, 0)
	for _, key := range r.order {
		if key.leagueID == leagueID {
			out = append(out, r.items[key])
		}
	}
	return out, nil
}

type SettlementRepository struct {
	mu    sync.RWMutex
	items map[matchKey]result.Settlement
}

func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{items: make(map[matchKey]result.Settlement)}
}

func (r *SettlementRepository) Create(_ context.Context, leagueID, matchID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := matchKey{leagueID: leagueID, matchID: matchID}
	if _, ok := r.items[key]; ok {
		return false, nil
	}
	r.items[key] = result.Settlement{LeagueID: leagueID, MatchID: matchID, ProcessedAt: at}
	return true, nil
}

func (r *SettlementRepository) Exists(_ context.Context, leagueID, matchID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[matchKey{leagueID: leagueID, matchID: matchID}]
	return ok, nil
}
