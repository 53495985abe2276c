package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/clubroyale/auction-league/internal/domain/roster"
)

type managerKey struct {
	leagueID string
	userID   string
}

type RosterRepository struct {
	mu       sync.RWMutex
	managers map[managerKey]roster.Manager
	order    []managerKey
	holdings []roster.Holding
}

func NewRosterRepository(managers []roster.Manager) *RosterRepository {
	items := make(map[managerKey]roster.Manager, len(managers))
	order := make([]managerKey, 0, len(managers))
	for _, m := range managers {
		key := managerKey{leagueID: m.LeagueID, userID: m.UserID}
		items[key] = m
		order = append(order, key)
	}
	return &RosterRepository{managers: items, order: order}
}

func (r *RosterRepository) GetManager(_ context.Context, leagueID, userID string) (roster.Manager, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.managers[managerKey{leagueID: leagueID, userID: userID}]
	return m, ok, nil
}

func (r *RosterRepository) ListManagers(_ context.Context, leagueID string) ([]roster.Manager, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Manager, 0)
	for _, key := range r.order {
		if key.leagueID == leagueID {
			out = append(out, r.managers[key])
		}
	}
	return out, nil
}

func (r *RosterRepository) ListOwners(_ context.Context, leagueID, clubID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, 1)
	for _, h := range r.holdings {
		if h.LeagueID == leagueID && h.ClubID == clubID {
			out = append(out, h.UserID)
		}
	}
	return out, nil
}

func (r *RosterRepository) AddHolding(_ context.Context, h roster.Holding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := managerKey{leagueID: h.LeagueID, userID: h.UserID}
	m, ok := r.managers[key]
	if !ok {
		return fmt.Errorf("manager %s not found in league %s", h.UserID, h.LeagueID)
	}

	for _, existing := range r.holdings {
		if existing.LeagueID == h.LeagueID && existing.UserID == h.UserID && existing.ClubID == h.ClubID {
			return nil
		}
	}

	m.Budget -= h.Price
	r.managers[key] = m
	r.holdings = append(r.holdings, h)
	return nil
}
