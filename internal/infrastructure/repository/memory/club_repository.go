package memory

import (
	"context"
	"sync"

	"github.com/clubroyale/auction-league/internal/domain/club"
)

type ClubRepository struct {
	mu       sync.RWMutex
	items    map[string]club.Club
	byExtRef map[string]string
	order    []string
}

func NewClubRepository(clubs []club.Club) *ClubRepository {
	items := make(map[string]club.Club, len(clubs))
	byExtRef := make(map[string]string, len(clubs))
	order := make([]string, 0, len(clubs))

	for _, c := range clubs {
		items[c.ID] = c
		if c.ExtRef != "" {
			byExtRef[c.ExtRef] = c.ID
		}
		order = append(order, c.ID)
	}

	return &ClubRepository{items: items, byExtRef: byExtRef, order: order}
}

func (r *ClubRepository) GetByID(_ context.Context, clubID string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[clubID]
	return c, ok, nil
}

func (r *ClubRepository) GetByExtRef(_ context.Context, extRef string) (club.Club, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clubID, ok := r.byExtRef[extRef]
	if !ok {
		return club.Club{}, false, nil
	}
	c, ok := r.items[clubID]
	return c, ok, nil
}

func (r *ClubRepository) List(_ context.Context) ([]club.Club, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]club.Club, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out, nil
}
