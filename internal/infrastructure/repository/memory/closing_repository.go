package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/clubroyale/auction-league/internal/domain/closing"
)

type CloseActionRepository struct {
	mu    sync.RWMutex
	items map[string]closing.Action
}

func NewCloseActionRepository() *CloseActionRepository {
	return &CloseActionRepository{items: make(map[string]closing.Action)}
}

func (r *CloseActionRepository) Create(_ context.Context, action closing.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[action.ID]; ok {
		return fmt.Errorf("close action %s already exists", action.ID)
	}
	r.items[action.ID] = action
	return nil
}

func (r *CloseActionRepository) GetByID(_ context.Context, actionID string) (closing.Action, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[actionID]
	return a, ok, nil
}

func (r *CloseActionRepository) MarkUndone(_ context.Context, actionID, actorID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[actionID]
	if !ok || a.Undone || a.Finalized != nil {
		return false, nil
	}

	a.Undone = true
	a.UndoneBy = actorID
	a.UndoneAt = &at
	r.items[actionID] = a
	return true, nil
}

func (r *CloseActionRepository) MarkFinalized(_ context.Context, actionID string, outcome closing.Outcome, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[actionID]
	if !ok || a.Undone || a.Finalized != nil {
		return false, nil
	}

	a.Finalized = &at
	a.Outcome = outcome
	r.items[actionID] = a
	return true, nil
}

func (r *CloseActionRepository) ListActiveByLot(_ context.Context, lotID string, now time.Time) ([]closing.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]closing.Action, 0, 1)
	for _, a := range r.items {
		if a.LotID == lotID && a.Active(now) {
			out = append(out, a)
		}
	}
	return out, nil
}
