package memory

import (
	"context"
	"sync"

	"github.com/clubroyale/auction-league/internal/domain/audit"
)

type AuditRepository struct {
	mu      sync.RWMutex
	entries []audit.Entry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(_ context.Context, entry audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	return nil
}

func (r *AuditRepository) ListByEntity(_ context.Context, entityType, entityID string) ([]audit.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, 0)
	for _, e := range r.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}
