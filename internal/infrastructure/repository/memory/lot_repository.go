package memory

import (
	"context"
	"sync"
	"time"

	"github.com/clubroyale/auction-league/internal/domain/auction"
)

type LotRepository struct {
	mu    sync.RWMutex
	items map[string]auction.Lot
}

func NewLotRepository(lots []auction.Lot) *LotRepository {
	items := make(map[string]auction.Lot, len(lots))
	for _, l := range lots {
		items[l.ID] = l
	}
	return &LotRepository{items: items}
}

func (r *LotRepository) GetByID(_ context.Context, lotID string) (auction.Lot, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[lotID]
	return l, ok, nil
}

func (r *LotRepository) ListByAuction(_ context.Context, auctionID string) ([]auction.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auction.Lot, 0)
	for _, l := range r.items {
		if l.AuctionID == auctionID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *LotRepository) BeginClose(_ context.Context, lotID string, pc auction.PreClose, forced bool, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[lotID]
	if !ok {
		return false, nil
	}
	if l.Status != auction.StatusPending && l.Status != auction.StatusOpen {
		return false, nil
	}
	if !forced && l.Status == auction.StatusOpen && l.TimerEndsAt != nil && l.TimerEndsAt.After(now) {
		return false, nil
	}

	l.Status = auction.StatusPreClosed
	l.PreClose = &pc
	r.items[lotID] = l
	return true, nil
}

func (r *LotRepository) Reopen(_ context.Context, lotID string, status auction.Status, timerEndsAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[lotID]
	if !ok || l.Status != auction.StatusPreClosed {
		return false, nil
	}

	l.Status = status
	l.TimerEndsAt = timerEndsAt
	l.PreClose = nil
	r.items[lotID] = l
	return true, nil
}

func (r *LotRepository) FinalizeClose(_ context.Context, lotID string, status auction.Status, winnerID *string, winningBid int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.items[lotID]
	if !ok || l.Status != auction.StatusPreClosed {
		return false, nil
	}

	l.Status = status
	l.WinnerID = winnerID
	l.WinningBid = winningBid
	l.PreClose = nil
	l.TimerEndsAt = nil
	r.items[lotID] = l
	return true, nil
}

func (r *LotRepository) ListExpiredPreClosed(_ context.Context, now time.Time) ([]auction.Lot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auction.Lot, 0)
	for _, l := range r.items {
		if l.Status == auction.StatusPreClosed && l.PreClose != nil && !now.Before(l.PreClose.UndoDeadline) {
			out = append(out, l)
		}
	}
	return out, nil
}

// BidLogRepository is the in-memory stand-in for the bid engine's bid
// timestamp log, used by tests and DB-less deployments.
type BidLogRepository struct {
	mu      sync.RWMutex
	lastBid map[string]time.Time
}

func NewBidLogRepository() *BidLogRepository {
	return &BidLogRepository{lastBid: make(map[string]time.Time)}
}

func (r *BidLogRepository) RecordBid(lotID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.lastBid[lotID]; !ok || at.After(existing) {
		r.lastBid[lotID] = at
	}
}

func (r *BidLogRepository) LastBidAt(_ context.Context, lotID string) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	at, ok := r.lastBid[lotID]
	return at, ok, nil
}
