package usecase

import "context"

// LotUpdate is the payload pushed to the real-time layer on every lot
// transition. Transport is the broadcast layer's concern.
type LotUpdate struct {
	LotID      string  `json:"lot_id"`
	Status     string  `json:"status"`
	WinnerID   *string `json:"winner_id,omitempty"`
	WinningBid int64   `json:"winning_bid,omitempty"`
}

// Broadcaster pushes lot state changes to connected clients. Failures are
// the broadcast layer's problem; the state machine never blocks on it.
type Broadcaster interface {
	LotChanged(ctx context.Context, update LotUpdate)
}

type noopBroadcaster struct{}

func (noopBroadcaster) LotChanged(context.Context, LotUpdate) {}

func NewNoopBroadcaster() Broadcaster {
	return noopBroadcaster{}
}
