package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/clubroyale/auction-league/internal/domain/auction"
	"github.com/clubroyale/auction-league/internal/domain/audit"
	"github.com/clubroyale/auction-league/internal/domain/closing"
	"github.com/clubroyale/auction-league/internal/domain/roster"
	idgen "github.com/clubroyale/auction-league/internal/platform/id"
	"github.com/clubroyale/auction-league/internal/platform/logging"
	"github.com/clubroyale/auction-league/internal/platform/unitofwork"
)

// UndoWindow is the fixed period during which an initiated close can be
// reversed. It is deliberately not configurable per lot: the automatic
// finalize scheduling stays simple and bounded.
const UndoWindow = 10 * time.Second

const defaultSweepWorkers = 8

// CloseReceipt is returned from InitiateClose; the action ID drives any
// later undo or manual finalize.
type CloseReceipt struct {
	ActionID     string
	LotID        string
	UndoDeadline time.Time
}

// FinalizeOutcome describes how a lot settled.
type FinalizeOutcome struct {
	LotID      string
	Status     auction.Status
	WinnerID   *string
	WinningBid int64
}

// LotClosingService drives the two-phase close of a lot:
// initiate → undo window → finalize. The PRE_CLOSED status is the mutex: all
// transitions are conditional writes against the live row, so concurrent
// initiates or finalizes cannot both win.
type LotClosingService struct {
	lots      auction.Repository
	actions   closing.Repository
	bids      auction.BidLog
	rosters   roster.Repository
	auditLog  audit.Repository
	runner    unitofwork.Runner
	ids       idgen.Generator
	broadcast Broadcaster
	logger    *logging.Logger

	now      func() time.Time
	schedule func(d time.Duration, fn func())

	sweepWorkers int
}

func NewLotClosingService(
	lots auction.Repository,
	actions closing.Repository,
	bids auction.BidLog,
	rosters roster.Repository,
	auditLog audit.Repository,
	runner unitofwork.Runner,
	ids idgen.Generator,
	broadcast Broadcaster,
	logger *logging.Logger,
) *LotClosingService {
	if runner == nil {
		runner = unitofwork.NewSequential()
	}
	if broadcast == nil {
		broadcast = NewNoopBroadcaster()
	}
	if logger == nil {
		logger = logging.Default()
	}

	s := &LotClosingService{
		lots:         lots,
		actions:      actions,
		bids:         bids,
		rosters:      rosters,
		auditLog:     auditLog,
		runner:       runner,
		ids:          ids,
		broadcast:    broadcast,
		logger:       logger,
		now:          time.Now,
		sweepWorkers: defaultSweepWorkers,
	}
	s.schedule = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	return s
}

// InitiateClose snapshots the lot, moves it into pre_closed and schedules the
// automatic finalize at the undo deadline. Closing an actively-timed open lot
// requires the forced flag.
func (s *LotClosingService) InitiateClose(ctx context.Context, lotID, commissionerID string, forced bool, reason string) (CloseReceipt, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotClosingService.InitiateClose")
	defer span.End()

	lotID = strings.TrimSpace(lotID)
	commissionerID = strings.TrimSpace(commissionerID)
	if lotID == "" || commissionerID == "" {
		return CloseReceipt{}, fmt.Errorf("%w: lot id and commissioner id are required", ErrInvalidInput)
	}

	lot, ok, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		return CloseReceipt{}, fmt.Errorf("get lot: %w", err)
	}
	if !ok {
		return CloseReceipt{}, fmt.Errorf("%w: lot=%s", ErrNotFound, lotID)
	}
	if err := s.checkClosable(lot, forced); err != nil {
		return CloseReceipt{}, err
	}

	actionID, err := s.ids.NewID()
	if err != nil {
		return CloseReceipt{}, fmt.Errorf("generate action id: %w", err)
	}

	now := s.now().UTC()
	deadline := now.Add(UndoWindow)
	action := closing.Action{
		ID:             actionID,
		LotID:          lot.ID,
		Type:           closing.ActionTypeLotClose,
		CommissionerID: commissionerID,
		Reason:         strings.TrimSpace(reason),
		Snapshot: closing.Snapshot{
			Status:          string(lot.Status),
			CurrentBid:      lot.CurrentBid,
			LeadingBidderID: lot.LeadingBidderID,
			TimerEndsAt:     lot.TimerEndsAt,
		},
		IntendedStatus: intendedStatus(lot),
		InitiatedAt:    now,
		UndoDeadline:   deadline,
	}
	pc := auction.PreClose{
		InitiatedAt:    now,
		CommissionerID: commissionerID,
		UndoDeadline:   deadline,
		Reason:         action.Reason,
		ActionID:       actionID,
	}

	err = s.runner.Run(ctx, func(ctx context.Context) error {
		// The status/timer precondition is re-evaluated by this conditional
		// write; the read above only produced the snapshot and messages.
		moved, err := s.lots.BeginClose(ctx, lot.ID, pc, forced, now)
		if err != nil {
			return fmt.Errorf("mark lot pre_closed: %w", err)
		}
		if !moved {
			return s.classifyBeginCloseRefusal(ctx, lot.ID, forced)
		}
		if err := s.actions.Create(ctx, action); err != nil {
			return fmt.Errorf("create close action: %w", err)
		}
		return s.appendAudit(ctx, commissionerID, audit.ActionLotPreCloseInitiated, lot.ID, map[string]string{
			"action_id":     actionID,
			"reason":        action.Reason,
			"forced":        fmt.Sprintf("%t", forced),
			"undo_deadline": deadline.Format(time.RFC3339),
		})
	})
	if err != nil {
		return CloseReceipt{}, err
	}

	s.scheduleFinalize(actionID, deadline.Sub(now))
	s.broadcast.LotChanged(ctx, LotUpdate{LotID: lot.ID, Status: string(auction.StatusPreClosed)})

	s.logger.InfoContext(ctx, "lot close initiated",
		"lot_id", lot.ID,
		"action_id", actionID,
		"commissioner_id", commissionerID,
		"forced", forced,
	)

	return CloseReceipt{ActionID: actionID, LotID: lot.ID, UndoDeadline: deadline}, nil
}

// UndoClose reverses a pending close before its deadline, restoring the
// snapshot timer. A bid recorded after the close was initiated refuses the
// undo: the newer legitimate bid wins over the administrative reversal.
func (s *LotClosingService) UndoClose(ctx context.Context, actionID, commissionerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotClosingService.UndoClose")
	defer span.End()

	actionID = strings.TrimSpace(actionID)
	commissionerID = strings.TrimSpace(commissionerID)
	if actionID == "" || commissionerID == "" {
		return fmt.Errorf("%w: action id and commissioner id are required", ErrInvalidInput)
	}

	action, ok, err := s.actions.GetByID(ctx, actionID)
	if err != nil {
		return fmt.Errorf("get close action: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: action=%s", ErrNotFound, actionID)
	}
	if action.Undone {
		return fmt.Errorf("%w: close action was already undone", ErrConflict)
	}
	if action.Finalized != nil {
		return fmt.Errorf("%w: close action was already finalized", ErrConflict)
	}

	now := s.now().UTC()
	if now.After(action.UndoDeadline) {
		return fmt.Errorf("%w: undo window expired", ErrConflict)
	}

	if lastBid, hasBid, err := s.bids.LastBidAt(ctx, action.LotID); err != nil {
		return fmt.Errorf("read bid log: %w", err)
	} else if hasBid && lastBid.After(action.InitiatedAt) {
		return fmt.Errorf("%w: a bid was placed after the close was initiated", ErrRaceLost)
	}

	err = s.runner.Run(ctx, func(ctx context.Context) error {
		// Status and timer come back from the snapshot; the bid engine owns
		// current_bid and leading_bidder and they were never touched.
		reopened, err := s.lots.Reopen(ctx, action.LotID, snapshotStatus(action), action.Snapshot.TimerEndsAt)
		if err != nil {
			return fmt.Errorf("reopen lot: %w", err)
		}
		if !reopened {
			return fmt.Errorf("%w: lot is no longer awaiting finalize", ErrConflict)
		}
		undone, err := s.actions.MarkUndone(ctx, action.ID, commissionerID, now)
		if err != nil {
			return fmt.Errorf("mark action undone: %w", err)
		}
		if !undone {
			return fmt.Errorf("%w: close action was already resolved", ErrConflict)
		}
		return s.appendAudit(ctx, commissionerID, audit.ActionLotCloseUndone, action.LotID, map[string]string{
			"action_id": action.ID,
		})
	})
	if err != nil {
		return err
	}

	s.broadcast.LotChanged(ctx, LotUpdate{LotID: action.LotID, Status: action.Snapshot.Status})
	s.logger.InfoContext(ctx, "lot close undone",
		"lot_id", action.LotID,
		"action_id", action.ID,
		"commissioner_id", commissionerID,
	)
	return nil
}

// FinalizeClose settles a lot once its undo window elapsed. The outcome is
// decided from the lot's live state, not the snapshot: a legitimate late bid
// placed during the window must win.
func (s *LotClosingService) FinalizeClose(ctx context.Context, actionID string) (FinalizeOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotClosingService.FinalizeClose")
	defer span.End()

	actionID = strings.TrimSpace(actionID)
	if actionID == "" {
		return FinalizeOutcome{}, fmt.Errorf("%w: action id is required", ErrInvalidInput)
	}

	action, ok, err := s.actions.GetByID(ctx, actionID)
	if err != nil {
		return FinalizeOutcome{}, fmt.Errorf("get close action: %w", err)
	}
	if !ok {
		return FinalizeOutcome{}, fmt.Errorf("%w: action=%s", ErrNotFound, actionID)
	}
	if action.Undone {
		return FinalizeOutcome{}, fmt.Errorf("%w: close action was undone", ErrConflict)
	}
	if action.Finalized != nil {
		return FinalizeOutcome{}, fmt.Errorf("%w: close action was already finalized", ErrConflict)
	}

	now := s.now().UTC()
	if now.Before(action.UndoDeadline) {
		// Rejected, not deferred: an explicit finalize-early feature must
		// bypass the window knowingly, never by accident.
		return FinalizeOutcome{}, fmt.Errorf("%w: undo window is still open", ErrConflict)
	}

	lot, ok, err := s.lots.GetByID(ctx, action.LotID)
	if err != nil {
		return FinalizeOutcome{}, fmt.Errorf("get lot: %w", err)
	}
	if !ok {
		s.logger.ErrorContext(ctx, "close action references missing lot",
			"action_id", action.ID,
			"lot_id", action.LotID,
		)
		return FinalizeOutcome{}, fmt.Errorf("close action %s references missing lot %s", action.ID, action.LotID)
	}

	outcome := FinalizeOutcome{LotID: lot.ID, Status: auction.StatusUnsold}
	actionOutcome := closing.OutcomeUnsold
	if lot.LeadingBidderID != nil {
		outcome.Status = auction.StatusSold
		outcome.WinnerID = lot.LeadingBidderID
		outcome.WinningBid = lot.CurrentBid
		actionOutcome = closing.OutcomeSold
	}

	err = s.runner.Run(ctx, func(ctx context.Context) error {
		settled, err := s.lots.FinalizeClose(ctx, lot.ID, outcome.Status, outcome.WinnerID, outcome.WinningBid)
		if err != nil {
			return fmt.Errorf("finalize lot: %w", err)
		}
		if !settled {
			return fmt.Errorf("%w: lot is no longer awaiting finalize", ErrConflict)
		}
		stamped, err := s.actions.MarkFinalized(ctx, action.ID, actionOutcome, now)
		if err != nil {
			return fmt.Errorf("mark action finalized: %w", err)
		}
		if !stamped {
			return fmt.Errorf("%w: close action was already resolved", ErrConflict)
		}
		if outcome.Status == auction.StatusSold {
			holding := roster.Holding{
				LeagueID: lot.LeagueID,
				UserID:   *outcome.WinnerID,
				ClubID:   lot.ClubID,
				Price:    outcome.WinningBid,
			}
			if err := s.rosters.AddHolding(ctx, holding); err != nil {
				return fmt.Errorf("record holding: %w", err)
			}
		}
		detail := map[string]string{
			"action_id": action.ID,
			"outcome":   string(actionOutcome),
		}
		if outcome.WinnerID != nil {
			detail["winner_id"] = *outcome.WinnerID
			detail["winning_bid"] = fmt.Sprintf("%d", outcome.WinningBid)
		}
		return s.appendAudit(ctx, audit.ActorSystem, audit.ActionLotCloseFinalized, lot.ID, detail)
	})
	if err != nil {
		return FinalizeOutcome{}, err
	}

	s.broadcast.LotChanged(ctx, LotUpdate{
		LotID:      lot.ID,
		Status:     string(outcome.Status),
		WinnerID:   outcome.WinnerID,
		WinningBid: outcome.WinningBid,
	})
	s.logger.InfoContext(ctx, "lot close finalized",
		"lot_id", lot.ID,
		"action_id", action.ID,
		"outcome", string(actionOutcome),
	)
	return outcome, nil
}

// SweepExpired finalizes every pre_closed lot whose undo deadline already
// passed. In-process finalize timers do not survive a restart; this sweep,
// run at startup and on an interval, is the durable fallback.
func (s *LotClosingService) SweepExpired(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotClosingService.SweepExpired")
	defer span.End()

	lots, err := s.lots.ListExpiredPreClosed(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list expired pre_closed lots: %w", err)
	}
	if len(lots) == 0 {
		return 0, nil
	}

	pool, err := ants.NewPool(s.sweepWorkers)
	if err != nil {
		return 0, fmt.Errorf("create sweep pool: %w", err)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		finalized int
	)
	for _, lot := range lots {
		if lot.PreClose == nil || lot.PreClose.ActionID == "" {
			s.logger.ErrorContext(ctx, "pre_closed lot without close bookkeeping", "lot_id", lot.ID)
			continue
		}
		actionID := lot.PreClose.ActionID
		lotID := lot.ID

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if _, err := s.FinalizeClose(ctx, actionID); err != nil {
				// A concurrent finalize winning the conditional write is
				// expected here, anything else is worth a warning.
				s.logger.WarnContext(ctx, "sweep finalize failed",
					"lot_id", lotID,
					"action_id", actionID,
					"error", err,
				)
				return
			}
			mu.Lock()
			finalized++
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "sweep submit failed", "lot_id", lotID, "error", submitErr)
		}
	}
	wg.Wait()

	if finalized > 0 {
		s.logger.InfoContext(ctx, "finalize sweep completed", "finalized", finalized, "candidates", len(lots))
	}
	return finalized, nil
}

// ActiveActions lists the non-undone, non-finalized actions whose deadline is
// still in the future, for the UI's undo affordance.
func (s *LotClosingService) ActiveActions(ctx context.Context, lotID string) ([]closing.Action, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LotClosingService.ActiveActions")
	defer span.End()

	lotID = strings.TrimSpace(lotID)
	if lotID == "" {
		return nil, fmt.Errorf("%w: lot id is required", ErrInvalidInput)
	}

	actions, err := s.actions.ListActiveByLot(ctx, lotID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("list active close actions: %w", err)
	}
	return actions, nil
}

func (s *LotClosingService) checkClosable(lot auction.Lot, forced bool) error {
	switch {
	case lot.Status == auction.StatusPreClosed:
		return fmt.Errorf("%w: lot is already in closing process", ErrConflict)
	case lot.Status.Terminal():
		return fmt.Errorf("%w: lot was already closed", ErrConflict)
	}
	if !forced && lot.Status == auction.StatusOpen && lot.TimerEndsAt != nil && lot.TimerEndsAt.After(s.now()) {
		return fmt.Errorf("%w: lot timer is still running, use forced to close anyway", ErrConflict)
	}
	return nil
}

// classifyBeginCloseRefusal re-reads the lot after a refused conditional
// write to return the same messages a pre-check would have produced.
func (s *LotClosingService) classifyBeginCloseRefusal(ctx context.Context, lotID string, forced bool) error {
	lot, ok, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		return fmt.Errorf("re-read lot after refused close: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: lot=%s", ErrNotFound, lotID)
	}
	if err := s.checkClosable(lot, forced); err != nil {
		return err
	}
	return fmt.Errorf("%w: lot changed while initiating close", ErrConflict)
}

func (s *LotClosingService) scheduleFinalize(actionID string, in time.Duration) {
	s.schedule(in, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.FinalizeClose(ctx, actionID); err != nil {
			// Undone actions land here routinely; the sweep re-drives
			// anything that failed transiently.
			s.logger.Warn("scheduled finalize did not settle", "action_id", actionID, "error", err)
		}
	})
}

func (s *LotClosingService) appendAudit(ctx context.Context, actorID, actionName, lotID string, detail map[string]string) error {
	entryID, err := s.ids.NewID()
	if err != nil {
		return fmt.Errorf("generate audit id: %w", err)
	}
	entry := audit.Entry{
		ID:         entryID,
		ActorID:    actorID,
		Action:     actionName,
		EntityType: "lot",
		EntityID:   lotID,
		Detail:     detail,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.auditLog.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func snapshotStatus(action closing.Action) auction.Status {
	if action.Snapshot.Status == string(auction.StatusPending) {
		return auction.StatusPending
	}
	return auction.StatusOpen
}

func intendedStatus(lot auction.Lot) string {
	if lot.LeadingBidderID != nil {
		return string(auction.StatusSold)
	}
	return string(auction.StatusUnsold)
}
