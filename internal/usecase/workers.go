package usecase

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/clubroyale/auction-league/internal/platform/logging"
)

// SettlementWorker drives the settlement pipeline on a fixed interval. It is
// an explicitly constructed, owned component: whoever composes the process
// starts and stops it, there is no package-level singleton.
type SettlementWorker struct {
	service  *SettlementService
	interval time.Duration
	batch    int
	logger   *logging.Logger

	wg     conc.WaitGroup
	cancel context.CancelFunc
}

func NewSettlementWorker(service *SettlementService, interval time.Duration, batch int, logger *logging.Logger) *SettlementWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	if batch <= 0 {
		batch = defaultSettleBatchSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SettlementWorker{
		service:  service,
		interval: interval,
		batch:    batch,
		logger:   logger,
	}
}

func (w *SettlementWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Go(func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info("settlement worker started", "interval", w.interval.String(), "batch", w.batch)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := w.service.ProcessPending(ctx, w.batch)
				if err != nil {
					w.logger.Error("settlement pass failed", "error", err)
					continue
				}
				if res.Processed > 0 || len(res.Errors) > 0 {
					w.logger.Info("settlement pass completed",
						"processed", res.Processed,
						"failed", len(res.Errors),
					)
				}
			}
		}
	})
}

func (w *SettlementWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("settlement worker stopped")
}

// FinalizeSweeper re-drives expired close actions: once immediately at
// startup (in-process finalize timers do not survive a crash) and then on a
// short interval.
type FinalizeSweeper struct {
	service  *LotClosingService
	interval time.Duration
	logger   *logging.Logger

	wg     conc.WaitGroup
	cancel context.CancelFunc
}

func NewFinalizeSweeper(service *LotClosingService, interval time.Duration, logger *logging.Logger) *FinalizeSweeper {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FinalizeSweeper{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

func (w *FinalizeSweeper) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Go(func() {
		w.logger.Info("finalize sweeper started", "interval", w.interval.String())
		if _, err := w.service.SweepExpired(ctx); err != nil {
			w.logger.Error("startup finalize sweep failed", "error", err)
		}

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.service.SweepExpired(ctx); err != nil {
					w.logger.Error("finalize sweep failed", "error", err)
				}
			}
		}
	})
}

func (w *FinalizeSweeper) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("finalize sweeper stopped")
}
