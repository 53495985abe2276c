package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clubroyale/auction-league/internal/domain/points"
	"github.com/clubroyale/auction-league/internal/domain/result"
	"github.com/clubroyale/auction-league/internal/domain/roster"

	"github.com/clubroyale/auction-league/internal/domain/club"
	"github.com/clubroyale/auction-league/internal/platform/logging"
	"github.com/clubroyale/auction-league/internal/platform/unitofwork"
)

const (
	winPoints  = 3
	drawPoints = 1
	lossPoints = 0

	defaultSettleBatchSize = 50
)

// IngestResultInput carries one raw match fact from the score feed. The feed
// delivers at least once; duplicates must be harmless.
type IngestResultInput struct {
	LeagueID    string
	MatchID     string
	Season      string
	HomeExtRef  string
	AwayExtRef  string
	HomeGoals   int
	AwayGoals   int
	KickedOffAt time.Time
	Status      string
}

// BatchResult reports one settlement pass. A failed record stays
// unprocessed and is retried on the next pass; it never aborts the batch.
type BatchResult struct {
	Processed int
	Errors    []BatchError
}

type BatchError struct {
	LeagueID string
	MatchID  string
	Message  string
}

// SettlementService turns queued match results into per-owner points exactly
// once. The settlement record per (league, match) is the idempotency fence:
// creating it is the sole permission to score the match.
type SettlementService struct {
	results     result.Repository
	settlements result.SettlementRepository
	clubs       club.Repository
	rosters     roster.Repository
	points      points.Repository
	runner      unitofwork.Runner
	logger      *logging.Logger

	seasonStart time.Time
	now         func() time.Time
}

func NewSettlementService(
	results result.Repository,
	settlements result.SettlementRepository,
	clubs club.Repository,
	rosters roster.Repository,
	pointsRepo points.Repository,
	runner unitofwork.Runner,
	seasonStart time.Time,
	logger *logging.Logger,
) *SettlementService {
	if runner == nil {
		runner = unitofwork.NewSequential()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &SettlementService{
		results:     results,
		settlements: settlements,
		clubs:       clubs,
		rosters:     rosters,
		points:      pointsRepo,
		runner:      runner,
		logger:      logger,
		seasonStart: seasonStart,
		now:         time.Now,
	}
}

// IngestResult stores a match fact keyed by (league, match). It reports
// whether the fact was seen for the first time; a repeat delivery changes
// nothing and returns created=false.
func (s *SettlementService) IngestResult(ctx context.Context, input IngestResultInput) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.IngestResult")
	defer span.End()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.MatchID = strings.TrimSpace(input.MatchID)
	input.HomeExtRef = strings.TrimSpace(input.HomeExtRef)
	input.AwayExtRef = strings.TrimSpace(input.AwayExtRef)
	if input.LeagueID == "" || input.MatchID == "" {
		return false, fmt.Errorf("%w: league id and match id are required", ErrInvalidInput)
	}
	if input.HomeExtRef == "" || input.AwayExtRef == "" {
		return false, fmt.Errorf("%w: home and away team references are required", ErrInvalidInput)
	}
	if input.HomeGoals < 0 || input.AwayGoals < 0 {
		return false, fmt.Errorf("%w: goals cannot be negative", ErrInvalidInput)
	}
	if input.KickedOffAt.IsZero() {
		return false, fmt.Errorf("%w: kickoff time is required", ErrInvalidInput)
	}

	created, err := s.results.InsertIfAbsent(ctx, result.MatchResult{
		LeagueID:    input.LeagueID,
		MatchID:     input.MatchID,
		Season:      strings.TrimSpace(input.Season),
		HomeExtRef:  input.HomeExtRef,
		AwayExtRef:  input.AwayExtRef,
		HomeGoals:   input.HomeGoals,
		AwayGoals:   input.AwayGoals,
		KickedOffAt: input.KickedOffAt.UTC(),
		Status:      strings.TrimSpace(input.Status),
		ReceivedAt:  s.now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("ingest result: %w", err)
	}

	if created {
		s.logger.InfoContext(ctx, "match result ingested",
			"league_id", input.LeagueID,
			"match_id", input.MatchID,
		)
	}
	return created, nil
}

// ProcessPending settles up to limit unprocessed results, oldest receipt
// first. Receipt order reflects upstream availability, which is why it wins
// over kickoff order.
func (s *SettlementService) ProcessPending(ctx context.Context, limit int) (BatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.ProcessPending")
	defer span.End()

	if limit <= 0 {
		limit = defaultSettleBatchSize
	}

	pending, err := s.results.ListUnprocessed(ctx, limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("list unprocessed results: %w", err)
	}

	var out BatchResult
	for _, res := range pending {
		if err := s.settleOne(ctx, res); err != nil {
			s.logger.WarnContext(ctx, "settlement failed, will retry",
				"league_id", res.LeagueID,
				"match_id", res.MatchID,
				"error", err,
			)
			out.Errors = append(out.Errors, BatchError{
				LeagueID: res.LeagueID,
				MatchID:  res.MatchID,
				Message:  err.Error(),
			})
			continue
		}
		out.Processed++
	}
	return out, nil
}

// settleOne scores a single match. Steps after the fence are pure functions
// of the durable intake record plus idempotent upserts, so a retry after a
// mid-sequence crash is safe even without a transactional store: only the
// fence insert has to be atomic.
func (s *SettlementService) settleOne(ctx context.Context, res result.MatchResult) error {
	return s.runner.Run(ctx, func(ctx context.Context) error {
		created, err := s.settlements.Create(ctx, res.LeagueID, res.MatchID, s.now().UTC())
		if err != nil {
			return fmt.Errorf("create settlement fence: %w", err)
		}
		if !created {
			// Already scored, e.g. by a concurrent worker or a previous run
			// that crashed after the fence. Retire the intake record.
			if err := s.results.MarkProcessed(ctx, res.LeagueID, res.MatchID); err != nil {
				return fmt.Errorf("mark already-settled result processed: %w", err)
			}
			return nil
		}

		bucket := points.BucketFor(res.KickedOffAt, s.seasonStart)
		homePts, awayPts := matchOutcomePoints(res.HomeGoals, res.AwayGoals)

		if err := s.awardSide(ctx, res, bucket, res.HomeExtRef, res.HomeGoals+homePts); err != nil {
			return err
		}
		if err := s.awardSide(ctx, res, bucket, res.AwayExtRef, res.AwayGoals+awayPts); err != nil {
			return err
		}

		if err := s.results.MarkProcessed(ctx, res.LeagueID, res.MatchID); err != nil {
			return fmt.Errorf("mark result processed: %w", err)
		}

		s.logger.InfoContext(ctx, "match settled",
			"league_id", res.LeagueID,
			"match_id", res.MatchID,
			"matchday", bucket.Matchday,
		)
		return nil
	})
}

// awardSide upserts the computed delta for every owner of one side's club.
// An external reference that maps to no club, or a club nobody owns in this
// league, yields zero rows and is not an error.
func (s *SettlementService) awardSide(ctx context.Context, res result.MatchResult, bucket points.Bucket, extRef string, delta int) error {
	c, ok, err := s.clubs.GetByExtRef(ctx, extRef)
	if err != nil {
		return fmt.Errorf("resolve club %q: %w", extRef, err)
	}
	if !ok {
		s.logger.DebugContext(ctx, "unmapped club reference, no points awarded",
			"league_id", res.LeagueID,
			"match_id", res.MatchID,
			"ext_ref", extRef,
		)
		return nil
	}

	owners, err := s.rosters.ListOwners(ctx, res.LeagueID, c.ID)
	if err != nil {
		return fmt.Errorf("list owners of club %s: %w", c.ID, err)
	}

	for _, userID := range owners {
		err := s.points.Upsert(ctx, points.MatchPoints{
			LeagueID:  res.LeagueID,
			UserID:    userID,
			MatchID:   res.MatchID,
			Matchday:  bucket.Matchday,
			Stage:     bucket.Stage,
			Points:    delta,
			CreatedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("upsert points for user %s: %w", userID, err)
		}
	}
	return nil
}

func matchOutcomePoints(homeGoals, awayGoals int) (int, int) {
	switch {
	case homeGoals > awayGoals:
		return winPoints, lossPoints
	case homeGoals < awayGoals:
		return lossPoints, winPoints
	default:
		return drawPoints, drawPoints
	}
}
