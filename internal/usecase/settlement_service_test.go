package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubroyale/auction-league/internal/domain/points"
	"github.com/clubroyale/auction-league/internal/domain/roster"
	"github.com/clubroyale/auction-league/internal/infrastructure/repository/memory"
	"github.com/clubroyale/auction-league/internal/platform/logging"
)

const testLeague = "ucl-royale-2026"

var testSeasonStart = time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

type settlementFixture struct {
	svc         *SettlementService
	results     *memory.ResultRepository
	settlements *memory.SettlementRepository
	points      *memory.PointsRepository
	rosters     *memory.RosterRepository
	clock       *fakeClock
}

func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()

	f := &settlementFixture{
		results:     memory.NewResultRepository(),
		settlements: memory.NewSettlementRepository(),
		points:      memory.NewPointsRepository(),
		rosters:     memory.NewRosterRepository(memory.SeedManagers()),
		clock:       newFakeClock(time.Date(2026, 9, 20, 21, 0, 0, 0, time.UTC)),
	}
	f.svc = NewSettlementService(
		f.results,
		f.settlements,
		memory.NewClubRepository(memory.SeedClubs()),
		f.rosters,
		f.points,
		nil,
		testSeasonStart,
		logging.NewNop(),
	)
	f.svc.now = f.clock.Now

	return f
}

func (f *settlementFixture) own(t *testing.T, userID, clubID string) {
	t.Helper()
	require.NoError(t, f.rosters.AddHolding(context.Background(), roster.Holding{
		LeagueID: testLeague,
		UserID:   userID,
		ClubID:   clubID,
		Price:    100,
	}))
}

func resultInput(matchID string, homeGoals, awayGoals int) IngestResultInput {
	return IngestResultInput{
		LeagueID:    testLeague,
		MatchID:     matchID,
		Season:      "2026-27",
		HomeExtRef:  "feed-3468", // rma
		AwayExtRef:  "feed-83",   // fcb
		HomeGoals:   homeGoals,
		AwayGoals:   awayGoals,
		KickedOffAt: time.Date(2026, 9, 20, 19, 0, 0, 0, time.UTC),
		Status:      "final",
	}
}

func TestIngestResult_DuplicateDeliveryIsHarmless(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	created, err := f.svc.IngestResult(ctx, resultInput("m-1", 2, 1))
	require.NoError(t, err)
	require.True(t, created)

	// The feed redelivers with different figures; first write wins.
	created, err = f.svc.IngestResult(ctx, resultInput("m-1", 9, 9))
	require.NoError(t, err)
	require.False(t, created)

	stored, ok, err := f.results.GetByMatch(ctx, testLeague, "m-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, stored.HomeGoals)
	require.Equal(t, 1, stored.AwayGoals)
}

func TestIngestResult_Validation(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	missingMatch := resultInput("", 1, 0)
	_, err := f.svc.IngestResult(ctx, missingMatch)
	require.ErrorIs(t, err, ErrInvalidInput)

	missingRef := resultInput("m-1", 1, 0)
	missingRef.AwayExtRef = " "
	_, err = f.svc.IngestResult(ctx, missingRef)
	require.ErrorIs(t, err, ErrInvalidInput)

	negative := resultInput("m-1", -1, 0)
	_, err = f.svc.IngestResult(ctx, negative)
	require.ErrorIs(t, err, ErrInvalidInput)

	noKickoff := resultInput("m-1", 1, 0)
	noKickoff.KickedOffAt = time.Time{}
	_, err = f.svc.IngestResult(ctx, noKickoff)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcessPending_AwardsOutcomeAndGoalPoints(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.own(t, "mgr-ayu", "rma")
	f.own(t, "mgr-bima", "fcb")

	_, err := f.svc.IngestResult(ctx, resultInput("m-1", 2, 1))
	require.NoError(t, err)

	res, err := f.svc.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.Processed)
	require.Empty(t, res.Errors)

	// Home win: 3 outcome points + 2 goals. Away loss: 0 + 1 goal.
	ayu, err := f.points.ListByUser(ctx, testLeague, "mgr-ayu")
	require.NoError(t, err)
	require.Len(t, ayu, 1)
	require.Equal(t, 5, ayu[0].Points)
	require.Equal(t, 1, ayu[0].Matchday)
	require.Equal(t, points.StageGroup, ayu[0].Stage)

	bima, err := f.points.ListByUser(ctx, testLeague, "mgr-bima")
	require.NoError(t, err)
	require.Len(t, bima, 1)
	require.Equal(t, 1, bima[0].Points)
}

func TestProcessPending_DrawSplitsOutcomePoints(t *testing.T) {
	tests := []struct {
		name       string
		goals      int
		wantPoints int
	}{
		{"one all", 1, 2},
		{"goalless", 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newSettlementFixture(t)
			ctx := context.Background()
			f.own(t, "mgr-ayu", "rma")
			f.own(t, "mgr-bima", "fcb")

			_, err := f.svc.IngestResult(ctx, resultInput("m-1", tc.goals, tc.goals))
			require.NoError(t, err)

			_, err = f.svc.ProcessPending(ctx, 10)
			require.NoError(t, err)

			for _, userID := range []string{"mgr-ayu", "mgr-bima"} {
				rows, err := f.points.ListByUser(ctx, testLeague, userID)
				require.NoError(t, err)
				require.Len(t, rows, 1)
				require.Equal(t, tc.wantPoints, rows[0].Points, "user %s", userID)
			}
		})
	}
}

func TestProcessPending_SettlementFenceBlocksRescore(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.own(t, "mgr-ayu", "rma")

	// The match was already fenced, e.g. by a worker that crashed between
	// creating the settlement and retiring the intake record.
	created, err := f.settlements.Create(ctx, testLeague, "m-1", f.clock.Now())
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.svc.IngestResult(ctx, resultInput("m-1", 4, 0))
	require.NoError(t, err)

	res, err := f.svc.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.Processed)

	// No points were awarded and the record is retired.
	rows, err := f.points.ListByUser(ctx, testLeague, "mgr-ayu")
	require.NoError(t, err)
	require.Empty(t, rows)

	stored, _, err := f.results.GetByMatch(ctx, testLeague, "m-1")
	require.NoError(t, err)
	require.True(t, stored.Processed)

	// And a later pass sees nothing pending.
	res, err = f.svc.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Zero(t, res.Processed)
}

func TestProcessPending_RerunAwardsNothingTwice(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.own(t, "mgr-ayu", "rma")

	_, err := f.svc.IngestResult(ctx, resultInput("m-1", 3, 0))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = f.svc.ProcessPending(ctx, 10)
		require.NoError(t, err)
	}

	rows, err := f.points.ListByUser(ctx, testLeague, "mgr-ayu")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 6, rows[0].Points)
}

func TestProcessPending_UnmappedClubIsSkipped(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.own(t, "mgr-bima", "fcb")

	input := resultInput("m-1", 0, 2)
	input.HomeExtRef = "feed-unknown"
	_, err := f.svc.IngestResult(ctx, input)
	require.NoError(t, err)

	res, err := f.svc.ProcessPending(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.Processed)
	require.Empty(t, res.Errors)

	// The mapped away side still scored: 3 outcome + 2 goals.
	rows, err := f.points.ListByUser(ctx, testLeague, "mgr-bima")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 5, rows[0].Points)
}

func TestProcessPending_OldestReceiptFirst(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.own(t, "mgr-ayu", "rma")

	_, err := f.svc.IngestResult(ctx, resultInput("m-early", 1, 0))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.svc.IngestResult(ctx, resultInput("m-late", 2, 0))
	require.NoError(t, err)

	res, err := f.svc.ProcessPending(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, res.Processed)

	settled, err := f.settlements.Exists(ctx, testLeague, "m-early")
	require.NoError(t, err)
	require.True(t, settled)

	settled, err = f.settlements.Exists(ctx, testLeague, "m-late")
	require.NoError(t, err)
	require.False(t, settled)
}

func TestProcessPending_KnockoutKickoffLandsInKnockoutBucket(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()
	f.own(t, "mgr-ayu", "rma")

	input := resultInput("m-r16", 1, 0)
	input.KickedOffAt = testSeasonStart.AddDate(0, 0, 90)
	_, err := f.svc.IngestResult(ctx, input)
	require.NoError(t, err)

	_, err = f.svc.ProcessPending(ctx, 10)
	require.NoError(t, err)

	rows, err := f.points.ListByUser(ctx, testLeague, "mgr-ayu")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 7, rows[0].Matchday)
	require.Equal(t, points.StageRoundOf16, rows[0].Stage)
}
