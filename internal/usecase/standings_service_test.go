package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clubroyale/auction-league/internal/domain/points"
	"github.com/clubroyale/auction-league/internal/domain/result"
	"github.com/clubroyale/auction-league/internal/infrastructure/repository/memory"
)

func seedPoints(t *testing.T, repo *memory.PointsRepository, userID, matchID string, pts int) {
	t.Helper()
	require.NoError(t, repo.Upsert(context.Background(), points.MatchPoints{
		LeagueID: testLeague,
		UserID:   userID,
		MatchID:  matchID,
		Matchday: 1,
		Stage:    points.StageGroup,
		Points:   pts,
	}))
}

func TestLeagueStandings_RanksByTotalDescending(t *testing.T) {
	pointsRepo := memory.NewPointsRepository()
	svc := NewStandingsService(pointsRepo, memory.NewRosterRepository(memory.SeedManagers()), memory.NewResultRepository())
	ctx := context.Background()

	seedPoints(t, pointsRepo, "mgr-bima", "m-1", 5)
	seedPoints(t, pointsRepo, "mgr-bima", "m-2", 2)
	seedPoints(t, pointsRepo, "mgr-ayu", "m-1", 1)
	seedPoints(t, pointsRepo, "mgr-dewi", "m-2", 1)

	rows, err := svc.LeagueStandings(ctx, testLeague)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	require.Equal(t, 1, rows[0].Rank)
	require.Equal(t, "mgr-bima", rows[0].UserID)
	require.Equal(t, "Bima", rows[0].DisplayName)
	require.Equal(t, 7, rows[0].TotalPoints)

	// Ayu and Dewi tie on 1 point; user id breaks the tie deterministically.
	require.Equal(t, "mgr-ayu", rows[1].UserID)
	require.Equal(t, "mgr-dewi", rows[2].UserID)

	// Managers without any scored match still appear, at zero.
	require.Equal(t, "mgr-candra", rows[3].UserID)
	require.Zero(t, rows[3].TotalPoints)
	require.Equal(t, 4, rows[3].Rank)
}

func TestLeagueStandings_UnknownLeague(t *testing.T) {
	svc := NewStandingsService(memory.NewPointsRepository(), memory.NewRosterRepository(nil), memory.NewResultRepository())

	_, err := svc.LeagueStandings(context.Background(), "no-such-league")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.LeagueStandings(context.Background(), "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserMatchHistory_JoinsResultsNewestFirst(t *testing.T) {
	pointsRepo := memory.NewPointsRepository()
	results := memory.NewResultRepository()
	svc := NewStandingsService(pointsRepo, memory.NewRosterRepository(memory.SeedManagers()), results)
	ctx := context.Background()

	earlier := time.Date(2026, 9, 16, 19, 0, 0, 0, time.UTC)
	later := time.Date(2026, 9, 20, 21, 0, 0, 0, time.UTC)

	for _, res := range []result.MatchResult{
		{LeagueID: testLeague, MatchID: "m-1", HomeExtRef: "feed-3468", AwayExtRef: "feed-83", HomeGoals: 2, AwayGoals: 1, KickedOffAt: earlier},
		{LeagueID: testLeague, MatchID: "m-2", HomeExtRef: "feed-83", AwayExtRef: "feed-3468", HomeGoals: 0, AwayGoals: 0, KickedOffAt: later},
	} {
		created, err := results.InsertIfAbsent(ctx, res)
		require.NoError(t, err)
		require.True(t, created)
	}
	seedPoints(t, pointsRepo, "mgr-ayu", "m-1", 5)
	seedPoints(t, pointsRepo, "mgr-ayu", "m-2", 1)

	rows, err := svc.UserMatchHistory(ctx, testLeague, "mgr-ayu")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "m-2", rows[0].MatchID)
	require.True(t, rows[0].KickedOffAt.Equal(later))
	require.Equal(t, 1, rows[0].Points)

	require.Equal(t, "m-1", rows[1].MatchID)
	require.Equal(t, "feed-3468", rows[1].HomeExtRef)
	require.Equal(t, 2, rows[1].HomeGoals)
	require.Equal(t, 5, rows[1].Points)
}

func TestUserMatchHistory_NoPointsYieldsEmpty(t *testing.T) {
	svc := NewStandingsService(memory.NewPointsRepository(), memory.NewRosterRepository(memory.SeedManagers()), memory.NewResultRepository())

	rows, err := svc.UserMatchHistory(context.Background(), testLeague, "mgr-ayu")
	require.NoError(t, err)
	require.Empty(t, rows)
}
