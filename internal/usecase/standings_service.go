package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/clubroyale/auction-league/internal/domain/points"
	"github.com/clubroyale/auction-league/internal/domain/result"
	"github.com/clubroyale/auction-league/internal/domain/roster"
)

// StandingRow is one leaderboard line: derived state, never stored.
type StandingRow struct {
	Rank        int
	UserID      string
	DisplayName string
	TotalPoints int
	Budget      int64
}

// MatchHistoryRow is one scored match for one user, joined against the
// intake record for display.
type MatchHistoryRow struct {
	MatchID     string
	Matchday    int
	Stage       string
	Points      int
	HomeExtRef  string
	AwayExtRef  string
	HomeGoals   int
	AwayGoals   int
	KickedOffAt time.Time
}

// StandingsService is the read path over the points ledger. It only
// aggregates; all writes belong to the settlement pipeline.
type StandingsService struct {
	points  points.Repository
	rosters roster.Repository
	results result.Repository
}

func NewStandingsService(pointsRepo points.Repository, rosters roster.Repository, results result.Repository) *StandingsService {
	return &StandingsService{
		points:  pointsRepo,
		rosters: rosters,
		results: results,
	}
}

// LeagueStandings sums every user's points and joins manager display data,
// sorted by total descending.
func (s *StandingsService) LeagueStandings(ctx context.Context, leagueID string) ([]StandingRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.LeagueStandings")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	managers, err := s.rosters.ListManagers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list managers: %w", err)
	}
	if len(managers) == 0 {
		return nil, fmt.Errorf("%w: league=%s has no managers", ErrNotFound, leagueID)
	}

	rows, err := s.points.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list league points: %w", err)
	}

	totals := make(map[string]int, len(managers))
	for _, row := range rows {
		totals[row.UserID] += row.Points
	}

	out := make([]StandingRow, 0, len(managers))
	for _, m := range managers {
		out = append(out, StandingRow{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			TotalPoints: totals[m.UserID],
			Budget:      m.Budget,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].UserID < out[j].UserID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// UserMatchHistory returns the per-match point breakdown for one user,
// newest kickoff first.
func (s *StandingsService) UserMatchHistory(ctx context.Context, leagueID, userID string) ([]MatchHistoryRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.UserMatchHistory")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	userID = strings.TrimSpace(userID)
	if leagueID == "" || userID == "" {
		return nil, fmt.Errorf("%w: league id and user id are required", ErrInvalidInput)
	}

	rows, err := s.points.ListByUser(ctx, leagueID, userID)
	if err != nil {
		return nil, fmt.Errorf("list user points: %w", err)
	}

	out := make([]MatchHistoryRow, 0, len(rows))
	for _, row := range rows {
		item := MatchHistoryRow{
			MatchID:  row.MatchID,
			Matchday: row.Matchday,
			Stage:    row.Stage,
			Points:   row.Points,
		}
		res, ok, err := s.results.GetByMatch(ctx, leagueID, row.MatchID)
		if err != nil {
			return nil, fmt.Errorf("get result for match %s: %w", row.MatchID, err)
		}
		if ok {
			item.HomeExtRef = res.HomeExtRef
			item.AwayExtRef = res.AwayExtRef
			item.HomeGoals = res.HomeGoals
			item.AwayGoals = res.AwayGoals
			item.KickedOffAt = res.KickedOffAt
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].KickedOffAt.After(out[j].KickedOffAt)
	})
	return out, nil
}
