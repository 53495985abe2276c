package postgres

import (
	"time"

	"github.com/clubroyale/auction-league/internal/domain/result"
)

type matchResultTableModel struct {
	LeagueID    string    `db:"league_id"`
	MatchID     string    `db:"match_id"`
	Season      string    `db:"season"`
	HomeExtRef  string    `db:"home_ext_ref"`
	AwayExtRef  string    `db:"away_ext_ref"`
	HomeGoals   int       `db:"home_goals"`
	AwayGoals   int       `db:"away_goals"`
	KickedOffAt time.Time `db:"kicked_off_at"`
	Status      string    `db:"status"`
	ReceivedAt  time.Time `db:"received_at"`
	Processed   bool      `db:"processed"`
}

func (m matchResultTableModel) toDomain() result.MatchResult {
	return result.MatchResult{
		LeagueID:    m.LeagueID,
		MatchID:     m.MatchID,
		Season:      m.Season,
		HomeExtRef:  m.HomeExtRef,
		AwayExtRef:  m.AwayExtRef,
		HomeGoals:   m.HomeGoals,
		AwayGoals:   m.AwayGoals,
		KickedOffAt: m.KickedOffAt,
		Status:      m.Status,
		ReceivedAt:  m.ReceivedAt,
		Processed:   m.Processed,
	}
}
