package points

import "time"

// MatchPoints is one scoring event for one (league, user, match). Re-running
// settlement for the same key overwrites the row instead of duplicating it.
type MatchPoints struct {
	LeagueID  string
	UserID    string
	MatchID   string
	Matchday  int
	Stage     string
	Points    int
	CreatedAt time.Time
}
