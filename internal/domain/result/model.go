package result

import "time"

// MatchResult is one externally reported match fact, keyed by
// (LeagueID, MatchID). A second delivery of the same key never creates a
// duplicate; only Processed is ever mutated after creation.
type MatchResult struct {
	LeagueID    string
	MatchID     string
	Season      string
	HomeExtRef  string
	AwayExtRef  string
	HomeGoals   int
	AwayGoals   int
	KickedOffAt time.Time
	Status      string
	ReceivedAt  time.Time
	Processed   bool
}

// Settlement is the idempotency fence for one (league, match) pair. Its
// existence means the match was scored; it is never mutated or deleted.
type Settlement struct {
	LeagueID    string
	MatchID     string
	ProcessedAt time.Time
}
