package roster

// Manager is one participating user inside a league instance, with the
// budget the auction draws from.
type Manager struct {
	LeagueID    string
	UserID      string
	DisplayName string
	Budget      int64
}

// Holding records that a manager owns a club in a league. The same club can
// be owned by different users in different league instances.
type Holding struct {
	LeagueID string
	UserID   string
	ClubID   string
	Price    int64
}
