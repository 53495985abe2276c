package memory

import (
	"time"

	"github.com/clubroyale/auction-league/internal/domain/auction"
	"github.com/clubroyale/auction-league/internal/domain/club"
	"github.com/clubroyale/auction-league/internal/domain/roster"
)

const (
	demoLeagueID  = "ucl-royale-2026"
	demoAuctionID = "ucl-royale-2026-main"
)

// SeedClubs returns the demo club directory keyed to the feed's external
// references.
func SeedClubs() []club.Club {
	return []club.Club{
		{ID: "rma", Name: "Real Madrid", Short: "RMA", ExtRef: "feed-3468"},
		{ID: "fcb", Name: "FC Barcelona", Short: "FCB", ExtRef: "feed-83"},
		{ID: "mci", Name: "Manchester City", Short: "MCI", ExtRef: "feed-9825"},
		{ID: "fcbm", Name: "Bayern München", Short: "FCB-M", ExtRef: "feed-503"},
		{ID: "psg", Name: "Paris Saint-Germain", Short: "PSG", ExtRef: "feed-591"},
		{ID: "int", Name: "Inter", Short: "INT", ExtRef: "feed-2930"},
		{ID: "liv", Name: "Liverpool", Short: "LIV", ExtRef: "feed-8650"},
		{ID: "bvb", Name: "Borussia Dortmund", Short: "BVB", ExtRef: "feed-680"},
	}
}

func SeedManagers() []roster.Manager {
	return []roster.Manager{
		{LeagueID: demoLeagueID, UserID: "mgr-ayu", DisplayName: "Ayu", Budget: 500},
		{LeagueID: demoLeagueID, UserID: "mgr-bima", DisplayName: "Bima", Budget: 500},
		{LeagueID: demoLeagueID, UserID: "mgr-candra", DisplayName: "Candra", Budget: 500},
		{LeagueID: demoLeagueID, UserID: "mgr-dewi", DisplayName: "Dewi", Budget: 500},
	}
}

func SeedLots() []auction.Lot {
	timer := time.Now().Add(45 * time.Second)
	lots := make([]auction.Lot, 0, len(SeedClubs()))
	for i, c := range SeedClubs() {
		lot := auction.Lot{
			ID:        "lot-" + c.ID,
			AuctionID: demoAuctionID,
			LeagueID:  demoLeagueID,
			ClubID:    c.ID,
			Status:    auction.StatusPending,
		}
		if i == 0 {
			lot.Status = auction.StatusOpen
			lot.TimerEndsAt = &timer
		}
		lots = append(lots, lot)
	}
	return lots
}
