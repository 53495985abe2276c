package points

import "time"

// Knockout stages are numbered after the six group-stage matchdays so the
// matchday column stays sortable across the whole season.
const (
	StageGroup        = "group"
	StageRoundOf16    = "round_of_16"
	StageQuarterFinal = "quarter_final"
	StageSemiFinal    = "semi_final"
	StageFinal        = "final"

	groupStageDays   = 12 * 7
	knockoutSpanDays = 30
)

// Bucket is the coarse time grouping attached to a scoring event. It is
// descriptive metadata for aggregation and display, never part of a
// uniqueness key.
type Bucket struct {
	Matchday int
	Stage    string
}

// BucketFor maps a kickoff date onto a matchday bucket relative to the
// season-start anchor: two-week group-stage buckets for the first twelve
// weeks, then fixed 30-day knockout windows.
func BucketFor(kickoff, seasonStart time.Time) Bucket {
	days := int(kickoff.Sub(seasonStart).Hours() / 24)
	if days < 0 {
		days = 0
	}

	if days < groupStageDays {
		return Bucket{Matchday: days/14 + 1, Stage: StageGroup}
	}

	switch (days - groupStageDays) / knockoutSpanDays {
	case 0:
		return Bucket{Matchday: 7, Stage: StageRoundOf16}
	case 1:
		return Bucket{Matchday: 8, Stage: StageQuarterFinal}
	case 2:
		return Bucket{Matchday: 9, Stage: StageSemiFinal}
	default:
		return Bucket{Matchday: 10, Stage: StageFinal}
	}
}
