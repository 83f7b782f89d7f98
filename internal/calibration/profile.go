package calibration

import "traincast/internal/models"

// ProfileBounds fixes how far the weekly optimizer may search for a
// given optimization profile. These are hard ceilings: requests beyond
// them are ignored, not honored.
type ProfileBounds struct {
	LookaheadWeeks   int
	CandidateCount   int     // odd, lattice centered on the composer seed
	CandidateStepPct float64 // lattice spacing as a fraction of the seed
	PenaltyScale     float64 // multiplies every objective penalty weight
}

// profileTable is the single place profile behavior lives. Dispatch is
// a lookup, not scattered conditionals, so each row is testable alone.
var profileTable = map[models.OptimizationProfile]ProfileBounds{
	models.ProfileSustainable: {
		LookaheadWeeks:   2,
		CandidateCount:   5,
		CandidateStepPct: 0.03,
		PenaltyScale:     1.4,
	},
	models.ProfileBalanced: {
		LookaheadWeeks:   4,
		CandidateCount:   9,
		CandidateStepPct: 0.04,
		PenaltyScale:     1.0,
	},
	models.ProfileOutcomeFirst: {
		LookaheadWeeks:   6,
		CandidateCount:   13,
		CandidateStepPct: 0.05,
		PenaltyScale:     0.7,
	},
}

// BoundsFor returns the search bounds for a profile, falling back to
// balanced for anything unrecognized.
func BoundsFor(profile models.OptimizationProfile) ProfileBounds {
	if b, ok := profileTable[profile]; ok {
		return b
	}
	return profileTable[models.ProfileBalanced]
}
