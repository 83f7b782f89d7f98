// Package nohistory infers a starting-fitness floor and evidence
// confidence when completed-activity history is absent or sparse.
package nohistory

import (
	"math"

	"traincast/internal/models"
)

// Floor is the resolved starting floor. The weekly floor is always
// round(ctl * 7): the floor assumes a steady-state athlete whose daily
// load equals their CTL.
type Floor struct {
	StartCTLFloor       float64
	StartWeeklyTSSFloor float64
}

// floorMatrix is the canonical (goal tier x fitness level) CTL floor
// lookup. Values are conservative steady-state CTLs.
var floorMatrix = map[models.GoalTier]map[models.FitnessLevel]float64{
	models.TierLow: {
		models.LevelWeak:     20,
		models.LevelModerate: 26,
		models.LevelStrong:   32,
	},
	models.TierModerate: {
		models.LevelWeak:     27,
		models.LevelModerate: 33,
		models.LevelStrong:   40,
	},
	models.TierHigh: {
		models.LevelWeak:     35,
		models.LevelModerate: 42,
		models.LevelStrong:   50,
	},
	models.TierExtreme: {
		models.LevelWeak:     42,
		models.LevelModerate: 50,
		models.LevelStrong:   58,
	},
}

// DeriveProjectionFloor looks up the starting floor for a goal tier
// and inferred fitness level. Unknown keys fall back to the most
// conservative row/column.
func DeriveProjectionFloor(tier models.GoalTier, level models.FitnessLevel) Floor {
	row, ok := floorMatrix[tier]
	if !ok {
		row = floorMatrix[models.TierModerate]
	}
	ctl, ok := row[level]
	if !ok {
		ctl = row[models.LevelWeak]
	}
	return Floor{
		StartCTLFloor:       ctl,
		StartWeeklyTSSFloor: math.Round(ctl * 7),
	}
}

// InferGoalTier buckets goals by their peak weekly-load demand. Goals
// without race targets land on the moderate default.
func InferGoalTier(goals []models.Goal) models.GoalTier {
	peak := 0.0
	for _, g := range goals {
		for _, t := range g.Targets {
			if t.Kind == models.TargetRacePerformance && t.Race != nil {
				d := RequiredPeakWeeklyLoad(t.Race.DistanceM, t.Race.TargetTimeS)
				if d > peak {
					peak = d
				}
			}
		}
	}
	switch {
	case peak == 0:
		return models.TierModerate
	case peak < 220:
		return models.TierLow
	case peak < 280:
		return models.TierModerate
	case peak < 340:
		return models.TierHigh
	default:
		return models.TierExtreme
	}
}
