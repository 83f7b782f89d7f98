package scoring

import (
	"math"

	"traincast/internal/calibration"
	"traincast/internal/models"
)

// GoalGDIInput bundles the measured gaps for one goal.
type GoalGDIInput struct {
	Goal                  models.Goal
	TargetScores          []models.TargetScore
	RequiredPeakWeeklyTSS float64
	AppliedPeakWeeklyTSS  float64
	WeeksAvailable        int
	WeeksNeeded           float64
	EvidenceConfidence    float64 // 0..100
	HistorySparse         bool
}

// GoalGDI is the per-goal difficulty verdict.
type GoalGDI struct {
	GoalID           string
	Priority         int
	PerformanceGap   float64 // 0..1
	LoadGap          float64 // 0..1
	TimelinePressure float64 // 0..1
	SparsityPenalty  float64 // 0..1
	GDI              float64 // 0..1 after clamp
	Band             models.FeasibilityBand
}

// ComputeGoalGDI combines the four gap components with fixed weights.
// Each component is clamped to [0,1] before weighting; the weighted
// sum can reach ~1.45 and is clamped to [0,1] at the end.
func ComputeGoalGDI(in GoalGDIInput, set calibration.Settings) GoalGDI {
	out := GoalGDI{GoalID: in.Goal.ID, Priority: in.Goal.Priority}

	var scoreAcc, weightAcc float64
	for _, ts := range in.TargetScores {
		scoreAcc += ts.Score * ts.Weight
		weightAcc += ts.Weight
	}
	if weightAcc > 0 {
		out.PerformanceGap = clamp01(1 - scoreAcc/weightAcc/100)
	}

	if in.RequiredPeakWeeklyTSS > 0 {
		out.LoadGap = clamp01((in.RequiredPeakWeeklyTSS - in.AppliedPeakWeeklyTSS) / in.RequiredPeakWeeklyTSS)
	}

	if in.WeeksNeeded > 0 {
		out.TimelinePressure = clamp01(1 - float64(in.WeeksAvailable)/in.WeeksNeeded)
	}

	if in.HistorySparse {
		out.SparsityPenalty = clamp01(1 - in.EvidenceConfidence/100)
	}

	gdi := set.GDIPerformanceGapWeight*out.PerformanceGap +
		set.GDILoadGapWeight*out.LoadGap +
		set.GDITimelinePressureWeight*out.TimelinePressure +
		set.GDISparsityWeight*out.SparsityPenalty
	out.GDI = clamp01(gdi)
	out.Band = MapGDIToFeasibilityBand(out.GDI)
	return out
}

// MapGDIToFeasibilityBand buckets a difficulty index. Boundaries are
// strict lower bounds: 0.30 is already stretch, 0.75 already
// nearly_impossible.
func MapGDIToFeasibilityBand(gdi float64) models.FeasibilityBand {
	switch {
	case gdi < 0.30:
		return models.BandFeasible
	case gdi < 0.50:
		return models.BandStretch
	case gdi < 0.75:
		return models.BandAggressive
	case gdi < 0.90:
		return models.BandNearlyImpossible
	default:
		return models.BandInfeasible
	}
}

// PlanGDI is the plan-level aggregation.
type PlanGDI struct {
	GDI  float64
	Band models.FeasibilityBand
}

// ComputePlanGDI aggregates goal difficulty with a worst-case guard
// for the highest-priority goals: the plan can never look easier than
// its top-priority ("A") goals taken together. Equal-priority A goals
// aggregate at equal pressure (arithmetic mean); lower-priority goals
// contribute through a priority-weighted mean.
func ComputePlanGDI(goals []GoalGDI) PlanGDI {
	if len(goals) == 0 {
		return PlanGDI{GDI: 0, Band: models.BandFeasible}
	}

	top := goals[0].Priority
	for _, g := range goals[1:] {
		if g.Priority < top {
			top = g.Priority
		}
	}

	var topSum float64
	var topN int
	var wSum, wAcc float64
	for _, g := range goals {
		if g.Priority == top {
			topSum += g.GDI
			topN++
		}
		w := 1.0 / float64(maxInt(g.Priority, 1))
		wAcc += g.GDI * w
		wSum += w
	}
	topMean := topSum / float64(topN)
	overall := wAcc / wSum

	gdi := clamp01(math.Max(topMean, overall))
	return PlanGDI{GDI: gdi, Band: MapGDIToFeasibilityBand(gdi)}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
