// Package scoring turns projected capability into goal and plan
// verdicts: per-target attainment scores, per-goal difficulty indexes,
// and the plan-level aggregation.
package scoring

import (
	"math"
	"sort"

	"traincast/internal/models"
	"traincast/internal/nohistory"
)

// Rationale codes attached to target scores.
const (
	CodeInferredFromReadiness = "projection_inferred_from_readiness"
	CodeAbovePlausibleCap     = "target_demand_above_plausible_cap"
)

// implausibleScoreCap keeps implausible demand from ever reaching full
// credit, however confident the evidence.
const implausibleScoreCap = 35.0

// Projection is the projected capability context a target is scored
// against.
type Projection struct {
	PeakWeeklyTSS  float64 // applied peak weekly load over the plan
	PeakCTL        float64
	ReadinessScore float64 // 0..100
	Confidence     float64 // 0..100
}

// ScoreTargetSatisfaction scores one target against the projection,
// 0..100. Race targets score directly against the load projection;
// threshold targets without a direct projection fall back to a
// readiness-inferred capability, flagged as such.
func ScoreTargetSatisfaction(t models.Target, proj Projection) models.TargetScore {
	out := models.TargetScore{
		Kind:   t.Kind,
		Weight: t.EffectiveWeight(),
	}
	tol := toleranceBand(proj.Confidence)

	switch t.Kind {
	case models.TargetRacePerformance:
		if t.Race == nil {
			out.Score = 0
			return out
		}
		out.RequiredValue = nohistory.RequiredPeakWeeklyLoad(t.Race.DistanceM, t.Race.TargetTimeS)
		out.ProjectedValue = proj.PeakWeeklyTSS
		out.Score = attainment(out.ProjectedValue, out.RequiredValue, tol)
		if nohistory.AbovePlausibleCap(t.Race.DistanceM, t.Race.TargetTimeS) {
			out.Score = math.Min(out.Score, implausibleScoreCap)
			out.RationaleCodes = append(out.RationaleCodes, CodeAbovePlausibleCap)
		}

	case models.TargetPowerThreshold:
		if t.Power == nil {
			out.Score = 0
			return out
		}
		out.RequiredValue = t.Power.TargetWatts
		out.ProjectedValue = inferredCapability(out.RequiredValue, proj.ReadinessScore)
		out.Score = attainment(out.ProjectedValue, out.RequiredValue, tol)
		out.RationaleCodes = append(out.RationaleCodes, CodeInferredFromReadiness)
		if t.Power.TargetWatts > 550 {
			out.Score = math.Min(out.Score, implausibleScoreCap)
			out.RationaleCodes = append(out.RationaleCodes, CodeAbovePlausibleCap)
		}

	case models.TargetPaceThreshold:
		if t.Pace == nil {
			out.Score = 0
			return out
		}
		out.RequiredValue = t.Pace.TargetSpeedMps
		out.ProjectedValue = inferredCapability(out.RequiredValue, proj.ReadinessScore)
		out.Score = attainment(out.ProjectedValue, out.RequiredValue, tol)
		out.RationaleCodes = append(out.RationaleCodes, CodeInferredFromReadiness)
		// A pace held for the test duration implies a race-equivalent
		// effort; reuse the race plausibility curve.
		dist := t.Pace.TargetSpeedMps * t.Pace.TestDurationS
		if dist > 0 && nohistory.AbovePlausibleCap(dist, t.Pace.TestDurationS) {
			out.Score = math.Min(out.Score, implausibleScoreCap)
			out.RationaleCodes = append(out.RationaleCodes, CodeAbovePlausibleCap)
		}

	case models.TargetHRThreshold:
		if t.HR == nil {
			out.Score = 0
			return out
		}
		out.RequiredValue = t.HR.TargetLTHRBpm
		out.ProjectedValue = inferredCapability(out.RequiredValue, proj.ReadinessScore)
		out.Score = attainment(out.ProjectedValue, out.RequiredValue, tol)
		out.RationaleCodes = append(out.RationaleCodes, CodeInferredFromReadiness)
		if t.HR.TargetLTHRBpm > 205 {
			out.Score = math.Min(out.Score, implausibleScoreCap)
			out.RationaleCodes = append(out.RationaleCodes, CodeAbovePlausibleCap)
		}

	default:
		out.Score = 0
	}

	out.Score = clampScore(out.Score)
	sort.Strings(out.RationaleCodes)
	return out
}

// attainment is the distribution-aware utility: full credit at or
// above the requirement, smooth decay inside the tolerance band, sharp
// decay beyond it. Strictly decreasing in the requirement once the
// projection falls short.
func attainment(projected, required, tol float64) float64 {
	if required <= 0 || math.IsNaN(required) {
		return 100
	}
	if math.IsNaN(projected) || projected < 0 {
		projected = 0
	}
	gap := (required - projected) / required
	if gap <= 0 {
		return 100
	}
	if gap <= tol {
		return 100 - 30*(gap/tol)
	}
	return 70 * math.Exp(-4*(gap-tol))
}

// toleranceBand widens with falling confidence: an uncertain
// projection gets a gentler shoulder before the sharp decay.
func toleranceBand(confidence float64) float64 {
	c := clampScore(confidence) / 100
	return 0.04 + 0.10*(1-c)
}

// inferredCapability maps plan readiness onto the target's own scale
// when no direct projection of that quantity exists. Readiness around
// the mid-80s reaches the requirement.
func inferredCapability(required, readiness float64) float64 {
	return required * (0.5 + 0.6*clampScore(readiness)/100)
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
