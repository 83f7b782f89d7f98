// Package envelope judges whether a projected load sequence is
// physiologically plausible and folds everything into the composite
// readiness verdict.
package envelope

import (
	"math"

	"traincast/internal/calibration"
	"traincast/internal/models"
)

// Limiting-factor codes.
const (
	LimitOverHigh = "over_high"
	LimitUnderLow = "under_low"
	LimitOverRamp = "over_ramp"
)

// Dominant-limiter codes for feasibility metadata.
const (
	LimiterRequiredGrowthExceedsCaps = "required_growth_exceeds_caps"
	LimiterTSSRampCapPressure        = "tss_ramp_cap_pressure"
	LimiterCTLRampCapPressure        = "ctl_ramp_cap_pressure"
)

// ComputeCapacityEnvelope scores weekly loads against bounds scaled by
// starting fitness and evidence strength. The score decreases
// monotonically as loads or ramps move further outside the bounds.
func ComputeCapacityEnvelope(weeklyTSS []float64, startCTL, evidenceConfidence float64, cfg models.SafetyConfig) models.CapacityEnvelope {
	startWeekly := math.Max(startCTL*7, 120)
	conf := clampScore(evidenceConfidence) / 100
	low := startWeekly * 0.45
	high := startWeekly*(1.35+0.45*conf) + 60

	out := models.CapacityEnvelope{
		Score:         100,
		State:         models.EnvelopeInside,
		LowWeeklyTSS:  low,
		HighWeeklyTSS: high,
	}
	if len(weeklyTSS) == 0 {
		return out
	}

	var maxOver, maxUnder, maxRampExcess, maxRampPct float64
	prev := 0.0
	for i, w := range weeklyTSS {
		if w > high && high > 0 {
			maxOver = math.Max(maxOver, (w-high)/high)
		}
		if w < low && low > 0 {
			maxUnder = math.Max(maxUnder, (low-w)/low)
		}
		if i > 0 && prev > 0 && w > prev {
			ramp := (w/prev - 1) * 100
			maxRampPct = math.Max(maxRampPct, ramp)
			if ramp > cfg.MaxWeeklyTSSRampPct {
				maxRampExcess = math.Max(maxRampExcess, (ramp-cfg.MaxWeeklyTSSRampPct)/100)
			}
		}
		prev = w
	}
	out.MaxObservedRampPct = round1(maxRampPct)

	if maxOver > 0 {
		out.LimitingFactors = append(out.LimitingFactors, LimitOverHigh)
	}
	if maxRampExcess > 0 {
		out.LimitingFactors = append(out.LimitingFactors, LimitOverRamp)
	}
	if maxUnder > 0 {
		out.LimitingFactors = append(out.LimitingFactors, LimitUnderLow)
	}

	out.Score = clampScore(100 - 60*maxOver - 30*maxUnder - 120*maxRampExcess)
	switch {
	case out.Score >= 85 && len(out.LimitingFactors) == 0:
		out.State = models.EnvelopeInside
	case out.Score >= 60:
		out.State = models.EnvelopeEdge
	default:
		out.State = models.EnvelopeOutside
	}
	return out
}

// ComputeDurabilityScore penalizes monotonous loading and excessive
// cumulative strain. Monotony is the Foster index (mean over standard
// deviation of weekly load); strain is monotony times total load.
func ComputeDurabilityScore(weeklyTSS []float64) float64 {
	n := len(weeklyTSS)
	if n < 2 {
		return 100
	}
	var sum float64
	for _, w := range weeklyTSS {
		sum += w
	}
	mean := sum / float64(n)
	var varAcc float64
	for _, w := range weeklyTSS {
		varAcc += (w - mean) * (w - mean)
	}
	std := math.Sqrt(varAcc / float64(n))

	monotony := 8.0 // flat plans are maximally monotonous
	if std > 0 {
		monotony = mean / std
	}
	strain := monotony * sum

	score := 100.0
	if monotony > 2.0 {
		score -= 10 * (monotony - 2.0)
	}
	if strain > 30000 {
		score -= (strain - 30000) / 1500
	}
	return clampScore(score)
}

// ComputeCompositeReadiness blends the four component scores with the
// calibrated weights. Deterministic: no randomness, no clock.
func ComputeCompositeReadiness(attainment, durability, evidence, envelopeScore float64, set calibration.Settings) (score, confidence float64) {
	score = set.CompositeAttainmentWeight*clampScore(attainment) +
		set.CompositeDurabilityWeight*clampScore(durability) +
		set.CompositeEvidenceWeight*clampScore(evidence) +
		set.CompositeEnvelopeWeight*clampScore(envelopeScore)
	confidence = 0.6*clampScore(evidence) + 0.4*clampScore(envelopeScore)
	return clampScore(score), clampScore(confidence)
}

// ComputeProjectionFeasibilityMetadata derives the readiness band and
// dominant limiters from required-vs-applied peak load and clamp-week
// counts, plus an uncertainty interval that widens as evidence
// confidence falls.
func ComputeProjectionFeasibilityMetadata(requiredPeak, appliedPeak float64, tssClampWeeks, ctlClampWeeks int, evidenceConfidence float64) models.FeasibilityMetadata {
	ratio := 1.0
	if requiredPeak > 0 {
		ratio = appliedPeak / requiredPeak
	}

	var limiters []string
	if ratio < 0.95 && tssClampWeeks+ctlClampWeeks > 0 {
		limiters = append(limiters, LimiterRequiredGrowthExceedsCaps)
	}
	if tssClampWeeks >= 2 {
		limiters = append(limiters, LimiterTSSRampCapPressure)
	}
	if ctlClampWeeks >= 2 {
		limiters = append(limiters, LimiterCTLRampCapPressure)
	}

	band := models.ReadinessLow
	switch {
	case ratio >= 0.95:
		band = models.ReadinessHigh
	case ratio >= 0.80:
		band = models.ReadinessMedium
	}

	conf := clampScore(evidenceConfidence) / 100
	half := (0.02 + 0.18*(1-conf)) * appliedPeak
	return models.FeasibilityMetadata{
		ReadinessBand:         band,
		DominantLimiters:      limiters,
		RequiredPeakWeeklyTSS: requiredPeak,
		AppliedPeakWeeklyTSS:  appliedPeak,
		PeakLoadInterval: models.UncertaintyInterval{
			Low:  math.Max(0, appliedPeak-half),
			High: appliedPeak + half,
		},
	}
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

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
