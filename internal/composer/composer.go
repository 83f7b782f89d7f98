// Package composer decides one planned weekly load per microcycle by
// blending the block's target range, the rolling prior-week baseline,
// and any active demand floor, then forcing the result through the two
// safety caps. Caps are hard inequalities: demand pressure above a cap
// is recorded in metadata, never applied.
package composer

import (
	"math"

	"traincast/internal/calibration"
	"traincast/internal/models"
	"traincast/internal/simulator"
	"traincast/internal/timeline"
)

// Input is everything one week's decision needs.
type Input struct {
	Week           timeline.Week
	PriorWeekTSS   float64 // previous week's planned load, 0 when none
	SeedBaseline   float64 // week-1 baseline when no prior week exists
	FloorWeeklyTSS float64 // active demand floor, 0 when inactive
	State          simulator.State
	Config         models.SafetyConfig
	Set            calibration.Settings
}

// Decision is the composed load plus full clamp metadata.
type Decision struct {
	PlannedTSS  float64
	TSSRamp     models.ClampMeta
	CTLRamp     models.ClampMeta
	FloorPulled bool
}

// Compose blends the context into a single requested load and caps it.
// The blend is deliberately not a plain mean: rolling and demand
// context dominate the static block range whenever they are present.
func Compose(in Input) Decision {
	baseline := in.PriorWeekTSS
	if baseline <= 0 {
		baseline = in.SeedBaseline
	}

	base := baseline
	if in.Week.Block != nil && in.Week.Block.TargetWeeklyTSSRange != nil {
		mid := in.Week.Block.TargetWeeklyTSSRange.Mid()
		base = in.Set.RangeMidBlendWeight*mid + in.Set.BaselineBlendWeight*baseline
	}

	floorPulled := false
	if in.FloorWeeklyTSS > base {
		base += in.Set.FloorPullFraction * (in.FloorWeeklyTSS - base)
		floorPulled = true
	}

	requested := base * in.Week.Multiplier
	applied, tssMeta, ctlMeta := ApplyCaps(requested, baseline, in.State, in.Config, in.Set)
	return Decision{
		PlannedTSS:  applied,
		TSSRamp:     tssMeta,
		CTLRamp:     ctlMeta,
		FloorPulled: floorPulled,
	}
}

// ApplyCaps runs a requested weekly load through both safety caps in
// order: the week-over-week percentage ramp, then the CTL-ramp bound
// derived from the load's impulse on the simulated fitness state. The
// optimizer reuses this so no candidate can escape either cap.
func ApplyCaps(requested, prevWeekTSS float64, st simulator.State, cfg models.SafetyConfig, set calibration.Settings) (float64, models.ClampMeta, models.ClampMeta) {
	if requested < 0 || math.IsNaN(requested) {
		requested = 0
	}

	applied := requested
	tssMeta := models.ClampMeta{Requested: requested, Applied: requested}
	if prevWeekTSS > 0 {
		maxTSS := prevWeekTSS * (1 + cfg.MaxWeeklyTSSRampPct/100)
		tssMeta.Max = maxTSS
		if applied > maxTSS {
			applied = maxTSS
			tssMeta.Clamped = true
		}
		tssMeta.Applied = applied
	}

	ctlMeta := models.ClampMeta{Requested: applied, Applied: applied}
	maxLoad := simulator.MaxWeeklyLoadForCTLRamp(st, cfg.MaxCTLRampPerWeek, set)
	ctlMeta.Max = maxLoad
	if applied > maxLoad {
		applied = maxLoad
		ctlMeta.Clamped = true
	}
	ctlMeta.Applied = applied

	if applied < 0 {
		applied = 0
		ctlMeta.Applied = 0
	}
	return applied, tssMeta, ctlMeta
}
