package models

import "time"

// Timeline bounds the projection horizon. Start must not be after End.
type Timeline struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// TSSRange is a min/max band of weekly training stress
type TSSRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid returns the midpoint of the range.
func (r TSSRange) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// Block is a periodization block. Blocks are contiguous and ordered;
// each planning week belongs to exactly one block.
type Block struct {
	Name                 string     `json:"name"`
	Phase                BlockPhase `json:"phase"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	TargetWeeklyTSSRange *TSSRange  `json:"target_weekly_tss_range,omitempty"`
}

// Contains reports whether d falls inside the block span (inclusive).
func (b Block) Contains(d time.Time) bool {
	return !d.Before(b.StartDate) && !d.After(b.EndDate)
}

// Calibration carries optional overrides for the engine's fixed
// constants. Composite weights must sum to 1 when supplied.
type Calibration struct {
	CompositeAttainmentWeight *float64 `json:"composite_attainment_weight,omitempty" yaml:"composite_attainment_weight,omitempty"`
	CompositeDurabilityWeight *float64 `json:"composite_durability_weight,omitempty" yaml:"composite_durability_weight,omitempty"`
	CompositeEvidenceWeight   *float64 `json:"composite_evidence_weight,omitempty" yaml:"composite_evidence_weight,omitempty"`
	CompositeEnvelopeWeight   *float64 `json:"composite_envelope_weight,omitempty" yaml:"composite_envelope_weight,omitempty"`

	RangeMidBlendWeight *float64 `json:"range_mid_blend_weight,omitempty" yaml:"range_mid_blend_weight,omitempty"`
	BaselineBlendWeight *float64 `json:"baseline_blend_weight,omitempty" yaml:"baseline_blend_weight,omitempty"`
	FloorPullFraction   *float64 `json:"floor_pull_fraction,omitempty" yaml:"floor_pull_fraction,omitempty"`

	EventMultiplier *float64 `json:"event_multiplier,omitempty" yaml:"event_multiplier,omitempty"`
}

// CreationConfig is the caller-supplied projection configuration.
// Nil pointer fields mean "use the normalized default".
type CreationConfig struct {
	OptimizationProfile  OptimizationProfile `json:"optimization_profile,omitempty"`
	PostGoalRecoveryDays *int                `json:"post_goal_recovery_days,omitempty"`
	MaxWeeklyTSSRampPct  *float64            `json:"max_weekly_tss_ramp_pct,omitempty"`
	MaxCTLRampPerWeek    *float64            `json:"max_ctl_ramp_per_week,omitempty"`
	Calibration          *Calibration        `json:"calibration,omitempty"`
}

// SafetyConfig is CreationConfig after normalization: every field
// concrete, every value inside its hard invariant bounds.
type SafetyConfig struct {
	OptimizationProfile  OptimizationProfile `json:"optimization_profile"`
	PostGoalRecoveryDays int                 `json:"post_goal_recovery_days"`
	MaxWeeklyTSSRampPct  float64             `json:"max_weekly_tss_ramp_pct"`
	MaxCTLRampPerWeek    float64             `json:"max_ctl_ramp_per_week"`
}

// StartingState is the athlete's fitness state at plan start. ATL is
// not forced equal to CTL unless the no-history floor seeds it.
type StartingState struct {
	StartingCTL *float64 `json:"starting_ctl,omitempty"`
	StartingATL *float64 `json:"starting_atl,omitempty"`
	StartingTSB *float64 `json:"starting_tsb,omitempty"`
}

// AvailabilityConstraints describe how much training time actually
// exists in the athlete's week.
type AvailabilityConstraints struct {
	TrainingDaysPerWeek         int   `json:"training_days_per_week"`
	HardRestDays                []int `json:"hard_rest_days,omitempty"` // 1=Mon .. 7=Sun
	MaxSessionMinutes           int   `json:"max_session_minutes,omitempty"`
	UserMinSessionsPerWeek      *int  `json:"user_min_sessions_per_week,omitempty"`
	SuggestedMinSessionsPerWeek *int  `json:"suggested_min_sessions_per_week,omitempty"`
}

// NoHistoryContext is the optional evidence bundle used when completed
// activity history is absent or sparse.
type NoHistoryContext struct {
	HistoryAvailability HistoryAvailability      `json:"history_availability"`
	GoalTier            GoalTier                 `json:"goal_tier,omitempty"`
	WeeksToEvent        int                      `json:"weeks_to_event,omitempty"`
	Consistency         *float64                 `json:"consistency,omitempty"`          // 0..1
	EffortConfidence    *float64                 `json:"effort_confidence,omitempty"`    // 0..1
	ProfileCompleteness *float64                 `json:"profile_completeness,omitempty"` // 0..1
	SignalQuality       *float64                 `json:"signal_quality,omitempty"`       // 0..1
	Availability        *AvailabilityConstraints `json:"availability,omitempty"`
	StartingCTLOverride *float64                 `json:"starting_ctl_override,omitempty"`
	ContextSummary      string                   `json:"context_summary,omitempty"`
}

// ProjectionRequest is the single inbound structure for the engine.
type ProjectionRequest struct {
	Timeline      Timeline          `json:"timeline"`
	Blocks        []Block           `json:"blocks"`
	Goals         []Goal            `json:"goals"`
	StartingState *StartingState    `json:"starting_state,omitempty"`
	Config        *CreationConfig   `json:"creation_config,omitempty"`
	NoHistory     *NoHistoryContext `json:"no_history,omitempty"`

	// DisableWeeklyTSSOptimizer keeps the naive capped-composer plan,
	// for diagnostic comparison against the optimized one.
	DisableWeeklyTSSOptimizer bool `json:"disable_weekly_tss_optimizer,omitempty"`
}
