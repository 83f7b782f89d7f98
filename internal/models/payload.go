package models

import "time"

// ProjectionPoint is one daily sample of the projected trajectory.
type ProjectionPoint struct {
	Date             time.Time `json:"date"`
	PredictedLoadTSS float64   `json:"predicted_load_tss"`
	PredictedCTL     float64   `json:"predicted_fitness_ctl"`
	PredictedATL     float64   `json:"predicted_fatigue_atl"`
	PredictedTSB     float64   `json:"predicted_form_tsb"`
	ReadinessScore   float64   `json:"readiness_score"`
}

// TargetScore is the scored outcome for one goal target.
type TargetScore struct {
	Kind           TargetKind `json:"kind"`
	Score          float64    `json:"score"` // 0..100
	Weight         float64    `json:"weight"`
	ProjectedValue float64    `json:"projected_value"`
	RequiredValue  float64    `json:"required_value"`
	RationaleCodes []string   `json:"rationale_codes,omitempty"`
}

// GoalAssessment is the per-goal scoring summary.
type GoalAssessment struct {
	GoalID                 string          `json:"goal_id"`
	Priority               int             `json:"priority"`
	TargetScores           []TargetScore   `json:"target_scores"`
	GoalReadinessScore     float64         `json:"goal_readiness_score"`
	StateReadinessScore    float64         `json:"state_readiness_score"`
	GoalAlignmentLoss0_100 float64         `json:"goal_alignment_loss_0_100"`
	GDI                    float64         `json:"gdi"`
	FeasibilityBand        FeasibilityBand `json:"feasibility_band"`
}

// GoalMarker pins a goal onto the projected series.
type GoalMarker struct {
	GoalID         string    `json:"goal_id"`
	Name           string    `json:"name"`
	Date           time.Time `json:"date"`
	Priority       int       `json:"priority"`
	PredictedCTL   float64   `json:"predicted_fitness_ctl"`
	PredictedTSB   float64   `json:"predicted_form_tsb"`
	ReadinessScore float64   `json:"readiness_score"`
}

// RecoverySegment is a post-goal recovery window.
type RecoverySegment struct {
	ID              string    `json:"id"`
	GoalID          string    `json:"goal_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	ReductionFactor float64   `json:"reduction_factor"`
}

// ConstraintSummary reports the normalized configuration and how often
// the safety caps actually bit.
type ConstraintSummary struct {
	Config               SafetyConfig `json:"config"`
	TSSRampClampWeeks    int          `json:"tss_ramp_clamp_weeks"`
	CTLRampClampWeeks    int          `json:"ctl_ramp_clamp_weeks"`
	StartingCTL          float64      `json:"starting_ctl"`
	StartingATL          float64      `json:"starting_atl"`
	StartingTSB          float64      `json:"starting_tsb"`
	StartingStateIsPrior bool         `json:"starting_state_is_prior"`
}

// CapacityEnvelope is the plausibility verdict over the weekly loads.
type CapacityEnvelope struct {
	Score              float64       `json:"score"` // 0..100
	State              EnvelopeState `json:"envelope_state"`
	LimitingFactors    []string      `json:"limiting_factors,omitempty"`
	LowWeeklyTSS       float64       `json:"low_weekly_tss"`
	HighWeeklyTSS      float64       `json:"high_weekly_tss"`
	MaxObservedRampPct float64       `json:"max_observed_ramp_pct"`
}

// UncertaintyInterval bounds the projected peak weekly load.
type UncertaintyInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// FeasibilityMetadata summarizes required-vs-applied growth pressure.
type FeasibilityMetadata struct {
	ReadinessBand         ReadinessBand       `json:"readiness_band"`
	DominantLimiters      []string            `json:"dominant_limiters,omitempty"`
	RequiredPeakWeeklyTSS float64             `json:"required_peak_weekly_tss"`
	AppliedPeakWeeklyTSS  float64             `json:"applied_peak_weekly_tss"`
	PeakLoadInterval      UncertaintyInterval `json:"peak_load_interval"`
}

// NoHistoryResult is everything the floor resolver decided.
type NoHistoryResult struct {
	Active                     bool         `json:"active"`
	GoalTier                   GoalTier     `json:"goal_tier,omitempty"`
	FitnessLevel               FitnessLevel `json:"fitness_level,omitempty"`
	StartCTLFloor              float64      `json:"start_ctl_floor,omitempty"`
	StartWeeklyTSSFloor        float64      `json:"start_weekly_tss_floor,omitempty"`
	DemandPeakWeeklyTSS        float64      `json:"demand_peak_weekly_tss,omitempty"`
	EvidenceConfidence         float64      `json:"evidence_confidence"` // 0..100
	FloorClampedByAvailability bool         `json:"floor_clamped_by_availability,omitempty"`
	RationaleCodes             []string     `json:"rationale_codes,omitempty"`
}

// ConstraintConflict is one blocking conflict between availability and
// user session constraints, with deterministic field attribution.
type ConstraintConflict struct {
	Code        string   `json:"code"`
	FieldPath   string   `json:"field_path"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// ProjectionPayload is the full outbound structure.
type ProjectionPayload struct {
	Points                  []ProjectionPoint    `json:"points"`
	Microcycles             []Microcycle         `json:"microcycles"`
	GoalMarkers             []GoalMarker         `json:"goal_markers"`
	GoalAssessments         []GoalAssessment     `json:"goal_assessments"`
	RecoverySegments        []RecoverySegment    `json:"recovery_segments"`
	ConstraintSummary       ConstraintSummary    `json:"constraint_summary"`
	ConstraintConflicts     []ConstraintConflict `json:"constraint_conflicts,omitempty"`
	CapacityEnvelope        CapacityEnvelope     `json:"capacity_envelope"`
	Feasibility             FeasibilityMetadata  `json:"feasibility"`
	PlanGDI                 float64              `json:"plan_gdi"`
	PlanFeasibilityBand     FeasibilityBand      `json:"plan_feasibility_band"`
	ReadinessScore          float64              `json:"readiness_score"`
	ReadinessConfidence     float64              `json:"readiness_confidence"`
	ReadinessRationaleCodes []string             `json:"readiness_rationale_codes"`
	NoHistory               NoHistoryResult      `json:"no_history"`
	RiskFlags               []string             `json:"risk_flags"`
}
