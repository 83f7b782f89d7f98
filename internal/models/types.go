package models

// BlockPhase represents phase types for periodization blocks
type BlockPhase string

const (
	PhaseBase     BlockPhase = "base"
	PhaseBuild    BlockPhase = "build"
	PhaseTaper    BlockPhase = "taper"
	PhasePeak     BlockPhase = "peak"
	PhaseRecovery BlockPhase = "recovery"
)

// WeekPattern classifies a planning week
type WeekPattern string

const (
	PatternBase     WeekPattern = "base"
	PatternBuild    WeekPattern = "build"
	PatternTaper    WeekPattern = "taper"
	PatternEvent    WeekPattern = "event"
	PatternRecovery WeekPattern = "recovery"
)

// PhaseToPattern maps a block phase to the pattern a week inherits
// when no taper/event/recovery influence overrides it.
var PhaseToPattern = map[BlockPhase]WeekPattern{
	PhaseBase:     PatternBase,
	PhaseBuild:    PatternBuild,
	PhaseTaper:    PatternTaper,
	PhasePeak:     PatternBuild,
	PhaseRecovery: PatternRecovery,
}

// OptimizationProfile selects how aggressively the weekly optimizer searches
type OptimizationProfile string

const (
	ProfileSustainable  OptimizationProfile = "sustainable"
	ProfileBalanced     OptimizationProfile = "balanced"
	ProfileOutcomeFirst OptimizationProfile = "outcome_first"
)

// FeasibilityBand buckets a goal difficulty index
type FeasibilityBand string

const (
	BandFeasible         FeasibilityBand = "feasible"
	BandStretch          FeasibilityBand = "stretch"
	BandAggressive       FeasibilityBand = "aggressive"
	BandNearlyImpossible FeasibilityBand = "nearly_impossible"
	BandInfeasible       FeasibilityBand = "infeasible"
)

// EnvelopeState describes where a plan sits relative to the capacity envelope
type EnvelopeState string

const (
	EnvelopeInside  EnvelopeState = "inside"
	EnvelopeEdge    EnvelopeState = "edge"
	EnvelopeOutside EnvelopeState = "outside"
)

// ReadinessBand buckets the overall projection feasibility
type ReadinessBand string

const (
	ReadinessHigh   ReadinessBand = "high"
	ReadinessMedium ReadinessBand = "medium"
	ReadinessLow    ReadinessBand = "low"
)

// GoalTier describes how demanding a goal is in absolute terms
type GoalTier string

const (
	TierLow      GoalTier = "low"
	TierModerate GoalTier = "moderate"
	TierHigh     GoalTier = "high"
	TierExtreme  GoalTier = "extreme"
)

// FitnessLevel is the evidence-inferred starting fitness bucket
type FitnessLevel string

const (
	LevelWeak     FitnessLevel = "weak"
	LevelModerate FitnessLevel = "moderate"
	LevelStrong   FitnessLevel = "strong"
)

// HistoryAvailability describes how much completed-activity history exists
type HistoryAvailability string

const (
	HistoryNone   HistoryAvailability = "none"
	HistorySparse HistoryAvailability = "sparse"
	HistoryFull   HistoryAvailability = "full"
)
