package calibration

import (
	"errors"
	"fmt"
	"math"

	"traincast/internal/models"
)

// ErrCompositeWeights is returned when calibration overrides break the
// composite-readiness weight-sum invariant.
var ErrCompositeWeights = errors.New("calibration composite weights must sum to 1")

// Hard invariant bounds for the safety config. Out-of-range input is
// clamped, never rejected.
const (
	MinWeeklyTSSRampPct = 0.0
	MaxWeeklyTSSRampPct = 40.0
	MinCTLRampPerWeek   = 0.0
	MaxCTLRampPerWeek   = 12.0
	MinRecoveryDays     = 0
	MaxRecoveryDays     = 28
)

// Normalized defaults. NormalizeSafetyConfig(nil) returns exactly these.
const (
	DefaultRecoveryDays     = 5
	DefaultWeeklyTSSRampPct = 7.0
	DefaultCTLRampPerWeek   = 3.0
)

// Settings is the fully resolved, immutable calibration value threaded
// through every computation. There is no ambient default lookup: build
// one with Resolve and pass it down.
type Settings struct {
	// Weekly load composition (fixture-fit, see composer tests)
	RangeMidBlendWeight float64
	BaselineBlendWeight float64
	FloorPullFraction   float64

	// Pattern multipliers
	EventMultiplier         float64
	TaperBaseMultiplier     float64 // priority 1 taper strength
	TaperPriorityStep       float64 // weakening per priority rank
	RecoveryReductionFactor float64

	// Fitness simulator EMA time constants (days)
	CTLTimeConstant float64
	ATLTimeConstant float64

	// Optimizer objective penalty weights (scaled per profile)
	RiskWeight       float64
	VolatilityWeight float64
	ChurnWeight      float64
	MonotonyWeight   float64
	StrainWeight     float64

	// Composite readiness blend; must sum to 1
	CompositeAttainmentWeight float64
	CompositeDurabilityWeight float64
	CompositeEvidenceWeight   float64
	CompositeEnvelopeWeight   float64

	// Goal difficulty index component weights (sum 1.45 pre-clamp)
	GDIPerformanceGapWeight   float64
	GDILoadGapWeight          float64
	GDITimelinePressureWeight float64
	GDISparsityWeight         float64
}

// Default returns the canonical calibration.
func Default() Settings {
	return Settings{
		RangeMidBlendWeight: 0.4,
		BaselineBlendWeight: 0.6,
		FloorPullFraction:   0.1,

		EventMultiplier:         0.82,
		TaperBaseMultiplier:     0.70,
		TaperPriorityStep:       0.02,
		RecoveryReductionFactor: 0.55,

		CTLTimeConstant: 42,
		ATLTimeConstant: 7,

		RiskWeight:       0.30,
		VolatilityWeight: 0.15,
		ChurnWeight:      0.10,
		MonotonyWeight:   0.10,
		StrainWeight:     0.15,

		CompositeAttainmentWeight: 0.40,
		CompositeDurabilityWeight: 0.20,
		CompositeEvidenceWeight:   0.15,
		CompositeEnvelopeWeight:   0.25,

		GDIPerformanceGapWeight:   0.40,
		GDILoadGapWeight:          0.35,
		GDITimelinePressureWeight: 0.35,
		GDISparsityWeight:         0.35,
	}
}

// NormalizeSafetyConfig fills gaps with defaults and clamps every value
// into its hard invariant bound. A nil config yields exactly
// {balanced, 5, 7, 3}.
func NormalizeSafetyConfig(cfg *models.CreationConfig) models.SafetyConfig {
	out := models.SafetyConfig{
		OptimizationProfile:  models.ProfileBalanced,
		PostGoalRecoveryDays: DefaultRecoveryDays,
		MaxWeeklyTSSRampPct:  DefaultWeeklyTSSRampPct,
		MaxCTLRampPerWeek:    DefaultCTLRampPerWeek,
	}
	if cfg == nil {
		return out
	}
	switch cfg.OptimizationProfile {
	case models.ProfileSustainable, models.ProfileBalanced, models.ProfileOutcomeFirst:
		out.OptimizationProfile = cfg.OptimizationProfile
	}
	if cfg.PostGoalRecoveryDays != nil {
		out.PostGoalRecoveryDays = clampInt(*cfg.PostGoalRecoveryDays, MinRecoveryDays, MaxRecoveryDays)
	}
	if cfg.MaxWeeklyTSSRampPct != nil {
		out.MaxWeeklyTSSRampPct = clampFloat(*cfg.MaxWeeklyTSSRampPct, MinWeeklyTSSRampPct, MaxWeeklyTSSRampPct)
	}
	if cfg.MaxCTLRampPerWeek != nil {
		out.MaxCTLRampPerWeek = clampFloat(*cfg.MaxCTLRampPerWeek, MinCTLRampPerWeek, MaxCTLRampPerWeek)
	}
	return out
}

// Resolve applies calibration overrides onto the defaults and validates
// the invariant sums. Invalid weight sums are fatal, not degradable.
func Resolve(cfg *models.CreationConfig) (Settings, error) {
	s := Default()
	if cfg == nil || cfg.Calibration == nil {
		return s, nil
	}
	c := cfg.Calibration
	applyOverride(&s.CompositeAttainmentWeight, c.CompositeAttainmentWeight)
	applyOverride(&s.CompositeDurabilityWeight, c.CompositeDurabilityWeight)
	applyOverride(&s.CompositeEvidenceWeight, c.CompositeEvidenceWeight)
	applyOverride(&s.CompositeEnvelopeWeight, c.CompositeEnvelopeWeight)
	applyOverride(&s.RangeMidBlendWeight, c.RangeMidBlendWeight)
	applyOverride(&s.BaselineBlendWeight, c.BaselineBlendWeight)
	applyOverride(&s.FloorPullFraction, c.FloorPullFraction)
	applyOverride(&s.EventMultiplier, c.EventMultiplier)

	sum := s.CompositeAttainmentWeight + s.CompositeDurabilityWeight +
		s.CompositeEvidenceWeight + s.CompositeEnvelopeWeight
	if math.Abs(sum-1) > 1e-6 {
		return Settings{}, fmt.Errorf("%w: got %.6f", ErrCompositeWeights, sum)
	}
	for _, w := range []float64{
		s.CompositeAttainmentWeight, s.CompositeDurabilityWeight,
		s.CompositeEvidenceWeight, s.CompositeEnvelopeWeight,
		s.RangeMidBlendWeight, s.BaselineBlendWeight, s.FloorPullFraction,
	} {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return Settings{}, fmt.Errorf("%w: non-finite or negative weight", ErrCompositeWeights)
		}
	}
	if s.EventMultiplier <= 0 || s.EventMultiplier > 1 || math.IsNaN(s.EventMultiplier) {
		s.EventMultiplier = Default().EventMultiplier
	}
	return s, nil
}

func applyOverride(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
