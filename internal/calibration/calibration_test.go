package calibration

import (
	"errors"
	"math"
	"testing"

	"traincast/internal/models"
)

func TestNormalizeSafetyConfig_NilGivesExactDefaults(t *testing.T) {
	got := NormalizeSafetyConfig(nil)
	want := models.SafetyConfig{
		OptimizationProfile:  models.ProfileBalanced,
		PostGoalRecoveryDays: 5,
		MaxWeeklyTSSRampPct:  7,
		MaxCTLRampPerWeek:    3,
	}
	if got != want {
		t.Errorf("NormalizeSafetyConfig(nil) = %+v, want %+v", got, want)
	}
}

func TestNormalizeSafetyConfig_ClampsOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		ramp     float64
		ctlRamp  float64
		recovery int
		wantRamp float64
		wantCTL  float64
		wantRec  int
	}{
		{"above max", 80, 30, 60, 40, 12, 28},
		{"below min", -5, -2, -3, 0, 0, 0},
		{"inside range untouched", 12, 6, 10, 12, 6, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &models.CreationConfig{
				PostGoalRecoveryDays: &tt.recovery,
				MaxWeeklyTSSRampPct:  &tt.ramp,
				MaxCTLRampPerWeek:    &tt.ctlRamp,
			}
			got := NormalizeSafetyConfig(cfg)
			if got.MaxWeeklyTSSRampPct != tt.wantRamp {
				t.Errorf("ramp = %v, want %v", got.MaxWeeklyTSSRampPct, tt.wantRamp)
			}
			if got.MaxCTLRampPerWeek != tt.wantCTL {
				t.Errorf("ctl ramp = %v, want %v", got.MaxCTLRampPerWeek, tt.wantCTL)
			}
			if got.PostGoalRecoveryDays != tt.wantRec {
				t.Errorf("recovery days = %v, want %v", got.PostGoalRecoveryDays, tt.wantRec)
			}
		})
	}
}

func TestNormalizeSafetyConfig_UnknownProfileFallsBack(t *testing.T) {
	cfg := &models.CreationConfig{OptimizationProfile: "turbo"}
	if got := NormalizeSafetyConfig(cfg); got.OptimizationProfile != models.ProfileBalanced {
		t.Errorf("profile = %q, want balanced", got.OptimizationProfile)
	}
}

func TestResolve_InvalidCompositeWeightsFatal(t *testing.T) {
	w := 0.9
	cfg := &models.CreationConfig{Calibration: &models.Calibration{
		CompositeAttainmentWeight: &w,
	}}
	_, err := Resolve(cfg)
	if !errors.Is(err, ErrCompositeWeights) {
		t.Fatalf("Resolve with weight sum 1.5 returned %v, want ErrCompositeWeights", err)
	}
}

func TestResolve_ValidOverridesApply(t *testing.T) {
	a, d, e, env := 0.5, 0.2, 0.1, 0.2
	cfg := &models.CreationConfig{Calibration: &models.Calibration{
		CompositeAttainmentWeight: &a,
		CompositeDurabilityWeight: &d,
		CompositeEvidenceWeight:   &e,
		CompositeEnvelopeWeight:   &env,
	}}
	set, err := Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if set.CompositeAttainmentWeight != 0.5 {
		t.Errorf("attainment weight = %v, want 0.5", set.CompositeAttainmentWeight)
	}
	sum := set.CompositeAttainmentWeight + set.CompositeDurabilityWeight +
		set.CompositeEvidenceWeight + set.CompositeEnvelopeWeight
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
}

func TestDefault_CompositeWeightsSumToOne(t *testing.T) {
	s := Default()
	sum := s.CompositeAttainmentWeight + s.CompositeDurabilityWeight +
		s.CompositeEvidenceWeight + s.CompositeEnvelopeWeight
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("default composite weights sum to %v, want 1", sum)
	}
}

func TestBoundsFor_ProfileCeilings(t *testing.T) {
	sus := BoundsFor(models.ProfileSustainable)
	bal := BoundsFor(models.ProfileBalanced)
	out := BoundsFor(models.ProfileOutcomeFirst)

	if !(sus.LookaheadWeeks < bal.LookaheadWeeks && bal.LookaheadWeeks < out.LookaheadWeeks) {
		t.Errorf("lookahead order wrong: %d %d %d", sus.LookaheadWeeks, bal.LookaheadWeeks, out.LookaheadWeeks)
	}
	if !(sus.CandidateCount < bal.CandidateCount && bal.CandidateCount < out.CandidateCount) {
		t.Errorf("candidate count order wrong: %d %d %d", sus.CandidateCount, bal.CandidateCount, out.CandidateCount)
	}
	if BoundsFor("unknown") != bal {
		t.Error("unknown profile should fall back to balanced bounds")
	}
}
