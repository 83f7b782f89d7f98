package composer

import (
	"math"
	"testing"

	"traincast/internal/calibration"
	"traincast/internal/models"
	"traincast/internal/simulator"
	"traincast/internal/timeline"
)

func looseConfig() models.SafetyConfig {
	return models.SafetyConfig{
		OptimizationProfile:  models.ProfileBalanced,
		PostGoalRecoveryDays: 5,
		MaxWeeklyTSSRampPct:  40,
		MaxCTLRampPerWeek:    12,
	}
}

func weekWithRange(min, max float64) timeline.Week {
	return timeline.Week{
		Multiplier: 1.0,
		Block: &models.Block{
			Name:                 "build",
			Phase:                models.PhaseBuild,
			TargetWeeklyTSSRange: &models.TSSRange{Min: min, Max: max},
		},
	}
}

func TestCompose_BlendsRangeWithRollingBaseline(t *testing.T) {
	// Block range 280-320 against a 200 baseline lands at 240: the
	// rolling context outweighs the static block range.
	dec := Compose(Input{
		Week:         weekWithRange(280, 320),
		PriorWeekTSS: 200,
		State:        simulator.State{CTL: 40, ATL: 40},
		Config:       looseConfig(),
		Set:          calibration.Default(),
	})
	if math.Abs(dec.PlannedTSS-240) > 0.01 {
		t.Errorf("planned = %v, want 240", dec.PlannedTSS)
	}
	if dec.TSSRamp.Clamped || dec.CTLRamp.Clamped {
		t.Errorf("unexpected clamp: %+v %+v", dec.TSSRamp, dec.CTLRamp)
	}
}

func TestCompose_DemandFloorPullsUpward(t *testing.T) {
	// Prior week 320 with a 360 demand floor pulls the blend to ~316.
	dec := Compose(Input{
		Week:           weekWithRange(280, 320),
		PriorWeekTSS:   320,
		FloorWeeklyTSS: 360,
		State:          simulator.State{CTL: 50, ATL: 50},
		Config:         looseConfig(),
		Set:            calibration.Default(),
	})
	if math.Abs(dec.PlannedTSS-316.8) > 1.0 {
		t.Errorf("planned = %v, want ~316", dec.PlannedTSS)
	}
	if !dec.FloorPulled {
		t.Error("floor pull should be recorded")
	}
}

func TestCompose_NoRangeUsesBaseline(t *testing.T) {
	dec := Compose(Input{
		Week:         timeline.Week{Multiplier: 1.0},
		PriorWeekTSS: 250,
		State:        simulator.State{CTL: 40, ATL: 40},
		Config:       looseConfig(),
		Set:          calibration.Default(),
	})
	if math.Abs(dec.PlannedTSS-250) > 0.01 {
		t.Errorf("planned = %v, want baseline 250", dec.PlannedTSS)
	}
}

func TestCompose_SeedBaselineForFirstWeek(t *testing.T) {
	dec := Compose(Input{
		Week:         weekWithRange(280, 320),
		SeedBaseline: 200,
		State:        simulator.State{CTL: 40, ATL: 40},
		Config:       looseConfig(),
		Set:          calibration.Default(),
	})
	if math.Abs(dec.PlannedTSS-240) > 0.01 {
		t.Errorf("planned = %v, want 240 from seed baseline", dec.PlannedTSS)
	}
}

func TestApplyCaps_TSSRampHardInequality(t *testing.T) {
	cfg := looseConfig()
	cfg.MaxWeeklyTSSRampPct = 7
	applied, tssMeta, _ := ApplyCaps(400, 300, simulator.State{CTL: 60, ATL: 60}, cfg, calibration.Default())
	wantMax := 300 * 1.07
	if applied > wantMax+1e-9 {
		t.Fatalf("applied %v exceeds ramp cap %v", applied, wantMax)
	}
	if !tssMeta.Clamped {
		t.Error("clamp flag must be set when requested exceeds the cap")
	}
	if tssMeta.Requested != 400 {
		t.Errorf("requested metadata = %v, want 400", tssMeta.Requested)
	}
	if math.Abs(tssMeta.Max-wantMax) > 1e-9 {
		t.Errorf("max metadata = %v, want %v", tssMeta.Max, wantMax)
	}
	if math.Abs(tssMeta.Applied-wantMax) > 1e-9 {
		t.Errorf("applied metadata = %v, want %v", tssMeta.Applied, wantMax)
	}
}

func TestApplyCaps_CTLRampHardInequality(t *testing.T) {
	cfg := looseConfig()
	cfg.MaxCTLRampPerWeek = 2
	set := calibration.Default()
	st := simulator.State{CTL: 30, ATL: 30}
	applied, _, ctlMeta := ApplyCaps(500, 480, st, cfg, set)
	if !ctlMeta.Clamped {
		t.Fatal("CTL ramp cap should have clamped a 500 TSS request at CTL 30")
	}
	ramp := simulator.CTLRampForWeek(st, applied, set)
	if ramp > cfg.MaxCTLRampPerWeek+1e-9 {
		t.Errorf("resulting CTL ramp %v exceeds cap %v", ramp, cfg.MaxCTLRampPerWeek)
	}
}

func TestApplyCaps_SoftPressureObservableWhenNotClamped(t *testing.T) {
	applied, tssMeta, ctlMeta := ApplyCaps(220, 210, simulator.State{CTL: 45, ATL: 45}, looseConfig(), calibration.Default())
	if tssMeta.Clamped || ctlMeta.Clamped {
		t.Fatalf("no clamp expected: %+v %+v", tssMeta, ctlMeta)
	}
	if applied != 220 {
		t.Errorf("applied = %v, want request honored", applied)
	}
	if tssMeta.Max == 0 {
		t.Error("ramp cap bound should still be reported for diagnostics")
	}
}

func TestApplyCaps_TighterCapNeverHigher(t *testing.T) {
	set := calibration.Default()
	st := simulator.State{CTL: 45, ATL: 45}
	prev := 300.0
	last := -1.0
	for _, ramp := range []float64{2, 5, 10, 20, 40} {
		cfg := looseConfig()
		cfg.MaxWeeklyTSSRampPct = ramp
		applied, _, _ := ApplyCaps(450, prev, st, cfg, set)
		if last >= 0 && applied < last {
			t.Fatalf("looser ramp %v produced lower applied %v than %v", ramp, applied, last)
		}
		last = applied
	}
}

func TestCompose_PatternMultiplierApplies(t *testing.T) {
	w := weekWithRange(280, 320)
	w.Multiplier = 0.82
	w.Pattern = models.PatternEvent
	dec := Compose(Input{
		Week:         w,
		PriorWeekTSS: 200,
		State:        simulator.State{CTL: 40, ATL: 40},
		Config:       looseConfig(),
		Set:          calibration.Default(),
	})
	if math.Abs(dec.PlannedTSS-240*0.82) > 0.01 {
		t.Errorf("planned = %v, want %v", dec.PlannedTSS, 240*0.82)
	}
}

func TestApplyCaps_NegativeAndNaNRequests(t *testing.T) {
	for _, bad := range []float64{-50, math.NaN()} {
		applied, _, _ := ApplyCaps(bad, 200, simulator.State{CTL: 40, ATL: 40}, looseConfig(), calibration.Default())
		if applied != 0 {
			t.Errorf("ApplyCaps(%v) = %v, want 0", bad, applied)
		}
	}
}
