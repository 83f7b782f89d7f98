package simulator

import (
	"math"
	"testing"
	"time"

	"traincast/internal/calibration"
	"traincast/internal/models"
)

func fp(v float64) *float64 { return &v }

func TestResolveSeed_ExplicitCTLWins(t *testing.T) {
	noHist := models.NoHistoryResult{Active: true, StartCTLFloor: 35}
	seed := ResolveSeed(&models.StartingState{StartingCTL: fp(48)}, noHist, 300)
	if seed.Source != SeedExplicit {
		t.Fatalf("source = %q, want explicit", seed.Source)
	}
	if seed.State.CTL != 48 {
		t.Errorf("CTL = %v, want 48", seed.State.CTL)
	}
	if seed.State.ATL == seed.State.CTL {
		t.Error("ATL must not be forced equal to CTL for an explicit seed")
	}
	if seed.IsPrior {
		t.Error("explicit seed is not a prior")
	}
}

func TestResolveSeed_ExplicitATLAndTSB(t *testing.T) {
	seed := ResolveSeed(&models.StartingState{StartingCTL: fp(50), StartingATL: fp(60)}, models.NoHistoryResult{}, 0)
	if seed.State.ATL != 60 {
		t.Errorf("ATL = %v, want explicit 60", seed.State.ATL)
	}

	seed = ResolveSeed(&models.StartingState{StartingCTL: fp(50), StartingTSB: fp(-8)}, models.NoHistoryResult{}, 0)
	if math.Abs(seed.State.ATL-58) > 1e-9 {
		t.Errorf("ATL = %v, want 58 from TSB -8", seed.State.ATL)
	}
}

func TestResolveSeed_NoHistoryFloorIsPrior(t *testing.T) {
	seed := ResolveSeed(nil, models.NoHistoryResult{Active: true, StartCTLFloor: 35}, 300)
	if seed.Source != SeedNoHistory {
		t.Fatalf("source = %q, want no-history floor", seed.Source)
	}
	if seed.State.CTL != 35 || seed.State.ATL != 35 {
		t.Errorf("state = %+v, want CTL=ATL=35", seed.State)
	}
	if seed.State.TSB() != 0 {
		t.Errorf("TSB = %v, want 0", seed.State.TSB())
	}
	if !seed.IsPrior {
		t.Error("floor seed must be flagged as a prior")
	}
}

func TestResolveSeed_DynamicFromDemand(t *testing.T) {
	seed := ResolveSeed(nil, models.NoHistoryResult{}, 280)
	if seed.Source != SeedDynamic {
		t.Fatalf("source = %q, want dynamic", seed.Source)
	}
	if math.Abs(seed.State.CTL-32) > 1e-9 {
		t.Errorf("CTL = %v, want 32", seed.State.CTL)
	}
}

func TestResolveSeed_NegativeAndNaNInputs(t *testing.T) {
	seed := ResolveSeed(&models.StartingState{StartingCTL: fp(-10)}, models.NoHistoryResult{}, 0)
	if seed.State.CTL != 0 {
		t.Errorf("negative CTL should clamp to 0, got %v", seed.State.CTL)
	}
	seed = ResolveSeed(nil, models.NoHistoryResult{}, math.NaN())
	if seed.State.CTL != 0 {
		t.Errorf("NaN demand should clamp to 0, got %v", seed.State.CTL)
	}
}

func TestSimulateWeek_MatchesClosedFormRamp(t *testing.T) {
	set := calibration.Default()
	start := State{CTL: 40, ATL: 44}
	weekly := 350.0
	end, points := SimulateWeek(start, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), 7, weekly, set)
	if len(points) != 7 {
		t.Fatalf("points = %d, want 7", len(points))
	}
	wantRamp := CTLRampForWeek(start, weekly, set)
	if math.Abs((end.CTL-start.CTL)-wantRamp) > 1e-9 {
		t.Errorf("iterative ramp %v != closed form %v", end.CTL-start.CTL, wantRamp)
	}
}

func TestMaxWeeklyLoadForCTLRamp_InvertsExactly(t *testing.T) {
	set := calibration.Default()
	for _, ctl := range []float64{0, 20, 45, 80} {
		st := State{CTL: ctl, ATL: ctl}
		load := MaxWeeklyLoadForCTLRamp(st, 8, set)
		ramp := CTLRampForWeek(st, load, set)
		if math.Abs(ramp-8) > 1e-9 {
			t.Errorf("CTL %v: ramp at inverted load = %v, want 8", ctl, ramp)
		}
	}
}

func TestAdvanceDay_ConvergesToConstantLoad(t *testing.T) {
	set := calibration.Default()
	s := State{CTL: 10, ATL: 10}
	for d := 0; d < 600; d++ {
		s = AdvanceDay(s, 60, set)
	}
	if math.Abs(s.CTL-60) > 0.5 || math.Abs(s.ATL-60) > 0.5 {
		t.Errorf("state %+v should converge to the constant daily load 60", s)
	}
	if math.Abs(s.TSB()) > 0.5 {
		t.Errorf("TSB %v should converge to 0", s.TSB())
	}
}

func TestAdvanceDay_ATLRespondsFasterThanCTL(t *testing.T) {
	set := calibration.Default()
	s := AdvanceDay(State{CTL: 30, ATL: 30}, 100, set)
	if s.ATL-30 <= s.CTL-30 {
		t.Errorf("fatigue should outpace fitness on a spike: dATL=%v dCTL=%v", s.ATL-30, s.CTL-30)
	}
	if s.TSB() >= 0 {
		t.Errorf("TSB = %v, want negative after a spike", s.TSB())
	}
}

func TestSimulateWeek_PartialWeekAndZeroDays(t *testing.T) {
	set := calibration.Default()
	_, points := SimulateWeek(State{CTL: 40, ATL: 40}, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), 4, 200, set)
	if len(points) != 4 {
		t.Fatalf("points = %d, want 4", len(points))
	}
	if math.Abs(points[0].Load-50) > 1e-9 {
		t.Errorf("daily load = %v, want 200/4", points[0].Load)
	}
	if got := points[3].Date; !got.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("last day = %v, want 2026-01-15", got)
	}

	end, points := SimulateWeek(State{CTL: 40, ATL: 40}, time.Time{}, 0, 200, set)
	if points != nil || end.CTL != 40 {
		t.Error("zero days must be a no-op")
	}
}
