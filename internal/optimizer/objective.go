package optimizer

import (
	"math"

	"traincast/internal/calibration"
	"traincast/internal/composer"
	"traincast/internal/models"
	"traincast/internal/nohistory"
	"traincast/internal/simulator"
	"traincast/internal/timeline"
)

// objective scores one candidate value with the multi-term model:
// goal attainment minus weighted overload, volatility, churn, monotony
// and strain penalties, plus a projected-readiness term.
func objective(ctx Context, bounds calibration.ProfileBounds, naiveValue, value float64) float64 {
	attain := goalDayReadiness(ctx, value)

	prevRef := ctx.PriorWeekTSS
	if prevRef <= 0 {
		prevRef = ctx.SeedBaseline
	}

	st := ctx.State
	st, _ = simulator.SimulateWeek(st, ctx.Week.Start, weekDays(ctx.Week), value, ctx.Set)

	overload := 0.0
	if st.CTL > 0 {
		overload = math.Max(0, st.ATL/st.CTL-1.25) * 100
	}

	volatility := 0.0
	if prevRef > 0 {
		rel := math.Abs(value-prevRef) / prevRef
		volatility = math.Max(0, rel-0.10) * 100
	}

	churn := 0.0
	if naiveValue > 0 {
		churn = math.Abs(value-naiveValue) / naiveValue * 100
	}

	monotony := 0.0
	if prevRef > 0 && math.Abs(value-prevRef)/prevRef < 0.02 {
		monotony = 10
	}

	strain := math.Max(0, st.ATL-st.CTL*1.4)

	s := ctx.Set
	scale := bounds.PenaltyScale
	score := attain -
		scale*s.RiskWeight*overload -
		scale*s.VolatilityWeight*volatility -
		scale*s.ChurnWeight*churn -
		scale*s.MonotonyWeight*monotony -
		scale*s.StrainWeight*strain

	// Projected-readiness term: reward ending the horizon in decent form.
	score += 0.1 * clampRange(st.TSB(), -30, 30)

	if math.IsNaN(score) || math.IsInf(score, 0) {
		return -math.MaxFloat64 / 2
	}
	return score
}

// goalDayReadiness rolls the candidate week and then a naive
// continuation through the lookahead horizon, and scores the state on
// each in-horizon goal day, weighted by goal priority. With no goal in
// the horizon it degrades to a neutral form-based score so the search
// still has a deterministic surface.
func goalDayReadiness(ctx Context, value float64) float64 {
	st := ctx.State
	prior := value
	st, _ = simulator.SimulateWeek(st, ctx.Week.Start, weekDays(ctx.Week), value, ctx.Set)

	weeks := append([]timeline.Week{ctx.Week}, ctx.Lookahead...)
	states := map[int]simulator.State{0: st}
	for i, w := range ctx.Lookahead {
		dec := composer.Compose(composer.Input{
			Week:           w,
			PriorWeekTSS:   prior,
			SeedBaseline:   ctx.SeedBaseline,
			FloorWeeklyTSS: ctx.FloorWeeklyTSS,
			State:          st,
			Config:         ctx.Config,
			Set:            ctx.Set,
		})
		st, _ = simulator.SimulateWeek(st, w.Start, weekDays(w), dec.PlannedTSS, ctx.Set)
		prior = dec.PlannedTSS
		states[i+1] = st
	}

	var acc, weightSum float64
	for _, g := range ctx.Goals {
		gd := timeline.DateOnly(g.TargetDate)
		for i, w := range weeks {
			if !gd.Before(w.Start) && !gd.After(w.End) {
				acc += readinessProxy(states[i], goalDemandCTL(g)) * g.PriorityWeight()
				weightSum += g.PriorityWeight()
			}
		}
	}
	if weightSum > 0 {
		return acc / weightSum
	}
	return 50 + 0.5*clampRange(st.TSB(), -30, 30)
}

// readinessProxy blends fitness adequacy against the goal's demand
// with current form.
func readinessProxy(st simulator.State, demandCTL float64) float64 {
	fit := 1.0
	if demandCTL > 0 {
		fit = math.Min(1, st.CTL/demandCTL)
	}
	form := clampRange((st.TSB()+10)/25, 0, 1)
	return 70*fit + 30*form
}

func goalDemandCTL(g models.Goal) float64 {
	peak := 0.0
	for _, t := range g.Targets {
		if t.Kind == models.TargetRacePerformance && t.Race != nil {
			if d := nohistory.RequiredPeakWeeklyLoad(t.Race.DistanceM, t.Race.TargetTimeS); d > peak {
				peak = d
			}
		}
	}
	return peak / 7
}

func weekDays(w timeline.Week) int {
	return int(w.End.Sub(w.Start).Hours()/24) + 1
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
