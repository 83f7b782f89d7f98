// Package optimizer refines the composer's weekly load with a bounded,
// profile-scaled lattice search. It is fully deterministic: candidate
// order, objective scoring, and the tie-break chain never depend on
// caller input order, and a plan that is not at least as good as the
// naive capped-composer plan on weighted goal-day readiness is never
// selected.
package optimizer

import (
	"errors"
	"time"

	"traincast/internal/calibration"
	"traincast/internal/composer"
	"traincast/internal/models"
	"traincast/internal/simulator"
	"traincast/internal/timeline"
)

// ErrEmptyCandidates is fatal: selection from nothing is a bug in the
// caller, not a degradable condition.
var ErrEmptyCandidates = errors.New("cannot pick candidate from empty collection")

// Candidate is one feasible weekly-load alternative. Value is the
// post-cap load; the clamp metadata from that capping travels with the
// candidate so selection never re-caps an already-capped value.
type Candidate struct {
	Value           float64
	TSSRamp         models.ClampMeta
	CTLRamp         models.ClampMeta
	Objective       float64
	DeltaFromPrev   float64
	PrimaryGoalDate time.Time
	PrimaryGoalID   string
}

// PickBest resolves the best candidate with the exact precedence
// chain: higher objective, smaller absolute delta from the previous
// week, earlier primary-goal date, lexicographically smaller
// primary-goal id, smaller value.
func PickBest(cands []Candidate) (Candidate, error) {
	if len(cands) == 0 {
		return Candidate{}, ErrEmptyCandidates
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best, nil
}

func better(a, b Candidate) bool {
	if a.Objective != b.Objective {
		return a.Objective > b.Objective
	}
	da, db := abs(a.DeltaFromPrev), abs(b.DeltaFromPrev)
	if da != db {
		return da < db
	}
	if !a.PrimaryGoalDate.Equal(b.PrimaryGoalDate) {
		return a.PrimaryGoalDate.Before(b.PrimaryGoalDate)
	}
	if a.PrimaryGoalID != b.PrimaryGoalID {
		return a.PrimaryGoalID < b.PrimaryGoalID
	}
	return a.Value < b.Value
}

// Context carries one week's optimization inputs.
type Context struct {
	Week           timeline.Week
	Lookahead      []timeline.Week // weeks after this one, horizon-limited by profile
	PriorWeekTSS   float64
	SeedBaseline   float64
	FloorWeeklyTSS float64
	State          simulator.State
	Goals          []models.Goal // canonicalized by the orchestrator
	Config         models.SafetyConfig
	Set            calibration.Settings
}

// OptimizeWeek evaluates the candidate lattice around the naive
// decision and returns the refined decision plus whether it replaced
// the naive one. When the chosen value equals the naive value the
// naive decision is returned untouched so both paths stay
// byte-identical.
func OptimizeWeek(ctx Context, naive composer.Decision) (composer.Decision, bool, error) {
	bounds := calibration.BoundsFor(ctx.Config.OptimizationProfile)
	if len(ctx.Lookahead) > bounds.LookaheadWeeks {
		ctx.Lookahead = ctx.Lookahead[:bounds.LookaheadWeeks]
	}

	prevRef := ctx.PriorWeekTSS
	if prevRef <= 0 {
		prevRef = ctx.SeedBaseline
	}

	half := bounds.CandidateCount / 2
	cands := make([]Candidate, 0, bounds.CandidateCount)
	for k := -half; k <= half; k++ {
		requested := naive.PlannedTSS * (1 + float64(k)*bounds.CandidateStepPct)
		// Every candidate goes back through the hard caps; the search
		// can never outrun them.
		value, tssMeta, ctlMeta := composer.ApplyCaps(requested, prevRef, ctx.State, ctx.Config, ctx.Set)
		c := Candidate{
			Value:         value,
			TSSRamp:       tssMeta,
			CTLRamp:       ctlMeta,
			DeltaFromPrev: value - prevRef,
		}
		c.PrimaryGoalDate, c.PrimaryGoalID = primaryGoal(ctx)
		c.Objective = objective(ctx, bounds, naive.PlannedTSS, value)
		cands = append(cands, c)
	}

	best, err := PickBest(cands)
	if err != nil {
		return composer.Decision{}, false, err
	}

	// Never-worse guard: the refined plan must not lose to the naive
	// plan on weighted goal-day readiness.
	if goalDayReadiness(ctx, best.Value) < goalDayReadiness(ctx, naive.PlannedTSS) {
		return naive, false, nil
	}
	if best.Value == naive.PlannedTSS {
		return naive, false, nil
	}

	// The winning candidate was capped when it was generated; its clamp
	// metadata is the record of that capping. Capping it again would
	// erase the clamp flag whenever the search pressed past a cap.
	return composer.Decision{
		PlannedTSS:  best.Value,
		TSSRamp:     best.TSSRamp,
		CTLRamp:     best.CTLRamp,
		FloorPulled: naive.FloorPulled,
	}, true, nil
}

// primaryGoal is the earliest goal at or after the week start; ties on
// date resolve to the smaller id via canonical goal order.
func primaryGoal(ctx Context) (time.Time, string) {
	for _, g := range ctx.Goals {
		if !timeline.DateOnly(g.TargetDate).Before(ctx.Week.Start) {
			return timeline.DateOnly(g.TargetDate), g.ID
		}
	}
	if len(ctx.Goals) > 0 {
		g := ctx.Goals[len(ctx.Goals)-1]
		return timeline.DateOnly(g.TargetDate), g.ID
	}
	return time.Time{}, ""
}
