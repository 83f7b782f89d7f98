package projection

import (
	"sort"
	"time"

	"traincast/internal/models"
	"traincast/internal/nohistory"
	"traincast/internal/scoring"
	"traincast/internal/simulator"
	"traincast/internal/timeline"
)

// buildPoints flattens the simulated days into the outbound series and
// fills per-point readiness. No day may read higher than the plan
// readiness, and the primary goal's date carries the series maximum:
// the plan peaks exactly at the goal.
func buildPoints(results []weekResult, goals []models.Goal, planReadiness float64) []models.ProjectionPoint {
	var points []models.ProjectionPoint
	for _, r := range results {
		for _, d := range r.days {
			points = append(points, models.ProjectionPoint{
				Date:             d.Date,
				PredictedLoadTSS: d.Load,
				PredictedCTL:     d.CTL,
				PredictedATL:     d.ATL,
				PredictedTSB:     d.TSB,
			})
		}
	}
	if len(points) == 0 {
		return []models.ProjectionPoint{}
	}

	refCTL := referenceCTL(points, goals)
	primary := primaryGoalDate(goals)
	for i := range points {
		shape := 1.0
		if refCTL > 0 {
			shape = 0.6 + 0.4*points[i].PredictedCTL/refCTL
		}
		r := planReadiness * shape
		if r > planReadiness {
			r = planReadiness
		}
		if !primary.IsZero() && points[i].Date.Equal(primary) {
			r = planReadiness
		}
		points[i].ReadinessScore = clampScore(r)
	}
	return points
}

// referenceCTL is the CTL at the primary goal date, or the series
// maximum when no goal exists.
func referenceCTL(points []models.ProjectionPoint, goals []models.Goal) float64 {
	primary := primaryGoalDate(goals)
	if !primary.IsZero() {
		for _, p := range points {
			if p.Date.Equal(primary) {
				return p.PredictedCTL
			}
		}
	}
	max := 0.0
	for _, p := range points {
		if p.PredictedCTL > max {
			max = p.PredictedCTL
		}
	}
	return max
}

// primaryGoalDate is the highest-priority goal's date; priority ties
// resolve to the earlier date, then smaller id (canonical goal order).
func primaryGoalDate(goals []models.Goal) time.Time {
	best := -1
	for i, g := range goals {
		if best < 0 || g.Priority < goals[best].Priority {
			best = i
		}
	}
	if best < 0 {
		return time.Time{}
	}
	return timeline.DateOnly(goals[best].TargetDate)
}

func buildMarkers(goals []models.Goal, points []models.ProjectionPoint) []models.GoalMarker {
	markers := make([]models.GoalMarker, 0, len(goals))
	for _, g := range goals {
		m := models.GoalMarker{
			GoalID:   g.ID,
			Name:     g.Name,
			Date:     timeline.DateOnly(g.TargetDate),
			Priority: g.Priority,
		}
		for _, p := range points {
			if p.Date.Equal(m.Date) {
				m.PredictedCTL = p.PredictedCTL
				m.PredictedTSB = p.PredictedTSB
				m.ReadinessScore = p.ReadinessScore
			}
		}
		markers = append(markers, m)
	}
	return markers
}

func buildMicrocycles(results []weekResult, seed simulator.Seed) []models.Microcycle {
	micros := make([]models.Microcycle, 0, len(results))
	for i, r := range results {
		meta := models.MicrocycleMetadata{
			TSSRamp:           r.decision.TSSRamp,
			CTLRamp:           r.decision.CTLRamp,
			Recovery:          r.week.Pattern == models.PatternRecovery,
			SeedSource:        "rolling_prior_week",
			PatternMultiplier: r.week.Multiplier,
			OptimizerApplied:  r.optimized,
		}
		if i == 0 {
			meta.SeedSource = seed.Source
		}
		if meta.Recovery {
			meta.ReductionFactor = r.week.Multiplier
		}
		if r.week.Block != nil {
			meta.BlockName = r.week.Block.Name
		}
		micros = append(micros, models.Microcycle{
			ID:               models.NewDeterministicID("microcycle", r.week.Start.Format("2006-01-02")),
			WeekStartDate:    r.week.Start,
			WeekEndDate:      r.week.End,
			Pattern:          r.week.Pattern,
			PlannedWeeklyTSS: r.decision.PlannedTSS,
			Metadata:         meta,
		})
	}
	return micros
}

// rationaleCodes is a sorted, de-duplicated union so the payload stays
// byte-stable across runs.
func rationaleCodes(req models.ProjectionRequest, noHist models.NoHistoryResult, feas models.FeasibilityMetadata, conflicts []models.ConstraintConflict) []string {
	set := map[string]struct{}{}
	for _, c := range noHist.RationaleCodes {
		set[c] = struct{}{}
	}
	for _, l := range feas.DominantLimiters {
		set[l] = struct{}{}
	}
	for _, c := range conflicts {
		set[c.Code] = struct{}{}
	}
	if req.DisableWeeklyTSSOptimizer {
		set["weekly_tss_optimizer_disabled"] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// riskFlags summarizes the conditions a coach should look at first.
func riskFlags(planGDI scoring.PlanGDI, noHist models.NoHistoryResult, segs []models.RecoverySegment, cfg models.SafetyConfig, tssClampWeeks, ctlClampWeeks int) []string {
	set := map[string]struct{}{}
	if planGDI.GDI >= 0.75 {
		set["high_plan_gdi"] = struct{}{}
	}
	for _, c := range noHist.RationaleCodes {
		if c == nohistory.CodeLongHorizonDowngrade {
			set["weak_evidence_long_horizon"] = struct{}{}
		}
	}
	if tssClampWeeks+ctlClampWeeks >= 2 {
		set["ramp_cap_pressure"] = struct{}{}
	}
	for _, s := range segs {
		days := int(s.EndDate.Sub(s.StartDate).Hours()/24) + 1
		if days < cfg.PostGoalRecoveryDays {
			set["recovery_compressed"] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
