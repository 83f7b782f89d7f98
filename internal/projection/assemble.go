package projection

import (
	"math"
	"time"

	"traincast/internal/calibration"
	"traincast/internal/envelope"
	"traincast/internal/models"
	"traincast/internal/nohistory"
	"traincast/internal/scoring"
	"traincast/internal/simulator"
	"traincast/internal/timeline"
)

// fullHistoryConfidence is the evidence confidence assumed when real
// training history backs the starting state.
const fullHistoryConfidence = 85.0

func (e *Engine) assemble(
	req models.ProjectionRequest,
	goals []models.Goal,
	cfg models.SafetyConfig,
	set calibration.Settings,
	seed simulator.Seed,
	noHist models.NoHistoryResult,
	segs []models.RecoverySegment,
	conflicts []models.ConstraintConflict,
	results []weekResult,
	requiredPeak float64,
	tssClampWeeks, ctlClampWeeks int,
) (*models.ProjectionPayload, error) {

	weeklyLoads := make([]float64, len(results))
	appliedPeak := 0.0
	for i, r := range results {
		weeklyLoads[i] = r.decision.PlannedTSS
		if r.decision.PlannedTSS > appliedPeak {
			appliedPeak = r.decision.PlannedTSS
		}
	}

	evidenceConf := fullHistoryConfidence
	if noHist.Active {
		evidenceConf = noHist.EvidenceConfidence
	}

	env := envelope.ComputeCapacityEnvelope(weeklyLoads, seed.State.CTL, evidenceConf, cfg)
	durability := envelope.ComputeDurabilityScore(weeklyLoads)

	assessments, goalGDIs, attainPlan := e.assessGoals(goals, results, cfg, set, seed, noHist, appliedPeak, evidenceConf)
	planGDI := scoring.ComputePlanGDI(goalGDIs)

	readiness, confidence := envelope.ComputeCompositeReadiness(attainPlan, durability, evidenceConf, env.Score, set)
	feas := envelope.ComputeProjectionFeasibilityMetadata(requiredPeak, appliedPeak, tssClampWeeks, ctlClampWeeks, evidenceConf)

	points := buildPoints(results, goals, readiness)
	markers := buildMarkers(goals, points)
	micros := buildMicrocycles(results, seed)

	payload := &models.ProjectionPayload{
		Points:              points,
		Microcycles:         micros,
		GoalMarkers:         markers,
		GoalAssessments:     assessments,
		RecoverySegments:    segs,
		ConstraintConflicts: conflicts,
		CapacityEnvelope:    env,
		Feasibility:         feas,
		PlanGDI:             planGDI.GDI,
		PlanFeasibilityBand: planGDI.Band,
		ReadinessScore:      readiness,
		ReadinessConfidence: confidence,
		NoHistory:           noHist,
		ConstraintSummary: models.ConstraintSummary{
			Config:               cfg,
			TSSRampClampWeeks:    tssClampWeeks,
			CTLRampClampWeeks:    ctlClampWeeks,
			StartingCTL:          seed.State.CTL,
			StartingATL:          seed.State.ATL,
			StartingTSB:          seed.State.TSB(),
			StartingStateIsPrior: seed.IsPrior,
		},
	}
	payload.ReadinessRationaleCodes = rationaleCodes(req, noHist, feas, conflicts)
	payload.RiskFlags = riskFlags(planGDI, noHist, segs, cfg, tssClampWeeks, ctlClampWeeks)
	if payload.RecoverySegments == nil {
		payload.RecoverySegments = []models.RecoverySegment{}
	}
	return payload, nil
}

// assessGoals scores every target of every goal and derives the
// per-goal difficulty index.
func (e *Engine) assessGoals(
	goals []models.Goal,
	results []weekResult,
	cfg models.SafetyConfig,
	set calibration.Settings,
	seed simulator.Seed,
	noHist models.NoHistoryResult,
	appliedPeak, evidenceConf float64,
) ([]models.GoalAssessment, []scoring.GoalGDI, float64) {

	assessments := make([]models.GoalAssessment, 0, len(goals))
	goalGDIs := make([]scoring.GoalGDI, 0, len(goals))
	var planAcc, planWeight float64

	for _, g := range goals {
		stateAtGoal, weeksToGoal := stateAtDate(results, g.TargetDate, seed.State)
		goalRequired := goalRequiredPeak(g)
		stateReadiness := stateReadinessScore(stateAtGoal, goalRequired/7)

		proj := scoring.Projection{
			PeakWeeklyTSS:  appliedPeak,
			PeakCTL:        stateAtGoal.CTL,
			ReadinessScore: stateReadiness,
			Confidence:     evidenceConf,
		}

		scores := make([]models.TargetScore, 0, len(g.Targets))
		var acc, weightSum float64
		for _, t := range g.Targets {
			ts := scoring.ScoreTargetSatisfaction(t, proj)
			scores = append(scores, ts)
			acc += ts.Score * ts.Weight
			weightSum += ts.Weight
		}
		goalScore := 0.0
		if weightSum > 0 {
			goalScore = acc / weightSum
		}

		gdi := scoring.ComputeGoalGDI(scoring.GoalGDIInput{
			Goal:                  g,
			TargetScores:          scores,
			RequiredPeakWeeklyTSS: goalRequired,
			AppliedPeakWeeklyTSS:  appliedPeak,
			WeeksAvailable:        weeksToGoal,
			WeeksNeeded:           weeksNeededForGrowth(seed.State.CTL*7, goalRequired, cfg.MaxWeeklyTSSRampPct),
			EvidenceConfidence:    evidenceConf,
			HistorySparse:         noHist.Active,
		}, set)
		goalGDIs = append(goalGDIs, gdi)

		assessments = append(assessments, models.GoalAssessment{
			GoalID:                 g.ID,
			Priority:               g.Priority,
			TargetScores:           scores,
			GoalReadinessScore:     clampScore(goalScore),
			StateReadinessScore:    clampScore(stateReadiness),
			GoalAlignmentLoss0_100: clampScore(100 - goalScore),
			GDI:                    gdi.GDI,
			FeasibilityBand:        gdi.Band,
		})

		planAcc += goalScore * g.PriorityWeight()
		planWeight += g.PriorityWeight()
	}

	attainPlan := 75.0 // goal-free plans score on process, not outcomes
	if planWeight > 0 {
		attainPlan = planAcc / planWeight
	}
	return assessments, goalGDIs, attainPlan
}

// stateAtDate returns the simulated state at the end of the given
// date, plus how many whole weeks precede it.
func stateAtDate(results []weekResult, date time.Time, fallback simulator.State) (simulator.State, int) {
	d := timeline.DateOnly(date)
	for i, r := range results {
		if !d.Before(r.week.Start) && !d.After(r.week.End) {
			for _, p := range r.days {
				if p.Date.Equal(d) {
					return simulator.State{CTL: p.CTL, ATL: p.ATL}, i + 1
				}
			}
			return r.endState, i + 1
		}
	}
	return fallback, len(results)
}

// stateReadinessScore blends fitness adequacy against a demand CTL
// with current form, 0..100.
func stateReadinessScore(st simulator.State, demandCTL float64) float64 {
	fit := 1.0
	if demandCTL > 0 {
		fit = math.Min(1, st.CTL/demandCTL)
	}
	form := (st.TSB() + 10) / 25
	if form < 0 {
		form = 0
	}
	if form > 1 {
		form = 1
	}
	return clampScore(70*fit + 30*form)
}

func goalRequiredPeak(g models.Goal) float64 {
	peak := 0.0
	for _, t := range g.Targets {
		if t.Kind == models.TargetRacePerformance && t.Race != nil {
			if d := nohistory.RequiredPeakWeeklyLoad(t.Race.DistanceM, t.Race.TargetTimeS); d > peak {
				peak = d
			}
		}
	}
	return peak
}

// weeksNeededForGrowth estimates how many weeks of maximal allowed
// ramping it takes to grow from the starting weekly load to the
// required peak.
func weeksNeededForGrowth(startWeekly, requiredPeak, rampPct float64) float64 {
	if requiredPeak <= 0 || startWeekly <= 0 || requiredPeak <= startWeekly {
		return 0
	}
	if rampPct <= 0 {
		return math.Inf(1)
	}
	return math.Log(requiredPeak/startWeekly) / math.Log(1+rampPct/100)
}
