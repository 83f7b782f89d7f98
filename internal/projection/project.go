// Package projection composes the full pipeline: timeline, floor
// resolution, weekly composition and optimization, simulation, scoring
// and payload assembly. Project is referentially transparent: the same
// request always yields a byte-identical payload, whatever the order
// of the caller's goal and target slices.
package projection

import (
	"errors"
	"fmt"
	"math"

	"traincast/internal/calibration"
	"traincast/internal/composer"
	"traincast/internal/logger"
	"traincast/internal/models"
	"traincast/internal/nohistory"
	"traincast/internal/optimizer"
	"traincast/internal/recovery"
	"traincast/internal/simulator"
	"traincast/internal/timeline"
)

// ErrStartAfterGoal is fatal: a plan cannot start after the last goal
// it is supposed to prepare for.
var ErrStartAfterGoal = errors.New("plan start_date is after the latest goal target date")

// Engine runs projections. The logger only narrates decisions; a nil
// logger is replaced with a nop.
type Engine struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{log: log}
}

// weekResult collects one week's outcome during the walk.
type weekResult struct {
	week      timeline.Week
	decision  composer.Decision
	optimized bool
	days      []simulator.DayPoint
	endState  simulator.State
}

// Project runs the full projection for a request.
func (e *Engine) Project(req models.ProjectionRequest) (*models.ProjectionPayload, error) {
	set, err := calibration.Resolve(req.Config)
	if err != nil {
		return nil, err
	}
	cfg := calibration.NormalizeSafetyConfig(req.Config)
	goals := models.CanonicalizeGoals(req.Goals)

	if len(goals) > 0 {
		latest := timeline.DateOnly(goals[len(goals)-1].TargetDate)
		if timeline.DateOnly(req.Timeline.StartDate).After(latest) {
			return nil, fmt.Errorf("%w: start %s, latest goal %s", ErrStartAfterGoal,
				timeline.DateOnly(req.Timeline.StartDate).Format("2006-01-02"), latest.Format("2006-01-02"))
		}
	}

	weeks, err := timeline.BuildWeeks(req.Timeline, req.Blocks, goals, set)
	if err != nil {
		return nil, err
	}

	noHist := nohistory.Resolve(req.NoHistory, goals, len(weeks))
	if noHist.Active {
		e.log.Debug("no-history floor active",
			"tier", noHist.GoalTier, "level", noHist.FitnessLevel,
			"ctl_floor", noHist.StartCTLFloor)
	}

	segs := recovery.BuildSegments(goals, cfg.PostGoalRecoveryDays, req.Timeline.EndDate, set)
	recovery.ApplyToWeeks(weeks, segs, set)

	var availability *models.AvailabilityConstraints
	if req.NoHistory != nil {
		availability = req.NoHistory.Availability
	}
	_, conflicts := recovery.ResolveConstraintConflicts(availability)

	requiredPeak := requiredPeakWeeklyLoad(goals, noHist)
	seed := simulator.ResolveSeed(req.StartingState, noHist, nearTermDemand(weeks, requiredPeak))
	seedBaseline := seed.State.CTL * 7

	floorWeekly := 0.0
	if noHist.Active {
		floorWeekly = noHist.StartWeeklyTSSFloor
	}

	results := make([]weekResult, 0, len(weeks))
	state := seed.State
	prior := 0.0
	tssClampWeeks, ctlClampWeeks := 0, 0
	for i, w := range weeks {
		naive := composer.Compose(composer.Input{
			Week:           w,
			PriorWeekTSS:   prior,
			SeedBaseline:   seedBaseline,
			FloorWeeklyTSS: floorWeekly,
			State:          state,
			Config:         cfg,
			Set:            set,
		})

		decision, optimized := naive, false
		if !req.DisableWeeklyTSSOptimizer && w.Pattern != models.PatternRecovery && w.Pattern != models.PatternEvent {
			decision, optimized, err = optimizer.OptimizeWeek(optimizer.Context{
				Week:           w,
				Lookahead:      weeks[i+1:],
				PriorWeekTSS:   prior,
				SeedBaseline:   seedBaseline,
				FloorWeeklyTSS: floorWeekly,
				State:          state,
				Goals:          goals,
				Config:         cfg,
				Set:            set,
			}, naive)
			if err != nil {
				return nil, err
			}
		}

		if decision.TSSRamp.Clamped {
			tssClampWeeks++
		}
		if decision.CTLRamp.Clamped {
			ctlClampWeeks++
		}

		days := int(w.End.Sub(w.Start).Hours()/24) + 1
		endState, dayPts := simulator.SimulateWeek(state, w.Start, days, decision.PlannedTSS, set)
		results = append(results, weekResult{
			week:      w,
			decision:  decision,
			optimized: optimized,
			days:      dayPts,
			endState:  endState,
		})
		state = endState
		prior = decision.PlannedTSS
	}

	return e.assemble(req, goals, cfg, set, seed, noHist, segs, conflicts, results,
		requiredPeak, tssClampWeeks, ctlClampWeeks)
}

// requiredPeakWeeklyLoad is the demand side across all goals: the
// hardest race target's peak weekly load, or the no-history demand if
// that resolved higher.
func requiredPeakWeeklyLoad(goals []models.Goal, noHist models.NoHistoryResult) float64 {
	peak := noHist.DemandPeakWeeklyTSS
	for _, g := range goals {
		for _, t := range g.Targets {
			if t.Kind == models.TargetRacePerformance && t.Race != nil {
				if d := nohistory.RequiredPeakWeeklyLoad(t.Race.DistanceM, t.Race.TargetTimeS); d > peak {
					peak = d
				}
			}
		}
	}
	return peak
}

// nearTermDemand supplies the dynamic seed when no starting CTL
// exists: the first block's target range if declared, else a fraction
// of the demand peak.
func nearTermDemand(weeks []timeline.Week, requiredPeak float64) float64 {
	if len(weeks) > 0 {
		if b := weeks[0].Block; b != nil && b.TargetWeeklyTSSRange != nil {
			return b.TargetWeeklyTSSRange.Mid()
		}
	}
	if requiredPeak > 0 {
		return requiredPeak * 0.7
	}
	return 210
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
