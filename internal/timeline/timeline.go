// Package timeline slices the projection horizon into contiguous
// 7-day microcycle skeletons and classifies each week's pattern.
package timeline

import (
	"errors"
	"time"

	"traincast/internal/calibration"
	"traincast/internal/models"
)

// ErrInvalidTimeline is returned when the timeline start is after its end.
var ErrInvalidTimeline = errors.New("timeline start_date is after end_date")

// Week is the skeleton of a microcycle before any load is assigned.
type Week struct {
	Index       int
	Start       time.Time
	End         time.Time
	Pattern     models.WeekPattern
	Multiplier  float64
	Block       *models.Block
	EventGoalID string // set when the week contains a goal target date
}

// DateOnly truncates to a UTC calendar date so week math never trips
// over time-of-day or zone noise.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// BuildWeeks returns ordered, contiguous weeks covering the timeline.
// Each week starts exactly one day after the previous week's end; the
// last week may be partial when the timeline ends mid-week.
func BuildWeeks(t models.Timeline, blocks []models.Block, goals []models.Goal, set calibration.Settings) ([]Week, error) {
	start := DateOnly(t.StartDate)
	end := DateOnly(t.EndDate)
	if start.After(end) {
		return nil, ErrInvalidTimeline
	}
	goals = models.CanonicalizeGoals(goals)

	var weeks []Week
	for idx, ws := 0, start; !ws.After(end); idx, ws = idx+1, ws.AddDate(0, 0, 7) {
		we := ws.AddDate(0, 0, 6)
		if we.After(end) {
			we = end
		}
		w := Week{Index: idx, Start: ws, End: we, Multiplier: 1.0}
		w.Block = blockFor(blocks, ws, we)
		weeks = append(weeks, w)
	}

	for i := range weeks {
		classify(&weeks[i], goals, set)
	}
	return weeks, nil
}

// blockFor attributes a week to the block containing its midpoint,
// falling back to the block containing the week's first day.
func blockFor(blocks []models.Block, ws, we time.Time) *models.Block {
	mid := ws.AddDate(0, 0, 3)
	if mid.After(we) {
		mid = we
	}
	for i := range blocks {
		if blockContains(blocks[i], mid) {
			return &blocks[i]
		}
	}
	for i := range blocks {
		if blockContains(blocks[i], ws) {
			return &blocks[i]
		}
	}
	return nil
}

func blockContains(b models.Block, d time.Time) bool {
	return !d.Before(DateOnly(b.StartDate)) && !d.After(DateOnly(b.EndDate))
}

// classify decides the week pattern. A week holding a goal date is an
// event week; a week feeding an upcoming goal tapers with a
// priority-weighted multiplier blend; everything else inherits the
// owning block's phase at multiplier 1.
func classify(w *Week, goals []models.Goal, set calibration.Settings) {
	for _, g := range goals {
		gd := DateOnly(g.TargetDate)
		if !gd.Before(w.Start) && !gd.After(w.End) {
			w.Pattern = models.PatternEvent
			w.Multiplier = set.EventMultiplier
			w.EventGoalID = g.ID
			return
		}
	}

	if mult, ok := taperBlend(w, goals, set); ok {
		w.Pattern = models.PatternTaper
		w.Multiplier = mult
		return
	}

	if w.Block != nil {
		if p, ok := models.PhaseToPattern[w.Block.Phase]; ok {
			w.Pattern = p
			if p == models.PatternRecovery {
				w.Multiplier = set.RecoveryReductionFactor
			}
			return
		}
	}
	w.Pattern = models.PatternBase
}

// taperBlend combines the taper pressure of every goal approaching
// within the next two weeks. Each goal contributes a multiplier that
// is lower for higher priority, weighted by priority and urgency; the
// result is a weighted average, never a plain min or max.
func taperBlend(w *Week, goals []models.Goal, set calibration.Settings) (float64, bool) {
	var weightSum, acc float64
	for _, g := range goals {
		gd := DateOnly(g.TargetDate)
		days := int(gd.Sub(w.End).Hours() / 24)
		if days <= 0 || days > 14 {
			continue
		}
		urgency := 1.0
		if days <= 7 {
			urgency = 2.0
		}
		p := g.Priority
		if p < 1 {
			p = 1
		}
		if p > 10 {
			p = 10
		}
		mult := set.TaperBaseMultiplier + set.TaperPriorityStep*float64(p-1)
		// Two weeks out the taper is softer than the final week.
		if days > 7 {
			mult = mult + (1-mult)*0.5
		}
		weight := g.PriorityWeight() * urgency
		acc += mult * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return 0, false
	}
	return acc / weightSum, true
}
