package models

import (
	"fmt"
	"sort"
	"time"
)

// TargetKind discriminates the target variants
type TargetKind string

const (
	TargetRacePerformance TargetKind = "race_performance"
	TargetPowerThreshold  TargetKind = "power_threshold"
	TargetPaceThreshold   TargetKind = "pace_threshold"
	TargetHRThreshold     TargetKind = "hr_threshold"
)

// RacePerformanceTarget is a finish-time goal over a fixed distance
type RacePerformanceTarget struct {
	DistanceM        float64 `json:"distance_m"`
	TargetTimeS      float64 `json:"target_time_s"`
	ActivityCategory string  `json:"activity_category"`
}

// PowerThresholdTarget is a sustained-power goal over a test duration
type PowerThresholdTarget struct {
	TargetWatts      float64 `json:"target_watts"`
	TestDurationS    float64 `json:"test_duration_s"`
	ActivityCategory string  `json:"activity_category"`
}

// PaceThresholdTarget is a sustained-speed goal over a test duration
type PaceThresholdTarget struct {
	TargetSpeedMps   float64 `json:"target_speed_mps"`
	TestDurationS    float64 `json:"test_duration_s"`
	ActivityCategory string  `json:"activity_category"`
}

// HRThresholdTarget is a lactate-threshold heart-rate goal
type HRThresholdTarget struct {
	TargetLTHRBpm float64 `json:"target_lthr_bpm"`
}

// Target is a tagged union: Kind selects exactly one of the variant
// pointers; the others stay nil.
type Target struct {
	Kind   TargetKind             `json:"kind"`
	Weight float64                `json:"weight,omitempty"`
	Race   *RacePerformanceTarget `json:"race_performance,omitempty"`
	Power  *PowerThresholdTarget  `json:"power_threshold,omitempty"`
	Pace   *PaceThresholdTarget   `json:"pace_threshold,omitempty"`
	HR     *HRThresholdTarget     `json:"hr_threshold,omitempty"`
}

// EffectiveWeight returns the target weight, defaulting to 1.
func (t Target) EffectiveWeight() float64 {
	if t.Weight > 0 {
		return t.Weight
	}
	return 1
}

// SortKey returns a stable string key so target slices can be put in a
// canonical order independent of caller insertion order.
func (t Target) SortKey() string {
	switch t.Kind {
	case TargetRacePerformance:
		if t.Race != nil {
			return fmt.Sprintf("%s|%012.1f|%012.1f|%s", t.Kind, t.Race.DistanceM, t.Race.TargetTimeS, t.Race.ActivityCategory)
		}
	case TargetPowerThreshold:
		if t.Power != nil {
			return fmt.Sprintf("%s|%012.1f|%012.1f|%s", t.Kind, t.Power.TargetWatts, t.Power.TestDurationS, t.Power.ActivityCategory)
		}
	case TargetPaceThreshold:
		if t.Pace != nil {
			return fmt.Sprintf("%s|%012.4f|%012.1f|%s", t.Kind, t.Pace.TargetSpeedMps, t.Pace.TestDurationS, t.Pace.ActivityCategory)
		}
	case TargetHRThreshold:
		if t.HR != nil {
			return fmt.Sprintf("%s|%012.1f", t.Kind, t.HR.TargetLTHRBpm)
		}
	}
	return string(t.Kind)
}

// Goal is a dated objective with one or more performance targets.
// Priority 1 is highest, 10 lowest.
type Goal struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TargetDate time.Time `json:"target_date"`
	Priority   int       `json:"priority"`
	Targets    []Target  `json:"targets"`
}

// PriorityWeight converts priority rank into an aggregation weight.
func (g Goal) PriorityWeight() float64 {
	p := g.Priority
	if p < 1 {
		p = 1
	}
	if p > 10 {
		p = 10
	}
	return 1.0 / float64(p)
}

// CanonicalizeGoals returns a defensive copy of goals sorted by
// (target_date, id), with each goal's targets sorted by their stable key.
// The engine must not depend on caller iteration order, so every entry
// point normalizes through this first.
func CanonicalizeGoals(goals []Goal) []Goal {
	out := make([]Goal, len(goals))
	copy(out, goals)
	for i := range out {
		ts := make([]Target, len(out[i].Targets))
		copy(ts, out[i].Targets)
		sort.SliceStable(ts, func(a, b int) bool {
			return ts[a].SortKey() < ts[b].SortKey()
		})
		out[i].Targets = ts
	}
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].TargetDate.Equal(out[b].TargetDate) {
			return out[a].TargetDate.Before(out[b].TargetDate)
		}
		return out[a].ID < out[b].ID
	})
	return out
}
