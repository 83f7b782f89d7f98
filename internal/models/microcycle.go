package models

import (
	"time"

	"github.com/google/uuid"
)

// microcycleNamespace anchors deterministic v5 ids: identical inputs
// must yield byte-identical payloads, so derived entities hash their
// own coordinates instead of drawing random ids.
var microcycleNamespace = uuid.MustParse("7a1f3f60-9f2d-5f44-a1c0-1d2e4b5a6c70")

// NewDeterministicID derives a stable UUID from a kind and key.
func NewDeterministicID(kind, key string) string {
	return uuid.NewSHA1(microcycleNamespace, []byte(kind+"|"+key)).String()
}

// ClampMeta records one safety-cap decision: what was asked for, what
// was applied, and the bound that applied it.
type ClampMeta struct {
	Clamped   bool    `json:"clamped"`
	Requested float64 `json:"requested"`
	Applied   float64 `json:"applied"`
	Max       float64 `json:"max"`
}

// MicrocycleMetadata explains how a week's planned load was decided.
type MicrocycleMetadata struct {
	TSSRamp           ClampMeta `json:"tss_ramp"`
	CTLRamp           ClampMeta `json:"ctl_ramp"`
	Recovery          bool      `json:"recovery"`
	ReductionFactor   float64   `json:"reduction_factor,omitempty"`
	SeedSource        string    `json:"seed_source"`
	BlockName         string    `json:"block_name,omitempty"`
	PatternMultiplier float64   `json:"pattern_multiplier"`
	OptimizerApplied  bool      `json:"optimizer_applied"`
}

// Microcycle is one planning week. Created once per orchestration run
// and immutable afterwards; recomputation always builds a fresh set.
type Microcycle struct {
	ID               string             `json:"id"`
	WeekStartDate    time.Time          `json:"week_start_date"`
	WeekEndDate      time.Time          `json:"week_end_date"`
	Pattern          WeekPattern        `json:"pattern"`
	PlannedWeeklyTSS float64            `json:"planned_weekly_tss"`
	Metadata         MicrocycleMetadata `json:"metadata"`
}
