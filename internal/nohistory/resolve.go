package nohistory

import (
	"math"
	"sort"

	"traincast/internal/models"
)

// sustainableTSSPerHour approximates the stress an athlete accrues per
// training hour at the moderate intensities a floor plan assumes.
const sustainableTSSPerHour = 70.0

// defaultSessionMinutes is assumed when availability gives day counts
// but no session-length cap.
const defaultSessionMinutes = 90

// Resolve derives the full no-history verdict: floor, evidence level,
// confidence, demand, and every rationale code. Inactive (nil context
// or full history) resolutions return Active=false with everything
// else zeroed.
func Resolve(ctx *models.NoHistoryContext, goals []models.Goal, horizonWeeks int) models.NoHistoryResult {
	if ctx == nil || ctx.HistoryAvailability == models.HistoryFull {
		return models.NoHistoryResult{Active: false}
	}

	grade := GradeEvidence(ctx)
	codes := []string{grade.Code}

	tier := ctx.GoalTier
	if tier == "" {
		tier = InferGoalTier(goals)
	}
	floor := DeriveProjectionFloor(tier, grade.Level)

	// Demand side: the hardest race target decides the peak weekly
	// load this plan has to grow toward.
	demandPeak := floor.StartWeeklyTSSFloor
	for _, g := range goals {
		for _, t := range g.Targets {
			if t.Kind == models.TargetRacePerformance && t.Race != nil {
				if d := RequiredPeakWeeklyLoad(t.Race.DistanceM, t.Race.TargetTimeS); d > demandPeak {
					demandPeak = d
				}
			}
		}
	}

	clamped := false
	if ctx.Availability == nil {
		codes = append(codes, CodeAvailabilityMissing)
	} else if capacity := weeklyCapacityTSS(ctx.Availability); capacity > 0 && capacity < floor.StartWeeklyTSSFloor {
		floor.StartWeeklyTSSFloor = math.Round(capacity)
		floor.StartCTLFloor = math.Round(capacity/7*10) / 10
		clamped = true
		codes = append(codes, CodeFloorClamped)
	}

	// An explicit override always wins over anything inferred.
	if ctx.StartingCTLOverride != nil && *ctx.StartingCTLOverride > 0 {
		floor.StartCTLFloor = *ctx.StartingCTLOverride
		floor.StartWeeklyTSSFloor = math.Round(floor.StartCTLFloor * 7)
		clamped = false
		codes = append(codes, CodeCTLOverrideApplied)
	}

	conf := grade.Confidence
	if grade.Level == models.LevelWeak && horizonWeeks > 16 && len(goals) > 1 {
		conf *= 0.8
		codes = append(codes, CodeLongHorizonDowngrade)
	}

	sort.Strings(codes)
	return models.NoHistoryResult{
		Active:                     true,
		GoalTier:                   tier,
		FitnessLevel:               grade.Level,
		StartCTLFloor:              floor.StartCTLFloor,
		StartWeeklyTSSFloor:        floor.StartWeeklyTSSFloor,
		DemandPeakWeeklyTSS:        demandPeak,
		EvidenceConfidence:         clampScore(conf),
		FloorClampedByAvailability: clamped,
		RationaleCodes:             codes,
	}
}

// weeklyCapacityTSS estimates how much weekly load the stated
// availability can physically hold.
func weeklyCapacityTSS(a *models.AvailabilityConstraints) float64 {
	if a == nil || a.TrainingDaysPerWeek <= 0 {
		return 0
	}
	days := a.TrainingDaysPerWeek
	if days > 7 {
		days = 7
	}
	days -= countRestDayOverlap(a)
	if days <= 0 {
		return 0
	}
	minutes := a.MaxSessionMinutes
	if minutes <= 0 {
		minutes = defaultSessionMinutes
	}
	return float64(days) * float64(minutes) / 60.0 * sustainableTSSPerHour
}

// countRestDayOverlap removes hard-rest days that eat into the stated
// training days.
func countRestDayOverlap(a *models.AvailabilityConstraints) int {
	free := 7 - len(a.HardRestDays)
	if a.TrainingDaysPerWeek <= free {
		return 0
	}
	return a.TrainingDaysPerWeek - free
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
