// Package recovery inserts deterministic post-goal recovery windows
// and resolves availability/constraint conflicts.
package recovery

import (
	"time"

	"traincast/internal/calibration"
	"traincast/internal/models"
	"traincast/internal/timeline"
)

// Conflict codes and the default session floor used when neither the
// user nor a suggestion supplies one.
const (
	ConflictMinSessionsExceedsDays = "min_sessions_exceeds_available_days"
	defaultMinSessionsPerWeek      = 3
)

// BuildSegments derives one recovery window per goal, immediately
// after its target date. Windows are ordered by date and never
// overlap: a later goal's window starts after the previous window
// ends. Zero recovery days produces no segments.
func BuildSegments(goals []models.Goal, recoveryDays int, planEnd time.Time, set calibration.Settings) []models.RecoverySegment {
	if recoveryDays <= 0 {
		return nil
	}
	goals = models.CanonicalizeGoals(goals)
	planEnd = timeline.DateOnly(planEnd)

	var segs []models.RecoverySegment
	var prevEnd time.Time
	for _, g := range goals {
		gd := timeline.DateOnly(g.TargetDate)
		start := gd.AddDate(0, 0, 1)
		end := gd.AddDate(0, 0, recoveryDays)
		if !prevEnd.IsZero() && !start.After(prevEnd) {
			start = prevEnd.AddDate(0, 0, 1)
		}
		if end.After(planEnd) {
			end = planEnd
		}
		if start.After(end) {
			continue
		}
		segs = append(segs, models.RecoverySegment{
			ID:              models.NewDeterministicID("recovery", g.ID+"|"+start.Format("2006-01-02")),
			GoalID:          g.ID,
			StartDate:       start,
			EndDate:         end,
			ReductionFactor: set.RecoveryReductionFactor,
		})
		prevEnd = end
	}
	return segs
}

// ApplyToWeeks forces the recovery pattern onto every week a segment
// overlaps, except a goal's own event week, which keeps its event
// classification. The reduction factor is strictly below 1.
func ApplyToWeeks(weeks []timeline.Week, segs []models.RecoverySegment, set calibration.Settings) {
	for i := range weeks {
		w := &weeks[i]
		if w.Pattern == models.PatternEvent {
			continue
		}
		for _, s := range segs {
			if overlaps(w.Start, w.End, s.StartDate, s.EndDate) {
				w.Pattern = models.PatternRecovery
				if s.ReductionFactor < w.Multiplier {
					w.Multiplier = s.ReductionFactor
				}
				break
			}
		}
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// ResolveConstraintConflicts checks the session-count constraints
// against available training days. Value precedence per field is
// user > suggested > default; conflicts carry a deterministic field
// path and ordered suggestions.
func ResolveConstraintConflicts(a *models.AvailabilityConstraints) (resolvedMinSessions int, conflicts []models.ConstraintConflict) {
	resolvedMinSessions = defaultMinSessionsPerWeek
	fieldPath := "availability.suggested_min_sessions_per_week"
	if a == nil {
		return resolvedMinSessions, nil
	}
	if a.SuggestedMinSessionsPerWeek != nil {
		resolvedMinSessions = *a.SuggestedMinSessionsPerWeek
	}
	if a.UserMinSessionsPerWeek != nil {
		resolvedMinSessions = *a.UserMinSessionsPerWeek
		fieldPath = "availability.user_min_sessions_per_week"
	}

	available := a.TrainingDaysPerWeek
	if available > 7-len(a.HardRestDays) {
		available = 7 - len(a.HardRestDays)
	}
	if available > 0 && resolvedMinSessions > available {
		conflicts = append(conflicts, models.ConstraintConflict{
			Code:      ConflictMinSessionsExceedsDays,
			FieldPath: fieldPath,
			Suggestions: []string{
				"reduce_min_sessions_per_week",
				"increase_training_days_per_week",
				"relax_hard_rest_days",
			},
		})
	}
	return resolvedMinSessions, conflicts
}
