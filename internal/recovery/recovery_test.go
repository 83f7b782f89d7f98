package recovery

import (
	"testing"
	"time"

	"traincast/internal/calibration"
	"traincast/internal/models"
	"traincast/internal/timeline"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildSegments_SevenDayWindowAfterGoal(t *testing.T) {
	goals := []models.Goal{{ID: "race-a", TargetDate: day(2026, 1, 24)}}
	segs := BuildSegments(goals, 7, day(2026, 3, 1), calibration.Default())
	if len(segs) != 1 {
		t.Fatalf("segments = %d, want 1", len(segs))
	}
	if !segs[0].StartDate.Equal(day(2026, 1, 25)) {
		t.Errorf("start = %v, want 2026-01-25", segs[0].StartDate)
	}
	if !segs[0].EndDate.Equal(day(2026, 1, 31)) {
		t.Errorf("end = %v, want 2026-01-31", segs[0].EndDate)
	}
	if segs[0].GoalID != "race-a" {
		t.Errorf("goal id = %s", segs[0].GoalID)
	}
	if segs[0].ReductionFactor >= 1 {
		t.Errorf("reduction factor = %v, want < 1", segs[0].ReductionFactor)
	}
}

func TestBuildSegments_ZeroDaysProducesNone(t *testing.T) {
	goals := []models.Goal{{ID: "race-a", TargetDate: day(2026, 1, 24)}}
	if segs := BuildSegments(goals, 0, day(2026, 3, 1), calibration.Default()); segs != nil {
		t.Errorf("segments = %v, want none for zero recovery days", segs)
	}
}

func TestBuildSegments_NeverOverlap(t *testing.T) {
	goals := []models.Goal{
		{ID: "g-b", TargetDate: day(2026, 1, 28)},
		{ID: "g-a", TargetDate: day(2026, 1, 24)},
	}
	segs := BuildSegments(goals, 7, day(2026, 3, 1), calibration.Default())
	if len(segs) != 2 {
		t.Fatalf("segments = %d, want 2", len(segs))
	}
	// g-a's window runs 01-25..01-31; g-b's must start after it even
	// though its goal date falls inside.
	if !segs[1].StartDate.Equal(day(2026, 2, 1)) {
		t.Errorf("second start = %v, want 2026-02-01", segs[1].StartDate)
	}
	if !segs[0].EndDate.Before(segs[1].StartDate) {
		t.Error("segments overlap")
	}
}

func TestBuildSegments_ClippedAtPlanEnd(t *testing.T) {
	goals := []models.Goal{{ID: "g-a", TargetDate: day(2026, 1, 24)}}
	segs := BuildSegments(goals, 7, day(2026, 1, 27), calibration.Default())
	if len(segs) != 1 {
		t.Fatalf("segments = %d, want 1", len(segs))
	}
	if !segs[0].EndDate.Equal(day(2026, 1, 27)) {
		t.Errorf("end = %v, want clipped to plan end", segs[0].EndDate)
	}

	// Goal on the final day: the window has no room at all.
	segs = BuildSegments(goals, 7, day(2026, 1, 24), calibration.Default())
	if len(segs) != 0 {
		t.Errorf("segments = %v, want none when no days remain", segs)
	}
}

func TestBuildSegments_DeterministicIDs(t *testing.T) {
	goals := []models.Goal{{ID: "g-a", TargetDate: day(2026, 1, 24)}}
	a := BuildSegments(goals, 5, day(2026, 3, 1), calibration.Default())
	b := BuildSegments(goals, 5, day(2026, 3, 1), calibration.Default())
	if a[0].ID != b[0].ID {
		t.Errorf("ids differ across identical runs: %s vs %s", a[0].ID, b[0].ID)
	}
}

func TestApplyToWeeks_ForcesRecoveryPattern(t *testing.T) {
	set := calibration.Default()
	weeks := []timeline.Week{
		{Index: 0, Start: day(2026, 1, 19), End: day(2026, 1, 25), Pattern: models.PatternEvent, Multiplier: 0.82},
		{Index: 1, Start: day(2026, 1, 26), End: day(2026, 2, 1), Pattern: models.PatternBase, Multiplier: 1.0},
		{Index: 2, Start: day(2026, 2, 2), End: day(2026, 2, 8), Pattern: models.PatternBase, Multiplier: 1.0},
	}
	segs := []models.RecoverySegment{{
		GoalID:          "g-a",
		StartDate:       day(2026, 1, 25),
		EndDate:         day(2026, 1, 31),
		ReductionFactor: set.RecoveryReductionFactor,
	}}
	ApplyToWeeks(weeks, segs, set)

	if weeks[0].Pattern != models.PatternEvent {
		t.Errorf("event week pattern = %s, must keep event classification", weeks[0].Pattern)
	}
	if weeks[1].Pattern != models.PatternRecovery {
		t.Errorf("overlapped week pattern = %s, want recovery", weeks[1].Pattern)
	}
	if weeks[1].Multiplier >= 1 {
		t.Errorf("recovery multiplier = %v, want < 1", weeks[1].Multiplier)
	}
	if weeks[2].Pattern != models.PatternBase {
		t.Errorf("untouched week pattern = %s, want standard", weeks[2].Pattern)
	}
}

func TestApplyToWeeks_KeepsLowerExistingMultiplier(t *testing.T) {
	set := calibration.Default()
	weeks := []timeline.Week{
		{Start: day(2026, 1, 26), End: day(2026, 2, 1), Pattern: models.PatternTaper, Multiplier: 0.40},
	}
	segs := []models.RecoverySegment{{
		StartDate:       day(2026, 1, 25),
		EndDate:         day(2026, 1, 31),
		ReductionFactor: set.RecoveryReductionFactor,
	}}
	ApplyToWeeks(weeks, segs, set)
	if weeks[0].Multiplier != 0.40 {
		t.Errorf("multiplier = %v, recovery must not raise an already lower multiplier", weeks[0].Multiplier)
	}
	if weeks[0].Pattern != models.PatternRecovery {
		t.Errorf("pattern = %s, want recovery", weeks[0].Pattern)
	}
}

func ip(v int) *int { return &v }

func TestResolveConstraintConflicts(t *testing.T) {
	tests := []struct {
		name          string
		in            *models.AvailabilityConstraints
		wantSessions  int
		wantConflicts int
		wantField     string
	}{
		{
			name:         "nil availability uses default",
			in:           nil,
			wantSessions: 3,
		},
		{
			name:         "suggested fills the gap",
			in:           &models.AvailabilityConstraints{TrainingDaysPerWeek: 6, SuggestedMinSessionsPerWeek: ip(4)},
			wantSessions: 4,
		},
		{
			name:         "user overrides suggested",
			in:           &models.AvailabilityConstraints{TrainingDaysPerWeek: 6, SuggestedMinSessionsPerWeek: ip(4), UserMinSessionsPerWeek: ip(5)},
			wantSessions: 5,
		},
		{
			name:          "user demand above available days conflicts on the user field",
			in:            &models.AvailabilityConstraints{TrainingDaysPerWeek: 3, UserMinSessionsPerWeek: ip(6)},
			wantSessions:  6,
			wantConflicts: 1,
			wantField:     "availability.user_min_sessions_per_week",
		},
		{
			name:          "suggested demand above available days conflicts on the suggested field",
			in:            &models.AvailabilityConstraints{TrainingDaysPerWeek: 3, SuggestedMinSessionsPerWeek: ip(5)},
			wantSessions:  5,
			wantConflicts: 1,
			wantField:     "availability.suggested_min_sessions_per_week",
		},
		{
			name: "hard rest days shrink availability",
			in: &models.AvailabilityConstraints{
				TrainingDaysPerWeek:    7,
				UserMinSessionsPerWeek: ip(5),
				HardRestDays:           []int{1, 3, 5},
			},
			wantSessions:  5,
			wantConflicts: 1,
			wantField:     "availability.user_min_sessions_per_week",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conflicts := ResolveConstraintConflicts(tt.in)
			if got != tt.wantSessions {
				t.Errorf("sessions = %d, want %d", got, tt.wantSessions)
			}
			if len(conflicts) != tt.wantConflicts {
				t.Fatalf("conflicts = %d, want %d", len(conflicts), tt.wantConflicts)
			}
			if tt.wantConflicts > 0 {
				c := conflicts[0]
				if c.Code != ConflictMinSessionsExceedsDays {
					t.Errorf("code = %s", c.Code)
				}
				if c.FieldPath != tt.wantField {
					t.Errorf("field path = %s, want %s", c.FieldPath, tt.wantField)
				}
				if len(c.Suggestions) == 0 {
					t.Error("conflict carries no suggestions")
				}
			}
		})
	}
}
