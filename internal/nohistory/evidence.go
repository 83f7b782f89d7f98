package nohistory

import "traincast/internal/models"

// Rationale codes surfaced by the resolver. These travel in the
// payload so callers can explain why a floor or confidence was chosen.
const (
	CodeDefaultWeak          = "insufficient_evidence_default_weak"
	CodeWeakSignals          = "evidence_weak_signals"
	CodeModerateSignals      = "evidence_moderate_signals"
	CodeStrongSignals        = "evidence_strong_signals"
	CodeAvailabilityMissing  = "availability_missing_skip_floor_clamp"
	CodeFloorClamped         = "floor_clamped_by_availability"
	CodeCTLOverrideApplied   = "starting_ctl_override_applied"
	CodeLongHorizonDowngrade = "long_horizon_weak_evidence_downgrade"
)

// EvidenceGrade is the behavioral-evidence verdict.
type EvidenceGrade struct {
	Level      models.FitnessLevel
	Confidence float64 // 0..100
	Code       string
}

// GradeEvidence infers a fitness level from whatever behavioral
// signals exist. Fewer than two signals is not enough to leave the
// weak default, whatever their values.
func GradeEvidence(ctx *models.NoHistoryContext) EvidenceGrade {
	if ctx == nil {
		return EvidenceGrade{Level: models.LevelWeak, Confidence: 25, Code: CodeDefaultWeak}
	}
	var signals []float64
	for _, s := range []*float64{ctx.Consistency, ctx.EffortConfidence, ctx.ProfileCompleteness, ctx.SignalQuality} {
		if s != nil {
			signals = append(signals, clamp01(*s))
		}
	}
	if len(signals) < 2 {
		return EvidenceGrade{Level: models.LevelWeak, Confidence: 25, Code: CodeDefaultWeak}
	}
	mean := 0.0
	for _, s := range signals {
		mean += s
	}
	mean /= float64(len(signals))

	conf := 20 + 60*mean + 2*float64(len(signals))
	if conf > 90 {
		conf = 90
	}
	switch {
	case mean >= 0.75:
		return EvidenceGrade{Level: models.LevelStrong, Confidence: conf, Code: CodeStrongSignals}
	case mean >= 0.45:
		return EvidenceGrade{Level: models.LevelModerate, Confidence: conf, Code: CodeModerateSignals}
	default:
		return EvidenceGrade{Level: models.LevelWeak, Confidence: conf, Code: CodeWeakSignals}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
