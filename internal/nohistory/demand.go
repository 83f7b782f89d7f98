package nohistory

import "math"

// Demand-side model: how much peak weekly load a race target asks for.
// The curve is continuous in target pace so that nearby target times
// never produce discontinuous demand jumps, and monotone in difficulty.

// referenceTenKSeconds anchors the plausibility curve: an elite 10k.
const referenceTenKSeconds = 1600.0

// riegelExponent is the standard endurance time-scaling exponent.
const riegelExponent = 1.06

// EliteTimeS returns the plausibility-cap finish time for a distance,
// scaled from the 10k anchor with Riegel's formula.
func EliteTimeS(distanceM float64) float64 {
	if distanceM <= 0 {
		return 0
	}
	return referenceTenKSeconds * math.Pow(distanceM/10000.0, riegelExponent)
}

// SpeedRatio expresses a race target's difficulty as a fraction of the
// plausibility cap: 1.0 means elite pace, above 1.0 is faster than any
// plausible athlete. Clamped to [0, 1.2].
func SpeedRatio(distanceM, targetTimeS float64) float64 {
	if distanceM <= 0 || targetTimeS <= 0 {
		return 0
	}
	ratio := EliteTimeS(distanceM) / targetTimeS
	if math.IsNaN(ratio) || ratio < 0 {
		return 0
	}
	if ratio > 1.2 {
		return 1.2
	}
	return ratio
}

// AbovePlausibleCap reports whether a race target demands more than
// the physiological plausibility curve allows.
func AbovePlausibleCap(distanceM, targetTimeS float64) bool {
	return SpeedRatio(distanceM, targetTimeS) > 1.0
}

// RequiredPeakWeeklyLoad maps a race target to the peak weekly TSS a
// plan must reach. Volume scales with the log of race distance; pace
// relative to the plausibility cap refines it. The pace slope is kept
// shallow: a 60-second target-time change moves the demand by well
// under one TSS unit.
func RequiredPeakWeeklyLoad(distanceM, targetTimeS float64) float64 {
	if distanceM <= 0 || targetTimeS <= 0 {
		return 0
	}
	km := distanceM / 1000.0
	base := 134 + 72*math.Log(km)
	if base < 60 {
		base = 60
	}
	load := base * (0.9 + 0.15*SpeedRatio(distanceM, targetTimeS))
	if load < 60 {
		load = 60
	}
	if load > 900 {
		load = 900
	}
	return load
}
