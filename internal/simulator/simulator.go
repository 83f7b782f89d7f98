// Package simulator rolls planned weekly loads into a CTL/ATL/TSB
// trajectory using the standard two-time-constant impulse-response
// model: fitness is a slow EMA of daily load, fatigue a fast one, and
// form is their difference.
package simulator

import (
	"math"
	"time"

	"traincast/internal/calibration"
	"traincast/internal/models"
)

// State is the rolling fitness state. It is carried forward week to
// week and never reset to a static constant mid-plan.
type State struct {
	CTL float64
	ATL float64
}

// TSB is form: fitness minus fatigue.
func (s State) TSB() float64 {
	return s.CTL - s.ATL
}

// DayPoint is one simulated day.
type DayPoint struct {
	Date time.Time
	Load float64
	CTL  float64
	ATL  float64
	TSB  float64
}

// Seed is the resolved starting state plus provenance.
type Seed struct {
	State   State
	Source  string
	IsPrior bool // true when the no-history floor seeded CTL=ATL
}

// Seed sources recorded in microcycle metadata.
const (
	SeedExplicit  = "explicit_starting_ctl"
	SeedDynamic   = "dynamic_demand_seed"
	SeedNoHistory = "no_history_floor"
)

// ResolveSeed picks the starting state. Precedence: explicit starting
// CTL, then the active no-history floor (CTL=ATL, TSB=0 by
// construction), then a dynamic seed from near-term weekly demand.
func ResolveSeed(start *models.StartingState, noHist models.NoHistoryResult, nearTermWeeklyTSS float64) Seed {
	if start != nil && start.StartingCTL != nil {
		ctl := nonNeg(*start.StartingCTL)
		atl := ctl * 1.05 // a touch of fatigue; ATL is not forced to CTL
		if start.StartingATL != nil {
			atl = nonNeg(*start.StartingATL)
		} else if start.StartingTSB != nil {
			atl = nonNeg(ctl - *start.StartingTSB)
		}
		return Seed{State: State{CTL: ctl, ATL: atl}, Source: SeedExplicit}
	}
	if noHist.Active {
		ctl := nonNeg(noHist.StartCTLFloor)
		return Seed{State: State{CTL: ctl, ATL: ctl}, Source: SeedNoHistory, IsPrior: true}
	}
	ctl := nonNeg(nearTermWeeklyTSS / 7 * 0.8)
	return Seed{State: State{CTL: ctl, ATL: ctl * 1.05}, Source: SeedDynamic}
}

func alphas(set calibration.Settings) (ctlAlpha, atlAlpha float64) {
	return 2.0 / (set.CTLTimeConstant + 1), 2.0 / (set.ATLTimeConstant + 1)
}

// AdvanceDay applies one day of load to the state.
func AdvanceDay(s State, load float64, set calibration.Settings) State {
	ca, aa := alphas(set)
	s.CTL += ca * (load - s.CTL)
	s.ATL += aa * (load - s.ATL)
	return s
}

// SimulateWeek spreads a weekly load evenly over the week's days and
// rolls the state forward one day at a time.
func SimulateWeek(s State, weekStart time.Time, days int, weeklyTSS float64, set calibration.Settings) (State, []DayPoint) {
	if days <= 0 {
		return s, nil
	}
	daily := weeklyTSS / float64(days)
	points := make([]DayPoint, 0, days)
	for d := 0; d < days; d++ {
		s = AdvanceDay(s, daily, set)
		points = append(points, DayPoint{
			Date: weekStart.AddDate(0, 0, d),
			Load: daily,
			CTL:  s.CTL,
			ATL:  s.ATL,
			TSB:  s.TSB(),
		})
	}
	return s, points
}

// weekImpulse is the total EMA weight a constant daily load collects
// over seven days: 1 - (1-alpha)^7.
func weekImpulse(set calibration.Settings) float64 {
	ca, _ := alphas(set)
	return 1 - math.Pow(1-ca, 7)
}

// CTLRampForWeek returns the CTL change a full week at weeklyTSS would
// produce from the given state. Closed form: the seven-day EMA of a
// constant daily load d moves CTL by (d - ctl0) * weekImpulse.
func CTLRampForWeek(s State, weeklyTSS float64, set calibration.Settings) float64 {
	daily := weeklyTSS / 7
	return (daily - s.CTL) * weekImpulse(set)
}

// MaxWeeklyLoadForCTLRamp inverts CTLRampForWeek: the largest weekly
// load whose CTL ramp stays at or under maxRamp.
func MaxWeeklyLoadForCTLRamp(s State, maxRamp float64, set calibration.Settings) float64 {
	imp := weekImpulse(set)
	if imp <= 0 {
		return 0
	}
	return 7 * (s.CTL + maxRamp/imp)
}

func nonNeg(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
