// Package projection holds the pure growth math shared by the calendar
// engine, the goal progress endpoint and the what-if planner. Nothing in
// here touches persistence.
package projection

import (
	"math"
)

// ExpectedReturnPerOp is the expected fraction of stake gained per
// operation: winrate*payout on wins minus the full stake on losses.
func ExpectedReturnPerOp(winrate, payout float64) float64 {
	return winrate*payout - (1 - winrate)
}

// DailyGrowthFactor is the multiplicative capital growth expected per day.
// Stake is not compounded within the day: every operation risks the same
// fraction of the day's starting capital.
func DailyGrowthFactor(riskFraction float64, opsPerDay int, expectedReturnPerOp float64) float64 {
	return 1 + riskFraction*float64(opsPerDay)*expectedReturnPerOp
}

// DaysToGoal solves target = current * growth^days for days, ceiling-rounded.
// Returns ok=false when the goal is unreachable (growth <= 1) or the inputs
// make the question undefined (current <= 0 or target <= 0).
func DaysToGoal(current, target, growth float64) (int, bool) {
	if growth <= 1 || current <= 0 || target <= 0 {
		return 0, false
	}
	if target <= current {
		return 0, true
	}
	days := math.Log(target/current) / math.Log(growth)
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return 0, false
	}
	return int(math.Ceil(days)), true
}

// ProjectCapital compounds current over nDays at the given growth factor.
// A non-positive growth factor yields 0 rather than an oscillating or
// negative capital path.
func ProjectCapital(current, growth float64, nDays int) float64 {
	if growth <= 0 {
		return 0
	}
	return current * math.Pow(growth, float64(nDays))
}

// RealWinrate is wins over total settled operations. ok=false on a zero
// denominator so callers can render "no data" instead of dividing by zero.
func RealWinrate(wins, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return float64(wins) / float64(total), true
}
