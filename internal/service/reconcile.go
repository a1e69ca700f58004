package service

import (
	"time"

	"github.com/shopspring/decimal"

	"tradegoal/internal/models"
)

// dayState tags which half of a calendar day wins during reconciliation.
type dayState int

const (
	// daySimulated: no real data, not manually closed; the planned half
	// is authoritative and the actual half resets.
	daySimulated dayState = iota
	// dayRealized: settled operations exist for the date; real numbers
	// overwrite whatever was previously planned or closed.
	dayRealized
	// dayManuallyClosed: the user closed the day by hand in the past;
	// its actual fields survive regeneration untouched.
	dayManuallyClosed
)

// classifyDay applies the reconciliation priority order: real operations
// beat a manual close, a manual close beats simulation. A manual close is
// recognized purely from persisted state: COMPLETED or BLOCKED status on a
// day not after today, with no settled operations.
func classifyDay(status string, hasRealOps bool, date, today time.Time) dayState {
	if hasRealOps {
		return dayRealized
	}
	closed := status == models.DailyPlanStatusCompleted || status == models.DailyPlanStatusBlocked
	if closed && !date.After(today) {
		return dayManuallyClosed
	}
	return daySimulated
}

// dayContribution is the amount a reconciled day feeds into the next day's
// starting capital. Realized and manually closed days contribute what
// actually happened. Simulated past days contribute nothing: an empty day
// must not invent growth. Simulated today-or-future days contribute the
// expected daily pnl.
func dayContribution(state dayState, date, today time.Time, realized, expected decimal.Decimal) decimal.Decimal {
	switch state {
	case dayRealized, dayManuallyClosed:
		return realized
	default:
		if date.Before(today) {
			return decimal.Zero
		}
		return expected
	}
}
