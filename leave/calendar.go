/*
Package leave implements leave requests, balances and the working-day
calendar used by the self-service portal.

PURPOSE:
  Employees apply for Sick/Casual/Annual leave over a date range. The day
  count excludes weekends, a half-day flag knocks half a day off, and a
  request is only permitted while the category's remaining balance covers
  it. Day counts use decimal.Decimal so the half-day case is exact.

KEY CONCEPTS:
  - WorkingDays: business-day count for a date range (calendar.go)
  - BalanceSheet: allocated/applied per category (balance.go)
  - Request: a validated leave application (request.go)

SEE ALSO:
  - balance.go: remaining-balance arithmetic and CanApply
  - request.go: request construction and validation
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// IsWeekend reports whether the date falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDays counts the business days from start to end inclusive,
// excluding weekends. If halfDay is set and the count is positive, half a
// day is subtracted. An inverted range counts as zero.
//
// Dates are compared as local calendar days; no timezone normalization is
// applied beyond truncating to midnight.
func WorkingDays(start, end time.Time, halfDay bool) decimal.Decimal {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if end.Before(start) {
		return decimal.Zero
	}

	days := 0
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 0, 1) {
		if !IsWeekend(cur) {
			days++
		}
	}

	total := decimal.NewFromInt(int64(days))
	if halfDay && days > 0 {
		total = total.Sub(half)
	}
	return total
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
