package leave

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Request is a leave application with its computed working-day count.
type Request struct {
	EmployeeID string
	Category   Category
	StartDate  time.Time
	EndDate    time.Time
	HalfDay    bool
	Reason     string
	Days       decimal.Decimal
}

// NewRequest builds a request, computing the working-day count from the
// range. Employee, category and reason are required; the computed count
// must be positive.
func NewRequest(employeeID string, cat Category, start, end time.Time, halfDay bool, reason string) (Request, error) {
	if employeeID == "" || cat == "" || strings.TrimSpace(reason) == "" {
		return Request{}, ErrMissingFields
	}
	if _, err := ParseCategory(string(cat)); err != nil {
		return Request{}, err
	}

	days := WorkingDays(start, end, halfDay)
	if !days.IsPositive() {
		return Request{}, ErrInvalidRange
	}

	return Request{
		EmployeeID: employeeID,
		Category:   cat,
		StartDate:  truncateToDay(start),
		EndDate:    truncateToDay(end),
		HalfDay:    halfDay,
		Reason:     reason,
		Days:       days,
	}, nil
}

// Validate checks the request against the balance sheet. It is the
// client-side guard; the server re-runs the same check on apply.
func (r Request) Validate(balances BalanceSheet) error {
	return balances.CanApply(r.Category, r.Days)
}
