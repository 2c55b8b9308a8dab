package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATEGORIES
// =============================================================================

// Category identifies a leave bucket.
type Category string

const (
	CategorySick   Category = "Sick"
	CategoryCasual Category = "Casual"
	CategoryAnnual Category = "Annual"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{CategorySick, CategoryCasual, CategoryAnnual}
}

// ParseCategory validates a category name coming off the wire.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategorySick, CategoryCasual, CategoryAnnual:
		return Category(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// =============================================================================
// BALANCES
// =============================================================================

// Balance holds the allocated and applied day counts for one category.
type Balance struct {
	Allocated decimal.Decimal
	Applied   decimal.Decimal
}

// Remaining is allocated minus applied. The validator rejects requests
// that would drive it negative, so it never goes below zero here; the
// authoritative check is still the server's.
func (b Balance) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Applied)
}

// BalanceSheet maps each category to its balance.
type BalanceSheet map[Category]Balance

// Remaining returns the remaining balance for a category. Unknown
// categories have a zero balance.
func (s BalanceSheet) Remaining(cat Category) decimal.Decimal {
	return s[cat].Remaining()
}

// CanApply decides whether a request for the given number of days is
// permitted: the count must be positive and within the remaining balance.
// A failing request is rejected locally, without contacting the backend.
func (s BalanceSheet) CanApply(cat Category, days decimal.Decimal) error {
	if !days.IsPositive() {
		return ErrInvalidRange
	}
	remaining := s.Remaining(cat)
	if days.GreaterThan(remaining) {
		return &InsufficientBalanceError{
			Category:  cat,
			Requested: days,
			Remaining: remaining,
		}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInsufficientBalance is returned when a request exceeds the
	// remaining balance for its category.
	ErrInsufficientBalance = errors.New("insufficient leave balance")

	// ErrInvalidRange is returned for an empty or inverted date range.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUnknownCategory is returned for a leave type outside the fixed set.
	ErrUnknownCategory = errors.New("unknown leave category")

	// ErrMissingFields is returned when a required request field is empty.
	ErrMissingFields = errors.New("missing required fields")
)

// InsufficientBalanceError names the category and remaining balance so the
// rejection message can be shown as-is.
type InsufficientBalanceError struct {
	Category  Category
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("not enough %s leave remaining: requested %s, remaining %s",
		e.Category, e.Requested, e.Remaining)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }
