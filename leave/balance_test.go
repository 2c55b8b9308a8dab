package leave_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portal-engine/leave"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sheet() leave.BalanceSheet {
	return leave.BalanceSheet{
		leave.CategorySick:   {Allocated: d("10"), Applied: d("2")},
		leave.CategoryCasual: {Allocated: d("8"), Applied: d("8")},
		leave.CategoryAnnual: {Allocated: d("20"), Applied: d("11.5")},
	}
}

func TestBalanceSheet_Remaining(t *testing.T) {
	s := sheet()
	assert.True(t, s.Remaining(leave.CategorySick).Equal(d("8")))
	assert.True(t, s.Remaining(leave.CategoryCasual).IsZero())
	assert.True(t, s.Remaining(leave.CategoryAnnual).Equal(d("8.5")))
	assert.True(t, s.Remaining("Unpaid").IsZero(), "unknown category reads as zero")
}

func TestBalanceSheet_CanApply(t *testing.T) {
	s := sheet()

	// Exactly the remaining amount is allowed
	assert.NoError(t, s.CanApply(leave.CategorySick, d("8")))
	assert.NoError(t, s.CanApply(leave.CategoryAnnual, d("0.5")))

	// One half-day over is not
	err := s.CanApply(leave.CategorySick, d("8.5"))
	require.Error(t, err)
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	var ib *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.Equal(t, leave.CategorySick, ib.Category)
	assert.True(t, ib.Remaining.Equal(d("8")))
	assert.Contains(t, ib.Error(), "Sick")
	assert.Contains(t, ib.Error(), "8")

	// An exhausted category rejects any request
	assert.ErrorIs(t, s.CanApply(leave.CategoryCasual, d("0.5")), leave.ErrInsufficientBalance)

	// Non-positive requests are invalid rather than insufficient
	assert.ErrorIs(t, s.CanApply(leave.CategorySick, decimal.Zero), leave.ErrInvalidRange)
	assert.ErrorIs(t, s.CanApply(leave.CategorySick, d("-1")), leave.ErrInvalidRange)
}

func TestParseCategory(t *testing.T) {
	for _, cat := range leave.Categories() {
		got, err := leave.ParseCategory(string(cat))
		require.NoError(t, err)
		assert.Equal(t, cat, got)
	}

	_, err := leave.ParseCategory("sick")
	assert.ErrorIs(t, err, leave.ErrUnknownCategory, "categories are case-sensitive")
}

// =============================================================================
// REQUEST CONSTRUCTION
// =============================================================================

func TestNewRequest_ComputesWorkingDays(t *testing.T) {
	// GIVEN: Mon 2026-03-02 .. Fri 2026-03-06
	start := time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 6, 17, 0, 0, 0, time.UTC)

	req, err := leave.NewRequest("V1001", leave.CategoryAnnual, start, end, false, "family visit")

	require.NoError(t, err)
	assert.True(t, req.Days.Equal(d("5")))
	assert.Equal(t, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC), req.StartDate)
}

func TestNewRequest_Rejections(t *testing.T) {
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	sat := time.Date(2026, time.March, 7, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2026, time.March, 8, 0, 0, 0, 0, time.UTC)

	_, err := leave.NewRequest("", leave.CategorySick, mon, mon, false, "r")
	assert.ErrorIs(t, err, leave.ErrMissingFields)

	_, err = leave.NewRequest("V1001", leave.CategorySick, mon, mon, false, "   ")
	assert.ErrorIs(t, err, leave.ErrMissingFields)

	_, err = leave.NewRequest("V1001", "Unpaid", mon, mon, false, "r")
	assert.ErrorIs(t, err, leave.ErrUnknownCategory)

	// A weekend-only range has zero working days
	_, err = leave.NewRequest("V1001", leave.CategorySick, sat, sun, false, "r")
	assert.ErrorIs(t, err, leave.ErrInvalidRange)

	// Inverted ranges likewise
	_, err = leave.NewRequest("V1001", leave.CategorySick, sun, mon, false, "r")
	assert.ErrorIs(t, err, leave.ErrInvalidRange)
}

func TestRequest_Validate_AgainstSheet(t *testing.T) {
	mon := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	fri2 := time.Date(2026, time.March, 13, 0, 0, 0, 0, time.UTC)

	// GIVEN: A 10-day request against 8 remaining sick days
	req, err := leave.NewRequest("V1001", leave.CategorySick, mon, fri2, false, "surgery")
	require.NoError(t, err)

	// THEN: The sheet rejects it with the exact remaining count
	err = req.Validate(sheet())
	var ib *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &ib)
	assert.True(t, ib.Requested.Equal(d("10")))
	assert.True(t, ib.Remaining.Equal(d("8")))

	// A request within the annual balance passes
	req, err = leave.NewRequest("V1001", leave.CategoryAnnual, mon, fri2, false, "holiday")
	require.NoError(t, err)
	assert.NoError(t, req.Validate(sheet()))
}
