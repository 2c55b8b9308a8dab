/*
wizard_flow_test.go - End-to-end flows through the real HTTP stack

The wizard controller drives the gateway client against a live router
backed by an in-memory store, exercising the full contract both sides
were written against.
*/
package api

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portal-engine/factory"
	"github.com/warp/portal-engine/gateway"
	"github.com/warp/portal-engine/leave"
	"github.com/warp/portal-engine/profile"
	"github.com/warp/portal-engine/store/sqlite"
	"github.com/warp/portal-engine/wizard"
)

func TestWizardFlow_BankDetails_EndToEnd(t *testing.T) {
	srv, store := newTestServer(t)
	seedPortalVendor(t, store)
	ctx := context.Background()

	form := factory.MustParseForm(profile.BankDetailsJSON())
	client := gateway.NewResourceClient(nil, srv.URL+"/api", "bank-details", "V1001", form)
	ctl := wizard.NewController(form, client, client)

	// GIVEN: The page loads the canonical record
	require.NoError(t, ctl.Load(ctx))
	assert.Equal(t, "20-00-00", ctl.Record()[profile.FieldSortCode])

	// WHEN: The user walks the wizard, editing the unlocked holder name
	// along with the selected sort code
	require.NoError(t, ctl.BeginUpdate())
	ctl.ToggleField(profile.FieldSortCode)
	require.True(t, ctl.Advance())
	ctl.SetReason(profile.FieldSortCode, "Incorrect Details")
	require.True(t, ctl.Advance())
	ctl.SetField(profile.FieldSortCode, "40-40-40")
	ctl.SetField(profile.FieldAccountHolder, "P. Sharma")

	outcome, err := ctl.Submit(ctx)

	// THEN: The backend applied only the selected field
	require.NoError(t, err)
	assert.Equal(t, wizard.SuccessNotice, outcome.Notice)
	assert.Equal(t, wizard.StepReview, ctl.Step())

	rec, err := store.GetBankRecord(ctx, "V1001")
	require.NoError(t, err)
	assert.Equal(t, "40-40-40", rec.SortCode)
	assert.Equal(t, "Priya Sharma", rec.AccountHolder, "unselected edit must not travel")

	// AND: The refetched record shows the applied change
	assert.Equal(t, "40-40-40", ctl.Record()[profile.FieldSortCode])

	// AND: The submission is waiting in the admin feed
	requests, err := store.ListUpdateRequests(ctx, sqlite.RequestPending)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.JSONEq(t, `{"sortCode":"40-40-40"}`, requests[0].FieldsJSON)
}

func TestWizardFlow_ValidationStopsBeforeTheWire(t *testing.T) {
	srv, store := newTestServer(t)
	seedPortalVendor(t, store)
	ctx := context.Background()

	form := factory.MustParseForm(profile.BankDetailsJSON())
	client := gateway.NewResourceClient(nil, srv.URL+"/api", "bank-details", "V1001", form)
	ctl := wizard.NewController(form, client, client)
	require.NoError(t, ctl.Load(ctx))

	// GIVEN: Account Number selected with the holder name blanked
	require.NoError(t, ctl.BeginUpdate())
	ctl.ToggleField(profile.FieldAccountNumber)
	require.True(t, ctl.Advance())
	require.True(t, ctl.Advance())
	ctl.SetField(profile.FieldAccountNumber, "87654321")
	ctl.SetField(profile.FieldAccountHolder, "")

	// WHEN: Submitting
	_, err := ctl.Submit(ctx)

	// THEN: The rule fires locally and the stored record never changed
	assert.True(t, wizard.IsValidation(err))
	rec, err2 := store.GetBankRecord(ctx, "V1001")
	require.NoError(t, err2)
	assert.Equal(t, "13345678", rec.AccountNumber)

	requests, err2 := store.ListUpdateRequests(ctx, "")
	require.NoError(t, err2)
	assert.Empty(t, requests, "no request may be filed for a rejected submit")
}

func TestLeaveFlow_EndToEnd(t *testing.T) {
	srv, store := newTestServer(t)
	seedPortalVendor(t, store)
	ctx := context.Background()

	client := gateway.NewLeaveClient(nil, srv.URL+"/api")

	// GIVEN: The balances fetched from the backend (8 sick remaining)
	sheet, err := client.Balances(ctx, "V1001")
	require.NoError(t, err)
	require.True(t, sheet.Remaining(leave.CategorySick).Equal(decimal.NewFromInt(8)))

	// WHEN: A 9-day request is validated locally
	nineDays, err := leave.NewRequest("V1001", leave.CategorySick,
		mustDay("2026-03-02"), mustDay("2026-03-12"), false, "surgery")
	require.NoError(t, err)

	// THEN: It is rejected before any network call
	var ib *leave.InsufficientBalanceError
	require.ErrorAs(t, nineDays.Validate(sheet), &ib)
	assert.True(t, ib.Remaining.Equal(decimal.NewFromInt(8)))

	// WHEN: A 5-day request passes local validation and is applied
	fiveDays, err := leave.NewRequest("V1001", leave.CategorySick,
		mustDay("2026-03-02"), mustDay("2026-03-06"), false, "flu")
	require.NoError(t, err)
	require.NoError(t, fiveDays.Validate(sheet))
	require.NoError(t, client.Apply(ctx, fiveDays))

	// THEN: The refetched sheet and history both reflect it
	sheet, err = client.Balances(ctx, "V1001")
	require.NoError(t, err)
	assert.True(t, sheet.Remaining(leave.CategorySick).Equal(decimal.NewFromInt(3)))

	history, err := client.History(ctx, "V1001")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].NoOfDays.Equal(decimal.NewFromInt(5)))

	rows, err := store.ListLeaves(ctx, "V1001")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestLeaveFlow_StaleClientCaughtByServer(t *testing.T) {
	// A stale client that skips local validation still cannot overdraw:
	// the server re-checks against its own sheet.
	srv, store := newTestServer(t)
	seedPortalVendor(t, store)
	ctx := context.Background()

	client := gateway.NewLeaveClient(nil, srv.URL+"/api")

	nineDays, err := leave.NewRequest("V1001", leave.CategorySick,
		mustDay("2026-03-02"), mustDay("2026-03-12"), false, "surgery")
	require.NoError(t, err)

	err = client.Apply(ctx, nineDays)

	var ge *wizard.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Message, "not enough Sick leave remaining")

	rows, err := store.ListLeaves(ctx, "V1001")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func mustDay(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
