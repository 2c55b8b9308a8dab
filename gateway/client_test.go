/*
client_test.go - HTTP gateway tests against a stub backend

Tests for:
- Envelope decoding and wire-key mapping on fetch
- Change-set serialization on submit
- Backend error messages surfaced verbatim
*/
package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/portal-engine/factory"
	"github.com/warp/portal-engine/gateway"
	"github.com/warp/portal-engine/leave"
	"github.com/warp/portal-engine/profile"
	"github.com/warp/portal-engine/wizard"
)

func TestResourceClient_Fetch_MapsWireKeysToFieldNames(t *testing.T) {
	// GIVEN: A backend serving the standard envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bank-details/V1001", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]string{
				"sortCode":      "20-00-00",
				"accountNumber": "13345678",
				"accountHolder": "Priya Sharma",
				"paymentMethod": "BACS",
				"email":         "priya@example.com",
				"mobile":        "07700900123",
			},
		})
	}))
	defer srv.Close()

	form := factory.MustParseForm(profile.BankDetailsJSON())
	client := gateway.NewResourceClient(nil, srv.URL, "bank-details", "V1001", form)

	// WHEN: Fetching
	rec, err := client.Fetch(context.Background())

	// THEN: Display names key the record
	require.NoError(t, err)
	assert.Equal(t, "20-00-00", rec[profile.FieldSortCode])
	assert.Equal(t, "Priya Sharma", rec[profile.FieldAccountHolder])
	assert.Equal(t, "priya@example.com", rec[profile.FieldEmail])
}

func TestResourceClient_Submit_SendsChangeSetAsPUT(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	form := factory.MustParseForm(profile.BankDetailsJSON())
	client := gateway.NewResourceClient(nil, srv.URL, "bank-details", "V1001", form)

	err := client.Submit(context.Background(), wizard.ChangeSet{"sortCode": "40-40-40"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/bank-details/V1001", gotPath)
	assert.Equal(t, map[string]string{"sortCode": "40-40-40"}, gotBody)
}

func TestResourceClient_BackendErrorMessage_SurfacedVerbatim(t *testing.T) {
	// GIVEN: A backend rejecting the submit with its own message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Sort code must be in 00-00-00 format"})
	}))
	defer srv.Close()

	form := factory.MustParseForm(profile.BankDetailsJSON())
	client := gateway.NewResourceClient(nil, srv.URL, "bank-details", "V1001", form)

	err := client.Submit(context.Background(), wizard.ChangeSet{"sortCode": "bad"})

	var ge *wizard.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Sort code must be in 00-00-00 format", ge.Message)
}

func TestResourceClient_ErrorWithoutBody_FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	form := factory.MustParseForm(profile.UserDetailsJSON())
	client := gateway.NewResourceClient(nil, srv.URL, "user-details", "V1001", form)

	_, err := client.Fetch(context.Background())

	var ge *wizard.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Failed to load details", ge.Message)
}

func TestResourceClient_NetworkFailure_WrappedAsGatewayError(t *testing.T) {
	form := factory.MustParseForm(profile.UserDetailsJSON())
	client := gateway.NewResourceClient(nil, "http://127.0.0.1:1", "user-details", "V1001", form)

	_, err := client.Fetch(context.Background())

	var ge *wizard.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.NotNil(t, errors.Unwrap(ge))
}

// =============================================================================
// LEAVE CLIENT
// =============================================================================

func TestLeaveClient_Balances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leave_balances/V1001", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{
			"sick_leaves": "10", "sick_applied": "2.5",
			"casual_leaves": "8", "casual_applied": "0",
			"paid_leaves": "20", "paid_applied": "11",
		})
	}))
	defer srv.Close()

	client := gateway.NewLeaveClient(nil, srv.URL)
	sheet, err := client.Balances(context.Background(), "V1001")

	require.NoError(t, err)
	assert.True(t, sheet.Remaining(leave.CategorySick).Equal(decimal.RequireFromString("7.5")))
	assert.True(t, sheet.Remaining(leave.CategoryAnnual).Equal(decimal.RequireFromString("9")))
}

func TestLeaveClient_Apply_SendsWireBody(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apply_leave", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	req, err := leave.NewRequest("V1001", leave.CategorySick,
		mustDate("2026-03-02"), mustDate("2026-03-04"), false, "flu")
	require.NoError(t, err)

	client := gateway.NewLeaveClient(nil, srv.URL)
	require.NoError(t, client.Apply(context.Background(), req))

	assert.Equal(t, "V1001", gotBody["employee_id"])
	assert.Equal(t, "Sick", gotBody["leave_type"])
	assert.Equal(t, "2026-03-02", gotBody["start_date"])
	assert.Equal(t, "2026-03-04", gotBody["end_date"])
	assert.Equal(t, "3", gotBody["no_of_days"])
}

func TestLeaveClient_Apply_BackendRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "not enough Sick leave remaining: requested 9, remaining 8",
		})
	}))
	defer srv.Close()

	req, err := leave.NewRequest("V1001", leave.CategorySick,
		mustDate("2026-03-02"), mustDate("2026-03-12"), false, "surgery")
	require.NoError(t, err)

	client := gateway.NewLeaveClient(nil, srv.URL)
	err = client.Apply(context.Background(), req)

	var ge *wizard.GatewayError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "not enough Sick leave remaining: requested 9, remaining 8", ge.Message)
}

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
