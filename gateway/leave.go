package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/warp/portal-engine/leave"
	"github.com/warp/portal-engine/wizard"
)

// =============================================================================
// LEAVE CLIENT
// =============================================================================

// LeaveClient talks to the leave endpoints of the portal backend.
type LeaveClient struct {
	hc      *http.Client
	baseURL string
}

// NewLeaveClient creates a leave client. A nil http.Client falls back to
// http.DefaultClient.
func NewLeaveClient(hc *http.Client, baseURL string) *LeaveClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &LeaveClient{hc: hc, baseURL: baseURL}
}

// BalancesDTO is the wire form of a leave balance summary.
type BalancesDTO struct {
	SickLeaves    decimal.Decimal `json:"sick_leaves"`
	CasualLeaves  decimal.Decimal `json:"casual_leaves"`
	PaidLeaves    decimal.Decimal `json:"paid_leaves"`
	SickApplied   decimal.Decimal `json:"sick_applied"`
	CasualApplied decimal.Decimal `json:"casual_applied"`
	PaidApplied   decimal.Decimal `json:"paid_applied"`
}

// Sheet converts the wire form into a BalanceSheet.
func (d BalancesDTO) Sheet() leave.BalanceSheet {
	return leave.BalanceSheet{
		leave.CategorySick:   {Allocated: d.SickLeaves, Applied: d.SickApplied},
		leave.CategoryCasual: {Allocated: d.CasualLeaves, Applied: d.CasualApplied},
		leave.CategoryAnnual: {Allocated: d.PaidLeaves, Applied: d.PaidApplied},
	}
}

// PastLeaveDTO is one row of an employee's leave history.
type PastLeaveDTO struct {
	ID        string          `json:"id"`
	LeaveType string          `json:"leave_type"`
	HalfDay   bool            `json:"half_day"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Reason    string          `json:"reason"`
	NoOfDays  decimal.Decimal `json:"no_of_days"`
	Status    string          `json:"status"`
}

// applyLeaveDTO matches the POST /apply_leave body.
type applyLeaveDTO struct {
	EmployeeID string          `json:"employee_id"`
	LeaveType  string          `json:"leave_type"`
	HalfDay    bool            `json:"half_day"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Reason     string          `json:"reason"`
	NoOfDays   decimal.Decimal `json:"no_of_days"`
}

// Balances fetches the per-category allocated and applied counts.
func (c *LeaveClient) Balances(ctx context.Context, employeeID string) (leave.BalanceSheet, error) {
	var dto BalancesDTO
	if err := c.getJSON(ctx, fmt.Sprintf("%s/leave_balances/%s", c.baseURL, employeeID), &dto); err != nil {
		return nil, err
	}
	return dto.Sheet(), nil
}

// History fetches past leave records, newest first.
func (c *LeaveClient) History(ctx context.Context, employeeID string) ([]PastLeaveDTO, error) {
	var rows []PastLeaveDTO
	if err := c.getJSON(ctx, fmt.Sprintf("%s/all_leaves/%s", c.baseURL, employeeID), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Apply submits a leave request. The request is expected to have passed
// local validation against the balance sheet; the server checks again.
func (c *LeaveClient) Apply(ctx context.Context, r leave.Request) error {
	body, err := json.Marshal(applyLeaveDTO{
		EmployeeID: r.EmployeeID,
		LeaveType:  string(r.Category),
		HalfDay:    r.HalfDay,
		StartDate:  r.StartDate.Format("2006-01-02"),
		EndDate:    r.EndDate.Format("2006-01-02"),
		Reason:     r.Reason,
		NoOfDays:   r.Days,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/apply_leave", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &wizard.GatewayError{Message: "Failed to apply for leave", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backendError(resp, "Failed to apply for leave")
	}
	return nil
}

func (c *LeaveClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return &wizard.GatewayError{Message: "Failed to load leave data", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return backendError(resp, "Failed to load leave data")
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
