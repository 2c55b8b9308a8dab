/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

WIRE CONTRACT:
  Updatable records travel inside a {success, data} envelope where data is
  a flat string map keyed by the form's wire keys. Errors carry an "error"
  field that clients surface to the user verbatim.

SEE ALSO:
  - handlers.go: Uses these types
  - gateway/client.go: The client half of this contract
*/
package api

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENVELOPES
// =============================================================================

// RecordEnvelope wraps an updatable record for the wizard client.
type RecordEnvelope struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data"`
}

// GenericResponse acknowledges a state-changing call.
type GenericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the standard error response. The Error field is what
// clients show to the user.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the login form body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token handed back on a successful
// login. Role decides which console the frontend routes to.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	VendorID string `json:"vendor_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// =============================================================================
// LEAVE
// =============================================================================

// LeaveBalancesDTO is the per-category allocated and applied summary.
type LeaveBalancesDTO struct {
	SickLeaves    decimal.Decimal `json:"sick_leaves"`
	CasualLeaves  decimal.Decimal `json:"casual_leaves"`
	PaidLeaves    decimal.Decimal `json:"paid_leaves"`
	SickApplied   decimal.Decimal `json:"sick_applied"`
	CasualApplied decimal.Decimal `json:"casual_applied"`
	PaidApplied   decimal.Decimal `json:"paid_applied"`
}

// ApplyLeaveRequest is the POST /apply_leave body. NoOfDays is advisory;
// the server recomputes the working-day count from the dates.
type ApplyLeaveRequest struct {
	EmployeeID string          `json:"employee_id"`
	LeaveType  string          `json:"leave_type"`
	HalfDay    bool            `json:"half_day"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Reason     string          `json:"reason"`
	NoOfDays   decimal.Decimal `json:"no_of_days"`
}

// LeaveDTO is one row of an employee's leave history.
type LeaveDTO struct {
	ID        string          `json:"id"`
	LeaveType string          `json:"leave_type"`
	HalfDay   bool            `json:"half_day"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Reason    string          `json:"reason"`
	NoOfDays  decimal.Decimal `json:"no_of_days"`
	Status    string          `json:"status"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO is one payment-history row.
type PaymentDTO struct {
	AgreementNumber string          `json:"agreement_number"`
	PaymentMethod   string          `json:"payment_method"`
	PostingDate     string          `json:"posting_date"`
	ChequeNumber    string          `json:"cheque_number,omitempty"`
	PaymentAmount   decimal.Decimal `json:"payment_amount"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	GrossAmount     decimal.Decimal `json:"gross_amount"`
	FiscalYear      string          `json:"fiscal_year"`
	EncashmentDate  string          `json:"encashment_date,omitempty"`
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// DocumentDTO describes one uploaded document slot.
type DocumentDTO struct {
	DocType    string `json:"doc_type"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	UploadedAt string `json:"uploaded_at"`
}

// =============================================================================
// ADMIN: UPDATE REQUESTS
// =============================================================================

// UpdateRequestDTO is one wizard submission in the admin review feed.
type UpdateRequestDTO struct {
	ID          string            `json:"id"`
	VendorID    string            `json:"vendor_id"`
	RequestType string            `json:"request_type"`
	Fields      map[string]string `json:"fields"`
	Status      string            `json:"status"`
	Detail      string            `json:"detail,omitempty"`
	SubmittedAt string            `json:"submitted_at"`
	DecidedAt   string            `json:"decided_at,omitempty"`
	DecidedBy   string            `json:"decided_by,omitempty"`
}

// DecideRequest is the body for approving or rejecting a submission.
type DecideRequest struct {
	Detail string `json:"detail,omitempty"`
}
