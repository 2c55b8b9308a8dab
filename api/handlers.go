/*
handlers.go - HTTP API handlers for the vendor self-service portal

PURPOSE:
  Exposes the portal backend via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/auth/login                 Exchange credentials for a token
    POST   /api/auth/logout                Destroy the session

  Updatable records (consumed by the wizard):
    GET    /api/user-details/{vendorID}    Fetch canonical user record
    PUT    /api/user-details/{vendorID}    Apply a restricted change-set
    GET    /api/bank-details/{vendorID}    Fetch canonical bank record
    PUT    /api/bank-details/{vendorID}    Apply a restricted change-set

  Leave:
    GET    /api/leave_balances/{employeeID} Per-category allocated/applied
    GET    /api/all_leaves/{employeeID}     Leave history, newest first
    POST   /api/apply_leave                 Apply for leave (re-validated)

  Payments:
    GET    /api/payments/{vendorID}?year=  Payment history

  Documents:
    GET    /api/documents/{employeeID}     List uploaded document slots
    POST   /api/documents/{employeeID}     Multipart upload, field = doc type
    GET    /api/documents/{employeeID}/{docType}  Download one document

  Forms:
    GET    /api/forms/{formID}             Form definition JSON

  Admin (token with admin role):
    GET    /api/admin/requests             Wizard submissions for review
    POST   /api/admin/requests/{id}/approve
    POST   /api/admin/requests/{id}/reject
    GET    /api/admin/payments/export      Payment history as .xlsx

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input against the form definition or domain rules
  3. Call domain logic (store, leave calculator, docstore)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing or expired session
  - 403: Role mismatch
  - 404: Resource not found
  - 500: Internal errors
  The "error" field carries a message clients show verbatim.

SEE ALSO:
  - dto.go: Request/response data structures
  - export.go: Spreadsheet export
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/portal-engine/docstore"
	"github.com/warp/portal-engine/factory"
	"github.com/warp/portal-engine/leave"
	"github.com/warp/portal-engine/profile"
	"github.com/warp/portal-engine/store/sqlite"
	"github.com/warp/portal-engine/wizard"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      *sqlite.Store
	Docs       *docstore.Store
	SessionTTL time.Duration

	// Parsed form definitions keyed by form ID, plus the raw JSON
	// served to wizard clients.
	forms    map[string]wizard.FormDefinition
	rawForms map[string]string
}

// NewHandler creates a handler wired to the store and document store.
// The built-in user-details and bank-details forms are registered here.
func NewHandler(store *sqlite.Store, docs *docstore.Store, sessionTTL time.Duration) *Handler {
	h := &Handler{
		Store:      store,
		Docs:       docs,
		SessionTTL: sessionTTL,
		forms:      make(map[string]wizard.FormDefinition),
		rawForms:   make(map[string]string),
	}
	for _, raw := range []string{profile.UserDetailsJSON(), profile.BankDetailsJSON()} {
		form := factory.MustParseForm(raw)
		h.forms[form.ID] = form
		h.rawForms[form.ID] = raw
	}
	return h
}

// =============================================================================
// AUTH
// =============================================================================

// Login exchanges email and password for a session token.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	vendor, err := h.Store.GetVendorByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to look up account", err)
		return
	}
	if vendor == nil || bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}

	now := time.Now().UTC()
	sess := sqlite.Session{
		Token:     uuid.NewString(),
		SubjectID: vendor.VendorID,
		Role:      vendor.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(h.SessionTTL),
	}
	if err := h.Store.CreateSession(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:  true,
		Token:    sess.Token,
		VendorID: vendor.VendorID,
		Name:     vendor.FullName(),
		Role:     vendor.Role,
	})
}

// Logout destroys the caller's session. Unknown tokens are a no-op.
// POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token != "" {
		if err := h.Store.DeleteSession(r.Context(), token); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to log out", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, GenericResponse{Success: true, Message: "Logged out"})
}

type sessionKey struct{}

// RequireRole checks the bearer token against the sessions table and
// rejects callers whose session role does not match.
func (h *Handler) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "Not authenticated", nil)
				return
			}
			sess, err := h.Store.GetSession(r.Context(), token)
			if errors.Is(err, sqlite.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Session expired", nil)
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to check session", err)
				return
			}
			if sess.Role != role {
				writeError(w, http.StatusForbidden, "Insufficient permissions", nil)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) *sqlite.Session {
	sess, _ := ctx.Value(sessionKey{}).(*sqlite.Session)
	return sess
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}

// =============================================================================
// UPDATABLE RECORDS
// =============================================================================

// GetUserDetails returns the user record inside the standard envelope.
// GET /api/user-details/{vendorID}
func (h *Handler) GetUserDetails(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorID")

	rec, err := h.Store.GetUserRecord(r.Context(), vendorID)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Vendor not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load user details", err)
		return
	}

	writeJSON(w, http.StatusOK, RecordEnvelope{Success: true, Data: map[string]string{
		"name":      rec.Name,
		"email":     rec.Email,
		"mobile":    rec.Mobile,
		"telephone": rec.Telephone,
		"address":   rec.Address,
	}})
}

// UpdateUserDetails applies a restricted change-set to the user record
// and files an update request for the admin console.
// PUT /api/user-details/{vendorID}
func (h *Handler) UpdateUserDetails(w http.ResponseWriter, r *http.Request) {
	h.applyChangeSet(w, r, "user-details", func(ctx context.Context, vendorID string, changes map[string]string) error {
		return h.Store.UpdateUserRecord(ctx, vendorID, changes)
	})
}

// GetBankDetails returns the bank record inside the standard envelope.
// GET /api/bank-details/{vendorID}
func (h *Handler) GetBankDetails(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorID")

	rec, err := h.Store.GetBankRecord(r.Context(), vendorID)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Bank details not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load bank details", err)
		return
	}

	writeJSON(w, http.StatusOK, RecordEnvelope{Success: true, Data: map[string]string{
		"sortCode":      rec.SortCode,
		"accountNumber": rec.AccountNumber,
		"accountHolder": rec.AccountHolder,
		"paymentMethod": rec.PaymentMethod,
		"email":         rec.Email,
		"mobile":        rec.Mobile,
	}})
}

// UpdateBankDetails applies a restricted change-set to the bank record
// and files an update request for the admin console.
// PUT /api/bank-details/{vendorID}
func (h *Handler) UpdateBankDetails(w http.ResponseWriter, r *http.Request) {
	h.applyChangeSet(w, r, "bank-details", func(ctx context.Context, vendorID string, changes map[string]string) error {
		return h.Store.UpdateBankRecord(ctx, vendorID, changes)
	})
}

// applyChangeSet is the shared PUT path for updatable records: validate
// the keys against the form definition, apply only the provided fields,
// then record the submission. A failed apply must leave no trace in the
// admin feed, so the audit row is filed only once the update has landed.
func (h *Handler) applyChangeSet(w http.ResponseWriter, r *http.Request, formID string,
	apply func(context.Context, string, map[string]string) error) {

	vendorID := chi.URLParam(r, "vendorID")

	var changes map[string]string
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(changes) == 0 {
		writeError(w, http.StatusBadRequest, "No fields to update", nil)
		return
	}

	form := h.forms[formID]
	known := make(map[string]bool, len(form.Fields))
	for _, f := range form.Fields {
		known[f.Key] = true
	}
	for key := range changes {
		if !known[key] {
			writeError(w, http.StatusBadRequest, "Unknown field: "+key, nil)
			return
		}
	}

	if err := apply(r.Context(), vendorID, changes); err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Vendor not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to apply update", err)
		return
	}

	fieldsJSON, err := json.Marshal(changes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record update request", err)
		return
	}
	req := sqlite.UpdateRequest{
		ID:          ulid.Make().String(),
		VendorID:    vendorID,
		RequestType: formID,
		FieldsJSON:  string(fieldsJSON),
	}
	if err := h.Store.SaveUpdateRequest(r.Context(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record update request", err)
		return
	}

	writeJSON(w, http.StatusOK, GenericResponse{Success: true, Message: "Update request submitted"})
}

// GetForm serves the raw JSON definition of a registered form.
// GET /api/forms/{formID}
func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	raw, ok := h.rawForms[chi.URLParam(r, "formID")]
	if !ok {
		writeError(w, http.StatusNotFound, "Form not found", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(raw))
}

// =============================================================================
// LEAVE
// =============================================================================

// GetLeaveBalances returns the per-category allocated and applied counts.
// GET /api/leave_balances/{employeeID}
func (h *Handler) GetLeaveBalances(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	sheet, err := h.Store.GetLeaveBalances(r.Context(), employeeID)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave balances", err)
		return
	}

	writeJSON(w, http.StatusOK, LeaveBalancesDTO{
		SickLeaves:    sheet[leave.CategorySick].Allocated,
		CasualLeaves:  sheet[leave.CategoryCasual].Allocated,
		PaidLeaves:    sheet[leave.CategoryAnnual].Allocated,
		SickApplied:   sheet[leave.CategorySick].Applied,
		CasualApplied: sheet[leave.CategoryCasual].Applied,
		PaidApplied:   sheet[leave.CategoryAnnual].Applied,
	})
}

// ListLeaves returns the employee's leave history, newest first.
// GET /api/all_leaves/{employeeID}
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Store.ListLeaves(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave history", err)
		return
	}

	dtos := make([]LeaveDTO, len(rows))
	for i, row := range rows {
		dtos[i] = LeaveDTO{
			ID:        row.ID,
			LeaveType: row.LeaveType,
			HalfDay:   row.HalfDay,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
			Reason:    row.Reason,
			NoOfDays:  row.NoOfDays,
			Status:    row.Status,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ApplyLeave validates and records a leave application. The working-day
// count is recomputed from the dates and the balance is checked against
// the stored sheet, so a stale client cannot overdraw a category.
// POST /api/apply_leave
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	var body ApplyLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cat, err := leave.ParseCategory(body.LeaveType)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}

	req, err := leave.NewRequest(body.EmployeeID, cat, start, end, body.HalfDay, body.Reason)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sheet, err := h.Store.GetLeaveBalances(r.Context(), body.EmployeeID)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load leave balances", err)
		return
	}
	if err := req.Validate(sheet); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	row := sqlite.LeaveRow{
		ID:         ulid.Make().String(),
		EmployeeID: req.EmployeeID,
		LeaveType:  string(req.Category),
		HalfDay:    req.HalfDay,
		StartDate:  req.StartDate.Format("2006-01-02"),
		EndDate:    req.EndDate.Format("2006-01-02"),
		Reason:     req.Reason,
		NoOfDays:   req.Days,
		Status:     "pending",
		AppliedAt:  time.Now().UTC(),
	}
	if err := h.Store.ApplyLeave(r.Context(), row); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to apply for leave", err)
		return
	}

	writeJSON(w, http.StatusOK, GenericResponse{Success: true, Message: "Leave applied successfully"})
}

// =============================================================================
// PAYMENTS
// =============================================================================

// ListPayments returns payment history for a vendor, optionally filtered
// by fiscal year.
// GET /api/payments/{vendorID}?year=2025-2026
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	vendorID := chi.URLParam(r, "vendorID")
	year := r.URL.Query().Get("year")

	payments, err := h.Store.ListPayments(r.Context(), vendorID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}
	writeJSON(w, http.StatusOK, toPaymentDTOs(payments))
}

func toPaymentDTOs(payments []sqlite.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = PaymentDTO{
			AgreementNumber: p.AgreementNumber,
			PaymentMethod:   p.PaymentMethod,
			PostingDate:     p.PostingDate,
			ChequeNumber:    p.ChequeNumber,
			PaymentAmount:   p.PaymentAmount,
			NetAmount:       p.NetAmount,
			GrossAmount:     p.GrossAmount,
			FiscalYear:      p.FiscalYear,
			EncashmentDate:  p.EncashmentDate,
		}
	}
	return dtos
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// UploadDocuments accepts a multipart form where each file field name is
// the document type. Re-uploading a type replaces the previous file.
// POST /api/documents/{employeeID}
func (h *Handler) UploadDocuments(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		writeError(w, http.StatusBadRequest, "No files provided", nil)
		return
	}

	for docType, headers := range r.MultipartForm.File {
		for _, hdr := range headers {
			f, err := hdr.Open()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to read upload", err)
				return
			}
			size, err := h.Docs.Put(employeeID, docType, f)
			f.Close()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to store document", err)
				return
			}

			meta := sqlite.DocumentMeta{
				ID:         ulid.Make().String(),
				EmployeeID: employeeID,
				DocType:    docType,
				Filename:   hdr.Filename,
				Size:       size,
				UploadedAt: time.Now().UTC(),
			}
			if err := h.Store.SaveDocumentMeta(r.Context(), meta); err != nil {
				writeError(w, http.StatusInternalServerError, "Failed to record document", err)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, GenericResponse{Success: true, Message: "Documents uploaded"})
}

// DownloadDocument streams a stored document blob.
// GET /api/documents/{employeeID}/{docType}
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	docType := chi.URLParam(r, "docType")

	ok, err := h.Docs.Exists(employeeID, docType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to open document", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Document not found", nil)
		return
	}

	f, err := h.Docs.Open(employeeID, docType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to open document", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	io.Copy(w, f)
}

// ListDocuments returns the uploaded document slots for an employee.
// GET /api/documents/{employeeID}
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	metas, err := h.Store.ListDocuments(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list documents", err)
		return
	}

	dtos := make([]DocumentDTO, len(metas))
	for i, m := range metas {
		dtos[i] = DocumentDTO{
			DocType:    m.DocType,
			Filename:   m.Filename,
			Size:       m.Size,
			UploadedAt: m.UploadedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN: UPDATE REQUESTS
// =============================================================================

// ListUpdateRequests returns wizard submissions, newest first.
// GET /api/admin/requests?status=pending
func (h *Handler) ListUpdateRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListUpdateRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}

	dtos := make([]UpdateRequestDTO, len(requests))
	for i, req := range requests {
		dtos[i] = toUpdateRequestDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func toUpdateRequestDTO(req sqlite.UpdateRequest) UpdateRequestDTO {
	dto := UpdateRequestDTO{
		ID:          req.ID,
		VendorID:    req.VendorID,
		RequestType: req.RequestType,
		Status:      req.Status,
		Detail:      req.Detail,
		SubmittedAt: req.SubmittedAt.Format(time.RFC3339),
		DecidedBy:   req.DecidedBy,
	}
	if req.DecidedAt != nil {
		dto.DecidedAt = req.DecidedAt.Format(time.RFC3339)
	}
	json.Unmarshal([]byte(req.FieldsJSON), &dto.Fields)
	return dto
}

// ApproveUpdateRequest marks a pending submission approved.
// POST /api/admin/requests/{id}/approve
func (h *Handler) ApproveUpdateRequest(w http.ResponseWriter, r *http.Request) {
	h.decideUpdateRequest(w, r, sqlite.RequestApproved)
}

// RejectUpdateRequest marks a pending submission rejected.
// POST /api/admin/requests/{id}/reject
func (h *Handler) RejectUpdateRequest(w http.ResponseWriter, r *http.Request) {
	h.decideUpdateRequest(w, r, sqlite.RequestRejected)
}

func (h *Handler) decideUpdateRequest(w http.ResponseWriter, r *http.Request, status string) {
	id := chi.URLParam(r, "id")

	var body DecideRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&body) // optional body
	}

	var decidedBy string
	if sess := sessionFrom(r.Context()); sess != nil {
		decidedBy = sess.SubjectID
	}

	err := h.Store.DecideUpdateRequest(r.Context(), id, status, decidedBy, body.Detail)
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "No pending request with that ID", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update request", err)
		return
	}
	writeJSON(w, http.StatusOK, GenericResponse{Success: true, Message: "Request " + status})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
