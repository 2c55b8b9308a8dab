/*
Package sqlite provides the SQLite-backed persistence layer for the portal.

PURPOSE:
  Implements storage for every portal concern: vendors and their contact
  and bank records, the update-request audit trail fed to the admin
  console, leave balances and applications, payment history, onboarding
  document metadata, and sessions. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  vendors:          identity, contact details, login credentials
  user_details:     postal address, stored split into parts
  bank_details:     account and payment method per vendor
  update_requests:  every wizard submission, with status for admin review
  leave_balances:   allocated/applied day counts per category
  leaves:           individual leave applications
  payment_history:  remittance rows shown on the payments page
  documents:        onboarding upload metadata (blobs live in docstore)
  sessions:         opaque login tokens

DECIMAL COLUMNS:
  Day counts and money amounts are stored as TEXT holding decimal strings,
  never floats, so 0.5 days and pence amounts round-trip exactly.

WAL MODE:
  SQLite is opened with WAL for better concurrency: readers don't block,
  single writer at a time.

USAGE:
  store, err := sqlite.New("./data/portal.db")   // ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - api/: handlers using this store
  - docstore/: blob storage for the documents table
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/portal-engine/leave"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Store implements all persistence for the portal using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS vendors (
		vendor_id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT,
		mobile TEXT,
		telephone TEXT,
		password_hash TEXT,
		role TEXT NOT NULL DEFAULT 'vendor',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vendors_email ON vendors(email);

	CREATE TABLE IF NOT EXISTS user_details (
		vendor_id TEXT PRIMARY KEY,
		street TEXT NOT NULL DEFAULT '',
		address_line1 TEXT NOT NULL DEFAULT '',
		address_line2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		postcode TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS bank_details (
		vendor_id TEXT PRIMARY KEY,
		sort_code TEXT NOT NULL DEFAULT '',
		account_number TEXT NOT NULL DEFAULT '',
		account_holder_name TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Every wizard submission lands here for the admin console.
	CREATE TABLE IF NOT EXISTS update_requests (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL,
		request_type TEXT NOT NULL,
		fields_json TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		detail TEXT,
		submitted_at TEXT NOT NULL,
		decided_at TEXT,
		decided_by TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_update_requests_vendor
		ON update_requests(vendor_id);
	CREATE INDEX IF NOT EXISTS idx_update_requests_status
		ON update_requests(status);

	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT PRIMARY KEY,
		sick_allocated TEXT NOT NULL DEFAULT '0',
		sick_applied TEXT NOT NULL DEFAULT '0',
		casual_allocated TEXT NOT NULL DEFAULT '0',
		casual_applied TEXT NOT NULL DEFAULT '0',
		annual_allocated TEXT NOT NULL DEFAULT '0',
		annual_applied TEXT NOT NULL DEFAULT '0'
	);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		half_day BOOLEAN NOT NULL DEFAULT FALSE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT,
		no_of_days TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		applied_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_employee ON leaves(employee_id);

	CREATE TABLE IF NOT EXISTS payment_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		vendor_id TEXT NOT NULL,
		agreement_number TEXT,
		payment_method TEXT,
		posting_date TEXT,
		cheque_number TEXT,
		payment_amount TEXT,
		net_amount TEXT,
		gross_amount TEXT,
		fiscal_year TEXT,
		encashment_date TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_payments_vendor_year
		ON payment_history(vendor_id, fiscal_year);

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		doc_type TEXT NOT NULL,
		filename TEXT NOT NULL,
		size INTEGER NOT NULL,
		uploaded_at TEXT NOT NULL,
		UNIQUE(employee_id, doc_type)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'vendor',
		created_at TEXT NOT NULL,
		expires_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// VENDORS
// =============================================================================

// Vendor is an account holder: a utility-portal grantor or an employee.
type Vendor struct {
	VendorID     string
	FirstName    string
	LastName     string
	Email        string
	Mobile       string
	Telephone    string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name the way the portal displays it.
func (v Vendor) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// SaveVendor inserts or replaces a vendor.
func (s *Store) SaveVendor(ctx context.Context, v Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	created := now
	if !v.CreatedAt.IsZero() {
		created = v.CreatedAt.UTC().Format(time.RFC3339)
	}
	role := v.Role
	if role == "" {
		role = "vendor"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vendors (vendor_id, first_name, last_name, email, mobile, telephone, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(vendor_id) DO UPDATE SET
			first_name=excluded.first_name, last_name=excluded.last_name,
			email=excluded.email, mobile=excluded.mobile, telephone=excluded.telephone,
			password_hash=excluded.password_hash, role=excluded.role, updated_at=excluded.updated_at`,
		v.VendorID, v.FirstName, v.LastName, v.Email, v.Mobile, v.Telephone, v.PasswordHash, role, created, now)
	return err
}

// GetVendor returns a vendor by ID, or nil if absent.
func (s *Store) GetVendor(ctx context.Context, vendorID string) (*Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanVendor(s.db.QueryRowContext(ctx, `
		SELECT vendor_id, first_name, last_name, email, mobile, telephone, password_hash, role, created_at, updated_at
		FROM vendors WHERE vendor_id = ?`, vendorID))
}

// GetVendorByEmail returns a vendor by login email, or nil if absent.
func (s *Store) GetVendorByEmail(ctx context.Context, email string) (*Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanVendor(s.db.QueryRowContext(ctx, `
		SELECT vendor_id, first_name, last_name, email, mobile, telephone, password_hash, role, created_at, updated_at
		FROM vendors WHERE email = ?`, email))
}

func scanVendor(row *sql.Row) (*Vendor, error) {
	var v Vendor
	var email, mobile, telephone, hash sql.NullString
	var created, updated string
	err := row.Scan(&v.VendorID, &v.FirstName, &v.LastName, &email, &mobile, &telephone, &hash, &v.Role, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.Email = email.String
	v.Mobile = mobile.String
	v.Telephone = telephone.String
	v.PasswordHash = hash.String
	v.CreatedAt, _ = time.Parse(time.RFC3339, created)
	v.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &v, nil
}

// =============================================================================
// USER DETAILS RECORD
// =============================================================================

// UserRecord is the flattened user-details record served to the wizard.
type UserRecord struct {
	GrantorNumber string
	Name          string
	Email         string
	Mobile        string
	Telephone     string
	Address       string
}

// GetUserRecord joins vendors and user_details into the flat record the
// user-details page shows.
func (s *Store) GetUserRecord(ctx context.Context, vendorID string) (*UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT v.vendor_id, v.first_name, v.last_name, v.email, v.mobile, v.telephone,
		       COALESCE(ud.street, ''), COALESCE(ud.address_line1, ''), COALESCE(ud.address_line2, ''),
		       COALESCE(ud.city, ''), COALESCE(ud.postcode, '')
		FROM vendors v
		LEFT JOIN user_details ud ON v.vendor_id = ud.vendor_id
		WHERE v.vendor_id = ?`, vendorID)

	var rec UserRecord
	var first, last string
	var email, mobile, telephone sql.NullString
	var parts [5]string
	err := row.Scan(&rec.GrantorNumber, &first, &last, &email, &mobile, &telephone,
		&parts[0], &parts[1], &parts[2], &parts[3], &parts[4])
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.Name = strings.TrimSpace(first + " " + last)
	rec.Email = email.String
	rec.Mobile = mobile.String
	rec.Telephone = telephone.String
	rec.Address = joinAddress(parts[:])
	return &rec, nil
}

// UpdateUserRecord applies only the provided fields. Name is split into
// first/last on the first space; Address is split into its parts on
// commas, the same way the portal always stored it.
func (s *Store) UpdateUserRecord(ctx context.Context, vendorID string, changes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM vendors WHERE vendor_id = ?`, vendorID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}

		if name, ok := changes["name"]; ok && name != "" {
			first, last := splitName(name)
			if _, err := tx.ExecContext(ctx, `UPDATE vendors SET first_name = ?, last_name = ? WHERE vendor_id = ?`, first, last, vendorID); err != nil {
				return err
			}
		}
		for _, key := range []string{"email", "mobile", "telephone"} {
			if v, ok := changes[key]; ok && v != "" {
				if _, err := tx.ExecContext(ctx, `UPDATE vendors SET `+key+` = ? WHERE vendor_id = ?`, v, vendorID); err != nil {
					return err
				}
			}
		}
		if _, err := tx.ExecContext(ctx, `UPDATE vendors SET updated_at = ? WHERE vendor_id = ?`,
			time.Now().UTC().Format(time.RFC3339), vendorID); err != nil {
			return err
		}

		if addr, ok := changes["address"]; ok && addr != "" {
			parts := splitAddress(addr)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO user_details (vendor_id, street, address_line1, address_line2, city, postcode)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(vendor_id) DO UPDATE SET
					street=excluded.street, address_line1=excluded.address_line1,
					address_line2=excluded.address_line2, city=excluded.city, postcode=excluded.postcode`,
				vendorID, parts[0], parts[1], parts[2], parts[3], parts[4]); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveUserDetails stores the address parts for a vendor directly.
func (s *Store) SaveUserDetails(ctx context.Context, vendorID, street, line1, line2, city, postcode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_details (vendor_id, street, address_line1, address_line2, city, postcode)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(vendor_id) DO UPDATE SET
			street=excluded.street, address_line1=excluded.address_line1,
			address_line2=excluded.address_line2, city=excluded.city, postcode=excluded.postcode`,
		vendorID, street, line1, line2, city, postcode)
	return err
}

func splitName(name string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}

func splitAddress(addr string) [5]string {
	var out [5]string
	for i, p := range strings.Split(addr, ",") {
		if i >= len(out) {
			break
		}
		out[i] = strings.TrimSpace(p)
	}
	return out
}

func joinAddress(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// =============================================================================
// BANK DETAILS RECORD
// =============================================================================

// BankRecord is the flattened bank-details record served to the wizard.
// Email and Mobile live on the vendor row and are joined in, matching the
// shape the bank-details page shows.
type BankRecord struct {
	SortCode      string
	AccountNumber string
	AccountHolder string
	PaymentMethod string
	Email         string
	Mobile        string
}

// GetBankRecord joins bank_details and vendors into the flat record.
func (s *Store) GetBankRecord(ctx context.Context, vendorID string) (*BankRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT bd.sort_code, bd.account_number, bd.account_holder_name, bd.payment_method,
		       COALESCE(v.email, ''), COALESCE(v.mobile, '')
		FROM bank_details bd
		LEFT JOIN vendors v ON bd.vendor_id = v.vendor_id
		WHERE bd.vendor_id = ?`, vendorID)

	var rec BankRecord
	err := row.Scan(&rec.SortCode, &rec.AccountNumber, &rec.AccountHolder, &rec.PaymentMethod, &rec.Email, &rec.Mobile)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveBankDetails inserts or replaces the bank row for a vendor.
func (s *Store) SaveBankDetails(ctx context.Context, vendorID string, rec BankRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_details (vendor_id, sort_code, account_number, account_holder_name, payment_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(vendor_id) DO UPDATE SET
			sort_code=excluded.sort_code, account_number=excluded.account_number,
			account_holder_name=excluded.account_holder_name, payment_method=excluded.payment_method,
			updated_at=excluded.updated_at`,
		vendorID, rec.SortCode, rec.AccountNumber, rec.AccountHolder, rec.PaymentMethod, now, now)
	return err
}

// UpdateBankRecord applies only the provided fields. Email and mobile
// updates land on the vendor row.
func (s *Store) UpdateBankRecord(ctx context.Context, vendorID string, changes map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM bank_details WHERE vendor_id = ?`, vendorID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}

		now := time.Now().UTC().Format(time.RFC3339)
		bankCols := map[string]string{
			"sortCode":      "sort_code",
			"accountNumber": "account_number",
			"accountHolder": "account_holder_name",
			"paymentMethod": "payment_method",
		}
		for key, col := range bankCols {
			if v, ok := changes[key]; ok && v != "" {
				if _, err := tx.ExecContext(ctx, `UPDATE bank_details SET `+col+` = ?, updated_at = ? WHERE vendor_id = ?`, v, now, vendorID); err != nil {
					return err
				}
			}
		}
		for _, key := range []string{"email", "mobile"} {
			if v, ok := changes[key]; ok && v != "" {
				if _, err := tx.ExecContext(ctx, `UPDATE vendors SET `+key+` = ?, updated_at = ? WHERE vendor_id = ?`, v, now, vendorID); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// =============================================================================
// UPDATE REQUESTS (admin console feed)
// =============================================================================

// UpdateRequest is one wizard submission awaiting or past admin review.
type UpdateRequest struct {
	ID          string
	VendorID    string
	RequestType string
	FieldsJSON  string
	Status      string
	Detail      string
	SubmittedAt time.Time
	DecidedAt   *time.Time
	DecidedBy   string
}

// Update request statuses.
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// SaveUpdateRequest records a wizard submission.
func (s *Store) SaveUpdateRequest(ctx context.Context, r UpdateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Status == "" {
		r.Status = RequestPending
	}
	submitted := r.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO update_requests (id, vendor_id, request_type, fields_json, status, detail, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.VendorID, r.RequestType, r.FieldsJSON, r.Status, r.Detail,
		submitted.Format(time.RFC3339))
	return err
}

// ListUpdateRequests returns requests newest first, optionally filtered by
// status. ULID primary keys sort chronologically.
func (s *Store) ListUpdateRequests(ctx context.Context, status string) ([]UpdateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, vendor_id, request_type, fields_json, status,
	                 COALESCE(detail, ''), submitted_at, decided_at, COALESCE(decided_by, '')
	          FROM update_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UpdateRequest
	for rows.Next() {
		var r UpdateRequest
		var submitted string
		var decided sql.NullString
		if err := rows.Scan(&r.ID, &r.VendorID, &r.RequestType, &r.FieldsJSON,
			&r.Status, &r.Detail, &submitted, &decided, &r.DecidedBy); err != nil {
			return nil, err
		}
		r.SubmittedAt, _ = time.Parse(time.RFC3339, submitted)
		if decided.Valid {
			t, _ := time.Parse(time.RFC3339, decided.String)
			r.DecidedAt = &t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetUpdateRequest returns one request, or ErrNotFound.
func (s *Store) GetUpdateRequest(ctx context.Context, id string) (*UpdateRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, vendor_id, request_type, fields_json, status,
		       COALESCE(detail, ''), submitted_at, decided_at, COALESCE(decided_by, '')
		FROM update_requests WHERE id = ?`, id)

	var r UpdateRequest
	var submitted string
	var decided sql.NullString
	err := row.Scan(&r.ID, &r.VendorID, &r.RequestType, &r.FieldsJSON,
		&r.Status, &r.Detail, &submitted, &decided, &r.DecidedBy)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.SubmittedAt, _ = time.Parse(time.RFC3339, submitted)
	if decided.Valid {
		t, _ := time.Parse(time.RFC3339, decided.String)
		r.DecidedAt = &t
	}
	return &r, nil
}

// DecideUpdateRequest moves a pending request to approved or rejected.
// Requests that are already decided stay as they are.
func (s *Store) DecideUpdateRequest(ctx context.Context, id, status, decidedBy, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE update_requests
		SET status = ?, decided_at = ?, decided_by = ?, detail = COALESCE(NULLIF(?, ''), detail)
		WHERE id = ? AND status = ?`,
		status, time.Now().UTC().Format(time.RFC3339), decidedBy, detail, id, RequestPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// LEAVE
// =============================================================================

// GetLeaveBalances returns the balance sheet for an employee.
func (s *Store) GetLeaveBalances(ctx context.Context, employeeID string) (leave.BalanceSheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT sick_allocated, sick_applied, casual_allocated, casual_applied, annual_allocated, annual_applied
		FROM leave_balances WHERE employee_id = ?`, employeeID)

	var raw [6]string
	err := row.Scan(&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5])
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return leave.BalanceSheet{
		leave.CategorySick:   {Allocated: parseDecimal(raw[0]), Applied: parseDecimal(raw[1])},
		leave.CategoryCasual: {Allocated: parseDecimal(raw[2]), Applied: parseDecimal(raw[3])},
		leave.CategoryAnnual: {Allocated: parseDecimal(raw[4]), Applied: parseDecimal(raw[5])},
	}, nil
}

// SaveLeaveBalances inserts or replaces an employee's balance sheet.
func (s *Store) SaveLeaveBalances(ctx context.Context, employeeID string, sheet leave.BalanceSheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_balances (employee_id, sick_allocated, sick_applied, casual_allocated, casual_applied, annual_allocated, annual_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			sick_allocated=excluded.sick_allocated, sick_applied=excluded.sick_applied,
			casual_allocated=excluded.casual_allocated, casual_applied=excluded.casual_applied,
			annual_allocated=excluded.annual_allocated, annual_applied=excluded.annual_applied`,
		employeeID,
		sheet[leave.CategorySick].Allocated.String(), sheet[leave.CategorySick].Applied.String(),
		sheet[leave.CategoryCasual].Allocated.String(), sheet[leave.CategoryCasual].Applied.String(),
		sheet[leave.CategoryAnnual].Allocated.String(), sheet[leave.CategoryAnnual].Applied.String())
	return err
}

// LeaveRow is one stored leave application.
type LeaveRow struct {
	ID         string
	EmployeeID string
	LeaveType  string
	HalfDay    bool
	StartDate  string
	EndDate    string
	Reason     string
	NoOfDays   decimal.Decimal
	Status     string
	AppliedAt  time.Time
}

// ApplyLeave stores the application and bumps the applied counter for its
// category in one transaction, so the balance can never drift from the
// recorded leaves.
func (s *Store) ApplyLeave(ctx context.Context, row LeaveRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := appliedColumn(leave.Category(row.LeaveType))
	if err != nil {
		return err
	}
	if row.Status == "" {
		row.Status = "pending"
	}
	applied := row.AppliedAt
	if applied.IsZero() {
		applied = time.Now().UTC()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO leaves (id, employee_id, leave_type, half_day, start_date, end_date, reason, no_of_days, status, applied_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			row.ID, row.EmployeeID, row.LeaveType, row.HalfDay, row.StartDate, row.EndDate,
			row.Reason, row.NoOfDays.String(), row.Status, applied.Format(time.RFC3339)); err != nil {
			return err
		}

		var current string
		err := tx.QueryRowContext(ctx, `SELECT `+col+` FROM leave_balances WHERE employee_id = ?`, row.EmployeeID).Scan(&current)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE leave_balances SET `+col+` = ? WHERE employee_id = ?`,
			parseDecimal(current).Add(row.NoOfDays).String(), row.EmployeeID)
		return err
	})
}

func appliedColumn(cat leave.Category) (string, error) {
	switch cat {
	case leave.CategorySick:
		return "sick_applied", nil
	case leave.CategoryCasual:
		return "casual_applied", nil
	case leave.CategoryAnnual:
		return "annual_applied", nil
	}
	return "", leave.ErrUnknownCategory
}

// ListLeaves returns an employee's leave history, newest first.
func (s *Store) ListLeaves(ctx context.Context, employeeID string) ([]LeaveRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, leave_type, half_day, start_date, end_date, COALESCE(reason, ''), no_of_days, status, applied_at
		FROM leaves WHERE employee_id = ? ORDER BY id DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRow
	for rows.Next() {
		var r LeaveRow
		var days, applied string
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.LeaveType, &r.HalfDay, &r.StartDate, &r.EndDate,
			&r.Reason, &days, &r.Status, &applied); err != nil {
			return nil, err
		}
		r.NoOfDays = parseDecimal(days)
		r.AppliedAt, _ = time.Parse(time.RFC3339, applied)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// PAYMENT HISTORY
// =============================================================================

// Payment is one remittance row.
type Payment struct {
	ID              int64
	VendorID        string
	AgreementNumber string
	PaymentMethod   string
	PostingDate     string
	ChequeNumber    string
	PaymentAmount   decimal.Decimal
	NetAmount       decimal.Decimal
	GrossAmount     decimal.Decimal
	FiscalYear      string
	EncashmentDate  string
}

// SavePayment inserts a payment row.
func (s *Store) SavePayment(ctx context.Context, p Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_history (vendor_id, agreement_number, payment_method, posting_date, cheque_number,
		                             payment_amount, net_amount, gross_amount, fiscal_year, encashment_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.VendorID, p.AgreementNumber, p.PaymentMethod, p.PostingDate, p.ChequeNumber,
		p.PaymentAmount.String(), p.NetAmount.String(), p.GrossAmount.String(), p.FiscalYear, p.EncashmentDate)
	return err
}

// ListPayments returns payments for a vendor newest first, optionally
// filtered by fiscal year.
func (s *Store) ListPayments(ctx context.Context, vendorID, year string) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := paymentSelect + ` WHERE vendor_id = ?`
	args := []any{vendorID}
	if year != "" {
		query += ` AND fiscal_year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY posting_date DESC`
	return s.queryPayments(ctx, query, args...)
}

// ListAllPayments returns every payment row, for the admin export.
func (s *Store) ListAllPayments(ctx context.Context) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPayments(ctx, paymentSelect+` ORDER BY vendor_id, posting_date DESC`)
}

const paymentSelect = `
	SELECT id, vendor_id, COALESCE(agreement_number, ''), COALESCE(payment_method, ''),
	       COALESCE(posting_date, ''), COALESCE(cheque_number, ''),
	       COALESCE(payment_amount, '0'), COALESCE(net_amount, '0'), COALESCE(gross_amount, '0'),
	       COALESCE(fiscal_year, ''), COALESCE(encashment_date, '')
	FROM payment_history`

func (s *Store) queryPayments(ctx context.Context, query string, args ...any) ([]Payment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		var pay, net, gross string
		if err := rows.Scan(&p.ID, &p.VendorID, &p.AgreementNumber, &p.PaymentMethod, &p.PostingDate,
			&p.ChequeNumber, &pay, &net, &gross, &p.FiscalYear, &p.EncashmentDate); err != nil {
			return nil, err
		}
		p.PaymentAmount = parseDecimal(pay)
		p.NetAmount = parseDecimal(net)
		p.GrossAmount = parseDecimal(gross)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// DocumentMeta records one onboarding upload; the blob lives in docstore.
type DocumentMeta struct {
	ID         string
	EmployeeID string
	DocType    string
	Filename   string
	Size       int64
	UploadedAt time.Time
}

// SaveDocumentMeta inserts or replaces the metadata for a document slot.
// Re-uploading the same doc_type replaces the previous entry.
func (s *Store) SaveDocumentMeta(ctx context.Context, m DocumentMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	uploaded := m.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, employee_id, doc_type, filename, size, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, doc_type) DO UPDATE SET
			id=excluded.id, filename=excluded.filename, size=excluded.size, uploaded_at=excluded.uploaded_at`,
		m.ID, m.EmployeeID, m.DocType, m.Filename, m.Size, uploaded.Format(time.RFC3339))
	return err
}

// ListDocuments returns document metadata for an employee.
func (s *Store) ListDocuments(ctx context.Context, employeeID string) ([]DocumentMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, doc_type, filename, size, uploaded_at
		FROM documents WHERE employee_id = ? ORDER BY doc_type`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentMeta
	for rows.Next() {
		var m DocumentMeta
		var uploaded string
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.DocType, &m.Filename, &m.Size, &uploaded); err != nil {
			return nil, err
		}
		m.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
		out = append(out, m)
	}
	return out, rows.Err()
}

// =============================================================================
// SESSIONS
// =============================================================================

// Session is an opaque login token with an expiry.
type Session struct {
	Token     string
	SubjectID string
	Role      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateSession stores a new session.
func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, subject_id, role, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		sess.Token, sess.SubjectID, sess.Role,
		sess.CreatedAt.UTC().Format(time.RFC3339), sess.ExpiresAt.UTC().Format(time.RFC3339))
	return err
}

// GetSession returns a session if it exists and has not expired.
func (s *Store) GetSession(ctx context.Context, token string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT token, subject_id, role, created_at, expires_at FROM sessions WHERE token = ?`, token)

	var sess Session
	var created, expires string
	err := row.Scan(&sess.Token, &sess.SubjectID, &sess.Role, &created, &expires)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339, created)
	sess.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
	if time.Now().After(sess.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// DeleteSession removes a session (logout).
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
