/*
export.go - Spreadsheet export for the admin console

PURPOSE:
  Streams the full payment history as an .xlsx workbook so finance staff
  can reconcile outside the portal.

FORMAT:
  One sheet named "Payments" with a header row and one row per payment,
  ordered the way ListAllPayments returns them (newest vendors first).
  Amounts are written as their exact decimal string forms.

SEE ALSO:
  - handlers.go: Route registration and shared helpers
  - store/sqlite/sqlite.go: ListAllPayments
*/
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

var paymentExportHeader = []string{
	"Vendor ID", "Agreement Number", "Payment Method", "Posting Date",
	"Cheque Number", "Payment Amount", "Net Amount", "Gross Amount",
	"Fiscal Year", "Encashment Date",
}

// ExportPayments writes every payment row into an .xlsx workbook.
// GET /api/admin/payments/export
func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Store.ListAllPayments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load payments", err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range paymentExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for i, p := range payments {
		row := []any{
			p.VendorID, p.AgreementNumber, p.PaymentMethod, p.PostingDate,
			p.ChequeNumber, p.PaymentAmount.String(), p.NetAmount.String(),
			p.GrossAmount.String(), p.FiscalYear, p.EncashmentDate,
		}
		for col, val := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheet, cell, val)
		}
	}

	filename := fmt.Sprintf("payments-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := f.WriteTo(w); err != nil {
		// Headers already sent; nothing useful left to tell the client.
		return
	}
}
