/*
Package profile provides the concrete form definitions for the two
self-service update flows: user details and bank details.

The original portal repeated the same four-step update wizard per page;
here each page is reduced to a form preset. Presets are JSON strings so
they can live in a database or admin UI unchanged; parse them with
factory.ParseForm. JSON is constructed directly to avoid an import cycle
with the factory package.

USAGE:
  import "github.com/warp/portal-engine/profile"

  form, err := factory.ParseForm(profile.BankDetailsJSON())
  ctl := wizard.NewController(form, source, gateway)
*/
package profile

import (
	"encoding/json"

	"github.com/warp/portal-engine/wizard"
)

// Field names shared by the form presets and the API layer.
const (
	FieldName          wizard.FieldName = "Name"
	FieldEmail         wizard.FieldName = "Email"
	FieldMobile        wizard.FieldName = "Mobile Number"
	FieldTelephone     wizard.FieldName = "Telephone"
	FieldAddress       wizard.FieldName = "Address"
	FieldSortCode      wizard.FieldName = "Sort Code"
	FieldAccountNumber wizard.FieldName = "Account Number"
	FieldAccountHolder wizard.FieldName = "Account Holder Name"
	FieldPaymentMethod wizard.FieldName = "Payment Method"
)

// Payment methods accepted by the bank details form.
const (
	PaymentBACS           = "BACS"
	PaymentFasterPayments = "Faster Payments"
	PaymentCheque         = "Cheque"
)

// UserDetailsJSON returns the form preset for the user-details flow.
// Any subset of the fields may be edited independently; there are no
// cross-field rules.
func UserDetailsJSON() string {
	fj := map[string]interface{}{
		"id":   "user-details",
		"name": "User Details",
		"fields": []map[string]interface{}{
			{"name": string(FieldName), "key": "name"},
			{"name": string(FieldEmail), "key": "email"},
			{"name": string(FieldMobile), "key": "mobile"},
			{"name": string(FieldTelephone), "key": "telephone"},
			{"name": string(FieldAddress), "key": "address"},
		},
		"reason_options": []string{
			"Incorrect Details",
			"Change of Circumstances",
			"Other",
		},
	}
	b, _ := json.MarshalIndent(fj, "", "  ")
	return string(b)
}

// BankDetailsJSON returns the form preset for the bank-details flow.
//
// Unlocks are one-way: selecting Sort Code or Account Number also makes
// Account Holder Name editable, because a holder-name correction is
// expected to accompany either. There is no unlock in the reverse
// direction.
func BankDetailsJSON() string {
	fj := map[string]interface{}{
		"id":   "bank-details",
		"name": "Bank Account Details",
		"fields": []map[string]interface{}{
			{"name": string(FieldSortCode), "key": "sortCode"},
			{"name": string(FieldAccountNumber), "key": "accountNumber"},
			{"name": string(FieldAccountHolder), "key": "accountHolder"},
			{"name": string(FieldMobile), "key": "mobile"},
			{"name": string(FieldEmail), "key": "email"},
			{"name": string(FieldPaymentMethod), "key": "paymentMethod"},
		},
		"unlocks": map[string][]string{
			string(FieldSortCode):      {string(FieldAccountNumber), string(FieldAccountHolder)},
			string(FieldAccountNumber): {string(FieldAccountHolder)},
		},
		"rules": []map[string]interface{}{
			{
				"when_selected": string(FieldAccountNumber),
				"require":       string(FieldAccountHolder),
				"message":       "Account Holder Name is required when updating Account Number",
			},
			{
				"when_field": string(FieldPaymentMethod),
				"equals":     PaymentBACS,
				"require":    string(FieldEmail),
				"message":    "Email is required when Payment Method is BACS",
			},
		},
		"reason_options": []string{
			"Incorrect Details",
			"Account Change",
			"Bank Transfer",
			"Other",
		},
	}
	b, _ := json.MarshalIndent(fj, "", "  ")
	return string(b)
}
