/*
Package factory provides JSON to Go form-definition conversion.

PURPOSE:
  Converts JSON form presets into wizard.FormDefinition values. This keeps
  form configuration out of code - a new update flow is a new JSON blob
  (field list, unlock rules, cross-field rules, reason options), not a new
  page implementation.

JSON SCHEMA:
  {
    "id": "bank-details",
    "name": "Bank Account Details",
    "fields": [
      {"name": "Sort Code", "key": "sortCode"},
      {"name": "Account Number", "key": "accountNumber"}
    ],
    "unlocks": {
      "Sort Code": ["Account Number", "Account Holder Name"]
    },
    "rules": [
      {"when_selected": "Account Number",
       "require": "Account Holder Name",
       "message": "Account Holder Name is required when updating Account Number"}
    ],
    "reason_options": ["Incorrect Details", "Other"]
  }

VALIDATION:
  Every field referenced by an unlock or a rule must be declared in the
  field list; wire keys must be unique and non-empty.

USAGE:
  form, err := factory.ParseForm(profile.BankDetailsJSON())

SEE ALSO:
  - wizard/form.go: FormDefinition type
  - profile/forms.go: the shipped presets
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/portal-engine/wizard"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// FormJSON is the JSON representation of a form definition.
type FormJSON struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Fields        []FieldJSON         `json:"fields"`
	Unlocks       map[string][]string `json:"unlocks,omitempty"`
	Rules         []wizard.Rule       `json:"rules,omitempty"`
	ReasonOptions []string            `json:"reason_options,omitempty"`
}

// FieldJSON declares one field: display name plus wire key.
type FieldJSON struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseForm converts a JSON form preset into a wizard.FormDefinition.
func ParseForm(jsonStr string) (wizard.FormDefinition, error) {
	var fj FormJSON
	if err := json.Unmarshal([]byte(jsonStr), &fj); err != nil {
		return wizard.FormDefinition{}, fmt.Errorf("invalid form JSON: %w", err)
	}
	return buildForm(fj)
}

func buildForm(fj FormJSON) (wizard.FormDefinition, error) {
	if fj.ID == "" {
		return wizard.FormDefinition{}, fmt.Errorf("form id is required")
	}
	if len(fj.Fields) == 0 {
		return wizard.FormDefinition{}, fmt.Errorf("form %q declares no fields", fj.ID)
	}

	def := wizard.FormDefinition{
		ID:            fj.ID,
		Name:          fj.Name,
		Fields:        make([]wizard.Field, 0, len(fj.Fields)),
		Rules:         fj.Rules,
		ReasonOptions: fj.ReasonOptions,
	}

	known := map[wizard.FieldName]bool{}
	keys := map[string]bool{}
	for _, f := range fj.Fields {
		if f.Name == "" || f.Key == "" {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: field needs both name and key", fj.ID)
		}
		name := wizard.FieldName(f.Name)
		if known[name] {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: duplicate field %q", fj.ID, f.Name)
		}
		if keys[f.Key] {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: duplicate key %q", fj.ID, f.Key)
		}
		known[name] = true
		keys[f.Key] = true
		def.Fields = append(def.Fields, wizard.Field{Name: name, Key: f.Key})
	}

	if len(fj.Unlocks) > 0 {
		def.Unlocks = make(map[wizard.FieldName][]wizard.FieldName, len(fj.Unlocks))
		for from, tos := range fj.Unlocks {
			if !known[wizard.FieldName(from)] {
				return wizard.FormDefinition{}, fmt.Errorf("form %q: unlock from unknown field %q", fj.ID, from)
			}
			for _, to := range tos {
				if !known[wizard.FieldName(to)] {
					return wizard.FormDefinition{}, fmt.Errorf("form %q: unlock to unknown field %q", fj.ID, to)
				}
				def.Unlocks[wizard.FieldName(from)] = append(def.Unlocks[wizard.FieldName(from)], wizard.FieldName(to))
			}
		}
	}

	for i, r := range fj.Rules {
		if r.Require == "" {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: rule %d has no required field", fj.ID, i)
		}
		if !known[r.Require] {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: rule %d requires unknown field %q", fj.ID, i, r.Require)
		}
		if r.WhenSelected == "" && r.WhenField == "" {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: rule %d has no trigger", fj.ID, i)
		}
		if r.WhenSelected != "" && !known[r.WhenSelected] {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: rule %d triggers on unknown field %q", fj.ID, i, r.WhenSelected)
		}
		if r.WhenField != "" && !known[r.WhenField] {
			return wizard.FormDefinition{}, fmt.Errorf("form %q: rule %d triggers on unknown field %q", fj.ID, i, r.WhenField)
		}
	}

	return def, nil
}

// MustParseForm parses a built-in preset and panics on error. Reserved for
// the presets shipped in the profile package, which are covered by tests.
func MustParseForm(jsonStr string) wizard.FormDefinition {
	def, err := ParseForm(jsonStr)
	if err != nil {
		panic(err)
	}
	return def
}
