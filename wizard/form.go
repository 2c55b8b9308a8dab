package wizard

import "strings"

// =============================================================================
// FORM DEFINITION - What a concrete wizard instance edits
// =============================================================================

// Field describes one editable field of a form. Name is the display name
// shown to the user; Key is the wire key used in the gateway payload.
type Field struct {
	Name FieldName `json:"name"`
	Key  string    `json:"key"`
}

// FormDefinition parameterizes the wizard: the fixed field list, the
// unlock rules, the cross-field validation rules, and the reason options
// offered during the reason step.
type FormDefinition struct {
	ID     string
	Name   string
	Fields []Field

	// Unlocks maps a selected field to additional fields that become
	// editable alongside it. The relation is deliberately one-way:
	// selecting "Sort Code" unlocks "Account Holder Name", never the
	// reverse.
	Unlocks map[FieldName][]FieldName

	Rules []Rule

	ReasonOptions []string
}

// Has reports whether the form defines the given field.
func (d *FormDefinition) Has(f FieldName) bool {
	for _, fd := range d.Fields {
		if fd.Name == f {
			return true
		}
	}
	return false
}

// KeyFor returns the wire key for a field name, or "" if unknown.
func (d *FormDefinition) KeyFor(f FieldName) string {
	for _, fd := range d.Fields {
		if fd.Name == f {
			return fd.Key
		}
	}
	return ""
}

// Editable reports whether a field may be edited given the selection:
// either selected directly, or unlocked by a selected field.
func (d *FormDefinition) Editable(sel FieldSelection, f FieldName) bool {
	if sel.Contains(f) {
		return true
	}
	for selected := range sel {
		for _, unlocked := range d.Unlocks[selected] {
			if unlocked == f {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// CROSS-FIELD RULES
// =============================================================================

// Rule is a cross-field validation rule checked at submit time.
// A rule fires either because a field is selected (WhenSelected) or
// because a field holds a specific value (WhenField == Equals); when it
// fires, Require must be non-empty in the edited record.
type Rule struct {
	WhenSelected FieldName `json:"when_selected,omitempty"`
	WhenField    FieldName `json:"when_field,omitempty"`
	Equals       string    `json:"equals,omitempty"`
	Require      FieldName `json:"require"`
	Message      string    `json:"message"`
}

func (r Rule) applies(sel FieldSelection, edited Record) bool {
	if r.WhenSelected != "" && sel.Contains(r.WhenSelected) {
		return true
	}
	if r.WhenField != "" && edited[r.WhenField] == r.Equals {
		return true
	}
	return false
}

// Validate checks every rule against the selection and the edited record.
// It returns the first violation, or nil if the record is submittable.
func (d *FormDefinition) Validate(sel FieldSelection, edited Record) error {
	for _, r := range d.Rules {
		if !r.applies(sel, edited) {
			continue
		}
		if strings.TrimSpace(edited[r.Require]) == "" {
			return &RuleViolation{Field: r.Require, Message: r.Message}
		}
	}
	return nil
}
