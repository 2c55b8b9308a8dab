/*
Package wizard provides the reusable multi-step update-request engine.

PURPOSE:
  Self-service portals let users request changes to records they do not
  edit directly: bank details, contact details, and similar. The flow is
  always the same four steps - review the current record, pick the fields
  to change, give a reason per field, enter the new values - and ends with
  a single restricted change-set sent to a gateway. This package implements
  that flow once, parameterized by a FormDefinition, instead of repeating
  it per page.

KEY CONCEPTS IN THIS FILE (types.go):
  - FieldName/Record: a flat field-name -> value mapping with a fixed schema
  - FieldSelection: the set of fields chosen for update
  - ReasonMap: optional per-field reasons collected during the flow
  - ChangeSet: the wire-keyed restricted payload handed to the gateway

DESIGN PRINCIPLES:
  1. The canonical record is owned by the backend; the wizard holds a copy
     and replaces it wholesale after a successful submit-and-refetch.
  2. Fields outside the selection are resubmitted unchanged, never sent.
  3. All state is in memory; nothing survives abandoning the flow.

SEE ALSO:
  - form.go: FormDefinition, unlock rules, cross-field validation
  - controller.go: the step state machine
  - gateway.go: SubmitGateway and RecordSource collaborators
*/
package wizard

import "sort"

// =============================================================================
// FIELDS AND RECORDS
// =============================================================================

// FieldName is the display name of a form field, e.g. "Account Number".
// Field names are fixed per form; there is no dynamic schema.
type FieldName string

// Record is a flat mapping of field name to current value.
type Record map[FieldName]string

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// =============================================================================
// SELECTION, REASONS, CHANGE-SET
// =============================================================================

// FieldSelection is the set of field names chosen for update.
type FieldSelection map[FieldName]bool

func (s FieldSelection) Contains(f FieldName) bool { return s[f] }
func (s FieldSelection) Empty() bool               { return len(s) == 0 }

// Names returns the selected field names in a stable order.
func (s FieldSelection) Names() []FieldName {
	names := make([]FieldName, 0, len(s))
	for f := range s {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// ReasonMap maps a selected field name to a free-text or categorical reason.
// Reasons are optional; keys are always a subset of the field selection.
type ReasonMap map[FieldName]string

// ChangeSet is the payload handed to the gateway: wire key -> new value,
// restricted to the fields the user selected.
type ChangeSet map[string]string
