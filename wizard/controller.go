/*
controller.go - The wizard step state machine

STATES:
  Review (0) -> SelectFields (1) -> Reasons (2) -> Edit (3) -> Review (0)

TRANSITIONS:
  Review -> SelectFields   BeginUpdate(), unconditional
  SelectFields -> Reasons  Advance(), refused while the selection is empty
  Reasons -> Edit          Advance(), unconditional
  Edit -> Review           Submit(): validate, confirm, gateway, refetch
  any -> previous          Back(), discarding state gathered after the
                           state being returned to
  any -> Review            Cancel(), discarding everything

Submit side effects run in order: cross-field validation (stay in Edit on
failure), confirmation prompt (stay in Edit if declined), gateway call
(stay in Edit on failure, no state discarded), then on success clear the
selection/reasons/edits, refetch the canonical record and return to Review.
*/
package wizard

import (
	"context"
	"errors"
)

// Step identifies the wizard's current state.
type Step int

const (
	StepReview Step = iota
	StepSelectFields
	StepReasons
	StepEdit
)

func (s Step) String() string {
	switch s {
	case StepReview:
		return "review"
	case StepSelectFields:
		return "select_fields"
	case StepReasons:
		return "reasons"
	case StepEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// SuccessNotice is the acknowledgement shown after a successful submit.
const SuccessNotice = "Your update request has been sent. Please note that it will take up to 5 working days to reflect in our system."

// Confirmer answers the yes/no confirmation prompt shown before a submit.
type Confirmer func() bool

// Outcome reports the result of a successful submit.
type Outcome struct {
	Acknowledged bool
	Notice       string
}

// Controller orchestrates one wizard instance. It owns all in-progress
// state exclusively; nothing is shared across instances except through
// the backend round-trip.
type Controller struct {
	form    FormDefinition
	source  RecordSource
	gateway SubmitGateway

	// Confirm answers the pre-submit prompt. Nil means auto-confirm.
	Confirm Confirmer

	step      Step
	loaded    bool
	record    Record
	selection FieldSelection
	reasons   ReasonMap
	edits     Record
}

// NewController creates a controller in the Review step with an empty
// placeholder record. Call Load before starting the flow.
func NewController(form FormDefinition, source RecordSource, gateway SubmitGateway) *Controller {
	return &Controller{
		form:      form,
		source:    source,
		gateway:   gateway,
		step:      StepReview,
		record:    Record{},
		selection: FieldSelection{},
		reasons:   ReasonMap{},
	}
}

// Load fetches the canonical record. On failure the controller stays in
// Review with placeholder values and the error is surfaced to the caller.
func (c *Controller) Load(ctx context.Context) error {
	rec, err := c.source.Fetch(ctx)
	if err != nil {
		return &GatewayError{Message: "Failed to load details", Err: err}
	}
	c.record = rec
	c.loaded = true
	return nil
}

// Step returns the current state.
func (c *Controller) Step() Step { return c.step }

// Record returns the canonical record as of the last successful fetch.
func (c *Controller) Record() Record { return c.record.Clone() }

// Selection returns the currently selected field names.
func (c *Controller) Selection() []FieldName { return c.selection.Names() }

// Reasons returns the collected per-field reasons.
func (c *Controller) Reasons() ReasonMap {
	out := make(ReasonMap, len(c.reasons))
	for k, v := range c.reasons {
		out[k] = v
	}
	return out
}

// =============================================================================
// FORWARD TRANSITIONS
// =============================================================================

// BeginUpdate starts the flow: Review -> SelectFields. Any state left over
// from an abandoned flow is discarded.
func (c *Controller) BeginUpdate() error {
	if !c.loaded {
		return ErrRecordNotLoaded
	}
	if c.step != StepReview {
		return nil
	}
	c.reset()
	c.step = StepSelectFields
	return nil
}

// ToggleField adds or removes a field from the selection. Unknown fields
// are ignored. Only meaningful in the SelectFields step.
func (c *Controller) ToggleField(f FieldName) {
	if c.step != StepSelectFields || !c.form.Has(f) {
		return
	}
	if c.selection[f] {
		delete(c.selection, f)
	} else {
		c.selection[f] = true
	}
}

// CanAdvance reports whether Advance would move forward from the current
// step. Mirrors the disabled state of the "Next" action.
func (c *Controller) CanAdvance() bool {
	switch c.step {
	case StepSelectFields:
		return !c.selection.Empty()
	case StepReasons:
		return true
	default:
		return false
	}
}

// Advance moves to the next step. Advancing from SelectFields with an
// empty selection is refused: no state change, and false is returned.
func (c *Controller) Advance() bool {
	switch c.step {
	case StepSelectFields:
		if c.selection.Empty() {
			return false
		}
		c.step = StepReasons
		return true
	case StepReasons:
		c.step = StepEdit
		c.edits = c.record.Clone()
		return true
	default:
		return false
	}
}

// SetReason records a reason for a selected field. Reasons for fields
// outside the selection are dropped, keeping ReasonMap keys a subset of
// the selection.
func (c *Controller) SetReason(f FieldName, reason string) {
	if c.step != StepReasons || !c.selection.Contains(f) {
		return
	}
	c.reasons[f] = reason
}

// SetField updates a field in the working copy. Fields that are neither
// selected nor unlocked stay read-only: the write is ignored.
func (c *Controller) SetField(f FieldName, value string) {
	if c.step != StepEdit || !c.form.Editable(c.selection, f) {
		return
	}
	c.edits[f] = value
}

// Editable reports whether the field is editable in the current flow.
func (c *Controller) Editable(f FieldName) bool {
	return c.form.Editable(c.selection, f)
}

// Edits returns the working copy rendered in the edit step. Unselected
// fields mirror the canonical record.
func (c *Controller) Edits() Record { return c.edits.Clone() }

// =============================================================================
// BACKWARD TRANSITIONS
// =============================================================================

// Back retreats one step, discarding the state accumulated after the step
// being returned to: edits when leaving Edit, reasons when leaving
// Reasons, the selection when leaving SelectFields.
func (c *Controller) Back() {
	switch c.step {
	case StepEdit:
		c.edits = nil
		c.step = StepReasons
	case StepReasons:
		c.reasons = ReasonMap{}
		c.step = StepSelectFields
	case StepSelectFields:
		c.selection = FieldSelection{}
		c.step = StepReview
	}
}

// Cancel aborts the whole flow back to Review with no data changes.
func (c *Controller) Cancel() {
	c.reset()
	c.step = StepReview
}

func (c *Controller) reset() {
	c.selection = FieldSelection{}
	c.reasons = ReasonMap{}
	c.edits = nil
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs the Edit -> Review transition. On validation failure or a
// declined confirmation or a gateway error, the controller stays in Edit
// with all state intact. On success the in-progress state is cleared, the
// canonical record is refetched and the controller returns to Review.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	if c.step != StepEdit {
		return Outcome{}, ErrNotInEditStep
	}

	if err := c.form.Validate(c.selection, c.edits); err != nil {
		return Outcome{}, err
	}

	if c.Confirm != nil && !c.Confirm() {
		return Outcome{}, ErrConfirmationDeclined
	}

	changes := c.changeSet()
	if err := c.gateway.Submit(ctx, changes); err != nil {
		var ge *GatewayError
		if errors.As(err, &ge) {
			return Outcome{}, ge
		}
		return Outcome{}, &GatewayError{Message: "Failed to submit update", Err: err}
	}

	c.reset()
	c.step = StepReview

	// Refetch the canonical record; the submit already succeeded, so a
	// refetch failure leaves the stale copy in place rather than failing
	// the whole operation.
	if rec, err := c.source.Fetch(ctx); err == nil {
		c.record = rec
	}

	return Outcome{Acknowledged: true, Notice: SuccessNotice}, nil
}

// changeSet builds the wire payload restricted to the selected fields.
// Unlocked-but-unselected fields are not sent; the backend applies only
// the fields the user asked to change.
func (c *Controller) changeSet() ChangeSet {
	changes := make(ChangeSet, len(c.selection))
	for f := range c.selection {
		if key := c.form.KeyFor(f); key != "" {
			changes[key] = c.edits[f]
		}
	}
	return changes
}
