package wizard

import "context"

// RecordSource fetches the canonical record from the backend. The wizard
// fetches once when the page mounts and again after every successful
// submit; it never assumes the submit response mirrors persisted state.
type RecordSource interface {
	Fetch(ctx context.Context) (Record, error)
}

// SubmitGateway sends a change-set restricted to the selected fields to
// the backend. Success means the backend acknowledged the request; the
// caller refetches the canonical record afterwards. The gateway performs
// no retries - a failed submit is surfaced and the user re-invokes it.
type SubmitGateway interface {
	Submit(ctx context.Context, changes ChangeSet) error
}

// RecordSourceFunc adapts a function to the RecordSource interface.
type RecordSourceFunc func(ctx context.Context) (Record, error)

func (f RecordSourceFunc) Fetch(ctx context.Context) (Record, error) { return f(ctx) }

// SubmitGatewayFunc adapts a function to the SubmitGateway interface.
type SubmitGatewayFunc func(ctx context.Context, changes ChangeSet) error

func (f SubmitGatewayFunc) Submit(ctx context.Context, changes ChangeSet) error {
	return f(ctx, changes)
}
