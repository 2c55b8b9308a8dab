/*
Package gateway implements the HTTP side of the wizard and leave flows.

PURPOSE:
  The wizard engine is transport-agnostic; this package binds it to the
  REST contract the portal backend exposes:

    GET  /<resource>/<id>   -> {"success": true, "data": {...}}
    PUT  /<resource>/<id>   body = change-set restricted to selected fields

  plus the leave endpoints:

    GET  /leave_balances/{employee_id}
    GET  /all_leaves/{employee_id}
    POST /apply_leave

ERROR SURFACING:
  A failed call carries the backend's own message when the error body has
  a "message", "detail" or "error" field; otherwise a generic fallback is
  used. Nothing is retried - the caller re-invokes on failure.

SEE ALSO:
  - wizard/gateway.go: the interfaces satisfied here
  - api/: the server side of the same contract
*/
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/warp/portal-engine/wizard"
)

// =============================================================================
// RESOURCE CLIENT - RecordSource + SubmitGateway for one record
// =============================================================================

// ResourceClient fetches and updates a single updatable record. It
// satisfies both wizard.RecordSource and wizard.SubmitGateway.
type ResourceClient struct {
	hc       *http.Client
	baseURL  string
	resource string
	id       string
	form     wizard.FormDefinition
}

// NewResourceClient creates a client for one resource instance, e.g.
// resource "bank-details" and the vendor ID. The form supplies the wire
// key mapping. A nil http.Client falls back to http.DefaultClient.
func NewResourceClient(hc *http.Client, baseURL, resource, id string, form wizard.FormDefinition) *ResourceClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ResourceClient{hc: hc, baseURL: baseURL, resource: resource, id: id, form: form}
}

type envelope struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data"`
}

// Fetch retrieves the canonical record and maps wire keys back to field
// names using the form definition.
func (c *ResourceClient) Fetch(ctx context.Context) (wizard.Record, error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.resource, c.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &wizard.GatewayError{Message: "Failed to load details", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, backendError(resp, "Failed to load details")
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &wizard.GatewayError{Message: "Failed to load details", Err: err}
	}

	rec := make(wizard.Record, len(c.form.Fields))
	for _, f := range c.form.Fields {
		rec[f.Name] = env.Data[f.Key]
	}
	return rec, nil
}

// Submit sends the restricted change-set as a PUT. The response body is
// not trusted to mirror persisted state; callers refetch after success.
func (c *ResourceClient) Submit(ctx context.Context, changes wizard.ChangeSet) error {
	body, err := json.Marshal(changes)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.resource, c.id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return &wizard.GatewayError{Message: "Failed to submit update", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backendError(resp, "Failed to submit update")
	}
	return nil
}

// backendError extracts the backend's message from an error body. The
// message is shown verbatim when present.
func backendError(resp *http.Response, fallback string) error {
	msg := fallback
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Message != "":
			msg = body.Message
		case body.Detail != "":
			msg = body.Detail
		case body.Error != "":
			msg = body.Error
		}
	}
	return &wizard.GatewayError{
		Message: msg,
		Err:     fmt.Errorf("backend returned %d", resp.StatusCode),
	}
}
