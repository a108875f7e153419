package dto

import (
	"encoding/json"

	ierr "github.com/subcycle/subcycle/internal/errors"
)

// WebhookEnvelope is the minimal shape parsed out of a provider
// notification. The full body is retained verbatim as Raw.
type WebhookEnvelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`

	Raw []byte `json:"-"`
}

// ParseWebhookEnvelope decodes the notification body, keeping the raw bytes
func ParseWebhookEnvelope(body []byte) (*WebhookEnvelope, error) {
	var envelope WebhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, ierr.WithError(err).
			WithHint("webhook payload is not valid JSON").
			Mark(ierr.ErrValidation)
	}
	envelope.Raw = body
	return &envelope, nil
}

// WebhookResponse acknowledges a delivery. Duplicates are acknowledged as
// processed so the provider stops retrying.
type WebhookResponse struct {
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
	EventID   string `json:"event_id"`
}
