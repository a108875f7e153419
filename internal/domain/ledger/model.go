package ledger

import (
	"time"
)

// Event is an append-only ledger row recording a processed provider
// notification. The provider-assigned ID doubles as the idempotency key:
// the table's primary key constraint is the mechanism that makes duplicate
// processing impossible, so a duplicate insert is a signal, not an error.
// Rows are immutable once written and retained indefinitely for audit.
type Event struct {
	// ID is the provider-assigned event identifier and the primary key
	ID string `db:"id" json:"id"`

	// Type is the provider event type, ex "subscription.renewed"
	Type string `db:"type" json:"type"`

	// ProcessedAt is when the event was claimed
	ProcessedAt time.Time `db:"processed_at" json:"processed_at"`

	// Payload is the raw notification body, stored verbatim for audit
	// and replay. Never interpreted by this service.
	Payload []byte `db:"payload" json:"payload,omitempty"`
}
