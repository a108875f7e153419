package ledger

import (
	"context"
)

// Repository is the append-only event ledger.
//
// Implementations must back TryClaim with a uniqueness constraint on the
// event id. A check-then-insert without the constraint is not safe under
// concurrent delivery: providers retry on timeout and may deliver the same
// event twice in parallel.
type Repository interface {
	// TryClaim atomically reserves the event id by inserting the full row.
	// Returns true when this call won the claim, false when the id was
	// already recorded.
	TryClaim(ctx context.Context, event *Event) (bool, error)

	// Get returns a recorded event for audit, or ErrNotFound
	Get(ctx context.Context, id string) (*Event, error)
}
