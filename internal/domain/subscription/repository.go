package subscription

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/types"
)

// Repository provides access to the subscription store.
// The subscription row is only ever mutated through this interface.
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error

	// GetActiveSubscription returns the single active row for the user,
	// or ErrNotFound when none exists.
	GetActiveSubscription(ctx context.Context, userID string) (*Subscription, error)

	// GetActiveSubscriptionForUpdate behaves like GetActiveSubscription but
	// acquires row-level exclusivity for the remainder of the surrounding
	// transaction. Callers must hold an open transaction on the context.
	GetActiveSubscriptionForUpdate(ctx context.Context, userID string) (*Subscription, error)

	// UpdateBillingPeriod writes the new cadence and price. The update only
	// applies while the row still carries expectedPriorPeriod; a lost race
	// surfaces as ErrVersionConflict.
	UpdateBillingPeriod(ctx context.Context, userID string, newPeriod types.BillingPeriod, newPrice decimal.Decimal, expectedPriorPeriod types.BillingPeriod) error

	// AdvanceRenewal moves the next renewal instant forward
	AdvanceRenewal(ctx context.Context, userID string, renewsAt time.Time) error

	// Deactivate retires the active row. Rows are never deleted.
	Deactivate(ctx context.Context, userID string) error
}
