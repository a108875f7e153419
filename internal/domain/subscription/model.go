package subscription

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/types"
)

type Subscription struct {
	// ID is the unique identifier for the subscription
	ID string `db:"id" json:"id"`

	// UserID is the identifier for the user in our system.
	// At most one active subscription exists per user.
	UserID string `db:"user_id" json:"user_id"`

	// PlanID is the identifier for the plan in our system
	PlanID string `db:"plan_id" json:"plan_id"`

	// BillingPeriod is the cadence of the billing cycle
	BillingPeriod types.BillingPeriod `db:"billing_period" json:"billing_period"`

	// IsActive marks the single live row for the user
	IsActive bool `db:"is_active" json:"is_active"`

	// PriceBRL is the snapshot of the plan price taken at subscription time.
	// The live plan price may have changed since.
	PriceBRL decimal.Decimal `db:"price_brl" json:"price_brl"`

	// ProviderSubscriptionID is the handle to the remote payment provider
	// object. Required to mutate the external subscription.
	ProviderSubscriptionID string `db:"provider_subscription_id" json:"provider_subscription_id"`

	// RenewsAt is the instant of the next renewal
	RenewsAt time.Time `db:"renews_at" json:"renews_at"`

	// AnnualBenefits is opaque metadata attached to annual subscriptions.
	// Stored and returned verbatim, never interpreted here.
	AnnualBenefits []byte `db:"annual_benefits" json:"annual_benefits,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasProviderHandle reports whether the remote subscription can be mutated
func (s *Subscription) HasProviderHandle() bool {
	return s.ProviderSubscriptionID != ""
}
