package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/domain/prorata"
	"github.com/subcycle/subcycle/internal/types"
	"github.com/subcycle/subcycle/internal/validator"
)

// TransitionRequest asks to move a user's subscription to a new billing
// cadence
type TransitionRequest struct {
	UserID        string              `json:"user_id" validate:"required"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required"`
	// Timezone is the user's IANA timezone identifier. Invalid or missing
	// values fall back to UTC.
	Timezone string `json:"timezone"`
}

func (r *TransitionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.BillingPeriod.Validate()
}

// TransitionResponse is the outcome of a transition or preview request.
// A deferred outcome is a success with Applied false, not an error.
type TransitionResponse struct {
	Applied          bool                `json:"applied"`
	Deferred         bool                `json:"deferred"`
	Reason           prorata.Reason      `json:"reason"`
	Credit           decimal.Decimal     `json:"credit"`
	DaysUntilRenewal int                 `json:"days_until_renewal"`
	BillingPeriod    types.BillingPeriod `json:"billing_period"`
	NextRenewalDate  time.Time           `json:"next_renewal_date"`
}
