package prorata

import (
	"github.com/shopspring/decimal"
)

// Reason explains why a transition was deferred instead of prorated
type Reason string

const (
	ReasonNone                Reason = "none"
	ReasonDeferredNearRenewal Reason = "deferred_near_renewal"
)

// Result holds the output of a pro-rata credit calculation.
// It is an ephemeral value, never persisted.
type Result struct {
	// Credit is the unused value of the current plan in currency units,
	// rounded to 2 places. Zero when the transition is deferred.
	Credit decimal.Decimal `json:"credit"`

	// DaysUntilRenewal is the calendar-day distance to the next renewal,
	// counted in the user's timezone. Never negative.
	DaysUntilRenewal int `json:"days_until_renewal"`

	// Deferred indicates the change should wait for the next renewal
	Deferred bool `json:"deferred"`

	// Reason explains a deferral, ReasonNone otherwise
	Reason Reason `json:"reason"`
}
