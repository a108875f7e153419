package types

import (
	"github.com/samber/lo"
	ierr "github.com/subcycle/subcycle/internal/errors"
)

// BillingPeriod is the cadence on which a subscription renews and is charged.
type BillingPeriod string

const (
	BILLING_PERIOD_MONTHLY BillingPeriod = "MONTHLY"
	BILLING_PERIOD_ANNUAL  BillingPeriod = "ANNUAL"
)

func (p BillingPeriod) String() string {
	return string(p)
}

func (p BillingPeriod) Validate() error {
	allowedValues := []BillingPeriod{
		BILLING_PERIOD_MONTHLY,
		BILLING_PERIOD_ANNUAL,
	}
	if !lo.Contains(allowedValues, p) {
		return ierr.NewError("invalid billing period").
			WithHintf("billing period must be one of %v", allowedValues).
			Mark(ierr.ErrValidation)
	}
	return nil
}
