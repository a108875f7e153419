package prorata

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/types"
)

const (
	// DeferralThresholdDays is the minimum number of days that must remain
	// in the current cycle for a transition to be prorated immediately.
	// Below it the change waits for the next renewal.
	DeferralThresholdDays = 7

	rateDaysPerMonth = 30
	rateDaysPerYear  = 365

	moneyPrecision = 2
)

// annualPriceFactor converts a monthly price into the discounted annual
// price: 12 months at 20% off (12 * 0.8).
var annualPriceFactor = decimal.NewFromFloat(9.6)

// Calculator computes daily rates and prorated credits from a subscription
// snapshot. Implementations are pure and side-effect-free.
type Calculator interface {
	DailyRate(monthlyPrice decimal.Decimal, period types.BillingPeriod) decimal.Decimal
	ComputeCredit(sub *subscription.Subscription, now time.Time, userTimezone string) (*Result, error)
}

// NewCalculator creates the day-based pro-rata calculator
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

type dayBasedCalculator struct{}

// DailyRate returns the per-day value of the subscription, rounded to 2
// places. The fixed 30/365 divisors approximate the rate only; remaining
// days are always counted with real calendar arithmetic.
func (c *dayBasedCalculator) DailyRate(monthlyPrice decimal.Decimal, period types.BillingPeriod) decimal.Decimal {
	if period == types.BILLING_PERIOD_ANNUAL {
		return monthlyPrice.Mul(annualPriceFactor).
			Div(decimal.NewFromInt(rateDaysPerYear)).
			Round(moneyPrecision)
	}
	return monthlyPrice.Div(decimal.NewFromInt(rateDaysPerMonth)).Round(moneyPrecision)
}

// ComputeCredit returns the prorated credit for the unused remainder of the
// current cycle. Days are counted as calendar days in the user's timezone;
// an unparseable timezone falls back to UTC and never fails the call.
func (c *dayBasedCalculator) ComputeCredit(sub *subscription.Subscription, now time.Time, userTimezone string) (*Result, error) {
	if err := validateSnapshot(sub); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(userTimezone)
	if err != nil {
		// "days remaining" is a human-facing concept, so the user's
		// timezone is preferred, but a bad identifier must not fail
		// the computation.
		loc = time.UTC
	}

	days := calendarDaysBetween(now.In(loc), sub.RenewsAt.In(loc), loc)
	if days < 0 {
		days = 0
	}

	if days < DeferralThresholdDays {
		return &Result{
			Credit:           decimal.Zero.Round(moneyPrecision),
			DaysUntilRenewal: days,
			Deferred:         true,
			Reason:           ReasonDeferredNearRenewal,
		}, nil
	}

	rate := c.DailyRate(sub.PriceBRL, sub.BillingPeriod)
	credit := decimal.NewFromInt(int64(days)).Mul(rate).Round(moneyPrecision)

	return &Result{
		Credit:           credit,
		DaysUntilRenewal: days,
		Deferred:         false,
		Reason:           ReasonNone,
	}, nil
}

// AnnualPrice derives the discounted yearly price from a monthly base price
func AnnualPrice(monthlyPrice decimal.Decimal) decimal.Decimal {
	return monthlyPrice.Mul(annualPriceFactor).Round(moneyPrecision)
}

// ValidateTransition enforces the cadence change rules shared by every
// caller: no-op transitions are rejected, and annual subscriptions cannot
// move back to monthly.
func ValidateTransition(current, requested types.BillingPeriod) error {
	if err := requested.Validate(); err != nil {
		return err
	}
	if current == requested {
		return ierr.NewError("subscription is already on the requested billing period").
			WithHintf("billing period is already %s", current).
			Mark(ierr.ErrAlreadyOnTarget)
	}
	if current == types.BILLING_PERIOD_ANNUAL && requested == types.BILLING_PERIOD_MONTHLY {
		return ierr.NewError("downgrade from annual to monthly is not supported").
			WithHint("downgrade from annual to monthly is not supported").
			Mark(ierr.ErrDowngradeNotSupported)
	}
	return nil
}

// calendarDaysBetween counts calendar days from start to end in the given
// timezone. Both instants are normalized to midnight, and the cursor steps
// by civil day rather than by 24 hours so 23- and 25-hour DST days each
// count exactly once.
func calendarDaysBetween(start, end time.Time, loc *time.Location) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)

	if endDay.Before(startDay) {
		return -1
	}

	days := 0
	for current := startDay; current.Before(endDay); current = current.AddDate(0, 0, 1) {
		days++
	}

	return days
}

func validateSnapshot(sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription snapshot is required").
			WithHint("subscription snapshot is required").
			Mark(ierr.ErrValidation)
	}
	if sub.RenewsAt.IsZero() {
		return ierr.NewError("subscription has no renewal date").
			WithHintf("subscription %s has no renewal date", sub.ID).
			Mark(ierr.ErrValidation)
	}
	if sub.PriceBRL.IsNegative() {
		return ierr.NewError("subscription price cannot be negative").
			WithHintf("subscription %s has negative price %s", sub.ID, sub.PriceBRL).
			Mark(ierr.ErrValidation)
	}
	return sub.BillingPeriod.Validate()
}
