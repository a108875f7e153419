package prorata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/types"
)

func newSnapshot(period types.BillingPeriod, price string, renewsAt time.Time) *subscription.Subscription {
	return &subscription.Subscription{
		ID:                     "sub_test",
		UserID:                 "user_test",
		PlanID:                 "plan_pro",
		BillingPeriod:          period,
		IsActive:               true,
		PriceBRL:               decimal.RequireFromString(price),
		ProviderSubscriptionID: "psub_test",
		RenewsAt:               renewsAt,
	}
}

func TestDailyRate(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name         string
		monthlyPrice string
		period       types.BillingPeriod
		want         string
	}{
		{
			name:         "monthly price divides by 30",
			monthlyPrice: "297.00",
			period:       types.BILLING_PERIOD_MONTHLY,
			want:         "9.9",
		},
		{
			name:         "monthly rate rounds half up",
			monthlyPrice: "100.00",
			period:       types.BILLING_PERIOD_MONTHLY,
			want:         "3.33",
		},
		{
			name:         "annual rate uses discounted yearly price over 365",
			monthlyPrice: "100.00",
			period:       types.BILLING_PERIOD_ANNUAL,
			want:         "2.63",
		},
		{
			name:         "annual rate for pro plan",
			monthlyPrice: "297.00",
			period:       types.BILLING_PERIOD_ANNUAL,
			want:         "7.81",
		},
		{
			name:         "zero price yields zero rate",
			monthlyPrice: "0.00",
			period:       types.BILLING_PERIOD_MONTHLY,
			want:         "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.DailyRate(decimal.RequireFromString(tt.monthlyPrice), tt.period)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"DailyRate(%s, %s) = %s, want %s", tt.monthlyPrice, tt.period, got, tt.want)
		})
	}
}

func TestAnnualPrice(t *testing.T) {
	tests := []struct {
		monthly string
		want    string
	}{
		{"99.00", "950.40"},
		{"297.00", "2851.20"},
		{"990.00", "9504.00"},
	}

	for _, tt := range tests {
		got := AnnualPrice(decimal.RequireFromString(tt.monthly))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"AnnualPrice(%s) = %s, want %s", tt.monthly, got, tt.want)
	}
}

func TestComputeCredit(t *testing.T) {
	calc := NewCalculator()

	tests := []struct {
		name         string
		sub          *subscription.Subscription
		now          time.Time
		timezone     string
		wantCredit   string
		wantDays     int
		wantDeferred bool
		wantReason   Reason
	}{
		{
			name:         "monthly plan with 15 days remaining",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			timezone:     "UTC",
			wantCredit:   "148.50",
			wantDays:     15,
			wantDeferred: false,
			wantReason:   ReasonNone,
		},
		{
			name:         "deferred when fewer than 7 days remain",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			timezone:     "UTC",
			wantCredit:   "0.00",
			wantDays:     5,
			wantDeferred: true,
			wantReason:   ReasonDeferredNearRenewal,
		},
		{
			name:         "exactly 7 days is not deferred",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC),
			timezone:     "UTC",
			wantCredit:   "69.30",
			wantDays:     7,
			wantDeferred: false,
			wantReason:   ReasonNone,
		},
		{
			name:         "renewal in the past clamps to zero days",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			timezone:     "UTC",
			wantCredit:   "0.00",
			wantDays:     0,
			wantDeferred: true,
			wantReason:   ReasonDeferredNearRenewal,
		},
		{
			name:         "leap year february boundary",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)),
			now:          time.Date(2024, 2, 25, 10, 0, 0, 0, time.UTC),
			timezone:     "UTC",
			wantCredit:   "89.10",
			wantDays:     9,
			wantDeferred: false,
			wantReason:   ReasonNone,
		},
		{
			name:         "annual plan credit uses annual daily rate",
			sub:          newSnapshot(types.BILLING_PERIOD_ANNUAL, "297.00", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			timezone:     "UTC",
			wantCredit:   "718.52",
			wantDays:     92,
			wantDeferred: false,
			wantReason:   ReasonNone,
		},
		{
			name:         "range spanning the autumn time change",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 11, 15, 12, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 10, 25, 10, 0, 0, 0, time.UTC),
			timezone:     "America/New_York",
			wantCredit:   "207.90",
			wantDays:     21,
			wantDeferred: false,
			wantReason:   ReasonNone,
		},
		{
			name:         "range spanning the spring time change",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			timezone:     "America/New_York",
			wantCredit:   "188.10",
			wantDays:     19,
			wantDeferred: false,
			wantReason:   ReasonNone,
		},
		{
			name:         "user timezone shifts the day count",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 3, 17, 1, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
			timezone:     "America/Sao_Paulo",
			wantCredit:   "0.00",
			wantDays:     6,
			wantDeferred: true,
			wantReason:   ReasonDeferredNearRenewal,
		},
		{
			name:         "same instants in UTC cross the threshold",
			sub:          newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 3, 17, 1, 0, 0, 0, time.UTC)),
			now:          time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC),
			timezone:     "UTC",
			wantCredit:   "69.30",
			wantDays:     7,
			wantDeferred: false,
			wantReason:   ReasonNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := calc.ComputeCredit(tt.sub, tt.now, tt.timezone)
			require.NoError(t, err)
			assert.True(t, result.Credit.Equal(decimal.RequireFromString(tt.wantCredit)),
				"credit = %s, want %s", result.Credit, tt.wantCredit)
			assert.Equal(t, tt.wantDays, result.DaysUntilRenewal)
			assert.Equal(t, tt.wantDeferred, result.Deferred)
			assert.Equal(t, tt.wantReason, result.Reason)
		})
	}
}

func TestComputeCreditInvalidTimezoneFallsBackToUTC(t *testing.T) {
	calc := NewCalculator()
	sub := newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Date(2026, 3, 16, 8, 0, 0, 0, time.UTC))
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	utcResult, err := calc.ComputeCredit(sub, now, "UTC")
	require.NoError(t, err)

	badResult, err := calc.ComputeCredit(sub, now, "Not/AZone")
	require.NoError(t, err)

	assert.True(t, utcResult.Credit.Equal(badResult.Credit))
	assert.Equal(t, utcResult.DaysUntilRenewal, badResult.DaysUntilRenewal)

	emptyResult, err := calc.ComputeCredit(sub, now, "")
	require.NoError(t, err)
	assert.Equal(t, utcResult.DaysUntilRenewal, emptyResult.DaysUntilRenewal)
}

func TestComputeCreditSnapshotValidation(t *testing.T) {
	calc := NewCalculator()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("nil snapshot", func(t *testing.T) {
		_, err := calc.ComputeCredit(nil, now, "UTC")
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("missing renewal date", func(t *testing.T) {
		sub := newSnapshot(types.BILLING_PERIOD_MONTHLY, "297.00", time.Time{})
		_, err := calc.ComputeCredit(sub, now, "UTC")
		assert.True(t, ierr.IsValidation(err))
	})

	t.Run("negative price", func(t *testing.T) {
		sub := newSnapshot(types.BILLING_PERIOD_MONTHLY, "-1.00", now.AddDate(0, 0, 20))
		_, err := calc.ComputeCredit(sub, now, "UTC")
		assert.True(t, ierr.IsValidation(err))
	})
}

func TestValidateTransition(t *testing.T) {
	t.Run("monthly to annual is allowed", func(t *testing.T) {
		err := ValidateTransition(types.BILLING_PERIOD_MONTHLY, types.BILLING_PERIOD_ANNUAL)
		assert.NoError(t, err)
	})

	t.Run("same period is rejected", func(t *testing.T) {
		err := ValidateTransition(types.BILLING_PERIOD_MONTHLY, types.BILLING_PERIOD_MONTHLY)
		assert.True(t, ierr.IsAlreadyOnTarget(err))
	})

	t.Run("annual to monthly is rejected", func(t *testing.T) {
		err := ValidateTransition(types.BILLING_PERIOD_ANNUAL, types.BILLING_PERIOD_MONTHLY)
		require.Error(t, err)
		assert.True(t, ierr.IsDowngradeNotSupported(err))
		assert.Contains(t, err.Error(), "downgrade")
		assert.Contains(t, err.Error(), "not supported")
	})

	t.Run("unknown period is rejected", func(t *testing.T) {
		err := ValidateTransition(types.BILLING_PERIOD_MONTHLY, types.BillingPeriod("WEEKLY"))
		assert.True(t, ierr.IsValidation(err))
	})
}
