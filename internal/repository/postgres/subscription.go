package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/postgres"
	"github.com/subcycle/subcycle/internal/types"
)

type subscriptionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewSubscriptionRepository creates a subscription repository backed by postgres
func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

const subscriptionColumns = `id, user_id, plan_id, billing_period, is_active, price_brl,
	provider_subscription_id, renews_at, annual_benefits, created_at, updated_at`

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	q := r.db.GetQuerier(ctx)
	_, err := q.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		sub.ID, sub.UserID, sub.PlanID, sub.BillingPeriod, sub.IsActive, sub.PriceBRL,
		sub.ProviderSubscriptionID, sub.RenewsAt, sub.AnnualBenefits, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to create subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) GetActiveSubscription(ctx context.Context, userID string) (*subscription.Subscription, error) {
	return r.getActive(ctx, userID, false)
}

func (r *subscriptionRepository) GetActiveSubscriptionForUpdate(ctx context.Context, userID string) (*subscription.Subscription, error) {
	return r.getActive(ctx, userID, true)
}

func (r *subscriptionRepository) getActive(ctx context.Context, userID string, forUpdate bool) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1 AND is_active`
	if forUpdate {
		// Row-level lock serializes concurrent transitions for the same user
		query += ` FOR UPDATE`
	}

	var sub subscription.Subscription
	q := r.db.GetQuerier(ctx)
	if err := q.GetContext(ctx, &sub, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ierr.NewError("no active subscription found").
				WithHintf("no active subscription found for user %s", userID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("failed to fetch subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) UpdateBillingPeriod(ctx context.Context, userID string, newPeriod types.BillingPeriod, newPrice decimal.Decimal, expectedPriorPeriod types.BillingPeriod) error {
	q := r.db.GetQuerier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE subscriptions
		SET billing_period = $2, price_brl = $3, updated_at = $4
		WHERE user_id = $1 AND is_active AND billing_period = $5`,
		userID, newPeriod, newPrice, time.Now().UTC(), expectedPriorPeriod,
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update billing period").
			Mark(ierr.ErrDatabase)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to update billing period").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		// The guard on the prior period detects a lost race: another
		// transition already moved the row.
		return ierr.NewError("subscription billing period changed concurrently").
			WithHintf("subscription for user %s no longer on %s", userID, expectedPriorPeriod).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}

func (r *subscriptionRepository) AdvanceRenewal(ctx context.Context, userID string, renewsAt time.Time) error {
	q := r.db.GetQuerier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE subscriptions
		SET renews_at = $2, updated_at = $3
		WHERE user_id = $1 AND is_active`,
		userID, renewsAt, time.Now().UTC(),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to advance renewal").
			Mark(ierr.ErrDatabase)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ierr.NewError("no active subscription found").
			WithHintf("no active subscription found for user %s", userID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) Deactivate(ctx context.Context, userID string) error {
	q := r.db.GetQuerier(ctx)
	res, err := q.ExecContext(ctx, `
		UPDATE subscriptions
		SET is_active = FALSE, updated_at = $2
		WHERE user_id = $1 AND is_active`,
		userID, time.Now().UTC(),
	)
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to deactivate subscription").
			Mark(ierr.ErrDatabase)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ierr.NewError("no active subscription found").
			WithHintf("no active subscription found for user %s", userID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
