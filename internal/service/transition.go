package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/api/dto"
	"github.com/subcycle/subcycle/internal/domain/prorata"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/types"
)

// BillingTransitionService converts a subscription between billing cadences,
// issuing a prorated credit for the unused remainder of the current cycle.
type BillingTransitionService interface {
	// TransitionBillingPeriod performs the full transition: validate,
	// compute credit, update the provider, persist, invalidate cache.
	TransitionBillingPeriod(ctx context.Context, req *dto.TransitionRequest) (*dto.TransitionResponse, error)

	// PreviewTransition computes the outcome without calling the provider
	// or writing any state
	PreviewTransition(ctx context.Context, req *dto.TransitionRequest) (*dto.TransitionResponse, error)
}

type billingTransitionService struct {
	ServiceParams
}

// NewBillingTransitionService creates the transition orchestrator
func NewBillingTransitionService(params ServiceParams) BillingTransitionService {
	return &billingTransitionService{ServiceParams: params}
}

func (s *billingTransitionService) TransitionBillingPeriod(ctx context.Context, req *dto.TransitionRequest) (*dto.TransitionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.TransitionResponse

	// The transaction holds the row lock across steps 1-7 so two
	// concurrent requests for the same user cannot both read the
	// pre-transition state and double-issue the credit.
	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub, err := s.SubRepo.GetActiveSubscriptionForUpdate(ctx, req.UserID)
		if err != nil {
			return err
		}

		result, newPrice, err := s.validateAndCompute(ctx, sub, req)
		if err != nil {
			return err
		}

		if result.Deferred {
			s.Logger.Infow("billing period transition deferred",
				"user_id", req.UserID,
				"days_until_renewal", result.DaysUntilRenewal,
				"renews_at", sub.RenewsAt,
			)
			resp = buildResponse(sub, req.BillingPeriod, result, false)
			return nil
		}

		if err := s.applyAtProvider(ctx, sub, req.BillingPeriod, newPrice, result.Credit); err != nil {
			return err
		}

		if err := s.SubRepo.UpdateBillingPeriod(ctx, req.UserID, req.BillingPeriod, newPrice, sub.BillingPeriod); err != nil {
			// The provider has already applied the change; surface a
			// distinct kind so reconciliation can replay the local
			// write without re-issuing the provider calls.
			return ierr.WithError(err).
				WithHint("provider updated but local persistence failed").
				WithReportableDetails(map[string]any{
					"price_changed":  true,
					"credit_applied": true,
				}).
				Mark(ierr.ErrPersistence)
		}

		s.Logger.Infow("billing period transition applied",
			"user_id", req.UserID,
			"from", sub.BillingPeriod,
			"to", req.BillingPeriod,
			"credit", result.Credit,
		)
		resp = buildResponse(sub, req.BillingPeriod, result, true)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.Applied {
		// Best-effort: a stale feature entry expires on its own
		if err := s.FeatureInvalidator.Invalidate(ctx, req.UserID); err != nil {
			s.Logger.Warnw("feature cache invalidation failed",
				"user_id", req.UserID,
				"error", err,
			)
		}
	}

	return resp, nil
}

func (s *billingTransitionService) PreviewTransition(ctx context.Context, req *dto.TransitionRequest) (*dto.TransitionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubRepo.GetActiveSubscription(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	result, _, err := s.validateAndCompute(ctx, sub, req)
	if err != nil {
		return nil, err
	}

	return buildResponse(sub, req.BillingPeriod, result, false), nil
}

// validateAndCompute runs the pure precondition checks and the credit
// calculation. No external call is made before these pass.
func (s *billingTransitionService) validateAndCompute(ctx context.Context, sub *subscription.Subscription, req *dto.TransitionRequest) (*prorata.Result, decimal.Decimal, error) {
	if err := prorata.ValidateTransition(sub.BillingPeriod, req.BillingPeriod); err != nil {
		return nil, decimal.Zero, err
	}

	if !sub.HasProviderHandle() {
		return nil, decimal.Zero, ierr.NewError("subscription has no payment provider handle").
			WithHintf("subscription %s cannot be updated at the provider", sub.ID).
			Mark(ierr.ErrMissingProviderHandle)
	}

	monthlyPrice, err := s.PlanRepo.GetMonthlyPrice(ctx, sub.PlanID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	newPrice := monthlyPrice
	if req.BillingPeriod == types.BILLING_PERIOD_ANNUAL {
		newPrice = prorata.AnnualPrice(monthlyPrice)
	}

	result, err := s.ProrataCalculator.ComputeCredit(sub, time.Now().UTC(), req.Timezone)
	if err != nil {
		return nil, decimal.Zero, err
	}

	return result, newPrice, nil
}

// applyAtProvider issues the interval change and the credit adjustment as
// two calls. A failure between them is reported with reportable details so
// partial success stays distinguishable from "nothing happened".
func (s *billingTransitionService) applyAtProvider(ctx context.Context, sub *subscription.Subscription, newPeriod types.BillingPeriod, newPrice, credit decimal.Decimal) error {
	if err := s.ProviderClient.UpdateSubscriptionPrice(ctx, sub.ProviderSubscriptionID, newPeriod, newPrice); err != nil {
		return ierr.WithError(err).
			WithHint("payment provider rejected the billing period change").
			WithReportableDetails(map[string]any{
				"price_changed":  false,
				"credit_applied": false,
			}).
			Mark(ierr.ErrPaymentProvider)
	}

	if credit.GreaterThan(decimal.Zero) {
		if err := s.ProviderClient.ApplyAccountCredit(ctx, sub.ProviderSubscriptionID, credit, sub.RenewsAt); err != nil {
			return ierr.WithError(err).
				WithHint("billing period changed but the credit was not applied").
				WithReportableDetails(map[string]any{
					"price_changed":  true,
					"credit_applied": false,
				}).
				Mark(ierr.ErrPaymentProvider)
		}
	}

	return nil
}

func buildResponse(sub *subscription.Subscription, requested types.BillingPeriod, result *prorata.Result, applied bool) *dto.TransitionResponse {
	period := sub.BillingPeriod
	if applied {
		period = requested
	}
	return &dto.TransitionResponse{
		Applied:          applied,
		Deferred:         result.Deferred,
		Reason:           result.Reason,
		Credit:           result.Credit,
		DaysUntilRenewal: result.DaysUntilRenewal,
		BillingPeriod:    period,
		NextRenewalDate:  sub.RenewsAt,
	}
}
