package service

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/subcycle/subcycle/internal/api/dto"
	"github.com/subcycle/subcycle/internal/cache"
	"github.com/subcycle/subcycle/internal/domain/prorata"
	"github.com/subcycle/subcycle/internal/domain/subscription"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/testutil"
	"github.com/subcycle/subcycle/internal/types"
)

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WebhookService
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := ServiceParams{
		Logger:             s.GetLogger(),
		Config:             s.GetConfig(),
		DB:                 s.GetDB(),
		SubRepo:            stores.SubscriptionRepo,
		PlanRepo:           stores.PlanRepo,
		LedgerRepo:         stores.LedgerRepo,
		ProviderClient:     s.GetProvider(),
		ProrataCalculator:  prorata.NewCalculator(),
		FeatureInvalidator: cache.NewFeatureInvalidator(s.GetCache()),
	}
	s.service = NewWebhookService(params, NewSubscriptionDispatcher(params))
}

func (s *WebhookServiceSuite) seedSubscription(userID string) *subscription.Subscription {
	sub := &subscription.Subscription{
		ID:                     types.GenerateUUIDWithPrefix("sub"),
		UserID:                 userID,
		PlanID:                 "plan_pro",
		BillingPeriod:          types.BILLING_PERIOD_MONTHLY,
		IsActive:               true,
		PriceBRL:               decimal.RequireFromString("297.00"),
		ProviderSubscriptionID: "psub_1",
		RenewsAt:               s.GetNow().AddDate(0, 0, 20),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func renewalEnvelope(eventID, userID string, renewsAt time.Time) *dto.WebhookEnvelope {
	body := []byte(fmt.Sprintf(
		`{"id":%q,"type":"subscription.renewed","data":{"user_id":%q,"renews_at":%q}}`,
		eventID, userID, renewsAt.Format(time.RFC3339),
	))
	envelope, err := dto.ParseWebhookEnvelope(body)
	if err != nil {
		panic(err)
	}
	return envelope
}

func (s *WebhookServiceSuite) TestProcessRenewalEvent() {
	s.seedSubscription("user_1")
	newRenewal := s.GetNow().AddDate(0, 1, 0).Truncate(time.Second)

	resp, err := s.service.ProcessEvent(s.GetContext(), renewalEnvelope("evt_abc123", "user_1", newRenewal))
	s.NoError(err)
	s.True(resp.Processed)
	s.False(resp.Duplicate)
	s.Equal("evt_abc123", resp.EventID)

	sub, err := s.GetStores().SubscriptionRepo.GetActiveSubscription(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(sub.RenewsAt.Equal(newRenewal))

	// The event is recorded with its raw payload
	event, err := s.GetStores().LedgerRepo.Get(s.GetContext(), "evt_abc123")
	s.NoError(err)
	s.Equal(EventTypeSubscriptionRenewed, event.Type)
	s.NotEmpty(event.Payload)
}

func (s *WebhookServiceSuite) TestDuplicateDeliveryIsIgnored() {
	s.seedSubscription("user_1")
	firstRenewal := s.GetNow().AddDate(0, 1, 0).Truncate(time.Second)

	resp, err := s.service.ProcessEvent(s.GetContext(), renewalEnvelope("evt_abc123", "user_1", firstRenewal))
	s.NoError(err)
	s.False(resp.Duplicate)

	// Redelivery of the same event id carries a different renewal date;
	// the side effect must not run again
	secondRenewal := firstRenewal.AddDate(0, 1, 0)
	resp, err = s.service.ProcessEvent(s.GetContext(), renewalEnvelope("evt_abc123", "user_1", secondRenewal))
	s.NoError(err)
	s.True(resp.Processed)
	s.True(resp.Duplicate)

	sub, err := s.GetStores().SubscriptionRepo.GetActiveSubscription(s.GetContext(), "user_1")
	s.NoError(err)
	s.True(sub.RenewsAt.Equal(firstRenewal))
	s.Equal(1, s.GetStores().LedgerRepo.Count())
}

func (s *WebhookServiceSuite) TestConcurrentDeliveriesProcessOnce() {
	s.seedSubscription("user_1")
	newRenewal := s.GetNow().AddDate(0, 1, 0).Truncate(time.Second)

	const deliveries = 10
	var wg sync.WaitGroup
	responses := make([]*dto.WebhookResponse, deliveries)
	errs := make([]error, deliveries)

	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			responses[i], errs[i] = s.service.ProcessEvent(s.GetContext(), renewalEnvelope("evt_abc123", "user_1", newRenewal))
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < deliveries; i++ {
		s.NoError(errs[i])
		s.True(responses[i].Processed)
		if !responses[i].Duplicate {
			winners++
		}
	}
	s.Equal(1, winners)
	s.Equal(1, s.GetStores().LedgerRepo.Count())
}

func (s *WebhookServiceSuite) TestProcessCancellationEvent() {
	s.seedSubscription("user_1")

	envelope, err := dto.ParseWebhookEnvelope([]byte(
		`{"id":"evt_cancel1","type":"subscription.canceled","data":{"user_id":"user_1"}}`,
	))
	s.Require().NoError(err)

	resp, err := s.service.ProcessEvent(s.GetContext(), envelope)
	s.NoError(err)
	s.True(resp.Processed)

	_, err = s.GetStores().SubscriptionRepo.GetActiveSubscription(s.GetContext(), "user_1")
	s.True(ierr.IsNotFound(err))
}

func (s *WebhookServiceSuite) TestPaymentFailedEventHasNoSideEffect() {
	sub := s.seedSubscription("user_1")

	envelope, err := dto.ParseWebhookEnvelope([]byte(
		`{"id":"evt_payfail1","type":"payment.failed","data":{"user_id":"user_1"}}`,
	))
	s.Require().NoError(err)

	resp, err := s.service.ProcessEvent(s.GetContext(), envelope)
	s.NoError(err)
	s.True(resp.Processed)

	got, err := s.GetStores().SubscriptionRepo.GetActiveSubscription(s.GetContext(), "user_1")
	s.NoError(err)
	s.Equal(sub.BillingPeriod, got.BillingPeriod)
	s.True(got.IsActive)
}

func (s *WebhookServiceSuite) TestUnknownEventTypeIsRecorded() {
	envelope, err := dto.ParseWebhookEnvelope([]byte(
		`{"id":"evt_mystery1","type":"invoice.finalized","data":{}}`,
	))
	s.Require().NoError(err)

	resp, err := s.service.ProcessEvent(s.GetContext(), envelope)
	s.NoError(err)
	s.True(resp.Processed)
	s.Equal(1, s.GetStores().LedgerRepo.Count())
}

func (s *WebhookServiceSuite) TestInvalidEventIDRejected() {
	for _, id := range []string{"", "abc123", "event_123"} {
		envelope := &dto.WebhookEnvelope{ID: id, Type: EventTypeSubscriptionRenewed}
		_, err := s.service.ProcessEvent(s.GetContext(), envelope)
		s.True(ierr.IsValidation(err), "id %q should be rejected", id)
	}
	s.Equal(0, s.GetStores().LedgerRepo.Count())
}

func (s *WebhookServiceSuite) TestMalformedPayloadFailsAfterClaim() {
	envelope, err := dto.ParseWebhookEnvelope([]byte(
		`{"id":"evt_bad1","type":"subscription.renewed","data":"not-an-object"}`,
	))
	s.Require().NoError(err)

	_, err = s.service.ProcessEvent(s.GetContext(), envelope)
	s.True(ierr.IsValidation(err))

	// The claim stands even though dispatch failed; redelivery reports a
	// duplicate rather than retrying the side effect
	s.Equal(1, s.GetStores().LedgerRepo.Count())
}
