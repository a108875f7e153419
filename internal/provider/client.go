package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/config"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/httpclient"
	"github.com/subcycle/subcycle/internal/idempotency"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/types"
)

// Client is the surface of the remote payment provider used by the
// transition flow. The provider is treated as an opaque service: both calls
// carry idempotency keys so the transport may retry safely, and a timeout
// from the provider is surfaced as ErrPaymentProvider because the outcome
// is ambiguous.
type Client interface {
	// UpdateSubscriptionPrice changes the billing interval and price of the
	// remote subscription object
	UpdateSubscriptionPrice(ctx context.Context, providerSubscriptionID string, period types.BillingPeriod, price decimal.Decimal) error

	// ApplyAccountCredit adds a balance adjustment to the provider account
	// tied to the subscription. RenewsAt scopes the idempotency key to the
	// current cycle.
	ApplyAccountCredit(ctx context.Context, providerSubscriptionID string, amount decimal.Decimal, renewsAt time.Time) error
}

type apiClient struct {
	cfg       config.ProviderConfig
	http      httpclient.Client
	generator *idempotency.Generator
	logger    *logger.Logger
}

// NewClient creates a payment provider API client
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, logger *logger.Logger) Client {
	return &apiClient{
		cfg:       cfg.Provider,
		http:      httpClient,
		generator: idempotency.NewGenerator(),
		logger:    logger,
	}
}

type updatePriceRequest struct {
	BillingPeriod string `json:"billing_period"`
	Price         string `json:"price"`
}

type applyCreditRequest struct {
	Amount string `json:"amount"`
}

func (c *apiClient) UpdateSubscriptionPrice(ctx context.Context, providerSubscriptionID string, period types.BillingPeriod, price decimal.Decimal) error {
	key := c.generator.GenerateKey(idempotency.ScopePriceChange, map[string]interface{}{
		"subscription_id": providerSubscriptionID,
		"billing_period":  period.String(),
	})

	body, err := json.Marshal(updatePriceRequest{
		BillingPeriod: period.String(),
		Price:         price.StringFixed(2),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to encode provider request").
			Mark(ierr.ErrSystem)
	}

	return c.send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/v1/subscriptions/%s/price", c.cfg.BaseURL, providerSubscriptionID),
		Headers: c.headers(key),
		Body:    body,
	})
}

func (c *apiClient) ApplyAccountCredit(ctx context.Context, providerSubscriptionID string, amount decimal.Decimal, renewsAt time.Time) error {
	key := c.generator.GenerateKey(idempotency.ScopeAccountCredit, map[string]interface{}{
		"subscription_id": providerSubscriptionID,
		"amount":          amount.StringFixed(2),
		"cycle_end":       renewsAt.UTC().Format(time.RFC3339),
	})

	body, err := json.Marshal(applyCreditRequest{
		Amount: amount.StringFixed(2),
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("failed to encode provider request").
			Mark(ierr.ErrSystem)
	}

	return c.send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     fmt.Sprintf("%s/v1/subscriptions/%s/credits", c.cfg.BaseURL, providerSubscriptionID),
		Headers: c.headers(key),
		Body:    body,
	})
}

func (c *apiClient) headers(idempotencyKey string) map[string]string {
	return map[string]string{
		"Authorization":   "Bearer " + c.cfg.APIKey,
		"Idempotency-Key": idempotencyKey,
	}
}

func (c *apiClient) send(ctx context.Context, req *httpclient.Request) error {
	timeout := c.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := c.http.Send(ctx, req)
	if err != nil {
		if httpErr, ok := httpclient.IsHTTPError(err); ok {
			return ierr.WithError(err).
				WithHintf("provider responded with status %d", httpErr.StatusCode).
				WithReportableDetails(map[string]any{
					"status_code": httpErr.StatusCode,
				}).
				Mark(ierr.ErrPaymentProvider)
		}
		// Timeouts and transport failures: the provider may or may not
		// have applied the change.
		return ierr.WithError(err).
			WithHint("provider request did not complete").
			Mark(ierr.ErrPaymentProvider)
	}
	return nil
}
