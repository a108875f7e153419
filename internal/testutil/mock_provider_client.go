package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/provider"
	"github.com/subcycle/subcycle/internal/types"
)

var _ provider.Client = (*MockProviderClient)(nil)

// PriceChangeCall records one UpdateSubscriptionPrice invocation
type PriceChangeCall struct {
	ProviderSubscriptionID string
	Period                 types.BillingPeriod
	Price                  decimal.Decimal
}

// CreditCall records one ApplyAccountCredit invocation
type CreditCall struct {
	ProviderSubscriptionID string
	Amount                 decimal.Decimal
	RenewsAt               time.Time
}

// MockProviderClient is a provider.Client that records calls and can be
// primed to fail either operation.
type MockProviderClient struct {
	mu sync.Mutex

	PriceChangeCalls []PriceChangeCall
	CreditCalls      []CreditCall

	// PriceChangeErr and CreditErr, when set, are returned by the
	// corresponding operation after the call is recorded.
	PriceChangeErr error
	CreditErr      error
}

// NewMockProviderClient creates a recording provider client
func NewMockProviderClient() *MockProviderClient {
	return &MockProviderClient{}
}

func (m *MockProviderClient) UpdateSubscriptionPrice(ctx context.Context, providerSubscriptionID string, period types.BillingPeriod, price decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PriceChangeCalls = append(m.PriceChangeCalls, PriceChangeCall{
		ProviderSubscriptionID: providerSubscriptionID,
		Period:                 period,
		Price:                  price,
	})
	return m.PriceChangeErr
}

func (m *MockProviderClient) ApplyAccountCredit(ctx context.Context, providerSubscriptionID string, amount decimal.Decimal, renewsAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreditCalls = append(m.CreditCalls, CreditCall{
		ProviderSubscriptionID: providerSubscriptionID,
		Amount:                 amount,
		RenewsAt:               renewsAt,
	})
	return m.CreditErr
}

// Reset clears recorded calls and primed errors
func (m *MockProviderClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PriceChangeCalls = nil
	m.CreditCalls = nil
	m.PriceChangeErr = nil
	m.CreditErr = nil
}
