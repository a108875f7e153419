package testutil

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/domain/plan"
	ierr "github.com/subcycle/subcycle/internal/errors"
)

var _ plan.Repository = (*InMemoryPlanStore)(nil)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewInMemoryPlanStore creates a new in-memory plan pricing store
func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		prices: make(map[string]decimal.Decimal),
	}
}

// SetMonthlyPrice seeds the price for a plan
func (s *InMemoryPlanStore) SetMonthlyPrice(planID string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[planID] = price
}

func (s *InMemoryPlanStore) GetMonthlyPrice(ctx context.Context, planID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	price, exists := s.prices[planID]
	if !exists {
		return decimal.Zero, ierr.NewErrorf("plan %s not found", planID).
			Mark(ierr.ErrNotFound)
	}
	return price, nil
}

// Clear removes all prices
func (s *InMemoryPlanStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = make(map[string]decimal.Decimal)
}
