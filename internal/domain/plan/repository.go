package plan

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository provides lookup access to plan pricing reference data
type Repository interface {
	// GetMonthlyPrice returns the monthly base price for the plan,
	// or ErrNotFound when the plan is unknown.
	GetMonthlyPrice(ctx context.Context, planID string) (decimal.Decimal, error)
}
