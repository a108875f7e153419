package postgres

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"github.com/subcycle/subcycle/internal/domain/plan"
	ierr "github.com/subcycle/subcycle/internal/errors"
	"github.com/subcycle/subcycle/internal/logger"
	"github.com/subcycle/subcycle/internal/postgres"
)

type planRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewPlanRepository creates a plan pricing repository backed by postgres
func NewPlanRepository(db postgres.IClient, logger *logger.Logger) plan.Repository {
	return &planRepository{db: db, logger: logger}
}

func (r *planRepository) GetMonthlyPrice(ctx context.Context, planID string) (decimal.Decimal, error) {
	var price decimal.Decimal
	q := r.db.GetQuerier(ctx)
	err := q.GetContext(ctx, &price, `
		SELECT monthly_price_brl FROM plan_pricing WHERE plan_id = $1`, planID)
	if err != nil {
		if err == sql.ErrNoRows {
			return decimal.Zero, ierr.NewError("plan not found").
				WithHintf("no pricing found for plan %s", planID).
				Mark(ierr.ErrNotFound)
		}
		return decimal.Zero, ierr.WithError(err).
			WithHint("failed to fetch plan pricing").
			Mark(ierr.ErrDatabase)
	}
	return price, nil
}
