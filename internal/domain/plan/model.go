package plan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Pricing is a reference-data row mapping a plan to its monthly base price.
// Annual pricing is derived from the monthly price via the discount
// multiplier in the prorata package, never stored.
type Pricing struct {
	PlanID          string          `db:"plan_id" json:"plan_id"`
	MonthlyPriceBRL decimal.Decimal `db:"monthly_price_brl" json:"monthly_price_brl"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}
