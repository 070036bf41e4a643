package proposal

import (
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultUnitCostRatio models unit cost as half of the product's base price.
var DefaultUnitCostRatio = decimal.NewFromFloat(0.5)

// CostEstimate holds the cost and schedule of one proposal.
type CostEstimate struct {
	UnitCost     decimal.Decimal
	TotalCost    decimal.Decimal
	LeadTimeDays int
	ExpectedDate time.Time
}

// EstimateCost prices adjustedQty units of product and schedules delivery from now
// using the supplier's lead time.
func EstimateCost(product domain.Product, supplier domain.Supplier, adjustedQty int64, ratio decimal.Decimal, now time.Time) CostEstimate {
	unitCost := product.BasePrice.Mul(ratio)
	if unitCost.IsNegative() {
		unitCost = decimal.Zero
	}
	leadTime := max(supplier.LeadTimeDays, 0)

	return CostEstimate{
		UnitCost:     unitCost,
		TotalCost:    unitCost.Mul(decimal.NewFromInt(adjustedQty)),
		LeadTimeDays: leadTime,
		ExpectedDate: now.Add(time.Duration(leadTime) * 24 * time.Hour),
	}
}
