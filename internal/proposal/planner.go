package proposal

import "github.com/andresuchdata/autopo-proposals/internal/domain"

const (
	defaultMOQMin  = 50
	defaultMOQStep = 10
	// target stock after replenishment is reorder point + safetyStockBuffer × safety stock
	safetyStockBuffer = 2
)

// MOQPolicy simulates a supplier minimum order quantity: the suggested quantity is
// rounded up to a multiple of Step and never goes below MinQty.
type MOQPolicy struct {
	MinQty int64
	Step   int64
}

// DefaultMOQPolicy rounds up to the nearest 10 with a floor of 50.
func DefaultMOQPolicy() MOQPolicy {
	return MOQPolicy{MinQty: defaultMOQMin, Step: defaultMOQStep}
}

// QuantityPlan holds the replenishment quantities for one inventory record.
type QuantityPlan struct {
	SuggestedQty int64
	MOQQty       int64
	AdjustedQty  int64
}

// Plan computes the suggested, MOQ and adjusted quantities for r.
func (p MOQPolicy) Plan(r domain.InventoryRecord) QuantityPlan {
	suggested := max((r.ReorderPoint+r.SafetyStock*safetyStockBuffer)-r.Quantity, r.SafetyStock)
	moq := max(p.MinQty, roundUp(suggested, p.Step))

	return QuantityPlan{
		SuggestedQty: suggested,
		MOQQty:       moq,
		AdjustedQty:  max(suggested, moq),
	}
}

// roundUp rounds v up to the next multiple of step. Non-positive values round to 0.
func roundUp(v, step int64) int64 {
	if step <= 1 {
		return max(v, 0)
	}
	if v <= 0 {
		return 0
	}
	return (v + step - 1) / step * step
}
