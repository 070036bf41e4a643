// Package proposal turns an inventory snapshot into purchase-order proposals and
// aggregates the impact of a selection of them. Everything here is pure: no I/O, no
// state kept between calls.
package proposal

import (
	"fmt"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	unknownProductName = "Unknown Product"
	unknownProductSKU  = "N/A"
)

// Options configures the business rules of an Engine.
type Options struct {
	MOQ           MOQPolicy
	UnitCostRatio decimal.Decimal
	Selector      SupplierSelector
}

// DefaultOptions returns the standard rules: MOQ 50 in steps of 10, unit cost at 50%
// of base price, one global supplier for every item.
func DefaultOptions() Options {
	return Options{
		MOQ:           DefaultMOQPolicy(),
		UnitCostRatio: DefaultUnitCostRatio,
		Selector:      GlobalPoolSelector{},
	}
}

// Engine runs the detect, plan, select, estimate and assemble steps.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine. Zero-valued options fall back to the defaults.
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.MOQ.MinQty <= 0 {
		opts.MOQ.MinQty = def.MOQ.MinQty
	}
	if opts.MOQ.Step <= 0 {
		opts.MOQ.Step = def.MOQ.Step
	}
	if opts.UnitCostRatio.IsZero() || opts.UnitCostRatio.IsNegative() {
		opts.UnitCostRatio = def.UnitCostRatio
	}
	if opts.Selector == nil {
		opts.Selector = def.Selector
	}
	return &Engine{opts: opts}
}

// Generate builds a fresh batch of DRAFT proposals from the snapshot. Missing product
// or supplier references are substituted with defaults and reported in the batch
// warnings; they never abort the batch.
func (e *Engine) Generate(snap domain.Snapshot, now time.Time) *domain.Batch {
	batch := &domain.Batch{
		ID:             uuid.NewString(),
		GeneratedAt:    now,
		InventoryCount: len(snap.Inventory),
		Proposals:      []domain.Proposal{},
		Warnings:       []domain.MissingReference{},
	}

	products := make(map[int64]domain.Product, len(snap.Products))
	for _, p := range snap.Products {
		if _, dup := products[p.ID]; !dup {
			products[p.ID] = p
		}
	}
	pool := NewSupplierPool(snap.Suppliers)
	ids := make(map[string]struct{})

	for _, rec := range DetectReorders(snap.Inventory) {
		product, ok := products[rec.ProductID]
		if !ok {
			product = domain.Product{ID: rec.ProductID, Name: unknownProductName, SKU: unknownProductSKU, BasePrice: decimal.Zero}
			batch.Warnings = append(batch.Warnings, domain.MissingReference{
				InventoryID: rec.ID,
				Kind:        domain.ReferenceProduct,
				RefID:       rec.ProductID,
				Substitute:  unknownProductName,
			})
		}

		supplier, missing := e.opts.Selector.Select(product, pool)
		if missing != nil {
			missing.InventoryID = rec.ID
			batch.Warnings = append(batch.Warnings, *missing)
		}

		p := e.assemble(rec, product, supplier, now)
		p.ID = uniqueID(ids, fmt.Sprintf("PO-%d-%d", rec.ID, now.UnixMilli()))
		p.BatchID = batch.ID
		batch.Proposals = append(batch.Proposals, p)
	}

	batch.FlaggedCount = len(batch.Proposals)
	return batch
}

func (e *Engine) assemble(rec domain.InventoryRecord, product domain.Product, supplier domain.Supplier, now time.Time) domain.Proposal {
	plan := e.opts.MOQ.Plan(rec)
	est := EstimateCost(product, supplier, plan.AdjustedQty, e.opts.UnitCostRatio, now)

	return domain.Proposal{
		InventoryID:  rec.ID,
		ProductID:    rec.ProductID,
		WarehouseID:  rec.WarehouseID,
		ProductName:  product.Name,
		SKU:          product.SKU,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		CurrentQty:   rec.Quantity,
		ReorderPoint: rec.ReorderPoint,
		SafetyStock:  rec.SafetyStock,
		SuggestedQty: plan.SuggestedQty,
		MOQQty:       plan.MOQQty,
		AdjustedQty:  plan.AdjustedQty,
		UnitCost:     est.UnitCost,
		TotalCost:    est.TotalCost,
		CashImpact:   est.TotalCost,
		LeadTimeDays: est.LeadTimeDays,
		ExpectedDate: est.ExpectedDate,
		StockAfterPO: rec.Quantity + plan.AdjustedQty,
		Status:       domain.StatusDraft,
		GeneratedAt:  now,
		UpdatedAt:    now,
	}
}

// uniqueID returns base, or base with a numeric suffix if base was already taken.
func uniqueID(seen map[string]struct{}, base string) string {
	id := base
	for n := 2; ; n++ {
		if _, taken := seen[id]; !taken {
			break
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
	seen[id] = struct{}{}
	return id
}

// GenerateProposals runs the default engine and returns only the proposals.
func GenerateProposals(inventory []domain.InventoryRecord, products []domain.Product, suppliers []domain.Supplier, now time.Time) []domain.Proposal {
	snap := domain.Snapshot{Inventory: inventory, Products: products, Suppliers: suppliers}
	return NewEngine(DefaultOptions()).Generate(snap, now).Proposals
}
