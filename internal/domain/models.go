// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord is one stock position of a product in a warehouse.
type InventoryRecord struct {
	ID           int64 `json:"id" db:"id"`
	ProductID    int64 `json:"product_id" db:"product_id"`
	WarehouseID  int64 `json:"warehouse_id" db:"warehouse_id"`
	Quantity     int64 `json:"quantity" db:"quantity"`
	ReorderPoint int64 `json:"reorder_point" db:"reorder_point"`
	SafetyStock  int64 `json:"safety_stock" db:"safety_stock"`
}

// Product represents a sellable item in the catalogue
type Product struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	SKU       string          `json:"sku" db:"sku"`
	BasePrice decimal.Decimal `json:"base_price" db:"base_price"`
	// PreferredSupplierID is 0 when the product has no preferred supplier.
	PreferredSupplierID int64 `json:"preferred_supplier_id,omitempty" db:"preferred_supplier_id"`
}

// Supplier represents a vendor that replenishment orders can be placed with
type Supplier struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	IsActive     bool   `json:"is_active" db:"is_active"`
	LeadTimeDays int    `json:"lead_time_days" db:"lead_time_days"`
}

// Snapshot is the read-only input of one generation run.
type Snapshot struct {
	Inventory []InventoryRecord `json:"inventory"`
	Products  []Product         `json:"products"`
	Suppliers []Supplier        `json:"suppliers"`
}

// Proposal is a suggested purchase order line for one flagged inventory record.
type Proposal struct {
	ID          string `json:"id" db:"id"`
	BatchID     string `json:"batch_id" db:"batch_id"`
	InventoryID int64  `json:"inventory_id" db:"inventory_id"`
	ProductID   int64  `json:"product_id" db:"product_id"`
	WarehouseID int64  `json:"warehouse_id" db:"warehouse_id"`
	ProductName string `json:"product_name" db:"product_name"`
	SKU         string `json:"sku" db:"sku"`

	SupplierID   int64  `json:"supplier_id" db:"supplier_id"`
	SupplierName string `json:"supplier_name" db:"supplier_name"`

	CurrentQty   int64 `json:"current_qty" db:"current_qty"`
	ReorderPoint int64 `json:"reorder_point" db:"reorder_point"`
	SafetyStock  int64 `json:"safety_stock" db:"safety_stock"`
	SuggestedQty int64 `json:"suggested_qty" db:"suggested_qty"`
	MOQQty       int64 `json:"moq_qty" db:"moq_qty"`
	AdjustedQty  int64 `json:"adjusted_qty" db:"adjusted_qty"`

	UnitCost   decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	TotalCost  decimal.Decimal `json:"total_cost" db:"total_cost"`
	CashImpact decimal.Decimal `json:"cash_impact" db:"cash_impact"`

	LeadTimeDays int       `json:"lead_time_days" db:"lead_time_days"`
	ExpectedDate time.Time `json:"expected_date" db:"expected_date"`
	StockAfterPO int64     `json:"stock_after_po" db:"stock_after_po"`

	Status      ProposalStatus `json:"status" db:"status"`
	GeneratedAt time.Time      `json:"generated_at" db:"generated_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// ImpactSummary aggregates the effect of a set of selected proposals.
type ImpactSummary struct {
	TotalCashImpact    decimal.Decimal `json:"total_cash_impact"`
	TotalLeadTimeDays  int             `json:"total_lead_time_days"` // max, not sum
	TotalStockIncrease int64           `json:"total_stock_increase"`
	AffectedProducts   int             `json:"affected_products"`
	Warnings           []string        `json:"warnings"`
}

const (
	ReferenceProduct  = "product"
	ReferenceSupplier = "supplier"
)

// MissingReference records a lookup that failed during generation and the default
// that was substituted for it.
type MissingReference struct {
	InventoryID int64  `json:"inventory_id"`
	Kind        string `json:"kind"`
	RefID       int64  `json:"ref_id"`
	Substitute  string `json:"substitute"`
}

// Batch is the result of one generation run. A new batch replaces the previous one.
type Batch struct {
	ID             string             `json:"id" db:"id"`
	GeneratedAt    time.Time          `json:"generated_at" db:"generated_at"`
	InventoryCount int                `json:"inventory_count" db:"inventory_count"`
	FlaggedCount   int                `json:"flagged_count" db:"flagged_count"`
	Proposals      []Proposal         `json:"proposals,omitempty" db:"-"`
	Warnings       []MissingReference `json:"warnings" db:"-"`
}

// ProposalFilter represents filters for proposal list queries
type ProposalFilter struct {
	Status        ProposalStatus `json:"status"`
	WarehouseID   int64          `json:"warehouse_id"`
	Search        string         `json:"search"`
	SortField     string         `json:"sort_field"`
	SortDirection string         `json:"sort_direction"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}

// ProposalListResponse represents the paginated response for proposals
type ProposalListResponse struct {
	Items      []Proposal `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// TransitionResult reports the outcome for one id of a bulk status change.
type TransitionResult struct {
	ID       string    `json:"id"`
	Proposal *Proposal `json:"proposal,omitempty"`
	Error    string    `json:"error,omitempty"`
}
