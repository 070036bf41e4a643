package proposal

import "github.com/andresuchdata/autopo-proposals/internal/domain"

const (
	placeholderSupplierName     = "No Supplier"
	placeholderSupplierLeadTime = 30
)

// PlaceholderSupplier is used when the supplier pool is empty.
func PlaceholderSupplier() domain.Supplier {
	return domain.Supplier{ID: 0, Name: placeholderSupplierName, LeadTimeDays: placeholderSupplierLeadTime}
}

// SelectSupplier picks the first active supplier, then the first supplier, then the
// placeholder. The second result is false only when the placeholder was used.
func SelectSupplier(suppliers []domain.Supplier) (domain.Supplier, bool) {
	for _, s := range suppliers {
		if s.IsActive {
			return s, true
		}
	}
	if len(suppliers) > 0 {
		return suppliers[0], true
	}
	return PlaceholderSupplier(), false
}

// SupplierPool indexes the suppliers of one generation run.
type SupplierPool struct {
	byID        map[int64]domain.Supplier
	fallback    domain.Supplier
	hasFallback bool
}

// NewSupplierPool builds a pool; the global fallback is resolved once.
func NewSupplierPool(suppliers []domain.Supplier) *SupplierPool {
	pool := &SupplierPool{byID: make(map[int64]domain.Supplier, len(suppliers))}
	for _, s := range suppliers {
		if _, dup := pool.byID[s.ID]; !dup {
			pool.byID[s.ID] = s
		}
	}
	pool.fallback, pool.hasFallback = SelectSupplier(suppliers)
	return pool
}

// Lookup returns the supplier with the given id.
func (p *SupplierPool) Lookup(id int64) (domain.Supplier, bool) {
	s, ok := p.byID[id]
	return s, ok
}

// Fallback returns the pool-wide supplier and whether it is a real one.
func (p *SupplierPool) Fallback() (domain.Supplier, bool) {
	return p.fallback, p.hasFallback
}

// SupplierSelector assigns a supplier to a product. The reference result is non-nil
// when a default had to be substituted.
type SupplierSelector interface {
	Select(product domain.Product, pool *SupplierPool) (domain.Supplier, *domain.MissingReference)
}

// GlobalPoolSelector gives every product the same pool-wide supplier.
type GlobalPoolSelector struct{}

func (GlobalPoolSelector) Select(_ domain.Product, pool *SupplierPool) (domain.Supplier, *domain.MissingReference) {
	s, ok := pool.Fallback()
	if !ok {
		return s, &domain.MissingReference{Kind: domain.ReferenceSupplier, Substitute: s.Name}
	}
	return s, nil
}

// PreferredSupplierSelector routes a product to its preferred supplier and falls back
// to the global pool rule when the product has none.
type PreferredSupplierSelector struct{}

func (PreferredSupplierSelector) Select(product domain.Product, pool *SupplierPool) (domain.Supplier, *domain.MissingReference) {
	if product.PreferredSupplierID == 0 {
		return GlobalPoolSelector{}.Select(product, pool)
	}
	if s, ok := pool.Lookup(product.PreferredSupplierID); ok {
		return s, nil
	}

	s, _ := pool.Fallback()
	return s, &domain.MissingReference{
		Kind:       domain.ReferenceSupplier,
		RefID:      product.PreferredSupplierID,
		Substitute: s.Name,
	}
}

// NewSupplierSelector maps a routing mode name to a selector. Unknown modes use the
// global pool.
func NewSupplierSelector(mode string) SupplierSelector {
	if mode == "preferred" {
		return PreferredSupplierSelector{}
	}
	return GlobalPoolSelector{}
}
