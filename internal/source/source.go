// Package source loads the inventory, product and supplier collections that proposal
// generation reads. Every source converts loosely typed external rows into domain
// records through the same default-substitution rules (see coerce.go).
package source

import (
	"context"
	"errors"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
)

// ErrNotConfigured is returned by sources that have nothing to load from.
var ErrNotConfigured = errors.New("snapshot source not configured")

// Source yields one snapshot of the external collections.
type Source interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}

// Static serves a fixed snapshot.
type Static struct {
	snapshot *domain.Snapshot
}

// NewStatic wraps snap. A nil snapshot loads as an empty one.
func NewStatic(snap *domain.Snapshot) *Static {
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	return &Static{snapshot: snap}
}

func (s *Static) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	copied := domain.Snapshot{
		Inventory: append([]domain.InventoryRecord(nil), s.snapshot.Inventory...),
		Products:  append([]domain.Product(nil), s.snapshot.Products...),
		Suppliers: append([]domain.Supplier(nil), s.snapshot.Suppliers...),
	}
	return &copied, nil
}

// Unconfigured always fails with ErrNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Load(context.Context) (*domain.Snapshot, error) {
	return nil, ErrNotConfigured
}

// RawSnapshot is a snapshot as posted by a client, before default substitution.
type RawSnapshot struct {
	Inventory []Record `json:"inventory"`
	Products  []Record `json:"products"`
	Suppliers []Record `json:"suppliers"`
}

// Snapshot converts the raw rows into typed domain records.
func (r RawSnapshot) Snapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Inventory: ToInventory(r.Inventory),
		Products:  ToProducts(r.Products),
		Suppliers: ToSuppliers(r.Suppliers),
	}
}
