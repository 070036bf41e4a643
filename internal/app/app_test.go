package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/config"
	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/andresuchdata/autopo-proposals/internal/source"
	"github.com/andresuchdata/autopo-proposals/internal/storage"
	"github.com/shopspring/decimal"
)

func TestNewSource(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ctx, config.SourceConfig{Kind: config.SourceNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Load(ctx); !errors.Is(err, source.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}

	if src, err := NewSource(ctx, config.SourceConfig{Kind: config.SourceFile, FileDir: t.TempDir()}); err != nil {
		t.Fatal(err)
	} else if _, ok := src.(*source.FileSource); !ok {
		t.Fatalf("expected a file source, got %T", src)
	}

	if src, err := NewSource(ctx, config.SourceConfig{Kind: config.SourceREST, RESTBaseURL: "http://localhost:9"}); err != nil {
		t.Fatal(err)
	} else if _, ok := src.(*source.RESTSource); !ok {
		t.Fatalf("expected a rest source, got %T", src)
	}

	for _, cfg := range []config.SourceConfig{
		{Kind: config.SourceREST},
		{Kind: config.SourceFile},
		{Kind: config.SourceDrive, DriveCredentialsJSON: "not json"},
		{Kind: "ftp"},
	} {
		if _, err := NewSource(ctx, cfg); err == nil {
			t.Fatalf("expected an error for %+v", cfg)
		}
	}
}

func TestNewStorage_Disabled(t *testing.T) {
	store, err := NewStorage(config.StorageConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(storage.Disabled); !ok {
		t.Fatalf("expected disabled storage, got %T", store)
	}

	if _, err := NewStorage(config.StorageConfig{Enabled: true}); err == nil {
		t.Fatalf("expected an error without an endpoint")
	}
}

func TestNew_InMemory(t *testing.T) {
	cfg := &config.Config{
		Source:   config.SourceConfig{Kind: config.SourceNone},
		Proposal: config.ProposalConfig{MOQMinQty: 20, MOQStep: 5, UnitCostRatio: 0.4},
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	snap := &domain.Snapshot{
		Inventory: []domain.InventoryRecord{{ID: 1, ProductID: 1, WarehouseID: 1, Quantity: 0, ReorderPoint: 3}},
		Products:  []domain.Product{{ID: 1, Name: "Soap", SKU: "SP", BasePrice: decimal.NewFromInt(10)}},
		Suppliers: []domain.Supplier{{ID: 1, Name: "Acme", IsActive: true, LeadTimeDays: 5}},
	}
	batch, err := a.ProposalService.GenerateFromSnapshot(context.Background(), snap)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Proposals) != 1 {
		t.Fatalf("expected one proposal, got %d", len(batch.Proposals))
	}

	p := batch.Proposals[0]
	// suggested = max(3 + 2*0 - 0, 0) = 3; MOQ floor 20
	if p.AdjustedQty != 20 {
		t.Fatalf("expected MOQ floor of 20, got %d", p.AdjustedQty)
	}
	if !p.UnitCost.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected unit cost 4, got %s", p.UnitCost)
	}
	if want := batch.GeneratedAt.Add(5 * 24 * time.Hour); !p.ExpectedDate.Equal(want) {
		t.Fatalf("expected date %s, got %s", want, p.ExpectedDate)
	}
}
