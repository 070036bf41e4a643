package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/shopspring/decimal"
)

func seedBatch() *domain.Batch {
	return &domain.Batch{
		ID:          "batch-1",
		GeneratedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Proposals: []domain.Proposal{
			{ID: "PO-1", ProductName: "Shampoo", SKU: "SH-1", WarehouseID: 1, TotalCost: decimal.NewFromInt(300), Status: domain.StatusDraft},
			{ID: "PO-2", ProductName: "Soap", SKU: "SP-2", WarehouseID: 2, TotalCost: decimal.NewFromInt(100), Status: domain.StatusReview},
			{ID: "PO-3", ProductName: "Toothpaste", SKU: "TP-3", WarehouseID: 1, TotalCost: decimal.NewFromInt(200), Status: domain.StatusDraft},
		},
	}
}

func TestMemoryRepository_EmptyBatch(t *testing.T) {
	repo := NewMemoryRepository()
	if _, err := repo.GetCurrentBatch(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	items, total, err := repo.ListProposals(context.Background(), domain.ProposalFilter{})
	if err != nil || total != 0 || items == nil {
		t.Fatalf("expected empty non-nil page, got %v %d %v", items, total, err)
	}
}

func TestMemoryRepository_ReplaceBatchDiscardsPrevious(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	if err := repo.ReplaceBatch(ctx, seedBatch()); err != nil {
		t.Fatal(err)
	}
	next := &domain.Batch{ID: "batch-2", Proposals: []domain.Proposal{{ID: "PO-9", Status: domain.StatusDraft}}}
	if err := repo.ReplaceBatch(ctx, next); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.GetProposal(ctx, "PO-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected previous proposals to be discarded, got %v", err)
	}
	batch, err := repo.GetCurrentBatch(ctx)
	if err != nil || batch.ID != "batch-2" || len(batch.Proposals) != 1 {
		t.Fatalf("unexpected current batch %+v, %v", batch, err)
	}
}

func TestMemoryRepository_ListProposals(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_ = repo.ReplaceBatch(ctx, seedBatch())

	cases := []struct {
		name    string
		filter  domain.ProposalFilter
		wantIDs []string
		total   int
	}{
		{"default sort by id", domain.ProposalFilter{}, []string{"PO-1", "PO-2", "PO-3"}, 3},
		{"status", domain.ProposalFilter{Status: domain.StatusDraft}, []string{"PO-1", "PO-3"}, 2},
		{"warehouse", domain.ProposalFilter{WarehouseID: 2}, []string{"PO-2"}, 1},
		{"search sku", domain.ProposalFilter{Search: "tp-"}, []string{"PO-3"}, 1},
		{"search name", domain.ProposalFilter{Search: "SHAM"}, []string{"PO-1"}, 1},
		{"sort cost desc", domain.ProposalFilter{SortField: "total_cost", SortDirection: "DESC"}, []string{"PO-1", "PO-3", "PO-2"}, 3},
		{"unknown sort falls back", domain.ProposalFilter{SortField: "drop table"}, []string{"PO-1", "PO-2", "PO-3"}, 3},
		{"second page", domain.ProposalFilter{Page: 2, PageSize: 2}, []string{"PO-3"}, 3},
		{"page past end", domain.ProposalFilter{Page: 5, PageSize: 2}, []string{}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := repo.ListProposals(ctx, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if total != tc.total {
				t.Fatalf("total = %d, want %d", total, tc.total)
			}
			if len(items) != len(tc.wantIDs) {
				t.Fatalf("got %d items, want %d", len(items), len(tc.wantIDs))
			}
			for i, id := range tc.wantIDs {
				if items[i].ID != id {
					t.Fatalf("item %d = %s, want %s", i, items[i].ID, id)
				}
			}
		})
	}
}

func TestMemoryRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_ = repo.ReplaceBatch(ctx, seedBatch())
	at := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	updated, err := repo.UpdateStatus(ctx, "PO-1", domain.StatusDraft, domain.StatusReview, at)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != domain.StatusReview || !updated.UpdatedAt.Equal(at) {
		t.Fatalf("unexpected updated proposal %+v", updated)
	}

	if _, err := repo.UpdateStatus(ctx, "PO-1", domain.StatusDraft, domain.StatusReview, at); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("expected ErrStatusConflict, got %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, "missing", domain.StatusDraft, domain.StatusReview, at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	stored, _ := repo.GetProposal(ctx, "PO-1")
	if stored.Status != domain.StatusReview {
		t.Fatalf("expected stored status REVIEW, got %s", stored.Status)
	}
}

func TestMemoryRepository_GetProposalsByIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_ = repo.ReplaceBatch(ctx, seedBatch())

	got, err := repo.GetProposalsByIDs(ctx, []string{"PO-3", "nope", "PO-1", "PO-3", " "})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "PO-3" || got[1].ID != "PO-1" {
		t.Fatalf("unexpected proposals %+v", got)
	}
}

func TestMemoryRepository_BatchIsolation(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	batch := seedBatch()
	_ = repo.ReplaceBatch(ctx, batch)

	batch.Proposals[0].Status = domain.StatusSent
	stored, _ := repo.GetProposal(ctx, "PO-1")
	if stored.Status != domain.StatusDraft {
		t.Fatalf("repository must not share proposal storage with callers")
	}
}

func TestNormalizeFilter(t *testing.T) {
	f := NormalizeFilter(domain.ProposalFilter{Page: -1, PageSize: 1000, SortField: " SKU ", SortDirection: "sideways"})
	if f.Page != 1 || f.PageSize != MaxPageSize || f.SortField != "sku" || f.SortDirection != "asc" {
		t.Fatalf("unexpected normalized filter %+v", f)
	}
	if TotalPages(0, 50) != 1 || TotalPages(101, 50) != 3 {
		t.Fatalf("unexpected total pages")
	}
}
