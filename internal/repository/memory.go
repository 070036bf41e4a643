package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
)

// MemoryRepository keeps the current batch in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	batch *domain.Batch
	index map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{index: make(map[string]int)}
}

func (r *MemoryRepository) ReplaceBatch(ctx context.Context, batch *domain.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	copied := *batch
	copied.Proposals = slices.Clone(batch.Proposals)
	copied.Warnings = slices.Clone(batch.Warnings)

	index := make(map[string]int, len(copied.Proposals))
	for i, p := range copied.Proposals {
		index[p.ID] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.batch = &copied
	r.index = index
	return nil
}

func (r *MemoryRepository) GetCurrentBatch(ctx context.Context) (*domain.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.batch == nil {
		return nil, ErrNotFound
	}
	copied := *r.batch
	copied.Proposals = slices.Clone(r.batch.Proposals)
	copied.Warnings = slices.Clone(r.batch.Warnings)
	return &copied, nil
}

func (r *MemoryRepository) CurrentBatchID(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.batch == nil {
		return "", ErrNotFound
	}
	return r.batch.ID, nil
}

func (r *MemoryRepository) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := r.batch.Proposals[i]
	return &p, nil
}

func (r *MemoryRepository) GetProposalsByIDs(ctx context.Context, ids []string) ([]domain.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Proposal, 0, len(ids))
	for _, id := range DedupIDs(ids) {
		if i, ok := r.index[id]; ok {
			out = append(out, r.batch.Proposals[i])
		}
	}
	return out, nil
}

func (r *MemoryRepository) ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	filter = NormalizeFilter(filter)

	r.mu.RLock()
	var matched []domain.Proposal
	if r.batch != nil {
		for _, p := range r.batch.Proposals {
			if matches(p, filter) {
				matched = append(matched, p)
			}
		}
	}
	r.mu.RUnlock()

	less := compareBy(filter.SortField)
	slices.SortStableFunc(matched, func(a, b domain.Proposal) int {
		c := less(a, b)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if filter.SortDirection == "desc" {
			return -c
		}
		return c
	})

	total := len(matched)
	start := min((filter.Page-1)*filter.PageSize, total)
	end := min(start+filter.PageSize, total)
	page := make([]domain.Proposal, end-start)
	copy(page, matched[start:end])
	return page, total, nil
}

func (r *MemoryRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i, ok := r.index[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := &r.batch.Proposals[i]
	if p.Status != from {
		return nil, ErrStatusConflict
	}
	p.Status = to
	p.UpdatedAt = at
	updated := *p
	return &updated, nil
}

func matches(p domain.Proposal, f domain.ProposalFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.WarehouseID != 0 && p.WarehouseID != f.WarehouseID {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.ProductName), q) && !strings.Contains(strings.ToLower(p.SKU), q) {
			return false
		}
	}
	return true
}

func compareBy(field string) func(a, b domain.Proposal) int {
	switch field {
	case "product_name":
		return func(a, b domain.Proposal) int { return cmp.Compare(a.ProductName, b.ProductName) }
	case "sku":
		return func(a, b domain.Proposal) int { return cmp.Compare(a.SKU, b.SKU) }
	case "warehouse_id":
		return func(a, b domain.Proposal) int { return cmp.Compare(a.WarehouseID, b.WarehouseID) }
	case "current_qty":
		return func(a, b domain.Proposal) int { return cmp.Compare(a.CurrentQty, b.CurrentQty) }
	case "adjusted_qty":
		return func(a, b domain.Proposal) int { return cmp.Compare(a.AdjustedQty, b.AdjustedQty) }
	case "total_cost":
		return func(a, b domain.Proposal) int { return a.TotalCost.Cmp(b.TotalCost) }
	case "lead_time_days":
		return func(a, b domain.Proposal) int { return cmp.Compare(a.LeadTimeDays, b.LeadTimeDays) }
	case "expected_date":
		return func(a, b domain.Proposal) int { return a.ExpectedDate.Compare(b.ExpectedDate) }
	case "status":
		return func(a, b domain.Proposal) int { return cmp.Compare(a.Status, b.Status) }
	default:
		return func(a, b domain.Proposal) int { return cmp.Compare(a.ID, b.ID) }
	}
}
