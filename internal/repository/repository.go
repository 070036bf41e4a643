// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrStatusConflict = errors.New("proposal status changed concurrently")
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
	DefaultSort     = "id"
)

// SortFields maps accepted sort keys to their column names.
var SortFields = map[string]string{
	"id":             "id",
	"product_name":   "product_name",
	"sku":            "sku",
	"warehouse_id":   "warehouse_id",
	"current_qty":    "current_qty",
	"adjusted_qty":   "adjusted_qty",
	"total_cost":     "total_cost",
	"lead_time_days": "lead_time_days",
	"expected_date":  "expected_date",
	"status":         "status",
}

// ProposalRepository stores the current proposal batch.
type ProposalRepository interface {
	// ReplaceBatch discards the previous batch and its proposals.
	ReplaceBatch(ctx context.Context, batch *domain.Batch) error
	// GetCurrentBatch returns ErrNotFound before the first generation.
	GetCurrentBatch(ctx context.Context) (*domain.Batch, error)
	// CurrentBatchID returns ErrNotFound before the first generation.
	CurrentBatchID(ctx context.Context) (string, error)
	GetProposal(ctx context.Context, id string) (*domain.Proposal, error)
	// GetProposalsByIDs skips unknown ids and keeps the order of the first occurrence of each id.
	GetProposalsByIDs(ctx context.Context, ids []string) ([]domain.Proposal, error)
	ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, int, error)
	// UpdateStatus moves a proposal from one status to another only if it is still in from.
	UpdateStatus(ctx context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error)
}

// NormalizeFilter clamps paging and replaces unknown sort keys with defaults.
func NormalizeFilter(f domain.ProposalFilter) domain.ProposalFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.SortField = strings.ToLower(strings.TrimSpace(f.SortField))
	if _, ok := SortFields[f.SortField]; !ok {
		f.SortField = DefaultSort
	}
	if strings.EqualFold(f.SortDirection, "desc") {
		f.SortDirection = "desc"
	} else {
		f.SortDirection = "asc"
	}
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// TotalPages is never less than one.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// DedupIDs drops blanks and repeated ids, keeping first occurrences.
func DedupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
