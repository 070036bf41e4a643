// internal/repository/postgres/proposal_repository.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/andresuchdata/autopo-proposals/internal/repository"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const proposalColumns = `
	id, batch_id, inventory_id, product_id, warehouse_id, product_name, sku,
	supplier_id, supplier_name, current_qty, reorder_point, safety_stock,
	suggested_qty, moq_qty, adjusted_qty, unit_cost, total_cost, cash_impact,
	lead_time_days, expected_date, stock_after_po, status, generated_at, updated_at`

type ProposalRepository struct {
	db *DB
}

var _ repository.ProposalRepository = (*ProposalRepository)(nil)

func NewProposalRepository(db *DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

type batchRow struct {
	ID             string    `db:"id"`
	GeneratedAt    time.Time `db:"generated_at"`
	InventoryCount int       `db:"inventory_count"`
	FlaggedCount   int       `db:"flagged_count"`
	Warnings       []byte    `db:"warnings"`
}

func (r *ProposalRepository) ReplaceBatch(ctx context.Context, batch *domain.Batch) error {
	warnings := batch.Warnings
	if warnings == nil {
		warnings = []domain.MissingReference{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("failed to encode batch warnings: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Proposals cascade with their batch
		if _, err := tx.ExecContext(ctx, `DELETE FROM proposal_batches`); err != nil {
			return fmt.Errorf("failed to clear previous batch: %w", err)
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO proposal_batches (id, generated_at, inventory_count, flagged_count, warnings)
			VALUES ($1, $2, $3, $4, $5)
		`, batch.ID, batch.GeneratedAt, batch.InventoryCount, batch.FlaggedCount, warningsJSON)
		if err != nil {
			return fmt.Errorf("failed to insert batch: %w", err)
		}

		if len(batch.Proposals) == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO proposals (`+proposalColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			        $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, p := range batch.Proposals {
			_, err := stmt.ExecContext(ctx,
				p.ID, p.BatchID, p.InventoryID, p.ProductID, p.WarehouseID, p.ProductName, p.SKU,
				p.SupplierID, p.SupplierName, p.CurrentQty, p.ReorderPoint, p.SafetyStock,
				p.SuggestedQty, p.MOQQty, p.AdjustedQty, p.UnitCost, p.TotalCost, p.CashImpact,
				p.LeadTimeDays, p.ExpectedDate, p.StockAfterPO, string(p.Status), p.GeneratedAt, p.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert proposal %s: %w", p.ID, err)
			}
		}

		return nil
	})
}

func (r *ProposalRepository) GetCurrentBatch(ctx context.Context) (*domain.Batch, error) {
	var row batchRow
	err := sqlx.GetContext(ctx, r.db, &row, `
		SELECT id, generated_at, inventory_count, flagged_count, warnings
		FROM proposal_batches
		ORDER BY generated_at DESC
		LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get current batch: %w", err)
	}

	batch := &domain.Batch{
		ID:             row.ID,
		GeneratedAt:    row.GeneratedAt,
		InventoryCount: row.InventoryCount,
		FlaggedCount:   row.FlaggedCount,
		Warnings:       []domain.MissingReference{},
	}
	if len(row.Warnings) > 0 {
		if err := json.Unmarshal(row.Warnings, &batch.Warnings); err != nil {
			return nil, fmt.Errorf("failed to decode batch warnings: %w", err)
		}
	}

	batch.Proposals = []domain.Proposal{}
	err = sqlx.SelectContext(ctx, r.db, &batch.Proposals,
		`SELECT `+proposalColumns+` FROM proposals WHERE batch_id = $1 ORDER BY id`, row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch proposals: %w", err)
	}

	return batch, nil
}

func (r *ProposalRepository) CurrentBatchID(ctx context.Context) (string, error) {
	var id string
	err := sqlx.GetContext(ctx, r.db, &id, `SELECT id FROM proposal_batches ORDER BY generated_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get current batch id: %w", err)
	}
	return id, nil
}

func (r *ProposalRepository) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	var p domain.Proposal
	err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return &p, nil
}

func (r *ProposalRepository) GetProposalsByIDs(ctx context.Context, ids []string) ([]domain.Proposal, error) {
	ids = repository.DedupIDs(ids)
	if len(ids) == 0 {
		return []domain.Proposal{}, nil
	}

	var rows []domain.Proposal
	err := sqlx.SelectContext(ctx, r.db, &rows,
		`SELECT `+proposalColumns+` FROM proposals WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get proposals: %w", err)
	}

	byID := make(map[string]domain.Proposal, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	out := make([]domain.Proposal, 0, len(rows))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *ProposalRepository) ListProposals(ctx context.Context, filter domain.ProposalFilter) ([]domain.Proposal, int, error) {
	filter = repository.NormalizeFilter(filter)
	where, args := buildProposalFilter(filter)

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM proposals`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count proposals: %w", err)
	}

	// Sort column comes from the repository.SortFields whitelist
	query := fmt.Sprintf(`
		SELECT %s
		FROM proposals%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d
	`, proposalColumns, where, repository.SortFields[filter.SortField], strings.ToUpper(filter.SortDirection), len(args)+1, len(args)+2)

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	items := []domain.Proposal{}
	if err := sqlx.SelectContext(ctx, r.db, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list proposals: %w", err)
	}

	return items, total, nil
}

func (r *ProposalRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ProposalStatus, at time.Time) (*domain.Proposal, error) {
	var updated domain.Proposal
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &updated, `
			UPDATE proposals
			SET status = $3, updated_at = $4
			WHERE id = $1 AND status = $2
			RETURNING `+proposalColumns, id, string(from), string(to), at)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to update proposal status: %w", err)
		}

		// Nothing updated: tell a missing id apart from a lost race
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM proposals WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("failed to check proposal: %w", err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrStatusConflict
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
