package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
)

// buildProposalFilter constructs the WHERE clause for proposal list queries.
// Placeholders start at $1.
func buildProposalFilter(f domain.ProposalFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)

	if f.Status != "" {
		args = append(args, string(f.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	if f.WarehouseID != 0 {
		args = append(args, f.WarehouseID)
		clauses = append(clauses, fmt.Sprintf("warehouse_id = $%d", len(args)))
	}

	if f.Search != "" {
		args = append(args, f.Search)
		idx := len(args)
		clauses = append(clauses, fmt.Sprintf("(product_name ILIKE '%%' || $%d || '%%' OR sku ILIKE '%%' || $%d || '%%')", idx, idx))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
