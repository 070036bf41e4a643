package proposal

import "github.com/andresuchdata/autopo-proposals/internal/domain"

// NeedsReorder reports whether the record is at or below its reorder point.
func NeedsReorder(r domain.InventoryRecord) bool {
	return r.Quantity <= r.ReorderPoint
}

// DetectReorders returns the records that need replenishment, in input order.
func DetectReorders(inventory []domain.InventoryRecord) []domain.InventoryRecord {
	flagged := make([]domain.InventoryRecord, 0, len(inventory))
	for _, r := range inventory {
		if NeedsReorder(r) {
			flagged = append(flagged, r)
		}
	}
	return flagged
}
