package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/andresuchdata/autopo-proposals/internal/storage"
	"github.com/rs/zerolog/log"
)

const csvContentType = "text/csv"

var exportHeader = []string{
	"id", "batch_id", "inventory_id", "product_id", "warehouse_id", "product_name", "sku",
	"supplier_id", "supplier_name", "current_qty", "reorder_point", "safety_stock",
	"suggested_qty", "moq_qty", "adjusted_qty", "unit_cost", "total_cost",
	"lead_time_days", "expected_date", "stock_after_po", "status",
}

// ExportCSV writes the current batch as CSV and returns the batch id.
func (s *ProposalService) ExportCSV(ctx context.Context, w io.Writer) (string, error) {
	batch, err := s.CurrentBatch(ctx)
	if err != nil {
		return "", err
	}
	if err := WriteProposalsCSV(w, batch.Proposals); err != nil {
		return "", err
	}
	return batch.ID, nil
}

// UploadExport pushes the current batch CSV to object storage under
// <prefix>/<batchID>.csv.
func (s *ProposalService) UploadExport(ctx context.Context) (*storage.ObjectInfo, error) {
	var buf bytes.Buffer
	batchID, err := s.ExportCSV(ctx, &buf)
	if err != nil {
		return nil, err
	}

	key := path.Join(s.exportPrefix, batchID+".csv")
	if err := s.storage.UploadObject(ctx, key, buf.Bytes(), csvContentType); err != nil {
		return nil, fmt.Errorf("failed to upload export: %w", err)
	}

	log.Info().Str("key", key).Int("bytes", buf.Len()).Msg("proposal export uploaded")
	return &storage.ObjectInfo{Key: key, Size: int64(buf.Len())}, nil
}

// ListExports lists previously uploaded CSV exports.
func (s *ProposalService) ListExports(ctx context.Context) ([]storage.ObjectInfo, error) {
	prefix := s.exportPrefix
	if prefix != "" {
		prefix += "/"
	}
	objects, err := s.storage.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	return objects, nil
}

// WriteProposalsCSV writes proposals with a header row.
func WriteProposalsCSV(w io.Writer, proposals []domain.Proposal) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, p := range proposals {
		record := []string{
			p.ID,
			p.BatchID,
			strconv.FormatInt(p.InventoryID, 10),
			strconv.FormatInt(p.ProductID, 10),
			strconv.FormatInt(p.WarehouseID, 10),
			p.ProductName,
			p.SKU,
			strconv.FormatInt(p.SupplierID, 10),
			p.SupplierName,
			strconv.FormatInt(p.CurrentQty, 10),
			strconv.FormatInt(p.ReorderPoint, 10),
			strconv.FormatInt(p.SafetyStock, 10),
			strconv.FormatInt(p.SuggestedQty, 10),
			strconv.FormatInt(p.MOQQty, 10),
			strconv.FormatInt(p.AdjustedQty, 10),
			p.UnitCost.StringFixed(2),
			p.TotalCost.StringFixed(2),
			strconv.Itoa(p.LeadTimeDays),
			p.ExpectedDate.Format("2006-01-02"),
			strconv.FormatInt(p.StockAfterPO, 10),
			string(p.Status),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
