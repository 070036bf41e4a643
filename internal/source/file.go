package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	InventoryFile = "inventory"
	ProductsFile  = "products"
	SuppliersFile = "suppliers"
)

// SupportedExtensions are tried in order when resolving a snapshot file.
var SupportedExtensions = []string{".csv", ".xlsx"}

// FileSource reads a snapshot from a directory holding inventory, products and
// suppliers files, each CSV or XLSX with a header row. The inventory file is
// required; a missing products or suppliers file loads as an empty collection.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (s *FileSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	inventory, err := s.readCollection(ctx, InventoryFile, true)
	if err != nil {
		return nil, err
	}
	products, err := s.readCollection(ctx, ProductsFile, false)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.readCollection(ctx, SuppliersFile, false)
	if err != nil {
		return nil, err
	}

	return RawSnapshot{Inventory: inventory, Products: products, Suppliers: suppliers}.Snapshot(), nil
}

func (s *FileSource) readCollection(ctx context.Context, name string, required bool) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, ok := ResolveFile(s.dir, name)
	if !ok {
		if required {
			return nil, fmt.Errorf("no %s file (%s) found in %s", name, strings.Join(SupportedExtensions, ", "), s.dir)
		}
		log.Warn().Str("dir", s.dir).Str("collection", name).Msg("file source: collection file missing, using empty collection")
		return []Record{}, nil
	}

	records, err := ReadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// ResolveFile returns the path of dir/name with the first supported extension that exists.
func ResolveFile(dir, name string) (string, bool) {
	for _, ext := range SupportedExtensions {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// ReadRecords reads a CSV or XLSX file into header-keyed records.
func ReadRecords(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file extension %s", filepath.Ext(path))
	}
}

func readCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		rows = append(rows, row)
	}
	return rowsToRecords(header, rows), nil
}

// readXLSX reads the first sheet of an XLSX workbook.
func readXLSX(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []Record{}, nil
	}
	return rowsToRecords(rows[0], rows[1:]), nil
}

// rowsToRecords keys each row by header. Blank rows are skipped and short rows
// leave the missing columns absent.
func rowsToRecords(header []string, rows [][]string) []Record {
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if col == "" || i >= len(row) {
				continue
			}
			rec[col] = row[i]
		}
		records = append(records, rec)
	}
	return records
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
