package source

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/shopspring/decimal"
)

// Record is one loosely typed row from an external collection: a decoded JSON
// object or a CSV/XLSX row keyed by header.
type Record map[string]any

// lookup returns the first present key. Keys are matched exactly, then
// case-insensitively with '_' removed, so "productId" and "product_id" both match.
func (r Record) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			return v, true
		}
	}
	for _, k := range keys {
		want := normalizeKey(k)
		for rk, v := range r {
			if normalizeKey(rk) == want {
				return v, true
			}
		}
	}
	return nil, false
}

func normalizeKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, " ", "")
}

func (r Record) Int(keys ...string) int64 {
	v, _ := r.lookup(keys...)
	return toInt(v)
}

// Qty is Int clamped to zero.
func (r Record) Qty(keys ...string) int64 {
	return max(r.Int(keys...), 0)
}

func (r Record) Decimal(keys ...string) decimal.Decimal {
	v, _ := r.lookup(keys...)
	return toDecimal(v)
}

func (r Record) String(keys ...string) string {
	v, _ := r.lookup(keys...)
	return toString(v)
}

func (r Record) Bool(keys ...string) bool {
	v, _ := r.lookup(keys...)
	return toBool(v)
}

// toInt converts v to an integer; anything that is not a number becomes 0.
// Fractional values are truncated toward zero.
func toInt(v any) int64 {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case float64:
		switch {
		case math.IsNaN(n):
			return 0
		case n >= math.MaxInt64:
			return math.MaxInt64
		case n <= math.MinInt64:
			return math.MinInt64
		}
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		return toInt(toFloat(string(n)))
	case string:
		s := cleanNumber(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		return toInt(toFloat(s))
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func toFloat(s string) float64 {
	f, err := strconv.ParseFloat(cleanNumber(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// toDecimal converts v to a decimal; anything that is not a number becomes 0.
func toDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case nil:
		return decimal.Zero
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(n)
	case json.Number:
		return toDecimal(string(n))
	case string:
		d, err := decimal.NewFromString(cleanNumber(n))
		if err != nil {
			return decimal.Zero
		}
		return d
	case decimal.Decimal:
		return n
	default:
		return decimal.Zero
	}
}

// cleanNumber strips currency symbols, whitespace and ',' thousands separators,
// keeping digits, '.', a leading '-' and exponent markers. Values use '.' as the
// decimal point, so "1,5" reads as 15. A '-' anywhere else makes the value invalid
// and it returns "".
func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == 'e', r == 'E':
			b.WriteRune(r)
		case r == '-':
			if b.Len() != 0 && (i == 0 || (s[i-1] != 'e' && s[i-1] != 'E')) {
				return ""
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y", "active":
			return true
		}
		return false
	case nil:
		return false
	default:
		return toInt(v) != 0
	}
}

// ToInventory converts raw rows into inventory records with default substitution.
func ToInventory(rows []Record) []domain.InventoryRecord {
	out := make([]domain.InventoryRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.InventoryRecord{
			ID:           r.Int("id", "inventory_id"),
			ProductID:    r.Int("productId", "product_id"),
			WarehouseID:  r.Int("warehouseId", "warehouse_id"),
			Quantity:     r.Qty("quantity", "qty", "stock"),
			ReorderPoint: r.Qty("reorderPoint", "reorder_point"),
			SafetyStock:  r.Qty("safetyStock", "safety_stock"),
		})
	}
	return out
}

// ToProducts converts raw rows into products with default substitution.
func ToProducts(rows []Record) []domain.Product {
	out := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		price := r.Decimal("basePrice", "base_price", "price")
		if price.IsNegative() {
			price = decimal.Zero
		}
		out = append(out, domain.Product{
			ID:                  r.Int("id", "product_id"),
			Name:                r.String("name", "product_name"),
			SKU:                 r.String("sku"),
			BasePrice:           price,
			PreferredSupplierID: r.Int("preferredSupplierId", "preferred_supplier_id", "supplier_id"),
		})
	}
	return out
}

// ToSuppliers converts raw rows into suppliers with default substitution.
func ToSuppliers(rows []Record) []domain.Supplier {
	out := make([]domain.Supplier, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Supplier{
			ID:           r.Int("id", "supplier_id"),
			Name:         r.String("name", "supplier_name"),
			IsActive:     r.Bool("isActive", "is_active", "active"),
			LeadTimeDays: int(r.Qty("leadTimeDays", "lead_time_days", "lead_time")),
		})
	}
	return out
}
