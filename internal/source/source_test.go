package source

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestToInt(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{nil, 0},
		{float64(12), 12},
		{12.9, 12},
		{json.Number("42"), 42},
		{json.Number("4.5"), 4},
		{"1,250", 1250},
		{" 7 ", 7},
		{"-3", -3},
		{"12-3", 0},
		{"1,5", 15},
		{float64(1e30), math.MaxInt64},
		{float64(-1e30), math.MinInt64},
		{"abc", 0},
		{"", 0},
		{true, 1},
		{[]int{1}, 0},
	}
	for _, tc := range cases {
		if got := toInt(tc.in); got != tc.want {
			t.Fatalf("toInt(%#v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToDecimal(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "0"},
		{"$1,234.50", "1234.5"},
		{json.Number("99.99"), "99.99"},
		{float64(100), "100"},
		{"n/a", "0"},
	}
	for _, tc := range cases {
		got := toDecimal(tc.in)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("toDecimal(%#v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestToInventory_HugeQuantityStaysPositive(t *testing.T) {
	inv := ToInventory([]Record{{"id": float64(1), "quantity": float64(1e30), "reorderPoint": float64(10)}})
	if inv[0].Quantity != math.MaxInt64 {
		t.Fatalf("expected quantity to saturate, got %d", inv[0].Quantity)
	}
}

func TestToBool(t *testing.T) {
	for _, v := range []any{true, "true", "1", "Yes", "active", float64(1)} {
		if !toBool(v) {
			t.Fatalf("expected %#v to be true", v)
		}
	}
	for _, v := range []any{false, "false", "0", "", nil, "inactive"} {
		if toBool(v) {
			t.Fatalf("expected %#v to be false", v)
		}
	}
}

func TestToInventory_DefaultsAndAliases(t *testing.T) {
	got := ToInventory([]Record{
		{"id": float64(1), "productId": "10", "warehouseId": float64(2), "quantity": "5", "reorderPoint": float64(10), "safetyStock": float64(20)},
		{"id": float64(2), "product_id": "11", "quantity": nil, "reorder_point": "oops", "safety_stock": float64(-4)},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	first := got[0]
	if first.ProductID != 10 || first.WarehouseID != 2 || first.Quantity != 5 || first.ReorderPoint != 10 || first.SafetyStock != 20 {
		t.Fatalf("unexpected first record %+v", first)
	}
	second := got[1]
	if second.ProductID != 11 || second.Quantity != 0 || second.ReorderPoint != 0 || second.SafetyStock != 0 {
		t.Fatalf("expected defaults on second record, got %+v", second)
	}
}

func TestToSuppliersAndProducts(t *testing.T) {
	suppliers := ToSuppliers([]Record{{"id": "3", "name": "Acme", "is_active": "true", "lead_time_days": "21"}})
	if suppliers[0].ID != 3 || !suppliers[0].IsActive || suppliers[0].LeadTimeDays != 21 {
		t.Fatalf("unexpected supplier %+v", suppliers[0])
	}
	products := ToProducts([]Record{{"id": float64(5), "name": "Toner", "sku": "TN-5", "basePrice": "-3"}})
	if !products[0].BasePrice.IsZero() || products[0].SKU != "TN-5" {
		t.Fatalf("unexpected product %+v", products[0])
	}
}

func TestStatic_ReturnsCopy(t *testing.T) {
	src := NewStatic(RawSnapshot{Inventory: []Record{{"id": float64(1)}}}.Snapshot())
	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	snap.Inventory[0].Quantity = 99

	again, _ := src.Load(context.Background())
	if again.Inventory[0].Quantity != 0 {
		t.Fatalf("static source must not share slices with callers")
	}
}

func TestUnconfigured(t *testing.T) {
	if _, err := (Unconfigured{}).Load(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource_CSV(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "inventory.csv", "id,product_id,warehouse_id,quantity,reorder_point,safety_stock\n1,10,1,5,10,20\n\n2,11,1,,3,\n")
	writeFile(t, dir, "products.csv", "id,name,sku,base_price\n10,Shampoo,SH-10,\"1,000.50\"\n")

	snap, err := NewFileSource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Inventory) != 2 {
		t.Fatalf("expected 2 inventory rows, got %d", len(snap.Inventory))
	}
	if snap.Inventory[1].Quantity != 0 || snap.Inventory[1].ReorderPoint != 3 {
		t.Fatalf("unexpected second row %+v", snap.Inventory[1])
	}
	if len(snap.Products) != 1 || !snap.Products[0].BasePrice.Equal(decimal.RequireFromString("1000.5")) {
		t.Fatalf("unexpected products %+v", snap.Products)
	}
	if len(snap.Suppliers) != 0 {
		t.Fatalf("missing suppliers file should load as empty, got %d", len(snap.Suppliers))
	}
}

func TestFileSource_MissingInventory(t *testing.T) {
	if _, err := NewFileSource(t.TempDir()).Load(context.Background()); err == nil {
		t.Fatalf("expected error when inventory file is missing")
	}
}

func TestFileSource_XLSX(t *testing.T) {
	dir := t.TempDir()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"id", "name", "is_active", "lead_time_days"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow(sheet, "A2", &[]interface{}{7, "Harbor Supply", "TRUE", 45}); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(filepath.Join(dir, "suppliers.xlsx")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "inventory.csv", "id,product_id,quantity,reorder_point\n1,1,0,1\n")

	snap, err := NewFileSource(dir).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Suppliers) != 1 {
		t.Fatalf("expected 1 supplier, got %d", len(snap.Suppliers))
	}
	s := snap.Suppliers[0]
	if s.ID != 7 || s.Name != "Harbor Supply" || !s.IsActive || s.LeadTimeDays != 45 {
		t.Fatalf("unexpected supplier %+v", s)
	}
}

func TestRESTSource_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/inventory":
			w.Write([]byte(`[{"id":1,"productId":1,"warehouseId":2,"quantity":"5","reorderPoint":10,"safetyStock":20}]`))
		case "/api/products":
			w.Write([]byte(`{"data":[{"id":1,"name":"Soap","sku":"SP","basePrice":100}]}`))
		case "/api/suppliers":
			w.Write([]byte(`{"items":[{"id":4,"name":"North","isActive":true,"leadTimeDays":30}, "junk"]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src, err := NewRESTSource(RESTConfig{
		BaseURL:       srv.URL + "/",
		Token:         "secret",
		InventoryPath: "/api/inventory",
		ProductsPath:  "/api/products",
		SuppliersPath: "/api/suppliers",
	})
	if err != nil {
		t.Fatal(err)
	}

	snap, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Inventory) != 1 || snap.Inventory[0].Quantity != 5 || snap.Inventory[0].WarehouseID != 2 {
		t.Fatalf("unexpected inventory %+v", snap.Inventory)
	}
	if len(snap.Products) != 1 || snap.Products[0].SKU != "SP" {
		t.Fatalf("unexpected products %+v", snap.Products)
	}
	if len(snap.Suppliers) != 1 || snap.Suppliers[0].LeadTimeDays != 30 || !snap.Suppliers[0].IsActive {
		t.Fatalf("unexpected suppliers %+v", snap.Suppliers)
	}
}

func TestRESTSource_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/suppliers" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	src, err := NewRESTSource(RESTConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.Load(context.Background()); err == nil {
		t.Fatalf("expected error for failing collection")
	}
}

func TestNewRESTSource_RequiresBaseURL(t *testing.T) {
	if _, err := NewRESTSource(RESTConfig{}); err == nil {
		t.Fatalf("expected error without base url")
	}
}
