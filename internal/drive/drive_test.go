package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type fakeStore struct {
	files    []*File
	contents map[string]string
}

func (f *fakeStore) ListFiles(_ context.Context, _ string) ([]*File, error) {
	return f.files, nil
}

func (f *fakeStore) DownloadFile(_ context.Context, fileID string, w io.Writer) error {
	body, ok := f.contents[fileID]
	if !ok {
		return fmt.Errorf("no such file %s", fileID)
	}
	_, err := io.WriteString(w, body)
	return err
}

func TestPickSnapshotFiles(t *testing.T) {
	files := []*File{
		{ID: "a", Name: "Inventory_old.csv", ModifiedTime: "2024-01-01T00:00:00Z"},
		{ID: "b", Name: "inventory_new.csv", ModifiedTime: "2024-03-01T00:00:00Z"},
		{ID: "c", Name: "products.xlsx", ModifiedTime: "2024-02-01T00:00:00Z"},
		{ID: "d", Name: "suppliers.pdf"},
		{ID: "e", Name: "notes.csv"},
	}

	picked := pickSnapshotFiles(files)
	if len(picked) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(picked))
	}
	if picked["inventory"].ID != "b" {
		t.Fatalf("expected newest inventory file, got %s", picked["inventory"].ID)
	}
	if picked["products"].ID != "c" {
		t.Fatalf("expected products.xlsx, got %s", picked["products"].ID)
	}
}

func TestDownloadSnapshot_RequiresInventory(t *testing.T) {
	store := &fakeStore{files: []*File{{ID: "p", Name: "products.csv"}}}
	_, err := NewDownloader(store).DownloadSnapshot(context.Background(), DownloadOptions{DownloadDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error when inventory is missing")
	}
}

func TestDownloadSnapshot_NamesFilesByCollection(t *testing.T) {
	dir := t.TempDir()
	store := &fakeStore{
		files: []*File{{ID: "i", Name: "Inventory May.CSV"}},
		contents: map[string]string{
			"i": "id,product_id,quantity,reorder_point\n1,1,0,5\n",
		},
	}

	paths, err := NewDownloader(store).DownloadSnapshot(context.Background(), DownloadOptions{DownloadDir: dir})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	want := filepath.Join(dir, "inventory.csv")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("expected %s, got %v", want, paths)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

func TestSource_Load(t *testing.T) {
	store := &fakeStore{
		files: []*File{
			{ID: "i", Name: "inventory.csv"},
			{ID: "s", Name: "suppliers.csv"},
		},
		contents: map[string]string{
			"i": "id,product_id,warehouse_id,quantity,reorder_point,safety_stock\n1,10,1,5,10,20\n",
			"s": "id,name,is_active,lead_time_days\n1,North,true,7\n",
		},
	}

	snap, err := NewSource(store, "folder").Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Inventory) != 1 || snap.Inventory[0].SafetyStock != 20 {
		t.Fatalf("unexpected inventory %+v", snap.Inventory)
	}
	if len(snap.Suppliers) != 1 || snap.Suppliers[0].LeadTimeDays != 7 {
		t.Fatalf("unexpected suppliers %+v", snap.Suppliers)
	}
	if len(snap.Products) != 0 {
		t.Fatalf("expected empty products, got %d", len(snap.Products))
	}
}
