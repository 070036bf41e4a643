package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/source"
	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how snapshot files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader fetches the inventory, products and suppliers files of a Drive folder.
type Downloader struct {
	store FileStore
}

func NewDownloader(store FileStore) *Downloader {
	return &Downloader{store: store}
}

// DownloadSnapshot writes one file per collection into DownloadDir, named
// <collection><ext> so source.FileSource can read the directory. When a folder
// holds several candidates for the same collection the most recently modified wins.
func (d *Downloader) DownloadSnapshot(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.store.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	picked := pickSnapshotFiles(files)
	if _, ok := picked[source.InventoryFile]; !ok {
		return nil, fmt.Errorf("drive folder %s has no %s file", opts.FolderID, source.InventoryFile)
	}

	var localPaths []string
	for _, collection := range []string{source.InventoryFile, source.ProductsFile, source.SuppliersFile} {
		f, ok := picked[collection]
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		localPath := filepath.Join(opts.DownloadDir, collection+strings.ToLower(filepath.Ext(f.Name)))
		if err := d.download(ctx, f, localPath); err != nil {
			return nil, err
		}
		log.Debug().Str("file", f.Name).Str("path", localPath).Msg("drive: downloaded snapshot file")
		localPaths = append(localPaths, localPath)
	}

	return localPaths, nil
}

func (d *Downloader) download(ctx context.Context, f *File, localPath string) error {
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := d.store.DownloadFile(ctx, f.ID, out); err != nil {
		out.Close()
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return out.Close()
}

// pickSnapshotFiles maps each collection name to its newest matching file.
// A file matches when its base name, lowercased, starts with the collection name
// and its extension is supported, e.g. "Inventory_2024-05.xlsx".
func pickSnapshotFiles(files []*File) map[string]*File {
	picked := make(map[string]*File)
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name))
		if !slices.Contains(source.SupportedExtensions, ext) {
			continue
		}
		base := strings.ToLower(strings.TrimSuffix(f.Name, filepath.Ext(f.Name)))
		for _, collection := range []string{source.InventoryFile, source.ProductsFile, source.SuppliersFile} {
			if !strings.HasPrefix(base, collection) {
				continue
			}
			if cur, ok := picked[collection]; !ok || modified(f).After(modified(cur)) {
				picked[collection] = f
			}
			break
		}
	}
	return picked
}

func modified(f *File) time.Time {
	t, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		return time.Time{}
	}
	return t
}
