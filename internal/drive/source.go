package drive

import (
	"context"
	"fmt"
	"os"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/andresuchdata/autopo-proposals/internal/source"
)

// Source loads a snapshot from a Drive folder by downloading its collection
// files into a scratch directory and reading them with source.FileSource.
type Source struct {
	downloader *Downloader
	folderID   string
}

func NewSource(store FileStore, folderID string) *Source {
	return &Source{downloader: NewDownloader(store), folderID: folderID}
}

func (s *Source) Load(ctx context.Context) (*domain.Snapshot, error) {
	dir, err := os.MkdirTemp("", "autopo-drive-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if _, err := s.downloader.DownloadSnapshot(ctx, DownloadOptions{FolderID: s.folderID, DownloadDir: dir}); err != nil {
		return nil, err
	}
	return source.NewFileSource(dir).Load(ctx)
}
