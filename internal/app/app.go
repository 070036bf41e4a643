// Package app builds the proposal service and its collaborators from configuration.
// Both the HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/autopo-proposals/internal/cache"
	"github.com/andresuchdata/autopo-proposals/internal/config"
	"github.com/andresuchdata/autopo-proposals/internal/drive"
	"github.com/andresuchdata/autopo-proposals/internal/proposal"
	"github.com/andresuchdata/autopo-proposals/internal/repository"
	"github.com/andresuchdata/autopo-proposals/internal/repository/postgres"
	"github.com/andresuchdata/autopo-proposals/internal/service"
	"github.com/andresuchdata/autopo-proposals/internal/source"
	"github.com/andresuchdata/autopo-proposals/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// App holds the wired service and whatever needs closing on shutdown.
type App struct {
	ProposalService *service.ProposalService
	db              *postgres.DB
}

// New wires the repository, cache, storage, source and engine described by cfg.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	var repo repository.ProposalRepository
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
		repo = postgres.NewProposalRepository(db)
		log.Info().Msg("using postgres proposal repository")
	} else {
		repo = repository.NewMemoryRepository()
		log.Info().Msg("using in-memory proposal repository")
	}

	impactCache, err := cache.NewImpactCache(ctx, cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, impact cache disabled")
		impactCache = cache.NewNoopImpactCache()
	}

	store, err := NewStorage(cfg.Storage)
	if err != nil {
		a.Close()
		return nil, err
	}

	src, err := NewSource(ctx, cfg.Source)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.ProposalService = service.NewProposalService(repo, service.Options{
		Source:       src,
		Engine:       NewEngine(cfg.Proposal),
		Cache:        impactCache,
		Storage:      store,
		ExportPrefix: cfg.Storage.ExportPrefix,
	})
	return a, nil
}

// Close releases the database pool, if one was opened.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}
}

func NewEngine(cfg config.ProposalConfig) *proposal.Engine {
	return proposal.NewEngine(proposal.Options{
		MOQ:           proposal.MOQPolicy{MinQty: cfg.MOQMinQty, Step: cfg.MOQStep},
		UnitCostRatio: decimal.NewFromFloat(cfg.UnitCostRatio),
		Selector:      proposal.NewSupplierSelector(cfg.SupplierRouting),
	})
}

// NewStorage returns the export bucket client, or storage.Disabled when no bucket
// is configured.
func NewStorage(cfg config.StorageConfig) (storage.ObjectStorage, error) {
	if !cfg.Enabled {
		return storage.Disabled{}, nil
	}
	client, err := storage.NewMinioClient(storage.MinioConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init export storage: %w", err)
	}
	return client, nil
}

// NewSource builds the snapshot source selected by cfg.Kind.
func NewSource(ctx context.Context, cfg config.SourceConfig) (source.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case config.SourceREST:
		return source.NewRESTSource(source.RESTConfig{
			BaseURL:       cfg.RESTBaseURL,
			Token:         cfg.RESTToken,
			InventoryPath: cfg.RESTInventoryPath,
			ProductsPath:  cfg.RESTProductsPath,
			SuppliersPath: cfg.RESTSuppliersPath,
			Timeout:       config.Duration(cfg.RESTTimeoutSeconds, 0),
		})
	case config.SourceFile:
		if cfg.FileDir == "" {
			return nil, fmt.Errorf("SOURCE_FILE_DIR is required for the file source")
		}
		return source.NewFileSource(cfg.FileDir), nil
	case config.SourceDrive:
		return newDriveSource(ctx, cfg)
	case "", config.SourceNone:
		return source.Unconfigured{}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot source %q", cfg.Kind)
	}
}

func newDriveSource(ctx context.Context, cfg config.SourceConfig) (source.Source, error) {
	svc, err := drive.NewService(ctx, cfg.DriveCredentialsJSON)
	if err != nil {
		return nil, err
	}

	folderID := cfg.DriveFolderID
	if folderID == "" {
		if cfg.DriveFolderPath == "" {
			return nil, fmt.Errorf("a drive folder id or path is required for the drive source")
		}
		folderID, err = svc.FindFolderByPath(ctx, cfg.DriveFolderPath)
		if err != nil {
			return nil, err
		}
	}
	return drive.NewSource(svc, folderID), nil
}
