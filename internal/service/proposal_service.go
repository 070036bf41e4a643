// internal/service/proposal_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/cache"
	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/andresuchdata/autopo-proposals/internal/proposal"
	"github.com/andresuchdata/autopo-proposals/internal/repository"
	"github.com/andresuchdata/autopo-proposals/internal/source"
	"github.com/andresuchdata/autopo-proposals/internal/storage"
	"github.com/rs/zerolog/log"
)

// ErrNoBatch is returned by reads that need a generated batch before the first run.
var ErrNoBatch = errors.New("no proposals have been generated yet")

// Options wires the collaborators of a ProposalService. Nil fields get defaults:
// an unconfigured source, the default engine, a no-op cache, disabled storage and
// the wall clock.
type Options struct {
	Source       source.Source
	Engine       *proposal.Engine
	Cache        cache.ImpactCache
	Storage      storage.ObjectStorage
	ExportPrefix string
	Clock        func() time.Time
}

type ProposalService struct {
	repo         repository.ProposalRepository
	source       source.Source
	engine       *proposal.Engine
	cache        cache.ImpactCache
	storage      storage.ObjectStorage
	exportPrefix string
	now          func() time.Time

	// generation runs one at a time so batches publish in generation order
	genMu sync.Mutex
}

func NewProposalService(repo repository.ProposalRepository, opts Options) *ProposalService {
	s := &ProposalService{
		repo:         repo,
		source:       opts.Source,
		engine:       opts.Engine,
		cache:        opts.Cache,
		storage:      opts.Storage,
		exportPrefix: opts.ExportPrefix,
		now:          opts.Clock,
	}
	if s.source == nil {
		s.source = source.Unconfigured{}
	}
	if s.engine == nil {
		s.engine = proposal.NewEngine(proposal.DefaultOptions())
	}
	if s.cache == nil {
		s.cache = cache.NewNoopImpactCache()
	}
	if s.storage == nil {
		s.storage = storage.Disabled{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Generate loads a snapshot from the configured source and publishes a new batch.
func (s *ProposalService) Generate(ctx context.Context) (*domain.Batch, error) {
	snap, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s.GenerateFromSnapshot(ctx, snap)
}

// GenerateFromSnapshot publishes a new batch built from snap, replacing the previous one.
func (s *ProposalService) GenerateFromSnapshot(ctx context.Context, snap *domain.Snapshot) (*domain.Batch, error) {
	if snap == nil {
		snap = &domain.Snapshot{}
	}

	s.genMu.Lock()
	defer s.genMu.Unlock()

	start := time.Now()
	batch := s.engine.Generate(*snap, s.now().UTC())

	for _, w := range batch.Warnings {
		log.Warn().
			Int64("inventory_id", w.InventoryID).
			Str("kind", w.Kind).
			Int64("ref_id", w.RefID).
			Str("substitute", w.Substitute).
			Msg("missing reference substituted")
	}

	if err := s.repo.ReplaceBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}
	s.invalidateCache(ctx)

	log.Info().
		Str("batch_id", batch.ID).
		Int("inventory", batch.InventoryCount).
		Int("proposals", batch.FlaggedCount).
		Int("warnings", len(batch.Warnings)).
		Dur("took", time.Since(start)).
		Msg("proposal batch generated")

	return batch, nil
}

func (s *ProposalService) CurrentBatch(ctx context.Context) (*domain.Batch, error) {
	batch, err := s.repo.GetCurrentBatch(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoBatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current batch: %w", err)
	}
	return batch, nil
}

func (s *ProposalService) GetProposal(ctx context.Context, id string) (*domain.Proposal, error) {
	p, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProposalService) ListProposals(ctx context.Context, filter domain.ProposalFilter) (*domain.ProposalListResponse, error) {
	filter = repository.NormalizeFilter(filter)

	items, total, err := s.repo.ListProposals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list proposals: %w", err)
	}
	if items == nil {
		items = []domain.Proposal{}
	}

	return &domain.ProposalListResponse{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: repository.TotalPages(total, filter.PageSize),
	}, nil
}

// Transition applies action to one proposal. It fails with a
// *proposal.InvalidTransitionError when the action does not apply, and with
// repository.ErrStatusConflict when the proposal changed status concurrently.
func (s *ProposalService) Transition(ctx context.Context, id string, action domain.ProposalAction) (*domain.Proposal, error) {
	current, err := s.repo.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := proposal.Transition(*current, action)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, next.Status, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)

	log.Info().
		Str("proposal_id", id).
		Str("action", string(action)).
		Str("from", string(current.Status)).
		Str("to", string(updated.Status)).
		Msg("proposal status changed")

	return updated, nil
}

// BulkTransition applies action to every id independently. One failure does not
// stop the others; each id gets its own result in request order.
func (s *ProposalService) BulkTransition(ctx context.Context, ids []string, action domain.ProposalAction) []domain.TransitionResult {
	ids = repository.DedupIDs(ids)
	results := make([]domain.TransitionResult, 0, len(ids))
	for _, id := range ids {
		updated, err := s.Transition(ctx, id, action)
		if err != nil {
			results = append(results, domain.TransitionResult{ID: id, Error: describeError(err)})
			continue
		}
		results = append(results, domain.TransitionResult{ID: id, Proposal: updated})
	}
	return results
}

// Impact aggregates the selected proposals of the current batch. Ids that are not
// part of the current batch are ignored.
func (s *ProposalService) Impact(ctx context.Context, ids []string) (*domain.ImpactSummary, error) {
	ids = repository.DedupIDs(ids)
	if len(ids) == 0 {
		summary := proposal.ComputeImpact(nil)
		return &summary, nil
	}

	batchID, err := s.repo.CurrentBatchID(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNoBatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current batch: %w", err)
	}

	if cached, ok, err := s.cache.GetImpact(ctx, batchID, ids); err != nil {
		log.Warn().Err(err).Msg("impact cache read failed")
	} else if ok {
		return cached, nil
	}

	selected, err := s.repo.GetProposalsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load selection: %w", err)
	}

	summary := proposal.ComputeImpact(selected)
	if err := s.cache.SetImpact(ctx, batchID, ids, &summary); err != nil {
		log.Warn().Err(err).Msg("impact cache write failed")
	}

	return &summary, nil
}

func (s *ProposalService) invalidateCache(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("impact cache invalidation failed")
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return "proposal not found"
	case errors.Is(err, repository.ErrStatusConflict):
		return repository.ErrStatusConflict.Error()
	default:
		return err.Error()
	}
}
