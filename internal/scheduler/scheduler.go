package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const defaultRunTimeout = 2 * time.Minute

// Generator is the part of the proposal service the scheduler drives.
type Generator interface {
	Generate(ctx context.Context) (*domain.Batch, error)
}

// Scheduler runs proposal generation on a cron schedule.
type Scheduler struct {
	cron      *cron.Cron
	generator Generator
	spec      string
	timeout   time.Duration
}

// New creates a scheduler. An empty spec disables it.
func New(spec string, generator Generator, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}

	// Standard 5-field cron; a run still in progress makes the next tick skip.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	return &Scheduler{
		cron:      c,
		generator: generator,
		spec:      spec,
		timeout:   timeout,
	}
}

// Enabled reports whether a schedule is configured.
func (s *Scheduler) Enabled() bool {
	return s.spec != ""
}

// Start registers the generation job and starts the cron loop.
func (s *Scheduler) Start() error {
	if !s.Enabled() {
		log.Info().Msg("scheduler disabled: no generate cron configured")
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.runGenerate); err != nil {
		return fmt.Errorf("invalid generate cron %q: %w", s.spec, err)
	}

	log.Info().Str("cron", s.spec).Msg("starting scheduler")
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	if !s.Enabled() {
		return
	}
	log.Info().Msg("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runGenerate() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log.Info().Msg("scheduled proposal generation started")
	batch, err := s.generator.Generate(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduled proposal generation failed")
		return
	}
	log.Info().Str("batch_id", batch.ID).Int("proposals", batch.FlaggedCount).Msg("scheduled proposal generation finished")
}
