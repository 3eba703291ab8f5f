package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/sirrobot01/dockdeck/pkg/storage"
)

// Scheduler prunes command history on a cron schedule
type Scheduler struct {
	store     storage.Storage
	cron      *cron.Cron
	schedule  string
	retention time.Duration
	now       func() time.Time
	pruning   atomic.Bool // Guards against overlapping prune runs
	wg        sync.WaitGroup
}

// New creates a scheduler that removes history older than retention every
// time schedule fires
func New(store storage.Storage, schedule string, retention time.Duration) *Scheduler {
	return &Scheduler{
		store:     store,
		cron:      cron.New(),
		schedule:  schedule,
		retention: retention,
		now:       time.Now,
	}
}

// Start registers the prune job and starts cron
func (s *Scheduler) Start() error {
	log.Info().Str("schedule", s.schedule).Dur("retention", s.retention).Msg("Starting scheduler")

	if _, err := s.cron.AddFunc(s.schedule, s.prune); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()

	// Do initial prune
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.prune()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running prune
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.wg.Wait()
	log.Info().Msg("Scheduler stopped")
}

// Prune removes expired history once and returns the number of records removed
func (s *Scheduler) Prune() (int, error) {
	cutoff := s.now().Add(-s.retention)
	return s.store.DeleteCommandRecordsBefore(cutoff)
}

func (s *Scheduler) prune() {
	// Guard: skip if already running
	if !s.pruning.CompareAndSwap(false, true) {
		log.Debug().Msg("History prune already in progress, skipping")
		return
	}
	defer s.pruning.Store(false)

	removed, err := s.Prune()
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune command history")
		return
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Msg("Pruned command history")
	}
}
