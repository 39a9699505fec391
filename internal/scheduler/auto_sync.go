package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vocadex/vocadex/internal/entities"
	"github.com/vocadex/vocadex/internal/syncer"
)

// SyncRunner is the subset of the sync engine the scheduler drives.
type SyncRunner interface {
	SmartSync(ctx context.Context, cfg *entities.SyncSettings) (syncer.SyncResult, error)
}

// ConfigSource yields the active sync configuration.
type ConfigSource interface {
	Current() (*entities.SyncSettings, error)
}

// AutoSyncScheduler periodically pushes and pulls vocabulary against the
// configured Bitable. Failed runs are logged and retried on the next tick.
type AutoSyncScheduler struct {
	engine SyncRunner
	config ConfigSource

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewAutoSyncScheduler creates a new scheduler instance
func NewAutoSyncScheduler(engine SyncRunner, config ConfigSource) *AutoSyncScheduler {
	return &AutoSyncScheduler{
		engine: engine,
		config: config,
		cron:   cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler with the given cron schedule
func (s *AutoSyncScheduler) Start(ctx context.Context, schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runSync(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("[SYNC] scheduler started with schedule '%s'", schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *AutoSyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("[SYNC] scheduler stopped")
}

// RunNow triggers an immediate sync regardless of the last sync time
func (s *AutoSyncScheduler) RunNow(ctx context.Context) {
	go s.runSync(ctx)
}

// IsRunning returns whether the scheduler is active
func (s *AutoSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sync will occur
func (s *AutoSyncScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSync performs a single scheduled sync pass. Errors never escape:
// background syncs must not take the process down.
func (s *AutoSyncScheduler) runSync(ctx context.Context) {
	cfg, err := s.config.Current()
	if err != nil {
		if errors.Is(err, syncer.ErrNotLoggedIn) {
			log.Printf("[SYNC] auto sync: skipped (not logged in)")
		} else {
			log.Printf("[SYNC] auto sync: failed to load configuration: %v", err)
		}
		return
	}

	if !syncer.ShouldSync(cfg, time.Now()) {
		return
	}

	log.Printf("[SYNC] auto sync: starting for user %s", cfg.UserID)
	startTime := time.Now()

	result, err := s.engine.SmartSync(ctx, cfg)
	if err != nil {
		log.Printf("[SYNC] auto sync: failed: %v", err)
		return
	}

	log.Printf("[SYNC] auto sync: uploaded %d, downloaded %d, skipped %d in %v",
		result.Uploaded, result.Downloaded, result.Skipped,
		time.Since(startTime).Round(time.Millisecond))
}
