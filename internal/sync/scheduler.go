package sync

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the full sync on a fixed interval in the background.
// The orchestrator serializes runs internally, so a slow run and the
// next tick cannot race on the store.
type Scheduler struct {
	cron         *cron.Cron
	orchestrator *Orchestrator
	interval     time.Duration
	entryID      cron.EntryID
}

// NewScheduler creates a periodic sync scheduler.
func NewScheduler(orchestrator *Orchestrator, intervalMin int) *Scheduler {
	if intervalMin <= 0 {
		intervalMin = 60
	}

	return &Scheduler{
		cron:         cron.New(),
		orchestrator: orchestrator,
		interval:     time.Duration(intervalMin) * time.Minute,
	}
}

// Start begins the periodic sync.
func (s *Scheduler) Start() error {
	spec := "@every " + s.interval.String()

	entryID, err := s.cron.AddFunc(spec, s.runSync)
	if err != nil {
		return err
	}
	s.entryID = entryID

	s.cron.Start()
	log.Printf("Sync scheduler started (every %s)", s.interval)
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running job.
func (s *Scheduler) Stop() {
	log.Println("Stopping sync scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Sync scheduler stopped")
}

// NextRun returns the next scheduled sync time, if any.
func (s *Scheduler) NextRun() *time.Time {
	entry := s.cron.Entry(s.entryID)
	if entry.Next.IsZero() {
		return nil
	}
	return &entry.Next
}

// TriggerSync runs a full sync immediately in the background.
func (s *Scheduler) TriggerSync() {
	go s.runSync()
}

func (s *Scheduler) runSync() {
	ctx := context.Background()

	full, err := s.orchestrator.SyncAll(ctx)
	if err != nil {
		log.Printf("Scheduled sync failed: %v", err)
		return
	}

	log.Printf("Scheduled sync completed: %d properties, %d reservations",
		full.Properties.Count(), full.Reservations.Count())
}
