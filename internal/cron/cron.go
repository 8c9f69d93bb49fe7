package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/4seer/Twake/internal/counter"
	"github.com/4seer/Twake/internal/repository"
	"github.com/4seer/Twake/internal/types"
)

// How long an unanswered invitation is kept before cleanup.
const pendingUserTTL = 90 * 24 * time.Hour

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron          *cron.Cron
	workspaceRepo repository.WorkspaceRepository
	counters      *counter.Provider
}

// NewScheduler creates a new scheduler
func NewScheduler(workspaceRepo repository.WorkspaceRepository, counters *counter.Provider) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		workspaceRepo: workspaceRepo,
		counters:      counters,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	// Run every hour - member counter revision
	s.cron.AddFunc("0 * * * *", func() {
		log.Println("[Cron] Running member counter revision...")
		s.reviseMemberCounters()
	})

	// Run every day at 3 AM - stale invitation cleanup
	s.cron.AddFunc("0 3 * * *", func() {
		log.Println("[Cron] Running pending user cleanup...")
		s.cleanupPendingUsers()
	})

	s.cron.Start()
	log.Println("[Cron] Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Cron] Scheduler stopped")
}

// reviseMemberCounters recomputes every workspace member counter from the
// membership rows, correcting drift left by the non-transactional write path.
func (s *Scheduler) reviseMemberCounters() {
	ctx := context.Background()

	workspaceIDs, err := s.workspaceRepo.AllWorkspaceIDs(ctx)
	if err != nil {
		log.Printf("[Cron] Error listing workspaces for counter revision: %v", err)
		return
	}

	revised := 0
	for _, id := range workspaceIDs {
		key := repository.CounterKey{ID: id, CounterType: types.CounterTypeMembers}
		if _, err := s.counters.Revise(ctx, key); err != nil {
			log.Printf("[Cron] Error revising counter for workspace %s: %v", id, err)
			continue
		}
		revised++
	}
	log.Printf("[Cron] Revised %d of %d member counters", revised, len(workspaceIDs))
}

// cleanupPendingUsers drops invitations older than the retention window.
func (s *Scheduler) cleanupPendingUsers() {
	ctx := context.Background()

	cutoff := time.Now().Add(-pendingUserTTL)
	removed, err := s.workspaceRepo.RemovePendingUsersBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[Cron] Error cleaning up pending users: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[Cron] Removed %d stale pending users", removed)
	}
}

// ManualTrigger allows manual triggering of scheduled jobs (for testing)
func (s *Scheduler) ManualTrigger(jobType string) {
	switch jobType {
	case "counters":
		s.reviseMemberCounters()
	case "pending_cleanup":
		s.cleanupPendingUsers()
	case "all":
		s.reviseMemberCounters()
		s.cleanupPendingUsers()
	}
}
