// internal/app/system/escalation/escalation.go

// Package escalation runs the engine's one-shot timers on a gocron
// scheduler: voting-round deadlines and emergency auto-escalation windows.
// Jobs are keyed by tag so the engines stay stateless; the scheduler owns
// the tag-to-job bookkeeping. Timers are process-local, so startup
// recovery re-arms pending deadlines from the repository.
package escalation

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Scheduler struct {
	sched gocron.Scheduler
	log   *zap.Logger

	mu   sync.Mutex
	jobs map[string]uuid.UUID
}

func New(logger *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		sched: sched,
		log:   logger,
		jobs:  make(map[string]uuid.UUID),
	}, nil
}

// Start begins executing scheduled jobs. Jobs may be scheduled before and
// after Start.
func (s *Scheduler) Start() {
	s.sched.Start()
}

// Shutdown stops the scheduler and drops all pending jobs.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	s.jobs = make(map[string]uuid.UUID)
	s.mu.Unlock()
	return s.sched.Shutdown()
}

// Schedule arms a one-shot job firing at the given time. Scheduling a tag
// that already has a pending job replaces it. A fire time in the past runs
// the job immediately.
func (s *Scheduler) Schedule(tag string, at time.Time, fn func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.jobs[tag]; ok {
		if err := s.sched.RemoveJob(old); err != nil {
			s.log.Warn("stale timer removal failed", zap.String("tag", tag), zap.Error(err))
		}
		delete(s.jobs, tag)
	}

	if !at.After(time.Now()) {
		at = time.Now().Add(time.Second)
	}

	j, err := s.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at)),
		gocron.NewTask(func() {
			s.fired(tag)
			fn(context.Background())
		}),
		gocron.WithTags(tag),
	)
	if err != nil {
		return err
	}

	s.jobs[tag] = j.ID()
	s.log.Debug("timer armed", zap.String("tag", tag), zap.Time("at", at))
	return nil
}

// Cancel removes the pending job for tag, reporting whether one existed.
// Cancelling after the job fired is a no-op.
func (s *Scheduler) Cancel(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.jobs[tag]
	if !ok {
		return false
	}
	delete(s.jobs, tag)
	if err := s.sched.RemoveJob(id); err != nil {
		s.log.Warn("timer removal failed", zap.String("tag", tag), zap.Error(err))
		return false
	}
	s.log.Debug("timer cancelled", zap.String("tag", tag))
	return true
}

// Pending reports whether a job is still armed for tag.
func (s *Scheduler) Pending(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[tag]
	return ok
}

func (s *Scheduler) fired(tag string) {
	s.mu.Lock()
	delete(s.jobs, tag)
	s.mu.Unlock()
}
