package services

import (
	"context"
	"time"

	"github.com/auditnote/auditnote-api/internal/jobs"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// Job names
const (
	JobEvictSessions = "evict-idle-sessions"
	JobWelcomeEmail  = "welcome-email"
	JobPasswordEmail = "password-changed-email"
)

// JobStatus is the background worker state exposed on /jobs/status
type JobStatus struct {
	jobs.WorkerStats
	LiveSessions int `json:"live_sessions"`
}

type JobService struct {
	worker   *jobs.Worker
	sessions *session.Store
	idleTTL  time.Duration
}

func NewJobService(worker *jobs.Worker, sessions *session.Store, idleTTL time.Duration) *JobService {
	return &JobService{
		worker:   worker,
		sessions: sessions,
		idleTTL:  idleTTL,
	}
}

// Start registers the periodic jobs. Idle sessions are checked four times
// per TTL.
func (s *JobService) Start() {
	if s.idleTTL <= 0 {
		return
	}
	interval := s.idleTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	s.worker.ScheduleEveryImmediate(JobEvictSessions, interval, s.EvictIdleSessions)
}

// EvictIdleSessions is the scheduled form of EvictNow
func (s *JobService) EvictIdleSessions(ctx context.Context) error {
	s.EvictNow()
	return nil
}

// EvictNow drops sessions unused for longer than the idle TTL and returns
// how many were dropped. A non-positive TTL keeps every session.
func (s *JobService) EvictNow() int {
	if s.idleTTL <= 0 {
		return 0
	}
	n := s.sessions.EvictIdle(s.idleTTL)
	if n > 0 {
		logger.Info("Evicted idle audit sessions", "count", n, "remaining", s.sessions.Len())
	}
	return n
}

func (s *JobService) GetStatus() JobStatus {
	return JobStatus{
		WorkerStats:  s.worker.GetStats(),
		LiveSessions: s.sessions.Len(),
	}
}
