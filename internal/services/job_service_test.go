package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditnote/auditnote-api/internal/jobs"
	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/session"
)

func TestJobService_StartEvictsOnStartup(t *testing.T) {
	sessions := session.NewStore()
	sessions.GetOrCreate("stale", models.Identity{Email: "a@example.com"})
	time.Sleep(5 * time.Millisecond)

	worker := jobs.NewWorker(1)
	svc := NewJobService(worker, sessions, time.Millisecond)
	svc.Start()

	require.Eventually(t, func() bool { return sessions.Len() == 0 }, 2*time.Second, 5*time.Millisecond)
	worker.Shutdown()

	stats := worker.GetStats()
	require.Len(t, stats.Schedules, 1)
	assert.Equal(t, JobEvictSessions, stats.Schedules[0].Name)
	assert.Equal(t, time.Minute, stats.Schedules[0].Interval)
	assert.Empty(t, stats.Schedules[0].LastError)
}

func TestJobService_NonPositiveTTLKeepsSessions(t *testing.T) {
	sessions := session.NewStore()
	sessions.GetOrCreate("live", models.Identity{Email: "a@example.com"})

	worker := jobs.NewWorker(1)
	defer worker.Shutdown()
	svc := NewJobService(worker, sessions, 0)
	svc.Start()

	assert.Empty(t, worker.GetStats().Schedules)
	assert.Equal(t, 0, svc.EvictNow())
	assert.Equal(t, 1, sessions.Len())
}
