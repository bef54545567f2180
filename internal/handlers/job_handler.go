package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/internal/services"
)

// JobHandler exposes the background worker that evicts idle audit sessions
// and sends welcome emails.
type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// @Summary Get background job status
// @Description Worker statistics, scheduled job runs and the number of live audit sessions
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.JobStatus
// @Router /jobs/status [get]
func (h *JobHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobService.GetStatus())
}

// @Summary Evict idle sessions
// @Description Drops audit sessions idle for longer than SESSION_IDLE_TTL without waiting for the schedule
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int
// @Router /jobs/evict-sessions [post]
func (h *JobHandler) EvictSessions(c *gin.Context) {
	evicted := h.jobService.EvictNow()
	c.JSON(http.StatusOK, gin.H{"evicted": evicted, "live_sessions": h.jobService.GetStatus().LiveSessions})
}
