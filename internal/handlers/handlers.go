package handlers

import (
	"github.com/auditnote/auditnote-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Clause  *ClauseHandler
	Session *SessionHandler
	Review  *ReviewHandler
	Report  *ReportHandler
	Job     *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(),
		Auth:    NewAuthHandler(svcs.Auth),
		Clause:  NewClauseHandler(),
		Session: NewSessionHandler(svcs.Audit),
		Review:  NewReviewHandler(svcs.Audit),
		Report:  NewReportHandler(svcs.Report),
		Job:     NewJobHandler(svcs.Job),
	}
}
