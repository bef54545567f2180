package services

import (
	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/jobs"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth   *AuthService
	Audit  *AuditService
	Image  *ImageService
	Report *ReportService
	Email  *EmailService
	Job    *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, sessions *session.Store, worker *jobs.Worker, host storage.ImageHost, cfg *config.Config) *Services {
	emailSvc := NewEmailService(cfg)
	imageSvc := NewImageService(host)
	reportSvc := NewReportService(repos.Note, repos.Participant, cfg)
	if local, ok := host.(LocalFiles); ok {
		reportSvc.UseLocalFiles(local)
	}

	return &Services{
		Auth:   NewAuthService(repos.Auditor, sessions, emailSvc, worker, cfg),
		Audit:  NewAuditService(repos.Note, repos.Participant, sessions, imageSvc),
		Image:  imageSvc,
		Report: reportSvc,
		Email:  emailSvc,
		Job:    NewJobService(worker, sessions, cfg.SessionIdleTTL),
	}
}
