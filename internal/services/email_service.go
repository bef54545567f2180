package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

var mailTemplates = template.Must(template.ParseFS(emailTemplates, "templates/email/*.html"))

const (
	welcomeSubject  = "Chào mừng đến với hệ thống đánh giá ISO"
	passwordSubject = "Mật khẩu tài khoản đánh giá viên đã thay đổi"
)

// emailSender is the part of the Resend client the service uses
type emailSender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailService struct {
	config *config.Config
	sender emailSender
}

func NewEmailService(cfg *config.Config) *EmailService {
	client := resend.NewClient(cfg.ResendAPIKey)
	return &EmailService{
		config: cfg,
		sender: client.Emails,
	}
}

// SendWelcome notifies a newly registered auditor
func (s *EmailService) SendWelcome(ctx context.Context, to models.Identity) error {
	return s.send(ctx, to.Email, welcomeSubject, "welcome.html", map[string]string{
		"Name":     to.FullName,
		"Position": to.Position,
		"Email":    to.Email,
		"AppURL":   s.config.PublicBaseURL,
	})
}

// SendPasswordChanged warns an auditor that their password was replaced
func (s *EmailService) SendPasswordChanged(ctx context.Context, to models.Identity, at time.Time) error {
	return s.send(ctx, to.Email, passwordSubject, "password_changed.html", map[string]string{
		"Name":      to.FullName,
		"Email":     to.Email,
		"ChangedAt": at.Format(generatedLayout),
	})
}

// send renders page and delivers it through Resend. A missing
// configuration skips silently; a missing recipient is an error.
func (s *EmailService) send(ctx context.Context, recipient, subject, page string, data any) error {
	if !s.config.EmailEnabled() {
		logger.Debug("Email disabled, skipping", "recipient", recipient, "template", page)
		return nil
	}
	if strings.TrimSpace(recipient) == "" {
		return fmt.Errorf("recipient email is empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&body, page, data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}

	params := &resend.SendEmailRequest{
		From:    s.config.FromEmail,
		To:      []string{recipient},
		Subject: subject,
		Html:    body.String(),
	}
	resp, err := s.sender.Send(params)
	if err != nil {
		logger.Error("Failed to send email", "recipient", recipient, "template", page, "error", err)
		return err
	}

	logger.Info("Email sent", "recipient", recipient, "subject", subject, "id", resp.Id)
	return nil
}
