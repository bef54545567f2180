package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/models"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "msg-1"}, nil
}

func TestEmailService_SendWelcome(t *testing.T) {
	to := models.Identity{Email: "lan@example.com", FullName: "Lan", Position: "Thành viên"}

	t.Run("disabled skips", func(t *testing.T) {
		sender := &fakeSender{}
		svc := &EmailService{config: &config.Config{}, sender: sender}
		require.NoError(t, svc.SendWelcome(context.Background(), to))
		assert.Empty(t, sender.sent)
	})

	cfg := &config.Config{ResendAPIKey: "key", FromEmail: "noreply@example.com", PublicBaseURL: "https://audit.example.com"}

	t.Run("renders and sends", func(t *testing.T) {
		sender := &fakeSender{}
		svc := &EmailService{config: cfg, sender: sender}
		require.NoError(t, svc.SendWelcome(context.Background(), to))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, []string{"lan@example.com"}, sender.sent[0].To)
		assert.Contains(t, sender.sent[0].Html, "Lan")
		assert.Contains(t, sender.sent[0].Html, "https://audit.example.com")
	})

	t.Run("empty recipient", func(t *testing.T) {
		svc := &EmailService{config: cfg, sender: &fakeSender{}}
		assert.Error(t, svc.SendWelcome(context.Background(), models.Identity{FullName: "X"}))
	})

	t.Run("send failure surfaces", func(t *testing.T) {
		svc := &EmailService{config: cfg, sender: &fakeSender{err: errors.New("boom")}}
		assert.Error(t, svc.SendWelcome(context.Background(), to))
	})
}

func TestEmailService_SendPasswordChanged(t *testing.T) {
	cfg := &config.Config{ResendAPIKey: "key", FromEmail: "noreply@example.com"}
	sender := &fakeSender{}
	svc := &EmailService{config: cfg, sender: sender}

	to := models.Identity{Email: "lan@example.com", FullName: "Lan"}
	require.NoError(t, svc.SendPasswordChanged(context.Background(), to, time.Date(2024, 5, 6, 10, 30, 0, 0, time.UTC)))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, passwordSubject, sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].Html, "06/05/2024 10:30:00")
	assert.Contains(t, sender.sent[0].Html, "lan@example.com")
}
