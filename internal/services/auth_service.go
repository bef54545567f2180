package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/auditnote/auditnote-api/internal/config"
	"github.com/auditnote/auditnote-api/internal/jobs"
	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// Default auditor written into an empty Auditors table
const (
	defaultAuditorEmail    = "auditor@example.com"
	defaultAuditorPassword = "auditor123"
)

var bypassIdentity = models.Identity{FullName: "Admin", Position: "Administrator"}

// Mailer sends account emails
type Mailer interface {
	SendWelcome(ctx context.Context, to models.Identity) error
	SendPasswordChanged(ctx context.Context, to models.Identity, at time.Time) error
}

// AsyncRunner queues jobs on the worker pool
type AsyncRunner interface {
	Enqueue(name string, job jobs.Job)
}

// AuthService handles authentication operations
type AuthService struct {
	auditors repository.AuditorRepository
	hasher   *PasswordHasher
	sessions *session.Store
	mailer   Mailer
	async    AsyncRunner
	cfg      *config.Config
	now      func() time.Time
}

// NewAuthService creates a new auth service. mailer and async may be nil.
func NewAuthService(auditors repository.AuditorRepository, sessions *session.Store, mailer Mailer, async AsyncRunner, cfg *config.Config) *AuthService {
	return &AuthService{
		auditors: auditors,
		hasher:   NewPasswordHasher(cfg.PasswordHash),
		sessions: sessions,
		mailer:   mailer,
		async:    async,
		cfg:      cfg,
		now:      time.Now,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token     string          `json:"token"`
	SessionID string          `json:"session_id"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      models.Identity `json:"user"`
}

// Login verifies credentials, stamps last_login and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)

	if s.cfg.AdminBypassEnabled && email == s.cfg.AdminBypassEmail && password == s.cfg.AdminBypassPassword {
		id := bypassIdentity
		id.Email = email
		logger.Warn("Administrative bypass login used")
		return s.openSession(id)
	}

	auditor, err := s.auditors.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup auditor: %w", err)
	}

	if !s.hasher.Verify(password, auditor.Password) {
		return nil, ErrInvalidCredentials
	}

	if err := s.auditors.UpdateLastLogin(ctx, auditor.Email, s.now().Format(models.TimestampLayout)); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	return s.openSession(auditor.ToIdentity())
}

func (s *AuthService) openSession(id models.Identity) (*LoginResult, error) {
	sid := uuid.NewString()
	token, expiresAt, err := s.generateJWT(id, sid)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	s.sessions.GetOrCreate(sid, id)
	return &LoginResult{Token: token, SessionID: sid, ExpiresAt: expiresAt, User: id}, nil
}

// RegisterInput carries a registration form
type RegisterInput struct {
	FullName string `json:"fullname" binding:"required"`
	Position string `json:"position" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Confirm  string `json:"confirm_password" binding:"required"`
}

// Register appends a new auditor. Nothing is written on failure.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.Identity, error) {
	if in.Password != in.Confirm {
		return nil, ErrPasswordMismatch
	}
	in.Email = strings.TrimSpace(in.Email)
	if strings.TrimSpace(in.FullName) == "" || strings.TrimSpace(in.Position) == "" || in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	_, err := s.auditors.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, ErrDuplicateEmail
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("lookup auditor: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	auditor := &models.Auditor{
		FullName:  strings.TrimSpace(in.FullName),
		Position:  strings.TrimSpace(in.Position),
		Email:     in.Email,
		Password:  hash,
		LastLogin: s.now().Format(models.TimestampLayout),
	}
	if err := s.auditors.Create(ctx, auditor); err != nil {
		return nil, fmt.Errorf("create auditor: %w", err)
	}

	id := auditor.ToIdentity()
	s.notify(JobWelcomeEmail, func(ctx context.Context, m Mailer) error {
		return m.SendWelcome(ctx, id)
	})
	return &id, nil
}

// notify queues a best-effort email; failures only reach the worker stats
func (s *AuthService) notify(name string, send func(context.Context, Mailer) error) {
	if s.mailer == nil || s.async == nil {
		return
	}
	s.async.Enqueue(name, func(ctx context.Context) error {
		return send(ctx, s.mailer)
	})
}

// ChangePassword overwrites the stored hash of email. The stored hash is
// left untouched on any validation failure.
func (s *AuthService) ChangePassword(ctx context.Context, email, current, next, confirm string) error {
	if next != confirm {
		return ErrPasswordMismatch
	}
	if next == "" {
		return ErrMissingFields
	}

	auditor, err := s.auditors.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("lookup auditor: %w", err)
	}
	if !s.hasher.Verify(current, auditor.Password) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.auditors.UpdatePassword(ctx, auditor.Email, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	id, at := auditor.ToIdentity(), s.now()
	s.notify(JobPasswordEmail, func(ctx context.Context, m Mailer) error {
		return m.SendPasswordChanged(ctx, id, at)
	})
	return nil
}

// Logout drops the session's in-memory audit state
func (s *AuthService) Logout(sessionID string) {
	s.sessions.Delete(sessionID)
}

// EnsureDefaultAuditor seeds one auditor when the table is empty
func (s *AuthService) EnsureDefaultAuditor(ctx context.Context) error {
	if !s.cfg.SeedDefaultAuditor {
		return nil
	}
	n, err := s.auditors.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := s.hasher.Hash(defaultAuditorPassword)
	if err != nil {
		return err
	}
	logger.Info("Seeding default auditor", "email", defaultAuditorEmail)
	return s.auditors.Create(ctx, &models.Auditor{
		FullName: "Đánh giá viên",
		Position: "Trưởng đoàn",
		Email:    defaultAuditorEmail,
		Password: hash,
	})
}

// generateJWT creates a signed token carrying the identity and session id
func (s *AuthService) generateJWT(id models.Identity, sid string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour)
	claims := jwt.MapClaims{
		"email":    id.Email,
		"fullname": id.FullName,
		"position": id.Position,
		"sid":      sid,
		"exp":      expiresAt.Unix(),
		"iat":      now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	return signed, expiresAt, err
}
