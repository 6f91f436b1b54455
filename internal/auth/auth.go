// Package auth implements account registration, the session lifecycle and
// the password reset flow.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/mail"
	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

// Service owns users, sessions and password resets.
type Service struct {
	cfg      Config
	users    store.UserStore
	sessions store.SessionStore
	mailer   mail.Sender
	tokens   *TokenManager
	log      *zap.Logger
	now      func() time.Time
}

func NewService(cfg Config, users store.UserStore, sessions store.SessionStore, mailer mail.Sender, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		tokens:   NewTokenManager(cfg.ResetSecret),
		log:      log,
		now:      time.Now,
	}
}

// RegisterInput is the profile of a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email in use")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("Something went wrong", err)
	}

	hash, err := HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperr.Internal("Something went wrong", err)
	}

	now := s.now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Password:  hash,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Email in use")
		}
		return nil, apperr.Internal("Something went wrong", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}
