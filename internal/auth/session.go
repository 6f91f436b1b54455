package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

// newSession mints a fresh token pair for userID.
func (s *Service) newSession(userID string) (*models.Session, error) {
	accessToken, err := generateRandomToken()
	if err != nil {
		return nil, err
	}
	refreshToken, err := generateRandomToken()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return &models.Session{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		AccessToken:            accessToken,
		RefreshToken:           refreshToken,
		AccessTokenValidUntil:  now.Add(s.cfg.AccessTokenTTL),
		RefreshTokenValidUntil: now.Add(s.cfg.RefreshTokenTTL),
		CreatedAt:              now,
	}, nil
}

// startSession replaces whatever session userID held with a new one.
func (s *Service) startSession(ctx context.Context, userID string) (*models.Session, error) {
	sess, err := s.newSession(userID)
	if err != nil {
		return nil, apperr.Internal("Something went wrong", err)
	}
	if err := s.sessions.Replace(ctx, sess); err != nil {
		return nil, apperr.Internal("Something went wrong", err)
	}
	return sess, nil
}

// Login verifies credentials and starts the user's only session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Internal("Something went wrong", err)
		}
		CheckPassword(string(dummyHash), password)
		return nil, apperr.Unauthorized("Invalid credentials!")
	}

	if !CheckPassword(user.Password, password) {
		return nil, apperr.Unauthorized("Invalid credentials!")
	}

	sess, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.String("user_id", user.ID), zap.String("session_id", sess.ID))
	return sess, nil
}

// Refresh redeems a refresh token once and rotates the session. An expired
// session is removed and rejected.
func (s *Service) Refresh(ctx context.Context, sessionID, refreshToken string) (*models.Session, error) {
	old, err := s.sessions.Consume(ctx, sessionID, refreshToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("Session not found!")
		}
		return nil, apperr.Internal("Something went wrong", err)
	}

	if old.RefreshExpired(s.now()) {
		return nil, apperr.Unauthorized("Session token expired!")
	}

	return s.startSession(ctx, old.UserID)
}

// Logout drops the session. A missing session is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return apperr.Internal("Something went wrong", err)
	}
	return nil
}

// Authenticate resolves the user behind a bearer access token.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	sess, err := s.sessions.GetByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("Session not found")
		}
		return nil, apperr.Internal("Something went wrong", err)
	}

	if sess.AccessExpired(s.now()) {
		return nil, apperr.Unauthorized("Access token expired")
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Unauthorized("User not found")
		}
		return nil, apperr.Internal("Something went wrong", err)
	}
	return user, nil
}

// CleanupExpiredSessions removes sessions whose refresh token has lapsed.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}
