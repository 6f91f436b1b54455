package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/mail"
	"github.com/MediSynth-io/contactbook/internal/store"
)

const resetEmailSubject = "Reset your password"

// resetLink builds the front-end URL the reset email points at.
func (s *Service) resetLink(token string) string {
	return strings.TrimRight(s.cfg.AppDomain, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// RequestReset emails a reset link. Unknown addresses succeed silently.
func (s *Service) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Debug("reset requested for unknown email")
			return nil
		}
		return apperr.Internal("Something went wrong", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, s.cfg.ResetTokenTTL)
	if err != nil {
		return apperr.Internal("Something went wrong", err)
	}

	html, err := mail.RenderResetEmail(user.Name, s.resetLink(token), s.cfg.ResetTokenTTL)
	if err != nil {
		return apperr.Internal("Something went wrong", err)
	}

	if err := s.mailer.Send(ctx, mail.Message{To: user.Email, Subject: resetEmailSubject, HTML: html}); err != nil {
		s.log.Error("failed to send reset email", zap.String("user_id", user.ID), zap.Error(err))
		return apperr.Internal("Failed to send the email, please try again later.", err)
	}
	return nil
}

// ResetPassword sets a new password for the token's user and ends every
// session that user holds.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return apperr.Wrap(http.StatusUnauthorized, "Token is expired or invalid.", err)
	}

	user, err := s.users.GetByIDAndEmail(ctx, claims.Subject, claims.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return apperr.Internal("Something went wrong", err)
	}

	hash, err := HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return apperr.Internal("Something went wrong", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperr.Internal("Something went wrong", err)
	}
	if err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return apperr.Internal("Something went wrong", err)
	}

	s.log.Info("password reset", zap.String("user_id", user.ID))
	return nil
}
