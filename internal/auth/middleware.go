package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/models"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// WithUser stores the authenticated user in ctx.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}

// UserFromContext retrieves the authenticated user from ctx.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", apperr.Unauthorized("Please provide Authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", apperr.Unauthorized("Auth header should be of type Bearer")
	}
	return strings.TrimSpace(parts[1]), nil
}
