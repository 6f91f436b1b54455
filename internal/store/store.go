// Package store declares the persistence contracts shared by every backend.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/MediSynth-io/contactbook/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("store: duplicate key")
)

// UserStore persists user accounts. Email is unique.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDAndEmail(ctx context.Context, id, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// SessionStore persists sessions. A user has at most one session: Replace
// atomically swaps out whatever was stored before.
type SessionStore interface {
	Replace(ctx context.Context, session *models.Session) error
	// Consume atomically removes and returns the session matching both
	// identifiers, so a refresh token can be redeemed only once.
	Consume(ctx context.Context, sessionID, refreshToken string) (*models.Session, error)
	GetByAccessToken(ctx context.Context, accessToken string) (*models.Session, error)
	// Delete removes the session with the given id. Missing is not an error.
	Delete(ctx context.Context, sessionID string) error
	DeleteByUser(ctx context.Context, userID string) error
	// DeleteExpired removes sessions whose refresh token lapsed before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ContactStore persists contacts. Every operation is scoped by owner.
type ContactStore interface {
	List(ctx context.Context, q models.ListQuery) ([]models.Contact, int64, error)
	Get(ctx context.Context, id, userID string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, id, userID string, patch models.ContactPatch) (*models.Contact, error)
	Delete(ctx context.Context, id, userID string) (*models.Contact, error)
}
