// Package contacts manages a user's address book and the photos attached to
// its entries.
package contacts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/apperr"
	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/storage"
	"github.com/MediSynth-io/contactbook/internal/store"
)

// Service is the contact manager. Every operation is scoped to one owner.
type Service struct {
	contacts store.ContactStore
	photos   storage.PhotoStorage
	log      *zap.Logger
}

func NewService(contacts store.ContactStore, photos storage.PhotoStorage, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{contacts: contacts, photos: photos, log: log}
}

// CreateInput carries a new contact. Photo is optional.
type CreateInput struct {
	Name        string
	PhoneNumber string
	Email       string
	IsFavourite bool
	ContactType models.ContactType
	Photo       *storage.StagedFile
}

// UpdateInput carries a partial update. Photo, when set, replaces the
// current one.
type UpdateInput struct {
	Patch models.ContactPatch
	Photo *storage.StagedFile
}

func contactNotFound() *apperr.Error {
	return apperr.NotFound("Contact not found")
}

// List returns one page of the owner's contacts.
func (s *Service) List(ctx context.Context, q models.ListQuery) (*models.ContactPage, error) {
	rows, total, err := s.contacts.List(ctx, q)
	if err != nil {
		return nil, apperr.Internal("Something went wrong", err)
	}
	page := calcPaginationData(total, q.PerPage, q.Page)
	page.Data = rows
	return &page, nil
}

func (s *Service) Get(ctx context.Context, id, userID string) (*models.Contact, error) {
	c, err := s.contacts.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, contactNotFound()
		}
		return nil, apperr.Internal("Something went wrong", err)
	}
	return c, nil
}

// Create stores the attached photo first, then the record pointing at it.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Contact, error) {
	var photoURL string
	if in.Photo != nil {
		url, err := s.photos.Store(ctx, *in.Photo)
		if err != nil {
			return nil, apperr.Internal("Failed to upload photo", err)
		}
		photoURL = url
	}

	contactType := in.ContactType
	if contactType == "" {
		contactType = models.ContactTypePersonal
	}

	now := time.Now().UTC()
	c := &models.Contact{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        strings.TrimSpace(in.Name),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Email:       strings.TrimSpace(in.Email),
		IsFavourite: in.IsFavourite,
		ContactType: contactType,
		Photo:       photoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		if photoURL != "" {
			s.deletePhoto(ctx, photoURL)
		}
		return nil, apperr.Internal("Something went wrong", err)
	}
	return c, nil
}

// Update patches a contact. A new photo replaces the old one, which is
// deleted before the new one is stored.
func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (*models.Contact, error) {
	current, err := s.contacts.Get(ctx, id, userID)
	if err != nil {
		if in.Photo != nil {
			storage.Discard(s.log, *in.Photo)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, contactNotFound()
		}
		return nil, apperr.Internal("Something went wrong", err)
	}

	patch := in.Patch
	if in.Photo != nil {
		if current.Photo != "" {
			s.deletePhoto(ctx, current.Photo)
		}
		url, err := s.photos.Store(ctx, *in.Photo)
		if err != nil {
			if current.Photo != "" {
				s.clearPhoto(ctx, id, userID)
			}
			return nil, apperr.Internal("Failed to upload photo", err)
		}
		patch.Photo = &url
	}

	updated, err := s.contacts.Update(ctx, id, userID, patch)
	if err != nil {
		if in.Photo != nil && patch.Photo != nil {
			s.deletePhoto(ctx, *patch.Photo)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, contactNotFound()
		}
		return nil, apperr.Internal("Something went wrong", err)
	}
	return updated, nil
}

// Delete removes the contact and, best effort, its photo.
func (s *Service) Delete(ctx context.Context, id, userID string) (*models.Contact, error) {
	current, err := s.contacts.Get(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, contactNotFound()
		}
		return nil, apperr.Internal("Something went wrong", err)
	}

	if current.Photo != "" {
		s.deletePhoto(ctx, current.Photo)
	}

	deleted, err := s.contacts.Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, contactNotFound()
		}
		return nil, apperr.Internal("Something went wrong", err)
	}
	return deleted, nil
}

// clearPhoto drops the reference to a photo that no longer exists.
func (s *Service) clearPhoto(ctx context.Context, id, userID string) {
	empty := ""
	if _, err := s.contacts.Update(ctx, id, userID, models.ContactPatch{Photo: &empty}); err != nil {
		s.log.Warn("failed to clear photo reference", zap.String("contact_id", id), zap.Error(err))
	}
}

func (s *Service) deletePhoto(ctx context.Context, url string) {
	if err := s.photos.Delete(ctx, url); err != nil {
		s.log.Warn("failed to delete photo", zap.String("url", url), zap.Error(err))
	}
}
