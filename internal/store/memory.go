package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MediSynth-io/contactbook/internal/models"
)

// Memory is an in-process implementation of all three stores. It is used by
// tests and by the API when no database is configured.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]models.User
	sessions map[string]models.Session // keyed by user id
	contacts map[string]models.Contact
}

func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]models.User),
		sessions: make(map[string]models.Session),
		contacts: make(map[string]models.Contact),
	}
}

// Users returns m as a UserStore.
func (m *Memory) Users() UserStore { return memUsers{m} }

// Sessions returns m as a SessionStore.
func (m *Memory) Sessions() SessionStore { return memSessions{m} }

// Contacts returns m as a ContactStore.
func (m *Memory) Contacts() ContactStore { return memContacts{m} }

type memUsers struct{ m *Memory }

func (s memUsers) Create(_ context.Context, user *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	s.m.users[user.ID] = *user
	return nil
}

func (s memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, u := range s.m.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s memUsers) GetByIDAndEmail(ctx context.Context, id, email string) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(u.Email, email) {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s memUsers) UpdatePassword(_ context.Context, id, passwordHash string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Password = passwordHash
	u.UpdatedAt = time.Now().UTC()
	s.m.users[id] = u
	return nil
}

type memSessions struct{ m *Memory }

func (s memSessions) Replace(_ context.Context, session *models.Session) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.sessions[session.UserID] = *session
	return nil
}

func (s memSessions) Consume(_ context.Context, sessionID, refreshToken string) (*models.Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for userID, sess := range s.m.sessions {
		if sess.ID == sessionID && sess.RefreshToken == refreshToken {
			delete(s.m.sessions, userID)
			return &sess, nil
		}
	}
	return nil, ErrNotFound
}

func (s memSessions) GetByAccessToken(_ context.Context, accessToken string) (*models.Session, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	for _, sess := range s.m.sessions {
		if sess.AccessToken == accessToken {
			return &sess, nil
		}
	}
	return nil, ErrNotFound
}

func (s memSessions) Delete(_ context.Context, sessionID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for userID, sess := range s.m.sessions {
		if sess.ID == sessionID {
			delete(s.m.sessions, userID)
		}
	}
	return nil
}

func (s memSessions) DeleteByUser(_ context.Context, userID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.sessions, userID)
	return nil
}

func (s memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for userID, sess := range s.m.sessions {
		if sess.RefreshExpired(now) {
			delete(s.m.sessions, userID)
			n++
		}
	}
	return n, nil
}

type memContacts struct{ m *Memory }

func (s memContacts) List(_ context.Context, q models.ListQuery) ([]models.Contact, int64, error) {
	s.m.mu.RLock()
	matched := make([]models.Contact, 0)
	for _, c := range s.m.contacts {
		if c.UserID != q.UserID {
			continue
		}
		if q.Filter.ContactType != "" && c.ContactType != q.Filter.ContactType {
			continue
		}
		if q.Filter.IsFavourite != nil && c.IsFavourite != *q.Filter.IsFavourite {
			continue
		}
		matched = append(matched, c)
	}
	s.m.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		less := lessBy(q.SortBy, matched[i], matched[j])
		if q.SortOrder == models.SortDesc {
			return lessBy(q.SortBy, matched[j], matched[i])
		}
		return less
	})

	total := int64(len(matched))
	start := q.Skip()
	if start >= len(matched) {
		return []models.Contact{}, total, nil
	}
	end := len(matched)
	if q.PerPage > 0 && start+q.PerPage < end {
		end = start + q.PerPage
	}
	return matched[start:end], total, nil
}

func lessBy(field string, a, b models.Contact) bool {
	switch field {
	case models.SortByName:
		return a.Name < b.Name
	case models.SortByPhoneNumber:
		return a.PhoneNumber < b.PhoneNumber
	case models.SortByEmail:
		return a.Email < b.Email
	case models.SortByIsFavourite:
		return !a.IsFavourite && b.IsFavourite
	case models.SortByContactType:
		return a.ContactType < b.ContactType
	case models.SortByCreatedAt:
		return a.CreatedAt.Before(b.CreatedAt)
	case models.SortByUpdatedAt:
		return a.UpdatedAt.Before(b.UpdatedAt)
	default:
		return a.ID < b.ID
	}
}

func (s memContacts) Get(_ context.Context, id, userID string) (*models.Contact, error) {
	s.m.mu.RLock()
	defer s.m.mu.RUnlock()
	c, ok := s.m.contacts[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s memContacts) Create(_ context.Context, contact *models.Contact) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.contacts[contact.ID]; ok {
		return ErrDuplicate
	}
	s.m.contacts[contact.ID] = *contact
	return nil
}

func (s memContacts) Update(_ context.Context, id, userID string, patch models.ContactPatch) (*models.Contact, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.contacts[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	patch.Apply(&c)
	c.UpdatedAt = time.Now().UTC()
	s.m.contacts[id] = c
	return &c, nil
}

func (s memContacts) Delete(_ context.Context, id, userID string) (*models.Contact, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	c, ok := s.m.contacts[id]
	if !ok || c.UserID != userID {
		return nil, ErrNotFound
	}
	delete(s.m.contacts, id)
	return &c, nil
}
