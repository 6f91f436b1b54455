package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

// DatabaseTestSuite runs the stores against a throwaway SQLite file.
type DatabaseTestSuite struct {
	suite.Suite
	db  *DB
	ctx context.Context
}

func TestDatabaseTestSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}

func (s *DatabaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	dsn := filepath.Join(s.T().TempDir(), "data", "contactbook_test.db")
	db, err := Open(s.ctx, DriverSQLite, dsn, 1, 0, zap.NewNop())
	s.Require().NoError(err, "Database initialization should succeed")
	s.db = db
}

func (s *DatabaseTestSuite) TearDownTest() {
	s.NoError(s.db.Close())
}

func (s *DatabaseTestSuite) createUser(email string) *models.User {
	now := time.Now().UTC()
	u := &models.User{ID: uuid.NewString(), Name: "Test User", Email: email, Password: "hash", CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.db.Users().Create(s.ctx, u))
	return u
}

func (s *DatabaseTestSuite) TestMigrationsAreIdempotent() {
	s.NoError(s.db.RunMigrations(s.ctx))

	applied, err := s.db.appliedMigrations(s.ctx)
	s.Require().NoError(err)
	s.Len(applied, len(sqliteMigrations))
}

func (s *DatabaseTestSuite) TestCreateAndGetUser() {
	user := s.createUser("test@example.com")

	got, err := s.db.Users().GetByEmail(s.ctx, "test@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)
	s.Equal("hash", got.Password)

	_, err = s.db.Users().GetByIDAndEmail(s.ctx, user.ID, "other@example.com")
	s.ErrorIs(err, store.ErrNotFound)

	err = s.db.Users().Create(s.ctx, &models.User{ID: uuid.NewString(), Name: "Dup", Email: "test@example.com", Password: "x"})
	s.ErrorIs(err, store.ErrDuplicate)
}

func (s *DatabaseTestSuite) TestUpdatePassword() {
	user := s.createUser("pw@example.com")

	s.Require().NoError(s.db.Users().UpdatePassword(s.ctx, user.ID, "newhash"))
	got, err := s.db.Users().GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("newhash", got.Password)

	s.ErrorIs(s.db.Users().UpdatePassword(s.ctx, "missing", "x"), store.ErrNotFound)
}

func (s *DatabaseTestSuite) TestSessionReplaceKeepsOnePerUser() {
	user := s.createUser("session@example.com")
	sessions := s.db.Sessions()
	now := time.Now().UTC()

	for i := 1; i <= 2; i++ {
		s.Require().NoError(sessions.Replace(s.ctx, &models.Session{
			ID:                     fmt.Sprintf("s%d", i),
			UserID:                 user.ID,
			AccessToken:            fmt.Sprintf("a%d", i),
			RefreshToken:           fmt.Sprintf("r%d", i),
			AccessTokenValidUntil:  now.Add(15 * time.Minute),
			RefreshTokenValidUntil: now.Add(time.Hour),
			CreatedAt:              now,
		}))
	}

	_, err := sessions.GetByAccessToken(s.ctx, "a1")
	s.ErrorIs(err, store.ErrNotFound)

	got, err := sessions.GetByAccessToken(s.ctx, "a2")
	s.Require().NoError(err)
	s.Equal("s2", got.ID)
	s.Equal(user.ID, got.UserID)
}

func (s *DatabaseTestSuite) TestSessionConsumeOnlyOnce() {
	user := s.createUser("consume@example.com")
	sessions := s.db.Sessions()
	now := time.Now().UTC()
	s.Require().NoError(sessions.Replace(s.ctx, &models.Session{
		ID: "s1", UserID: user.ID, AccessToken: "a1", RefreshToken: "r1",
		AccessTokenValidUntil: now, RefreshTokenValidUntil: now.Add(time.Hour), CreatedAt: now,
	}))

	_, err := sessions.Consume(s.ctx, "s1", "wrong")
	s.ErrorIs(err, store.ErrNotFound)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sessions.Consume(s.ctx, "s1", "r1"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, wins)
}

func (s *DatabaseTestSuite) TestCleanupExpiredSessions() {
	expired := s.createUser("expired@example.com")
	valid := s.createUser("valid@example.com")
	sessions := s.db.Sessions()
	now := time.Now().UTC()

	s.Require().NoError(sessions.Replace(s.ctx, &models.Session{
		ID: "old", UserID: expired.ID, AccessToken: "a-old", RefreshToken: "r-old",
		AccessTokenValidUntil: now.Add(-2 * time.Hour), RefreshTokenValidUntil: now.Add(-time.Hour), CreatedAt: now,
	}))
	s.Require().NoError(sessions.Replace(s.ctx, &models.Session{
		ID: "new", UserID: valid.ID, AccessToken: "a-new", RefreshToken: "r-new",
		AccessTokenValidUntil: now.Add(time.Minute), RefreshTokenValidUntil: now.Add(time.Hour), CreatedAt: now,
	}))

	n, err := sessions.DeleteExpired(s.ctx, now)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	_, err = sessions.GetByAccessToken(s.ctx, "a-new")
	s.NoError(err)
}

func (s *DatabaseTestSuite) TestContactPagination() {
	user := s.createUser("contacts@example.com")
	contacts := s.db.Contacts()
	now := time.Now().UTC()

	for i := 0; i < 10; i++ {
		s.Require().NoError(contacts.Create(s.ctx, &models.Contact{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			Name:        fmt.Sprintf("friend-%02d", i),
			PhoneNumber: "555-0100",
			ContactType: models.ContactTypePersonal,
			IsFavourite: i < 3,
			CreatedAt:   now,
			UpdatedAt:   now,
		}))
	}

	rows, total, err := contacts.List(s.ctx, models.ListQuery{
		UserID: user.ID, Page: 2, PerPage: 4, SortBy: models.SortByName, SortOrder: models.SortDesc,
	})
	s.Require().NoError(err)
	s.Equal(int64(10), total)
	s.Require().Len(rows, 4)
	s.Equal("friend-05", rows[0].Name)

	fav := true
	rows, total, err = contacts.List(s.ctx, models.ListQuery{
		UserID: user.ID, Page: 1, PerPage: 10, SortBy: models.SortByID, SortOrder: models.SortAsc,
		Filter: models.ContactFilter{IsFavourite: &fav, ContactType: models.ContactTypePersonal},
	})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(rows, 3)

	rows, total, err = contacts.List(s.ctx, models.ListQuery{UserID: "someone-else", Page: 1, PerPage: 10, SortBy: models.SortByID})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(rows)
}

func (s *DatabaseTestSuite) TestContactUpdateAndDelete() {
	owner := s.createUser("owner@example.com")
	other := s.createUser("other@example.com")
	contacts := s.db.Contacts()
	now := time.Now().UTC()
	id := uuid.NewString()
	s.Require().NoError(contacts.Create(s.ctx, &models.Contact{
		ID: id, UserID: owner.ID, Name: "Bob", PhoneNumber: "123", ContactType: models.ContactTypeWork,
		CreatedAt: now, UpdatedAt: now,
	}))

	name := "Robert"
	fav := true
	_, err := contacts.Update(s.ctx, id, other.ID, models.ContactPatch{Name: &name})
	s.ErrorIs(err, store.ErrNotFound)

	updated, err := contacts.Update(s.ctx, id, owner.ID, models.ContactPatch{Name: &name, IsFavourite: &fav})
	s.Require().NoError(err)
	s.Equal("Robert", updated.Name)
	s.True(updated.IsFavourite)
	s.Equal("123", updated.PhoneNumber)
	s.Equal(models.ContactTypeWork, updated.ContactType)

	_, err = contacts.Delete(s.ctx, id, other.ID)
	s.ErrorIs(err, store.ErrNotFound)

	deleted, err := contacts.Delete(s.ctx, id, owner.ID)
	s.Require().NoError(err)
	s.Equal("Robert", deleted.Name)

	_, err = contacts.Get(s.ctx, id, owner.ID)
	s.ErrorIs(err, store.ErrNotFound)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "", 1, 0, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}
