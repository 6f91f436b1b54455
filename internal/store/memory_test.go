package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MediSynth-io/contactbook/internal/models"
)

func TestMemoryUsers(t *testing.T) {
	ctx := context.Background()
	users := NewMemory().Users()

	u := &models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Password: "hash"}
	require.NoError(t, users.Create(ctx, u))

	err := users.Create(ctx, &models.User{ID: "u2", Email: "ANN@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := users.GetByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = users.GetByIDAndEmail(ctx, "u1", "other@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, users.UpdatePassword(ctx, "u1", "newhash"))
	got, err = users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.Password)

	assert.ErrorIs(t, users.UpdatePassword(ctx, "missing", "x"), ErrNotFound)
}

func TestMemorySessionsReplaceKeepsOnePerUser(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemory().Sessions()
	now := time.Now()

	first := &models.Session{ID: "s1", UserID: "u1", AccessToken: "a1", RefreshToken: "r1", RefreshTokenValidUntil: now.Add(time.Hour)}
	second := &models.Session{ID: "s2", UserID: "u1", AccessToken: "a2", RefreshToken: "r2", RefreshTokenValidUntil: now.Add(time.Hour)}
	require.NoError(t, sessions.Replace(ctx, first))
	require.NoError(t, sessions.Replace(ctx, second))

	_, err := sessions.GetByAccessToken(ctx, "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := sessions.GetByAccessToken(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "s2", got.ID)
}

func TestMemorySessionsConsumeOnce(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemory().Sessions()
	require.NoError(t, sessions.Replace(ctx, &models.Session{ID: "s1", UserID: "u1", RefreshToken: "r1"}))

	_, err := sessions.Consume(ctx, "s1", "wrong")
	assert.ErrorIs(t, err, ErrNotFound)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sessions.Consume(ctx, "s1", "r1"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestMemorySessionsDeleteExpired(t *testing.T) {
	ctx := context.Background()
	sessions := NewMemory().Sessions()
	now := time.Now()

	require.NoError(t, sessions.Replace(ctx, &models.Session{ID: "old", UserID: "u1", AccessToken: "a1", RefreshTokenValidUntil: now.Add(-time.Minute)}))
	require.NoError(t, sessions.Replace(ctx, &models.Session{ID: "new", UserID: "u2", AccessToken: "a2", RefreshTokenValidUntil: now.Add(time.Hour)}))

	n, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = sessions.GetByAccessToken(ctx, "a2")
	assert.NoError(t, err)
	assert.NoError(t, sessions.Delete(ctx, "does-not-exist"))
}

func TestMemoryContactsListPagination(t *testing.T) {
	ctx := context.Background()
	contacts := NewMemory().Contacts()

	for i := 0; i < 10; i++ {
		require.NoError(t, contacts.Create(ctx, &models.Contact{
			ID:          fmt.Sprintf("c%02d", i),
			UserID:      "u1",
			Name:        fmt.Sprintf("name-%02d", 9-i),
			ContactType: models.ContactTypeWork,
			IsFavourite: i%2 == 0,
		}))
	}
	require.NoError(t, contacts.Create(ctx, &models.Contact{ID: "x", UserID: "u2", ContactType: models.ContactTypeWork}))

	rows, total, err := contacts.List(ctx, models.ListQuery{UserID: "u1", Page: 2, PerPage: 4, SortBy: models.SortByName, SortOrder: models.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
	require.Len(t, rows, 4)
	assert.Equal(t, "name-04", rows[0].Name)

	fav := true
	rows, total, err = contacts.List(ctx, models.ListQuery{UserID: "u1", Page: 1, PerPage: 10, SortBy: models.SortByID, SortOrder: models.SortDesc, Filter: models.ContactFilter{IsFavourite: &fav}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, "c08", rows[0].ID)

	rows, _, err = contacts.List(ctx, models.ListQuery{UserID: "u1", Page: 5, PerPage: 4})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemoryContactsScopedByOwner(t *testing.T) {
	ctx := context.Background()
	contacts := NewMemory().Contacts()
	require.NoError(t, contacts.Create(ctx, &models.Contact{ID: "c1", UserID: "u1", Name: "Bob"}))

	_, err := contacts.Get(ctx, "c1", "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	name := "Robert"
	_, err = contacts.Update(ctx, "c1", "u2", models.ContactPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := contacts.Update(ctx, "c1", "u1", models.ContactPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Robert", updated.Name)

	_, err = contacts.Delete(ctx, "c1", "u2")
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := contacts.Delete(ctx, "c1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "c1", deleted.ID)
}
