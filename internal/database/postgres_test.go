package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return New(conn, DriverPostgres, nil), mock
}

func TestRebind(t *testing.T) {
	pg := New(nil, DriverPostgres, nil)
	lite := New(nil, DriverSQLite, nil)
	q := "SELECT * FROM contacts WHERE id = ? AND user_id = ? LIMIT ?"

	assert.Equal(t, "SELECT * FROM contacts WHERE id = $1 AND user_id = $2 LIMIT $3", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestPostgresCreateUserDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id, name, email, password, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := db.Users().Create(context.Background(), &models.User{ID: "u1", Email: "a@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionReplaceUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	sess := &models.Session{
		ID: "s1", UserID: "u1", AccessToken: "a", RefreshToken: "r",
		AccessTokenValidUntil: now, RefreshTokenValidUntil: now, CreatedAt: now,
	}
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE SET")).
		WithArgs("s1", "u1", "a", "r", now, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, db.Sessions().Replace(context.Background(), sess))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConsumeLosesRace(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE session_id = $1 AND refresh_token = $2")).
		WithArgs("s1", "r1").
		WillReturnRows(sqlmock.NewRows([]string{"session_id", "user_id", "access_token", "refresh_token", "access_token_valid_until", "refresh_token_valid_until", "created_at"}).
			AddRow("s1", "u1", "a1", "r1", now, now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE session_id = $1 AND refresh_token = $2")).
		WithArgs("s1", "r1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := db.Sessions().Consume(context.Background(), "s1", "r1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListBuildsFilteredQuery(t *testing.T) {
	db, mock := newMockDB(t)
	fav := false

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM contacts WHERE user_id = $1 AND contact_type = $2 AND is_favourite = $3")).
		WithArgs("u1", "home", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY phone_number DESC, id DESC LIMIT $4 OFFSET $5")).
		WithArgs("u1", "home", false, 3, 6).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "phone_number", "email", "is_favourite", "contact_type", "photo", "created_at", "updated_at"}).
			AddRow("c7", "u1", "Zed", "999", "", false, "home", "", time.Now(), time.Now()))

	rows, total, err := db.Contacts().List(context.Background(), models.ListQuery{
		UserID: "u1", Page: 3, PerPage: 3, SortBy: models.SortByPhoneNumber, SortOrder: models.SortDesc,
		Filter: models.ContactFilter{ContactType: models.ContactTypeHome, IsFavourite: &fav},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ContactTypeHome, rows[0].ContactType)
	assert.NoError(t, mock.ExpectationsWereMet())
}
