package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

const sessionColumns = "session_id, user_id, access_token, refresh_token, access_token_valid_until, refresh_token_valid_until, created_at"

type sessionStore struct {
	db *DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	var sess models.Session
	err := row.Scan(&sess.ID, &sess.UserID, &sess.AccessToken, &sess.RefreshToken,
		&sess.AccessTokenValidUntil, &sess.RefreshTokenValidUntil, &sess.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

// Replace upserts on user_id so a user never holds two sessions.
func (s *sessionStore) Replace(ctx context.Context, sess *models.Session) error {
	_, err := s.db.exec(ctx, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			session_id = excluded.session_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			access_token_valid_until = excluded.access_token_valid_until,
			refresh_token_valid_until = excluded.refresh_token_valid_until,
			created_at = excluded.created_at`,
		sess.ID, sess.UserID, sess.AccessToken, sess.RefreshToken,
		sess.AccessTokenValidUntil.UTC(), sess.RefreshTokenValidUntil.UTC(), sess.CreatedAt.UTC())
	return translate(err)
}

// Consume reads and deletes in one transaction. The conditional delete
// decides the winner when two callers race on the same refresh token.
func (s *sessionStore) Consume(ctx context.Context, sessionID, refreshToken string) (*models.Session, error) {
	var sess *models.Session
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		sess, err = scanSession(tx.QueryRowContext(ctx,
			s.db.rebind("SELECT "+sessionColumns+" FROM sessions WHERE session_id = ? AND refresh_token = ?"),
			sessionID, refreshToken))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			s.db.rebind("DELETE FROM sessions WHERE session_id = ? AND refresh_token = ?"),
			sessionID, refreshToken)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return sess, nil
}

func (s *sessionStore) GetByAccessToken(ctx context.Context, accessToken string) (*models.Session, error) {
	return scanSession(s.db.queryRow(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE access_token = ?", accessToken))
}

func (s *sessionStore) Delete(ctx context.Context, sessionID string) error {
	_, err := s.db.exec(ctx, "DELETE FROM sessions WHERE session_id = ?", sessionID)
	return translate(err)
}

func (s *sessionStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.exec(ctx, "DELETE FROM sessions WHERE user_id = ?", userID)
	return translate(err)
}

func (s *sessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.exec(ctx, "DELETE FROM sessions WHERE refresh_token_valid_until < ?", now.UTC())
	if err != nil {
		return 0, translate(err)
	}
	return res.RowsAffected()
}
