package database

import (
	"context"
	"time"

	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

const userColumns = "id, name, email, password, created_at, updated_at"

type userStore struct {
	db *DB
}

func (s *userStore) Create(ctx context.Context, u *models.User) error {
	_, err := s.db.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.Password, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	return translate(err)
}

func (s *userStore) get(ctx context.Context, where string, args ...any) (*models.User, error) {
	var u models.User
	err := s.db.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, args...).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *userStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.get(ctx, "id = ?", id)
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.get(ctx, "email = ?", email)
}

func (s *userStore) GetByIDAndEmail(ctx context.Context, id, email string) (*models.User, error) {
	return s.get(ctx, "id = ? AND email = ?", id, email)
}

func (s *userStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := s.db.exec(ctx, "UPDATE users SET password = ?, updated_at = ? WHERE id = ?",
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
