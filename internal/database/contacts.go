package database

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/MediSynth-io/contactbook/internal/models"
	"github.com/MediSynth-io/contactbook/internal/store"
)

const contactColumns = "id, user_id, name, phone_number, email, is_favourite, contact_type, photo, created_at, updated_at"

// sortColumns maps the sortable JSON field names onto columns. Anything not
// in this map never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	models.SortByID:          "id",
	models.SortByName:        "name",
	models.SortByPhoneNumber: "phone_number",
	models.SortByEmail:       "email",
	models.SortByIsFavourite: "is_favourite",
	models.SortByContactType: "contact_type",
	models.SortByCreatedAt:   "created_at",
	models.SortByUpdatedAt:   "updated_at",
}

type contactStore struct {
	db *DB
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var contactType string
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.PhoneNumber, &c.Email,
		&c.IsFavourite, &contactType, &c.Photo, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	c.ContactType = models.ContactType(contactType)
	return &c, nil
}

func listWhere(q models.ListQuery) (string, []any) {
	clauses := []string{"user_id = ?"}
	args := []any{q.UserID}
	if q.Filter.ContactType != "" {
		clauses = append(clauses, "contact_type = ?")
		args = append(args, string(q.Filter.ContactType))
	}
	if q.Filter.IsFavourite != nil {
		clauses = append(clauses, "is_favourite = ?")
		args = append(args, *q.Filter.IsFavourite)
	}
	return strings.Join(clauses, " AND "), args
}

func (s *contactStore) List(ctx context.Context, q models.ListQuery) ([]models.Contact, int64, error) {
	where, args := listWhere(q)

	var total int64
	if err := s.db.queryRow(ctx, "SELECT COUNT(*) FROM contacts WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "id"
	}
	dir := "ASC"
	if q.SortOrder == models.SortDesc {
		dir = "DESC"
	}
	order := col + " " + dir
	if col != "id" {
		order += ", id " + dir
	}

	query := "SELECT " + contactColumns + " FROM contacts WHERE " + where + " ORDER BY " + order
	if q.PerPage > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.PerPage, q.Skip())
	}

	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts := make([]models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (s *contactStore) Get(ctx context.Context, id, userID string) (*models.Contact, error) {
	return scanContact(s.db.queryRow(ctx,
		"SELECT "+contactColumns+" FROM contacts WHERE id = ? AND user_id = ?", id, userID))
}

func (s *contactStore) Create(ctx context.Context, c *models.Contact) error {
	_, err := s.db.exec(ctx,
		"INSERT INTO contacts ("+contactColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.UserID, c.Name, c.PhoneNumber, c.Email, c.IsFavourite,
		string(c.ContactType), c.Photo, c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	return translate(err)
}

func patchSet(p models.ContactPatch) (string, []any) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.PhoneNumber != nil {
		add("phone_number", *p.PhoneNumber)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.IsFavourite != nil {
		add("is_favourite", *p.IsFavourite)
	}
	if p.ContactType != nil {
		add("contact_type", string(*p.ContactType))
	}
	if p.Photo != nil {
		add("photo", *p.Photo)
	}
	return strings.Join(sets, ", "), args
}

func (s *contactStore) Update(ctx context.Context, id, userID string, patch models.ContactPatch) (*models.Contact, error) {
	set, args := patchSet(patch)
	args = append(args, id, userID)

	var c *models.Contact
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.db.rebind("UPDATE contacts SET "+set+" WHERE id = ? AND user_id = ?"), args...)
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
		c, err = scanContact(tx.QueryRowContext(ctx,
			s.db.rebind("SELECT "+contactColumns+" FROM contacts WHERE id = ? AND user_id = ?"), id, userID))
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (s *contactStore) Delete(ctx context.Context, id, userID string) (*models.Contact, error) {
	var c *models.Contact
	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		c, err = scanContact(tx.QueryRowContext(ctx,
			s.db.rebind("SELECT "+contactColumns+" FROM contacts WHERE id = ? AND user_id = ?"), id, userID))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, s.db.rebind("DELETE FROM contacts WHERE id = ? AND user_id = ?"), id, userID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return c, nil
}
