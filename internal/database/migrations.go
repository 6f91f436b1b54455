package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Migration represents a database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// GetMigrations returns all migrations for the given driver.
func GetMigrations(driver string) []Migration {
	if driver == DriverPostgres {
		return postgresMigrations
	}
	return sqliteMigrations
}

var postgresMigrations = []Migration{
	{
		Version:     1,
		Description: "Create users table",
		SQL: `CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`,
	},
	{
		Version:     2,
		Description: "Create sessions table",
		SQL: `CREATE TABLE IF NOT EXISTS sessions (
			user_id VARCHAR(36) PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			session_id VARCHAR(36) UNIQUE NOT NULL,
			access_token VARCHAR(64) NOT NULL,
			refresh_token VARCHAR(64) NOT NULL,
			access_token_valid_until TIMESTAMP WITH TIME ZONE NOT NULL,
			refresh_token_valid_until TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_access_token ON sessions(access_token);
		CREATE INDEX IF NOT EXISTS idx_sessions_refresh_valid_until ON sessions(refresh_token_valid_until)`,
	},
	{
		Version:     3,
		Description: "Create contacts table",
		SQL: `CREATE TABLE IF NOT EXISTS contacts (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			phone_number VARCHAR(64) NOT NULL,
			email VARCHAR(255) NOT NULL DEFAULT '',
			is_favourite BOOLEAN NOT NULL DEFAULT FALSE,
			contact_type VARCHAR(16) NOT NULL DEFAULT 'personal',
			photo TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_contacts_user_id ON contacts(user_id)`,
	},
}

var sqliteMigrations = []Migration{
	{
		Version:     1,
		Description: "Create users table",
		SQL: `CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
	{
		Version:     2,
		Description: "Create sessions table",
		SQL: `CREATE TABLE IF NOT EXISTS sessions (
			user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			session_id TEXT UNIQUE NOT NULL,
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL,
			access_token_valid_until DATETIME NOT NULL,
			refresh_token_valid_until DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_access_token ON sessions(access_token);
		CREATE INDEX IF NOT EXISTS idx_sessions_refresh_valid_until ON sessions(refresh_token_valid_until)`,
	},
	{
		Version:     3,
		Description: "Create contacts table",
		SQL: `CREATE TABLE IF NOT EXISTS contacts (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			is_favourite BOOLEAN NOT NULL DEFAULT 0,
			contact_type TEXT NOT NULL DEFAULT 'personal',
			photo TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_contacts_user_id ON contacts(user_id)`,
	},
}

func (db *DB) createMigrationsTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`
	if db.driver == DriverPostgres {
		query = `CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`
	}
	_, err := db.conn.ExecContext(ctx, query)
	return err
}

func (db *DB) appliedMigrations(ctx context.Context) (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := db.conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return applied, err
	}
	defer rows.Close()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return applied, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// RunMigrations applies every pending migration in version order.
func (db *DB) RunMigrations(ctx context.Context) error {
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, m := range GetMigrations(db.driver) {
		if applied[m.Version] {
			continue
		}

		db.log.Info("applying migration", zap.Int("version", m.Version), zap.String("description", m.Description))

		// Split SQL by semicolon and execute each statement
		for _, stmt := range strings.Split(m.SQL, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", m.Version, err)
			}
		}

		if _, err := db.exec(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}
