// Package backend opens the store implementation named in the config.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/config"
	"github.com/MediSynth-io/contactbook/internal/database"
	"github.com/MediSynth-io/contactbook/internal/store"
	"github.com/MediSynth-io/contactbook/internal/store/mongostore"
)

// Backend bundles the three stores with the lifecycle of their connection.
type Backend struct {
	Users    store.UserStore
	Sessions store.SessionStore
	Contacts store.ContactStore

	Driver string
	ping   func(context.Context) error
	close  func(context.Context) error
}

func (b *Backend) Ping(ctx context.Context) error {
	if b.ping == nil {
		return nil
	}
	return b.ping(ctx)
}

func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the configured driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Backend, error) {
	switch cfg.Driver {
	case "mongo":
		s, err := mongostore.Connect(ctx, cfg.URI, cfg.Name, cfg.MaxRetries, cfg.RetryDelay, log)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Users:    s.Users(),
			Sessions: s.Sessions(),
			Contacts: s.Contacts(),
			Driver:   cfg.Driver,
			ping:     s.Ping,
			close:    s.Close,
		}, nil

	case database.DriverSQLite, database.DriverPostgres:
		db, err := database.Open(ctx, cfg.Driver, cfg.DSN, cfg.MaxRetries, cfg.RetryDelay, log)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Users:    db.Users(),
			Sessions: db.Sessions(),
			Contacts: db.Contacts(),
			Driver:   cfg.Driver,
			ping:     db.Ping,
			close:    func(context.Context) error { return db.Close() },
		}, nil

	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return Memory(), nil
	}
	return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
}

// Memory returns a backend over a fresh in-process store.
func Memory() *Backend {
	m := store.NewMemory()
	return &Backend{
		Users:    m.Users(),
		Sessions: m.Sessions(),
		Contacts: m.Contacts(),
		Driver:   "memory",
	}
}
