package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/config"
)

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	b, err := Open(ctx, config.DatabaseConfig{
		Driver:     "sqlite",
		DSN:        filepath.Join(t.TempDir(), "backend.db"),
		MaxRetries: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	defer b.Close(ctx)

	assert.Equal(t, "sqlite", b.Driver)
	assert.NoError(t, b.Ping(ctx))
	assert.NotNil(t, b.Users)
	assert.NotNil(t, b.Sessions)
	assert.NotNil(t, b.Contacts)
}

func TestOpenMemory(t *testing.T) {
	b, err := Open(context.Background(), config.DatabaseConfig{Driver: "memory"}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, b.Ping(context.Background()))
	assert.NoError(t, b.Close(context.Background()))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "cassandra"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}
