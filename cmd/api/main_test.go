package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAPI(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "app.yml")

	configContent := fmt.Sprintf(`
api_port: 8080
auth:
  reset_secret: test-secret
database:
  driver: memory
storage:
  upload_dir: %s
  temp_dir: %s
`, filepath.Join(dir, "uploads"), filepath.Join(dir, "temp"))
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	a, err := initializeAPI(context.Background(), configPath)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 8080, a.api.Config.APIPort)
	assert.Equal(t, "memory", a.backend.Driver)
	assert.NoError(t, a.backend.Close(context.Background()))

	a, err = initializeAPI(context.Background(), filepath.Join(dir, "missing.yml"))
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestInitializeAPIRejectsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "app.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("api_port: 0\ndatabase:\n  driver: memory\n"), 0644))

	a, err := initializeAPI(context.Background(), configPath)
	assert.Error(t, err)
	assert.Nil(t, a)
}
