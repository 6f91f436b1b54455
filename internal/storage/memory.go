package storage

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryStorage records calls instead of keeping files. Staged files are
// removed on Store like the real variants do.
type MemoryStorage struct {
	mu    sync.Mutex
	calls []string

	StoreErr  error
	DeleteErr error
}

func (m *MemoryStorage) Store(_ context.Context, f StagedFile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.Path != "" {
		removeStaged(zap.NewNop(), f.Path)
	}
	if m.StoreErr != nil {
		return "", m.StoreErr
	}
	url := "memory://photos/" + f.Filename
	m.calls = append(m.calls, "store "+url)
	return url, nil
}

func (m *MemoryStorage) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete "+url)
	return m.DeleteErr
}

// Calls returns every successful store and every delete attempt, in order,
// as "store <url>" or "delete <url>".
func (m *MemoryStorage) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
