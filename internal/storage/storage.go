// Package storage persists contact photos either in remote object storage
// or in a local uploads directory. Callers work against PhotoStorage and
// never learn which variant is active.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/MediSynth-io/contactbook/internal/config"
)

// StagedFile is an upload written to the temp directory, waiting to be
// handed to a PhotoStorage.
type StagedFile struct {
	Path        string
	Filename    string
	ContentType string
}

// PhotoStorage stores staged photos and deletes stored ones by URL.
type PhotoStorage interface {
	// Store persists the staged file and returns its URL. The staged copy
	// is gone afterwards, whether or not Store succeeded.
	Store(ctx context.Context, f StagedFile) (string, error)
	// Delete removes the photo behind url. Implementations treat a photo
	// that is already gone as success.
	Delete(ctx context.Context, url string) error
}

// New selects the remote or local variant from cfg.
func New(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (PhotoStorage, error) {
	if cfg.Remote {
		return NewS3Storage(ctx, cfg.S3, log)
	}
	return NewLocalStorage(cfg.UploadDir, log)
}

// PublicID is the basename of the URL path with its extension stripped.
func PublicID(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	base := path.Base(p)
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Discard deletes a staged file that will not be stored.
func Discard(log *zap.Logger, f StagedFile) {
	if f.Path != "" {
		removeStaged(log, f.Path)
	}
}

// removeStaged deletes a staged file, logging instead of failing.
func removeStaged(log *zap.Logger, p string) {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		log.Warn("failed to delete staged file", zap.String("path", p), zap.Error(err))
	}
}

func wrapStoreErr(op string, err error) error {
	return fmt.Errorf("photo %s: %w", op, err)
}
