package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"
)

// UploadsPrefix is the URL namespace local photos are served under.
const UploadsPrefix = "/uploads/"

// LocalStorage moves staged files into a persistent uploads directory.
type LocalStorage struct {
	dir string
	log *zap.Logger
}

func NewLocalStorage(dir string, log *zap.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir, log: log}, nil
}

// Dir returns the directory photos are kept in.
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Store(_ context.Context, f StagedFile) (string, error) {
	dst := filepath.Join(s.dir, filepath.Base(f.Filename))

	if err := os.Rename(f.Path, dst); err != nil {
		// Rename fails across filesystems; fall back to copying.
		if cerr := copyFile(f.Path, dst); cerr != nil {
			s.log.Error("failed to save file to uploads", zap.String("path", f.Path), zap.Error(cerr))
			removeStaged(s.log, f.Path)
			return "", wrapStoreErr("store", cerr)
		}
		removeStaged(s.log, f.Path)
	}
	return UploadsPrefix + filepath.Base(f.Filename), nil
}

func (s *LocalStorage) Delete(_ context.Context, url string) error {
	if url == "" {
		return nil
	}
	p := filepath.Join(s.dir, path.Base(url))
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			s.log.Warn("photo already missing from uploads", zap.String("path", p))
			return nil
		}
		return wrapStoreErr("delete", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
