package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrTooLarge is returned when an upload exceeds the configured limit.
var ErrTooLarge = errors.New("file is too large")

// Stage copies r into tempDir under a fresh name that keeps the original
// extension. At most maxSize bytes are accepted.
func Stage(tempDir, originalName, contentType string, r io.Reader, maxSize int64) (StagedFile, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return StagedFile{}, fmt.Errorf("create temp dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	dst := filepath.Join(tempDir, name)

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
	if err != nil {
		return StagedFile{}, fmt.Errorf("create staged file: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, maxSize+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && n > maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(dst)
		return StagedFile{}, err
	}

	return StagedFile{Path: dst, Filename: name, ContentType: contentType}, nil
}
