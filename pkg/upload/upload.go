package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/triptally/triptally/pkg/logger"
)

// StagedFile is a file that has been written to disk for a request that may
// still be rejected. Callers must either keep its URL or Cleanup it.
type StagedFile struct {
	FileName string
	FileURL  string
	path     string
}

// Store writes uploaded files into a single directory and serves them
// under the /uploads URL prefix.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes one multipart file to disk under a collision-free name.
func (s *Store) Save(fh *multipart.FileHeader) (*StagedFile, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + "-" + filepath.Base(fh.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &StagedFile{
		FileName: name,
		FileURL:  "/uploads/" + name,
		path:     path,
	}, nil
}

// Cleanup removes staged files after a rejected request. Failures are
// logged and never surfaced; the rejection stands on its own.
func (s *Store) Cleanup(files ...*StagedFile) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			logger.Log.WithError(err).Warnf("failed to remove staged file %s", f.FileName)
		}
	}
}

// RemoveByURL deletes the stored file behind an /uploads URL, best-effort.
func (s *Store) RemoveByURL(fileURL string) {
	if fileURL == "" {
		return
	}
	path := filepath.Join(s.dir, filepath.Base(fileURL))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Log.WithError(err).Warnf("failed to remove file %s", path)
	}
}
