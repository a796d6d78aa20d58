package upload

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Settings is the immutable storage configuration handed to the storage at
// construction time.
type Settings struct {
	Dir               string
	AllowedExtensions []string
	MaxBytes          int64
}

// LocalStorage saves product images on the local filesystem.
type LocalStorage struct {
	settings Settings
}

func NewLocalStorage(settings Settings) *LocalStorage {
	return &LocalStorage{settings: settings}
}

// Save writes the stream to the storage dir under the given file name and
// returns the stored path. Disallowed extensions and oversize streams are
// rejected before anything is kept on disk.
func (s *LocalStorage) Save(name string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if !s.allowed(ext) {
		return "", fmt.Errorf("extension '%s' is not allowed", ext)
	}

	if err := os.MkdirAll(s.settings.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(s.settings.Dir, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, s.settings.MaxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if written > s.settings.MaxBytes {
		os.Remove(path)
		return "", fmt.Errorf("file exceeds the %d byte limit", s.settings.MaxBytes)
	}

	return path, nil
}

func (s *LocalStorage) allowed(ext string) bool {
	for _, allowed := range s.settings.AllowedExtensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}
