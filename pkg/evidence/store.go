package evidence

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AvatarPrefix holds profile images, which the janitor must never touch.
const AvatarPrefix = "avatars/"

// Store persists photo evidence on disk under a base directory and exposes
// public URLs for stored objects.
type Store struct {
	baseDir string
	baseURL string
}

// NewStore ensures the base directory exists and returns a handle.
func NewStore(baseDir, publicBaseURL string) (*Store, error) {
	if baseDir == "" {
		baseDir = "./evidence"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence directory: %w", err)
	}
	return &Store{baseDir: baseDir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// SubmissionPath builds the canonical object path for manual photo evidence.
func SubmissionPath(userID, ext string) string {
	return fmt.Sprintf("%s/%d.%s", userID, time.Now().UnixMilli(), strings.TrimPrefix(ext, "."))
}

// AvatarPath builds the object path for a profile image.
func AvatarPath(ext string) string {
	return fmt.Sprintf("%s%d-%04d.%s", AvatarPrefix, time.Now().UnixMilli(), rand.Intn(10000), strings.TrimPrefix(ext, "."))
}

// Upload writes the bytes under the given relative path and returns the
// public URL of the stored object.
func (s *Store) Upload(path string, data []byte) (string, error) {
	full := s.resolve(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("prepare evidence directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write evidence file: %w", err)
	}
	return s.PublicURL(path), nil
}

// PublicURL maps a stored object path to its public URL.
func (s *Store) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Delete removes a stored object if present.
func (s *Store) Delete(path string) error {
	if err := os.Remove(s.resolve(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete evidence file: %w", err)
	}
	return nil
}

// CleanupOlderThan removes evidence objects older than the provided TTL,
// skipping everything under the avatars prefix, and returns deleted paths.
func (s *Store) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	deleted := make([]string, 0)
	err := filepath.WalkDir(s.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, path)
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.ToSlash(rel), AvatarPrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		deleted = append(deleted, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("cleanup evidence: %w", err)
	}
	return deleted, nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *Store) Path(path string) string {
	return s.resolve(path)
}

func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.baseDir, path)
}
