package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// fileKV stores one file per key under a root directory.
//
// Layout:
//
//	<root>/kv/<key>.val
//
// Keys are sanitized to a filename-safe form; anything unusual is hashed.
type fileKV struct {
	root string
}

var safeKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// DefaultStorageRoot returns the durable on-device storage directory.
// Prefers XDG data dir (Linux/macOS). If unavailable, falls back to
// ~/.local/share, then the system temp dir.
func DefaultStorageRoot() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "aichat", "storage")
	}
	if base, err := os.UserHomeDir(); err == nil && base != "" {
		return filepath.Join(base, ".local", "share", "aichat", "storage")
	}
	return filepath.Join(os.TempDir(), "aichat", "storage")
}

func newFileKV(root string) *fileKV {
	return &fileKV{root: root}
}

func (s *fileKV) path(key string) string {
	name := key
	if !safeKey.MatchString(key) {
		sum := sha256.Sum256([]byte(key))
		name = hex.EncodeToString(sum[:])[:16]
	}
	return filepath.Join(s.root, "kv", name+".val")
}

func (s *fileKV) Get(ctx context.Context, key string) (string, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(b), nil
}

func (s *fileKV) Set(ctx context.Context, key string, value string) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(value), 0o644)
}

func (s *fileKV) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *fileKV) Close() error { return nil }
