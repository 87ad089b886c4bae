// Package storage implements the path-addressed file capability over a
// local directory tree: one subdirectory per adapter.FileKind under a
// configured root.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"telegram-job-scout/internal/domain/ports/adapter"
)

var _ adapter.FileStore = (*DirStore)(nil)

type DirStore struct {
	root string
}

// NewDirStore creates the per-kind subdirectories eagerly so later writes
// only race on files, never on directories.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is empty")
	}
	for _, kind := range []adapter.FileKind{
		adapter.FileResumeSource, adapter.FileJobContent, adapter.FileResume, adapter.FileReport,
	} {
		if err := os.MkdirAll(filepath.Join(root, string(kind)), 0o755); err != nil {
			return nil, fmt.Errorf("create %s dir: %w", kind, err)
		}
	}
	return &DirStore{root: root}, nil
}

func (s *DirStore) path(kind adapter.FileKind, name string) (string, error) {
	// Reject path escapes; names are always flat files under the kind dir.
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.root, string(kind), name), nil
}

func (s *DirStore) Write(ctx context.Context, kind adapter.FileKind, name string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := s.path(kind, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(p, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

func (s *DirStore) Read(ctx context.Context, kind adapter.FileKind, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := s.path(kind, name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return b, nil
}

func (s *DirStore) List(ctx context.Context, kind adapter.FileKind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// SafeFileName builds a filesystem-safe file name from free-form parts,
// mirroring how scraped company and title strings become content doc names.
func SafeFileName(parts ...string) string {
	keep := func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		c := strings.Map(keep, p)
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(cleaned, "_")
}
