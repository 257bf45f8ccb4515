// Package local archives statements as files in a single directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/loandesk/internal/statement"
)

type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create statement directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// Put writes to a temporary file next to the target and renames it into
// place, so readers see either the previous statement or the new one.
func (s *DirStore) Put(ctx context.Context, key string, r io.Reader) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary statement: %w", err)
	}
	discard := func() {
		if rerr := os.Remove(tmp.Name()); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			slog.Error("failed to remove temporary statement", "file", tmp.Name(), "error", rerr)
		}
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		discard()
		return fmt.Errorf("failed to write statement %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		discard()
		return fmt.Errorf("failed to write statement %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		discard()
		return fmt.Errorf("failed to store statement %s: %w", key, err)
	}
	return nil
}

func (s *DirStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, statement.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open statement %s: %w", key, err)
	}
	return f, nil
}

func (s *DirStore) Remove(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return statement.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to remove statement %s: %w", key, err)
	}
	return nil
}

// path maps key to a file directly inside the store directory. Keys that
// name a subdirectory, a parent, or a hidden file are rejected.
func (s *DirStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", statement.ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key), nil
}
