// Package fs keeps media objects on local disk under a single root
// directory. Object names are engine-generated and contain no path
// separators, so the namespace stays flat.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	internal_errors "github.com/tatami-dev/tatami/internal/errors"
)

type Store struct {
	rootPath string
}

func New(rootPath string) (*Store, error) {
	p := filepath.Clean(rootPath)
	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", p, err)
	}
	return &Store{rootPath: p}, nil
}

// objectPath rejects names that would escape the root.
func (s *Store) objectPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return filepath.Join(s.rootPath, name), nil
}

func (s *Store) Write(ctx context.Context, name string, data []byte, contentType string) error {
	fullPath, err := s.objectPath(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write object %s: %w", name, err)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	fullPath, err := s.objectPath(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, internal_errors.NotFound
		}
		return nil, fmt.Errorf("failed to open object %s: %w", name, err)
	}
	return file, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	fullPath, err := s.objectPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.rootPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list media root: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
