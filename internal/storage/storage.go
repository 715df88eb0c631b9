package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotExist is returned by Read when the named document does not exist
var ErrNotExist = errors.New("content not found")

// Store is a flat collection of markdown documents addressed by file name
type Store interface {
	// List returns the names of all .md documents, sorted.
	List(ctx context.Context) ([]string, error)

	// Read returns the raw bytes of a document, or ErrNotExist.
	Read(ctx context.Context, name string) ([]byte, error)
}

// Storage serves documents from a local directory
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

func NewStorage(basePath string) (*Storage, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path %s is not a directory", basePath)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

// Path returns the directory backing the store
func (s *Storage) Path() string {
	return s.basePath
}

// List returns every .md file directly inside the content directory
func (s *Storage) List(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		s.mu.RLock()
		defer s.mu.RUnlock()

		entries, err := os.ReadDir(s.basePath)
		if err != nil {
			return nil, fmt.Errorf("error reading content directory: %w", err)
		}

		var names []string
		for _, entry := range entries {
			if entry.IsDir() || !IsMarkdown(entry.Name()) {
				continue
			}
			names = append(names, entry.Name())
		}

		sort.Strings(names)
		return names, nil
	}
}

// Read returns the contents of a single document
func (s *Storage) Read(ctx context.Context, name string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		if err := ValidateName(name); err != nil {
			return nil, err
		}

		s.mu.RLock()
		defer s.mu.RUnlock()

		data, err := os.ReadFile(filepath.Join(s.basePath, name))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%s: %w", name, ErrNotExist)
			}
			return nil, fmt.Errorf("failed to read file %s: %w", name, err)
		}

		return data, nil
	}
}

// IsMarkdown reports whether name has a lowercase .md extension, the only one
// a slug can be derived from
func IsMarkdown(name string) bool {
	return strings.HasSuffix(name, ".md")
}

// ValidateName rejects names that would escape the store
func ValidateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid document name %q: %w", name, ErrNotExist)
	}
	return nil
}
