package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
	"github.com/matzehuels/graphbridge/pkg/module"
)

// FileStore keeps modules as files under a base directory. A module path
// such as "app/main.gb" maps to the file of that relative path.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file store rooted at baseDir.
// If baseDir is empty, the current directory is used.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		baseDir = "."
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "create module dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) modulePath(path string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(path))
}

// Load reads the module file.
func (s *FileStore) Load(ctx context.Context, path string) (data []byte, err error) {
	start := time.Now()
	defer func() { observe(ctx, "load", BackendFile, path, len(data), start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err = os.ReadFile(s.modulePath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(path)
		}
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "read module %s", path)
	}
	return data, nil
}

// Save writes the module file, replacing it atomically.
func (s *FileStore) Save(ctx context.Context, path string, data []byte) (err error) {
	start := time.Now()
	defer func() { observe(ctx, "save", BackendFile, path, len(data), start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.modulePath(path)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "create dir for %s", path)
	}

	tmp := fmt.Sprintf("%s.tmp-%d", target, os.Getpid())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errs.Wrap(errs.ErrCodeStorage, err, "write module %s", path)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return errs.Wrap(errs.ErrCodeStorage, err, "replace module %s", path)
	}
	return nil
}

// List returns the paths of all files under the base directory.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var paths []string
	err := filepath.WalkDir(s.baseDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != s.baseDir && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.baseDir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeStorage, err, "list modules")
	}
	return paths, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ module.Store = (*FileStore)(nil)
