package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	perrors "github.com/p-blackswan/designstore/internal/errors"
	"github.com/p-blackswan/designstore/lru"
)

// Config holds the storage settings fixed at process start.
type Config struct {
	// BaseDir is the root under which every project directory lives.
	BaseDir string
	// CacheSize is the number of raw documents kept in memory. 0 disables caching.
	CacheSize int
}

// Store reads and writes JSON documents under a Layout.
//
// The read cache assumes this process is the only writer under BaseDir.
// Within the process, gens counts the renames and removals applied to each
// cached path so a read that raced one of them never repopulates the cache.
type Store struct {
	layout Layout
	cache  *lru.Cache[string, []byte]
	logger zerolog.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

// New creates a store rooted at cfg.BaseDir. The base directory itself is
// created lazily by the first write.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("%w: storage base directory is empty", perrors.ErrInvalidInput)
	}
	abs, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	s := &Store{
		layout: NewLayout(abs),
		gens:   make(map[string]uint64),
		logger: logger.With().Str("component", "store").Logger(),
	}
	if cfg.CacheSize > 0 {
		s.cache = lru.New[string, []byte](cfg.CacheSize)
	}

	s.logger.Debug().
		Str("base_dir", abs).
		Int("cache_size", cfg.CacheSize).
		Msg("document store initialized")
	return s, nil
}

// Layout returns the path resolver for this store.
func (s *Store) Layout() Layout {
	return s.layout
}

// EnsureProjectLayout creates <base>/<projectId> and its modules directory.
// Existing directories are left as they are.
func (s *Store) EnsureProjectLayout(projectID string) error {
	for _, dir := range []string{
		s.layout.ProjectDir(projectID),
		s.layout.Dir(projectID, KindModule),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return perrors.NewStorageError("mkdir", dir, err)
		}
	}
	return nil
}

// Probe checks that the base directory exists and accepts writes.
func (s *Store) Probe() error {
	base := s.layout.Base()
	if err := os.MkdirAll(base, 0o755); err != nil {
		return perrors.NewStorageError("mkdir", base, err)
	}
	f, err := os.CreateTemp(base, ".probe-*")
	if err != nil {
		return perrors.NewStorageError("probe", base, err)
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return perrors.NewStorageError("probe", name, err)
	}
	return nil
}
