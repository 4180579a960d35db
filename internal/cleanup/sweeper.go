// Package cleanup removes scratch files left behind by interrupted writes.
package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/p-blackswan/designstore/internal/store"
)

// Config holds configuration for the temp file sweeper.
type Config struct {
	MaxAge        time.Duration // scratch files younger than this are left alone
	CheckInterval time.Duration // 0 sweeps once
}

// Sweeper deletes stale temp files under the store's base directory.
// A write in progress owns a fresh temp file, so only files older than
// MaxAge are removed.
type Sweeper struct {
	cfg    Config
	base   string
	now    func() time.Time
	logger zerolog.Logger
}

// NewSweeper creates a sweeper for the given base directory.
func NewSweeper(cfg Config, base string, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		cfg:    cfg,
		base:   base,
		now:    time.Now,
		logger: logger.With().Str("component", "cleanup").Logger(),
	}
}

// Sweep walks the base directory once and returns how many files it removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.MaxAge)
	removed := 0

	err := filepath.WalkDir(s.base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !store.IsTempFile(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove temp file")
			return nil
		}
		removed++
		s.logger.Debug().Str("path", path).Time("modified", info.ModTime()).Msg("removed stale temp file")
		return nil
	})
	return removed, err
}

// Run sweeps immediately and then every CheckInterval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweepAndLog(ctx)
	if s.cfg.CheckInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepAndLog(ctx)
		}
	}
}

func (s *Sweeper) sweepAndLog(ctx context.Context) {
	n, err := s.Sweep(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error().Err(err).Msg("temp file sweep failed")
		return
	}
	if n > 0 {
		s.logger.Info().Int("removed", n).Msg("stale temp files removed")
	}
}
