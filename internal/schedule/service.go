// Package schedule runs periodic maintenance of the media tmp directories.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidTTL is returned when the retention for temporary uploads is not positive.
var ErrInvalidTTL = errors.New("tmp ttl must be positive")

// Service purges stale temporary uploads on a cron pattern.
type Service struct {
	cron    *cron.Cron
	parser  cron.Parser
	purger  Purger
	pattern string
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entry   cron.EntryID
	running bool
}

// NewService validates pattern and ttl. An empty pattern yields a Service
// whose Start is a no-op; RunOnce still works.
func NewService(log *slog.Logger, purger Purger, pattern string, ttl time.Duration) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	if purger == nil {
		return nil, fmt.Errorf("purger is required")
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	pattern = strings.TrimSpace(pattern)
	if pattern != "" {
		if _, err := parser.Parse(pattern); err != nil {
			return nil, fmt.Errorf("invalid cron pattern: %w", err)
		}
	}
	return &Service{
		cron:    cron.New(cron.WithParser(parser)),
		parser:  parser,
		purger:  purger,
		pattern: pattern,
		ttl:     ttl,
		logger:  log.With(slog.String("service", "schedule")),
		now:     time.Now,
	}, nil
}

// Enabled reports whether a cleanup pattern is configured.
func (s *Service) Enabled() bool {
	return s.pattern != ""
}

// Start registers the cleanup job and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.Enabled() {
		s.logger.Info("tmp cleanup disabled")
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	job := func() {
		_, _ = s.RunOnce(context.Background())
	}
	entryID, err := s.cron.AddFunc(s.pattern, job)
	if err != nil {
		return err
	}
	s.entry = entryID
	s.running = true
	s.cron.Start()
	s.logger.Info("tmp cleanup scheduled",
		slog.String("pattern", s.pattern),
		slog.Duration("ttl", s.ttl),
	)
	return nil
}

// Stop removes the job and waits for a running purge to finish or ctx to end.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.cron.Remove(s.entry)
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce purges uploads older than the configured ttl.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)
	removed, err := s.purger.PurgeTemporary(ctx, cutoff)
	if err != nil {
		s.logger.Error("tmp cleanup failed",
			slog.Time("cutoff", cutoff),
			slog.Int("removed", removed),
			slog.Any("error", err),
		)
		return removed, err
	}
	s.logger.Debug("tmp cleanup finished", slog.Int("removed", removed))
	return removed, nil
}
