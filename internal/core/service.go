package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/quizbank/internal/database"
)

// DefaultImportTimeout bounds a single import transaction.
const DefaultImportTimeout = 10 * time.Minute

// DefaultQueryTimeout bounds lookups, adds and deletes.
const DefaultQueryTimeout = 30 * time.Second

// SessionProvider hands out database sessions. Satisfied by
// *database.Provider, which reconnects lazily.
type SessionProvider interface {
	Acquire(ctx context.Context) (database.Session, error)
	HealthCheck(ctx context.Context) error
	// MarkStale makes the next Acquire verify the connection.
	MarkStale()
}

// Config holds the service settings that come from configuration.
type Config struct {
	ColumnPolicy  ColumnPolicy
	MirrorToCBT   bool
	ImportTimeout time.Duration
	QueryTimeout  time.Duration
}

// Service provides the business logic for questions, scores and imports.
type Service struct {
	sessions SessionProvider
	limiter  *ImportLimiter
	metrics  *Metrics
	cfg      Config
}

// NewService creates a Service. A nil limiter gets the defaults; a nil
// metrics records nothing.
func NewService(sessions SessionProvider, limiter *ImportLimiter, metrics *Metrics, cfg Config) *Service {
	if limiter == nil {
		limiter = NewImportLimiter(0, 0)
	}
	if cfg.ColumnPolicy == "" {
		cfg.ColumnPolicy = ColumnPolicyLenient
	}
	if cfg.ImportTimeout <= 0 {
		cfg.ImportTimeout = DefaultImportTimeout
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	return &Service{
		sessions: sessions,
		limiter:  limiter,
		metrics:  metrics,
		cfg:      cfg,
	}
}

// HealthCheck pings the database without reconnecting.
func (s *Service) HealthCheck(ctx context.Context) error {
	return s.sessions.HealthCheck(ctx)
}

// ImportStatus reports the import limiter's state.
func (s *Service) ImportStatus() ImportLimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until running imports finish or ctx ends.
// Used during graceful shutdown.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// session acquires a live session, converting failures to *ConnectionError.
func (s *Service) session(ctx context.Context) (database.Session, error) {
	sess, err := s.sessions.Acquire(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "acquire session", Err: err}
	}
	return sess, nil
}

// connectionLost reports whether err means the session stopped working, and
// if so tells the provider to re-check it before the next use.
func (s *Service) connectionLost(err error) bool {
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		return false
	}
	s.sessions.MarkStale()
	return true
}
