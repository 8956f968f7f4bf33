package database

// provider.go owns the process-wide connection pool.
//
// The pool is opened explicitly at startup and handed out through Acquire.
// A pool that answered a ping within pingInterval is handed out as-is;
// otherwise Acquire pings it first. When the pool is missing or no longer
// answers, Acquire re-dials it synchronously, blocking only the caller that
// noticed. There is no background health-check loop.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/quizbank/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProviderClosed is returned by Acquire after Close.
var ErrProviderClosed = errors.New("session provider closed")

// Pool is a Session that can be health-checked and closed.
// Satisfied by *pgxpool.Pool.
type Pool interface {
	Session
	Ping(ctx context.Context) error
	Close()
}

// Dialer opens a new Pool.
type Dialer func(ctx context.Context) (Pool, error)

// PgxDialer returns a Dialer that builds a pgxpool from the database config.
func PgxDialer(cfg config.DatabaseConfig) Dialer {
	return func(ctx context.Context) (Pool, error) {
		poolConfig, err := pgxpool.ParseConfig(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse database URL: %w", err)
		}

		poolConfig.MaxConns = int32(cfg.MaxConns)
		poolConfig.MinConns = int32(cfg.MinConns)
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}
		return pool, nil
	}
}

// DefaultPingInterval is how long a successful ping vouches for the pool.
const DefaultPingInterval = 5 * time.Second

// Provider hands out the shared pool and re-establishes it on demand.
type Provider struct {
	dial           Dialer
	connectTimeout time.Duration
	pingInterval   time.Duration
	now            func() time.Time

	mu       sync.Mutex
	pool     Pool
	verified time.Time // last successful ping of pool; zero forces a ping
	closed   bool
}

// NewProvider creates a Provider. The pool is not dialed until Open or the
// first Acquire. A zero pingInterval pings on every Acquire; a negative one
// uses DefaultPingInterval.
func NewProvider(dial Dialer, connectTimeout, pingInterval time.Duration) *Provider {
	if connectTimeout <= 0 {
		connectTimeout = 15 * time.Second
	}
	if pingInterval < 0 {
		pingInterval = DefaultPingInterval
	}
	return &Provider{
		dial:           dial,
		connectTimeout: connectTimeout,
		pingInterval:   pingInterval,
		now:            time.Now,
	}
}

// Open dials and pings the pool. Calling Open on an open provider replaces
// the existing pool.
func (p *Provider) Open(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrProviderClosed
	}
	return p.connectLocked(ctx)
}

// HealthCheck pings the current pool without reconnecting. A failed ping
// makes the next Acquire re-check the pool.
func (p *Provider) HealthCheck(ctx context.Context) error {
	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()

	if pool == nil {
		return errors.New("database not connected")
	}
	err := pool.Ping(ctx)
	p.record(pool, err)
	return err
}

// MarkStale reports that an operation on the pool failed. The next Acquire
// pings the pool, and re-dials it if the ping fails.
func (p *Provider) MarkStale() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.verified = time.Time{}
}

// Acquire returns a live Session. A pool that has not been checked within
// the ping interval is pinged first; a missing or unresponsive pool is
// re-dialed once before giving up.
func (p *Provider) Acquire(ctx context.Context) (Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrProviderClosed
	}
	pool := p.pool
	fresh := pool != nil && !p.verified.IsZero() && p.now().Sub(p.verified) < p.pingInterval
	p.mu.Unlock()

	if fresh {
		return pool, nil
	}

	if pool != nil {
		err := pool.Ping(ctx)
		p.record(pool, err)
		if err == nil {
			return pool, nil
		}
		slog.Warn("database ping failed, reconnecting", "error", err)
	} else {
		slog.Info("database not connected, connecting")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrProviderClosed
	}

	// Another caller may have reconnected while we waited for the lock.
	if p.pool != nil && p.pool != pool {
		return p.pool, nil
	}

	if err := p.connectLocked(ctx); err != nil {
		return nil, err
	}
	return p.pool, nil
}

// Close releases the pool. Acquire fails afterwards.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

// record stores the outcome of a ping of pool, ignoring pools that were
// replaced in the meantime.
func (p *Provider) record(pool Pool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != pool {
		return
	}
	if err != nil {
		p.verified = time.Time{}
		return
	}
	p.verified = p.now()
}

func (p *Provider) connectLocked(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, p.connectTimeout)
	defer cancel()

	pool, err := p.dial(dialCtx)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	if p.pool != nil {
		p.pool.Close()
	}
	p.pool = pool
	p.verified = p.now()
	slog.Info("connected to database")
	return nil
}
