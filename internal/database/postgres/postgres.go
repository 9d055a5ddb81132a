// Package postgres stores the known-face gallery and evaluation runs in
// PostgreSQL with pgvector.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/kozaktomas/faceval/internal/config"
	"github.com/kozaktomas/faceval/internal/database"
	"github.com/kozaktomas/faceval/internal/event"
)

var log = event.Log

const (
	connectTimeout  = 10 * time.Second
	connMaxLifetime = time.Hour
	connMaxIdleTime = 10 * time.Minute
)

// Pool wraps the database handle shared by the gallery and run repositories.
type Pool struct {
	db *sql.DB
}

var (
	active   *Pool
	activeMu sync.RWMutex
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Debugf("postgres: connected (max %d open, %d idle)", cfg.MaxOpenConns, cfg.MaxIdleConns)
	return &Pool{db: db}, nil
}

// Close releases all connections.
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	if err := p.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func (p *Pool) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return p.db.QueryRowContext(ctx, query, args...)
}

func (p *Pool) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

func (p *Pool) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := p.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}

// Active returns the pool set up by Initialize, or nil.
func Active() *Pool {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return active
}

// Initialize opens the pool, migrates the schema and registers the gallery
// and run repositories with the database package. Repeated calls reuse the
// first pool.
func Initialize(ctx context.Context, cfg *config.DatabaseConfig) (*Pool, error) {
	activeMu.Lock()
	defer activeMu.Unlock()
	if active != nil {
		return active, nil
	}

	pool, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	active = pool
	database.RegisterPostgresBackend(
		func() database.GalleryStore { return NewGalleryRepository(pool) },
		func() database.RunStore { return NewRunRepository(pool) },
	)
	return pool, nil
}
