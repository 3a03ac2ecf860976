package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/query"
)

// PgxQuerier is the subset of *pgxpool.Pool, *pgx.Conn and pgx.Tx the store needs
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PoolConfig tunes the pgx connection pool
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// Pool runs statements through pgx's native interface
type Pool struct {
	db   PgxQuerier
	pool *pgxpool.Pool
}

// NewPool wraps a pgx pool, connection or transaction
func NewPool(db PgxQuerier) *Pool {
	return &Pool{db: db}
}

// Connect creates a pgx pool for databaseURL and checks it is reachable
func Connect(ctx context.Context, databaseURL string, cfg PoolConfig) (*Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.MaxConns > 0 {
		config.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		config.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		config.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &Pool{db: pool, pool: pool}, nil
}

// Dialect returns PostgreSQL
func (p *Pool) Dialect() dialect.Dialect {
	return dialect.Postgres
}

// Query runs stmt and returns every row keyed by column alias
func (p *Pool) Query(ctx context.Context, stmt *query.Statement) ([]query.Row, error) {
	text, args, err := stmt.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx, text, args...)
	if err != nil {
		return nil, err
	}

	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}

	result := make([]query.Row, len(maps))
	for i, m := range maps {
		result[i] = query.Row(m)
	}
	return result, nil
}

// Exec runs a statement that returns no rows, such as DDL
func (p *Pool) Exec(ctx context.Context, statement string) error {
	_, err := p.db.Exec(ctx, statement)
	return err
}

// Close closes the pool if Connect created it
func (p *Pool) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
