// Package store executes compiled statements against a relational database.
// Errors from the database are returned unchanged.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")
	_ "github.com/lib/pq"              // PostgreSQL driver ("postgres")
	_ "github.com/mattn/go-sqlite3"    // SQLite driver ("sqlite3")

	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/query"
)

// Querier is the subset of *sql.DB, *sql.Tx and *sql.Conn the store needs
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SQL runs statements through database/sql
type SQL struct {
	db      Querier
	dialect dialect.Dialect
	closer  func() error
}

// NewSQL wraps an open database handle
func NewSQL(db Querier, d dialect.Dialect) *SQL {
	return &SQL{db: db, dialect: d}
}

// registered database/sql driver names for the dialect aliases Parse accepts
var driverNames = map[string]string{
	"postgresql": "pgx",
	"sqlite":     "sqlite3",
}

// Open opens a database/sql connection for driver ("pgx", "postgres" or "sqlite3")
func Open(driver, dsn string) (*SQL, error) {
	d, err := dialect.Parse(driver)
	if err != nil {
		return nil, err
	}
	if name, ok := driverNames[strings.ToLower(driver)]; ok {
		driver = name
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if d == dialect.SQLite {
		// an in-memory database exists per connection
		db.SetMaxOpenConns(1)
	}
	return &SQL{db: db, dialect: d, closer: db.Close}, nil
}

// Dialect returns the SQL dialect of the connection
func (s *SQL) Dialect() dialect.Dialect {
	return s.dialect
}

// DB returns the underlying handle
func (s *SQL) DB() Querier {
	return s.db
}

// Query runs stmt and returns every row keyed by column alias
func (s *SQL) Query(ctx context.Context, stmt *query.Statement) ([]query.Row, error) {
	text, args, err := stmt.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, text, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Exec runs a statement that returns no rows, such as DDL
func (s *SQL) Exec(ctx context.Context, statement string) error {
	_, err := s.db.ExecContext(ctx, statement)
	return err
}

// Close closes the connection if the store opened it
func (s *SQL) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
