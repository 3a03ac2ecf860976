// Package repository exposes per-entity find, save and schema operations
// on top of the metadata registry, compiler, materializer and a store.
package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/equal-orm/equal/internal/orm/codegen"
	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/materialize"
	"github.com/equal-orm/equal/internal/orm/query"
	"github.com/equal-orm/equal/internal/orm/schema"
)

var (
	// ErrBindingMismatch is returned when a repository type is bound to a different entity
	ErrBindingMismatch = errors.New("repository bound to a different entity")

	// ErrUnexpectedRows is returned when an insert does not return exactly one row
	ErrUnexpectedRows = errors.New("unexpected number of returned rows")
)

// Store executes compiled statements
type Store interface {
	Query(ctx context.Context, stmt *query.Statement) ([]query.Row, error)
	Exec(ctx context.Context, statement string) error
	Dialect() dialect.Dialect
}

// FindOptions selects which relations to load alongside the entity
type FindOptions struct {
	Relations []string
}

// Option configures a Repository
type Option func(*config)

type config struct {
	logger *zap.Logger
}

// WithLogger logs every executed statement at debug level
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Repository is the data access façade for entity type E
type Repository[E any] struct {
	entityType   reflect.Type
	resolver     *schema.Resolver
	compiler     *query.Compiler
	materializer *materialize.Materializer
	store        Store
	logger       *zap.Logger
}

// New creates a repository for E. Metadata is resolved per call, so an
// unregistered E only fails once an operation runs.
func New[E any](registry *schema.Registry, store Store, opts ...Option) *Repository[E] {
	cfg := &config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	t := schema.TypeOf[E]()
	return &Repository[E]{
		entityType:   t,
		resolver:     schema.NewResolver(registry),
		compiler:     query.NewCompiler(registry),
		materializer: materialize.New(registry),
		store:        store,
		logger:       cfg.logger.With(zap.String("entity", t.String())),
	}
}

// For creates the repository for E through the binding registered for repository type R
func For[R, E any](registry *schema.Registry, store Store, opts ...Option) (*Repository[E], error) {
	binding, err := registry.LookupRepository(schema.TypeOf[R]())
	if err != nil {
		return nil, err
	}
	if binding.Entity != schema.TypeOf[E]() {
		return nil, fmt.Errorf("%w: %s serves %s, not %s", ErrBindingMismatch, binding.Repository, binding.Entity, schema.TypeOf[E]())
	}
	return New[E](registry, store, opts...), nil
}

// EnsureSchema creates E's table if absent, dropping it first when reset is set
func (r *Repository[E]) EnsureSchema(ctx context.Context, reset bool) error {
	entity, err := r.resolver.Entity(r.entityType)
	if err != nil {
		return err
	}
	cols, err := r.resolver.ScalarColumns(r.entityType)
	if err != nil {
		return err
	}

	gen := codegen.NewDDLGenerator(r.store.Dialect())
	if reset {
		if err := r.exec(ctx, gen.GenerateDropTable(entity)); err != nil {
			return err
		}
	}

	ddl, err := gen.GenerateCreateTable(entity, cols)
	if err != nil {
		return err
	}
	return r.exec(ctx, ddl)
}

// Find loads every E, joining the named relations
func (r *Repository[E]) Find(ctx context.Context, opts FindOptions) ([]*E, error) {
	stmt, err := r.compiler.CompileSelect(r.entityType, opts.Relations)
	if err != nil {
		return nil, err
	}

	rows, err := r.query(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return materialize.All[E](r.materializer, rows)
}

// Save inserts the non-zero scalar fields of entity and copies the returned
// row back onto it, so generated values such as primary keys become visible.
// A zero ULID primary key is generated before the insert.
//
// Zero-valued fields (false, 0, "") are left out of the insert and take the
// column default, so Save cannot store them explicitly; use Insert for that.
func (r *Repository[E]) Save(ctx context.Context, entity *E) error {
	if entity == nil {
		return fmt.Errorf("cannot save nil %s", r.entityType)
	}

	scalars, err := r.resolver.ScalarColumns(r.entityType)
	if err != nil {
		return err
	}

	data := make(map[string]any, len(scalars))
	for _, col := range scalars {
		zero, err := col.IsZero(entity)
		if err != nil {
			return err
		}
		if zero && col.Primary && col.Type == schema.TypeULID {
			if err := col.Set(entity, ulid.Make()); err != nil {
				return err
			}
			zero = false
		}
		if zero {
			continue
		}
		v, err := col.Get(entity)
		if err != nil {
			return err
		}
		// ulid.ULID's driver value is binary; columns store the text form
		if id, ok := v.(ulid.ULID); ok {
			v = id.String()
		}
		data[col.Name] = v
	}

	row, err := r.insert(ctx, data)
	if err != nil {
		return err
	}
	return r.materializer.Merge(r.entityType, entity, row)
}

// Insert inserts data, keyed by property or column name, and returns the stored entity
func (r *Repository[E]) Insert(ctx context.Context, data map[string]any) (*E, error) {
	row, err := r.insert(ctx, data)
	if err != nil {
		return nil, err
	}
	return materialize.One[E](r.materializer, row)
}

func (r *Repository[E]) insert(ctx context.Context, data map[string]any) (query.Row, error) {
	stmt, err := r.compiler.CompileInsert(r.entityType, data)
	if err != nil {
		return nil, err
	}

	rows, err := r.query(ctx, stmt)
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("%w: insert into %s returned %d rows", ErrUnexpectedRows, stmt.Table, len(rows))
	}
	return rows[0], nil
}

func (r *Repository[E]) query(ctx context.Context, stmt *query.Statement) ([]query.Row, error) {
	start := time.Now()
	rows, err := r.store.Query(ctx, stmt)
	if err != nil {
		r.logger.Debug("statement failed",
			zap.Stringer("sql", stmt),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Debug("statement executed",
		zap.Stringer("sql", stmt),
		zap.Any("args", stmt.Args()),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)),
	)
	return rows, nil
}

func (r *Repository[E]) exec(ctx context.Context, statement string) error {
	start := time.Now()
	if err := r.store.Exec(ctx, statement); err != nil {
		r.logger.Debug("statement failed", zap.String("sql", statement), zap.Error(err))
		return err
	}
	r.logger.Debug("statement executed",
		zap.String("sql", statement),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
