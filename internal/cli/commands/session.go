package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/equal-orm/equal/internal/cli/config"
	"github.com/equal-orm/equal/internal/demo"
	"github.com/equal-orm/equal/internal/logging"
	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/query"
	"github.com/equal-orm/equal/internal/orm/repository"
	"github.com/equal-orm/equal/internal/orm/schema"
	"github.com/equal-orm/equal/internal/orm/store"
)

// database is a store the CLI owns and must close
type database interface {
	repository.Store
	Close() error
}

// session is the per-command wiring of config, logger, store and repositories
type session struct {
	config   *config.Config
	logger   *zap.Logger
	registry *schema.Registry
	db       database
	repos    *demo.Repositories
}

func (o *options) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadFrom(o.configPath)
	if err != nil {
		return nil, err
	}

	logCfg := cfg.Logging()
	if o.debug {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	db, err := o.openDatabase(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	if o.debug {
		db = newEchoStore(db, cmd.ErrOrStderr(), color.NoColor)
	}

	reg := schema.NewRegistry(schema.WithNamingStrategy(cfg.Naming.Strategy()))
	if err := demo.Register(reg); err != nil {
		db.Close()
		return nil, err
	}
	repos, err := demo.Open(reg, db, repository.WithLogger(logger))
	if err != nil {
		db.Close()
		return nil, err
	}

	return &session{config: cfg, logger: logger, registry: reg, db: db, repos: repos}, nil
}

func (o *options) openDatabase(ctx context.Context, cfg *config.Config) (database, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is not set (use equal.yml, EQUAL_DATABASE_URL or DATABASE_URL)")
	}
	d, err := cfg.Database.Dialect()
	if err != nil {
		return nil, err
	}

	if o.pool {
		if d != dialect.Postgres {
			return nil, fmt.Errorf("--pool requires a PostgreSQL driver, got %s", cfg.Database.Driver)
		}
		pool, err := store.Connect(ctx, cfg.Database.URL, cfg.Database.Pool())
		if err != nil {
			return nil, err
		}
		return pool, nil
	}

	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (s *session) Close() error {
	_ = s.logger.Sync()
	return s.db.Close()
}

// echoStore prints every statement before handing it to the wrapped store
type echoStore struct {
	database
	out io.Writer
	sql *color.Color
}

func newEchoStore(db database, out io.Writer, noColor bool) *echoStore {
	c := color.New(color.FgCyan)
	if noColor {
		c.DisableColor()
	}
	return &echoStore{database: db, out: out, sql: c}
}

func (s *echoStore) Query(ctx context.Context, stmt *query.Statement) ([]query.Row, error) {
	s.sql.Fprintln(s.out, stmt.String())
	return s.database.Query(ctx, stmt)
}

func (s *echoStore) Exec(ctx context.Context, statement string) error {
	s.sql.Fprintln(s.out, statement)
	return s.database.Exec(ctx, statement)
}
