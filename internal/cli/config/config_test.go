package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/equal-orm/equal/internal/orm/dialect"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Database.Driver != "pgx" {
		t.Errorf("expected default driver 'pgx', got %s", cfg.Database.Driver)
	}

	if cfg.Database.MaxConns != 10 || cfg.Database.MinConns != 2 {
		t.Errorf("expected default pool 10/2, got %d/%d", cfg.Database.MaxConns, cfg.Database.MinConns)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Log.Level)
	}

	if cfg.Log.Format != "console" {
		t.Errorf("expected default log format 'console', got %s", cfg.Log.Format)
	}

	d, err := cfg.Database.Dialect()
	if err != nil || d != dialect.Postgres {
		t.Errorf("expected postgres dialect, got %s (%v)", d, err)
	}

	if cfg.Naming.PluralTables || cfg.Naming.TablePrefix != "" {
		t.Errorf("expected singular unprefixed tables by default, got %+v", cfg.Naming)
	}
}

func TestLoadNaming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "equal.yml")
	content := "naming:\n  plural_tables: true\n  table_prefix: app_\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	ns := cfg.Naming.Strategy()
	if got := ns.TableName("User"); got != "app_users" {
		t.Errorf("expected table app_users, got %s", got)
	}
	if got := ns.TableName("Category"); got != "app_categories" {
		t.Errorf("expected table app_categories, got %s", got)
	}

	t.Setenv("EQUAL_NAMING_PLURAL_TABLES", "false")
	cfg, err = LoadFrom(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Naming.PluralTables {
		t.Error("expected EQUAL_NAMING_PLURAL_TABLES to override the file")
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	configContent := `
database:
  driver: sqlite3
  url: file:equal.db
  max_conns: 4
  min_conns: 1
log:
  level: debug
  format: json
`
	if err := os.WriteFile("equal.yml", []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("expected driver 'sqlite3', got %s", cfg.Database.Driver)
	}

	if cfg.Database.URL != "file:equal.db" {
		t.Errorf("expected url 'file:equal.db', got %s", cfg.Database.URL)
	}

	pool := cfg.Database.Pool()
	if pool.MaxConns != 4 || pool.MinConns != 1 {
		t.Errorf("expected pool 4/1, got %d/%d", pool.MaxConns, pool.MinConns)
	}

	logCfg := cfg.Logging()
	if logCfg.Level != "debug" || logCfg.Format != "json" {
		t.Errorf("expected debug/json logging, got %s/%s", logCfg.Level, logCfg.Format)
	}
}

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("database:\n  url: postgres://localhost/app\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/app" {
		t.Errorf("expected url from file, got %s", cfg.Database.URL)
	}

	if _, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvironment(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("DATABASE_URL", "postgres://fallback/db")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.URL != "postgres://fallback/db" {
		t.Errorf("expected DATABASE_URL fallback, got %s", cfg.Database.URL)
	}

	t.Setenv("EQUAL_DATABASE_URL", "postgres://primary/db")
	t.Setenv("EQUAL_LOG_LEVEL", "warn")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Database.URL != "postgres://primary/db" {
		t.Errorf("expected EQUAL_DATABASE_URL to win, got %s", cfg.Database.URL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level from env, got %s", cfg.Log.Level)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		wantErr bool
	}{
		{"valid", "database:\n  driver: postgres\n", false},
		{"unknown driver", "database:\n  driver: mysql\n", true},
		{"zero max conns", "database:\n  max_conns: 0\n", true},
		{"min above max", "database:\n  max_conns: 2\n  min_conns: 3\n", true},
		{"bad level", "log:\n  level: loud\n", true},
		{"table prefix", "naming:\n  table_prefix: app_\n", false},
		{"quoted table prefix", "naming:\n  table_prefix: 'a\"b'\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "equal.yml")
			if err := os.WriteFile(path, []byte(tt.config), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFrom(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
