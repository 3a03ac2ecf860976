// Package dialect names the SQL dialects the ORM can generate statements for.
package dialect

import (
	"fmt"
	"strings"
)

// Dialect identifies a SQL flavour
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// String returns the dialect name
func (d Dialect) String() string {
	return string(d)
}

// Parse maps a database/sql driver name (or dialect alias) to a Dialect
func Parse(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}
