// Package codegen derives table DDL from registered entity metadata.
// It covers create-if-absent and drop-if-exists for PostgreSQL and SQLite.
package codegen

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/schema"
)

// TypeMapper maps storage types to column types of one dialect
type TypeMapper struct {
	dialect dialect.Dialect
}

// NewTypeMapper creates a new TypeMapper for d
func NewTypeMapper(d dialect.Dialect) *TypeMapper {
	return &TypeMapper{dialect: d}
}

// MapType converts a storage type to a column type
func (tm *TypeMapper) MapType(t schema.StorageType) (string, error) {
	if tm.dialect == dialect.SQLite {
		return tm.mapSQLite(t)
	}
	return tm.mapPostgres(t)
}

func (tm *TypeMapper) mapPostgres(t schema.StorageType) (string, error) {
	switch t {
	case schema.TypeString:
		return "VARCHAR(255)", nil
	case schema.TypeText:
		return "TEXT", nil
	case schema.TypeInt:
		return "INTEGER", nil
	case schema.TypeBigInt:
		return "BIGINT", nil
	case schema.TypeFloat:
		return "DOUBLE PRECISION", nil
	case schema.TypeBool:
		return "BOOLEAN", nil
	case schema.TypeTimestamp:
		return "TIMESTAMP WITH TIME ZONE", nil
	case schema.TypeUUID:
		return "UUID", nil
	case schema.TypeULID:
		// ULID is stored as a 26-character string
		return "CHAR(26)", nil
	case schema.TypeJSON:
		return "JSONB", nil
	default:
		return "", fmt.Errorf("unsupported type: %s", t)
	}
}

func (tm *TypeMapper) mapSQLite(t schema.StorageType) (string, error) {
	switch t {
	case schema.TypeString, schema.TypeText, schema.TypeUUID, schema.TypeULID, schema.TypeJSON:
		return "TEXT", nil
	case schema.TypeInt, schema.TypeBigInt:
		return "INTEGER", nil
	case schema.TypeFloat:
		return "REAL", nil
	case schema.TypeBool:
		return "BOOLEAN", nil
	case schema.TypeTimestamp:
		return "TIMESTAMP", nil
	default:
		return "", fmt.Errorf("unsupported type: %s", t)
	}
}

// IdentifierDefault returns the server-side default for a generated primary key,
// or "" when the key is generated by the client (ULID) or not generated at all.
func (tm *TypeMapper) IdentifierDefault(t schema.StorageType) string {
	if t != schema.TypeUUID {
		return ""
	}
	if tm.dialect == dialect.SQLite {
		return "(lower(hex(randomblob(16))))"
	}
	return "gen_random_uuid()"
}

// QuoteIdentifier wraps a SQL identifier in double quotes and escapes internal quotes
func QuoteIdentifier(identifier string) string {
	return pq.QuoteIdentifier(identifier)
}
