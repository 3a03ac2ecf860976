package codegen

import (
	"testing"

	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/schema"
)

func TestTypeMapper_MapType(t *testing.T) {
	tests := []struct {
		typ      schema.StorageType
		postgres string
		sqlite   string
	}{
		{schema.TypeString, "VARCHAR(255)", "TEXT"},
		{schema.TypeText, "TEXT", "TEXT"},
		{schema.TypeInt, "INTEGER", "INTEGER"},
		{schema.TypeBigInt, "BIGINT", "INTEGER"},
		{schema.TypeFloat, "DOUBLE PRECISION", "REAL"},
		{schema.TypeBool, "BOOLEAN", "BOOLEAN"},
		{schema.TypeTimestamp, "TIMESTAMP WITH TIME ZONE", "TIMESTAMP"},
		{schema.TypeUUID, "UUID", "TEXT"},
		{schema.TypeULID, "CHAR(26)", "TEXT"},
		{schema.TypeJSON, "JSONB", "TEXT"},
	}

	pg := NewTypeMapper(dialect.Postgres)
	lite := NewTypeMapper(dialect.SQLite)
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got, err := pg.MapType(tt.typ); err != nil || got != tt.postgres {
				t.Errorf("postgres MapType() = %q, %v; want %q", got, err, tt.postgres)
			}
			if got, err := lite.MapType(tt.typ); err != nil || got != tt.sqlite {
				t.Errorf("sqlite MapType() = %q, %v; want %q", got, err, tt.sqlite)
			}
		})
	}

	if _, err := pg.MapType(schema.TypeRelation); err == nil {
		t.Error("relations have no column type")
	}
}

func TestTypeMapper_IdentifierDefault(t *testing.T) {
	pg := NewTypeMapper(dialect.Postgres)
	if got := pg.IdentifierDefault(schema.TypeUUID); got != "gen_random_uuid()" {
		t.Errorf("IdentifierDefault(uuid) = %q", got)
	}
	if got := pg.IdentifierDefault(schema.TypeULID); got != "" {
		t.Errorf("IdentifierDefault(ulid) = %q, want empty", got)
	}
	if got := pg.IdentifierDefault(schema.TypeInt); got != "" {
		t.Errorf("IdentifierDefault(int) = %q, want empty", got)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := map[string]string{
		"user":       `"user"`,
		`weird"name`: `"weird""name"`,
	}
	for in, want := range tests {
		if got := QuoteIdentifier(in); got != want {
			t.Errorf("QuoteIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}
