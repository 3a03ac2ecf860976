package codegen

import (
	"fmt"
	"strings"

	"github.com/equal-orm/equal/internal/orm/dialect"
	"github.com/equal-orm/equal/internal/orm/schema"
)

// DDLGenerator generates CREATE/DROP TABLE statements for registered entities
type DDLGenerator struct {
	dialect    dialect.Dialect
	typeMapper *TypeMapper
}

// NewDDLGenerator creates a new DDL generator for d
func NewDDLGenerator(d dialect.Dialect) *DDLGenerator {
	return &DDLGenerator{
		dialect:    d,
		typeMapper: NewTypeMapper(d),
	}
}

// GenerateCreateTable generates a CREATE TABLE IF NOT EXISTS statement.
// Relation columns are skipped; they live on the related table.
func (g *DDLGenerator) GenerateCreateTable(entity *schema.EntityDescriptor, columns []*schema.ColumnDescriptor) (string, error) {
	if entity == nil {
		return "", fmt.Errorf("entity cannot be nil")
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.IsRelation() {
			continue
		}
		def, err := g.generateColumnDefinition(col)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name, err)
		}
		defs = append(defs, def)
	}
	if len(defs) == 0 {
		return "", fmt.Errorf("entity %s has no scalar columns", entity.Name)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", QuoteIdentifier(entity.TableName)))
	for i, def := range defs {
		b.WriteString("  ")
		b.WriteString(def)
		if i < len(defs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(");")

	return b.String(), nil
}

// generateColumnDefinition generates a column definition for a scalar column
func (g *DDLGenerator) generateColumnDefinition(col *schema.ColumnDescriptor) (string, error) {
	columnType, err := g.typeMapper.MapType(col.Type)
	if err != nil {
		return "", fmt.Errorf("mapping type: %w", err)
	}

	parts := []string{QuoteIdentifier(col.Name), columnType}
	if col.Primary {
		parts = append(parts, "NOT NULL")
		if def := g.typeMapper.IdentifierDefault(col.Type); def != "" {
			parts = append(parts, "DEFAULT "+def)
		}
		parts = append(parts, "PRIMARY KEY")
	}

	return strings.Join(parts, " "), nil
}

// GenerateDropTable generates a DROP TABLE IF EXISTS statement
func (g *DDLGenerator) GenerateDropTable(entity *schema.EntityDescriptor) string {
	if g.dialect == dialect.SQLite {
		return fmt.Sprintf("DROP TABLE IF EXISTS %s;", QuoteIdentifier(entity.TableName))
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", QuoteIdentifier(entity.TableName))
}
