package schema

import (
	"github.com/jinzhu/inflection"

	strs "github.com/equal-orm/equal/internal/util/strings"
)

// NamingStrategy derives table, column and foreign key names from Go identifiers
type NamingStrategy struct {
	TablePrefix  string
	PluralTables bool
}

// TableName converts an entity type name to a table name
func (ns NamingStrategy) TableName(name string) string {
	table := strs.ToSnakeCase(name)
	if ns.PluralTables {
		table = inflection.Plural(table)
	}
	return ns.TablePrefix + table
}

// ColumnName converts a property name to a column name
func (ns NamingStrategy) ColumnName(property string) string {
	return strs.ToSnakeCase(property)
}

// ForeignKey returns the default join column for relations owned by the named entity
func (ns NamingStrategy) ForeignKey(owner string) string {
	return strs.ToSnakeCase(owner) + "_id"
}
