// Package query compiles entity metadata into select and insert statements
package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/lib/pq"
)

// Row is one result row keyed by aliased column name (table_column)
type Row map[string]any

// Kind distinguishes the statements the compiler produces
type Kind int

const (
	KindSelect Kind = iota
	KindInsert
)

// String returns the SQL verb for the statement kind
func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "SELECT"
	case KindInsert:
		return "INSERT"
	default:
		return "UNKNOWN"
	}
}

// JoinType represents the type of SQL join
type JoinType int

// LeftJoin keeps parent rows without a related match; it is the only join relations compile to
const LeftJoin JoinType = iota

// String returns the string representation of the join type
func (j JoinType) String() string {
	switch j {
	case LeftJoin:
		return "LEFT OUTER"
	default:
		return "UNKNOWN"
	}
}

// Column is a projected column rendered as "table"."name" AS "alias"
type Column struct {
	Table string
	Name  string
	Alias string
}

// Join joins Table ON Table.Column = RefTable.RefColumn
type Join struct {
	Type      JoinType
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// Value is one column assignment of an insert
type Value struct {
	Column string
	Arg    any
}

// Statement is a compiled, dialect-neutral description of one SQL statement
type Statement struct {
	Kind      Kind
	Entity    reflect.Type
	Table     string
	Columns   []Column
	Joins     []Join
	Values    []Value
	Returning []Column
}

// ToSQL renders the statement with $n placeholders
func (s *Statement) ToSQL() (string, []any, error) {
	if s.Table == "" {
		return "", nil, fmt.Errorf("statement has no table")
	}

	switch s.Kind {
	case KindSelect:
		return s.selectSQL()
	case KindInsert:
		return s.insertSQL()
	default:
		return "", nil, fmt.Errorf("unsupported statement kind: %d", s.Kind)
	}
}

// String returns the rendered SQL, or the render error
func (s *Statement) String() string {
	sql, _, err := s.ToSQL()
	if err != nil {
		return err.Error()
	}
	return sql
}

// Args returns the bound values in placeholder order
func (s *Statement) Args() []any {
	args := make([]any, len(s.Values))
	for i, v := range s.Values {
		args[i] = v.Arg
	}
	return args
}

func (s *Statement) selectSQL() (string, []any, error) {
	if len(s.Columns) == 0 {
		return "", nil, fmt.Errorf("select from %s has no columns", s.Table)
	}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	for i, col := range s.Columns {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(fmt.Sprintf("%s.%s AS %s",
			pq.QuoteIdentifier(col.Table),
			pq.QuoteIdentifier(col.Name),
			pq.QuoteIdentifier(col.Alias),
		))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(pq.QuoteIdentifier(s.Table))

	for _, join := range s.Joins {
		sql.WriteString(fmt.Sprintf(" %s JOIN %s ON %s.%s = %s.%s",
			join.Type.String(),
			pq.QuoteIdentifier(join.Table),
			pq.QuoteIdentifier(join.Table),
			pq.QuoteIdentifier(join.Column),
			pq.QuoteIdentifier(join.RefTable),
			pq.QuoteIdentifier(join.RefColumn),
		))
	}

	return sql.String(), []any{}, nil
}

func (s *Statement) insertSQL() (string, []any, error) {
	var sql strings.Builder
	args := make([]any, 0, len(s.Values))

	sql.WriteString("INSERT INTO ")
	sql.WriteString(pq.QuoteIdentifier(s.Table))

	if len(s.Values) == 0 {
		sql.WriteString(" DEFAULT VALUES")
	} else {
		columns := make([]string, len(s.Values))
		placeholders := make([]string, len(s.Values))
		for i, v := range s.Values {
			columns[i] = pq.QuoteIdentifier(v.Column)
			placeholders[i] = fmt.Sprintf("$%d", i+1)
			args = append(args, v.Arg)
		}
		sql.WriteString(fmt.Sprintf(" (%s) VALUES (%s)",
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "),
		))
	}

	// RETURNING may only name columns of the target table, so they go unqualified
	if len(s.Returning) > 0 {
		returning := make([]string, len(s.Returning))
		for i, col := range s.Returning {
			returning[i] = fmt.Sprintf("%s AS %s", pq.QuoteIdentifier(col.Name), pq.QuoteIdentifier(col.Alias))
		}
		sql.WriteString(" RETURNING ")
		sql.WriteString(strings.Join(returning, ", "))
	}

	return sql.String(), args, nil
}
