package query

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/equal-orm/equal/internal/orm/schema"
	strs "github.com/equal-orm/equal/internal/util/strings"
)

// ErrAmbiguousAlias is returned when two projected columns share an alias,
// e.g. table "acct" column "profile_id" and table "acct_profile" column "id"
var ErrAmbiguousAlias = errors.New("ambiguous column alias")

// Compiler turns registered entity metadata into statements
type Compiler struct {
	resolver *schema.Resolver
}

// NewCompiler creates a compiler reading from registry
func NewCompiler(registry *schema.Registry) *Compiler {
	return &Compiler{resolver: schema.NewResolver(registry)}
}

// CompileSelect builds a select over t's table projecting its aliased columns.
// Every relation of t named in relations (by column or property name) adds
// the related entity's projection and a left outer join on its foreign key.
// Names that match no relation are ignored.
func (c *Compiler) CompileSelect(t reflect.Type, relations []string) (*Statement, error) {
	entity, err := c.resolver.Entity(t)
	if err != nil {
		return nil, err
	}
	proj, err := c.resolver.AliasedProjection(t)
	if err != nil {
		return nil, err
	}

	stmt := &Statement{
		Kind:    KindSelect,
		Entity:  t,
		Table:   entity.TableName,
		Columns: columns(proj),
		Joins:   make([]Join, 0),
	}
	if len(relations) == 0 {
		return stmt, nil
	}

	wanted := make(map[string]bool, len(relations))
	for _, name := range relations {
		wanted[name] = true
	}

	rels, err := c.resolver.RelationColumns(t)
	if err != nil {
		return nil, err
	}
	for _, rel := range rels {
		if !wanted[rel.Name] && !wanted[rel.Property] {
			continue
		}

		target, err := c.resolver.Entity(rel.Related)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", rel.Property, err)
		}
		pk, err := c.resolver.PrimaryColumn(t)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", rel.Property, err)
		}
		targetProj, err := c.resolver.AliasedProjection(rel.Related)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", rel.Property, err)
		}

		stmt.Columns = append(stmt.Columns, columns(targetProj)...)
		stmt.Joins = append(stmt.Joins, Join{
			Type:      LeftJoin,
			Table:     target.TableName,
			Column:    rel.ForeignKey,
			RefTable:  entity.TableName,
			RefColumn: pk.Name,
		})
	}

	if err := checkAliases(stmt.Columns); err != nil {
		return nil, err
	}
	return stmt, nil
}

// CompileInsert builds an insert of data into t's table returning its aliased columns.
// Keys are converted to snake_case and must name scalar columns of t.
func (c *Compiler) CompileInsert(t reflect.Type, data map[string]any) (*Statement, error) {
	entity, err := c.resolver.Entity(t)
	if err != nil {
		return nil, err
	}
	scalars, err := c.resolver.ScalarColumns(t)
	if err != nil {
		return nil, err
	}
	proj, err := c.resolver.AliasedProjection(t)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, len(scalars))
	for i, col := range scalars {
		position[col.Name] = i
	}

	values := make([]Value, 0, len(data))
	seen := make(map[string]string, len(data))
	for key, arg := range data {
		name := strs.ToSnakeCase(key)
		if _, ok := position[name]; !ok {
			return nil, fmt.Errorf("%w: %s has no column for %q", schema.ErrUnknownColumn, entity.Name, key)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("keys %q and %q both map to column %s", prev, key, name)
		}
		seen[name] = key
		values = append(values, Value{Column: name, Arg: arg})
	}
	sort.Slice(values, func(i, j int) bool {
		return position[values[i].Column] < position[values[j].Column]
	})

	return &Statement{
		Kind:      KindInsert,
		Entity:    t,
		Table:     entity.TableName,
		Values:    values,
		Returning: columns(proj),
	}, nil
}

func checkAliases(cols []Column) error {
	seen := make(map[string]Column, len(cols))
	for _, c := range cols {
		if prev, ok := seen[c.Alias]; ok {
			return fmt.Errorf("%w: %s.%s and %s.%s both project as %s", ErrAmbiguousAlias, prev.Table, prev.Name, c.Table, c.Name, c.Alias)
		}
		seen[c.Alias] = c
	}
	return nil
}

func columns(proj []schema.Projection) []Column {
	result := make([]Column, len(proj))
	for i, p := range proj {
		result[i] = Column{Table: p.Table, Name: p.Column, Alias: p.Alias}
	}
	return result
}
