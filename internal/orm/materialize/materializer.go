// Package materialize rebuilds entity graphs from flat, aliased result rows
package materialize

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/equal-orm/equal/internal/orm/query"
	"github.com/equal-orm/equal/internal/orm/schema"
)

// Materializer converts rows keyed table_column into entity instances
type Materializer struct {
	resolver *schema.Resolver
}

// New creates a materializer reading metadata from registry
func New(registry *schema.Registry) *Materializer {
	return &Materializer{resolver: schema.NewResolver(registry)}
}

// fragment collects the columns one joined child entity contributed to a row
type fragment struct {
	entity *schema.EntityDescriptor
	dest   *schema.ColumnDescriptor
	keys   []string
	values []any
}

func (f *fragment) empty() bool {
	for _, v := range f.values {
		if v != nil {
			return false
		}
	}
	return true
}

// Format builds one instance of t from a single row.
// Own columns are set on the instance; columns of joined entities are
// assembled into one child per entity and attached to the matching relation.
// A child whose columns are all NULL (outer join without a match) is skipped.
func (m *Materializer) Format(t reflect.Type, row query.Row) (any, error) {
	entity, err := m.resolver.Entity(t)
	if err != nil {
		return nil, err
	}
	relations, err := m.resolver.RelationColumns(t)
	if err != nil {
		return nil, err
	}

	instance := entity.New()
	for _, rel := range relations {
		if err := rel.Init(instance); err != nil {
			return nil, fmt.Errorf("init %s.%s: %w", entity.Name, rel.Property, err)
		}
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fragments := make(map[reflect.Type]*fragment)
	var order []reflect.Type

	for _, key := range keys {
		owner, column, err := m.route(entity, key)
		if err != nil {
			return nil, err
		}

		if owner.Type == entity.Type {
			col, err := m.resolver.Column(t, column)
			if err != nil {
				return nil, err
			}
			if err := col.Set(instance, row[key]); err != nil {
				return nil, fmt.Errorf("%s: %w", entity.Name, err)
			}
			continue
		}

		frag, ok := fragments[owner.Type]
		if !ok {
			dest := destination(relations, owner.Type)
			if dest == nil {
				return nil, fmt.Errorf("%w: %s has no relation to %s (column %q)", ErrInvalidProperty, entity.Name, owner.Name, key)
			}
			frag = &fragment{entity: owner, dest: dest}
			fragments[owner.Type] = frag
			order = append(order, owner.Type)
		}
		frag.keys = append(frag.keys, column)
		frag.values = append(frag.values, row[key])
	}

	for _, ft := range order {
		frag := fragments[ft]
		if frag.empty() {
			continue
		}

		child := frag.entity.New()
		for i, name := range frag.keys {
			col, err := m.resolver.Column(ft, name)
			if err != nil {
				return nil, err
			}
			if err := col.Set(child, frag.values[i]); err != nil {
				return nil, fmt.Errorf("%s: %w", frag.entity.Name, err)
			}
		}
		if err := frag.dest.Attach(instance, child); err != nil {
			return nil, fmt.Errorf("attach %s.%s: %w", entity.Name, frag.dest.Property, err)
		}
	}

	return instance, nil
}

// One is Format for a single row
func (m *Materializer) One(t reflect.Type, row query.Row) (any, error) {
	return m.Format(t, row)
}

// All formats every row and collapses rows sharing a primary key into one
// instance, concatenating their child collections. Output keeps the order in
// which each key was first seen. Entities without a primary key are not merged.
func (m *Materializer) All(t reflect.Type, rows []query.Row) ([]any, error) {
	result := make([]any, 0, len(rows))
	if len(rows) == 0 {
		return result, nil
	}

	relations, err := m.resolver.RelationColumns(t)
	if err != nil {
		return nil, err
	}
	pk, err := m.resolver.PrimaryColumn(t)
	if err != nil && !errors.Is(err, schema.ErrNoPrimaryKey) {
		return nil, err
	}

	seen := make(map[string]any, len(rows))
	for i, row := range rows {
		instance, err := m.Format(t, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if pk == nil {
			result = append(result, instance)
			continue
		}

		id, err := pk.Get(instance)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		key := fmt.Sprint(id)

		existing, ok := seen[key]
		if !ok {
			seen[key] = instance
			result = append(result, instance)
			continue
		}
		for _, rel := range relations {
			if err := m.mergeRelation(rel, existing, instance); err != nil {
				return nil, fmt.Errorf("row %d: merge %s: %w", i, rel.Property, err)
			}
		}
	}

	return result, nil
}

// Merge reconstructs row and copies it onto dst: every own column present in
// the row overwrites dst's value, and loaded relations are merged in.
func (m *Materializer) Merge(t reflect.Type, dst any, row query.Row) error {
	src, err := m.Format(t, row)
	if err != nil {
		return err
	}
	table, err := m.resolver.TableName(t)
	if err != nil {
		return err
	}
	cols := m.resolver.Registry().LookupColumns(t)

	for _, col := range cols {
		if col.IsRelation() {
			if err := col.Merge(dst, src); err != nil {
				return fmt.Errorf("merge %s: %w", col.Property, err)
			}
			continue
		}
		if _, ok := row[table+"_"+col.Name]; !ok {
			continue
		}
		v, err := col.Get(src)
		if err != nil {
			return err
		}
		if err := col.Set(dst, v); err != nil {
			return err
		}
	}
	return nil
}

// route splits key into the entity that owns it and its column name.
// A key naming one of entity's own columns always belongs to entity, even
// when a longer registered table name also prefixes it.
func (m *Materializer) route(entity *schema.EntityDescriptor, key string) (*schema.EntityDescriptor, string, error) {
	if column, ok := strings.CutPrefix(key, entity.TableName+"_"); ok {
		if _, err := m.resolver.Column(entity.Type, column); err == nil {
			return entity, column, nil
		}
	}
	owner, column, ok := m.resolver.MatchTable(key)
	if !ok {
		return nil, "", fmt.Errorf("%w: no table matches column %q", ErrUnknownEntity, key)
	}
	return owner, column, nil
}

// mergeRelation folds src's relation into dst. A to-many child whose primary
// key is already present in dst is not appended again.
func (m *Materializer) mergeRelation(rel *schema.ColumnDescriptor, dst, src any) error {
	if !rel.Relation.IsToMany() {
		return rel.Merge(dst, src)
	}
	pk, err := m.resolver.PrimaryColumn(rel.Related)
	if errors.Is(err, schema.ErrNoPrimaryKey) {
		return rel.Merge(dst, src)
	}
	if err != nil {
		return err
	}

	have, err := rel.Get(dst)
	if err != nil {
		return err
	}
	seen := make(map[string]bool)
	err = eachChild(have, func(child any) error {
		key, ok, err := childKey(pk, child)
		if ok {
			seen[key] = true
		}
		return err
	})
	if err != nil {
		return err
	}

	incoming, err := rel.Get(src)
	if err != nil {
		return err
	}
	return eachChild(incoming, func(child any) error {
		key, ok, err := childKey(pk, child)
		if err != nil {
			return err
		}
		if ok {
			if seen[key] {
				return nil
			}
			seen[key] = true
		}
		return rel.Attach(dst, child)
	})
}

// childKey returns the primary key of child as a string; ok is false when
// the key is unset and the child cannot be told apart from others.
func childKey(pk *schema.ColumnDescriptor, child any) (string, bool, error) {
	zero, err := pk.IsZero(child)
	if err != nil || zero {
		return "", false, err
	}
	id, err := pk.Get(child)
	if err != nil {
		return "", false, err
	}
	return fmt.Sprint(id), true, nil
}

func eachChild(collection any, fn func(any) error) error {
	v := reflect.ValueOf(collection)
	if v.Kind() != reflect.Slice {
		return nil
	}
	for i := 0; i < v.Len(); i++ {
		if v.Index(i).IsNil() {
			continue
		}
		if err := fn(v.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// destination picks the first relation whose related entity is child
func destination(relations []*schema.ColumnDescriptor, child reflect.Type) *schema.ColumnDescriptor {
	for _, rel := range relations {
		if rel.Related == child {
			return rel
		}
	}
	return nil
}

// All reconstructs rows as a deduplicated slice of *E
func All[E any](m *Materializer, rows []query.Row) ([]*E, error) {
	items, err := m.All(schema.TypeOf[E](), rows)
	if err != nil {
		return nil, err
	}
	result := make([]*E, len(items))
	for i, item := range items {
		result[i] = item.(*E)
	}
	return result, nil
}

// One reconstructs a single row as *E
func One[E any](m *Materializer, row query.Row) (*E, error) {
	item, err := m.One(schema.TypeOf[E](), row)
	if err != nil {
		return nil, err
	}
	return item.(*E), nil
}
