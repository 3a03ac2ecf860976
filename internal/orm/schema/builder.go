package schema

import (
	"errors"
	"reflect"
)

// TypeOf returns the reflect.Type of T
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Entity builds a descriptor for E stored in table.
// An empty table name is filled in by the registry's naming strategy.
func Entity[E any](table string) *EntityDescriptor {
	t := TypeOf[E]()
	return &EntityDescriptor{
		Type:      t,
		Name:      t.Name(),
		TableName: table,
		New:       func() any { return new(E) },
	}
}

// Builder registers one entity and its columns with a fluent API.
// The first registration error is kept and returned by Err.
type Builder[E any] struct {
	registry *Registry
	entity   *EntityDescriptor
	errs     []error
}

// Define registers E under table and returns a builder for its columns
func Define[E any](registry *Registry, table string) *Builder[E] {
	b := &Builder[E]{registry: registry, entity: Entity[E](table)}
	if err := registry.RegisterEntity(b.entity); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Column registers a column on E
func (b *Builder[E]) Column(c Column[E]) *Builder[E] {
	if err := b.registry.RegisterColumn(b.entity.Type, c.desc); err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Columns registers several columns on E in order
func (b *Builder[E]) Columns(cols ...Column[E]) *Builder[E] {
	for _, c := range cols {
		b.Column(c)
	}
	return b
}

// Entity returns the registered descriptor
func (b *Builder[E]) Entity() *EntityDescriptor {
	return b.entity
}

// Err returns the registration errors joined together, or nil
func (b *Builder[E]) Err() error {
	return errors.Join(b.errs...)
}

// BindRepository registers R as the repository type serving E
func BindRepository[R, E any](registry *Registry) error {
	return registry.RegisterRepository(TypeOf[R](), TypeOf[E]())
}
