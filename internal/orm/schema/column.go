package schema

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"
)

// accessor reads and writes one field of an entity through a typed reference.
// Every method receives the entity as a pointer (*E).
type accessor interface {
	owner() reflect.Type
	collection() bool
	get(entity any) (any, error)
	set(entity, value any) error
	isZero(entity any) (bool, error)
	init(entity any) error
	attach(entity, child any) error
	merge(dst, src any) error
}

// Column is a column descriptor bound to the entity type E
type Column[E any] struct {
	desc *ColumnDescriptor
}

// Descriptor returns the underlying column descriptor
func (c Column[E]) Descriptor() *ColumnDescriptor {
	return c.desc
}

// ColumnOption customizes a column descriptor
type ColumnOption func(*ColumnDescriptor)

// Primary marks the column as the entity's primary key
func Primary() ColumnOption {
	return func(c *ColumnDescriptor) { c.Primary = true }
}

// ColumnName overrides the snake_case column name derived from the property
func ColumnName(name string) ColumnOption {
	return func(c *ColumnDescriptor) { c.Name = name }
}

// ForeignKey sets the join column on the related table
func ForeignKey(name string) ColumnOption {
	return func(c *ColumnDescriptor) { c.ForeignKey = name }
}

// Kind overrides the relation kind
func Kind(kind RelationKind) ColumnOption {
	return func(c *ColumnDescriptor) { c.Relation = kind }
}

// Scalar declares a scalar column stored with the given storage type.
// ref returns the address of the backing field.
func Scalar[E, V any](property string, typ StorageType, ref func(*E) *V, opts ...ColumnOption) Column[E] {
	return newColumn[E](&ColumnDescriptor{
		Property: property,
		Type:     typ,
		access:   scalarAccess[E, V]{ref: ref},
	}, opts)
}

// HasMany declares a one-to-many relation held in a slice of *R
func HasMany[E, R any](property string, ref func(*E) *[]*R, opts ...ColumnOption) Column[E] {
	return newColumn[E](&ColumnDescriptor{
		Property: property,
		Type:     TypeRelation,
		Related:  TypeOf[R](),
		Relation: OneToMany,
		access:   manyAccess[E, R]{ref: ref},
	}, opts)
}

// HasOne declares a one-to-one relation held in a *R field
func HasOne[E, R any](property string, ref func(*E) **R, opts ...ColumnOption) Column[E] {
	return newColumn[E](&ColumnDescriptor{
		Property: property,
		Type:     TypeRelation,
		Related:  TypeOf[R](),
		Relation: OneToOne,
		access:   oneAccess[E, R]{ref: ref},
	}, opts)
}

func newColumn[E any](c *ColumnDescriptor, opts []ColumnOption) Column[E] {
	for _, opt := range opts {
		opt(c)
	}
	return Column[E]{desc: c}
}

// Get returns the current value of the column on entity
func (c *ColumnDescriptor) Get(entity any) (any, error) {
	if c.access == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAccessor, c.Property)
	}
	return c.access.get(entity)
}

// Set converts value to the field's Go type and stores it on entity
func (c *ColumnDescriptor) Set(entity, value any) error {
	if c.access == nil {
		return fmt.Errorf("%w: %s", ErrNoAccessor, c.Property)
	}
	if err := c.access.set(entity, value); err != nil {
		return fmt.Errorf("column %s: %w", c.Name, err)
	}
	return nil
}

// IsZero reports whether the column holds its zero value on entity
func (c *ColumnDescriptor) IsZero(entity any) (bool, error) {
	if c.access == nil {
		return false, fmt.Errorf("%w: %s", ErrNoAccessor, c.Property)
	}
	return c.access.isZero(entity)
}

// Init gives a relation column a fresh empty placeholder on entity
func (c *ColumnDescriptor) Init(entity any) error {
	if c.access == nil {
		return fmt.Errorf("%w: %s", ErrNoAccessor, c.Property)
	}
	return c.access.init(entity)
}

// Attach appends child to a to-many relation, or assigns it to a to-one relation
func (c *ColumnDescriptor) Attach(entity, child any) error {
	if c.access == nil {
		return fmt.Errorf("%w: %s", ErrNoAccessor, c.Property)
	}
	return c.access.attach(entity, child)
}

// Merge folds the relation held by src into dst.
// Collections are concatenated; a to-one relation is only filled when dst holds none.
func (c *ColumnDescriptor) Merge(dst, src any) error {
	if c.access == nil {
		return fmt.Errorf("%w: %s", ErrNoAccessor, c.Property)
	}
	return c.access.merge(dst, src)
}

func target[E, V any](entity any, ref func(*E) *V) (*V, error) {
	e, ok := entity.(*E)
	if !ok || e == nil {
		return nil, fmt.Errorf("%w: expected *%s, got %T", ErrTypeMismatch, TypeOf[E](), entity)
	}
	return ref(e), nil
}

type scalarAccess[E, V any] struct {
	ref func(*E) *V
}

func (a scalarAccess[E, V]) owner() reflect.Type { return TypeOf[E]() }
func (a scalarAccess[E, V]) collection() bool    { return false }

func (a scalarAccess[E, V]) get(entity any) (any, error) {
	p, err := target(entity, a.ref)
	if err != nil {
		return nil, err
	}
	return *p, nil
}

func (a scalarAccess[E, V]) set(entity, value any) error {
	p, err := target(entity, a.ref)
	if err != nil {
		return err
	}
	return assign(p, value)
}

func (a scalarAccess[E, V]) isZero(entity any) (bool, error) {
	p, err := target(entity, a.ref)
	if err != nil {
		return false, err
	}
	return reflect.ValueOf(p).Elem().IsZero(), nil
}

func (a scalarAccess[E, V]) init(any) error { return nil }

func (a scalarAccess[E, V]) attach(any, any) error {
	return fmt.Errorf("%w: scalar column cannot hold an entity", ErrTypeMismatch)
}

func (a scalarAccess[E, V]) merge(any, any) error { return nil }

type manyAccess[E, R any] struct {
	ref func(*E) *[]*R
}

func (a manyAccess[E, R]) owner() reflect.Type { return TypeOf[E]() }
func (a manyAccess[E, R]) collection() bool    { return true }

func (a manyAccess[E, R]) get(entity any) (any, error) {
	p, err := target(entity, a.ref)
	if err != nil {
		return nil, err
	}
	return *p, nil
}

func (a manyAccess[E, R]) set(entity, value any) error {
	p, err := target(entity, a.ref)
	if err != nil {
		return err
	}
	if value == nil {
		*p = nil
		return nil
	}
	v, ok := value.([]*R)
	if !ok {
		return fmt.Errorf("%w: cannot assign %T to []*%s", ErrTypeMismatch, value, TypeOf[R]())
	}
	*p = v
	return nil
}

func (a manyAccess[E, R]) isZero(entity any) (bool, error) {
	p, err := target(entity, a.ref)
	if err != nil {
		return false, err
	}
	return len(*p) == 0, nil
}

func (a manyAccess[E, R]) init(entity any) error {
	p, err := target(entity, a.ref)
	if err != nil {
		return err
	}
	*p = make([]*R, 0)
	return nil
}

func (a manyAccess[E, R]) attach(entity, child any) error {
	p, err := target(entity, a.ref)
	if err != nil {
		return err
	}
	c, ok := child.(*R)
	if !ok {
		return fmt.Errorf("%w: cannot append %T to []*%s", ErrTypeMismatch, child, TypeOf[R]())
	}
	*p = append(*p, c)
	return nil
}

func (a manyAccess[E, R]) merge(dst, src any) error {
	d, err := target(dst, a.ref)
	if err != nil {
		return err
	}
	s, err := target(src, a.ref)
	if err != nil {
		return err
	}
	*d = append(*d, *s...)
	return nil
}

type oneAccess[E, R any] struct {
	ref func(*E) **R
}

func (a oneAccess[E, R]) owner() reflect.Type { return TypeOf[E]() }
func (a oneAccess[E, R]) collection() bool    { return false }

func (a oneAccess[E, R]) get(entity any) (any, error) {
	p, err := target(entity, a.ref)
	if err != nil {
		return nil, err
	}
	return *p, nil
}

func (a oneAccess[E, R]) set(entity, value any) error {
	p, err := target(entity, a.ref)
	if err != nil {
		return err
	}
	if value == nil {
		*p = nil
		return nil
	}
	v, ok := value.(*R)
	if !ok {
		return fmt.Errorf("%w: cannot assign %T to *%s", ErrTypeMismatch, value, TypeOf[R]())
	}
	*p = v
	return nil
}

func (a oneAccess[E, R]) isZero(entity any) (bool, error) {
	p, err := target(entity, a.ref)
	if err != nil {
		return false, err
	}
	return *p == nil || reflect.ValueOf(*p).Elem().IsZero(), nil
}

func (a oneAccess[E, R]) init(entity any) error {
	p, err := target(entity, a.ref)
	if err != nil {
		return err
	}
	*p = new(R)
	return nil
}

func (a oneAccess[E, R]) attach(entity, child any) error {
	return a.set(entity, child)
}

func (a oneAccess[E, R]) merge(dst, src any) error {
	empty, err := a.isZero(dst)
	if err != nil || !empty {
		return err
	}
	s, err := target(src, a.ref)
	if err != nil {
		return err
	}
	if *s == nil || reflect.ValueOf(*s).Elem().IsZero() {
		return nil
	}
	return a.set(dst, *s)
}

// assign stores value into dst, converting between the driver's scalar
// representation and the field's Go type.
func assign[V any](dst *V, value any) error {
	if value == nil {
		var zero V
		*dst = zero
		return nil
	}
	// pgx decodes uuid columns into raw 16-byte arrays
	if b, ok := value.([16]byte); ok {
		value = uuid.UUID(b)
	}
	if v, ok := value.(V); ok {
		*dst = v
		return nil
	}
	if s, ok := any(dst).(sql.Scanner); ok {
		if err := s.Scan(value); err != nil {
			return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
		}
		return nil
	}

	var err error
	switch d := any(dst).(type) {
	case *string:
		*d, err = cast.ToStringE(value)
	case *int:
		*d, err = cast.ToIntE(value)
	case *int32:
		*d, err = cast.ToInt32E(value)
	case *int64:
		*d, err = cast.ToInt64E(value)
	case *uint:
		*d, err = cast.ToUintE(value)
	case *float32:
		*d, err = cast.ToFloat32E(value)
	case *float64:
		*d, err = cast.ToFloat64E(value)
	case *bool:
		*d, err = cast.ToBoolE(value)
	case *time.Time:
		*d, err = cast.ToTimeE(value)
	case *[]byte:
		switch v := value.(type) {
		case string:
			*d = []byte(v)
		default:
			err = fmt.Errorf("cannot convert %T to []byte", value)
		}
	default:
		err = fmt.Errorf("cannot assign %T to %T", value, *dst)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTypeMismatch, err)
	}
	return nil
}
