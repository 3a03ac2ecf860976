package schema

import (
	"fmt"
	"reflect"
)

// Projection is one aliased output column: Source AS Alias
type Projection struct {
	Table  string
	Column string
	Alias  string
	Source string
}

// Resolver derives table and column facts from a Registry.
// Nothing is cached; every call reads the registry.
type Resolver struct {
	registry *Registry
}

// NewResolver creates a resolver over registry
func NewResolver(registry *Registry) *Resolver {
	return &Resolver{registry: registry}
}

// Registry returns the underlying registry
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Entity returns the descriptor for t
func (r *Resolver) Entity(t reflect.Type) (*EntityDescriptor, error) {
	return r.registry.LookupEntity(t)
}

// TableName returns the table t is stored in
func (r *Resolver) TableName(t reflect.Type) (string, error) {
	e, err := r.registry.LookupEntity(t)
	if err != nil {
		return "", err
	}
	return e.TableName, nil
}

// ScalarColumns returns t's columns that are not relations
func (r *Resolver) ScalarColumns(t reflect.Type) ([]*ColumnDescriptor, error) {
	if _, err := r.registry.LookupEntity(t); err != nil {
		return nil, err
	}
	var result []*ColumnDescriptor
	for _, c := range r.registry.LookupColumns(t) {
		if !c.IsRelation() {
			result = append(result, c)
		}
	}
	return result, nil
}

// RelationColumns returns t's relation columns
func (r *Resolver) RelationColumns(t reflect.Type) ([]*ColumnDescriptor, error) {
	if _, err := r.registry.LookupEntity(t); err != nil {
		return nil, err
	}
	var result []*ColumnDescriptor
	for _, c := range r.registry.LookupColumns(t) {
		if c.IsRelation() {
			result = append(result, c)
		}
	}
	return result, nil
}

// AliasedProjection returns one projection per scalar column of t,
// aliased table_column so joined rows stay unambiguous.
func (r *Resolver) AliasedProjection(t reflect.Type) ([]Projection, error) {
	table, err := r.TableName(t)
	if err != nil {
		return nil, err
	}
	cols, err := r.ScalarColumns(t)
	if err != nil {
		return nil, err
	}

	result := make([]Projection, 0, len(cols))
	for _, c := range cols {
		result = append(result, Projection{
			Table:  table,
			Column: c.Name,
			Alias:  table + "_" + c.Name,
			Source: table + "." + c.Name,
		})
	}
	return result, nil
}

// PrimaryColumn returns the first scalar column of t flagged as primary key
func (r *Resolver) PrimaryColumn(t reflect.Type) (*ColumnDescriptor, error) {
	cols, err := r.ScalarColumns(t)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if c.Primary {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, t)
}

// Column finds the scalar column of t with the given column name
func (r *Resolver) Column(t reflect.Type, name string) (*ColumnDescriptor, error) {
	cols, err := r.ScalarColumns(t)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no column %q", ErrUnknownColumn, t, name)
}

// MatchTable splits an aliased key into its owning entity and column name.
// The longest registered table name that prefixes key followed by "_" wins,
// so "user_profile_id" resolves to user_profile rather than user.
func (r *Resolver) MatchTable(key string) (*EntityDescriptor, string, bool) {
	for i := len(key) - 1; i > 0; i-- {
		if key[i] != '_' {
			continue
		}
		if e, ok := r.registry.EntityByTable(key[:i]); ok {
			return e, key[i+1:], true
		}
	}
	return nil, "", false
}
