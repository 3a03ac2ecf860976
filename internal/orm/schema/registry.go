package schema

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry holds entity, column and repository metadata for the process.
// It is populated once at startup and read-only afterwards.
type Registry struct {
	entities     []*EntityDescriptor
	columns      map[reflect.Type][]*ColumnDescriptor
	repositories []*RepositoryBinding
	naming       NamingStrategy
	mu           sync.RWMutex
}

// Option configures a Registry
type Option func(*Registry)

// WithNamingStrategy sets the strategy used to fill in omitted names
func WithNamingStrategy(ns NamingStrategy) Option {
	return func(r *Registry) { r.naming = ns }
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entities:     make([]*EntityDescriptor, 0),
		columns:      make(map[reflect.Type][]*ColumnDescriptor),
		repositories: make([]*RepositoryBinding, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Naming returns the registry's naming strategy
func (r *Registry) Naming() NamingStrategy {
	return r.naming
}

// RegisterEntity records an entity type and its table.
// Registering a type twice appends a second descriptor; lookups return the first.
func (r *Registry) RegisterEntity(desc *EntityDescriptor) error {
	if desc == nil || desc.Type == nil {
		return fmt.Errorf("entity descriptor must have a type")
	}
	if desc.New == nil {
		return fmt.Errorf("entity %s has no constructor", desc.Type)
	}
	if desc.Name == "" {
		desc.Name = desc.Type.Name()
	}
	if desc.TableName == "" {
		desc.TableName = r.naming.TableName(desc.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entities = append(r.entities, desc)
	return nil
}

// RegisterColumn appends a column to the owner's ordered column list
func (r *Registry) RegisterColumn(owner reflect.Type, col *ColumnDescriptor) error {
	if owner == nil || col == nil {
		return fmt.Errorf("column registration needs an owner type and a descriptor")
	}
	if col.Property == "" && col.Name == "" {
		return fmt.Errorf("column on %s has no property name", owner)
	}
	if col.access != nil {
		if col.access.owner() != owner {
			return fmt.Errorf("%w: column %s belongs to %s, not %s", ErrTypeMismatch, col.Property, col.access.owner(), owner)
		}
		if col.IsRelation() && col.access.collection() != col.Relation.IsToMany() {
			return fmt.Errorf("%w: %s.%s declared %s", ErrNotCollection, owner.Name(), col.Property, col.Relation)
		}
	}
	if col.Name == "" {
		col.Name = r.naming.ColumnName(col.Property)
	}
	if col.Property == "" {
		col.Property = col.Name
	}
	if col.IsRelation() {
		col.Type = TypeRelation
		if col.ForeignKey == "" {
			col.ForeignKey = r.naming.ForeignKey(owner.Name())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.columns[owner] = append(r.columns[owner], col)
	return nil
}

// RegisterRepository binds a repository type to the entity it serves
func (r *Registry) RegisterRepository(repository, entity reflect.Type) error {
	if repository == nil || entity == nil {
		return fmt.Errorf("repository registration needs a repository and an entity type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.repositories = append(r.repositories, &RepositoryBinding{Repository: repository, Entity: entity})
	return nil
}

// LookupEntity returns the descriptor registered for t
func (r *Registry) LookupEntity(t reflect.Type) (*EntityDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entities {
		if e.Type == t {
			return e, nil
		}
	}
	return nil, &NotFoundError{Kind: "entity", Type: t}
}

// LookupColumns returns the columns registered for t in declaration order.
// An unknown type yields an empty slice.
func (r *Registry) LookupColumns(t reflect.Type) []*ColumnDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cols := r.columns[t]
	result := make([]*ColumnDescriptor, len(cols))
	copy(result, cols)
	return result
}

// LookupRepository returns the binding registered for a repository type
func (r *Registry) LookupRepository(t reflect.Type) (*RepositoryBinding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.repositories {
		if b.Repository == t {
			return b, nil
		}
	}
	return nil, &NotFoundError{Kind: "repository", Type: t}
}

// Entities returns all registered entities in registration order
func (r *Registry) Entities() []*EntityDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*EntityDescriptor, len(r.entities))
	copy(result, r.entities)
	return result
}

// EntityByTable returns the first entity registered for a table name
func (r *Registry) EntityByTable(table string) (*EntityDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entities {
		if e.TableName == table {
			return e, true
		}
	}
	return nil, false
}
