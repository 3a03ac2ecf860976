// Package schema holds the entity metadata registry: which Go types map to
// which tables, their columns, relations and repository bindings.
package schema

import (
	"fmt"
	"reflect"
)

// StorageType is the declared storage class of a column
type StorageType int

const (
	TypeString StorageType = iota
	TypeText
	TypeInt
	TypeBigInt
	TypeFloat
	TypeBool
	TypeTimestamp
	TypeUUID
	TypeULID
	TypeJSON
	// TypeRelation marks a column that holds a nested entity or a collection
	TypeRelation
)

// String returns the string representation of the storage type
func (s StorageType) String() string {
	switch s {
	case TypeString:
		return "string"
	case TypeText:
		return "text"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeUUID:
		return "uuid"
	case TypeULID:
		return "ulid"
	case TypeJSON:
		return "json"
	case TypeRelation:
		return "relation"
	default:
		return "unknown"
	}
}

// ParseStorageType converts a string to a StorageType
func ParseStorageType(s string) (StorageType, error) {
	switch s {
	case "string":
		return TypeString, nil
	case "text":
		return TypeText, nil
	case "int":
		return TypeInt, nil
	case "bigint":
		return TypeBigInt, nil
	case "float":
		return TypeFloat, nil
	case "bool":
		return TypeBool, nil
	case "timestamp":
		return TypeTimestamp, nil
	case "uuid":
		return TypeUUID, nil
	case "ulid":
		return TypeULID, nil
	case "json":
		return TypeJSON, nil
	case "relation":
		return TypeRelation, nil
	default:
		return 0, fmt.Errorf("unknown storage type: %s", s)
	}
}

// IsIdentifier reports whether values of this type are opaque generated identifiers
func (s StorageType) IsIdentifier() bool {
	return s == TypeUUID || s == TypeULID
}

// RelationKind represents the cardinality of a relation column
type RelationKind int

const (
	RelationNone RelationKind = iota
	OneToOne
	OneToMany
	ManyToOne
	ManyToMany
)

// String returns the string representation of the relation kind
func (r RelationKind) String() string {
	switch r {
	case RelationNone:
		return "none"
	case OneToOne:
		return "one_to_one"
	case OneToMany:
		return "one_to_many"
	case ManyToOne:
		return "many_to_one"
	case ManyToMany:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// ParseRelationKind converts a string to a RelationKind
func ParseRelationKind(s string) (RelationKind, error) {
	switch s {
	case "one_to_one":
		return OneToOne, nil
	case "one_to_many":
		return OneToMany, nil
	case "many_to_one":
		return ManyToOne, nil
	case "many_to_many":
		return ManyToMany, nil
	default:
		return 0, fmt.Errorf("unknown relation kind: %s", s)
	}
}

// IsToMany reports whether the relation holds a collection
func (r RelationKind) IsToMany() bool {
	return r == OneToMany || r == ManyToMany
}

// EntityDescriptor describes one registered entity type
type EntityDescriptor struct {
	Type      reflect.Type
	Name      string
	TableName string

	// New returns a fresh zero instance as a pointer (*E)
	New func() any
}

// ColumnDescriptor describes one property of an entity.
// A column with Related set is a relation column; otherwise it is scalar.
type ColumnDescriptor struct {
	Name       string
	Property   string
	Type       StorageType
	Primary    bool
	Related    reflect.Type
	ForeignKey string
	Relation   RelationKind

	access accessor
}

// IsRelation reports whether the column holds a nested entity or collection
func (c *ColumnDescriptor) IsRelation() bool {
	return c.Related != nil
}

// RepositoryBinding associates a repository type with the entity it serves
type RepositoryBinding struct {
	Repository reflect.Type
	Entity     reflect.Type
}
