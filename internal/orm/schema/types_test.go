package schema

import (
	"testing"
)

func TestStorageType_RoundTrip(t *testing.T) {
	types := []StorageType{
		TypeString, TypeText, TypeInt, TypeBigInt, TypeFloat, TypeBool,
		TypeTimestamp, TypeUUID, TypeULID, TypeJSON, TypeRelation,
	}

	for _, typ := range types {
		parsed, err := ParseStorageType(typ.String())
		if err != nil {
			t.Errorf("ParseStorageType(%q) error = %v", typ.String(), err)
			continue
		}
		if parsed != typ {
			t.Errorf("ParseStorageType(%q) = %v, want %v", typ.String(), parsed, typ)
		}
	}

	if _, err := ParseStorageType("decimal"); err == nil {
		t.Error("expected error for unknown storage type")
	}
	if got := StorageType(99).String(); got != "unknown" {
		t.Errorf("String() = %q, want unknown", got)
	}
}

func TestStorageType_IsIdentifier(t *testing.T) {
	if !TypeUUID.IsIdentifier() || !TypeULID.IsIdentifier() {
		t.Error("uuid and ulid should be identifier types")
	}
	if TypeString.IsIdentifier() {
		t.Error("string should not be an identifier type")
	}
}

func TestRelationKind(t *testing.T) {
	tests := []struct {
		kind   RelationKind
		name   string
		toMany bool
	}{
		{OneToOne, "one_to_one", false},
		{OneToMany, "one_to_many", true},
		{ManyToOne, "many_to_one", false},
		{ManyToMany, "many_to_many", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.kind.String() != tt.name {
				t.Errorf("String() = %q, want %q", tt.kind.String(), tt.name)
			}
			parsed, err := ParseRelationKind(tt.name)
			if err != nil || parsed != tt.kind {
				t.Errorf("ParseRelationKind(%q) = %v, %v", tt.name, parsed, err)
			}
			if tt.kind.IsToMany() != tt.toMany {
				t.Errorf("IsToMany() = %v, want %v", tt.kind.IsToMany(), tt.toMany)
			}
		})
	}

	if _, err := ParseRelationKind("belongs_to"); err == nil {
		t.Error("expected error for unknown relation kind")
	}
}
