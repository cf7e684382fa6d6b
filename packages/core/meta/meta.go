// Entity metadata consumed by the query engine.
// The engine never owns schema definitions, it only reads them
// through the Provider interface.
package meta

import (
	"strings"
)

type FieldType string

const (
	TypeString   FieldType = "String"
	TypeNumber   FieldType = "Number"
	TypeBoolean  FieldType = "Boolean"
	TypeDate     FieldType = "Date"
	TypeObjectID FieldType = "ObjectId"
)

func ParseFieldType(raw string) (FieldType, bool) {
	switch FieldType(raw) {
	case TypeString, TypeNumber, TypeBoolean, TypeDate, TypeObjectID:
		return FieldType(raw), true
	}
	return "", false
}

type FieldDescriptor struct {
	Name       string
	Type       FieldType
	IsEnum     bool
	EnumValues []string
	IsUnique   bool
	IsRequired bool

	// FK target entity name, empty if the field is not a foreign key
	Ref string
}

// Case-insensitive enum membership check.
func (f *FieldDescriptor) EnumContains(value string) bool {
	for _, v := range f.EnumValues {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}

type EntityDescriptor struct {
	Name   string
	Fields []FieldDescriptor
}

// Resolves a field by name. Every field referenced in a query must
// resolve through here or the query is rejected.
func (e *EntityDescriptor) Field(name string) (*FieldDescriptor, bool) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// Fields with unique constraints, in declaration order.
func (e *EntityDescriptor) UniqueFields() []string {
	var unique []string
	for i := range e.Fields {
		if e.Fields[i].IsUnique {
			unique = append(unique, e.Fields[i].Name)
		}
	}
	return unique
}

// The FK field on this entity referencing the given target entity.
func (e *EntityDescriptor) RefField(target string) (*FieldDescriptor, bool) {
	for i := range e.Fields {
		if strings.EqualFold(e.Fields[i].Ref, target) {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// A field on a child entity pointing at some parent entity.
type ChildRef struct {
	Entity string
	Field  string
}

type Provider interface {
	Entity(name string) (*EntityDescriptor, bool)
	Entities() []*EntityDescriptor

	// Precomputed parent -> children FK adjacency,
	// O(1) per lookup instead of a metadata scan per delete.
	ChildrenOf(entity string) []ChildRef
}

// Builds the parent -> children adjacency map once, at load time.
func BuildAdjacency(entities []*EntityDescriptor) map[string][]ChildRef {
	adjacency := make(map[string][]ChildRef)

	for _, ent := range entities {
		for i := range ent.Fields {
			ref := ent.Fields[i].Ref
			if ref == "" {
				continue
			}

			adjacency[ref] = append(adjacency[ref], ChildRef{
				Entity: ent.Name,
				Field:  ent.Fields[i].Name,
			})
		}
	}

	return adjacency
}
