// Package metadata defines the entity-metadata descriptor contract consumed
// from an external collaborator: the core neither knows nor depends on how these descriptors are produced (annotation
// scanning, reflection, codegen); it only reads the shape defined here.
package metadata

import "github.com/memris/memris/column"

// Cardinality identifies a relationship's multiplicity.
type Cardinality uint8

const (
	OneToOne Cardinality = iota
	ManyToOne
	OneToMany
	ManyToMany
)

// JoinTable describes the join-table shape for a many-to-many relationship.
type JoinTable struct {
	Name             string
	SourceColumn     string
	TargetColumn     string
}

// Relationship describes a field that references another entity rather than
// storing a scalar column value.
type Relationship struct {
	TargetEntity string
	FKColumn     string
	Cardinality  Cardinality
	JoinTable    *JoinTable // non-nil only for ManyToMany
}

// Field describes one property of an entity.
type Field struct {
	PropertyName string
	ColumnName   string
	// ColumnPosition is the field's stable column index within the table,
	// or -1 for non-stored fields such as relationship holders.
	ColumnPosition int
	TypeCode       column.TypeCode
	Relationship   *Relationship // non-nil for relationship-holder fields
}

// IsStored reports whether the field occupies a table column.
func (f Field) IsStored() bool { return f.ColumnPosition >= 0 }

// IndexTag identifies which index family a declared index uses.
type IndexTag uint8

const (
	IndexHash IndexTag = iota
	IndexRange
	IndexPrefix
	IndexSuffix
)

// Index describes one declared index over one or more fields. A single
// field with IndexHash/IndexRange produces a plain Hash/Range index; more
// than one field always implies the composite variant, selected by Tag.
type Index struct {
	Name   string
	Fields []string // property names, in declared (composite-key) order
	Tag    IndexTag
}

// Composite reports whether the index is over more than one field.
func (i Index) Composite() bool { return len(i.Fields) > 1 }

// Entity is the full metadata descriptor for one stored entity.
type Entity struct {
	ClassID   string
	IDColumn  string
	Fields    []Field
	Indexes   []Index
}

// FieldByProperty resolves a dotted-or-plain property name to its Field
// descriptor; ok is false for unknown properties (an invalid-query
// condition upstream).
func (e *Entity) FieldByProperty(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.PropertyName == name {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnPosition resolves a property path's column position, or -1, false
// if the property does not exist or is not stored.
func (e *Entity) ColumnPosition(name string) (int, column.TypeCode, bool) {
	f, ok := e.FieldByProperty(name)
	if !ok || !f.IsStored() {
		return -1, 0, false
	}
	return f.ColumnPosition, f.TypeCode, true
}

// IDField returns the Field descriptor for the entity's id column.
func (e *Entity) IDField() (Field, bool) {
	for _, f := range e.Fields {
		if f.ColumnName == e.IDColumn {
			return f, true
		}
	}
	return Field{}, false
}

// Registry resolves an entity by class identifier; external wiring builds
// one Registry per storage arena from scanned/generated descriptors.
type Registry interface {
	Entity(classID string) (*Entity, bool)
}

// MapRegistry is the simplest Registry implementation: a static map, used by
// hosts that build descriptors ahead of time (codegen or hand-authored)
// rather than scanning at startup.
type MapRegistry map[string]*Entity

func (m MapRegistry) Entity(classID string) (*Entity, bool) {
	e, ok := m[classID]
	return e, ok
}
