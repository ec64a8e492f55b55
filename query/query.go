// Package query defines the shared AST types that sit between the two
// front-ends (derived-method planner, embedded-query parser) and the
// compiler/executor: LogicalQuery (unresolved property paths) and
// CompiledQuery (resolved column positions/type codes/argument slots).
package query

import "github.com/memris/memris/column"

// Op identifies the logical operation a query performs.
type Op uint8

const (
	OpFind Op = iota
	OpCount
	OpCountAll
	OpExists
	OpUpdate
	OpDelete
)

// ReturnKind identifies the shape of the value the executor hands back.
type ReturnKind uint8

const (
	ReturnList ReturnKind = iota
	ReturnOptional
	ReturnCount
	ReturnBoolean
	ReturnModifying
)

// Operator identifies a condition's comparison.
type Operator uint8

const (
	OpEQ Operator = iota
	OpNE
	OpGT
	OpGE
	OpLT
	OpLE
	OpBetween
	OpStartsWith
	OpEndsWith
	OpContains
	OpNotContains
	OpIn
	OpNotIn
	OpLike
	OpNotLike
	OpIsNull
	OpIsNotNull
	OpTrue
	OpFalse
)

// Combinator joins one condition to the next in the flat DNF condition
// list (LogicalQuery: "combinator-to-next ∈ {AND, OR}").
type Combinator uint8

const (
	CombinatorNone Combinator = iota // terminal condition, no next
	CombinatorAnd
	CombinatorOr
)

// ArgSlot identifies where a condition's comparison value comes from.
type ArgSlot struct {
	// ParamIndex is the index into the method's argument array, used when
	// Literal is not set.
	ParamIndex int
	// Literal holds a bound literal value (e.g. the boolean suffix forms
	// True/False, or a JPQL literal) in lieu of a parameter reference.
	HasLiteral bool
	Literal    any
}

// ParamRef marks an IN-list element that must be resolved from the method's
// argument array at execution time rather than treated as a literal; IN
// lists can mix literal and parameter elements, so the reference travels
// inside the literal slice where an ArgSlot cannot.
type ParamRef struct{ Index int }

// Condition is one flat entry in the DNF condition list.
type Condition struct {
	Property     string // dotted property path, e.g. "department.address.city"
	Operator     Operator
	Arg          ArgSlot
	ArgHigh      ArgSlot // second bound, used only by OpBetween
	IgnoreCase   bool
	NextCombinator Combinator
}

// JoinType identifies inner vs left join semantics.
type JoinType uint8

const (
	JoinInner JoinType = iota
	JoinLeft
)

// Join describes one join descriptor (LogicalQuery joins).
type Join struct {
	PropertyPath   string // the relationship property on the source entity
	TargetEntity   string
	JoinColumn     string // FK column name on the source entity
	ReferencedColumn string // target column name, or "" meaning target id
	Type           JoinType
}

// OrderDirection is ascending or descending.
type OrderDirection uint8

const (
	Asc OrderDirection = iota
	Desc
)

// OrderBy is one ordering clause entry.
type OrderBy struct {
	Property  string
	Direction OrderDirection
}

// ProjectionItem is one aliased item of a multi-item projection.
type ProjectionItem struct {
	Alias    string
	Property string
}

// Projection describes a projection target for the select list.
type Projection struct {
	// TargetType names the external DTO/record type the executor's
	// materializer should construct, or "" for the plain entity type.
	TargetType string
	Items      []ProjectionItem
}

// Assignment is one UPDATE ... SET target; updates cannot assign to
// the id column (enforced at parse/compile time, invalid-query).
type Assignment struct {
	Property string
	Value    ArgSlot
}

// LogicalQuery is the unresolved query AST: both the derived-method
// planner and the embedded-query parser produce exactly this shape.
type LogicalQuery struct {
	MethodName string
	Op         Op
	ReturnKind ReturnKind

	Conditions []Condition
	Joins      []Join
	OrderBy    []OrderBy
	Limit      int // 0 means unbounded
	Distinct   bool
	Projection *Projection

	Assignments []Assignment  // only for OpUpdate
	Having      []Condition   // only when a GROUP BY/HAVING clause is present
	GroupBy     []string
}

// CompiledArgSlot is an ArgSlot with the literal, if any, already converted
// to storage representation via the field's value converter.
type CompiledArgSlot struct {
	ParamIndex int
	HasLiteral bool
	Literal    any
}

// CompiledCondition is a Condition with a resolved column position and type
// code (CompiledQuery).
type CompiledCondition struct {
	ColumnPosition int
	TypeCode       column.TypeCode
	Operator       Operator
	Arg            CompiledArgSlot
	ArgHigh        CompiledArgSlot
	IgnoreCase     bool
	NextCombinator Combinator
}

// IndexShape records, for one declared index, the ordered argument-slot
// list that produces its composite key and which condition indices it
// consumes when selected.
type IndexShape struct {
	IndexName    string
	Composite    bool
	ColumnOrder  []int // column positions contributing to the key, in order
	ConditionIdx []int // indices into CompiledQuery.Conditions this shape can consume
}

// CompiledJoin is a Join with resolved column positions.
type CompiledJoin struct {
	Join
	SourceColumnPosition int
	TargetColumnPosition int // -1 when TargetIsID is true
	TargetIsID           bool
	FKTypeCode           column.TypeCode
	TargetEntity         string
}

// CompiledAssignment is an Assignment with a resolved column position and a
// storage-converted literal/arg slot.
type CompiledAssignment struct {
	ColumnPosition int
	TypeCode       column.TypeCode
	Value          CompiledArgSlot
}

// CompiledQuery is the resolved plan the executor dispatches:
// same shape as LogicalQuery but with column positions, type codes, and
// argument slot indices resolved, plus precomputed composite-index shapes.
type CompiledQuery struct {
	MethodName string
	Op         Op
	ReturnKind ReturnKind

	Conditions []CompiledCondition
	Joins      []CompiledJoin
	OrderBy    []OrderBy
	OrderColumnPosition []int // parallel to OrderBy, resolved column positions
	Limit      int
	Distinct   bool
	Projection *Projection

	Assignments []CompiledAssignment
	Having      []CompiledCondition
	GroupBy     []string

	IndexShapes []IndexShape
}
