// Package executor evaluates a query.CompiledQuery
// against a table via index-selection dispatch, condition-program
// filtering, DNF group combination, joins, ordering, limit, projection, and
// return-kind conversion.
package executor

import (
	"github.com/memris/memris/rowid"
)

// ColumnAccessor is the uniform scan/read surface executor needs over any
// of the three paged-column families; concrete adapters wrap
// column.Numeric[int32], column.Numeric[int64], and column.StringColumn.
type ColumnAccessor interface {
	Published() uint64
	Get(offset uint64) (any, bool)
	ScanAll(limit int) []uint64
	ScanEquals(v any, limit int) []uint64
	ScanNotEquals(v any, limit int) []uint64
	ScanGt(v any, limit int) []uint64
	ScanGe(v any, limit int) []uint64
	ScanLt(v any, limit int) []uint64
	ScanLe(v any, limit int) []uint64
	ScanBetween(lo, hi any, limit int) []uint64
	ScanIn(values []any, limit int) []uint64
	ScanNull(limit int) []uint64
	ScanNotNull(limit int) []uint64
	ScanEqualsIgnoreCase(v any, limit int) []uint64
	ScanContains(v any, limit int) []uint64
	ScanStartingWith(v any, limit int) []uint64
	ScanEndingWith(v any, limit int) []uint64
}

// ColumnIndex is the uniform probe surface over a single-column index. A
// false second return means "no index": the operator is not served by this
// family and the executor falls back to a scan.
type ColumnIndex interface {
	Lookup(key any) (rowid.Set, bool)
	Gt(key any) (rowid.Set, bool)
	Ge(key any) (rowid.Set, bool)
	Lt(key any) (rowid.Set, bool)
	Le(key any) (rowid.Set, bool)
	Between(lo, hi any) (rowid.Set, bool)
	StartsWith(prefix any) (rowid.Set, bool)
	EndsWith(suffix any) (rowid.Set, bool)
}

// CompositeIndex is the uniform probe surface over a composite index
// (composite-hash / composite-range), keyed on a slice of already
// storage-converted component values in declared field order.
type CompositeIndex interface {
	Lookup(components []any) (rowid.Set, bool)
	Between(loComponents, hiComponents []any) (rowid.Set, bool)
}

// TableHandle is the subset of table.Table[K]'s surface the executor needs,
// independent of the table's id-key type K.
type TableHandle interface {
	rowid.GenerationSource
	ReadWithSeqlock(ref rowid.Ref, reader func())
	ScanAll() []uint64
}

// Schema binds one entity's columns and indexes for the executor: the
// runtime wiring attached by the external wiring step when the repository
// is built.
type Schema struct {
	// Entity is the registered entity name, stamped by Executor.Register
	// and used as the entity label on scan metrics.
	Entity string

	Table              TableHandle
	Columns            map[int]ColumnAccessor  // by column position
	SingleColumnIndex  map[int]ColumnIndex     // by column position
	CompositeIndex     map[string]CompositeIndex // by index name
	// JoinTargets maps a compiled join's TargetEntity to the schema the
	// executor should probe when walking that relationship.
	JoinTargets map[string]*Schema

	// ResolveID looks up a row by primary-key value, wired by the repository
	// layer (which alone knows the table's concrete id type).
	ResolveID func(id any) (rowid.Ref, bool)
	// ApplyUpdate writes an UPDATE's assignments to ref's row and maintains
	// any affected indexes; wired by the repository layer.
	ApplyUpdate func(ref rowid.Ref, columnValues map[int]any) error
	// ApplyDelete tombstones ref's row and maintains indexes; wired by the
	// repository layer.
	ApplyDelete func(ref rowid.Ref) error
}
