package executor_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/column"
	"github.com/memris/memris/executor"
	"github.com/memris/memris/index"
	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/metrics"
	"github.com/memris/memris/query"
	"github.com/memris/memris/rowid"
	"github.com/memris/memris/table"
)

type fakeMaterializer struct {
	idCol *column.Numeric[int64]
}

func (m *fakeMaterializer) Hydrate(entity string, ref rowid.Ref) (any, error) {
	v, _ := m.idCol.Get(ref.Id.FlatOffset())
	return v, nil
}

func (m *fakeMaterializer) Project(entity string, ref rowid.Ref, p *query.Projection) (any, error) {
	return m.Hydrate(entity, ref)
}

type orderFixture struct {
	tbl       *table.Table[int64]
	idCol     *column.Numeric[int64]
	statusCol *column.StringColumn
	totalCol  *column.Numeric[int64]
	compIdx   *index.CompositeRange
	statusIdx *index.Hash[string]
}

func newOrderFixture() *orderFixture {
	return &orderFixture{
		tbl:       table.New[int64](),
		idCol:     column.NewNumeric[int64](16),
		statusCol: column.NewStringColumn(16),
		totalCol:  column.NewNumeric[int64](16),
		compIdx:   index.NewCompositeRange(),
		statusIdx: index.NewHash[string](0),
	}
}

func (f *orderFixture) insert(id int64, status string, total int64) rowid.Ref {
	ref, err := f.tbl.Insert(id, func(offset uint64) {
		f.idCol.Put(offset, id)
		f.statusCol.Put(offset, status)
		f.totalCol.Put(offset, total)
	})
	if err != nil {
		panic(err)
	}
	f.compIdx.Add(index.CompositeKey{index.StrComponent(status), index.IntComponent(total)}, ref.Id)
	f.statusIdx.Add(status, ref.Id)
	return ref
}

func (f *orderFixture) schema() *executor.Schema {
	return &executor.Schema{
		Table: f.tbl,
		Columns: map[int]executor.ColumnAccessor{
			0: executor.NewI64Accessor(f.idCol, column.I64),
			1: executor.NewStringAccessor(f.statusCol),
			2: executor.NewI64Accessor(f.totalCol, column.I64),
		},
		SingleColumnIndex: map[int]executor.ColumnIndex{
			1: executor.NewHashIndex(f.statusIdx),
		},
		CompositeIndex: map[string]executor.CompositeIndex{
			"status_total_idx": executor.NewCompositeRangeIndex(f.compIdx),
		},
	}
}

func TestExecuteCompositeIndexFilterAndOrder(t *testing.T) {
	fx := newOrderFixture()
	fx.insert(1, "OPEN", 50)
	fx.insert(2, "OPEN", 150)
	fx.insert(3, "OPEN", 300)
	fx.insert(4, "CLOSED", 500)

	ex := executor.New(&fakeMaterializer{idCol: fx.idCol})
	ex.Register("Order", fx.schema())

	cq := &query.CompiledQuery{
		MethodName: "findByStatusAndTotalGreaterThanEqual",
		Op:         query.OpFind,
		ReturnKind: query.ReturnList,
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 1, TypeCode: column.String, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}, NextCombinator: query.CombinatorAnd},
			{ColumnPosition: 2, TypeCode: column.I64, Operator: query.OpGE, Arg: query.CompiledArgSlot{ParamIndex: 1}},
		},
		OrderBy:             []query.OrderBy{{Property: "total", Direction: query.Desc}},
		OrderColumnPosition: []int{2},
		IndexShapes: []query.IndexShape{
			{IndexName: "status_total_idx", Composite: true, ColumnOrder: []int{1, 2}, ConditionIdx: []int{0, 1}},
		},
	}

	result, err := ex.Execute("Order", cq, []any{"OPEN", int64(100)})
	require.NoError(t, err)
	ids, ok := result.([]any)
	require.True(t, ok)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(3), ids[0])
	assert.Equal(t, int64(2), ids[1])
}

func TestExecuteCompositePrefixOnlyProbeScansExtensions(t *testing.T) {
	fx := newOrderFixture()
	fx.insert(1, "OPEN", 50)
	fx.insert(2, "OPEN", 150)
	fx.insert(3, "CLOSED", 300)

	ex := executor.New(&fakeMaterializer{idCol: fx.idCol})
	schema := fx.schema()
	delete(schema.SingleColumnIndex, 1) // force the composite probe
	ex.Register("Order", schema)

	cq := &query.CompiledQuery{
		MethodName: "findByStatus",
		Op:         query.OpFind,
		ReturnKind: query.ReturnList,
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 1, TypeCode: column.String, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}},
		},
		IndexShapes: []query.IndexShape{
			{IndexName: "status_total_idx", Composite: true, ColumnOrder: []int{1}, ConditionIdx: []int{0}},
		},
	}

	result, err := ex.Execute("Order", cq, []any{"OPEN"})
	require.NoError(t, err)
	ids := result.([]any)
	assert.ElementsMatch(t, []any{int64(1), int64(2)}, ids)
}

func TestExecuteCountViaSingleColumnHashIndex(t *testing.T) {
	fx := newOrderFixture()
	fx.insert(1, "OPEN", 50)
	fx.insert(2, "OPEN", 150)
	fx.insert(3, "CLOSED", 300)

	ex := executor.New(&fakeMaterializer{idCol: fx.idCol})
	ex.Register("Order", fx.schema())

	cq := &query.CompiledQuery{
		MethodName: "countByStatus",
		Op:         query.OpCount,
		ReturnKind: query.ReturnCount,
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 1, TypeCode: column.String, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}},
		},
	}

	result, err := ex.Execute("Order", cq, []any{"OPEN"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result)
}

func TestExecuteLimitTruncates(t *testing.T) {
	fx := newOrderFixture()
	fx.insert(1, "OPEN", 10)
	fx.insert(2, "OPEN", 20)
	fx.insert(3, "OPEN", 30)

	ex := executor.New(&fakeMaterializer{idCol: fx.idCol})
	ex.Register("Order", fx.schema())

	cq := &query.CompiledQuery{
		MethodName:          "findFirst2ByStatusOrderByTotalAsc",
		Op:                  query.OpFind,
		ReturnKind:          query.ReturnList,
		Limit:               2,
		OrderBy:             []query.OrderBy{{Property: "total", Direction: query.Asc}},
		OrderColumnPosition: []int{2},
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 1, TypeCode: column.String, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}},
		},
	}

	result, err := ex.Execute("Order", cq, []any{"OPEN"})
	require.NoError(t, err)
	ids := result.([]any)
	require.Len(t, ids, 2)
	assert.Equal(t, int64(1), ids[0])
	assert.Equal(t, int64(2), ids[1])
}

func TestExecuteOptionalWithMultipleRowsFailsCardinality(t *testing.T) {
	fx := newOrderFixture()
	fx.insert(1, "OPEN", 10)
	fx.insert(2, "OPEN", 20)

	ex := executor.New(&fakeMaterializer{idCol: fx.idCol})
	ex.Register("Order", fx.schema())

	cq := &query.CompiledQuery{
		MethodName: "findByStatus",
		Op:         query.OpFind,
		ReturnKind: query.ReturnOptional,
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 1, TypeCode: column.String, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}},
		},
	}

	_, err := ex.Execute("Order", cq, []any{"OPEN"})
	require.Error(t, err)
	kind, ok := memrerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, memrerr.Cardinality, kind)
}

func TestExecuteObservesProbesGroupsAndScans(t *testing.T) {
	fx := newOrderFixture()
	fx.insert(1, "OPEN", 50)
	fx.insert(2, "CLOSED", 300)

	ex := executor.New(&fakeMaterializer{idCol: fx.idCol})
	ex.Register("Order", fx.schema())
	c := metrics.New()
	ex.SetMetrics(c)

	// One AND-group served by the composite index.
	cq := &query.CompiledQuery{
		MethodName: "findByStatusAndTotalGreaterThanEqual",
		Op:         query.OpFind,
		ReturnKind: query.ReturnList,
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 1, TypeCode: column.String, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}, NextCombinator: query.CombinatorAnd},
			{ColumnPosition: 2, TypeCode: column.I64, Operator: query.OpGE, Arg: query.CompiledArgSlot{ParamIndex: 1}},
		},
		IndexShapes: []query.IndexShape{
			{IndexName: "status_total_idx", Composite: true, ColumnOrder: []int{1, 2}, ConditionIdx: []int{0, 1}},
		},
	}
	_, err := ex.Execute("Order", cq, []any{"OPEN", int64(10)})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.ExecutorGroupsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.IndexProbesTotal.WithLabelValues("status_total_idx", "hit")))

	// An unindexed column falls back to a full scan, labeled by entity.
	cq2 := &query.CompiledQuery{
		MethodName: "findByTotal",
		Op:         query.OpFind,
		ReturnKind: query.ReturnList,
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 2, TypeCode: column.I64, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}},
		},
	}
	_, err = ex.Execute("Order", cq2, []any{int64(50)})
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.ScansTotal.WithLabelValues("Order", "all")))
}

func TestExecuteUpdateAppliesAssignmentsToMatchedRows(t *testing.T) {
	fx := newOrderFixture()
	fx.insert(1, "OPEN", 10)
	fx.insert(2, "OPEN", 20)

	var applied []map[int]any
	s := fx.schema()
	s.ApplyUpdate = func(ref rowid.Ref, values map[int]any) error {
		applied = append(applied, values)
		return nil
	}

	ex := executor.New(&fakeMaterializer{idCol: fx.idCol})
	ex.Register("Order", s)

	cq := &query.CompiledQuery{
		MethodName: "setStatusByStatus",
		Op:         query.OpUpdate,
		ReturnKind: query.ReturnModifying,
		Conditions: []query.CompiledCondition{
			{ColumnPosition: 1, TypeCode: column.String, Operator: query.OpEQ, Arg: query.CompiledArgSlot{ParamIndex: 0}},
		},
		Assignments: []query.CompiledAssignment{
			{ColumnPosition: 1, TypeCode: column.String, Value: query.CompiledArgSlot{ParamIndex: 1}},
		},
	}

	result, err := ex.Execute("Order", cq, []any{"OPEN", "SHIPPED"})
	require.NoError(t, err)
	assert.Equal(t, 2, result)
	assert.Len(t, applied, 2)
}
