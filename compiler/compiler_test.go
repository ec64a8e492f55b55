package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/column"
	"github.com/memris/memris/compiler"
	"github.com/memris/memris/convert"
	"github.com/memris/memris/metadata"
	"github.com/memris/memris/query"
)

func orderEntity() *metadata.Entity {
	return &metadata.Entity{
		ClassID:  "Order",
		IDColumn: "id",
		Fields: []metadata.Field{
			{PropertyName: "id", ColumnName: "id", ColumnPosition: 0, TypeCode: column.I64},
			{PropertyName: "status", ColumnName: "status", ColumnPosition: 1, TypeCode: column.String},
			{PropertyName: "total", ColumnName: "total", ColumnPosition: 2, TypeCode: column.I64},
		},
		Indexes: []metadata.Index{
			{Name: "status_total_idx", Fields: []string{"status", "total"}, Tag: metadata.IndexRange},
		},
	}
}

func TestCompileResolvesColumnsAndIndexShape(t *testing.T) {
	c := compiler.New(metadata.MapRegistry{}, convert.NewRegistry())
	lq := &query.LogicalQuery{
		MethodName: "findByStatusAndTotalGreaterThanEqual",
		Op:         query.OpFind,
		ReturnKind: query.ReturnList,
		Conditions: []query.Condition{
			{Property: "status", Operator: query.OpEQ, Arg: query.ArgSlot{ParamIndex: 0}, NextCombinator: query.CombinatorAnd},
			{Property: "total", Operator: query.OpGE, Arg: query.ArgSlot{ParamIndex: 1}},
		},
	}

	cq, err := c.Compile(lq, orderEntity())
	require.NoError(t, err)
	require.Len(t, cq.Conditions, 2)
	assert.Equal(t, 1, cq.Conditions[0].ColumnPosition)
	assert.Equal(t, 2, cq.Conditions[1].ColumnPosition)

	require.Len(t, cq.IndexShapes, 1)
	shape := cq.IndexShapes[0]
	assert.Equal(t, "status_total_idx", shape.IndexName)
	assert.Equal(t, []int{1, 2}, shape.ColumnOrder)
	assert.Equal(t, []int{0, 1}, shape.ConditionIdx)
}

func TestCompileRejectsUnknownProperty(t *testing.T) {
	c := compiler.New(metadata.MapRegistry{}, convert.NewRegistry())
	lq := &query.LogicalQuery{
		Conditions: []query.Condition{{Property: "bogus", Operator: query.OpEQ, Arg: query.ArgSlot{ParamIndex: 0}}},
	}
	_, err := c.Compile(lq, orderEntity())
	assert.Error(t, err)
}
