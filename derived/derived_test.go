package derived_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/column"
	"github.com/memris/memris/derived"
	"github.com/memris/memris/metadata"
	"github.com/memris/memris/query"
)

func userEntity() *metadata.Entity {
	return &metadata.Entity{
		ClassID:  "User",
		IDColumn: "id",
		Fields: []metadata.Field{
			{PropertyName: "id", ColumnName: "id", ColumnPosition: 0, TypeCode: column.I64},
			{PropertyName: "age", ColumnName: "age", ColumnPosition: 1, TypeCode: column.I32},
			{PropertyName: "name", ColumnName: "name", ColumnPosition: 2, TypeCode: column.String},
		},
	}
}

func TestPlanFindByAgeBetween(t *testing.T) {
	planner := derived.NewPlanner(metadata.MapRegistry{})
	lq, err := planner.Plan("findByAgeBetween", userEntity())
	require.NoError(t, err)
	require.Len(t, lq.Conditions, 1)
	cond := lq.Conditions[0]
	assert.Equal(t, "age", cond.Property)
	assert.Equal(t, query.OpBetween, cond.Operator)
	assert.Equal(t, 0, cond.Arg.ParamIndex)
	assert.Equal(t, 1, cond.ArgHigh.ParamIndex)
	assert.Equal(t, query.ReturnList, lq.ReturnKind)
}

func TestPlanFindByNameStartingWith(t *testing.T) {
	planner := derived.NewPlanner(metadata.MapRegistry{})
	lq, err := planner.Plan("findByNameStartingWith", userEntity())
	require.NoError(t, err)
	require.Len(t, lq.Conditions, 1)
	assert.Equal(t, "name", lq.Conditions[0].Property)
	assert.Equal(t, query.OpStartsWith, lq.Conditions[0].Operator)
}

func TestPlanAndOrCombinators(t *testing.T) {
	planner := derived.NewPlanner(metadata.MapRegistry{})
	lq, err := planner.Plan("findByAgeGreaterThanAndNameIgnoreCase", userEntity())
	require.NoError(t, err)
	require.Len(t, lq.Conditions, 2)
	assert.Equal(t, query.OpGT, lq.Conditions[0].Operator)
	assert.Equal(t, query.CombinatorAnd, lq.Conditions[0].NextCombinator)
	assert.Equal(t, "name", lq.Conditions[1].Property)
	assert.True(t, lq.Conditions[1].IgnoreCase)
}

func TestPlanFirstNSetsLimit(t *testing.T) {
	planner := derived.NewPlanner(metadata.MapRegistry{})
	lq, err := planner.Plan("findFirst3ByAge", userEntity())
	require.NoError(t, err)
	assert.Equal(t, 3, lq.Limit)
}

func TestPlanBuiltinFindById(t *testing.T) {
	planner := derived.NewPlanner(metadata.MapRegistry{})
	lq, err := planner.Plan("findById", userEntity())
	require.NoError(t, err)
	assert.Equal(t, query.ReturnOptional, lq.ReturnKind)
	assert.Equal(t, "__id", lq.Conditions[0].Property)
}

func TestPlanUnknownPropertyFails(t *testing.T) {
	planner := derived.NewPlanner(metadata.MapRegistry{})
	_, err := planner.Plan("findByNonexistentField", userEntity())
	assert.Error(t, err)
}
