package jpql_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/jpql"
	"github.com/memris/memris/query"
)

func TestParseSelectWithOrAndPrecedence(t *testing.T) {
	p := jpql.NewParser("findCustom", []string{"a", "n"}, false)
	lq, err := p.Parse("SELECT u FROM User u WHERE u.age > :a AND u.active = true OR u.name = :n")
	require.NoError(t, err)
	require.Len(t, lq.Conditions, 3)

	// Group 1: age>a AND active=true (AND-joined, then OR to group 2).
	assert.Equal(t, "age", lq.Conditions[0].Property)
	assert.Equal(t, query.OpGT, lq.Conditions[0].Operator)
	assert.Equal(t, query.CombinatorAnd, lq.Conditions[0].NextCombinator)

	assert.Equal(t, "active", lq.Conditions[1].Property)
	assert.Equal(t, query.OpEQ, lq.Conditions[1].Operator)
	assert.Equal(t, query.CombinatorOr, lq.Conditions[1].NextCombinator)

	assert.Equal(t, "name", lq.Conditions[2].Property)
	assert.Equal(t, query.CombinatorNone, lq.Conditions[2].NextCombinator)
}

func TestParseEntityNamedOrderWithOrderByClause(t *testing.T) {
	p := jpql.NewParser("findSorted", nil, false)
	lq, err := p.Parse("SELECT o FROM Order o ORDER BY o.total DESC")
	require.NoError(t, err)
	require.Len(t, lq.OrderBy, 1)
	assert.Equal(t, "total", lq.OrderBy[0].Property)
	assert.Equal(t, query.Desc, lq.OrderBy[0].Direction)
}

func TestParseUpdateRequiresModifyingMarker(t *testing.T) {
	p := jpql.NewParser("renameUser", []string{"n", "id"}, false)
	_, err := p.Parse("UPDATE User u SET u.name = :n WHERE u.id = :id")
	assert.Error(t, err)

	p2 := jpql.NewParser("renameUser", []string{"n", "id"}, true)
	lq, err := p2.Parse("UPDATE User u SET u.name = :n WHERE u.id = :id")
	require.NoError(t, err)
	require.Len(t, lq.Assignments, 1)
	assert.Equal(t, "name", lq.Assignments[0].Property)
	assert.Equal(t, 0, lq.Assignments[0].Value.ParamIndex)
	require.Len(t, lq.Conditions, 1)
	assert.Equal(t, "id", lq.Conditions[0].Property)
	assert.Equal(t, query.ReturnModifying, lq.ReturnKind)
}

func TestParseBetweenAndNamedParams(t *testing.T) {
	p := jpql.NewParser("ranged", []string{"min", "max"}, false)
	lq, err := p.Parse("SELECT u FROM User u WHERE u.age BETWEEN :min AND :max")
	require.NoError(t, err)
	require.Len(t, lq.Conditions, 1)
	assert.Equal(t, query.OpBetween, lq.Conditions[0].Operator)
	assert.Equal(t, 0, lq.Conditions[0].Arg.ParamIndex)
	assert.Equal(t, 1, lq.Conditions[0].ArgHigh.ParamIndex)
}

func TestParseProjectionRequiresAliases(t *testing.T) {
	p := jpql.NewParser("proj", nil, false)
	_, err := p.Parse("SELECT u.name, u.age FROM User u")
	assert.Error(t, err)

	p2 := jpql.NewParser("proj2", nil, false)
	lq, err := p2.Parse("SELECT u.name AS name, u.age AS age FROM User u")
	require.NoError(t, err)
	require.NotNil(t, lq.Projection)
	assert.Len(t, lq.Projection.Items, 2)
}

func TestUnresolvedNamedParameterFails(t *testing.T) {
	p := jpql.NewParser("bad", []string{"other"}, false)
	_, err := p.Parse("SELECT u FROM User u WHERE u.age = :missing")
	assert.Error(t, err)
}
