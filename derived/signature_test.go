package derived_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/derived"
	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/query"
)

type fooer interface{ Foo() }
type barer interface{ Bar() }
type fooBar interface {
	Foo()
	Bar()
}

type fooBarImpl struct{}

func (fooBarImpl) Foo() {}
func (fooBarImpl) Bar() {}

func shape(name string) func() *query.LogicalQuery {
	return func() *query.LogicalQuery { return &query.LogicalQuery{MethodName: name} }
}

func TestResolveSeededBuiltinByName(t *testing.T) {
	tbl := derived.NewSignatureTable()

	lq, ok, err := tbl.Resolve("findById", []reflect.Type{reflect.TypeOf(int64(0))})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "findById", lq.MethodName)
	assert.Equal(t, query.OpFind, lq.Op)

	_, ok, _ = tbl.Resolve("findBySomethingElse", nil)
	assert.False(t, ok)
}

func TestResolveExactBeatsWildcard(t *testing.T) {
	tbl := derived.NewSignatureTable()
	tbl.Register("delete", []reflect.Type{reflect.TypeOf(int64(0))}, shape("delete-by-long"))

	lq, ok, err := tbl.Resolve("delete", []reflect.Type{reflect.TypeOf(int64(0))})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "delete-by-long", lq.MethodName)

	// A different concrete type still falls through to the wildcard entry.
	lq, ok, err = tbl.Resolve("delete", []reflect.Type{reflect.TypeOf("x")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "delete", lq.MethodName)
}

func TestResolveDeeperInterfaceWinsBetweenWildcards(t *testing.T) {
	tbl := derived.NewSignatureTable()
	tbl.Register("delete", []reflect.Type{reflect.TypeOf((*fooer)(nil)).Elem()}, shape("delete-fooer"))
	tbl.Register("delete", []reflect.Type{reflect.TypeOf((*fooBar)(nil)).Elem()}, shape("delete-foobar"))

	lq, ok, err := tbl.Resolve("delete", []reflect.Type{reflect.TypeOf(fooBarImpl{})})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "delete-foobar", lq.MethodName)
}

func TestResolveIncomparableWildcardsFailAmbiguous(t *testing.T) {
	tbl := derived.NewSignatureTable()
	tbl.Register("delete", []reflect.Type{reflect.TypeOf((*fooer)(nil)).Elem()}, shape("delete-fooer"))
	tbl.Register("delete", []reflect.Type{reflect.TypeOf((*barer)(nil)).Elem()}, shape("delete-barer"))

	_, ok, err := tbl.Resolve("delete", []reflect.Type{reflect.TypeOf(fooBarImpl{})})
	require.True(t, ok)
	require.Error(t, err)
	kind, hasKind := memrerr.KindOf(err)
	require.True(t, hasKind)
	assert.Equal(t, memrerr.InvalidQuery, kind)
	assert.Contains(t, err.Error(), "ambiguous built-in")
}

func TestResolveWrongArityFailsArgument(t *testing.T) {
	tbl := derived.NewSignatureTable()
	_, ok, err := tbl.Resolve("findById", nil)
	require.True(t, ok)
	require.Error(t, err)
	kind, hasKind := memrerr.KindOf(err)
	require.True(t, hasKind)
	assert.Equal(t, memrerr.Argument, kind)
}
