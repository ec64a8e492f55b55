package rowid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/rowid"
)

// rid builds a page-0 RowId for the in-page offset, the common shape these
// tests need.
func rid(offset uint16) rowid.RowId {
	return rowid.FromFlatOffset(uint64(offset))
}

func TestRowIdPackUnpack(t *testing.T) {
	cases := []struct {
		page   uint64
		offset uint16
	}{
		{0, 0},
		{0, 4095},
		{1, 0},
		{7, 65535},
		{rowid.MaxPage, 65535},
	}
	for _, c := range cases {
		id, err := rowid.NewRowId(c.page, c.offset)
		require.NoError(t, err)
		assert.Equal(t, c.page, id.Page())
		assert.Equal(t, c.offset, id.Offset())
	}
}

func TestNewRowIdPageBeyondRangeFailsWithCapacity(t *testing.T) {
	_, err := rowid.NewRowId(rowid.MaxPage+1, 0)
	require.Error(t, err)
	kind, ok := memrerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, memrerr.Capacity, kind)
}

func TestZeroRowIdValid(t *testing.T) {
	var id rowid.RowId
	assert.Equal(t, uint64(0), id.Page())
	assert.Equal(t, uint16(0), id.Offset())
}

func TestAutoSetUpgradePreservesContents(t *testing.T) {
	s := rowid.NewAutoSet(16)
	for i := 0; i < 32; i++ {
		s.Add(rid(uint16(i)))
	}
	require.True(t, s.IsDense())
	assert.Equal(t, 32, s.Len())
	for i := 0; i < 32; i++ {
		assert.True(t, s.Contains(rid(uint16(i))))
	}
	assert.False(t, s.Contains(rid(999)))
}

func TestAutoSetUpgradeAtExactThreshold(t *testing.T) {
	s := rowid.NewAutoSet(4)
	for i := 0; i < 3; i++ {
		s.Add(rid(uint16(i)))
	}
	assert.False(t, s.IsDense())
	s.Add(rid(3))
	assert.True(t, s.IsDense())
}

func TestSetIdempotentInsertAndRemove(t *testing.T) {
	for _, s := range []rowid.Set{rowid.NewSparse(), rowid.NewDense()} {
		id := rid(5)
		assert.True(t, s.Add(id))
		assert.False(t, s.Add(id))
		assert.Equal(t, 1, s.Len())
		assert.True(t, s.Remove(id))
		assert.False(t, s.Remove(id))
		assert.Equal(t, 0, s.Len())
	}
}

func TestSelectionCombinators(t *testing.T) {
	a := rowid.FromIds(1, rid(1), rid(2), rid(3))
	b := rowid.FromIds(1, rid(2), rid(4))

	u := rowid.Union(a, b)
	assert.Equal(t, 4, u.Len())

	i := rowid.Intersect(a, b)
	require.Equal(t, 1, i.Len())
	assert.Equal(t, rid(2), i.At(0).Id)

	d := rowid.Subtract(a, b)
	require.Equal(t, 2, d.Len())
	assert.Equal(t, rid(1), d.At(0).Id)
	assert.Equal(t, rid(3), d.At(1).Id)
}

type fakeGen map[rowid.RowId]uint32

func (f fakeGen) CurrentGeneration(id rowid.RowId) (uint32, bool) {
	g, ok := f[id]
	return g, ok
}

func TestSelectionMaterializeFiltersStale(t *testing.T) {
	id1 := rid(1)
	id2 := rid(2)
	sel := rowid.FromRefs([]rowid.Ref{
		{Id: id1, Generation: 1},
		{Id: id2, Generation: 2},
	})
	src := fakeGen{id1: 1, id2: 3} // id2 was recycled to generation 3
	out := sel.Materialize(src)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, id1, out.At(0).Id)
}
