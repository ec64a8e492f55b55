package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/index"
	"github.com/memris/memris/rowid"
)

func TestHashAddLookupRemove(t *testing.T) {
	h := index.NewHash[string](0)
	r1, r2 := rowid.FromFlatOffset(1), rowid.FromFlatOffset(2)
	h.Add("a", r1)
	h.Add("a", r2)

	set, ok := h.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 2, set.Len())

	h.Remove("a", r1)
	set, ok = h.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, set.Len())

	_, ok = h.Lookup("missing")
	assert.False(t, ok)
}

func TestRangeComparisonsAndBetween(t *testing.T) {
	r := index.NewRange[int64](0)
	for i := int64(0); i < 5; i++ {
		r.Add(i*10, rowid.FromFlatOffset(uint64(i)))
	}
	assert.Equal(t, 2, r.Gt(20).Len())  // 30, 40
	assert.Equal(t, 3, r.Ge(20).Len())  // 20, 30, 40
	assert.Equal(t, 2, r.Lt(20).Len())  // 0, 10
	assert.Equal(t, 3, r.Le(20).Len())  // 0, 10, 20
	assert.Equal(t, 3, r.Between(10, 30).Len())
}

func TestPrefixStartsWithAndEquals(t *testing.T) {
	p := index.NewPrefix()
	p.Add("Johnson", rowid.FromFlatOffset(1))
	p.Add("Johnston", rowid.FromFlatOffset(2))
	p.Add("Smith", rowid.FromFlatOffset(3))

	set, ok := p.StartsWith("John")
	require.True(t, ok)
	assert.Equal(t, 2, set.Len())

	set, ok = p.StartsWith("Johnson")
	require.True(t, ok)
	assert.Equal(t, 1, set.Len())

	_, ok = p.StartsWith("Zzz")
	assert.False(t, ok)
}

func TestSuffixEndsWith(t *testing.T) {
	s := index.NewSuffix()
	s.Add("report.pdf", rowid.FromFlatOffset(1))
	s.Add("summary.pdf", rowid.FromFlatOffset(2))
	s.Add("image.png", rowid.FromFlatOffset(3))

	set, ok := s.EndsWith(".pdf")
	require.True(t, ok)
	assert.Equal(t, 2, set.Len())
}

func TestCompositeHashExactMatch(t *testing.T) {
	h := index.NewCompositeHash(0)
	key := index.CompositeKey{index.StrComponent("P"), index.IntComponent(5)}
	h.Add(key, rowid.FromFlatOffset(1))

	set, ok := h.Lookup(key)
	require.True(t, ok)
	assert.Equal(t, 1, set.Len())

	_, ok = h.Lookup(index.CompositeKey{index.StrComponent("S"), index.IntComponent(5)})
	assert.False(t, ok)
}

func TestCompositeRangePartialPrefixBetween(t *testing.T) {
	c := index.NewCompositeRange()
	c.Add(index.CompositeKey{index.StrComponent("P"), index.IntComponent(5)}, rowid.FromFlatOffset(1))
	c.Add(index.CompositeKey{index.StrComponent("P"), index.IntComponent(15)}, rowid.FromFlatOffset(2))
	c.Add(index.CompositeKey{index.StrComponent("S"), index.IntComponent(8)}, rowid.FromFlatOffset(3))

	lo := index.CompositeKey{index.StrComponent("P"), index.IntComponent(10)}
	hi := index.CompositeKey{index.StrComponent("P"), index.MaxComponent()}
	set := c.Between(lo, hi)
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Contains(rowid.FromFlatOffset(2)))
}
