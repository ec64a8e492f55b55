package column_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/column"
)

func TestSortableFloatOrderingMatchesNativeOrdering(t *testing.T) {
	values := []float64{-100.5, -1.0, -0.0, 0.0, 0.5, 1.0, 100.5, math.Inf(-1), math.Inf(1)}
	for i := 0; i < len(values); i++ {
		for j := 0; j < len(values); j++ {
			want := values[i] < values[j]
			got := column.EncodeF64(values[i]) < column.EncodeF64(values[j])
			if values[i] != values[j] {
				assert.Equal(t, want, got, "ordering mismatch for %v vs %v", values[i], values[j])
			}
		}
	}
}

func TestSortableFloatRoundTrip(t *testing.T) {
	for _, v := range []float32{0, -0, 1.5, -1.5, 3.4e10, -3.4e10} {
		assert.Equal(t, v, column.DecodeF32(column.EncodeF32(v)))
	}
	for _, v := range []float64{0, -0, 1.5, -1.5, 3.4e100, -3.4e100} {
		assert.Equal(t, v, column.DecodeF64(column.EncodeF64(v)))
	}
}

func TestNumericPutGetAcrossPageBoundary(t *testing.T) {
	c := column.NewNumeric[int64](4)
	for i := uint64(0); i < 10; i++ {
		c.Put(i, int64(i)*10)
	}
	for i := uint64(0); i < 10; i++ {
		v, ok := c.Get(i)
		require.True(t, ok)
		assert.Equal(t, int64(i)*10, v)
	}
}

func TestNumericNullLeavesValueAbsentButAdvancesWatermark(t *testing.T) {
	c := column.NewNumeric[int32](4)
	c.Put(0, 1)
	c.PutNull(1)
	c.Put(2, 3)

	assert.Equal(t, uint64(3), c.Published())
	_, ok := c.Get(1)
	assert.False(t, ok)
	v, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, int32(3), v)
}

func TestPutNullClearsPreviouslyWrittenValue(t *testing.T) {
	c := column.NewNumeric[int64](4)
	c.Put(0, 99)
	c.PutNull(0)
	_, ok := c.Get(0)
	assert.False(t, ok)

	s := column.NewStringColumn(4)
	s.Put(0, "ghost")
	s.PutNull(0)
	_, ok = s.Get(0)
	assert.False(t, ok)
	assert.Empty(t, s.ScanEquals("ghost", 0))
}

func TestNumericGetBeyondWatermarkIsAbsent(t *testing.T) {
	c := column.NewNumeric[int32](4)
	c.Put(0, 1)
	_, ok := c.Get(5)
	assert.False(t, ok)
}

func TestNumericScanPrimitives(t *testing.T) {
	c := column.NewNumeric[int64](8)
	for i := int64(0); i < 10; i++ {
		c.Put(uint64(i), i)
	}
	c.PutNull(10)

	assert.Len(t, c.ScanAll(0), 10)
	assert.Equal(t, []uint64{5}, c.ScanEquals(5, 0))
	assert.Len(t, c.ScanNotEquals(5, 0), 9)
	assert.Equal(t, []uint64{7, 8, 9}, c.ScanGt(6, 0))
	assert.Equal(t, []uint64{6, 7, 8, 9}, c.ScanGe(6, 0))
	assert.Equal(t, []uint64{0, 1, 2}, c.ScanLt(3, 0))
	assert.Equal(t, []uint64{0, 1, 2, 3}, c.ScanLe(3, 0))
	assert.Equal(t, []uint64{3, 4, 5}, c.ScanBetween(3, 5, 0))
	assert.ElementsMatch(t, []uint64{1, 4, 9}, c.ScanIn([]int64{1, 4, 9, 999}, 0))
	assert.Equal(t, []uint64{10}, c.ScanNull(0))
	assert.Len(t, c.ScanNotNull(0), 10)
}

func TestNumericScanLimit(t *testing.T) {
	c := column.NewNumeric[int32](8)
	for i := int32(0); i < 5; i++ {
		c.Put(uint64(i), i)
	}
	assert.Len(t, c.ScanAll(2), 2)
}

func TestStringColumnScans(t *testing.T) {
	c := column.NewStringColumn(4)
	c.Put(0, "Alpha")
	c.Put(1, "beta")
	c.Put(2, "gamma")
	c.PutNull(3)

	assert.Equal(t, []uint64{0}, c.ScanEquals("Alpha", 0))
	assert.Equal(t, []uint64{0}, c.ScanEqualsIgnoreCase("alpha", 0))
	assert.Equal(t, []uint64{1}, c.ScanStartingWith("bet", 0))
	assert.Equal(t, []uint64{2}, c.ScanEndingWith("mma", 0))
	assert.Equal(t, []uint64{1}, c.ScanContains("et", 0))
	assert.Equal(t, []uint64{3}, c.ScanNull(0))
	assert.ElementsMatch(t, []uint64{0, 2}, c.ScanIn([]string{"Alpha", "gamma", "zzz"}, 0))
}

func TestFamilyOfAndIsNumeric(t *testing.T) {
	assert.Equal(t, column.FamilyI32, column.FamilyOf(column.Bool))
	assert.Equal(t, column.FamilyI64, column.FamilyOf(column.I64))
	assert.Equal(t, column.FamilyString, column.FamilyOf(column.String))
	assert.True(t, column.IsNumeric(column.I32))
	assert.False(t, column.IsNumeric(column.String))
}
