package safeint_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memris/memris/internal/safeint"
)

func TestSafeAddDetectsOverflow(t *testing.T) {
	sum, overflow := safeint.SafeAdd(1, 2)
	assert.Equal(t, uint64(3), sum)
	assert.False(t, overflow)

	_, overflow = safeint.SafeAdd(math.MaxUint64, 1)
	assert.True(t, overflow)

	sum, overflow = safeint.SafeAdd(math.MaxUint64, 0)
	assert.Equal(t, uint64(math.MaxUint64), sum)
	assert.False(t, overflow)
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 0, safeint.CeilDiv(10, 0))
	assert.Equal(t, 1, safeint.CeilDiv(1, 64))
	assert.Equal(t, 1, safeint.CeilDiv(64, 64))
	assert.Equal(t, 2, safeint.CeilDiv(65, 64))
}
