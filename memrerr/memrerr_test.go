package memrerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/memrerr"
)

func TestNewCapturesKindAndMessage(t *testing.T) {
	err := memrerr.New(memrerr.InvalidQuery, "Order.findByStatus", "unknown property: bogus")
	assert.Contains(t, err.Error(), "invalid-query")
	assert.Contains(t, err.Error(), "Order.findByStatus")
	assert.Contains(t, err.Error(), "unknown property: bogus")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("underlying failure")
	err := memrerr.Wrap(memrerr.Capacity, "Order.save", "page allocation failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "underlying failure")
}

func TestKindOfResolvesWrappedKind(t *testing.T) {
	err := memrerr.New(memrerr.Cardinality, "Order.findById", "expected exactly one row")
	kind, ok := memrerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, memrerr.Cardinality, kind)
}

func TestIsComparesByKindOnly(t *testing.T) {
	a := memrerr.New(memrerr.Argument, "Order.findByAge", "wrong argument count")
	b := memrerr.New(memrerr.Argument, "Customer.findByName", "different message entirely")
	assert.True(t, errors.Is(a, b))

	c := memrerr.New(memrerr.Capacity, "Order.findByAge", "wrong argument count")
	assert.False(t, errors.Is(a, c))
}

func TestKindOfFailsForUnrelatedError(t *testing.T) {
	_, ok := memrerr.KindOf(errors.New("plain error"))
	assert.False(t, ok)
}
