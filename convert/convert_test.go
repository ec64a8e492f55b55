package convert_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memris/memris/convert"
)

func TestIdentityConverterRoundTripsPrimitives(t *testing.T) {
	r := convert.NewRegistry()
	c := r.For("Order", "total", reflect.TypeOf(int64(0)))

	stored, err := c.ToStorage(int64(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), stored)

	back, err := c.FromStorage(stored)
	require.NoError(t, err)
	assert.Equal(t, int64(42), back)
}

func TestTimeConverterRoundTripsEpochMilli(t *testing.T) {
	r := convert.NewRegistry()
	c := r.For("Order", "placedAt", reflect.TypeOf(time.Time{}))

	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	stored, err := c.ToStorage(now)
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), stored)

	back, err := c.FromStorage(stored)
	require.NoError(t, err)
	assert.True(t, now.Equal(back.(time.Time)))
}

func TestRegisterFieldOverridesByTypeConverter(t *testing.T) {
	r := convert.NewRegistry()
	custom := convert.EnumConverter(
		func(v any) string { return v.(string) + "!" },
		func(s string) (any, error) { return s[:len(s)-1], nil },
	)
	r.RegisterField("Order", "status", custom)

	byField := r.For("Order", "status", reflect.TypeOf(""))
	stored, err := byField.ToStorage("OPEN")
	require.NoError(t, err)
	assert.Equal(t, "OPEN!", stored)

	byType := r.For("Order", "name", reflect.TypeOf(""))
	stored2, err := byType.ToStorage("x")
	require.NoError(t, err)
	assert.Equal(t, "x", stored2)
}

func TestParseArgumentCoercesStringToNumeric(t *testing.T) {
	v, err := convert.ParseArgument("findByAge", "42", reflect.Int64)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestParseArgumentRejectsWrongType(t *testing.T) {
	_, err := convert.ParseArgument("findByAge", true, reflect.Int64)
	assert.Error(t, err)
}

func TestUUIDConverterRoundTrips(t *testing.T) {
	type fakeUUID string
	c := convert.UUIDConverter(func(s string) (any, error) { return fakeUUID(s), nil })

	stored, err := c.ToStorage(stringerUUID("abc-123"))
	require.NoError(t, err)
	assert.Equal(t, "abc-123", stored)

	back, err := c.FromStorage("abc-123")
	require.NoError(t, err)
	assert.Equal(t, fakeUUID("abc-123"), back)
}

type stringerUUID string

func (s stringerUUID) String() string { return string(s) }
