// Package convert implements the converter registry: the process-wide
// mapping of host type to storage converter. It is the only process-wide
// mutable element the core owns — initialized once at startup, read-only
// in hot paths thereafter; per-field overrides belong in metadata.Field's
// owning Entity, not in this global table.
package convert

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/memris/memris/memrerr"
)

// Converter converts a single field's value between host representation and
// the storage representation the column family expects (int32/int64/string,
// per column.FamilyOf).
type Converter interface {
	// ToStorage converts a host value to its storage representation. A nil
	// v converts to nil (callers store it as a column PutNull).
	ToStorage(v any) (any, error)
	// FromStorage converts a storage-representation value back to host
	// representation. A nil v converts to nil.
	FromStorage(v any) (any, error)
}

// converterFunc adapts two plain functions to the Converter interface.
type converterFunc struct {
	to   func(any) (any, error)
	from func(any) (any, error)
}

func (c converterFunc) ToStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return c.to(v)
}

func (c converterFunc) FromStorage(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	return c.from(v)
}

// Registry is the process-wide host-type -> Converter table.
type Registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]Converter
	byField  map[string]Converter // keyed by "EntityClassID.PropertyName"
}

// NewRegistry returns a registry pre-populated with identity pass-through
// converters for the primitive types and string, an epoch-milli UTC
// converter for time.Time, and an epoch-day converter under the field key
// "__builtin.epochDay". UUIDConverter, BigNumericConverter and EnumConverter
// build string-backed converters that the host registers itself; none of
// them is registered here, and no local-time or sql-date/timestamp
// converter is provided.
func NewRegistry() *Registry {
	r := &Registry{
		byType:  make(map[reflect.Type]Converter),
		byField: make(map[string]Converter),
	}
	r.registerBuiltins()
	return r
}

func identity() Converter {
	return converterFunc{
		to:   func(v any) (any, error) { return v, nil },
		from: func(v any) (any, error) { return v, nil },
	}
}

func (r *Registry) registerBuiltins() {
	prims := []any{
		bool(false), int8(0), int16(0), int32(0), int64(0), int(0),
		float32(0), float64(0), string(""), byte(0),
	}
	for _, p := range prims {
		r.byType[reflect.TypeOf(p)] = identity()
	}

	// time.Time is stored as epoch-milli UTC; dates and timestamps are
	// epoch-based integers in storage.
	r.byType[reflect.TypeOf(time.Time{})] = converterFunc{
		to: func(v any) (any, error) {
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("convert: expected time.Time, got %T", v)
			}
			return t.UTC().UnixMilli(), nil
		},
		from: func(v any) (any, error) {
			ms, ok := toInt64(v)
			if !ok {
				return nil, fmt.Errorf("convert: expected int64 epoch-milli, got %T", v)
			}
			return time.UnixMilli(ms).UTC(), nil
		},
	}

	// LocalDate equivalent: epoch-day.
	r.byField["__builtin.epochDay"] = converterFunc{
		to: func(v any) (any, error) {
			t, ok := v.(time.Time)
			if !ok {
				return nil, fmt.Errorf("convert: expected time.Time, got %T", v)
			}
			return t.UTC().Unix() / 86400, nil
		},
		from: func(v any) (any, error) {
			days, ok := toInt64(v)
			if !ok {
				return nil, fmt.Errorf("convert: expected int64 epoch-day, got %T", v)
			}
			return time.Unix(days*86400, 0).UTC(), nil
		},
	}
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// Register adds or replaces the converter used for host type t.
func (r *Registry) Register(t reflect.Type, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = c
}

// RegisterField adds or replaces a per-field converter override, keyed by
// "EntityClassID.PropertyName". Field-scoped overrides stay out of the
// global by-type table so the wiring step can narrow one entity's field
// without affecting every other use of the host type.
func (r *Registry) RegisterField(entityClassID, property string, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byField[entityClassID+"."+property] = c
}

// For resolves the converter for a field: a per-field override if one was
// registered, else the by-host-type converter, else a plain identity
// pass-through for any remaining comparable-ish type.
func (r *Registry) For(entityClassID, property string, hostType reflect.Type) Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byField[entityClassID+"."+property]; ok {
		return c
	}
	if c, ok := r.byType[hostType]; ok {
		return c
	}
	return identity()
}

// UUIDConverter returns a string-backed converter for a UUID-shaped host
// type whose String() method and a matching parse function round-trip it.
func UUIDConverter(parse func(string) (any, error)) Converter {
	return converterFunc{
		to: func(v any) (any, error) {
			s, ok := v.(fmt.Stringer)
			if !ok {
				return nil, fmt.Errorf("convert: UUID converter expects fmt.Stringer, got %T", v)
			}
			return s.String(), nil
		},
		from: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("convert: expected string, got %T", v)
			}
			return parse(s)
		},
	}
}

// EnumConverter returns a string-backed converter between an enum's string
// representation and host value.
func EnumConverter(toString func(any) string, fromString func(string) (any, error)) Converter {
	return converterFunc{
		to:   func(v any) (any, error) { return toString(v), nil },
		from: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("convert: expected string, got %T", v)
			}
			return fromString(s)
		},
	}
}

// BigNumericConverter returns a string-backed converter for arbitrary
// precision numerics whose host representation implements fmt.Stringer and
// can be reconstructed by parse.
func BigNumericConverter(parse func(string) (any, error)) Converter {
	return converterFunc{
		to: func(v any) (any, error) {
			s, ok := v.(fmt.Stringer)
			if !ok {
				return nil, fmt.Errorf("convert: big-numeric converter expects fmt.Stringer, got %T", v)
			}
			return s.String(), nil
		},
		from: func(v any) (any, error) { return parse(v.(string)) },
	}
}

// ParseArgument converts a raw method-argument value (already host-typed)
// into the storage representation expected for the given reflect.Kind,
// surfacing a memrerr.Argument error rather than panicking on a type
// mismatch.
func ParseArgument(method string, raw any, want reflect.Kind) (any, error) {
	rv := reflect.ValueOf(raw)
	if !rv.IsValid() {
		return nil, nil
	}
	if rv.Kind() == want {
		return raw, nil
	}
	if rv.Kind() == reflect.String && isNumericKind(want) {
		return parseStringAsNumeric(raw.(string), want)
	}
	return nil, memrerr.New(memrerr.Argument, method,
		fmt.Sprintf("argument has wrong type: want %s, got %s", want, rv.Kind()))
}

func isNumericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func parseStringAsNumeric(s string, want reflect.Kind) (any, error) {
	switch want {
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		return f, err
	default:
		n, err := strconv.ParseInt(s, 10, 64)
		return n, err
	}
}
