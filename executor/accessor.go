package executor

import "github.com/memris/memris/column"

// numericI32Accessor adapts column.Numeric[int32] to ColumnAccessor. typeCode
// tells it whether to apply the sortable float encoding (EncodeF32) to
// incoming float32 arguments before delegating to the underlying int32 scans.
type numericI32Accessor struct {
	col      *column.Numeric[int32]
	typeCode column.TypeCode
}

// NewI32Accessor wraps col for the given stored type code (Bool, I8, I16,
// I32, F32, or Char all live in the int32 family, per column.FamilyOf).
func NewI32Accessor(col *column.Numeric[int32], typeCode column.TypeCode) ColumnAccessor {
	return &numericI32Accessor{col: col, typeCode: typeCode}
}

func (a *numericI32Accessor) box(v int32) any {
	if a.typeCode == column.F32 {
		return column.DecodeF32(v)
	}
	if a.typeCode == column.Bool {
		return v != 0
	}
	return v
}

func (a *numericI32Accessor) unbox(v any) (int32, bool) {
	switch a.typeCode {
	case column.F32:
		f, ok := v.(float32)
		if !ok {
			return 0, false
		}
		return column.EncodeF32(f), true
	case column.Bool:
		b, ok := v.(bool)
		if !ok {
			return 0, false
		}
		if b {
			return 1, true
		}
		return 0, true
	default:
		switch n := v.(type) {
		case int32:
			return n, true
		case int:
			return int32(n), true
		}
		return 0, false
	}
}

func (a *numericI32Accessor) Published() uint64 { return a.col.Published() }

func (a *numericI32Accessor) Get(offset uint64) (any, bool) {
	v, ok := a.col.Get(offset)
	if !ok {
		return nil, false
	}
	return a.box(v), true
}

func (a *numericI32Accessor) ScanAll(limit int) []uint64 { return a.col.ScanAll(limit) }

func (a *numericI32Accessor) ScanEquals(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanEquals(n, limit)
}

func (a *numericI32Accessor) ScanNotEquals(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanNotEquals(n, limit)
}

func (a *numericI32Accessor) ScanGt(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanGt(n, limit)
}

func (a *numericI32Accessor) ScanGe(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanGe(n, limit)
}

func (a *numericI32Accessor) ScanLt(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanLt(n, limit)
}

func (a *numericI32Accessor) ScanLe(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanLe(n, limit)
}

func (a *numericI32Accessor) ScanBetween(lo, hi any, limit int) []uint64 {
	lon, ok1 := a.unbox(lo)
	hin, ok2 := a.unbox(hi)
	if !ok1 || !ok2 {
		return nil
	}
	return a.col.ScanBetween(lon, hin, limit)
}

func (a *numericI32Accessor) ScanIn(values []any, limit int) []uint64 {
	ns := make([]int32, 0, len(values))
	for _, v := range values {
		if n, ok := a.unbox(v); ok {
			ns = append(ns, n)
		}
	}
	return a.col.ScanIn(ns, limit)
}

func (a *numericI32Accessor) ScanNull(limit int) []uint64    { return a.col.ScanNull(limit) }
func (a *numericI32Accessor) ScanNotNull(limit int) []uint64 { return a.col.ScanNotNull(limit) }

// Strings-only scans are not meaningful on a numeric column.
func (a *numericI32Accessor) ScanEqualsIgnoreCase(v any, limit int) []uint64 { return a.ScanEquals(v, limit) }
func (a *numericI32Accessor) ScanContains(v any, limit int) []uint64         { return nil }
func (a *numericI32Accessor) ScanStartingWith(v any, limit int) []uint64     { return nil }
func (a *numericI32Accessor) ScanEndingWith(v any, limit int) []uint64       { return nil }

// numericI64Accessor mirrors numericI32Accessor for the int64 family (I64,
// F64, Instant, LocalDate, LocalDateTime, Date).
type numericI64Accessor struct {
	col      *column.Numeric[int64]
	typeCode column.TypeCode
}

// NewI64Accessor wraps col for the given stored type code.
func NewI64Accessor(col *column.Numeric[int64], typeCode column.TypeCode) ColumnAccessor {
	return &numericI64Accessor{col: col, typeCode: typeCode}
}

func (a *numericI64Accessor) box(v int64) any {
	if a.typeCode == column.F64 {
		return column.DecodeF64(v)
	}
	return v
}

func (a *numericI64Accessor) unbox(v any) (int64, bool) {
	if a.typeCode == column.F64 {
		f, ok := v.(float64)
		if !ok {
			return 0, false
		}
		return column.EncodeF64(f), true
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func (a *numericI64Accessor) Published() uint64 { return a.col.Published() }

func (a *numericI64Accessor) Get(offset uint64) (any, bool) {
	v, ok := a.col.Get(offset)
	if !ok {
		return nil, false
	}
	return a.box(v), true
}

func (a *numericI64Accessor) ScanAll(limit int) []uint64 { return a.col.ScanAll(limit) }

func (a *numericI64Accessor) ScanEquals(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanEquals(n, limit)
}

func (a *numericI64Accessor) ScanNotEquals(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanNotEquals(n, limit)
}

func (a *numericI64Accessor) ScanGt(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanGt(n, limit)
}

func (a *numericI64Accessor) ScanGe(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanGe(n, limit)
}

func (a *numericI64Accessor) ScanLt(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanLt(n, limit)
}

func (a *numericI64Accessor) ScanLe(v any, limit int) []uint64 {
	n, ok := a.unbox(v)
	if !ok {
		return nil
	}
	return a.col.ScanLe(n, limit)
}

func (a *numericI64Accessor) ScanBetween(lo, hi any, limit int) []uint64 {
	lon, ok1 := a.unbox(lo)
	hin, ok2 := a.unbox(hi)
	if !ok1 || !ok2 {
		return nil
	}
	return a.col.ScanBetween(lon, hin, limit)
}

func (a *numericI64Accessor) ScanIn(values []any, limit int) []uint64 {
	ns := make([]int64, 0, len(values))
	for _, v := range values {
		if n, ok := a.unbox(v); ok {
			ns = append(ns, n)
		}
	}
	return a.col.ScanIn(ns, limit)
}

func (a *numericI64Accessor) ScanNull(limit int) []uint64    { return a.col.ScanNull(limit) }
func (a *numericI64Accessor) ScanNotNull(limit int) []uint64 { return a.col.ScanNotNull(limit) }

func (a *numericI64Accessor) ScanEqualsIgnoreCase(v any, limit int) []uint64 { return a.ScanEquals(v, limit) }
func (a *numericI64Accessor) ScanContains(v any, limit int) []uint64         { return nil }
func (a *numericI64Accessor) ScanStartingWith(v any, limit int) []uint64     { return nil }
func (a *numericI64Accessor) ScanEndingWith(v any, limit int) []uint64       { return nil }

// stringAccessor adapts column.StringColumn to ColumnAccessor.
type stringAccessor struct {
	col *column.StringColumn
}

// NewStringAccessor wraps col.
func NewStringAccessor(col *column.StringColumn) ColumnAccessor {
	return &stringAccessor{col: col}
}

func (a *stringAccessor) Published() uint64 { return a.col.Published() }

func (a *stringAccessor) Get(offset uint64) (any, bool) {
	v, ok := a.col.Get(offset)
	if !ok {
		return nil, false
	}
	return v, true
}

func (a *stringAccessor) ScanAll(limit int) []uint64 { return a.col.ScanAll(limit) }

func str(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func (a *stringAccessor) ScanEquals(v any, limit int) []uint64 {
	s, ok := str(v)
	if !ok {
		return nil
	}
	return a.col.ScanEquals(s, limit)
}

func (a *stringAccessor) ScanNotEquals(v any, limit int) []uint64 {
	s, ok := str(v)
	if !ok {
		return nil
	}
	return a.col.ScanNotEquals(s, limit)
}

// Ordered comparisons are not meaningful on strings.
func (a *stringAccessor) ScanGt(v any, limit int) []uint64        { return nil }
func (a *stringAccessor) ScanGe(v any, limit int) []uint64        { return nil }
func (a *stringAccessor) ScanLt(v any, limit int) []uint64        { return nil }
func (a *stringAccessor) ScanLe(v any, limit int) []uint64        { return nil }
func (a *stringAccessor) ScanBetween(lo, hi any, limit int) []uint64 { return nil }

func (a *stringAccessor) ScanIn(values []any, limit int) []uint64 {
	ss := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := str(v); ok {
			ss = append(ss, s)
		}
	}
	return a.col.ScanIn(ss, limit)
}

func (a *stringAccessor) ScanNull(limit int) []uint64    { return a.col.ScanNull(limit) }
func (a *stringAccessor) ScanNotNull(limit int) []uint64 { return a.col.ScanNotNull(limit) }

func (a *stringAccessor) ScanEqualsIgnoreCase(v any, limit int) []uint64 {
	s, ok := str(v)
	if !ok {
		return nil
	}
	return a.col.ScanEqualsIgnoreCase(s, limit)
}

func (a *stringAccessor) ScanContains(v any, limit int) []uint64 {
	s, ok := str(v)
	if !ok {
		return nil
	}
	return a.col.ScanContains(s, limit)
}

func (a *stringAccessor) ScanStartingWith(v any, limit int) []uint64 {
	s, ok := str(v)
	if !ok {
		return nil
	}
	return a.col.ScanStartingWith(s, limit)
}

func (a *stringAccessor) ScanEndingWith(v any, limit int) []uint64 {
	s, ok := str(v)
	if !ok {
		return nil
	}
	return a.col.ScanEndingWith(s, limit)
}
