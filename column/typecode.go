package column

// TypeCode is the wire-stable integer identifying a column's storage
// representation. Compiled plans and column metadata refer to columns by
// TypeCode so the executor can validate operator/type combinations without
// consulting the original host type.
type TypeCode uint8

const (
	Bool TypeCode = iota
	I8
	I16
	I32
	I64
	F32
	F64
	Char
	String
	Instant
	LocalDate
	LocalDateTime
	Date
)

func (t TypeCode) String() string {
	switch t {
	case Bool:
		return "bool"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Char:
		return "char"
	case String:
		return "string"
	case Instant:
		return "instant"
	case LocalDate:
		return "local-date"
	case LocalDateTime:
		return "local-date-time"
	case Date:
		return "date"
	default:
		return "unknown"
	}
}

// Family identifies which of the three paged column families backs a given
// TypeCode: one of the three families (int32, int64, string).
type Family uint8

const (
	FamilyI32 Family = iota
	FamilyI64
	FamilyString
)

// FamilyOf returns the storage family backing a TypeCode.
func FamilyOf(t TypeCode) Family {
	switch t {
	case Bool, I8, I16, I32, F32, Char:
		return FamilyI32
	case I64, F64, Instant, LocalDate, LocalDateTime, Date:
		return FamilyI64
	case String:
		return FamilyString
	default:
		return FamilyI32
	}
}

// IsNumeric reports whether ordered comparisons (gt/ge/lt/le/between) apply
// to the type.
func IsNumeric(t TypeCode) bool {
	switch t {
	case String:
		return false
	default:
		return true
	}
}
