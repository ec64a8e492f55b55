package derived

import "github.com/memris/memris/query"

// operatorDef describes one recognized suffix keyword: which Operator it
// produces, how many parameter slots it consumes (0, 1, or 2 for Between),
// and (for the boolean True/False forms) the literal bound instead of
// consuming a parameter.
type operatorDef struct {
	op      query.Operator
	params  int
	literal any
}

// operatorSuffixes maps every recognized suffix keyword (precedence
// table) to its operatorDef. The empty string means no suffix was present,
// i.e. plain equality. Rank is noted per entry; since matching is exact
// full-remainder-string lookup (not substring scanning) the rank table only
// matters conceptually for how a derived implementation would disambiguate
// an overlapping tokenizer — this lookup is inherently unambiguous because
// each key is a distinct literal string.
var operatorSuffixes = map[string]operatorDef{
	"": {op: query.OpEQ, params: 1},

	// Rank 1
	"GreaterThanEqual": {op: query.OpGE, params: 1},
	"LessThanEqual":    {op: query.OpLE, params: 1},

	// Rank 2
	"GreaterThan": {op: query.OpGT, params: 1},
	"LessThan":    {op: query.OpLT, params: 1},

	// Rank 3
	"Between":       {op: query.OpBetween, params: 2},
	"StartingWith":  {op: query.OpStartsWith, params: 1},
	"StartsWith":    {op: query.OpStartsWith, params: 1},
	"EndingWith":    {op: query.OpEndsWith, params: 1},
	"EndsWith":      {op: query.OpEndsWith, params: 1},
	"NotContaining": {op: query.OpNotContains, params: 1},
	"NotContains":   {op: query.OpNotContains, params: 1},

	// Rank 4
	"Containing": {op: query.OpContains, params: 1},
	"Contains":   {op: query.OpContains, params: 1},
	"IsNotNull":  {op: query.OpIsNotNull, params: 0},
	"NotNull":    {op: query.OpIsNotNull, params: 0},
	"NotLike":    {op: query.OpNotLike, params: 1},
	"NotIn":      {op: query.OpNotIn, params: 1},

	// Rank 5
	"IsNull": {op: query.OpIsNull, params: 0},
	"Null":   {op: query.OpIsNull, params: 0},
	"Like":   {op: query.OpLike, params: 1},
	"True":   {op: query.OpTrue, params: 0, literal: true},
	"False":  {op: query.OpFalse, params: 0, literal: false},
	"IsTrue":  {op: query.OpTrue, params: 0, literal: true},
	"IsFalse": {op: query.OpFalse, params: 0, literal: false},

	// Rank 6
	"After":  {op: query.OpGT, params: 1},
	"Before": {op: query.OpLT, params: 1},

	// Rank 8
	"In": {op: query.OpIn, params: 1},

	// Rank 9
	"Not": {op: query.OpNE, params: 1},
}
