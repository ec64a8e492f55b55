package executor

import (
	"strings"

	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/query"
)

// resolveArg resolves a CompiledArgSlot against the method's call-site
// arguments.
func resolveArg(slot query.CompiledArgSlot, args []any) any {
	if slot.HasLiteral {
		return slot.Literal
	}
	if slot.ParamIndex < 0 || slot.ParamIndex >= len(args) {
		return nil
	}
	return args[slot.ParamIndex]
}

// evalCondition evaluates one compiled condition against a materialized row
// value (already read under the row's seqlock by the caller). present
// reflects whether the column had a value at all.
func evalCondition(c query.CompiledCondition, value any, present bool, args []any) (bool, error) {
	if c.Operator == query.OpIsNull {
		return !present, nil
	}
	if c.Operator == query.OpIsNotNull {
		return present, nil
	}
	if !present {
		return false, nil
	}

	arg := resolveArg(c.Arg, args)

	switch c.Operator {
	case query.OpEQ:
		return compareEqual(value, arg, c.IgnoreCase), nil
	case query.OpNE:
		return !compareEqual(value, arg, c.IgnoreCase), nil
	case query.OpGT:
		return compareOrdered(value, arg) > 0, nil
	case query.OpGE:
		return compareOrdered(value, arg) >= 0, nil
	case query.OpLT:
		return compareOrdered(value, arg) < 0, nil
	case query.OpLE:
		return compareOrdered(value, arg) <= 0, nil
	case query.OpBetween:
		hi := resolveArg(c.ArgHigh, args)
		return compareOrdered(value, arg) >= 0 && compareOrdered(value, hi) <= 0, nil
	case query.OpStartsWith:
		return stringPred(value, arg, c.IgnoreCase, strings.HasPrefix), nil
	case query.OpEndsWith:
		return stringPred(value, arg, c.IgnoreCase, strings.HasSuffix), nil
	case query.OpContains:
		return stringPred(value, arg, c.IgnoreCase, strings.Contains), nil
	case query.OpNotContains:
		return !stringPred(value, arg, c.IgnoreCase, strings.Contains), nil
	case query.OpIn:
		return inList(value, arg, c.IgnoreCase, args), nil
	case query.OpNotIn:
		return !inList(value, arg, c.IgnoreCase, args), nil
	case query.OpLike:
		return likeMatch(value, arg, c.IgnoreCase), nil
	case query.OpNotLike:
		return !likeMatch(value, arg, c.IgnoreCase), nil
	case query.OpTrue:
		b, _ := value.(bool)
		return b, nil
	case query.OpFalse:
		b, _ := value.(bool)
		return !b, nil
	default:
		return false, memrerr.New(memrerr.InvalidQuery, "", "unsupported operator in condition program")
	}
}

func compareEqual(a, b any, ignoreCase bool) bool {
	if ignoreCase {
		as, aok := a.(string)
		bs, bok := b.(string)
		if aok && bok {
			return strings.EqualFold(as, bs)
		}
	}
	return a == b
}

// compareOrdered compares two numeric or string values, returning <0, 0, >0.
// Mismatched/non-ordered types compare equal (the condition program never
// invokes this for a type pairing the compiler wouldn't have produced).
func compareOrdered(a, b any) int {
	switch av := a.(type) {
	case int32:
		bv, _ := b.(int32)
		return cmpInt(int64(av), int64(bv))
	case int64:
		bv, _ := b.(int64)
		return cmpInt(av, bv)
	case int:
		bv, _ := b.(int)
		return cmpInt(int64(av), int64(bv))
	case float32:
		bv, _ := b.(float32)
		return cmpFloat(float64(av), float64(bv))
	case float64:
		bv, _ := b.(float64)
		return cmpFloat(av, bv)
	case string:
		bv, _ := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func stringPred(value, arg any, ignoreCase bool, pred func(s, sub string) bool) bool {
	vs, ok1 := value.(string)
	as, ok2 := arg.(string)
	if !ok1 || !ok2 {
		return false
	}
	if ignoreCase {
		vs, as = strings.ToLower(vs), strings.ToLower(as)
	}
	return pred(vs, as)
}

func inList(value, arg any, ignoreCase bool, args []any) bool {
	items, ok := arg.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if ref, isRef := item.(query.ParamRef); isRef {
			if ref.Index >= 0 && ref.Index < len(args) {
				item = args[ref.Index]
			} else {
				continue
			}
		}
		if compareEqual(value, item, ignoreCase) {
			return true
		}
	}
	return false
}

// likeMatch implements the JPQL LIKE wildcard subset: '%' matches any run of
// characters, '_' matches exactly one.
func likeMatch(value, arg any, ignoreCase bool) bool {
	vs, ok1 := value.(string)
	pattern, ok2 := arg.(string)
	if !ok1 || !ok2 {
		return false
	}
	if ignoreCase {
		vs, pattern = strings.ToLower(vs), strings.ToLower(pattern)
	}
	return likeMatchRunes([]rune(vs), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	// Standard '%'/'_' glob matcher via a DP table sized to the (typically
	// short) pattern and value.
	sl, pl := len(s), len(p)
	dp := make([][]bool, sl+1)
	for i := range dp {
		dp[i] = make([]bool, pl+1)
	}
	dp[0][0] = true
	for j := 1; j <= pl; j++ {
		if p[j-1] == '%' {
			dp[0][j] = dp[0][j-1]
		}
	}
	for i := 1; i <= sl; i++ {
		for j := 1; j <= pl; j++ {
			switch p[j-1] {
			case '%':
				dp[i][j] = dp[i-1][j] || dp[i][j-1]
			case '_':
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = dp[i-1][j-1] && s[i-1] == p[j-1]
			}
		}
	}
	return dp[sl][pl]
}
