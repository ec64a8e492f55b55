// Package derived implements the derived-method lexer and planner:
// it tokenizes a repository method name (plus its declared parameter types)
// against an entity metadata descriptor into a query.LogicalQuery.
package derived

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/metadata"
	"github.com/memris/memris/query"
)

// prefixes is the set of recognized method-name prefixes mapped to
// the LogicalQuery op-code they imply.
var prefixes = map[string]query.Op{
	"find":   query.OpFind,
	"query":  query.OpFind,
	"get":    query.OpFind,
	"read":   query.OpFind,
	"stream": query.OpFind,
	"count":  query.OpCount,
	"exists": query.OpExists,
	"delete": query.OpDelete,
	"remove": query.OpDelete,
}

// longest-prefix-first ordering so "stream" isn't mistaken for a shorter
// prefix sharing a leading substring (none currently overlap, but the
// ordering is kept explicit since new prefixes could).
var prefixOrder = []string{"stream", "exists", "delete", "remove", "query", "count", "find", "read", "get"}

// Planner tokenizes derived-method names into LogicalQuery plans, resolving
// property paths against entity metadata (walking relationship descriptors
// for nested paths) via reg.
type Planner struct {
	reg metadata.Registry
}

// NewPlanner returns a Planner resolving relationship targets through reg.
func NewPlanner(reg metadata.Registry) *Planner {
	return &Planner{reg: reg}
}

// Plan tokenizes methodName against entity into a LogicalQuery. Plan
// assigns ParamIndex values in left-to-right consumption order; validating
// that the call site supplies that many arguments is the executor's
// concern at dispatch time.
func (p *Planner) Plan(methodName string, entity *metadata.Entity) (*query.LogicalQuery, error) {
	if lq, ok, err := resolveBuiltin(methodName); ok || err != nil {
		return lq, err
	}

	rest := methodName
	op, rest, ok := stripPrefix(rest)
	if !ok {
		return nil, memrerr.New(memrerr.InvalidQuery, methodName,
			"method name does not start with a recognized prefix (find/get/read/stream/query/count/exists/delete/remove)")
	}

	lq := &query.LogicalQuery{MethodName: methodName, Op: op}

	rest, distinct := stripModifier(rest, "Distinct")
	lq.Distinct = distinct

	if limit, r, matched := stripLimitModifier(rest); matched {
		lq.Limit = limit
		rest = r
	}

	if !strings.HasPrefix(rest, "By") {
		// No By clause: whole-table operations like findAll/countAll.
		if rest != "" && rest != "All" {
			return nil, memrerr.New(memrerr.InvalidQuery, methodName,
				"expected 'By' after prefix/modifiers, found: "+rest)
		}
		lq.ReturnKind = defaultReturnKind(op, false)
		if op == query.OpCount {
			lq.Op = query.OpCountAll
		}
		return lq, nil
	}
	rest = strings.TrimPrefix(rest, "By")

	clause := rest
	orderPart := ""
	if idx := strings.Index(rest, "OrderBy"); idx >= 0 {
		clause = rest[:idx]
		orderPart = rest[idx+len("OrderBy"):]
	}

	conditions, _, err := p.parseClause(methodName, clause, entity, 0)
	if err != nil {
		return nil, err
	}
	lq.Conditions = conditions

	if orderPart != "" {
		orderBy, err := parseOrderBy(methodName, orderPart, entity)
		if err != nil {
			return nil, err
		}
		lq.OrderBy = orderBy
	}

	lq.ReturnKind = defaultReturnKind(op, lq.Limit == 1)
	return lq, nil
}

func defaultReturnKind(op query.Op, singleLimit bool) query.ReturnKind {
	switch op {
	case query.OpCount, query.OpCountAll:
		return query.ReturnCount
	case query.OpExists:
		return query.ReturnBoolean
	case query.OpDelete:
		return query.ReturnModifying
	default:
		if singleLimit {
			return query.ReturnOptional
		}
		return query.ReturnList
	}
}

func stripPrefix(s string) (query.Op, string, bool) {
	for _, name := range prefixOrder {
		if strings.HasPrefix(s, capitalize(name)) || strings.HasPrefix(s, name) {
			plen := len(name)
			if strings.HasPrefix(s, capitalize(name)) {
				plen = len(capitalize(name))
			}
			return prefixes[name], s[plen:], true
		}
	}
	return 0, s, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func stripModifier(s, word string) (string, bool) {
	if strings.HasPrefix(s, word) {
		return s[len(word):], true
	}
	return s, false
}

// stripLimitModifier recognizes First / FirstN / Top / TopN, which set a
// result limit (First/Top alone mean 1).
func stripLimitModifier(s string) (limit int, rest string, matched bool) {
	for _, kw := range []string{"First", "Top"} {
		if !strings.HasPrefix(s, kw) {
			continue
		}
		r := s[len(kw):]
		i := 0
		for i < len(r) && r[i] >= '0' && r[i] <= '9' {
			i++
		}
		if i == 0 {
			return 1, r, true
		}
		n, err := strconv.Atoi(r[:i])
		if err != nil {
			return 1, r, true
		}
		return n, r[i:], true
	}
	return 0, s, false
}

// parseClause splits clause on top-level And/Or boundaries (found by
// greedy property-path resolution, which never matches "And"/"Or" as a
// field name) and parses each condition, assigning NextCombinator and
// sequential ParamIndex values starting at startIdx.
func (p *Planner) parseClause(method, clause string, entity *metadata.Entity, startIdx int) ([]query.Condition, int, error) {
	var conditions []query.Condition
	paramIdx := startIdx
	remaining := clause

	for remaining != "" {
		cond, consumed, nParams, err := p.parseCondition(method, remaining, entity, paramIdx)
		if err != nil {
			return nil, 0, err
		}
		paramIdx += nParams
		remaining = remaining[consumed:]

		switch {
		case strings.HasPrefix(remaining, "And"):
			cond.NextCombinator = query.CombinatorAnd
			remaining = remaining[len("And"):]
		case strings.HasPrefix(remaining, "Or"):
			cond.NextCombinator = query.CombinatorOr
			remaining = remaining[len("Or"):]
		default:
			cond.NextCombinator = query.CombinatorNone
		}
		conditions = append(conditions, cond)
	}
	return conditions, paramIdx, nil
}

// parseCondition resolves one property path plus optional operator suffix
// starting at the head of s, returning the Condition, the number of runes of
// s consumed (property + suffix, not including a following And/Or), and how
// many parameter slots the operator binds.
func (p *Planner) parseCondition(method, s string, entity *metadata.Entity, paramIdx int) (query.Condition, int, int, error) {
	path, consumed, ok := p.resolvePath(s, entity)
	if !ok {
		return query.Condition{}, 0, 0, memrerr.New(memrerr.InvalidQuery, method,
			"unknown property in derived method name near: "+s)
	}

	// The operator suffix runs from the end of the resolved property up to
	// (but not including) a following And/Or/OrderBy/end boundary.
	afterProp := s[consumed:]
	opEnd := len(afterProp)
	for _, boundary := range []string{"And", "Or"} {
		if idx := findWordBoundary(afterProp, boundary); idx >= 0 && idx < opEnd {
			opEnd = idx
		}
	}
	suffix := afterProp[:opEnd]

	ignoreCase := false
	for _, kw := range []string{"AllIgnoreCase", "IgnoreCase"} {
		if strings.HasSuffix(suffix, kw) {
			ignoreCase = true
			suffix = suffix[:len(suffix)-len(kw)]
			break
		}
	}

	def, ok := operatorSuffixes[suffix]
	if !ok {
		return query.Condition{}, 0, 0, memrerr.New(memrerr.InvalidQuery, method,
			"unrecognized operator suffix: "+suffix)
	}

	cond := query.Condition{Property: path, Operator: def.op, IgnoreCase: ignoreCase}
	nParams := def.params
	switch def.params {
	case 0:
		if def.literal != nil {
			cond.Arg = query.ArgSlot{HasLiteral: true, Literal: def.literal}
		}
	case 1:
		cond.Arg = query.ArgSlot{ParamIndex: paramIdx}
	case 2:
		cond.Arg = query.ArgSlot{ParamIndex: paramIdx}
		cond.ArgHigh = query.ArgSlot{ParamIndex: paramIdx + 1}
	}

	return cond, consumed + opEnd, nParams, nil
}

// findWordBoundary finds the first occurrence of word in s that starts a
// capitalized word boundary (i.e., word itself, since all our boundary
// keywords are themselves capitalized identifiers).
func findWordBoundary(s, word string) int {
	return strings.Index(s, word)
}

// resolvePath implements greedy longest-identifier-prefix property path
// resolution, descending into relationship targets for nested paths,
// emitted as dotted notation. When a field name overlaps an operator
// keyword (a field literally named "In", say), the longest field match
// always wins over treating any part of it as an operator suffix.
func (p *Planner) resolvePath(s string, entity *metadata.Entity) (path string, consumed int, ok bool) {
	for length := len(s); length >= 1; length-- {
		candidate := s[:length]
		propName := lowerFirst(candidate)
		field, found := findFieldCaseInsensitive(entity, propName)
		if !found {
			continue
		}
		if field.Relationship == nil {
			return field.PropertyName, length, true
		}
		target, found := p.reg.Entity(field.Relationship.TargetEntity)
		if !found {
			return field.PropertyName, length, true
		}
		remainder := s[length:]
		if remainder == "" {
			return field.PropertyName, length, true
		}
		subPath, subConsumed, subOk := p.resolvePath(remainder, target)
		if !subOk {
			// Whole match for this relationship field alone is still valid
			// if nothing in the remainder resolves further (falls through
			// to letting the remainder be parsed as an operator suffix).
			return field.PropertyName, length, true
		}
		return field.PropertyName + "." + subPath, length + subConsumed, true
	}
	return "", 0, false
}

func findFieldCaseInsensitive(entity *metadata.Entity, propName string) (metadata.Field, bool) {
	for _, f := range entity.Fields {
		if strings.EqualFold(f.PropertyName, propName) {
			return f, true
		}
	}
	return metadata.Field{}, false
}

func parseOrderBy(method, s string, entity *metadata.Entity) ([]query.OrderBy, error) {
	var out []query.OrderBy
	remaining := s
	for remaining != "" {
		remaining = strings.TrimPrefix(remaining, "And")
		dir := query.Asc
		propPart := remaining
		cut := len(remaining)
		if strings.HasSuffix(remaining, "Desc") {
			dir = query.Desc
			cut = len(remaining) - len("Desc")
		} else if strings.HasSuffix(remaining, "Asc") {
			cut = len(remaining) - len("Asc")
		} else if idx := strings.Index(remaining, "And"); idx >= 0 {
			cut = idx
		}
		propPart = remaining[:cut]
		f, found := findFieldCaseInsensitive(entity, lowerFirst(propPart))
		if !found {
			return nil, memrerr.New(memrerr.InvalidQuery, method, "unknown OrderBy property: "+propPart)
		}
		out = append(out, query.OrderBy{Property: f.PropertyName, Direction: dir})
		remaining = remaining[cut:]
	}
	return out, nil
}
