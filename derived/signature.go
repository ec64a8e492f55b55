package derived

import (
	"reflect"
	"strings"

	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/query"
)

// SignatureTable resolves built-in repository operations by full signature
// key — method name × declared parameter types — rather than by name
// parsing. A parameter declared as an interface type acts as a
// wildcard matching any implementation; resolution follows the three rules
// of resolution: an exact parameter-type match beats any wildcard, between
// wildcards the most specific (deepest subtype) wins, and an ambiguous tie
// among incomparable wildcards fails with a diagnostic naming the tied
// candidates. Tie-breaking is an explicit routine, not map-iteration order.
type SignatureTable struct {
	entries []sigEntry
}

type sigEntry struct {
	name   string
	params []reflect.Type
	build  func() *query.LogicalQuery
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// NewSignatureTable returns a table pre-seeded with the built-in operations
// (save, saveAll, delete, deleteAll, deleteById, findById, findAll, count,
// existsById), each declared with wildcard parameters; hosts register
// narrower overloads on top and the specificity rules pick between them.
func NewSignatureTable() *SignatureTable {
	t := &SignatureTable{}
	one := []reflect.Type{anyType}
	none := []reflect.Type{}
	t.Register("save", one, builtinShapes["save"])
	t.Register("saveAll", one, builtinShapes["saveAll"])
	t.Register("delete", one, builtinShapes["delete"])
	t.Register("deleteAll", none, builtinShapes["deleteAll"])
	t.Register("deleteById", one, builtinShapes["deleteById"])
	t.Register("findById", one, builtinShapes["findById"])
	t.Register("findAll", none, builtinShapes["findAll"])
	t.Register("count", none, builtinShapes["count"])
	t.Register("existsById", one, builtinShapes["existsById"])
	return t
}

// Register adds an entry for name with the given declared parameter types.
// A later registration with identical parameters replaces the earlier one.
func (t *SignatureTable) Register(name string, params []reflect.Type, build func() *query.LogicalQuery) {
	for i, e := range t.entries {
		if e.name == name && sameParams(e.params, params) {
			t.entries[i].build = build
			return
		}
	}
	t.entries = append(t.entries, sigEntry{name: name, params: params, build: build})
}

func sameParams(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Resolve finds the entry for name whose parameters accept argTypes. ok is
// false when name is not a built-in at all; err is non-nil for an ambiguous
// tie among incomparable wildcard signatures (rule (c)).
func (t *SignatureTable) Resolve(name string, argTypes []reflect.Type) (*query.LogicalQuery, bool, error) {
	known := false
	var candidates []sigEntry
	for _, e := range t.entries {
		if e.name != name {
			continue
		}
		known = true
		if matches(e.params, argTypes) {
			candidates = append(candidates, e)
		}
	}
	switch {
	case !known:
		return nil, false, nil
	case len(candidates) == 0:
		return nil, true, memrerr.New(memrerr.Argument, name, "no built-in signature accepts the given argument types")
	case len(candidates) == 1:
		return candidates[0].build(), true, nil
	}

	// Rule (a): a fully exact signature beats every wildcard one.
	for _, e := range candidates {
		if isExact(e.params, argTypes) {
			return e.build(), true, nil
		}
	}

	// Rule (b): among wildcards, a unique most-specific entry wins. Select
	// a candidate no other dominates, then verify it dominates every other
	// candidate — without the second pass a late winner could leave an
	// earlier incomparable entry undetected.
	best := candidates[0]
	for _, e := range candidates[1:] {
		if moreSpecific(e.params, best.params) {
			best = e
		}
	}
	for _, e := range candidates {
		if sameParams(e.params, best.params) || moreSpecific(best.params, e.params) {
			continue
		}
		// Rule (c): incomparable wildcards tie.
		var sigs []string
		for _, c := range candidates {
			sigs = append(sigs, signatureString(c))
		}
		return nil, true, memrerr.New(memrerr.InvalidQuery, name,
			"ambiguous built-in: incomparable signatures "+strings.Join(sigs, " vs "))
	}
	return best.build(), true, nil
}

func matches(params, argTypes []reflect.Type) bool {
	if len(params) != len(argTypes) {
		return false
	}
	for i, p := range params {
		at := argTypes[i]
		if at == nil {
			continue // untyped nil argument matches any declared type
		}
		if p == at {
			continue
		}
		if p.Kind() == reflect.Interface && at.Implements(p) {
			continue
		}
		return false
	}
	return true
}

func isExact(params, argTypes []reflect.Type) bool {
	for i, p := range params {
		if argTypes[i] != nil && p != argTypes[i] {
			return false
		}
	}
	return true
}

// moreSpecific reports whether a is at least as specific as b in every
// position and strictly more specific in at least one: a concrete type is
// more specific than any interface, and interface A is more specific than
// interface B when A implements B but not the reverse.
func moreSpecific(a, b []reflect.Type) bool {
	strict := false
	for i := range a {
		switch {
		case a[i] == b[i]:
		case a[i].Kind() != reflect.Interface && b[i].Kind() == reflect.Interface:
			strict = true
		case a[i].Kind() == reflect.Interface && b[i].Kind() == reflect.Interface &&
			a[i].Implements(b[i]) && !b[i].Implements(a[i]):
			strict = true
		default:
			return false
		}
	}
	return strict
}

func signatureString(e sigEntry) string {
	parts := make([]string, len(e.params))
	for i, p := range e.params {
		parts[i] = p.String()
	}
	return e.name + "(" + strings.Join(parts, ", ") + ")"
}
