// Package index implements the six index families: hash, range,
// prefix, suffix, composite-hash, and composite-range. Every family exposes
// add/remove/remove_all/clear plus only the probes it serves. The executor
// reaches these families through adapters (executor/indexadapter.go) that
// expose every probe and answer an operator the family cannot serve with a
// false "no index" result, so the executor falls back to a scan.
package index

import (
	"encoding/binary"
	"sort"
)

// sentinelKind marks a composite-range bound component as unconditionally
// below (min) or above (max) every real value in that slot, used to express
// partial-prefix bounds (composite range semantics).
type sentinelKind int8

const (
	notSentinel sentinelKind = iota
	minSentinel
	maxSentinel
)

// Component is one slot of a composite key: exactly one of Int, Str is
// meaningful unless Sentinel is set.
type Component struct {
	Int      int64
	Str      string
	IsString bool
	Sentinel sentinelKind
}

// IntComponent builds an integer composite-key component.
func IntComponent(v int64) Component { return Component{Int: v} }

// StrComponent builds a string composite-key component.
func StrComponent(v string) Component { return Component{Str: v, IsString: true} }

// MinComponent is a component that compares below every real value in its
// slot, for expressing an open-ended lower bound on the unconsumed suffix of
// a composite range probe.
func MinComponent() Component { return Component{Sentinel: minSentinel} }

// MaxComponent is a component that compares above every real value in its
// slot.
func MaxComponent() Component { return Component{Sentinel: maxSentinel} }

func compareComponent(a, b Component) int {
	if a.Sentinel != notSentinel || b.Sentinel != notSentinel {
		ra, rb := sentinelRank(a), sentinelRank(b)
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		default:
			return 0
		}
	}
	if a.IsString {
		switch {
		case a.Str < b.Str:
			return -1
		case a.Str > b.Str:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a.Int < b.Int:
		return -1
	case a.Int > b.Int:
		return 1
	default:
		return 0
	}
}

// sentinelRank gives non-sentinel values the middle rank so a real value
// compares above min and below max regardless of its own magnitude.
func sentinelRank(c Component) int {
	switch c.Sentinel {
	case minSentinel:
		return -1
	case maxSentinel:
		return 1
	default:
		return 0
	}
}

// CompositeKey is an ordered tuple of key components, one per indexed
// property, compared lexicographically slot by slot.
type CompositeKey []Component

// Compare returns -1, 0, 1 comparing a and b lexicographically.
func Compare(a, b CompositeKey) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareComponent(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Less reports whether a sorts before b, for ordered-container comparators.
func Less(a, b CompositeKey) bool { return Compare(a, b) < 0 }

// encode produces a stable byte serialization used as the hash input for
// composite-hash buckets; it is not an ordering-preserving encoding.
func (k CompositeKey) encode() []byte {
	buf := make([]byte, 0, len(k)*12)
	for _, c := range k {
		if c.IsString {
			buf = append(buf, 's')
			var lenBuf [8]byte
			binary.BigEndian.PutUint64(lenBuf[:], uint64(len(c.Str)))
			buf = append(buf, lenBuf[:]...)
			buf = append(buf, c.Str...)
			continue
		}
		buf = append(buf, 'i')
		var intBuf [8]byte
		binary.BigEndian.PutUint64(intBuf[:], uint64(c.Int))
		buf = append(buf, intBuf[:]...)
	}
	return buf
}

// equalKeys reports exact component-wise equality (sentinels never appear in
// stored keys, only in probe bounds).
func equalKeys(a, b CompositeKey) bool {
	return Compare(a, b) == 0
}

// sortKeys sorts a slice of composite keys ascending. Nothing in the package
// calls it.
func sortKeys(keys []CompositeKey) {
	sort.Slice(keys, func(i, j int) bool { return Less(keys[i], keys[j]) })
}
