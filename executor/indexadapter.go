package executor

import (
	"golang.org/x/exp/constraints"

	"github.com/memris/memris/index"
	"github.com/memris/memris/rowid"
)

// hashIndexAdapter adapts index.Hash[K] to ColumnIndex: only Lookup (EQ) is
// supported, every other probe reports "no index" so the executor falls
// back to a scan (hash family: "point lookup only").
type hashIndexAdapter[K comparable] struct {
	idx *index.Hash[K]
}

// NewHashIndex wraps idx as a ColumnIndex.
func NewHashIndex[K comparable](idx *index.Hash[K]) ColumnIndex {
	return &hashIndexAdapter[K]{idx: idx}
}

func (a *hashIndexAdapter[K]) Lookup(key any) (rowid.Set, bool) {
	k, ok := key.(K)
	if !ok {
		return nil, false
	}
	return a.idx.Lookup(k)
}

func (a *hashIndexAdapter[K]) Gt(any) (rowid.Set, bool)            { return nil, false }
func (a *hashIndexAdapter[K]) Ge(any) (rowid.Set, bool)            { return nil, false }
func (a *hashIndexAdapter[K]) Lt(any) (rowid.Set, bool)            { return nil, false }
func (a *hashIndexAdapter[K]) Le(any) (rowid.Set, bool)            { return nil, false }
func (a *hashIndexAdapter[K]) Between(any, any) (rowid.Set, bool)  { return nil, false }
func (a *hashIndexAdapter[K]) StartsWith(any) (rowid.Set, bool)    { return nil, false }
func (a *hashIndexAdapter[K]) EndsWith(any) (rowid.Set, bool)      { return nil, false }

// rangeIndexAdapter adapts index.Range[K] to ColumnIndex: EQ plus every
// ordered comparison is supported (range family).
type rangeIndexAdapter[K constraints.Ordered] struct {
	idx     *index.Range[K]
	convert func(any) (K, bool)
}

// NewRangeIndex wraps idx, using convert to coerce probe arguments (already
// storage-converted by compiler.convertLiteral, but still typed as any) down
// to K.
func NewRangeIndex[K constraints.Ordered](idx *index.Range[K], convert func(any) (K, bool)) ColumnIndex {
	return &rangeIndexAdapter[K]{idx: idx, convert: convert}
}

func (a *rangeIndexAdapter[K]) Lookup(key any) (rowid.Set, bool) {
	k, ok := a.convert(key)
	if !ok {
		return nil, false
	}
	return a.idx.Lookup(k)
}

func (a *rangeIndexAdapter[K]) Gt(key any) (rowid.Set, bool) {
	k, ok := a.convert(key)
	if !ok {
		return nil, false
	}
	return a.idx.Gt(k), true
}

func (a *rangeIndexAdapter[K]) Ge(key any) (rowid.Set, bool) {
	k, ok := a.convert(key)
	if !ok {
		return nil, false
	}
	return a.idx.Ge(k), true
}

func (a *rangeIndexAdapter[K]) Lt(key any) (rowid.Set, bool) {
	k, ok := a.convert(key)
	if !ok {
		return nil, false
	}
	return a.idx.Lt(k), true
}

func (a *rangeIndexAdapter[K]) Le(key any) (rowid.Set, bool) {
	k, ok := a.convert(key)
	if !ok {
		return nil, false
	}
	return a.idx.Le(k), true
}

func (a *rangeIndexAdapter[K]) Between(lo, hi any) (rowid.Set, bool) {
	lok, ok1 := a.convert(lo)
	hik, ok2 := a.convert(hi)
	if !ok1 || !ok2 {
		return nil, false
	}
	return a.idx.Between(lok, hik), true
}

func (a *rangeIndexAdapter[K]) StartsWith(any) (rowid.Set, bool) { return nil, false }
func (a *rangeIndexAdapter[K]) EndsWith(any) (rowid.Set, bool)   { return nil, false }

// prefixIndexAdapter adapts index.Prefix to ColumnIndex: StartsWith and EQ
// (EQ falls through to the prefix map, since the full string is itself a
// stored prefix key).
type prefixIndexAdapter struct {
	idx *index.Prefix
}

// NewPrefixIndex wraps idx.
func NewPrefixIndex(idx *index.Prefix) ColumnIndex { return &prefixIndexAdapter{idx: idx} }

func (a *prefixIndexAdapter) Lookup(key any) (rowid.Set, bool) {
	s, ok := key.(string)
	if !ok {
		return nil, false
	}
	return a.idx.StartsWith(s)
}

func (a *prefixIndexAdapter) StartsWith(prefix any) (rowid.Set, bool) {
	s, ok := prefix.(string)
	if !ok {
		return nil, false
	}
	return a.idx.StartsWith(s)
}

func (a *prefixIndexAdapter) Gt(any) (rowid.Set, bool)           { return nil, false }
func (a *prefixIndexAdapter) Ge(any) (rowid.Set, bool)           { return nil, false }
func (a *prefixIndexAdapter) Lt(any) (rowid.Set, bool)           { return nil, false }
func (a *prefixIndexAdapter) Le(any) (rowid.Set, bool)           { return nil, false }
func (a *prefixIndexAdapter) Between(any, any) (rowid.Set, bool) { return nil, false }
func (a *prefixIndexAdapter) EndsWith(any) (rowid.Set, bool)     { return nil, false }

// suffixIndexAdapter adapts index.Suffix to ColumnIndex: EndsWith only.
type suffixIndexAdapter struct {
	idx *index.Suffix
}

// NewSuffixIndex wraps idx.
func NewSuffixIndex(idx *index.Suffix) ColumnIndex { return &suffixIndexAdapter{idx: idx} }

func (a *suffixIndexAdapter) Lookup(any) (rowid.Set, bool)         { return nil, false }
func (a *suffixIndexAdapter) Gt(any) (rowid.Set, bool)             { return nil, false }
func (a *suffixIndexAdapter) Ge(any) (rowid.Set, bool)             { return nil, false }
func (a *suffixIndexAdapter) Lt(any) (rowid.Set, bool)             { return nil, false }
func (a *suffixIndexAdapter) Le(any) (rowid.Set, bool)             { return nil, false }
func (a *suffixIndexAdapter) Between(any, any) (rowid.Set, bool)   { return nil, false }
func (a *suffixIndexAdapter) StartsWith(any) (rowid.Set, bool)     { return nil, false }

func (a *suffixIndexAdapter) EndsWith(suffix any) (rowid.Set, bool) {
	s, ok := suffix.(string)
	if !ok {
		return nil, false
	}
	return a.idx.EndsWith(s)
}

// compositeHashAdapter adapts index.CompositeHash to CompositeIndex.
type compositeHashAdapter struct {
	idx *index.CompositeHash
}

// NewCompositeHashIndex wraps idx.
func NewCompositeHashIndex(idx *index.CompositeHash) CompositeIndex {
	return &compositeHashAdapter{idx: idx}
}

func (a *compositeHashAdapter) Lookup(components []any) (rowid.Set, bool) {
	key, ok := toCompositeKey(components)
	if !ok {
		return nil, false
	}
	return a.idx.Lookup(key)
}

func (a *compositeHashAdapter) Between([]any, []any) (rowid.Set, bool) { return nil, false }

// compositeRangeAdapter adapts index.CompositeRange to CompositeIndex.
type compositeRangeAdapter struct {
	idx *index.CompositeRange
}

// NewCompositeRangeIndex wraps idx.
func NewCompositeRangeIndex(idx *index.CompositeRange) CompositeIndex {
	return &compositeRangeAdapter{idx: idx}
}

func (a *compositeRangeAdapter) Lookup(components []any) (rowid.Set, bool) {
	key, ok := toCompositeKey(components)
	if !ok {
		return nil, false
	}
	return a.idx.Lookup(key)
}

func (a *compositeRangeAdapter) Between(loComponents, hiComponents []any) (rowid.Set, bool) {
	lo, ok1 := toCompositeKey(loComponents)
	hi, ok2 := toCompositeKey(hiComponents)
	if !ok1 || !ok2 {
		return nil, false
	}
	return a.idx.Between(lo, hi), true
}

// toCompositeKey converts storage-level component values (int32/int64/string,
// plus the index package's own sentinel placeholders) into a
// index.CompositeKey. Sentinels are passed through pre-built since callers
// construct them with index.MinComponent()/MaxComponent() directly.
func toCompositeKey(components []any) (index.CompositeKey, bool) {
	key := make(index.CompositeKey, 0, len(components))
	for _, c := range components {
		switch v := c.(type) {
		case index.Component:
			key = append(key, v)
		case string:
			key = append(key, index.StrComponent(v))
		case int64:
			key = append(key, index.IntComponent(v))
		case int32:
			key = append(key, index.IntComponent(int64(v)))
		case int:
			key = append(key, index.IntComponent(int64(v)))
		case bool:
			if v {
				key = append(key, index.IntComponent(1))
			} else {
				key = append(key, index.IntComponent(0))
			}
		default:
			return nil, false
		}
	}
	return key, true
}
