package index

import (
	"sync"

	"github.com/google/btree"
	"golang.org/x/exp/constraints"

	"github.com/memris/memris/rowid"
)

// rangeItem is one ordered-btree node: a key plus the RowIdSet of rows
// carrying it. Only Key participates in ordering.
type rangeItem[K constraints.Ordered] struct {
	Key K
	Set *rowid.AutoSet
}

// Range is a single-column ordered index: O(log n) point lookup,
// O(log n + m) range probes, backed by google/btree's generic BTreeG.
type Range[K constraints.Ordered] struct {
	mu     sync.RWMutex
	degree int
	tree   *btree.BTreeG[rangeItem[K]]
}

// NewRange returns an empty ordered range index with the given btree degree
// (a degree <= 0 selects a reasonable default).
func NewRange[K constraints.Ordered](degree int) *Range[K] {
	if degree <= 0 {
		degree = 32
	}
	less := func(a, b rangeItem[K]) bool { return a.Key < b.Key }
	return &Range[K]{degree: degree, tree: btree.NewG(degree, less)}
}

// Add inserts row under key.
func (r *Range[K]) Add(key K, row rowid.RowId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.tree.Get(rangeItem[K]{Key: key})
	if !ok {
		item = rangeItem[K]{Key: key, Set: rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)}
		r.tree.ReplaceOrInsert(item)
	}
	item.Set.Add(row)
}

// Remove removes row from key's bucket.
func (r *Range[K]) Remove(key K, row rowid.RowId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.tree.Get(rangeItem[K]{Key: key}); ok {
		item.Set.Remove(row)
	}
}

// RemoveAll drops every row under key.
func (r *Range[K]) RemoveAll(key K) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree.Delete(rangeItem[K]{Key: key})
}

// Clear empties the index.
func (r *Range[K]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree = btree.NewG(r.degree, func(a, b rangeItem[K]) bool { return a.Key < b.Key })
}

// Lookup returns the RowIdSet for an exact key match.
func (r *Range[K]) Lookup(key K) (rowid.Set, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.tree.Get(rangeItem[K]{Key: key})
	if !ok {
		return nil, false
	}
	return item.Set, true
}

// collect gathers every RowId from the buckets visited while the tree is
// walked in ascending order starting at start (start's own bucket only when
// includeStart is set); stop reports when the walk should end early.
func (r *Range[K]) collect(start K, includeStart bool, stop func(K) bool) rowid.Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
	r.tree.AscendGreaterOrEqual(rangeItem[K]{Key: start}, func(item rangeItem[K]) bool {
		if stop(item.Key) {
			return false
		}
		if item.Key == start && !includeStart {
			return true
		}
		item.Set.Range(func(id rowid.RowId) bool {
			out.Add(id)
			return true
		})
		return true
	})
	return out
}

// Gt returns rows with key strictly greater than key.
func (r *Range[K]) Gt(key K) rowid.Set {
	return r.collect(key, false, func(K) bool { return false })
}

// Ge returns rows with key greater than or equal to key.
func (r *Range[K]) Ge(key K) rowid.Set {
	return r.collect(key, true, func(K) bool { return false })
}

// Lt returns rows with key strictly less than key.
func (r *Range[K]) Lt(key K) rowid.Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
	r.tree.Ascend(func(item rangeItem[K]) bool {
		if item.Key >= key {
			return false
		}
		item.Set.Range(func(id rowid.RowId) bool {
			out.Add(id)
			return true
		})
		return true
	})
	return out
}

// Le returns rows with key less than or equal to key.
func (r *Range[K]) Le(key K) rowid.Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
	r.tree.Ascend(func(item rangeItem[K]) bool {
		if item.Key > key {
			return false
		}
		item.Set.Range(func(id rowid.RowId) bool {
			out.Add(id)
			return true
		})
		return true
	})
	return out
}

// Between returns rows with lo <= key <= hi, inclusive on both ends.
func (r *Range[K]) Between(lo, hi K) rowid.Set {
	return r.collect(lo, true, func(k K) bool { return k > hi })
}
