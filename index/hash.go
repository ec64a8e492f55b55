package index

import (
	"sync"

	bloomfilter "github.com/holiman/bloomfilter/v2"

	"github.com/memris/memris/rowid"
)

// Hash is a single-column equality index: exact-key lookup backed by a Go map, with a Bloom filter guarding against
// allocating a lookup path for keys that were never inserted.
type Hash[K comparable] struct {
	mu      sync.RWMutex
	buckets map[K]*rowid.AutoSet
	guard   *bloomfilter.Filter
}

// NewHash returns an empty hash index sized for an expected cardinality
// hint (used to size the Bloom filter; a hint <= 0 selects a modest
// default).
func NewHash[K comparable](expectedCardinality uint64) *Hash[K] {
	if expectedCardinality == 0 {
		expectedCardinality = 1024
	}
	guard, _ := bloomfilter.NewOptimal(expectedCardinality, 0.01)
	return &Hash[K]{
		buckets: make(map[K]*rowid.AutoSet),
		guard:   guard,
	}
}

// Add inserts row under key.
func (h *Hash[K]) Add(key K, row rowid.RowId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.buckets[key]
	if !ok {
		set = rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
		h.buckets[key] = set
	}
	set.Add(row)
	h.guard.AddHash(murmurHashBytes(encodeComparable(key)))
}

// Remove removes row from key's bucket.
func (h *Hash[K]) Remove(key K, row rowid.RowId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.buckets[key]; ok {
		set.Remove(row)
	}
}

// RemoveAll drops every row under key.
func (h *Hash[K]) RemoveAll(key K) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.buckets, key)
}

// Clear empties the index.
func (h *Hash[K]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buckets = make(map[K]*rowid.AutoSet)
}

// Lookup returns the RowIdSet for key. The Bloom filter is consulted first
// purely as a fast negative path; a positive guard result still falls
// through to the real map lookup since false positives are possible.
func (h *Hash[K]) Lookup(key K) (rowid.Set, bool) {
	if h.guard != nil && !h.guard.ContainsHash(murmurHashBytes(encodeComparable(key))) {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.buckets[key]
	if !ok {
		return nil, false
	}
	return set, true
}
