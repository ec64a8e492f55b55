package index

import (
	"sync"

	bloomfilter "github.com/holiman/bloomfilter/v2"
	"github.com/tidwall/btree"

	"github.com/memris/memris/rowid"
)

// CompositeHash is the composite-hash index: exact-key lookup only over a tuple key, encoded and hashed the same way the
// single-column Hash index hashes scalar keys.
type CompositeHash struct {
	mu      sync.RWMutex
	buckets map[string]*rowid.AutoSet
	guard   *bloomfilter.Filter
}

// NewCompositeHash returns an empty composite-hash index sized for an
// expected cardinality hint.
func NewCompositeHash(expectedCardinality uint64) *CompositeHash {
	if expectedCardinality == 0 {
		expectedCardinality = 1024
	}
	guard, _ := bloomfilter.NewOptimal(expectedCardinality, 0.01)
	return &CompositeHash{buckets: make(map[string]*rowid.AutoSet), guard: guard}
}

// Add inserts row under key.
func (h *CompositeHash) Add(key CompositeKey, row rowid.RowId) {
	enc := key.encode()
	h.mu.Lock()
	defer h.mu.Unlock()
	k := string(enc)
	set, ok := h.buckets[k]
	if !ok {
		set = rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
		h.buckets[k] = set
	}
	set.Add(row)
	h.guard.AddHash(murmurHashBytes(enc))
}

// Remove removes row from key's bucket.
func (h *CompositeHash) Remove(key CompositeKey, row rowid.RowId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.buckets[string(key.encode())]; ok {
		set.Remove(row)
	}
}

// RemoveAll drops every row under key.
func (h *CompositeHash) RemoveAll(key CompositeKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.buckets, string(key.encode()))
}

// Clear empties the index.
func (h *CompositeHash) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buckets = make(map[string]*rowid.AutoSet)
}

// Lookup returns the RowIdSet for an exact composite key match.
func (h *CompositeHash) Lookup(key CompositeKey) (rowid.Set, bool) {
	enc := key.encode()
	if h.guard != nil && !h.guard.ContainsHash(murmurHashBytes(enc)) {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	set, ok := h.buckets[string(enc)]
	if !ok {
		return nil, false
	}
	return set, true
}

// compositeItem is one tidwall/btree node: a composite key plus its bucket.
type compositeItem struct {
	Key CompositeKey
	Set *rowid.AutoSet
}

// CompositeRange is the composite-range index: lexicographic ordering over
// a tuple key, supporting point, comparison, and between probes, with
// min/max sentinel components expressing partial-prefix bounds. Backed by
// github.com/tidwall/btree, kept distinct from google/btree (used by the
// single-column Range index) so a CompositeKey's custom Less lives beside
// the plain-K ordering without either comparator leaking into the other.
type CompositeRange struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[compositeItem]
}

func compositeLess(a, b compositeItem) bool { return Less(a.Key, b.Key) }

// NewCompositeRange returns an empty composite-range index.
func NewCompositeRange() *CompositeRange {
	return &CompositeRange{tree: btree.NewBTreeG(compositeLess)}
}

// Add inserts row under key.
func (c *CompositeRange) Add(key CompositeKey, row rowid.RowId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.tree.Get(compositeItem{Key: key})
	if !ok {
		item = compositeItem{Key: key, Set: rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)}
		c.tree.Set(item)
	}
	item.Set.Add(row)
}

// Remove removes row from key's bucket.
func (c *CompositeRange) Remove(key CompositeKey, row rowid.RowId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item, ok := c.tree.Get(compositeItem{Key: key}); ok {
		item.Set.Remove(row)
	}
}

// RemoveAll drops every row under key.
func (c *CompositeRange) RemoveAll(key CompositeKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.Delete(compositeItem{Key: key})
}

// Clear empties the index.
func (c *CompositeRange) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree = btree.NewBTreeG(compositeLess)
}

// Lookup returns the RowIdSet for an exact composite key match.
func (c *CompositeRange) Lookup(key CompositeKey) (rowid.Set, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.tree.Get(compositeItem{Key: key})
	if !ok {
		return nil, false
	}
	return item.Set, true
}

func (c *CompositeRange) collectFrom(start CompositeKey, includeStart bool, stop func(CompositeKey) bool) rowid.Set {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
	c.tree.Ascend(compositeItem{Key: start}, func(item compositeItem) bool {
		if stop(item.Key) {
			return false
		}
		if equalKeys(item.Key, start) && !includeStart {
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
func (c *CompositeRange) Gt(key CompositeKey) rowid.Set {
	return c.collectFrom(key, false, func(CompositeKey) bool { return false })
}

// Ge returns rows with key greater than or equal to key.
func (c *CompositeRange) Ge(key CompositeKey) rowid.Set {
	return c.collectFrom(key, true, func(CompositeKey) bool { return false })
}

// Lt returns rows with key strictly less than key.
func (c *CompositeRange) Lt(key CompositeKey) rowid.Set {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
	c.tree.Scan(func(item compositeItem) bool {
		if !Less(item.Key, key) {
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
func (c *CompositeRange) Le(key CompositeKey) rowid.Set {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
	c.tree.Scan(func(item compositeItem) bool {
		if Compare(item.Key, key) > 0 {
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

// Between returns rows with lo <= key <= hi (inclusive). Callers build lo/hi
// with min-sentinel/max-sentinel trailing components to express a partial-
// prefix bound: an equality prefix on the first k components plus a range on
// component k+1.
func (c *CompositeRange) Between(lo, hi CompositeKey) rowid.Set {
	return c.collectFrom(lo, true, func(k CompositeKey) bool { return Compare(k, hi) > 0 })
}
