package rowid

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// DefaultUpgradeThreshold is the default sparse-set size at which a Set
// factory replaces the sparse representation with a dense one.
const DefaultUpgradeThreshold = 4096

// Set is the shared interface implemented by both RowIdSet representations.
// Insert and Remove are idempotent (set semantics). Export returns a
// read-time snapshot unaffected by later mutation of the set.
type Set interface {
	Add(id RowId) bool
	Remove(id RowId) bool
	Contains(id RowId) bool
	Len() int
	Range(func(RowId) bool)
	Export() []RowId
}

// --------------------------- sparse ----------------------------

// sparseSet is an unsorted, unique array with amortized O(1) insert and
// linear membership. It is the default representation for small selections.
type sparseSet struct {
	items []RowId
}

// NewSparse returns an empty sparse Set.
func NewSparse() Set {
	return &sparseSet{}
}

func (s *sparseSet) Add(id RowId) bool {
	for _, v := range s.items {
		if v == id {
			return false
		}
	}
	s.items = append(s.items, id)
	return true
}

func (s *sparseSet) Remove(id RowId) bool {
	for i, v := range s.items {
		if v == id {
			s.items[i] = s.items[len(s.items)-1]
			s.items = s.items[:len(s.items)-1]
			return true
		}
	}
	return false
}

func (s *sparseSet) Contains(id RowId) bool {
	for _, v := range s.items {
		if v == id {
			return true
		}
	}
	return false
}

func (s *sparseSet) Len() int { return len(s.items) }

func (s *sparseSet) Range(fn func(RowId) bool) {
	for _, v := range s.items {
		if !fn(v) {
			return
		}
	}
}

func (s *sparseSet) Export() []RowId {
	out := make([]RowId, len(s.items))
	copy(out, s.items)
	return out
}

// --------------------------- dense ----------------------------

// denseSet is a roaring-bitmap-backed representation with O(1) insert and
// membership, used once a sparse set crosses the upgrade threshold.
type denseSet struct {
	bm *roaring64.Bitmap
}

// NewDense returns an empty dense Set.
func NewDense() Set {
	return &denseSet{bm: roaring64.New()}
}

func (d *denseSet) Add(id RowId) bool {
	return d.bm.CheckedAdd(uint64(id))
}

func (d *denseSet) Remove(id RowId) bool {
	return d.bm.CheckedRemove(uint64(id))
}

func (d *denseSet) Contains(id RowId) bool {
	return d.bm.Contains(uint64(id))
}

func (d *denseSet) Len() int { return int(d.bm.GetCardinality()) }

func (d *denseSet) Range(fn func(RowId) bool) {
	it := d.bm.Iterator()
	for it.HasNext() {
		if !fn(RowId(it.Next())) {
			return
		}
	}
}

func (d *denseSet) Export() []RowId {
	out := make([]RowId, 0, d.Len())
	d.Range(func(id RowId) bool {
		out = append(out, id)
		return true
	})
	return out
}

// --------------------------- upgrade factory ----------------------------

// AutoSet wraps a Set and transparently upgrades from sparse to dense once
// the element count crosses threshold. Downgrade is never performed.
// Safe for concurrent readers racing a single upgrading writer: the
// upgrade swap is guarded by a mutex, and a reader that observed the old
// sparse set before the swap still sees a complete, un-mutated snapshot
// because sparseSet.items is replaced wholesale, never mutated in place
// during upgrade.
type AutoSet struct {
	mu        sync.Mutex
	threshold int
	inner     Set
	dense     bool
}

// NewAutoSet returns an AutoSet starting in sparse representation with the
// given upgrade threshold. A threshold <= 0 selects DefaultUpgradeThreshold.
func NewAutoSet(threshold int) *AutoSet {
	if threshold <= 0 {
		threshold = DefaultUpgradeThreshold
	}
	return &AutoSet{threshold: threshold, inner: NewSparse()}
}

func (a *AutoSet) Add(id RowId) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	added := a.inner.Add(id)
	if !a.dense && a.inner.Len() >= a.threshold {
		a.upgrade()
	}
	return added
}

// upgrade swaps the sparse representation for a dense one preserving
// contents. Must be called with mu held.
func (a *AutoSet) upgrade() {
	dense := NewDense()
	a.inner.Range(func(id RowId) bool {
		dense.Add(id)
		return true
	})
	a.inner = dense
	a.dense = true
}

func (a *AutoSet) Remove(id RowId) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inner.Remove(id)
}

func (a *AutoSet) Contains(id RowId) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inner.Contains(id)
}

func (a *AutoSet) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inner.Len()
}

func (a *AutoSet) Range(fn func(RowId) bool) {
	a.mu.Lock()
	inner := a.inner
	a.mu.Unlock()
	inner.Range(fn)
}

func (a *AutoSet) Export() []RowId {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inner.Export()
}

// IsDense reports whether the set has upgraded to the dense representation.
func (a *AutoSet) IsDense() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dense
}
