// Package column implements the paged column storage families: two
// generic numeric families (int32-backed, int64-backed) and one string
// family, each organized into lazily allocated fixed-capacity pages behind a
// monotonically non-decreasing "published" watermark that gates reader
// visibility.
package column

import (
	"sync"
	"sync/atomic"

	"golang.org/x/exp/constraints"
)

// Numeric is a paged column over a fixed-width integer cell type. Floating
// types are stored through their sortable integer encoding (EncodeF32/64);
// date/time types are stored as plain epoch integers by the converter
// registry — Numeric itself only knows about the underlying int32/int64
// representation.
type Numeric[T constraints.Integer] struct {
	capacity int

	mu    sync.RWMutex
	pages []*page[T]

	published atomic.Uint64
}

// NewNumeric returns an empty numeric column with the given page capacity.
// A capacity <= 0 selects DefaultPageCapacity.
func NewNumeric[T constraints.Integer](capacity int) *Numeric[T] {
	if capacity <= 0 {
		capacity = DefaultPageCapacity
	}
	return &Numeric[T]{capacity: capacity}
}

func (c *Numeric[T]) pageIndex(offset uint64) (pageNo int, inPage int) {
	return int(offset) / c.capacity, int(offset) % c.capacity
}

// ensurePage returns the page for offset, allocating it (and any
// intervening pages) on first access.
func (c *Numeric[T]) ensurePage(offset uint64) *page[T] {
	pageNo, _ := c.pageIndex(offset)

	c.mu.RLock()
	if pageNo < len(c.pages) && c.pages[pageNo] != nil {
		p := c.pages[pageNo]
		c.mu.RUnlock()
		return p
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if pageNo >= len(c.pages) {
		grown := make([]*page[T], pageNo+1)
		copy(grown, c.pages)
		c.pages = grown
	}
	if c.pages[pageNo] == nil {
		c.pages[pageNo] = newPage[T](c.capacity)
	}
	return c.pages[pageNo]
}

// pageAt returns the page for offset if it has already been allocated.
func (c *Numeric[T]) pageAt(offset uint64) (*page[T], bool) {
	pageNo, _ := c.pageIndex(offset)
	c.mu.RLock()
	defer c.mu.RUnlock()
	if pageNo >= len(c.pages) || c.pages[pageNo] == nil {
		return nil, false
	}
	return c.pages[pageNo], true
}

// Published returns the current published watermark read with an acquire
// barrier: offsets in [0, Published()) are safe to read.
func (c *Numeric[T]) Published() uint64 {
	return c.published.Load()
}

func (c *Numeric[T]) advance(offset uint64) {
	for {
		old := c.published.Load()
		next := offset + 1
		if next <= old {
			return
		}
		if c.published.CompareAndSwap(old, next) {
			return
		}
	}
}

// Put writes value at offset and advances the published watermark. Must be
// called by a single writer per offset (external serialization via the
// table's row sequence lock).
func (c *Numeric[T]) Put(offset uint64, value T) {
	p := c.ensurePage(offset)
	_, inPage := c.pageIndex(offset)
	p.values[inPage] = value
	p.presence.set(inPage)
	c.advance(offset)
}

// PutNull marks offset absent while still advancing the watermark, so a
// read of offset returns "not present" rather than retrying forever. The
// presence bit is cleared explicitly: an update to null, or a reused
// offset from the free list, must not leave the prior value readable.
func (c *Numeric[T]) PutNull(offset uint64) {
	p := c.ensurePage(offset)
	_, inPage := c.pageIndex(offset)
	p.presence.clear(inPage)
	c.advance(offset)
}

// Get reads the cell at offset, returning ok=false if the offset is beyond
// the published watermark or the cell is null.
func (c *Numeric[T]) Get(offset uint64) (value T, ok bool) {
	if offset >= c.published.Load() {
		return value, false
	}
	p, exists := c.pageAt(offset)
	if !exists {
		return value, false
	}
	_, inPage := c.pageIndex(offset)
	if !p.presence.isSet(inPage) {
		return value, false
	}
	return p.values[inPage], true
}

// forEachPublished iterates every offset in [0, published) in order,
// invoking fn with the offset, the value (zero if null) and presence.
func (c *Numeric[T]) forEachPublished(fn func(offset uint64, v T, present bool) bool) {
	published := c.published.Load()
	for offset := uint64(0); offset < published; offset++ {
		p, exists := c.pageAt(offset)
		if !exists {
			if !fn(offset, *new(T), false) {
				return
			}
			continue
		}
		_, inPage := c.pageIndex(offset)
		if p.presence.isSet(inPage) {
			if !fn(offset, p.values[inPage], true) {
				return
			}
		} else {
			if !fn(offset, *new(T), false) {
				return
			}
		}
	}
}

func capLimit(limit int) int {
	if limit <= 0 {
		return int(^uint(0) >> 1) // max int: unlimited
	}
	return limit
}

// ScanAll returns every published, non-null offset.
func (c *Numeric[T]) ScanAll(limit int) []uint64 {
	max := capLimit(limit)
	out := make([]uint64, 0)
	c.forEachPublished(func(offset uint64, _ T, present bool) bool {
		if present {
			out = append(out, offset)
		}
		return len(out) < max
	})
	return out
}

// ScanEquals returns offsets whose value equals v.
func (c *Numeric[T]) ScanEquals(v T, limit int) []uint64 {
	max := capLimit(limit)
	out := make([]uint64, 0)
	c.forEachPublished(func(offset uint64, cell T, present bool) bool {
		if present && cell == v {
			out = append(out, offset)
		}
		return len(out) < max
	})
	return out
}

// ScanNotEquals returns offsets whose value is present and not equal to v.
func (c *Numeric[T]) ScanNotEquals(v T, limit int) []uint64 {
	max := capLimit(limit)
	out := make([]uint64, 0)
	c.forEachPublished(func(offset uint64, cell T, present bool) bool {
		if present && cell != v {
			out = append(out, offset)
		}
		return len(out) < max
	})
	return out
}

// ScanGt/Ge/Lt/Le compare against v using ordered comparisons on the stored
// representation (callers pass sortable-encoded values for float columns).
func (c *Numeric[T]) ScanGt(v T, limit int) []uint64 { return c.scanCompare(limit, func(x T) bool { return x > v }) }
func (c *Numeric[T]) ScanGe(v T, limit int) []uint64 { return c.scanCompare(limit, func(x T) bool { return x >= v }) }
func (c *Numeric[T]) ScanLt(v T, limit int) []uint64 { return c.scanCompare(limit, func(x T) bool { return x < v }) }
func (c *Numeric[T]) ScanLe(v T, limit int) []uint64 { return c.scanCompare(limit, func(x T) bool { return x <= v }) }

// ScanBetween returns offsets with lo <= value <= hi (inclusive).
func (c *Numeric[T]) ScanBetween(lo, hi T, limit int) []uint64 {
	return c.scanCompare(limit, func(x T) bool { return x >= lo && x <= hi })
}

func (c *Numeric[T]) scanCompare(limit int, pred func(T) bool) []uint64 {
	max := capLimit(limit)
	out := make([]uint64, 0)
	c.forEachPublished(func(offset uint64, cell T, present bool) bool {
		if present && pred(cell) {
			out = append(out, offset)
		}
		return len(out) < max
	})
	return out
}

// ScanIn returns offsets whose value is a member of values. The membership
// set is built once, giving O(1) per-cell membership tests over an O(n)
// column pass.
func (c *Numeric[T]) ScanIn(values []T, limit int) []uint64 {
	max := capLimit(limit)
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	out := make([]uint64, 0)
	c.forEachPublished(func(offset uint64, cell T, present bool) bool {
		if !present {
			return len(out) < max
		}
		if _, ok := set[cell]; ok {
			out = append(out, offset)
		}
		return len(out) < max
	})
	return out
}

// ScanNull returns offsets within the published range that are absent.
func (c *Numeric[T]) ScanNull(limit int) []uint64 {
	max := capLimit(limit)
	out := make([]uint64, 0)
	c.forEachPublished(func(offset uint64, _ T, present bool) bool {
		if !present {
			out = append(out, offset)
		}
		return len(out) < max
	})
	return out
}

// ScanNotNull returns offsets within the published range that are present.
func (c *Numeric[T]) ScanNotNull(limit int) []uint64 {
	return c.ScanAll(limit)
}
