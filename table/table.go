// Package table implements row lifecycle and primary-key lookup: offset
// allocation from a free list, per-row sequence-lock update atomicity, tombstone
// tracking, and a generation counter used to detect recycled offsets so stale
// Selection references are filtered rather than silently misread.
package table

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/memris/memris/internal/safeint"
	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/rowid"
)

// RowWriter writes a row's column values at offset. Supplied by the caller
// (the repository/executor layer, which knows the concrete columns); Table
// itself is column-type-agnostic and only owns offset/lock/tombstone
// bookkeeping.
type RowWriter func(offset uint64)

// seqState packs the per-row sequence lock: even means stable, odd means a
// write is in progress.
type seqState struct {
	seq atomic.Uint32
}

// DefaultSeqlockRetryCap bounds the optimistic read retry loop before a
// reader falls back to the shared lock path.
const DefaultSeqlockRetryCap = 16

// Option tunes a Table at construction; the arena layer threads its Config
// through these so every table in one region shares the same caps.
type Option func(*options)

type options struct {
	retryCap         int
	upgradeThreshold int
	maxRows          uint64
	onRetry          func()
	onEscalate       func()
}

// WithSeqlockRetryCap overrides the optimistic-read retry bound.
func WithSeqlockRetryCap(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.retryCap = n
		}
	}
}

// WithUpgradeThreshold overrides the sparse->dense threshold of the table's
// internal tombstone/allocation sets.
func WithUpgradeThreshold(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.upgradeThreshold = n
		}
	}
}

// WithMaxRows caps the number of row offsets the table may mint. The
// default cap is the full addressable offset space; hosts lower it to bound
// a region, and Insert surfaces a capacity error once it is reached.
func WithMaxRows(n uint64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxRows = n
		}
	}
}

// WithSeqlockHooks installs observation callbacks on the read path: onRetry
// fires once per optimistic retry against an in-progress writer, onEscalate
// once per fallback to the shared lock. Either may be nil. Wired by the
// arena layer to its metrics collectors.
func WithSeqlockHooks(onRetry, onEscalate func()) Option {
	return func(o *options) {
		o.onRetry = onRetry
		o.onEscalate = onEscalate
	}
}

// Table owns row identity for entities keyed by K: offset allocation, the
// per-row sequence lock, tombstones, the free list, and the id -> RowId map.
type Table[K comparable] struct {
	mu sync.RWMutex

	retryCap   int
	maxRows    uint64
	onRetry    func()
	onEscalate func()
	next       uint64
	locks    []*seqState
	gens     []*atomic.Uint32
	alloc    rowid.Set // offsets ever allocated (minus freed ones still counts until reused)
	tomb     rowid.Set // tombstoned offsets
	free     []uint64
	byID     map[K]rowid.RowId
	byOffset map[uint64]K // reverse of byID, for O(1) Delete lookup

	fallback sync.RWMutex // shared-lock path after seqlock retry exhaustion
}

// New returns an empty table.
func New[K comparable](opts ...Option) *Table[K] {
	o := options{
		retryCap:         DefaultSeqlockRetryCap,
		upgradeThreshold: rowid.DefaultUpgradeThreshold,
		maxRows:          uint64(safeint.MaxInt64),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Table[K]{
		retryCap:   o.retryCap,
		maxRows:    o.maxRows,
		onRetry:    o.onRetry,
		onEscalate: o.onEscalate,
		alloc:      rowid.NewAutoSet(o.upgradeThreshold),
		tomb:       rowid.NewAutoSet(o.upgradeThreshold),
		byID:       make(map[K]rowid.RowId),
		byOffset:   make(map[uint64]K),
	}
}

// ensureSlots grows locks/gens to cover offset. Both slices hold pointers
// (never copied atomic.Uint32 values) so a concurrent grow-and-copy here can
// never race or lose an Add/Load issued against an existing slot.
func (t *Table[K]) ensureSlots(offset uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	need := int(offset) + 1
	if need <= len(t.locks) {
		return
	}
	grownLocks := make([]*seqState, need)
	copy(grownLocks, t.locks)
	grownGens := make([]*atomic.Uint32, need)
	copy(grownGens, t.gens)
	for i := len(t.locks); i < need; i++ {
		grownLocks[i] = &seqState{}
		grownGens[i] = &atomic.Uint32{}
	}
	t.locks = grownLocks
	t.gens = grownGens
}

func (t *Table[K]) lockFor(offset uint64) *seqState {
	t.mu.RLock()
	l := t.locks[offset]
	t.mu.RUnlock()
	return l
}

// allocate pops a free offset or extends the table, returning the offset and
// its post-allocation generation. Extension is bounded: minting an offset at
// or beyond the row cap (or one whose increment would wrap) is a capacity
// error, never a silent wrap that would alias an existing RowId.
func (t *Table[K]) allocate() (offset uint64, generation uint32, err error) {
	t.mu.Lock()
	if n := len(t.free); n > 0 {
		offset = t.free[n-1]
		t.free = t.free[:n-1]
		t.gens[offset].Add(1)
		generation = t.gens[offset].Load()
		t.mu.Unlock()
		id := rowid.FromFlatOffset(offset)
		t.alloc.Add(id)
		t.tomb.Remove(id)
		return offset, generation, nil
	}
	offset = t.next
	next, overflow := safeint.SafeAdd(t.next, 1)
	if overflow || offset >= t.maxRows {
		t.mu.Unlock()
		return 0, 0, memrerr.New(memrerr.Capacity, "table.Insert",
			"row offsets exhausted: table reached its row cap")
	}
	t.next = next
	t.mu.Unlock()

	t.ensureSlots(offset)
	t.alloc.Add(rowid.FromFlatOffset(offset))
	return offset, 0, nil
}

// Insert allocates a new row offset, runs write under the row's sequence
// lock, records the id mapping, and returns the row's Ref. The error is a
// capacity failure when the table's offset space is exhausted.
func (t *Table[K]) Insert(id K, write RowWriter) (rowid.Ref, error) {
	offset, generation, err := t.allocate()
	if err != nil {
		return rowid.Ref{}, err
	}
	l := t.lockFor(offset)

	t.fallback.RLock()
	l.seq.Add(1) // odd: writing
	write(offset)
	l.seq.Add(1) // even: stable
	t.fallback.RUnlock()

	t.mu.Lock()
	t.byID[id] = rowid.FromFlatOffset(offset)
	t.byOffset[offset] = id
	t.mu.Unlock()

	return rowid.Ref{Id: rowid.FromFlatOffset(offset), Generation: generation}, nil
}

// UpdateInPlace writes new column values for an existing row under its
// sequence lock. Index maintenance is the caller's responsibility, performed
// outside the lock.
func (t *Table[K]) UpdateInPlace(ref rowid.Ref, write RowWriter) {
	offset := ref.Id.FlatOffset()
	l := t.lockFor(offset)
	t.fallback.RLock()
	l.seq.Add(1) // odd: writing
	write(offset)
	l.seq.Add(1) // even: stable
	t.fallback.RUnlock()
}

// ReadWithSeqlock runs reader against the row's current cell contents,
// retrying while a concurrent writer holds the lock. After the retry cap it
// falls back to an exclusive acquisition of the table's fallback lock;
// writers hold that lock shared for the duration of every write section, so
// the fallback path observes only fully committed rows.
func (t *Table[K]) ReadWithSeqlock(ref rowid.Ref, reader func()) {
	offset := ref.Id.FlatOffset()
	l := t.lockFor(offset)

	for i := 0; i < t.retryCap; i++ {
		s0 := l.seq.Load()
		if s0%2 != 0 {
			if t.onRetry != nil {
				t.onRetry()
			}
			runtime.Gosched() // writer in progress, retry
			continue
		}
		reader()
		s1 := l.seq.Load()
		if s0 == s1 {
			return
		}
		if t.onRetry != nil {
			t.onRetry()
		}
	}

	if t.onEscalate != nil {
		t.onEscalate()
	}
	t.fallback.Lock()
	defer t.fallback.Unlock()
	reader()
}

// Delete tombstones ref's offset, frees it for reuse, advances its
// generation so that Selections captured before the delete no longer
// materialize, and returns the id for index cleanup.
func (t *Table[K]) Delete(ref rowid.Ref) (id K, ok bool) {
	offset := ref.Id.FlatOffset()

	t.mu.Lock()
	foundID, found := t.byOffset[offset]
	if found {
		delete(t.byOffset, offset)
		delete(t.byID, foundID)
	}
	t.mu.Unlock()
	if !found {
		return id, false
	}

	t.tomb.Add(ref.Id)
	t.mu.Lock()
	t.free = append(t.free, offset)
	t.gens[offset].Add(1)
	t.mu.Unlock()

	return foundID, true
}

// LookupByID returns the Ref for key, or ok=false if no live row has it.
func (t *Table[K]) LookupByID(key K) (rowid.Ref, bool) {
	t.mu.RLock()
	id, ok := t.byID[key]
	if !ok {
		t.mu.RUnlock()
		return rowid.Ref{}, false
	}
	gen := t.gens[id.FlatOffset()]
	t.mu.RUnlock()
	return rowid.Ref{Id: id, Generation: gen.Load()}, true
}

// ScanAll returns every live offset: allocated and not tombstoned.
func (t *Table[K]) ScanAll() []uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]uint64, 0, t.next)
	for offset := uint64(0); offset < t.next; offset++ {
		id := rowid.FromFlatOffset(offset)
		if t.alloc.Contains(id) && !t.tomb.Contains(id) {
			out = append(out, offset)
		}
	}
	return out
}

// CurrentGeneration implements rowid.GenerationSource: it reports the live
// generation stamped on offset so stale Selection references are detected at
// materialization time. live is false for an offset never allocated or
// currently tombstoned. An offset reused by a later insert is live again
// with a higher generation, since Delete and the reuse each advance it; so a
// deleted row's lingering index entries and Selections never silently
// resurrect it: prior selections pointing at the old RowId materialize to
// nothing.
func (t *Table[K]) CurrentGeneration(id rowid.RowId) (uint32, bool) {
	offset := id.FlatOffset()
	t.mu.RLock()
	defer t.mu.RUnlock()
	if offset >= uint64(len(t.gens)) {
		return 0, false
	}
	if !t.alloc.Contains(id) || t.tomb.Contains(id) {
		return 0, false
	}
	return t.gens[offset].Load(), true
}
