package rowid

// GenerationSource answers the current row-generation for a RowId's offset,
// as maintained by a table. Selection materialization uses it to drop
// references to recycled offsets.
type GenerationSource interface {
	CurrentGeneration(id RowId) (gen uint32, live bool)
}

// Selection is an immutable, ordered sequence of Refs: the handoff unit
// between scan, index, join, order, and limit stages of the executor.
type Selection struct {
	refs []Ref
}

// Empty is the zero-length Selection.
var Empty = Selection{}

// FromIds builds a Selection from plain RowIds stamped with a single
// generation, preserving the given order (used by scan primitives, which
// return offsets in ascending/page order).
func FromIds(gen uint32, ids ...RowId) Selection {
	refs := make([]Ref, len(ids))
	for i, id := range ids {
		refs[i] = Ref{Id: id, Generation: gen}
	}
	return Selection{refs: refs}
}

// FromRefs builds a Selection directly from Refs, preserving order.
func FromRefs(refs []Ref) Selection {
	out := make([]Ref, len(refs))
	copy(out, refs)
	return Selection{refs: out}
}

// Len returns the number of references in the selection.
func (s Selection) Len() int { return len(s.refs) }

// At returns the i'th reference.
func (s Selection) At(i int) Ref { return s.refs[i] }

// Range iterates references in order, stopping early if fn returns false.
func (s Selection) Range(fn func(Ref) bool) {
	for _, r := range s.refs {
		if !fn(r) {
			return
		}
	}
}

// Contains reports whether id is present (ignoring generation) in the
// selection.
func (s Selection) Contains(id RowId) bool {
	for _, r := range s.refs {
		if r.Id == id {
			return true
		}
	}
	return false
}

// Export returns the plain RowId sequence, preserving order.
func (s Selection) Export() []RowId {
	out := make([]RowId, len(s.refs))
	for i, r := range s.refs {
		out[i] = r.Id
	}
	return out
}

// denseThreshold mirrors the RowIdSet upgrade threshold: combinators above
// this size build a dense membership set rather than a linear one.
const denseThreshold = DefaultUpgradeThreshold

func membershipSet(sizeHint int) Set {
	if sizeHint >= denseThreshold {
		return NewDense()
	}
	return NewSparse()
}

// Union returns the ordered set union of a and b: every ref of a in order,
// followed by refs of b not already present in a.
func Union(a, b Selection) Selection {
	seen := membershipSet(a.Len() + b.Len())
	out := make([]Ref, 0, a.Len()+b.Len())
	for _, r := range a.refs {
		if seen.Add(r.Id) {
			out = append(out, r)
		}
	}
	for _, r := range b.refs {
		if seen.Add(r.Id) {
			out = append(out, r)
		}
	}
	return Selection{refs: out}
}

// Intersect returns refs of a whose id also appears in b, preserving a's
// order.
func Intersect(a, b Selection) Selection {
	present := membershipSet(b.Len())
	for _, r := range b.refs {
		present.Add(r.Id)
	}
	out := make([]Ref, 0, a.Len())
	for _, r := range a.refs {
		if present.Contains(r.Id) {
			out = append(out, r)
		}
	}
	return Selection{refs: out}
}

// Subtract returns refs of a whose id does not appear in b, preserving a's
// order.
func Subtract(a, b Selection) Selection {
	excluded := membershipSet(b.Len())
	for _, r := range b.refs {
		excluded.Add(r.Id)
	}
	out := make([]Ref, 0, a.Len())
	for _, r := range a.refs {
		if !excluded.Contains(r.Id) {
			out = append(out, r)
		}
	}
	return Selection{refs: out}
}

// Materialize filters out stale references: any ref whose stamped
// generation no longer matches the table's current generation for that
// offset (or whose offset is no longer live) is dropped. Order of the
// surviving refs is preserved.
func (s Selection) Materialize(src GenerationSource) Selection {
	out := make([]Ref, 0, len(s.refs))
	for _, r := range s.refs {
		gen, live := src.CurrentGeneration(r.Id)
		if live && gen == r.Generation {
			out = append(out, r)
		}
	}
	return Selection{refs: out}
}
