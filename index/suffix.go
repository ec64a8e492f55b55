package index

import (
	"github.com/memris/memris/rowid"
)

// reverse returns s with its bytes reversed (sufficient for the ASCII-ish
// identifiers and codes this index targets; full Unicode-grapheme reversal
// is not attempted, matching the prefix index's byte-oriented semantics).
func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Suffix is the string-suffix index: reverses the string and delegates to a Prefix index, so ends_with(s) == starts_with of
// the reversed string against reversed-stored values.
type Suffix struct {
	inner *Prefix
}

// NewSuffix returns an empty suffix index.
func NewSuffix() *Suffix {
	return &Suffix{inner: NewPrefix()}
}

// Add inserts row under value, reversed.
func (s *Suffix) Add(value string, row rowid.RowId) {
	s.inner.Add(reverse(value), row)
}

// Remove removes row from value's (reversed) entry.
func (s *Suffix) Remove(value string, row rowid.RowId) {
	s.inner.Remove(reverse(value), row)
}

// RemoveAll drops every row under value.
func (s *Suffix) RemoveAll(value string) {
	s.inner.RemoveAll(reverse(value))
}

// Clear empties the index.
func (s *Suffix) Clear() {
	s.inner.Clear()
}

// EndsWith returns the RowIdSet of every row whose value ends with suffix.
func (s *Suffix) EndsWith(suffix string) (rowid.Set, bool) {
	return s.inner.StartsWith(reverse(suffix))
}
