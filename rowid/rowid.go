// Package rowid defines the 64-bit composite row identity that every
// selection, index, and id map speaks in, plus the Selection type that
// carries references between pipeline stages.
package rowid

import (
	"fmt"

	"github.com/memris/memris/memrerr"
)

// offsetBits is the width of the offset component of a RowId. The remaining
// high bits identify the page.
const offsetBits = 16

// MaxPage is the largest page number a RowId can carry. A page beyond it
// would shift into oblivion and alias two distinct rows, so minting paths
// must refuse it rather than wrap.
const MaxPage = uint64(1)<<(64-offsetBits) - 1

// RowId is a 64-bit composite identity laid out as page(48) | offset(16).
// An offset of zero is valid; the zero RowId is representable and denotes
// page 0, offset 0.
type RowId uint64

// NewRowId packs a page number and an in-page offset into a RowId. A page
// beyond MaxPage is a capacity error: the shift would wrap and alias an
// unrelated row.
func NewRowId(page uint64, offset uint16) (RowId, error) {
	if page > MaxPage {
		return 0, memrerr.New(memrerr.Capacity, "",
			fmt.Sprintf("page %d exceeds the RowId page range", page))
	}
	return RowId(page<<offsetBits | uint64(offset)), nil
}

// Page extracts the page component of the RowId.
func (r RowId) Page() uint64 {
	return uint64(r) >> offsetBits
}

// Offset extracts the in-page offset component of the RowId.
func (r RowId) Offset() uint16 {
	return uint16(uint64(r) & (1<<offsetBits - 1))
}

// FromFlatOffset packs a single flat row offset (as used by the table's
// offset space) into a RowId. Total by construction: the derived page is
// offset>>16, which can never exceed MaxPage.
func FromFlatOffset(offset uint64) RowId {
	return RowId(offset)
}

// FlatOffset reassembles the flat row offset FromFlatOffset packed into r.
func (r RowId) FlatOffset() uint64 {
	return r.Page()<<offsetBits | uint64(r.Offset())
}

func (r RowId) String() string {
	return fmt.Sprintf("RowId(page=%d,offset=%d)", r.Page(), r.Offset())
}

// Ref is a RowId stamped with the row-generation counter in effect when the
// reference was produced. References are compared against the table's
// current generation for that offset at selection-materialization time;
// a mismatch means the underlying slot was recycled by a delete+insert and
// the reference is stale.
type Ref struct {
	Id         RowId
	Generation uint32
}

func (r Ref) String() string {
	return fmt.Sprintf("Ref(%s,gen=%d)", r.Id, r.Generation)
}
