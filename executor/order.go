package executor

import (
	"sort"

	"github.com/memris/memris/query"
	"github.com/memris/memris/rowid"
)

// applyOrder stably sorts sel by OrderBy, reading each ordering column's
// value under the row's seqlock.
func applyOrder(schema *Schema, sel rowid.Selection, orderBy []query.OrderBy, orderCols []int) rowid.Selection {
	if len(orderBy) == 0 {
		return sel
	}
	type row struct {
		ref  rowid.Ref
		keys []any
	}
	rows := make([]row, sel.Len())
	for i := 0; i < sel.Len(); i++ {
		ref := sel.At(i)
		offset := ref.Id.FlatOffset()
		vals := make([]any, len(orderCols))
		schema.Table.ReadWithSeqlock(ref, func() {
			for j, pos := range orderCols {
				v, _ := schema.Columns[pos].Get(offset)
				vals[j] = v
			}
		})
		rows[i] = row{ref: ref, keys: vals}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for k, ob := range orderBy {
			c := compareOrdered(rows[i].keys[k], rows[j].keys[k])
			if c == 0 {
				continue
			}
			if ob.Direction == query.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})

	refs := make([]rowid.Ref, len(rows))
	for i, r := range rows {
		refs[i] = r.ref
	}
	return rowid.FromRefs(refs)
}

// applyLimit truncates sel to at most n references; n <= 0 means unbounded.
func applyLimit(sel rowid.Selection, n int) rowid.Selection {
	if n <= 0 || sel.Len() <= n {
		return sel
	}
	refs := make([]rowid.Ref, n)
	for i := 0; i < n; i++ {
		refs[i] = sel.At(i)
	}
	return rowid.FromRefs(refs)
}
