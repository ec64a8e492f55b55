package executor

import (
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/memris/memris/index"
	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/metrics"
	"github.com/memris/memris/query"
	"github.com/memris/memris/rowid"
)

var (
	compositeMinSentinel = index.MinComponent()
	compositeMaxSentinel = index.MaxComponent()
)

// Materializer hydrates RowIds into host entity instances or projection
// DTOs; the executor knows only RowIds and column values, never the
// host's struct types.
type Materializer interface {
	Hydrate(entity string, ref rowid.Ref) (any, error)
	Project(entity string, ref rowid.Ref, projection *query.Projection) (any, error)
}

// Executor evaluates CompiledQuery plans against registered entity schemas
// (index-selection dispatch, condition-program evaluation, DNF group
// combination, joins, ordering, limit, projection, return-kind conversion).
type Executor struct {
	schemas map[string]*Schema
	mat     Materializer
	metrics *metrics.Collectors
}

// New returns an Executor materializing results through mat.
func New(mat Materializer) *Executor {
	return &Executor{schemas: make(map[string]*Schema), mat: mat}
}

// SetMetrics attaches collectors for scan, index-probe, and DNF-group
// instrumentation; a nil receiver-field disables observation. Wired by the
// arena/repository layer at region construction.
func (e *Executor) SetMetrics(c *metrics.Collectors) {
	e.metrics = c
}

// Register binds entity's runtime Schema for execution.
func (e *Executor) Register(entity string, schema *Schema) {
	schema.Entity = entity
	e.schemas[entity] = schema
}

func (e *Executor) observeScan(schema *Schema, column string) {
	if e.metrics != nil {
		e.metrics.ObserveScan(schema.Entity, column)
	}
}

func (e *Executor) observeProbe(name string, hit bool) {
	if e.metrics == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	e.metrics.ObserveIndexProbe(name, outcome)
}

// Execute runs cq for entity against the call-site args, returning a value
// shaped per cq.ReturnKind.
func (e *Executor) Execute(entity string, cq *query.CompiledQuery, args []any) (any, error) {
	schema, ok := e.schemas[entity]
	if !ok {
		return nil, memrerr.New(memrerr.InvalidQuery, cq.MethodName, "unknown entity: "+entity)
	}

	switch cq.Op {
	case query.OpUpdate:
		return e.executeUpdate(schema, cq, args)
	case query.OpDelete:
		return e.executeDelete(schema, cq, args)
	}

	sel, err := e.selectRows(schema, cq.Conditions, cq.IndexShapes, args)
	if err != nil {
		return nil, err
	}
	sel = sel.Materialize(schema.Table)

	if len(cq.Having) > 0 {
		sel = e.filterGroup(schema, sel.Export(), cq.Having, args)
	}

	for _, j := range cq.Joins {
		sel = e.applyJoin(schema, sel, j)
	}

	if cq.Distinct {
		sel = distinctByRow(schema, sel, cq)
	}

	sel = applyOrder(schema, sel, cq.OrderBy, cq.OrderColumnPosition)
	sel = applyLimit(sel, cq.Limit)

	return e.convertResult(entity, schema, sel, cq)
}

// groupRange marks one AND-group's slice of the flat DNF condition list.
type groupRange struct {
	start, end int
}

// splitGroups finds each AND-group boundary in the flat DNF condition list,
// i.e. every run up to and including the condition whose NextCombinator is
// Or or None: groups are joined by AND internally, separated by OR.
func splitGroups(conds []query.CompiledCondition) []groupRange {
	var groups []groupRange
	start := 0
	for i, c := range conds {
		if c.NextCombinator == query.CombinatorAnd {
			continue
		}
		groups = append(groups, groupRange{start: start, end: i + 1})
		start = i + 1
	}
	if start < len(conds) {
		groups = append(groups, groupRange{start: start, end: len(conds)})
	}
	return groups
}

// selectRows evaluates the flat DNF condition list: each AND-group is
// narrowed by the best available index then verified by the full predicate,
// the OR-separated groups being independent of one another are evaluated
// concurrently, and their Selections are combined by Union in original
// group order so the result is deterministic regardless of goroutine
// completion order.
func (e *Executor) selectRows(schema *Schema, conds []query.CompiledCondition, shapes []query.IndexShape, args []any) (rowid.Selection, error) {
	if len(conds) == 0 {
		return e.scanAllSelection(schema), nil
	}

	groups := splitGroups(conds)
	if e.metrics != nil {
		e.metrics.ExecutorGroupsTotal.Add(float64(len(groups)))
	}
	results := make([]rowid.Selection, len(groups))

	if len(groups) == 1 {
		g := groups[0]
		results[0] = e.selectGroup(schema, conds[g.start:g.end], g.start, shapes, args)
	} else {
		var eg errgroup.Group
		for i, g := range groups {
			i, g := i, g
			eg.Go(func() error {
				results[i] = e.selectGroup(schema, conds[g.start:g.end], g.start, shapes, args)
				return nil
			})
		}
		_ = eg.Wait() // selectGroup never returns an error; Wait only joins goroutines
	}

	result := results[0]
	for _, sel := range results[1:] {
		result = rowid.Union(result, sel)
	}
	return result, nil
}

func (e *Executor) scanAllSelection(schema *Schema) rowid.Selection {
	e.observeScan(schema, "all")
	offsets := schema.Table.ScanAll()
	refs := make([]rowid.Ref, 0, len(offsets))
	for _, off := range offsets {
		id := rowid.FromFlatOffset(off)
		if gen, live := schema.Table.CurrentGeneration(id); live {
			refs = append(refs, rowid.Ref{Id: id, Generation: gen})
		}
	}
	return rowid.FromRefs(refs)
}

// selectGroup narrows one AND-group of conditions to a candidate RowId set
// (via a composite index, a single-column index, or — failing both — a full
// scan), then verifies every condition in the group against each candidate's
// current value (index probes narrow, the condition program decides).
func (e *Executor) selectGroup(schema *Schema, group []query.CompiledCondition, globalStart int, shapes []query.IndexShape, args []any) rowid.Selection {
	candidates, ok := e.narrowGroup(schema, group, globalStart, shapes, args)
	if !ok {
		candidates = e.scanAllSelection(schema).Export()
	}
	return e.filterGroup(schema, candidates, group, args)
}

// narrowGroup looks for a composite-index shape or single-column index
// covering a condition in group, returning a RowId superset. ok is false
// when no index applies and the caller must fall back to a full scan.
func (e *Executor) narrowGroup(schema *Schema, group []query.CompiledCondition, globalStart int, shapes []query.IndexShape, args []any) ([]rowid.RowId, bool) {
	groupEnd := globalStart + len(group)

	for _, shape := range shapes {
		if !shape.Composite || !withinRange(shape.ConditionIdx, globalStart, groupEnd) {
			continue
		}
		idx, ok := schema.CompositeIndex[shape.IndexName]
		if !ok {
			continue
		}
		set, ok := e.probeComposite(idx, shape, group, globalStart, args)
		e.observeProbe(shape.IndexName, ok)
		if ok {
			return set.Export(), true
		}
	}

	for _, c := range group {
		idx, ok := schema.SingleColumnIndex[c.ColumnPosition]
		if !ok {
			continue
		}
		set, ok := probeSingleColumn(idx, c, args)
		e.observeProbe("column-"+strconv.Itoa(c.ColumnPosition), ok)
		if ok {
			return set.Export(), true
		}
	}

	return nil, false
}

func withinRange(idxs []int, start, end int) bool {
	for _, i := range idxs {
		if i < start || i >= end {
			return false
		}
	}
	return true
}

// probeComposite builds the composite-key bound for shape and probes idx.
// A trailing ordered comparison narrows via Between with a sentinel on the
// open side; the result is a superset when the comparison is strict (> or
// <), corrected afterward by filterGroup's full predicate re-check.
func (e *Executor) probeComposite(idx CompositeIndex, shape query.IndexShape, group []query.CompiledCondition, globalStart int, args []any) (rowid.Set, bool) {
	localOf := func(globalIdx int) query.CompiledCondition { return group[globalIdx-globalStart] }

	n := len(shape.ConditionIdx)
	prefix := make([]any, 0, n)
	lastCond := localOf(shape.ConditionIdx[n-1])
	if lastCond.Operator == query.OpEQ {
		for _, gi := range shape.ConditionIdx {
			prefix = append(prefix, resolveArg(localOf(gi).Arg, args))
		}
		if set, ok := idx.Lookup(prefix); ok {
			return set, true
		}
		// An equality prefix shorter than the index's key width never hits
		// an exact lookup; a between over (prefix) .. (prefix, max-sentinel)
		// scans every stored key extending it.
		hi := append(append([]any{}, prefix...), maxSentinel())
		return idx.Between(prefix, hi)
	}

	for i := 0; i < n-1; i++ {
		prefix = append(prefix, resolveArg(localOf(shape.ConditionIdx[i]).Arg, args))
	}
	lo := append(append([]any{}, prefix...), nil)
	hi := append(append([]any{}, prefix...), nil)
	switch lastCond.Operator {
	case query.OpGT, query.OpGE:
		lo[n-1] = resolveArg(lastCond.Arg, args)
		hi[n-1] = maxSentinel()
	case query.OpLT, query.OpLE:
		lo[n-1] = minSentinel()
		hi[n-1] = resolveArg(lastCond.Arg, args)
	case query.OpBetween:
		lo[n-1] = resolveArg(lastCond.Arg, args)
		hi[n-1] = resolveArg(lastCond.ArgHigh, args)
	default:
		return nil, false
	}
	// Stored keys wider than the shape extend past hi's last component; a
	// trailing max sentinel keeps them inside the inclusive upper bound.
	hi = append(hi, maxSentinel())
	return idx.Between(lo, hi)
}

func probeSingleColumn(idx ColumnIndex, c query.CompiledCondition, args []any) (rowid.Set, bool) {
	switch c.Operator {
	case query.OpEQ:
		return idx.Lookup(resolveArg(c.Arg, args))
	case query.OpGT:
		return idx.Gt(resolveArg(c.Arg, args))
	case query.OpGE:
		return idx.Ge(resolveArg(c.Arg, args))
	case query.OpLT:
		return idx.Lt(resolveArg(c.Arg, args))
	case query.OpLE:
		return idx.Le(resolveArg(c.Arg, args))
	case query.OpBetween:
		return idx.Between(resolveArg(c.Arg, args), resolveArg(c.ArgHigh, args))
	case query.OpStartsWith:
		return idx.StartsWith(resolveArg(c.Arg, args))
	case query.OpEndsWith:
		return idx.EndsWith(resolveArg(c.Arg, args))
	default:
		return nil, false
	}
}

// filterGroup verifies every condition in group against each candidate's
// current value, reading under the row's seqlock.
func (e *Executor) filterGroup(schema *Schema, candidates []rowid.RowId, group []query.CompiledCondition, args []any) rowid.Selection {
	refs := make([]rowid.Ref, 0, len(candidates))
	for _, id := range candidates {
		gen, live := schema.Table.CurrentGeneration(id)
		if !live {
			continue
		}
		ref := rowid.Ref{Id: id, Generation: gen}
		offset := id.FlatOffset()
		pass := true
		schema.Table.ReadWithSeqlock(ref, func() {
			for _, c := range group {
				acc, ok := schema.Columns[c.ColumnPosition]
				if !ok {
					pass = false
					return
				}
				val, present := acc.Get(offset)
				ok2, err := evalCondition(c, val, present, args)
				if err != nil || !ok2 {
					pass = false
					return
				}
			}
		})
		if pass {
			refs = append(refs, ref)
		}
	}
	return rowid.FromRefs(refs)
}

// applyJoin narrows sel to rows whose join relationship resolves against the
// target entity (inner) or keeps unresolvable rows too (left).
func (e *Executor) applyJoin(schema *Schema, sel rowid.Selection, j query.CompiledJoin) rowid.Selection {
	target, ok := schema.JoinTargets[j.TargetEntity]
	if !ok {
		return sel
	}
	var out []rowid.Ref
	sel.Range(func(ref rowid.Ref) bool {
		offset := ref.Id.FlatOffset()
		acc, ok := schema.Columns[j.SourceColumnPosition]
		if !ok {
			out = append(out, ref)
			return true
		}
		var fkVal any
		var present bool
		schema.Table.ReadWithSeqlock(ref, func() { fkVal, present = acc.Get(offset) })

		matched := false
		if present {
			if j.TargetIsID {
				if target.ResolveID != nil {
					_, matched = target.ResolveID(fkVal)
				}
			} else if idx, ok := target.SingleColumnIndex[j.TargetColumnPosition]; ok {
				if set, ok2 := idx.Lookup(fkVal); ok2 && set.Len() > 0 {
					matched = true
				}
			}
		}
		if matched || j.Type == query.JoinLeft {
			out = append(out, ref)
		}
		return true
	})
	return rowid.FromRefs(out)
}

// distinctByRow drops rows whose full set of compiled condition columns
// repeats an earlier row's values (a pragmatic reading of Distinct:
// de-duplication on the columns actually being queried, since no fuller
// projection shape is known at this layer).
func distinctByRow(schema *Schema, sel rowid.Selection, cq *query.CompiledQuery) rowid.Selection {
	seen := make(map[string]struct{}, sel.Len())
	var out []rowid.Ref
	sel.Range(func(ref rowid.Ref) bool {
		offset := ref.Id.FlatOffset()
		var key []byte
		schema.Table.ReadWithSeqlock(ref, func() {
			for _, c := range cq.Conditions {
				if acc, ok := schema.Columns[c.ColumnPosition]; ok {
					v, _ := acc.Get(offset)
					key = append(key, []byte(toKeyBytes(v))...)
					key = append(key, 0)
				}
			}
		})
		k := string(key)
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		out = append(out, ref)
		return true
	})
	return rowid.FromRefs(out)
}

// executeUpdate resolves cq's WHERE clause, applies its SET assignments to
// every matched row, and returns the modified row count.
func (e *Executor) executeUpdate(schema *Schema, cq *query.CompiledQuery, args []any) (any, error) {
	if schema.ApplyUpdate == nil {
		return nil, memrerr.New(memrerr.InvalidQuery, cq.MethodName, "entity is not wired for updates")
	}
	sel, err := e.selectRows(schema, cq.Conditions, cq.IndexShapes, args)
	if err != nil {
		return nil, err
	}
	sel = sel.Materialize(schema.Table)

	values := make(map[int]any, len(cq.Assignments))
	for _, a := range cq.Assignments {
		values[a.ColumnPosition] = resolveArg(a.Value, args)
	}

	count := 0
	var updateErr error
	sel.Range(func(ref rowid.Ref) bool {
		if err := schema.ApplyUpdate(ref, values); err != nil {
			updateErr = err
			return false
		}
		count++
		return true
	})
	if updateErr != nil {
		return nil, updateErr
	}
	return count, nil
}

// executeDelete resolves cq's WHERE clause and tombstones every matched row,
// returning the deleted row count.
func (e *Executor) executeDelete(schema *Schema, cq *query.CompiledQuery, args []any) (any, error) {
	if schema.ApplyDelete == nil {
		return nil, memrerr.New(memrerr.InvalidQuery, cq.MethodName, "entity is not wired for deletes")
	}
	sel, err := e.selectRows(schema, cq.Conditions, cq.IndexShapes, args)
	if err != nil {
		return nil, err
	}
	sel = sel.Materialize(schema.Table)

	count := 0
	var delErr error
	sel.Range(func(ref rowid.Ref) bool {
		if err := schema.ApplyDelete(ref); err != nil {
			delErr = err
			return false
		}
		count++
		return true
	})
	if delErr != nil {
		return nil, delErr
	}
	if cq.ReturnKind == query.ReturnCount {
		return int64(count), nil
	}
	return count, nil
}

// convertResult shapes the final Selection per cq.ReturnKind.
func (e *Executor) convertResult(entity string, schema *Schema, sel rowid.Selection, cq *query.CompiledQuery) (any, error) {
	switch cq.ReturnKind {
	case query.ReturnCount:
		return int64(sel.Len()), nil
	case query.ReturnBoolean:
		return sel.Len() > 0, nil
	case query.ReturnOptional:
		if sel.Len() == 0 {
			return nil, nil
		}
		if sel.Len() > 1 {
			return nil, memrerr.New(memrerr.Cardinality, cq.MethodName, "expected at most one row, got more than one")
		}
		return e.materializeOne(entity, sel.At(0), cq)
	default: // ReturnList
		out := make([]any, 0, sel.Len())
		var err error
		sel.Range(func(ref rowid.Ref) bool {
			var v any
			v, err = e.materializeOne(entity, ref, cq)
			if err != nil {
				return false
			}
			out = append(out, v)
			return true
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	}
}

func (e *Executor) materializeOne(entity string, ref rowid.Ref, cq *query.CompiledQuery) (any, error) {
	if e.mat == nil {
		return nil, memrerr.New(memrerr.InvalidQuery, cq.MethodName, "no materializer wired")
	}
	if cq.Projection != nil {
		return e.mat.Project(entity, ref, cq.Projection)
	}
	return e.mat.Hydrate(entity, ref)
}

func toKeyBytes(v any) string {
	if v == nil {
		return "\x00"
	}
	return fmt.Sprintf("%v", v)
}

func minSentinel() any { return compositeMinSentinel }
func maxSentinel() any { return compositeMaxSentinel }
