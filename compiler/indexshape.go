package compiler

import (
	"sort"

	"github.com/memris/memris/metadata"
	"github.com/memris/memris/query"
)

// buildIndexShapes records, for every declared composite index whose field
// order is a prefix of the available EQ conditions (plus an optional
// trailing range condition), the ordered argument-slot list producing its
// composite key and the condition indices it would consume. Shapes
// are returned longest-prefix first so the executor's index-selection step
// tries the index that consumes the most conditions first; ties are
// broken by the narrowest key (fewest components) to minimize key
// construction cost, rather than first-declared-wins.
func buildIndexShapes(entity *metadata.Entity, conditions []query.CompiledCondition) []query.IndexShape {
	byColumn := make(map[int]int) // column position -> condition index (first EQ match wins)
	for i, c := range conditions {
		if c.Operator == query.OpEQ {
			if _, exists := byColumn[c.ColumnPosition]; !exists {
				byColumn[c.ColumnPosition] = i
			}
		}
	}

	type candidate struct {
		shape query.IndexShape
		width int // number of components in the declared index key
	}
	var candidates []candidate
	for _, idx := range entity.Indexes {
		if !idx.Composite() {
			continue
		}
		var columnOrder []int
		var conditionIdx []int
		matched := 0
		for _, propName := range idx.Fields {
			pos, _, ok := entity.ColumnPosition(propName)
			if !ok {
				break
			}
			ci, hasEQ := byColumn[pos]
			if !hasEQ {
				// Allow one trailing range condition on the next component.
				if rangeIdx, ok := firstRangeCondition(conditions, pos); ok {
					columnOrder = append(columnOrder, pos)
					conditionIdx = append(conditionIdx, rangeIdx)
					matched++
				}
				break
			}
			columnOrder = append(columnOrder, pos)
			conditionIdx = append(conditionIdx, ci)
			matched++
		}
		if matched == 0 {
			continue
		}
		candidates = append(candidates, candidate{shape: query.IndexShape{
			IndexName:    idx.Name,
			Composite:    true,
			ColumnOrder:  columnOrder,
			ConditionIdx: conditionIdx,
		}, width: len(idx.Fields)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if len(ci.shape.ConditionIdx) != len(cj.shape.ConditionIdx) {
			return len(ci.shape.ConditionIdx) > len(cj.shape.ConditionIdx) // longest prefix first
		}
		return ci.width < cj.width // narrower key wins ties
	})
	var shapes []query.IndexShape
	for _, c := range candidates {
		shapes = append(shapes, c.shape)
	}
	return shapes
}

func firstRangeCondition(conditions []query.CompiledCondition, columnPosition int) (int, bool) {
	for i, c := range conditions {
		if c.ColumnPosition != columnPosition {
			continue
		}
		switch c.Operator {
		case query.OpGT, query.OpGE, query.OpLT, query.OpLE, query.OpBetween:
			return i, true
		}
	}
	return 0, false
}
