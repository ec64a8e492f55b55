// Package compiler lowers a query.LogicalQuery into a
// query.CompiledQuery by resolving property paths to column positions and
// type codes, converting bound literals to storage representation, and
// matching declared composite indexes against condition prefixes.
package compiler

import (
	"reflect"

	"github.com/memris/memris/column"
	"github.com/memris/memris/convert"
	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/metadata"
	"github.com/memris/memris/query"
)

// Compiler lowers LogicalQuery plans for one entity.
type Compiler struct {
	reg       metadata.Registry
	converters *convert.Registry
}

// New returns a Compiler resolving relationship targets through reg and
// literal conversions through converters.
func New(reg metadata.Registry, converters *convert.Registry) *Compiler {
	return &Compiler{reg: reg, converters: converters}
}

// Compile lowers lq against entity into a CompiledQuery.
func (c *Compiler) Compile(lq *query.LogicalQuery, entity *metadata.Entity) (*query.CompiledQuery, error) {
	cq := &query.CompiledQuery{
		MethodName: lq.MethodName,
		Op:         lq.Op,
		ReturnKind: lq.ReturnKind,
		OrderBy:    lq.OrderBy,
		Limit:      lq.Limit,
		Distinct:   lq.Distinct,
		Projection: lq.Projection,
		GroupBy:    lq.GroupBy,
	}

	conds, err := c.compileConditions(lq.MethodName, lq.Conditions, entity)
	if err != nil {
		return nil, err
	}
	cq.Conditions = conds

	having, err := c.compileConditions(lq.MethodName, lq.Having, entity)
	if err != nil {
		return nil, err
	}
	cq.Having = having

	joins, err := c.compileJoins(lq.MethodName, lq.Joins, entity)
	if err != nil {
		return nil, err
	}
	cq.Joins = joins

	orderCols := make([]int, len(lq.OrderBy))
	for i, ob := range lq.OrderBy {
		pos, _, ok := entity.ColumnPosition(ob.Property)
		if !ok {
			return nil, memrerr.New(memrerr.InvalidQuery, lq.MethodName, "unknown OrderBy property: "+ob.Property)
		}
		orderCols[i] = pos
	}
	cq.OrderColumnPosition = orderCols

	assigns, err := c.compileAssignments(lq.MethodName, lq.Assignments, entity)
	if err != nil {
		return nil, err
	}
	cq.Assignments = assigns

	cq.IndexShapes = buildIndexShapes(entity, cq.Conditions)

	return cq, nil
}

func (c *Compiler) compileConditions(method string, conds []query.Condition, entity *metadata.Entity) ([]query.CompiledCondition, error) {
	out := make([]query.CompiledCondition, 0, len(conds))
	for _, cond := range conds {
		cc, err := c.compileCondition(method, cond, entity)
		if err != nil {
			return nil, err
		}
		out = append(out, cc)
	}
	return out, nil
}

func (c *Compiler) compileCondition(method string, cond query.Condition, entity *metadata.Entity) (query.CompiledCondition, error) {
	pos, typeCode, ok := resolveColumn(entity, cond.Property)
	if !ok {
		return query.CompiledCondition{}, memrerr.New(memrerr.InvalidQuery, method,
			"unknown property path: "+cond.Property)
	}

	arg, err := c.compileArg(method, entity, cond.Property, cond.Arg)
	if err != nil {
		return query.CompiledCondition{}, err
	}
	argHigh, err := c.compileArg(method, entity, cond.Property, cond.ArgHigh)
	if err != nil {
		return query.CompiledCondition{}, err
	}

	return query.CompiledCondition{
		ColumnPosition: pos,
		TypeCode:       typeCode,
		Operator:       cond.Operator,
		Arg:            arg,
		ArgHigh:        argHigh,
		IgnoreCase:     cond.IgnoreCase,
		NextCombinator: cond.NextCombinator,
	}, nil
}

// resolveColumn resolves "__id" (the built-in id-condition sentinel used by
// derived.builtins) and ordinary property paths to a column position/type.
func resolveColumn(entity *metadata.Entity, property string) (int, column.TypeCode, bool) {
	if property == "__id" {
		f, ok := entity.IDField()
		if !ok {
			return -1, 0, false
		}
		return f.ColumnPosition, f.TypeCode, f.IsStored()
	}
	pos, tc, ok := entity.ColumnPosition(property)
	return pos, tc, ok
}

func (c *Compiler) compileArg(method string, entity *metadata.Entity, property string, arg query.ArgSlot) (query.CompiledArgSlot, error) {
	if !arg.HasLiteral {
		return query.CompiledArgSlot{ParamIndex: arg.ParamIndex}, nil
	}
	if arg.Literal == nil {
		return query.CompiledArgSlot{HasLiteral: true, Literal: nil}, nil
	}
	converted, err := c.convertLiteral(entity, property, arg.Literal)
	if err != nil {
		return query.CompiledArgSlot{}, memrerr.Wrap(memrerr.InvalidQuery, method,
			"failed to convert literal for "+property, err)
	}
	return query.CompiledArgSlot{HasLiteral: true, Literal: converted}, nil
}

func (c *Compiler) convertLiteral(entity *metadata.Entity, property string, lit any) (any, error) {
	if ref, ok := lit.(query.ParamRef); ok {
		// Parameter references inside IN lists stay unresolved until the
		// executor sees the call-site arguments.
		return ref, nil
	}
	if items, ok := lit.([]any); ok {
		out := make([]any, len(items))
		for i, item := range items {
			v, err := c.convertLiteral(entity, property, item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	conv := c.converters.For(entity.ClassID, property, reflect.TypeOf(lit))
	return conv.ToStorage(lit)
}

func (c *Compiler) compileJoins(method string, joins []query.Join, entity *metadata.Entity) ([]query.CompiledJoin, error) {
	out := make([]query.CompiledJoin, 0, len(joins))
	for _, j := range joins {
		f, ok := entity.FieldByProperty(j.PropertyPath)
		if !ok || f.Relationship == nil {
			return nil, memrerr.New(memrerr.InvalidQuery, method, "unknown join relationship: "+j.PropertyPath)
		}
		srcField, ok := entity.FieldByProperty(fkFieldName(f))
		srcPos := -1
		if ok {
			srcPos = srcField.ColumnPosition
		}

		targetEntity, ok := c.reg.Entity(f.Relationship.TargetEntity)
		if !ok {
			return nil, memrerr.New(memrerr.InvalidQuery, method, "unknown join target entity: "+f.Relationship.TargetEntity)
		}

		cj := query.CompiledJoin{
			Join:                 j,
			SourceColumnPosition: srcPos,
			TargetEntity:         f.Relationship.TargetEntity,
			FKTypeCode:           srcField.TypeCode,
		}
		if j.ReferencedColumn == "" {
			cj.TargetIsID = true
			cj.TargetColumnPosition = -1
		} else {
			tf, ok := targetEntity.FieldByProperty(j.ReferencedColumn)
			if !ok {
				return nil, memrerr.New(memrerr.InvalidQuery, method, "unknown referenced column: "+j.ReferencedColumn)
			}
			cj.TargetColumnPosition = tf.ColumnPosition
		}
		out = append(out, cj)
	}
	return out, nil
}

func fkFieldName(f metadata.Field) string {
	if f.Relationship != nil && f.Relationship.FKColumn != "" {
		return f.Relationship.FKColumn
	}
	return f.PropertyName
}

func (c *Compiler) compileAssignments(method string, assigns []query.Assignment, entity *metadata.Entity) ([]query.CompiledAssignment, error) {
	if len(assigns) == 0 {
		return nil, nil
	}
	idField, _ := entity.IDField()
	out := make([]query.CompiledAssignment, 0, len(assigns))
	for _, a := range assigns {
		if a.Property == idField.PropertyName {
			return nil, memrerr.New(memrerr.InvalidQuery, method, "update cannot assign to the id column")
		}
		pos, tc, ok := entity.ColumnPosition(a.Property)
		if !ok {
			return nil, memrerr.New(memrerr.InvalidQuery, method, "unknown assignment property: "+a.Property)
		}
		val, err := c.compileArg(method, entity, a.Property, a.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, query.CompiledAssignment{ColumnPosition: pos, TypeCode: tc, Value: val})
	}
	return out, nil
}
