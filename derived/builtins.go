package derived

import "github.com/memris/memris/query"

// builtinShapes fixes the LogicalQuery shape of each built-in repository
// operation (save, saveAll, delete, deleteAll, deleteById, findById,
// findAll, count, existsById). Full signature-key resolution — method name ×
// declared parameter types, with the exact-beats-wildcard and
// specificity/ambiguity tie-break rules — lives in SignatureTable;
// this map supplies the plan each resolved signature builds. Saver wiring
// for save/saveAll stays with the repository layer, which alone knows the
// concrete entity type.
var builtinShapes = map[string]func() *query.LogicalQuery{
	"save": func() *query.LogicalQuery {
		return &query.LogicalQuery{MethodName: "save", Op: query.OpUpdate, ReturnKind: query.ReturnModifying}
	},
	"saveAll": func() *query.LogicalQuery {
		return &query.LogicalQuery{MethodName: "saveAll", Op: query.OpUpdate, ReturnKind: query.ReturnModifying}
	},
	"delete": func() *query.LogicalQuery {
		return &query.LogicalQuery{MethodName: "delete", Op: query.OpDelete, ReturnKind: query.ReturnModifying}
	},
	"deleteAll": func() *query.LogicalQuery {
		return &query.LogicalQuery{MethodName: "deleteAll", Op: query.OpDelete, ReturnKind: query.ReturnModifying}
	},
	"deleteById": func() *query.LogicalQuery {
		return &query.LogicalQuery{
			MethodName: "deleteById", Op: query.OpDelete, ReturnKind: query.ReturnModifying,
			Conditions: []query.Condition{{Property: "__id", Operator: query.OpEQ, Arg: query.ArgSlot{ParamIndex: 0}}},
		}
	},
	"findById": func() *query.LogicalQuery {
		return &query.LogicalQuery{
			MethodName: "findById", Op: query.OpFind, ReturnKind: query.ReturnOptional,
			Conditions: []query.Condition{{Property: "__id", Operator: query.OpEQ, Arg: query.ArgSlot{ParamIndex: 0}}},
		}
	},
	"findAll": func() *query.LogicalQuery {
		return &query.LogicalQuery{MethodName: "findAll", Op: query.OpFind, ReturnKind: query.ReturnList}
	},
	"count": func() *query.LogicalQuery {
		return &query.LogicalQuery{MethodName: "count", Op: query.OpCountAll, ReturnKind: query.ReturnCount}
	},
	"existsById": func() *query.LogicalQuery {
		return &query.LogicalQuery{
			MethodName: "existsById", Op: query.OpExists, ReturnKind: query.ReturnBoolean,
			Conditions: []query.Condition{{Property: "__id", Operator: query.OpEQ, Arg: query.ArgSlot{ParamIndex: 0}}},
		}
	},
}

// resolveBuiltin looks methodName up by name alone in builtinShapes; argument
// types are not consulted (SignatureTable.Resolve does that). Returns ok=false (not an error) when methodName is not a recognized
// built-in, so callers fall through to derived-method parsing.
func resolveBuiltin(methodName string) (*query.LogicalQuery, bool, error) {
	build, ok := builtinShapes[methodName]
	if !ok {
		return nil, false, nil
	}
	return build(), true, nil
}
