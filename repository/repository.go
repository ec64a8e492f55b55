// Package repository wires the derived-method planner, embedded JPQL
// parser, compiler, and executor into the single entry point a generated or
// hand-written repository interface calls through: Repository.Call
// resolves a method name to a LogicalQuery (built-in shape, declared @Query
// JPQL, or derived-method parse), compiles it once per distinct method
// (memoized via the arena's PlanCache), and executes it.
package repository

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/memris/memris/compiler"
	"github.com/memris/memris/derived"
	"github.com/memris/memris/executor"
	"github.com/memris/memris/jpql"
	"github.com/memris/memris/memrerr"
	"github.com/memris/memris/metadata"
	"github.com/memris/memris/query"
)

// Saver is the consumed collaborator that performs the actual row
// write/tombstone for the save/saveAll built-ins: constructing and writing a
// full row is necessarily type-specific, so it is never modeled as a
// CompiledQuery condition program the way reads, updates, and conditional
// deletes are.
type Saver interface {
	Save(entity string, value any) (any, error)
	SaveAll(entity string, values []any) ([]any, error)
}

// CustomQuery is one declared @Query-style method: a JPQL source string plus
// whether it is a modifying (UPDATE/DELETE) statement. Native marks
// the query as written in a backend-native dialect, which this engine
// rejects at plan time ("native queries not supported").
type CustomQuery struct {
	JPQL      string
	Modifying bool
	Native    bool
}

// Repository is the per-entity wiring of the repository surface.
type Repository struct {
	entityName string
	entity     *metadata.Entity
	planner    *derived.Planner
	compiler   *compiler.Compiler
	exec       *executor.Executor
	cache      *executor.PlanCache
	saver      Saver
	custom     map[string]CustomQuery
	builtins   *derived.SignatureTable
}

// New returns a Repository for entityName, resolving relationships and
// built-in types through reg.
func New(reg metadata.Registry, entityName string, comp *compiler.Compiler, exec *executor.Executor, cache *executor.PlanCache, saver Saver) (*Repository, error) {
	entity, ok := reg.Entity(entityName)
	if !ok {
		return nil, memrerr.New(memrerr.InvalidQuery, entityName, "unknown entity in registry")
	}
	return &Repository{
		entityName: entityName,
		entity:     entity,
		planner:    derived.NewPlanner(reg),
		compiler:   comp,
		exec:       exec,
		cache:      cache,
		saver:      saver,
		custom:     make(map[string]CustomQuery),
		builtins:   derived.NewSignatureTable(),
	}, nil
}

// RegisterBuiltin declares an overload of a built-in operation with narrower
// parameter types than the seeded wildcard signatures; resolution between
// overlapping signatures follows the exact-beats-wildcard and specificity
// rules SignatureTable.Resolve applies.
func (r *Repository) RegisterBuiltin(name string, params []reflect.Type, build func() *query.LogicalQuery) {
	r.builtins.Register(name, params, build)
}

// RegisterQuery declares methodName as a custom @Query-annotated method,
// parsed as JPQL rather than derived from its name.
func (r *Repository) RegisterQuery(methodName string, q CustomQuery) {
	r.custom[methodName] = q
}

// Call resolves methodName against built-ins, declared custom queries, and
// finally derived-method parsing (in that precedence order, "Built-in
// method resolution" takes priority over name-derived parsing), then
// compiles (memoized) and executes against args. paramNames names args for
// named-parameter (:name) resolution in custom JPQL queries; it may be nil
// for derived methods, which only use positional parameter indices.
func (r *Repository) Call(methodName string, paramNames []string, args []any) (any, error) {
	if methodName == "save" || methodName == "saveAll" {
		return r.callSaver(methodName, args)
	}

	// Built-ins resolve by full signature key — name × argument types —
	// before any name parsing. The cache key carries the type
	// fingerprint since overloads share a name but not a plan.
	if lq, isBuiltin, err := r.builtins.Resolve(methodName, argTypes(args)); isBuiltin || err != nil {
		if err != nil {
			return nil, err
		}
		cacheKey := r.entityName + "#" + methodName + "(" + typeFingerprint(args) + ")"
		cq, err := r.cache.GetOrCompile(cacheKey, func() (*query.CompiledQuery, error) {
			return r.compiler.Compile(lq, r.entity)
		})
		if err != nil {
			return nil, err
		}
		return r.exec.Execute(r.entityName, cq, args)
	}

	cacheKey := r.entityName + "#" + methodName
	cq, err := r.cache.GetOrCompile(cacheKey, func() (*query.CompiledQuery, error) {
		lq, err := r.plan(methodName, paramNames)
		if err != nil {
			return nil, err
		}
		return r.compiler.Compile(lq, r.entity)
	})
	if err != nil {
		return nil, err
	}
	return r.exec.Execute(r.entityName, cq, args)
}

func argTypes(args []any) []reflect.Type {
	out := make([]reflect.Type, len(args))
	for i, a := range args {
		out[i] = reflect.TypeOf(a) // nil for an untyped nil argument
	}
	return out
}

func typeFingerprint(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == nil {
			parts[i] = "nil"
			continue
		}
		parts[i] = reflect.TypeOf(a).String()
	}
	return strings.Join(parts, ",")
}

func (r *Repository) callSaver(methodName string, args []any) (any, error) {
	if r.saver == nil {
		return nil, memrerr.New(memrerr.InvalidQuery, methodName, "entity has no Saver wired")
	}
	if methodName == "save" {
		if len(args) != 1 {
			return nil, memrerr.New(memrerr.Argument, methodName, "save expects exactly one argument")
		}
		return r.saver.Save(r.entityName, args[0])
	}
	values, ok := args[0].([]any)
	if len(args) != 1 || !ok {
		return nil, memrerr.New(memrerr.Argument, methodName, "saveAll expects a single []any argument")
	}
	return r.saver.SaveAll(r.entityName, values)
}

func (r *Repository) plan(methodName string, paramNames []string) (*query.LogicalQuery, error) {
	if cq, ok := r.custom[methodName]; ok {
		if cq.Native {
			return nil, memrerr.New(memrerr.InvalidQuery, methodName, "native queries not supported")
		}
		p := jpql.NewParser(methodName, paramNames, cq.Modifying)
		return p.Parse(cq.JPQL)
	}
	return r.planner.Plan(methodName, r.entity)
}

// InvalidateCache purges the plan cache, used after metadata or converter
// changes invalidate previously compiled shapes.
func (r *Repository) InvalidateCache() {
	r.cache.Purge()
}

func (r *Repository) String() string {
	return fmt.Sprintf("repository.Repository{entity=%s}", r.entityName)
}
