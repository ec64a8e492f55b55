package executor

import (
	"hash/fnv"

	"github.com/elastic/go-freelru"
	"golang.org/x/sync/singleflight"

	"github.com/memris/memris/query"
)

// PlanCache memoizes method-name -> CompiledQuery lowering so repeated
// calls to the same derived/JPQL method do not re-run the lexer/parser/
// compiler pipeline. Capacity-bounded via go-freelru; concurrent misses for
// the same key are coalesced with singleflight so a burst of first calls to
// a newly seen method compiles it exactly once.
type PlanCache struct {
	lru    *freelru.LRU[string, *query.CompiledQuery]
	flight singleflight.Group
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// NewPlanCache returns a cache holding up to capacity compiled plans.
func NewPlanCache(capacity uint32) *PlanCache {
	lru, _ := freelru.New[string, *query.CompiledQuery](capacity, fnv32)
	return &PlanCache{lru: lru}
}

// GetOrCompile returns the cached plan for key, compiling it via compile on a
// miss. Concurrent misses for the same key share one compile call.
func (c *PlanCache) GetOrCompile(key string, compile func() (*query.CompiledQuery, error)) (*query.CompiledQuery, error) {
	if cq, ok := c.lru.Get(key); ok {
		return cq, nil
	}
	v, err, _ := c.flight.Do(key, func() (any, error) {
		if cq, ok := c.lru.Get(key); ok {
			return cq, nil
		}
		cq, err := compile()
		if err != nil {
			return nil, err
		}
		c.lru.Add(key, cq)
		return cq, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*query.CompiledQuery), nil
}

// Purge drops every cached plan, used when entity metadata is reloaded.
func (c *PlanCache) Purge() {
	c.lru.Purge()
}
