package index

import (
	"sync"

	"github.com/memris/memris/rowid"
)

// Prefix is the string-prefix index: every prefix of an inserted string
// contributes one entry, so EQ and StartingWith both
// resolve through the same map; length-k strings contribute k entries.
type Prefix struct {
	mu      sync.RWMutex
	buckets map[string]*rowid.AutoSet
}

// NewPrefix returns an empty prefix index.
func NewPrefix() *Prefix {
	return &Prefix{buckets: make(map[string]*rowid.AutoSet)}
}

func (p *Prefix) bucket(key string, create bool) (*rowid.AutoSet, bool) {
	p.mu.RLock()
	set, ok := p.buckets[key]
	p.mu.RUnlock()
	if ok || !create {
		return set, ok
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if set, ok = p.buckets[key]; ok {
		return set, true
	}
	set = rowid.NewAutoSet(rowid.DefaultUpgradeThreshold)
	p.buckets[key] = set
	return set, true
}

// Add inserts row under every prefix of value, including the full string
// (so an EQ probe also hits the prefix map).
func (p *Prefix) Add(value string, row rowid.RowId) {
	for i := 1; i <= len(value); i++ {
		set, _ := p.bucket(value[:i], true)
		set.Add(row)
	}
}

// Remove removes row from every prefix bucket of value.
func (p *Prefix) Remove(value string, row rowid.RowId) {
	for i := 1; i <= len(value); i++ {
		if set, ok := p.bucket(value[:i], false); ok {
			set.Remove(row)
		}
	}
}

// RemoveAll drops every row under value's prefixes. Used when the caller
// knows the original string (the only way to enumerate every contributed
// prefix key).
func (p *Prefix) RemoveAll(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := 1; i <= len(value); i++ {
		delete(p.buckets, value[:i])
	}
}

// Clear empties the index.
func (p *Prefix) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buckets = make(map[string]*rowid.AutoSet)
}

// StartsWith returns the RowIdSet of every row whose value begins with
// prefix; EQ also uses this since the full string is itself a contributed
// prefix key.
func (p *Prefix) StartsWith(prefix string) (rowid.Set, bool) {
	set, ok := p.bucket(prefix, false)
	if !ok {
		return nil, false
	}
	return set, true
}
