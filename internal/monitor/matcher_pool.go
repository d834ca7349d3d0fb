package monitor

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// MatcherPool hands out reusable Matcher handles keyed by caller identity
// (e.g. a connection or goroutine-local id), bounding how many ephemeral
// indexes accumulate under sustained concurrent load. This is the Go
// analog of the "per-thread matcher cache" idiom spec.md §5 describes: a
// matcher's ephemeral index is expensive enough to build that one per
// inbound request would be wasteful, but matchers cannot be shared
// concurrently, so each caller gets its own cached instance.
type MatcherPool struct {
	monitor *Monitor
	cache   *lru.Cache[string, *Matcher]
}

// NewMatcherPool builds a pool bounded to size entries; size must be > 0.
func NewMatcherPool(m *Monitor, size int) (*MatcherPool, error) {
	cache, err := lru.New[string, *Matcher](size)
	if err != nil {
		return nil, err
	}
	return &MatcherPool{monitor: m, cache: cache}, nil
}

// Get returns the Matcher cached for key, creating one if absent or if the
// key was evicted.
func (p *MatcherPool) Get(key string) (*Matcher, error) {
	if mt, ok := p.cache.Get(key); ok {
		return mt, nil
	}

	mt, err := newMatcher(p.monitor)
	if err != nil {
		return nil, err
	}
	p.cache.Add(key, mt)
	return mt, nil
}

// Len reports how many matchers are currently cached.
func (p *MatcherPool) Len() int {
	return p.cache.Len()
}
