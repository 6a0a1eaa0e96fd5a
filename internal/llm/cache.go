package llm

import (
	"sort"
	"sync"
	"time"
)

const (
	// DefaultCacheTTL is how long an idle conversation survives.
	DefaultCacheTTL = 24 * time.Hour
	// DefaultCacheMax bounds the number of live conversations.
	DefaultCacheMax = 100
)

// ConversationCache stores chat histories between turns. Implementations
// must be safe for concurrent use.
type ConversationCache interface {
	// Get returns the conversation for id, creating an empty one if absent
	// or expired.
	Get(id string) *Conversation
	// Put stores the conversation, evicting expired and oldest entries to
	// stay within bounds.
	Put(id string, conv *Conversation)
	// Evict drops the conversation for id.
	Evict(id string)
	// Clear drops everything.
	Clear()
	// Len reports the number of live conversations.
	Len() int
}

// MemoryCache is the in-process ConversationCache. Expiry is checked on
// access and the oldest conversations are evicted when the bound is hit.
type MemoryCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	conve map[string]*Conversation
}

// NewMemoryCache creates a MemoryCache with the given TTL and size bound.
// Non-positive arguments fall back to the defaults.
func NewMemoryCache(ttl time.Duration, max int) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if max <= 0 {
		max = DefaultCacheMax
	}
	return &MemoryCache{
		ttl:   ttl,
		max:   max,
		conve: make(map[string]*Conversation),
	}
}

func (c *MemoryCache) Get(id string) *Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if conv, ok := c.conve[id]; ok && time.Since(conv.Touched) < c.ttl {
		return conv
	}
	delete(c.conve, id)
	return &Conversation{ID: id, Touched: time.Now().UTC()}
}

func (c *MemoryCache) Put(id string, conv *Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv.ID = id
	if conv.Touched.IsZero() {
		conv.Touched = time.Now().UTC()
	}
	c.conve[id] = conv
	c.sweepLocked()
}

func (c *MemoryCache) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conve, id)
}

func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conve = make(map[string]*Conversation)
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.conve)
}

// sweepLocked removes expired conversations, then evicts oldest-first until
// within the size bound. Caller holds the lock.
func (c *MemoryCache) sweepLocked() {
	now := time.Now()
	for id, conv := range c.conve {
		if now.Sub(conv.Touched) >= c.ttl {
			delete(c.conve, id)
		}
	}
	if len(c.conve) <= c.max {
		return
	}
	ids := make([]string, 0, len(c.conve))
	for id := range c.conve {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.conve[ids[i]].Touched.Before(c.conve[ids[j]].Touched)
	})
	for _, id := range ids[:len(ids)-c.max] {
		delete(c.conve, id)
	}
}
