package store

import (
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"blogsmith/internal/llm"
	"blogsmith/internal/logger"
)

// ConversationStore is a database-backed llm.ConversationCache, so chat
// context survives process restarts. Semantics match the in-memory cache:
// idle conversations expire after the TTL and the oldest are evicted past
// the size bound.
type ConversationStore struct {
	mu    sync.Mutex
	store *Store
	ttl   time.Duration
	max   int
}

// Conversations wraps the store as a ConversationCache.
func (s *Store) Conversations(ttl time.Duration, max int) *ConversationStore {
	if ttl <= 0 {
		ttl = llm.DefaultCacheTTL
	}
	if max <= 0 {
		max = llm.DefaultCacheMax
	}
	return &ConversationStore{store: s, ttl: ttl, max: max}
}

func (c *ConversationStore) Get(id string) *llm.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()

	row := c.store.db.QueryRow(`SELECT messages, touched FROM conversations WHERE id = ?`, id)
	var raw string
	var touched time.Time
	err := row.Scan(&raw, &touched)
	if err == nil && time.Since(touched) < c.ttl {
		var messages []llm.Message
		if jsonErr := json.Unmarshal([]byte(raw), &messages); jsonErr == nil {
			return &llm.Conversation{ID: id, Messages: messages, Touched: touched}
		}
	}
	if err != nil && err != sql.ErrNoRows {
		logger.Warn("conversation load failed", "conversation_id", id, "error", err.Error())
	}
	_, _ = c.store.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	return &llm.Conversation{ID: id, Touched: time.Now().UTC()}
}

func (c *ConversationStore) Put(id string, conv *llm.Conversation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if conv.Touched.IsZero() {
		conv.Touched = time.Now().UTC()
	}
	raw, err := json.Marshal(conv.Messages)
	if err != nil {
		logger.Error("conversation marshal failed", err, "conversation_id", id)
		return
	}
	_, err = c.store.db.Exec(`
	INSERT OR REPLACE INTO conversations (id, messages, touched) VALUES (?, ?, ?)`,
		id, string(raw), conv.Touched.UTC())
	if err != nil {
		logger.Error("conversation save failed", err, "conversation_id", id)
		return
	}
	c.sweepLocked()
}

func (c *ConversationStore) Evict(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.store.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
}

func (c *ConversationStore) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.store.db.Exec(`DELETE FROM conversations`)
}

func (c *ConversationStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	_ = c.store.db.QueryRow(`SELECT COUNT(1) FROM conversations`).Scan(&n)
	return n
}

func (c *ConversationStore) sweepLocked() {
	cutoff := time.Now().UTC().Add(-c.ttl)
	_, _ = c.store.db.Exec(`DELETE FROM conversations WHERE touched < ?`, cutoff)

	rows, err := c.store.db.Query(`SELECT id, touched FROM conversations`)
	if err != nil {
		return
	}
	type entry struct {
		id      string
		touched time.Time
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.touched); err != nil {
			rows.Close()
			return
		}
		entries = append(entries, e)
	}
	rows.Close()
	if len(entries) <= c.max {
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].touched.Before(entries[j].touched)
	})
	for _, e := range entries[:len(entries)-c.max] {
		_, _ = c.store.db.Exec(`DELETE FROM conversations WHERE id = ?`, e.id)
	}
}
