// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sync"
	"time"

	"github.com/go-a2a/agentflow/agflowerr"
)

// Order selects ascending or descending traversal for [ConversationCache.List].
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Item is one entry stored in a conversation, identified by a
// caller-supplied id unique within that conversation.
type Item struct {
	ID      string
	Payload any
}

// entry is one conversation's item list plus its TTL timer.
type entry struct {
	mu    sync.Mutex
	items []Item
	index map[string]int

	timer *time.Timer
}

// ConversationCache is an in-memory, TTL-evicted store of conversation
// item lists. Each conversation's mutations are serialized by its own
// lock (spec.md §5 "cross-conversation operations are independent");
// the top-level map is guarded by a separate [sync.RWMutex], mirroring
// the teacher's two-level locking shape in
// session/in_memory_service.go.
type ConversationCache struct {
	mu            sync.RWMutex
	conversations map[string]*entry

	ttl      time.Duration
	afterTTL func(conversationID string) // invoked when a conversation's TTL elapses; overridable in tests
}

// New builds a ConversationCache whose entries expire ttl after their
// last mutation. A ttl of zero disables expiry.
func New(ttl time.Duration) *ConversationCache {
	return &ConversationCache{
		conversations: make(map[string]*entry),
		ttl:           ttl,
	}
}

// getOrCreate returns conversationID's entry, creating it if absent.
func (c *ConversationCache) getOrCreate(conversationID string) *entry {
	c.mu.RLock()
	e, ok := c.conversations[conversationID]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok = c.conversations[conversationID]; ok {
		return e
	}
	e = &entry{index: make(map[string]int)}
	c.conversations[conversationID] = e
	return e
}

// touch resets conversationID's TTL timer, evicting the whole entry
// when it fires (spec.md §4.7 "touch the cache entry's TTL on every
// mutating operation").
func (c *ConversationCache) touch(conversationID string, e *entry) {
	if c.ttl <= 0 {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(c.ttl, func() {
		c.mu.Lock()
		delete(c.conversations, conversationID)
		c.mu.Unlock()
		if c.afterTTL != nil {
			c.afterTTL(conversationID)
		}
	})
}

// Add appends item to conversationID's item list, preserving insertion
// order. Duplicate item ids within one conversation are rejected with a
// [agflowerr.ConfigurationError] (spec.md §4.7).
func (c *ConversationCache) Add(conversationID string, item Item) error {
	e := c.getOrCreate(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.index[item.ID]; exists {
		return agflowerr.NewConfigurationError("cache: conversation %q already has item %q", conversationID, item.ID)
	}
	e.index[item.ID] = len(e.items)
	e.items = append(e.items, item)
	c.touch(conversationID, e)
	return nil
}

// Update replaces the payload of an existing item in place, preserving
// its position in insertion order.
func (c *ConversationCache) Update(conversationID string, item Item) error {
	e := c.getOrCreate(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, exists := e.index[item.ID]
	if !exists {
		return agflowerr.NewConfigurationError("cache: conversation %q has no item %q", conversationID, item.ID)
	}
	e.items[idx] = item
	c.touch(conversationID, e)
	return nil
}

// Remove deletes item id from conversationID, compacting the index.
func (c *ConversationCache) Remove(conversationID, id string) error {
	e := c.getOrCreate(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()

	idx, exists := e.index[id]
	if !exists {
		return agflowerr.NewConfigurationError("cache: conversation %q has no item %q", conversationID, id)
	}
	e.items = append(e.items[:idx], e.items[idx+1:]...)
	delete(e.index, id)
	for id, i := range e.index {
		if i > idx {
			e.index[id] = i - 1
		}
	}
	c.touch(conversationID, e)
	return nil
}

// List returns a cursor-paginated window of conversationID's items
// (spec.md §4.7): at most limit items (clamped to [1,100]), traversed
// in order, starting after the item with id after (empty for the
// start), plus whether more items remain beyond the window.
func (c *ConversationCache) List(conversationID string, limit int, order Order, after string) (items []Item, hasMore bool, err error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	e := c.getOrCreate(conversationID)
	e.mu.Lock()
	defer e.mu.Unlock()

	ordered := make([]Item, len(e.items))
	copy(ordered, e.items)
	if order == OrderDesc {
		for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		}
	}

	start := 0
	if after != "" {
		found := false
		for i, it := range ordered {
			if it.ID == after {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, false, agflowerr.NewConfigurationError("cache: conversation %q has no item %q to page after", conversationID, after)
		}
	}

	remaining := ordered[start:]
	if len(remaining) > limit {
		return remaining[:limit], true, nil
	}
	return remaining, false, nil
}
