package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/bazaarly/backbone/pkg/domain/ratelimit"
)

const counterShards = 32

type counterShard struct {
	mu      sync.Mutex
	entries map[string]*ratelimit.Entry
}

// MemoryCounterCache is a process-local counter store. Counters are lost on
// restart. Entries expire by comparing against the caller's clock on each
// call; there is no background janitor.
type MemoryCounterCache struct {
	shards [counterShards]*counterShard
}

func NewMemoryCounterCache() *MemoryCounterCache {
	c := &MemoryCounterCache{}
	for i := range c.shards {
		c.shards[i] = &counterShard{entries: make(map[string]*ratelimit.Entry)}
	}
	return c
}

func (c *MemoryCounterCache) shard(key string) *counterShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return c.shards[h.Sum32()%counterShards]
}

func (c *MemoryCounterCache) Hit(
	_ context.Context,
	key string,
	limit int,
	window time.Duration,
	now time.Time,
) (ratelimit.HitResult, error) {
	s := c.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !entry.Live(now) {
		entry = &ratelimit.Entry{
			Key:         key,
			WindowStart: now,
			ExpiresAt:   now.Add(window),
			Count:       1,
			LastRequest: now,
		}
		s.entries[key] = entry
		return ratelimit.HitResult{Entry: *entry, Admitted: true}, nil
	}
	if entry.Count >= limit {
		return ratelimit.HitResult{Entry: *entry, Admitted: false}, nil
	}
	entry.Count++
	entry.LastRequest = now
	return ratelimit.HitResult{Entry: *entry, Admitted: true}, nil
}

func (c *MemoryCounterCache) Sweep(_ context.Context, now time.Time) (int64, error) {
	var deleted int64
	for _, s := range c.shards {
		s.mu.Lock()
		for key, entry := range s.entries {
			if !entry.Live(now) {
				delete(s.entries, key)
				deleted++
			}
		}
		s.mu.Unlock()
	}
	return deleted, nil
}

// Len is the number of stored entries, live or not yet swept.
func (c *MemoryCounterCache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}
