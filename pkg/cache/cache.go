// Package cache is a two-tier content-addressed result cache: a
// process-local map consulted first, and an optional durable SQLite
// tier shared across processes. Caching is an optimization, never a
// correctness requirement; durable-tier failures degrade to misses.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jobdeck-ai/aigate/pkg/models"
)

// Store is the two-tier cache. The zero value is not usable; use New.
type Store struct {
	mu    sync.RWMutex
	local map[string]localEntry

	durable *Durable // nil disables the durable tier

	hits   atomic.Int64
	misses atomic.Int64

	batchMu sync.Mutex
	batches map[string][]any
}

type localEntry struct {
	value     any
	expiresAt time.Time
}

// New creates a Store. durable may be nil for a process-local-only
// cache, as used in tests.
func New(durable *Durable) *Store {
	return &Store{
		local:   make(map[string]localEntry),
		durable: durable,
		batches: make(map[string][]any),
	}
}

// Get looks up a fingerprint, local tier first. A durable hit is
// served but not promoted into the local map; durable errors are
// swallowed and reported as misses.
func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	s.mu.RLock()
	entry, ok := s.local[key]
	s.mu.RUnlock()

	if ok {
		if time.Now().After(entry.expiresAt) {
			// Expired - clean up lazily.
			s.mu.Lock()
			delete(s.local, key)
			s.mu.Unlock()
		} else {
			s.hits.Add(1)
			return entry.value, true
		}
	}

	if s.durable != nil {
		payload, ok, err := s.durable.Get(ctx, key)
		if err != nil {
			log.Printf("cache: durable get failed, treating as miss: %v", err)
		} else if ok {
			var value any
			if err := json.Unmarshal(payload, &value); err == nil {
				s.hits.Add(1)
				return value, true
			}
			log.Printf("cache: invalid durable payload for %s, treating as miss", key)
		}
	}

	s.misses.Add(1)
	return nil, false
}

// Set stores a value under key for ttl. A non-positive ttl means the
// task is not cacheable and the call is a no-op. The local write is
// unconditional; the durable write is best effort.
func (s *Store) Set(ctx context.Context, key string, value any, taskName string, tier models.Tier, quality models.Quality, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	expiresAt := time.Now().Add(ttl)

	s.mu.Lock()
	s.local[key] = localEntry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()

	if s.durable == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal for durable write failed: %v", err)
		return
	}
	if err := s.durable.Put(ctx, key, payload, taskName, string(tier), string(quality), expiresAt); err != nil {
		log.Printf("cache: durable write failed: %v", err)
	}
}

// QueueBatch appends items to the FIFO staging queue for a task.
func (s *Store) QueueBatch(taskName string, items ...any) {
	s.batchMu.Lock()
	s.batches[taskName] = append(s.batches[taskName], items...)
	s.batchMu.Unlock()
}

// FlushBatch atomically drains and returns the queue for a task. No
// item is ever lost or duplicated between queue and flush.
func (s *Store) FlushBatch(taskName string) []any {
	s.batchMu.Lock()
	items := s.batches[taskName]
	delete(s.batches, taskName)
	s.batchMu.Unlock()
	return items
}

// Stats reports entry and hit/miss counters. Entry count covers the
// durable tier when present, otherwise the local map.
func (s *Store) Stats(ctx context.Context) models.CacheStats {
	stats := models.CacheStats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
	if s.durable != nil {
		if n, err := s.durable.Entries(ctx); err == nil {
			stats.Entries = n
		}
	} else {
		s.mu.RLock()
		stats.Entries = int64(len(s.local))
		s.mu.RUnlock()
	}
	return stats
}
