package models

import "time"

// CacheEntry stores a previously computed task result keyed by its
// content fingerprint. Entries are replaced wholesale, never mutated.
type CacheEntry struct {
	Key       string    `json:"key"`
	Value     any       `json:"value"`
	TaskName  string    `json:"task_name"`
	Tier      Tier      `json:"tier"`
	Quality   Quality   `json:"quality"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CacheStats reports cache performance counters.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
