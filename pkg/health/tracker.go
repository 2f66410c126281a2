// Package health tracks per-provider failure streaks and drives a
// fixed-threshold circuit breaker: a provider that fails three times in
// a row is skipped for two minutes rather than burning latency and cost
// on every request.
package health

import (
	"sync"
	"time"
)

const (
	// DefaultFailureThreshold opens the circuit at this failure streak.
	DefaultFailureThreshold = 3
	// DefaultCooldown is how long an open circuit skips a provider.
	DefaultCooldown = 2 * time.Minute
)

type providerState struct {
	consecutiveFailures int
	openUntil           time.Time // zero when closed
}

// Tracker holds in-memory breaker state per provider identifier.
type Tracker struct {
	mu        sync.Mutex
	states    map[string]*providerState
	threshold int
	cooldown  time.Duration
	now       func() time.Time
}

// New creates a Tracker with the default threshold and cooldown.
func New() *Tracker {
	return &Tracker{
		states:    make(map[string]*providerState),
		threshold: DefaultFailureThreshold,
		cooldown:  DefaultCooldown,
		now:       time.Now,
	}
}

// RecordResult updates a provider's state with a dispatch outcome. A
// success resets the streak and closes the circuit immediately. Each
// failure at or past the threshold re-extends the open window.
func (t *Tracker) RecordResult(providerID string, success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.states[providerID]
	if state == nil {
		state = &providerState{}
		t.states[providerID] = state
	}

	if success {
		state.consecutiveFailures = 0
		state.openUntil = time.Time{}
		return
	}

	state.consecutiveFailures++
	if state.consecutiveFailures >= t.threshold {
		state.openUntil = t.now().Add(t.cooldown)
	}
}

// IsCircuitOpen reports whether dispatch to a provider should be
// skipped. A circuit whose cooldown has elapsed is reset to closed on
// this read; there is no separately marked probe attempt.
func (t *Tracker) IsCircuitOpen(providerID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.states[providerID]
	if state == nil || state.openUntil.IsZero() {
		return false
	}
	if t.now().Before(state.openUntil) {
		return true
	}
	state.consecutiveFailures = 0
	state.openUntil = time.Time{}
	return false
}
