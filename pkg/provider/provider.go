// Package provider abstracts the interchangeable upstream model
// backends. A provider is an opaque asynchronous function from a task
// name and input to raw text; how it authenticates or which model it
// wraps is not this layer's business.
package provider

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Provider is one upstream backend capable of serving tasks.
type Provider interface {
	Name() string
	Invoke(ctx context.Context, taskName string, input any) (string, error)
}

// Func adapts a plain function to the Provider interface.
type Func struct {
	name string
	fn   func(ctx context.Context, taskName string, input any) (string, error)
}

// NewFunc wraps fn as a named Provider.
func NewFunc(name string, fn func(ctx context.Context, taskName string, input any) (string, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the provider identifier.
func (f *Func) Name() string { return f.name }

// Invoke calls the wrapped function.
func (f *Func) Invoke(ctx context.Context, taskName string, input any) (string, error) {
	return f.fn(ctx, taskName, input)
}

// Registry holds providers by name.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	r.providers[p.Name()] = p
	r.mu.Unlock()
}

// Get looks up a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	return p, ok
}

// InvokeWithTimeout bounds a provider call. The call runs in its own
// goroutine so a provider that ignores cancellation still cannot block
// the failover loop; its eventual result is discarded.
func InvokeWithTimeout(ctx context.Context, p Provider, taskName string, input any, timeout time.Duration) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := p.Invoke(ctx, taskName, input)
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// IsTimeout reports whether err represents a timed-out provider call.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
