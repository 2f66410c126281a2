package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewFunc("openai", func(context.Context, string, any) (string, error) {
		return "ok", nil
	}))

	p, ok := reg.Get("openai")
	if !ok {
		t.Fatal("expected registered provider")
	}
	out, err := p.Invoke(context.Background(), "rank-jobs", nil)
	if err != nil || out != "ok" {
		t.Errorf("unexpected invoke result: %q, %v", out, err)
	}

	if _, ok := reg.Get("absent"); ok {
		t.Error("expected lookup miss for unregistered provider")
	}
}

func TestInvokeWithTimeoutPassesThrough(t *testing.T) {
	p := NewFunc("fast", func(context.Context, string, any) (string, error) {
		return "done", nil
	})
	out, err := InvokeWithTimeout(context.Background(), p, "t", nil, time.Second)
	if err != nil || out != "done" {
		t.Errorf("unexpected result: %q, %v", out, err)
	}
}

func TestInvokeWithTimeoutCutsOffHungProvider(t *testing.T) {
	// This provider ignores cancellation entirely.
	p := NewFunc("hung", func(context.Context, string, any) (string, error) {
		time.Sleep(500 * time.Millisecond)
		return "too late", nil
	})

	start := time.Now()
	_, err := InvokeWithTimeout(context.Background(), p, "t", nil, 20*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("timeout did not cut off the call, waited %v", elapsed)
	}
	if !IsTimeout(err) {
		t.Error("expected IsTimeout to report the deadline error")
	}
}

func TestInvokeWithoutTimeout(t *testing.T) {
	p := NewFunc("plain", func(context.Context, string, any) (string, error) {
		return "", errors.New("boom")
	})
	_, err := InvokeWithTimeout(context.Background(), p, "t", nil, 0)
	if err == nil || err.Error() != "boom" {
		t.Errorf("expected provider error to pass through, got %v", err)
	}
	if IsTimeout(err) {
		t.Error("plain error must not look like a timeout")
	}
}
