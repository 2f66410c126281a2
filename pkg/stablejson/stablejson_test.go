package stablejson

import (
	"strings"
	"testing"
)

func TestSerializeKeyOrderInvariant(t *testing.T) {
	a := map[string]any{"a": 1, "b": 2, "c": map[string]any{"x": 1, "y": 2}}
	b := map[string]any{"c": map[string]any{"y": 2, "x": 1}, "b": 2, "a": 1}

	if Serialize(a) != Serialize(b) {
		t.Errorf("expected identical serialization, got %q vs %q", Serialize(a), Serialize(b))
	}
}

func TestSerializeSortsKeys(t *testing.T) {
	got := Serialize(map[string]any{"b": 2, "a": 1})
	want := `{"a":1,"b":2}`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSerializePreservesArrayOrder(t *testing.T) {
	got := Serialize([]any{3, 1, 2})
	want := `[3,1,2]`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSerializeCycleSafe(t *testing.T) {
	m := map[string]any{"name": "loop"}
	m["self"] = m

	got := Serialize(m)
	if got != `{"name":"loop","self":null}` {
		t.Errorf("unexpected cycle serialization: %q", got)
	}

	// Deterministic across calls.
	if Serialize(m) != got {
		t.Error("cycle serialization is not deterministic")
	}
}

func TestSerializeSliceCycle(t *testing.T) {
	s := make([]any, 1)
	s[0] = s

	if got := Serialize(s); got != `[null]` {
		t.Errorf("expected [null], got %q", got)
	}
}

func TestSerializeSharedSubtree(t *testing.T) {
	// The same map appearing twice as a sibling is sharing, not a cycle.
	shared := map[string]any{"v": 1}
	m := map[string]any{"a": shared, "b": shared}

	if got := Serialize(m); got != `{"a":{"v":1},"b":{"v":1}}` {
		t.Errorf("shared subtree mangled: %q", got)
	}
}

func TestBuildCacheKeyDeterministic(t *testing.T) {
	k1 := BuildCacheKey("rank-jobs", map[string]any{"a": 1, "b": 2}, "pro", "standard", "v1")
	k2 := BuildCacheKey("rank-jobs", map[string]any{"b": 2, "a": 1}, "pro", "standard", "v1")

	if k1 != k2 {
		t.Errorf("expected identical fingerprints, got %s vs %s", k1, k2)
	}
	if len(k1) != 64 || strings.ToLower(k1) != k1 {
		t.Errorf("expected 64-char lowercase hex fingerprint, got %q", k1)
	}
}

func TestBuildCacheKeyVariesByField(t *testing.T) {
	base := BuildCacheKey("rank-jobs", map[string]any{"a": 1}, "pro", "standard", "v1")

	variants := []string{
		BuildCacheKey("rank-jobs", map[string]any{"a": 2}, "pro", "standard", "v1"),
		BuildCacheKey("optimize-resume", map[string]any{"a": 1}, "pro", "standard", "v1"),
		BuildCacheKey("rank-jobs", map[string]any{"a": 1}, "free", "standard", "v1"),
		BuildCacheKey("rank-jobs", map[string]any{"a": 1}, "pro", "high", "v1"),
		BuildCacheKey("rank-jobs", map[string]any{"a": 1}, "pro", "standard", "v2"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base fingerprint", i)
		}
	}
}
