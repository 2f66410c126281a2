// Package stablejson renders values as JSON that is invariant to map
// key insertion order, for building content-addressed cache keys.
package stablejson

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// Serialize returns a deterministic JSON rendering of v. Object keys
// are written in lexicographic order; array order is preserved. Values
// participating in a reference cycle are replaced with null so that
// attacker-influenced input can never make key building recurse
// forever.
func Serialize(v any) string {
	var b strings.Builder
	write(&b, v, make(map[uintptr]struct{}))
	return b.String()
}

// BuildCacheKey derives the fingerprint for a task invocation. Two
// logically identical requests produce the same key regardless of how
// their input maps are ordered.
func BuildCacheKey(taskName string, input any, tier, quality, schemaVersion string) string {
	envelope := map[string]any{
		"task":           taskName,
		"input":          input,
		"tier":           tier,
		"quality":        quality,
		"schema_version": schemaVersion,
	}
	sum := sha256.Sum256([]byte(Serialize(envelope)))
	return hex.EncodeToString(sum[:])
}

func write(b *strings.Builder, v any, seen map[uintptr]struct{}) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case map[string]any:
		ptr := reflect.ValueOf(val).Pointer()
		if _, ok := seen[ptr]; ok {
			b.WriteString("null")
			return
		}
		seen[ptr] = struct{}{}
		writeMap(b, val, seen)
		delete(seen, ptr)
	case []any:
		ptr := reflect.ValueOf(val).Pointer()
		if _, ok := seen[ptr]; ok {
			b.WriteString("null")
			return
		}
		seen[ptr] = struct{}{}
		writeSlice(b, val, seen)
		delete(seen, ptr)
	default:
		// Primitives and typed values. encoding/json reports its own
		// error on exotic cycles; treat that the same as a detected one.
		data, err := json.Marshal(val)
		if err != nil {
			b.WriteString("null")
			return
		}
		b.Write(data)
	}
}

func writeMap(b *strings.Builder, m map[string]any, seen map[uintptr]struct{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		b.Write(keyJSON)
		b.WriteByte(':')
		write(b, m[k], seen)
	}
	b.WriteByte('}')
}

func writeSlice(b *strings.Builder, s []any, seen map[uintptr]struct{}) {
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		write(b, v, seen)
	}
	b.WriteByte(']')
}
