// Package normalize turns raw model output into a uniform result:
// strip markdown fences, parse as JSON, and check the parsed object
// carries every required key.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jobdeck-ai/aigate/pkg/models"
)

// StripFences removes a leading triple-backtick fence (with or without
// a language tag) and the matching trailing fence. Unfenced text is
// returned trimmed and otherwise unchanged.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		// Single-line fence like "```json```".
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimRight(text, " \t\r\n")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// ParseJSON strips fences and parses the remainder. Parse failures are
// returned as errors, never panics.
func ParseJSON(raw string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(StripFences(raw)), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// ValidateShape checks that value is a non-null object containing every
// required key. Values under the keys are not type-checked; presence is
// enough, by way of resilience against verbose upstream output.
func ValidateShape(value any, requiredKeys []string) error {
	if len(requiredKeys) == 0 {
		return nil
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected a JSON object, got %T", value)
	}
	for _, key := range requiredKeys {
		if _, ok := obj[key]; !ok {
			return fmt.Errorf("missing required field %q", key)
		}
	}
	return nil
}

// Normalize composes parse and shape validation into a TaskResult. The
// trace ID is whatever the caller threads through; it stays empty when
// no correlation ID was supplied.
func Normalize(raw string, requiredKeys []string, traceID string) models.TaskResult {
	value, err := ParseJSON(raw)
	if err != nil {
		return models.Err(models.ErrJSONParseFailed, err.Error(), traceID)
	}
	if err := ValidateShape(value, requiredKeys); err != nil {
		return models.Err(models.ErrJSONSchemaMismatch, err.Error(), traceID)
	}
	return models.Ok(value, traceID)
}
