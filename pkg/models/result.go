package models

// ErrorCode classifies why a task invocation failed.
type ErrorCode string

const (
	ErrJSONParseFailed    ErrorCode = "json_parse_failed"
	ErrJSONSchemaMismatch ErrorCode = "json_schema_mismatch"
	ErrProviderError      ErrorCode = "provider_error"
	ErrQuotaExceeded      ErrorCode = "quota_exceeded"
	ErrCircuitOpen        ErrorCode = "circuit_open"
	ErrUpstreamTimeout    ErrorCode = "upstream_timeout"
)

// TaskResult is the uniform envelope returned to every caller. Callers
// must check OK before reading Output.
type TaskResult struct {
	OK           bool      `json:"ok"`
	Output       any       `json:"output,omitempty"`
	ErrorCode    ErrorCode `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	TraceID      string    `json:"trace_id"`
	CacheHit     bool      `json:"cache_hit,omitempty"`
	Provider     string    `json:"provider,omitempty"`
}

// Ok builds a successful result.
func Ok(output any, traceID string) TaskResult {
	return TaskResult{OK: true, Output: output, TraceID: traceID}
}

// Err builds a failed result.
func Err(code ErrorCode, message, traceID string) TaskResult {
	return TaskResult{ErrorCode: code, ErrorMessage: message, TraceID: traceID}
}
