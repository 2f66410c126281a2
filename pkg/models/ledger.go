package models

import "time"

// InvocationRecord is one appended row of usage telemetry. Records are
// never updated or deleted; quotas are computed by counting them over a
// time window.
type InvocationRecord struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	TaskName     string    `json:"task_name"`
	Tier         Tier      `json:"tier"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model,omitempty"`
	Quality      Quality   `json:"quality"`
	Reason       string    `json:"reason,omitempty"`
	InputSize    int64     `json:"input_size,omitempty"`
	OutputSize   int64     `json:"output_size,omitempty"`
	LatencyMs    int64     `json:"latency_ms,omitempty"`
	CostEstimate float64   `json:"cost_estimate,omitempty"`
	CacheHit     bool      `json:"cache_hit,omitempty"`
	Success      bool      `json:"success"`
	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	TraceID      string    `json:"trace_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UsageSummary aggregates invocation records per task and provider.
type UsageSummary struct {
	TaskName     string  `json:"task_name"`
	Provider     string  `json:"provider"`
	RequestCount int64   `json:"request_count"`
	SuccessCount int64   `json:"success_count"`
	TotalCost    float64 `json:"total_cost"`
}
