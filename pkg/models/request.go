package models

import "github.com/google/uuid"

// Tier is a caller's subscription level, governing quota limits.
type Tier string

const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierPremium Tier = "premium"
	TierCoach   Tier = "coach"
)

// Quality is the requested strength of AI processing.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityHigh     Quality = "high"
)

// InvocationRequest describes one logical task invocation. It is built
// once per call and not mutated afterwards.
type InvocationRequest struct {
	TaskName      string  `json:"task_name"`
	Input         any     `json:"input"`
	CallerID      string  `json:"caller_id,omitempty"`
	Tier          Tier    `json:"tier"`
	Quality       Quality `json:"quality"`
	SchemaVersion string  `json:"schema_version,omitempty"`
	TraceID       string  `json:"trace_id,omitempty"`
}

// NewTraceID returns a fresh trace identifier for request correlation.
// Callers that want correlated results must set it on the request;
// results carry an empty trace ID otherwise.
func NewTraceID() string {
	return uuid.NewString()
}
