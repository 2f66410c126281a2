package models

// TierLimits caps invocations for one tier over a calendar day. Total
// covers every invocation; High covers only high-quality ones.
type TierLimits struct {
	Total int64 `json:"total" yaml:"total"`
	High  int64 `json:"high" yaml:"high"`
}

// Quota denial codes.
const (
	DenyDailyCap = "daily_cap"
	DenyHighCap  = "high_cap"
)

// QuotaDecision is the outcome of an admission check. Code is one of
// the deny constants when Allowed is false.
type QuotaDecision struct {
	Allowed bool   `json:"allowed"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// QuotaStatus shows a user's usage against their tier limits today.
type QuotaStatus struct {
	Tier      Tier       `json:"tier"`
	Limits    TierLimits `json:"limits"`
	UsedTotal int64      `json:"used_total"`
	UsedHigh  int64      `json:"used_high"`
}
