package quota

// Rate defines per-1K token costs for one provider.
type Rate struct {
	Input  float64 `json:"input_per_1k" yaml:"input_per_1k"`
	Output float64 `json:"output_per_1k" yaml:"output_per_1k"`
}

// CostTable maps provider identifiers to token rates.
type CostTable map[string]Rate

// DefaultCostTable returns the built-in provider rate table.
func DefaultCostTable() CostTable {
	return CostTable{
		"openai":    {Input: 0.0025, Output: 0.01},
		"anthropic": {Input: 0.003, Output: 0.015},
		"groq":      {Input: 0.00005, Output: 0.00008},
	}
}

// Estimate computes a best-effort cost for an invocation. Unknown
// providers cost 0; this is not a billing source of truth.
func (t CostTable) Estimate(provider string, inputTokens, outputTokens int64) float64 {
	rate, ok := t[provider]
	if !ok {
		return 0
	}
	return float64(inputTokens)/1000*rate.Input + float64(outputTokens)/1000*rate.Output
}
