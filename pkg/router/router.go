// Package router orchestrates one task invocation end to end:
// admission, cache lookup, provider selection, dispatch with failover,
// response normalization, and telemetry. It is the error boundary for
// the whole subsystem; every exit is a TaskResult value, never a panic
// or an error across the public boundary.
package router

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jobdeck-ai/aigate/pkg/cache"
	"github.com/jobdeck-ai/aigate/pkg/config"
	"github.com/jobdeck-ai/aigate/pkg/health"
	"github.com/jobdeck-ai/aigate/pkg/ledger"
	"github.com/jobdeck-ai/aigate/pkg/models"
	"github.com/jobdeck-ai/aigate/pkg/normalize"
	"github.com/jobdeck-ai/aigate/pkg/provider"
	"github.com/jobdeck-ai/aigate/pkg/quota"
	"github.com/jobdeck-ai/aigate/pkg/stablejson"
)

// Router routes task invocations to providers under quota, cache, and
// circuit-breaker governance.
type Router struct {
	cfg       *config.Config
	cache     *cache.Store
	ledger    ledger.Ledger
	enforcer  *quota.Enforcer
	health    *health.Tracker
	providers *provider.Registry
	rates     quota.CostTable
	group     singleflight.Group
}

// New creates a Router wired with all dependencies. A nil rate table
// falls back to the built-in one.
func New(cfg *config.Config, st *cache.Store, lg ledger.Ledger, e *quota.Enforcer, h *health.Tracker, reg *provider.Registry) *Router {
	rates := cfg.Rates
	if rates == nil {
		rates = quota.DefaultCostTable()
	}
	return &Router{
		cfg:       cfg,
		cache:     st,
		ledger:    lg,
		enforcer:  e,
		health:    h,
		providers: reg,
		rates:     rates,
	}
}

// RouteTask runs one invocation through the full state machine and
// returns its uniform result envelope.
func (r *Router) RouteTask(ctx context.Context, req models.InvocationRequest) models.TaskResult {
	// Admission. A denial never reaches a provider and writes no
	// ledger record.
	decision := r.enforcer.Check(ctx, req.CallerID, req.Tier, req.Quality)
	if !decision.Allowed {
		return models.Err(models.ErrQuotaExceeded, decision.Message, req.TraceID)
	}

	key := stablejson.BuildCacheKey(req.TaskName, req.Input,
		string(req.Tier), string(req.Quality), req.SchemaVersion)

	if value, ok := r.cache.Get(ctx, key); ok {
		res := models.Ok(value, req.TraceID)
		res.CacheHit = true
		return res
	}

	// Collapse concurrent identical misses into one dispatch. Followers
	// share the winner's outcome but keep their own trace ID.
	shared, _, _ := r.group.Do(key, func() (any, error) {
		return r.dispatch(ctx, req, key), nil
	})
	res := shared.(models.TaskResult)
	res.TraceID = req.TraceID
	return res
}

// dispatch performs steps 3-6 of the invocation state machine for one
// cache miss: provider selection, failover, normalization, and side
// effects.
func (r *Router) dispatch(ctx context.Context, req models.InvocationRequest, key string) models.TaskResult {
	task, ok := r.cfg.Task(req.TaskName)
	if !ok || len(task.Providers) == 0 {
		return models.Err(models.ErrProviderError,
			fmt.Sprintf("no providers configured for task %q", req.TaskName), req.TraceID)
	}

	var candidates []string
	for _, name := range task.Providers {
		if r.health.IsCircuitOpen(name) {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return models.Err(models.ErrCircuitOpen,
			"all providers for this task are backed off", req.TraceID)
	}

	inputJSON := stablejson.Serialize(req.Input)
	start := time.Now()

	var winner string
	var rawOutput string
	var lastErr error
	for _, name := range candidates {
		p, ok := r.providers.Get(name)
		if !ok {
			continue
		}
		raw, err := provider.InvokeWithTimeout(ctx, p, req.TaskName, req.Input, task.Timeout.Std())
		if err != nil {
			r.health.RecordResult(name, false)
			log.Printf("router: provider %s failed for %s: %v", name, req.TaskName, err)
			lastErr = err
			continue
		}
		r.health.RecordResult(name, true)
		winner = name
		rawOutput = raw
		break
	}

	latency := time.Since(start).Milliseconds()

	if winner == "" {
		code := models.ErrProviderError
		message := "all upstream providers failed"
		if provider.IsTimeout(lastErr) {
			code = models.ErrUpstreamTimeout
			message = "upstream provider timed out"
		}
		r.logInvocation(ctx, req, models.InvocationRecord{
			Provider:  candidates[len(candidates)-1],
			InputSize: int64(len(inputJSON)),
			LatencyMs: latency,
			Success:   false,
			ErrorCode: string(code),
		})
		return models.Err(code, message, req.TraceID)
	}

	// A malformed payload is a content problem, not an availability
	// problem: normalization failures do not fail over.
	res := normalize.Normalize(rawOutput, task.RequiredKeys, req.TraceID)
	res.Provider = winner

	inputSize := int64(len(inputJSON))
	outputSize := int64(len(rawOutput))
	rec := models.InvocationRecord{
		Provider:     winner,
		InputSize:    inputSize,
		OutputSize:   outputSize,
		LatencyMs:    latency,
		CostEstimate: r.rates.Estimate(winner, estimateTokens(inputSize), estimateTokens(outputSize)),
		Success:      res.OK,
		ErrorCode:    string(res.ErrorCode),
		ErrorMessage: res.ErrorMessage,
	}
	r.logInvocation(ctx, req, rec)

	if res.OK {
		r.cache.Set(ctx, key, res.Output, req.TaskName, req.Tier, req.Quality, task.CacheTTL.Std())
	}

	return res
}

// logInvocation appends one record, filling the request-derived fields.
// Telemetry must never break the request path, so failures are logged
// and absorbed.
func (r *Router) logInvocation(ctx context.Context, req models.InvocationRequest, rec models.InvocationRecord) {
	rec.UserID = req.CallerID
	rec.TaskName = req.TaskName
	rec.Tier = req.Tier
	rec.Quality = req.Quality
	rec.TraceID = req.TraceID
	rec.CreatedAt = time.Now().UTC()
	if err := r.ledger.Record(ctx, rec); err != nil {
		log.Printf("router: ledger write failed: %v", err)
	}
}

// estimateTokens approximates a token count from a byte size. Four
// bytes per token is close enough for a best-effort cost estimate.
func estimateTokens(size int64) int64 {
	return size / 4
}
