// Package quota enforces per-tier daily invocation caps computed from
// the ledger at read time. Enforcement fails open: a ledger outage must
// never block a paying user, so read errors allow the request.
package quota

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jobdeck-ai/aigate/pkg/ledger"
	"github.com/jobdeck-ai/aigate/pkg/models"
)

// DefaultLimits returns the built-in per-tier caps.
func DefaultLimits() map[models.Tier]models.TierLimits {
	return map[models.Tier]models.TierLimits{
		models.TierFree:    {Total: 25, High: 0},
		models.TierPro:     {Total: 200, High: 10},
		models.TierPremium: {Total: 1000, High: 1000},
		models.TierCoach:   {Total: 1200, High: 1200},
	}
}

// Enforcer checks invocation counts against tier limits.
type Enforcer struct {
	limits map[models.Tier]models.TierLimits
	ledger ledger.Ledger
	now    func() time.Time
}

// New creates an Enforcer. Entries in overrides replace the built-in
// limits for their tier.
func New(overrides map[models.Tier]models.TierLimits, lg ledger.Ledger) *Enforcer {
	limits := DefaultLimits()
	for tier, l := range overrides {
		limits[tier] = l
	}
	return &Enforcer{limits: limits, ledger: lg, now: time.Now}
}

// Check decides whether a user may run one more invocation today.
// Requests without a user ID are always allowed; gating anonymous
// traffic is the caller's concern.
func (e *Enforcer) Check(ctx context.Context, userID string, tier models.Tier, quality models.Quality) models.QuotaDecision {
	if userID == "" {
		return models.QuotaDecision{Allowed: true}
	}

	limits, ok := e.limits[tier]
	if !ok {
		limits = e.limits[models.TierFree]
	}

	since := startOfDay(e.now())

	total, err := e.ledger.CountSince(ctx, userID, since)
	if err != nil {
		log.Printf("quota: count failed, failing open for %s: %v", userID, err)
		return models.QuotaDecision{Allowed: true}
	}
	if total >= limits.Total {
		return models.QuotaDecision{
			Allowed: false,
			Code:    models.DenyDailyCap,
			Message: fmt.Sprintf("daily limit of %d reached for tier %s", limits.Total, tier),
		}
	}

	if quality == models.QualityHigh {
		high, err := e.ledger.CountHighSince(ctx, userID, since)
		if err != nil {
			log.Printf("quota: high count failed, failing open for %s: %v", userID, err)
			return models.QuotaDecision{Allowed: true}
		}
		if high >= limits.High {
			return models.QuotaDecision{
				Allowed: false,
				Code:    models.DenyHighCap,
				Message: fmt.Sprintf("daily high-quality limit of %d reached for tier %s", limits.High, tier),
			}
		}
	}

	return models.QuotaDecision{Allowed: true}
}

// Status returns a user's usage against their tier limits for the
// current day. Unlike Check, ledger errors surface to the caller.
func (e *Enforcer) Status(ctx context.Context, userID string, tier models.Tier) (models.QuotaStatus, error) {
	limits, ok := e.limits[tier]
	if !ok {
		limits = e.limits[models.TierFree]
	}
	since := startOfDay(e.now())

	total, err := e.ledger.CountSince(ctx, userID, since)
	if err != nil {
		return models.QuotaStatus{}, fmt.Errorf("quota status: %w", err)
	}
	high, err := e.ledger.CountHighSince(ctx, userID, since)
	if err != nil {
		return models.QuotaStatus{}, fmt.Errorf("quota status: %w", err)
	}
	return models.QuotaStatus{
		Tier:      tier,
		Limits:    limits,
		UsedTotal: total,
		UsedHigh:  high,
	}, nil
}

// startOfDay returns midnight of the current calendar day on the local
// server clock. Quota windows follow the server day, not UTC.
func startOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
