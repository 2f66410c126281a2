package quota

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jobdeck-ai/aigate/pkg/ledger"
	"github.com/jobdeck-ai/aigate/pkg/models"
)

func setup(t *testing.T) (*ledger.SQLiteLedger, context.Context) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "quota_test.db")
	lg, err := ledger.New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = lg.Close() })
	return lg, context.Background()
}

func record(t *testing.T, lg *ledger.SQLiteLedger, ctx context.Context, userID string, quality models.Quality, n int) {
	t.Helper()
	for j := 0; j < n; j++ {
		err := lg.Record(ctx, models.InvocationRecord{
			UserID: userID, TaskName: "rank-jobs", Tier: models.TierFree,
			Provider: "openai", Quality: quality, Success: true,
			CreatedAt: time.Now(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
}

func TestDailyCapDenied(t *testing.T) {
	lg, ctx := setup(t)
	record(t, lg, ctx, "user1", models.QualityStandard, 25)

	e := New(nil, lg)
	d := e.Check(ctx, "user1", models.TierFree, models.QualityStandard)
	if d.Allowed {
		t.Fatal("expected denial at the free daily cap")
	}
	if d.Code != models.DenyDailyCap {
		t.Errorf("expected daily_cap, got %q", d.Code)
	}
}

func TestUnderDailyCapAllowed(t *testing.T) {
	lg, ctx := setup(t)
	record(t, lg, ctx, "user1", models.QualityStandard, 24)

	e := New(nil, lg)
	d := e.Check(ctx, "user1", models.TierFree, models.QualityStandard)
	if !d.Allowed {
		t.Errorf("expected allow under the cap, got %q: %s", d.Code, d.Message)
	}
}

func TestHighCapDenied(t *testing.T) {
	lg, ctx := setup(t)
	record(t, lg, ctx, "user1", models.QualityHigh, 10)

	e := New(nil, lg)

	d := e.Check(ctx, "user1", models.TierPro, models.QualityHigh)
	if d.Allowed {
		t.Fatal("expected denial at the pro high-quality cap")
	}
	if d.Code != models.DenyHighCap {
		t.Errorf("expected high_cap, got %q", d.Code)
	}

	// Standard quality is still within the total cap.
	d = e.Check(ctx, "user1", models.TierPro, models.QualityStandard)
	if !d.Allowed {
		t.Errorf("expected standard-quality allow, got %q", d.Code)
	}
}

func TestFreeTierHasNoHighQuota(t *testing.T) {
	lg, ctx := setup(t)

	e := New(nil, lg)
	d := e.Check(ctx, "user1", models.TierFree, models.QualityHigh)
	if d.Allowed {
		t.Fatal("expected free tier high-quality denial")
	}
	if d.Code != models.DenyHighCap {
		t.Errorf("expected high_cap, got %q", d.Code)
	}
}

func TestAnonymousAlwaysAllowed(t *testing.T) {
	lg, ctx := setup(t)

	e := New(nil, lg)
	if d := e.Check(ctx, "", models.TierFree, models.QualityHigh); !d.Allowed {
		t.Errorf("expected anonymous allow, got %q", d.Code)
	}
}

func TestOverridesReplaceDefaults(t *testing.T) {
	lg, ctx := setup(t)
	record(t, lg, ctx, "user1", models.QualityStandard, 3)

	e := New(map[models.Tier]models.TierLimits{
		models.TierFree: {Total: 3, High: 0},
	}, lg)
	d := e.Check(ctx, "user1", models.TierFree, models.QualityStandard)
	if d.Allowed {
		t.Error("expected denial at the overridden cap")
	}
}

// failingLedger simulates a ledger outage.
type failingLedger struct{}

func (failingLedger) Record(context.Context, models.InvocationRecord) error { return nil }
func (failingLedger) CountSince(context.Context, string, time.Time) (int64, error) {
	return 0, errors.New("store unavailable")
}
func (failingLedger) CountHighSince(context.Context, string, time.Time) (int64, error) {
	return 0, errors.New("store unavailable")
}
func (failingLedger) Summary(context.Context, string) ([]models.UsageSummary, error) {
	return nil, errors.New("store unavailable")
}
func (failingLedger) Close() error { return nil }

func TestFailsOpenOnLedgerError(t *testing.T) {
	e := New(nil, failingLedger{})
	d := e.Check(context.Background(), "user1", models.TierFree, models.QualityHigh)
	if !d.Allowed {
		t.Errorf("expected fail-open allow during ledger outage, got %q", d.Code)
	}
}

func TestStatus(t *testing.T) {
	lg, ctx := setup(t)
	record(t, lg, ctx, "user1", models.QualityStandard, 2)
	record(t, lg, ctx, "user1", models.QualityHigh, 1)

	e := New(nil, lg)
	status, err := e.Status(ctx, "user1", models.TierPro)
	if err != nil {
		t.Fatal(err)
	}
	if status.UsedTotal != 3 || status.UsedHigh != 1 {
		t.Errorf("expected 3 total / 1 high, got %d / %d", status.UsedTotal, status.UsedHigh)
	}
	if status.Limits.Total != 200 || status.Limits.High != 10 {
		t.Errorf("unexpected pro limits: %+v", status.Limits)
	}
}

func TestEstimateCost(t *testing.T) {
	rates := CostTable{"openai": {Input: 1.0, Output: 2.0}}

	got := rates.Estimate("openai", 2000, 500)
	want := 2.0*1.0 + 0.5*2.0
	if got != want {
		t.Errorf("expected %f, got %f", want, got)
	}

	if rates.Estimate("unknown", 1000, 1000) != 0 {
		t.Error("expected zero cost for unknown provider")
	}
}
