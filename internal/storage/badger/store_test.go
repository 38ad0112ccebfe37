package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/kfujii/kabumori/internal/common"
	"github.com/kfujii/kabumori/internal/models"
)

// --- Test helpers ---

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	logger := common.NewLogger("error")
	store, err := NewStore(logger, filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *common.Logger {
	return common.NewLogger("error")
}

// --- Store tests ---

func TestStore_OpenClose(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(testLogger(), filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store.DB() == nil {
		t.Fatal("expected non-nil DB")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{}
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil DB should not error: %v", err)
	}
}

// --- Portfolio storage tests ---

func TestPortfolioStorage_CRUD(t *testing.T) {
	store := newTestStore(t)
	ps := NewPortfolioStorage(store, testLogger())
	ctx := context.Background()

	if _, err := ps.Get(ctx, "main"); err == nil {
		t.Fatal("expected error for non-existent portfolio")
	}

	portfolio := &models.Portfolio{
		Name: "main",
		Holdings: []models.Holding{
			{Ticker: "7203.T", Shares: 100, CostBasis: 2400},
		},
	}
	if err := ps.Save(ctx, portfolio); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if portfolio.ID != "main" {
		t.Errorf("expected ID defaulted to name, got %q", portfolio.ID)
	}

	got, err := ps.Get(ctx, "main")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Holdings) != 1 || got.Holdings[0].Ticker != "7203.T" {
		t.Errorf("unexpected holdings: %+v", got.Holdings)
	}

	names, err := ps.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 1 || names[0] != "main" {
		t.Errorf("unexpected names: %v", names)
	}

	if err := ps.Delete(ctx, "main"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := ps.Get(ctx, "main"); err == nil {
		t.Fatal("expected error after delete")
	}
}

// --- Watchlist storage tests ---

func TestWatchlistStorage_AllTickers(t *testing.T) {
	store := newTestStore(t)
	ws := NewWatchlistStorage(store, testLogger())
	ctx := context.Background()

	lists := []*models.Watchlist{
		{Name: "jp", Tickers: []string{"7203.T", "6758.T"}},
		{Name: "us", Tickers: []string{"AAPL", "7203.T"}},
	}
	for _, w := range lists {
		if err := ws.Save(ctx, w); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	tickers, err := ws.AllTickers(ctx)
	if err != nil {
		t.Fatalf("AllTickers failed: %v", err)
	}
	want := []string{"6758.T", "7203.T", "AAPL"}
	if len(tickers) != len(want) {
		t.Fatalf("expected %v, got %v", want, tickers)
	}
	for i, tk := range want {
		if tickers[i] != tk {
			t.Errorf("expected %v, got %v", want, tickers)
			break
		}
	}
}

// --- Snapshot upsert tests ---

func TestRiskMetricsStorage_UpsertReplacesSameDay(t *testing.T) {
	store := newTestStore(t)
	rs := NewRiskMetricsStorage(store, testLogger())
	ctx := context.Background()

	first := &models.RiskMetrics{
		PortfolioName:       "main",
		Date:                "2026-08-31",
		PortfolioVolatility: 0.20,
		Betas:               map[string]float64{"7203.T": 1.1},
	}
	if err := rs.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// rerun of the same day replaces, never duplicates
	second := &models.RiskMetrics{
		PortfolioName:       "main",
		Date:                "2026-08-31",
		PortfolioVolatility: 0.25,
		Betas:               map[string]float64{"7203.T": 1.2},
	}
	if err := rs.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert (rerun) failed: %v", err)
	}

	got, err := rs.Get(ctx, "main", "2026-08-31")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.PortfolioVolatility != 0.25 {
		t.Errorf("expected replaced volatility 0.25, got %v", got.PortfolioVolatility)
	}
	if got.Betas["7203.T"] != 1.2 {
		t.Errorf("expected replaced beta 1.2, got %v", got.Betas["7203.T"])
	}
}

func TestRiskMetricsStorage_Latest(t *testing.T) {
	store := newTestStore(t)
	rs := NewRiskMetricsStorage(store, testLogger())
	ctx := context.Background()

	for _, date := range []string{"2026-08-29", "2026-08-31", "2026-08-30"} {
		m := &models.RiskMetrics{PortfolioName: "main", Date: date}
		if err := rs.Upsert(ctx, m); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}
	other := &models.RiskMetrics{PortfolioName: "other", Date: "2026-09-01"}
	if err := rs.Upsert(ctx, other); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := rs.Latest(ctx, "main")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got.Date != "2026-08-31" {
		t.Errorf("expected latest date 2026-08-31, got %s", got.Date)
	}

	if _, err := rs.Latest(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown portfolio")
	}
}

func TestHealthScoreStorage_UpsertAndLatest(t *testing.T) {
	store := newTestStore(t)
	hs := NewHealthScoreStorage(store, testLogger())
	ctx := context.Background()

	score := &models.HealthScore{
		PortfolioName: "main",
		Date:          "2026-08-31",
		Total:         72.5,
		Tier:          models.TierGreen,
	}
	if err := hs.Upsert(ctx, score); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	score.Total = 65.0
	score.Tier = models.TierYellow
	if err := hs.Upsert(ctx, score); err != nil {
		t.Fatalf("Upsert (rerun) failed: %v", err)
	}

	got, err := hs.Latest(ctx, "main")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got.Total != 65.0 || got.Tier != models.TierYellow {
		t.Errorf("unexpected score: %+v", got)
	}
}

// --- Alert storage tests ---

func TestAlertStorage_AppendOnly(t *testing.T) {
	store := newTestStore(t)
	as := NewAlertStorage(store, testLogger())
	ctx := context.Background()

	batch := func(ids ...string) []*models.Alert {
		alerts := make([]*models.Alert, len(ids))
		for i, id := range ids {
			alerts[i] = &models.Alert{
				ID:            id,
				PortfolioName: "main",
				Rule:          models.RuleDailyDrop,
				Level:         2,
				Ticker:        "7203.T",
				Detail:        map[string]any{"daily_return": -0.06},
				CreatedAt:     time.Now().Add(time.Duration(i) * time.Millisecond),
			}
		}
		return alerts
	}

	if err := as.Append(ctx, batch("a1", "a2")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// a rerun appends again instead of replacing
	if err := as.Append(ctx, batch("a3", "a4")); err != nil {
		t.Fatalf("Append (rerun) failed: %v", err)
	}

	alerts, err := as.List(ctx, "main", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(alerts) != 4 {
		t.Fatalf("expected 4 alerts, got %d", len(alerts))
	}

	// detail maps survive the round-trip
	if v, ok := alerts[0].Detail["daily_return"].(float64); !ok || v != -0.06 {
		t.Errorf("unexpected detail: %+v", alerts[0].Detail)
	}

	limited, err := as.List(ctx, "main", 2)
	if err != nil {
		t.Fatalf("List (limit) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 alerts with limit, got %d", len(limited))
	}
}

func TestAlertStorage_MarkReadResolved(t *testing.T) {
	store := newTestStore(t)
	as := NewAlertStorage(store, testLogger())
	ctx := context.Background()

	alert := &models.Alert{ID: "a1", PortfolioName: "main", Rule: models.RuleHealthCaution, Level: 2}
	if err := as.Append(ctx, []*models.Alert{alert}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := as.MarkRead(ctx, "a1"); err != nil {
		t.Fatalf("MarkRead failed: %v", err)
	}
	if err := as.MarkResolved(ctx, "a1"); err != nil {
		t.Fatalf("MarkResolved failed: %v", err)
	}

	alerts, err := as.List(ctx, "main", 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(alerts) != 1 || !alerts[0].Read || !alerts[0].Resolved {
		t.Errorf("expected read+resolved alert, got %+v", alerts[0])
	}

	if err := as.MarkRead(ctx, "missing"); err == nil {
		t.Fatal("expected error for unknown alert")
	}
}

// --- Signal storage tests ---

func TestSignalStorage_InvalidateExpired(t *testing.T) {
	store := newTestStore(t)
	ss := NewSignalStorage(store, testLogger())
	ctx := context.Background()
	now := time.Now()

	signals := []*models.Signal{
		{ID: "s1", Ticker: "7203.T", Type: models.SignalGoldenCross, Priority: models.PriorityHigh, Valid: true, CreatedAt: now.Add(-8 * 24 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour)},
		{ID: "s2", Ticker: "7203.T", Type: models.SignalVolumeSpike, Priority: models.PriorityHigh, Valid: true, CreatedAt: now, ExpiresAt: now.Add(7 * 24 * time.Hour)},
		{ID: "s3", Ticker: "AAPL", Type: models.SignalRSIReversal, Priority: models.PriorityMedium, Valid: true, CreatedAt: now.Add(-9 * 24 * time.Hour), ExpiresAt: now.Add(-2 * 24 * time.Hour)},
	}
	if err := ss.Append(ctx, signals); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	count, err := ss.InvalidateExpired(ctx, now)
	if err != nil {
		t.Fatalf("InvalidateExpired failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 invalidated, got %d", count)
	}

	valid, err := ss.ListValid(ctx, "7203.T")
	if err != nil {
		t.Fatalf("ListValid failed: %v", err)
	}
	if len(valid) != 1 || valid[0].ID != "s2" {
		t.Errorf("expected only s2 valid, got %+v", valid)
	}

	// a second sweep finds nothing new
	count, err = ss.InvalidateExpired(ctx, now)
	if err != nil {
		t.Fatalf("InvalidateExpired (second) failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected 0 on second sweep, got %d", count)
	}
}

// --- KV storage tests ---

func TestKVStorage_GetSet(t *testing.T) {
	store := newTestStore(t)
	kv := NewKVStorage(store, testLogger())
	ctx := context.Background()

	if _, err := kv.Get(ctx, "pipeline_last_run"); err == nil {
		t.Fatal("expected error for missing key")
	}

	if err := kv.Set(ctx, "pipeline_last_run", "2026-08-31T06:00:00Z"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := kv.Get(ctx, "pipeline_last_run")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "2026-08-31T06:00:00Z" {
		t.Errorf("unexpected value: %s", got)
	}

	// overwrite
	if err := kv.Set(ctx, "pipeline_last_run", "2026-09-01T06:00:00Z"); err != nil {
		t.Fatalf("Set (overwrite) failed: %v", err)
	}
	got, _ = kv.Get(ctx, "pipeline_last_run")
	if got != "2026-09-01T06:00:00Z" {
		t.Errorf("unexpected value after overwrite: %s", got)
	}
}
