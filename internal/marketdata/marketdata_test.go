package marketdata

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTableUpsertCreatesAndReuses(t *testing.T) {
	tbl := NewTable(10)
	row1, err := tbl.Upsert("QQQ250801C00560000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row2, err := tbl.Upsert("QQQ250801C00560000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row1 != row2 {
		t.Error("expected upsert to return the same row for an existing symbol")
	}
	if tbl.Len() != 1 {
		t.Errorf("len = %d, want 1", tbl.Len())
	}
}

func TestTableUpsertRejectsMalformedSymbol(t *testing.T) {
	tbl := NewTable(10)
	if _, err := tbl.Upsert("BAD"); !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestTableCapacityExceeded(t *testing.T) {
	tbl := NewTable(1)
	if _, err := tbl.Upsert("QQQ250801C00560000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tbl.Upsert("SPY250801C00450000"); !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("expected ErrCapacityExceeded, got %v", err)
	}
	if tbl.CapacityExceededCount() != 1 {
		t.Errorf("capacityExceeded = %d, want 1", tbl.CapacityExceededCount())
	}
}

func TestComputeAnalyticsSkipsWithoutPrice(t *testing.T) {
	tbl := NewTable(10)
	row, _ := tbl.Upsert("QQQ250801C00560000")
	cache := NewPriceCache()
	if err := ComputeAnalytics(row, cache, 0.05, true, time.Now()); !errors.Is(err, ErrDataGap) {
		t.Errorf("expected ErrDataGap without a quote/trade, got %v", err)
	}
}

func TestComputeAnalyticsSkipsWithoutUnderlyingPrice(t *testing.T) {
	tbl := NewTable(10)
	row, _ := tbl.Upsert("QQQ250801C00560000")
	row.SetTrade(Trade{Price: decimal.NewFromFloat(12.5), Size: 1, Time: time.Now()})
	cache := NewPriceCache()
	if err := ComputeAnalytics(row, cache, 0.05, true, time.Now()); !errors.Is(err, ErrDataGap) {
		t.Errorf("expected ErrDataGap without an underlying price, got %v", err)
	}
}

func TestComputeAnalyticsThrottles(t *testing.T) {
	tbl := NewTable(10)
	row, _ := tbl.Upsert("QQQ250801C00560000")
	row.SetTrade(Trade{Price: decimal.NewFromFloat(12.5), Size: 1, Time: time.Now()})
	cache := NewPriceCache()
	cache.Set("QQQ", 560.0)

	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	if err := ComputeAnalytics(row, cache, 0.05, true, now); err != nil {
		t.Fatalf("unexpected error on first compute: %v", err)
	}
	if !row.Snapshot().AnalyticsValid {
		t.Fatal("expected analytics to be populated")
	}

	// Within the throttle window: should be a silent no-op, not an error,
	// and must not disturb the already-computed analytics.
	if err := ComputeAnalytics(row, cache, 0.05, true, now.Add(50*time.Millisecond)); err != nil {
		t.Errorf("expected throttled skip to return nil, got %v", err)
	}
	if !row.Snapshot().AnalyticsValid {
		t.Error("expected throttled skip to leave analytics valid")
	}

	if err := ComputeAnalytics(row, cache, 0.05, true, now.Add(200*time.Millisecond)); err != nil {
		t.Errorf("unexpected error past throttle window: %v", err)
	}
}

func TestReferencePriceFallsBackToQuoteMidpoint(t *testing.T) {
	tbl := NewTable(10)
	row, _ := tbl.Upsert("QQQ250801C00560000")
	row.SetQuote(Quote{BidPrice: decimal.NewFromFloat(10), AskPrice: decimal.NewFromFloat(12)})
	price, ok := row.ReferencePrice()
	if !ok || price != 11 {
		t.Errorf("reference price = %v, %v; want 11, true", price, ok)
	}
}

func TestUnderlyingsDeduplicates(t *testing.T) {
	tbl := NewTable(10)
	tbl.Upsert("QQQ250801C00560000")
	tbl.Upsert("QQQ250801P00560000")
	tbl.Upsert("SPY250801C00450000")
	u := tbl.Underlyings()
	if len(u) != 2 {
		t.Errorf("underlyings = %v, want 2 distinct symbols", u)
	}
}
