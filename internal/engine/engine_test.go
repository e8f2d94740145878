package engine

import (
	"bytes"
	"context"
	"testing"
	"time"

	"options-analytics-engine/internal/config"
	"options-analytics-engine/internal/mockfeed"
)

func testConfig() *config.Config {
	return &config.Config{
		AlpacaAPIKey:           "key",
		AlpacaAPISecret:        "secret",
		TableCapacity:          10,
		DisplayIntervalSeconds: 1,
		RiskFreeRateFallback:   0.05,
		Symbols:                []string{"AAPL250117C00150000", "AAPL250117P00150000"},
	}
}

func TestUnderlyingsOfDerivesDistinctUnderlyings(t *testing.T) {
	got := underlyingsOf([]string{"AAPL250117C00150000", "AAPL250117P00150000", "not-a-symbol"})
	if len(got) != 1 || got[0] != "AAPL" {
		t.Errorf("expected [AAPL], got %v", got)
	}
}

func TestRunMockSeedsConfiguredSymbols(t *testing.T) {
	var buf bytes.Buffer
	c := New(testConfig(), &buf)
	gen := mockfeed.NewGenerator(42)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.RunMock(ctx, gen) }()

	<-ctx.Done()
	if err := <-done; err != nil {
		t.Fatalf("RunMock returned error: %v", err)
	}

	if c.table.Len() != 2 {
		t.Errorf("expected 2 rows in table, got %d", c.table.Len())
	}
}

func TestSeriesForIsStablePerUnderlying(t *testing.T) {
	c := New(testConfig(), &bytes.Buffer{})
	a := c.seriesFor("AAPL")
	b := c.seriesFor("AAPL")
	if a != b {
		t.Errorf("expected the same series instance for repeated lookups")
	}
	if c.rvSnapshot("AAPL") == nil {
		t.Errorf("expected a snapshot once a series exists")
	}
	if c.rvSnapshot("MSFT") != nil {
		t.Errorf("expected nil snapshot for unseen underlying")
	}
}
