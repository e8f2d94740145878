package dislocation

import (
	"testing"

	"options-analytics-engine/internal/marketdata"
	"options-analytics-engine/internal/occsymbol"
	"options-analytics-engine/internal/pricing"
	"options-analytics-engine/internal/realizedvol"
)

func baseRow() marketdata.Snapshot {
	return marketdata.Snapshot{
		Contract: occsymbol.Details{
			Symbol: "QQQ250801C00560000", Underlying: "QQQ", Expiry: "250801",
			Type: occsymbol.Call, Strike: 560,
		},
		AnalyticsValid:  true,
		UnderlyingPrice: 560,
		TimeToExpiry:    0.1,
		Analytics: pricing.FullMetricsResult{
			ImpliedVol: 0.35,
			Converged:  true,
			Greeks:     pricing.Greeks{Vanna: 0.5, Volga: 5, Charm: -10},
		},
	}
}

func TestAnalyzeNoAnomalyIsMonitor(t *testing.T) {
	row := baseRow()
	a := Analyze(row, nil)
	if a.VannaAnomaly || a.VolgaAnomaly || a.CharmAnomaly || a.IVRVAnomaly {
		t.Errorf("expected no anomalies for benign greeks, got %+v", a)
	}
	if a.Recommendation != "MONITOR" {
		t.Errorf("recommendation = %q, want MONITOR", a.Recommendation)
	}
}

func TestAnalyzeFlagsLargeVanna(t *testing.T) {
	row := baseRow()
	row.Analytics.Greeks.Vanna = 3.0
	a := Analyze(row, nil)
	if !a.VannaAnomaly {
		t.Error("expected vanna anomaly for |vanna| > 2")
	}
}

func TestAnalyzeFlagsLargeVolga(t *testing.T) {
	row := baseRow()
	row.Analytics.Greeks.Volga = 50
	a := Analyze(row, nil)
	if !a.VolgaAnomaly {
		t.Error("expected volga anomaly for |volga| > 40")
	}
}

func TestAnalyzeFlagsPositiveCharmWithTime(t *testing.T) {
	row := baseRow()
	row.Analytics.Greeks.Charm = 5
	row.TimeToExpiry = 0.1
	a := Analyze(row, nil)
	if !a.CharmAnomaly {
		t.Error("expected charm anomaly for positive charm with T > 0.02")
	}
}

func TestAnalyzeIVRVSpread(t *testing.T) {
	row := baseRow()
	row.Analytics.ImpliedVol = 0.6
	rv := &realizedvol.Snapshot{RV20d: 0.3}
	a := Analyze(row, rv)
	if !a.IVRVAnomaly {
		t.Error("expected IV-RV anomaly for a 0.3 spread")
	}
	if a.Recommendation != "SELL PREMIUM - IV RICH VS RV" {
		t.Errorf("recommendation = %q", a.Recommendation)
	}
}

func TestAnalyzeMissingAnalyticsFallsBackToMonitor(t *testing.T) {
	row := marketdata.Snapshot{}
	a := Analyze(row, nil)
	if a.Recommendation != "MONITOR" {
		t.Errorf("recommendation = %q, want MONITOR for invalid analytics", a.Recommendation)
	}
}

func TestVannaVolgaRatioComputedWhenVolgaSignificant(t *testing.T) {
	row := baseRow()
	a := Analyze(row, nil)
	if !a.HasRatio {
		t.Fatal("expected ratio to be computed")
	}
	if a.VannaVolgaRatio != row.Analytics.Greeks.Vanna/row.Analytics.Greeks.Volga {
		t.Errorf("ratio = %v, want vanna/volga", a.VannaVolgaRatio)
	}
}
