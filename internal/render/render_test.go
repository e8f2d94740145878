package render

import (
	"bytes"
	"strings"
	"testing"

	"options-analytics-engine/internal/dislocation"
	"options-analytics-engine/internal/marketdata"
	"options-analytics-engine/internal/occsymbol"
	"options-analytics-engine/internal/pricing"
	"options-analytics-engine/internal/smile"
)

func TestSnapshotRendersTableAndSections(t *testing.T) {
	rows := []marketdata.Snapshot{
		{
			Contract: occsymbol.Details{
				Symbol:     "AAPL250117C00150000",
				Underlying: "AAPL",
				Expiry:     "250117",
				Type:       occsymbol.Call,
				Strike:     150,
			},
			AnalyticsValid:  true,
			UnderlyingPrice: 152.5,
			Analytics: pricing.FullMetricsResult{
				ImpliedVol: 0.32,
				Converged:  true,
				Greeks:     pricing.Greeks{Delta: 0.55, Gamma: 0.02, Theta: -0.03, Vega: 0.12},
			},
		},
		{
			Contract:       occsymbol.Details{Symbol: "AAPL250117P00150000"},
			AnalyticsValid: false,
		},
	}

	sm := &smile.Smile{Underlying: "AAPL", Expiry: "250117", SufficientData: true, ATMVol: 0.30, MinVol: 0.28, MaxVol: 0.34, RSquared: 0.9}
	alerts := []dislocation.Alert{
		{Symbol: "AAPL250117C00150000", VannaAnomaly: true, Description: "vanna sign mismatch", Recommendation: "MONITOR"},
		{Symbol: "AAPL250117P00150000", Description: "no anomaly"},
	}

	var buf bytes.Buffer
	Snapshot(&buf, 0.05, rows, []*smile.Smile{sm}, alerts)

	out := buf.String()
	if !strings.Contains(out, "AAPL250117C00150000") {
		t.Errorf("expected analytics-valid row rendered, got:\n%s", out)
	}
	if strings.Contains(out, "AAPL250117P00150000") && !strings.Contains(out, "vanna sign mismatch") {
		t.Errorf("unexpected rendering of invalid row without alert context:\n%s", out)
	}
	if !strings.Contains(out, "Volatility Smiles") || !strings.Contains(out, "ATM=30.0%") {
		t.Errorf("expected smile section, got:\n%s", out)
	}
	if !strings.Contains(out, "Dislocation Alerts") || !strings.Contains(out, "vanna sign mismatch") {
		t.Errorf("expected only flagged alert rendered, got:\n%s", out)
	}
	if strings.Contains(out, "no anomaly") {
		t.Errorf("unflagged alert should not render:\n%s", out)
	}
}
