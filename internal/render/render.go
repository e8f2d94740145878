// Package render formats a table snapshot into the terminal table the
// engine prints on each display tick. Unlike the upstream source's
// two divergent rendering modes, there is exactly one renderer here:
// no color-coded up/down tracking, no precision variants.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"options-analytics-engine/internal/dislocation"
	"options-analytics-engine/internal/marketdata"
	"options-analytics-engine/internal/occsymbol"
	"options-analytics-engine/internal/smile"
)

const header = "%-28s %-8s %-8s %-7s %-7s %-7s %-7s %-7s %-7s %-7s %-7s %-7s %-7s\n"
const row = "%-28s %-8.2f %-8.4f %-7.4f %-7.4f %-7.4f %-7.3f %-7.3f %-7.1f %-7.3f %-7.4f %-7.3f %-7.2f\n"

// Snapshot renders one options table + smiles + dislocation alerts.
func Snapshot(w io.Writer, riskFreeRate float64, rows []marketdata.Snapshot, smiles []*smile.Smile, alerts []dislocation.Alert) {
	fmt.Fprintf(w, "=== Options Analytics Engine ===\n")
	fmt.Fprintf(w, "Risk-free rate: %.2f%% | Symbols: %d\n\n", riskFreeRate*100, len(rows))

	sorted := make([]marketdata.Snapshot, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Contract.Symbol < sorted[j].Contract.Symbol })

	fmt.Fprintf(w, header, "CONTRACT", "UND.$", "IV", "DELTA", "GAMMA", "THETA", "VEGA", "VANNA", "CHARM", "VOLGA", "SPEED", "ZOMMA", "COLOR")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, r := range sorted {
		if !r.AnalyticsValid {
			continue
		}
		g := r.Analytics.Greeks
		fmt.Fprintf(w, row,
			occsymbol.Render(r.Contract), r.UnderlyingPrice, r.Analytics.ImpliedVol,
			g.Delta, g.Gamma, g.Theta, g.Vega, g.Vanna, g.Charm, g.Volga, g.Speed, g.Zomma, g.Color)
	}

	if len(smiles) > 0 {
		fmt.Fprintf(w, "\n--- Volatility Smiles ---\n")
		for _, s := range smiles {
			if !s.SufficientData {
				continue
			}
			fmt.Fprintf(w, "%s %s: ATM=%.1f%% range=[%.1f%%,%.1f%%] putSkew=%.1f%% callSkew=%.1f%% R2=%.2f\n",
				s.Underlying, s.Expiry, s.ATMVol*100, s.MinVol*100, s.MaxVol*100,
				s.PutSkew*100, s.CallSkew*100, s.RSquared)
		}
		for _, opp := range smile.Opportunities(smiles) {
			fmt.Fprintf(w, "  [%s] %s %s\n", opp.Pattern, opp.Smile.Underlying, opp.Smile.Expiry)
		}
	}

	var flagged []dislocation.Alert
	for _, a := range alerts {
		if a.VannaAnomaly || a.VolgaAnomaly || a.CharmAnomaly || a.IVRVAnomaly {
			flagged = append(flagged, a)
		}
	}
	if len(flagged) > 0 {
		fmt.Fprintf(w, "\n--- Dislocation Alerts ---\n")
		for _, a := range flagged {
			fmt.Fprintf(w, "%s: %s -> %s\n", a.Symbol, a.Description, a.Recommendation)
		}
	}
}
