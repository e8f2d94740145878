// Package dislocation implements the per-contract anomaly detector:
// a joint condition on the Greeks ladder and the IV-RV spread that
// surfaces structural mispricing as a human-readable trade
// recommendation. Detection is best-effort — missing inputs silently
// suppress the corresponding sub-predicate instead of failing the
// whole contract.
package dislocation

import (
	"math"

	"options-analytics-engine/internal/marketdata"
	"options-analytics-engine/internal/realizedvol"
)

// Alert is the derived, transient per-contract dislocation record.
type Alert struct {
	Symbol string

	VannaAnomaly bool
	VolgaAnomaly bool
	CharmAnomaly bool
	IVRVAnomaly  bool

	VannaVolgaRatio float64
	HasRatio        bool
	IVRVSpread      float64

	Description    string
	Recommendation string
}

// Analyze evaluates the dislocation rules for one row. rv is nil when
// no realized-vol history exists for the contract's underlying.
func Analyze(row marketdata.Snapshot, rv *realizedvol.Snapshot) Alert {
	a := Alert{Symbol: row.Contract.Symbol}
	if !row.AnalyticsValid {
		a.Recommendation = "MONITOR"
		return a
	}

	g := row.Analytics.Greeks
	isCall := row.Contract.Type == 'C'
	itm := (isCall && row.UnderlyingPrice > row.Contract.Strike) ||
		(!isCall && row.UnderlyingPrice < row.Contract.Strike)

	expectedVannaSign := -1.0
	if itm {
		expectedVannaSign = 1.0
	}
	observedVannaSign := math.Copysign(1, g.Vanna)
	if g.Vanna == 0 {
		observedVannaSign = 0
	}
	a.VannaAnomaly = (observedVannaSign != 0 && observedVannaSign != expectedVannaSign) || math.Abs(g.Vanna) > 2

	a.VolgaAnomaly = math.Abs(g.Volga) > 40 || (math.Abs(g.Volga) < 2 && row.TimeToExpiry > 0.02)

	a.CharmAnomaly = (g.Charm > 0 && row.TimeToExpiry > 0.02) || math.Abs(g.Charm) > 200

	if math.Abs(g.Volga) > 1e-3 {
		a.HasRatio = true
		a.VannaVolgaRatio = g.Vanna / g.Volga
	}

	if rv != nil && rv.RV20d > 0 && row.Analytics.Converged {
		a.IVRVSpread = row.Analytics.ImpliedVol - rv.RV20d
		a.IVRVAnomaly = math.Abs(a.IVRVSpread) > 0.15
	}

	a.Description = describe(a)
	a.Recommendation = recommend(a, row, itm)
	return a
}

func describe(a Alert) string {
	switch {
	case a.VannaAnomaly && a.VolgaAnomaly:
		return "Vanna and Volga both outside expected range"
	case a.VannaAnomaly:
		return "Vanna sign or magnitude anomaly"
	case a.VolgaAnomaly:
		return "Volga magnitude anomaly"
	case a.CharmAnomaly:
		return "Charm sign or magnitude anomaly"
	case a.IVRVAnomaly:
		return "Implied vol diverging from realized vol"
	default:
		return "No structural anomaly detected"
	}
}

// moneynessBucket classifies a strike relative to spot into the
// coarse buckets the recommendation catalog keys off.
func moneynessBucket(strike, spot float64) string {
	if spot <= 0 {
		return "unknown"
	}
	m := strike / spot
	switch {
	case m < 0.95:
		return "otm_put"
	case m > 1.05:
		return "otm_call"
	default:
		return "atm"
	}
}

// dteBucket classifies time-to-expiry (in years) into near/mid/far.
func dteBucket(years float64) string {
	days := years * 365.25
	switch {
	case days < 15:
		return "near"
	case days < 45:
		return "mid"
	default:
		return "far"
	}
}

// recommend composes a deterministic trade-recommendation string from
// which predicates fired plus the contract's moneyness/DTE buckets.
// An empty catalog match falls back to "MONITOR".
func recommend(a Alert, row marketdata.Snapshot, itm bool) string {
	mBucket := moneynessBucket(row.Contract.Strike, row.UnderlyingPrice)
	dBucket := dteBucket(row.TimeToExpiry)

	switch {
	case a.IVRVAnomaly && a.IVRVSpread > 0 && dBucket != "near":
		return "SELL PREMIUM - IV RICH VS RV"
	case a.IVRVAnomaly && a.IVRVSpread < 0:
		return "BUY CALENDARS - IV CHEAP VS RV"
	case a.VolgaAnomaly && math.Abs(a.VannaVolgaRatio) > 0.5 && mBucket == "otm_put":
		return "SELL PUT SPREADS"
	case a.VolgaAnomaly && math.Abs(a.VannaVolgaRatio) > 0.5 && mBucket == "otm_call":
		return "SELL CALL SPREADS"
	case a.CharmAnomaly && dBucket == "far":
		return "BUY CALENDARS"
	case a.VannaAnomaly && mBucket == "atm":
		return "SELL IRON CONDORS"
	default:
		return "MONITOR"
	}
}
