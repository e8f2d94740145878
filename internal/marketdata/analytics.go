package marketdata

import (
	"math"
	"time"

	"options-analytics-engine/internal/pricing"
)

// AnalyticsThrottle is the minimum interval between recomputes for a
// single contract, matching the upstream feed's per-symbol rate limit
// on Black-Scholes recalculation.
const AnalyticsThrottle = 100 * time.Millisecond

// ComputeAnalytics recomputes a row's Greeks and implied vol if the
// row has a price, an underlying reference price is available, and
// the throttle window has elapsed. Every input gap (missing price,
// missing underlying spot, unparseable or expired expiry, numerical
// failure) clears AnalyticsValid rather than leaving a stale result
// marked valid; a skip due to throttling leaves the existing result
// untouched since it is still current.
func ComputeAnalytics(row *Row, cache *PriceCache, riskFreeRate float64, closeUTC bool, now time.Time) error {
	refPrice, ok := row.ReferencePrice()
	if !ok {
		row.mu.Lock()
		row.AnalyticsValid = false
		row.mu.Unlock()
		return ErrDataGap
	}

	row.mu.Lock()
	defer row.mu.Unlock()

	if !row.LastComputedAt.IsZero() && now.Sub(row.LastComputedAt) < AnalyticsThrottle {
		return nil
	}

	underlyingPrice, ok := cache.Get(row.Contract.Underlying)
	if !ok {
		row.AnalyticsValid = false
		return ErrDataGap
	}

	years, err := pricing.TimeToExpiryYears(row.Contract.Expiry, now, closeUTC)
	if err != nil {
		row.AnalyticsValid = false
		return ErrParse
	}
	if years <= 0 {
		row.AnalyticsValid = false
		return ErrDataGap
	}

	isCall := row.Contract.Type == 'C'
	metrics := pricing.FullMetrics(underlyingPrice, row.Contract.Strike, years, riskFreeRate, refPrice, isCall)

	if math.IsNaN(metrics.ImpliedVol) || math.IsInf(metrics.ImpliedVol, 0) ||
		math.IsNaN(metrics.Delta) || math.IsNaN(metrics.Gamma) {
		row.AnalyticsValid = false
		return ErrNumericalFailure
	}

	row.Analytics = metrics
	row.AnalyticsValid = true
	row.UnderlyingPrice = underlyingPrice
	row.TimeToExpiry = years
	row.LastComputedAt = now

	return nil
}
