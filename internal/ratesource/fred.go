// Package ratesource loads the risk-free rate used by the pricing
// library from FRED (Federal Reserve Economic Data), selecting a
// Treasury series by time-to-expiry and falling back to a fixed
// default when no API key is configured or the request fails.
package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	baseURL = "https://api.stlouisfed.org/fred/series/observations"

	series3Month   = "DGS3MO"
	seriesFedFunds = "DFF"
	series10Year   = "DGS10"

	// DefaultRate is returned whenever a live lookup isn't possible.
	DefaultRate = 0.05
)

// SelectSeries picks the Treasury series matching a contract's time
// to expiry, in years: short-dated contracts track the 3-month bill,
// intermediate ones track Fed funds, and long-dated ones track the
// 10-year note.
func SelectSeries(timeToExpiry float64) string {
	switch {
	case timeToExpiry <= 0.25:
		return series3Month
	case timeToExpiry <= 2.0:
		return seriesFedFunds
	default:
		return series10Year
	}
}

// Loader fetches the latest observation for a FRED series.
type Loader struct {
	APIKey string
	Client *http.Client
	logger *log.Logger

	// baseURLOverride lets tests point fetchLatest at a local server
	// instead of the real FRED endpoint.
	baseURLOverride string
}

// NewLoader returns a Loader; apiKey may be empty, in which case
// RateForExpiry always returns DefaultRate.
func NewLoader(apiKey string) *Loader {
	return &Loader{
		APIKey: apiKey,
		Client: &http.Client{Timeout: 10 * time.Second},
		logger: log.New(log.Writer(), "[RATES] ", log.LstdFlags),
	}
}

type observationsResponse struct {
	Observations []struct {
		Value string `json:"value"`
	} `json:"observations"`
}

// RateForExpiry returns the latest rate (as a decimal, e.g. 0.05 for
// 5%) appropriate for timeToExpiry years to expiry. On any failure —
// missing key, network error, bad response — it logs and returns
// DefaultRate rather than propagating an error, matching the upstream
// feed's "never block analytics on a rate lookup" behavior.
func (l *Loader) RateForExpiry(ctx context.Context, timeToExpiry float64) float64 {
	if l == nil || l.APIKey == "" {
		return DefaultRate
	}

	series := SelectSeries(timeToExpiry)
	rate, err := l.fetchLatest(ctx, series)
	if err != nil {
		l.logger.Printf("rate lookup failed for %s: %v; using default", series, err)
		return DefaultRate
	}
	return rate
}

func (l *Loader) fetchLatest(ctx context.Context, seriesID string) (float64, error) {
	base := baseURL
	if l.baseURLOverride != "" {
		base = l.baseURLOverride
	}
	return l.fetchLatestAt(ctx, base, seriesID)
}

func (l *Loader) fetchLatestAt(ctx context.Context, base, seriesID string) (float64, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", l.APIKey)
	q.Set("file_type", "json")
	q.Set("limit", "1")
	q.Set("sort_order", "desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "options-analytics-engine/1.0")

	resp, err := l.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fred: unexpected status %d", resp.StatusCode)
	}

	var parsed observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("fred: decoding response: %w", err)
	}
	if len(parsed.Observations) == 0 {
		return 0, fmt.Errorf("fred: no observations for series %s", seriesID)
	}

	pct, err := strconv.ParseFloat(parsed.Observations[0].Value, 64)
	if err != nil {
		return 0, fmt.Errorf("fred: parsing observation value: %w", err)
	}
	return pct / 100.0, nil
}
