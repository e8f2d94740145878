package pricing

import (
	"errors"
	"strconv"
	"time"
)

// ErrBadExpiry is returned when an expiry string isn't 6 digits.
var ErrBadExpiry = errors.New("pricing: expiry must be 6 digits (YYMMDD)")

// newYorkClose is loaded once at package init; if the local tzdata is unavailable,
// callers fall back to a fixed UTC-5 offset (the original source's
// "exchange day" convention never actually resolved IANA zones
// either — see TimeToExpiryYears doc).
var newYorkClose *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err == nil {
		newYorkClose = loc
	} else {
		newYorkClose = time.FixedZone("UTC-5", -5*3600)
	}
}

// TimeToExpiryYears parses a YYMMDD expiry, fixes the expiration
// wall clock to 16:00 of that date, and returns
// max(0, (t_expiry-now)/365.25days).
//
// Convention: years < 50 map to 20YY; years in [50,100) map to 19YY
// (legacy safety, unused in practice). When closeUTC is true (the
// default, matching the upstream feed's naive wall-clock
// normalization) 16:00 is interpreted directly in UTC. When false,
// 16:00 is interpreted as US/Eastern close and converted to UTC —
// this resolves the open question of whether the original intended
// New York market close; both are kept behind the flag because the
// source data never disambiguated it.
func TimeToExpiryYears(expiry string, now time.Time, closeUTC bool) (float64, error) {
	if len(expiry) != 6 {
		return 0, ErrBadExpiry
	}
	yy, err := strconv.Atoi(expiry[0:2])
	if err != nil {
		return 0, ErrBadExpiry
	}
	mm, err := strconv.Atoi(expiry[2:4])
	if err != nil {
		return 0, ErrBadExpiry
	}
	dd, err := strconv.Atoi(expiry[4:6])
	if err != nil {
		return 0, ErrBadExpiry
	}

	year := 2000 + yy
	if yy >= 50 && yy < 100 {
		year = 1900 + yy
	}

	loc := time.UTC
	if !closeUTC && newYorkClose != nil {
		loc = newYorkClose
	}

	expiryTime := time.Date(year, time.Month(mm), dd, 16, 0, 0, 0, loc)
	diff := expiryTime.Sub(now)
	if diff < 0 {
		return 0, nil
	}
	const yearSeconds = 365.25 * 24 * 3600
	return diff.Seconds() / yearSeconds, nil
}
