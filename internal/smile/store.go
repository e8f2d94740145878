package smile

import (
	"options-analytics-engine/internal/marketdata"
)

// key identifies one smile bucket.
type key struct{ underlying, expiry string }

// BuildFromRows groups analytics-valid, converged rows by
// (underlying, expiry) and returns one analyzed Smile per group.
func BuildFromRows(rows []marketdata.Snapshot) []*Smile {
	grouped := make(map[key]*Smile)
	var order []key

	for _, row := range rows {
		if !row.AnalyticsValid || !row.Analytics.Converged {
			continue
		}
		k := key{row.Contract.Underlying, row.Contract.Expiry}
		s, ok := grouped[k]
		if !ok {
			s = New(k.underlying, k.expiry)
			grouped[k] = s
			order = append(order, k)
		}

		s.AddPoint(Point{
			Strike:       row.Contract.Strike,
			ImpliedVol:   row.Analytics.ImpliedVol,
			Moneyness:    Moneyness(row.Contract.Strike, row.UnderlyingPrice),
			TimeToExpiry: row.TimeToExpiry,
			Type:         row.Contract.Type,
		}, row.UnderlyingPrice)
	}

	out := make([]*Smile, 0, len(order))
	for _, k := range order {
		s := grouped[k]
		s.Analyze()
		out = append(out, s)
	}
	return out
}
