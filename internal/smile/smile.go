// Package smile aggregates per-contract implied vols into a
// volatility smile per (underlying, expiry), derives skew/curvature/
// fit-quality metrics, and flags anomalous shapes worth a second look.
package smile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"options-analytics-engine/internal/occsymbol"
)

const (
	// MaxPoints caps how many strikes are tracked per smile.
	MaxPoints = 50
	// MinPoints is the minimum strike count before metrics are trusted.
	MinPoints = 3

	skewThreshold  = 0.02
	smileThreshold = 0.01
)

// Point is one contract's contribution to a smile: its strike,
// implied vol, and moneyness at the time analytics last ran.
type Point struct {
	Strike      float64
	ImpliedVol  float64
	Moneyness   float64
	TimeToExpiry float64
	Type        occsymbol.OptionType
}

// Smile is the aggregated shape for one (underlying, expiry) pair.
type Smile struct {
	Underlying string
	Expiry     string

	Points          []Point
	UnderlyingPrice float64

	SufficientData bool
	MinVol, MaxVol float64
	ATMVol         float64
	RSquared       float64
	PutSkew        float64
	CallSkew       float64
	Curvature      float64

	HasPutSkew  bool
	HasCallSkew bool
	HasSmile    bool
	IsInverted  bool
}

// New returns an empty smile for underlying/expiry.
func New(underlying, expiry string) *Smile {
	return &Smile{Underlying: underlying, Expiry: expiry}
}

// AddPoint appends a strike's contribution, capped at MaxPoints; past
// the cap, new points are silently dropped (oldest-first retention,
// matching the upstream fixed-size array).
func (s *Smile) AddPoint(p Point, underlyingPrice float64) {
	if len(s.Points) >= MaxPoints {
		return
	}
	s.UnderlyingPrice = underlyingPrice
	s.Points = append(s.Points, p)
}

// Moneyness is strike/underlyingPrice, or 0 if the underlying price is
// not yet known.
func Moneyness(strike, underlyingPrice float64) float64 {
	if underlyingPrice <= 0 {
		return 0
	}
	return strike / underlyingPrice
}

// Analyze recomputes every derived metric and pattern flag from the
// current point set.
func (s *Smile) Analyze() {
	if len(s.Points) < MinPoints {
		s.SufficientData = false
		return
	}
	s.SufficientData = true

	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Strike < s.Points[j].Strike })

	s.MinVol, s.MaxVol = s.Points[0].ImpliedVol, s.Points[0].ImpliedVol
	for _, p := range s.Points {
		if p.ImpliedVol < s.MinVol {
			s.MinVol = p.ImpliedVol
		}
		if p.ImpliedVol > s.MaxVol {
			s.MaxVol = p.ImpliedVol
		}
	}

	s.ATMVol = interpolateATM(s.Points)
	s.RSquared = logMoneynessFitRSquared(s.Points)

	var otmPutVol, otmCallVol float64
	var foundPut, foundCall bool
	for _, p := range s.Points {
		m := Moneyness(p.Strike, s.UnderlyingPrice)
		if m < 0.95 && p.Type == occsymbol.Put {
			otmPutVol = p.ImpliedVol
			foundPut = true
		}
		if m > 1.05 && p.Type == occsymbol.Call {
			otmCallVol = p.ImpliedVol
			foundCall = true
		}
	}
	if foundPut && s.ATMVol > 0 {
		s.PutSkew = s.ATMVol - otmPutVol
	}
	if foundCall && s.ATMVol > 0 {
		s.CallSkew = otmCallVol - s.ATMVol
	}

	s.Curvature = curvatureAtATM(s.Points)
	s.detectPatterns()
}

// interpolateATM finds the point nearest moneyness 1.0 and linearly
// interpolates between its neighbors when it isn't already within 1%.
func interpolateATM(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	bestIdx := 0
	bestDiff := math.Abs(points[0].Moneyness - 1.0)
	for i := 1; i < len(points); i++ {
		diff := math.Abs(points[i].Moneyness - 1.0)
		if diff < bestDiff {
			bestDiff = diff
			bestIdx = i
		}
	}
	if bestDiff < 0.01 {
		return points[bestIdx].ImpliedVol
	}
	if bestIdx > 0 && bestIdx < len(points)-1 {
		x0, x1 := points[bestIdx-1].Moneyness, points[bestIdx+1].Moneyness
		y0, y1 := points[bestIdx-1].ImpliedVol, points[bestIdx+1].ImpliedVol
		if x1 != x0 {
			t := (1.0 - x0) / (x1 - x0)
			return y0 + t*(y1-y0)
		}
	}
	return points[bestIdx].ImpliedVol
}

// logMoneynessFitRSquared fits IV against ln(moneyness) and returns
// the coefficient of determination via gonum's regression helpers.
func logMoneynessFitRSquared(points []Point) float64 {
	if len(points) < 3 {
		return 0
	}
	xs := make([]float64, 0, len(points))
	ys := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Moneyness <= 0 {
			continue
		}
		xs = append(xs, math.Log(p.Moneyness))
		ys = append(ys, p.ImpliedVol)
	}
	if len(xs) < 3 {
		return 0
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return stat.RSquared(xs, ys, nil, alpha, beta)
}

// curvatureAtATM approximates the second derivative of IV w.r.t.
// moneyness around the midpoint of the sorted strike ladder.
func curvatureAtATM(points []Point) float64 {
	if len(points) < 3 {
		return 0
	}
	atmIdx := len(points) / 2
	if atmIdx <= 0 || atmIdx >= len(points)-1 {
		return 0
	}
	h1 := points[atmIdx].Moneyness - points[atmIdx-1].Moneyness
	h2 := points[atmIdx+1].Moneyness - points[atmIdx].Moneyness
	if h1 <= 0 || h2 <= 0 {
		return 0
	}
	y0, y1, y2 := points[atmIdx-1].ImpliedVol, points[atmIdx].ImpliedVol, points[atmIdx+1].ImpliedVol
	return (y2 - 2*y1 + y0) / (h1 * h2)
}

func (s *Smile) detectPatterns() {
	s.HasPutSkew = s.PutSkew > skewThreshold
	s.HasCallSkew = s.CallSkew > skewThreshold
	s.HasSmile = s.Curvature > smileThreshold && (s.MaxVol-s.ATMVol) > smileThreshold
	s.IsInverted = s.Curvature < -smileThreshold && (s.ATMVol-s.MinVol) > smileThreshold
}

// IsAnomaly flags smiles worth surfacing: extreme skew, inversion,
// poor regression fit, or an unusually wide vol range.
func (s *Smile) IsAnomaly() bool {
	if !s.SufficientData {
		return false
	}
	if math.Abs(s.PutSkew) > 0.05 || math.Abs(s.CallSkew) > 0.05 {
		return true
	}
	if s.IsInverted {
		return true
	}
	if s.RSquared < 0.7 && len(s.Points) >= 5 {
		return true
	}
	if (s.MaxVol - s.MinVol) > 0.10 {
		return true
	}
	return false
}

// Opportunity names one class of anomaly worth logging.
type Opportunity struct {
	Pattern string
	Smile   *Smile
}

// Opportunities mirrors the upstream alert sweep: for every anomalous
// smile, emit one entry per pattern that crosses its own threshold.
func Opportunities(smiles []*Smile) []Opportunity {
	var out []Opportunity
	for _, s := range smiles {
		if !s.IsAnomaly() {
			continue
		}
		if s.HasPutSkew && math.Abs(s.PutSkew) > 0.03 {
			out = append(out, Opportunity{Pattern: "EXTREME PUT SKEW", Smile: s})
		}
		if s.HasCallSkew && math.Abs(s.CallSkew) > 0.03 {
			out = append(out, Opportunity{Pattern: "EXTREME CALL SKEW", Smile: s})
		}
		if s.IsInverted {
			out = append(out, Opportunity{Pattern: "INVERTED SMILE", Smile: s})
		}
		if s.RSquared < 0.5 {
			out = append(out, Opportunity{Pattern: "POOR FIT - POTENTIAL MISPRICING", Smile: s})
		}
	}
	return out
}
