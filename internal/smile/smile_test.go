package smile

import (
	"testing"

	"options-analytics-engine/internal/occsymbol"
)

func buildTestSmile() *Smile {
	s := New("QQQ", "250801")
	strikes := []float64{520, 540, 550, 560, 570, 580, 600}
	ivs := []float64{0.42, 0.38, 0.36, 0.35, 0.36, 0.39, 0.45}
	for i, k := range strikes {
		typ := occsymbol.Call
		if k < 560 {
			typ = occsymbol.Put
		}
		s.AddPoint(Point{Strike: k, ImpliedVol: ivs[i], Moneyness: Moneyness(k, 560), Type: typ}, 560)
	}
	return s
}

func TestAnalyzeRequiresMinPoints(t *testing.T) {
	s := New("SPY", "250801")
	s.AddPoint(Point{Strike: 450, ImpliedVol: 0.2, Moneyness: 1.0, Type: occsymbol.Call}, 450)
	s.Analyze()
	if s.SufficientData {
		t.Error("expected insufficient data with fewer than MinPoints")
	}
}

func TestAnalyzeComputesATMAndRange(t *testing.T) {
	s := buildTestSmile()
	s.Analyze()
	if !s.SufficientData {
		t.Fatal("expected sufficient data")
	}
	if s.MinVol != 0.35 || s.MaxVol != 0.45 {
		t.Errorf("vol range = [%v, %v], want [0.35, 0.45]", s.MinVol, s.MaxVol)
	}
	if s.ATMVol <= 0 {
		t.Errorf("expected positive ATM vol, got %v", s.ATMVol)
	}
}

func TestAddPointCapsAtMaxPoints(t *testing.T) {
	s := New("QQQ", "250801")
	for i := 0; i < MaxPoints+10; i++ {
		s.AddPoint(Point{Strike: float64(500 + i), ImpliedVol: 0.3}, 560)
	}
	if len(s.Points) != MaxPoints {
		t.Errorf("points = %d, want capped at %d", len(s.Points), MaxPoints)
	}
}

func TestIsAnomalyFlagsWideRange(t *testing.T) {
	s := New("IWM", "250801")
	vols := []float64{0.15, 0.20, 0.25, 0.30, 0.40}
	for i, v := range vols {
		s.AddPoint(Point{Strike: float64(100 + i*10), ImpliedVol: v, Moneyness: 1.0 + float64(i)*0.05}, 100)
	}
	s.Analyze()
	if !s.IsAnomaly() {
		t.Error("expected anomaly for a 25-vol-point wide smile")
	}
}

func TestOpportunitiesOnlyFromAnomalies(t *testing.T) {
	normal := New("SPY", "250801")
	for i := 0; i < 5; i++ {
		normal.AddPoint(Point{Strike: float64(440 + i*5), ImpliedVol: 0.2, Moneyness: 1.0}, 450)
	}
	normal.Analyze()

	opps := Opportunities([]*Smile{normal})
	if len(opps) != 0 {
		t.Errorf("expected no opportunities from a flat smile, got %+v", opps)
	}
}

func TestMoneynessZeroUnderlying(t *testing.T) {
	if m := Moneyness(100, 0); m != 0 {
		t.Errorf("moneyness with zero underlying = %v, want 0", m)
	}
}
