package pricing

import "math"

// Greeks holds the full first-, second-, and third-order ladder for
// one (S,K,T,r,sigma,isCall) combination. allGreeks is the single
// implementation; every exported per-Greek function below is a thin
// wrapper over it so formulae never drift apart under refactors.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
	Vanna float64
	Charm float64
	Volga float64
	Speed float64
	Zomma float64
	Color float64
}

func allGreeks(S, K, T, r, sigma float64, isCall bool) Greeks {
	var g Greeks

	switch {
	case T <= 0.0:
		if isCall {
			if S > K {
				g.Delta = 1.0
			}
		} else if S < K {
			g.Delta = -1.0
		}
		return g
	case sigma <= 0.0:
		forwardITM := S > K*math.Exp(-r*T)
		if isCall {
			if forwardITM {
				g.Delta = 1.0
				g.Theta = -r * K * math.Exp(-r*T)
				g.Rho = K * T * math.Exp(-r*T)
			}
		} else {
			if !forwardITM {
				g.Delta = -1.0
				g.Theta = r * K * math.Exp(-r*T)
				g.Rho = -K * T * math.Exp(-r*T)
			}
		}
		return g
	}

	sqrtT := math.Sqrt(T)
	d1, d2 := d1d2(S, K, T, r, sigma)
	phiD1 := NormalPDF(d1)
	discK := K * math.Exp(-r*T)

	if isCall {
		g.Delta = NormalCDF(d1)
		g.Theta = -(S*phiD1*sigma)/(2.0*sqrtT) - r*discK*NormalCDF(d2)
		g.Rho = discK * T * NormalCDF(d2)
	} else {
		g.Delta = NormalCDF(d1) - 1.0
		g.Theta = -(S*phiD1*sigma)/(2.0*sqrtT) + r*discK*NormalCDF(-d2)
		g.Rho = -discK * T * NormalCDF(-d2)
	}

	g.Gamma = phiD1 / (S * sigma * sqrtT)
	g.Vega = S * phiD1 * sqrtT

	if S <= 0.0 {
		return g
	}

	g.Vanna = -g.Vega * d2 / sigma
	charmCommon := -phiD1 * (2*r*T - d2*sigma*sqrtT) / (2 * T * sigma * sqrtT)
	if isCall {
		g.Charm = charmCommon
	} else {
		g.Charm = charmCommon - r*math.Exp(-r*T)
	}
	g.Volga = g.Vega * d1 * d2 / sigma
	g.Speed = -g.Gamma / S * (d1/(sigma*sqrtT) + 1.0)
	g.Zomma = g.Gamma * (d1*d2 - 1.0) / sigma

	colorTerm1 := -phiD1 / (2.0 * S * T * sigma * sqrtT)
	colorTerm2 := 2.0*r*T + 1.0
	colorTerm3 := d1 * (2*r*T - d2*sigma*sqrtT) / (sigma * sqrtT)
	color := colorTerm1 * (colorTerm2 + colorTerm3)
	// Color is identical for calls and puts (shared Gamma formula).
	g.Color = color

	return g
}

// Delta returns Δ_call = Φ(d1) or Δ_put = Φ(d1) - 1.
func Delta(S, K, T, r, sigma float64, isCall bool) float64 {
	return allGreeks(S, K, T, r, sigma, isCall).Delta
}

// Gamma returns φ(d1) / (Sσ√T), identical for calls and puts.
func Gamma(S, K, T, r, sigma float64) float64 {
	return allGreeks(S, K, T, r, sigma, true).Gamma
}

// Theta returns the time decay, flipping sign terms for puts.
func Theta(S, K, T, r, sigma float64, isCall bool) float64 {
	return allGreeks(S, K, T, r, sigma, isCall).Theta
}

// Vega returns Sφ(d1)√T, identical for calls and puts.
func Vega(S, K, T, r, sigma float64) float64 {
	return allGreeks(S, K, T, r, sigma, true).Vega
}

// Rho returns the rate sensitivity.
func Rho(S, K, T, r, sigma float64, isCall bool) float64 {
	return allGreeks(S, K, T, r, sigma, isCall).Rho
}

// Vanna returns ∂²V/∂S∂σ = -Vega·d2/σ.
func Vanna(S, K, T, r, sigma float64) float64 {
	return allGreeks(S, K, T, r, sigma, true).Vanna
}

// Charm returns ∂²V/∂S∂T, call/put variants differing by r·e^{-rT}.
func Charm(S, K, T, r, sigma float64, isCall bool) float64 {
	return allGreeks(S, K, T, r, sigma, isCall).Charm
}

// Volga returns ∂²V/∂σ² = Vega·d1·d2/σ.
func Volga(S, K, T, r, sigma float64) float64 {
	return allGreeks(S, K, T, r, sigma, true).Volga
}

// Speed returns ∂³V/∂S³.
func Speed(S, K, T, r, sigma float64) float64 {
	return allGreeks(S, K, T, r, sigma, true).Speed
}

// Zomma returns ∂³V/∂S²∂σ.
func Zomma(S, K, T, r, sigma float64) float64 {
	return allGreeks(S, K, T, r, sigma, true).Zomma
}

// Color returns ∂³V/∂S²∂T, identical for calls and puts.
func Color(S, K, T, r, sigma float64) float64 {
	return allGreeks(S, K, T, r, sigma, true).Color
}
