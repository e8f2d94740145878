// Package mockfeed synthesizes a realistic options/equities tape for
// local development and demos, without dialing any real feed. It
// mirrors the upstream source's mock-data generator: realistic
// starting prices per well-known underlying, small random walks, and
// a bid/ask spread derived from the trade price.
package mockfeed

import (
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"options-analytics-engine/internal/marketdata"
)

// Generator produces synthetic quotes/trades for a fixed universe of
// option symbols and their underlyings.
type Generator struct {
	rng *rand.Rand

	underlyingPrices map[string]float64
	optionPrices     map[string]float64
}

// NewGenerator seeds a generator from seed for reproducible demos.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng:              rand.New(rand.NewSource(seed)),
		underlyingPrices: make(map[string]float64),
		optionPrices:     make(map[string]float64),
	}
}

// realisticUnderlyingPrice returns a plausible starting spot price for
// a handful of well-known tickers, or a generic default otherwise.
func realisticUnderlyingPrice(symbol string, rng *rand.Rand) float64 {
	switch {
	case strings.Contains(symbol, "AAPL"):
		return 150.0 + jitter(rng, 5.0)
	case strings.Contains(symbol, "QQQ"):
		return 350.0 + jitter(rng, 10.0)
	case strings.Contains(symbol, "SPY"):
		return 450.0 + jitter(rng, 15.0)
	case strings.Contains(symbol, "TSLA"):
		return 200.0 + jitter(rng, 20.0)
	case strings.Contains(symbol, "MSFT"):
		return 300.0 + jitter(rng, 10.0)
	case strings.Contains(symbol, "NVDA"):
		return 800.0 + jitter(rng, 40.0)
	default:
		return 100.0 + jitter(rng, 10.0)
	}
}

func jitter(rng *rand.Rand, spread float64) float64 {
	return (rng.Float64()*2 - 1) * spread
}

// realisticOptionPrice returns a plausible starting premium range per
// underlying, loosely tracking typical liquidity/price tiers.
func realisticOptionPrice(underlying string, rng *rand.Rand) float64 {
	var lo, hi float64
	switch {
	case strings.Contains(underlying, "QQQ"):
		lo, hi = 1.0, 15.0
	case strings.Contains(underlying, "AAPL"):
		lo, hi = 2.0, 25.0
	case strings.Contains(underlying, "SPY"):
		lo, hi = 0.5, 20.0
	default:
		lo, hi = 0.5, 10.0
	}
	return lo + rng.Float64()*(hi-lo)
}

// underlyingPrice returns (and lazily seeds) the mock spot for symbol.
func (g *Generator) underlyingPrice(symbol string) float64 {
	if p, ok := g.underlyingPrices[symbol]; ok {
		return p
	}
	p := realisticUnderlyingPrice(symbol, g.rng)
	g.underlyingPrices[symbol] = p
	return p
}

// optionPrice returns (and lazily seeds) the mock last-trade for an
// option symbol, given its underlying.
func (g *Generator) optionPrice(symbol, underlying string) float64 {
	if p, ok := g.optionPrices[symbol]; ok {
		return p
	}
	p := realisticOptionPrice(underlying, g.rng)
	g.optionPrices[symbol] = p
	return p
}

// StepUnderlying applies a small random walk (a uniform step of up to
// ±1%) to the mock spot price for symbol and returns the new price.
func (g *Generator) StepUnderlying(symbol string) float64 {
	price := g.underlyingPrice(symbol)
	change := jitter(g.rng, 0.01*price)
	price += change
	if price < 1.0 {
		price = 1.0
	}
	g.underlyingPrices[symbol] = price
	return price
}

// StepOption applies a small random walk (a uniform step of up to ±2%) to the
// mock trade price for an option contract and returns a trade plus
// the surrounding quote, with a 2% spread around the new price.
func (g *Generator) StepOption(symbol, underlying string) (marketdata.Trade, marketdata.Quote) {
	price := g.optionPrice(symbol, underlying)
	change := jitter(g.rng, 0.02*price)
	price += change
	if price < 0.01 {
		price = 0.01
	}
	g.optionPrices[symbol] = price

	spread := price * 0.02
	now := time.Now()

	trade := marketdata.Trade{
		Price: decimal.NewFromFloat(price),
		Size:  1 + g.rng.Intn(50),
		Time:  now,
	}
	quote := marketdata.Quote{
		BidPrice: decimal.NewFromFloat(price - spread/2),
		BidSize:  1 + g.rng.Intn(100),
		AskPrice: decimal.NewFromFloat(price + spread/2),
		AskSize:  1 + g.rng.Intn(100),
		Time:     now,
	}
	return trade, quote
}

// UpdateInterval is how often the mock generator should tick,
// matching the upstream default.
const UpdateInterval = 2 * time.Second
