// Package marketdata holds the live options table: one row per
// contract symbol, guarded for single-writer upsert and per-row
// concurrent read/compute, plus the underlying equity price cache
// that analytics reads from.
package marketdata

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"options-analytics-engine/internal/occsymbol"
	"options-analytics-engine/internal/pricing"
)

// Quote is a top-of-book NBBO snapshot. Prices are decimal since they
// cross the wire boundary; analytics converts them to float64.
type Quote struct {
	BidPrice decimal.Decimal
	BidSize  int
	AskPrice decimal.Decimal
	AskSize  int
	Time     time.Time
}

// Trade is a last-sale print.
type Trade struct {
	Price decimal.Decimal
	Size  int
	Time  time.Time
}

// Row is one contract's live state: its static identity, the latest
// quote/trade, and the most recently computed analytics. LastComputedAt
// lives on the row itself (not a parallel array keyed by table index)
// so the 100ms throttle survives table compaction and symbol churn.
type Row struct {
	mu sync.RWMutex

	Contract occsymbol.Details

	Quote    Quote
	HasQuote bool
	Trade    Trade
	HasTrade bool

	Analytics      pricing.FullMetricsResult
	AnalyticsValid bool
	UnderlyingPrice float64
	TimeToExpiry    float64
	LastComputedAt  time.Time
}

// newRow seeds a row from a parsed contract symbol.
func newRow(details occsymbol.Details) *Row {
	return &Row{Contract: details}
}

// SetQuote records a fresh quote under the row's write lock.
func (r *Row) SetQuote(q Quote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Quote = q
	r.HasQuote = true
}

// SetTrade records a fresh trade under the row's write lock.
func (r *Row) SetTrade(tr Trade) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Trade = tr
	r.HasTrade = true
}

// ReferencePrice picks the price analytics should solve against: the
// last trade when one has printed, otherwise the quote midpoint.
func (r *Row) ReferencePrice() (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.HasTrade {
		f, _ := r.Trade.Price.Float64()
		if f > 0 {
			return f, true
		}
	}
	if r.HasQuote {
		mid := r.Quote.BidPrice.Add(r.Quote.AskPrice).Div(decimal.NewFromInt(2))
		f, _ := mid.Float64()
		if f > 0 {
			return f, true
		}
	}
	return 0, false
}

// Snapshot is a read-only copy of a row, safe to hold without the
// row's lock.
type Snapshot struct {
	Contract        occsymbol.Details
	Quote           Quote
	HasQuote        bool
	Trade           Trade
	HasTrade        bool
	Analytics       pricing.FullMetricsResult
	AnalyticsValid  bool
	UnderlyingPrice float64
	TimeToExpiry    float64
}

// Snapshot copies the row's current state under the read lock.
func (r *Row) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		Contract:        r.Contract,
		Quote:           r.Quote,
		HasQuote:        r.HasQuote,
		Trade:           r.Trade,
		HasTrade:        r.HasTrade,
		Analytics:       r.Analytics,
		AnalyticsValid:  r.AnalyticsValid,
		UnderlyingPrice: r.UnderlyingPrice,
		TimeToExpiry:    r.TimeToExpiry,
	}
}

// PriceCacheEntry is one underlying's latest trade and quote state,
// guarded by its own readers-writer lock so a hot symbol never
// contends with lookups for any other symbol.
type PriceCacheEntry struct {
	mu sync.RWMutex

	Symbol    string
	LastPrice float64
	BidPrice  float64
	AskPrice  float64
	LastSize  int
	BidSize   int
	AskSize   int
	Timestamp time.Time
	Valid     bool

	hasTrade bool
}

// PriceCache tracks the latest trade/quote state per underlying
// equity symbol, written by the equities stream and read by
// analytics. The map itself is guarded by one RWMutex for insert/
// lookup; each entry embeds its own lock for the field updates, never
// a parallel array of locks indexed by position.
type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]*PriceCacheEntry
}

// NewPriceCache returns an empty cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{entries: make(map[string]*PriceCacheEntry)}
}

// entryFor returns the existing entry for symbol, or creates one.
func (c *PriceCache) entryFor(symbol string) *PriceCacheEntry {
	c.mu.RLock()
	e, ok := c.entries[symbol]
	c.mu.RUnlock()
	if ok {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[symbol]; ok {
		return e
	}
	e = &PriceCacheEntry{Symbol: symbol}
	c.entries[symbol] = e
	return e
}

// Set records a last-trade price for an underlying with no size or
// timestamp detail; a convenience for callers (and tests) that only
// track spot price.
func (c *PriceCache) Set(symbol string, price float64) {
	c.SetTrade(symbol, price, 0, time.Time{})
}

// SetTrade records a last-sale print for an underlying. A trade price
// always takes priority over a quote midpoint once one has printed.
func (c *PriceCache) SetTrade(symbol string, price float64, size int, ts time.Time) {
	e := c.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.LastPrice = price
	e.LastSize = size
	e.Timestamp = ts
	e.Valid = price > 0
	e.hasTrade = true
}

// SetQuote records a fresh NBBO for an underlying. The bid/ask are
// always updated; the midpoint only backfills LastPrice as a fallback
// spot price when no last-trade price exists yet for this symbol.
func (c *PriceCache) SetQuote(symbol string, bid, ask float64, bidSize, askSize int, ts time.Time) {
	e := c.entryFor(symbol)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.BidPrice = bid
	e.AskPrice = ask
	e.BidSize = bidSize
	e.AskSize = askSize
	e.Timestamp = ts

	if e.hasTrade {
		return
	}
	mid := (bid + ask) / 2
	if mid > 0 {
		e.LastPrice = mid
		e.Valid = true
	}
}

// Get returns the latest known reference price for an underlying.
func (c *PriceCache) Get(symbol string) (float64, bool) {
	c.mu.RLock()
	e, ok := c.entries[symbol]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.LastPrice, e.Valid
}
