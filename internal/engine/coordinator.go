// Package engine wires the options table, realized-vol store, smile
// store, dislocation detector, and the two streaming sessions into one
// running system. It replaces the upstream source's single global
// client with an explicit value owned by the caller.
package engine

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"options-analytics-engine/internal/config"
	"options-analytics-engine/internal/dislocation"
	"options-analytics-engine/internal/marketdata"
	"options-analytics-engine/internal/mockfeed"
	"options-analytics-engine/internal/occsymbol"
	"options-analytics-engine/internal/pricing"
	"options-analytics-engine/internal/ratesource"
	"options-analytics-engine/internal/realizedvol"
	"options-analytics-engine/internal/render"
	"options-analytics-engine/internal/smile"
	"options-analytics-engine/internal/stream"
)

// underlyingsOf derives the distinct underlying symbols referenced by
// a set of option contract symbols, skipping any that fail to parse.
func underlyingsOf(symbols []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range symbols {
		d, err := occsymbol.Parse(s)
		if err != nil {
			continue
		}
		if !seen[d.Underlying] {
			seen[d.Underlying] = true
			out = append(out, d.Underlying)
		}
	}
	return out
}

// Coordinator owns the shared state and drives the streaming,
// analytics-throttle, and display tasks.
type Coordinator struct {
	cfg    *config.Config
	table  *marketdata.Table
	prices *marketdata.PriceCache
	rates  *ratesource.Loader
	logger *log.Logger

	rvMu sync.Mutex
	rv   map[string]*realizedvol.Series

	out io.Writer
}

// New builds a Coordinator from a loaded config.
func New(cfg *config.Config, out io.Writer) *Coordinator {
	capacity := cfg.TableCapacity
	if capacity <= 0 {
		capacity = marketdata.DefaultCapacity
	}
	return &Coordinator{
		cfg:    cfg,
		table:  marketdata.NewTable(capacity),
		prices: marketdata.NewPriceCache(),
		rates:  ratesource.NewLoader(cfg.FREDAPIKey),
		logger: log.New(log.Writer(), "[ENGINE] ", log.LstdFlags),
		rv:     make(map[string]*realizedvol.Series),
		out:    out,
	}
}

// seriesFor returns (lazily creating) the realized-vol series for an
// underlying.
func (c *Coordinator) seriesFor(underlying string) *realizedvol.Series {
	c.rvMu.Lock()
	defer c.rvMu.Unlock()
	s, ok := c.rv[underlying]
	if !ok {
		s = realizedvol.NewSeries(underlying)
		c.rv[underlying] = s
	}
	return s
}

// rvSnapshot returns the current realized-vol snapshot for an
// underlying, or nil if none has been observed yet.
func (c *Coordinator) rvSnapshot(underlying string) *realizedvol.Snapshot {
	c.rvMu.Lock()
	s, ok := c.rv[underlying]
	c.rvMu.Unlock()
	if !ok {
		return nil
	}
	snap := s.Snapshot()
	return &snap
}

// handlers builds the stream.Handlers that feed table/cache updates
// from both sessions.
func (c *Coordinator) handlers() stream.Handlers {
	return stream.Handlers{
		OnOptionTrade: func(t stream.OptionTrade) {
			row, err := c.table.Upsert(t.Symbol)
			if err != nil {
				return
			}
			row.SetTrade(marketdataTradeFrom(t))
		},
		OnOptionQuote: func(q stream.OptionQuote) {
			if !c.cfg.SubscribeQuotes {
				return
			}
			row, err := c.table.Upsert(q.Symbol)
			if err != nil {
				return
			}
			row.SetQuote(marketdataQuoteFrom(q))
		},
		OnEquityTrade: func(t stream.EquityTrade) {
			c.prices.SetTrade(t.Symbol, t.Price, t.Size, t.Time)
		},
		OnEquityQuote: func(q stream.EquityQuote) {
			// SetQuote only backfills the spot price from the
			// midpoint when no last-trade price exists yet.
			c.prices.SetQuote(q.Symbol, q.BidPrice, q.AskPrice, 0, 0, q.Time)
		},
		OnError: func(err error) {
			c.logger.Printf("stream error: %v", err)
		},
	}
}

// Serve runs the streaming sessions and the periodic analytics/display
// tick until ctx is canceled. It returns the first fatal error, or nil
// on clean shutdown.
func (c *Coordinator) Serve(ctx context.Context) error {
	for _, symbol := range c.cfg.Symbols {
		if _, err := c.table.Upsert(symbol); err != nil {
			c.logger.Printf("skipping configured symbol %s: %v", symbol, err)
		}
	}

	handlers := c.handlers()

	optionsCfg := stream.OptionsConfig{
		URL:             c.cfg.OptionsStreamURL,
		APIKey:          c.cfg.AlpacaAPIKey,
		APISecret:       c.cfg.AlpacaAPISecret,
		Symbols:         c.cfg.Symbols,
		SubscribeQuotes: c.cfg.SubscribeQuotes,
	}
	equitiesCfg := stream.EquitiesConfig{
		URL:       c.cfg.EquitiesStreamURL,
		APIKey:    c.cfg.AlpacaAPIKey,
		APISecret: c.cfg.AlpacaAPISecret,
		Symbols:   underlyingsOf(c.cfg.Symbols),
	}

	optionsSession := stream.NewOptionsSession(optionsCfg, handlers)
	equitiesSession := stream.NewEquitiesSession(equitiesCfg, handlers)

	var wg sync.WaitGroup
	errs := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := optionsSession.Run(ctx); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := equitiesSession.Run(ctx); err != nil && ctx.Err() == nil {
			errs <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.runDisplayLoop(ctx)
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// runDisplayLoop periodically recomputes analytics for every row,
// rebuilds smiles, scans for dislocations, and renders a snapshot.
func (c *Coordinator) runDisplayLoop(ctx context.Context) {
	interval := time.Duration(c.cfg.DisplayIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.tick(ctx, now)
		}
	}
}

func (c *Coordinator) tick(ctx context.Context, now time.Time) {
	rows := c.table.Snapshot()
	for _, snap := range rows {
		row, ok := c.table.Get(snap.Contract.Symbol)
		if !ok {
			continue
		}
		years, err := pricing.TimeToExpiryYears(snap.Contract.Expiry, now, c.cfg.ExpiryCloseUTC())
		if err != nil {
			continue
		}
		rate := c.rates.RateForExpiry(ctx, years)
		if err := marketdata.ComputeAnalytics(row, c.prices, rate, c.cfg.ExpiryCloseUTC(), now); err != nil {
			continue
		}
	}

	rows = c.table.Snapshot()
	smiles := smile.BuildFromRows(rows)

	var alerts []dislocation.Alert
	for _, snap := range rows {
		if !snap.AnalyticsValid {
			continue
		}
		rv := c.rvSnapshot(snap.Contract.Underlying)
		alerts = append(alerts, dislocation.Analyze(snap, rv))
	}

	render.Snapshot(c.out, c.cfg.RiskFreeRateFallback, rows, smiles, alerts)
}

// RunMock drives the coordinator off a synthetic feed instead of live
// sessions, for local development and demos.
func (c *Coordinator) RunMock(ctx context.Context, gen *mockfeed.Generator) error {
	for _, symbol := range c.cfg.Symbols {
		if _, err := c.table.Upsert(symbol); err != nil {
			c.logger.Printf("mock: skipping %s: %v", symbol, err)
		}
	}

	ticker := time.NewTicker(mockfeed.UpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			for _, underlying := range c.table.Underlyings() {
				c.prices.Set(underlying, gen.StepUnderlying(underlying))
			}
			for _, snap := range c.table.Snapshot() {
				row, ok := c.table.Get(snap.Contract.Symbol)
				if !ok {
					continue
				}
				trade, quote := gen.StepOption(snap.Contract.Symbol, snap.Contract.Underlying)
				row.SetTrade(trade)
				row.SetQuote(quote)
			}
			c.tick(ctx, now)
		}
	}
}
