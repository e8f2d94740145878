// Package contracts discovers the set of option contract symbols to
// subscribe to, via a REST call against the options-contracts
// endpoint for an underlying and an optional expiry/strike window.
package contracts

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
)

// MaxSymbols caps how many contracts a single discovery call returns,
// matching the options table's default capacity.
const MaxSymbols = 100

var (
	// ErrTransport is returned when the REST call fails for any reason
	// (dial, timeout, TLS, or a non-200 response reported by the client).
	ErrTransport = errors.New("contracts: transport failure")
	// ErrBadStatus names a non-200 response. Discover does not return
	// it: non-200 responses are reported as ErrTransport.
	ErrBadStatus = errors.New("contracts: non-200 response")
	// ErrEmpty is returned when discovery succeeds but yields no
	// contracts for the requested window.
	ErrEmpty = errors.New("contracts: empty contract list")
)

// Client wraps the trading REST client for contract discovery.
type Client struct {
	alpaca *alpaca.Client
	logger *log.Logger
}

// New builds a discovery client against either the live or paper
// trading API host.
func New(apiKey, apiSecret string, isPaper bool) *Client {
	baseURL := "https://api.alpaca.markets"
	if isPaper {
		baseURL = "https://paper-api.alpaca.markets"
	}
	return &Client{
		alpaca: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		logger: log.New(log.Writer(), "[CONTRACTS] ", log.LstdFlags),
	}
}

// Discover returns up to MaxSymbols tradable option symbols for
// underlying, filtered to expiries in [expGTE, expLTE] (YYYY-MM-DD,
// either may be empty to leave that bound open) and, if strikeGTE or
// strikeLTE is nonzero, to strikes in that range.
func (c *Client) Discover(ctx context.Context, underlying, expGTE, expLTE string, strikeGTE, strikeLTE float64) ([]string, error) {
	req := alpaca.GetOptionContractsRequest{
		UnderlyingSymbols: []string{underlying},
		Status:            "active",
		ExpirationDateGTE: expGTE,
		ExpirationDateLTE: expLTE,
		Limit:             MaxSymbols,
	}
	if strikeGTE > 0 {
		req.StrikePriceGTE = fmt.Sprintf("%.2f", strikeGTE)
	}
	if strikeLTE > 0 {
		req.StrikePriceLTE = fmt.Sprintf("%.2f", strikeLTE)
	}

	resp, err := c.alpaca.GetOptionContracts(req)
	if err != nil {
		return nil, fmt.Errorf("%w: discovering %s: %v", ErrTransport, underlying, err)
	}

	var symbols []string
	for _, oc := range resp.OptionContracts {
		if !oc.Tradable {
			continue
		}
		symbols = append(symbols, oc.Symbol)
		if len(symbols) >= MaxSymbols {
			c.logger.Printf("discovery capped at %d symbols", MaxSymbols)
			break
		}
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, underlying)
	}
	return symbols, nil
}
