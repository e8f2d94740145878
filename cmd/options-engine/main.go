// Command options-engine streams live option quotes/trades, keeps
// Black-Scholes Greeks and realized-vol estimates current per
// contract, and flags volatility-smile and Greeks-dislocation
// anomalies to the terminal.
//
// Usage:
//
//	options-engine [--mock] [--config path] SYMBOL [SYMBOL...]
//	options-engine [--mock] [--config path] UNDERLYING START END
//	options-engine [--mock] [--config path] UNDERLYING START END STRIKE_LO STRIKE_HI
//
// START/END are expiry-window bounds (YYYY-MM-DD); STRIKE_LO/STRIKE_HI
// narrow the discovered contracts to a strike range.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"options-analytics-engine/internal/config"
	"options-analytics-engine/internal/contracts"
	"options-analytics-engine/internal/engine"
	"options-analytics-engine/internal/mockfeed"
)

func main() {
	os.Exit(run())
}

func run() int {
	mock := flag.Bool("mock", false, "replace live feeds with a synthetic data generator")
	cfgPath := flag.String("config", config.DefaultPath, "path to config.json")
	seed := flag.Int64("seed", 1, "deterministic seed for --mock")
	flag.Parse()

	logger := log.New(log.Writer(), "[MAIN] ", log.LstdFlags)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Printf("config: %v", err)
		return 1
	}

	symbols, err := resolveSymbols(cfg, flag.Args())
	if err != nil {
		logger.Printf("resolving symbols: %v", err)
		return 1
	}
	cfg.Symbols = symbols

	coordinator := engine.New(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *mock {
		gen := mockfeed.NewGenerator(*seed)
		if err := coordinator.RunMock(ctx, gen); err != nil {
			logger.Printf("mock run: %v", err)
			return 1
		}
		return 0
	}

	if err := coordinator.Serve(ctx); err != nil {
		logger.Printf("serve: %v", err)
		return 1
	}
	return 0
}

// resolveSymbols implements the three invocation forms, dispatched by
// positional argument count: a direct symbol list (any count other
// than 0, 3 or 5) skips contract discovery entirely; exactly 3
// arguments are (underlying, start, end); exactly 5 add (strike_lo,
// strike_hi). With no arguments the config file's symbols are used,
// and an empty list there is an error.
func resolveSymbols(cfg *config.Config, args []string) ([]string, error) {
	client := contracts.New(cfg.AlpacaAPIKey, cfg.AlpacaAPISecret, cfg.Paper)

	switch len(args) {
	case 0:
		if len(cfg.Symbols) > 0 {
			return cfg.Symbols, nil
		}
		return nil, fmt.Errorf("no symbols given: pass SYMBOL..., UNDERLYING START END, or UNDERLYING START END STRIKE_LO STRIKE_HI")
	case 3:
		return client.Discover(context.Background(), args[0], args[1], args[2], 0, 0)
	case 5:
		lo, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing strike_lo: %w", err)
		}
		hi, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing strike_hi: %w", err)
		}
		return client.Discover(context.Background(), args[0], args[1], args[2], lo, hi)
	default:
		return args, nil
	}
}
