// Package stream runs the two concurrent market-data sessions: a
// binary msgpack options feed (Session A) and a JSON equities feed
// (Session B). Both speak the same "T" discriminator convention, so
// the connection lifecycle (connect, authenticate, subscribe,
// receive) is shared in spirit even though the wire encodings differ.
package stream

import "time"

// State is a session's position in its connect/auth/subscribe/stream
// lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateAuthenticating
	StateSubscribing
	StateStreaming
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateAuthenticating:
		return "AUTHENTICATING"
	case StateSubscribing:
		return "SUBSCRIBING"
	case StateStreaming:
		return "STREAMING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// OptionQuote is a parsed options-feed quote frame ("T":"q").
type OptionQuote struct {
	Symbol    string
	BidPrice  float64
	BidSize   int
	BidExch   string
	AskPrice  float64
	AskSize   int
	AskExch   string
	Condition string
	Time      time.Time
}

// OptionTrade is a parsed options-feed trade frame ("T":"t").
type OptionTrade struct {
	Symbol    string
	Price     float64
	Size      int
	Exchange  string
	Condition string
	Time      time.Time
}

// EquityQuote is a parsed equities-feed quote frame ("T":"q").
type EquityQuote struct {
	Symbol   string
	BidPrice float64
	AskPrice float64
	Time     time.Time
}

// EquityTrade is a parsed equities-feed trade frame ("T":"t").
type EquityTrade struct {
	Symbol string
	Price  float64
	Size   int
	Time   time.Time
}

// Handlers wires session callbacks; any of these may be nil.
type Handlers struct {
	OnOptionQuote func(OptionQuote)
	OnOptionTrade func(OptionTrade)
	OnEquityQuote func(EquityQuote)
	OnEquityTrade func(EquityTrade)
	OnError       func(error)
}
