package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// equitiesWireFrame covers trade/quote/response shapes for the
// JSON equities feed, keyed by the shared "T" discriminator.
type equitiesWireFrame struct {
	Type      string    `json:"T"`
	Symbol    string    `json:"S"`
	BidPrice  float64   `json:"bp"`
	AskPrice  float64   `json:"ap"`
	Price     float64   `json:"p"`
	Size      int       `json:"s"`
	Timestamp time.Time `json:"t"`
	Message   string    `json:"msg"`
	Code      int       `json:"code"`
}

// EquitiesConfig configures the equities feed session.
type EquitiesConfig struct {
	URL       string
	APIKey    string
	APISecret string
	Symbols   []string
}

// EquitiesSession is Session B: the JSON equities feed supplying
// underlying prices for options analytics.
type EquitiesSession struct {
	cfg      EquitiesConfig
	handlers Handlers
	logger   *log.Logger

	conn  *websocket.Conn
	state atomic.Int32
}

// NewEquitiesSession builds a Session B client bound to cfg.
func NewEquitiesSession(cfg EquitiesConfig, handlers Handlers) *EquitiesSession {
	return &EquitiesSession{
		cfg:      cfg,
		handlers: handlers,
		logger:   log.New(log.Writer(), "[EQ-STREAM] ", log.LstdFlags|log.Lmicroseconds),
	}
}

// State reports the session's current lifecycle state.
func (s *EquitiesSession) State() State { return State(s.state.Load()) }

func (s *EquitiesSession) setState(st State) { s.state.Store(int32(st)) }

// Run dials, authenticates, subscribes, then reads frames until ctx
// is canceled or the connection drops.
func (s *EquitiesSession) Run(ctx context.Context) error {
	s.setState(StateConnecting)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("equities stream dial: %w", err)
	}
	s.conn = conn
	defer conn.Close()

	var welcome []equitiesWireFrame
	if err := conn.ReadJSON(&welcome); err != nil {
		return fmt.Errorf("equities stream welcome: %w", err)
	}
	if len(welcome) == 0 || welcome[0].Type != "success" {
		return fmt.Errorf("equities stream unexpected welcome: %+v", welcome)
	}

	s.setState(StateAuthenticating)
	if err := s.authenticate(); err != nil {
		return fmt.Errorf("equities stream auth: %w", err)
	}

	s.setState(StateSubscribing)
	if err := s.subscribe(); err != nil {
		return fmt.Errorf("equities stream subscribe: %w", err)
	}

	s.setState(StateStreaming)
	s.logger.Println("equities stream live")

	for {
		select {
		case <-ctx.Done():
			s.setState(StateClosed)
			return ctx.Err()
		default:
		}

		var frames []json.RawMessage
		if err := conn.ReadJSON(&frames); err != nil {
			s.setState(StateClosed)
			return fmt.Errorf("equities stream read: %w", err)
		}
		for _, raw := range frames {
			s.handleFrame(raw)
		}
	}
}

func (s *EquitiesSession) authenticate() error {
	auth := map[string]string{"action": "auth", "key": s.cfg.APIKey, "secret": s.cfg.APISecret}
	if err := s.conn.WriteJSON(auth); err != nil {
		return err
	}

	var resp []equitiesWireFrame
	if err := s.conn.ReadJSON(&resp); err != nil {
		return err
	}
	if len(resp) == 0 || resp[0].Type != "success" {
		return fmt.Errorf("unexpected auth response: %+v", resp)
	}
	return nil
}

func (s *EquitiesSession) subscribe() error {
	sub := map[string]interface{}{
		"action": "subscribe",
		"trades": s.cfg.Symbols,
		"quotes": s.cfg.Symbols,
	}
	return s.conn.WriteJSON(sub)
}

func (s *EquitiesSession) handleFrame(raw json.RawMessage) {
	var f equitiesWireFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		if s.handlers.OnError != nil {
			s.handlers.OnError(fmt.Errorf("equities stream parse: %w", err))
		}
		return
	}

	switch f.Type {
	case "t":
		if s.handlers.OnEquityTrade != nil {
			s.handlers.OnEquityTrade(EquityTrade{Symbol: f.Symbol, Price: f.Price, Size: f.Size, Time: f.Timestamp})
		}
	case "q":
		if s.handlers.OnEquityQuote != nil {
			s.handlers.OnEquityQuote(EquityQuote{Symbol: f.Symbol, BidPrice: f.BidPrice, AskPrice: f.AskPrice, Time: f.Timestamp})
		}
	case "error":
		if s.handlers.OnError != nil {
			s.handlers.OnError(fmt.Errorf("equities stream server error: %s (code %d)", f.Message, f.Code))
		}
	}
}
