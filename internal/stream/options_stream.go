package stream

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// optionsWireFrame covers every field any options-feed frame type
// ("success", "error", "subscription", "t", "q") might carry. Decoding
// everything into one struct and branching on T mirrors how the
// upstream msgpack parser walks the map once per frame.
type optionsWireFrame struct {
	T    string  `msgpack:"T"`
	S    string  `msgpack:"S"`
	BP   float64 `msgpack:"bp"`
	BS   int     `msgpack:"bs"`
	BX   string  `msgpack:"bx"`
	AP   float64 `msgpack:"ap"`
	AS   int     `msgpack:"as"`
	AX   string  `msgpack:"ax"`
	P    float64 `msgpack:"p"`
	Size int     `msgpack:"s"`
	X    string  `msgpack:"x"`
	C    string  `msgpack:"c"`
	Ts   string  `msgpack:"t"`
	Msg  string  `msgpack:"msg"`
	Code int     `msgpack:"code"`
}

// OptionsConfig configures the options feed session.
type OptionsConfig struct {
	URL            string
	APIKey         string
	APISecret      string
	Symbols        []string
	SubscribeQuotes bool // resolves the trades-only vs trades+quotes subscription question
}

// OptionsSession is Session A: the binary msgpack options feed.
type OptionsSession struct {
	cfg      OptionsConfig
	handlers Handlers
	logger   *log.Logger

	conn  *websocket.Conn
	state atomic.Int32

	authenticated atomic.Bool
	subscribed    atomic.Bool

	mu sync.Mutex
}

// NewOptionsSession builds a Session A client bound to cfg.
func NewOptionsSession(cfg OptionsConfig, handlers Handlers) *OptionsSession {
	return &OptionsSession{
		cfg:      cfg,
		handlers: handlers,
		logger:   log.New(log.Writer(), "[OPT-STREAM] ", log.LstdFlags|log.Lmicroseconds),
	}
}

// State reports the session's current lifecycle state.
func (s *OptionsSession) State() State { return State(s.state.Load()) }

func (s *OptionsSession) setState(st State) { s.state.Store(int32(st)) }

// Run dials, authenticates, subscribes, then reads frames until ctx
// is canceled or the connection drops.
func (s *OptionsSession) Run(ctx context.Context) error {
	s.setState(StateConnecting)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("options stream dial: %w", err)
	}
	s.conn = conn
	defer conn.Close()

	s.setState(StateAuthenticating)
	if err := s.authenticate(); err != nil {
		return fmt.Errorf("options stream auth: %w", err)
	}

	s.setState(StateSubscribing)
	if err := s.subscribe(); err != nil {
		return fmt.Errorf("options stream subscribe: %w", err)
	}

	s.setState(StateStreaming)
	s.logger.Println("options stream live")

	for {
		select {
		case <-ctx.Done():
			s.setState(StateClosed)
			return ctx.Err()
		default:
		}

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			s.setState(StateClosed)
			return fmt.Errorf("options stream read: %w", err)
		}
		if msgType != websocket.BinaryMessage && msgType != websocket.TextMessage {
			continue
		}
		s.handleFrame(data)
	}
}

func (s *OptionsSession) authenticate() error {
	auth := map[string]string{"action": "auth", "key": s.cfg.APIKey, "secret": s.cfg.APISecret}
	payload, err := msgpack.Marshal(auth)
	if err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return err
	}

	s.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return err
	}
	s.conn.SetReadDeadline(time.Time{})

	frames := decodeFrames(data)
	for _, f := range frames {
		if f.T == "success" {
			s.authenticated.Store(true)
			return nil
		}
		if f.T == "error" {
			return fmt.Errorf("server rejected auth: %s", f.Msg)
		}
	}
	return fmt.Errorf("unexpected auth response")
}

func (s *OptionsSession) subscribe() error {
	channels := map[string]interface{}{"action": "subscribe", "trades": s.cfg.Symbols}
	if s.cfg.SubscribeQuotes {
		channels["quotes"] = s.cfg.Symbols
	}
	payload, err := msgpack.Marshal(channels)
	if err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		return err
	}
	s.subscribed.Store(true)
	return nil
}

func decodeFrames(data []byte) []optionsWireFrame {
	var arr []optionsWireFrame
	if err := msgpack.Unmarshal(data, &arr); err == nil {
		return arr
	}
	var single optionsWireFrame
	if err := msgpack.Unmarshal(data, &single); err == nil {
		return []optionsWireFrame{single}
	}
	return nil
}

func (s *OptionsSession) handleFrame(data []byte) {
	for _, f := range decodeFrames(data) {
		switch f.T {
		case "success":
			s.authenticated.Store(true)
		case "subscription":
			// confirmation only, nothing to act on
		case "error":
			if s.handlers.OnError != nil {
				s.handlers.OnError(fmt.Errorf("options stream server error: %s (code %d)", f.Msg, f.Code))
			}
		case "t":
			if s.handlers.OnOptionTrade != nil {
				s.handlers.OnOptionTrade(OptionTrade{
					Symbol: f.S, Price: f.P, Size: f.Size, Exchange: f.X, Condition: f.C,
					Time: parseFeedTime(f.Ts),
				})
			}
		case "q":
			if s.handlers.OnOptionQuote != nil {
				s.handlers.OnOptionQuote(OptionQuote{
					Symbol: f.S, BidPrice: f.BP, BidSize: f.BS, BidExch: f.BX,
					AskPrice: f.AP, AskSize: f.AS, AskExch: f.AX, Condition: f.C,
					Time: parseFeedTime(f.Ts),
				})
			}
		}
	}
}

func parseFeedTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
