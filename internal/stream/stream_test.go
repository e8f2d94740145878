package stream

import (
	"encoding/json"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func TestDecodeFramesArray(t *testing.T) {
	frames := []optionsWireFrame{
		{T: "t", S: "QQQ250801C00560000", P: 12.5, Size: 3},
		{T: "q", S: "QQQ250801C00560000", BP: 12.0, AP: 13.0},
	}
	data, err := msgpack.Marshal(frames)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded := decodeFrames(data)
	if len(decoded) != 2 {
		t.Fatalf("decoded %d frames, want 2", len(decoded))
	}
	if decoded[0].T != "t" || decoded[1].T != "q" {
		t.Errorf("unexpected frame order: %+v", decoded)
	}
}

func TestDecodeFramesSingleMap(t *testing.T) {
	frame := optionsWireFrame{T: "success"}
	data, err := msgpack.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	decoded := decodeFrames(data)
	if len(decoded) != 1 || decoded[0].T != "success" {
		t.Fatalf("decoded = %+v, want single success frame", decoded)
	}
}

func TestOptionsSessionHandleFrameDispatchesTrade(t *testing.T) {
	var got OptionTrade
	called := false
	s := NewOptionsSession(OptionsConfig{}, Handlers{
		OnOptionTrade: func(tr OptionTrade) { got = tr; called = true },
	})

	data, _ := msgpack.Marshal(optionsWireFrame{T: "t", S: "SPY250801C00450000", P: 4.5, Size: 2})
	s.handleFrame(data)

	if !called {
		t.Fatal("expected OnOptionTrade to be invoked")
	}
	if got.Symbol != "SPY250801C00450000" || got.Price != 4.5 {
		t.Errorf("unexpected trade: %+v", got)
	}
}

func TestOptionsSessionHandleFrameDispatchesError(t *testing.T) {
	var errMsg string
	s := NewOptionsSession(OptionsConfig{}, Handlers{
		OnError: func(err error) { errMsg = err.Error() },
	})

	data, _ := msgpack.Marshal(optionsWireFrame{T: "error", Msg: "bad subscription", Code: 400})
	s.handleFrame(data)

	if errMsg == "" {
		t.Fatal("expected OnError to be invoked")
	}
}

func TestEquitiesSessionHandleFrameDispatchesQuote(t *testing.T) {
	var got EquityQuote
	s := NewEquitiesSession(EquitiesConfig{}, Handlers{
		OnEquityQuote: func(q EquityQuote) { got = q },
	})

	raw, _ := json.Marshal(equitiesWireFrame{Type: "q", Symbol: "QQQ", BidPrice: 559.9, AskPrice: 560.1})
	s.handleFrame(raw)

	if got.Symbol != "QQQ" || got.BidPrice != 559.9 {
		t.Errorf("unexpected quote: %+v", got)
	}
}

func TestStateStringValues(t *testing.T) {
	cases := map[State]string{
		StateConnecting:     "CONNECTING",
		StateAuthenticating: "AUTHENTICATING",
		StateSubscribing:    "SUBSCRIBING",
		StateStreaming:      "STREAMING",
		StateClosed:         "CLOSED",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
