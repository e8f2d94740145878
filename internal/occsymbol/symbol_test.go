package occsymbol

import (
	"strings"
	"testing"
)

func TestParseQQQ(t *testing.T) {
	d, err := Parse("QQQ250801C00560000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Underlying != "QQQ" {
		t.Errorf("underlying = %q, want QQQ", d.Underlying)
	}
	if d.Expiry != "250801" {
		t.Errorf("expiry = %q, want 250801", d.Expiry)
	}
	if d.Type != Call {
		t.Errorf("type = %v, want Call", d.Type)
	}
	if d.Strike != 560.0 {
		t.Errorf("strike = %v, want 560.0", d.Strike)
	}

	rendered := Render(d)
	if !strings.Contains(rendered, "$560.00 Call") {
		t.Errorf("rendered = %q, missing $560.00 Call", rendered)
	}
}

func TestParsePut(t *testing.T) {
	d, err := Parse("AAPL240119P00175000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Type != Put {
		t.Errorf("type = %v, want Put", d.Type)
	}
	if d.Strike != 175.0 {
		t.Errorf("strike = %v, want 175.0", d.Strike)
	}
}

func TestParseMultiCharUnderlying(t *testing.T) {
	d, err := Parse("SPY240621C00450500")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Underlying != "SPY" {
		t.Errorf("underlying = %q, want SPY", d.Underlying)
	}
	if d.Strike != 450.5 {
		t.Errorf("strike = %v, want 450.5", d.Strike)
	}
}

func TestParseTooShort(t *testing.T) {
	_, err := Parse("QQQ25C0056")
	if err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParseNoAnchor(t *testing.T) {
	_, err := Parse("NOTANOPTIONSYMBOLATALL")
	if err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestParseBadTypeByte(t *testing.T) {
	// digit6 + 'X' + digit -> not a valid anchor anywhere.
	_, err := Parse("ABC250101X00010000EXTRA")
	if err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		"QQQ250801C00560000",
		"SPY240621P00450500",
		"TSLA251231C01000000",
	}
	for _, sym := range cases {
		d, err := Parse(sym)
		if err != nil {
			t.Fatalf("parse(%q) error: %v", sym, err)
		}
		rendered := Render(d)
		if !strings.Contains(rendered, d.Underlying) {
			t.Errorf("rendered %q does not contain underlying %q", rendered, d.Underlying)
		}
	}
}
