// Package occsymbol parses and renders OCC-style option symbols:
// TICKER + YYMMDD + [C|P] + STRIKE*1000 zero-padded to 8 digits.
package occsymbol

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformed is returned when a symbol does not contain a valid
// YYMMDD[C|P]######## anchor.
var ErrMalformed = errors.New("occsymbol: malformed option symbol")

// OptionType is Call or Put.
type OptionType byte

const (
	Call OptionType = 'C'
	Put  OptionType = 'P'
)

func (t OptionType) String() string {
	if t == Call {
		return "Call"
	}
	return "Put"
}

// Details is the immutable identity of an option contract, parsed
// from its symbol.
type Details struct {
	Symbol     string
	Underlying string
	Expiry     string // YYMMDD
	Type       OptionType
	Strike     float64
}

// Parse scans symbol from index 1 for the first position where
// digit*6, [C|P], digit holds; everything before that anchor is the
// underlying. Fails with ErrMalformed when the symbol is too short or
// no such anchor exists.
func Parse(symbol string) (Details, error) {
	if len(symbol) < 15 {
		return Details{}, ErrMalformed
	}

	anchor := -1
	for i := 1; i <= len(symbol)-15; i++ {
		if isAnchor(symbol, i) {
			anchor = i
			break
		}
	}
	if anchor < 0 {
		return Details{}, ErrMalformed
	}

	underlying := symbol[:anchor]
	expiry := symbol[anchor : anchor+6]
	typeByte := symbol[anchor+6]
	strikeStr := symbol[anchor+7 : anchor+15]

	if typeByte != byte(Call) && typeByte != byte(Put) {
		return Details{}, ErrMalformed
	}

	strikeInt, err := strconv.Atoi(strikeStr)
	if err != nil {
		return Details{}, ErrMalformed
	}

	return Details{
		Symbol:     symbol,
		Underlying: underlying,
		Expiry:     expiry,
		Type:       OptionType(typeByte),
		Strike:     float64(strikeInt) / 1000.0,
	}, nil
}

// isAnchor reports whether symbol[i:i+6] are digits (YYMMDD),
// symbol[i+6] is C or P, and symbol[i+7] is a digit (strike start).
func isAnchor(symbol string, i int) bool {
	for j := 0; j < 6; j++ {
		if !isDigit(symbol[i+j]) {
			return false
		}
	}
	if symbol[i+6] != byte(Call) && symbol[i+6] != byte(Put) {
		return false
	}
	return isDigit(symbol[i+7])
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Render produces the human-readable form:
// "UNDERLYING MM/DD/YY $STRIKE Call|Put".
func Render(d Details) string {
	if len(d.Expiry) != 6 {
		return d.Symbol
	}
	yy := d.Expiry[0:2]
	mm := d.Expiry[2:4]
	dd := d.Expiry[4:6]
	return fmt.Sprintf("%s %s/%s/%s $%.2f %s", d.Underlying, mm, dd, yy, d.Strike, d.Type.String())
}
