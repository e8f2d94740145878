package marketdata

import "errors"

// Sentinel errors for the options table and analytics pipeline.
// Callers use errors.Is against these rather than matching strings.
// The stream sessions do not return these; they report dial, read and
// server errors as their own wrapped errors.
var (
	// ErrTransport names a transport failure (dial, unexpected close,
	// read/write error). No function in this module returns it.
	ErrTransport = errors.New("marketdata: transport failure")
	// ErrProtocol names a frame whose envelope doesn't match the
	// expected discriminator or session state. No function in this
	// module returns it.
	ErrProtocol = errors.New("marketdata: protocol violation")
	// ErrParse covers an OCC symbol that failed to parse on Upsert, or
	// an expiry that failed to parse in ComputeAnalytics.
	ErrParse = errors.New("marketdata: parse failure")
	// ErrDataGap covers a row with no usable reference price, an
	// underlying with no cached spot price, or an expired contract.
	ErrDataGap = errors.New("marketdata: data gap")
	// ErrNumericalFailure covers pricing inputs that produce NaN/Inf.
	// An implied-vol solve that does not converge is not an error; it
	// is reported through the Converged flag on the analytics result.
	ErrNumericalFailure = errors.New("marketdata: numerical failure")
	// ErrCapacityExceeded is returned when the options table is full
	// and a new symbol is observed.
	ErrCapacityExceeded = errors.New("marketdata: capacity exceeded")
)
