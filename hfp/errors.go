package hfp

import "errors"

// Sentinel errors for the outcomes spec'd in the error-handling design:
// BadMessage/NotSupported/ConnReset/TimedOut terminate or redirect
// handling; everything else not listed here is a best-effort I/O error
// that gets logged and the session continues.
var (
	// ErrBadMessage is returned by the reader when the peer sent bytes
	// that don't form a valid AT frame. The caller should drop the bytes
	// and keep reading.
	ErrBadMessage = errors.New("hfp: malformed AT message")

	// ErrNotSupported is returned when the peer replies ERROR to a
	// command we sent as part of the SLC handshake. The session ends.
	ErrNotSupported = errors.New("hfp: peer returned ERROR")

	// ErrConnReset is returned when the RFCOMM stream closes (EOF or a
	// zero-length read). The session ends. Other read errors are
	// returned as they are and end the session too.
	ErrConnReset = errors.New("hfp: connection reset")

	// ErrTimedOut is returned when the SLC retry budget is exhausted.
	// The session ends.
	ErrTimedOut = errors.New("hfp: SLC handshake timed out")

	// ErrNoRole is returned by ConfigBuilder.Build when no Role was set.
	ErrNoRole = errors.New("hfp: no role configured")
)
