package hfp

import (
	"io"
	"log/slog"

	"github.com/blueheadset/rfcomm-hfp/at"
)

// Continuation is a one-shot handler installed to interpret the reply to
// a command this engine just sent. It takes precedence over the static
// registry and is cleared once consumed, which lets the same (type,
// command) pair be interpreted differently depending on whether the
// message was solicited.
type Continuation struct {
	Type    at.Type
	Command string
	Handler Handler
}

// Conn is the per-session record the event loop and every handler
// operate on. It is owned exclusively by the event-loop goroutine and
// never shared, except through the embedded references to the transport
// and device records.
type Conn struct {
	Role Role
	Cfg  Config

	Reader *Reader
	Writer *Writer

	State     State
	StatePrev State
	Retries   int

	expected   *Continuation
	hasExpect  bool

	// IndMap is populated once the AG's +CIND=? vocabulary has been
	// parsed and is stable for the rest of the session.
	IndMap IndicatorMap

	// MSBCAvailable is AG-role-only state: it starts false and is set by
	// handleBacSet once the HF actually advertises mSBC via AT+BAC=...,
	// never by local compile-time support alone. HF-role code must read
	// Cfg.EnableMSBC directly for "do we support mSBC locally" — see
	// driveHF's +BAC codec list.
	MSBCAvailable bool
	// SelectedCodec is the codec chosen by the +BCS negotiation, or
	// CodecNone before it completes.
	SelectedCodec Codec

	// PeerFeatures is the feature bitmask the peer advertised via BRSF.
	PeerFeatures uint32

	// CachedMicGain/CachedSpkGain mirror the last gain value this engine
	// observed, used to detect which gain changed when SET_VOLUME fires.
	CachedMicGain int
	CachedSpkGain int

	Transport *SharedTransport
	Device    *DeviceRecord
	Sink      PropertySink

	// HandlerConn, if non-nil, is where inbound frames not consumed by an
	// expected-handler are forwarded, re-encoded with at.Build. The Engine
	// closes the underlying connection; this field is nilled out once it
	// closes.
	HandlerConn io.Writer

	// Ping, if non-nil, is called to nudge the audio sibling (the "sco"
	// thread in the original design) when a call/callsetup indicator
	// changes and SCO may need to come up or down.
	Ping func()

	// Log is used by handlers for best-effort warnings about malformed
	// or unrecognized peer input that doesn't rise to a protocol error.
	// Set by the Engine that owns this Conn; never nil.
	Log *slog.Logger
}

// NewConn returns a fresh session record in state Disconnected.
func NewConn(role Role, cfg Config, r io.ReadWriter, transport *SharedTransport, device *DeviceRecord, sink PropertySink) *Conn {
	if sink == nil {
		sink = NopSink{}
	}
	c := &Conn{
		Role:      role,
		Cfg:       cfg,
		Transport: transport,
		Device:    device,
		Sink:      sink,
	}
	c.Reader = NewReader(r)
	c.Writer = NewWriter(r, nil)
	c.Log = slog.Default()
	return c
}

// Expect installs a one-shot continuation for the next frame matching
// (typ, command). It replaces any previously installed continuation.
func (c *Conn) Expect(typ at.Type, command string, h Handler) {
	c.expected = &Continuation{Type: typ, Command: command, Handler: h}
	c.hasExpect = true
}

// TakeExpected returns and clears the installed continuation if it
// matches frame, or ok=false if there is none or it doesn't match.
func (c *Conn) TakeExpected(frame at.Frame) (Handler, bool) {
	if !c.hasExpect || c.expected == nil {
		return nil, false
	}
	if c.expected.Type != frame.Type || c.expected.Command != frame.Command {
		return nil, false
	}
	h := c.expected.Handler
	c.expected = nil
	c.hasExpect = false
	return h, true
}

// HasExpectation reports whether a continuation is currently armed,
// which governs whether the SLC timeout applies this tick.
func (c *Conn) HasExpectation() bool {
	return c.hasExpect
}

// ClearExpectation drops any armed continuation without running it.
func (c *Conn) ClearExpectation() {
	c.expected = nil
	c.hasExpect = false
}

// Advance moves State forward to s. It never touches StatePrev or
// Retries; NoteTick is solely responsible for observing the change and
// resetting the retry counter, so that retries are provably zero at any
// iteration where State != StatePrev.
func (c *Conn) Advance(s State) {
	if s > c.State {
		c.State = s
	}
}

// NoteTick resets the retry counter when state has advanced since the
// previous tick, per §4.5 step 1. Called once per event-loop iteration.
func (c *Conn) NoteTick() {
	if c.State != c.StatePrev {
		c.StatePrev = c.State
		c.Retries = 0
	}
}
