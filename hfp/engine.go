package hfp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blueheadset/rfcomm-hfp/at"
)

// Signal is a one-byte code delivered on the engine's signal channel,
// the Go stand-in for the original design's sig_fd.
type Signal int

const (
	// SignalSetVolume is posted by the audio sibling after it writes a
	// new mic/speaker gain directly into the shared transport.
	SignalSetVolume Signal = iota
)

// Engine runs the event loop for one RFCOMM session: it multiplexes the
// RFCOMM stream, the signal channel, and the optional external AT
// handler, driving conn's SLC state machine until the session ends.
type Engine struct {
	conn *Conn

	sig     chan Signal
	handler io.ReadWriteCloser

	log *slog.Logger

	// Cleanup, if non-nil, is invoked exactly once when Run returns, for
	// any reason, to release the shared transport.
	Cleanup func()
}

// NewEngine returns an Engine driving conn. handler may be nil if no
// external AT-handler sibling is configured for this session.
func NewEngine(conn *Conn, handler io.ReadWriteCloser, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		conn:    conn,
		sig:     make(chan Signal, 8),
		handler: handler,
		log:     log,
	}
	conn.HandlerConn = handler
	conn.Log = log
	return e
}

// Signal posts sig to the engine from another goroutine (the audio
// sibling). The channel buffers 8 signals; once it is full, Signal blocks
// until Run drains it, and blocks for good if Run has already returned.
func (e *Engine) Signal(sig Signal) {
	e.sig <- sig
}

type btResult struct {
	frame at.Frame
	err   error
}

type handlerResult struct {
	data []byte
	err  error
}

// Run drives the session until it ends: a terminal error, the context
// being cancelled, or (not currently possible for this protocol) a clean
// shutdown. Cancellation is only observed at the multiplexing wait; once
// a frame has been pulled off a channel, its handler always runs to
// completion before ctx is checked again.
func (e *Engine) Run(ctx context.Context) error {
	// btLoop and handlerLoop are supervised by an errgroup purely for
	// join/cancellation bookkeeping: each reports its terminal condition
	// over its own result channel (consumed below), and always returns
	// nil to the group itself so g.Wait only ever blocks on their exit,
	// never shadows the real error. Closing the reader (and the external
	// handler, if any) is what actually unblocks their parked Read calls;
	// cancelling runCtx is what unblocks a feeder parked trying to send a
	// result nobody will ever drain again (the loop below has already
	// returned). Deferred in reverse of that dependency: the closes run
	// first, then Cleanup, then the cancel, then the join.
	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	defer g.Wait()
	defer cancel()
	if e.Cleanup != nil {
		defer e.Cleanup()
	}
	defer e.closeHandler()
	defer e.conn.Reader.Close()

	btFrames := make(chan btResult, 1)
	g.Go(func() error {
		e.btLoop(gctx, btFrames)
		return nil
	})

	var handlerBytes chan handlerResult
	if e.handler != nil {
		handlerBytes = make(chan handlerResult, 1)
		h := e.handler
		g.Go(func() error {
			e.handlerLoop(gctx, h, handlerBytes)
			return nil
		})
	}

	for {
		if err := Drive(e.conn, false); err != nil {
			return err
		}

		var timer *time.Timer
		var timeoutC <-chan time.Time
		if e.conn.HasExpectation() {
			timer = time.NewTimer(e.conn.Cfg.SLCTimeout)
			timeoutC = timer.C
		}

		select {
		case <-gctx.Done():
			return ctx.Err()

		case sig := <-e.sig:
			e.handleSignal(sig)

		case res, ok := <-btFrames:
			if !ok {
				return ErrConnReset
			}
			if res.err != nil {
				return res.err
			}
			if err := e.dispatchBT(res.frame); err != nil {
				if !errors.Is(err, ErrBadMessage) {
					return err
				}
				e.log.Warn("malformed AT message value", "command", res.frame.Command, "value", res.frame.Value)
			}

		case res, ok := <-handlerBytes:
			if !ok || res.err != nil {
				e.closeHandler()
				handlerBytes = nil
				continue
			}
			if err := e.conn.Writer.WriteRaw(res.data); err != nil {
				e.log.Warn("write to bt_fd failed forwarding handler bytes", "err", err)
			}

		case <-timeoutC:
			if err := Drive(e.conn, true); err != nil {
				return err
			}
		}

		if timer != nil {
			timer.Stop()
		}
	}
}

// btLoop continuously refills and parses AT frames off the RFCOMM
// stream, handing each one to the main loop over out. Malformed frames
// are logged and dropped here, never surfaced to the main loop, since
// BAD_MESSAGE never ends the session.
func (e *Engine) btLoop(ctx context.Context, out chan<- btResult) {
	for {
		frame, err := e.conn.Reader.ReadFrame()
		if err != nil {
			if errors.Is(err, ErrBadMessage) {
				e.log.Warn("malformed AT message", "bytes", string(e.conn.Reader.Pending()))
				e.conn.Reader.DropPending()
				continue
			}
			select {
			case out <- btResult{err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case out <- btResult{frame: frame}:
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) handlerLoop(ctx context.Context, rw io.Reader, out chan<- handlerResult) {
	buf := make([]byte, 4096)
	for {
		n, err := rw.Read(buf)
		if err != nil {
			select {
			case out <- handlerResult{err: err}:
			case <-ctx.Done():
			}
			return
		}
		if n == 0 {
			select {
			case out <- handlerResult{err: io.EOF}:
			case <-ctx.Done():
			}
			return
		}
		data := make([]byte, n)
		copy(data, buf[:n])
		select {
		case out <- handlerResult{data: data}:
		case <-ctx.Done():
			return
		}
	}
}

func (e *Engine) closeHandler() {
	if e.handler == nil {
		return
	}
	if err := e.handler.Close(); err != nil {
		e.log.Warn("closing external AT handler", "err", err)
	}
	e.handler = nil
	e.conn.HandlerConn = nil
}

// dispatchBT implements §4.6's bt_fd POLLIN branch: expected-handler
// takes precedence, otherwise the static registry; unmatched frames are
// forwarded to the external handler when one is open.
func (e *Engine) dispatchBT(frame at.Frame) error {
	c := e.conn

	if h, ok := c.TakeExpected(frame); ok {
		return e.runHandler(h, frame)
	}

	h, found := getHandler(frame)
	if e.handler != nil {
		if err := e.forward(frame); err != nil {
			e.log.Warn("external AT handler write failed, closing", "err", err)
			e.closeHandler()
		}
	}

	if !found {
		if e.handler == nil {
			if frame.Type != at.Resp {
				return c.Writer.WriteError()
			}
			e.log.Warn("unsolicited AT response with no handler", "command", frame.Command, "value", frame.Value)
		}
		return nil
	}
	return e.runHandler(h, frame)
}

func (e *Engine) forward(frame at.Frame) error {
	wire := at.Build(frame)
	_, err := e.conn.HandlerConn.Write(wire)
	return err
}

func (e *Engine) runHandler(h Handler, frame at.Frame) error {
	return h(e.conn, frame)
}

// handleSignal implements §4.6's sig_fd branch.
func (e *Engine) handleSignal(sig Signal) {
	if sig != SignalSetVolume {
		return
	}
	c := e.conn
	if mic := c.Transport.MicGain(); mic != c.CachedMicGain {
		c.CachedMicGain = mic
		if err := c.Writer.WriteResp("+VGM", strconv.Itoa(mic)); err != nil {
			e.log.Warn("writing +VGM", "err", err)
		}
	}
	if spk := c.Transport.SpkGain(); spk != c.CachedSpkGain {
		c.CachedSpkGain = spk
		if err := c.Writer.WriteResp("+VGS", strconv.Itoa(spk)); err != nil {
			e.log.Warn("writing +VGS", "err", err)
		}
	}
}
