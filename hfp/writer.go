package hfp

import (
	"fmt"
	"io"

	"github.com/blueheadset/rfcomm-hfp/at"
)

// Writer formats and sends AT frames over an RFCOMM-like byte stream.
type Writer struct {
	dst io.Writer
	log func(frame at.Frame, wire []byte)
}

// NewWriter returns a Writer sending to dst. If log is non-nil it is
// called with every frame immediately before the corresponding bytes hit
// the wire, so callers can trace exactly what was sent.
func NewWriter(dst io.Writer, log func(frame at.Frame, wire []byte)) *Writer {
	return &Writer{dst: dst, log: log}
}

// WriteFrame formats frame and writes it in one call. A short write is
// treated as fatal: RFCOMM is message-preserving for frames this small,
// so a partial write means the stream is broken.
func (w *Writer) WriteFrame(frame at.Frame) error {
	wire := at.Build(frame)
	if w.log != nil {
		w.log(frame, wire)
	}
	n, err := w.dst.Write(wire)
	if err != nil {
		return err
	}
	if n != len(wire) {
		return fmt.Errorf("hfp: short write: wrote %d of %d bytes", n, len(wire))
	}
	return nil
}

// WriteCmd is a convenience for emitting a CmdSet/CmdTest/CmdGet/Cmd frame.
func (w *Writer) WriteCmd(typ at.Type, command, value string) error {
	return w.WriteFrame(at.Frame{Type: typ, Command: command, Value: value})
}

// WriteResp is a convenience for emitting a named or bare response.
func (w *Writer) WriteResp(command, value string) error {
	return w.WriteFrame(at.Frame{Type: at.Resp, Command: command, Value: value})
}

// WriteOK emits a bare "OK" response.
func (w *Writer) WriteOK() error {
	return w.WriteResp("", at.OK)
}

// WriteError emits a bare "ERROR" response.
func (w *Writer) WriteError() error {
	return w.WriteResp("", at.ERROR)
}

// WriteRaw emits bytes verbatim, bypassing formatting entirely — used to
// forward traffic injected by an external AT handler.
func (w *Writer) WriteRaw(raw []byte) error {
	return w.WriteFrame(at.Frame{Type: at.Raw, Value: string(raw)})
}
