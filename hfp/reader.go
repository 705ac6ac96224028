package hfp

import (
	"errors"
	"io"

	"github.com/blueheadset/rfcomm-hfp/at"
)

// readerBufSize is the working buffer size; one extra byte is reserved so
// a reader that wanted NUL-termination would never read past the end of
// the allocation. This implementation tracks length explicitly instead,
// but keeps the same +1 headroom the original buffer used.
const readerBufSize = 4096

// Reader refills from an RFCOMM-like byte stream and splits concatenated
// AT frames out of a single read. It holds a cursor into its own buffer
// so that a read delivering N frames yields N calls to ReadFrame without
// touching the stream again.
type Reader struct {
	src io.Reader

	buf []byte
	len int
	pos int
	// drained is true when pos has consumed everything read so far and
	// the next ReadFrame must block on src again.
	drained bool
}

// NewReader returns a Reader that refills from src on demand.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src:     src,
		buf:     make([]byte, readerBufSize+1),
		drained: true,
	}
}

// ReadFrame returns the next AT frame found in the stream, refilling from
// src exactly when the buffer has been fully consumed. On a malformed
// frame it returns ErrBadMessage and leaves the cursor where it was, so
// the caller can log the offending bytes (Pending) and then discard them
// (DropPending); until they are dropped, the next call re-parses them.
// On peer close it returns ErrConnReset.
func (r *Reader) ReadFrame() (at.Frame, error) {
	for {
		if r.drained {
			if err := r.refill(); err != nil {
				return at.Frame{}, err
			}
		}

		frame, tail, err := at.Parse(r.buf[r.pos:r.len])
		if err != nil {
			return at.Frame{}, ErrBadMessage
		}

		if len(tail) == 0 {
			r.drained = true
		} else {
			r.pos = r.len - len(tail)
		}

		// Parse returns a zero Frame with an empty tail when the slice
		// was nothing but frame separators (bare \r\n noise); there is
		// nothing to dispatch, so go around again instead of handing the
		// caller a fake RAW frame.
		if frame == (at.Frame{}) {
			continue
		}
		return frame, nil
	}
}

// Pending reports the raw bytes left unparsed at the cursor, valid only
// immediately after ReadFrame returned ErrBadMessage.
func (r *Reader) Pending() []byte {
	return r.buf[r.pos:r.len]
}

// DropPending clears the cursor after the caller has logged the bytes
// rejected by a failed parse, so the next ReadFrame refills from src.
func (r *Reader) DropPending() {
	r.drained = true
}

// Close closes the underlying stream if it implements io.Closer, which
// is how Engine.Run unblocks a goroutine parked in ReadFrame when the
// session ends. It is a no-op otherwise.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// refill performs one blocking read. The Go runtime retries interrupted
// blocking syscalls internally, so unlike the original poll()-based
// source there is no EINTR case to handle here.
func (r *Reader) refill() error {
	n, err := r.src.Read(r.buf[:readerBufSize])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrConnReset
		}
		return err
	}
	if n == 0 {
		return ErrConnReset
	}
	r.len = n
	r.pos = 0
	r.drained = false
	return nil
}
