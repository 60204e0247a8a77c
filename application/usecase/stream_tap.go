package usecase

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"golang.org/x/text/encoding"

	"http-logging/domain/port"
	"http-logging/domain/service"
)

// StreamTap is a write-through decorator around a byte sink. Everything
// written is forwarded to the sink unchanged and buffered; the buffer is
// logged line by line exactly once, when the tap is closed.
//
// A tap is only ever created when debug logging is already known to be on.
type StreamTap struct {
	sink    io.Writer
	arrow   string
	log     port.Logger
	charset encoding.Encoding
	limit   int64
	// onFlush reports the number of buffered bytes and whether the body
	// was truncated, after the lines were logged.
	onFlush func(n int, truncated bool)

	mu        sync.Mutex
	buf       bytes.Buffer
	truncated bool
	closed    bool

	closeOnce sync.Once
	closeErr  error
}

// NewStreamTap creates a tap in front of sink. Lines are logged as
// "<arrow> <line>". A positive limit caps the buffered bytes; the sink
// still receives everything.
func NewStreamTap(sink io.Writer, arrow string, log port.Logger, charset encoding.Encoding, limit int64) *StreamTap {
	if sink == nil {
		sink = io.Discard
	}
	if log == nil {
		log = &port.NopLogger{}
	}
	return &StreamTap{
		sink:    sink,
		arrow:   arrow,
		log:     log,
		charset: charset,
		limit:   limit,
	}
}

// Write forwards p to the sink first. A sink error is returned unchanged and
// nothing of that write is buffered.
func (t *StreamTap) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.sink.Write(p)
	if err != nil {
		return n, err
	}
	if !t.closed {
		t.record(p[:n])
	}
	return n, nil
}

// WriteByte writes a single byte through the tap.
func (t *StreamTap) WriteByte(c byte) error {
	_, err := t.Write([]byte{c})
	return err
}

func (t *StreamTap) record(p []byte) {
	if t.limit <= 0 {
		t.buf.Write(p)
		return
	}
	room := t.limit - int64(t.buf.Len())
	if int64(len(p)) > room {
		if room > 0 {
			t.buf.Write(p[:room])
		}
		t.truncated = true
		return
	}
	t.buf.Write(p)
}

// Close finalizes the tap: the sink is closed first (if it is an io.Closer),
// then the buffered text is logged. Every call returns the result of the
// first one, and no call returns before the lines are logged.
func (t *StreamTap) Close() error {
	t.closeOnce.Do(func() {
		t.closeErr = t.flush()
	})
	return t.closeErr
}

func (t *StreamTap) flush() error {
	t.mu.Lock()
	t.closed = true
	data := t.buf.Bytes()
	truncated := t.truncated
	t.mu.Unlock()

	if closer, ok := t.sink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}

	for _, line := range service.SplitLines(service.Decode(t.charset, data)) {
		t.log.Debug(t.arrow+" "+line, port.BodyLine())
	}
	if truncated {
		t.log.Debug(fmt.Sprintf("%s ... body truncated after %d bytes", t.arrow, t.limit), port.MaxBytes(t.limit))
	}
	if t.onFlush != nil {
		t.onFlush(len(data), truncated)
	}
	return nil
}

// Buffered returns a copy of the bytes captured so far.
func (t *StreamTap) Buffered() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return bytes.Clone(t.buf.Bytes())
}

// TapReader feeds a StreamTap from a body that is pulled by its consumer,
// such as an outgoing request body read by http.Transport.
type TapReader struct {
	src io.ReadCloser
	tap *StreamTap
}

// NewTapReader tees every byte read from src into tap.
func NewTapReader(src io.ReadCloser, tap *StreamTap) *TapReader {
	return &TapReader{src: src, tap: tap}
}

func (r *TapReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 {
		// the tap of a reader has no real sink, so this cannot fail
		_, _ = r.tap.Write(p[:n])
	}
	return n, err
}

// Close closes the source, then finalizes the tap.
func (r *TapReader) Close() error {
	err := r.src.Close()
	if ferr := r.tap.Close(); err == nil {
		err = ferr
	}
	return err
}
