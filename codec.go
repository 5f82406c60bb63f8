// Package bytecodec implements incremental byte-stream codecs used by image
// and font writers: LZW and PackBits compression, adaptive scanline
// filtering, and the 7-pass progressive-scan sequencer. Every codec accepts
// input in arbitrarily small chunks and produces the same bytes it would
// produce for the whole input at once.
//
// The general-purpose compressors (zstd, DEFLATE, Brotli) implement the same
// contract on top of external libraries and can be selected through
// NewEncoder and NewDecoder.

package bytecodec

import (
	"errors"
)

var (
	// ErrEndOfStream is returned when Update or Finalize is called on a codec
	// that has already been finalized.
	ErrEndOfStream = errors.New("bytecodec: end of stream")
	// ErrInvalidInputData is returned when compressed input refers to data
	// that cannot exist, such as an LZW code beyond the current table.
	ErrInvalidInputData = errors.New("bytecodec: invalid input data")
	// ErrUnexpectedEndOfStream is returned when input stops in the middle of
	// a record.
	ErrUnexpectedEndOfStream = errors.New("bytecodec: unexpected end of stream")
)

// flushThreshold is the size at which buffered output is handed to the sink.
const flushThreshold = 4096

// Sink receives output chunks. The slice is only valid for the duration of
// the call; a sink that keeps the bytes must copy them.
type Sink func([]byte) error

// Codec is the two-phase streaming contract shared by every encoder and
// decoder in this package.
//
// Update consumes p and may call sink any number of times. Splitting the
// input across several Update calls produces the same output bytes as a
// single call with the concatenation. Finalize flushes buffered state and
// writes any terminator; it must be called exactly once. Both methods return
// ErrEndOfStream after Finalize.
//
// A Codec is not safe for concurrent use.
type Codec interface {
	Update(p []byte, sink Sink) error
	Finalize(sink Sink) error
}

// FinalizeWith feeds p to c and then finalizes it.
func FinalizeWith(c Codec, p []byte, sink Sink) error {
	if err := c.Update(p, sink); err != nil {
		return err
	}
	return c.Finalize(sink)
}

// Process runs c over the whole of p and returns the collected output.
func Process(c Codec, p []byte) ([]byte, error) {
	var out []byte
	err := FinalizeWith(c, p, func(b []byte) error {
		out = append(out, b...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// Chain returns a sink that pushes its input through codecs in order and
// delivers the result of the last one to sink, together with a function that
// finalizes the codecs front to back.
func Chain(sink Sink, codecs ...Codec) (Sink, func() error) {
	sinks := make([]Sink, len(codecs)+1)
	sinks[len(codecs)] = sink
	for i := len(codecs) - 1; i >= 0; i-- {
		c, next := codecs[i], sinks[i+1]
		sinks[i] = func(b []byte) error {
			return c.Update(b, next)
		}
	}
	finalize := func() error {
		for i, c := range codecs {
			if err := c.Finalize(sinks[i+1]); err != nil {
				return err
			}
		}
		return nil
	}
	return sinks[0], finalize
}

// outBuffer batches output bytes before they reach a sink.
type outBuffer struct {
	buf []byte
}

func (o *outBuffer) writeByte(b byte) {
	o.buf = append(o.buf, b)
}

func (o *outBuffer) write(p []byte) {
	o.buf = append(o.buf, p...)
}

// flushIfFull hands the buffer to sink once it reaches flushThreshold.
func (o *outBuffer) flushIfFull(sink Sink) error {
	if len(o.buf) < flushThreshold {
		return nil
	}
	return o.flush(sink)
}

// flush hands any buffered bytes to sink and clears the buffer.
func (o *outBuffer) flush(sink Sink) error {
	if len(o.buf) == 0 {
		return nil
	}
	err := sink(o.buf)
	o.buf = o.buf[:0]
	return err
}
