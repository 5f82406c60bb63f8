package bytecodec

import (
	"bytes"
	"fmt"
	"io"
)

// sinkWriter adapts a Sink to io.Writer.
type sinkWriter Sink

func (w sinkWriter) Write(p []byte) (int, error) {
	if err := w(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// writeChunked hands p to sink in pieces of at most flushThreshold bytes.
func writeChunked(sink Sink, p []byte) error {
	for len(p) > 0 {
		n := min(len(p), flushThreshold)
		if err := sink(p[:n]); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}

// writerEncoder drives a compressing io.WriteCloser. Compressed bytes are
// collected in buf and passed on once flushThreshold is reached.
type writerEncoder struct {
	name    string
	buf     bytes.Buffer
	w       io.WriteCloser
	release func()
	done    bool
}

// newWriterEncoder builds the codec and then the writer, which must target
// the codec's own buffer.
func newWriterEncoder(name string, open func(io.Writer) (io.WriteCloser, func(), error)) (Codec, error) {
	e := &writerEncoder{name: name}
	w, release, err := open(&e.buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	e.w, e.release = w, release
	return e, nil
}

// Update implements Codec.
func (e *writerEncoder) Update(p []byte, sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	if _, err := e.w.Write(p); err != nil {
		return fmt.Errorf("%s: %w", e.name, err)
	}
	if e.buf.Len() < flushThreshold {
		return nil
	}
	return e.flush(sink)
}

// Finalize implements Codec.
func (e *writerEncoder) Finalize(sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	e.done = true
	err := e.w.Close()
	if e.release != nil {
		e.release()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", e.name, err)
	}
	return e.flush(sink)
}

func (e *writerEncoder) flush(sink Sink) error {
	if e.buf.Len() == 0 {
		return nil
	}
	err := sink(e.buf.Bytes())
	e.buf.Reset()
	return err
}

// bufferedDecoder collects the whole compressed input and decodes it on
// Finalize. The external decompressors are pull based, and running them
// against pushed input would need a goroutine per stream.
type bufferedDecoder struct {
	name   string
	in     []byte
	decode func(in []byte, sink Sink) error
	done   bool
}

// Update implements Codec.
func (d *bufferedDecoder) Update(p []byte, sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	d.in = append(d.in, p...)
	return nil
}

// Finalize implements Codec.
func (d *bufferedDecoder) Finalize(sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	d.done = true
	if len(d.in) == 0 {
		return nil
	}
	if err := d.decode(d.in, sink); err != nil {
		return fmt.Errorf("%s: %w", d.name, err)
	}
	return nil
}

// copyTo streams r into sink through a reusable buffer.
func copyTo(sink Sink, r io.Reader) error {
	buf := make([]byte, flushThreshold)
	_, err := io.CopyBuffer(sinkWriter(sink), r, buf)
	return err
}
