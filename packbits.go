package bytecodec

import "fmt"

const (
	packBitsMaxRun     = 128
	packBitsTerminator = 128
)

// PackBitsEncoder run-length encodes a byte stream.
//
// Control bytes: 0..127 copy the next n+1 bytes, 129..255 repeat the next
// byte 257-n times, 128 ends the stream.
type PackBitsEncoder struct {
	literal []byte // pending distinct bytes, at most 128
	run     byte   // byte of the current run
	runLen  int    // 0 when no byte is held

	out  outBuffer
	done bool
}

// NewPackBitsEncoder returns a ready encoder.
func NewPackBitsEncoder() *PackBitsEncoder {
	return &PackBitsEncoder{literal: make([]byte, 0, packBitsMaxRun)}
}

// EncodePackBits compresses data in one call.
func EncodePackBits(data []byte) ([]byte, error) {
	return Process(NewPackBitsEncoder(), data)
}

// Update implements Codec.
func (e *PackBitsEncoder) Update(p []byte, sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	for _, b := range p {
		if e.runLen > 0 && b == e.run {
			e.runLen++
			if e.runLen == 2 {
				e.flushLiteral()
			}
			if e.runLen == packBitsMaxRun {
				e.flushRun()
			}
		} else {
			e.flushRun()
			e.run = b
			e.runLen = 1
		}
		if err := e.out.flushIfFull(sink); err != nil {
			return err
		}
	}
	return nil
}

// Finalize implements Codec.
func (e *PackBitsEncoder) Finalize(sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	e.done = true
	e.flushRun()
	e.flushLiteral()
	e.out.writeByte(packBitsTerminator)
	return e.out.flush(sink)
}

// flushRun writes a run of two or more bytes as a repeat record. A single
// held byte joins the literal record instead.
func (e *PackBitsEncoder) flushRun() {
	switch {
	case e.runLen >= 2:
		e.out.writeByte(byte(257 - e.runLen))
		e.out.writeByte(e.run)
	case e.runLen == 1:
		e.literal = append(e.literal, e.run)
		if len(e.literal) == packBitsMaxRun {
			e.flushLiteral()
		}
	}
	e.runLen = 0
}

func (e *PackBitsEncoder) flushLiteral() {
	if len(e.literal) == 0 {
		return
	}
	e.out.writeByte(byte(len(e.literal) - 1))
	e.out.write(e.literal)
	e.literal = e.literal[:0]
}

// PackBitsDecoder reverses PackBitsEncoder. Control byte 128 is skipped.
type PackBitsDecoder struct {
	literal int  // literal bytes still to copy
	repeat  int  // repeat count waiting for its byte
	control byte // control byte of the record in progress

	out  outBuffer
	done bool
}

// NewPackBitsDecoder returns a ready decoder.
func NewPackBitsDecoder() *PackBitsDecoder {
	return &PackBitsDecoder{}
}

// DecodePackBits decodes a complete PackBits stream.
func DecodePackBits(data []byte) ([]byte, error) {
	return Process(NewPackBitsDecoder(), data)
}

// Update implements Codec.
func (d *PackBitsDecoder) Update(p []byte, sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	for len(p) > 0 {
		switch {
		case d.literal > 0:
			n := min(d.literal, len(p))
			d.out.write(p[:n])
			d.literal -= n
			p = p[n:]
		case d.repeat > 0:
			for i := 0; i < d.repeat; i++ {
				d.out.writeByte(p[0])
			}
			d.repeat = 0
			p = p[1:]
		default:
			c := p[0]
			p = p[1:]
			d.control = c
			switch {
			case c < 128:
				d.literal = int(c) + 1
			case c > 128:
				d.repeat = 257 - int(c)
			}
		}
		if err := d.out.flushIfFull(sink); err != nil {
			return err
		}
	}
	return nil
}

// Finalize implements Codec. It fails with ErrUnexpectedEndOfStream when
// the input stopped inside a record.
func (d *PackBitsDecoder) Finalize(sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	d.done = true
	if d.literal > 0 || d.repeat > 0 {
		missing := d.literal
		if d.repeat > 0 {
			missing = 1
		}
		return fmt.Errorf("packbits: record with control byte %d is missing %d bytes: %w", d.control, missing, ErrUnexpectedEndOfStream)
	}
	return d.out.flush(sink)
}
