package bytecodec

import (
	"fmt"
	"math/bits"
)

// Reserved LZW codes. Table entries start at lzwFirst.
const (
	lzwClear = 256
	lzwEOI   = 257
	lzwFirst = 258
)

const (
	// DefaultMaxCodeWidth gives a table of 1<<12 - 258 entries.
	DefaultMaxCodeWidth = 12
	minCodeWidth        = 9
	maxCodeWidthLimit   = 24
)

func clampCodeWidth(w int) int {
	if w <= 0 {
		return DefaultMaxCodeWidth
	}
	if w < minCodeWidth {
		return minCodeWidth
	}
	if w > maxCodeWidthLimit {
		return maxCodeWidthLimit
	}
	return w
}

// codeWidth is the number of bits used for the next code while the table
// holds size entries.
func codeWidth(size int) uint8 {
	return uint8(bits.Len(uint(size + lzwFirst)))
}

// lzwKey identifies the table entry made of the sequence for code followed
// by b.
func lzwKey(code uint32, b byte) uint64 {
	return uint64(code)<<8 | uint64(b)
}

// LZWEncoder compresses a byte stream with the TIFF flavour of LZW: codes
// are written msb-first and grow from 9 bits as the table fills.
//
// Matching is greedy longest-prefix. Each table entry extends an earlier
// code by one byte, so the table is kept as a prefix tree keyed by
// (code, next byte). When the same sequence is added twice the first entry
// is the one that gets matched.
type LZWEncoder struct {
	limit int // table capacity: 1<<maxCodeWidth - 258

	next map[uint64]uint32
	size int

	pending []byte

	out  outBuffer
	bw   bitWriter
	done bool
}

// NewLZWEncoder returns an encoder whose table holds at most
// 1<<maxCodeWidth - 258 entries. A maxCodeWidth of zero selects
// DefaultMaxCodeWidth; other values are clamped to [9, 24].
func NewLZWEncoder(maxCodeWidth int) *LZWEncoder {
	w := clampCodeWidth(maxCodeWidth)
	e := &LZWEncoder{
		limit: 1<<w - lzwFirst,
		next:  make(map[uint64]uint32),
	}
	e.bw = newBitWriter(&e.out)
	e.bw.writeBits(lzwClear, codeWidth(0))
	return e
}

// Update implements Codec.
func (e *LZWEncoder) Update(p []byte, sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	e.pending = append(e.pending, p...)
	return e.encode(false, sink)
}

// Finalize implements Codec. It encodes the held-back tail, writes the
// end-of-information code and pads the last byte with zeros.
func (e *LZWEncoder) Finalize(sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	e.done = true
	if err := e.encode(true, sink); err != nil {
		return err
	}
	e.bw.writeBits(lzwEOI, codeWidth(e.size))
	e.bw.flush()
	return e.out.flush(sink)
}

// encode consumes pending input. Unless final is set it stops at the first
// position whose longest match runs into the end of the input, since more
// bytes could still extend it.
func (e *LZWEncoder) encode(final bool, sink Sink) error {
	p := e.pending
	for len(p) > 0 {
		code := uint32(p[0])
		n := 1
		for n < len(p) {
			c, ok := e.next[lzwKey(code, p[n])]
			if !ok {
				break
			}
			code = c
			n++
		}
		if n == len(p) && !final {
			break
		}

		width := codeWidth(e.size)
		e.bw.writeBits(code, width)

		if e.size >= e.limit {
			e.bw.writeBits(lzwClear, width)
			e.reset()
		} else {
			if n < len(p) {
				k := lzwKey(code, p[n])
				if _, ok := e.next[k]; !ok {
					e.next[k] = uint32(lzwFirst + e.size)
				}
			}
			// At the very end of input the entry repeats the match; it
			// still counts towards the table size the decoder tracks.
			e.size++
		}
		p = p[n:]

		if err := e.out.flushIfFull(sink); err != nil {
			return err
		}
	}
	e.pending = append(e.pending[:0], p...)
	return nil
}

func (e *LZWEncoder) reset() {
	clear(e.next)
	e.size = 0
}

// lzwEntry is one decoder table entry: the sequence of prefix, followed by
// suffix once the entry is complete. The newest entry stays incomplete until
// the next code supplies its last byte.
type lzwEntry struct {
	prefix   uint32
	suffix   byte
	first    byte
	length   int
	complete bool
}

// LZWDecoder reverses LZWEncoder. Input may be pushed in any number of
// chunks; decoding stops at the end-of-information code and later input is
// ignored.
type LZWDecoder struct {
	limit int

	table   []lzwEntry
	scratch []byte

	br   bitReader
	eoi  bool
	out  outBuffer
	done bool
}

// NewLZWDecoder returns a decoder for streams written with the given
// maximum code width. A maxCodeWidth of zero selects DefaultMaxCodeWidth.
func NewLZWDecoder(maxCodeWidth int) *LZWDecoder {
	w := clampCodeWidth(maxCodeWidth)
	return &LZWDecoder{
		limit: 1<<w - lzwFirst,
	}
}

// DecodeLZW decodes a complete LZW stream written with DefaultMaxCodeWidth.
func DecodeLZW(data []byte) ([]byte, error) {
	return Process(NewLZWDecoder(DefaultMaxCodeWidth), data)
}

// EncodeLZW compresses data in one call with DefaultMaxCodeWidth.
func EncodeLZW(data []byte) ([]byte, error) {
	return Process(NewLZWEncoder(DefaultMaxCodeWidth), data)
}

// Update implements Codec.
func (d *LZWDecoder) Update(p []byte, sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	for _, b := range p {
		if d.eoi {
			break
		}
		d.br.push(b)
		if err := d.drain(); err != nil {
			return err
		}
		if err := d.out.flushIfFull(sink); err != nil {
			return err
		}
	}
	return nil
}

// Finalize implements Codec. A stream without an end-of-information code is
// accepted; whatever was decoded is flushed.
func (d *LZWDecoder) Finalize(sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	d.done = true
	return d.out.flush(sink)
}

// drain decodes every complete code held by the bit reader. The width of
// each code follows the table size, which a clear code resets to zero.
func (d *LZWDecoder) drain() error {
	for !d.eoi {
		code, ok := d.br.readBits(codeWidth(len(d.table)))
		if !ok {
			return nil
		}
		if err := d.decode(code); err != nil {
			return err
		}
	}
	return nil
}

func (d *LZWDecoder) decode(code uint32) error {
	switch {
	case code == lzwEOI:
		d.eoi = true
		return nil
	case code == lzwClear:
		d.table = d.table[:0]
		return nil
	case code < lzwClear:
		d.extendLast(byte(code))
		d.out.writeByte(byte(code))
	default:
		idx := int(code - lzwFirst)
		if idx >= len(d.table) {
			return fmt.Errorf("lzw: code %d beyond table of %d entries: %w", code, len(d.table), ErrInvalidInputData)
		}
		// Completing the newest entry first makes a code that refers to it
		// (the cScSc case) resolve to its full sequence.
		d.extendLast(d.table[idx].first)
		d.out.write(d.expand(code))
	}
	if len(d.table) > d.limit {
		return fmt.Errorf("lzw: table exceeds %d entries without a clear code: %w", d.limit, ErrInvalidInputData)
	}
	d.table = append(d.table, lzwEntry{
		prefix: code,
		first:  d.firstByte(code),
		length: d.seqLen(code),
	})
	return nil
}

// extendLast completes the newest table entry with b.
func (d *LZWDecoder) extendLast(b byte) {
	if len(d.table) == 0 {
		return
	}
	last := &d.table[len(d.table)-1]
	if last.complete {
		return
	}
	last.suffix = b
	last.length++
	last.complete = true
}

func (d *LZWDecoder) seqLen(code uint32) int {
	if code < lzwClear {
		return 1
	}
	return d.table[code-lzwFirst].length
}

func (d *LZWDecoder) firstByte(code uint32) byte {
	if code < lzwClear {
		return byte(code)
	}
	return d.table[code-lzwFirst].first
}

// expand writes the sequence for code into the scratch buffer, walking the
// prefix chain from the last byte back to the first.
func (d *LZWDecoder) expand(code uint32) []byte {
	n := d.seqLen(code)
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n, 2*n)
	}
	buf := d.scratch[:n]
	i := n
	for code >= lzwFirst {
		e := &d.table[code-lzwFirst]
		if e.complete {
			i--
			buf[i] = e.suffix
		}
		code = e.prefix
	}
	buf[i-1] = byte(code)
	return buf
}
