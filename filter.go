package bytecodec

import "fmt"

// Predictor is a scanline filter type. The values are the tag bytes that
// prefix each filtered row.
type Predictor uint8

const (
	PredictNone Predictor = iota
	PredictSub
	PredictUp
	PredictAverage
	PredictPaeth

	numPredictors = 5
)

func (p Predictor) String() string {
	switch p {
	case PredictNone:
		return "none"
	case PredictSub:
		return "sub"
	case PredictUp:
		return "up"
	case PredictAverage:
		return "average"
	case PredictPaeth:
		return "paeth"
	}
	return fmt.Sprintf("Predictor(%d)", uint8(p))
}

// PredictorSet restricts the filters an encoder may choose from.
type PredictorSet uint8

const PredictAll PredictorSet = 1<<numPredictors - 1

// Predictors returns the set holding ps.
func Predictors(ps ...Predictor) PredictorSet {
	var s PredictorSet
	for _, p := range ps {
		s |= 1 << p
	}
	return s
}

func (s PredictorSet) has(p Predictor) bool {
	return s&(1<<p) != 0
}

func average(a, b byte) byte {
	return byte((uint16(a) + uint16(b)) >> 1)
}

// paeth returns whichever of a (left), b (above) and c (upper left) is
// closest to a+b-c, preferring a, then b.
func paeth(a, b, c byte) byte {
	p := int16(a) + int16(b) - int16(c)
	pa := abs16(p - int16(a))
	pb := abs16(p - int16(b))
	pc := abs16(p - int16(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

// filterStride is the byte distance to the left neighbour for a pixel size.
func filterStride(bitsPerPixel int) int {
	return max(1, bitsPerPixel>>3)
}

func checkRowLength(n int) {
	if n < 1 {
		panic(fmt.Sprintf("bytecodec: invalid row length %d", n))
	}
}

// FilterEncoder applies adaptive per-row prediction to a stream of
// fixed-length rows. Each emitted row is the tag byte of the chosen filter
// followed by the filtered bytes.
//
// All five candidates are computed as bytes arrive. When a row completes,
// the candidate with the smallest sum of absolute values, reading bytes as
// signed, wins; ties go to the lower tag.
type FilterEncoder struct {
	rowLength int
	stride    int
	allowed   PredictorSet

	rows  [numPredictors][]byte // tag byte then rowLength filtered bytes
	prev  []byte                // previous row, unfiltered
	index int

	done bool
}

// NewFilterEncoder returns an encoder for rows of rowLength bytes holding
// pixels of bitsPerPixel bits, choosing among all five filters. It panics if
// rowLength is less than 1.
func NewFilterEncoder(rowLength, bitsPerPixel int) *FilterEncoder {
	return NewFilterEncoderWith(rowLength, bitsPerPixel, PredictAll)
}

// NewFilterEncoderWith is like NewFilterEncoder but only considers the
// filters in allowed. An empty set behaves like PredictAll.
func NewFilterEncoderWith(rowLength, bitsPerPixel int, allowed PredictorSet) *FilterEncoder {
	checkRowLength(rowLength)
	allowed &= PredictAll
	if allowed == 0 {
		allowed = PredictAll
	}
	e := &FilterEncoder{
		rowLength: rowLength,
		stride:    filterStride(bitsPerPixel),
		allowed:   allowed,
		prev:      make([]byte, rowLength),
	}
	for p := range e.rows {
		e.rows[p] = make([]byte, rowLength+1)
		e.rows[p][0] = byte(p)
	}
	return e
}

// Update implements Codec. Rows may be split across calls at any byte.
func (e *FilterEncoder) Update(p []byte, sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	raw := e.rows[PredictNone]
	for _, x := range p {
		i := e.index
		b := e.prev[i]
		var a, c byte
		if i >= e.stride {
			a = raw[i-e.stride+1]
			c = e.prev[i-e.stride]
		}
		raw[i+1] = x
		e.rows[PredictSub][i+1] = x - a
		e.rows[PredictUp][i+1] = x - b
		e.rows[PredictAverage][i+1] = x - average(a, b)
		e.rows[PredictPaeth][i+1] = x - paeth(a, b, c)

		e.index++
		if e.index == e.rowLength {
			if err := sink(e.rows[e.choose(e.rowLength)]); err != nil {
				return err
			}
			copy(e.prev, raw[1:])
			e.index = 0
		}
	}
	return nil
}

// Finalize implements Codec. A partial last row is filtered and emitted at
// its partial length.
func (e *FilterEncoder) Finalize(sink Sink) error {
	if e.done {
		return ErrEndOfStream
	}
	e.done = true
	if e.index == 0 {
		return nil
	}
	return sink(e.rows[e.choose(e.index)][:e.index+1])
}

// choose picks the allowed filter with the smallest cost over the first n
// bytes of the row.
func (e *FilterEncoder) choose(n int) Predictor {
	best := Predictor(0)
	bestCost := -1
	for p := PredictNone; p < numPredictors; p++ {
		if !e.allowed.has(p) {
			continue
		}
		cost := 0
		for _, v := range e.rows[p][1 : n+1] {
			s := int(int8(v))
			if s < 0 {
				s = -s
			}
			cost += s
		}
		if bestCost < 0 || cost < bestCost {
			best, bestCost = p, cost
		}
	}
	return best
}

// FilterDecoder reverses FilterEncoder. It reads a tag byte followed by
// rowLength filtered bytes per row and emits the reconstructed rows.
type FilterDecoder struct {
	rowLength int
	stride    int

	prev []byte
	cur  []byte

	tag    Predictor
	hasTag bool
	index  int

	done bool
}

// NewFilterDecoder returns a decoder for rows of rowLength bytes holding
// pixels of bitsPerPixel bits.
func NewFilterDecoder(rowLength, bitsPerPixel int) *FilterDecoder {
	checkRowLength(rowLength)
	return &FilterDecoder{
		rowLength: rowLength,
		stride:    filterStride(bitsPerPixel),
		prev:      make([]byte, rowLength),
		cur:       make([]byte, rowLength),
	}
}

// Update implements Codec. It fails with ErrInvalidInputData on a tag byte
// outside 0..4.
func (d *FilterDecoder) Update(p []byte, sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	for _, x := range p {
		if !d.hasTag {
			if x >= numPredictors {
				return fmt.Errorf("filter: unknown filter type %d: %w", x, ErrInvalidInputData)
			}
			d.tag = Predictor(x)
			d.hasTag = true
			d.index = 0
			continue
		}

		i := d.index
		b := d.prev[i]
		var a, c byte
		if i >= d.stride {
			a = d.cur[i-d.stride]
			c = d.prev[i-d.stride]
		}
		switch d.tag {
		case PredictNone:
			d.cur[i] = x
		case PredictSub:
			d.cur[i] = x + a
		case PredictUp:
			d.cur[i] = x + b
		case PredictAverage:
			d.cur[i] = x + average(a, b)
		case PredictPaeth:
			d.cur[i] = x + paeth(a, b, c)
		}

		d.index++
		if d.index == d.rowLength {
			if err := sink(d.cur); err != nil {
				return err
			}
			d.prev, d.cur = d.cur, d.prev
			d.hasTag = false
			d.index = 0
		}
	}
	return nil
}

// Finalize implements Codec. A partial last row is emitted as reconstructed
// so far.
func (d *FilterDecoder) Finalize(sink Sink) error {
	if d.done {
		return ErrEndOfStream
	}
	d.done = true
	if d.index == 0 {
		return nil
	}
	return sink(d.cur[:d.index])
}
