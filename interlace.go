package bytecodec

// Adam7 pass constants.
var (
	adam7StartRow = [7]int{0, 0, 4, 0, 2, 0, 1}
	adam7StartCol = [7]int{0, 4, 0, 2, 0, 1, 0}
	adam7RowInc   = [7]int{8, 8, 8, 4, 4, 2, 2}
	adam7ColInc   = [7]int{8, 8, 4, 4, 2, 2, 1}
	adam7BlockH   = [7]int{8, 8, 4, 4, 2, 2, 1}
	adam7BlockW   = [7]int{8, 4, 4, 2, 2, 1, 1}
)

// PassGeometry describes one pass of the 7-pass progressive scan for a
// given image.
type PassGeometry struct {
	Pass         int
	StartRow     int
	StartCol     int
	RowIncrement int
	ColIncrement int
	// BlockWidth and BlockHeight are the area a pixel of this pass covers
	// when a partial image is displayed.
	BlockWidth  int
	BlockHeight int
	// Width and Height are the reduced image dimensions in pixels.
	Width  int
	Height int
	// ScanlineSize is the number of bytes in one reduced row, not counting
	// the filter tag byte.
	ScanlineSize int
}

// Empty reports whether the pass carries no pixels.
func (g PassGeometry) Empty() bool {
	return g.Width == 0 || g.Height == 0
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Adam7Pass returns the geometry of pass (0..6) for an image.
func Adam7Pass(pass, width, height, bitsPerPixel int) PassGeometry {
	g := PassGeometry{
		Pass:         pass,
		StartRow:     adam7StartRow[pass],
		StartCol:     adam7StartCol[pass],
		RowIncrement: adam7RowInc[pass],
		ColIncrement: adam7ColInc[pass],
		BlockWidth:   adam7BlockW[pass],
		BlockHeight:  adam7BlockH[pass],
	}
	g.Width = ceilDiv(width-g.StartCol, g.ColIncrement)
	g.Height = ceilDiv(height-g.StartRow, g.RowIncrement)
	g.ScanlineSize = (bitsPerPixel*g.Width + 7) >> 3
	return g
}

// Adam7Passes returns the non-empty passes for an image, in order.
func Adam7Passes(width, height, bitsPerPixel int) []PassGeometry {
	var passes []PassGeometry
	for pass := 0; pass < 7; pass++ {
		g := Adam7Pass(pass, width, height, bitsPerPixel)
		if !g.Empty() {
			passes = append(passes, g)
		}
	}
	return passes
}

// Scanline identifies a record delivered by an Interlacer.
type Scanline struct {
	PassGeometry
	// Row is the image row the record belongs to.
	Row int
	// Index is the reduced row number within the pass.
	Index int
}

// Interlacer splits a filtered, interlaced byte stream into per-row records
// of ScanlineSize+1 bytes (tag byte included), walking the passes in order
// and skipping empty ones. It stops consuming once the last pass is
// complete.
type Interlacer struct {
	width, height, bitsPerPixel int

	cur   Scanline
	buf   []byte
	ended bool
}

// NewInterlacer returns a sequencer positioned at the first non-empty pass.
func NewInterlacer(width, height, bitsPerPixel int) *Interlacer {
	s := &Interlacer{width: width, height: height, bitsPerPixel: bitsPerPixel}
	s.enterPass(0)
	return s
}

// enterPass moves to the first non-empty pass at or after pass.
func (s *Interlacer) enterPass(pass int) {
	for ; pass < 7; pass++ {
		g := Adam7Pass(pass, s.width, s.height, s.bitsPerPixel)
		if !g.Empty() {
			s.cur = Scanline{PassGeometry: g, Row: g.StartRow}
			return
		}
	}
	s.ended = true
}

// Done reports whether every pass has been delivered.
func (s *Interlacer) Done() bool {
	return s.ended
}

// Current returns the record the next input bytes belong to. It is only
// meaningful before Done reports true.
func (s *Interlacer) Current() Scanline {
	return s.cur
}

// Scan consumes p and calls fn once for every record completed by it. The
// record slice is only valid during the call. Input after the last record
// is ignored.
func (s *Interlacer) Scan(p []byte, fn func(Scanline, []byte) error) error {
	for len(p) > 0 && !s.ended {
		size := s.cur.ScanlineSize + 1

		var rec []byte
		if len(s.buf) == 0 && len(p) >= size {
			rec, p = p[:size], p[size:]
		} else {
			n := min(size-len(s.buf), len(p))
			s.buf = append(s.buf, p[:n]...)
			p = p[n:]
			if len(s.buf) < size {
				return nil
			}
			rec = s.buf
		}

		if err := fn(s.cur, rec); err != nil {
			return err
		}
		s.buf = s.buf[:0]
		s.advance()
	}
	return nil
}

func (s *Interlacer) advance() {
	s.cur.Row += s.cur.RowIncrement
	s.cur.Index++
	if s.cur.Row >= s.height {
		s.enterPass(s.cur.Pass + 1)
	}
}

// ExtractPass returns the reduced rows of pass taken from a row-major pixel
// buffer, concatenated and without tag bytes. Rows of pixels are packed
// msb-first and padded to whole bytes, so bitsPerPixel must be 1, 2, 4 or a
// multiple of 8.
func ExtractPass(pixels []byte, width, height, bitsPerPixel, pass int) []byte {
	g := Adam7Pass(pass, width, height, bitsPerPixel)
	if g.Empty() {
		return nil
	}
	rowBytes := (bitsPerPixel*width + 7) >> 3
	out := make([]byte, g.Height*g.ScanlineSize)

	if bitsPerPixel >= 8 {
		px := bitsPerPixel >> 3
		for r := 0; r < g.Height; r++ {
			src := pixels[(g.StartRow+r*g.RowIncrement)*rowBytes:]
			dst := out[r*g.ScanlineSize:]
			for c := 0; c < g.Width; c++ {
				x := g.StartCol + c*g.ColIncrement
				copy(dst[c*px:(c+1)*px], src[x*px:(x+1)*px])
			}
		}
		return out
	}

	mask := byte(1<<bitsPerPixel - 1)
	for r := 0; r < g.Height; r++ {
		src := pixels[(g.StartRow+r*g.RowIncrement)*rowBytes:]
		dst := out[r*g.ScanlineSize:]
		for c := 0; c < g.Width; c++ {
			x := g.StartCol + c*g.ColIncrement
			sbit := x * bitsPerPixel
			v := src[sbit>>3] >> (8 - bitsPerPixel - sbit&7) & mask
			dbit := c * bitsPerPixel
			dst[dbit>>3] |= v << (8 - bitsPerPixel - dbit&7)
		}
	}
	return out
}
