package bytecodec

// RowFunc receives one reconstructed reduced row together with its position.
// The row slice is only valid during the call.
type RowFunc func(Scanline, []byte) error

// ProgressiveDecoder undoes scanline filtering on an interlaced stream. It
// splits the input into records with an Interlacer and runs each pass
// through its own FilterDecoder, since filtering restarts at every pass.
type ProgressiveDecoder struct {
	seq          *Interlacer
	bitsPerPixel int

	pass   int
	filter *FilterDecoder

	done bool
}

// NewProgressiveDecoder returns a decoder for an interlaced image.
func NewProgressiveDecoder(width, height, bitsPerPixel int) *ProgressiveDecoder {
	return &ProgressiveDecoder{
		seq:          NewInterlacer(width, height, bitsPerPixel),
		bitsPerPixel: bitsPerPixel,
		pass:         -1,
	}
}

// Done reports whether every pass has been decoded.
func (d *ProgressiveDecoder) Done() bool {
	return d.seq.Done()
}

func (d *ProgressiveDecoder) filterFor(sl Scanline) *FilterDecoder {
	if sl.Pass != d.pass {
		d.filter = NewFilterDecoder(sl.ScanlineSize, d.bitsPerPixel)
		d.pass = sl.Pass
	}
	return d.filter
}

// Update consumes filtered bytes and calls fn for every completed row.
func (d *ProgressiveDecoder) Update(p []byte, fn RowFunc) error {
	if d.done {
		return ErrEndOfStream
	}
	return d.seq.Scan(p, func(sl Scanline, rec []byte) error {
		return d.filterFor(sl).Update(rec, func(row []byte) error {
			return fn(sl, row)
		})
	})
}

// Finalize delivers a row cut short by the end of input, as far as it was
// received. A truncated stream is not an error: the rows already delivered
// form a valid partial image.
func (d *ProgressiveDecoder) Finalize(fn RowFunc) error {
	if d.done {
		return ErrEndOfStream
	}
	d.done = true
	if d.seq.Done() || len(d.seq.buf) == 0 {
		return nil
	}
	sl := d.seq.Current()
	f := d.filterFor(sl)
	emit := func(row []byte) error {
		return fn(sl, row)
	}
	if err := f.Update(d.seq.buf, emit); err != nil {
		return err
	}
	return f.Finalize(emit)
}

// FilterInterlaced writes the filtered, interlaced form of a row-major
// pixel buffer to sink: every non-empty pass in order, each run through a
// fresh FilterEncoder limited to allowed.
func FilterInterlaced(pixels []byte, width, height, bitsPerPixel int, allowed PredictorSet, sink Sink) error {
	for _, g := range Adam7Passes(width, height, bitsPerPixel) {
		rows := ExtractPass(pixels, width, height, bitsPerPixel, g.Pass)
		enc := NewFilterEncoderWith(g.ScanlineSize, bitsPerPixel, allowed)
		if err := FinalizeWith(enc, rows, sink); err != nil {
			return err
		}
	}
	return nil
}
