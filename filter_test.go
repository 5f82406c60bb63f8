package bytecodec

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// collectRows runs rows through a filter encoder and returns every emitted
// record as its own slice.
func collectRows(t *testing.T, enc *FilterEncoder, data []byte) [][]byte {
	t.Helper()
	var recs [][]byte
	err := FinalizeWith(enc, data, func(p []byte) error {
		recs = append(recs, append([]byte(nil), p...))
		return nil
	})
	if err != nil {
		t.Fatalf("FilterEncoder: %v", err)
	}
	return recs
}

func TestFilter_IdenticalRowsPickUp(t *testing.T) {
	rows := []byte{10, 20, 30, 40, 10, 20, 30, 40}
	recs := collectRows(t, NewFilterEncoder(4, 8), rows)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	// Sub and Paeth both cost 40 on the first row; Sub has the lower tag.
	if want := []byte{1, 10, 10, 10, 10}; !bytes.Equal(recs[0], want) {
		t.Fatalf("first row: got %v, want %v", recs[0], want)
	}
	// Up and Paeth both cost 0 on the second row; Up has the lower tag.
	if want := []byte{2, 0, 0, 0, 0}; !bytes.Equal(recs[1], want) {
		t.Fatalf("second row: got %v, want %v", recs[1], want)
	}

	dec, err := Process(NewFilterDecoder(4, 8), bytes.Join(recs, nil))
	if err != nil {
		t.Fatalf("FilterDecoder: %v", err)
	}
	if !bytes.Equal(dec, rows) {
		t.Fatalf("decoded %v, want %v", dec, rows)
	}
}

func TestFilter_Paeth(t *testing.T) {
	for _, tc := range []struct {
		a, b, c, want byte
	}{
		{a: 10, b: 10, c: 10, want: 10},
		{a: 0, b: 5, c: 0, want: 5},
		{a: 5, b: 0, c: 0, want: 5},
		{a: 10, b: 20, c: 10, want: 20},
		{a: 20, b: 10, c: 10, want: 20},
		{a: 100, b: 200, c: 250, want: 100},
		{a: 255, b: 255, c: 0, want: 255},
		{a: 1, b: 2, c: 3, want: 1},
		{a: 50, b: 60, c: 55, want: 55},
	} {
		if got := paeth(tc.a, tc.b, tc.c); got != tc.want {
			t.Fatalf("paeth(%d, %d, %d) = %d, want %d", tc.a, tc.b, tc.c, got, tc.want)
		}
	}
}

func TestFilter_RoundTrip(t *testing.T) {
	for _, rowLength := range []int{1, 3, 4, 17, 64} {
		for _, bpp := range []int{1, 8, 16, 24, 32, 64} {
			for _, n := range []int{0, 1, 5} {
				name := fmt.Sprintf("len%d_bpp%d_rows%d", rowLength, bpp, n)
				t.Run(name, func(t *testing.T) {
					for seed, rows := range [][]byte{
						smoothBytes(int64(rowLength*n+bpp), rowLength*n),
						randomBytes(int64(rowLength*n+bpp), rowLength*n),
					} {
						filtered, err := feed(NewFilterEncoder(rowLength, bpp), rows, 3, 11)
						if err != nil {
							t.Fatalf("encode: %v", err)
						}
						if len(filtered) != n*(rowLength+1) {
							t.Fatalf("filtered length %d, want %d", len(filtered), n*(rowLength+1))
						}
						dec, err := feed(NewFilterDecoder(rowLength, bpp), filtered, 5, 2)
						if err != nil {
							t.Fatalf("decode: %v", err)
						}
						if !bytes.Equal(dec, rows) {
							t.Fatalf("input %d: round trip mismatch", seed)
						}
					}
				})
			}
		}
	}
}

func TestFilter_ChunkInvariance(t *testing.T) {
	rows := smoothBytes(3, 30*25)
	whole, err := Process(NewFilterEncoder(30, 24), rows)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, sizes := range [][]int{{1}, {29, 31}, {7}} {
		got, err := feed(NewFilterEncoder(30, 24), rows, sizes...)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if !bytes.Equal(got, whole) {
			t.Fatalf("encoding in chunks %v differs from one call", sizes)
		}
	}
}

func TestFilter_Deterministic(t *testing.T) {
	rows := randomBytes(11, 16*10)
	a := collectRows(t, NewFilterEncoder(16, 16), rows)
	b := collectRows(t, NewFilterEncoder(16, 16), rows)
	for i := range a {
		if a[i][0] != b[i][0] {
			t.Fatalf("row %d: filter %d then %d", i, a[i][0], b[i][0])
		}
	}
}

func TestFilter_AllowedSet(t *testing.T) {
	rows := smoothBytes(5, 12*8)
	for _, tc := range []struct {
		name    string
		allowed PredictorSet
	}{
		{name: "none_only", allowed: Predictors(PredictNone)},
		{name: "up_only", allowed: Predictors(PredictUp)},
		{name: "sub_paeth", allowed: Predictors(PredictSub, PredictPaeth)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			recs := collectRows(t, NewFilterEncoderWith(12, 8, tc.allowed), rows)
			for i, r := range recs {
				if !tc.allowed.has(Predictor(r[0])) {
					t.Fatalf("row %d uses %v, not in allowed set", i, Predictor(r[0]))
				}
			}
			dec, err := Process(NewFilterDecoder(12, 8), bytes.Join(recs, nil))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(dec, rows) {
				t.Fatalf("round trip mismatch")
			}
		})
	}

	if got := NewFilterEncoderWith(4, 8, 0).allowed; got != PredictAll {
		t.Fatalf("empty set: got %b, want %b", got, PredictAll)
	}
}

func TestFilter_PartialRow(t *testing.T) {
	recs := collectRows(t, NewFilterEncoder(3, 8), []byte{1, 2, 3, 4, 5})
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if len(recs[1]) != 3 {
		t.Fatalf("partial record has %d bytes, want 3", len(recs[1]))
	}

	dec, err := Process(NewFilterDecoder(3, 8), bytes.Join(recs, nil))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want := []byte{1, 2, 3, 4, 5}; !bytes.Equal(dec, want) {
		t.Fatalf("got %v, want %v", dec, want)
	}
}

func TestFilter_UnknownType(t *testing.T) {
	_, err := Process(NewFilterDecoder(2, 8), []byte{0, 1, 2, 5, 1, 1})
	if !errors.Is(err, ErrInvalidInputData) {
		t.Fatalf("got %v, want ErrInvalidInputData", err)
	}
}

func TestFilter_InvalidRowLengthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for zero row length")
		}
	}()
	NewFilterEncoder(0, 8)
}
