package bytecodec

import (
	"bytes"
	"errors"
	"testing"
)

var allSchemes = []Scheme{SchemeLZW, SchemePackBits, SchemeDeflate, SchemeZstd, SchemeBrotli}

func TestScheme_RoundTrip(t *testing.T) {
	for _, s := range allSchemes {
		for _, in := range testInputs() {
			t.Run(s.String()+"/"+in.name, func(t *testing.T) {
				enc, err := NewEncoder(s, Options{})
				if err != nil {
					t.Fatalf("NewEncoder: %v", err)
				}
				comp, err := feed(enc, in.data, 1000, 3)
				if err != nil {
					t.Fatalf("encode: %v", err)
				}

				dec, err := NewDecoder(s, Options{})
				if err != nil {
					t.Fatalf("NewDecoder: %v", err)
				}
				got, err := feed(dec, comp, 17)
				if err != nil {
					t.Fatalf("decode: %v", err)
				}
				if !bytes.Equal(got, in.data) && !(len(got) == 0 && len(in.data) == 0) {
					t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(in.data))
				}
			})
		}
	}
}

func TestScheme_Levels(t *testing.T) {
	data := repeatBytes("the quick brown fox jumps over the lazy dog ", 20000)
	for _, tc := range []struct {
		s    Scheme
		opts Options
	}{
		{s: SchemeDeflate, opts: Options{Level: 1}},
		{s: SchemeDeflate, opts: Options{Level: 9}},
		{s: SchemeZstd, opts: Options{Level: 1}},
		{s: SchemeZstd, opts: Options{Level: 19}},
		{s: SchemeBrotli, opts: Options{Level: 1}},
		{s: SchemeBrotli, opts: Options{Level: 11}},
		{s: SchemeLZW, opts: Options{MaxCodeWidth: 9}},
		{s: SchemeLZW, opts: Options{MaxCodeWidth: 16}},
	} {
		enc, err := NewEncoder(tc.s, tc.opts)
		if err != nil {
			t.Fatalf("%v %+v: NewEncoder: %v", tc.s, tc.opts, err)
		}
		comp, err := Process(enc, data)
		if err != nil {
			t.Fatalf("%v %+v: encode: %v", tc.s, tc.opts, err)
		}
		if len(comp) >= len(data)/2 {
			t.Fatalf("%v %+v: %d bytes from %d", tc.s, tc.opts, len(comp), len(data))
		}
		dec, err := NewDecoder(tc.s, tc.opts)
		if err != nil {
			t.Fatalf("%v %+v: NewDecoder: %v", tc.s, tc.opts, err)
		}
		got, err := Process(dec, comp)
		if err != nil {
			t.Fatalf("%v %+v: decode: %v", tc.s, tc.opts, err)
		}
		if !bytes.Equal(got, data) {
			t.Fatalf("%v %+v: round trip mismatch", tc.s, tc.opts)
		}
	}
}

func TestDeflate_Formats(t *testing.T) {
	data := smoothBytes(4, 50000)
	for _, format := range []DeflateFormat{FormatZlib, FormatGzip, FormatRaw} {
		t.Run(format.String(), func(t *testing.T) {
			enc, err := NewDeflateEncoder(format, 0)
			if err != nil {
				t.Fatalf("NewDeflateEncoder: %v", err)
			}
			comp, err := feed(enc, data, 4097)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			switch format {
			case FormatZlib:
				if comp[0]&0x0f != 8 {
					t.Fatalf("zlib header % x", comp[:2])
				}
			case FormatGzip:
				if comp[0] != 0x1f || comp[1] != 0x8b {
					t.Fatalf("gzip header % x", comp[:2])
				}
			}

			got, err := Process(NewInflateDecoder(format), comp)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("round trip mismatch")
			}
		})
	}

	// Gzip data is recognised when the decoder was set up for zlib.
	enc, err := NewDeflateEncoder(FormatGzip, 6)
	if err != nil {
		t.Fatalf("NewDeflateEncoder: %v", err)
	}
	comp, err := Process(enc, data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Process(NewInflateDecoder(FormatZlib), comp)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("gzip detection: round trip mismatch")
	}
}

func TestStreamDecoders_CorruptInput(t *testing.T) {
	garbage := []byte("definitely not compressed data")
	for _, s := range []Scheme{SchemeDeflate, SchemeZstd} {
		dec, err := NewDecoder(s, Options{})
		if err != nil {
			t.Fatalf("NewDecoder: %v", err)
		}
		if _, err := Process(dec, garbage); err == nil {
			t.Fatalf("%v: expected error for corrupt input", s)
		}
	}
}

func TestParseScheme(t *testing.T) {
	for _, s := range allSchemes {
		got, err := ParseScheme(s.String())
		if err != nil || got != s {
			t.Fatalf("ParseScheme(%q) = %v, %v", s.String(), got, err)
		}
	}
	if got, err := ParseScheme(" ZSTD "); err != nil || got != SchemeZstd {
		t.Fatalf("ParseScheme case-insensitive: %v, %v", got, err)
	}
	if _, err := ParseScheme("lzma"); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("got %v, want ErrUnknownScheme", err)
	}
	if _, err := NewEncoder(Scheme(42), Options{}); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("NewEncoder: got %v, want ErrUnknownScheme", err)
	}
	if _, err := NewDecoder(Scheme(42), Options{}); !errors.Is(err, ErrUnknownScheme) {
		t.Fatalf("NewDecoder: got %v, want ErrUnknownScheme", err)
	}
}
