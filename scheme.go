package bytecodec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScheme is returned for a compression scheme this package does
// not provide.
var ErrUnknownScheme = errors.New("bytecodec: unknown scheme")

// Scheme names a compression scheme that can sit behind the Codec
// interface.
type Scheme int

const (
	SchemeLZW Scheme = iota
	SchemePackBits
	SchemeDeflate
	SchemeZstd
	SchemeBrotli
)

var schemeNames = map[Scheme]string{
	SchemeLZW:      "lzw",
	SchemePackBits: "packbits",
	SchemeDeflate:  "deflate",
	SchemeZstd:     "zstd",
	SchemeBrotli:   "brotli",
}

// Extension is the file suffix the command line tool uses for the scheme.
func (s Scheme) Extension() string {
	switch s {
	case SchemeLZW:
		return ".lzw"
	case SchemePackBits:
		return ".pb"
	case SchemeDeflate:
		return ".zz"
	case SchemeZstd:
		return ".zst"
	case SchemeBrotli:
		return ".br"
	}
	return ".bin"
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// ParseScheme looks a scheme up by name, ignoring case.
func ParseScheme(name string) (Scheme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range schemeNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

// Options tunes the codecs built by NewEncoder and NewDecoder. The zero
// value selects every default.
type Options struct {
	// Level is the compression level for deflate, zstd and brotli, in the
	// range of the underlying library. Zero selects its default.
	Level int
	// MaxCodeWidth bounds the LZW table; zero selects DefaultMaxCodeWidth.
	MaxCodeWidth int
	// DeflateFormat selects the deflate wrapper.
	DeflateFormat DeflateFormat
}

// NewEncoder returns a compressor for s.
func NewEncoder(s Scheme, opts Options) (Codec, error) {
	switch s {
	case SchemeLZW:
		return NewLZWEncoder(opts.MaxCodeWidth), nil
	case SchemePackBits:
		return NewPackBitsEncoder(), nil
	case SchemeDeflate:
		return NewDeflateEncoder(opts.DeflateFormat, opts.Level)
	case SchemeZstd:
		return NewZstdEncoder(opts.Level)
	case SchemeBrotli:
		return NewBrotliEncoder(opts.Level)
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownScheme, s)
}

// NewDecoder returns a decompressor for s.
func NewDecoder(s Scheme, opts Options) (Codec, error) {
	switch s {
	case SchemeLZW:
		return NewLZWDecoder(opts.MaxCodeWidth), nil
	case SchemePackBits:
		return NewPackBitsDecoder(), nil
	case SchemeDeflate:
		return NewInflateDecoder(opts.DeflateFormat), nil
	case SchemeZstd:
		return NewZstdDecoder(), nil
	case SchemeBrotli:
		return NewBrotliDecoder(), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownScheme, s)
}
