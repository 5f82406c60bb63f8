package bytecodec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// DeflateFormat selects the container around a DEFLATE stream.
type DeflateFormat int

const (
	// FormatZlib is the RFC 1950 wrapper used by PNG and TIFF.
	FormatZlib DeflateFormat = iota
	// FormatGzip is the RFC 1952 wrapper.
	FormatGzip
	// FormatRaw is a bare RFC 1951 stream.
	FormatRaw
)

func (f DeflateFormat) String() string {
	switch f {
	case FormatZlib:
		return "zlib"
	case FormatGzip:
		return "gzip"
	case FormatRaw:
		return "raw"
	}
	return fmt.Sprintf("DeflateFormat(%d)", int(f))
}

// NewDeflateEncoder returns a streaming DEFLATE compressor. Level follows
// compress/flate (-2..9); zero selects flate.DefaultCompression.
func NewDeflateEncoder(format DeflateFormat, level int) (Codec, error) {
	if level == 0 {
		level = flate.DefaultCompression
	}
	return newWriterEncoder("deflate", func(w io.Writer) (io.WriteCloser, func(), error) {
		switch format {
		case FormatGzip:
			zw, err := gzip.NewWriterLevel(w, level)
			return zw, nil, err
		case FormatRaw:
			fw, err := flate.NewWriter(w, level)
			return fw, nil, err
		default:
			zw, err := zlib.NewWriterLevel(w, level)
			return zw, nil, err
		}
	})
}

// NewInflateDecoder returns a DEFLATE decompressor. Unless format is
// FormatRaw, the wrapper is detected from the data: a gzip magic number
// selects gzip, anything else is read as zlib.
func NewInflateDecoder(format DeflateFormat) Codec {
	return &bufferedDecoder{
		name: "inflate",
		decode: func(data []byte, sink Sink) error {
			r, err := openInflate(format, data)
			if err != nil {
				return err
			}
			defer r.Close()
			return copyTo(sink, r)
		},
	}
}

func openInflate(format DeflateFormat, data []byte) (io.ReadCloser, error) {
	br := bytes.NewReader(data)
	switch {
	case format == FormatRaw:
		return flate.NewReader(br), nil
	case len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b:
		return gzip.NewReader(br)
	default:
		return zlib.NewReader(br)
	}
}
