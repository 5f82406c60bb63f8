package bytecodec

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
)

// NewBrotliEncoder returns a streaming Brotli compressor. Level runs from
// 1 to 11; zero or a negative level selects brotli.DefaultCompression.
func NewBrotliEncoder(level int) (Codec, error) {
	if level <= 0 {
		level = brotli.DefaultCompression
	}
	return newWriterEncoder("brotli", func(w io.Writer) (io.WriteCloser, func(), error) {
		return brotli.NewWriterLevel(w, level), nil, nil
	})
}

// NewBrotliDecoder returns a Brotli decompressor. Input is collected and
// decoded on Finalize.
func NewBrotliDecoder() Codec {
	return &bufferedDecoder{
		name: "brotli",
		decode: func(data []byte, sink Sink) error {
			return copyTo(sink, brotli.NewReader(bytes.NewReader(data)))
		},
	}
}
