package bytecodec

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// --- ZSTD helpers ---

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{
	New: func() any {
		return mustNewZstdEncoder()
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		return mustNewZstdDecoder()
	},
}

// NewZstdEncoder returns a streaming Zstandard compressor. A level of zero
// uses the pooled SpeedBetterCompression encoders; other values are mapped
// with zstd.EncoderLevelFromZstd.
func NewZstdEncoder(level int) (Codec, error) {
	return newWriterEncoder("zstd", func(w io.Writer) (io.WriteCloser, func(), error) {
		if level != 0 {
			enc, err := zstd.NewWriter(w,
				zstd.WithEncoderConcurrency(1),
				zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			)
			return enc, nil, err
		}
		enc := zstdEncPool.Get().(*zstd.Encoder)
		enc.Reset(w)
		return enc, func() { zstdEncPool.Put(enc) }, nil
	})
}

// NewZstdDecoder returns a Zstandard decompressor. Input is collected and
// decoded on Finalize.
func NewZstdDecoder() Codec {
	return &bufferedDecoder{name: "zstd", decode: decompressZstdTo}
}

func decompressZstdTo(data []byte, sink Sink) error {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, nil)
	zstdDecPool.Put(dec)
	if err != nil {
		return err
	}
	return writeChunked(sink, out)
}
