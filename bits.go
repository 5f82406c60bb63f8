package bytecodec

// bitWriter packs codes into bytes, msb-first in each byte.
type bitWriter struct {
	out  *outBuffer
	byte byte
	n    uint8 // number of bits held in byte (0..7)
}

func newBitWriter(out *outBuffer) bitWriter {
	return bitWriter{out: out}
}

// writeBits writes the low n bits of bits, msb-first.
// For example, if n=4 and bits=0b1011, this writes: 1,0,1,1.
func (bw *bitWriter) writeBits(bits uint32, n uint8) {
	for n > 0 {
		free := 8 - bw.n
		k := free
		if k > n {
			k = n
		}

		shift := n - k
		chunk := byte((bits >> shift) & (1<<k - 1))

		bw.byte = bw.byte<<k | chunk
		bw.n += k
		n -= k

		if bw.n == 8 {
			bw.out.writeByte(bw.byte)
			bw.byte = 0
			bw.n = 0
		}
	}
}

// flush writes any remaining bits, padded with zeros on the right.
func (bw *bitWriter) flush() {
	if bw.n > 0 {
		bw.out.writeByte(bw.byte << (8 - bw.n))
		bw.byte = 0
		bw.n = 0
	}
}

// bitReader accumulates pushed bytes and hands them back as msb-first codes.
// It holds fewer than 8+maxBits bits at any time, so 64 bits of storage is
// enough for codes up to 32 bits wide.
type bitReader struct {
	bits uint64
	n    uint8
}

// push appends one byte to the low end of the accumulator.
func (br *bitReader) push(b byte) {
	br.bits = br.bits<<8 | uint64(b)
	br.n += 8
}

// readBits returns the next n bits. ok is false if fewer than n bits are
// held, in which case nothing is consumed.
func (br *bitReader) readBits(n uint8) (code uint32, ok bool) {
	if n > br.n {
		return 0, false
	}
	rem := br.n - n
	code = uint32(br.bits >> rem)
	br.bits &= 1<<rem - 1
	br.n = rem
	return code, true
}
