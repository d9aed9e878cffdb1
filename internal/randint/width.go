package randint

import (
	"encoding/binary"
	"math/bits"
)

// Width is the bit width of one raw sample.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
)

// widths is checked in order; the first one wide enough wins.
var widths = [...]Width{Width8, Width16, Width32}

// Bytes returns the number of bytes one sample of this width occupies.
func (w Width) Bytes() int { return int(w) / 8 }

// Max returns 2^w - 1, the largest raw value of this width.
func (w Width) Max() uint64 { return 1<<uint(w) - 1 }

// decode reads the i-th little endian sample from buf.
func (w Width) decode(buf []byte, i int) uint64 {
	off := i * w.Bytes()
	switch w {
	case Width8:
		return uint64(buf[off])
	case Width16:
		return uint64(binary.LittleEndian.Uint16(buf[off:]))
	default:
		return uint64(binary.LittleEndian.Uint32(buf[off:]))
	}
}

// bitsFor returns ceil(log2(total)) for total >= 1.
func bitsFor(total uint64) int {
	return bits.Len64(total - 1)
}

// selectWidth picks the smallest supported width whose bit count covers
// total distinct values.
func selectWidth(total uint64) (Width, bool) {
	need := bitsFor(total)
	for _, w := range widths {
		if int(w) >= need {
			return w, true
		}
	}
	return 0, false
}
