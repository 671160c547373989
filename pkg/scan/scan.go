// Package scan locates field and line terminators in raw byte buffers.
//
// Both scanners return an offset rather than a found/not-found pair: the
// length of the input means "no terminator in range". They are binary-safe
// and allocation-free, and the word-parallel path is required to agree
// byte-for-byte with the scalar reference on every input.
package scan

import (
	"bytes"
	"encoding/binary"
	"math/bits"
)

const (
	lanes = 0x0101010101010101
	highs = 0x8080808080808080

	crLanes = lanes * '\r'
	lfLanes = lanes * '\n'
)

// IndexTerminator returns the offset of the first byte in data equal to
// delim, '\r', or '\n', or len(data) if no such byte occurs.
//
// Sixteen bytes are examined per iteration as two little-endian words; the
// remainder and short inputs fall back to the byte loop.
func IndexTerminator(data []byte, delim byte) int {
	n := len(data)
	dd := lanes * uint64(delim)

	i := 0
	for ; i+16 <= n; i += 16 {
		if m := terminatorMask(binary.LittleEndian.Uint64(data[i:]), dd); m != 0 {
			return i + bits.TrailingZeros64(m)/8
		}
		if m := terminatorMask(binary.LittleEndian.Uint64(data[i+8:]), dd); m != 0 {
			return i + 8 + bits.TrailingZeros64(m)/8
		}
	}
	for ; i+8 <= n; i += 8 {
		if m := terminatorMask(binary.LittleEndian.Uint64(data[i:]), dd); m != 0 {
			return i + bits.TrailingZeros64(m)/8
		}
	}
	for ; i < n; i++ {
		if c := data[i]; c == delim || c == '\n' || c == '\r' {
			return i
		}
	}
	return n
}

// IndexNewline returns the offset of the first '\n' in data, or len(data)
// if absent. bytes.IndexByte is vectorized in the runtime, so this is the
// fast path for line splitting as well as the reference behavior.
func IndexNewline(data []byte) int {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i
	}
	return len(data)
}

// terminatorMask sets 0x80 in every byte lane of w holding delim (already
// broadcast in dd), CR, or LF. The subtraction borrow can leave stray bits
// in lanes above the first match; the lowest set bit is always exact, and
// that is the only bit callers consult.
func terminatorMask(w, dd uint64) uint64 {
	return zeroMask(w^dd) | zeroMask(w^crLanes) | zeroMask(w^lfLanes)
}

func zeroMask(w uint64) uint64 {
	return (w - lanes) &^ w & highs
}

// indexTerminatorScalar is the reference implementation the word-parallel
// path must match. Kept for tests.
func indexTerminatorScalar(data []byte, delim byte) int {
	for i, c := range data {
		if c == delim || c == '\n' || c == '\r' {
			return i
		}
	}
	return len(data)
}

func indexNewlineScalar(data []byte) int {
	for i, c := range data {
		if c == '\n' {
			return i
		}
	}
	return len(data)
}
