// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package bitio implements the byte- and bit-level codec that every box
// and NAL-unit parser in this repository is built on: big-endian fixed
// width reads/writes, arbitrary-width bit packing, exponential-Golomb
// codes, and the Annex-B/RBSP primitives the NAL parser needs.
package bitio

import (
	"encoding/binary"

	"github.com/bep/heifwriter/internal/herr"
)

// Writer accumulates bytes and supports sub-byte bit packing, MSB-first
// within each byte, plus box-size patching.
type Writer struct {
	buf     []byte
	bitBuf  uint64
	bitCnt  uint
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// Len returns the number of fully-flushed bytes written so far. Partially
// written bits (via WriteBits with no byte-aligning follow-up) are not
// counted until flushed by a byte-aligned write or Bytes.
func (w *Writer) Len() int { return len(w.buf) }

// Pos is an alias for Len used at box-start bookmarking call sites.
func (w *Writer) Pos() int64 { return int64(len(w.buf)) }

func (w *Writer) flushBits() {
	for w.bitCnt >= 8 {
		w.bitCnt -= 8
		w.buf = append(w.buf, byte(w.bitBuf>>w.bitCnt))
	}
}

// WriteBits writes the low n bits of v (1 <= n <= 32), MSB-first.
func (w *Writer) WriteBits(v uint32, n uint) {
	if n == 0 || n > 32 {
		panic("bitio: WriteBits n out of range")
	}
	w.bitBuf = w.bitBuf<<n | uint64(v)&((1<<n)-1)
	w.bitCnt += n
	w.flushBits()
}

// align pads the current bit position to a byte boundary with zero bits.
func (w *Writer) align() {
	if w.bitCnt > 0 {
		w.WriteBits(0, 8-w.bitCnt)
	}
}

// WriteU8 writes one byte. Aligns first if mid-byte.
func (w *Writer) WriteU8(v uint8) {
	w.align()
	w.buf = append(w.buf, v)
}

// WriteU16 writes a big-endian uint16.
func (w *Writer) WriteU16(v uint16) {
	w.align()
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU24 writes a big-endian 24-bit unsigned integer.
func (w *Writer) WriteU24(v uint32) {
	w.align()
	w.buf = append(w.buf, byte(v>>16), byte(v>>8), byte(v))
}

// WriteU32 writes a big-endian uint32.
func (w *Writer) WriteU32(v uint32) {
	w.align()
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteU64 writes a big-endian uint64.
func (w *Writer) WriteU64(v uint64) {
	w.align()
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteBytes appends raw bytes verbatim. Aligns first.
func (w *Writer) WriteBytes(b []byte) {
	w.align()
	w.buf = append(w.buf, b...)
}

// WriteZeroTerminatedString writes s followed by a NUL byte.
func (w *Writer) WriteZeroTerminatedString(s string) {
	w.align()
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// WriteFixedString writes s truncated or zero-padded to exactly n bytes.
func (w *Writer) WriteFixedString(s string, n int) {
	w.align()
	b := make([]byte, n)
	copy(b, s)
	w.buf = append(w.buf, b...)
}

// WriteUnsignedExpGolomb encodes v as an unsigned exp-Golomb code.
func (w *Writer) WriteUnsignedExpGolomb(v uint32) {
	x := v + 1
	nbits := uint(32 - leadingZeros32(x))
	for i := uint(0); i < nbits-1; i++ {
		w.WriteBits(0, 1)
	}
	w.WriteBits(x, nbits)
}

// WriteSignedExpGolomb encodes v as a signed exp-Golomb code (the inverse
// of ReadSignedExpGolomb: value = ceil(u/2), negated when u is even, so
// 0, 1, -1, 2, -2 map to u = 0, 1, 2, 3, 4).
func (w *Writer) WriteSignedExpGolomb(v int32) {
	var u uint32
	if v <= 0 {
		u = uint32(-2 * v)
	} else {
		u = uint32(2*v - 1)
	}
	w.WriteUnsignedExpGolomb(u)
}

// Bytes returns the accumulated, byte-aligned output. Any pending partial
// bits are zero-padded and flushed.
func (w *Writer) Bytes() []byte {
	w.align()
	return w.buf
}

// PatchU32At overwrites the big-endian uint32 at absolute byte offset pos.
func (w *Writer) PatchU32At(pos int64, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	copy(w.buf[pos:pos+4], b[:])
}

// PatchU64At overwrites the big-endian uint64 at absolute byte offset pos.
func (w *Writer) PatchU64At(pos int64, v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	copy(w.buf[pos:pos+8], b[:])
}

func leadingZeros32(x uint32) int {
	n := 0
	for i := 31; i >= 0; i-- {
		if x&(1<<uint(i)) != 0 {
			break
		}
		n++
	}
	return n
}

// Reader walks a byte slice with a byte cursor and a 0-7 sub-byte cursor,
// mirroring Writer's bit packing so exp-Golomb codes round-trip.
type Reader struct {
	buf    []byte
	bytePos int
	bitPos  uint // 0-7, bits already consumed from buf[bytePos]
}

// NewReader wraps buf for reading.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of whole bits left to read.
func (r *Reader) Remaining() int {
	return (len(r.buf)-r.bytePos)*8 - int(r.bitPos)
}

// BytePos returns the current byte-aligned position (valid only when
// bitPos == 0).
func (r *Reader) BytePos() int64 { return int64(r.bytePos) }

func (r *Reader) alignRead() {
	if r.bitPos != 0 {
		r.bytePos++
		r.bitPos = 0
	}
}

// ReadBits reads n bits (1 <= n <= 32), MSB-first, returning EndOfStream
// if not enough bits remain.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	if n == 0 || n > 32 {
		panic("bitio: ReadBits n out of range")
	}
	if uint(r.Remaining()) < n {
		return 0, herr.EndOfStreamError
	}
	var v uint32
	remaining := n
	for remaining > 0 {
		avail := 8 - r.bitPos
		take := avail
		if take > remaining {
			take = remaining
		}
		b := r.buf[r.bytePos]
		shift := avail - take
		mask := byte((1 << take) - 1)
		bits := (b >> shift) & mask
		v = v<<take | uint32(bits)
		r.bitPos += take
		remaining -= take
		if r.bitPos == 8 {
			r.bitPos = 0
			r.bytePos++
		}
	}
	return v, nil
}

// ReadU8 reads one byte-aligned byte.
func (r *Reader) ReadU8() (uint8, error) {
	r.alignRead()
	if r.bytePos >= len(r.buf) {
		return 0, herr.EndOfStreamError
	}
	v := r.buf[r.bytePos]
	r.bytePos++
	return v, nil
}

// ReadU16 reads a big-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	r.alignRead()
	if r.bytePos+2 > len(r.buf) {
		return 0, herr.EndOfStreamError
	}
	v := binary.BigEndian.Uint16(r.buf[r.bytePos:])
	r.bytePos += 2
	return v, nil
}

// ReadU24 reads a big-endian 24-bit unsigned integer.
func (r *Reader) ReadU24() (uint32, error) {
	r.alignRead()
	if r.bytePos+3 > len(r.buf) {
		return 0, herr.EndOfStreamError
	}
	v := uint32(r.buf[r.bytePos])<<16 | uint32(r.buf[r.bytePos+1])<<8 | uint32(r.buf[r.bytePos+2])
	r.bytePos += 3
	return v, nil
}

// ReadU32 reads a big-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	r.alignRead()
	if r.bytePos+4 > len(r.buf) {
		return 0, herr.EndOfStreamError
	}
	v := binary.BigEndian.Uint32(r.buf[r.bytePos:])
	r.bytePos += 4
	return v, nil
}

// ReadU64 reads a big-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	r.alignRead()
	if r.bytePos+8 > len(r.buf) {
		return 0, herr.EndOfStreamError
	}
	v := binary.BigEndian.Uint64(r.buf[r.bytePos:])
	r.bytePos += 8
	return v, nil
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	r.alignRead()
	if r.bytePos+n > len(r.buf) {
		return nil, herr.EndOfStreamError
	}
	b := r.buf[r.bytePos : r.bytePos+n]
	r.bytePos += n
	return b, nil
}

// ReadUnsignedExpGolomb decodes an unsigned exp-Golomb code: leading
// zeros count k, then k more bits are read, value = (1<<k) - 1 + tail.
func (r *Reader) ReadUnsignedExpGolomb() (uint32, error) {
	var k uint
	for {
		b, err := r.ReadBits(1)
		if err != nil {
			return 0, err
		}
		if b != 0 {
			break
		}
		k++
		if k > 31 {
			return 0, herr.EndOfStreamError
		}
	}
	if k == 0 {
		return 0, nil
	}
	tail, err := r.ReadBits(k)
	if err != nil {
		return 0, err
	}
	return (uint32(1)<<k) - 1 + tail, nil
}

// ReadSignedExpGolomb decodes a signed exp-Golomb code: value =
// ceil(u/2) (that is, (u+1)/2 in integer division), negated when u is even.
func (r *Reader) ReadSignedExpGolomb() (int32, error) {
	u, err := r.ReadUnsignedExpGolomb()
	if err != nil {
		return 0, err
	}
	v := int32((u + 1) / 2)
	if u%2 == 0 {
		v = -v
	}
	return v, nil
}
