// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package bitio_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/herr"
)

func TestWriteReadFixedWidth(t *testing.T) {
	c := qt.New(t)

	w := bitio.NewWriter()
	w.WriteU8(0xAB)
	w.WriteU16(0x1234)
	w.WriteU24(0x445566)
	w.WriteU32(0xDEADBEEF)
	w.WriteU64(0x0102030405060708)
	w.WriteZeroTerminatedString("hvc1")
	w.WriteFixedString("ab", 5)

	r := bitio.NewReader(w.Bytes())
	u8, err := r.ReadU8()
	c.Assert(err, qt.IsNil)
	c.Assert(u8, qt.Equals, uint8(0xAB))

	u16, err := r.ReadU16()
	c.Assert(err, qt.IsNil)
	c.Assert(u16, qt.Equals, uint16(0x1234))

	u24, err := r.ReadU24()
	c.Assert(err, qt.IsNil)
	c.Assert(u24, qt.Equals, uint32(0x445566))

	u32, err := r.ReadU32()
	c.Assert(err, qt.IsNil)
	c.Assert(u32, qt.Equals, uint32(0xDEADBEEF))

	u64, err := r.ReadU64()
	c.Assert(err, qt.IsNil)
	c.Assert(u64, qt.Equals, uint64(0x0102030405060708))

	str, err := r.ReadBytes(5)
	c.Assert(err, qt.IsNil)
	c.Assert(string(str), qt.Equals, "hvc1\x00")

	fixed, err := r.ReadBytes(5)
	c.Assert(err, qt.IsNil)
	c.Assert(string(fixed), qt.Equals, "ab\x00\x00\x00")
}

func TestBitPackingStraddlesBytes(t *testing.T) {
	c := qt.New(t)

	w := bitio.NewWriter()
	w.WriteBits(0x3, 2)  // 11
	w.WriteBits(0x0, 1)  // 0
	w.WriteBits(0x1F, 5) // 11111 -> first byte = 1101 1111 = 0xDF
	w.WriteBits(0x7, 3)  // 111
	w.WriteBits(0, 5)    // pad to byte boundary

	b := w.Bytes()
	c.Assert(len(b), qt.Equals, 2)
	c.Assert(b[0], qt.Equals, byte(0xDF))

	r := bitio.NewReader(b)
	v2, _ := r.ReadBits(2)
	c.Assert(v2, qt.Equals, uint32(0x3))
	v1, _ := r.ReadBits(1)
	c.Assert(v1, qt.Equals, uint32(0x0))
	v5, _ := r.ReadBits(5)
	c.Assert(v5, qt.Equals, uint32(0x1F))
}

func TestExpGolombRoundTrip(t *testing.T) {
	c := qt.New(t)

	values := []uint32{0, 1, 2, 3, 7, 8, 255, 256, 1 << 20, 1<<31 - 1}
	w := bitio.NewWriter()
	for _, v := range values {
		w.WriteUnsignedExpGolomb(v)
	}
	r := bitio.NewReader(w.Bytes())
	for _, want := range values {
		got, err := r.ReadUnsignedExpGolomb()
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
}

func TestSignedExpGolombRoundTrip(t *testing.T) {
	c := qt.New(t)

	values := []int32{0, 1, -1, 2, -2, 1000, -1000}
	w := bitio.NewWriter()
	for _, v := range values {
		w.WriteSignedExpGolomb(v)
	}
	r := bitio.NewReader(w.Bytes())
	for _, want := range values {
		got, err := r.ReadSignedExpGolomb()
		c.Assert(err, qt.IsNil)
		c.Assert(got, qt.Equals, want)
	}
}

func TestReadPastEndIsEndOfStream(t *testing.T) {
	c := qt.New(t)
	r := bitio.NewReader([]byte{0x01})
	_, err := r.ReadU32()
	c.Assert(herr.IsEndOfStream(err), qt.IsTrue)
}

func TestAnnexBStartCodeScan(t *testing.T) {
	c := qt.New(t)
	data := []byte{0x00, 0x00, 0x01, 0xAA, 0xBB, 0x00, 0x00, 0x00, 0x01, 0xCC}
	spans := bitio.SplitNALUnits(data)
	c.Assert(spans, qt.HasLen, 2)
	c.Assert(data[spans[0][0]:spans[0][1]], qt.DeepEquals, []byte{0xAA, 0xBB})
	c.Assert(data[spans[1][0]:spans[1][1]], qt.DeepEquals, []byte{0xCC})
}

func TestEmulationPreventionInvolution(t *testing.T) {
	c := qt.New(t)
	rbsp := []byte{0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0xFF, 0x00, 0x00, 0x03}
	withEPB := bitio.InsertEmulationPrevention(rbsp)
	back := bitio.StripEmulationPrevention(withEPB)
	c.Assert(back, qt.DeepEquals, rbsp)
}
