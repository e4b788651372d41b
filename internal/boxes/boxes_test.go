// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/fourcc"
)

func TestIinfRoundTrip(t *testing.T) {
	c := qt.New(t)

	infe := &boxes.Infe{ItemID: 1, ItemType: fourcc.Parse("hvc1"), ItemName: "master"}
	iinf := &boxes.Iinf{Entries: []*boxes.Infe{infe}}

	w := bitio.NewWriter()
	c.Assert(box.New(iinf).Write(w), qt.IsNil)

	reg := box.NewRegistry()
	reg.Register(fourcc.Iinf, func() box.Payload { return &boxes.Iinf{} })
	r := bitio.NewReader(w.Bytes())
	p, err := box.Parse(r, reg.Construct, nil)
	c.Assert(err, qt.IsNil)
	got := p.(*boxes.Iinf)
	c.Assert(len(got.Entries), qt.Equals, 1)
	c.Assert(got.Entries[0].ItemID, qt.Equals, uint32(1))
	c.Assert(got.Entries[0].ItemType, qt.Equals, fourcc.Parse("hvc1"))
	c.Assert(got.Entries[0].ItemName, qt.Equals, "master")
}

func TestIlocExtentOffsetSlotsRecorded(t *testing.T) {
	c := qt.New(t)

	item := &boxes.IlocItem{
		ItemID: 1,
		Extents: []boxes.IlocExtent{
			{Offset: 0, Length: 1234},
		},
	}
	iloc := &boxes.Iloc{Items: []*boxes.IlocItem{item}}

	w := bitio.NewWriter()
	c.Assert(box.New(iloc).Write(w), qt.IsNil)

	c.Assert(len(item.ExtentOffsetSlots()), qt.Equals, 1)
	slot := item.ExtentOffsetSlots()[0]
	c.Assert(slot >= 0 && int(slot) < len(w.Bytes()), qt.IsTrue)
}

func TestIpmaPropertyIndexWidthPromotion(t *testing.T) {
	c := qt.New(t)

	// 130 properties forces the 15-bit index width (>127 threshold).
	ipco := &boxes.Ipco{}
	for i := 0; i < 130; i++ {
		ipco.Properties = append(ipco.Properties, box.New(&boxes.Ispe{Width: uint32(i), Height: uint32(i)}))
	}
	assoc := &boxes.IpmaAssociation{ItemID: 1}
	for i := uint32(1); i <= 130; i++ {
		assoc.PropertyIndex = append(assoc.PropertyIndex, i)
		assoc.Essential = append(assoc.Essential, false)
	}
	ipma := &boxes.Ipma{Associations: []*boxes.IpmaAssociation{assoc}}

	w := bitio.NewWriter()
	c.Assert(box.New(ipma).Write(w), qt.IsNil)
	c.Assert(ipma.Flags()&1, qt.Equals, uint32(1))
}

func TestStcoChunkOffsetSlotsRecorded(t *testing.T) {
	c := qt.New(t)

	stco := &boxes.Stco{ChunkOffsets: []uint32{0, 100, 200}}
	w := bitio.NewWriter()
	c.Assert(box.New(stco).Write(w), qt.IsNil)
	c.Assert(len(stco.ChunkOffsetSlots()), qt.Equals, 3)
}

func TestHvcCRoundTrip(t *testing.T) {
	c := qt.New(t)

	hvcC := &boxes.HvcC{
		GeneralProfileIdc:         1,
		GeneralLevelIdc:           120,
		MinSpatialSegmentationIdc: 0,
		ChromaFormat:              1,
		Arrays: []boxes.HevcNalArray{
			{NalUnitType: 33, Nalus: [][]byte{{0x01, 0x02, 0x03}}},
		},
	}

	w := bitio.NewWriter()
	c.Assert(box.New(hvcC).Write(w), qt.IsNil)

	reg := box.NewRegistry()
	reg.Register(fourcc.HvcC, func() box.Payload { return &boxes.HvcC{} })
	r := bitio.NewReader(w.Bytes())
	p, err := box.Parse(r, reg.Construct, nil)
	c.Assert(err, qt.IsNil)
	got := p.(*boxes.HvcC)
	c.Assert(got.GeneralLevelIdc, qt.Equals, uint8(120))
	c.Assert(len(got.Arrays), qt.Equals, 1)
	c.Assert(got.Arrays[0].Nalus[0], qt.DeepEquals, []byte{0x01, 0x02, 0x03})
}

func TestVvcCRoundTrip(t *testing.T) {
	c := qt.New(t)

	vvcC := &boxes.VvcC{
		GeneralProfileIdc: 1,
		GeneralLevelIdc:   51,
		ChromaFormat:      1,
		Arrays: []boxes.VvcNalArray{
			{NalUnitType: 15, Nalus: [][]byte{{0x01, 0x02, 0x03}}},
		},
	}

	w := bitio.NewWriter()
	c.Assert(box.New(vvcC).Write(w), qt.IsNil)

	reg := box.NewRegistry()
	reg.Register(fourcc.VvcC, func() box.Payload { return &boxes.VvcC{} })
	r := bitio.NewReader(w.Bytes())
	p, err := box.Parse(r, reg.Construct, nil)
	c.Assert(err, qt.IsNil)
	got := p.(*boxes.VvcC)
	c.Assert(got.GeneralLevelIdc, qt.Equals, uint8(51))
	c.Assert(len(got.Arrays), qt.Equals, 1)
	c.Assert(got.Arrays[0].Nalus[0], qt.DeepEquals, []byte{0x01, 0x02, 0x03})
}

func TestMoovTrakRoundTrip(t *testing.T) {
	c := qt.New(t)

	stsd := &boxes.Stsd{Entries: []*box.Box{}}
	stts := &boxes.Stts{}
	stsc := &boxes.Stsc{}
	stsz := &boxes.Stsz{}
	stco := &boxes.Stco{ChunkOffsets: []uint32{0}}

	moov := &boxes.Moov{
		Mvhd: &boxes.Mvhd{Timescale: 90000, NextTrackID: 2},
		Trak: []*boxes.Trak{
			{
				Tkhd: &boxes.Tkhd{TrackID: 1, Width: 1920 << 16, Height: 1080 << 16},
				Mdia: &boxes.Mdia{
					Mdhd: &boxes.Mdhd{Timescale: 90000, Language: "und"},
					Hdlr: &boxes.Hdlr{HandlerType: fourcc.HandlerVide},
					Minf: &boxes.Minf{
						Vmhd: &boxes.Vmhd{},
						Dinf: boxes.DefaultDinf(),
						Stbl: &boxes.Stbl{Stsd: stsd, Stts: stts, Stsc: stsc, Stsz: stsz, Stco: stco},
					},
				},
			},
		},
	}

	w := bitio.NewWriter()
	c.Assert(box.New(moov).Write(w), qt.IsNil)

	reg := box.NewRegistry()
	reg.Register(fourcc.Moov, func() box.Payload { return &boxes.Moov{} })
	r := bitio.NewReader(w.Bytes())
	p, err := box.Parse(r, reg.Construct, nil)
	c.Assert(err, qt.IsNil)
	got := p.(*boxes.Moov)
	c.Assert(got.Mvhd.Timescale, qt.Equals, uint32(90000))
	c.Assert(len(got.Trak), qt.Equals, 1)
	c.Assert(got.Trak[0].Tkhd.TrackID, qt.Equals, uint32(1))
	c.Assert(got.Trak[0].Mdia.Mdhd.Language, qt.Equals, "und")
}

