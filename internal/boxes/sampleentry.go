// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// VisualSampleEntry is the common shape of hvc1/avc1: the 8-byte
// reserved/data-reference-index header, width/height, resolution,
// frame_count, a 32-byte length-prefixed compressorname, depth, then the
// codec-specific config box and optional clap/pasp/ccst children; no auxi
// child is written or parsed.
type VisualSampleEntry struct {
	TagV               fourcc.Type
	DataReferenceIndex uint16
	Width, Height      uint16
	HorizResolution    uint32 // fixed 16.16, default 0x00480000
	VertResolution     uint32
	FrameCount         uint16
	CompressorName     string // truncated/padded to 31 bytes + length prefix
	Depth              uint16 // default 0x0018

	Config    *box.Box // hvcC / avcC / vvcC
	Clap      *Clap
	Pasp      *Pasp
	Ccst      *Ccst
}

func (b *VisualSampleEntry) Tag() fourcc.Type { return b.TagV }

func (b *VisualSampleEntry) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(0) // reserved[6] part 1 (32 bits)
	w.WriteU16(0) // reserved[6] part 2 (16 bits) -> total 6 bytes reserved
	w.WriteU16(b.DataReferenceIndex)
	w.WriteU16(0) // pre_defined
	w.WriteU16(0) // reserved
	w.WriteU32(0) // pre_defined[3]
	w.WriteU32(0)
	w.WriteU32(0)
	w.WriteU16(b.Width)
	w.WriteU16(b.Height)
	horiz, vert := b.HorizResolution, b.VertResolution
	if horiz == 0 {
		horiz = 0x00480000
	}
	if vert == 0 {
		vert = 0x00480000
	}
	w.WriteU32(horiz)
	w.WriteU32(vert)
	w.WriteU32(0) // reserved
	w.WriteU16(orDefault16(b.FrameCount, 1))
	nameLen := len(b.CompressorName)
	if nameLen > 31 {
		nameLen = 31
	}
	w.WriteU8(uint8(nameLen))
	w.WriteFixedString(b.CompressorName, 31)
	depth := b.Depth
	if depth == 0 {
		depth = 0x0018
	}
	w.WriteU16(depth)
	w.WriteU16(0xFFFF) // pre_defined = -1

	if b.Config != nil {
		if err := b.Config.Write(w); err != nil {
			return err
		}
	}
	if b.Clap != nil {
		if err := box.New(b.Clap).Write(w); err != nil {
			return err
		}
	}
	if b.Pasp != nil {
		if err := box.New(b.Pasp).Write(w); err != nil {
			return err
		}
	}
	if b.Ccst != nil {
		if err := box.New(b.Ccst).Write(w); err != nil {
			return err
		}
	}
	return nil
}

func orDefault16(v, def uint16) uint16 {
	if v == 0 {
		return def
	}
	return v
}

func (b *VisualSampleEntry) ParsePayload(r *bitio.Reader) error {
	if _, err := r.ReadU32(); err != nil {
		return err
	}
	if _, err := r.ReadU16(); err != nil {
		return err
	}
	var err error
	if b.DataReferenceIndex, err = r.ReadU16(); err != nil {
		return err
	}
	for i := 0; i < 2; i++ {
		if _, err = r.ReadU16(); err != nil {
			return err
		}
	}
	for i := 0; i < 3; i++ {
		if _, err = r.ReadU32(); err != nil {
			return err
		}
	}
	if b.Width, err = r.ReadU16(); err != nil {
		return err
	}
	if b.Height, err = r.ReadU16(); err != nil {
		return err
	}
	if b.HorizResolution, err = r.ReadU32(); err != nil {
		return err
	}
	if b.VertResolution, err = r.ReadU32(); err != nil {
		return err
	}
	if _, err = r.ReadU32(); err != nil {
		return err
	}
	if b.FrameCount, err = r.ReadU16(); err != nil {
		return err
	}
	nameLen, err := r.ReadU8()
	if err != nil {
		return err
	}
	nameBuf, err := r.ReadBytes(31)
	if err != nil {
		return err
	}
	if int(nameLen) <= len(nameBuf) {
		b.CompressorName = string(nameBuf[:nameLen])
	}
	if b.Depth, err = r.ReadU16(); err != nil {
		return err
	}
	if _, err = r.ReadU16(); err != nil {
		return err
	}

	reg := box.NewRegistry()
	reg.Register(fourcc.HvcC, func() box.Payload { return &HvcC{} })
	reg.Register(fourcc.AvcC, func() box.Payload { return &AvcC{} })
	reg.Register(fourcc.VvcC, func() box.Payload { return &VvcC{} })
	reg.Register(fourcc.Clap, func() box.Payload { return &Clap{} })
	reg.Register(fourcc.Pasp, func() box.Payload { return &Pasp{} })
	reg.Register(fourcc.Ccst, func() box.Payload { return &Ccst{} })
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Clap:
			b.Clap = v
		case *Pasp:
			b.Pasp = v
		case *Ccst:
			b.Ccst = v
		default:
			b.Config = box.New(p)
		}
	}
	return nil
}

// Ccst is the coding-constraints box (all_ref_pics_intra / intra_pred_used
// / max_ref_per_pic).
type Ccst struct {
	box.FullBox
	AllRefPicsIntra bool
	IntraPredUsed   bool
	MaxRefPerPic    uint8 // 4 bits
}

func (b *Ccst) Tag() fourcc.Type { return fourcc.Ccst }
func (b *Ccst) SerializePayload(w *bitio.Writer) error {
	v := uint32(0)
	if b.AllRefPicsIntra {
		v |= 1 << 31
	}
	if b.IntraPredUsed {
		v |= 1 << 30
	}
	w.WriteBits(v>>24, 8)
	w.WriteBits(uint32(b.MaxRefPerPic), 4)
	w.WriteBits(0, 28) // reserved
	return nil
}
func (b *Ccst) ParsePayload(r *bitio.Reader) error {
	v, err := r.ReadBits(8)
	if err != nil {
		return err
	}
	b.AllRefPicsIntra = v&0x80 != 0
	b.IntraPredUsed = v&0x40 != 0
	maxRef, err := r.ReadBits(4)
	if err != nil {
		return err
	}
	b.MaxRefPerPic = uint8(maxRef)
	_, err = r.ReadBits(28)
	return err
}

// Esds is the MPEG-4 elementary stream descriptor box used by mp4a sample
// entries. The writer never synthesizes MPEG-4 audio streams itself
// (no Non-goal names audio, but no content writer in §4.6 produces one
// either); it is carried pass-through for completeness of the stsd child
// catalog (§4.3).
type Esds struct {
	box.FullBox
	Data []byte
}

func (b *Esds) Tag() fourcc.Type { return fourcc.Esds }
func (b *Esds) SerializePayload(w *bitio.Writer) error { w.WriteBytes(b.Data); return nil }
func (b *Esds) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}
