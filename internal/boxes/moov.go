// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Mvhd is the movie header: version 0 uses 32-bit time fields, version 1
// uses 64-bit (§4.3).
type Mvhd struct {
	box.FullBox
	CreationTime, ModificationTime uint64
	Timescale                      uint32
	Duration                       uint64
	Rate                           uint32 // fixed 16.16, default 0x00010000
	Volume                         uint16 // fixed 8.8, default 0x0100
	NextTrackID                    uint32
}

func (b *Mvhd) Tag() fourcc.Type { return fourcc.Mvhd }

func (b *Mvhd) resolveVersion() {
	if b.CreationTime > 0xFFFFFFFF || b.ModificationTime > 0xFFFFFFFF || b.Duration > 0xFFFFFFFF {
		b.SetVersion(1)
	}
}

func (b *Mvhd) SerializePayload(w *bitio.Writer) error {
	b.resolveVersion()
	if b.Version() == 1 {
		w.WriteU64(b.CreationTime)
		w.WriteU64(b.ModificationTime)
		w.WriteU32(b.Timescale)
		w.WriteU64(b.Duration)
	} else {
		w.WriteU32(uint32(b.CreationTime))
		w.WriteU32(uint32(b.ModificationTime))
		w.WriteU32(b.Timescale)
		w.WriteU32(uint32(b.Duration))
	}
	rate := b.Rate
	if rate == 0 {
		rate = 0x00010000
	}
	w.WriteU32(rate)
	vol := b.Volume
	if vol == 0 {
		vol = 0x0100
	}
	w.WriteU16(vol)
	w.WriteU16(0) // reserved
	w.WriteU32(0) // reserved[2]
	w.WriteU32(0)
	for i := 0; i < 9; i++ { // unity matrix
		switch i {
		case 0, 4:
			w.WriteU32(0x00010000)
		case 8:
			w.WriteU32(0x40000000)
		default:
			w.WriteU32(0)
		}
	}
	for i := 0; i < 6; i++ { // pre_defined
		w.WriteU32(0)
	}
	w.WriteU32(b.NextTrackID)
	return nil
}

func (b *Mvhd) ParsePayload(r *bitio.Reader) error {
	var err error
	if b.Version() == 1 {
		if b.CreationTime, err = r.ReadU64(); err != nil {
			return err
		}
		if b.ModificationTime, err = r.ReadU64(); err != nil {
			return err
		}
		if b.Timescale, err = r.ReadU32(); err != nil {
			return err
		}
		if b.Duration, err = r.ReadU64(); err != nil {
			return err
		}
	} else {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.CreationTime = uint64(v)
		if v, err = r.ReadU32(); err != nil {
			return err
		}
		b.ModificationTime = uint64(v)
		if b.Timescale, err = r.ReadU32(); err != nil {
			return err
		}
		if v, err = r.ReadU32(); err != nil {
			return err
		}
		b.Duration = uint64(v)
	}
	if b.Rate, err = r.ReadU32(); err != nil {
		return err
	}
	if b.Volume, err = r.ReadU16(); err != nil {
		return err
	}
	skip := 2 + 4 + 4 + 36 + 24 // reserved, matrix(9*4), pre_defined(6*4)
	if _, err = r.ReadBytes(skip); err != nil {
		return err
	}
	b.NextTrackID, err = r.ReadU32()
	return err
}

// Tkhd is the track header.
type Tkhd struct {
	box.FullBox
	CreationTime, ModificationTime uint64
	TrackID                        uint32
	Duration                       uint64
	Width, Height                  uint32 // fixed 16.16
}

func (b *Tkhd) Tag() fourcc.Type { return fourcc.Tkhd }
func (b *Tkhd) resolveVersion() {
	if b.CreationTime > 0xFFFFFFFF || b.ModificationTime > 0xFFFFFFFF || b.Duration > 0xFFFFFFFF {
		b.SetVersion(1)
	}
}
func (b *Tkhd) SerializePayload(w *bitio.Writer) error {
	b.resolveVersion()
	if b.Version() == 1 {
		w.WriteU64(b.CreationTime)
		w.WriteU64(b.ModificationTime)
		w.WriteU32(b.TrackID)
		w.WriteU32(0) // reserved
		w.WriteU64(b.Duration)
	} else {
		w.WriteU32(uint32(b.CreationTime))
		w.WriteU32(uint32(b.ModificationTime))
		w.WriteU32(b.TrackID)
		w.WriteU32(0)
		w.WriteU32(uint32(b.Duration))
	}
	w.WriteU32(0) // reserved[2]
	w.WriteU32(0)
	w.WriteU16(0) // layer
	w.WriteU16(0) // alternate_group
	w.WriteU16(0) // volume
	w.WriteU16(0) // reserved
	for i := 0; i < 9; i++ {
		switch i {
		case 0, 4:
			w.WriteU32(0x00010000)
		case 8:
			w.WriteU32(0x40000000)
		default:
			w.WriteU32(0)
		}
	}
	w.WriteU32(b.Width)
	w.WriteU32(b.Height)
	return nil
}
func (b *Tkhd) ParsePayload(r *bitio.Reader) error {
	var err error
	if b.Version() == 1 {
		if b.CreationTime, err = r.ReadU64(); err != nil {
			return err
		}
		if b.ModificationTime, err = r.ReadU64(); err != nil {
			return err
		}
		if b.TrackID, err = r.ReadU32(); err != nil {
			return err
		}
		if _, err = r.ReadU32(); err != nil {
			return err
		}
		if b.Duration, err = r.ReadU64(); err != nil {
			return err
		}
	} else {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.CreationTime = uint64(v)
		if v, err = r.ReadU32(); err != nil {
			return err
		}
		b.ModificationTime = uint64(v)
		if b.TrackID, err = r.ReadU32(); err != nil {
			return err
		}
		if _, err = r.ReadU32(); err != nil {
			return err
		}
		if v, err = r.ReadU32(); err != nil {
			return err
		}
		b.Duration = uint64(v)
	}
	if _, err = r.ReadBytes(8 + 2 + 2 + 2 + 2 + 36); err != nil {
		return err
	}
	if b.Width, err = r.ReadU32(); err != nil {
		return err
	}
	b.Height, err = r.ReadU32()
	return err
}

// Mdhd is the media header.
type Mdhd struct {
	box.FullBox
	CreationTime, ModificationTime uint64
	Timescale                      uint32
	Duration                       uint64
	Language                       string // ISO-639-2/T, packed 3x5 bits
}

func (b *Mdhd) Tag() fourcc.Type { return fourcc.Mdhd }
func (b *Mdhd) resolveVersion() {
	if b.CreationTime > 0xFFFFFFFF || b.ModificationTime > 0xFFFFFFFF || b.Duration > 0xFFFFFFFF {
		b.SetVersion(1)
	}
}
func packLanguage(lang string) uint16 {
	if len(lang) != 3 {
		lang = "und"
	}
	return uint16(lang[0]-0x60)<<10 | uint16(lang[1]-0x60)<<5 | uint16(lang[2]-0x60)
}
func unpackLanguage(v uint16) string {
	return string([]byte{
		byte((v>>10)&0x1F) + 0x60,
		byte((v>>5)&0x1F) + 0x60,
		byte(v&0x1F) + 0x60,
	})
}
func (b *Mdhd) SerializePayload(w *bitio.Writer) error {
	b.resolveVersion()
	if b.Version() == 1 {
		w.WriteU64(b.CreationTime)
		w.WriteU64(b.ModificationTime)
		w.WriteU32(b.Timescale)
		w.WriteU64(b.Duration)
	} else {
		w.WriteU32(uint32(b.CreationTime))
		w.WriteU32(uint32(b.ModificationTime))
		w.WriteU32(b.Timescale)
		w.WriteU32(uint32(b.Duration))
	}
	w.WriteBits(0, 1)
	w.WriteBits(uint32(packLanguage(b.Language)), 15)
	w.WriteU16(0) // pre_defined
	return nil
}
func (b *Mdhd) ParsePayload(r *bitio.Reader) error {
	var err error
	if b.Version() == 1 {
		if b.CreationTime, err = r.ReadU64(); err != nil {
			return err
		}
		if b.ModificationTime, err = r.ReadU64(); err != nil {
			return err
		}
		if b.Timescale, err = r.ReadU32(); err != nil {
			return err
		}
		if b.Duration, err = r.ReadU64(); err != nil {
			return err
		}
	} else {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.CreationTime = uint64(v)
		if v, err = r.ReadU32(); err != nil {
			return err
		}
		b.ModificationTime = uint64(v)
		if b.Timescale, err = r.ReadU32(); err != nil {
			return err
		}
		if v, err = r.ReadU32(); err != nil {
			return err
		}
		b.Duration = uint64(v)
	}
	if _, err = r.ReadBits(1); err != nil {
		return err
	}
	lang, err := r.ReadBits(15)
	if err != nil {
		return err
	}
	b.Language = unpackLanguage(uint16(lang))
	_, err = r.ReadU16()
	return err
}

// Vmhd, Smhd, Nmhd are the three media-header flavors.
type Vmhd struct{ box.FullBox }

func (b *Vmhd) Tag() fourcc.Type { return fourcc.Vmhd }
func (b *Vmhd) SerializePayload(w *bitio.Writer) error {
	b.SetFlags(1)
	w.WriteU16(0) // graphicsmode
	w.WriteU16(0) // opcolor[3]
	w.WriteU16(0)
	w.WriteU16(0)
	return nil
}
func (b *Vmhd) ParsePayload(r *bitio.Reader) error {
	_, err := r.ReadBytes(8)
	return err
}

type Smhd struct{ box.FullBox }

func (b *Smhd) Tag() fourcc.Type { return fourcc.Smhd }
func (b *Smhd) SerializePayload(w *bitio.Writer) error {
	w.WriteU16(0) // balance
	w.WriteU16(0) // reserved
	return nil
}
func (b *Smhd) ParsePayload(r *bitio.Reader) error {
	_, err := r.ReadBytes(4)
	return err
}

type Nmhd struct{ box.FullBox }

func (b *Nmhd) Tag() fourcc.Type                          { return fourcc.Nmhd }
func (b *Nmhd) SerializePayload(w *bitio.Writer) error    { return nil }
func (b *Nmhd) ParsePayload(r *bitio.Reader) error        { return nil }

// Stsd is the sample description box: a count followed by sample entry
// boxes (hvc1/avc1/mp4a).
type Stsd struct {
	box.FullBox
	Entries []*box.Box
}

func (b *Stsd) Tag() fourcc.Type { return fourcc.Stsd }
func (b *Stsd) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.Entries)))
	return box.WriteChildren(w, b.Entries)
}
func (b *Stsd) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	reg := box.NewRegistry()
	reg.Register(fourcc.Hvc1, func() box.Payload { return &VisualSampleEntry{TagV: fourcc.Hvc1} })
	reg.Register(fourcc.Avc1, func() box.Payload { return &VisualSampleEntry{TagV: fourcc.Avc1} })
	b.Entries = nil
	for i := uint32(0); i < count; i++ {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		b.Entries = append(b.Entries, box.New(p))
	}
	return nil
}

// Stts is decode-time-to-sample.
type Stts struct {
	box.FullBox
	Entries []struct{ SampleCount, SampleDelta uint32 }
}

func (b *Stts) Tag() fourcc.Type { return fourcc.Stts }
func (b *Stts) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.Entries)))
	for _, e := range b.Entries {
		w.WriteU32(e.SampleCount)
		w.WriteU32(e.SampleDelta)
	}
	return nil
}
func (b *Stts) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.Entries = nil
	for i := uint32(0); i < count; i++ {
		var e struct{ SampleCount, SampleDelta uint32 }
		if e.SampleCount, err = r.ReadU32(); err != nil {
			return err
		}
		if e.SampleDelta, err = r.ReadU32(); err != nil {
			return err
		}
		b.Entries = append(b.Entries, e)
	}
	return nil
}

// Ctts is composition-time-to-sample.
type Ctts struct {
	box.FullBox
	Entries []struct{ SampleCount uint32; SampleOffset int32 }
}

func (b *Ctts) Tag() fourcc.Type { return fourcc.Ctts }
func (b *Ctts) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.Entries)))
	for _, e := range b.Entries {
		w.WriteU32(e.SampleCount)
		w.WriteU32(uint32(e.SampleOffset))
	}
	return nil
}
func (b *Ctts) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.Entries = nil
	for i := uint32(0); i < count; i++ {
		var e struct {
			SampleCount  uint32
			SampleOffset int32
		}
		if e.SampleCount, err = r.ReadU32(); err != nil {
			return err
		}
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		e.SampleOffset = int32(v)
		b.Entries = append(b.Entries, e)
	}
	return nil
}

// Stsc is sample-to-chunk.
type Stsc struct {
	box.FullBox
	Entries []struct{ FirstChunk, SamplesPerChunk, SampleDescriptionIndex uint32 }
}

func (b *Stsc) Tag() fourcc.Type { return fourcc.Stsc }
func (b *Stsc) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.Entries)))
	for _, e := range b.Entries {
		w.WriteU32(e.FirstChunk)
		w.WriteU32(e.SamplesPerChunk)
		w.WriteU32(e.SampleDescriptionIndex)
	}
	return nil
}
func (b *Stsc) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.Entries = nil
	for i := uint32(0); i < count; i++ {
		var e struct{ FirstChunk, SamplesPerChunk, SampleDescriptionIndex uint32 }
		if e.FirstChunk, err = r.ReadU32(); err != nil {
			return err
		}
		if e.SamplesPerChunk, err = r.ReadU32(); err != nil {
			return err
		}
		if e.SampleDescriptionIndex, err = r.ReadU32(); err != nil {
			return err
		}
		b.Entries = append(b.Entries, e)
	}
	return nil
}

// Stsz is sample sizes.
type Stsz struct {
	box.FullBox
	SampleSize  uint32 // nonzero means uniform size, EntrySizes unused
	SampleCount uint32
	EntrySizes  []uint32
}

func (b *Stsz) Tag() fourcc.Type { return fourcc.Stsz }
func (b *Stsz) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(b.SampleSize)
	if b.SampleSize != 0 {
		w.WriteU32(b.SampleCount)
		return nil
	}
	w.WriteU32(uint32(len(b.EntrySizes)))
	for _, s := range b.EntrySizes {
		w.WriteU32(s)
	}
	return nil
}
func (b *Stsz) ParsePayload(r *bitio.Reader) error {
	var err error
	if b.SampleSize, err = r.ReadU32(); err != nil {
		return err
	}
	if b.SampleCount, err = r.ReadU32(); err != nil {
		return err
	}
	if b.SampleSize == 0 {
		b.EntrySizes = nil
		for i := uint32(0); i < b.SampleCount; i++ {
			v, err := r.ReadU32()
			if err != nil {
				return err
			}
			b.EntrySizes = append(b.EntrySizes, v)
		}
	}
	return nil
}

// Stss is the sync-sample (keyframe) table.
type Stss struct {
	box.FullBox
	SampleNumbers []uint32
}

func (b *Stss) Tag() fourcc.Type { return fourcc.Stss }
func (b *Stss) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.SampleNumbers)))
	for _, n := range b.SampleNumbers {
		w.WriteU32(n)
	}
	return nil
}
func (b *Stss) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.SampleNumbers = nil
	for i := uint32(0); i < count; i++ {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.SampleNumbers = append(b.SampleNumbers, v)
	}
	return nil
}

// Stco is the 32-bit chunk offset table. chunkOffsetSlots records the byte
// offset of each entry within the Writer the box was serialized into; the
// planner sets ChunkOffsets and re-serializes rather than patching them.
type Stco struct {
	box.FullBox
	ChunkOffsets []uint32

	chunkOffsetSlots []int64
}

func (b *Stco) Tag() fourcc.Type { return fourcc.Stco }
func (b *Stco) ChunkOffsetSlots() []int64 { return b.chunkOffsetSlots }
func (b *Stco) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.ChunkOffsets)))
	b.chunkOffsetSlots = nil
	for _, o := range b.ChunkOffsets {
		b.chunkOffsetSlots = append(b.chunkOffsetSlots, w.Pos())
		w.WriteU32(o)
	}
	return nil
}
func (b *Stco) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.ChunkOffsets = nil
	for i := uint32(0); i < count; i++ {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.ChunkOffsets = append(b.ChunkOffsets, v)
	}
	return nil
}

// Co64 is the 64-bit chunk offset table. It is parsed, and written when an
// Stbl carries one; buildTrack always fills Stco instead, so no chunk
// offset is ever promoted to co64.
type Co64 struct {
	box.FullBox
	ChunkOffsets []uint64

	chunkOffsetSlots []int64
}

func (b *Co64) Tag() fourcc.Type { return fourcc.Co64 }
func (b *Co64) ChunkOffsetSlots() []int64 { return b.chunkOffsetSlots }
func (b *Co64) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.ChunkOffsets)))
	b.chunkOffsetSlots = nil
	for _, o := range b.ChunkOffsets {
		b.chunkOffsetSlots = append(b.chunkOffsetSlots, w.Pos())
		w.WriteU64(o)
	}
	return nil
}
func (b *Co64) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.ChunkOffsets = nil
	for i := uint32(0); i < count; i++ {
		v, err := r.ReadU64()
		if err != nil {
			return err
		}
		b.ChunkOffsets = append(b.ChunkOffsets, v)
	}
	return nil
}

// Sgpd/Sbgp are the sample-group description/assignment pair, carried
// pass-through (no content writer in §4.6 needs sample grouping beyond
// what stss already expresses).
type Sgpd struct {
	box.FullBox
	Data []byte
}

func (b *Sgpd) Tag() fourcc.Type { return fourcc.Sgpd }
func (b *Sgpd) SerializePayload(w *bitio.Writer) error { w.WriteBytes(b.Data); return nil }
func (b *Sgpd) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}

type Sbgp struct {
	box.FullBox
	Data []byte
}

func (b *Sbgp) Tag() fourcc.Type { return fourcc.Sbgp }
func (b *Sbgp) SerializePayload(w *bitio.Writer) error { w.WriteBytes(b.Data); return nil }
func (b *Sbgp) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}
