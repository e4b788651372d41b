// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Ispe carries the display width/height of an image item.
type Ispe struct {
	box.FullBox
	Width, Height uint32
}

func (b *Ispe) Tag() fourcc.Type { return fourcc.Ispe }
func (b *Ispe) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(b.Width)
	w.WriteU32(b.Height)
	return nil
}
func (b *Ispe) ParsePayload(r *bitio.Reader) (err error) {
	if b.Width, err = r.ReadU32(); err != nil {
		return err
	}
	b.Height, err = r.ReadU32()
	return err
}

// Pasp is the pixel aspect ratio property.
type Pasp struct {
	HSpacing, VSpacing uint32
}

func (b *Pasp) Tag() fourcc.Type { return fourcc.Pasp }
func (b *Pasp) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(b.HSpacing)
	w.WriteU32(b.VSpacing)
	return nil
}
func (b *Pasp) ParsePayload(r *bitio.Reader) (err error) {
	if b.HSpacing, err = r.ReadU32(); err != nil {
		return err
	}
	b.VSpacing, err = r.ReadU32()
	return err
}

// Colr carries colour information, passed through verbatim: the writer
// never synthesizes ICC profiles or nclx primaries itself.
type Colr struct {
	Data []byte
}

func (b *Colr) Tag() fourcc.Type { return fourcc.Colr }
func (b *Colr) SerializePayload(w *bitio.Writer) error { w.WriteBytes(b.Data); return nil }
func (b *Colr) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}

// Pixi carries per-channel bit depth.
type Pixi struct {
	box.FullBox
	BitsPerChannel []uint8
}

func (b *Pixi) Tag() fourcc.Type { return fourcc.Pixi }
func (b *Pixi) SerializePayload(w *bitio.Writer) error {
	w.WriteU8(uint8(len(b.BitsPerChannel)))
	for _, v := range b.BitsPerChannel {
		w.WriteU8(v)
	}
	return nil
}
func (b *Pixi) ParsePayload(r *bitio.Reader) error {
	n, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.BitsPerChannel = nil
	for i := uint8(0); i < n; i++ {
		v, err := r.ReadU8()
		if err != nil {
			return err
		}
		b.BitsPerChannel = append(b.BitsPerChannel, v)
	}
	return nil
}

// Irot is the rotation property: angle/90, stored in the low 2 bits.
type Irot struct {
	Angle90 uint8 // 0..3, representing 0/90/180/270 degrees clockwise
}

func (b *Irot) Tag() fourcc.Type { return fourcc.Irot }
func (b *Irot) SerializePayload(w *bitio.Writer) error {
	w.WriteBits(0, 6)
	w.WriteBits(uint32(b.Angle90), 2)
	return nil
}
func (b *Irot) ParsePayload(r *bitio.Reader) error {
	if _, err := r.ReadBits(6); err != nil {
		return err
	}
	v, err := r.ReadBits(2)
	b.Angle90 = uint8(v)
	return err
}

// Imir is the mirror property: the axis flipped.
type Imir struct {
	Axis uint8 // 0 = vertical axis, 1 = horizontal axis
}

func (b *Imir) Tag() fourcc.Type { return fourcc.Imir }
func (b *Imir) SerializePayload(w *bitio.Writer) error {
	w.WriteBits(0, 7)
	w.WriteBits(uint32(b.Axis), 1)
	return nil
}
func (b *Imir) ParsePayload(r *bitio.Reader) error {
	if _, err := r.ReadBits(7); err != nil {
		return err
	}
	v, err := r.ReadBits(1)
	b.Axis = uint8(v)
	return err
}

// Clap is the clean-aperture property.
type Clap struct {
	CleanApertureWidthN, CleanApertureWidthD   uint32
	CleanApertureHeightN, CleanApertureHeightD uint32
	HorizOffN, HorizOffD                       int32
	VertOffN, VertOffD                         int32
}

func (b *Clap) Tag() fourcc.Type { return fourcc.Clap }
func (b *Clap) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(b.CleanApertureWidthN)
	w.WriteU32(b.CleanApertureWidthD)
	w.WriteU32(b.CleanApertureHeightN)
	w.WriteU32(b.CleanApertureHeightD)
	w.WriteU32(uint32(b.HorizOffN))
	w.WriteU32(uint32(b.HorizOffD))
	w.WriteU32(uint32(b.VertOffN))
	w.WriteU32(uint32(b.VertOffD))
	return nil
}
func (b *Clap) ParsePayload(r *bitio.Reader) error {
	fields := []*uint32{&b.CleanApertureWidthN, &b.CleanApertureWidthD, &b.CleanApertureHeightN, &b.CleanApertureHeightD}
	for _, f := range fields {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		*f = v
	}
	signed := []*int32{&b.HorizOffN, &b.HorizOffD, &b.VertOffN, &b.VertOffD}
	for _, f := range signed {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		*f = int32(v)
	}
	return nil
}

// Rloc is the relative-location property used by overlay cells.
type Rloc struct {
	HorizontalOffset, VerticalOffset uint32
}

func (b *Rloc) Tag() fourcc.Type { return fourcc.Rloc }
func (b *Rloc) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(b.HorizontalOffset)
	w.WriteU32(b.VerticalOffset)
	return nil
}
func (b *Rloc) ParsePayload(r *bitio.Reader) (err error) {
	if b.HorizontalOffset, err = r.ReadU32(); err != nil {
		return err
	}
	b.VerticalOffset, err = r.ReadU32()
	return err
}

// AuxC is the auxiliary-image-type property: a zero-terminated URN plus
// zero or more subtype bytes.
type AuxC struct {
	AuxType    string
	AuxSubtype []byte
}

func (b *AuxC) Tag() fourcc.Type { return fourcc.AuxC }
func (b *AuxC) SerializePayload(w *bitio.Writer) error {
	w.WriteZeroTerminatedString(b.AuxType)
	w.WriteBytes(b.AuxSubtype)
	return nil
}
func (b *AuxC) ParsePayload(r *bitio.Reader) error {
	rest, err := r.ReadBytes(r.Remaining() / 8)
	if err != nil {
		return err
	}
	b.AuxType, rest = readZTString(rest)
	b.AuxSubtype = rest
	return nil
}

// Rotn is the fixed-point 3-axis rotation box used by some OMAF profiles.
type Rotn struct {
	Yaw, Pitch, Roll int32
}

func (b *Rotn) Tag() fourcc.Type { return fourcc.Rotn }
func (b *Rotn) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(b.Yaw))
	w.WriteU32(uint32(b.Pitch))
	w.WriteU32(uint32(b.Roll))
	return nil
}
func (b *Rotn) ParsePayload(r *bitio.Reader) error {
	yaw, err := r.ReadU32()
	if err != nil {
		return err
	}
	pitch, err := r.ReadU32()
	if err != nil {
		return err
	}
	roll, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.Yaw, b.Pitch, b.Roll = int32(yaw), int32(pitch), int32(roll)
	return nil
}

// Rwpk (region-wise packing) and Covi (coverage information) are OMAF
// boxes the core reads and writes but never synthesizes (§4.3): callers
// supply the already-encoded payload and it is passed through verbatim.
type Rwpk struct {
	box.FullBox
	Data []byte
}

func (b *Rwpk) Tag() fourcc.Type { return fourcc.Rwpk }
func (b *Rwpk) SerializePayload(w *bitio.Writer) error { w.WriteBytes(b.Data); return nil }
func (b *Rwpk) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}

type Covi struct {
	box.FullBox
	Data []byte
}

func (b *Covi) Tag() fourcc.Type { return fourcc.Covi }
func (b *Covi) SerializePayload(w *bitio.Writer) error { w.WriteBytes(b.Data); return nil }
func (b *Covi) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}

// Lsel selects a layer of a multi-layer HEVC item for output (§4.6 Layer
// writer).
type Lsel struct {
	LayerID uint16
}

func (b *Lsel) Tag() fourcc.Type { return fourcc.Lsel }
func (b *Lsel) SerializePayload(w *bitio.Writer) error { w.WriteU16(b.LayerID); return nil }
func (b *Lsel) ParsePayload(r *bitio.Reader) (err error) {
	b.LayerID, err = r.ReadU16()
	return err
}

// Tols names the target output layer set of a multi-layer HEVC item.
type Tols struct {
	TargetOutputLayerSetIdx uint16
}

func (b *Tols) Tag() fourcc.Type { return fourcc.Tols }
func (b *Tols) SerializePayload(w *bitio.Writer) error {
	w.WriteU16(b.TargetOutputLayerSetIdx)
	return nil
}
func (b *Tols) ParsePayload(r *bitio.Reader) (err error) {
	b.TargetOutputLayerSetIdx, err = r.ReadU16()
	return err
}
