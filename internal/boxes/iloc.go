// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// IlocExtent is one (construction_method, offset, length) triple. Offset
// is a placeholder (0) until the planner's patch phase knows the
// absolute file offset (§4.6 phase B/C).
type IlocExtent struct {
	Offset uint64
	Length uint64
	// No extent_index is carried: index_size is always written as 0, so
	// an extent is only an offset and a length.
}

// IlocItem is one item's location record.
type IlocItem struct {
	ItemID             uint32
	ConstructionMethod uint8 // 0 = file_offset (mdat), 1 = idat
	DataReferenceIndex uint16
	BaseOffset         uint64
	Extents            []IlocExtent

	// extentOffsetSlots[i] is the byte offset, within the Writer the iloc
	// box was serialized into, of Extents[i].Offset's on-wire field,
	// recorded during serialization. The planner does not read these: it
	// sets Extents[i].Offset and re-serializes.
	extentOffsetSlots []int64
	extentOffsetWidth int
}

// ExtentOffsetSlots exposes the recorded sites: byte offsets within the
// Writer the iloc box was last serialized into.
func (it *IlocItem) ExtentOffsetSlots() []int64 { return it.extentOffsetSlots }
func (it *IlocItem) ExtentOffsetWidth() int      { return it.extentOffsetWidth }

// Iloc is the item location box. Field widths and version are chosen
// per §4.3 from the maximum offset/length/item_ID observed and whether
// any item uses construction_method != 0.
type Iloc struct {
	box.FullBox
	Items []*IlocItem

	offsetSize, lengthSize, baseOffsetSize, indexSize uint8
}

func (b *Iloc) Tag() fourcc.Type { return fourcc.Iloc }

func (b *Iloc) resolveLayout() {
	var maxOffset, maxLength, maxBase uint64
	var maxItemID uint32
	needsConstructionMethod := false
	for _, it := range b.Items {
		if it.ItemID > maxItemID {
			maxItemID = it.ItemID
		}
		if it.ConstructionMethod != 0 {
			needsConstructionMethod = true
		}
		if it.BaseOffset > maxBase {
			maxBase = it.BaseOffset
		}
		for _, e := range it.Extents {
			if e.Offset > maxOffset {
				maxOffset = e.Offset
			}
			if e.Length > maxLength {
				maxLength = e.Length
			}
		}
	}
	widthOf := func(v uint64) uint8 {
		if v > 0xFFFFFFFF {
			return 8
		}
		return 4
	}
	b.offsetSize = widthOf(maxOffset)
	b.lengthSize = widthOf(maxLength)
	b.baseOffsetSize = widthOf(maxBase)
	b.indexSize = 0

	version := uint8(0)
	if needsConstructionMethod {
		version = 1
	}
	if maxItemID > 0xFFFF {
		version = 2
	}
	b.SetVersion(version)
}

func (b *Iloc) writeVarUint(w *bitio.Writer, v uint64, size uint8) {
	switch size {
	case 0:
	case 4:
		w.WriteU32(uint32(v))
	case 8:
		w.WriteU64(v)
	}
}

func (b *Iloc) SerializePayload(w *bitio.Writer) error {
	b.resolveLayout()

	w.WriteU8(b.offsetSize<<4 | b.lengthSize)
	w.WriteU8(b.baseOffsetSize<<4 | b.indexSize)
	if b.Version() < 2 {
		w.WriteU16(uint16(len(b.Items)))
	} else {
		w.WriteU32(uint32(len(b.Items)))
	}

	for _, it := range b.Items {
		it.extentOffsetSlots = nil
		it.extentOffsetWidth = int(b.offsetSize)

		if b.Version() < 2 {
			w.WriteU16(uint16(it.ItemID))
		} else {
			w.WriteU32(it.ItemID)
		}
		if b.Version() >= 1 {
			w.WriteU16(uint16(it.ConstructionMethod))
		}
		w.WriteU16(it.DataReferenceIndex)
		b.writeVarUint(w, it.BaseOffset, b.baseOffsetSize)
		w.WriteU16(uint16(len(it.Extents)))
		for i := range it.Extents {
			e := &it.Extents[i]
			if b.offsetSize > 0 {
				it.extentOffsetSlots = append(it.extentOffsetSlots, w.Pos())
			}
			b.writeVarUint(w, e.Offset, b.offsetSize)
			b.writeVarUint(w, e.Length, b.lengthSize)
		}
	}
	return nil
}

func (b *Iloc) readVarUint(r *bitio.Reader, size uint8) (uint64, error) {
	switch size {
	case 4:
		v, err := r.ReadU32()
		return uint64(v), err
	case 8:
		return r.ReadU64()
	default:
		return 0, nil
	}
}

func (b *Iloc) ParsePayload(r *bitio.Reader) error {
	sizes, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.offsetSize, b.lengthSize = sizes>>4, sizes&0xF
	sizes2, err := r.ReadU8()
	if err != nil {
		return err
	}
	b.baseOffsetSize, b.indexSize = sizes2>>4, sizes2&0xF

	var count uint32
	if b.Version() < 2 {
		v, err := r.ReadU16()
		if err != nil {
			return err
		}
		count = uint32(v)
	} else {
		count, err = r.ReadU32()
		if err != nil {
			return err
		}
	}

	b.Items = nil
	for i := uint32(0); i < count; i++ {
		it := &IlocItem{}
		if b.Version() < 2 {
			v, err := r.ReadU16()
			if err != nil {
				return err
			}
			it.ItemID = uint32(v)
		} else {
			it.ItemID, err = r.ReadU32()
			if err != nil {
				return err
			}
		}
		if b.Version() >= 1 {
			v, err := r.ReadU16()
			if err != nil {
				return err
			}
			it.ConstructionMethod = uint8(v)
		}
		it.DataReferenceIndex, err = r.ReadU16()
		if err != nil {
			return err
		}
		it.BaseOffset, err = b.readVarUint(r, b.baseOffsetSize)
		if err != nil {
			return err
		}
		extCount, err := r.ReadU16()
		if err != nil {
			return err
		}
		for j := uint16(0); j < extCount; j++ {
			off, err := b.readVarUint(r, b.offsetSize)
			if err != nil {
				return err
			}
			length, err := b.readVarUint(r, b.lengthSize)
			if err != nil {
				return err
			}
			it.Extents = append(it.Extents, IlocExtent{Offset: off, Length: length})
		}
		b.Items = append(b.Items, it)
	}
	return nil
}
