// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Infe is one item_info entry: item_ID, protection index, item type, and
// optional name/content_type, written as version 2 or 3 (3 when the item
// ID needs more than 16 bits).
type Infe struct {
	box.FullBox
	ItemID            uint32
	ItemProtectionIdx uint16
	ItemType          fourcc.Type
	ItemName          string
	ContentType       string // only meaningful for mime items
	Hidden            bool   // flags bit 0, per §4.6 Auxiliary-image writer
}

func (b *Infe) Tag() fourcc.Type { return fourcc.Infe }

// resolveVersion picks v2 unless the item ID needs 32 bits.
func (b *Infe) resolveVersion() uint8 {
	if b.ItemID > 0xFFFF {
		return 3
	}
	return 2
}

func (b *Infe) SerializePayload(w *bitio.Writer) error {
	v := b.resolveVersion()
	b.SetVersion(v)
	flags := uint32(0)
	if b.Hidden {
		flags |= 1
	}
	b.SetFlags(flags)

	if v == 3 {
		w.WriteU32(b.ItemID)
	} else {
		w.WriteU16(uint16(b.ItemID))
	}
	w.WriteU16(b.ItemProtectionIdx)
	it := b.ItemType.Bytes()
	w.WriteBytes(it[:])
	w.WriteZeroTerminatedString(b.ItemName)
	if b.ItemType == fourcc.Mime {
		w.WriteZeroTerminatedString(b.ContentType)
	}
	return nil
}

func (b *Infe) ParsePayload(r *bitio.Reader) error {
	var id uint32
	var err error
	if b.Version() == 3 {
		id, err = r.ReadU32()
	} else {
		var v uint16
		v, err = r.ReadU16()
		id = uint32(v)
	}
	if err != nil {
		return err
	}
	b.ItemID = id
	if b.ItemProtectionIdx, err = r.ReadU16(); err != nil {
		return err
	}
	it, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.ItemType = fourcc.Type(it)
	b.Hidden = b.Flags()&1 != 0
	rest, err := r.ReadBytes(r.Remaining() / 8)
	if err != nil {
		return err
	}
	b.ItemName, rest = readZTString(rest)
	if b.ItemType == fourcc.Mime {
		b.ContentType, _ = readZTString(rest)
	}
	return nil
}

func readZTString(b []byte) (string, []byte) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), b[i+1:]
		}
	}
	return string(b), nil
}

// Iinf is the item information box: a count followed by nested Infe
// entries.
type Iinf struct {
	box.FullBox
	Entries []*Infe
}

func (b *Iinf) Tag() fourcc.Type { return fourcc.Iinf }

func (b *Iinf) SerializePayload(w *bitio.Writer) error {
	if len(b.Entries) > 0xFFFF {
		b.SetVersion(1)
	}
	if b.Version() >= 1 {
		w.WriteU32(uint32(len(b.Entries)))
	} else {
		w.WriteU16(uint16(len(b.Entries)))
	}
	for _, e := range b.Entries {
		if err := box.New(e).Write(w); err != nil {
			return err
		}
	}
	return nil
}

func (b *Iinf) ParsePayload(r *bitio.Reader) error {
	var count uint32
	var err error
	if b.Version() >= 1 {
		count, err = r.ReadU32()
	} else {
		var v uint16
		v, err = r.ReadU16()
		count = uint32(v)
	}
	if err != nil {
		return err
	}
	b.Entries = nil
	reg := box.NewRegistry()
	reg.Register(fourcc.Infe, func() box.Payload { return &Infe{} })
	for i := uint32(0); i < count; i++ {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		if infe, ok := p.(*Infe); ok {
			b.Entries = append(b.Entries, infe)
		}
	}
	return nil
}
