// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// SingleItemReference is one reference-type box child of iref: a
// from_item_ID and a list of to_item_IDs, tagged with the reference type
// (thmb, auxl, dimg, cdsc, base).
type SingleItemReference struct {
	RefType  fourcc.Type
	FromItem uint32
	ToItems  []uint32
	large    bool
}

func (b *SingleItemReference) Tag() fourcc.Type { return b.RefType }

func (b *SingleItemReference) SerializePayload(w *bitio.Writer) error {
	if b.FromItem > 0xFFFF {
		b.large = true
	}
	for _, t := range b.ToItems {
		if t > 0xFFFF {
			b.large = true
		}
	}
	if b.large {
		w.WriteU32(b.FromItem)
		w.WriteU16(uint16(len(b.ToItems)))
		for _, t := range b.ToItems {
			w.WriteU32(t)
		}
	} else {
		w.WriteU16(uint16(b.FromItem))
		w.WriteU16(uint16(len(b.ToItems)))
		for _, t := range b.ToItems {
			w.WriteU16(uint16(t))
		}
	}
	return nil
}

func (b *SingleItemReference) ParsePayload(r *bitio.Reader) error {
	// iref's own version (0 => 16-bit IDs, 1 => 32-bit IDs) governs every
	// child; Iref.ParsePayload passes it down via large.
	if b.large {
		from, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.FromItem = from
		count, err := r.ReadU16()
		if err != nil {
			return err
		}
		for i := uint16(0); i < count; i++ {
			v, err := r.ReadU32()
			if err != nil {
				return err
			}
			b.ToItems = append(b.ToItems, v)
		}
		return nil
	}
	from, err := r.ReadU16()
	if err != nil {
		return err
	}
	b.FromItem = uint32(from)
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := uint16(0); i < count; i++ {
		v, err := r.ReadU16()
		if err != nil {
			return err
		}
		b.ToItems = append(b.ToItems, uint32(v))
	}
	return nil
}

// Iref is the item reference box: a FullBox container of
// SingleItemReference children. version 0 uses 16-bit item IDs, version 1
// uses 32-bit.
type Iref struct {
	box.FullBox
	References []*SingleItemReference
}

func (b *Iref) Tag() fourcc.Type { return fourcc.Iref }

func (b *Iref) resolveVersion() {
	for _, ref := range b.References {
		if ref.FromItem > 0xFFFF {
			b.SetVersion(1)
			return
		}
		for _, t := range ref.ToItems {
			if t > 0xFFFF {
				b.SetVersion(1)
				return
			}
		}
	}
}

func (b *Iref) SerializePayload(w *bitio.Writer) error {
	b.resolveVersion()
	for _, ref := range b.References {
		ref.large = b.Version() == 1
		if err := box.New(ref).Write(w); err != nil {
			return err
		}
	}
	return nil
}

func (b *Iref) ParsePayload(r *bitio.Reader) error {
	large := b.Version() == 1
	b.References = nil
	reg := box.NewRegistry()
	refTypes := []fourcc.Type{fourcc.Thmb, fourcc.Auxl, fourcc.Dimg, fourcc.Cdsc, fourcc.Base}
	for _, rt := range refTypes {
		rt := rt
		reg.Register(rt, func() box.Payload { return &SingleItemReference{RefType: rt, large: large} })
	}
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		if sr, ok := p.(*SingleItemReference); ok {
			b.References = append(b.References, sr)
		}
	}
	return nil
}
