// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Ipco is the item property container: an ordered list of property boxes,
// addressed 1-based from Ipma associations.
type Ipco struct {
	Properties []*box.Box
}

func (b *Ipco) Tag() fourcc.Type { return fourcc.Ipco }
func (b *Ipco) SerializePayload(w *bitio.Writer) error {
	return box.WriteChildren(w, b.Properties)
}
func (b *Ipco) ParsePayload(r *bitio.Reader) error {
	reg := propertyRegistry()
	b.Properties = nil
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		b.Properties = append(b.Properties, box.New(p))
	}
	return nil
}

func propertyRegistry() *box.Registry {
	reg := box.NewRegistry()
	reg.Register(fourcc.Ispe, func() box.Payload { return &Ispe{} })
	reg.Register(fourcc.Pasp, func() box.Payload { return &Pasp{} })
	reg.Register(fourcc.Colr, func() box.Payload { return &Colr{} })
	reg.Register(fourcc.Pixi, func() box.Payload { return &Pixi{} })
	reg.Register(fourcc.Irot, func() box.Payload { return &Irot{} })
	reg.Register(fourcc.Imir, func() box.Payload { return &Imir{} })
	reg.Register(fourcc.Clap, func() box.Payload { return &Clap{} })
	reg.Register(fourcc.Rloc, func() box.Payload { return &Rloc{} })
	reg.Register(fourcc.AuxC, func() box.Payload { return &AuxC{} })
	reg.Register(fourcc.Rotn, func() box.Payload { return &Rotn{} })
	reg.Register(fourcc.Rwpk, func() box.Payload { return &Rwpk{} })
	reg.Register(fourcc.Covi, func() box.Payload { return &Covi{} })
	reg.Register(fourcc.Lsel, func() box.Payload { return &Lsel{} })
	reg.Register(fourcc.Tols, func() box.Payload { return &Tols{} })
	reg.Register(fourcc.HvcC, func() box.Payload { return &HvcC{} })
	reg.Register(fourcc.AvcC, func() box.Payload { return &AvcC{} })
	reg.Register(fourcc.VvcC, func() box.Payload { return &VvcC{} })
	return reg
}

// IpmaAssociation is one item's list of associated property indices.
type IpmaAssociation struct {
	ItemID   uint32
	Essential []bool
	PropertyIndex []uint32 // 1-based into Ipco.Properties
}

// Ipma is the item property association box.
type Ipma struct {
	box.FullBox
	Associations []*IpmaAssociation
}

func (b *Ipma) Tag() fourcc.Type { return fourcc.Ipma }

func (b *Ipma) resolveLayout() (itemIDIs32 bool, propIdxIs16 bool) {
	var maxItemID uint32
	var maxIdx uint32
	for _, a := range b.Associations {
		if a.ItemID > maxItemID {
			maxItemID = a.ItemID
		}
		for _, idx := range a.PropertyIndex {
			if idx > maxIdx {
				maxIdx = idx
			}
		}
	}
	itemIDIs32 = maxItemID > 0xFFFF
	propIdxIs16 = maxIdx > 127
	return
}

func (b *Ipma) SerializePayload(w *bitio.Writer) error {
	itemIDIs32, propIdxIs16 := b.resolveLayout()
	if itemIDIs32 {
		b.SetVersion(1)
	}
	flags := uint32(0)
	if propIdxIs16 {
		flags |= 1
	}
	b.SetFlags(flags)

	w.WriteU32(uint32(len(b.Associations)))
	for _, a := range b.Associations {
		if itemIDIs32 {
			w.WriteU32(a.ItemID)
		} else {
			w.WriteU16(uint16(a.ItemID))
		}
		w.WriteU8(uint8(len(a.PropertyIndex)))
		for i, idx := range a.PropertyIndex {
			essential := uint32(0)
			if i < len(a.Essential) && a.Essential[i] {
				essential = 1
			}
			if propIdxIs16 {
				w.WriteBits(essential, 1)
				w.WriteBits(idx, 15)
			} else {
				w.WriteBits(essential, 1)
				w.WriteBits(idx, 7)
			}
		}
	}
	return nil
}

func (b *Ipma) ParsePayload(r *bitio.Reader) error {
	itemIDIs32 := b.Version() == 1
	propIdxIs16 := b.Flags()&1 != 0

	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.Associations = nil
	for i := uint32(0); i < count; i++ {
		a := &IpmaAssociation{}
		if itemIDIs32 {
			a.ItemID, err = r.ReadU32()
		} else {
			var v uint16
			v, err = r.ReadU16()
			a.ItemID = uint32(v)
		}
		if err != nil {
			return err
		}
		n, err := r.ReadU8()
		if err != nil {
			return err
		}
		for j := uint8(0); j < n; j++ {
			essBit, err := r.ReadBits(1)
			if err != nil {
				return err
			}
			width := uint(7)
			if propIdxIs16 {
				width = 15
			}
			idx, err := r.ReadBits(width)
			if err != nil {
				return err
			}
			a.Essential = append(a.Essential, essBit == 1)
			a.PropertyIndex = append(a.PropertyIndex, idx)
		}
		b.Associations = append(b.Associations, a)
	}
	return nil
}

// Iprp is the item properties box: ipco plus one or more ipma boxes (this
// writer always emits exactly one, matching §4.3's "one or more ipma").
type Iprp struct {
	Ipco *Ipco
	Ipma []*Ipma
}

func (b *Iprp) Tag() fourcc.Type { return fourcc.Iprp }
func (b *Iprp) SerializePayload(w *bitio.Writer) error {
	if err := box.New(b.Ipco).Write(w); err != nil {
		return err
	}
	for _, m := range b.Ipma {
		if err := box.New(m).Write(w); err != nil {
			return err
		}
	}
	return nil
}
func (b *Iprp) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Ipco, func() box.Payload { return &Ipco{} })
	reg.Register(fourcc.Ipma, func() box.Payload { return &Ipma{} })
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Ipco:
			b.Ipco = v
		case *Ipma:
			b.Ipma = append(b.Ipma, v)
		}
	}
	return nil
}
