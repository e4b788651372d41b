// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Idat holds inline item data, addressed by iloc extents using
// construction_method 1 (§4.6: grid/overlay descriptors).
type Idat struct {
	Data []byte
}

func (b *Idat) Tag() fourcc.Type { return fourcc.Idat }
func (b *Idat) SerializePayload(w *bitio.Writer) error { w.WriteBytes(b.Data); return nil }
func (b *Idat) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}

// Append adds data to Idat and returns its offset within idat.
func (b *Idat) Append(data []byte) uint64 {
	off := uint64(len(b.Data))
	b.Data = append(b.Data, data...)
	return off
}

// Pitm is the primary item box.
type Pitm struct {
	box.FullBox
	ItemID uint32
}

func (b *Pitm) Tag() fourcc.Type { return fourcc.Pitm }
func (b *Pitm) SerializePayload(w *bitio.Writer) error {
	if b.ItemID > 0xFFFF {
		b.SetVersion(1)
	}
	if b.Version() == 0 {
		w.WriteU16(uint16(b.ItemID))
	} else {
		w.WriteU32(b.ItemID)
	}
	return nil
}
func (b *Pitm) ParsePayload(r *bitio.Reader) error {
	if b.Version() == 0 {
		v, err := r.ReadU16()
		b.ItemID = uint32(v)
		return err
	}
	v, err := r.ReadU32()
	b.ItemID = v
	return err
}

// EntityToGroupBox is one entity-group entry under grpl, e.g. tagged
// altr. Its own tag is the group type, not a fixed fourCC.
type EntityToGroupBox struct {
	box.FullBox
	GroupType fourcc.Type
	GroupID   uint32
	EntityIDs []uint32
}

func (b *EntityToGroupBox) Tag() fourcc.Type { return b.GroupType }
func (b *EntityToGroupBox) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(b.GroupID)
	w.WriteU32(uint32(len(b.EntityIDs)))
	for _, id := range b.EntityIDs {
		w.WriteU32(id)
	}
	return nil
}
func (b *EntityToGroupBox) ParsePayload(r *bitio.Reader) error {
	var err error
	if b.GroupID, err = r.ReadU32(); err != nil {
		return err
	}
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.EntityIDs = nil
	for i := uint32(0); i < count; i++ {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.EntityIDs = append(b.EntityIDs, v)
	}
	return nil
}

// Grpl is the entity-grouping container: each child is an
// EntityToGroupBox whose own tag names the group type.
type Grpl struct {
	Groups []*EntityToGroupBox
}

func (b *Grpl) Tag() fourcc.Type { return fourcc.Grpl }
func (b *Grpl) SerializePayload(w *bitio.Writer) error {
	for _, g := range b.Groups {
		if err := box.New(g).Write(w); err != nil {
			return err
		}
	}
	return nil
}
func (b *Grpl) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Altr, func() box.Payload { return &EntityToGroupBox{GroupType: fourcc.Altr} })
	b.Groups = nil
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		if g, ok := p.(*EntityToGroupBox); ok {
			b.Groups = append(b.Groups, g)
		}
	}
	return nil
}

// Dinf/Dref/Url model the single self-contained data reference every
// meta/stbl emits: "this media's data is in this file".
type Url struct {
	box.FullBox
	Location string // empty + flags self-contained bit set means "in this file"
}

func (b *Url) Tag() fourcc.Type { return fourcc.Url }
func (b *Url) SerializePayload(w *bitio.Writer) error {
	if b.Location == "" {
		b.SetFlags(1) // self-contained
		return nil
	}
	w.WriteZeroTerminatedString(b.Location)
	return nil
}
func (b *Url) ParsePayload(r *bitio.Reader) error {
	if b.Flags()&1 != 0 {
		return nil
	}
	rest, err := r.ReadBytes(r.Remaining() / 8)
	if err != nil {
		return err
	}
	b.Location, _ = readZTString(rest)
	return nil
}

type Dref struct {
	box.FullBox
	Entries []*box.Box
}

func (b *Dref) Tag() fourcc.Type { return fourcc.Dref }
func (b *Dref) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(uint32(len(b.Entries)))
	return box.WriteChildren(w, b.Entries)
}
func (b *Dref) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	reg := box.NewRegistry()
	reg.Register(fourcc.Url, func() box.Payload { return &Url{} })
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

type Dinf struct {
	Dref *Dref
}

func (b *Dinf) Tag() fourcc.Type { return fourcc.Dinf }
func (b *Dinf) SerializePayload(w *bitio.Writer) error {
	return box.New(b.Dref).Write(w)
}
func (b *Dinf) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Dref, func() box.Payload { return &Dref{} })
	p, err := box.Parse(r, reg.Construct, nil)
	if err != nil {
		return err
	}
	b.Dref = p.(*Dref)
	return nil
}

// DefaultDinf returns a single self-contained data-reference chain, the
// only shape this writer ever emits.
func DefaultDinf() *Dinf {
	return &Dinf{Dref: &Dref{Entries: []*box.Box{box.New(&Url{})}}}
}
