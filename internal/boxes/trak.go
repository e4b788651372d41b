// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Stbl is the sample table: stsd, stts, ctts, stsc, stsz, stco/co64,
// stss, sgpd/sbgp.
type Stbl struct {
	Stsd *Stsd
	Stts *Stts
	Ctts *Ctts // optional
	Stsc *Stsc
	Stsz *Stsz
	Stco *Stco // one of Stco/Co64 is set
	Co64 *Co64
	Stss *Stss // optional
	Sgpd *Sgpd // optional
	Sbgp *Sbgp // optional
}

func (b *Stbl) Tag() fourcc.Type { return fourcc.Stbl }
func (b *Stbl) children() []*box.Box {
	var cs []*box.Box
	cs = append(cs, box.New(b.Stsd), box.New(b.Stts))
	if b.Ctts != nil {
		cs = append(cs, box.New(b.Ctts))
	}
	cs = append(cs, box.New(b.Stsc), box.New(b.Stsz))
	if b.Stco != nil {
		cs = append(cs, box.New(b.Stco))
	} else {
		cs = append(cs, box.New(b.Co64))
	}
	if b.Stss != nil {
		cs = append(cs, box.New(b.Stss))
	}
	if b.Sgpd != nil {
		cs = append(cs, box.New(b.Sgpd))
	}
	if b.Sbgp != nil {
		cs = append(cs, box.New(b.Sbgp))
	}
	return cs
}
func (b *Stbl) SerializePayload(w *bitio.Writer) error { return box.WriteChildren(w, b.children()) }
func (b *Stbl) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Stsd, func() box.Payload { return &Stsd{} })
	reg.Register(fourcc.Stts, func() box.Payload { return &Stts{} })
	reg.Register(fourcc.Ctts, func() box.Payload { return &Ctts{} })
	reg.Register(fourcc.Stsc, func() box.Payload { return &Stsc{} })
	reg.Register(fourcc.Stsz, func() box.Payload { return &Stsz{} })
	reg.Register(fourcc.Stco, func() box.Payload { return &Stco{} })
	reg.Register(fourcc.Co64, func() box.Payload { return &Co64{} })
	reg.Register(fourcc.Stss, func() box.Payload { return &Stss{} })
	reg.Register(fourcc.Sgpd, func() box.Payload { return &Sgpd{} })
	reg.Register(fourcc.Sbgp, func() box.Payload { return &Sbgp{} })
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Stsd:
			b.Stsd = v
		case *Stts:
			b.Stts = v
		case *Ctts:
			b.Ctts = v
		case *Stsc:
			b.Stsc = v
		case *Stsz:
			b.Stsz = v
		case *Stco:
			b.Stco = v
		case *Co64:
			b.Co64 = v
		case *Stss:
			b.Stss = v
		case *Sgpd:
			b.Sgpd = v
		case *Sbgp:
			b.Sbgp = v
		}
	}
	return nil
}

// Minf is media information: one of vmhd/smhd/nmhd, dinf, stbl.
type Minf struct {
	Vmhd *Vmhd
	Smhd *Smhd
	Nmhd *Nmhd
	Dinf *Dinf
	Stbl *Stbl
}

func (b *Minf) Tag() fourcc.Type { return fourcc.Minf }
func (b *Minf) children() []*box.Box {
	var cs []*box.Box
	switch {
	case b.Vmhd != nil:
		cs = append(cs, box.New(b.Vmhd))
	case b.Smhd != nil:
		cs = append(cs, box.New(b.Smhd))
	case b.Nmhd != nil:
		cs = append(cs, box.New(b.Nmhd))
	}
	cs = append(cs, box.New(b.Dinf), box.New(b.Stbl))
	return cs
}
func (b *Minf) SerializePayload(w *bitio.Writer) error { return box.WriteChildren(w, b.children()) }
func (b *Minf) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Vmhd, func() box.Payload { return &Vmhd{} })
	reg.Register(fourcc.Smhd, func() box.Payload { return &Smhd{} })
	reg.Register(fourcc.Nmhd, func() box.Payload { return &Nmhd{} })
	reg.Register(fourcc.Dinf, func() box.Payload { return &Dinf{} })
	reg.Register(fourcc.Stbl, func() box.Payload { return &Stbl{} })
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Vmhd:
			b.Vmhd = v
		case *Smhd:
			b.Smhd = v
		case *Nmhd:
			b.Nmhd = v
		case *Dinf:
			b.Dinf = v
		case *Stbl:
			b.Stbl = v
		}
	}
	return nil
}

// Mdia is media: mdhd, hdlr, minf.
type Mdia struct {
	Mdhd *Mdhd
	Hdlr *Hdlr
	Minf *Minf
}

func (b *Mdia) Tag() fourcc.Type { return fourcc.Mdia }
func (b *Mdia) SerializePayload(w *bitio.Writer) error {
	return box.WriteChildren(w, []*box.Box{box.New(b.Mdhd), box.New(b.Hdlr), box.New(b.Minf)})
}
func (b *Mdia) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Mdhd, func() box.Payload { return &Mdhd{} })
	reg.Register(fourcc.Hdlr, func() box.Payload { return &Hdlr{} })
	reg.Register(fourcc.Minf, func() box.Payload { return &Minf{} })
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Mdhd:
			b.Mdhd = v
		case *Hdlr:
			b.Hdlr = v
		case *Minf:
			b.Minf = v
		}
	}
	return nil
}

// Elst is the edit-list box: one or more (segment_duration, media_time,
// media_rate) entries.
type Elst struct {
	box.FullBox
	Entries []struct {
		SegmentDuration uint64
		MediaTime       int64
		MediaRateInteger, MediaRateFraction int16
	}
}

func (b *Elst) Tag() fourcc.Type { return fourcc.Elst }
func (b *Elst) resolveVersion() {
	for _, e := range b.Entries {
		if e.SegmentDuration > 0xFFFFFFFF {
			b.SetVersion(1)
			return
		}
	}
}
func (b *Elst) SerializePayload(w *bitio.Writer) error {
	b.resolveVersion()
	w.WriteU32(uint32(len(b.Entries)))
	for _, e := range b.Entries {
		if b.Version() == 1 {
			w.WriteU64(e.SegmentDuration)
			w.WriteU64(uint64(e.MediaTime))
		} else {
			w.WriteU32(uint32(e.SegmentDuration))
			w.WriteU32(uint32(int32(e.MediaTime)))
		}
		w.WriteU16(uint16(e.MediaRateInteger))
		w.WriteU16(uint16(e.MediaRateFraction))
	}
	return nil
}
func (b *Elst) ParsePayload(r *bitio.Reader) error {
	count, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.Entries = nil
	for i := uint32(0); i < count; i++ {
		var e struct {
			SegmentDuration                     uint64
			MediaTime                           int64
			MediaRateInteger, MediaRateFraction int16
		}
		if b.Version() == 1 {
			if e.SegmentDuration, err = r.ReadU64(); err != nil {
				return err
			}
			v, err := r.ReadU64()
			if err != nil {
				return err
			}
			e.MediaTime = int64(v)
		} else {
			v, err := r.ReadU32()
			if err != nil {
				return err
			}
			e.SegmentDuration = uint64(v)
			v2, err := r.ReadU32()
			if err != nil {
				return err
			}
			e.MediaTime = int64(int32(v2))
		}
		ri, err := r.ReadU16()
		if err != nil {
			return err
		}
		e.MediaRateInteger = int16(ri)
		rf, err := r.ReadU16()
		if err != nil {
			return err
		}
		e.MediaRateFraction = int16(rf)
		b.Entries = append(b.Entries, e)
	}
	return nil
}

// Edts wraps elst.
type Edts struct {
	Elst *Elst
}

func (b *Edts) Tag() fourcc.Type                       { return fourcc.Edts }
func (b *Edts) SerializePayload(w *bitio.Writer) error { return box.New(b.Elst).Write(w) }
func (b *Edts) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Elst, func() box.Payload { return &Elst{} })
	p, err := box.Parse(r, reg.Construct, nil)
	if err != nil {
		return err
	}
	b.Elst = p.(*Elst)
	return nil
}

// Tref is the track reference box, children are plain (reference_type,
// track_IDs...) records like iref's but against tracks.
type TrackReference struct {
	RefType  fourcc.Type
	TrackIDs []uint32
}

func (b *TrackReference) Tag() fourcc.Type { return b.RefType }
func (b *TrackReference) SerializePayload(w *bitio.Writer) error {
	for _, id := range b.TrackIDs {
		w.WriteU32(id)
	}
	return nil
}
func (b *TrackReference) ParsePayload(r *bitio.Reader) error {
	b.TrackIDs = nil
	for r.Remaining() >= 32 {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.TrackIDs = append(b.TrackIDs, v)
	}
	return nil
}

type Tref struct {
	References []*TrackReference
}

func (b *Tref) Tag() fourcc.Type { return fourcc.Tref }
func (b *Tref) SerializePayload(w *bitio.Writer) error {
	for _, ref := range b.References {
		if err := box.New(ref).Write(w); err != nil {
			return err
		}
	}
	return nil
}
func (b *Tref) ParsePayload(r *bitio.Reader) error {
	b.References = nil
	for r.Remaining() >= 64 {
		hdr, payloadR, err := bitio.ExtractSubBox(r)
		if err != nil {
			return err
		}
		tag := fourcc.Type(uint32(hdr.Tag[0])<<24 | uint32(hdr.Tag[1])<<16 | uint32(hdr.Tag[2])<<8 | uint32(hdr.Tag[3]))
		ref := &TrackReference{RefType: tag}
		if err := ref.ParsePayload(payloadR); err != nil {
			return err
		}
		b.References = append(b.References, ref)
	}
	return nil
}

// Trak is one track: tkhd, optional tref, optional edts, mdia.
type Trak struct {
	Tkhd *Tkhd
	Tref *Tref
	Edts *Edts
	Mdia *Mdia
}

func (b *Trak) Tag() fourcc.Type { return fourcc.Trak }
func (b *Trak) children() []*box.Box {
	cs := []*box.Box{box.New(b.Tkhd)}
	if b.Tref != nil {
		cs = append(cs, box.New(b.Tref))
	}
	if b.Edts != nil {
		cs = append(cs, box.New(b.Edts))
	}
	cs = append(cs, box.New(b.Mdia))
	return cs
}
func (b *Trak) SerializePayload(w *bitio.Writer) error { return box.WriteChildren(w, b.children()) }
func (b *Trak) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Tkhd, func() box.Payload { return &Tkhd{} })
	reg.Register(fourcc.Tref, func() box.Payload { return &Tref{} })
	reg.Register(fourcc.Edts, func() box.Payload { return &Edts{} })
	reg.Register(fourcc.Mdia, func() box.Payload { return &Mdia{} })
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Tkhd:
			b.Tkhd = v
		case *Tref:
			b.Tref = v
		case *Edts:
			b.Edts = v
		case *Mdia:
			b.Mdia = v
		}
	}
	return nil
}

// Moov is the top-level movie box: mvhd, one trak per track.
type Moov struct {
	Mvhd *Mvhd
	Trak []*Trak
}

func (b *Moov) Tag() fourcc.Type { return fourcc.Moov }
func (b *Moov) children() []*box.Box {
	cs := []*box.Box{box.New(b.Mvhd)}
	for _, t := range b.Trak {
		cs = append(cs, box.New(t))
	}
	return cs
}
func (b *Moov) SerializePayload(w *bitio.Writer) error { return box.WriteChildren(w, b.children()) }
func (b *Moov) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Mvhd, func() box.Payload { return &Mvhd{} })
	reg.Register(fourcc.Trak, func() box.Payload { return &Trak{} })
	b.Trak = nil
	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Mvhd:
			b.Mvhd = v
		case *Trak:
			b.Trak = append(b.Trak, v)
		}
	}
	return nil
}
