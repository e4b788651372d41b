// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Meta is the container for item-based HEIF content: hdlr, pitm, iinf,
// iloc, iref, iprp, idat, dinf, grpl.
type Meta struct {
	box.FullBox
	Hdlr *Hdlr
	Pitm *Pitm // nil when no primary item is declared
	Iinf *Iinf
	Iloc *Iloc
	Iref *Iref // nil when there are no item references
	Iprp *Iprp
	Idat *Idat // nil when no item uses construction_method 1
	Dinf *Dinf
	Grpl *Grpl // nil when no entity groups are declared
}

func (b *Meta) Tag() fourcc.Type { return fourcc.Meta }

func (b *Meta) children() []*box.Box {
	var cs []*box.Box
	add := func(p box.Payload) {
		if p == nil {
			return
		}
		cs = append(cs, box.New(p))
	}
	add(b.Hdlr)
	if b.Pitm != nil {
		add(b.Pitm)
	}
	add(b.Iinf)
	add(b.Iloc)
	if b.Iref != nil {
		add(b.Iref)
	}
	add(b.Iprp)
	if b.Idat != nil {
		add(b.Idat)
	}
	add(b.Dinf)
	if b.Grpl != nil {
		add(b.Grpl)
	}
	return cs
}

func (b *Meta) SerializePayload(w *bitio.Writer) error {
	return box.WriteChildren(w, b.children())
}

func (b *Meta) ParsePayload(r *bitio.Reader) error {
	reg := box.NewRegistry()
	reg.Register(fourcc.Hdlr, func() box.Payload { return &Hdlr{} })
	reg.Register(fourcc.Pitm, func() box.Payload { return &Pitm{} })
	reg.Register(fourcc.Iinf, func() box.Payload { return &Iinf{} })
	reg.Register(fourcc.Iloc, func() box.Payload { return &Iloc{} })
	reg.Register(fourcc.Iref, func() box.Payload { return &Iref{} })
	reg.Register(fourcc.Iprp, func() box.Payload { return &Iprp{} })
	reg.Register(fourcc.Idat, func() box.Payload { return &Idat{} })
	reg.Register(fourcc.Dinf, func() box.Payload { return &Dinf{} })
	reg.Register(fourcc.Grpl, func() box.Payload { return &Grpl{} })

	for r.Remaining() >= 64 {
		p, err := box.Parse(r, reg.Construct, nil)
		if err != nil {
			return err
		}
		switch v := p.(type) {
		case *Hdlr:
			b.Hdlr = v
		case *Pitm:
			b.Pitm = v
		case *Iinf:
			b.Iinf = v
		case *Iloc:
			b.Iloc = v
		case *Iref:
			b.Iref = v
		case *Iprp:
			b.Iprp = v
		case *Idat:
			b.Idat = v
		case *Dinf:
			b.Dinf = v
		case *Grpl:
			b.Grpl = v
		}
	}
	return nil
}
