// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Hdlr declares the handler type of the enclosing meta or media box
// (pict, auxv, vide, soun, and the metadata handlers Exif/mime use their
// own item types rather than a distinct hdlr, per §4.6).
type Hdlr struct {
	box.FullBox
	PreDefined  uint32
	HandlerType fourcc.Type
	Name        string
}

func (b *Hdlr) Tag() fourcc.Type { return fourcc.Hdlr }

func (b *Hdlr) SerializePayload(w *bitio.Writer) error {
	w.WriteU32(b.PreDefined)
	ht := b.HandlerType.Bytes()
	w.WriteBytes(ht[:])
	w.WriteU32(0) // reserved[3]
	w.WriteU32(0)
	w.WriteU32(0)
	w.WriteZeroTerminatedString(b.Name)
	return nil
}

func (b *Hdlr) ParsePayload(r *bitio.Reader) error {
	var err error
	if b.PreDefined, err = r.ReadU32(); err != nil {
		return err
	}
	ht, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.HandlerType = fourcc.Type(ht)
	if _, err = r.ReadU32(); err != nil {
		return err
	}
	if _, err = r.ReadU32(); err != nil {
		return err
	}
	if _, err = r.ReadU32(); err != nil {
		return err
	}
	rest, err := r.ReadBytes(r.Remaining() / 8)
	if err != nil {
		return err
	}
	for i, c := range rest {
		if c == 0 {
			b.Name = string(rest[:i])
			break
		}
	}
	return nil
}
