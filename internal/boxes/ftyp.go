// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package boxes is the concrete box catalog: every ISOBMFF/HEIF box type
// the writer needs to emit or parse, implementing box.Payload (and
// box.FullPayload where the standard calls for a version/flags tuple).
package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Ftyp is the file-type box: major brand, minor version, compatible
// brands.
type Ftyp struct {
	MajorBrand       fourcc.Type
	MinorVersion     uint32
	CompatibleBrands []fourcc.Type
}

func (b *Ftyp) Tag() fourcc.Type { return fourcc.Ftyp }

func (b *Ftyp) SerializePayload(w *bitio.Writer) error {
	mb := b.MajorBrand.Bytes()
	w.WriteBytes(mb[:])
	w.WriteU32(b.MinorVersion)
	for _, c := range b.CompatibleBrands {
		cb := c.Bytes()
		w.WriteBytes(cb[:])
	}
	return nil
}

func (b *Ftyp) ParsePayload(r *bitio.Reader) error {
	mb, err := r.ReadU32()
	if err != nil {
		return err
	}
	b.MajorBrand = fourcc.Type(mb)
	b.MinorVersion, err = r.ReadU32()
	if err != nil {
		return err
	}
	b.CompatibleBrands = nil
	for r.Remaining() >= 32 {
		v, err := r.ReadU32()
		if err != nil {
			return err
		}
		b.CompatibleBrands = append(b.CompatibleBrands, fourcc.Type(v))
	}
	return nil
}
