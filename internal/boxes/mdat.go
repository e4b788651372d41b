// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package boxes

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/fourcc"
)

// Mdat is the media-data box: an opaque payload, usually written directly
// by the mdat assembler rather than through this type (the payload can be
// gigabytes; see internal/mdat). Kept for completeness and for the
// first-mdat compatibility-string marker (§4.8).
type Mdat struct {
	Data []byte
}

func (b *Mdat) Tag() fourcc.Type { return fourcc.Mdat }

func (b *Mdat) SerializePayload(w *bitio.Writer) error {
	w.WriteBytes(b.Data)
	return nil
}

func (b *Mdat) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}

// Free is a free-space box, content ignored.
type Free struct {
	Data []byte
}

func (b *Free) Tag() fourcc.Type { return fourcc.Free }

func (b *Free) SerializePayload(w *bitio.Writer) error {
	w.WriteBytes(b.Data)
	return nil
}

func (b *Free) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	b.Data = raw
	return err
}
