// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package box implements the universal ISOBMFF record: a length-prefixed,
// tagged box with an abstract payload, plus the full-box variant that
// prepends a version and flags. Concrete box types (internal/boxes)
// implement only SerializePayload/ParsePayload; this package handles the
// header, size patching, and offset bookkeeping every box shares.
package box

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/herr"
)

// Payload is implemented by every concrete box type.
type Payload interface {
	// Tag returns the box's 4CC type.
	Tag() fourcc.Type
	// SerializePayload writes the box's payload (not the header) to w.
	SerializePayload(w *bitio.Writer) error
	// ParsePayload populates the box from its payload bytes.
	ParsePayload(r *bitio.Reader) error
}

// FullPayload is implemented by box types that carry a version/flags
// tuple immediately after the header (ISOBMFF "FullBox").
type FullPayload interface {
	Payload
	Version() uint8
	Flags() uint32
}

// Box wraps a Payload with header handling: size computation, 32/64-bit
// size promotion, and a start-offset memo recording where Write placed the
// box within its Writer.
type Box struct {
	Payload Payload

	// Use64BitSize forces the 16-byte largesize header even if the box
	// would otherwise fit in 32 bits.
	Use64BitSize bool

	// StartOffset is set by Write: the byte offset, within the Writer it
	// was written to, of this box's first header byte.
	StartOffset int64
}

// New wraps p in a Box.
func New(p Payload) *Box {
	return &Box{Payload: p}
}

// Write serializes the full box (header + optional version/flags +
// payload) to w, patching the size field once the payload length is
// known, per §4.1/§4.2.
func (b *Box) Write(w *bitio.Writer) error {
	b.StartOffset = w.Pos()

	sizePos := w.Pos()
	if b.Use64BitSize {
		w.WriteU32(1)
	} else {
		w.WriteU32(0) // placeholder, patched below
	}
	tag := b.Payload.Tag()
	tb := tag.Bytes()
	w.WriteBytes(tb[:])

	var largesizePos int64 = -1
	if b.Use64BitSize {
		largesizePos = w.Pos()
		w.WriteU64(0) // placeholder
	}

	fb, isFull := b.Payload.(FullPayload)
	var vfPos int64 = -1
	if isFull {
		vfPos = w.Pos()
		w.WriteU32(0) // version+flags, patched below once SerializePayload has chosen them
	}

	if err := b.Payload.SerializePayload(w); err != nil {
		return err
	}
	if isFull {
		w.PatchU32At(vfPos, uint32(fb.Version())<<24|fb.Flags()&0x00FFFFFF)
	}

	total := uint64(w.Pos() - sizePos)
	if b.Use64BitSize {
		w.PatchU64At(largesizePos, total)
		return nil
	}
	if total > 0xFFFFFFFF {
		return herr.NewBoxTooLarge(tag.String())
	}
	w.PatchU32At(sizePos, uint32(total))
	return nil
}

// HeaderLen returns the number of header bytes this box occupies: 8 for a
// plain 32-bit-size box, 16 when Use64BitSize is set, plus 4 for
// version+flags on a full box.
func (b *Box) HeaderLen() int {
	n := 8
	if b.Use64BitSize {
		n += 8
	}
	if _, ok := b.Payload.(FullPayload); ok {
		n += 4
	}
	return n
}

// Parse reads one box (header, optional version/flags, and payload) from
// r using the given constructor registry, returning the concrete Payload.
// Unknown tags are skipped with a caller-supplied warning callback and
// materialize as an *Opaque box preserving the original bytes.
func Parse(r *bitio.Reader, construct func(fourcc.Type) Payload, onUnknown func(fourcc.Type)) (Payload, error) {
	hdr, payloadR, err := bitio.ExtractSubBox(r)
	if err != nil {
		return nil, err
	}
	var tag fourcc.Type
	tag = fourcc.Type(uint32(hdr.Tag[0])<<24 | uint32(hdr.Tag[1])<<16 | uint32(hdr.Tag[2])<<8 | uint32(hdr.Tag[3]))

	p := construct(tag)
	if p == nil {
		if onUnknown != nil {
			onUnknown(tag)
		}
		raw, _ := payloadR.ReadBytes(payloadR.Remaining() / 8)
		return &Opaque{TagV: tag, Raw: raw}, nil
	}

	if fb, ok := p.(fullPayloadParser); ok {
		vf, err := payloadR.ReadU32()
		if err != nil {
			return nil, err
		}
		fb.setVersionFlags(uint8(vf>>24), vf&0x00FFFFFF)
	}
	if err := p.ParsePayload(payloadR); err != nil {
		return nil, err
	}
	return p, nil
}

// fullPayloadParser lets concrete full-box types receive the version and
// flags the generic parser reads from the header, without requiring every
// Payload to carry them.
type fullPayloadParser interface {
	setVersionFlags(version uint8, flags uint32)
}

// Opaque preserves the raw bytes of a box whose tag this implementation
// does not know how to interpret (§4.2: "Unknown tags are skipped at all
// levels with a warning").
type Opaque struct {
	TagV fourcc.Type
	Raw  []byte
}

func (o *Opaque) Tag() fourcc.Type { return o.TagV }

func (o *Opaque) SerializePayload(w *bitio.Writer) error {
	w.WriteBytes(o.Raw)
	return nil
}

func (o *Opaque) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	if err != nil {
		return err
	}
	o.Raw = raw
	return nil
}
