// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package mdat assembles the media-data region(s) of the output file: the
// logical mdat accumulates every writer's bitstream contribution in
// ascending context-ID order (§4.7), and splits into multiple physical
// mdat boxes when the running size would overflow a 32-bit box and the
// 64-bit form is disabled for it.
package mdat

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/identity"
)

// maxSingleMdatSize caps a single mdat's payload so the box stays
// representable with a 32-bit size; Use64BitSize is available on request
// but this writer prefers splitting into multiple mdat boxes (§4.7
// "Multiple mdats are supported for large files").
const maxSingleMdatSize = 0xFFFFFFFF - 16

// Extent locates one writer's contribution within the assembled regions:
// which physical mdat it landed in, and its offset within that mdat's
// payload.
type Extent struct {
	MdatIndex int
	Offset    uint64
	Length    uint64
}

// Assembler collects contributions in the order writers submit them
// (ascending context ID, per §4.8 step 7) and lazily splits into
// multiple mdat boxes.
type Assembler struct {
	mdats    [][]byte
	extents  map[identity.ContextId][]Extent
	compatStr string
}

// New returns an Assembler whose first mdat carries the compatibility
// marker string required by §4.8 ("First-mdat marker").
func New(compatString string) *Assembler {
	a := &Assembler{
		extents:   make(map[identity.ContextId][]Extent),
		compatStr: compatString,
	}
	a.mdats = append(a.mdats, []byte(compatString))
	return a
}

// Append adds data as one extent owned by contextId, starting a new
// physical mdat if the current one would otherwise exceed
// maxSingleMdatSize, and returns the recorded Extent.
func (a *Assembler) Append(contextId identity.ContextId, data []byte) Extent {
	idx := len(a.mdats) - 1
	if uint64(len(a.mdats[idx]))+uint64(len(data)) > maxSingleMdatSize {
		a.mdats = append(a.mdats, nil)
		idx++
	}
	offset := uint64(len(a.mdats[idx]))
	a.mdats[idx] = append(a.mdats[idx], data...)
	ext := Extent{MdatIndex: idx, Offset: offset, Length: uint64(len(data))}
	a.extents[contextId] = append(a.extents[contextId], ext)
	return ext
}

// Extents returns the recorded extents for contextId in append order.
func (a *Assembler) Extents(contextId identity.ContextId) []Extent {
	return a.extents[contextId]
}

// MdatCount returns the number of physical mdat boxes.
func (a *Assembler) MdatCount() int { return len(a.mdats) }

// MdatPayloadSize returns the payload size of mdat i (excluding its
// header).
func (a *Assembler) MdatPayloadSize(i int) uint64 { return uint64(len(a.mdats[i])) }

// WriteMdat serializes mdat i (header + payload) to w and returns the
// box's header length, needed by the planner to compute each extent's
// absolute file offset (header length + payload start).
func (a *Assembler) WriteMdat(w *bitio.Writer, i int) (headerLen int, err error) {
	b := box.New(&boxes.Mdat{Data: a.mdats[i]})
	if uint64(len(a.mdats[i])) > maxSingleMdatSize {
		b.Use64BitSize = true
	}
	if err := b.Write(w); err != nil {
		return 0, err
	}
	return b.HeaderLen(), nil
}
