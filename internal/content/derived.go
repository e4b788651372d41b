// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/herr"
	"github.com/bep/heifwriter/internal/identity"
)

// IdentityTransformWriter emits one iden item per resolved source item,
// each carrying exactly one essential property (irot/imir/clap/rloc) and
// a dimg iref from the iden item back to its source (§4.6 "Identity
// transforms"). One writer handles all four kinds since they only
// differ in which property box they attach.
type IdentityTransformWriter struct {
	ctxID    identity.ContextId
	refSets  []config.RefSet
	property func(i int) box.Payload
	kind     string
}

// NewIrotWriter, NewImirWriter, NewClapWriter, NewRlocWriter adapt each
// derivation kind's config slice to the shared identity-transform
// assembly logic.

func NewIrotWriter(cfg []config.Irot, ctxID identity.ContextId) *IdentityTransformWriter {
	refSets := make([]config.RefSet, len(cfg))
	for i, c := range cfg {
		refSets[i] = c.RefSet
	}
	return &IdentityTransformWriter{
		ctxID: ctxID, refSets: refSets, kind: "irot",
		property: func(i int) box.Payload { return &boxes.Irot{Angle90: cfg[i].Angle90} },
	}
}

func NewImirWriter(cfg []config.Imir, ctxID identity.ContextId) *IdentityTransformWriter {
	refSets := make([]config.RefSet, len(cfg))
	for i, c := range cfg {
		refSets[i] = c.RefSet
	}
	return &IdentityTransformWriter{
		ctxID: ctxID, refSets: refSets, kind: "imir",
		property: func(i int) box.Payload { return &boxes.Imir{Axis: cfg[i].Axis} },
	}
}

func NewClapWriter(cfg []config.Clap, ctxID identity.ContextId) *IdentityTransformWriter {
	refSets := make([]config.RefSet, len(cfg))
	for i, c := range cfg {
		refSets[i] = c.RefSet
	}
	return &IdentityTransformWriter{
		ctxID: ctxID, refSets: refSets, kind: "clap",
		property: func(i int) box.Payload {
			c := cfg[i]
			return &boxes.Clap{
				CleanApertureWidthN: c.CleanApertureWidthN, CleanApertureWidthD: c.CleanApertureWidthD,
				CleanApertureHeightN: c.CleanApertureHeightN, CleanApertureHeightD: c.CleanApertureHeightD,
				HorizOffN: c.HorizOffN, HorizOffD: c.HorizOffD,
				VertOffN: c.VertOffN, VertOffD: c.VertOffD,
			}
		},
	}
}

func NewRlocWriter(cfg []config.Rloc, ctxID identity.ContextId) *IdentityTransformWriter {
	refSets := make([]config.RefSet, len(cfg))
	for i, c := range cfg {
		refSets[i] = c.RefSet
	}
	return &IdentityTransformWriter{
		ctxID: ctxID, refSets: refSets, kind: "rloc",
		property: func(i int) box.Payload {
			return &boxes.Rloc{HorizontalOffset: cfg[i].HorizontalOffset, VerticalOffset: cfg[i].VerticalOffset}
		},
	}
}

func (w *IdentityTransformWriter) ContextID() identity.ContextId { return w.ctxID }
func (w *IdentityTransformWriter) Init(svc *identity.Service) error { return nil }

func (w *IdentityTransformWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	var itemIDs []uint32
	for i, rs := range w.refSets {
		sources, err := resolveRefSet(svc, rs)
		if err != nil {
			return nil, err
		}
		propIdx := meta.AddProperty(w.property(i))
		for _, src := range sources {
			itemID := meta.AllocItemID()
			itemIDs = append(itemIDs, itemID)
			meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: fourcc.Iden})
			meta.AssociateProperty(itemID, propIdx, true)
			meta.AddIrefEdge(fourcc.Dimg, itemID, []uint32{src})
		}
	}
	publishItemIDs(svc, w.ctxID, itemIDs)
	return nil, nil
}

// PreDerivedWriter emits one iden item per resolved source using only a
// base iref, for pre-derived images that carry no transform property of
// their own (§4.6 "PreDerived").
type PreDerivedWriter struct {
	ctxID   identity.ContextId
	refSets []config.RefSet
}

func NewPreDerivedWriter(cfg []config.PreDerived, ctxID identity.ContextId) *PreDerivedWriter {
	refSets := make([]config.RefSet, len(cfg))
	for i, c := range cfg {
		refSets[i] = c.RefSet
	}
	return &PreDerivedWriter{ctxID: ctxID, refSets: refSets}
}

func (w *PreDerivedWriter) ContextID() identity.ContextId   { return w.ctxID }
func (w *PreDerivedWriter) Init(svc *identity.Service) error { return nil }

func (w *PreDerivedWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	var itemIDs []uint32
	for _, rs := range w.refSets {
		sources, err := resolveRefSet(svc, rs)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			itemID := meta.AllocItemID()
			itemIDs = append(itemIDs, itemID)
			meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: fourcc.Iden})
			meta.AddIrefEdge(fourcc.Base, itemID, []uint32{src})
		}
	}
	publishItemIDs(svc, w.ctxID, itemIDs)
	return nil, nil
}

// gridOverlayFieldsAreLarge reports whether any of vals exceeds the
// unsigned 16-bit range, forcing the 32-bit field layout (§4.6 "Grid"
// and "Overlay").
func gridOverlayFieldsAreLarge(vals ...uint32) bool {
	for _, v := range vals {
		if v > 0xFFFF {
			return true
		}
	}
	return false
}

// GridWriter emits one grid item whose idat payload lists the cells of
// a rows x columns canvas in scan order, referenced by a dimg iref in
// that same order (§4.6 "Grid", §8 scenario 3).
type GridWriter struct {
	ctxID identity.ContextId
	cfg   []config.Grid
}

func NewGridWriter(cfg []config.Grid, ctxID identity.ContextId) *GridWriter {
	return &GridWriter{ctxID: ctxID, cfg: cfg}
}

func (w *GridWriter) ContextID() identity.ContextId   { return w.ctxID }
func (w *GridWriter) Init(svc *identity.Service) error { return nil }

func gridPayload(rows, cols, width, height uint32) []byte {
	large := gridOverlayFieldsAreLarge(width, height)
	bw := bitio.NewWriter()
	bw.WriteU8(0) // version
	flags := uint32(0)
	if large {
		flags = 1
	}
	bw.WriteU8(uint8(flags))
	bw.WriteU8(uint8(rows - 1))
	bw.WriteU8(uint8(cols - 1))
	if large {
		bw.WriteU32(width)
		bw.WriteU32(height)
	} else {
		bw.WriteU16(uint16(width))
		bw.WriteU16(uint16(height))
	}
	return bw.Bytes()
}

func (w *GridWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	var itemIDs []uint32
	for _, g := range w.cfg {
		sources, err := resolveRefSet(svc, g.RefSet)
		if err != nil {
			return nil, err
		}
		want := int(g.Rows * g.Columns)
		if len(sources) != want {
			return nil, herr.NewInconsistent("grid uniq_bsid %d: rows*columns=%d but %d cells referenced", g.UniqBsid, want, len(sources))
		}

		itemID := meta.AllocItemID()
		itemIDs = append(itemIDs, itemID)
		meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: fourcc.Grid})
		meta.AddIrefEdge(fourcc.Dimg, itemID, sources)
		meta.AssociateProperty(itemID, meta.AddProperty(&boxes.Ispe{Width: g.OutputWidth, Height: g.OutputHeight}), false)

		payload := gridPayload(g.Rows, g.Columns, g.OutputWidth, g.OutputHeight)
		offset := meta.AppendIdat(payload)
		item := &boxes.IlocItem{
			ItemID:             itemID,
			ConstructionMethod: 1,
			Extents:            []boxes.IlocExtent{{Offset: offset, Length: uint64(len(payload))}},
		}
		meta.AddIlocItem(item)
	}
	publishItemIDs(svc, w.ctxID, itemIDs)
	return nil, nil
}

// OverlayWriter emits one iovl item per config.Iovl: a canvas fill
// color, output dimensions, and one signed (h,v) offset per referenced
// image, all 16-bit unless any value forces the 32-bit layout (§4.6
// "Overlay", §8 scenario 4).
type OverlayWriter struct {
	ctxID identity.ContextId
	cfg   []config.Iovl
}

func NewOverlayWriter(cfg []config.Iovl, ctxID identity.ContextId) *OverlayWriter {
	return &OverlayWriter{ctxID: ctxID, cfg: cfg}
}

func (w *OverlayWriter) ContextID() identity.ContextId   { return w.ctxID }
func (w *OverlayWriter) Init(svc *identity.Service) error { return nil }

func overlayFieldsAreLarge(ov config.Iovl) bool {
	if gridOverlayFieldsAreLarge(ov.OutputWidth, ov.OutputHeight) {
		return true
	}
	for _, o := range ov.Offsets {
		if o.Horizontal > 0x7FFF || o.Horizontal < -0x8000 || o.Vertical > 0x7FFF || o.Vertical < -0x8000 {
			return true
		}
	}
	return false
}

func overlayPayload(ov config.Iovl) []byte {
	large := overlayFieldsAreLarge(ov)
	bw := bitio.NewWriter()
	bw.WriteU8(0) // version
	flags := uint32(0)
	if large {
		flags = 1
	}
	bw.WriteU8(uint8(flags))
	bw.WriteU16(ov.CanvasFillR)
	bw.WriteU16(ov.CanvasFillG)
	bw.WriteU16(ov.CanvasFillB)
	bw.WriteU16(ov.CanvasFillA)
	if large {
		bw.WriteU32(ov.OutputWidth)
		bw.WriteU32(ov.OutputHeight)
	} else {
		bw.WriteU16(uint16(ov.OutputWidth))
		bw.WriteU16(uint16(ov.OutputHeight))
	}
	for _, o := range ov.Offsets {
		if large {
			bw.WriteU32(uint32(o.Horizontal))
			bw.WriteU32(uint32(o.Vertical))
		} else {
			bw.WriteU16(uint16(int16(o.Horizontal)))
			bw.WriteU16(uint16(int16(o.Vertical)))
		}
	}
	return bw.Bytes()
}

func (w *OverlayWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	var itemIDs []uint32
	for _, ov := range w.cfg {
		sources, err := resolveRefSet(svc, ov.RefSet)
		if err != nil {
			return nil, err
		}
		if len(sources) != len(ov.Offsets) {
			return nil, herr.NewInconsistent("overlay uniq_bsid %d: %d referenced images but %d offsets", ov.UniqBsid, len(sources), len(ov.Offsets))
		}

		itemID := meta.AllocItemID()
		itemIDs = append(itemIDs, itemID)
		meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: fourcc.Iovl})
		meta.AddIrefEdge(fourcc.Dimg, itemID, sources)
		meta.AssociateProperty(itemID, meta.AddProperty(&boxes.Ispe{Width: ov.OutputWidth, Height: ov.OutputHeight}), false)

		payload := overlayPayload(ov)
		offset := meta.AppendIdat(payload)
		item := &boxes.IlocItem{
			ItemID:             itemID,
			ConstructionMethod: 1,
			Extents:            []boxes.IlocExtent{{Offset: offset, Length: uint64(len(payload))}},
		}
		meta.AddIlocItem(item)
	}
	publishItemIDs(svc, w.ctxID, itemIDs)
	return nil, nil
}
