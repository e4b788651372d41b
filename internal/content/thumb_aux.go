// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/herr"
	"github.com/bep/heifwriter/internal/identity"
	"github.com/bep/heifwriter/internal/nalstream"
)

// ThumbWriter emits one thumbnail item per sample in its own bitstream
// and a thmb iref from each thumbnail to the master picture(s) it was
// generated from (§4.6 "Thumbnail writer"). Thumbnails always reference
// their own content block's master, never an arbitrary uniq_bsid, so the
// master's bsid is supplied at construction rather than via a RefSet.
type ThumbWriter struct {
	cfg        config.Thumbs
	ctxID      identity.ContextId
	masterBsid uint32
	stream     *nalstream.Stream
}

func NewThumbWriter(cfg config.Thumbs, ctxID identity.ContextId, masterBsid uint32) *ThumbWriter {
	return &ThumbWriter{cfg: cfg, ctxID: ctxID, masterBsid: masterBsid}
}

func (w *ThumbWriter) ContextID() identity.ContextId { return w.ctxID }

func (w *ThumbWriter) Init(svc *identity.Service) error {
	s, err := nalstream.Open(w.cfg.FilePath)
	if err != nil {
		return err
	}
	w.stream = s
	return nil
}

// selectedMasterIndices resolves which 1-based master-picture positions
// get a thumbnail: explicit sync_idxs wins when given, otherwise every
// sync_rate'th picture starting at 1 (§4.6).
func selectedMasterIndices(cfg config.Thumbs, masterCount int) []uint32 {
	if len(cfg.SyncIdxs) > 0 {
		return cfg.SyncIdxs
	}
	if cfg.SyncRate == 0 {
		return nil
	}
	var out []uint32
	for i := uint32(1); int(i) <= masterCount; i += cfg.SyncRate {
		out = append(out, i)
	}
	return out
}

func (w *ThumbWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	masterIDs, err := resolveAllItemIDs(svc, w.masterBsid)
	if err != nil {
		return nil, err
	}
	selected := selectedMasterIndices(w.cfg, len(masterIDs))
	if len(selected) != len(w.stream.Samples) {
		return nil, herr.NewInconsistent("thumbnail content %d: %d selected master pictures but %d thumbnail samples", w.cfg.UniqBsid, len(selected), len(w.stream.Samples))
	}

	cfgBox, err := decoderConfigProperty(w.stream)
	if err != nil {
		return nil, err
	}
	cfgIdx := meta.AddProperty(cfgBox)
	ispeIdx := meta.AddProperty(&boxes.Ispe{Width: w.stream.SPSInfo.Width, Height: w.stream.SPSInfo.Height})
	itemType := itemTypeForCodec(w.cfg.CodeType, w.stream.Codec)

	var contributions []Contribution
	var itemIDs []uint32
	for i, sample := range w.stream.Samples {
		itemID := meta.AllocItemID()
		itemIDs = append(itemIDs, itemID)

		meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: itemType, Hidden: true})
		meta.AssociateProperty(itemID, ispeIdx, false)
		meta.AssociateProperty(itemID, cfgIdx, true)

		idx := int(selected[i]) - 1
		if idx < 0 || idx >= len(masterIDs) {
			return nil, herr.NewInconsistent("thumbnail content %d: selected master index %d out of range (has %d)", w.cfg.UniqBsid, selected[i], len(masterIDs))
		}
		meta.AddIrefEdge(fourcc.Thmb, itemID, []uint32{masterIDs[idx]})

		item := &boxes.IlocItem{ItemID: itemID, Extents: []boxes.IlocExtent{{Length: uint64(len(sample))}}}
		meta.AddIlocItem(item)
		contributions = append(contributions, Contribution{
			ContextID: w.ctxID,
			Bytes:     sample,
			SetOffset: func(abs uint64) { item.Extents[0].Offset = abs },
		})
	}
	publishItemIDs(svc, w.ctxID, itemIDs)
	return contributions, nil
}

// AuxiliaryWriter emits one auxiliary-image item (alpha, depth, …) per
// sample, marked hidden when Auxiliary.Hidden is set, plus an auxl iref to the pictures it augments and an
// auxC property carrying the urn that names the auxiliary type (§4.6
// "Auxiliary-image writer").
type AuxiliaryWriter struct {
	cfg    config.Auxiliary
	ctxID  identity.ContextId
	stream *nalstream.Stream
}

func NewAuxiliaryWriter(cfg config.Auxiliary, ctxID identity.ContextId) *AuxiliaryWriter {
	return &AuxiliaryWriter{cfg: cfg, ctxID: ctxID}
}

func (w *AuxiliaryWriter) ContextID() identity.ContextId { return w.ctxID }

func (w *AuxiliaryWriter) Init(svc *identity.Service) error {
	s, err := nalstream.Open(w.cfg.FilePath)
	if err != nil {
		return err
	}
	w.stream = s
	return nil
}

func (w *AuxiliaryWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	refs, err := resolveRefSet(svc, w.cfg.RefSet)
	if err != nil {
		return nil, err
	}

	cfgBox, err := decoderConfigProperty(w.stream)
	if err != nil {
		return nil, err
	}
	cfgIdx := meta.AddProperty(cfgBox)
	ispeIdx := meta.AddProperty(&boxes.Ispe{Width: w.stream.SPSInfo.Width, Height: w.stream.SPSInfo.Height})
	auxcIdx := meta.AddProperty(&boxes.AuxC{AuxType: w.cfg.Urn})
	itemType := itemTypeForCodec("", w.stream.Codec)

	var contributions []Contribution
	var itemIDs []uint32
	for i, sample := range w.stream.Samples {
		itemID := meta.AllocItemID()
		itemIDs = append(itemIDs, itemID)

		meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: itemType, Hidden: w.cfg.Hidden})
		meta.AssociateProperty(itemID, ispeIdx, false)
		meta.AssociateProperty(itemID, cfgIdx, true)
		meta.AssociateProperty(itemID, auxcIdx, true)

		if i < len(refs) {
			meta.AddIrefEdge(fourcc.Auxl, itemID, []uint32{refs[i]})
		}

		item := &boxes.IlocItem{ItemID: itemID, Extents: []boxes.IlocExtent{{Length: uint64(len(sample))}}}
		meta.AddIlocItem(item)
		contributions = append(contributions, Contribution{
			ContextID: w.ctxID,
			Bytes:     sample,
			SetOffset: func(abs uint64) { item.Extents[0].Offset = abs },
		})
	}
	publishItemIDs(svc, w.ctxID, itemIDs)
	return contributions, nil
}
