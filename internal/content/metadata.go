// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"os"

	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/herr"
	"github.com/bep/heifwriter/internal/identity"

	"github.com/bep/heifwriter/internal/config"
)

// MetadataWriter emits one Exif or XMP item from a plain file (no NAL
// parsing) and a cdsc iref from it to each described master item (§4.6
// "Metadata writer").
type MetadataWriter struct {
	cfg  config.Metadata
	ctxID identity.ContextId
	data []byte
}

func NewMetadataWriter(cfg config.Metadata, ctxID identity.ContextId) *MetadataWriter {
	return &MetadataWriter{cfg: cfg, ctxID: ctxID}
}

func (w *MetadataWriter) ContextID() identity.ContextId { return w.ctxID }

func (w *MetadataWriter) Init(svc *identity.Service) error {
	raw, err := os.ReadFile(w.cfg.FilePath)
	if err != nil {
		return herr.NewFileIO(w.cfg.FilePath, err)
	}
	switch w.cfg.HdlrType {
	case "exif":
		// Exif items carry a 4-byte offset to the TIFF header preceding
		// the raw Exif payload; this writer always places the TIFF
		// header at offset 0.
		w.data = append([]byte{0, 0, 0, 0}, raw...)
	case "xml1":
		w.data = raw
	default:
		return herr.NewConfigInvalidf("content.metadata", "uniq_bsid %d: unsupported hdlr_type %q", w.cfg.UniqBsid, w.cfg.HdlrType)
	}
	return nil
}

func (w *MetadataWriter) itemType() fourcc.Type {
	if w.cfg.HdlrType == "exif" {
		return fourcc.Exif
	}
	return fourcc.Mime
}

func (w *MetadataWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	refs, err := resolveRefSet(svc, w.cfg.RefSet)
	if err != nil {
		return nil, err
	}

	itemID := meta.AllocItemID()
	infe := &boxes.Infe{ItemID: itemID, ItemType: w.itemType()}
	if w.cfg.HdlrType == "xml1" {
		infe.ContentType = "application/rdf+xml"
	}
	meta.AddInfe(infe)
	if len(refs) > 0 {
		meta.AddIrefEdge(fourcc.Cdsc, itemID, refs)
	}

	item := &boxes.IlocItem{ItemID: itemID, Extents: []boxes.IlocExtent{{Length: uint64(len(w.data))}}}
	meta.AddIlocItem(item)

	publishItemIDs(svc, w.ctxID, []uint32{itemID})

	return []Contribution{{
		ContextID: w.ctxID,
		Bytes:     w.data,
		SetOffset: func(abs uint64) { item.Extents[0].Offset = abs },
	}}, nil
}
