// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/identity"
)

// LayerWriter emits one lhv1 item per declared layer ID, each selecting
// a single HEVC scalability layer out of the content's multi-layer
// master via an lsel property, plus a shared tols property naming the
// target output layer set (§4.6 "Layer writer").
//
// §4.6 leaves lsel/tols payload shape undescribed and carries no worked
// example (§8); this writer's chosen interpretation: one lhv1 item per
// layer_id in Layer.LayerIds, a dimg iref from each back to the
// content's first master item (the multi-layer bitstream lives there),
// an lsel property carrying that layer's ID, and a tols property shared
// by all of them carrying Layer.TargetOutputLayer. DESIGN.md records
// this as the resolved interpretation.
type LayerWriter struct {
	cfg        config.Layer
	ctxID      identity.ContextId
	masterBsid uint32
}

func NewLayerWriter(cfg config.Layer, ctxID identity.ContextId, masterBsid uint32) *LayerWriter {
	return &LayerWriter{cfg: cfg, ctxID: ctxID, masterBsid: masterBsid}
}

func (w *LayerWriter) ContextID() identity.ContextId   { return w.ctxID }
func (w *LayerWriter) Init(svc *identity.Service) error { return nil }

func (w *LayerWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	masterIDs, err := resolveAllItemIDs(svc, w.masterBsid)
	if err != nil {
		return nil, err
	}
	if len(masterIDs) == 0 {
		return nil, nil
	}
	base := masterIDs[0]

	tolsIdx := meta.AddProperty(&boxes.Tols{TargetOutputLayerSetIdx: w.cfg.TargetOutputLayer})

	var itemIDs []uint32
	for _, layerID := range w.cfg.LayerIds {
		itemID := meta.AllocItemID()
		itemIDs = append(itemIDs, itemID)
		meta.AddInfe(&boxes.Infe{ItemID: itemID, ItemType: fourcc.Lhv1})
		meta.AddIrefEdge(fourcc.Dimg, itemID, []uint32{base})

		lselIdx := meta.AddProperty(&boxes.Lsel{LayerID: layerID})
		meta.AssociateProperty(itemID, lselIdx, true)
		meta.AssociateProperty(itemID, tolsIdx, false)
	}
	publishItemIDs(svc, w.ctxID, itemIDs)
	return nil, nil
}
