// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/identity"
)

// BuildWriters constructs every content writer the configuration names,
// in the order §4.8 step 3 requires: master of each content, then for
// each content in order thumbs/auxiliary/derived/metadata/layers, then
// entity groups. Each writer's context is allocated and, where the
// writer owns a uniq_bsid, bound before the next writer is created, so
// later writers can already resolve earlier ones by uniq_bsid once
// Init/Compose run.
//
// The four identity-transform kinds (irot/imir/clap/rloc) carry no
// uniq_bsid of their own in the configuration (§6.1's Irot/Imir/Clap/
// Rloc embed only a RefSet): nothing in this writer's scope cites their
// produced iden items back by reference, so their contexts are
// allocated for bookkeeping only and never bound to a bsid.
func BuildWriters(cfg *config.Configuration, svc *identity.Service) []Writer {
	var writers []Writer

	bind := func(uniqBsid uint32) identity.ContextId {
		id := svc.AllocateContext()
		svc.BindBsid(uniqBsid, id)
		return id
	}

	for i := range cfg.Content {
		ct := &cfg.Content[i]
		writers = append(writers, NewMasterWriter(ct.Master, bind(ct.Master.UniqBsid)))
	}

	for i := range cfg.Content {
		ct := &cfg.Content[i]
		masterBsid := ct.Master.UniqBsid

		for _, t := range ct.Thumbs {
			writers = append(writers, NewThumbWriter(t, bind(t.UniqBsid), masterBsid))
		}
		for _, a := range ct.Auxiliary {
			writers = append(writers, NewAuxiliaryWriter(a, bind(a.UniqBsid)))
		}

		d := ct.Derived
		if len(d.Irots) > 0 {
			writers = append(writers, NewIrotWriter(d.Irots, svc.AllocateContext()))
		}
		if len(d.Imirs) > 0 {
			writers = append(writers, NewImirWriter(d.Imirs, svc.AllocateContext()))
		}
		if len(d.Claps) > 0 {
			writers = append(writers, NewClapWriter(d.Claps, svc.AllocateContext()))
		}
		if len(d.Rlocs) > 0 {
			writers = append(writers, NewRlocWriter(d.Rlocs, svc.AllocateContext()))
		}
		for _, g := range d.Grids {
			writers = append(writers, NewGridWriter([]config.Grid{g}, bind(g.UniqBsid)))
		}
		for _, ov := range d.Iovls {
			writers = append(writers, NewOverlayWriter([]config.Iovl{ov}, bind(ov.UniqBsid)))
		}
		for _, pd := range d.PreDeriveds {
			writers = append(writers, NewPreDerivedWriter([]config.PreDerived{pd}, bind(pd.UniqBsid)))
		}

		for _, md := range ct.Metadata {
			writers = append(writers, NewMetadataWriter(md, bind(md.UniqBsid)))
		}
		for _, l := range ct.Layers {
			writers = append(writers, NewLayerWriter(l, bind(l.UniqBsid), masterBsid))
		}
	}

	if len(cfg.Egroups) > 0 {
		writers = append(writers, NewEntityGroupWriter(cfg.Egroups, svc.AllocateContext()))
	}

	return writers
}
