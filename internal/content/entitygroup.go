// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/identity"
)

// EntityGroupWriter emits one EntityToGroupBox per declared group
// (§4.6 "Entity group writer"). It carries no media data of its own, so
// Compose never returns contributions. Unlike other writers it is not
// bound to one uniq_bsid: it resolves every member reference across
// whatever contexts the configuration names.
type EntityGroupWriter struct {
	ctxID  identity.ContextId
	groups []config.Egroup
}

func NewEntityGroupWriter(groups []config.Egroup, ctxID identity.ContextId) *EntityGroupWriter {
	return &EntityGroupWriter{ctxID: ctxID, groups: groups}
}

func (w *EntityGroupWriter) ContextID() identity.ContextId   { return w.ctxID }
func (w *EntityGroupWriter) Init(svc *identity.Service) error { return nil }

// resolveEntity maps one (uniq_bsid, item_index) pair to the entity ID
// it names: item_index 0 means the track of that bsid's context,
// otherwise the 1-based item at that index (§4.4).
func resolveEntity(svc *identity.Service, idx config.EntityIndex) (uint32, error) {
	if idx.ItemIndex == 0 {
		return resolveTrackID(svc, idx.UniqBsid)
	}
	return resolveItemID(svc, idx.UniqBsid, idx.ItemIndex)
}

func (w *EntityGroupWriter) Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error) {
	for _, eg := range w.groups {
		groupType := fourcc.Parse(eg.GroupType)
		for _, members := range eg.IdxsLists {
			entityIDs := make([]uint32, 0, len(members))
			for _, m := range members {
				id, err := resolveEntity(svc, m)
				if err != nil {
					return nil, err
				}
				entityIDs = append(entityIDs, id)
			}
			meta.AddEntityGroup(groupType, entityIDs)
		}
	}
	return nil, nil
}
