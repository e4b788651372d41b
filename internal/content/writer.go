// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"strconv"

	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/herr"
	"github.com/bep/heifwriter/internal/identity"
)

// itemIDsKey is the identity.Store key every content writer publishes its
// item IDs under, in the picture/item order other writers index into via
// RefSet.IdxsList's 1-based indices (§4.4).
const itemIDsKey = "item_ids"

// trackIDKey is the identity.Store key a track-encapsulated master
// publishes its track ID under, resolved by entity-group references
// whose item_index is 0 ("the track of that context", §4.4).
const trackIDKey = "track_id"

// Writer is the two-phase protocol every content writer implements.
type Writer interface {
	// ContextID returns the identity the planner allocated for this
	// writer.
	ContextID() identity.ContextId
	// Init parses the writer's bitstream(s) and publishes any facts other
	// writers resolve by uniq_bsid (§4.8 phase A).
	Init(svc *identity.Service) error
	// Compose appends this writer's items/properties/references to the
	// shared trees and returns its mdat contributions (§4.8 phase B).
	Compose(svc *identity.Service, meta *MetaAssembly, moov *MoovAssembly) ([]Contribution, error)
}

// publishItemIDs records ids, in order, on contextID's store so RefSet
// references into this writer's items resolve later.
func publishItemIDs(svc *identity.Service, contextID identity.ContextId, ids []uint32) {
	store := svc.LookupStore(contextID)
	for _, id := range ids {
		store.Set(itemIDsKey, strconv.FormatUint(uint64(id), 10))
	}
}

// resolveItemID maps (uniq_bsid, 1-based index) to the item ID that
// content's writer published at that position.
func resolveItemID(svc *identity.Service, uniqBsid, index uint32) (uint32, error) {
	ctxID, err := svc.ResolveBsid(uniqBsid)
	if err != nil {
		return 0, err
	}
	store := svc.LookupStore(ctxID)
	if store == nil {
		return 0, herr.NewUnresolvedReference(uniqBsid)
	}
	ids, err := store.Get(itemIDsKey)
	if err != nil {
		return 0, err
	}
	if index == 0 || int(index) > len(ids) {
		return 0, herr.NewInconsistent("uniq_bsid %d: item index %d out of range (has %d items)", uniqBsid, index, len(ids))
	}
	v, err := strconv.ParseUint(ids[index-1], 10, 32)
	if err != nil {
		return 0, herr.NewInconsistent("uniq_bsid %d: corrupt item_ids entry: %v", uniqBsid, err)
	}
	return uint32(v), nil
}

// publishTrackID records the track ID a track-encapsulated master
// allocated so entity groups can resolve item_index 0 references to it.
func publishTrackID(svc *identity.Service, contextID identity.ContextId, trackID uint32) {
	svc.LookupStore(contextID).Set(trackIDKey, strconv.FormatUint(uint64(trackID), 10))
}

// resolveTrackID resolves a (uniq_bsid, item_index=0) entity reference
// to the track ID that bsid's master published.
func resolveTrackID(svc *identity.Service, uniqBsid uint32) (uint32, error) {
	ctxID, err := svc.ResolveBsid(uniqBsid)
	if err != nil {
		return 0, err
	}
	store := svc.LookupStore(ctxID)
	if store == nil {
		return 0, herr.NewUnresolvedReference(uniqBsid)
	}
	ids, err := store.Get(trackIDKey)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(ids[len(ids)-1], 10, 32)
	if err != nil {
		return 0, herr.NewInconsistent("uniq_bsid %d: corrupt track_id entry: %v", uniqBsid, err)
	}
	return uint32(v), nil
}

// resolveAllItemIDs returns every item ID a bsid's writer published, in
// creation order, for callers that need the full set rather than
// specific indices (e.g. thumbnail sync-rate selection).
func resolveAllItemIDs(svc *identity.Service, uniqBsid uint32) ([]uint32, error) {
	ctxID, err := svc.ResolveBsid(uniqBsid)
	if err != nil {
		return nil, err
	}
	store := svc.LookupStore(ctxID)
	if store == nil {
		return nil, herr.NewUnresolvedReference(uniqBsid)
	}
	raw, err := store.Get(itemIDsKey)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(raw))
	for i, v := range raw {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, herr.NewInconsistent("uniq_bsid %d: corrupt item_ids entry: %v", uniqBsid, err)
		}
		out[i] = uint32(n)
	}
	return out, nil
}

// ResolvePrimaryItem resolves general.prim_refr/prim_indx to a concrete
// item ID and sets it on meta, for the planner to call once every writer
// has composed (§4.6 Master writer: "planner enforces uniqueness";
// §4.8 step 3 processes content blocks before the primary item, a
// file-level declaration, can be applied).
func ResolvePrimaryItem(svc *identity.Service, meta *MetaAssembly, uniqBsid, index uint32) error {
	id, err := resolveItemID(svc, uniqBsid, index)
	if err != nil {
		return err
	}
	meta.SetPitm(id)
	return nil
}

// resolveRefSet expands a config.RefSet into the flat, ordered list of
// item IDs it names: refs_list[i] paired with idxs_list[i]'s indices, in
// declaration order (§4.4).
func resolveRefSet(svc *identity.Service, rs config.RefSet) ([]uint32, error) {
	if len(rs.RefsList) != len(rs.IdxsList) {
		return nil, herr.NewInconsistent("refs_list length %d != idxs_list length %d", len(rs.RefsList), len(rs.IdxsList))
	}
	var out []uint32
	for i, bsid := range rs.RefsList {
		for _, idx := range rs.IdxsList[i] {
			id, err := resolveItemID(svc, bsid, idx)
			if err != nil {
				return nil, err
			}
			out = append(out, id)
		}
	}
	return out, nil
}
