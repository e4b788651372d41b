// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package content implements the per-item-kind assemblers of §4.6: one
// Writer per content-writer kind (master, thumbnail, auxiliary, derived
// grid/overlay/identity-transform, metadata, entity-group, layer), each
// following the two-phase protocol the planner drives them through: Init
// parses the writer's bitstream(s) and publishes facts other writers can
// look up by uniq_bsid; Compose appends the writer's boxes to the shared
// meta/moov trees and returns its media-data contributions for the
// planner to assemble into mdat (§4.8 steps 4-7).
package content

import (
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/boxes"
	"github.com/bep/heifwriter/internal/fourcc"
	"github.com/bep/heifwriter/internal/identity"
)

// Contribution is one writer's bitstream payload destined for mdat. Bytes
// is appended to the assembler in context-ID order (§4.8 step 7);
// SetOffset is called once with the resulting absolute file offset so the
// writer can patch the iloc extent (or stco/co64 entry) that addresses it.
type Contribution struct {
	ContextID identity.ContextId
	Bytes     []byte
	SetOffset func(absolute uint64)
}

// MetaAssembly is the single shared meta box tree every writer appends
// items, properties, and references to.
type MetaAssembly struct {
	Hdlr *boxes.Hdlr
	Pitm *boxes.Pitm
	Iinf *boxes.Iinf
	Iloc *boxes.Iloc
	Iref *boxes.Iref
	Iprp *boxes.Iprp
	Idat *boxes.Idat
	Dinf *boxes.Dinf
	Grpl *boxes.Grpl

	nextItemID  uint32
	nextGroupID uint32
	// ipma indexes the one Ipma association this writer emits (§4.3 "this
	// writer always emits exactly one") keyed by item ID for cheap lookup
	// while composing.
	ipma map[uint32]*boxes.IpmaAssociation
}

// NewMetaAssembly returns an empty meta tree ready for writers to append
// to.
func NewMetaAssembly() *MetaAssembly {
	ipco := &boxes.Ipco{}
	ipma := &boxes.Ipma{}
	return &MetaAssembly{
		Hdlr: &boxes.Hdlr{HandlerType: fourcc.HandlerPict},
		Iinf: &boxes.Iinf{},
		Iloc: &boxes.Iloc{},
		Iprp: &boxes.Iprp{Ipco: ipco, Ipma: []*boxes.Ipma{ipma}},
		Dinf: boxes.DefaultDinf(),
		ipma: make(map[uint32]*boxes.IpmaAssociation),
	}
}

// AllocItemID returns the next 1-based item ID.
func (m *MetaAssembly) AllocItemID() uint32 {
	m.nextItemID++
	return m.nextItemID
}

// AddInfe registers an item_info entry.
func (m *MetaAssembly) AddInfe(infe *boxes.Infe) {
	m.Iinf.Entries = append(m.Iinf.Entries, infe)
}

// AddIlocItem registers an item's location record.
func (m *MetaAssembly) AddIlocItem(item *boxes.IlocItem) {
	m.Iloc.Items = append(m.Iloc.Items, item)
}

// AddIrefEdge records a (from, refType, to...) item reference, creating
// iref lazily since most files have at least one reference but an iref-
// free meta (a single plain master) must not emit an empty box.
func (m *MetaAssembly) AddIrefEdge(refType fourcc.Type, from uint32, to []uint32) {
	if m.Iref == nil {
		m.Iref = &boxes.Iref{}
	}
	m.Iref.References = append(m.Iref.References, &boxes.SingleItemReference{
		RefType:  refType,
		FromItem: from,
		ToItems:  to,
	})
}

// AddProperty appends a property box to ipco and returns its 1-based
// index.
func (m *MetaAssembly) AddProperty(p box.Payload) uint32 {
	m.Iprp.Ipco.Properties = append(m.Iprp.Ipco.Properties, box.New(p))
	return uint32(len(m.Iprp.Ipco.Properties))
}

// AssociateProperty records that itemID uses the property at propIndex,
// essential or not (§4.3).
func (m *MetaAssembly) AssociateProperty(itemID, propIndex uint32, essential bool) {
	a, ok := m.ipma[itemID]
	if !ok {
		a = &boxes.IpmaAssociation{ItemID: itemID}
		m.ipma[itemID] = a
		m.Iprp.Ipma[0].Associations = append(m.Iprp.Ipma[0].Associations, a)
	}
	a.PropertyIndex = append(a.PropertyIndex, propIndex)
	a.Essential = append(a.Essential, essential)
}

// AddEntityGroup registers an EntityToGroupBox of groupType over entityIDs,
// creating grpl lazily and allocating the next 1-based group ID (shared
// across every writer that calls this, so an altr group built by a master
// and an explicit egroup declaration never collide).
func (m *MetaAssembly) AddEntityGroup(groupType fourcc.Type, entityIDs []uint32) uint32 {
	if m.Grpl == nil {
		m.Grpl = &boxes.Grpl{}
	}
	m.nextGroupID++
	m.Grpl.Groups = append(m.Grpl.Groups, &boxes.EntityToGroupBox{
		GroupType: groupType,
		GroupID:   m.nextGroupID,
		EntityIDs: entityIDs,
	})
	return m.nextGroupID
}

// AppendIdat stores data inline (construction_method 1) and returns its
// offset within idat, allocating the idat box lazily.
func (m *MetaAssembly) AppendIdat(data []byte) uint64 {
	if m.Idat == nil {
		m.Idat = &boxes.Idat{}
	}
	return m.Idat.Append(data)
}

// SetPitm declares itemID the primary item. Later calls win, matching
// general.prim_refr/prim_indx being resolved after every content block is
// composed (§4.8 step 3 processes content in order; the primary item is a
// file-level declaration applied once all items exist).
func (m *MetaAssembly) SetPitm(itemID uint32) {
	m.Pitm = &boxes.Pitm{ItemID: itemID}
}

// Build assembles the final *boxes.Meta, omitting the pitm/iref/idat
// children this file never populated.
func (m *MetaAssembly) Build() *boxes.Meta {
	return &boxes.Meta{
		Hdlr: m.Hdlr,
		Pitm: m.Pitm,
		Iinf: m.Iinf,
		Iloc: m.Iloc,
		Iref: m.Iref,
		Iprp: m.Iprp,
		Idat: m.Idat,
		Dinf: m.Dinf,
		Grpl: m.Grpl,
	}
}

// MoovAssembly is the shared moov tree for track-encapsulated masters
// (§4.6 "Track writers"); most files never populate it.
type MoovAssembly struct {
	Mvhd        *boxes.Mvhd
	Trak        []*boxes.Trak
	nextTrackID uint32
}

// NewMoovAssembly returns an empty movie tree.
func NewMoovAssembly() *MoovAssembly {
	return &MoovAssembly{Mvhd: &boxes.Mvhd{Timescale: 1, NextTrackID: 1}}
}

// AllocTrackID returns the next 1-based track ID and keeps mvhd.next_
// track_ID in sync.
func (a *MoovAssembly) AllocTrackID() uint32 {
	a.nextTrackID++
	a.Mvhd.NextTrackID = a.nextTrackID + 1
	return a.nextTrackID
}

// AddTrak registers a track.
func (a *MoovAssembly) AddTrak(t *boxes.Trak) {
	a.Trak = append(a.Trak, t)
}

// Build assembles the final *boxes.Moov, or nil if no tracks were added.
func (a *MoovAssembly) Build() *boxes.Moov {
	if len(a.Trak) == 0 {
		return nil
	}
	return &boxes.Moov{Mvhd: a.Mvhd, Trak: a.Trak}
}
