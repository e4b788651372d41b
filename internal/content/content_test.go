// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package content

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/config"
	"github.com/bep/heifwriter/internal/identity"
)

// TestGridPayloadMatchesWorkedExample checks the byte-exact grid idat
// payload from §8 scenario 3: a 2x2 grid of 4 items assembled into a
// 3840x2160 canvas.
func TestGridPayloadMatchesWorkedExample(t *testing.T) {
	c := qt.New(t)
	got := gridPayload(2, 2, 3840, 2160)
	want := []byte{0x00, 0x00, 0x01, 0x01, 0x0F, 0x00, 0x08, 0x70}
	c.Assert(got, qt.DeepEquals, want)
}

func TestGridPayloadPromotesTo32BitWhenFieldsExceed16Bit(t *testing.T) {
	c := qt.New(t)
	got := gridPayload(1, 1, 70000, 100)
	c.Assert(got[1], qt.Equals, uint8(1)) // flags bit 0 set
	c.Assert(len(got), qt.Equals, 4+4+4)  // version+flags+rows+cols, then two u32 fields
}

func TestOverlayPayloadStaysAt16BitWithinRange(t *testing.T) {
	c := qt.New(t)
	ov := config.Iovl{
		OutputWidth: 100, OutputHeight: 200,
		Offsets: []config.GridOffset{{Horizontal: 1, Vertical: -1}},
	}
	got := overlayPayload(ov)
	c.Assert(got[1], qt.Equals, uint8(0)) // flags bit 0 unset
	// version+flags(2) + RGBA(8) + width+height(4) + one offset(4) = 18
	c.Assert(len(got), qt.Equals, 18)
}

func TestOverlayPayloadPromotesTo32BitWhenOffsetOutOfRange(t *testing.T) {
	c := qt.New(t)
	ov := config.Iovl{
		OutputWidth: 100, OutputHeight: 200,
		Offsets: []config.GridOffset{{Horizontal: 40000, Vertical: 0}},
	}
	got := overlayPayload(ov)
	c.Assert(got[1], qt.Equals, uint8(1))
	// version+flags(2) + RGBA(8) + width+height(8) + one offset(8) = 26
	c.Assert(len(got), qt.Equals, 26)
}

func TestResolveRefSetResolvesItemIDsAcrossContexts(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()

	masterCtx := svc.AllocateContext()
	svc.BindBsid(1, masterCtx)
	publishItemIDs(svc, masterCtx, []uint32{1, 2, 3, 4})

	ids, err := resolveRefSet(svc, config.RefSet{
		RefsList: []uint32{1},
		IdxsList: [][]uint32{{2, 4}},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(ids, qt.DeepEquals, []uint32{2, 4})
}

func TestResolveRefSetFailsOnUnboundBsid(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()
	_, err := resolveRefSet(svc, config.RefSet{RefsList: []uint32{99}, IdxsList: [][]uint32{{1}}})
	c.Assert(err, qt.Not(qt.IsNil))
}

// TestResolveEntityItemIndexZeroMeansTrack covers §4.4: an EntityIndex
// with item_index 0 names the track of that context, not an item.
func TestResolveEntityItemIndexZeroMeansTrack(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()

	ctx := svc.AllocateContext()
	svc.BindBsid(5, ctx)
	publishTrackID(svc, ctx, 7)
	publishItemIDs(svc, ctx, []uint32{1, 2})

	trackEntity, err := resolveEntity(svc, config.EntityIndex{UniqBsid: 5, ItemIndex: 0})
	c.Assert(err, qt.IsNil)
	c.Assert(trackEntity, qt.Equals, uint32(7))

	itemEntity, err := resolveEntity(svc, config.EntityIndex{UniqBsid: 5, ItemIndex: 2})
	c.Assert(err, qt.IsNil)
	c.Assert(itemEntity, qt.Equals, uint32(2))
}

func TestEntityGroupWriterComposeAssignsSequentialGroupIDs(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()

	ctx := svc.AllocateContext()
	svc.BindBsid(1, ctx)
	publishItemIDs(svc, ctx, []uint32{10, 11, 12})

	groups := []config.Egroup{
		{GroupType: "altr", IdxsLists: [][]config.EntityIndex{
			{{UniqBsid: 1, ItemIndex: 1}, {UniqBsid: 1, ItemIndex: 2}},
			{{UniqBsid: 1, ItemIndex: 3}},
		}},
	}
	w := NewEntityGroupWriter(groups, svc.AllocateContext())
	meta := NewMetaAssembly()
	_, err := w.Compose(svc, meta, NewMoovAssembly())
	c.Assert(err, qt.IsNil)
	c.Assert(meta.Grpl, qt.Not(qt.IsNil))
	c.Assert(len(meta.Grpl.Groups), qt.Equals, 2)
	c.Assert(meta.Grpl.Groups[0].GroupID, qt.Equals, uint32(1))
	c.Assert(meta.Grpl.Groups[1].GroupID, qt.Equals, uint32(2))
	c.Assert(meta.Grpl.Groups[0].EntityIDs, qt.DeepEquals, []uint32{10, 11})
	c.Assert(meta.Grpl.Groups[1].EntityIDs, qt.DeepEquals, []uint32{12})
}

func TestGridWriterComposeEmitsDimgIrefInOrder(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()

	masterCtx := svc.AllocateContext()
	svc.BindBsid(1, masterCtx)
	publishItemIDs(svc, masterCtx, []uint32{1, 2, 3, 4})

	gw := NewGridWriter([]config.Grid{{
		RefSet:       config.RefSet{RefsList: []uint32{1}, IdxsList: [][]uint32{{1, 2, 3, 4}}},
		UniqBsid:     3,
		Rows:         2,
		Columns:      2,
		OutputWidth:  3840,
		OutputHeight: 2160,
	}}, svc.AllocateContext())

	meta := NewMetaAssembly()
	contribs, err := gw.Compose(svc, meta, NewMoovAssembly())
	c.Assert(err, qt.IsNil)
	c.Assert(contribs, qt.IsNil) // grid items live in idat, never mdat
	c.Assert(len(meta.Iinf.Entries), qt.Equals, 1)
	c.Assert(len(meta.Iref.References), qt.Equals, 1)
	c.Assert(meta.Iref.References[0].ToItems, qt.DeepEquals, []uint32{1, 2, 3, 4})
	c.Assert(meta.Idat, qt.Not(qt.IsNil))
}

func TestGridWriterComposeRejectsMismatchedCellCount(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()

	masterCtx := svc.AllocateContext()
	svc.BindBsid(1, masterCtx)
	publishItemIDs(svc, masterCtx, []uint32{1, 2, 3})

	gw := NewGridWriter([]config.Grid{{
		RefSet:   config.RefSet{RefsList: []uint32{1}, IdxsList: [][]uint32{{1, 2, 3}}},
		UniqBsid: 3, Rows: 2, Columns: 2,
	}}, svc.AllocateContext())

	_, err := gw.Compose(svc, NewMetaAssembly(), NewMoovAssembly())
	c.Assert(err, qt.Not(qt.IsNil))
}
