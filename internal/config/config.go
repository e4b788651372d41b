// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package config holds the normalized configuration value the planner
// consumes (§6.1): plain exported structs rather than a parser, since the
// JSON/YAML loader that produces this value is an explicit external
// collaborator (§1 "Out of scope").
package config

import "github.com/bep/heifwriter/internal/herr"

// Brands is the ftyp brand declaration.
type Brands struct {
	Major fourccString   `json:"major"`
	Other []fourccString `json:"other"`
}

// fourccString is a plain string alias kept distinct for documentation;
// Validate does not check its length.
type fourccString = string

// General carries the output path and ftyp/primary-item declarations.
type General struct {
	OutputFile string `json:"output_file"`
	Brands     Brands `json:"brands"`
	// PrimRefr is the uniq_bsid of the content whose item supplies the
	// primary item, nil when no primary item is declared.
	PrimRefr *uint32 `json:"prim_refr,omitempty"`
	// PrimIndx is the 1-based image index within that content.
	PrimIndx uint32 `json:"prim_indx,omitempty"`
}

// EditList carries moov edts/elst entries for a track-encapsulated
// master (§4.6 "Track writers").
type EditList struct {
	Entries []EditListEntry `json:"entries"`
}

type EditListEntry struct {
	SegmentDuration   uint64 `json:"segment_duration"`
	MediaTime         int64  `json:"media_time"`
	MediaRateInteger  int16  `json:"media_rate_integer,omitempty"`
	MediaRateFraction int16  `json:"media_rate_fraction,omitempty"`
}

// Master is the base image or track declaration of a Content block.
type Master struct {
	UniqBsid        uint32    `json:"uniq_bsid"`
	FilePath        string    `json:"file_path"`
	HdlrType        string    `json:"hdlr_type"` // "pict" | "auxv" | "vide" | ...
	CodeType        string    `json:"code_type"` // "hvc1" | "avc1" | "mp4a"
	EncpType        string    `json:"encp_type"` // "meta" | "trak"
	DispXdim        uint32    `json:"disp_xdim"`
	DispYdim        uint32    `json:"disp_ydim"`
	DispRate        uint32    `json:"disp_rate,omitempty"` // tracks only
	TickRate        uint32    `json:"tick_rate,omitempty"` // tracks only
	EditList        *EditList `json:"edit_list,omitempty"`
	MakeVide        bool      `json:"make_vide,omitempty"`
	WriteAlternates bool      `json:"write_alternates,omitempty"`
	Hidden          bool      `json:"hidden,omitempty"`
}

// RefSet is the common "refs_list x idxs_list" cross-product shape used
// by thumbnails, auxiliary images, and entity groups: refs_list names the
// uniq_bsid of each referenced content, idxs_list carries the 1-based
// image indices within that content.
type RefSet struct {
	RefsList []uint32   `json:"refs_list"`
	IdxsList [][]uint32 `json:"idxs_list"`
}

// Thumbs declares one thumbnail picture stream plus the selection rule
// for which master pictures get a thumbnail.
type Thumbs struct {
	UniqBsid uint32 `json:"uniq_bsid"`
	FilePath string `json:"file_path"`
	HdlrType string `json:"hdlr_type"`
	CodeType string `json:"code_type"`
	// SyncRate selects every Nth picture when > 0.
	SyncRate uint32 `json:"sync_rate,omitempty"`
	// SyncIdxs selects pictures by explicit 1-based index when non-empty.
	SyncIdxs []uint32 `json:"sync_idxs,omitempty"`
}

// Auxiliary declares an auxiliary image plane (e.g. alpha).
type Auxiliary struct {
	UniqBsid uint32 `json:"uniq_bsid"`
	FilePath string `json:"file_path"`
	Urn      string `json:"urn"`
	RefSet
	Hidden bool `json:"hidden,omitempty"`
}

// Irot/Imir/Clap/Rloc are the four identity-transform derivation kinds.
type Irot struct {
	RefSet
	Angle90 uint8 `json:"angle90"` // 0..3, angle = Angle90*90
}

type Imir struct {
	RefSet
	Axis uint8 `json:"axis"`
}

type Clap struct {
	RefSet
	CleanApertureWidthN  uint32 `json:"clean_aperture_width_n"`
	CleanApertureWidthD  uint32 `json:"clean_aperture_width_d"`
	CleanApertureHeightN uint32 `json:"clean_aperture_height_n"`
	CleanApertureHeightD uint32 `json:"clean_aperture_height_d"`
	HorizOffN            int32  `json:"horiz_off_n"`
	HorizOffD            int32  `json:"horiz_off_d"`
	VertOffN             int32  `json:"vert_off_n"`
	VertOffD             int32  `json:"vert_off_d"`
}

type Rloc struct {
	RefSet
	HorizontalOffset uint32 `json:"horizontal_offset"`
	VerticalOffset   uint32 `json:"vertical_offset"`
}

// GridOffset is one canvas placement within an Iovl.
type GridOffset struct {
	Horizontal int32 `json:"horizontal"`
	Vertical   int32 `json:"vertical"`
}

type Grid struct {
	RefSet
	UniqBsid     uint32 `json:"uniq_bsid"`
	Rows         uint32 `json:"rows"`
	Columns      uint32 `json:"columns"`
	OutputWidth  uint32 `json:"output_width"`
	OutputHeight uint32 `json:"output_height"`
}

type Iovl struct {
	RefSet
	UniqBsid     uint32       `json:"uniq_bsid"`
	OutputWidth  uint32       `json:"output_width"`
	OutputHeight uint32       `json:"output_height"`
	CanvasFillR  uint16       `json:"canvas_fill_r,omitempty"`
	CanvasFillG  uint16       `json:"canvas_fill_g,omitempty"`
	CanvasFillB  uint16       `json:"canvas_fill_b,omitempty"`
	CanvasFillA  uint16       `json:"canvas_fill_a,omitempty"`
	Offsets      []GridOffset `json:"offsets"`
}

type PreDerived struct {
	RefSet
	UniqBsid uint32 `json:"uniq_bsid"`
}

// Derived groups every derivation kind a Content block may declare.
type Derived struct {
	Irots       []Irot       `json:"irots,omitempty"`
	Imirs       []Imir       `json:"imirs,omitempty"`
	Claps       []Clap       `json:"claps,omitempty"`
	Rlocs       []Rloc       `json:"rlocs,omitempty"`
	Grids       []Grid       `json:"grids,omitempty"`
	Iovls       []Iovl       `json:"iovls,omitempty"`
	PreDeriveds []PreDerived `json:"pre_deriveds,omitempty"`
}

// Metadata declares an Exif or XMP sidecar item.
type Metadata struct {
	UniqBsid uint32 `json:"uniq_bsid"`
	HdlrType string `json:"hdlr_type"` // "exif" | "xml1"
	FilePath string `json:"file_path"`
	RefSet
}

// Property groups optional per-master property declarations not tied to
// a derivation (reserved for future per-master property kinds; currently
// empty because every property in this writer arrives via Derived or
// Auxiliary per §4.6).
type Property struct{}

// Layer declares a multi-layer HEVC (lhv1) configuration.
type Layer struct {
	UniqBsid          uint32   `json:"uniq_bsid"`
	LayerIds          []uint16 `json:"layer_ids"`
	TargetOutputLayer uint16   `json:"target_output_layer"`
}

// Content is one top-level image/track group: a master plus its
// dependents.
type Content struct {
	Master    Master      `json:"master"`
	Thumbs    []Thumbs    `json:"thumbs,omitempty"`
	Metadata  []Metadata  `json:"metadata,omitempty"`
	Auxiliary []Auxiliary `json:"auxiliary,omitempty"`
	Derived   Derived     `json:"derived,omitempty"`
	Property  Property    `json:"property,omitempty"`
	Layers    []Layer     `json:"layers,omitempty"`
}

// EntityIndex is a (uniq_bsid, item_index) pair as used by entity groups;
// item_index 0 means "the track of that context" (§4.4).
type EntityIndex struct {
	UniqBsid  uint32 `json:"uniq_bsid"`
	ItemIndex uint32 `json:"item_index"`
}

// Egroup declares one EntityToGroupBox.
type Egroup struct {
	GroupType string             `json:"group_type"` // e.g. "altr"
	IdxsLists [][]EntityIndex    `json:"idxs_lists"`
}

// Configuration is the top-level, fully-normalized input value.
type Configuration struct {
	General General   `json:"general"`
	Content []Content  `json:"content"`
	Egroups []Egroup   `json:"egroups,omitempty"`
}

// Validate enforces the structural invariants from §4.8 step 2. It does
// not resolve cross-references (the identity service does that during
// phase A, failing with UnresolvedReference); it only catches
// structurally malformed input before any writer is created.
func (c *Configuration) Validate() error {
	if len(c.Content) == 0 {
		return herr.NewConfigInvalid("content", "at least one content block is required")
	}
	bsids := make(map[uint32]bool)
	for i, ct := range c.Content {
		if ct.Master.FilePath == "" {
			return herr.NewConfigInvalidf("content.master", "index %d: file_path must not be empty", i)
		}
		if bsids[ct.Master.UniqBsid] {
			return herr.NewConfigInvalidf("content.master", "index %d: duplicate uniq_bsid %d", i, ct.Master.UniqBsid)
		}
		bsids[ct.Master.UniqBsid] = true

		for j, irot := range ct.Derived.Irots {
			if irot.Angle90 > 3 {
				return herr.NewConfigInvalidf("content.derived.irot", "content %d irot %d: angle90 %d out of range [0,3]", i, j, irot.Angle90)
			}
		}
		for j, clap := range ct.Derived.Claps {
			if clap.CleanApertureWidthD == 0 || clap.CleanApertureHeightD == 0 || clap.HorizOffD == 0 || clap.VertOffD == 0 {
				return herr.NewConfigInvalidf("content.derived.clap", "content %d clap %d: denominator must be non-zero", i, j)
			}
		}
		for j, g := range ct.Derived.Grids {
			if g.Rows == 0 || g.Columns == 0 {
				return herr.NewConfigInvalidf("content.derived.grid", "content %d grid %d: rows and columns must be >= 1", i, j)
			}
		}
		for j, ov := range ct.Derived.Iovls {
			wantOffsets := 0
			for _, idxs := range ov.IdxsList {
				wantOffsets += len(idxs)
			}
			if len(ov.Offsets) != wantOffsets {
				return herr.NewConfigInvalidf("content.derived.iovl", "content %d iovl %d: offsets count %d != sum(idxs_list) %d", i, j, len(ov.Offsets), wantOffsets)
			}
		}
	}
	for i, eg := range c.Egroups {
		if len(eg.IdxsLists) == 0 {
			return herr.NewConfigInvalidf("egroups", "index %d: idxs_lists must not be empty", i)
		}
		for j, group := range eg.IdxsLists {
			if len(group) == 0 {
				return herr.NewConfigInvalidf("egroups", "index %d,%d: group must not be empty", i, j)
			}
		}
	}
	return nil
}
