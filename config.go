// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package heifwriter

import "github.com/bep/heifwriter/internal/config"

// Configuration is the fully-normalized input value writeFile consumes
// (§6.1): one or more Content blocks plus the file-level ftyp/primary-item
// declaration. Callers build this directly, or decode it from JSON/YAML
// themselves — that loader is an external collaborator, not part of this
// package (§1 Non-goals; see cmd/heifwriter for a reference loader).
type Configuration = config.Configuration

// General carries the output path and ftyp/primary-item declarations.
type General = config.General

// Brands is the ftyp brand declaration.
type Brands = config.Brands

// Content is one top-level image/track group: a master plus its
// dependents.
type Content = config.Content

// Master is the base image or track declaration of a Content block.
type Master = config.Master

// EditList carries moov edts/elst entries for a track-encapsulated master.
type EditList = config.EditList

// EditListEntry is one elst entry.
type EditListEntry = config.EditListEntry

// RefSet is the common "refs_list x idxs_list" cross-product shape used
// by thumbnails, auxiliary images, and entity groups.
type RefSet = config.RefSet

// Thumbs declares one thumbnail picture stream plus its selection rule.
type Thumbs = config.Thumbs

// Auxiliary declares an auxiliary image plane (e.g. alpha).
type Auxiliary = config.Auxiliary

// Derived groups every derivation kind a Content block may declare.
type Derived = config.Derived

// Irot, Imir, Clap, Rloc are the four identity-transform derivation kinds.
type (
	Irot = config.Irot
	Imir = config.Imir
	Clap = config.Clap
	Rloc = config.Rloc
)

// GridOffset is one canvas placement within an Iovl.
type GridOffset = config.GridOffset

// Grid and Iovl are the grid and overlay derivation kinds.
type (
	Grid = config.Grid
	Iovl = config.Iovl
)

// PreDerived names a derived item composed purely from an identity
// transform with no additional parameters.
type PreDerived = config.PreDerived

// Metadata declares an Exif or XMP sidecar item.
type Metadata = config.Metadata

// Layer declares a multi-layer HEVC (lhv1) configuration.
type Layer = config.Layer

// Property groups optional per-master property declarations not tied to
// a derivation.
type Property = config.Property

// EntityIndex is a (uniq_bsid, item_index) pair as used by entity groups.
type EntityIndex = config.EntityIndex

// Egroup declares one EntityToGroupBox.
type Egroup = config.Egroup
