// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package heifwriter writes HEIF/ISOBMFF files (ISO/IEC 14496-12 and
// 23008-12) from a normalized Configuration value: one or more Annex-B
// coded-picture bitstreams plus a description of how their items relate
// (thumbnails, auxiliary planes, derived grids/overlays/identity
// transforms, metadata, entity groups, layers) are assembled into a
// single `ftyp | meta | moov? | mdat+` file in one pass.
//
// Video decoding is not performed; bitstreams are copied bit-exactly.
// The JSON/YAML configuration loader is an external collaborator — see
// cmd/heifwriter for a minimal one driven from a file path.
package heifwriter
