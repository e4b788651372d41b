// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package box

import "github.com/bep/heifwriter/internal/bitio"

// WriteChildren serializes each child box in order. Most container box
// types (meta, stbl, minf, mdia, trak, moov, ...) hold their
// children as typed fields and call this from SerializePayload rather
// than keeping an untyped list, since parsing needs to dispatch children
// to those same typed fields.
func WriteChildren(w *bitio.Writer, children []*Box) error {
	for _, c := range children {
		if err := c.Write(w); err != nil {
			return err
		}
	}
	return nil
}

// PatchSlot records a byte offset (relative to a writer's own scratch
// buffer start) and a field width. Nothing in this repository constructs
// a PatchSlot: the planner re-serializes boxes with their final offsets
// instead of rewriting fields in place.
type PatchSlot struct {
	// Offset is relative to the owning writer's scratch buffer start.
	Offset int64
	// Width is 4 or 8 bytes.
	Width int
	// Kind documents what the slot holds, for diagnostics only.
	Kind string
}
