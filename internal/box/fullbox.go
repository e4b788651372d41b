// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package box

// FullBox is embedded by concrete full-box payloads to carry the
// version/flags tuple the generic Box header logic reads and writes.
type FullBox struct {
	version uint8
	flags   uint32
}

func (f *FullBox) Version() uint8  { return f.version }
func (f *FullBox) Flags() uint32   { return f.flags }
func (f *FullBox) SetVersion(v uint8) { f.version = v }
func (f *FullBox) SetFlags(v uint32)  { f.flags = v }

func (f *FullBox) setVersionFlags(version uint8, flags uint32) {
	f.version = version
	f.flags = flags
}
