// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package box

import "github.com/bep/heifwriter/internal/fourcc"

// Registry resolves an incoming box tag to a fresh, zero-valued Payload
// ready for ParsePayload. Used by the reader-side inspection path (C11)
// to recover the box tree the writer produced, for round-trip tests.
type Registry struct {
	ctors map[fourcc.Type]func() Payload
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[fourcc.Type]func() Payload)}
}

// Register associates tag with a constructor.
func (reg *Registry) Register(tag fourcc.Type, ctor func() Payload) {
	reg.ctors[tag] = ctor
}

// Construct returns a new Payload for tag, or nil if tag is unregistered.
func (reg *Registry) Construct(tag fourcc.Type) Payload {
	ctor, ok := reg.ctors[tag]
	if !ok {
		return nil
	}
	return ctor()
}
