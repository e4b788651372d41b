// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package heifwriter

import "github.com/bep/heifwriter/internal/planner"

// Result summarizes a completed write: the path written and its final
// size in bytes.
type Result struct {
	OutputPath string
	Size       int64
}

// Write normalizes nothing further: cfg must already be the fully
// resolved Configuration of §6.1. It drives every content writer through
// init/compose, resolves mdat/iloc/stco offsets to a fixpoint, and emits
// the finished file atomically (§4.8). Context IDs, the uniq_bsid
// mapping, and the identity data store are allocated fresh for this call
// and discarded when it returns, so concurrent calls with distinct
// Configurations do not interfere with one another.
func Write(cfg Configuration) (*Result, error) {
	res, err := planner.WriteFile(&cfg)
	if err != nil {
		return nil, err
	}
	return &Result{OutputPath: res.OutputPath, Size: res.Size}, nil
}
