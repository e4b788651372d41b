// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package mdat_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/identity"
	"github.com/bep/heifwriter/internal/mdat"
)

func TestAppendRecordsExtentsInOrder(t *testing.T) {
	c := qt.New(t)
	a := mdat.New("HEIF writer build test")

	ext1 := a.Append(identity.ContextId(1000), []byte{1, 2, 3})
	ext2 := a.Append(identity.ContextId(1001), []byte{4, 5})

	c.Assert(ext1.MdatIndex, qt.Equals, 0)
	c.Assert(ext2.MdatIndex, qt.Equals, 0)
	c.Assert(ext2.Offset, qt.Equals, ext1.Offset+ext1.Length)
	c.Assert(a.MdatCount(), qt.Equals, 1)

	got := a.Extents(identity.ContextId(1000))
	c.Assert(len(got), qt.Equals, 1)
	c.Assert(got[0].Length, qt.Equals, uint64(3))
}

func TestFirstMdatCarriesCompatibilityMarker(t *testing.T) {
	c := qt.New(t)
	a := mdat.New("HEIF writer build 1.0")
	c.Assert(a.MdatPayloadSize(0), qt.Equals, uint64(len("HEIF writer build 1.0")))
}
