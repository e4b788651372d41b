// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package box_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/bitio"
	"github.com/bep/heifwriter/internal/box"
	"github.com/bep/heifwriter/internal/fourcc"
)

// freeBox is a minimal concrete Payload used to test the generic header
// logic without depending on internal/boxes.
type freeBox struct {
	data []byte
}

func (f *freeBox) Tag() fourcc.Type { return fourcc.Free }
func (f *freeBox) SerializePayload(w *bitio.Writer) error {
	w.WriteBytes(f.data)
	return nil
}
func (f *freeBox) ParsePayload(r *bitio.Reader) error {
	raw, err := r.ReadBytes(r.Remaining() / 8)
	f.data = raw
	return err
}

func TestBoxSizeMatchesSerializedLength(t *testing.T) {
	c := qt.New(t)

	b := box.New(&freeBox{data: []byte("hello")})
	w := bitio.NewWriter()
	err := b.Write(w)
	c.Assert(err, qt.IsNil)

	out := w.Bytes()
	c.Assert(len(out), qt.Equals, 8+5)

	r := bitio.NewReader(out)
	reg := box.NewRegistry()
	reg.Register(fourcc.Free, func() box.Payload { return &freeBox{} })
	p, err := box.Parse(r, reg.Construct, nil)
	c.Assert(err, qt.IsNil)
	fb, ok := p.(*freeBox)
	c.Assert(ok, qt.IsTrue)
	c.Assert(string(fb.data), qt.Equals, "hello")
}

func TestUnknownTagBecomesOpaque(t *testing.T) {
	c := qt.New(t)

	b := box.New(&freeBox{data: []byte("xyz")})
	w := bitio.NewWriter()
	c.Assert(b.Write(w), qt.IsNil)

	r := bitio.NewReader(w.Bytes())
	reg := box.NewRegistry() // nothing registered
	p, err := box.Parse(r, reg.Construct, func(fourcc.Type) {})
	c.Assert(err, qt.IsNil)
	opq, ok := p.(*box.Opaque)
	c.Assert(ok, qt.IsTrue)
	c.Assert(string(opq.Raw), qt.Equals, "xyz")
}
