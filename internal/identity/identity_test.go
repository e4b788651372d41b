// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

package identity_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/bep/heifwriter/internal/herr"
	"github.com/bep/heifwriter/internal/identity"
)

func TestAllocateContextStartsAt1000AndIncrements(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()
	c.Assert(svc.AllocateContext(), qt.Equals, identity.ContextId(1000))
	c.Assert(svc.AllocateContext(), qt.Equals, identity.ContextId(1001))
}

func TestResetRestoresCounterAndClearsStores(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()
	id := svc.AllocateContext()
	svc.LookupStore(id).Set("k", "v")
	svc.Reset()
	c.Assert(svc.LookupStore(id), qt.IsNil)
	c.Assert(svc.AllocateContext(), qt.Equals, identity.ContextId(1000))
}

func TestStoreSetGetAppendsAndFailsOnMiss(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()
	id := svc.AllocateContext()
	store := svc.LookupStore(id)
	store.Set("width", "1920")
	store.Set("width", "960")
	got, err := store.Get("width")
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"1920", "960"})

	_, err = store.Get("height")
	c.Assert(err, qt.ErrorIs, &herr.KeyUnknownError{})
}

func TestResolveBsidFailsWhenUnbound(t *testing.T) {
	c := qt.New(t)
	svc := identity.New()
	_, err := svc.ResolveBsid(42)
	c.Assert(err, qt.Not(qt.IsNil))

	id := svc.AllocateContext()
	svc.BindBsid(42, id)
	got, err := svc.ResolveBsid(42)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, id)
}
