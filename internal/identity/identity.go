// Copyright 2026 The heifwriter Authors
// SPDX-License-Identifier: MIT

// Package identity is the context allocator and cross-reference data store
// used by the planner (internal/planner) and content writers
// (internal/content) to publish and consume facts across items: a
// thumbnail writer, for instance, asks the master's context for the pixel
// dimensions it recorded during its own init phase.
package identity

import (
	"sync"

	"github.com/bep/heifwriter/internal/herr"
)

// ContextId is the opaque identity attached to every writer the planner
// creates, a 32-bit integer drawn from a monotonically increasing
// counter starting at 1000.
type ContextId uint32

// firstContextId is where the counter starts; low values are reserved so
// a zero ContextId can unambiguously mean "unset".
const firstContextId ContextId = 1000

// Store is a per-context key to list-of-string data store.
type Store struct {
	mu        sync.Mutex
	contextID ContextId
	data      map[string][]string
}

func newStore(id ContextId) *Store {
	return &Store{contextID: id, data: make(map[string][]string)}
}

// Set appends value to the list for key.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append(s.data[key], value)
}

// Get returns the list for key, failing with herr.KeyUnknownError on miss.
func (s *Store) Get(key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, herr.NewKeyUnknown(uint32(s.contextID), key)
	}
	return v, nil
}

// Service is the identity service: context allocation plus the per-context
// stores and the uniq_bsid -> ContextId mapping. One Service is created
// per writeFile invocation and discarded at its end (§3 "Lifecycle"); it
// carries no package-level state so concurrent writeFile calls don't
// collide.
type Service struct {
	mu      sync.Mutex
	next    ContextId
	stores  map[ContextId]*Store
	byBsid  map[uint32]ContextId
}

// New returns a freshly reset Service.
func New() *Service {
	s := &Service{}
	s.Reset()
	return s
}

// Reset restores the counter to 1000 and clears the data store and the
// uniq_bsid mapping.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = firstContextId
	s.stores = make(map[ContextId]*Store)
	s.byBsid = make(map[uint32]ContextId)
}

// AllocateContext returns the next monotonically increasing ContextId and
// registers its store.
func (s *Service) AllocateContext() ContextId {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.stores[id] = newStore(id)
	return id
}

// RegisterStore associates store with id explicitly (used by tests and by
// writers that want to share storage across contexts).
func (s *Service) RegisterStore(id ContextId, store *Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stores[id] = store
}

// LookupStore returns the store for id, or nil if none was allocated.
func (s *Service) LookupStore(id ContextId) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stores[id]
}

// BindBsid records that uniq_bsid maps to id.
func (s *Service) BindBsid(bsid uint32, id ContextId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byBsid[bsid] = id
}

// ResolveBsid maps a uniq_bsid back to its ContextId, failing with
// herr.UnresolvedReferenceError when the bsid was never bound (§3.4:
// "enforces that a derived or referencing item can only cite an item that
// exists").
func (s *Service) ResolveBsid(bsid uint32) (ContextId, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byBsid[bsid]
	if !ok {
		return 0, herr.NewUnresolvedReference(bsid)
	}
	return id, nil
}
