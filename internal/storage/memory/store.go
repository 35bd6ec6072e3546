// Package memory provides an in-memory kv.RawStore, used by the tests of
// the packages built on kv.RawStore. Each partition is an ordered slice of
// entries kept sorted by key; writes binary-search for the insertion point.
// Not durable: Sync and Close are no-ops beyond releasing memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/eigenlog/eigenlog/internal/kv"
)

type partition struct {
	mu      sync.RWMutex
	entries []kv.Entry
}

// Store is an in-memory RawStore. The zero value is not usable; construct
// with New.
type Store struct {
	mu         sync.RWMutex
	partitions map[string]*partition
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{partitions: make(map[string]*partition)}
}

func (s *Store) partitionFor(name string, create bool) *partition {
	s.mu.RLock()
	p, ok := s.partitions[name]
	s.mu.RUnlock()
	if ok {
		return p
	}
	if !create {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.partitions[name]; ok {
		return p
	}
	p = &partition{}
	s.partitions[name] = p
	return p
}

// Submit implements kv.RawStore.
func (s *Store) Submit(_ context.Context, name string, entries []kv.Entry) error {
	p := s.partitionFor(name, true)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range entries {
		p.insert(e)
	}
	return nil
}

// insert keeps p.entries sorted by Key, overwriting on an exact key match.
func (p *partition) insert(e kv.Entry) {
	i := sort.Search(len(p.entries), func(i int) bool {
		return string(p.entries[i].Key[:]) >= string(e.Key[:])
	})
	if i < len(p.entries) && p.entries[i].Key == e.Key {
		p.entries[i] = e
		return
	}
	p.entries = append(p.entries, kv.Entry{})
	copy(p.entries[i+1:], p.entries[i:])
	p.entries[i] = e
}

// ScanRange implements kv.RawStore.
func (s *Store) ScanRange(_ context.Context, name string, lo, hi []byte, fn func(key, value []byte) bool) error {
	p := s.partitionFor(name, false)
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, e := range p.entries {
		if string(e.Key[:]) < string(lo) || string(e.Key[:]) > string(hi) {
			continue
		}
		if !fn(e.Key[:], e.Value) {
			return nil
		}
	}
	return nil
}

// ScanKeys implements kv.RawStore.
func (s *Store) ScanKeys(_ context.Context, name string, fn func(key []byte) bool) error {
	p := s.partitionFor(name, false)
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, e := range p.entries {
		if !fn(e.Key[:]) {
			return nil
		}
	}
	return nil
}

// Partitions implements kv.RawStore.
func (s *Store) Partitions(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.partitions))
	for name := range s.partitions {
		names = append(names, name)
	}
	return names, nil
}

// Sync is a no-op: the store has no backing medium to flush.
func (s *Store) Sync(context.Context, string) error { return nil }

// Close releases every partition.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partitions = nil
	return nil
}
