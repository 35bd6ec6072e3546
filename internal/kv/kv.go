// Package kv defines the primitive capability a backing key-value engine
// must provide: ordered partitioned maps with range scans. internal/storage
// composes an implementation of this interface with the query engine and
// partition catalog to build the full storage-engine surface (C3) the rest
// of the system consumes.
package kv

import "context"

// Entry is a single (key, value) pair to submit, keyed by the 16-byte
// big-endian id.Key form.
type Entry struct {
	Key   [16]byte
	Value []byte
}

// RawStore is the capability set a backing KV engine implements. Badger and
// the in-memory test double both satisfy it.
type RawStore interface {
	// Submit opens/creates partition and writes entries. MAY be non-atomic
	// across entries within one call.
	Submit(ctx context.Context, partition string, entries []Entry) error

	// ScanRange iterates partition's keys in [lo, hi] inclusive, in
	// ascending (time) order, calling fn for each entry. fn returning false
	// stops the scan early.
	ScanRange(ctx context.Context, partition string, lo, hi []byte, fn func(key, value []byte) bool) error

	// ScanKeys iterates all of partition's keys, in ascending order,
	// without fetching values.
	ScanKeys(ctx context.Context, partition string, fn func(key []byte) bool) error

	// Partitions lists the raw partition names known to the store. It may
	// include engine-internal bookkeeping names; callers filter those via
	// internal/partition.IsInternal before parsing.
	Partitions(ctx context.Context) ([]string, error)

	// Sync forces durability of a partition.
	Sync(ctx context.Context, partition string) error

	// Close releases the underlying engine resources.
	Close() error
}
