// Package badger implements kv.RawStore on top of dgraph-io/badger/v3, the
// embedded LSM-tree engine this system durably persists every partition
// into. Partitions share one Badger database; each partition's entries are
// key-prefixed by its name so that ScanRange/ScanKeys can use Badger's
// prefix iterator directly instead of maintaining one database per
// partition.
package badger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	bdg "github.com/dgraph-io/badger/v3"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/id"
	"github.com/eigenlog/eigenlog/internal/kv"
)

// keySep separates a partition name from the record key within a Badger
// key. "-" is valid inside a partition name's segments but never appears
// adjacent to this byte, since partition.Name never emits it.
const keySep = 0x00

// partitionIndexPrefix namespaces the set of known partition names so
// Partitions() does not need to scan the whole keyspace. Entries under this
// prefix carry no value; their existence is the partition's membership.
const partitionIndexPrefix = "__eigenlog__partitions__" + string(keySep)

// Store is a kv.RawStore backed by a single Badger database.
type Store struct {
	db     *bdg.DB
	logger *slog.Logger
}

// Options configures the Badger engine.
type Options struct {
	Dir      string
	InMemory bool
	Logger   *slog.Logger
}

// badgerLogAdapter routes Badger's internal logging through slog so the
// daemon produces one consistent log stream.
type badgerLogAdapter struct{ logger *slog.Logger }

func (a badgerLogAdapter) Errorf(f string, args ...interface{})   { a.logger.Error(fmt.Sprintf(f, args...)) }
func (a badgerLogAdapter) Warningf(f string, args ...interface{}) { a.logger.Warn(fmt.Sprintf(f, args...)) }
func (a badgerLogAdapter) Infof(f string, args ...interface{})    { a.logger.Info(fmt.Sprintf(f, args...)) }
func (a badgerLogAdapter) Debugf(f string, args ...interface{})   { a.logger.Debug(fmt.Sprintf(f, args...)) }

// Open starts (creating if absent) a Badger database at opts.Dir, or an
// ephemeral in-memory instance if opts.InMemory is set.
func Open(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bopts := bdg.DefaultOptions(opts.Dir).
		WithInMemory(opts.InMemory).
		WithLogger(badgerLogAdapter{logger: logger})

	db, err := bdg.Open(bopts)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return &Store{db: db, logger: logger}, nil
}

func partitionPrefix(name string) []byte {
	b := make([]byte, 0, len(name)+1)
	b = append(b, name...)
	b = append(b, keySep)
	return b
}

// Submit implements kv.RawStore.
func (s *Store) Submit(_ context.Context, name string, entries []kv.Entry) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	prefix := partitionPrefix(name)
	for _, e := range entries {
		key := make([]byte, 0, len(prefix)+id.KeySize)
		key = append(key, prefix...)
		key = append(key, e.Key[:]...)
		if err := wb.Set(key, e.Value); err != nil {
			return domain.ErrStorage.WithCause(err)
		}
	}
	if err := wb.Set([]byte(partitionIndexPrefix+name), nil); err != nil {
		return domain.ErrStorage.WithCause(err)
	}

	if err := wb.Flush(); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// ScanRange implements kv.RawStore.
func (s *Store) ScanRange(_ context.Context, name string, lo, hi []byte, fn func(key, value []byte) bool) error {
	prefix := partitionPrefix(name)
	loKey := append(append([]byte{}, prefix...), lo...)
	hiKey := append(append([]byte{}, prefix...), hi...)

	return s.db.View(func(txn *bdg.Txn) error {
		iopts := bdg.DefaultIteratorOptions
		iopts.Prefix = prefix
		it := txn.NewIterator(iopts)
		defer it.Close()

		for it.Seek(loKey); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			if bytes.Compare(item.Key(), hiKey) > 0 {
				break
			}
			recKey := item.KeyCopy(nil)[len(prefix):]
			cont := true
			err := item.Value(func(val []byte) error {
				cont = fn(recKey, val)
				return nil
			})
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

// ScanKeys implements kv.RawStore.
func (s *Store) ScanKeys(_ context.Context, name string, fn func(key []byte) bool) error {
	prefix := partitionPrefix(name)

	return s.db.View(func(txn *bdg.Txn) error {
		iopts := bdg.DefaultIteratorOptions
		iopts.Prefix = prefix
		iopts.PrefetchValues = false
		it := txn.NewIterator(iopts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			recKey := it.Item().KeyCopy(nil)[len(prefix):]
			if !fn(recKey) {
				return nil
			}
		}
		return nil
	})
}

// Partitions implements kv.RawStore, reading from the partition membership
// index instead of scanning every key.
func (s *Store) Partitions(_ context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *bdg.Txn) error {
		iopts := bdg.DefaultIteratorOptions
		iopts.PrefetchValues = false
		iopts.Prefix = []byte(partitionIndexPrefix)
		it := txn.NewIterator(iopts)
		defer it.Close()

		for it.Seek([]byte(partitionIndexPrefix)); it.ValidForPrefix([]byte(partitionIndexPrefix)); it.Next() {
			key := it.Item().KeyCopy(nil)
			names = append(names, string(key[len(partitionIndexPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	return names, nil
}

// Sync implements kv.RawStore by forcing a value-log + LSM sync. Badger has
// no per-prefix fsync, so this flushes the whole database; partition is
// accepted for interface symmetry and future engines that can do better.
func (s *Store) Sync(_ context.Context, _ string) error {
	if err := s.db.Sync(); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	return nil
}
