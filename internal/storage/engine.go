// Package storage provides the storage engine (C3): the facade that
// combines a backing kv.RawStore with the partition catalog, the query
// engine, and the record codec to expose Submit/Query/Detail/Info/Flush --
// the single capability set the HTTP surface and the local-sink shipper
// consume.
//
// Different backing stores (Badger, an in-memory test double) are
// interchangeable behind this facade; the query engine and HTTP surface
// never see the backing store directly.
package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/id"
	"github.com/eigenlog/eigenlog/internal/kv"
	"github.com/eigenlog/eigenlog/internal/metrics"
	"github.com/eigenlog/eigenlog/internal/partition"
	"github.com/eigenlog/eigenlog/internal/query"
	"github.com/eigenlog/eigenlog/internal/wire"
)

// InfoResult is one element of Info()'s response: either a successful
// Summary or a parse/empty-partition error, keyed by the raw partition name
// it came from.
type InfoResult struct {
	Summary *domain.Summary
	Err     error
}

// Engine is the storage-engine capability set.
type Engine interface {
	Submit(ctx context.Context, host domain.Host, app domain.App, sev domain.Severity, batch domain.Batch) error
	Query(ctx context.Context, params query.Params) ([]query.Hit, error)
	Detail(ctx context.Context, host domain.Host, app domain.App, sev domain.Severity) (domain.Detail, error)
	Info(ctx context.Context) ([]InfoResult, error)
	Flush(ctx context.Context, host domain.Host, app domain.App) error
	Close() error
}

// KVEngine is an Engine backed by any kv.RawStore implementation.
type KVEngine struct {
	store   kv.RawStore
	logger  *slog.Logger
	metrics *metrics.Registry
}

// New wraps a RawStore as a full storage Engine.
func New(store kv.RawStore, logger *slog.Logger) *KVEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &KVEngine{store: store, logger: logger}
}

// WithMetrics attaches a metrics registry that Submit/Query will report to.
// Returns e for chaining.
func (e *KVEngine) WithMetrics(m *metrics.Registry) *KVEngine {
	e.metrics = m
	return e
}

// Submit writes every (id, record) pair of batch into the (host, app, sev)
// partition, creating it lazily. Non-atomic across entries: a backing-store
// failure mid-batch leaves earlier entries durably written.
func (e *KVEngine) Submit(ctx context.Context, host domain.Host, app domain.App, sev domain.Severity, batch domain.Batch) error {
	name := partition.Name(host, app, sev)

	entries := make([]kv.Entry, 0, len(batch))
	for recID, rec := range batch {
		value, err := wire.EncodeRecord(rec)
		if err != nil {
			return err
		}
		var entry kv.Entry
		entry.Key = [16]byte(recID)
		entry.Value = value
		entries = append(entries, entry)
	}

	if err := e.store.Submit(ctx, name, entries); err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	if e.metrics != nil {
		e.metrics.ObserveSubmit(name, len(entries))
	}
	return nil
}

// Query runs the cross-partition query engine (C4) against this engine's
// backing store.
func (e *KVEngine) Query(ctx context.Context, params query.Params) ([]query.Hit, error) {
	hits, err := query.Run(ctx, e.store, params)
	if err == nil && e.metrics != nil {
		e.metrics.ObserveQuery(len(hits))
	}
	return hits, err
}

// Detail computes the full-scan partition detail: row count and a
// per-UTC-calendar-date histogram.
func (e *KVEngine) Detail(ctx context.Context, host domain.Host, app domain.App, sev domain.Severity) (domain.Detail, error) {
	name := partition.Name(host, app, sev)
	histogram := make(map[string]int)

	err := e.store.ScanKeys(ctx, name, func(key []byte) bool {
		recID, err := id.FromKey(key)
		if err != nil {
			return true
		}
		date := time.UnixMilli(int64(recID.Time())).UTC().Format("2006-01-02")
		histogram[date]++
		return true
	})
	if err != nil {
		return domain.Detail{}, domain.ErrStorage.WithCause(err)
	}

	rows := 0
	for _, c := range histogram {
		rows += c
	}

	return domain.Detail{
		Host:      host,
		App:       app,
		Severity:  sev,
		Rows:      rows,
		Histogram: histogram,
	}, nil
}

// Info enumerates every raw partition name the backing store knows about,
// producing one InfoResult per name. Unparseable names and empty partitions
// degrade to an error element; they never fail the whole call.
func (e *KVEngine) Info(ctx context.Context) ([]InfoResult, error) {
	rawNames, err := e.store.Partitions(ctx)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	results := make([]InfoResult, 0, len(rawNames))
	for _, raw := range rawNames {
		if partition.IsInternal(raw) {
			continue
		}

		p, err := partition.Parse(raw)
		if err != nil {
			results = append(results, InfoResult{Err: domain.ErrParsePartitionName.WithDetails(
				"skipping invalid partition name `" + raw + "`: " + err.Error())})
			continue
		}

		var first, last *id.ID
		scanErr := e.store.ScanKeys(ctx, raw, func(key []byte) bool {
			recID, err := id.FromKey(key)
			if err != nil {
				return true
			}
			if first == nil {
				k := recID
				first = &k
			}
			k := recID
			last = &k
			return true
		})
		if scanErr != nil {
			results = append(results, InfoResult{Err: domain.ErrStorage.WithCause(scanErr)})
			continue
		}

		if first == nil {
			results = append(results, InfoResult{Err: domain.ErrParsePartitionName.WithDetails(
				"partition " + raw + " is empty")})
			continue
		}

		results = append(results, InfoResult{Summary: &domain.Summary{
			Host:     p.Host,
			App:      p.App,
			Severity: p.Severity,
			Min:      *first,
			Max:      *last,
		}})
	}

	return results, nil
}

// Flush forces durability of every severity partition for (host, app).
func (e *KVEngine) Flush(ctx context.Context, host domain.Host, app domain.App) error {
	for _, sev := range domain.AllSeverities {
		name := partition.Name(host, app, sev)
		if err := e.store.Sync(ctx, name); err != nil {
			return domain.ErrStorage.WithCause(err)
		}
	}
	return nil
}

// Close releases the backing store.
func (e *KVEngine) Close() error {
	return e.store.Close()
}
