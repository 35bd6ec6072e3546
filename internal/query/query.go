// Package query implements the cross-partition query engine (C4): planning
// a query over every partition matching host/app/severity filters, scanning
// each partition's time-bounded key range, applying regex include/exclude
// filters, and respecting a result cap.
package query

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/id"
	"github.com/eigenlog/eigenlog/internal/kv"
	"github.com/eigenlog/eigenlog/internal/partition"
	"github.com/eigenlog/eigenlog/internal/wire"
)

// Params are the query engine's inputs. Every field is optional.
type Params struct {
	MaxLogLevel       *domain.Severity
	StartTimestamp    *time.Time
	EndTimestamp      *time.Time
	HostContains      string
	AppContains       string
	MessageMatches    string
	MessageNotMatches string
	MaxResults        *int
}

// Hit is one matched record, tagged with the partition it came from.
type Hit struct {
	Host     domain.Host
	App      domain.App
	Severity domain.Severity
	ID       id.ID
	Record   domain.Record
}

// Run executes params against every partition store exposes. Results within
// a partition are in ID (time) order; there is no guaranteed ordering across
// partitions -- callers needing a global order must sort by ID.
func Run(ctx context.Context, store kv.RawStore, params Params) ([]Hit, error) {
	mustMatch, err := compile(params.MessageMatches)
	if err != nil {
		return nil, domain.ErrRegex.WithCause(err)
	}
	mustNotMatch, err := compile(params.MessageNotMatches)
	if err != nil {
		return nil, domain.ErrRegex.WithCause(err)
	}

	maxLevel := domain.Info
	if params.MaxLogLevel != nil {
		maxLevel = *params.MaxLogLevel
	}

	rawNames, err := store.Partitions(ctx)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	var relevant []domain.Partition
	for _, raw := range rawNames {
		if partition.IsInternal(raw) {
			continue
		}
		p, err := partition.Parse(raw)
		if err != nil {
			continue // unparseable partitions are skipped, not fatal
		}
		if !strings.Contains(string(p.Host), params.HostContains) {
			continue
		}
		if !strings.Contains(string(p.App), params.AppContains) {
			continue
		}
		if !p.Severity.MoreOrEquallySignificant(maxLevel) {
			continue
		}
		relevant = append(relevant, p)
	}

	lo := id.MinKey
	if params.StartTimestamp != nil {
		lo = id.Floor(id.FromTime(*params.StartTimestamp))
	}
	hi := id.MaxKey
	if params.EndTimestamp != nil {
		hi = id.Ceiling(id.FromTime(*params.EndTimestamp))
	}

	var hits []Hit
	rows := 0
	for _, p := range relevant {
		name := p.Name()
		scanErr := store.ScanRange(ctx, name, lo, hi, func(key, value []byte) bool {
			if params.MaxResults != nil && rows > *params.MaxResults {
				return false
			}

			rec, decErr := wire.DecodeRecord(value)
			if decErr != nil {
				return true // skip undecodable entries, keep scanning
			}

			if mustNotMatch != nil && mustNotMatch.MatchString(rec.Message) {
				return true
			}
			if mustMatch != nil && !mustMatch.MatchString(rec.Message) {
				return true
			}

			recID, idErr := id.FromKey(key)
			if idErr != nil {
				return true
			}

			hits = append(hits, Hit{
				Host:     p.Host,
				App:      p.App,
				Severity: p.Severity,
				ID:       recID,
				Record:   rec,
			})
			rows++
			return true
		})
		if scanErr != nil {
			return nil, domain.ErrStorage.WithCause(scanErr)
		}
	}

	return hits, nil
}

func compile(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	return regexp.Compile(pattern)
}
