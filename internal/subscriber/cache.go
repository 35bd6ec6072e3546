// Package subscriber implements the in-process log capture pipeline (C7-C9):
// a per-severity bounded cache, a shipper task that overlaps cache fill with
// outbound delivery, and a shutdown drainer that makes a best-effort
// synchronous flush when the shipper is torn down.
package subscriber

import (
	"time"

	"github.com/eigenlog/eigenlog/internal/domain"
	"github.com/eigenlog/eigenlog/internal/id"
)

// CacheLimits configures the per-severity eligibility threshold. Zero value
// for a severity falls back to DefaultCacheLimits' entry for it.
type CacheLimits struct {
	Error, Warn, Info, Debug, Trace int
}

// DefaultCacheLimits matches spec: low-frequency high-significance levels
// ship immediately, verbose levels amortize into larger batches.
var DefaultCacheLimits = CacheLimits{Error: 1, Warn: 1, Info: 10, Debug: 100, Trace: 100}

func (l CacheLimits) limit(s domain.Severity) int {
	switch s {
	case domain.Error:
		return l.Error
	case domain.Warn:
		return l.Warn
	case domain.Info:
		return l.Info
	case domain.Debug:
		return l.Debug
	case domain.Trace:
		return l.Trace
	default:
		return 1
	}
}

// DefaultCacheTimeout is the oldest-entry age past which a batch is
// eligible to ship regardless of size.
const DefaultCacheTimeout = 30 * time.Second

// severityBucket is one severity's accumulating batch plus the age of its
// oldest entry.
type severityBucket struct {
	batch     domain.Batch
	oldestAt  time.Time
}

// cache is the shipper-owned, single-threaded mapping from severity to its
// accumulating batch. Never accessed outside the shipper's loop goroutine.
type cache struct {
	limits  CacheLimits
	timeout time.Duration
	buckets map[domain.Severity]*severityBucket
}

func newCache(limits CacheLimits, timeout time.Duration) *cache {
	if timeout <= 0 {
		timeout = DefaultCacheTimeout
	}
	c := &cache{limits: limits, timeout: timeout, buckets: make(map[domain.Severity]*severityBucket)}
	for _, s := range domain.AllSeverities {
		c.buckets[s] = &severityBucket{batch: domain.Batch{}}
	}
	return c
}

// insert adds rec under a freshly generated ID to its severity's batch.
func (c *cache) insert(sev domain.Severity, recID id.ID, rec domain.Record) {
	b := c.buckets[sev]
	if len(b.batch) == 0 {
		b.oldestAt = time.Now()
	}
	b.batch[recID] = rec
}

// eligible reports whether sev's batch is ready to ship: at or above its
// configured limit, or its oldest entry has aged past the cache timeout.
func (c *cache) eligible(sev domain.Severity, now time.Time) bool {
	b := c.buckets[sev]
	if len(b.batch) == 0 {
		return false
	}
	limit := c.limits.limit(sev)
	if limit <= 0 {
		limit = DefaultCacheLimits.limit(sev)
	}
	if len(b.batch) >= limit {
		return true
	}
	return now.Sub(b.oldestAt) >= c.timeout
}

// detach removes and returns sev's batch, resetting its bucket to empty.
func (c *cache) detach(sev domain.Severity) domain.Batch {
	b := c.buckets[sev]
	batch := b.batch
	b.batch = domain.Batch{}
	b.oldestAt = time.Time{}
	return batch
}

// depth reports the number of records currently buffered for sev.
func (c *cache) depth(sev domain.Severity) int {
	return len(c.buckets[sev].batch)
}

// nextEligible returns the most significant (lowest weight) severity whose
// batch is currently ship-eligible, scanning in severity order.
func (c *cache) nextEligible(now time.Time) (domain.Severity, bool) {
	for _, sev := range domain.AllSeverities {
		if c.eligible(sev, now) {
			return sev, true
		}
	}
	return 0, false
}

// nonEmpty returns every (severity, batch) pair with at least one entry,
// used by flush and the shutdown drainer to snapshot everything at once.
func (c *cache) nonEmpty() []pendingBatch {
	var out []pendingBatch
	for _, sev := range domain.AllSeverities {
		if b := c.buckets[sev]; len(b.batch) > 0 {
			out = append(out, pendingBatch{Severity: sev, Batch: c.detach(sev)})
		}
	}
	return out
}

type pendingBatch struct {
	Severity domain.Severity
	Batch    domain.Batch
}
