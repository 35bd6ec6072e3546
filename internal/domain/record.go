package domain

import "github.com/oklog/ulid/v2"

// Record is a single captured log event.
type Record struct {
	Message    string            `json:"message"`
	CodeModule *string           `json:"code_module,omitempty"`
	CodeFile   *string           `json:"code_file,omitempty"`
	CodeLine   *uint32           `json:"code_line,omitempty"`
	Tags       map[string]string `json:"tags"`
}

// Batch is an ordered ID -> Record mapping. Ordering is derived from the
// IDs themselves (byte-lexicographic, which is time order); insertion order
// is irrelevant.
type Batch map[ulid.ULID]Record

// Partition identifies an independent, time-ordered KV namespace.
type Partition struct {
	Host     Host
	App      App
	Severity Severity
}

// Name renders the partition as its on-disk/wire name: {host}-{app}-{severity}.
func (p Partition) Name() string {
	return string(p.Host) + "-" + string(p.App) + "-" + p.Severity.String()
}

// Summary is (host, app, severity, min_time, max_time) computed from the
// first/last key of a non-empty partition.
type Summary struct {
	Host     Host
	App      App
	Severity Severity
	Min      ulid.ULID
	Max      ulid.ULID
}

// Detail is a full-partition scan result: total row count plus a
// per-UTC-calendar-date histogram.
type Detail struct {
	Host      Host
	App       App
	Severity  Severity
	Rows      int
	Histogram map[string]int // UTC date (YYYY-MM-DD) -> count
}
