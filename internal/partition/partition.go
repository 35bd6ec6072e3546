// Package partition names, parses, and enumerates the (host, app, severity)
// partitions that key the storage engine's independent ordered namespaces.
package partition

import (
	"strings"

	"github.com/eigenlog/eigenlog/internal/domain"
)

// Name renders the on-disk/wire partition name for a (host, app, severity)
// triple: "{host}-{app}-{severity}", severity lowercase.
func Name(host domain.Host, app domain.App, sev domain.Severity) string {
	return domain.Partition{Host: host, App: app, Severity: sev}.Name()
}

// Parse splits a raw partition name into its (host, app, severity) parts.
// It fails with ErrParsePartitionName if the name does not contain exactly
// two "-" separators or if any segment fails its own validation.
func Parse(raw string) (domain.Partition, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return domain.Partition{}, domain.ErrParsePartitionName.WithDetails(
			"expected exactly two `-` separators in `" + raw + "`")
	}

	host, err := domain.ParseHost(parts[0])
	if err != nil {
		return domain.Partition{}, domain.ErrParsePartitionName.WithCause(err)
	}
	app, err := domain.ParseApp(parts[1])
	if err != nil {
		return domain.Partition{}, domain.ErrParsePartitionName.WithCause(err)
	}
	sev, err := domain.ParseSeverity(parts[2])
	if err != nil {
		return domain.Partition{}, domain.ErrParsePartitionName.WithCause(err)
	}

	return domain.Partition{Host: host, App: app, Severity: sev}, nil
}

// internalPrefixes names the raw partitions a backing KV engine may expose
// for its own bookkeeping (e.g. Badger has no notion of "trees" the way sled
// does, but a future engine might). These are filtered out before parsing so
// that a foreign/internal name never surfaces as a parse failure in Info().
var internalPrefixes = []string{"__eigenlog__"}

// IsInternal reports whether raw is a storage-engine-internal name that the
// catalog should skip silently rather than attempt to parse.
func IsInternal(raw string) bool {
	for _, p := range internalPrefixes {
		if strings.HasPrefix(raw, p) {
			return true
		}
	}
	return false
}
