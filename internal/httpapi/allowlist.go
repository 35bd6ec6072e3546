package httpapi

import (
	"sync/atomic"

	"github.com/eigenlog/eigenlog/pkg/cmap"
)

// Allowlist is the shared set of valid X-API-KEY values, checked on every
// request. It is replaced wholesale (never mutated in place) on config
// reload, so readers never observe a partially-updated set: Contains always
// reads one complete snapshot, swapped in atomically by Replace.
type Allowlist struct {
	set atomic.Pointer[cmap.Map[string, struct{}]]
}

// NewAllowlist builds an Allowlist from a slice of configured keys.
func NewAllowlist(keys []string) *Allowlist {
	a := &Allowlist{}
	a.Replace(keys)
	return a
}

// Contains reports whether key is currently allowed.
func (a *Allowlist) Contains(key string) bool {
	return a.set.Load().Has(key)
}

// Replace swaps in a new key set, e.g. after a config hot-reload.
func (a *Allowlist) Replace(keys []string) {
	next := cmap.New[string, struct{}]()
	for _, k := range keys {
		next.Set(k, struct{}{})
	}
	a.set.Store(next)
}
