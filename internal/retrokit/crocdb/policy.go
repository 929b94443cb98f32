package crocdb

import (
	"time"

	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
)

// Policy controls entry cache read/write behavior and TTL.
type Policy struct {
	Read  bool
	Write bool
	TTL   time.Duration
}

// Options exposes cache-related flags used to derive a Policy.
type Options interface {
	IsNoCache() bool
	IsRefresh() bool
}

// PolicyFor builds the entry cache policy from options.
func PolicyFor(opts Options) Policy {
	if opts == nil {
		return Policy{Read: true, Write: true, TTL: helpers.CatalogEntryTTL}
	}
	if opts.IsNoCache() {
		return Policy{}
	}
	if opts.IsRefresh() {
		return Policy{Write: true, TTL: helpers.CatalogEntryTTL}
	}
	return Policy{Read: true, Write: true, TTL: helpers.CatalogEntryTTL}
}

func (p Policy) fresh(fetchedAt, now time.Time) bool {
	return p.TTL == 0 || now.Sub(fetchedAt) <= p.TTL
}
