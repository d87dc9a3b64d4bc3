package cacclient

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory is the process-wide registry mapping tenant to a shared *Client,
// described in spec §4.6. The zero value is not usable; construct with
// NewFactory. Entries are never evicted; total tenants are assumed
// bounded by deployment, which is also why this does not use an LRU (see
// DESIGN.md).
type Factory struct {
	mu      sync.RWMutex
	tenants map[string]*Client

	// inflight deduplicates concurrent CreateClient calls for the same
	// tenant so only one initial HTTP fetch is ever issued, even though
	// construction itself happens outside the tenants-map lock (spec §4.6
	// "release exclusive access around the potentially slow construction").
	inflight singleflight.Group
}

// NewFactory returns an empty Factory, exposed as a constructed object the
// host injects rather than a hidden package-level global (spec §9 "Factory
// singleton"), to ease testing.
func NewFactory() *Factory {
	return &Factory{tenants: make(map[string]*Client)}
}

// CreateClient returns the existing client for tenant if one has already
// been created (opts in that case are ignored — first creator wins, spec
// §4.6), otherwise constructs one and registers it.
//
// Concurrent calls for a tenant with no existing client collapse onto a
// single in-flight construction via singleflight, so only one HTTP
// bootstrap request is issued no matter how many callers race in
// (spec §8 Scenario F); every caller in the race receives the same
// resulting *Client.
func (f *Factory) CreateClient(ctx context.Context, tenant string, opts ClientOptions) (*Client, error) {
	if existing, ok := f.lookup(tenant); ok {
		return existing, nil
	}

	opts.Tenant = tenant
	result, err, _ := f.inflight.Do(tenant, func() (any, error) {
		if existing, ok := f.lookup(tenant); ok {
			return existing, nil
		}
		candidate, err := New(ctx, opts)
		if err != nil {
			return nil, err
		}
		f.mu.Lock()
		f.tenants[tenant] = candidate
		f.mu.Unlock()
		return candidate, nil
	})
	if err != nil {
		return nil, fmt.Errorf("cacclient: factory creating client for tenant %q: %w", tenant, err)
	}
	return result.(*Client), nil
}

func (f *Factory) lookup(tenant string) (*Client, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.tenants[tenant]
	return c, ok
}

// GetClient returns the registered client for tenant, or ErrUnknownTenant
// if none has been created.
func (f *Factory) GetClient(tenant string) (*Client, error) {
	c, ok := f.lookup(tenant)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTenant, tenant)
	}
	return c, nil
}
