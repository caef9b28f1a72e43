// Package avatar resolves author avatars through an ordered chain of
// adapters. Results are memoized per identity for the life of the
// Resolver, misses included, and concurrent requests for one identity share
// a single in-flight chain.
package avatar

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aktagon/ldcard/identity"
)

// Store persists settled results beyond the life of a Resolver. A found
// entry with an empty URL is a remembered miss.
type Store interface {
	Get(ctx context.Context, key string) (url string, found bool, err error)
	Put(ctx context.Context, key, url string) error
}

// Option mutates resolver configuration.
type Option func(*Resolver)

// WithLogger injects a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStore adds a persistent store consulted before the adapters run.
func WithStore(store Store) Option {
	return func(r *Resolver) {
		r.store = store
	}
}

// WithContext sets the base context handed to adapters and the store.
// Chains are shared between callers, so no single caller's context is used.
func WithContext(ctx context.Context) Option {
	return func(r *Resolver) {
		if ctx != nil {
			r.ctx = ctx
		}
	}
}

// Resolver runs the adapter chain and caches its outcome per cache key.
// Entries are never evicted.
type Resolver struct {
	adapters []Adapter
	store    Store
	logger   *slog.Logger
	ctx      context.Context

	mu      sync.Mutex
	entries map[string]*Lookup
}

// NewResolver creates a resolver trying adapters in order.
func NewResolver(adapters []Adapter, options ...Option) *Resolver {
	r := &Resolver{
		adapters: append([]Adapter(nil), adapters...),
		logger:   slog.Default(),
		ctx:      context.Background(),
		entries:  make(map[string]*Lookup),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Resolve returns the lookup for id without blocking. The first request for
// a cache key inserts a pending entry and starts the chain; later requests
// get that same entry. An identity with neither handle nor DID settles
// empty immediately and is not cached.
func (r *Resolver) Resolve(id identity.Identity) *Lookup {
	key := id.CacheKey()
	if key == "" {
		return settledLookup("")
	}

	r.mu.Lock()
	if lookup, ok := r.entries[key]; ok {
		r.mu.Unlock()
		return lookup
	}
	lookup := newLookup()
	r.entries[key] = lookup
	r.mu.Unlock()

	go r.run(key, id, lookup)
	return lookup
}

// Len returns the number of cached entries, pending or settled.
func (r *Resolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Resolver) run(key string, id identity.Identity, lookup *Lookup) {
	normalized := identity.New(id.Handle, id.DID)

	if url, ok := r.fromStore(key); ok {
		r.logger.Debug("avatar lookup served from store", "key", key, "found", url != "")
		lookup.settle(url)
		return
	}

	r.logger.Debug("avatar lookup started", "key", key, "adapters", len(r.adapters))
	url := r.chain(normalized)
	r.toStore(key, url)

	r.logger.Debug("avatar lookup settled", "key", key, "found", url != "")
	lookup.settle(url)
}

// chain tries adapters strictly in order until one returns a URL.
func (r *Resolver) chain(id identity.Identity) string {
	for _, adapter := range r.adapters {
		url, err := r.try(adapter, id)
		if err == nil && url != "" {
			return url
		}
	}
	return ""
}

// try runs one adapter, turning a panic into an error so that a broken
// adapter cannot take down the chain.
func (r *Resolver) try(adapter Adapter, id identity.Identity) (url string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("adapter %s panicked: %v", adapter.Name(), recovered)
		}
	}()
	return adapter.ResolveAvatar(r.ctx, id)
}

// fromStore treats a failing or panicking store as a miss.
func (r *Resolver) fromStore(key string) (url string, found bool) {
	if r.store == nil {
		return "", false
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Warn("avatar store read panicked", "key", key, "panic", recovered)
			url, found = "", false
		}
	}()
	url, found, err := r.store.Get(r.ctx, key)
	if err != nil {
		r.logger.Warn("avatar store read failed", "key", key, "error", err)
		return "", false
	}
	return url, found
}

func (r *Resolver) toStore(key, url string) {
	if r.store == nil {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Warn("avatar store write panicked", "key", key, "panic", recovered)
		}
	}()
	if err := r.store.Put(r.ctx, key, url); err != nil {
		r.logger.Warn("avatar store write failed", "key", key, "error", err)
	}
}
