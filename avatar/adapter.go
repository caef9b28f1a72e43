package avatar

import (
	"context"

	"github.com/aktagon/ldcard/identity"
)

// Adapter resolves an avatar URL for an identity from one source. An empty
// URL or a non-nil error both mean "no result here"; the resolver moves on
// to the next adapter either way.
type Adapter interface {
	Name() string
	ResolveAvatar(ctx context.Context, id identity.Identity) (string, error)
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(ctx context.Context, id identity.Identity) (string, error)

// Name implements Adapter.
func (f AdapterFunc) Name() string {
	return "func"
}

// ResolveAvatar implements Adapter.
func (f AdapterFunc) ResolveAvatar(ctx context.Context, id identity.Identity) (string, error) {
	return f(ctx, id)
}
