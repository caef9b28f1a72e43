package card

import (
	"log/slog"

	"github.com/aktagon/ldcard/avatar"
	"github.com/aktagon/ldcard/identity"
	"github.com/aktagon/ldcard/jsonld"
)

// AvatarResolver starts or joins an avatar lookup without blocking.
type AvatarResolver interface {
	Resolve(id identity.Identity) *avatar.Lookup
}

// Option mutates assembler configuration.
type Option func(*Assembler)

// WithLogger injects a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Assembler builds cards and wires late avatar patches.
type Assembler struct {
	resolver AvatarResolver
	logger   *slog.Logger
}

// NewAssembler creates an assembler. A nil resolver disables lookups.
func NewAssembler(resolver AvatarResolver, options ...Option) *Assembler {
	a := &Assembler{
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Assemble builds the card for view. When the card shows an author without
// an inline avatar, it starts a lookup and patches the card once the lookup
// settles with a URL. The returned lookup is nil when none was started.
func (a *Assembler) Assemble(view jsonld.ArticleView) (*Card, *avatar.Lookup) {
	c := Build(view)
	if a.resolver == nil || !c.NeedsAvatar() {
		return c, nil
	}

	lookup := a.resolver.Resolve(view.Identity())
	lookup.Then(func(url string) {
		if c.PatchAvatar(url) {
			a.logger.Debug("patched author avatar", "author", view.AuthorName)
		}
	})
	return c, lookup
}
