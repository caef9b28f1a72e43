package avatar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/aktagon/ldcard/identity"
)

const (
	// DefaultAppViewEndpoint is the public Bluesky AppView profile lookup.
	DefaultAppViewEndpoint = "https://public.api.bsky.app/xrpc/app.bsky.actor.getProfile"

	defaultAppViewTimeout = 10 * time.Second
	maxProfileBytes       = 1 << 20
)

// AppViewOption mutates AppViewAdapter configuration.
type AppViewOption func(*AppViewAdapter)

// WithEndpoint overrides the profile lookup endpoint.
func WithEndpoint(endpoint string) AppViewOption {
	return func(a *AppViewAdapter) {
		if endpoint != "" {
			a.endpoint = endpoint
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) AppViewOption {
	return func(a *AppViewAdapter) {
		if client != nil {
			a.client = client
		}
	}
}

// AppViewAdapter looks up the avatar on an atproto AppView through
// app.bsky.actor.getProfile. Every failure yields an empty result.
type AppViewAdapter struct {
	endpoint string
	client   *http.Client
}

// NewAppViewAdapter creates an adapter for the public AppView.
func NewAppViewAdapter(options ...AppViewOption) *AppViewAdapter {
	a := &AppViewAdapter{
		endpoint: DefaultAppViewEndpoint,
		client:   &http.Client{Timeout: defaultAppViewTimeout},
	}
	for _, option := range options {
		option(a)
	}
	return a
}

// Name implements Adapter.
func (a *AppViewAdapter) Name() string {
	return "bsky-appview"
}

// profile is the subset of app.bsky.actor.defs#profileViewDetailed we read.
type profile struct {
	Avatar any `json:"avatar"`
}

// ResolveAvatar queries the profile of the handle, or of the DID when no
// handle is known. Network, status and decoding failures are swallowed.
func (a *AppViewAdapter) ResolveAvatar(ctx context.Context, id identity.Identity) (string, error) {
	actor := id.Actor()
	if actor == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint, nil)
	if err != nil {
		return "", nil
	}
	q := req.URL.Query()
	q.Set("actor", actor)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil
	}

	var p profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxProfileBytes)).Decode(&p); err != nil {
		return "", nil
	}
	avatarURL, _ := p.Avatar.(string)
	return avatarURL, nil
}
