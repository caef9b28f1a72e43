package redisstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := New(&redis.Options{Addr: mr.Addr()}, prefix)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestStore_GetPut(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		store, _ := newTestStore(t, "")
		url, found, err := store.Get(context.Background(), "alice|")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, url)
	})

	t.Run("stored url", func(t *testing.T) {
		store, mr := newTestStore(t, "test")
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "alice|did:plc:a", "https://cdn/a.png"))

		url, found, err := store.Get(ctx, "alice|did:plc:a")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "https://cdn/a.png", url)

		raw, err := mr.Get("test:avatar:alice|did:plc:a")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn/a.png", raw)
	})

	t.Run("remembered miss", func(t *testing.T) {
		store, _ := newTestStore(t, "")
		ctx := context.Background()

		require.NoError(t, store.Put(ctx, "ghost|", ""))
		url, found, err := store.Get(ctx, "ghost|")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, url)
	})
}

func TestStore_EntriesAndPurge(t *testing.T) {
	store, mr := newTestStore(t, "test")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bob|", "https://cdn/bob.png"))
	require.NoError(t, store.Put(ctx, "alice|", ""))
	require.NoError(t, mr.Set("other:avatar:carol|", "https://cdn/c.png"))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Key: "alice|", URL: ""},
		{Key: "bob|", URL: "https://cdn/bob.png"},
	}, entries)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, mr.Exists("other:avatar:carol|"), "purge must stay inside the prefix")

	n, err = store.Purge(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_PurgeEscapesPrefixPattern(t *testing.T) {
	store, mr := newTestStore(t, "app*[1]")
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "bob|", "https://cdn/bob.png"))
	require.NoError(t, mr.Set("app-prod[1]:avatar:carol|", "https://cdn/c.png"))
	require.NoError(t, mr.Set("app1:avatar:dave|", "https://cdn/d.png"))

	entries, err := store.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Entry{{Key: "bob|", URL: "https://cdn/bob.png"}}, entries)

	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, mr.Exists("app-prod[1]:avatar:carol|"))
	assert.True(t, mr.Exists("app1:avatar:dave|"))
}

func TestEscapeGlob(t *testing.T) {
	assert.Equal(t, `a\*b\?c\[d\]e\\f`, escapeGlob(`a*b?c[d]e\f`))
}

func TestNewFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewFromURL("redis://"+mr.Addr()+"/0", "")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, "ldcard:avatar:x|", store.Key("x|"))

	_, err = NewFromURL("not a url", "")
	assert.Error(t, err)
}
