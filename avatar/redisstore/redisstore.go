// Package redisstore shares settled avatar lookups between processes
// through Redis. Keys are namespaced as <prefix>:avatar:<cacheKey>.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces keys when no prefix is configured.
const DefaultPrefix = "ldcard"

// Store is a Redis-backed avatar store. It is safe for concurrent use.
type Store struct {
	rdb    *redis.Client
	prefix string
}

// New creates a store. An empty prefix falls back to DefaultPrefix.
func New(redisOpts *redis.Options, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{
		rdb:    redis.NewClient(redisOpts),
		prefix: prefix,
	}
}

// NewFromURL parses a redis:// URL and creates a store.
func NewFromURL(redisURL, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	return New(opts, prefix), nil
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Key returns the Redis key for a cache key.
func (s *Store) Key(cacheKey string) string {
	return s.prefix + ":avatar:" + cacheKey
}

// Get returns the stored URL for key. found is false when the key is unset.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	url, err := s.rdb.Get(ctx, s.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading avatar %s: %w", key, err)
	}
	return url, true, nil
}

// Put stores url under key without expiry; an empty url records a miss.
func (s *Store) Put(ctx context.Context, key, url string) error {
	if err := s.rdb.Set(ctx, s.Key(key), url, 0).Err(); err != nil {
		return fmt.Errorf("writing avatar %s: %w", key, err)
	}
	return nil
}

// Entry is one stored lookup result.
type Entry struct {
	Key string
	URL string
}

// Entries returns every stored lookup ordered by cache key.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	keys, err := s.scan(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		url, err := s.rdb.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
		entries = append(entries, Entry{Key: strings.TrimPrefix(key, s.Key("")), URL: url})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Purge deletes every stored lookup under the prefix.
func (s *Store) Purge(ctx context.Context) (int, error) {
	keys, err := s.scan(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("purging avatars: %w", err)
	}
	return int(n), nil
}

func (s *Store) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, escapeGlob(s.Key(""))+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning avatar keys: %w", err)
	}
	return keys, nil
}

var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// escapeGlob quotes the SCAN pattern metacharacters in s.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
