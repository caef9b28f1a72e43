package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/aktagon/ldcard/avatar/redisstore"
	"github.com/aktagon/ldcard/avatar/sqlitestore"
)

const usage = "Usage: avatarcache <list|get|purge> <sqlite:path|redis://host:port/db> [cache-key]"

// cache is the part of a persistent avatar store the maintenance commands use
type cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Purge(ctx context.Context) (int, error)
	io.Closer
}

type entry struct {
	key string
	url string
}

type listableCache interface {
	cache
	list(ctx context.Context) ([]entry, error)
}

type sqliteCache struct{ *sqlitestore.Store }

func (c sqliteCache) list(ctx context.Context) ([]entry, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entry{key: e.Key, url: e.URL})
	}
	return out, nil
}

type redisCache struct{ *redisstore.Store }

func (c redisCache) list(ctx context.Context) ([]entry, error) {
	entries, err := c.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entry{key: e.Key, url: e.URL})
	}
	return out, nil
}

func main() {
	if len(os.Args) < 3 {
		log.Fatal(usage)
	}

	command := os.Args[1]
	store, err := openCache(os.Args[2])
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	switch command {
	case "list":
		err = listEntries(ctx, os.Stdout, store)
	case "get":
		if len(os.Args) < 4 {
			store.Close()
			log.Fatal(usage)
		}
		err = getEntry(ctx, os.Stdout, store, os.Args[3])
	case "purge":
		err = purge(ctx, os.Stdout, bufio.NewReader(os.Stdin), store)
	default:
		store.Close()
		log.Fatalf("Unknown command %q", command)
	}
	if err != nil {
		store.Close()
		log.Fatal(err)
	}
}

// openCache opens the store named by target
func openCache(target string) (listableCache, error) {
	switch {
	case strings.HasPrefix(target, "sqlite:"):
		path := strings.TrimPrefix(target, "sqlite:")
		if path == "" {
			return nil, fmt.Errorf("sqlite store needs a path")
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		store, err := sqlitestore.Open(path)
		if err != nil {
			return nil, err
		}
		return sqliteCache{store}, nil
	case strings.HasPrefix(target, "redis://"), strings.HasPrefix(target, "rediss://"):
		prefix := os.Getenv("LDCARD_REDIS_PREFIX")
		if prefix == "" {
			prefix = redisstore.DefaultPrefix
		}
		store, err := redisstore.NewFromURL(target, prefix)
		if err != nil {
			return nil, err
		}
		if err := store.Ping(context.Background()); err != nil {
			store.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return redisCache{store}, nil
	default:
		return nil, fmt.Errorf("unsupported store %q", target)
	}
}

func listEntries(ctx context.Context, w io.Writer, store listableCache) error {
	entries, err := store.list(ctx)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}
	for _, e := range entries {
		url := e.url
		if url == "" {
			url = "(miss)"
		}
		fmt.Fprintf(w, "%s\t%s\n", e.key, url)
	}
	fmt.Fprintf(w, "%d entries\n", len(entries))
	return nil
}

func getEntry(ctx context.Context, w io.Writer, store cache, key string) error {
	url, found, err := store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	switch {
	case !found:
		fmt.Fprintf(w, "%s not cached\n", key)
	case url == "":
		fmt.Fprintf(w, "%s cached as miss\n", key)
	default:
		fmt.Fprintln(w, url)
	}
	return nil
}

func purge(ctx context.Context, w io.Writer, reader *bufio.Reader, store cache) error {
	if !confirm(w, reader, "Remove all cached avatars?") {
		fmt.Fprintln(w, "Aborted")
		return nil
	}
	removed, err := store.Purge(ctx)
	if err != nil {
		return fmt.Errorf("purging store: %w", err)
	}
	fmt.Fprintf(w, "Removed %d entries\n", removed)
	return nil
}

func confirm(w io.Writer, reader *bufio.Reader, question string) bool {
	for {
		fmt.Fprintf(w, "%s [y/N]: ", question)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(input)) {
		case "y", "yes":
			return true
		case "", "n", "no":
			return false
		default:
			fmt.Fprintln(w, "Please enter y or n.")
		}
	}
}
