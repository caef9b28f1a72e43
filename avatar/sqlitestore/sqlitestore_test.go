package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "avatars.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)

	url, found, err := store.Get(context.Background(), "alice|")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found || url != "" {
		t.Errorf("Get() = %q, %v; want not found", url, found)
	}
}

func TestPutGetAndReplace(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "alice|", "https://cdn/a.png"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Put(ctx, "alice|", "https://cdn/b.png"); err != nil {
		t.Fatalf("Put() replace error = %v", err)
	}

	url, found, err := store.Get(ctx, "alice|")
	if err != nil || !found || url != "https://cdn/b.png" {
		t.Errorf("Get() = %q, %v, %v; want replaced url", url, found, err)
	}
}

func TestMissIsStored(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "|did:plc:ghost", ""); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	url, found, err := store.Get(ctx, "|did:plc:ghost")
	if err != nil || !found || url != "" {
		t.Errorf("Get() = %q, %v, %v; want remembered miss", url, found, err)
	}
}

func TestEntriesAndPurge(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	store.Put(ctx, "bob|", "https://cdn/bob.png")
	store.Put(ctx, "alice|", "")

	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "alice|" || entries[1].URL != "https://cdn/bob.png" {
		t.Errorf("Entries() = %+v", entries)
	}
	if entries[0].ResolvedAt.IsZero() {
		t.Error("ResolvedAt not recorded")
	}

	n, err := store.Purge(ctx)
	if err != nil || n != 2 {
		t.Errorf("Purge() = %d, %v; want 2", n, err)
	}
	entries, _ = store.Entries(ctx)
	if len(entries) != 0 {
		t.Errorf("Entries() after purge = %+v", entries)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avatars.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store.Put(ctx, "alice|", "https://cdn/a.png")
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if url, found, _ := reopened.Get(ctx, "alice|"); !found || url != "https://cdn/a.png" {
		t.Errorf("Get() after reopen = %q, %v", url, found)
	}
}
