package identity

import "testing"

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"leading at and whitespace", "@Alice ", "alice"},
		{"already normalized", "alice.bsky.social", "alice.bsky.social"},
		{"repeated at stripped", "@@bob", "bob"},
		{"whitespace after at", " @ bob", "bob"},
		{"mixed case", "  Bob.Example.COM\t", "bob.example.com"},
		{"number", 42, ""},
		{"nil", nil, ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeHandle(tt.input)
			if result != tt.expected {
				t.Errorf("NormalizeHandle(%v) = %q, want %q", tt.input, result, tt.expected)
			}
			if again := NormalizeHandle(result); again != result {
				t.Errorf("NormalizeHandle not idempotent: %q then %q", result, again)
			}
		})
	}
}

func TestNormalizeDID(t *testing.T) {
	tests := []struct {
		input    any
		expected string
	}{
		{"did:plc:abc", "did:plc:abc"},
		{"did:web:example.com", "did:web:example.com"},
		{"plc:abc", ""},
		{" did:plc:abc", ""},
		{42, ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if result := NormalizeDID(tt.input); result != tt.expected {
			t.Errorf("NormalizeDID(%v) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestResolveFeedHref(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"at uri", "at://did:plc:x/app.bsky.feed.post/1", "at://did:plc:x/app.bsky.feed.post/1"},
		{"https", "https://example.com/feed", "https://example.com/feed"},
		{"http trimmed", "  http://example.com/feed ", "http://example.com/feed"},
		{"ftp rejected", "ftp://x", ""},
		{"scheme-less rejected", "example.com/feed", ""},
		{"whitespace only", "   ", ""},
		{"non-string", []string{"https://x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ResolveFeedHref(tt.input); result != tt.expected {
				t.Errorf("ResolveFeedHref(%v) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		id       Identity
		expected string
	}{
		{"handle only", Identity{Handle: "alice"}, "alice|"},
		{"did only", Identity{DID: "did:plc:abc"}, "|did:plc:abc"},
		{"both", Identity{Handle: "@Alice", DID: "did:plc:abc"}, "alice|did:plc:abc"},
		{"invalid did dropped", Identity{Handle: "alice", DID: "plc:abc"}, "alice|"},
		{"empty", Identity{}, ""},
		{"whitespace handle", Identity{Handle: "  "}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.id.CacheKey(); result != tt.expected {
				t.Errorf("CacheKey() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestActor(t *testing.T) {
	if got := New("@Alice", "did:plc:abc").Actor(); got != "alice" {
		t.Errorf("Actor() = %q, want handle", got)
	}
	if got := New(nil, "did:plc:abc").Actor(); got != "did:plc:abc" {
		t.Errorf("Actor() = %q, want did", got)
	}
	if got := New(nil, nil).Actor(); got != "" {
		t.Errorf("Actor() = %q, want empty", got)
	}
	if !New("", "nope").IsZero() {
		t.Error("IsZero() = false for empty identity")
	}
}

func TestTruncateDID(t *testing.T) {
	short := "did:plc:abc"
	if got := TruncateDID(short); got != short {
		t.Errorf("TruncateDID(%q) = %q", short, got)
	}

	exact := "did:plc:abcdefghijkl"
	if got := TruncateDID(exact); got != exact {
		t.Errorf("TruncateDID(%q) = %q, want unchanged at 20 chars", exact, got)
	}

	long := "did:plc:abcdefghijklmnopqrstuvwxyz"
	if got, want := TruncateDID(long), "did:plc:abcdefghijkl…"; got != want {
		t.Errorf("TruncateDID(%q) = %q, want %q", long, got, want)
	}
}
