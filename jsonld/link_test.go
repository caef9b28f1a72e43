package jsonld

import "testing"

func TestHasAtprotoContext(t *testing.T) {
	tests := []struct {
		name     string
		ctx      any
		expected bool
	}{
		{"list with namespace object", []any{"https://schema.org", map[string]any{"atproto": "https://atproto.com/ns/1"}}, true},
		{"list without namespace", []any{"https://schema.org", map[string]any{"ex": "https://example.com/ns"}}, false},
		{"bare string not coerced", "https://atproto.com/ns", false},
		{"bare object not coerced", map[string]any{"atproto": "https://atproto.com/ns"}, false},
		{"string element ignored", []any{"https://atproto.com/ns"}, false},
		{"null element", []any{nil}, false},
		{"non-string value", []any{map[string]any{"atproto": 1}}, false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := HasAtprotoContext(tt.ctx); result != tt.expected {
				t.Errorf("HasAtprotoContext(%v) = %v, want %v", tt.ctx, result, tt.expected)
			}
		})
	}
}

func TestLinkNoArticle(t *testing.T) {
	_, ok := Link([]Record{{"@type": "Person", "name": "Bob"}})
	if ok {
		t.Error("Link() = true without an Article record")
	}
	if _, ok := Link(nil); ok {
		t.Error("Link(nil) = true")
	}
}

func TestLinkFirstArticleWins(t *testing.T) {
	records := []Record{
		{"@type": "WebPage"},
		{"@type": []any{"NewsArticle", "Article"}, "headline": "first"},
		{"@type": "Article", "headline": "second"},
	}
	linked, ok := Link(records)
	if !ok {
		t.Fatal("Link() found no Article")
	}
	if linked.Article.String("headline") != "first" {
		t.Errorf("Article headline = %q, want first", linked.Article.String("headline"))
	}
}

func TestLinkByID(t *testing.T) {
	records := []Record{
		{"@type": "Article", "author": map[string]any{"@id": "#p1", KeyAtprotoHandle: "alice"}},
		{"@type": "Person", "@id": "#p1", KeyAtprotoHandle: "someone-else"},
	}
	linked, ok := Link(records)
	if !ok {
		t.Fatal("Link() found no Article")
	}
	if linked.Person == nil || linked.Person.String(KeyID) != "#p1" {
		t.Errorf("Person = %v, want #p1", linked.Person)
	}
}

func TestLinkByHandleWithoutID(t *testing.T) {
	records := []Record{
		{"@type": "Article", "author": map[string]any{KeyAtprotoHandle: "alice"}},
		{"@type": "Person", "name": "first", KeyAtprotoHandle: "bob"},
		{"@type": "Person", "name": "second", KeyAtprotoHandle: "alice"},
	}
	linked, _ := Link(records)
	if linked.Person == nil || linked.Person.String("name") != "second" {
		t.Errorf("Person = %v, want second", linked.Person)
	}
}

func TestLinkByDID(t *testing.T) {
	records := []Record{
		{"@type": "Person", "name": "wrong", KeyAtprotoDID: "did:plc:other"},
		{"@type": "Person", "name": "right", KeyAtprotoDID: "did:plc:abc"},
		{"@type": "Article", "author": map[string]any{KeyAtprotoDID: "did:plc:abc"}},
	}
	linked, _ := Link(records)
	if linked.Person == nil || linked.Person.String("name") != "right" {
		t.Errorf("Person = %v, want right", linked.Person)
	}
}

func TestLinkNeverMatchesOnEmptyFields(t *testing.T) {
	records := []Record{
		{"@type": "Article", "author": map[string]any{"name": "Bob"}},
		{"@type": "Person", "name": "Anon"},
		{"@type": "Person", "@id": "", KeyAtprotoDID: "", KeyAtprotoHandle: ""},
	}
	linked, _ := Link(records)
	if linked.Person != nil {
		t.Errorf("Person = %v, want no match", linked.Person)
	}
}

func TestLinkRequiresPersonType(t *testing.T) {
	records := []Record{
		{"@type": "Article", "author": map[string]any{"@id": "#org"}},
		{"@type": "Organization", "@id": "#org"},
	}
	linked, _ := Link(records)
	if linked.Person != nil {
		t.Errorf("Person = %v, want nil for non-Person record", linked.Person)
	}
}

func TestLinkAuthorShapes(t *testing.T) {
	tests := []struct {
		name     string
		author   any
		expected string
	}{
		{"object", map[string]any{"name": "Bob"}, "Bob"},
		{"list", []any{"skip", map[string]any{"name": "Carol"}}, "Carol"},
		{"string", "Dave", "Dave"},
		{"absent", nil, ""},
		{"number", 12, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linked, _ := Link([]Record{{"@type": "Article", "author": tt.author}})
			if got := linked.Author.String("name"); got != tt.expected {
				t.Errorf("author name = %q, want %q", got, tt.expected)
			}
		})
	}
}
