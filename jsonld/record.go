// Package jsonld turns the JSON-LD blocks embedded in a document into
// records, picks the Article and the Person describing its author, and
// projects them into an ArticleView.
package jsonld

// Schema.org and atproto keys read from records.
const (
	KeyType    = "@type"
	KeyID      = "@id"
	KeyContext = "@context"
	KeyGraph   = "@graph"

	KeyAtprotoDID    = "atproto:did"
	KeyAtprotoHandle = "atproto:handle"
	KeyAtprotoFeed   = "atproto:feed"

	TypeArticle = "Article"
	TypePerson  = "Person"
)

// Record is one decoded JSON-LD object. Records are read-only once parsed.
type Record map[string]any

// String returns the value under key when it is a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Types returns the record's @type as a list.
func (r Record) Types() []string {
	return TypeList(r[KeyType])
}

// TypeList normalizes a @type value: a list keeps its string elements, a
// non-empty string becomes a one-element list, anything else is empty.
func TypeList(value any) []string {
	switch v := value.(type) {
	case []any:
		types := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// HasType reports whether the record declares the given type.
func HasType(rec Record, name string) bool {
	if rec == nil {
		return false
	}
	for _, t := range rec.Types() {
		if t == name {
			return true
		}
	}
	return false
}

// present mirrors truthiness of a decoded JSON value: null, "", false and 0
// are absent; objects and lists are present even when empty.
func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return true
	}
}

// asRecord converts a decoded object into a Record.
func asRecord(value any) (Record, bool) {
	switch v := value.(type) {
	case map[string]any:
		return Record(v), true
	case Record:
		return v, true
	default:
		return nil, false
	}
}
