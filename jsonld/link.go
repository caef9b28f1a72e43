package jsonld

// Linked is the Article record together with its author and, when one
// matches, the Person record describing that author.
type Linked struct {
	Article Record
	Author  Record
	Person  Record
}

// authorRef holds the author fields used to find the linked Person.
type authorRef struct {
	id     string
	did    string
	handle string
}

// personMatcher is one clause of the author/Person match. Each clause must
// return false when the author side is empty so that empty strings never
// match.
type personMatcher func(ref authorRef, person Record) bool

// personMatchers are evaluated in order, strongest identifier first.
var personMatchers = []personMatcher{
	func(ref authorRef, person Record) bool {
		return ref.id != "" && person.String(KeyID) == ref.id
	},
	func(ref authorRef, person Record) bool {
		return ref.did != "" && person.String(KeyAtprotoDID) == ref.did
	},
	func(ref authorRef, person Record) bool {
		return ref.handle != "" && person.String(KeyAtprotoHandle) == ref.handle
	},
}

// Link selects the first Article record and the first Person record, in
// document order, matching its author by @id, atproto:did or
// atproto:handle. It returns false when no Article exists.
func Link(records []Record) (Linked, bool) {
	var article Record
	for _, rec := range records {
		if HasType(rec, TypeArticle) {
			article = rec
			break
		}
	}
	if article == nil {
		return Linked{}, false
	}

	author := authorOf(article)
	ref := authorRef{
		id:     author.String(KeyID),
		did:    author.String(KeyAtprotoDID),
		handle: author.String(KeyAtprotoHandle),
	}

	return Linked{
		Article: article,
		Author:  author,
		Person:  findPerson(records, ref),
	}, true
}

func findPerson(records []Record, ref authorRef) Record {
	for _, rec := range records {
		if !HasType(rec, TypePerson) {
			continue
		}
		for _, match := range personMatchers {
			if match(ref, rec) {
				return rec
			}
		}
	}
	return nil
}

// authorOf returns the article's author object. A list yields its first
// object and a plain string is taken as the author's name.
func authorOf(article Record) Record {
	switch v := article["author"].(type) {
	case map[string]any:
		return Record(v)
	case []any:
		for _, item := range v {
			if rec, ok := asRecord(item); ok {
				return rec
			}
		}
	case string:
		if v != "" {
			return Record{"name": v}
		}
	}
	return Record{}
}
