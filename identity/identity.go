// Package identity canonicalizes the atproto identity fields found on
// Schema.org author records: handles, decentralized identifiers (DIDs) and
// feed references.
package identity

import (
	"strings"
	"unicode/utf8"
)

const (
	didPrefix        = "did:"
	didDisplayLength = 20
)

var feedSchemes = []string{"https://", "http://", "at://"}

// Identity is a normalized handle/DID pair.
type Identity struct {
	Handle string
	DID    string
}

// New builds an Identity from raw metadata values, normalizing both fields.
func New(handle, did any) Identity {
	return Identity{
		Handle: NormalizeHandle(handle),
		DID:    NormalizeDID(did),
	}
}

// CacheKey returns "handle|did" of the normalized fields, or "" when both
// are empty. The fields are normalized again so literal Identity values
// produce the same key as ones built with New.
func (id Identity) CacheKey() string {
	handle := NormalizeHandle(id.Handle)
	did := NormalizeDID(id.DID)
	if handle == "" && did == "" {
		return ""
	}
	return handle + "|" + did
}

// Actor returns the identifier used for profile lookups: the handle if
// present, else the DID.
func (id Identity) Actor() string {
	if handle := NormalizeHandle(id.Handle); handle != "" {
		return handle
	}
	return NormalizeDID(id.DID)
}

// IsZero reports whether neither field carries a usable value.
func (id Identity) IsZero() bool {
	return id.CacheKey() == ""
}

// NormalizeHandle trims whitespace, strips leading "@" characters and
// lower-cases. Trimming and stripping repeat until nothing changes, so the
// result is a fixed point. Non-string values yield "".
func NormalizeHandle(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	for {
		t := strings.TrimSpace(strings.TrimPrefix(s, "@"))
		if t == s {
			break
		}
		s = t
	}
	return strings.ToLower(s)
}

// NormalizeDID returns value unchanged when it is a string starting with
// "did:", otherwise "".
func NormalizeDID(value any) string {
	s, ok := value.(string)
	if !ok || !strings.HasPrefix(s, didPrefix) {
		return ""
	}
	return s
}

// ResolveFeedHref returns the trimmed feed reference when it uses an
// accepted scheme (https, http, at). Anything else yields "" so no link is
// rendered.
func ResolveFeedHref(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	for _, scheme := range feedSchemes {
		if strings.HasPrefix(s, scheme) {
			return s
		}
	}
	return ""
}

// TruncateDID shortens a DID for display: the first 20 characters followed
// by an ellipsis when longer.
func TruncateDID(did string) string {
	if utf8.RuneCountInString(did) <= didDisplayLength {
		return did
	}
	runes := []rune(did)
	return string(runes[:didDisplayLength]) + "…"
}
