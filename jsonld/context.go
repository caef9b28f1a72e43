package jsonld

import "strings"

// AtprotoNamespace is the prefix identifying atproto context declarations.
const AtprotoNamespace = "https://atproto.com/ns"

// HasAtprotoContext reports whether a @context list declares the atproto
// namespace: some element is an object with a string value under the
// namespace prefix. Non-list values are never coerced.
func HasAtprotoContext(ctx any) bool {
	list, ok := ctx.([]any)
	if !ok {
		return false
	}
	for _, entry := range list {
		obj, ok := asRecord(entry)
		if !ok || obj == nil {
			continue
		}
		for _, v := range obj {
			if s, ok := v.(string); ok && strings.HasPrefix(s, AtprotoNamespace) {
				return true
			}
		}
	}
	return false
}
