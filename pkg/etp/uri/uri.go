// Package uri implements ETP URI normalization: eml:///dataspace('<name>')
// rewriting for any input that isn't already a full eml:/// URI.
package uri

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Scheme is the mandatory prefix of a normalized ETP URI.
const Scheme = "eml:///"

// Normalize rewrites a single string into a well-formed ETP URI.
//
// An empty string normalizes to the bare scheme root. A string already
// beginning with Scheme is returned unchanged (idempotent). Anything else
// is treated as a bare dataspace name and wrapped as
// eml:///dataspace('<name>'), with a deprecation-style warning logged
// since the rewrite hides an ambiguous call site.
func Normalize(s string) string {
	if s == "" {
		return Scheme
	}
	if hasScheme(s) {
		return s
	}
	log.Warn().
		Str("input", s).
		Msg("etp/uri: non-eml:/// string interpreted as a bare dataspace name; pass a full URI to silence this warning")
	return fmt.Sprintf("%sdataspace('%s')", Scheme, s)
}

func hasScheme(s string) bool {
	return len(s) >= len(Scheme) && s[:len(Scheme)] == Scheme
}

// NormalizeList normalizes an ordered collection of URI-like inputs,
// preserving order.
func NormalizeList(inputs []string) []string {
	out := make([]string, len(inputs))
	for i, s := range inputs {
		out[i] = Normalize(s)
	}
	return out
}

// NormalizeMap normalizes a keyed collection of URI-like inputs, preserving
// keys.
func NormalizeMap(inputs map[string]string) map[string]string {
	out := make(map[string]string, len(inputs))
	for k, s := range inputs {
		out[k] = Normalize(s)
	}
	return out
}

// ListAsMap converts an ordered collection into a keyed one with numeric
// string keys "0", "1", ... in order, as required when a caller supplies a
// list where the API demands a mapping.
func ListAsMap(inputs []string) map[string]string {
	out := make(map[string]string, len(inputs))
	for i, s := range inputs {
		out[fmt.Sprintf("%d", i)] = Normalize(s)
	}
	return out
}
