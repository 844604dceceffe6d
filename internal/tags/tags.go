// Package tags canonicalizes free-text track tags into the lexical form
// the prediction engine trains and infers on.
package tags

import "strings"

// Separator joins tags in a normalized tag string. A tag may contain
// underscores but never a comma, so splitting on Separator recovers the
// original tokens exactly.
const Separator = ","

// Normalize converts a raw comma-separated tag string into canonical form:
// each tag trimmed, lowercased, with spaces and hyphens replaced by
// underscores, empty tags dropped, and the result rejoined with commas.
// Empty or whitespace-only input normalizes to the empty string.
//
// Normalize is idempotent. Training and inference must both go through
// this function; a mismatch between the two silently degrades prediction
// quality rather than failing, so there is deliberately only one
// implementation.
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	parts := strings.Split(raw, Separator)
	normalized := make([]string, 0, len(parts))

	for _, p := range parts {
		tag := strings.ToLower(strings.TrimSpace(p))
		tag = strings.ReplaceAll(tag, " ", "_")
		tag = strings.ReplaceAll(tag, "-", "_")
		if tag == "" {
			continue
		}
		normalized = append(normalized, tag)
	}

	return strings.Join(normalized, Separator)
}

// Split tokenizes a normalized tag string. Tokens are split on the tag
// separator only: a multi-word tag like "classic_rock" is one token.
// The empty string yields no tokens.
func Split(normalized string) []string {
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, Separator)
}
