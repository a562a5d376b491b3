package helpers

import "strings"

// NormalizeSlug lowercases s and collapses every run of characters outside
// [a-z0-9] into a single '-'. The result is idempotent under repeated
// normalization; it is applied before any slug uniqueness check.
func NormalizeSlug(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
		}
		dash = true
	}
	return b.String()
}
