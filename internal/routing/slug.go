// Package routing resolves products to object-storage folder prefixes and
// probes them in priority order against the storage listing API.
package routing

import "strings"

// Slugify converts a product name to a storage-folder slug: lowercase,
// ampersand to "and", quotes stripped, runs of non-alphanumerics collapsed to
// single hyphens, leading/trailing hyphens trimmed.
func Slugify(name string) string {
	lower := strings.ToLower(name)
	lower = strings.ReplaceAll(lower, "&", " and ")
	lower = strings.ReplaceAll(lower, "'", "")
	lower = strings.ReplaceAll(lower, "\"", "")

	var b strings.Builder
	b.Grow(len(lower))
	lastHyphen := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.Trim(b.String(), "-")
}
