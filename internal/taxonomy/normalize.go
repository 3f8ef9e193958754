// Package taxonomy maps free-text product queries onto the canonical solution
// registry: text normalization, scored pattern matching, and follow-up
// question selection.
package taxonomy

import "strings"

type substitution struct {
	from string
	to   string
}

// Synonym folding applied after character normalization. Order matters: later
// rules can depend on text produced by earlier ones, and every right-hand side
// is a fixed point so repeated application is a no-op.
var substitutions = []substitution{
	{"h-frame", "h frame"},
	{"roof mounted h frame", "pipe frame attached"},
	{"roof mount h frame", "pipe frame attached"},
	{"h frame", "pipe frame"},
	{"two pipe", "2 pipe"},
	{"three pipe", "3 pipe"},
	{"four pipe", "4 pipe"},
	{"re-secure", "existing"},
	{"resecure", "existing"},
	{"re-tie", "existing"},
	{"re-anchor", "existing"},
	{"retrofit", "existing"},
	{"snowguard", "snow guard"},
	{"snow guards", "snow guard"},
	{"snowfence", "snow fence"},
	{"guywire", "guy wire"},
	{"tie down", "tie-down"},
	{"tiedown", "tie-down"},
	{"condensate line", "pipe"},
}

// Normalize canonicalizes a free-text query before matching: lowercase, strip
// punctuation except hyphens and spaces, collapse whitespace, then apply the
// ordered synonym substitutions. Deterministic and idempotent; returns ""
// for empty input.
func Normalize(raw string) string {
	lower := strings.ToLower(raw)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	for _, sub := range substitutions {
		text = strings.ReplaceAll(text, sub.from, sub.to)
	}

	return strings.Join(strings.Fields(text), " ")
}
