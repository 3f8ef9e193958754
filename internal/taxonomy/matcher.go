package taxonomy

import (
	"strings"

	"github.com/apexfab/roofmate/internal/domain"
)

// Weights holds the scoring constants for solution matching. The defaults are
// heuristic values tuned by trial; golden scenario tests pin the resulting
// behavior rather than the constants themselves.
type Weights struct {
	// BaseCap limits the credit given for the length of the matched substring.
	BaseCap int
	// Keyword is added per keyword literally present in the text.
	Keyword int
	// ExplicitFolder is added when the solution declares its own storage folder.
	ExplicitFolder int
	// GeneralBucket is subtracted when the candidate folder is a category root
	// with no sub-variant.
	GeneralBucket int
	// Intent is the tie-break shift applied for directional intent words.
	Intent int
	// Surface is the shift applied for wall/parapet vs roof mount-surface words.
	Surface int
}

// DefaultWeights returns the production scoring weights.
func DefaultWeights() Weights {
	return Weights{
		BaseCap:        40,
		Keyword:        6,
		ExplicitFolder: 14,
		GeneralBucket:  12,
		Intent:         10,
		Surface:        8,
	}
}

// Matcher scores normalized query text against a solution registry. It is
// stateless per call and safe for concurrent use.
type Matcher struct {
	registry *Registry
	weights  Weights
}

// NewMatcher creates a Matcher with default weights.
func NewMatcher(registry *Registry) *Matcher {
	return NewMatcherWithWeights(registry, DefaultWeights())
}

// NewMatcherWithWeights creates a Matcher with explicit scoring weights.
func NewMatcherWithWeights(registry *Registry, weights Weights) *Matcher {
	return &Matcher{
		registry: registry,
		weights:  weights,
	}
}

// Resolve returns the highest-scoring solution for the given free text, or
// nil when no registered pattern matches. Ties are broken by registration
// order, so resolution is deterministic.
func (m *Matcher) Resolve(text string) *domain.CanonicalSolution {
	norm := Normalize(text)
	if norm == "" {
		return nil
	}

	var best *domain.CanonicalSolution
	bestScore := 0
	for _, sol := range m.registry.Solutions() {
		score, ok := m.score(sol, norm)
		if !ok {
			continue
		}
		if best == nil || score > bestScore {
			best = sol
			bestScore = score
		}
	}
	return best
}

// ResolveFolder resolves free text to a storage folder path. The second
// return value is false when no solution matched.
func (m *Matcher) ResolveFolder(text string) (string, bool) {
	sol := m.Resolve(text)
	if sol == nil {
		return "", false
	}
	return sol.Folder(), true
}

// NextQuestion returns the first ask-step of the solution whose guard reports
// the slot as still unresolved, or nil when every slot is filled (the
// terminal state of the intake sequence).
func (m *Matcher) NextQuestion(sol *domain.CanonicalSolution, state domain.IntakeState) *domain.AskStep {
	if sol == nil {
		return nil
	}
	for i := range sol.AskSteps {
		step := &sol.AskSteps[i]
		if step.Pending != nil && step.Pending(state) {
			return step
		}
	}
	return nil
}

// score computes the composite match score for one candidate. The boolean is
// false when the solution's pattern does not match the normalized text.
func (m *Matcher) score(sol *domain.CanonicalSolution, norm string) (int, bool) {
	loc := sol.Pattern.FindStringIndex(norm)
	if loc == nil {
		return 0, false
	}

	// Longer matched substrings reward specificity over generic matches.
	base := loc[1] - loc[0]
	if base > m.weights.BaseCap {
		base = m.weights.BaseCap
	}
	score := base

	for _, kw := range sol.Keywords {
		if strings.Contains(norm, kw) {
			score += m.weights.Keyword
		}
	}

	if sol.HasExplicitFolder() {
		score += m.weights.ExplicitFolder
	}

	folder := sol.Folder()
	if isGeneralBucket(folder) {
		score -= m.weights.GeneralBucket
	}

	score += m.intentShift(norm, folder)

	return score, true
}

// isGeneralBucket reports whether a folder is a category root with no
// sub-variant segment (e.g. "solutions/snow-retention" alone).
func isGeneralBucket(folder string) bool {
	rest := folder
	if i := strings.Index(folder, "/"); i >= 0 {
		rest = folder[i+1:]
	}
	return !strings.Contains(rest, "/")
}

// intentShift applies directional tie-break bonuses based on intent words in
// the normalized text and the candidate's folder.
func (m *Matcher) intentShift(norm, folder string) int {
	shift := 0

	if containsWord(norm, "existing") {
		if strings.Contains(folder, "/existing") {
			shift += m.weights.Intent
		}
		if strings.Contains(folder, "/attached") {
			shift -= m.weights.Intent
		}
	}

	wall := containsWord(norm, "wall") || containsWord(norm, "parapet")
	roof := containsWord(norm, "roof") || containsWord(norm, "rooftop")
	if wall && !roof {
		if strings.Contains(folder, "/wall") {
			shift += m.weights.Surface
		}
		if strings.Contains(folder, "/roof") {
			shift -= m.weights.Surface
		}
	}
	if roof && !wall {
		if strings.Contains(folder, "/roof") {
			shift += m.weights.Surface
		}
		if strings.Contains(folder, "/wall") {
			shift -= m.weights.Surface
		}
	}

	if strings.Contains(norm, "guy wire") || strings.Contains(norm, "guy-wire") || strings.Contains(norm, "tie-down") {
		if strings.Contains(folder, "tie-down") {
			shift += m.weights.Intent
		}
	}

	if containsWord(norm, "box") || containsWord(norm, "enclosure") || containsWord(norm, "disconnect") {
		if strings.Contains(folder, "enclosure") {
			shift += m.weights.Intent
		}
	}

	if containsWord(norm, "stack") || containsWord(norm, "exhaust") {
		if strings.Contains(folder, "stack") || strings.Contains(folder, "exhaust") {
			shift += m.weights.Intent
		}
	}

	return shift
}

func containsWord(norm, word string) bool {
	for _, field := range strings.Fields(norm) {
		if field == word {
			return true
		}
	}
	return false
}
