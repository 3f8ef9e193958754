package domain

import "regexp"

// AnchorType represents the default hardware class for a solution
type AnchorType string

const (
	Anchor2000        AnchorType = "2000"
	Anchor3000        AnchorType = "3000"
	AnchorGuyWire     AnchorType = "guy-wire"
	AnchorTypeUnknown AnchorType = "unknown"
)

// IntakeState holds one conversation's accumulated answers to follow-up
// questions. It is owned by a single conversation and passed by value.
type IntakeState struct {
	Securing     string
	Membrane     string
	AnchorType   AnchorType
	MountSurface string
	Variant      string
	DocKinds     []string
}

// AskStep is one follow-up question in a solution's intake sequence.
// Pending reports whether the question still needs to be asked given the
// current intake state.
type AskStep struct {
	Slot    string
	Prompt  string
	Pending func(IntakeState) bool
}

// CanonicalSolution is a registered installation-task category. Instances are
// constructed once at startup and never mutated afterwards, so they are safe
// for unsynchronized concurrent reads.
type CanonicalSolution struct {
	Key                 string
	Pattern             *regexp.Regexp
	Keywords            []string
	Securing            string
	AnchorType          AnchorType
	StorageFolder       string
	RecommendedDocKinds []string
	AskSteps            []AskStep
}

// Folder returns the storage folder for this solution: the explicit override
// when one is declared, otherwise a path derived from the securing category.
func (s *CanonicalSolution) Folder() string {
	if s.StorageFolder != "" {
		return s.StorageFolder
	}
	return "solutions/" + s.Securing
}

// HasExplicitFolder reports whether the solution declares its own storage
// folder rather than deriving one from the securing category.
func (s *CanonicalSolution) HasExplicitFolder() bool {
	return s.StorageFolder != ""
}
