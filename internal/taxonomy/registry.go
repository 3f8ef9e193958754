package taxonomy

import (
	"regexp"

	"github.com/apexfab/roofmate/internal/domain"
)

// Registry holds the canonical solution definitions in registration order.
// It is immutable after construction and safe for concurrent reads; tests
// inject reduced registries instead of relying on a package-level singleton.
type Registry struct {
	solutions []*domain.CanonicalSolution
}

// NewRegistry creates a Registry from the given solutions. Registration order
// is significant: it is the tie-break for equally scored matches.
func NewRegistry(solutions []*domain.CanonicalSolution) *Registry {
	copied := make([]*domain.CanonicalSolution, len(solutions))
	copy(copied, solutions)
	return &Registry{solutions: copied}
}

// Solutions returns the registered solutions in registration order.
func (r *Registry) Solutions() []*domain.CanonicalSolution {
	return r.solutions
}

// GetByKey returns the solution with the given key, or nil.
func (r *Registry) GetByKey(key string) *domain.CanonicalSolution {
	for _, s := range r.solutions {
		if s.Key == key {
			return s
		}
	}
	return nil
}

func askMembrane() domain.AskStep {
	return domain.AskStep{
		Slot:   "membrane",
		Prompt: "What roof membrane is on the building (EPDM, TPO, PVC, or other)?",
		Pending: func(s domain.IntakeState) bool {
			return s.Membrane == ""
		},
	}
}

func askAnchorType() domain.AskStep {
	return domain.AskStep{
		Slot:   "anchor_type",
		Prompt: "Do you know which anchor series the project calls for (2000, 3000, or guy-wire)?",
		Pending: func(s domain.IntakeState) bool {
			return s.AnchorType == "" || s.AnchorType == domain.AnchorTypeUnknown
		},
	}
}

func askMountSurface() domain.AskStep {
	return domain.AskStep{
		Slot:   "mount_surface",
		Prompt: "Is the unit mounted on the roof deck or on a wall/parapet?",
		Pending: func(s domain.IntakeState) bool {
			return s.MountSurface == ""
		},
	}
}

func askVariant() domain.AskStep {
	return domain.AskStep{
		Slot:   "variant",
		Prompt: "Is this a new installation or are you re-securing existing equipment?",
		Pending: func(s domain.IntakeState) bool {
			return s.Variant == ""
		},
	}
}

func askDocKinds() domain.AskStep {
	return domain.AskStep{
		Slot:   "doc_kinds",
		Prompt: "Which documents do you need (spec sheet, install guide, CAD)?",
		Pending: func(s domain.IntakeState) bool {
			return len(s.DocKinds) == 0
		},
	}
}

// DefaultSolutions returns the production solution registry. Specific
// sub-variants declare explicit storage folders so they outrank their
// general-bucket parents when both match the same text.
func DefaultSolutions() []*domain.CanonicalSolution {
	return []*domain.CanonicalSolution{
		{
			Key:                 "pipe-frame-attached",
			Pattern:             regexp.MustCompile(`pipe frame|\d pipe|conduit run`),
			Keywords:            []string{"pipe frame", "pipe", "frame"},
			Securing:            "pipe-frame/attached",
			AnchorType:          domain.Anchor2000,
			StorageFolder:       "solutions/pipe-frame/attached",
			RecommendedDocKinds: []string{"spec-sheet", "install-guide", "cad"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askVariant(),
				askAnchorType(),
				askDocKinds(),
			},
		},
		{
			Key:                 "pipe-frame-existing",
			Pattern:             regexp.MustCompile(`pipe frame|\d pipe|conduit run`),
			Keywords:            []string{"pipe frame", "pipe", "frame"},
			Securing:            "pipe-frame/existing",
			AnchorType:          domain.Anchor2000,
			StorageFolder:       "solutions/pipe-frame/existing",
			RecommendedDocKinds: []string{"install-guide", "spec-sheet"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askAnchorType(),
				askDocKinds(),
			},
		},
		{
			Key:                 "unitized-snow-fence",
			Pattern:             regexp.MustCompile(`unitized snow fence`),
			Keywords:            []string{"unitized", "snow fence"},
			Securing:            "snow-retention/unitized-snow-fence",
			AnchorType:          domain.Anchor3000,
			StorageFolder:       "solutions/snow-retention/unitized-snow-fence",
			RecommendedDocKinds: []string{"spec-sheet", "install-guide", "cad"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askDocKinds(),
			},
		},
		{
			Key:                 "snow-retention",
			Pattern:             regexp.MustCompile(`snow (retention|fence|guard|rail)`),
			Keywords:            []string{"snow"},
			Securing:            "snow-retention",
			AnchorType:          domain.Anchor3000,
			RecommendedDocKinds: []string{"spec-sheet", "install-guide"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askAnchorType(),
				askDocKinds(),
			},
		},
		{
			Key:                 "guy-wire-tie-down",
			Pattern:             regexp.MustCompile(`guy[ -]?wire|tie-down`),
			Keywords:            []string{"guy wire", "tie-down", "cable"},
			Securing:            "tie-down/guy-wire",
			AnchorType:          domain.AnchorGuyWire,
			StorageFolder:       "solutions/tie-down/guy-wire",
			RecommendedDocKinds: []string{"install-guide", "spec-sheet"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askDocKinds(),
			},
		},
		{
			Key:                 "equipment-enclosure",
			Pattern:             regexp.MustCompile(`\b(box|enclosure|disconnect|cabinet)\b`),
			Keywords:            []string{"enclosure", "disconnect", "box"},
			Securing:            "equipment/enclosure",
			AnchorType:          domain.Anchor2000,
			StorageFolder:       "solutions/equipment/enclosure",
			RecommendedDocKinds: []string{"spec-sheet", "install-guide"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askMountSurface(),
				askDocKinds(),
			},
		},
		{
			Key:                 "elevated-stack",
			Pattern:             regexp.MustCompile(`elevated stack|stack extension`),
			Keywords:            []string{"elevated", "stack"},
			Securing:            "stack/elevated",
			AnchorType:          domain.Anchor3000,
			StorageFolder:       "solutions/stack/elevated",
			RecommendedDocKinds: []string{"spec-sheet", "install-guide", "cad"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askDocKinds(),
			},
		},
		{
			Key:                 "exhaust-stack",
			Pattern:             regexp.MustCompile(`\b(stack|exhaust|flue|vent)\b`),
			Keywords:            []string{"exhaust", "stack"},
			Securing:            "exhaust",
			AnchorType:          domain.AnchorTypeUnknown,
			RecommendedDocKinds: []string{"spec-sheet"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askAnchorType(),
				askDocKinds(),
			},
		},
		{
			Key:                 "wall-mount",
			Pattern:             regexp.MustCompile(`(wall|parapet) mount|parapet`),
			Keywords:            []string{"wall", "parapet"},
			Securing:            "mount/wall",
			AnchorType:          domain.Anchor2000,
			StorageFolder:       "solutions/mount/wall",
			RecommendedDocKinds: []string{"spec-sheet", "install-guide"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askDocKinds(),
			},
		},
		{
			Key:                 "roof-mount",
			Pattern:             regexp.MustCompile(`roof mount`),
			Keywords:            []string{"roof"},
			Securing:            "mount/roof",
			AnchorType:          domain.Anchor2000,
			StorageFolder:       "solutions/mount/roof",
			RecommendedDocKinds: []string{"spec-sheet", "install-guide"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askDocKinds(),
			},
		},
		{
			Key:                 "u-anchor",
			Pattern:             regexp.MustCompile(`u[ -]?anchor|\bu\d{3,4}\b`),
			Keywords:            []string{"u-anchor", "anchor"},
			Securing:            "u-anchor",
			AnchorType:          domain.Anchor2000,
			StorageFolder:       "anchor/u-anchors",
			RecommendedDocKinds: []string{"spec-sheet", "install-guide", "cad"},
			AskSteps: []domain.AskStep{
				askMembrane(),
				askDocKinds(),
			},
		},
	}
}
