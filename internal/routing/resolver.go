package routing

import (
	"context"
	"log"
	"path"
	"strings"
	"time"
)

// Product identifies the product a caller wants files for.
type Product struct {
	Name    string
	Series  string
	Section string
}

// ObjectInfo describes one entry returned by the storage listing API.
type ObjectInfo struct {
	Key      string
	IsFolder bool
	Size     int64
}

// ObjectLister is the storage listing contract consumed by the resolver.
type ObjectLister interface {
	ListPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ProbeStatus tags the outcome of a probe so callers can distinguish "no
// files found" from "every probe failed".
type ProbeStatus int

const (
	// ProbeFound means a candidate prefix returned at least one file.
	ProbeFound ProbeStatus = iota
	// ProbeEmpty means every candidate listed cleanly but none held files; the
	// first candidate is reported as a best-effort guess with zero files.
	ProbeEmpty
	// ProbeAllFailed means the listing API errored on every candidate,
	// suggesting storage itself is unreachable.
	ProbeAllFailed
)

// ProbeResult is the tagged outcome of probing an ordered candidate list.
type ProbeResult struct {
	Status ProbeStatus
	Prefix string
	Files  []ObjectInfo
}

// Exact per-product-name overrides. When a product name hits this table the
// listed prefixes are the ONLY candidates; all derivation rules are bypassed.
// Keyed by Slugify(name).
var prefixOverrides = map[string][]string{
	"u2400-epdm":      {"anchor/u-anchors/u2400/epdm"},
	"u2400-tpo":       {"anchor/u-anchors/u2400/tpo"},
	"u2600-epdm":      {"anchor/u-anchors/u2600/epdm"},
	"guy-wire-kit":    {"solutions/tie-down/guy-wire"},
	"snow-fence-pro":  {"solutions/snow-retention/unitized-snow-fence"},
	"legacy-h-frame":  {"solutions/pipe-frame/attached/legacy"},
	"parapet-bracket": {"solutions/mount/wall/parapet-bracket"},
}

// Roots tried for known product series before falling back to section rules.
var seriesRoots = map[string]string{
	"u-anchor": "anchor/u-anchors",
	"2000":     "anchor/2000-series",
	"3000":     "anchor/3000-series",
	"guy-wire": "solutions/tie-down",
	"snow":     "solutions/snow-retention",
	"internal": "internal",
}

var sectionRoots = []string{"solutions", "anchor", "internal"}

// GlobalDocKey is unioned into every successful probe result regardless of
// which prefix matched.
const GlobalDocKey = "global/anchor-selection-guide.pdf"

// overrideFor matches the override table by hyphen-boundary prefix, so a
// query carrying trailing doc-kind words ("u2400-epdm-install-manual") still
// hits the "u2400-epdm" override. The longest matching key wins.
func overrideFor(slug string) ([]string, bool) {
	var (
		best    []string
		bestLen int
	)
	for key, prefixes := range prefixOverrides {
		if slug != key && !strings.HasPrefix(slug, key+"-") {
			continue
		}
		if len(key) > bestLen {
			best = prefixes
			bestLen = len(key)
		}
	}
	return best, best != nil
}

// CandidatePrefixes generates the ordered candidate prefixes for a product,
// most specific first. The exact-override table short-circuits everything
// else; otherwise series roots, section layouts, and bare slugs are tried at
// two nesting depths each.
func CandidatePrefixes(p Product) []string {
	slug := Slugify(p.Name)
	if slug == "" {
		return nil
	}

	if override, ok := overrideFor(slug); ok {
		out := make([]string, len(override))
		copy(out, override)
		return out
	}

	var prefixes []string
	seen := make(map[string]bool)
	add := func(prefix string) {
		if prefix == "" || seen[prefix] {
			return
		}
		seen[prefix] = true
		prefixes = append(prefixes, prefix)
	}

	if root, ok := seriesRoots[Slugify(p.Series)]; ok {
		add(path.Join(root, slug))
		add(path.Join(root, slug, slug))
	}

	sectionSlug := Slugify(p.Section)
	for _, root := range sectionRoots {
		if sectionSlug != "" {
			add(path.Join(root, sectionSlug, slug))
		}
		add(path.Join(root, slug))
		add(path.Join(root, slug, slug))
	}

	add(slug)
	add(path.Join(slug, slug))

	return prefixes
}

// Resolver probes candidate prefixes against object storage.
type Resolver struct {
	lister       ObjectLister
	probeTimeout time.Duration
	globalDocKey string
}

// NewResolver creates a Resolver with the default per-candidate timeout and
// global document key.
func NewResolver(lister ObjectLister) *Resolver {
	return &Resolver{
		lister:       lister,
		probeTimeout: 5 * time.Second,
		globalDocKey: GlobalDocKey,
	}
}

// NewResolverWithOptions creates a Resolver with explicit settings.
func NewResolverWithOptions(lister ObjectLister, probeTimeout time.Duration, globalDocKey string) *Resolver {
	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}
	return &Resolver{
		lister:       lister,
		probeTimeout: probeTimeout,
		globalDocKey: globalDocKey,
	}
}

// Resolve generates candidates for the product and probes them in order.
func (r *Resolver) Resolve(ctx context.Context, p Product) ProbeResult {
	return r.Probe(ctx, CandidatePrefixes(p))
}

// Probe tries each candidate prefix in order and returns the first that holds
// at least one non-folder file. Listing errors on individual candidates are
// swallowed and treated as "no files"; the result is tagged ProbeAllFailed
// only when every candidate errored. Folder-like entries are never reported
// as files.
func (r *Resolver) Probe(ctx context.Context, prefixes []string) ProbeResult {
	if len(prefixes) == 0 {
		return ProbeResult{Status: ProbeEmpty}
	}

	failures := 0
	for _, prefix := range prefixes {
		files, err := r.listOnce(ctx, prefix)
		if err != nil {
			log.Printf("routing: probe %q failed: %v", prefix, err)
			failures++
			continue
		}
		if len(files) == 0 {
			continue
		}
		return ProbeResult{
			Status: ProbeFound,
			Prefix: prefix,
			Files:  r.withGlobalDoc(files),
		}
	}

	if failures == len(prefixes) {
		return ProbeResult{Status: ProbeAllFailed, Prefix: prefixes[0]}
	}

	// Best-effort guess: the most specific candidate, with zero files, so the
	// UI can show "nothing found" instead of erroring.
	return ProbeResult{Status: ProbeEmpty, Prefix: prefixes[0]}
}

func (r *Resolver) listOnce(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	entries, err := r.lister.ListPrefix(probeCtx, prefix)
	if err != nil {
		return nil, err
	}

	files := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if isFolderLike(e) {
			continue
		}
		files = append(files, e)
	}
	return files, nil
}

func (r *Resolver) withGlobalDoc(files []ObjectInfo) []ObjectInfo {
	if r.globalDocKey == "" {
		return files
	}
	for _, f := range files {
		if f.Key == r.globalDocKey {
			return files
		}
	}
	return append(files, ObjectInfo{Key: r.globalDocKey})
}

// isFolderLike filters entries that are folders, folder markers (trailing
// slash), or extensionless names that listing backends report for prefixes.
func isFolderLike(e ObjectInfo) bool {
	if e.IsFolder {
		return true
	}
	if strings.HasSuffix(e.Key, "/") {
		return true
	}
	base := path.Base(e.Key)
	return !strings.Contains(base, ".")
}
