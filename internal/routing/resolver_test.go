package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"U2400 EPDM", "u2400-epdm"},
		{"Snow Fence Pro", "snow-fence-pro"},
		{"Pipes & Frames", "pipes-and-frames"},
		{"O'Brien's \"Special\"", "obriens-special"},
		{"  --trim me--  ", "trim-me"},
		{"multi   space___name", "multi-space-name"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.input), "input %q", tt.input)
	}
}

func TestCandidatePrefixes_OverrideBypassesAllRules(t *testing.T) {
	prefixes := CandidatePrefixes(Product{
		Name:    "U2400 EPDM",
		Series:  "u-anchor",
		Section: "anchors",
	})

	// An exact-override hit returns ONLY the override prefixes.
	assert.Equal(t, []string{"anchor/u-anchors/u2400/epdm"}, prefixes)
}

func TestCandidatePrefixes_OverrideMatchesTrailingDocKindWords(t *testing.T) {
	// Queries often carry the document kind after the product name; the
	// override still applies as long as the key is a hyphen-boundary prefix.
	for _, name := range []string{
		"U2400 EPDM install manual",
		"U2400 EPDM spec sheet",
		"Guy Wire Kit CAD drawing",
	} {
		prefixes := CandidatePrefixes(Product{Name: name})
		require.NotEmpty(t, prefixes, "name %q", name)
		assert.Len(t, prefixes, 1, "name %q", name)
	}

	assert.Equal(t,
		[]string{"anchor/u-anchors/u2400/epdm"},
		CandidatePrefixes(Product{Name: "U2400 EPDM install manual"}))
}

func TestCandidatePrefixes_OverrideRequiresHyphenBoundary(t *testing.T) {
	// "u2400-epdmx" shares a character prefix with the "u2400-epdm" key but
	// is a different product; it must fall through to the generic rules.
	prefixes := CandidatePrefixes(Product{Name: "U2400 EPDMX"})
	require.NotEmpty(t, prefixes)
	assert.NotContains(t, prefixes, "anchor/u-anchors/u2400/epdm")
	assert.Contains(t, prefixes, "solutions/u2400-epdmx")
}

func TestCandidatePrefixes_SeriesBeforeSections(t *testing.T) {
	prefixes := CandidatePrefixes(Product{
		Name:   "U2800 Plate",
		Series: "U-Anchor",
	})

	require.NotEmpty(t, prefixes)
	assert.Equal(t, "anchor/u-anchors/u2800-plate", prefixes[0])
	assert.Equal(t, "anchor/u-anchors/u2800-plate/u2800-plate", prefixes[1])

	// Section-based layouts follow, then bare slug fallbacks.
	assert.Contains(t, prefixes, "solutions/u2800-plate")
	assert.Contains(t, prefixes, "anchor/u2800-plate")
	assert.Contains(t, prefixes, "internal/u2800-plate")
	assert.Equal(t, "u2800-plate/u2800-plate", prefixes[len(prefixes)-1])
}

func TestCandidatePrefixes_SectionLayout(t *testing.T) {
	prefixes := CandidatePrefixes(Product{
		Name:    "Wind Clamp",
		Section: "Snow Retention",
	})

	assert.Equal(t, "solutions/snow-retention/wind-clamp", prefixes[0])
	assert.Contains(t, prefixes, "anchor/snow-retention/wind-clamp")
	assert.Contains(t, prefixes, "solutions/wind-clamp")
}

func TestCandidatePrefixes_EmptyName(t *testing.T) {
	assert.Nil(t, CandidatePrefixes(Product{Series: "u-anchor"}))
}

type fakeLister struct {
	entries map[string][]ObjectInfo
	errs    map[string]error
	calls   []string
}

func (f *fakeLister) ListPrefix(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	f.calls = append(f.calls, prefix)
	if err, ok := f.errs[prefix]; ok {
		return nil, err
	}
	return f.entries[prefix], nil
}

func TestResolver_Probe_FirstNonEmptyWins(t *testing.T) {
	lister := &fakeLister{
		entries: map[string][]ObjectInfo{
			"b": {{Key: "b/spec.pdf", Size: 1024}},
			"c": {{Key: "c/other.pdf", Size: 10}},
		},
	}
	r := NewResolver(lister)

	result := r.Probe(context.Background(), []string{"a", "b", "c"})

	assert.Equal(t, ProbeFound, result.Status)
	assert.Equal(t, "b", result.Prefix)
	// The probe short-circuits: "c" is never listed.
	assert.Equal(t, []string{"a", "b"}, lister.calls)
}

func TestResolver_Probe_UnionsGlobalDoc(t *testing.T) {
	lister := &fakeLister{
		entries: map[string][]ObjectInfo{
			"a": {{Key: "a/install.pdf"}},
		},
	}
	r := NewResolver(lister)

	result := r.Probe(context.Background(), []string{"a"})

	require.Equal(t, ProbeFound, result.Status)
	keys := make([]string, len(result.Files))
	for i, f := range result.Files {
		keys[i] = f.Key
	}
	assert.Contains(t, keys, "a/install.pdf")
	assert.Contains(t, keys, GlobalDocKey)
}

func TestResolver_Probe_NeverReturnsFolderLikeEntries(t *testing.T) {
	lister := &fakeLister{
		entries: map[string][]ObjectInfo{
			"a": {
				{Key: "a/sub/", IsFolder: true},
				{Key: "a/other/"},
				{Key: "a/extensionless"},
			},
			"b": {
				{Key: "b/folder/", IsFolder: true},
				{Key: "b/cad.dwg"},
			},
		},
	}
	r := NewResolverWithOptions(lister, time.Second, "")

	result := r.Probe(context.Background(), []string{"a", "b"})

	require.Equal(t, ProbeFound, result.Status)
	assert.Equal(t, "b", result.Prefix, "a holds only folder-like entries")
	require.Len(t, result.Files, 1)
	assert.Equal(t, "b/cad.dwg", result.Files[0].Key)
}

func TestResolver_Probe_EmptyReportsBestEffortGuess(t *testing.T) {
	lister := &fakeLister{}
	r := NewResolver(lister)

	result := r.Probe(context.Background(), []string{"first", "second"})

	assert.Equal(t, ProbeEmpty, result.Status)
	assert.Equal(t, "first", result.Prefix)
	assert.Empty(t, result.Files)
}

func TestResolver_Probe_SwallowsIndividualErrors(t *testing.T) {
	lister := &fakeLister{
		errs: map[string]error{
			"a": errors.New("timeout"),
		},
		entries: map[string][]ObjectInfo{
			"b": {{Key: "b/spec.pdf"}},
		},
	}
	r := NewResolver(lister)

	result := r.Probe(context.Background(), []string{"a", "b"})

	assert.Equal(t, ProbeFound, result.Status)
	assert.Equal(t, "b", result.Prefix)
}

func TestResolver_Probe_AllFailed(t *testing.T) {
	boom := errors.New("storage unreachable")
	lister := &fakeLister{
		errs: map[string]error{"a": boom, "b": boom},
	}
	r := NewResolver(lister)

	result := r.Probe(context.Background(), []string{"a", "b"})

	assert.Equal(t, ProbeAllFailed, result.Status)
	assert.Equal(t, "a", result.Prefix)
	assert.Empty(t, result.Files)
}

func TestResolver_Probe_MixedErrorAndEmptyIsEmpty(t *testing.T) {
	lister := &fakeLister{
		errs: map[string]error{"a": errors.New("timeout")},
	}
	r := NewResolver(lister)

	result := r.Probe(context.Background(), []string{"a", "b"})

	// One candidate listed cleanly (empty), so this is "no files found",
	// not a storage outage.
	assert.Equal(t, ProbeEmpty, result.Status)
}

func TestResolver_Resolve_OverrideScenario(t *testing.T) {
	lister := &fakeLister{
		entries: map[string][]ObjectInfo{
			"anchor/u-anchors/u2400/epdm": {{Key: "anchor/u-anchors/u2400/epdm/install-manual.pdf"}},
		},
	}
	r := NewResolver(lister)

	result := r.Resolve(context.Background(), Product{Name: "U2400 EPDM"})

	require.Equal(t, ProbeFound, result.Status)
	assert.Equal(t, "anchor/u-anchors/u2400/epdm", result.Prefix)
	assert.Equal(t, []string{"anchor/u-anchors/u2400/epdm"}, lister.calls)
}
