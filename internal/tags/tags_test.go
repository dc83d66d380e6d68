// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/pkg/types"
)

const sampleRules = `
- name: transformers
  match: title ~ attention or title ~ transformer
  attrs:
    color: red
    shape: box
- name: classics
  members:
    - arXiv:1706.03762
    - DOI:10.1038/nature14539
  attrs:
    color: gold
- name: heavily-cited
  match: citations > 50000
  attrs:
    penwidth: "3"
`

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder()
	b.AddNode(types.Paper{
		ID:            "arXiv:1706.03762",
		Title:         "Attention Is All You Need",
		Year:          2017,
		CitationCount: 90000,
		Authors:       []types.Author{{Family: "Vaswani"}},
		Extra:         map[string]string{"bib": "vaswani2017attention", "read": "true"},
	})
	b.AddNode(types.Paper{
		ID:            "DOI:10.1038/nature14539",
		Title:         "Deep Learning",
		Year:          2015,
		CitationCount: 60000,
		Extra:         map[string]string{"bib": "lecun2015deep"},
	})
	b.AddNode(types.Paper{
		ID:    "arXiv:1512.03385",
		Title: "Deep Residual Learning for Image Recognition",
		Year:  2015,
	})
	b.MarkVisited("arXiv:1706.03762")
	return b.Freeze()
}

func TestParseCompilesRulesInOrder(t *testing.T) {
	r, err := Parse([]byte(sampleRules))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())
}

func TestClassifyMergesLaterRulesOverEarlier(t *testing.T) {
	r, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	got := Classify(testGraph(t), r)

	// The transformer paper matches all three rules: red then gold on the
	// color key, plus shape and penwidth from the non-colliding keys.
	assert.Equal(t, Attrs{
		"color":    "gold",
		"shape":    "box",
		"penwidth": "3",
	}, got["arXiv:1706.03762"])

	// Member-only match plus the citation threshold.
	assert.Equal(t, Attrs{
		"color":    "gold",
		"penwidth": "3",
	}, got["DOI:10.1038/nature14539"])

	// No rule matches the residual networks paper.
	_, ok := got["arXiv:1512.03385"]
	assert.False(t, ok)
}

func TestClassifyMembersNormalizeIDs(t *testing.T) {
	r, err := Parse([]byte(`
- name: pinned
  members:
    - "1706.03762"
  attrs:
    color: blue
`))
	require.NoError(t, err)

	got := Classify(testGraph(t), r)
	assert.Equal(t, "blue", got["arXiv:1706.03762"]["color"])
}

func TestClassifyPredicateFaultsAreNonMatches(t *testing.T) {
	r, err := Parse([]byte(`
- name: flagged
  match: priority = high
  attrs:
    color: red
`))
	require.NoError(t, err)

	// No node carries a priority field; classification must stay silent.
	got := Classify(testGraph(t), r)
	assert.Empty(t, got)
}

func TestClassifyNilRules(t *testing.T) {
	got := Classify(testGraph(t), nil)
	assert.Empty(t, got)
	assert.Equal(t, 0, (*Rules)(nil).Len())
}

func TestBuiltinPrecedesUserRules(t *testing.T) {
	user, err := Parse([]byte(`
- name: mine
  members:
    - arXiv:1706.03762
  attrs:
    fillcolor: pink
`))
	require.NoError(t, err)

	got := Classify(testGraph(t), Merge(Builtin(), user))

	// Bibliography member marked read, then the user rule wins the
	// fillcolor collision.
	assert.Equal(t, Attrs{
		"style":     "filled",
		"fillcolor": "pink",
	}, got["arXiv:1706.03762"])

	// Bibliography member without read keeps the builtin shading.
	assert.Equal(t, Attrs{
		"style":     "filled",
		"fillcolor": "lightyellow",
	}, got["DOI:10.1038/nature14539"])

	// Non-member is untouched.
	_, ok := got["arXiv:1512.03385"]
	assert.False(t, ok)
}

func TestBuiltinReadShading(t *testing.T) {
	got := Classify(testGraph(t), Builtin())
	assert.Equal(t, "lightblue", got["arXiv:1706.03762"]["fillcolor"])
	assert.Equal(t, "lightyellow", got["DOI:10.1038/nature14539"]["fillcolor"])
}

func TestMergeSkipsNil(t *testing.T) {
	user, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	merged := Merge(nil, Builtin(), nil, user)
	assert.Equal(t, Builtin().Len()+user.Len(), merged.Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"malformed yaml", "- name: [unclosed"},
		{"missing name", "- match: year = 2017"},
		{"bad predicate", "- name: broken\n  match: 'year ='"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
