// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tags classifies graph nodes with ordered, rule-driven attribute
// sets. A rule names its members outright or matches them with a small
// predicate language over the paper record; matching rules merge their
// attributes in declaration order, later rules winning collisions.
// Implements: prd004-tags (R1-R4);
//
//	docs/ARCHITECTURE § Tag Engine.
package tags

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/pkg/types"
)

// Attrs is the merged attribute set a node ends up with.
type Attrs map[string]string

// Tag is one classification rule. A node belongs to the tag when its id is
// in Members or the Match predicate evaluates true against its record.
type Tag struct {
	Name    string            `yaml:"name"`
	Members []string          `yaml:"members,omitempty"`
	Match   string            `yaml:"match,omitempty"`
	Attrs   map[string]string `yaml:"attrs,omitempty"`

	pred    predicate
	members map[types.PaperID]bool
}

func (t *Tag) matches(p *types.Paper) bool {
	if t.members[p.ID] {
		return true
	}
	return t.pred != nil && t.pred.matches(p)
}

// Rules is an ordered rule list ready to classify with.
type Rules struct {
	tags []Tag
}

// Len returns the rule count.
func (r *Rules) Len() int {
	if r == nil {
		return 0
	}
	return len(r.tags)
}

// Load reads a YAML rules file and compiles it. A malformed file or an
// unparsable predicate is a configuration error; nothing is compiled
// half-way.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tag rules: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing tag rules %s: %w", path, err)
	}
	return r, nil
}

// Parse compiles rules from YAML.
func Parse(data []byte) (*Rules, error) {
	var raw []Tag
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for i := range raw {
		if err := compile(&raw[i]); err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, raw[i].Name, err)
		}
	}
	return &Rules{tags: raw}, nil
}

func compile(t *Tag) error {
	if t.Name == "" {
		return fmt.Errorf("missing name")
	}
	if len(t.Members) > 0 {
		t.members = make(map[types.PaperID]bool, len(t.Members))
		for _, m := range t.Members {
			if id := types.ParseID(m); id != "" {
				t.members[id] = true
			}
		}
	}
	if t.Match != "" {
		pred, err := parsePredicate(t.Match)
		if err != nil {
			return fmt.Errorf("match %q: %w", t.Match, err)
		}
		t.pred = pred
	}
	return nil
}

// Merge concatenates rule lists in order, skipping nil ones. Later lists
// classify after (and therefore override) earlier ones.
func Merge(lists ...*Rules) *Rules {
	out := &Rules{}
	for _, r := range lists {
		if r == nil {
			continue
		}
		out.tags = append(out.tags, r.tags...)
	}
	return out
}

// Builtin returns the rules applied ahead of the user's when a
// bibliography seeds the run: corpus members shade lightyellow, members
// marked read shade lightblue.
func Builtin() *Rules {
	return &Rules{tags: []Tag{
		{
			Name:  "bibliography",
			Match: `bib != ""`,
			Attrs: map[string]string{"style": "filled", "fillcolor": "lightyellow"},
			pred:  mustPredicate(`bib != ""`),
		},
		{
			Name:  "read",
			Match: `read = "true"`,
			Attrs: map[string]string{"style": "filled", "fillcolor": "lightblue"},
			pred:  mustPredicate(`read = "true"`),
		},
	}}
}

// mustPredicate compiles a known-good builtin expression, like
// regexp.MustCompile for package-owned patterns.
func mustPredicate(src string) predicate {
	pred, err := parsePredicate(src)
	if err != nil {
		panic("tags: " + err.Error())
	}
	return pred
}

// Classify evaluates every rule against every node and returns the merged
// attributes of the nodes that matched at least one rule. Rule order is
// the merge order; predicate faults are silent non-matches, so
// classification never fails on data.
func Classify(g *graph.Graph, rules *Rules) map[types.PaperID]Attrs {
	out := make(map[types.PaperID]Attrs)
	if rules == nil {
		return out
	}
	for _, p := range g.Nodes() {
		for i := range rules.tags {
			t := &rules.tags[i]
			if !t.matches(&p) {
				continue
			}
			a, ok := out[p.ID]
			if !ok {
				a = make(Attrs)
				out[p.ID] = a
			}
			for k, v := range t.Attrs {
				a[k] = v
			}
		}
	}
	return out
}
