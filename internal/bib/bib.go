// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bib loads a CSL-YAML bibliography and serves it as the engine's
// seed corpus: a-priori interest weights, the corpus author set for the
// similarity bonus, and free-form entry fields for tag predicates.
// Implements: prd006-bibliography (R1-R4);
//
//	docs/ARCHITECTURE § Seed Corpus.
package bib

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citegraph/pkg/types"
)

// DefaultWeight is the a-priori weight of a bibliography member that does
// not override it with a custom weight field. Per prd006-bibliography R2.2.
const DefaultWeight = 10

// Item is one CSL-YAML bibliography entry. The field names follow the
// CSL-JSON/CSL-YAML schema so bibliographies shared with Pandoc and
// reference managers load unchanged; Custom carries tool annotations
// (paper-id, arxiv, read, weight, free-form tags).
type Item struct {
	ID             string            `yaml:"id"`
	Type           string            `yaml:"type,omitempty"`
	Title          string            `yaml:"title"`
	Author         []Name            `yaml:"author,omitempty"`
	Issued         *Date             `yaml:"issued,omitempty"`
	DOI            string            `yaml:"DOI,omitempty"`
	URL            string            `yaml:"URL,omitempty"`
	ContainerTitle string            `yaml:"container-title,omitempty"`
	Custom         map[string]string `yaml:"custom,omitempty"`
}

// Name represents a person's name in CSL format.
type Name struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// Date represents a date in CSL format using date-parts.
type Date struct {
	DateParts [][]int `yaml:"date-parts"`
}

// Year returns the year component, 0 when absent.
func (d *Date) Year() int {
	if d == nil || len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return 0
	}
	return d.DateParts[0][0]
}

// Bibliography is a loaded seed corpus. Lookup is by resolvable provider id
// or by normalized title; Annotate learns id/title associations during a
// run. Not safe for concurrent use.
type Bibliography struct {
	items    []Item
	weights  []float64
	ids      []types.PaperID // resolvable ids in declaration order
	byID     map[types.PaperID]int
	byTitle  map[string]int
	families map[string]bool
}

// Load reads a CSL-YAML bibliography file.
func Load(path string) (*Bibliography, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return b, nil
}

// Parse builds a Bibliography from CSL-YAML bytes. A custom weight field
// that does not parse as a number is a configuration error.
func Parse(data []byte) (*Bibliography, error) {
	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing bibliography: %w", err)
	}

	b := &Bibliography{
		items:    items,
		weights:  make([]float64, len(items)),
		byID:     make(map[types.PaperID]int),
		byTitle:  make(map[string]int),
		families: make(map[string]bool),
	}
	for i, it := range items {
		w := float64(DefaultWeight)
		if s, ok := it.Custom["weight"]; ok {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("entry %q: parsing weight %q: %w", it.ID, s, err)
			}
			w = v
		}
		b.weights[i] = w

		if id := itemID(it); id != "" {
			if _, dup := b.byID[id]; !dup {
				b.byID[id] = i
				b.ids = append(b.ids, id)
			}
		}
		if k := normTitle(it.Title); k != "" {
			if _, dup := b.byTitle[k]; !dup {
				b.byTitle[k] = i
			}
		}
		for _, a := range it.Author {
			if f := familyOf(a); f != "" {
				b.families[strings.ToLower(f)] = true
			}
		}
	}
	return b, nil
}

// itemID resolves an entry's provider id, if any: an explicit paper-id
// custom field, an arxiv custom field, or the DOI. Citation keys are
// opaque and never treated as provider ids.
func itemID(it Item) types.PaperID {
	if v, ok := it.Custom["paper-id"]; ok {
		return types.ParseID(v)
	}
	if v, ok := it.Custom["arxiv"]; ok {
		return types.ParseID(strings.TrimSpace(v))
	}
	if it.DOI != "" {
		return types.ParseID(it.DOI)
	}
	return ""
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normTitle reduces a title to a lower-cased alphanumeric key so provider
// and bibliography spellings of the same title compare equal.
func normTitle(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(nonAlnum.ReplaceAllString(s, " "), " ")
}

// familyOf extracts a family name; single-token literal names count whole.
func familyOf(n Name) string {
	if n.Family != "" {
		return n.Family
	}
	lit := strings.TrimSpace(n.Literal)
	if lit == "" {
		return ""
	}
	if i := strings.LastIndex(lit, " "); i >= 0 {
		return lit[i+1:]
	}
	return lit
}

// Len returns the entry count.
func (b *Bibliography) Len() int { return len(b.items) }

// SeedIDs returns the resolvable entry ids in declaration order, so a run
// can be seeded from the bibliography alone. Per prd006-bibliography R3.1.
func (b *Bibliography) SeedIDs() []types.PaperID {
	out := make([]types.PaperID, len(b.ids))
	copy(out, b.ids)
	return out
}

// Contains reports whether id belongs to a bibliography entry. Entries are
// keyed by their resolvable ids at load time; Annotate adds associations
// discovered by title match during a run.
func (b *Bibliography) Contains(id types.PaperID) bool {
	_, ok := b.byID[id]
	return ok
}

// KnownWeight returns the entry's a-priori weight; non-members get 0.
func (b *Bibliography) KnownWeight(id types.PaperID) float64 {
	i, ok := b.byID[id]
	if !ok {
		return 0
	}
	return b.weights[i]
}

// Families returns the corpus-wide lower-cased author family name set.
// Callers must not modify it.
func (b *Bibliography) Families() map[string]bool { return b.families }

// Annotate merges a matching entry into the record: the custom map lands in
// Extra along with the citation key under "bib", and empty bibliographic
// fields are filled from the entry. Matching is by id first, then by
// normalized title; a title match remembers the record's id so Contains and
// KnownWeight see it for the rest of the run.
func (b *Bibliography) Annotate(p *types.Paper) {
	if p == nil || p.ID == "" {
		return
	}
	i, ok := b.byID[p.ID]
	if !ok {
		i, ok = b.byTitle[normTitle(p.Title)]
		if !ok {
			return
		}
		b.byID[p.ID] = i
	}
	it := b.items[i]

	if p.Extra == nil {
		p.Extra = make(map[string]string, len(it.Custom)+1)
	}
	for k, v := range it.Custom {
		p.Extra[k] = v
	}
	p.Extra["bib"] = it.ID

	if p.Title == "" {
		p.Title = it.Title
	}
	if p.Year == 0 {
		p.Year = it.Issued.Year()
	}
	if p.Venue == "" {
		p.Venue = it.ContainerTitle
	}
	if len(p.Authors) == 0 {
		for _, a := range it.Author {
			p.Authors = append(p.Authors, types.Author{Family: familyOf(a), Given: a.Given})
		}
	}
}
