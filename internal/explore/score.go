// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package explore

import (
	"strings"

	"github.com/pdiddy/citegraph/pkg/types"
)

// scorer computes the degree-of-interest score assigned to a candidate
// when it is first discovered. The corpus family set is snapshotted once
// per run.
type scorer struct {
	base       float64
	simWeight  float64
	decay      float64
	corpus     Corpus
	corpusFams map[string]bool
}

func newScorer(cfg types.ExploreConfig, corpus Corpus) *scorer {
	return &scorer{
		base:       cfg.BaseWeight,
		simWeight:  cfg.SimilarityWeight,
		decay:      cfg.Decay,
		corpus:     corpus,
		corpusFams: corpus.Families(),
	}
}

// score is the frozen priority of candidate c discovered while expanding
// parent, whose own frozen score is parentScore:
//
//	apriori(c) + SimilarityWeight*(corpusOverlap(c) + authorSim(c, parent))
//	+ Decay*parentScore
//
// With Decay < 1 the inherited term shrinks with every hop, so interest
// decays with distance from the seeds.
func (s *scorer) score(c, parent *types.Paper, parentScore float64) float64 {
	return s.apriori(c) +
		s.simWeight*(s.corpusOverlap(c)+authorSim(c, parent)) +
		s.decay*parentScore
}

// apriori is the corpus weight for members and BaseWeight for everyone
// else.
func (s *scorer) apriori(c *types.Paper) float64 {
	if s.corpus.Contains(c.ID) {
		return s.corpus.KnownWeight(c.ID)
	}
	return s.base
}

// corpusOverlap measures how many of the candidate's authors appear
// anywhere in the corpus, damped by the candidate's author count.
func (s *scorer) corpusOverlap(c *types.Paper) float64 {
	fams := familiesOf(c)
	if len(fams) == 0 || len(s.corpusFams) == 0 {
		return 0
	}
	shared := 0
	for fam := range fams {
		if s.corpusFams[fam] {
			shared++
		}
	}
	return float64(shared) / float64(1+len(fams))
}

// authorSim measures author overlap between the candidate and the paper
// that cited or referenced it, damped by the smaller author count.
func authorSim(c, q *types.Paper) float64 {
	cf, qf := familiesOf(c), familiesOf(q)
	if len(cf) == 0 || len(qf) == 0 {
		return 0
	}
	shared := 0
	for fam := range cf {
		if qf[fam] {
			shared++
		}
	}
	return float64(shared) / float64(1+min(len(cf), len(qf)))
}

// familiesOf is the set of lowercased author family names on p.
func familiesOf(p *types.Paper) map[string]bool {
	fams := make(map[string]bool, len(p.Authors))
	for _, a := range p.Authors {
		if f := strings.ToLower(strings.TrimSpace(a.Family)); f != "" {
			fams[f] = true
		}
	}
	return fams
}
