// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package explore implements the budget-bounded, best-first walk over the
// citation graph: a max-priority frontier of discovered papers, a
// degree-of-interest score frozen at first discovery, and one metadata
// fetch per visit feeding the graph accumulator.
// Implements: prd001-exploration (R1-R5);
//
//	docs/ARCHITECTURE § Exploration Engine.
package explore

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/pkg/types"
)

// Corpus supplies a-priori interest for papers the user already knows.
// bib.Bibliography implements it; EmptyCorpus stands in when no
// bibliography is configured.
type Corpus interface {
	// Contains reports whether the paper is a corpus member.
	Contains(id types.PaperID) bool

	// KnownWeight is the member's a-priori weight, 0 for non-members.
	KnownWeight(id types.PaperID) float64

	// Families is the lowercased set of author family names across the
	// corpus.
	Families() map[string]bool

	// Annotate merges corpus metadata into a record matching an entry.
	Annotate(p *types.Paper)
}

// EmptyCorpus is a Corpus with no members. Scoring degrades to BaseWeight
// plus the decayed parent score.
type EmptyCorpus struct{}

func (EmptyCorpus) Contains(types.PaperID) bool       { return false }
func (EmptyCorpus) KnownWeight(types.PaperID) float64 { return 0 }
func (EmptyCorpus) Families() map[string]bool         { return nil }
func (EmptyCorpus) Annotate(*types.Paper)             {}

// Source feeds the engine paper records. cache.Source implements it.
type Source interface {
	Fetch(ctx context.Context, id types.PaperID, dir types.Direction) (*types.PaperRefs, error)

	// Requests reports live provider calls made so far. The engine checks
	// it against the request budget; cache hits keep it unchanged.
	Requests() int
}

// StopReason records why an exploration run ended. Running out of budget
// is a normal way to finish, not an error.
type StopReason string

const (
	// StopFrontierExhausted means every discovered paper was visited.
	StopFrontierExhausted StopReason = "frontier-exhausted"

	// StopMaxSize means the visited-node budget was reached.
	StopMaxSize StopReason = "max-size"

	// StopMaxRequests means the live-request budget was reached.
	StopMaxRequests StopReason = "max-requests"

	// StopTooManyFailures means fetch failures reached FailureLimit.
	StopTooManyFailures StopReason = "too-many-failures"

	// StopCanceled means the context was canceled between visits.
	StopCanceled StopReason = "canceled"
)

// Progress is a per-visit snapshot for interactive display.
type Progress struct {
	// Visited is the running visit count, this visit included.
	Visited int

	// Frontier is the number of papers waiting to be visited.
	Frontier int

	// Discovered is the total node count, boundary papers included.
	Discovered int

	// Score is the visited entry's frozen priority.
	Score float64

	// Title is the visited paper's title, when known.
	Title string
}

// Result is a finished exploration.
type Result struct {
	// Graph is the frozen accumulator.
	Graph *graph.Graph

	// Stop records why the run ended.
	Stop StopReason

	// Visited counts the papers the run visited. Boundary stubs are not
	// included.
	Visited int

	// Requests is the Source's live provider call count after the run.
	Requests int

	// Failures counts fetches that returned errors.
	Failures int
}

// Engine drives one exploration over a Source, accumulating the citation
// graph. Configure the fields and call Explore. A nil Corpus behaves as
// EmptyCorpus; a nil Log keeps the engine silent.
type Engine struct {
	Cfg    types.ExploreConfig
	Source Source
	Corpus Corpus

	// Progress, when non-nil, is called after every visit.
	Progress func(Progress)

	// Log receives per-visit diagnostics.
	Log *log.Logger
}

// Explore walks the citation graph best-first from seeds until a budget is
// exhausted, failures pile up, or the frontier empties. Seeds enter the
// graph immediately, so a zero MaxSize still yields a seeds-only graph
// without a single provider call. Fetch failures are absorbed as
// zero-neighbor visits until FailureLimit aborts the run.
func (e *Engine) Explore(ctx context.Context, seeds []types.PaperID) (*Result, error) {
	if e.Source == nil {
		return nil, errors.New("explore: nil Source")
	}

	r := &run{
		cfg:    e.Cfg,
		source: e.Source,
		corpus: e.Corpus,
		b:      graph.NewBuilder(),
		f:      newFrontier(),
		report: e.Progress,
		log:    e.Log,
	}
	if r.corpus == nil {
		r.corpus = EmptyCorpus{}
	}
	if r.log == nil {
		r.log = log.New(io.Discard)
	}
	r.score = newScorer(e.Cfg, r.corpus)
	r.dir = types.DirReferences
	if e.Cfg.Citing {
		r.dir = types.DirBoth
	}

	r.seed(seeds)
	stop := r.loop(ctx)

	return &Result{
		Graph:    r.b.Freeze(),
		Stop:     stop,
		Visited:  r.visited,
		Requests: e.Source.Requests(),
		Failures: r.failures,
	}, nil
}

// run is the working state of one Explore call.
type run struct {
	cfg    types.ExploreConfig
	source Source
	corpus Corpus
	score  *scorer
	dir    types.Direction
	b      *graph.Builder
	f      *frontier
	report func(Progress)
	log    *log.Logger

	visited  int
	failures int
}

// seed normalizes, dedups, and queues the starting papers at SeedScore.
func (r *run) seed(seeds []types.PaperID) {
	for _, raw := range seeds {
		id := types.ParseID(string(raw))
		if id == "" || r.f.Has(id) {
			continue
		}
		p := types.Paper{ID: id}
		r.corpus.Annotate(&p)
		r.b.AddNode(p)
		r.f.Push(id, r.cfg.SeedScore, 0)
	}
}

func (r *run) loop(ctx context.Context) StopReason {
	for r.f.Len() > 0 {
		if ctx.Err() != nil {
			return StopCanceled
		}
		if r.visited >= r.cfg.MaxSize {
			return StopMaxSize
		}
		if r.source.Requests() >= r.cfg.MaxRequests {
			return StopMaxRequests
		}

		cur := r.f.Pop()
		r.b.MarkVisited(cur.id)
		r.visited++

		if r.visited >= r.cfg.MaxSize {
			// The budget fills on this visit. Keep whatever record the
			// node already has and skip the fetch.
			r.progress(cur)
			return StopMaxSize
		}

		refs, err := r.source.Fetch(ctx, cur.id, r.dir)
		if err != nil {
			r.failures++
			r.log.Warn("fetch failed", "id", cur.id, "err", err)
			r.progress(cur)
			if r.cfg.FailureLimit > 0 && r.failures >= r.cfg.FailureLimit {
				return StopTooManyFailures
			}
			continue
		}

		paper := refs.Paper
		// The record is keyed by the requested id, whatever the provider
		// calls the paper.
		paper.ID = cur.id
		r.corpus.Annotate(&paper)
		r.b.AddNode(paper)

		for _, stub := range refs.References {
			r.discover(cur, &paper, stub, true)
		}
		for _, stub := range refs.Citations {
			r.discover(cur, &paper, stub, false)
		}

		r.log.Debug("visited", "id", cur.id, "score", cur.score, "dist", cur.dist,
			"frontier", r.f.Len(), "nodes", r.b.Len())
		r.progress(cur)
	}
	return StopFrontierExhausted
}

// discover records one neighbor: the node, the directed edge, and a
// frontier entry when the paper is new. ref orients the edge: a visited
// paper cites its references, a citing paper cites the visited one. An id
// already visited or already waiting is not re-scored; the first-discovery
// score stands.
func (r *run) discover(cur frontierEntry, parent *types.Paper, stub types.Paper, ref bool) {
	if stub.ID == "" {
		return
	}
	r.corpus.Annotate(&stub)
	r.b.AddNode(stub)
	if ref {
		r.b.AddEdge(cur.id, stub.ID)
	} else {
		r.b.AddEdge(stub.ID, cur.id)
	}
	if r.b.Visited(stub.ID) || r.f.Has(stub.ID) {
		return
	}
	r.f.Push(stub.ID, r.score.score(&stub, parent, cur.score), cur.dist+1)
}

func (r *run) progress(cur frontierEntry) {
	if r.report == nil {
		return
	}
	var title string
	if p, ok := r.b.Node(cur.id); ok {
		title = p.Title
	}
	r.report(Progress{
		Visited:    r.visited,
		Frontier:   r.f.Len(),
		Discovered: r.b.Len(),
		Score:      cur.score,
		Title:      title,
	})
}
