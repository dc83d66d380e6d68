// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graph accumulates the exploration result: visited papers, boundary
// papers, and deduplicated directed citation edges.
// Implements: prd001-exploration (R3.3-R3.5);
//
//	docs/ARCHITECTURE § Graph Accumulator.
package graph

import "github.com/pdiddy/citegraph/pkg/types"

// Edge is one directed citation: From cites To.
type Edge struct {
	From types.PaperID `json:"from"`
	To   types.PaperID `json:"to"`
}

// Builder accumulates nodes and edges during an exploration run. It is the
// engine's working state; Freeze hands the finished graph over to readers.
// Not safe for concurrent use. Per prd001-exploration R3.5.
type Builder struct {
	nodes   map[types.PaperID]*types.Paper
	order   []types.PaperID
	visited map[types.PaperID]bool
	vorder  []types.PaperID
	edges   []Edge
	edgeSet map[Edge]bool
}

// NewBuilder returns an empty accumulator.
func NewBuilder() *Builder {
	return &Builder{
		nodes:   make(map[types.PaperID]*types.Paper),
		visited: make(map[types.PaperID]bool),
		edgeSet: make(map[Edge]bool),
	}
}

// AddNode inserts or enriches a node. Non-zero fields of the incoming
// record override the stored ones, so a boundary stub is upgraded in place
// when its paper is later fetched in full. Records with an empty ID are
// ignored.
func (b *Builder) AddNode(p types.Paper) {
	if p.ID == "" {
		return
	}
	cur, ok := b.nodes[p.ID]
	if !ok {
		cp := p
		cp.Extra = copyExtra(nil, p.Extra)
		b.nodes[p.ID] = &cp
		b.order = append(b.order, p.ID)
		return
	}
	if p.Title != "" {
		cur.Title = p.Title
	}
	if p.Year != 0 {
		cur.Year = p.Year
	}
	if p.Venue != "" {
		cur.Venue = p.Venue
	}
	if len(p.Authors) > 0 {
		cur.Authors = p.Authors
	}
	if p.CitationCount != 0 {
		cur.CitationCount = p.CitationCount
	}
	if p.ReferenceCount != 0 {
		cur.ReferenceCount = p.ReferenceCount
	}
	if len(p.Extra) > 0 {
		cur.Extra = copyExtra(cur.Extra, p.Extra)
	}
}

func copyExtra(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// MarkVisited records that the engine expanded this node.
func (b *Builder) MarkVisited(id types.PaperID) {
	if id == "" || b.visited[id] {
		return
	}
	b.visited[id] = true
	b.vorder = append(b.vorder, id)
}

// AddEdge records a directed citation, deduplicated. Endpoints missing from
// the node set are created as bare boundary stubs so every edge target stays
// part of the graph. Per prd001-exploration R3.4.
func (b *Builder) AddEdge(from, to types.PaperID) {
	if from == "" || to == "" {
		return
	}
	e := Edge{From: from, To: to}
	if b.edgeSet[e] {
		return
	}
	b.edgeSet[e] = true
	b.edges = append(b.edges, e)
	b.AddNode(types.Paper{ID: from})
	b.AddNode(types.Paper{ID: to})
}

// Node returns a copy of the stored record.
func (b *Builder) Node(id types.PaperID) (types.Paper, bool) {
	p, ok := b.nodes[id]
	if !ok {
		return types.Paper{}, false
	}
	cp := *p
	cp.Extra = copyExtra(nil, p.Extra)
	return cp, true
}

// Visited reports whether the node has been expanded.
func (b *Builder) Visited(id types.PaperID) bool { return b.visited[id] }

// VisitedCount returns the number of expanded nodes.
func (b *Builder) VisitedCount() int { return len(b.vorder) }

// Len returns the total node count, boundary stubs included.
func (b *Builder) Len() int { return len(b.order) }

// Freeze hands the accumulated graph to readers. The Builder must not be
// used afterwards; the returned Graph is immutable and safe to share.
func (b *Builder) Freeze() *Graph {
	g := &Graph{
		nodes:   b.nodes,
		order:   b.order,
		visited: b.visited,
		vorder:  b.vorder,
		edges:   b.edges,
	}
	b.nodes = nil
	b.order = nil
	b.visited = nil
	b.vorder = nil
	b.edges = nil
	b.edgeSet = nil
	return g
}

// Graph is the frozen exploration result. Accessors return copies in
// deterministic insertion order.
type Graph struct {
	nodes   map[types.PaperID]*types.Paper
	order   []types.PaperID
	visited map[types.PaperID]bool
	vorder  []types.PaperID
	edges   []Edge
}

// Len returns the total node count, boundary stubs included.
func (g *Graph) Len() int { return len(g.order) }

// VisitedCount returns the number of nodes the engine expanded.
func (g *Graph) VisitedCount() int { return len(g.vorder) }

// Node returns a copy of the stored record.
func (g *Graph) Node(id types.PaperID) (types.Paper, bool) {
	p, ok := g.nodes[id]
	if !ok {
		return types.Paper{}, false
	}
	cp := *p
	cp.Extra = copyExtra(nil, p.Extra)
	return cp, true
}

// Nodes returns all records in insertion order.
func (g *Graph) Nodes() []types.Paper {
	out := make([]types.Paper, 0, len(g.order))
	for _, id := range g.order {
		p, _ := g.Node(id)
		out = append(out, p)
	}
	return out
}

// Visited reports whether the node was expanded rather than kept as a
// boundary stub.
func (g *Graph) Visited(id types.PaperID) bool { return g.visited[id] }

// VisitOrder returns the expanded node ids in visit order.
func (g *Graph) VisitOrder() []types.PaperID {
	out := make([]types.PaperID, len(g.vorder))
	copy(out, g.vorder)
	return out
}

// Edges returns the deduplicated directed edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}
