// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package explore

import (
	"container/heap"

	"github.com/pdiddy/citegraph/pkg/types"
)

// frontierEntry is one candidate awaiting a visit. The score is frozen at
// first discovery and never rewritten; seq breaks score ties in discovery
// order so runs over the same inputs visit in the same order.
type frontierEntry struct {
	id    types.PaperID
	score float64
	dist  int
	seq   int
}

type entryHeap []frontierEntry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].score == h[j].score {
		return h[i].seq < h[j].seq
	}
	return h[i].score > h[j].score
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(frontierEntry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}

// frontier is the max-priority queue of discovered-but-unvisited papers.
// Membership is tracked so an id is pushed at most once.
type frontier struct {
	h       entryHeap
	member  map[types.PaperID]bool
	nextSeq int
}

func newFrontier() *frontier {
	return &frontier{member: make(map[types.PaperID]bool)}
}

func (f *frontier) Len() int { return len(f.h) }

func (f *frontier) Has(id types.PaperID) bool { return f.member[id] }

// Push queues id at score. A second push of the same id is ignored, which
// is what freezes the first-discovery score.
func (f *frontier) Push(id types.PaperID, score float64, dist int) {
	if f.member[id] {
		return
	}
	f.member[id] = true
	heap.Push(&f.h, frontierEntry{id: id, score: score, dist: dist, seq: f.nextSeq})
	f.nextSeq++
}

// Pop removes and returns the highest-score entry, oldest first on ties.
func (f *frontier) Pop() frontierEntry {
	e := heap.Pop(&f.h).(frontierEntry)
	delete(f.member, e.id)
	return e
}
