package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/tags"
	"github.com/pdiddy/citegraph/pkg/types"
)

// jsonGraph is the node-link document shape.
type jsonGraph struct {
	Directed bool         `json:"directed"`
	Nodes    []jsonNode   `json:"nodes"`
	Edges    []graph.Edge `json:"edges"`
}

type jsonNode struct {
	ID         types.PaperID     `json:"id"`
	Title      string            `json:"title,omitempty"`
	Year       int               `json:"year,omitempty"`
	Venue      string            `json:"venue,omitempty"`
	Authors    []types.Author    `json:"authors,omitempty"`
	Citations  int               `json:"citations,omitempty"`
	References int               `json:"references,omitempty"`
	Visited    bool              `json:"visited"`
	Extra      map[string]string `json:"extra,omitempty"`
	Attrs      tags.Attrs        `json:"attrs,omitempty"`
}

// WriteJSON serializes g in node-link form: {directed, nodes, edges} with
// per-node metadata, bibliography fields, and classified attributes.
func WriteJSON(w io.Writer, g *graph.Graph, attrs map[types.PaperID]tags.Attrs) error {
	doc := jsonGraph{
		Directed: true,
		Nodes:    make([]jsonNode, 0, g.Len()),
		Edges:    g.Edges(),
	}
	for _, p := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, jsonNode{
			ID:         p.ID,
			Title:      p.Title,
			Year:       p.Year,
			Venue:      p.Venue,
			Authors:    p.Authors,
			Citations:  p.CitationCount,
			References: p.ReferenceCount,
			Visited:    g.Visited(p.ID),
			Extra:      p.Extra,
			Attrs:      attrs[p.ID],
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
