// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/tags"
	"github.com/pdiddy/citegraph/pkg/types"
)

// GEXF 1.3 document structure, per the gexf.net draft schema.
type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Meta    gexfMeta  `xml:"meta"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfMeta struct {
	Creator string `xml:"creator"`
}

type gexfGraph struct {
	DefaultEdgeType string         `xml:"defaultedgetype,attr"`
	Attributes      gexfAttributes `xml:"attributes"`
	Nodes           gexfNodes      `xml:"nodes"`
	Edges           gexfEdges      `xml:"edges"`
}

type gexfAttributes struct {
	Class      string          `xml:"class,attr"`
	Attributes []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNodes struct {
	Nodes []gexfNode `xml:"node"`
}

type gexfNode struct {
	ID        string        `xml:"id,attr"`
	Label     string        `xml:"label,attr"`
	AttValues gexfAttValues `xml:"attvalues"`
}

type gexfAttValues struct {
	Values []gexfAttValue `xml:"attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

type gexfEdges struct {
	Edges []gexfEdge `xml:"edge"`
}

type gexfEdge struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

// gexfFixed declares the metadata attributes every export carries. Tag
// attribute keys are appended after these as string attributes.
var gexfFixed = []gexfAttribute{
	{ID: "year", Title: "year", Type: "integer"},
	{ID: "venue", Title: "venue", Type: "string"},
	{ID: "citations", Title: "citations", Type: "integer"},
	{ID: "references", Title: "references", Type: "integer"},
	{ID: "visited", Title: "visited", Type: "boolean"},
}

// WriteGEXF serializes g as a directed GEXF 1.3 graph. Node metadata and
// classified tag attributes travel as attvalues; tag keys are declared as
// string attributes after the fixed metadata set, sorted for deterministic
// output.
func WriteGEXF(w io.Writer, g *graph.Graph, attrs map[types.PaperID]tags.Attrs) error {
	decls := append([]gexfAttribute(nil), gexfFixed...)
	fixed := make(map[string]bool, len(gexfFixed))
	for _, d := range gexfFixed {
		fixed[d.ID] = true
	}

	var tagKeys []string
	seen := make(map[string]bool)
	for _, a := range attrs {
		for k := range a {
			if !fixed[k] && !seen[k] {
				seen[k] = true
				tagKeys = append(tagKeys, k)
			}
		}
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		decls = append(decls, gexfAttribute{ID: k, Title: k, Type: "string"})
	}

	doc := gexfDoc{
		XMLNS:   "http://gexf.net/1.3",
		Version: "1.3",
		Meta:    gexfMeta{Creator: "citegraph"},
		Graph: gexfGraph{
			DefaultEdgeType: "directed",
			Attributes:      gexfAttributes{Class: "node", Attributes: decls},
		},
	}

	for _, p := range g.Nodes() {
		doc.Graph.Nodes.Nodes = append(doc.Graph.Nodes.Nodes, gexfNode{
			ID:        string(p.ID),
			Label:     displayTitle(p),
			AttValues: gexfAttValues{Values: gexfValues(g, &p, attrs[p.ID], decls)},
		})
	}
	for i, e := range g.Edges() {
		doc.Graph.Edges.Edges = append(doc.Graph.Edges.Edges, gexfEdge{
			ID:     strconv.Itoa(i),
			Source: string(e.From),
			Target: string(e.To),
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling GEXF: %w", err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// gexfValues merges node metadata with classified attributes and orders the
// result by attribute declaration. Classified values win on key collision.
func gexfValues(g *graph.Graph, p *types.Paper, classified tags.Attrs, decls []gexfAttribute) []gexfAttValue {
	vals := make(map[string]string, len(classified)+5)
	if p.Year != 0 {
		vals["year"] = strconv.Itoa(p.Year)
	}
	if p.Venue != "" {
		vals["venue"] = p.Venue
	}
	if p.CitationCount != 0 {
		vals["citations"] = strconv.Itoa(p.CitationCount)
	}
	if p.ReferenceCount != 0 {
		vals["references"] = strconv.Itoa(p.ReferenceCount)
	}
	vals["visited"] = strconv.FormatBool(g.Visited(p.ID))
	for k, v := range classified {
		vals[k] = v
	}

	out := make([]gexfAttValue, 0, len(vals))
	for _, d := range decls {
		if v, ok := vals[d.ID]; ok {
			out = append(out, gexfAttValue{For: d.ID, Value: v})
		}
	}
	return out
}
