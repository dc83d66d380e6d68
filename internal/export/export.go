// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes a frozen citation graph, together with the
// presentation attributes the tag engine assigned, into DOT, GEXF, or JSON
// node-link form. Output is deterministic: nodes and edges keep graph
// insertion order and attribute keys are sorted.
// Implements: prd005-export (R1-R3);
//
//	docs/ARCHITECTURE § Exporters.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/tags"
	"github.com/pdiddy/citegraph/pkg/types"
)

// ParseFormat validates a format name, typically a CLI flag value.
func ParseFormat(s string) (types.GraphFormat, error) {
	f := types.GraphFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case types.FormatDOT, types.FormatGEXF, types.FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q (want dot, gexf, or json)", s)
}

// Write serializes g to w in the requested format. attrs carries the
// per-node presentation attributes from tag classification; nil means no
// tags were evaluated.
func Write(w io.Writer, format types.GraphFormat, g *graph.Graph, attrs map[types.PaperID]tags.Attrs) error {
	switch format {
	case types.FormatDOT:
		return WriteDOT(w, g, attrs)
	case types.FormatGEXF:
		return WriteGEXF(w, g, attrs)
	case types.FormatJSON:
		return WriteJSON(w, g, attrs)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// displayTitle returns the node's title, falling back to its id for
// boundary stubs that were never fetched in full.
func displayTitle(p types.Paper) string {
	if p.Title != "" {
		return p.Title
	}
	return string(p.ID)
}
