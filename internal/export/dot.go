// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/citegraph/internal/graph"
	"github.com/pdiddy/citegraph/internal/semapi"
	"github.com/pdiddy/citegraph/internal/tags"
	"github.com/pdiddy/citegraph/pkg/types"
)

// titleWrapWidth is the label line width for wrapped paper titles.
const titleWrapWidth = 20

// WriteDOT serializes g as a Graphviz digraph. Node names are the quoted
// paper ids; labels are HTML-like, a bold "Family (year)" header over the
// wrapped title. Unvisited boundary nodes default to style=dashed, which
// classified attributes override key by key. Every node carries a URL
// attribute linking to the provider's paper page.
func WriteDOT(w io.Writer, g *graph.Graph, attrs map[types.PaperID]tags.Attrs) error {
	var sb strings.Builder

	sb.WriteString("digraph citations {\n")
	for _, p := range g.Nodes() {
		sb.WriteString(fmt.Sprintf("    %s [label=%s", quote(string(p.ID)), dotLabel(&p)))
		a := nodeAttrs(g, &p, attrs[p.ID])
		for _, k := range sortedKeys(a) {
			sb.WriteString(fmt.Sprintf(", %s=%s", k, quote(a[k])))
		}
		sb.WriteString("];\n")
	}

	sb.WriteString("\n")
	for _, e := range g.Edges() {
		attr := "color=gray"
		if corpusEdge(g, e) {
			attr = "weight=2"
		}
		sb.WriteString(fmt.Sprintf("    %s -> %s [%s];\n", quote(string(e.From)), quote(string(e.To)), attr))
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// nodeAttrs merges the dashed-boundary default, the classified attributes,
// and the provider URL, in that precedence order.
func nodeAttrs(g *graph.Graph, p *types.Paper, classified tags.Attrs) map[string]string {
	a := make(map[string]string, len(classified)+2)
	if !g.Visited(p.ID) {
		a["style"] = "dashed"
	}
	for k, v := range classified {
		a[k] = v
	}
	a["URL"] = semapi.PaperURL(p.ID)
	return a
}

// dotLabel builds the HTML-like node label: first author's family name and
// year in bold, then the title wrapped onto short lines.
func dotLabel(p *types.Paper) string {
	head := "Unknown"
	if len(p.Authors) > 0 && p.Authors[0].Family != "" {
		head = p.Authors[0].Family
	}
	head = html.EscapeString(head)
	if p.Year != 0 {
		head = fmt.Sprintf("%s (%d)", head, p.Year)
	}

	var sb strings.Builder
	sb.WriteString("<<B>")
	sb.WriteString(head)
	sb.WriteString("</B>")
	for _, line := range wrap(displayTitle(*p), titleWrapWidth) {
		sb.WriteString("<BR/>")
		sb.WriteString(html.EscapeString(line))
	}
	sb.WriteString(">")
	return sb.String()
}

// corpusEdge reports whether both endpoints are bibliography members. Those
// edges get a heavier layout weight; everything touching the boundary is
// drawn gray.
func corpusEdge(g *graph.Graph, e graph.Edge) bool {
	from, _ := g.Node(e.From)
	to, _ := g.Node(e.To)
	return from.Extra["bib"] != "" && to.Extra["bib"] != ""
}

// quote wraps s as a DOT quoted id, escaping embedded quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// wrap greedily folds s into lines of at most width runes, breaking on
// whitespace. A single word longer than width keeps its own line.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	cur, n := words[0], utf8.RuneCountInString(words[0])
	for _, word := range words[1:] {
		wn := utf8.RuneCountInString(word)
		if n+1+wn <= width {
			cur += " " + word
			n += 1 + wn
			continue
		}
		lines = append(lines, cur)
		cur, n = word, wn
	}
	return append(lines, cur)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
