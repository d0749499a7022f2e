// Package graphexport implements the four pure-function export formats of
// spec.md §4.6: DOT, D3-shaped JSON, CSV, and RDF N-Triples.
package graphexport

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/viant/codegraph/graphstore"
)

const largeGraphWarnThreshold = 10000

var log = zap.NewNop().Sugar()

// SetLogger attaches a structured logger used to warn (not fail) when an
// export spans more than largeGraphWarnThreshold nodes.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		log = l
	}
}

// StyleOptions configures DOT node/edge rendering. Shapes/colors default
// to the map restored from the Rust original's export/dot.rs (see
// DESIGN.md), keyed by NodeType/EdgeType.
type StyleOptions struct {
	NodeShape map[graphstore.NodeType]string
	NodeColor map[graphstore.NodeType]string
	EdgeColor map[graphstore.EdgeType]string
	// PropertyKeys are appended to node labels, in order, when present.
	PropertyKeys []string
}

// DefaultStyle is the default node-shape/color map.
func DefaultStyle() StyleOptions {
	return StyleOptions{
		NodeShape: map[graphstore.NodeType]string{
			graphstore.NodeCodeFile:  "folder",
			graphstore.NodeFunction:  "ellipse",
			graphstore.NodeClass:     "box",
			graphstore.NodeInterface: "component",
			graphstore.NodeModule:    "tab",
			graphstore.NodeVariable:  "diamond",
			graphstore.NodeImport:    "note",
			graphstore.NodeTrait:     "hexagon",
		},
		NodeColor: map[graphstore.NodeType]string{
			graphstore.NodeCodeFile:  "lightblue",
			graphstore.NodeFunction:  "lightgreen",
			graphstore.NodeClass:     "lightyellow",
			graphstore.NodeInterface: "lavender",
			graphstore.NodeModule:    "lightgray",
			graphstore.NodeVariable:  "white",
			graphstore.NodeImport:    "wheat",
			graphstore.NodeTrait:     "plum",
		},
		EdgeColor: map[graphstore.EdgeType]string{
			graphstore.EdgeContains:    "black",
			graphstore.EdgeCalls:       "blue",
			graphstore.EdgeImports:     "green",
			graphstore.EdgeImportsFrom: "darkgreen",
			graphstore.EdgeExtends:     "red",
			graphstore.EdgeImplements:  "orange",
			graphstore.EdgeInherits:    "firebrick",
			graphstore.EdgeUses:        "gray",
		},
	}
}

// ExportDOT renders the whole graph as Graphviz DOT with default styling.
func ExportDOT(store *graphstore.Store) (string, error) {
	return ExportDOTStyled(store, DefaultStyle())
}

// ExportDOTStyled renders the whole graph as styled Graphviz DOT.
func ExportDOTStyled(store *graphstore.Store, style StyleOptions) (string, error) {
	nodeIDs := store.AllNodeIDs()
	warnIfLarge(len(nodeIDs))

	var b strings.Builder
	b.WriteString("digraph code_graph {\n")
	b.WriteString("  rankdir=LR;\n")

	for _, id := range nodeIDs {
		n, err := store.GetNode(id)
		if err != nil {
			continue
		}
		label := nodeLabel(n, style.PropertyKeys)
		shape := style.NodeShape[n.NodeType]
		if shape == "" {
			shape = "ellipse"
		}
		color := style.NodeColor[n.NodeType]
		if color == "" {
			color = "white"
		}
		fmt.Fprintf(&b, "  n%d [label=%q shape=%s style=filled fillcolor=%q];\n", id, label, shape, color)
	}

	for _, id := range nodeIDs {
		for _, eid := range outgoingEdgeIDs(store, id) {
			e, err := store.GetEdge(eid)
			if err != nil {
				continue
			}
			color := style.EdgeColor[e.EdgeType]
			if color == "" {
				color = "black"
			}
			fmt.Fprintf(&b, "  n%d -> n%d [label=%q color=%s];\n", e.SourceID, e.TargetID, e.EdgeType, color)
		}
	}

	b.WriteString("}\n")
	return b.String(), nil
}

func nodeLabel(n *graphstore.Node, propertyKeys []string) string {
	label, ok := n.Properties.GetString("name")
	if !ok {
		label, ok = n.Properties.GetString("path")
	}
	if !ok {
		label = string(n.NodeType)
	}
	label = escapeDOT(label)

	for _, key := range propertyKeys {
		if v, ok := n.Properties.GetString(key); ok {
			label += "\\n" + key + "=" + escapeDOT(v)
		}
	}
	return label
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

func outgoingEdgeIDs(store *graphstore.Store, nodeID uint64) []uint64 {
	var out []uint64
	for _, dst := range store.GetNeighbors(nodeID, graphstore.DirOut) {
		out = append(out, store.GetEdgesBetween(nodeID, dst)...)
	}
	return out
}

func warnIfLarge(n int) {
	if n > largeGraphWarnThreshold {
		log.Warnw("export spans a large graph", "nodes", n, "threshold", largeGraphWarnThreshold)
	}
}
