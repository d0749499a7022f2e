package graphexport

import (
	"fmt"
	"strings"

	"github.com/viant/codegraph/graphstore"
)

// ExportTriples renders the graph as RDF N-Triples: one
// <node:N> <rdf:type> <type:T> . triple per node, one
// <node:A> <edge:T> <node:B> . triple per edge.
func ExportTriples(store *graphstore.Store) (string, error) {
	nodeIDs := store.AllNodeIDs()
	warnIfLarge(len(nodeIDs))

	var b strings.Builder
	for _, id := range nodeIDs {
		n, err := store.GetNode(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "<node:%d> <rdf:type> <type:%s> .\n", id, n.NodeType)
	}
	for _, id := range nodeIDs {
		for _, eid := range outgoingEdgeIDs(store, id) {
			e, err := store.GetEdge(eid)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "<node:%d> <edge:%s> <node:%d> .\n", e.SourceID, e.EdgeType, e.TargetID)
		}
	}
	return b.String(), nil
}
