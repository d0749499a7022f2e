package graphexport

import (
	"encoding/json"

	"github.com/viant/codegraph/graphstore"
)

// D3Node is one entry of the D3-compatible "nodes" array.
type D3Node struct {
	ID         uint64                 `json:"id"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
}

// D3Link is one entry of the D3-compatible "links" array.
type D3Link struct {
	Source uint64 `json:"source"`
	Target uint64 `json:"target"`
	Type   string `json:"type"`
}

// D3Graph is the root object produced by ExportJSON.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

// NodePredicate selects which nodes are kept by a filtered export.
type NodePredicate func(n *graphstore.Node) bool

// ExportJSON renders the whole graph as a D3-compatible JSON document.
func ExportJSON(store *graphstore.Store) (string, error) {
	return exportJSONFiltered(store, nil, true)
}

// ExportJSONFiltered renders only nodes matching predicate. When
// includeEdgesBetweenFilteredNodes is true, an edge is kept if both its
// endpoints survive the filter; otherwise no edges are emitted.
func ExportJSONFiltered(store *graphstore.Store, predicate NodePredicate, includeEdgesBetweenFilteredNodes bool) (string, error) {
	return exportJSONFiltered(store, predicate, includeEdgesBetweenFilteredNodes)
}

func exportJSONFiltered(store *graphstore.Store, predicate NodePredicate, includeEdges bool) (string, error) {
	nodeIDs := store.AllNodeIDs()
	warnIfLarge(len(nodeIDs))

	kept := make(map[uint64]bool, len(nodeIDs))
	graph := D3Graph{}
	for _, id := range nodeIDs {
		n, err := store.GetNode(id)
		if err != nil {
			continue
		}
		if predicate != nil && !predicate(n) {
			continue
		}
		kept[id] = true
		graph.Nodes = append(graph.Nodes, D3Node{
			ID:         id,
			Type:       string(n.NodeType),
			Properties: propertiesToJSON(n.Properties),
		})
	}

	if includeEdges {
		for _, id := range nodeIDs {
			if !kept[id] {
				continue
			}
			for _, eid := range outgoingEdgeIDs(store, id) {
				e, err := store.GetEdge(eid)
				if err != nil || !kept[e.TargetID] {
					continue
				}
				graph.Links = append(graph.Links, D3Link{Source: e.SourceID, Target: e.TargetID, Type: string(e.EdgeType)})
			}
		}
	}

	out, err := json.Marshal(graph)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func propertiesToJSON(p graphstore.PropertyMap) map[string]interface{} {
	out := make(map[string]interface{}, len(p))
	for k, v := range p {
		switch v.Kind {
		case graphstore.KindString:
			out[k] = v.StringVal
		case graphstore.KindInt:
			out[k] = v.IntVal
		case graphstore.KindFloat:
			out[k] = v.FloatVal
		case graphstore.KindBool:
			out[k] = v.BoolVal
		case graphstore.KindStringList:
			out[k] = v.StringList
		case graphstore.KindIntList:
			out[k] = v.IntList
		default:
			out[k] = nil
		}
	}
	return out
}
