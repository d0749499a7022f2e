package graphexport

import (
	"fmt"
	"sort"
	"strings"

	"github.com/viant/codegraph/graphstore"
)

// ExportCSVNodes renders one header row plus one row per node: id, type,
// then every property key seen across all nodes (sorted for determinism).
func ExportCSVNodes(store *graphstore.Store) (string, error) {
	nodeIDs := store.AllNodeIDs()
	warnIfLarge(len(nodeIDs))

	nodes := make([]*graphstore.Node, 0, len(nodeIDs))
	keySet := map[string]bool{}
	for _, id := range nodeIDs {
		n, err := store.GetNode(id)
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
		for k := range n.Properties {
			keySet[k] = true
		}
	}
	keys := sortedKeys(keySet)

	var b strings.Builder
	writeCSVRow(&b, append([]string{"id", "type"}, keys...))
	for _, n := range nodes {
		row := []string{fmt.Sprint(n.ID), string(n.NodeType)}
		for _, k := range keys {
			row = append(row, propertyToCSV(n.Properties[k]))
		}
		writeCSVRow(&b, row)
	}
	return b.String(), nil
}

// ExportCSVEdges renders one header row plus one row per edge: id, source,
// target, type, then every property key seen across all edges.
func ExportCSVEdges(store *graphstore.Store) (string, error) {
	nodeIDs := store.AllNodeIDs()
	var edges []*graphstore.Edge
	keySet := map[string]bool{}
	for _, id := range nodeIDs {
		for _, eid := range outgoingEdgeIDs(store, id) {
			e, err := store.GetEdge(eid)
			if err != nil {
				continue
			}
			edges = append(edges, e)
			for k := range e.Properties {
				keySet[k] = true
			}
		}
	}
	keys := sortedKeys(keySet)

	var b strings.Builder
	writeCSVRow(&b, append([]string{"id", "source", "target", "type"}, keys...))
	for _, e := range edges {
		row := []string{fmt.Sprint(e.ID), fmt.Sprint(e.SourceID), fmt.Sprint(e.TargetID), string(e.EdgeType)}
		for _, k := range keys {
			row = append(row, propertyToCSV(e.Properties[k]))
		}
		writeCSVRow(&b, row)
	}
	return b.String(), nil
}

// ExportCSV renders both CSV documents at once, convenient for callers
// writing to two files.
func ExportCSV(store *graphstore.Store) (nodesCSV, edgesCSV string, err error) {
	nodesCSV, err = ExportCSVNodes(store)
	if err != nil {
		return "", "", err
	}
	edgesCSV, err = ExportCSVEdges(store)
	if err != nil {
		return "", "", err
	}
	return nodesCSV, edgesCSV, nil
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func propertyToCSV(v graphstore.PropertyValue) string {
	switch v.Kind {
	case graphstore.KindString:
		return v.StringVal
	case graphstore.KindInt:
		return fmt.Sprint(v.IntVal)
	case graphstore.KindFloat:
		return fmt.Sprint(v.FloatVal)
	case graphstore.KindBool:
		return fmt.Sprint(v.BoolVal)
	case graphstore.KindStringList:
		return strings.Join(v.StringList, ";")
	case graphstore.KindIntList:
		parts := make([]string, len(v.IntList))
		for i, n := range v.IntList {
			parts[i] = fmt.Sprint(n)
		}
		return strings.Join(parts, ";")
	default:
		return ""
	}
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(csvEscape(f))
	}
	b.WriteString("\n")
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
