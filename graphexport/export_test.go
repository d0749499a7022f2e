package graphexport

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
)

func buildSampleGraph(t *testing.T) *graphstore.Store {
	t.Helper()
	s, err := graphstore.InMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	f1, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"path": graphstore.String("a.py")})
	f2, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"path": graphstore.String("b.py")})
	fn1, _ := s.AddNode(graphstore.NodeFunction, graphstore.PropertyMap{"name": graphstore.String("a")})
	fn2, _ := s.AddNode(graphstore.NodeFunction, graphstore.PropertyMap{"name": graphstore.String("b")})
	_, _ = s.AddEdge(f1, fn1, graphstore.EdgeContains, nil)
	_, _ = s.AddEdge(f2, fn2, graphstore.EdgeContains, nil)
	_, _ = s.AddEdge(fn1, fn2, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(f1, f2, graphstore.EdgeImports, nil)
	return s
}

func TestExportDOTIsValidGraphviz(t *testing.T) {
	s := buildSampleGraph(t)
	out, err := ExportDOT(s)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "digraph code_graph {"))
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "}"))
	require.Equal(t, strings.Count(out, "{"), strings.Count(out, "}"))
	require.Equal(t, 4, strings.Count(out, "->"))
}

func TestExportJSONShape(t *testing.T) {
	s := buildSampleGraph(t)
	out, err := ExportJSON(s)
	require.NoError(t, err)

	var graph D3Graph
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	require.Len(t, graph.Nodes, 4)
	require.GreaterOrEqual(t, len(graph.Links), 3)
}

func TestExportJSONFilteredDropsOrphanedEdges(t *testing.T) {
	s := buildSampleGraph(t)
	out, err := ExportJSONFiltered(s, func(n *graphstore.Node) bool {
		return n.NodeType == graphstore.NodeFunction
	}, true)
	require.NoError(t, err)

	var graph D3Graph
	require.NoError(t, json.Unmarshal([]byte(out), &graph))
	require.Len(t, graph.Nodes, 2)
	require.Len(t, graph.Links, 1)
}

func TestExportCSVHasHeaderAndRows(t *testing.T) {
	s := buildSampleGraph(t)
	nodesCSV, edgesCSV, err := ExportCSV(s)
	require.NoError(t, err)

	nodeLines := strings.Split(strings.TrimRight(nodesCSV, "\n"), "\n")
	require.Len(t, nodeLines, 5) // header + 4 nodes
	require.True(t, strings.HasPrefix(nodeLines[0], "id,type"))

	edgeLines := strings.Split(strings.TrimRight(edgesCSV, "\n"), "\n")
	require.Len(t, edgeLines, 5) // header + 4 edges
}

func TestExportTriples(t *testing.T) {
	s := buildSampleGraph(t)
	out, err := ExportTriples(s)
	require.NoError(t, err)
	require.Equal(t, 4, strings.Count(out, "<rdf:type>"))
	require.Equal(t, 8, strings.Count(out, " .\n"))
}
