package algorithm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
)

func newStore(t *testing.T) *graphstore.Store {
	t.Helper()
	s, err := graphstore.InMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBFSRespectsMaxDepth(t *testing.T) {
	s := newStore(t)
	a, _ := s.AddNode(graphstore.NodeFunction, nil)
	b, _ := s.AddNode(graphstore.NodeFunction, nil)
	c, _ := s.AddNode(graphstore.NodeFunction, nil)
	d, _ := s.AddNode(graphstore.NodeFunction, nil)
	_, _ = s.AddEdge(a, b, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(b, c, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(c, d, graphstore.EdgeCalls, nil)

	got := BFS(s, a, graphstore.DirOut, 2)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	want := []uint64{b, c}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	require.Equal(t, want, got)
}

func TestBFSTerminatesOnCycle(t *testing.T) {
	s := newStore(t)
	a, _ := s.AddNode(graphstore.NodeFunction, nil)
	b, _ := s.AddNode(graphstore.NodeFunction, nil)
	_, _ = s.AddEdge(a, b, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(b, a, graphstore.EdgeCalls, nil)

	got := BFS(s, a, graphstore.DirOut, 0)
	require.Equal(t, []uint64{b}, got)
}

func TestFindAllPathsEnumeratesSimplePaths(t *testing.T) {
	s := newStore(t)
	a, _ := s.AddNode(graphstore.NodeFunction, nil)
	b, _ := s.AddNode(graphstore.NodeFunction, nil)
	c, _ := s.AddNode(graphstore.NodeFunction, nil)
	d, _ := s.AddNode(graphstore.NodeFunction, nil)
	_, _ = s.AddEdge(a, b, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(a, c, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(b, d, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(c, d, graphstore.EdgeCalls, nil)

	paths := CallChain(s, a, d, 5)
	require.Len(t, paths, 2)
}

func TestCircularDepsDetectsImportCycle(t *testing.T) {
	s := newStore(t)
	a, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"file": graphstore.String("a.py")})
	b, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"file": graphstore.String("b.py")})
	c, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"file": graphstore.String("c.py")})
	_, _ = s.AddEdge(a, b, graphstore.EdgeImports, nil)
	_, _ = s.AddEdge(b, c, graphstore.EdgeImports, nil)
	_, _ = s.AddEdge(c, a, graphstore.EdgeImports, nil)

	comps := CircularDeps(s)
	require.Len(t, comps, 1)
	require.ElementsMatch(t, []uint64{a, b, c}, comps[0])
}

func TestCircularDepsEmptyWithoutCycle(t *testing.T) {
	s := newStore(t)
	a, _ := s.AddNode(graphstore.NodeCodeFile, nil)
	b, _ := s.AddNode(graphstore.NodeCodeFile, nil)
	_, _ = s.AddEdge(a, b, graphstore.EdgeImports, nil)

	require.Empty(t, CircularDeps(s))
}

func TestTransitiveDependents(t *testing.T) {
	s := newStore(t)
	mainFile, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"file": graphstore.String("main.rs")})
	utilsFile, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"file": graphstore.String("utils.rs")})
	_, _ = s.AddEdge(mainFile, utilsFile, graphstore.EdgeImports, nil)

	deps := TransitiveDependents(s, utilsFile, 0)
	require.Equal(t, []uint64{mainFile}, deps)
}

func TestSCCPartitionsAllNodes(t *testing.T) {
	s := newStore(t)
	a, _ := s.AddNode(graphstore.NodeFunction, nil)
	b, _ := s.AddNode(graphstore.NodeFunction, nil)
	_, _ = s.AddNode(graphstore.NodeFunction, nil)
	_, _ = s.AddEdge(a, b, graphstore.EdgeCalls, nil)
	_, _ = s.AddEdge(b, a, graphstore.EdgeCalls, nil)

	comps := FindStronglyConnectedComponents(s, graphstore.EdgeCalls)
	total := 0
	for _, c := range comps {
		total += len(c)
	}
	require.Equal(t, 3, total)
}
