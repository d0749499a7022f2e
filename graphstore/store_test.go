package graphstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddNodeAndGet(t *testing.T) {
	s, err := InMemory()
	require.NoError(t, err)
	defer s.Close()

	id, err := s.AddNode(NodeFunction, PropertyMap{"name": String("foo")})
	require.NoError(t, err)

	n, err := s.GetNode(id)
	require.NoError(t, err)
	require.Equal(t, NodeFunction, n.NodeType)
	name, ok := n.Properties.GetString("name")
	require.True(t, ok)
	require.Equal(t, "foo", name)
}

func TestAddEdgeValidatesEndpoints(t *testing.T) {
	s, err := InMemory()
	require.NoError(t, err)
	defer s.Close()

	a, err := s.AddNode(NodeCodeFile, nil)
	require.NoError(t, err)

	_, err = s.AddEdge(a, 999, EdgeImports, nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidEdge)

	b, err := s.AddNode(NodeCodeFile, nil)
	require.NoError(t, err)
	eid, err := s.AddEdge(a, b, EdgeImports, nil)
	require.NoError(t, err)
	require.NotZero(t, eid)
}

func TestDeleteNodeCascadesEdges(t *testing.T) {
	s, err := InMemory()
	require.NoError(t, err)
	defer s.Close()

	a, _ := s.AddNode(NodeFunction, nil)
	b, _ := s.AddNode(NodeFunction, nil)
	eid, err := s.AddEdge(a, b, EdgeCalls, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteNode(a))
	_, err = s.GetEdge(eid)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, 1, s.NodeCount())
	require.Equal(t, 0, s.EdgeCount())

	// idempotent
	require.NoError(t, s.DeleteNode(a))
}

func TestBatchAddsContiguousIDs(t *testing.T) {
	s, err := InMemory()
	require.NoError(t, err)
	defer s.Close()

	ids, err := s.AddNodesBatch([]NodeSpec{
		{NodeType: NodeFunction},
		{NodeType: NodeFunction},
		{NodeType: NodeFunction},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	for i := 1; i < len(ids); i++ {
		require.Equal(t, ids[i-1]+1, ids[i])
	}
}

func TestNeighborsOrderAndDirection(t *testing.T) {
	s, err := InMemory()
	require.NoError(t, err)
	defer s.Close()

	a, _ := s.AddNode(NodeFunction, nil)
	b, _ := s.AddNode(NodeFunction, nil)
	c, _ := s.AddNode(NodeFunction, nil)
	_, err = s.AddEdge(a, b, EdgeCalls, nil)
	require.NoError(t, err)
	_, err = s.AddEdge(a, c, EdgeCalls, nil)
	require.NoError(t, err)

	out := s.GetNeighbors(a, DirOut)
	require.Equal(t, []uint64{b, c}, out)

	in := s.GetNeighbors(b, DirIn)
	require.Equal(t, []uint64{a}, in)
}

func TestCrashRecovery(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.db")

	s, err := Open(path)
	require.NoError(t, err)

	ids := make([]uint64, 0, 100)
	for i := 0; i < 100; i++ {
		id, err := s.AddNode(NodeFunction, PropertyMap{"i": Int(int64(i))})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for i := 0; i < 99; i++ {
		_, err := s.AddEdge(ids[i], ids[i+1], EdgeCalls, nil)
		require.NoError(t, err)
	}
	// deliberately no Flush() call: bbolt's Update already commits durably.
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, 100, reopened.NodeCount())
	require.Equal(t, 99, reopened.EdgeCount())
	n, err := reopened.GetNode(ids[50])
	require.NoError(t, err)
	v, ok := n.Properties.GetInt("i")
	require.True(t, ok)
	require.Equal(t, int64(50), v)

	_ = os.Remove(path)
}

func TestUpdateNodePropertiesReplacesWholesale(t *testing.T) {
	s, err := InMemory()
	require.NoError(t, err)
	defer s.Close()

	id, _ := s.AddNode(NodeFunction, PropertyMap{"a": String("x"), "b": Int(1)})
	require.NoError(t, s.UpdateNodeProperties(id, PropertyMap{"c": Bool(true)}))

	n, err := s.GetNode(id)
	require.NoError(t, err)
	_, hasA := n.Properties.GetString("a")
	require.False(t, hasA)
	v, ok := n.Properties.GetBool("c")
	require.True(t, ok)
	require.True(t, v)
}
