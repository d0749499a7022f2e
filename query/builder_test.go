package query

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
)

func newTestStore(t *testing.T) *graphstore.Store {
	t.Helper()
	s, err := graphstore.InMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBuilderNodeTypeAndProperty(t *testing.T) {
	s := newTestStore(t)

	f1, _ := s.AddNode(graphstore.NodeFunction, graphstore.PropertyMap{
		"name": graphstore.String("Validate"),
		"file": graphstore.String("utils.go"),
	})
	_, _ = s.AddNode(graphstore.NodeFunction, graphstore.PropertyMap{
		"name": graphstore.String("main"),
		"file": graphstore.String("main.go"),
	})
	_, _ = s.AddNode(graphstore.NodeClass, graphstore.PropertyMap{
		"name": graphstore.String("Validate"),
	})

	ids, err := New(s).NodeType(graphstore.NodeFunction).NameContains("valid").Execute()
	require.NoError(t, err)
	require.Equal(t, []uint64{f1}, ids)
}

func TestBuilderCountAndExists(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, _ = s.AddNode(graphstore.NodeFunction, nil)
	}

	count, err := New(s).NodeType(graphstore.NodeFunction).Count()
	require.NoError(t, err)
	require.Equal(t, 5, count)

	exists, err := New(s).NodeType(graphstore.NodeClass).Exists()
	require.NoError(t, err)
	require.False(t, exists)
}

func TestBuilderLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 10; i++ {
		_, _ = s.AddNode(graphstore.NodeFunction, nil)
	}

	ids, err := New(s).NodeType(graphstore.NodeFunction).Limit(3).Execute()
	require.NoError(t, err)
	require.Len(t, ids, 3)
}

func TestFilePatternGlob(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"file": graphstore.String("pkg/utils_test.go")})
	_, _ = s.AddNode(graphstore.NodeCodeFile, graphstore.PropertyMap{"file": graphstore.String("pkg/utils.go")})

	ids, err := New(s).NodeType(graphstore.NodeCodeFile).FilePattern("*_test.go").Execute()
	require.NoError(t, err)
	require.Equal(t, []uint64{a}, ids)
}
