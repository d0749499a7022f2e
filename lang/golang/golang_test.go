package golang

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/viant/codegraph/graphstore"
	"github.com/viant/codegraph/parser"
)

const sampleSource = `package sample

import "fmt"

type Widget struct {
	Name string
}

func (w *Widget) Render() string {
	return w.format()
}

func (w *Widget) format() string {
	return fmt.Sprintf("widget:%s", w.Name)
}

func New() *Widget {
	return &Widget{}
}
`

func TestParseSourceExtractsStructAndMethods(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "sample.go", store)
	require.NoError(t, err)
	require.Len(t, info.Classes, 1)
	require.Len(t, info.Functions, 3)
	require.Len(t, info.Imports, 1)
}

func TestParseSourceResolvesIntraFileCall(t *testing.T) {
	store, err := graphstore.InMemory()
	require.NoError(t, err)
	defer store.Close()

	f := New(parser.DefaultConfig())
	info, err := f.ParseSource(sampleSource, "sample.go", store)
	require.NoError(t, err)

	var renderID uint64
	for _, id := range info.Functions {
		n, err := store.GetNode(id)
		require.NoError(t, err)
		if name, _ := n.Properties.GetString("name"); name == "Render" {
			renderID = id
		}
	}
	require.NotZero(t, renderID)
	neighbors := store.GetNeighbors(renderID, graphstore.DirOut)
	require.NotEmpty(t, neighbors)
}

func TestCanParse(t *testing.T) {
	f := New(parser.DefaultConfig())
	require.True(t, f.CanParse("main.go"))
	require.False(t, f.CanParse("main.py"))
}
